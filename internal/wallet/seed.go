package wallet

import (
	"context"
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"

	"github.com/Klingon-tech/seedsim/internal/log"
)

// Seed stretching parameters.
const (
	SeedSize       = 64
	SeedIterations = 2048
	seedSaltPrefix = "mnemonic"
)

// Seed is an opaque 64-byte value derived from a mnemonic and passphrase.
// Copies of a Seed share the same backing array, so Zero clears all of them.
type Seed struct {
	b *[SeedSize]byte
}

// SeedFromBytes wraps raw seed bytes, copying them.
func SeedFromBytes(b []byte) (Seed, error) {
	if len(b) != SeedSize {
		return Seed{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSeed, len(b), SeedSize)
	}
	var arr [SeedSize]byte
	copy(arr[:], b)
	return Seed{b: &arr}, nil
}

// Len returns the seed length, or 0 for an empty seed.
func (s Seed) Len() int {
	if s.b == nil {
		return 0
	}
	return SeedSize
}

// IsZero reports whether the seed is empty or has been zeroed.
func (s Seed) IsZero() bool {
	if s.b == nil {
		return true
	}
	for _, v := range s.b {
		if v != 0 {
			return false
		}
	}
	return true
}

// Bytes returns a copy of the seed bytes.
func (s Seed) Bytes() []byte {
	if s.b == nil {
		return nil
	}
	out := make([]byte, SeedSize)
	copy(out, s.b[:])
	return out
}

// Zero overwrites the seed material.
func (s Seed) Zero() {
	if s.b == nil {
		return
	}
	for i := range s.b {
		s.b[i] = 0
	}
}

// DeriveSeed stretches a mnemonic into a seed with PBKDF2-HMAC-SHA512.
// Both the mnemonic text and the passphrase are NFKD-normalized.
func DeriveSeed(m Mnemonic, passphrase string) (Seed, error) {
	if m.IsZero() {
		return Seed{}, ErrNoMnemonic
	}
	defer log.Benchmark("seed_stretch")()

	password := norm.NFKD.Bytes([]byte(m.String()))
	salt := norm.NFKD.Bytes([]byte(seedSaltPrefix + passphrase))
	key := pbkdf2.Key(password, salt, SeedIterations, SeedSize, sha512.New)
	zeroBytes(password)
	zeroBytes(salt)

	var arr [SeedSize]byte
	copy(arr[:], key)
	zeroBytes(key)
	return Seed{b: &arr}, nil
}

// PendingSeed is the single awaited result of an asynchronous stretch.
type PendingSeed struct {
	done chan struct{}
	seed Seed
	err  error
}

// SeedFromMnemonic starts stretching on its own goroutine. If ctx is
// cancelled before the stretch finishes, the result is zeroed and Wait
// reports the context error.
func SeedFromMnemonic(ctx context.Context, m Mnemonic, passphrase string) *PendingSeed {
	p := &PendingSeed{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		seed, err := DeriveSeed(m, passphrase)
		if err != nil {
			p.err = err
			return
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			seed.Zero()
			p.err = ctxErr
			return
		}
		p.seed = seed
	}()
	return p
}

// Done is closed once the stretch has finished.
func (p *PendingSeed) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the seed is ready or ctx is done.
func (p *PendingSeed) Wait(ctx context.Context) (Seed, error) {
	select {
	case <-p.done:
		return p.seed, p.err
	case <-ctx.Done():
		return Seed{}, ctx.Err()
	}
}
