package wallet

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/seedsim/internal/log"
	"github.com/Klingon-tech/seedsim/pkg/types"
)

// Flow holds the state of one generation or import: the entropy buffer,
// the finalized mnemonic and the active session. Restart clears all of it
// in one step.
type Flow struct {
	mu sync.Mutex

	codec   *Codec
	deriver *Deriver
	logger  zerolog.Logger
	stretch func(context.Context, Mnemonic, string) *PendingSeed

	epoch    uint64
	cancel   context.CancelFunc
	buf      *EntropyBuffer
	mnemonic Mnemonic
	session  *Session
}

// NewFlow creates an empty flow.
func NewFlow(codec *Codec, deriver *Deriver) *Flow {
	if codec == nil {
		codec = NewCodec(nil)
	}
	return &Flow{
		codec:   codec,
		deriver: deriver,
		logger:  log.Wallet,
		stretch: SeedFromMnemonic,
	}
}

// Codec returns the flow's mnemonic codec.
func (f *Flow) Codec() *Codec {
	return f.codec
}

// Begin starts collecting entropy toward bits (128 or 256). Any previous
// buffer and mnemonic are discarded.
func (f *Flow) Begin(bits int) (EntropyState, error) {
	buf, err := NewEntropyBuffer(bits)
	if err != nil {
		return EntropyState{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearInputLocked()
	f.buf = buf
	return buf.State(), nil
}

// AppendEntropyBit adds one coin toss.
func (f *Flow) AppendEntropyBit(bit byte) (EntropyState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.buf == nil {
		return EntropyState{}, ErrNoEntropy
	}
	return f.buf.Append(bit)
}

// AppendEntropyBits adds a pasted run of '0'/'1' characters.
func (f *Flow) AppendEntropyBits(s string) (EntropyState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.buf == nil {
		return EntropyState{}, ErrNoEntropy
	}
	return f.buf.AppendString(s)
}

// EntropyState returns the buffer progress, or false if none is active.
func (f *Flow) EntropyState() (EntropyState, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.buf == nil {
		return EntropyState{}, false
	}
	return f.buf.State(), true
}

// Finalize encodes the complete buffer into the flow's mnemonic. The buffer
// is consumed.
func (f *Flow) Finalize() (Mnemonic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.buf == nil {
		return Mnemonic{}, ErrNoEntropy
	}
	m, err := MnemonicFromEntropy(f.codec, f.buf)
	if err != nil {
		return Mnemonic{}, err
	}
	f.buf.Reset()
	f.buf = nil
	f.mnemonic = m
	f.logger.Info().Int("words", m.Len()).Msg("Mnemonic generated")
	return m, nil
}

// UseRandomEntropy generates a mnemonic from the system random source.
// Intended for learning only.
func (f *Flow) UseRandomEntropy(bits int) (Mnemonic, error) {
	buf, err := RandomEntropyBuffer(bits)
	if err != nil {
		return Mnemonic{}, err
	}

	f.mu.Lock()
	f.clearInputLocked()
	f.buf = buf
	f.mu.Unlock()

	f.logger.Warn().Msg("Using random entropy: for learning only")
	return f.Finalize()
}

// Import parses and validates an existing phrase as the flow's mnemonic.
func (f *Flow) Import(text string) (Mnemonic, error) {
	m, err := f.codec.Parse(text)
	if err != nil {
		return Mnemonic{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearInputLocked()
	f.mnemonic = m
	f.logger.Info().
		Int("words", m.Len()).
		Bool("checksum_verified", f.codec.VerifiesChecksum()).
		Msg("Mnemonic imported")
	return m, nil
}

// Mnemonic returns the finalized mnemonic, if any.
func (f *Flow) Mnemonic() Mnemonic {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mnemonic
}

// Unlock stretches the mnemonic with passphrase and starts a new session of
// type typ over the resulting seed. It blocks until the stretch finishes,
// ctx is done, or the flow is restarted. A seed that completes after a
// restart is zeroed and ErrRestarted is returned.
func (f *Flow) Unlock(ctx context.Context, passphrase string, typ types.AddressType) (*Session, error) {
	f.mu.Lock()
	if f.mnemonic.IsZero() {
		f.mu.Unlock()
		return nil, ErrNoMnemonic
	}
	if f.cancel != nil {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	epoch := f.epoch
	m := f.mnemonic
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()

	seed, err := f.stretch(ctx, m, passphrase).Wait(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	cancel()

	if f.epoch != epoch {
		seed.Zero()
		return nil, ErrRestarted
	}
	f.cancel = nil
	if err != nil {
		return nil, err
	}

	sess := NewSession(f.deriver)
	if err := sess.Start(seed, typ); err != nil {
		seed.Zero()
		return nil, err
	}
	if f.session != nil {
		f.session.Close()
	}
	f.session = sess
	// The seed now lives only in the session.
	f.mnemonic = Mnemonic{}
	return sess, nil
}

// Session returns the active session.
func (f *Flow) Session() (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.session == nil {
		return nil, ErrNoSession
	}
	return f.session, nil
}

// Restart cancels any in-flight stretch, closes the session and clears the
// buffer and mnemonic in one step.
func (f *Flow) Restart() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.epoch++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	if f.session != nil {
		f.session.Close()
		f.session = nil
	}
	f.clearInputLocked()
	f.logger.Info().Uint64("epoch", f.epoch).Msg("Flow restarted")
}

func (f *Flow) clearInputLocked() {
	if f.buf != nil {
		f.buf.Reset()
		f.buf = nil
	}
	f.mnemonic = Mnemonic{}
}
