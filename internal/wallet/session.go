package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Klingon-tech/seedsim/internal/log"
	"github.com/Klingon-tech/seedsim/pkg/types"
)

// Session generates addresses incrementally from one seed. It caches the
// external chain node so More never repeats the seed stretch or the
// hardened part of the path. All methods are safe for concurrent use but
// run one at a time.
type Session struct {
	mu sync.Mutex

	id      string
	deriver *Deriver
	logger  zerolog.Logger

	seed    Seed
	typ     types.AddressType
	chain   *ExtendedKey
	next    uint32
	addrs   []types.Address
	started bool
	closed  bool
}

// NewSession creates an idle session bound to a deriver.
func NewSession(d *Deriver) *Session {
	id := uuid.NewString()
	return &Session{
		id:      id,
		deriver: d,
		logger:  log.WithSessionID(log.Session, id),
	}
}

// ID returns the session's random identifier.
func (s *Session) ID() string {
	return s.id
}

// Start takes ownership of seed: the session keeps a private copy and the
// caller's copy is zeroed, even when Start fails. It resets the index to 0,
// clears produced addresses and derives the cached chain node for typ. Any
// previous seed and cached key are zeroed.
func (s *Session) Start(seed Seed, typ types.AddressType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	own, err := takeSeed(seed)
	if err != nil {
		return err
	}
	if s.closed {
		own.Zero()
		return ErrSessionClosed
	}
	if !s.deriver.Available() {
		own.Zero()
		return ErrCapabilityUnavailable
	}

	chain, err := s.deriver.externalChain(own, typ)
	if err != nil {
		own.Zero()
		return err
	}

	s.resetLocked()
	s.seed = own
	s.typ = typ
	s.chain = chain
	s.started = true

	s.logger.Info().Str("type", typ.String()).Msg("Session started")
	return nil
}

// More derives the next count addresses, appends them and returns them.
// Produced addresses are never recomputed.
func (s *Session) More(ctx context.Context, count uint32) ([]types.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if !s.started {
		return nil, ErrNoSession
	}
	if err := checkRange(s.next, count); err != nil {
		return nil, err
	}

	batch, err := s.deriver.addressesFrom(ctx, s.chain, s.typ, 0, s.next, count)
	if err != nil {
		return nil, err
	}
	s.addrs = append(s.addrs, batch...)
	s.next += count

	s.logger.Debug().Uint32("next", s.next).Msg("Addresses generated")
	out := make([]types.Address, len(batch))
	copy(out, batch)
	return out, nil
}

// Addresses returns a copy of every address produced so far.
func (s *Session) Addresses() []types.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Address, len(s.addrs))
	copy(out, s.addrs)
	return out
}

// Next returns the next unused index.
func (s *Session) Next() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Type returns the session's address type.
func (s *Session) Type() types.AddressType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typ
}

// AccountKey exports the account extended public key for the session's
// address type.
func (s *Session) AccountKey() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrSessionClosed
	}
	if !s.started {
		return "", ErrNoSession
	}
	return s.deriver.AccountKey(s.seed, s.typ)
}

// Close zeroes the seed and cached key material. The session cannot be
// used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.resetLocked()
	s.closed = true
	s.logger.Info().Msg("Session closed")
}

func (s *Session) resetLocked() {
	if s.chain != nil {
		s.chain.Zero()
		s.chain = nil
	}
	s.seed.Zero()
	s.seed = Seed{}
	s.addrs = nil
	s.next = 0
	s.started = false
}

// takeSeed copies seed into fresh storage and zeroes the original.
func takeSeed(seed Seed) (Seed, error) {
	if seed.Len() != SeedSize || seed.IsZero() {
		return Seed{}, fmt.Errorf("%w: empty or wiped seed", ErrInvalidSeed)
	}
	raw := seed.Bytes()
	defer zeroBytes(raw)
	seed.Zero()
	return SeedFromBytes(raw)
}
