package wallet

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// Supported entropy sizes in bits.
const (
	EntropyBits128 = 128 // 12 words
	EntropyBits256 = 256 // 24 words
)

// validEntropyBits reports whether bits is a supported entropy size.
func validEntropyBits(bits int) bool {
	return bits == EntropyBits128 || bits == EntropyBits256
}

// EntropyState is a snapshot of an EntropyBuffer's progress.
type EntropyState struct {
	Len      int
	Target   int
	Complete bool
}

// Remaining returns how many bits are still needed.
func (s EntropyState) Remaining() int {
	return s.Target - s.Len
}

// EntropyBuffer accumulates raw bits (e.g. coin tosses) until the target
// length is reached. It never grows past its target.
type EntropyBuffer struct {
	bits   []byte // one 0/1 value per element
	target int
}

// NewEntropyBuffer creates an empty buffer for 128 or 256 bits.
func NewEntropyBuffer(target int) (*EntropyBuffer, error) {
	if !validEntropyBits(target) {
		return nil, fmt.Errorf("%w: got %d", ErrEntropyLength, target)
	}
	return &EntropyBuffer{
		bits:   make([]byte, 0, target),
		target: target,
	}, nil
}

// EntropyBufferFromBytes creates a complete buffer holding the given entropy.
func EntropyBufferFromBytes(entropy []byte) (*EntropyBuffer, error) {
	buf, err := NewEntropyBuffer(len(entropy) * 8)
	if err != nil {
		return nil, err
	}
	for _, b := range entropy {
		for i := 7; i >= 0; i-- {
			buf.bits = append(buf.bits, (b>>uint(i))&1)
		}
	}
	return buf, nil
}

// RandomEntropyBuffer fills a buffer from the system random source.
// For learning and testing only: the tool is built around manual entropy.
func RandomEntropyBuffer(bits int) (*EntropyBuffer, error) {
	if !validEntropyBits(bits) {
		return nil, fmt.Errorf("%w: got %d", ErrEntropyLength, bits)
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return nil, fmt.Errorf("generate entropy: %w", err)
	}
	return EntropyBufferFromBytes(entropy)
}

// Append adds one bit (0 or 1). Fails once the buffer is full.
func (b *EntropyBuffer) Append(bit byte) (EntropyState, error) {
	if bit > 1 {
		return b.State(), fmt.Errorf("%w: got %d", ErrInvalidBit, bit)
	}
	if len(b.bits) >= b.target {
		return b.State(), ErrBufferFull
	}
	b.bits = append(b.bits, bit)
	return b.State(), nil
}

// AppendString adds a run of '0'/'1' characters. The whole string is
// validated first, so on error the buffer is unchanged.
func (b *EntropyBuffer) AppendString(s string) (EntropyState, error) {
	s = strings.TrimSpace(s)
	for i, c := range s {
		if c != '0' && c != '1' {
			return b.State(), fmt.Errorf("%w: character %d is %q", ErrInvalidBit, i+1, c)
		}
	}
	if len(b.bits)+len(s) > b.target {
		return b.State(), fmt.Errorf("%w: %d bits would exceed target %d", ErrBufferFull, len(b.bits)+len(s), b.target)
	}
	for _, c := range s {
		b.bits = append(b.bits, byte(c-'0'))
	}
	return b.State(), nil
}

// State returns the current progress.
func (b *EntropyBuffer) State() EntropyState {
	return EntropyState{
		Len:      len(b.bits),
		Target:   b.target,
		Complete: len(b.bits) == b.target,
	}
}

// Len returns the number of bits collected.
func (b *EntropyBuffer) Len() int {
	return len(b.bits)
}

// Target returns the target length in bits.
func (b *EntropyBuffer) Target() int {
	return b.target
}

// Complete reports whether the target length has been reached.
func (b *EntropyBuffer) Complete() bool {
	return len(b.bits) == b.target
}

// Bytes packs the collected bits big-endian into target/8 bytes.
// Fails unless the buffer is complete.
func (b *EntropyBuffer) Bytes() ([]byte, error) {
	if !b.Complete() {
		return nil, fmt.Errorf("%w: %d of %d bits", ErrBufferIncomplete, len(b.bits), b.target)
	}
	out := make([]byte, b.target/8)
	for i, bit := range b.bits {
		out[i/8] |= bit << uint(7-i%8)
	}
	return out, nil
}

// String returns the collected bits as a string of '0' and '1'.
func (b *EntropyBuffer) String() string {
	var sb strings.Builder
	sb.Grow(len(b.bits))
	for _, bit := range b.bits {
		sb.WriteByte('0' + bit)
	}
	return sb.String()
}

// Reset discards all collected bits, keeping the target.
func (b *EntropyBuffer) Reset() {
	for i := range b.bits {
		b.bits[i] = 0
	}
	b.bits = b.bits[:0]
}
