// Package wallet implements the coin-toss to address derivation pipeline:
// entropy collection, mnemonic encoding, seed stretching, hierarchical key
// derivation and address encoding.
package wallet

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/seedsim/pkg/crypto"
)

// Word counts for the supported entropy sizes.
const (
	Words12 = 12
	Words24 = 24
)

// WordsForBits returns the mnemonic word count for an entropy size.
func WordsForBits(bits int) int {
	return (bits + bits/32) / 11
}

// BitsForWords returns the entropy size for a mnemonic word count.
func BitsForWords(words int) int {
	return words * 11 * 32 / 33
}

// Mnemonic is an ordered word sequence from a Dictionary. The zero value
// holds no words and is rejected by seed derivation.
type Mnemonic struct {
	words []string
}

// Words returns a copy of the words.
func (m Mnemonic) Words() []string {
	out := make([]string, len(m.words))
	copy(out, m.words)
	return out
}

// Len returns the number of words.
func (m Mnemonic) Len() int {
	return len(m.words)
}

// EntropyBits returns the entropy length the mnemonic encodes.
func (m Mnemonic) EntropyBits() int {
	return BitsForWords(len(m.words))
}

// IsZero reports whether the mnemonic holds no words.
func (m Mnemonic) IsZero() bool {
	return len(m.words) == 0
}

// String joins the words with single spaces.
func (m Mnemonic) String() string {
	return strings.Join(m.words, " ")
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithChecksumVerification toggles checksum checks in Decode and Parse.
// Verification is on by default; turning it off accepts well-formed phrases
// whose last word does not match the entropy.
func WithChecksumVerification(on bool) CodecOption {
	return func(c *Codec) {
		c.verifyChecksum = on
	}
}

// Codec converts between entropy and mnemonics over a Dictionary.
type Codec struct {
	dict           *Dictionary
	verifyChecksum bool
}

// NewCodec creates a codec. A nil dictionary selects English.
func NewCodec(dict *Dictionary, opts ...CodecOption) *Codec {
	if dict == nil {
		dict = English()
	}
	c := &Codec{dict: dict, verifyChecksum: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dictionary returns the codec's word list.
func (c *Codec) Dictionary() *Dictionary {
	return c.dict
}

// VerifiesChecksum reports whether checksum verification is enabled.
func (c *Codec) VerifiesChecksum() bool {
	return c.verifyChecksum
}

// Encode converts 16 or 32 bytes of entropy into a 12 or 24 word mnemonic.
func (c *Codec) Encode(entropy []byte) (Mnemonic, error) {
	bits := len(entropy) * 8
	if !validEntropyBits(bits) {
		return Mnemonic{}, fmt.Errorf("%w: got %d bits", ErrEntropyLength, bits)
	}

	sum := crypto.Hash(entropy)
	data := make([]byte, 0, len(entropy)+1)
	data = append(data, entropy...)
	data = append(data, sum[0]) // at most 8 checksum bits are used

	n := WordsForBits(bits)
	words := make([]string, n)
	for i := 0; i < n; i++ {
		words[i] = c.dict.Word(readBits11(data, i*11))
	}
	return Mnemonic{words: words}, nil
}

// Decode recovers the entropy from a mnemonic. With checksum verification
// enabled a mismatch returns ErrChecksum.
func (c *Codec) Decode(m Mnemonic) ([]byte, error) {
	n := len(m.words)
	if n != Words12 && n != Words24 {
		return nil, fmt.Errorf("%w: got %d", ErrWordCount, n)
	}

	bits := BitsForWords(n)
	data := make([]byte, bits/8+1)
	for i, w := range m.words {
		idx, ok := c.dict.Index(w)
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d", ErrUnknownWord, w, i+1)
		}
		writeBits11(data, i*11, idx)
	}

	entropy := data[:bits/8]
	if c.verifyChecksum {
		csBits := uint(bits / 32)
		sum := crypto.Hash(entropy)
		want := sum[0] >> (8 - csBits)
		got := data[bits/8] >> (8 - csBits)
		if want != got {
			return nil, ErrChecksum
		}
	}
	out := make([]byte, len(entropy))
	copy(out, entropy)
	return out, nil
}

// Parse splits text on whitespace, lowercases each word and validates the
// result. Word count is checked before any lookup or hashing.
func (c *Codec) Parse(text string) (Mnemonic, error) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) != Words12 && len(fields) != Words24 {
		return Mnemonic{}, fmt.Errorf("%w: got %d", ErrWordCount, len(fields))
	}
	m := Mnemonic{words: fields}
	if _, err := c.Decode(m); err != nil {
		return Mnemonic{}, err
	}
	return m, nil
}

// MnemonicFromEntropy encodes a complete entropy buffer.
func MnemonicFromEntropy(c *Codec, buf *EntropyBuffer) (Mnemonic, error) {
	entropy, err := buf.Bytes()
	if err != nil {
		return Mnemonic{}, err
	}
	defer zeroBytes(entropy)
	return c.Encode(entropy)
}

// readBits11 reads the 11-bit big-endian group starting at bit offset off.
func readBits11(data []byte, off int) int {
	v := 0
	for i := 0; i < 11; i++ {
		p := off + i
		v = v<<1 | int(data[p/8]>>uint(7-p%8)&1)
	}
	return v
}

// writeBits11 writes v as an 11-bit big-endian group at bit offset off.
func writeBits11(data []byte, off, v int) {
	for i := 0; i < 11; i++ {
		p := off + i
		if v>>uint(10-i)&1 == 1 {
			data[p/8] |= 1 << uint(7-p%8)
		}
	}
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
