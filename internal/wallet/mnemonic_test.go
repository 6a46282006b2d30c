package wallet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tyler-smith/go-bip39"
)

func TestCodec_EncodeVectors(t *testing.T) {
	tests := []struct {
		entropy  string
		mnemonic string
	}{
		{
			strings.Repeat("00", 16),
			abandonAbout,
		},
		{
			strings.Repeat("7f", 16),
			"legal winner thank year wave sausage worth useful legal winner thank yellow",
		},
		{
			strings.Repeat("80", 16),
			"letter advice cage absurd amount doctor acoustic avoid letter advice cage above",
		},
		{
			strings.Repeat("ff", 16),
			strings.Repeat("zoo ", 11) + "wrong",
		},
		{
			strings.Repeat("00", 32),
			strings.Repeat("abandon ", 23) + "art",
		},
		{
			strings.Repeat("7f", 32),
			"legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth title",
		},
		{
			strings.Repeat("80", 32),
			"letter advice cage absurd amount doctor acoustic avoid letter advice cage absurd amount doctor acoustic avoid letter advice cage absurd amount doctor acoustic bless",
		},
		{
			strings.Repeat("ff", 32),
			strings.Repeat("zoo ", 23) + "vote",
		},
	}

	c := NewCodec(nil)
	for _, tt := range tests {
		m, err := c.Encode(mustHex(t, tt.entropy))
		if err != nil {
			t.Fatalf("Encode(%s) error: %v", tt.entropy, err)
		}
		if m.String() != tt.mnemonic {
			t.Errorf("Encode(%s) = %q, want %q", tt.entropy, m.String(), tt.mnemonic)
		}

		back, err := c.Decode(m)
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if !bytes.Equal(back, mustHex(t, tt.entropy)) {
			t.Errorf("Decode() = %x, want %s", back, tt.entropy)
		}
	}
}

func TestCodec_EncodeWordCount(t *testing.T) {
	c := NewCodec(nil)

	m12, _ := c.Encode(make([]byte, 16))
	if m12.Len() != 12 || m12.EntropyBits() != 128 {
		t.Errorf("128 bits: %d words, %d entropy bits", m12.Len(), m12.EntropyBits())
	}
	m24, _ := c.Encode(make([]byte, 32))
	if m24.Len() != 24 || m24.EntropyBits() != 256 {
		t.Errorf("256 bits: %d words, %d entropy bits", m24.Len(), m24.EntropyBits())
	}
}

func TestCodec_EncodeInvalidLength(t *testing.T) {
	c := NewCodec(nil)
	for _, n := range []int{0, 15, 17, 20, 24, 28, 33} {
		if _, err := c.Encode(make([]byte, n)); !errors.Is(err, ErrEntropyLength) {
			t.Errorf("Encode(%d bytes) error = %v, want ErrEntropyLength", n, err)
		}
	}
}

func TestCodec_MatchesReference(t *testing.T) {
	c := NewCodec(nil)
	for i := 0; i < 20; i++ {
		bits := 128
		if i%2 == 1 {
			bits = 256
		}
		entropy, err := bip39.NewEntropy(bits)
		if err != nil {
			t.Fatalf("NewEntropy() error: %v", err)
		}
		want, err := bip39.NewMnemonic(entropy)
		if err != nil {
			t.Fatalf("NewMnemonic() error: %v", err)
		}

		m, err := c.Encode(entropy)
		if err != nil {
			t.Fatalf("Encode() error: %v", err)
		}
		if m.String() != want {
			t.Errorf("Encode(%x) = %q, want %q", entropy, m.String(), want)
		}

		back, err := c.Decode(m)
		if err != nil {
			t.Fatalf("Decode() error: %v", err)
		}
		if !bytes.Equal(back, entropy) {
			t.Errorf("round trip = %x, want %x", back, entropy)
		}
	}
}

func TestCodec_Deterministic(t *testing.T) {
	c := NewCodec(nil)
	e := bytes.Repeat([]byte{0x3c}, 32)
	a, _ := c.Encode(e)
	b, _ := c.Encode(e)
	if a.String() != b.String() {
		t.Error("Encode should be deterministic")
	}
}

func TestCodec_SingleBitFlip(t *testing.T) {
	c := NewCodec(nil)
	e := make([]byte, 16)
	a, _ := c.Encode(e)
	e[15] ^= 0x01
	b, _ := c.Encode(e)

	if a.String() == b.String() {
		t.Fatal("flipping one bit should change the mnemonic")
	}
	if a.Words()[11] == b.Words()[11] {
		t.Error("last word carries the flipped bit and checksum and should change")
	}
}

func TestCodec_Parse(t *testing.T) {
	c := NewCodec(nil)

	m, err := c.Parse("  ABANDON abandon\tabandon abandon abandon abandon abandon abandon abandon abandon abandon About\n")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if m.String() != abandonAbout {
		t.Errorf("Parse() = %q, want %q", m.String(), abandonAbout)
	}
}

func TestCodec_ParseWordCount(t *testing.T) {
	c := NewCodec(nil)
	for _, n := range []int{0, 1, 11, 13, 23, 25} {
		text := strings.TrimSpace(strings.Repeat("abandon ", n))
		if _, err := c.Parse(text); !errors.Is(err, ErrWordCount) {
			t.Errorf("Parse(%d words) error = %v, want ErrWordCount", n, err)
		}
	}
}

func TestCodec_ParseUnknownWord(t *testing.T) {
	c := NewCodec(nil)
	text := strings.Repeat("abandon ", 5) + "bitcoin " + strings.Repeat("abandon ", 5) + "about"

	_, err := c.Parse(text)
	if !errors.Is(err, ErrUnknownWord) {
		t.Fatalf("Parse() error = %v, want ErrUnknownWord", err)
	}
	if !strings.Contains(err.Error(), "position 6") {
		t.Errorf("error should name the position: %v", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("unknown word should be a validation error")
	}
}

func TestCodec_Checksum(t *testing.T) {
	bad := strings.TrimSpace(strings.Repeat("abandon ", 12))

	strict := NewCodec(nil)
	if !strict.VerifiesChecksum() {
		t.Fatal("checksum verification should be on by default")
	}
	if _, err := strict.Parse(bad); !errors.Is(err, ErrChecksum) {
		t.Fatalf("Parse(bad checksum) error = %v, want ErrChecksum", err)
	}

	lenient := NewCodec(nil, WithChecksumVerification(false))
	m, err := lenient.Parse(bad)
	if err != nil {
		t.Fatalf("lenient Parse() error: %v", err)
	}
	entropy, err := lenient.Decode(m)
	if err != nil {
		t.Fatalf("lenient Decode() error: %v", err)
	}
	if !bytes.Equal(entropy, make([]byte, 16)) {
		t.Errorf("lenient Decode() = %x, want zeros", entropy)
	}

	// Lenient mode still rejects unknown words and bad counts.
	if _, err := lenient.Parse("abandon"); !errors.Is(err, ErrWordCount) {
		t.Errorf("lenient Parse(1 word) error = %v, want ErrWordCount", err)
	}
}

func TestMnemonicFromEntropy(t *testing.T) {
	c := NewCodec(nil)
	buf, _ := NewEntropyBuffer(128)

	if _, err := MnemonicFromEntropy(c, buf); !errors.Is(err, ErrBufferIncomplete) {
		t.Fatalf("MnemonicFromEntropy(empty) error = %v, want ErrBufferIncomplete", err)
	}

	buf.AppendString(strings.Repeat("0", 128))
	m, err := MnemonicFromEntropy(c, buf)
	if err != nil {
		t.Fatalf("MnemonicFromEntropy() error: %v", err)
	}
	if m.String() != abandonAbout {
		t.Errorf("MnemonicFromEntropy() = %q", m.String())
	}
}

func TestMnemonic_WordsCopy(t *testing.T) {
	m := mustParse(t, abandonAbout)
	w := m.Words()
	w[0] = "zoo"
	if m.Words()[0] != "abandon" {
		t.Error("Words() should return a copy")
	}
	if (Mnemonic{}).IsZero() != true {
		t.Error("zero Mnemonic should report IsZero")
	}
}
