package wallet

import (
	"encoding/hex"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Klingon-tech/seedsim/pkg/crypto"
)

// Standard BIP-39 vector: 128 zero bits.
var abandonAbout = strings.Repeat("abandon ", 11) + "about"

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex.DecodeString(%q) error: %v", s, err)
	}
	return b
}

func mustParse(t *testing.T, text string) Mnemonic {
	t.Helper()
	m, err := NewCodec(nil).Parse(text)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return m
}

// testSeed returns the seed of "abandon" x11 + "about" with an empty
// passphrase, the root of the BIP-44/84 reference vectors.
func testSeed(t *testing.T) Seed {
	t.Helper()
	seed, err := DeriveSeed(mustParse(t, abandonAbout), "")
	if err != nil {
		t.Fatalf("DeriveSeed() error: %v", err)
	}
	return seed
}

// countingCurve wraps a curve and counts calls.
type countingCurve struct {
	crypto.Curve
	publicKey    atomic.Int64
	tweakPrivate atomic.Int64
	tweakPublic  atomic.Int64
}

func newCountingCurve() *countingCurve {
	return &countingCurve{Curve: crypto.NewSecp256k1()}
}

func (c *countingCurve) PublicKey(priv []byte) ([]byte, error) {
	c.publicKey.Add(1)
	return c.Curve.PublicKey(priv)
}

func (c *countingCurve) TweakPrivate(priv, tweak []byte) ([]byte, error) {
	c.tweakPrivate.Add(1)
	return c.Curve.TweakPrivate(priv, tweak)
}

func (c *countingCurve) TweakPublic(pub, tweak []byte) ([]byte, error) {
	c.tweakPublic.Add(1)
	return c.Curve.TweakPublic(pub, tweak)
}

// failingCurve rejects every private tweak.
type failingCurve struct {
	crypto.Curve
}

func (failingCurve) TweakPrivate(priv, tweak []byte) ([]byte, error) {
	return nil, crypto.ErrInvalidScalar
}
