package crypto

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Curve errors.
var (
	ErrInvalidScalar    = errors.New("scalar is zero or not below the curve order")
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrPointAtInfinity  = errors.New("result is the point at infinity")
)

// PrivateKeySize and PublicKeySize are the serialized key lengths.
const (
	PrivateKeySize = 32
	PublicKeySize  = 33
)

// Curve is the elliptic-curve capability consumed by key derivation and
// address encoding. Implementations never keep references to their inputs.
type Curve interface {
	// PublicKey returns the compressed public key for a 32-byte private scalar.
	PublicKey(priv []byte) ([]byte, error)
	// TweakPrivate returns (priv + tweak) mod n.
	TweakPrivate(priv, tweak []byte) ([]byte, error)
	// TweakPublic returns pub + tweak*G as a compressed point.
	TweakPublic(pub, tweak []byte) ([]byte, error)
	// CompressPublicKey parses a compressed or uncompressed point and
	// returns its compressed encoding.
	CompressPublicKey(pub []byte) ([]byte, error)
}

// Secp256k1 implements Curve on top of the decred secp256k1 package.
type Secp256k1 struct{}

// NewSecp256k1 returns the default secp256k1 curve capability.
func NewSecp256k1() Secp256k1 {
	return Secp256k1{}
}

// parseScalar loads a 32-byte big-endian scalar, rejecting zero and values >= n.
func parseScalar(b []byte) (*secp256k1.ModNScalar, error) {
	if len(b) != PrivateKeySize {
		return nil, fmt.Errorf("scalar must be %d bytes, got %d", PrivateKeySize, len(b))
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(b); overflow || s.IsZero() {
		return nil, ErrInvalidScalar
	}
	return &s, nil
}

// parseTweak parses a 32-byte tweak. Zero is a valid tweak; only values at
// or above the curve order are rejected.
func parseTweak(b []byte) (*secp256k1.ModNScalar, error) {
	if len(b) != PrivateKeySize {
		return nil, fmt.Errorf("tweak must be %d bytes, got %d", PrivateKeySize, len(b))
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(b); overflow {
		return nil, ErrInvalidScalar
	}
	return &s, nil
}

// PublicKey returns the compressed 33-byte public key for priv.
func (Secp256k1) PublicKey(priv []byte) ([]byte, error) {
	s, err := parseScalar(priv)
	if err != nil {
		return nil, err
	}
	key := secp256k1.NewPrivateKey(s)
	pub := key.PubKey().SerializeCompressed()
	key.Zero()
	return pub, nil
}

// TweakPrivate returns (priv + tweak) mod n as 32 bytes.
func (Secp256k1) TweakPrivate(priv, tweak []byte) ([]byte, error) {
	k, err := parseScalar(priv)
	if err != nil {
		return nil, fmt.Errorf("parent key: %w", err)
	}
	t, err := parseTweak(tweak)
	if err != nil {
		k.Zero()
		return nil, fmt.Errorf("tweak: %w", err)
	}
	k.Add(t)
	if k.IsZero() {
		return nil, ErrInvalidScalar
	}
	out := k.Bytes()
	k.Zero()
	t.Zero()
	return out[:], nil
}

// TweakPublic returns pub + tweak*G as a compressed point.
func (Secp256k1) TweakPublic(pub, tweak []byte) ([]byte, error) {
	parent, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	t, err := parseTweak(tweak)
	if err != nil {
		return nil, fmt.Errorf("tweak: %w", err)
	}
	if t.IsZero() {
		return parent.SerializeCompressed(), nil
	}

	var tG, p, sum secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(t, &tG)
	parent.AsJacobian(&p)
	secp256k1.AddNonConst(&tG, &p, &sum)
	if (sum.X.IsZero() && sum.Y.IsZero()) || sum.Z.IsZero() {
		return nil, ErrPointAtInfinity
	}
	sum.ToAffine()
	return secp256k1.NewPublicKey(&sum.X, &sum.Y).SerializeCompressed(), nil
}

// CompressPublicKey returns the compressed encoding of pub.
func (Secp256k1) CompressPublicKey(pub []byte) ([]byte, error) {
	key, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return key.SerializeCompressed(), nil
}
