package wallet

import (
	"encoding/binary"
	"fmt"

	"github.com/tyler-smith/go-bip32"

	"github.com/Klingon-tech/seedsim/pkg/crypto"
)

// masterHMACKey keys the master key HMAC.
var masterHMACKey = []byte("Bitcoin seed")

// KeyVersion is the 4-byte version prefix of a serialized extended key.
type KeyVersion [4]byte

// ExtendedKey is a hierarchical deterministic key: key material plus chain
// code and its position in the tree. Private keys also carry their public key.
type ExtendedKey struct {
	priv      []byte // 32-byte scalar, nil for public-only keys
	pub       []byte // 33-byte compressed point
	chainCode []byte
	depth     uint8
	index     uint32
	parentFP  [4]byte
}

// IsPrivate returns true if this key contains a private key.
func (k *ExtendedKey) IsPrivate() bool {
	return k.priv != nil
}

// Depth returns the derivation depth (0 for master).
func (k *ExtendedKey) Depth() uint8 {
	return k.depth
}

// ChildIndex returns the index this key was derived at, including the
// hardened offset.
func (k *ExtendedKey) ChildIndex() uint32 {
	return k.index
}

// Hardened reports whether the key was derived with a hardened index.
func (k *ExtendedKey) Hardened() bool {
	return k.index >= HardenedOffset
}

// ParentFingerprint returns the fingerprint of the parent key.
func (k *ExtendedKey) ParentFingerprint() [4]byte {
	return k.parentFP
}

// Fingerprint returns this key's own fingerprint.
func (k *ExtendedKey) Fingerprint() [4]byte {
	return crypto.Fingerprint(k.pub)
}

// PrivateKeyBytes returns a copy of the 32-byte private key, or nil for
// public-only keys.
func (k *ExtendedKey) PrivateKeyBytes() []byte {
	if k.priv == nil {
		return nil
	}
	return append([]byte(nil), k.priv...)
}

// PublicKeyBytes returns a copy of the compressed 33-byte public key.
func (k *ExtendedKey) PublicKeyBytes() []byte {
	return append([]byte(nil), k.pub...)
}

// ChainCode returns a copy of the chain code.
func (k *ExtendedKey) ChainCode() []byte {
	return append([]byte(nil), k.chainCode...)
}

// Neuter returns a public-key-only copy (for watch-only wallets).
func (k *ExtendedKey) Neuter() *ExtendedKey {
	return &ExtendedKey{
		pub:       k.PublicKeyBytes(),
		chainCode: k.ChainCode(),
		depth:     k.depth,
		index:     k.index,
		parentFP:  k.parentFP,
	}
}

// Zero overwrites private key material and chain code.
func (k *ExtendedKey) Zero() {
	zeroBytes(k.priv)
	zeroBytes(k.chainCode)
	k.priv = nil
}

// Serialize encodes the key in base58check with the given version.
func (k *ExtendedKey) Serialize(version KeyVersion) string {
	child := make([]byte, 4)
	binary.BigEndian.PutUint32(child, k.index)
	bk := &bip32.Key{
		Version:     version[:],
		Depth:       k.depth,
		ChildNumber: child,
		FingerPrint: append([]byte(nil), k.parentFP[:]...),
		ChainCode:   k.ChainCode(),
	}
	if k.priv != nil {
		bk.Key = k.PrivateKeyBytes()
		bk.IsPrivate = true
	} else {
		bk.Key = k.PublicKeyBytes()
	}
	s := bk.B58Serialize()
	zeroBytes(bk.Key)
	return s
}

// KeyTree derives extended keys using an injected curve.
type KeyTree struct {
	curve crypto.Curve
}

// NewKeyTree creates a key tree. A nil curve returns ErrCapabilityUnavailable.
func NewKeyTree(curve crypto.Curve) (*KeyTree, error) {
	if curve == nil {
		return nil, ErrCapabilityUnavailable
	}
	return &KeyTree{curve: curve}, nil
}

// Master derives the master key from a seed.
func (t *KeyTree) Master(seed Seed) (*ExtendedKey, error) {
	if seed.Len() != SeedSize || seed.IsZero() {
		return nil, fmt.Errorf("%w: empty or wiped seed", ErrInvalidSeed)
	}
	raw := seed.Bytes()
	il, ir := crypto.HMACSHA512(masterHMACKey, raw)
	zeroBytes(raw)

	pub, err := t.curve.PublicKey(il)
	if err != nil {
		zeroBytes(il)
		return nil, fmt.Errorf("%w: master key: %v", ErrDerivation, err)
	}
	return &ExtendedKey{
		priv:      il,
		pub:       pub,
		chainCode: ir,
	}, nil
}

// Child derives the child at index. Indices at or above HardenedOffset
// select hardened derivation, which requires a private parent.
func (t *KeyTree) Child(parent *ExtendedKey, index uint32) (*ExtendedKey, error) {
	if parent.depth == 255 {
		return nil, fmt.Errorf("%w: maximum depth reached", ErrDerivation)
	}
	ser := make([]byte, 4)
	binary.BigEndian.PutUint32(ser, index)

	var il, ir []byte
	if index >= HardenedOffset {
		if parent.priv == nil {
			return nil, fmt.Errorf("%w: hardened child %d of public key", ErrDerivation, index)
		}
		il, ir = crypto.HMACSHA512(parent.chainCode, []byte{0x00}, parent.priv, ser)
	} else {
		il, ir = crypto.HMACSHA512(parent.chainCode, parent.pub, ser)
	}
	defer zeroBytes(il)

	child := &ExtendedKey{
		chainCode: ir,
		depth:     parent.depth + 1,
		index:     index,
		parentFP:  parent.Fingerprint(),
	}

	var err error
	if parent.priv != nil {
		child.priv, err = t.curve.TweakPrivate(parent.priv, il)
		if err == nil {
			child.pub, err = t.curve.PublicKey(child.priv)
		}
	} else {
		child.pub, err = t.curve.TweakPublic(parent.pub, il)
	}
	if err != nil {
		child.Zero()
		return nil, fmt.Errorf("%w: derive child %d: %v", ErrDerivation, index, err)
	}
	return child, nil
}

// DerivePath derives a key along path, starting at root.
func (t *KeyTree) DerivePath(root *ExtendedKey, path Path) (*ExtendedKey, error) {
	current := root
	for _, idx := range path {
		child, err := t.Child(current, idx)
		// Intermediate keys are not handed out.
		if current != root {
			current.Zero()
		}
		if err != nil {
			return nil, err
		}
		current = child
	}
	if current == root {
		return root.clone(), nil
	}
	return current, nil
}

// ParseExtendedKey decodes a serialized extended key and validates its key
// material on the curve.
func (t *KeyTree) ParseExtendedKey(s string) (*ExtendedKey, KeyVersion, error) {
	var version KeyVersion
	bk, err := bip32.B58Deserialize(s)
	if err != nil {
		return nil, version, fmt.Errorf("%w: extended key: %v", ErrValidation, err)
	}
	copy(version[:], bk.Version)

	k := &ExtendedKey{
		chainCode: append([]byte(nil), bk.ChainCode...),
		depth:     bk.Depth,
		index:     binary.BigEndian.Uint32(bk.ChildNumber),
	}
	copy(k.parentFP[:], bk.FingerPrint)

	if bk.IsPrivate {
		k.priv = append([]byte(nil), bk.Key...)
		zeroBytes(bk.Key)
		k.pub, err = t.curve.PublicKey(k.priv)
	} else {
		k.pub, err = t.curve.CompressPublicKey(bk.Key)
	}
	if err != nil {
		k.Zero()
		return nil, version, fmt.Errorf("%w: extended key material: %v", ErrValidation, err)
	}
	return k, version, nil
}

func (k *ExtendedKey) clone() *ExtendedKey {
	c := k.Neuter()
	c.priv = k.PrivateKeyBytes()
	return c
}
