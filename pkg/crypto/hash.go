// Package crypto provides the hashing and curve primitives used by seedsim.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"

	"github.com/btcsuite/btcd/btcutil"
)

// Hash computes a SHA-256 hash of the input data.
func Hash(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Hash160 computes RIPEMD160(SHA256(data)), the public key hash used by
// both legacy and segwit v0 addresses.
func Hash160(data []byte) []byte {
	return btcutil.Hash160(data)
}

// HMACSHA512 computes HMAC-SHA512(key, data...) and returns the left and
// right 32-byte halves of the digest.
func HMACSHA512(key []byte, data ...[]byte) (il, ir []byte) {
	mac := hmac.New(sha512.New, key)
	for _, d := range data {
		mac.Write(d)
	}
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// Fingerprint returns the first 4 bytes of Hash160(pubKey), used to
// identify a parent key in serialized extended keys.
func Fingerprint(pubKey []byte) [4]byte {
	var fp [4]byte
	copy(fp[:], Hash160(pubKey)[:4])
	return fp
}
