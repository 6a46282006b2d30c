package wallet

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this package matches exactly
// one of these with errors.Is.
var (
	// ErrValidation is returned for malformed input; no derivation is attempted.
	ErrValidation = errors.New("validation failed")

	// ErrChecksum is returned when a mnemonic's checksum does not match its entropy.
	ErrChecksum = errors.New("mnemonic checksum mismatch")

	// ErrCapabilityUnavailable is returned when curve math is not available.
	ErrCapabilityUnavailable = errors.New("curve capability unavailable")

	// ErrDerivation is returned for failures inside key expansion or encoding.
	// Retrying with the same inputs cannot succeed.
	ErrDerivation = errors.New("derivation failed")
)

// Validation errors.
var (
	ErrEntropyLength    = fmt.Errorf("%w: entropy must be 128 or 256 bits", ErrValidation)
	ErrWordCount        = fmt.Errorf("%w: word count must be 12 or 24", ErrValidation)
	ErrUnknownWord      = fmt.Errorf("%w: word not in dictionary", ErrValidation)
	ErrInvalidBit       = fmt.Errorf("%w: entropy bit must be 0 or 1", ErrValidation)
	ErrBufferFull       = fmt.Errorf("%w: entropy buffer is full", ErrValidation)
	ErrBufferIncomplete = fmt.Errorf("%w: entropy buffer is incomplete", ErrValidation)
	ErrInvalidPath      = fmt.Errorf("%w: invalid derivation path", ErrValidation)
	ErrInvalidSeed      = fmt.Errorf("%w: invalid seed", ErrValidation)
	ErrInvalidCount     = fmt.Errorf("%w: invalid address count", ErrValidation)
	ErrNoMnemonic       = fmt.Errorf("%w: no mnemonic", ErrValidation)
	ErrAddressType      = fmt.Errorf("%w: unsupported address type", ErrValidation)
	ErrInvalidAddress   = fmt.Errorf("%w: invalid address", ErrValidation)
	ErrInvalidDict      = fmt.Errorf("%w: invalid dictionary", ErrValidation)
	ErrNoEntropy        = fmt.Errorf("%w: entropy collection not started", ErrValidation)
)

// Session and flow state errors.
var (
	ErrSessionClosed = errors.New("session closed")
	ErrNoSession     = errors.New("no active session")
	ErrRestarted     = errors.New("flow restarted")
	ErrBusy          = errors.New("seed derivation already running")
)
