package keyexport

import (
	"errors"
	"fmt"
)

// Error taxonomy. The codec's own failures in Export/Import return one of
// these sentinels or *UnsupportedVersionError, matching the distinction
// between a programmer error (ErrBadInput), a corrupt or foreign file
// (ErrMalformedArmor, ErrMalformedEnvelope, *UnsupportedVersionError), and
// an authentication/policy failure (ErrAuthFailure, ErrEncryptionDisabled,
// ErrEmptyExport). Errors from the store, the RNG, key derivation or the
// cipher are returned wrapped with a "keyexport:" context prefix instead.
var (
	// ErrMalformedArmor means the input bytes are not valid PEM-style
	// armor: "not a valid key export file".
	ErrMalformedArmor = errors.New("keyexport: not a valid key export file")

	// ErrMalformedEnvelope means the dearmored bytes are too short to be a
	// valid envelope.
	ErrMalformedEnvelope = errors.New("keyexport: not a valid key export file")

	// ErrAuthFailure covers both MAC mismatch and any failure to parse the
	// decrypted plaintext as JSON. The two are deliberately collapsed into
	// one indistinguishable outcome so a malleable ciphertext can never be
	// used to distinguish "wrong passphrase" from "corrupted format".
	ErrAuthFailure = errors.New("keyexport: wrong passphrase or corrupted file")

	// ErrEncryptionDisabled is returned when the target store reports
	// encryption is not enabled.
	ErrEncryptionDisabled = errors.New("keyexport: encryption is not enabled")

	// ErrEmptyExport is returned when no session survived reconstruction
	// and there is nothing to export.
	ErrEmptyExport = errors.New("keyexport: no session keys to export")

	// ErrBadInput signals a programmer error: a caller-supplied parameter
	// that should never occur in well-formed code (e.g. zero iterations).
	ErrBadInput = errors.New("keyexport: bad input")
)

// UnsupportedVersionError reports an envelope version byte this codec does
// not know how to decode.
type UnsupportedVersionError struct {
	Version byte
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("keyexport: unsupported key export version: %d", e.Version)
}

// Is lets errors.Is/errors.As treat UnsupportedVersionError uniformly
// without callers needing to know its concrete type up front.
func (e *UnsupportedVersionError) Is(target error) bool {
	_, ok := target.(*UnsupportedVersionError)
	return ok
}
