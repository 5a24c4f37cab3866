// Package kdf derives the envelope's AES/HMAC sub-keys from a passphrase,
// using PBKDF2-HMAC-SHA-512 as required by spec.md's envelope format.
package kdf

import (
	"crypto/sha512"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

// ErrBadInput is returned when the iteration count or requested output
// length is not positive.
var ErrBadInput = errors.New("kdf: iterations and length must be >= 1")

// Key derives length bytes of key material from password and salt using
// PBKDF2-HMAC-SHA-512 with the given iteration count.
func Key(password, salt []byte, iterations, length int) ([]byte, error) {
	if iterations < 1 || length < 1 {
		return nil, ErrBadInput
	}

	return pbkdf2.Key(password, salt, iterations, length, sha512.New), nil
}
