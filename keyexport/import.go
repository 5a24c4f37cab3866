package keyexport

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/keyvault-project/megolm-export/internal/armor"
	"github.com/keyvault-project/megolm-export/internal/envelope"
	"github.com/keyvault-project/megolm-export/internal/kdf"
)

// Import parses, authenticates, and decrypts an armored key-export blob and
// hands every decoded session record to store, returning the number of
// records accepted.
//
// Import never returns a different error for "wrong passphrase" than for
// "the decrypted bytes aren't valid JSON" (ErrAuthFailure covers both) so
// that a malleable ciphertext can't be used as a format oracle.
func Import(ctx context.Context, store SessionStore, data []byte, passphrase string) (int, error) {
	raw, err := armor.Unwrap(data)
	if err != nil {
		return 0, ErrMalformedArmor
	}

	parsed, err := envelope.Parse(raw)
	if err != nil {
		var uv *envelope.UnsupportedVersionError
		if ok := asUnsupportedVersion(err, &uv); ok {
			return 0, &UnsupportedVersionError{Version: uv.Version}
		}
		return 0, ErrMalformedEnvelope
	}

	passphraseBytes := []byte(passphrase)
	defer zero(passphraseBytes)

	derived, err := kdf.Key(passphraseBytes, parsed.Salt, int(parsed.Rounds), derivedLen)
	if err != nil {
		return 0, fmt.Errorf("keyexport: derive key: %w", err)
	}
	defer zero(derived)

	aesKey, hmacKey := derived[:32], derived[32:64]

	mac := hmac.New(sha256.New, hmacKey)
	mac.Write(parsed.MACInput)
	expectedMAC := mac.Sum(nil)

	if !constantTimeEqual(expectedMAC, parsed.MAC) {
		return 0, ErrAuthFailure
	}

	plaintext, err := ctrXOR(aesKey, parsed.IV, parsed.Ciphertext)
	if err != nil {
		return 0, err
	}

	// An empty ciphertext decrypts to an empty record set.
	var records []SessionRecord
	if len(plaintext) > 0 {
		if err := json.Unmarshal(plaintext, &records); err != nil {
			// A ciphertext that passed the MAC cannot usually fail to parse,
			// but the check is defense-in-depth: collapse it into the same
			// outcome as an auth failure so no format oracle is exposed.
			return 0, ErrAuthFailure
		}
	}

	count := 0
	for _, rec := range records {
		if rec.SenderClaimedKeys == nil {
			rec.SenderClaimedKeys = map[string]string{}
		}
		if err := store.SetInboundGroupSession(ctx, rec, true); err != nil {
			continue
		}
		count++
	}

	enabled, err := store.EncryptionEnabled(ctx)
	if err != nil {
		return count, fmt.Errorf("keyexport: check encryption status: %w", err)
	}
	if !enabled {
		return count, ErrEncryptionDisabled
	}

	return count, nil
}

// asUnsupportedVersion is a small errors.As shim kept local to this file so
// import.go doesn't need to import "errors" just for one call site.
func asUnsupportedVersion(err error, target **envelope.UnsupportedVersionError) bool {
	uv, ok := err.(*envelope.UnsupportedVersionError)
	if !ok {
		return false
	}
	*target = uv
	return true
}
