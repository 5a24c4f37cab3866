package keyexport

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"

	"github.com/keyvault-project/megolm-export/internal/armor"
	"github.com/keyvault-project/megolm-export/internal/envelope"
	"github.com/keyvault-project/megolm-export/internal/kdf"
	"github.com/keyvault-project/megolm-export/internal/logger"
)

const (
	// defaultRounds is the PBKDF2 iteration count this codec writes on
	// export. Import accepts any value found in the envelope, so this
	// constant only governs what we produce, never what we accept.
	defaultRounds = 500_000

	saltLen    = 16
	ivLen      = 16
	derivedLen = 64 // aes_key (32) || hmac_key (32)
)

// Export collects every reconstructible session from store, serializes them
// as a session-record array, and returns an armored, passphrase-encrypted
// blob using defaultRounds PBKDF2 iterations, in the format described by
// the envelope/armor packages.
//
// It fails with ErrEmptyExport if no session survives reconstruction.
func Export(ctx context.Context, store SessionStore, passphrase string) ([]byte, error) {
	return ExportWithRounds(ctx, store, passphrase, defaultRounds)
}

// ExportWithRounds behaves like Export but writes rounds PBKDF2 iterations
// into the envelope instead of defaultRounds. CLI configuration uses this
// to make the cost of future imports tunable without touching Import,
// which always honors whatever rounds value it finds in the envelope.
func ExportWithRounds(ctx context.Context, store SessionStore, passphrase string, rounds int) ([]byte, error) {
	if rounds < 1 {
		return nil, ErrBadInput
	}

	records, err := collectRecords(ctx, store)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyExport
	}

	plaintext, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("keyexport: marshal session records: %w", err)
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keyexport: generate salt: %w", err)
	}
	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("keyexport: generate iv: %w", err)
	}

	passphraseBytes := []byte(passphrase)
	defer zero(passphraseBytes)

	derived, err := kdf.Key(passphraseBytes, salt, rounds, derivedLen)
	if err != nil {
		return nil, fmt.Errorf("keyexport: derive key: %w", err)
	}
	defer zero(derived)

	aesKey, hmacKey := derived[:32], derived[32:64]

	ciphertext, err := ctrXOR(aesKey, iv, plaintext)
	if err != nil {
		return nil, err
	}

	env, err := envelope.Build(envelope.Version, salt, iv, uint32(rounds), ciphertext, hmacKey)
	if err != nil {
		return nil, err
	}

	return armor.Wrap(env), nil
}

// collectRecords queries the store for every inbound session and converts
// the ones that reconstruct successfully into session records. Sessions
// that fail to reconstruct or report themselves invalid are skipped with a
// warn-level log line rather than aborting the whole export.
func collectRecords(ctx context.Context, store SessionStore) ([]SessionRecord, error) {
	sessions, err := store.ListInboundSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("keyexport: list inbound sessions: %w", err)
	}

	pickleKey, err := store.UserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("keyexport: resolve user id: %w", err)
	}

	records := make([]SessionRecord, 0, len(sessions))

	for _, s := range sessions {
		view, err := store.Reconstruct(ctx, s, pickleKey)
		if err != nil {
			logger.Warn("skipping session during export",
				logger.String("session_id", s.ID),
				logger.Error(err),
			)
			continue
		}
		if !view.IsValid() {
			logger.Warn("skipping invalid session during export",
				logger.String("session_id", s.ID),
			)
			continue
		}

		sessionKey, err := view.ExportAtFirstKnownIndex()
		if err != nil {
			logger.Warn("skipping session during export",
				logger.String("session_id", s.ID),
				logger.Error(err),
			)
			continue
		}

		claimedKeys := view.SenderClaimedKeys()
		if claimedKeys == nil {
			claimedKeys = map[string]string{}
		}

		chain := view.ForwardingChain()
		if chain == nil {
			chain = []string{}
		}

		records = append(records, SessionRecord{
			Algorithm:                    "m.megolm.v1.aes-sha2",
			RoomID:                       view.RoomID(),
			SessionID:                    view.SessionID(),
			SenderKey:                    view.SenderKey(),
			SenderClaimedKeys:            claimedKeys,
			ForwardingCurve25519KeyChain: chain,
			SessionKey:                   sessionKey,
		})
	}

	return records, nil
}

// ctrXOR runs AES-256-CTR over data using iv as the initial 16-byte counter
// block, not as a separate nonce. CTR mode is its own inverse, so this same
// function both encrypts (Export) and decrypts (Import).
func ctrXOR(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("keyexport: create cipher: %w", err)
	}

	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)
	return out, nil
}

// zero overwrites b with zero bytes in place.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
