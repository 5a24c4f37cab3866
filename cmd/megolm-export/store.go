package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keyvault-project/megolm-export/store/memory"
)

// accountFile is the on-disk shape of <store>/account.json.
type accountFile struct {
	UserID            string `json:"user_id"`
	EncryptionEnabled bool   `json:"encryption_enabled"`
}

// sessionFile is the on-disk shape of one entry in <store>/sessions.json.
type sessionFile struct {
	ID                string            `json:"id"`
	Valid             bool              `json:"valid"`
	RoomID            string            `json:"room_id"`
	SessionID         string            `json:"session_id"`
	SenderKey         string            `json:"sender_key"`
	SenderClaimedKeys map[string]string `json:"sender_claimed_keys"`
	ForwardingChain   []string          `json:"forwarding_chain"`
	SessionKey        string            `json:"session_key"`
}

func accountPath(dir string) string  { return filepath.Join(dir, "account.json") }
func sessionsPath(dir string) string { return filepath.Join(dir, "sessions.json") }

// loadStore reads a session store directory into an in-memory store. A
// missing account.json is treated as a fresh store for the given fallback
// user ID, with encryption enabled, so import can be pointed at an empty
// directory.
func loadStore(dir, fallbackUserID string) (*memory.Store, error) {
	acct := accountFile{UserID: fallbackUserID, EncryptionEnabled: true}
	if data, err := os.ReadFile(accountPath(dir)); err == nil {
		if err := json.Unmarshal(data, &acct); err != nil {
			return nil, fmt.Errorf("parse account.json: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read account.json: %w", err)
	}

	store := memory.NewStore(acct.UserID, acct.EncryptionEnabled)

	data, err := os.ReadFile(sessionsPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("read sessions.json: %w", err)
	}

	var sessions []sessionFile
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("parse sessions.json: %w", err)
	}

	for _, s := range sessions {
		store.PutSession(s.ID, s.Valid, s.RoomID, s.SessionID, s.SenderKey, s.SenderClaimedKeys, s.ForwardingChain, s.SessionKey)
	}

	return store, nil
}

// saveStore writes every session currently held by store back to dir,
// creating the directory if needed. It is used after import to persist
// newly accepted sessions.
func saveStore(ctx context.Context, dir string, store *memory.Store) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	userID, err := store.UserID(ctx)
	if err != nil {
		return err
	}
	enabled, err := store.EncryptionEnabled(ctx)
	if err != nil {
		return err
	}

	acct := accountFile{UserID: userID, EncryptionEnabled: enabled}
	acctJSON, err := json.MarshalIndent(acct, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal account.json: %w", err)
	}
	if err := os.WriteFile(accountPath(dir), acctJSON, 0600); err != nil {
		return fmt.Errorf("write account.json: %w", err)
	}

	sessions, err := store.ListInboundSessions(ctx)
	if err != nil {
		return err
	}

	out := make([]sessionFile, 0, len(sessions))
	for _, ss := range sessions {
		view, err := store.Reconstruct(ctx, ss, "")
		if err != nil {
			return fmt.Errorf("reconstruct %s: %w", ss.ID, err)
		}
		key, err := view.ExportAtFirstKnownIndex()
		if err != nil {
			return fmt.Errorf("export %s: %w", ss.ID, err)
		}
		out = append(out, sessionFile{
			ID:                ss.ID,
			Valid:             view.IsValid(),
			RoomID:            view.RoomID(),
			SessionID:         view.SessionID(),
			SenderKey:         view.SenderKey(),
			SenderClaimedKeys: view.SenderClaimedKeys(),
			ForwardingChain:   view.ForwardingChain(),
			SessionKey:        key,
		})
	}

	sessionsJSON, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions.json: %w", err)
	}
	return os.WriteFile(sessionsPath(dir), sessionsJSON, 0600)
}
