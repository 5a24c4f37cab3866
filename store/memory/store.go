// Copyright (C) 2026 megolm-export contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package memory implements keyexport.SessionStore backed by process
// memory. The CLI loads its on-disk session store into it before calling
// Export or Import.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/keyvault-project/megolm-export/keyexport"
)

// record is the store's internal representation of one inbound group
// session. It is deliberately flatter than keyexport.SessionRecord: there
// is no pickle/unpickle step here, so SessionKey is kept in the clear in
// memory and handed straight to ExportAtFirstKnownIndex on reconstruction.
type record struct {
	valid             bool
	roomID            string
	sessionID         string
	senderKey         string
	senderClaimedKeys map[string]string
	forwardingChain   []string
	sessionKey        string
}

func (r record) clone() record {
	claimed := make(map[string]string, len(r.senderClaimedKeys))
	for k, v := range r.senderClaimedKeys {
		claimed[k] = v
	}
	chain := make([]string, len(r.forwardingChain))
	copy(chain, r.forwardingChain)
	r.senderClaimedKeys = claimed
	r.forwardingChain = chain
	return r
}

// Store is an in-memory, mutex-guarded keyexport.SessionStore.
type Store struct {
	mu                sync.RWMutex
	sessions          map[string]record
	userID            string
	encryptionEnabled bool
}

// NewStore creates an empty store for the given account. encryptionEnabled
// mirrors the "encryption enabled for this room/account" flag a real
// client keeps; Import consults it, Export does not.
func NewStore(userID string, encryptionEnabled bool) *Store {
	return &Store{
		sessions:          make(map[string]record),
		userID:            userID,
		encryptionEnabled: encryptionEnabled,
	}
}

// PutSession seeds the store with an inbound session directly, for test
// fixtures and CLI demo data. valid mirrors SessionView.IsValid for a
// session whose ratchet has been deliberately marked unusable.
func (s *Store) PutSession(id string, valid bool, roomID, sessionID, senderKey string, claimed map[string]string, chain []string, sessionKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = record{
		valid:             valid,
		roomID:            roomID,
		sessionID:         sessionID,
		senderKey:         senderKey,
		senderClaimedKeys: claimed,
		forwardingChain:   chain,
		sessionKey:        sessionKey,
	}.clone()
}

// SetEncryptionEnabled flips the store-wide encryption flag that Import
// consults.
func (s *Store) SetEncryptionEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encryptionEnabled = enabled
}

func (s *Store) ListInboundSessions(ctx context.Context) ([]keyexport.StoredSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]keyexport.StoredSession, 0, len(s.sessions))
	for id := range s.sessions {
		out = append(out, keyexport.StoredSession{ID: id})
	}
	return out, nil
}

func (s *Store) Reconstruct(ctx context.Context, ss keyexport.StoredSession, pickleKey string) (keyexport.SessionView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.sessions[ss.ID]
	if !ok {
		return nil, fmt.Errorf("memory: session not found: %s", ss.ID)
	}
	c := r.clone()
	return &view{record: c}, nil
}

func (s *Store) SetInboundGroupSession(ctx context.Context, rec keyexport.SessionRecord, forwarded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[rec.SessionID] = record{
		valid:             true,
		roomID:            rec.RoomID,
		sessionID:         rec.SessionID,
		senderKey:         rec.SenderKey,
		senderClaimedKeys: rec.SenderClaimedKeys,
		forwardingChain:   rec.ForwardingCurve25519KeyChain,
		sessionKey:        rec.SessionKey,
	}.clone()
	return nil
}

func (s *Store) EncryptionEnabled(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encryptionEnabled, nil
}

func (s *Store) UserID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, nil
}

// view is the keyexport.SessionView handed back by Reconstruct. It holds
// its own copy of the record so later writes to the store can never leak
// into an already-reconstructed view.
type view struct {
	record record
}

func (v *view) IsValid() bool                        { return v.record.valid }
func (v *view) RoomID() string                        { return v.record.roomID }
func (v *view) SessionID() string                     { return v.record.sessionID }
func (v *view) SenderKey() string                     { return v.record.senderKey }
func (v *view) SenderClaimedKeys() map[string]string  { return v.record.senderClaimedKeys }
func (v *view) ForwardingChain() []string              { return v.record.forwardingChain }

func (v *view) ExportAtFirstKnownIndex() (string, error) {
	if v.record.sessionKey == "" {
		return "", fmt.Errorf("memory: session %s has no exportable key", v.record.sessionID)
	}
	return v.record.sessionKey, nil
}
