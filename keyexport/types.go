// Package keyexport implements the Megolm room-key export codec: a
// symmetric, passphrase-protected file format for transporting
// end-to-end-encrypted group session keys between clients. It is
// byte-compatible with the widely deployed reference export format.
//
// The package is stateless and pure other than the session store it is
// handed: Export and Import are each a single function of their inputs
// (plus the store and, on export, the system RNG).
package keyexport

import "context"

// SessionRecord is the JSON-serializable form of one exported Megolm
// inbound group session. Field names match the wire format exactly and
// must not be renamed even though they are not idiomatic Go casing.
type SessionRecord struct {
	Algorithm                   string            `json:"algorithm"`
	RoomID                      string            `json:"room_id"`
	SessionID                   string            `json:"session_id"`
	SenderKey                   string            `json:"sender_key"`
	SenderClaimedKeys           map[string]string `json:"sender_claimed_keys"`
	ForwardingCurve25519KeyChain []string         `json:"forwarding_curve25519_key_chain"`
	SessionKey                  string            `json:"session_key"`
}

// StoredSession is the opaque, pre-reconstruction handle a SessionStore
// hands back from ListInboundSessions. Its shape is intentionally minimal:
// everything else about the session is only available after Reconstruct.
type StoredSession struct {
	// ID is an opaque identifier the store and SessionView agree on; the
	// codec never interprets it beyond using it in log fields.
	ID string
}

// SessionView is the reconstructed view of one inbound group session,
// exposing exactly what Export needs to build a SessionRecord.
type SessionView interface {
	IsValid() bool
	RoomID() string
	SessionID() string
	SenderKey() string
	SenderClaimedKeys() map[string]string
	ForwardingChain() []string
	// ExportAtFirstKnownIndex returns the session key material at the
	// earliest ratchet index this holder can still decrypt from.
	ExportAtFirstKnownIndex() (string, error)
}

// SessionStore is the dependency-injected collaborator that supplies
// sessions on export and accepts them on import. The codec treats it
// purely as an iterator and a setter; all persistence semantics belong to
// the implementation.
type SessionStore interface {
	// ListInboundSessions returns every session this store is willing to
	// offer for export.
	ListInboundSessions(ctx context.Context) ([]StoredSession, error)

	// Reconstruct rebuilds a full SessionView for a listed session, using
	// pickleKey to unlock persisted material. It may fail for any reason
	// (corrupt pickle, missing key); Export treats failure the same as an
	// invalid session and skips it.
	Reconstruct(ctx context.Context, s StoredSession, pickleKey string) (SessionView, error)

	// SetInboundGroupSession hands a fully decoded record to the store.
	// forwarded is always true for records arriving via import.
	SetInboundGroupSession(ctx context.Context, rec SessionRecord, forwarded bool) error

	// EncryptionEnabled reports whether the store's owner has encryption
	// enabled at all; Import fails with ErrEncryptionDisabled when false.
	EncryptionEnabled(ctx context.Context) (bool, error)

	// UserID returns the identifier used as the pickle key when
	// reconstructing sessions for export.
	UserID(ctx context.Context) (string, error)
}
