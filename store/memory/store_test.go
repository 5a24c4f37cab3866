package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyvault-project/megolm-export/keyexport"
)

func TestStore_PutAndReconstruct(t *testing.T) {
	s := NewStore("@alice:example.org", true)
	s.PutSession("S1", true, "!room:example.org", "S1", "SK",
		map[string]string{"ed25519": "K"}, []string{}, "sessionkeybase64")

	ctx := context.Background()
	sessions, err := s.ListInboundSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "S1", sessions[0].ID)

	view, err := s.Reconstruct(ctx, sessions[0], "pickle-key")
	require.NoError(t, err)
	assert.True(t, view.IsValid())
	assert.Equal(t, "!room:example.org", view.RoomID())

	key, err := view.ExportAtFirstKnownIndex()
	require.NoError(t, err)
	assert.Equal(t, "sessionkeybase64", key)
}

func TestStore_ReconstructUnknownSession(t *testing.T) {
	s := NewStore("@alice:example.org", true)
	_, err := s.Reconstruct(context.Background(), keyexport.StoredSession{ID: "missing"}, "pickle-key")
	assert.Error(t, err)
}

func TestStore_SetInboundGroupSessionIsVisibleToListAndReconstruct(t *testing.T) {
	s := NewStore("@bob:example.org", true)
	ctx := context.Background()

	rec := keyexport.SessionRecord{
		Algorithm:                    "m.megolm.v1.aes-sha2",
		RoomID:                       "!r:example.org",
		SessionID:                    "S2",
		SenderKey:                    "SK",
		SenderClaimedKeys:            map[string]string{"ed25519": "K"},
		ForwardingCurve25519KeyChain: []string{},
		SessionKey:                   "sessionkey-S2",
	}
	require.NoError(t, s.SetInboundGroupSession(ctx, rec, true))

	sessions, err := s.ListInboundSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	view, err := s.Reconstruct(ctx, sessions[0], "")
	require.NoError(t, err)
	assert.Equal(t, rec.SessionKey, mustExport(t, view))
}

func TestStore_ViewIsIsolatedFromLaterWrites(t *testing.T) {
	s := NewStore("@carol:example.org", true)
	ctx := context.Background()

	s.PutSession("S3", true, "!r", "S3", "sk", map[string]string{"ed25519": "A"}, nil, "first")
	view, err := s.Reconstruct(ctx, keyexport.StoredSession{ID: "S3"}, "")
	require.NoError(t, err)

	s.PutSession("S3", true, "!r", "S3", "sk", map[string]string{"ed25519": "B"}, nil, "second")

	key, err := view.ExportAtFirstKnownIndex()
	require.NoError(t, err)
	assert.Equal(t, "first", key, "a previously reconstructed view must not see later mutations")
}

func TestStore_EncryptionEnabledToggle(t *testing.T) {
	s := NewStore("@dan:example.org", false)
	enabled, err := s.EncryptionEnabled(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)

	s.SetEncryptionEnabled(true)
	enabled, err = s.EncryptionEnabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
}

func mustExport(t *testing.T, v interface{ ExportAtFirstKnownIndex() (string, error) }) string {
	t.Helper()
	key, err := v.ExportAtFirstKnownIndex()
	require.NoError(t, err)
	return key
}
