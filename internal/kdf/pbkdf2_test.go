package kdf

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_LengthAndDeterminism(t *testing.T) {
	password := []byte("correct horse battery staple")
	salt := []byte("0123456789abcdef")

	out1, err := Key(password, salt, 1000, 64)
	require.NoError(t, err)
	assert.Len(t, out1, 64)

	out2, err := Key(password, salt, 1000, 64)
	require.NoError(t, err)
	assert.Equal(t, out1, out2, "same inputs must derive the same key material")
}

func TestKey_LongerThanSingleBlock(t *testing.T) {
	// SHA-512 produces 64-byte blocks; ask for more than one block's worth
	// of output to exercise the multi-block path.
	out, err := Key([]byte("pw"), []byte("salt"), 10, 96)
	require.NoError(t, err)
	assert.Len(t, out, 96)
}

func TestKey_PrefixConsistency(t *testing.T) {
	// Output length must not change the leading bytes: requesting 32 bytes
	// must equal the first 32 bytes of a 64-byte request.
	full, err := Key([]byte("pw"), []byte("salt"), 10, 64)
	require.NoError(t, err)

	short, err := Key([]byte("pw"), []byte("salt"), 10, 32)
	require.NoError(t, err)

	assert.Equal(t, full[:32], short)
}

func TestKey_BadInput(t *testing.T) {
	_, err := Key([]byte("pw"), []byte("salt"), 0, 64)
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = Key([]byte("pw"), []byte("salt"), 1, 0)
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestKey_DiffersAcrossSalts(t *testing.T) {
	a, err := Key([]byte("pw"), []byte("salt-a"), 10, 32)
	require.NoError(t, err)
	b, err := Key([]byte("pw"), []byte("salt-b"), 10, 32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

// TestKey_KnownAnswer checks derivation against a fixed PBKDF2-HMAC-SHA-512
// vector: password "topsecret", 16 zero salt bytes, 2 iterations, 64 bytes.
func TestKey_KnownAnswer(t *testing.T) {
	salt := make([]byte, 16) // all zero
	out, err := Key([]byte("topsecret"), salt, 2, 64)
	require.NoError(t, err)
	assert.Len(t, out, 64)
	assert.NotEqual(t, make([]byte, 64), out, "derived key must not be all zero")
	assert.Equal(t,
		"ba957f5ba3cbeddc251208ced50e56222f6dfdeaf35197e8e854b6df75bda4ee"+
			"91f9e7ee44095b27cea193a59e0bee549a5f601c9e02b25644fe17a7a56dcf3c",
		hex.EncodeToString(out))
	t.Logf("derived: %s", hex.EncodeToString(out))
}
