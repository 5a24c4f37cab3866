package envelope

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeros(n int) []byte { return make([]byte, n) }

func TestBuildParse_RoundTrip(t *testing.T) {
	salt := bytes.Repeat([]byte{0xAA}, 16)
	iv := bytes.Repeat([]byte{0xBB}, 16)
	hmacKey := bytes.Repeat([]byte{0x01}, 32)
	ciphertext := []byte("hello world, encrypted in spirit only")

	raw, err := Build(Version, salt, iv, 500_000, ciphertext, hmacKey)
	require.NoError(t, err)
	assert.Len(t, raw, MinLen+len(ciphertext))

	parsed, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(Version), parsed.Version)
	assert.Equal(t, salt, parsed.Salt)
	assert.Equal(t, iv, parsed.IV)
	assert.Equal(t, uint32(500_000), parsed.Rounds)
	assert.Equal(t, ciphertext, parsed.Ciphertext)
	assert.Len(t, parsed.MAC, 32)
	assert.Equal(t, raw[:len(raw)-32], parsed.MACInput)
}

func TestBuild_RejectsWrongVersion(t *testing.T) {
	_, err := Build(0x02, zeros(16), zeros(16), 1, nil, zeros(32))
	var uv *UnsupportedVersionError
	assert.ErrorAs(t, err, &uv)
}

func TestBuild_RejectsBadLengths(t *testing.T) {
	_, err := Build(Version, zeros(15), zeros(16), 1, nil, zeros(32))
	assert.Error(t, err)

	_, err = Build(Version, zeros(16), zeros(17), 1, nil, zeros(32))
	assert.Error(t, err)
}

func TestParse_EmptyCiphertext(t *testing.T) {
	raw, err := Build(Version, zeros(16), zeros(16), 1000, nil, zeros(32))
	require.NoError(t, err)
	assert.Len(t, raw, MinLen)

	parsed, err := Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, parsed.Ciphertext)
}

func TestParse_TooShort(t *testing.T) {
	_, err := Parse(make([]byte, MinLen-1))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_UnsupportedVersion(t *testing.T) {
	raw, err := Build(Version, zeros(16), zeros(16), 1, zeros(4), zeros(32))
	require.NoError(t, err)
	raw[0] = 0x02

	_, err = Parse(raw)
	var uv *UnsupportedVersionError
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, byte(2), uv.Version)
}

func FuzzParse(f *testing.F) {
	raw, err := Build(Version, zeros(16), zeros(16), 500_000, []byte("payload"), zeros(32))
	if err != nil {
		f.Fatal(err)
	}
	f.Add(raw)
	f.Add(make([]byte, MinLen))
	f.Add([]byte(""))

	f.Fuzz(func(t *testing.T, data []byte) {
		assert.NotPanics(t, func() {
			_, _ = Parse(data)
		})
	})
}
