package armor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapUnwrap_RoundTrip(t *testing.T) {
	payload := []byte("arbitrary binary payload that is longer than one base64 line so wrapping actually kicks in and produces more than a single body line")

	wrapped := Wrap(payload)
	assert.True(t, strings.HasPrefix(string(wrapped), header+"\n"))
	assert.True(t, strings.HasSuffix(string(wrapped), footer+"\n"))

	unwrapped, err := Unwrap(wrapped)
	require.NoError(t, err)
	assert.Equal(t, payload, unwrapped)
}

func TestWrap_LineLength(t *testing.T) {
	payload := make([]byte, 200)
	wrapped := string(Wrap(payload))
	lines := strings.Split(strings.TrimSuffix(wrapped, "\n"), "\n")

	body := lines[1 : len(lines)-1]
	for i, l := range body {
		if i < len(body)-1 {
			assert.Len(t, l, lineWrap)
		} else {
			assert.LessOrEqual(t, len(l), lineWrap)
		}
	}
}

func TestUnwrap_TolerantOfCRLFAndWhitespace(t *testing.T) {
	payload := []byte("hi")
	wrapped := string(Wrap(payload))
	crlf := strings.ReplaceAll(wrapped, "\n", "\r\n")
	crlf = "  " + strings.ReplaceAll(crlf, "\r\n", "  \r\n  ")

	out, err := Unwrap([]byte(crlf))
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestUnwrap_NoBodyLines(t *testing.T) {
	_, err := Unwrap([]byte(header + "\n" + footer + "\n"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUnwrap_MissingHeader(t *testing.T) {
	_, err := Unwrap([]byte("garbage\n" + footer + "\n"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUnwrap_MissingFooter(t *testing.T) {
	_, err := Unwrap([]byte(header + "\nYWJj\n"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUnwrap_InvalidBase64(t *testing.T) {
	_, err := Unwrap([]byte(header + "\nnot-valid-base64!!!\n" + footer + "\n"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUnwrap_InvalidUTF8(t *testing.T) {
	_, err := Unwrap([]byte{0xff, 0xfe, 0xfd})
	assert.ErrorIs(t, err, ErrMalformed)
}

func FuzzUnwrap(f *testing.F) {
	f.Add([]byte(header + "\nYWJj\n" + footer + "\n"))
	f.Add([]byte(""))
	f.Add([]byte(header))

	f.Fuzz(func(t *testing.T, data []byte) {
		assert.NotPanics(t, func() {
			_, _ = Unwrap(data)
		})
	})
}
