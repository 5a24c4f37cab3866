// Package armor wraps and unwraps a binary envelope in PEM-style base64
// armor, line-wrapped to 76 characters, matching the Megolm session-export
// text format used across Matrix clients.
package armor

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	header   = "-----BEGIN MEGOLM SESSION DATA-----"
	footer   = "-----END MEGOLM SESSION DATA-----"
	lineWrap = 76
)

// ErrMalformed is returned for any structural failure while unwrapping
// armor: invalid UTF-8, missing header/footer, or invalid base64 body.
var ErrMalformed = errors.New("armor: malformed armor")

// Wrap base64-encodes binary and wraps it in the header/footer lines,
// splitting the body into lineWrap-character lines. The result ends with a
// trailing newline.
func Wrap(binary []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(binary)

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')

	for i := 0; i < len(encoded); i += lineWrap {
		end := i + lineWrap
		if end > len(encoded) {
			end = len(encoded)
		}
		b.WriteString(encoded[i:end])
		b.WriteByte('\n')
	}

	b.WriteString(footer)
	b.WriteByte('\n')

	return []byte(b.String())
}

// Unwrap strips header/footer armor and base64-decodes the body. Lines are
// trimmed of surrounding whitespace (tolerating \r\n endings) and empty
// lines are dropped before the header/footer are checked.
func Unwrap(text []byte) ([]byte, error) {
	if !utf8.Valid(text) {
		return nil, ErrMalformed
	}

	rawLines := strings.Split(string(text), "\n")
	lines := make([]string, 0, len(rawLines))
	for _, l := range rawLines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			continue
		}
		lines = append(lines, trimmed)
	}

	if len(lines) < 2 {
		return nil, ErrMalformed
	}
	if lines[0] != header {
		return nil, ErrMalformed
	}
	if lines[len(lines)-1] != footer {
		return nil, ErrMalformed
	}

	body := strings.Join(lines[1:len(lines)-1], "")
	if body == "" {
		return nil, ErrMalformed
	}

	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, ErrMalformed
	}

	return decoded, nil
}
