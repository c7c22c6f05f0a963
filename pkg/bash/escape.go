package bash

import (
	"strings"
	"unicode/utf8"
)

// Escape returns a token that bash parses back to input as a single word.
// Characters outside a small safe set are escaped one at a time.
func Escape(input string) string {
	if input == "" {
		return "''"
	}

	var sb strings.Builder
	sb.Grow(len(input))

	for i := 0; i < len(input); {
		ch, size := utf8.DecodeRuneInString(input[i:])

		switch {
		case ch >= 'A' && ch <= 'Z',
			ch >= 'a' && ch <= 'z',
			ch >= '0' && ch <= '9':
			sb.WriteRune(ch)
		case strings.ContainsRune("_-.,:/@", ch):
			sb.WriteRune(ch)
		case ch == '\n':
			sb.WriteString("'\n'")
		default:
			// Invalid UTF-8 is copied byte for byte.
			sb.WriteByte('\\')
			sb.WriteString(input[i : i+size])
		}

		i += size
	}

	return sb.String()
}
