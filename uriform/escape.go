package uriform

import (
	"strings"

	intent "github.com/reoring/intent"
)

const upperHex = "0123456789ABCDEF"

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '_', '-', '!', '.', '~', '\'', '(', ')', '*':
		return true
	}
	return false
}

// Escape percent-encodes every byte of s outside the unreserved set and allow.
// The result never contains ';', '=', '#' or '%' unless allow names them.
func Escape(s, allow string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isUnreserved(s[i]) && strings.IndexByte(allow, s[i]) < 0 {
			n++
		}
	}
	if n == 0 {
		return s
	}
	b := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(allow, c) >= 0 {
			b = append(b, c)
			continue
		}
		b = append(b, '%', upperHex[c>>4], upperHex[c&15])
	}
	return string(b)
}

// Unescape reverses Escape. offset positions errors within the whole input.
func Unescape(s string, offset int) (string, error) {
	i := strings.IndexByte(s, '%')
	if i < 0 {
		return s, nil
	}
	b := make([]byte, 0, len(s))
	b = append(b, s[:i]...)
	for ; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b = append(b, c)
			continue
		}
		if i+2 >= len(s) {
			return "", intent.NewDecodeError(intent.CodeInvalidEscape, int64(offset+i), "truncated escape in %q", s)
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", intent.NewDecodeError(intent.CodeInvalidEscape, int64(offset+i), "bad escape %q", s[i:i+3])
		}
		b = append(b, hi<<4|lo)
		i += 2
	}
	return string(b), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
