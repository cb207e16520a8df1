package intent

// URI is the locator carried as a descriptor's data. It is kept unparsed; only
// the scheme is ever extracted from it.
type URI struct {
	raw string
}

// ParseURI wraps s as a URI without validating it.
func ParseURI(s string) URI { return URI{raw: s} }

func (u URI) String() string { return u.raw }

// IsZero reports whether u is the empty locator.
func (u URI) IsZero() bool { return u.raw == "" }

// Scheme returns the leading scheme when the locator starts with one. A scheme
// is a non-empty run of letters, digits, '+', '-' or '.' terminated by ':'.
func (u URI) Scheme() (string, bool) {
	i := schemeEnd(u.raw)
	if i < 0 {
		return "", false
	}
	return u.raw[:i], true
}

// SchemeSpecificPart returns everything after "scheme:", or the whole locator
// when it has no scheme.
func (u URI) SchemeSpecificPart() string {
	i := schemeEnd(u.raw)
	if i < 0 {
		return u.raw
	}
	return u.raw[i+1:]
}

func (u URI) hash() uint32 { return stringHash(u.raw) }

// schemeEnd returns the index of the ':' terminating the scheme, or -1.
func schemeEnd(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ':' {
			if i == 0 {
				return -1
			}
			return i
		}
		if !isSchemeChar(c) {
			return -1
		}
	}
	return -1
}

func isSchemeChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '+' || c == '-' || c == '.'
}
