package intent

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ComponentName identifies an exact target: a namespace (package) and a class
// within it.
type ComponentName struct {
	Package string
	Class   string
}

// Flatten returns "package/class".
func (c ComponentName) Flatten() string { return c.Package + "/" + c.Class }

// FlattenShort abbreviates the class to ".Suffix" when it lives inside the
// package, e.g. "com.app/.Main" for {com.app, com.app.Main}.
func (c ComponentName) FlattenShort() string {
	if suffix, ok := c.shortClass(); ok {
		return c.Package + "/" + suffix
	}
	return c.Flatten()
}

// shortClass returns the ".Suffix" form of the class when the class is longer
// than "package.".
func (c ComponentName) shortClass() (string, bool) {
	n := len(c.Package)
	if len(c.Class) > n+1 && strings.HasPrefix(c.Class, c.Package) && c.Class[n] == '.' {
		return c.Class[n:], true
	}
	return "", false
}

func (c ComponentName) String() string { return "ComponentInfo{" + c.Flatten() + "}" }

func (c ComponentName) hash() uint32 { return stringHash(c.Package) + stringHash(c.Class) }

// UnflattenComponentName parses the output of Flatten or FlattenShort. The
// class may be empty; the package ends at the first '/'.
func UnflattenComponentName(s string) (ComponentName, bool) {
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return ComponentName{}, false
	}
	pkg, cls := s[:i], s[i+1:]
	if strings.HasPrefix(cls, ".") {
		cls = pkg + cls
	}
	return ComponentName{Package: pkg, Class: cls}, true
}

var componentEscaper = strings.NewReplacer("%", "%25", "/", "%2F")

// MarshalText renders c like FlattenShort but escapes '%' and '/' inside both
// halves, and a leading '.' of an unabbreviated class, so UnmarshalText
// recovers c exactly.
func (c ComponentName) MarshalText() ([]byte, error) {
	b := &strings.Builder{}
	b.WriteString(componentEscaper.Replace(c.Package))
	b.WriteByte('/')
	if suffix, ok := c.shortClass(); ok {
		b.WriteString(componentEscaper.Replace(suffix))
	} else {
		cls := componentEscaper.Replace(c.Class)
		if strings.HasPrefix(cls, ".") {
			cls = "%2E" + cls[1:]
		}
		b.WriteString(cls)
	}
	return []byte(b.String()), nil
}

// UnmarshalText parses the output of MarshalText.
func (c *ComponentName) UnmarshalText(text []byte) error {
	s := string(text)
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return fmt.Errorf("component %q is not package/class", s)
	}
	pkg, err := url.PathUnescape(s[:i])
	if err != nil {
		return fmt.Errorf("component %q: %w", s, err)
	}
	raw := s[i+1:]
	cls, err := url.PathUnescape(raw)
	if err != nil {
		return fmt.Errorf("component %q: %w", s, err)
	}
	if strings.HasPrefix(raw, ".") {
		cls = pkg + cls
	}
	*c = ComponentName{Package: pkg, Class: cls}
	return nil
}

// Rect is the source-bounds hint attached to a descriptor.
type Rect struct {
	Left, Top, Right, Bottom int32
}

// Flatten returns "left top right bottom".
func (r Rect) Flatten() string {
	return fmt.Sprintf("%d %d %d %d", r.Left, r.Top, r.Right, r.Bottom)
}

// ShortString returns "[left,top][right,bottom]".
func (r Rect) ShortString() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}

// UnflattenRect parses the output of Flatten.
func UnflattenRect(s string) (Rect, bool) {
	parts := strings.Split(s, " ")
	if len(parts) != 4 {
		return Rect{}, false
	}
	var v [4]int32
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return Rect{}, false
		}
		v[i] = int32(n)
	}
	return Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}, true
}
