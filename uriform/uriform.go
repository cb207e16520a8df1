// Package uriform implements the canonical URI form of a descriptor:
//
//	descriptor:<data without scheme>#Descriptor;scheme=https;action=...;category=...;
//	    type=...;launchFlags=0x...;package=...;component=...;sourceBounds=...;
//	    S.key=value;...;SEL;action=...;end
//
// Every token value is percent-escaped, so ';' only ever appears as the token
// delimiter. Each selector level opens with "SEL;" after the tokens of its
// parent, and a single "end" closes the whole form.
package uriform

import (
	"context"
	"strconv"
	"strings"

	intent "github.com/reoring/intent"
)

// Flags tune ToURI. They are ignored by ParseURI.
type Flags uint32

const (
	// FlagScheme forces the "descriptor:" prefix even when the data has no scheme.
	FlagScheme Flags = 1 << iota
)

const (
	// Prefix replaces the data scheme, which moves into the scheme= token.
	Prefix = "descriptor:"
	// Marker separates the data from the tokens.
	Marker = "#Descriptor;"

	selToken = "SEL"
	endToken = "end"
)

// Extra type tags used as "<tag>.<key>=<value>".
const (
	tagString = 'S'
	tagBool   = 'B'
	tagInt    = 'i'
	tagLong   = 'l'
	tagFloat  = 'f'
	tagDouble = 'd'
)

// ToURI renders d in canonical URI form. Only scalar extras (bool, int, long,
// float, double, string) are carried; other kinds are omitted. The data of
// nested selectors travels in a data= token.
func ToURI(d *intent.Descriptor, flags Flags) string {
	b := &strings.Builder{}
	scheme, hasScheme := "", false
	if u, ok := d.Data(); ok {
		data := u.String()
		if s, ok := u.Scheme(); ok {
			scheme, hasScheme = s, true
			b.WriteString(Prefix)
			data = u.SchemeSpecificPart()
		} else if flags&FlagScheme != 0 {
			b.WriteString(Prefix)
		}
		b.WriteString(data)
	} else if flags&FlagScheme != 0 {
		b.WriteString(Prefix)
	}
	b.WriteString(Marker)
	if hasScheme {
		writeToken(b, "scheme", Escape(scheme, ""))
	}
	if u, ok := d.Data(); ok && u.IsZero() {
		// An empty head reads back as absent data.
		writeToken(b, "data", "")
	}
	writeTokens(b, d)
	for sel := d.Selector(); sel != nil; sel = sel.Selector() {
		b.WriteString(selToken + ";")
		if u, ok := sel.Data(); ok {
			writeToken(b, "data", Escape(u.String(), ""))
		}
		writeTokens(b, sel)
	}
	b.WriteString(endToken)
	return b.String()
}

func writeToken(b *strings.Builder, key, escaped string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(escaped)
	b.WriteByte(';')
}

func writeTokens(b *strings.Builder, d *intent.Descriptor) {
	if a, ok := d.Action(); ok {
		writeToken(b, "action", Escape(a, ""))
	}
	for _, c := range d.Categories() {
		writeToken(b, "category", Escape(c, ""))
	}
	if t, ok := d.Type(); ok {
		writeToken(b, "type", Escape(t, "/"))
	}
	if f := d.Flags(); f != 0 {
		writeToken(b, "launchFlags", "0x"+strconv.FormatUint(uint64(f), 16))
	}
	if p, ok := d.Package(); ok {
		writeToken(b, "package", Escape(p, ""))
	}
	if c, ok := d.Component(); ok {
		text, _ := c.MarshalText()
		writeToken(b, "component", Escape(string(text), "/"))
	}
	if r, ok := d.SourceBounds(); ok {
		writeToken(b, "sourceBounds", Escape(r.Flatten(), ""))
	}
	x := d.Extras()
	x.Range(func(key string, v intent.Value) bool {
		tag, ok := extraTag(v.Kind())
		if !ok {
			return true
		}
		b.WriteByte(tag)
		b.WriteByte('.')
		writeToken(b, Escape(key, ""), Escape(v.String(), ""))
		return true
	})
}

func extraTag(k intent.Kind) (byte, bool) {
	switch k {
	case intent.KindString:
		return tagString, true
	case intent.KindBool:
		return tagBool, true
	case intent.KindInt:
		return tagInt, true
	case intent.KindLong:
		return tagLong, true
	case intent.KindFloat:
		return tagFloat, true
	case intent.KindDouble:
		return tagDouble, true
	}
	return 0, false
}

// Codec returns the URI form as an intent.Codec. flags apply to encoding.
func Codec(flags Flags) intent.Codec[string] { return uriCodec{flags: flags} }

type uriCodec struct{ flags Flags }

func (c uriCodec) Encode(ctx context.Context, d *intent.Descriptor) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return ToURI(d, c.flags), nil
}

func (c uriCodec) Decode(ctx context.Context, s string) (*intent.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseURI(s, 0)
}
