package uriform

import (
	"strconv"
	"strings"

	intent "github.com/reoring/intent"
)

// MaxSelectorDepth bounds the number of SEL blocks ParseURI accepts.
const MaxSelectorDepth = 32

// level collects the tokens of one descriptor. Data, type and package are
// applied once all tokens are read so token order cannot trip the setters'
// clearing rules.
type level struct {
	d        *intent.Descriptor
	data     *string
	mimeType *string
	pkg      *string
	scheme   *string
}

// ParseURI decodes the canonical URI form. flags is reserved and ignored.
// Unknown plain tokens are skipped; unknown extra type tags, missing "end",
// text after "end" and bad escapes fail with *intent.DecodeError.
func ParseURI(s string, flags Flags) (*intent.Descriptor, error) {
	_ = flags
	mark := strings.LastIndex(s, Marker)
	if mark < 0 {
		return nil, intent.NewDecodeError(intent.CodeInvalidFormat, 0, "missing %q marker", Marker)
	}
	head := strings.TrimPrefix(s[:mark], Prefix)
	pos := mark + len(Marker)
	rest := s[pos:]

	levels := []*level{{d: intent.New()}}
	for {
		if rest == endToken {
			break
		}
		semi := strings.IndexByte(rest, ';')
		if semi < 0 {
			if strings.HasPrefix(rest, endToken) {
				return nil, intent.NewDecodeError(intent.CodeTrailingData, int64(pos+len(endToken)), "text after %q", endToken)
			}
			return nil, intent.NewDecodeError(intent.CodeMissingEnd, int64(len(s)), "form does not finish with %q", endToken)
		}
		tok := rest[:semi]
		tokPos := pos
		rest = rest[semi+1:]
		pos += semi + 1

		switch tok {
		case endToken:
			return nil, intent.NewDecodeError(intent.CodeTrailingData, int64(tokPos+len(endToken)), "text after %q", endToken)
		case selToken:
			if len(levels) > MaxSelectorDepth {
				return nil, intent.NewDecodeError(intent.CodeTooDeep, int64(tokPos), "more than %d selector levels", MaxSelectorDepth)
			}
			levels = append(levels, &level{d: intent.New()})
			continue
		}
		eq := strings.IndexByte(tok, '=')
		if eq < 0 {
			return nil, intent.NewDecodeError(intent.CodeInvalidFormat, int64(tokPos), "token %q has no '='", tok)
		}
		if err := levels[len(levels)-1].apply(tok[:eq], tok[eq+1:], tokPos, tokPos+eq+1); err != nil {
			return nil, err
		}
	}

	top := levels[0]
	switch {
	case top.scheme != nil:
		data := *top.scheme + ":" + head
		top.data = &data
	case head != "":
		top.data = &head
	}
	for _, l := range levels {
		l.finish()
	}
	for i := len(levels) - 1; i > 0; i-- {
		if err := levels[i-1].d.SetSelector(levels[i].d); err != nil {
			return nil, &intent.DecodeError{Code: intent.CodeInvalidFormat, Field: "selector", Offset: -1, Message: "selector conflicts with package", Cause: err}
		}
	}
	return top.d, nil
}

func (l *level) apply(key, raw string, keyPos, valPos int) error {
	val, err := Unescape(raw, valPos)
	if err != nil {
		return err
	}
	bad := func(format string, args ...any) error {
		e := intent.NewDecodeError(intent.CodeInvalidFormat, int64(valPos), format, args...)
		e.Field = key
		return e
	}
	switch key {
	case "scheme":
		l.scheme = &val
	case "data":
		l.data = &val
	case "action":
		l.d.SetAction(val)
	case "category":
		l.d.AddCategory(val)
	case "type":
		l.mimeType = &val
	case "launchFlags":
		f, err := strconv.ParseUint(val, 0, 32)
		if err != nil {
			return bad("launchFlags %q", val)
		}
		l.d.SetFlags(intent.Flags(f))
	case "package":
		l.pkg = &val
	case "component":
		var c intent.ComponentName
		if err := c.UnmarshalText([]byte(val)); err != nil {
			return bad("component %q", val)
		}
		l.d.SetComponent(c)
	case "sourceBounds":
		r, ok := intent.UnflattenRect(val)
		if !ok {
			return bad("sourceBounds %q", val)
		}
		l.d.SetSourceBounds(r)
	default:
		if len(key) < 2 || key[1] != '.' {
			return nil
		}
		name, err := Unescape(key[2:], keyPos+2)
		if err != nil {
			return err
		}
		v, err := parseExtra(key[0], val)
		if err != nil {
			e := intent.NewDecodeError(intent.CodeInvalidFormat, int64(valPos), "extra %q: %v", name, err)
			if _, ok := extraKind(key[0]); !ok {
				e.Code = intent.CodeUnknownType
				e.Offset = int64(keyPos)
			}
			e.Field = name
			return e
		}
		l.d.PutExtra(name, v)
	}
	return nil
}

func (l *level) finish() {
	switch {
	case l.data != nil && l.mimeType != nil:
		l.d.SetDataAndType(intent.ParseURI(*l.data), *l.mimeType)
	case l.data != nil:
		l.d.SetData(intent.ParseURI(*l.data))
	case l.mimeType != nil:
		l.d.SetType(*l.mimeType)
	}
	if l.pkg != nil {
		// The selector is attached after finish, so this cannot conflict.
		_ = l.d.SetPackage(*l.pkg)
	}
}

func extraKind(tag byte) (intent.Kind, bool) {
	switch tag {
	case tagString:
		return intent.KindString, true
	case tagBool:
		return intent.KindBool, true
	case tagInt:
		return intent.KindInt, true
	case tagLong:
		return intent.KindLong, true
	case tagFloat:
		return intent.KindFloat, true
	case tagDouble:
		return intent.KindDouble, true
	}
	return intent.KindInvalid, false
}

func parseExtra(tag byte, val string) (intent.Value, error) {
	kind, ok := extraKind(tag)
	if !ok {
		return intent.Value{}, errUnknownTag(tag)
	}
	switch kind {
	case intent.KindString:
		return intent.String(val), nil
	case intent.KindBool:
		b, err := strconv.ParseBool(val)
		return intent.Bool(b), err
	case intent.KindInt:
		i, err := strconv.ParseInt(val, 10, 32)
		return intent.Int(int32(i)), err
	case intent.KindLong:
		i, err := strconv.ParseInt(val, 10, 64)
		return intent.Long(i), err
	case intent.KindFloat:
		f, err := strconv.ParseFloat(val, 32)
		return intent.Float(float32(f)), err
	default:
		f, err := strconv.ParseFloat(val, 64)
		return intent.Double(f), err
	}
}

type errUnknownTag byte

func (e errUnknownTag) Error() string { return "unknown extra type tag " + strconv.QuoteRune(rune(e)) }
