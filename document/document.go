// Package document reads and writes descriptors as declarative YAML or JSON
// documents:
//
//	action: intent.action.VIEW
//	data: https://example.com
//	categories: [intent.category.DEFAULT]
//	component: com.app/.Main
//	flags: 0x10000000
//	sourceBounds: [0, 0, 100, 50]
//	extras:
//	  - {key: count, type: int, value: 3}
//	  - key: nested
//	    type: extras
//	    extras:
//	      - {key: name, type: string, value: x}
//	selector:
//	  action: intent.action.MAIN
//
// Decoding is strict: duplicate keys, unknown fields and unknown extra types
// are rejected with *intent.DecodeError.
package document

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"

	intent "github.com/reoring/intent"
)

// MaxDepth bounds selector and extras nesting in a document.
const MaxDepth = 32

// Document is the serialized shape of a descriptor. Absent fields are omitted.
type Document struct {
	Action       *string   `json:"action,omitempty" yaml:"action,omitempty"`
	Data         *string   `json:"data,omitempty" yaml:"data,omitempty"`
	Type         *string   `json:"type,omitempty" yaml:"type,omitempty"`
	Package      *string   `json:"package,omitempty" yaml:"package,omitempty"`
	Component    string    `json:"component,omitempty" yaml:"component,omitempty"`
	Categories   []string  `json:"categories,omitempty" yaml:"categories,omitempty"`
	Flags        HexFlags  `json:"flags,omitempty" yaml:"flags,omitempty"`
	SourceBounds []int32   `json:"sourceBounds,omitempty" yaml:"sourceBounds,omitempty"`
	Selector     *Document `json:"selector,omitempty" yaml:"selector,omitempty"`
	Extras       []Entry   `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// Entry is one extras value. Scalars and slices travel in Value; nested
// payloads use Extras (type "extras") or Descriptor (type "descriptor").
type Entry struct {
	Key        string    `json:"key" yaml:"key"`
	Type       string    `json:"type" yaml:"type"`
	Value      any       `json:"value,omitempty" yaml:"value,omitempty"`
	Extras     []Entry   `json:"extras,omitempty" yaml:"extras,omitempty"`
	Descriptor *Document `json:"descriptor,omitempty" yaml:"descriptor,omitempty"`
}

// FromDescriptor converts d to its document shape. Categories come out sorted
// and extras keep their insertion order.
func FromDescriptor(d *intent.Descriptor) *Document {
	doc := &Document{}
	if a, ok := d.Action(); ok {
		doc.Action = &a
	}
	if u, ok := d.Data(); ok {
		s := u.String()
		doc.Data = &s
	}
	if t, ok := d.Type(); ok {
		doc.Type = &t
	}
	if p, ok := d.Package(); ok {
		doc.Package = &p
	}
	if c, ok := d.Component(); ok {
		text, _ := c.MarshalText()
		doc.Component = string(text)
	}
	doc.Categories = d.Categories()
	doc.Flags = HexFlags(d.Flags())
	if r, ok := d.SourceBounds(); ok {
		doc.SourceBounds = []int32{r.Left, r.Top, r.Right, r.Bottom}
	}
	if sel := d.Selector(); sel != nil {
		doc.Selector = FromDescriptor(sel)
	}
	doc.Extras = entriesFrom(d.Extras())
	return doc
}

func entriesFrom(x *intent.Extras) []Entry {
	if x.Len() == 0 {
		return nil
	}
	out := make([]Entry, 0, x.Len())
	x.Range(func(key string, v intent.Value) bool {
		out = append(out, entryFrom(key, v))
		return true
	})
	return out
}

func entryFrom(key string, v intent.Value) Entry {
	e := Entry{Key: key, Type: v.Kind().String()}
	switch v.Kind() {
	case intent.KindBool:
		e.Value, _ = v.AsBool()
	case intent.KindInt:
		i, _ := v.AsInt()
		e.Value = int64(i)
	case intent.KindLong:
		e.Value, _ = v.AsLong()
	case intent.KindFloat:
		f, _ := v.AsFloat()
		e.Value = floatOut(float64(f))
	case intent.KindDouble:
		f, _ := v.AsDouble()
		e.Value = floatOut(f)
	case intent.KindString:
		e.Value, _ = v.AsString()
	case intent.KindStringSlice:
		s, _ := v.AsStringSlice()
		e.Value = nonNil(s)
	case intent.KindIntSlice:
		s, _ := v.AsIntSlice()
		e.Value = nonNil(s)
	case intent.KindLongSlice:
		s, _ := v.AsLongSlice()
		e.Value = nonNil(s)
	case intent.KindBytes:
		b, _ := v.AsBytes()
		e.Value = base64.StdEncoding.EncodeToString(b)
	case intent.KindExtras:
		x, _ := v.AsExtras()
		e.Extras = entriesFrom(x)
	case intent.KindDescriptor:
		nd, _ := v.AsDescriptor()
		e.Descriptor = FromDescriptor(nd)
	}
	return e
}

// floatOut spells non-finite values as strings since JSON has no literal for them.
func floatOut(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return f
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Descriptor builds the descriptor the document describes.
func (doc *Document) Descriptor() (*intent.Descriptor, error) {
	return doc.build("", 0)
}

func docError(code, field, format string, args ...any) *intent.DecodeError {
	e := intent.NewDecodeError(code, -1, format, args...)
	e.Field = field
	return e
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func (doc *Document) build(path string, depth int) (*intent.Descriptor, error) {
	if depth > MaxDepth {
		return nil, docError(intent.CodeTooDeep, path, "nesting deeper than %d", MaxDepth)
	}
	d := intent.New()
	if doc == nil {
		return d, nil
	}
	if doc.Action != nil {
		d.SetAction(*doc.Action)
	}
	switch {
	case doc.Data != nil && doc.Type != nil:
		d.SetDataAndType(intent.ParseURI(*doc.Data), *doc.Type)
	case doc.Data != nil:
		d.SetData(intent.ParseURI(*doc.Data))
	case doc.Type != nil:
		d.SetType(*doc.Type)
	}
	if doc.Component != "" {
		var c intent.ComponentName
		if err := c.UnmarshalText([]byte(doc.Component)); err != nil {
			return nil, docError(intent.CodeInvalidFormat, join(path, "component"), "component %q is not package/class", doc.Component)
		}
		d.SetComponent(c)
	}
	for _, c := range doc.Categories {
		d.AddCategory(c)
	}
	d.SetFlags(intent.Flags(doc.Flags))
	if doc.SourceBounds != nil {
		b := doc.SourceBounds
		if len(b) != 4 {
			return nil, docError(intent.CodeInvalidFormat, join(path, "sourceBounds"), "sourceBounds needs 4 values, got %d", len(b))
		}
		d.SetSourceBounds(intent.Rect{Left: b[0], Top: b[1], Right: b[2], Bottom: b[3]})
	}
	if doc.Selector != nil {
		if doc.Package != nil {
			return nil, docError(intent.CodeInvalidFormat, join(path, "selector"), "selector and package are mutually exclusive")
		}
		sel, err := doc.Selector.build(join(path, "selector"), depth+1)
		if err != nil {
			return nil, err
		}
		if err := d.SetSelector(sel); err != nil {
			return nil, &intent.DecodeError{Code: intent.CodeInvalidFormat, Field: join(path, "selector"), Offset: -1, Message: "invalid selector", Cause: err}
		}
	}
	if doc.Package != nil {
		if err := d.SetPackage(*doc.Package); err != nil {
			return nil, &intent.DecodeError{Code: intent.CodeInvalidFormat, Field: join(path, "package"), Offset: -1, Message: "invalid package", Cause: err}
		}
	}
	x, err := buildExtras(doc.Extras, join(path, "extras"), depth)
	if err != nil {
		return nil, err
	}
	d.ReplaceExtras(x)
	return d, nil
}

func buildExtras(entries []Entry, path string, depth int) (*intent.Extras, error) {
	x := intent.NewExtras()
	for i, e := range entries {
		at := fmt.Sprintf("%s[%d]", path, i)
		if x.Has(e.Key) {
			return nil, docError(intent.CodeDuplicateKey, at, "extra %q appears twice", e.Key)
		}
		v, err := e.value(at, depth)
		if err != nil {
			return nil, err
		}
		x.Put(e.Key, v)
	}
	return x, nil
}

func (e Entry) value(path string, depth int) (intent.Value, error) {
	kind, ok := intent.ParseKind(e.Type)
	if !ok {
		return intent.Value{}, docError(intent.CodeUnknownType, join(path, "type"), "unknown extra type %q", e.Type)
	}
	if (e.Extras != nil && kind != intent.KindExtras) || (e.Descriptor != nil && kind != intent.KindDescriptor) {
		return intent.Value{}, docError(intent.CodeInvalidFormat, path, "nested payload does not match type %s", kind)
	}
	if e.Value == nil && kind.IsScalar() {
		return zeroValue(kind), nil
	}
	bad := func() (intent.Value, error) {
		return intent.Value{}, docError(intent.CodeInvalidFormat, join(path, "value"), "%v is not a valid %s", e.Value, kind)
	}
	switch kind {
	case intent.KindExtras:
		if depth+1 > MaxDepth {
			return intent.Value{}, docError(intent.CodeTooDeep, path, "nesting deeper than %d", MaxDepth)
		}
		x, err := buildExtras(e.Extras, join(path, "extras"), depth+1)
		if err != nil {
			return intent.Value{}, err
		}
		return intent.ExtrasValue(x), nil
	case intent.KindDescriptor:
		nd, err := e.Descriptor.build(join(path, "descriptor"), depth+1)
		if err != nil {
			return intent.Value{}, err
		}
		return intent.DescriptorValue(nd), nil
	case intent.KindBool:
		b, ok := e.Value.(bool)
		if !ok {
			return bad()
		}
		return intent.Bool(b), nil
	case intent.KindInt:
		i, ok := toInt64(e.Value)
		if !ok || i < math.MinInt32 || i > math.MaxInt32 {
			return bad()
		}
		return intent.Int(int32(i)), nil
	case intent.KindLong:
		i, ok := toInt64(e.Value)
		if !ok {
			return bad()
		}
		return intent.Long(i), nil
	case intent.KindFloat:
		f, ok := toFloat64(e.Value)
		if !ok {
			return bad()
		}
		return intent.Float(float32(f)), nil
	case intent.KindDouble:
		f, ok := toFloat64(e.Value)
		if !ok {
			return bad()
		}
		return intent.Double(f), nil
	case intent.KindString:
		s, ok := e.Value.(string)
		if !ok {
			return bad()
		}
		return intent.String(s), nil
	case intent.KindBytes:
		if e.Value == nil {
			return intent.Bytes(nil), nil
		}
		s, ok := e.Value.(string)
		if !ok {
			return bad()
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return bad()
		}
		return intent.Bytes(b), nil
	case intent.KindStringSlice:
		items, ok := toList(e.Value)
		if !ok {
			return bad()
		}
		out := make([]string, len(items))
		for i, it := range items {
			if out[i], ok = it.(string); !ok {
				return bad()
			}
		}
		return intent.StringSlice(out), nil
	case intent.KindIntSlice:
		items, ok := toList(e.Value)
		if !ok {
			return bad()
		}
		out := make([]int32, len(items))
		for i, it := range items {
			n, ok := toInt64(it)
			if !ok || n < math.MinInt32 || n > math.MaxInt32 {
				return bad()
			}
			out[i] = int32(n)
		}
		return intent.IntSlice(out), nil
	default: // KindLongSlice
		items, ok := toList(e.Value)
		if !ok {
			return bad()
		}
		out := make([]int64, len(items))
		for i, it := range items {
			if out[i], ok = toInt64(it); !ok {
				return bad()
			}
		}
		return intent.LongSlice(out), nil
	}
}

// zeroValue stands in for an omitted scalar value.
func zeroValue(k intent.Kind) intent.Value {
	switch k {
	case intent.KindBool:
		return intent.Bool(false)
	case intent.KindInt:
		return intent.Int(0)
	case intent.KindLong:
		return intent.Long(0)
	case intent.KindFloat:
		return intent.Float(0)
	case intent.KindDouble:
		return intent.Double(0)
	}
	return intent.String("")
}

// toList accepts a decoded sequence; a missing value is an empty list.
func toList(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case []any:
		return t, true
	}
	return nil, false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n), true
		}
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
