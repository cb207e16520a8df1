package intent

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind enumerates the value types an Extras entry can hold.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt    // int32
	KindLong   // int64
	KindFloat  // float32
	KindDouble // float64
	KindString
	KindStringSlice
	KindIntSlice
	KindLongSlice
	KindBytes
	KindExtras     // nested structured payload
	KindDescriptor // nested descriptor
)

var kindNames = [...]string{
	KindInvalid:     "invalid",
	KindBool:        "bool",
	KindInt:         "int",
	KindLong:        "long",
	KindFloat:       "float",
	KindDouble:      "double",
	KindString:      "string",
	KindStringSlice: "string[]",
	KindIntSlice:    "int[]",
	KindLongSlice:   "long[]",
	KindBytes:       "bytes",
	KindExtras:      "extras",
	KindDescriptor:  "descriptor",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s && Kind(k) != KindInvalid {
			return Kind(k), true
		}
	}
	return KindInvalid, false
}

// IsScalar reports whether k is a single bool, number or string.
func (k Kind) IsScalar() bool {
	switch k {
	case KindBool, KindInt, KindLong, KindFloat, KindDouble, KindString:
		return true
	}
	return false
}

// Value is a tagged extras value. Construct it with Bool, Int, Long, Float,
// Double, String, StringSlice, IntSlice, LongSlice, Bytes, ExtrasValue or
// DescriptorValue; the zero Value has KindInvalid. Constructors and accessors
// copy slices and nested payloads, so a Value never aliases caller memory.
type Value struct {
	kind Kind
	v    any
}

func Bool(b bool) Value         { return Value{kind: KindBool, v: b} }
func Int(i int32) Value         { return Value{kind: KindInt, v: i} }
func Long(i int64) Value        { return Value{kind: KindLong, v: i} }
func Float(f float32) Value     { return Value{kind: KindFloat, v: f} }
func Double(f float64) Value    { return Value{kind: KindDouble, v: f} }
func String(s string) Value     { return Value{kind: KindString, v: s} }
func Bytes(b []byte) Value      { return Value{kind: KindBytes, v: slices.Clone(b)} }
func IntSlice(v []int32) Value  { return Value{kind: KindIntSlice, v: slices.Clone(v)} }
func LongSlice(v []int64) Value { return Value{kind: KindLongSlice, v: slices.Clone(v)} }

func StringSlice(v []string) Value {
	return Value{kind: KindStringSlice, v: slices.Clone(v)}
}

// ExtrasValue nests a deep copy of e.
func ExtrasValue(e *Extras) Value {
	if e == nil {
		e = NewExtras()
	}
	return Value{kind: KindExtras, v: e.Clone()}
}

// DescriptorValue nests a deep copy of d.
func DescriptorValue(d *Descriptor) Value {
	if d == nil {
		d = New()
	}
	return Value{kind: KindDescriptor, v: d.Clone()}
}

// Kind returns the value's type tag.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v was built by one of the constructors.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) AsBool() (bool, bool)       { b, ok := v.v.(bool); return b, ok }
func (v Value) AsInt() (int32, bool)       { i, ok := v.v.(int32); return i, ok }
func (v Value) AsLong() (int64, bool)      { i, ok := v.v.(int64); return i, ok }
func (v Value) AsFloat() (float32, bool)   { f, ok := v.v.(float32); return f, ok }
func (v Value) AsDouble() (float64, bool)  { f, ok := v.v.(float64); return f, ok }
func (v Value) AsString() (string, bool)   { s, ok := v.v.(string); return s, ok }
func (v Value) AsBytes() ([]byte, bool)    { b, ok := v.v.([]byte); return slices.Clone(b), ok }
func (v Value) AsIntSlice() ([]int32, bool) {
	s, ok := v.v.([]int32)
	return slices.Clone(s), ok
}
func (v Value) AsLongSlice() ([]int64, bool) {
	s, ok := v.v.([]int64)
	return slices.Clone(s), ok
}
func (v Value) AsStringSlice() ([]string, bool) {
	s, ok := v.v.([]string)
	return slices.Clone(s), ok
}

// AsExtras returns a deep copy of the nested payload.
func (v Value) AsExtras() (*Extras, bool) {
	e, ok := v.v.(*Extras)
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// AsDescriptor returns a deep copy of the nested descriptor.
func (v Value) AsDescriptor() (*Descriptor, bool) {
	d, ok := v.v.(*Descriptor)
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch t := v.v.(type) {
	case []string:
		return Value{kind: v.kind, v: slices.Clone(t)}
	case []int32:
		return Value{kind: v.kind, v: slices.Clone(t)}
	case []int64:
		return Value{kind: v.kind, v: slices.Clone(t)}
	case []byte:
		return Value{kind: v.kind, v: slices.Clone(t)}
	case *Extras:
		return Value{kind: v.kind, v: t.Clone()}
	case *Descriptor:
		return Value{kind: v.kind, v: t.Clone()}
	}
	return v
}

// Equal reports deep equality. Floating point values compare by bit pattern,
// so NaN equals itself.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch a := v.v.(type) {
	case float32:
		b, _ := o.v.(float32)
		return math.Float32bits(a) == math.Float32bits(b)
	case float64:
		b, _ := o.v.(float64)
		return math.Float64bits(a) == math.Float64bits(b)
	case []string:
		b, _ := o.v.([]string)
		return slices.Equal(a, b)
	case []int32:
		b, _ := o.v.([]int32)
		return slices.Equal(a, b)
	case []int64:
		b, _ := o.v.([]int64)
		return slices.Equal(a, b)
	case []byte:
		b, _ := o.v.([]byte)
		return bytes.Equal(a, b)
	case *Extras:
		b, _ := o.v.(*Extras)
		return a.Equal(b)
	case *Descriptor:
		b, _ := o.v.(*Descriptor)
		return a.Equal(b)
	}
	return v.v == o.v
}

// String renders scalars the way the URI form carries them.
func (v Value) String() string {
	switch t := v.v.(type) {
	case bool:
		return strconv.FormatBool(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	case []string:
		return "[" + strings.Join(t, ", ") + "]"
	case *Extras:
		return t.String()
	case *Descriptor:
		return t.String()
	case nil:
		return "<invalid>"
	}
	return fmt.Sprint(v.v)
}

// Extras is an insertion-ordered map from key to Value. A nil *Extras is a
// valid empty, read-only map.
type Extras struct {
	keys []string
	vals map[string]Value
}

// NewExtras returns an empty map.
func NewExtras() *Extras {
	return &Extras{vals: map[string]Value{}}
}

// Len returns the number of entries.
func (e *Extras) Len() int {
	if e == nil {
		return 0
	}
	return len(e.keys)
}

// Put stores a copy of v under key. Re-putting a key keeps its position.
func (e *Extras) Put(key string, v Value) {
	if e.vals == nil {
		e.vals = map[string]Value{}
	}
	if _, ok := e.vals[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.vals[key] = v.Clone()
}

// Get returns a copy of the value stored under key.
func (e *Extras) Get(key string) (Value, bool) {
	if e == nil {
		return Value{}, false
	}
	v, ok := e.vals[key]
	if !ok {
		return Value{}, false
	}
	return v.Clone(), true
}

// Has reports whether key is present.
func (e *Extras) Has(key string) bool {
	if e == nil {
		return false
	}
	_, ok := e.vals[key]
	return ok
}

// Remove deletes key and reports whether it was present.
func (e *Extras) Remove(key string) bool {
	if e == nil {
		return false
	}
	if _, ok := e.vals[key]; !ok {
		return false
	}
	delete(e.vals, key)
	e.keys = slices.DeleteFunc(e.keys, func(k string) bool { return k == key })
	return true
}

// Keys returns the keys in insertion order.
func (e *Extras) Keys() []string {
	if e == nil {
		return nil
	}
	return slices.Clone(e.keys)
}

// Range calls fn for each entry in insertion order until fn returns false.
// Values handed to fn are the stored ones; fn must not mutate them.
func (e *Extras) Range(fn func(key string, v Value) bool) {
	if e == nil {
		return
	}
	for _, k := range e.keys {
		if !fn(k, e.vals[k]) {
			return
		}
	}
}

// PutAll copies every entry of o into e; entries of o win on collision.
func (e *Extras) PutAll(o *Extras) {
	o.Range(func(k string, v Value) bool {
		e.Put(k, v)
		return true
	})
}

// Clone returns a deep copy; Clone of nil is nil.
func (e *Extras) Clone() *Extras {
	if e == nil {
		return nil
	}
	out := &Extras{keys: slices.Clone(e.keys), vals: make(map[string]Value, len(e.vals))}
	for k, v := range e.vals {
		out.vals[k] = v.Clone()
	}
	return out
}

// Equal reports whether both maps hold equal values under the same keys.
// Insertion order is not compared.
func (e *Extras) Equal(o *Extras) bool {
	if e.Len() != o.Len() {
		return false
	}
	if e.Len() == 0 {
		return true
	}
	for k, v := range e.vals {
		ov, ok := o.vals[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (e *Extras) String() string {
	b := &strings.Builder{}
	b.WriteString("Extras[{")
	first := true
	e.Range(func(k string, v Value) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v.String())
		return true
	})
	b.WriteString("}]")
	return b.String()
}
