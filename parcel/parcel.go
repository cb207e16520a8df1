// Package parcel implements the binary record form of a descriptor.
//
// Layout (all integers little-endian int32 unless noted):
//
//	magic "INTD" | version | body
//	body = action(str) data(tag[,str]) type(str) flags package(str)
//	       component(pkg str[,class str]) bounds(0 | 1,l,t,r,b)
//	       categories(count,str...) selector(0 | 1,body) extras(bundle)
//
// Strings are a byte length (-1 for absent) followed by the raw
// string bytes. The field order
// is part of the format and must not change between versions.
package parcel

import (
	"context"
	"errors"
	"fmt"

	intent "github.com/reoring/intent"
)

// Magic opens every record.
var Magic = [4]byte{'I', 'N', 'T', 'D'}

// Version is the record version written by Marshal.
const Version int32 = 1

// DefaultMaxDepth bounds selector and extras nesting.
const DefaultMaxDepth = 32

const (
	uriAbsent int32 = 0
	uriString int32 = 1
)

var (
	// ErrUnsupportedValue is returned by Marshal for extras values it cannot encode.
	ErrUnsupportedValue = errors.New("parcel: unsupported extras value")
	// ErrTooDeep is returned by Marshal when nesting exceeds MaxDepth.
	ErrTooDeep = errors.New("parcel: nesting too deep")
)

// Options tune encoding and decoding. The zero value uses the defaults.
type Options struct {
	// MaxDepth bounds selector and extras nesting (0 means DefaultMaxDepth).
	MaxDepth int
	// Interner, when set, canonicalizes decoded actions and categories.
	Interner intent.Interner
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Marshal encodes d as a versioned record.
func Marshal(d *intent.Descriptor) ([]byte, error) { return MarshalWith(d, Options{}) }

// MarshalWith is Marshal with explicit options.
func MarshalWith(d *intent.Descriptor, opt Options) ([]byte, error) {
	if d == nil {
		return nil, errors.New("parcel: nil descriptor")
	}
	e := &encoder{w: &Writer{}, maxDepth: opt.maxDepth()}
	e.w.buf = append(e.w.buf, Magic[:]...)
	e.w.WriteInt32(Version)
	if err := e.writeBody(d, 0); err != nil {
		return nil, err
	}
	return e.w.Bytes(), nil
}

// Unmarshal decodes a record produced by Marshal. Failures are
// *intent.DecodeError values.
func Unmarshal(b []byte) (*intent.Descriptor, error) { return UnmarshalWith(b, Options{}) }

// UnmarshalWith is Unmarshal with explicit options.
func UnmarshalWith(b []byte, opt Options) (*intent.Descriptor, error) {
	r := NewReader(b)
	if len(b) < len(Magic) || [4]byte(b[:4]) != Magic {
		return nil, r.errorf(intent.CodeBadMagic, "record does not start with %q", Magic[:])
	}
	r.off = len(Magic)
	r.field = "version"
	v, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if v != Version {
		return nil, r.errorf(intent.CodeUnsupportedVersion, "record version %d, want %d", v, Version)
	}
	dec := &decoder{r: r, maxDepth: opt.maxDepth()}
	d, err := dec.readBody(0)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		r.field = ""
		return nil, r.errorf(intent.CodeTrailingData, "%d bytes after record", r.Remaining())
	}
	d.Intern(opt.Interner)
	return d, nil
}

// Codec returns the binary form as an intent.Codec.
func Codec(opt Options) intent.Codec[[]byte] { return parcelCodec{opt: opt} }

type parcelCodec struct{ opt Options }

func (c parcelCodec) Encode(ctx context.Context, d *intent.Descriptor) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return MarshalWith(d, c.opt)
}

func (c parcelCodec) Decode(ctx context.Context, b []byte) (*intent.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return UnmarshalWith(b, c.opt)
}

type encoder struct {
	w        *Writer
	maxDepth int
}

func (e *encoder) writeBody(d *intent.Descriptor, depth int) error {
	w := e.w
	w.WriteOptString(d.Action())
	if u, ok := d.Data(); ok {
		w.WriteInt32(uriString)
		w.WriteString(u.String())
	} else {
		w.WriteInt32(uriAbsent)
	}
	w.WriteOptString(d.Type())
	w.WriteInt32(int32(d.Flags()))
	w.WriteOptString(d.Package())
	if c, ok := d.Component(); ok {
		w.WriteString(c.Package)
		w.WriteString(c.Class)
	} else {
		w.WriteNullString()
	}
	if r, ok := d.SourceBounds(); ok {
		w.WriteInt32(1)
		w.WriteInt32(r.Left)
		w.WriteInt32(r.Top)
		w.WriteInt32(r.Right)
		w.WriteInt32(r.Bottom)
	} else {
		w.WriteInt32(0)
	}
	cats := d.Categories()
	w.WriteInt32(int32(len(cats)))
	for _, c := range cats {
		w.WriteString(c)
	}
	if sel := d.Selector(); sel != nil {
		if depth+1 > e.maxDepth {
			return fmt.Errorf("%w: selector chain", ErrTooDeep)
		}
		w.WriteInt32(1)
		if err := e.writeBody(sel, depth+1); err != nil {
			return err
		}
	} else {
		w.WriteInt32(0)
	}
	return e.writeBundle(d.Extras(), depth)
}

type decoder struct {
	r        *Reader
	maxDepth int
}

func (dec *decoder) readBody(depth int) (*intent.Descriptor, error) {
	r := dec.r
	prefix := r.field
	if prefix == "version" {
		prefix = ""
	}
	at := func(name string) {
		if prefix == "" {
			r.field = name
			return
		}
		r.field = prefix + "." + name
	}
	d := intent.New()

	at("action")
	if s, ok, err := r.ReadOptString(); err != nil {
		return nil, err
	} else if ok {
		d.SetAction(s)
	}

	at("data")
	tag, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	var data *intent.URI
	switch tag {
	case uriAbsent:
	case uriString:
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		u := intent.ParseURI(s)
		data = &u
	default:
		return nil, r.errorf(intent.CodeUnknownType, "unknown data tag %d", tag)
	}

	at("type")
	mimeType, hasType, err := r.ReadOptString()
	if err != nil {
		return nil, err
	}
	switch {
	case data != nil && hasType:
		d.SetDataAndType(*data, mimeType)
	case data != nil:
		d.SetData(*data)
	case hasType:
		d.SetType(mimeType)
	}

	at("flags")
	flags, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	d.SetFlags(intent.Flags(uint32(flags)))

	at("package")
	pkg, hasPkg, err := r.ReadOptString()
	if err != nil {
		return nil, err
	}
	if hasPkg {
		// Cannot fail: the selector is read later.
		_ = d.SetPackage(pkg)
	}

	at("component")
	cpkg, hasComp, err := r.ReadOptString()
	if err != nil {
		return nil, err
	}
	if hasComp {
		cls, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		d.SetClassName(cpkg, cls)
	}

	at("sourceBounds")
	present, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if present {
		var v [4]int32
		for i := range v {
			if v[i], err = r.ReadInt32(); err != nil {
				return nil, err
			}
		}
		d.SetSourceBounds(intent.Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]})
	}

	at("categories")
	n, err := r.readCount(4)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		c, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		d.AddCategory(c)
	}

	at("selector")
	present, err = r.ReadBool()
	if err != nil {
		return nil, err
	}
	if present {
		if depth+1 > dec.maxDepth {
			return nil, r.errorf(intent.CodeTooDeep, "selector nesting deeper than %d", dec.maxDepth)
		}
		off := r.Offset()
		sel, err := dec.readBody(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := d.SetSelector(sel); err != nil {
			return nil, &intent.DecodeError{Code: intent.CodeInvalidFormat, Field: prefixed(prefix, "selector"), Offset: int64(off), Message: "selector conflicts with package", Cause: err}
		}
	}

	at("extras")
	x, err := dec.readBundle(depth)
	if err != nil {
		return nil, err
	}
	d.ReplaceExtras(x)
	r.field = prefix
	return d, nil
}

func prefixed(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
