package parcel

import (
	"fmt"

	intent "github.com/reoring/intent"
)

// bundleMagic prefixes every encoded extras map ("BNDL" little-endian).
const bundleMagic int32 = 0x4C444E42

// Value type tags inside a bundle.
const (
	valString      int32 = 0
	valInt         int32 = 1
	valBundle      int32 = 3
	valDescriptor  int32 = 4
	valLong        int32 = 6
	valFloat       int32 = 7
	valDouble      int32 = 8
	valBool        int32 = 9
	valBytes       int32 = 13
	valStringArray int32 = 14
	valIntArray    int32 = 18
	valLongArray   int32 = 19
)

var kindTags = map[intent.Kind]int32{
	intent.KindString:      valString,
	intent.KindInt:         valInt,
	intent.KindExtras:      valBundle,
	intent.KindDescriptor:  valDescriptor,
	intent.KindLong:        valLong,
	intent.KindFloat:       valFloat,
	intent.KindDouble:      valDouble,
	intent.KindBool:        valBool,
	intent.KindBytes:       valBytes,
	intent.KindStringSlice: valStringArray,
	intent.KindIntSlice:    valIntArray,
	intent.KindLongSlice:   valLongArray,
}

// writeBundle writes -1 for an absent map, otherwise the byte length of the
// rest of the bundle, the magic, the entry count and the entries.
func (e *encoder) writeBundle(x *intent.Extras, depth int) error {
	w := e.w
	if x == nil {
		w.WriteInt32(-1)
		return nil
	}
	lenPos := w.reserveInt32()
	start := w.Len()
	w.WriteInt32(bundleMagic)
	w.WriteInt32(int32(x.Len()))
	var err error
	x.Range(func(key string, v intent.Value) bool {
		w.WriteString(key)
		err = e.writeValue(key, v, depth)
		return err == nil
	})
	if err != nil {
		return err
	}
	w.patchInt32(lenPos, int32(w.Len()-start))
	return nil
}

func (e *encoder) writeValue(key string, v intent.Value, depth int) error {
	w := e.w
	tag, ok := kindTags[v.Kind()]
	if !ok {
		return fmt.Errorf("%w: extra %q has kind %s", ErrUnsupportedValue, key, v.Kind())
	}
	w.WriteInt32(tag)
	switch v.Kind() {
	case intent.KindString:
		s, _ := v.AsString()
		w.WriteString(s)
	case intent.KindInt:
		i, _ := v.AsInt()
		w.WriteInt32(i)
	case intent.KindLong:
		i, _ := v.AsLong()
		w.WriteInt64(i)
	case intent.KindFloat:
		f, _ := v.AsFloat()
		w.WriteFloat32(f)
	case intent.KindDouble:
		f, _ := v.AsDouble()
		w.WriteFloat64(f)
	case intent.KindBool:
		b, _ := v.AsBool()
		w.WriteBool(b)
	case intent.KindBytes:
		b, _ := v.AsBytes()
		w.WriteByteSlice(b)
	case intent.KindStringSlice:
		ss, _ := v.AsStringSlice()
		w.WriteInt32(int32(len(ss)))
		for _, s := range ss {
			w.WriteString(s)
		}
	case intent.KindIntSlice:
		is, _ := v.AsIntSlice()
		w.WriteInt32(int32(len(is)))
		for _, i := range is {
			w.WriteInt32(i)
		}
	case intent.KindLongSlice:
		ls, _ := v.AsLongSlice()
		w.WriteInt32(int32(len(ls)))
		for _, l := range ls {
			w.WriteInt64(l)
		}
	case intent.KindExtras:
		x, _ := v.AsExtras()
		if depth+1 > e.maxDepth {
			return fmt.Errorf("%w: extra %q", ErrTooDeep, key)
		}
		return e.writeBundle(x, depth+1)
	case intent.KindDescriptor:
		d, _ := v.AsDescriptor()
		if depth+1 > e.maxDepth {
			return fmt.Errorf("%w: extra %q", ErrTooDeep, key)
		}
		return e.writeBody(d, depth+1)
	}
	return nil
}

func (d *decoder) readBundle(depth int) (*intent.Extras, error) {
	r := d.r
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	if n < 8 {
		return nil, r.errorf(intent.CodeInvalidLength, "bundle length %d", n)
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	end := r.Offset() + int(n)
	magic, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if magic != bundleMagic {
		return nil, r.errorf(intent.CodeBadMagic, "bad bundle magic 0x%08x", uint32(magic))
	}
	// key length prefix + tag at minimum
	count, err := r.readCount(8)
	if err != nil {
		return nil, err
	}
	x := intent.NewExtras()
	field := r.field
	for i := 0; i < count; i++ {
		r.field = field
		key, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		r.field = field + "." + key
		v, err := d.readValue(depth)
		if err != nil {
			return nil, err
		}
		x.Put(key, v)
	}
	r.field = field
	if r.Offset() != end {
		return nil, r.errorf(intent.CodeInvalidLength, "bundle declared %d bytes, consumed %d", n, r.Offset()-(end-int(n)))
	}
	return x, nil
}

func (d *decoder) readValue(depth int) (intent.Value, error) {
	r := d.r
	tag, err := r.ReadInt32()
	if err != nil {
		return intent.Value{}, err
	}
	switch tag {
	case valString:
		s, err := r.ReadString()
		return intent.String(s), err
	case valInt:
		i, err := r.ReadInt32()
		return intent.Int(i), err
	case valLong:
		i, err := r.ReadInt64()
		return intent.Long(i), err
	case valFloat:
		f, err := r.ReadFloat32()
		return intent.Float(f), err
	case valDouble:
		f, err := r.ReadFloat64()
		return intent.Double(f), err
	case valBool:
		b, err := r.ReadBool()
		return intent.Bool(b), err
	case valBytes:
		b, err := r.ReadByteSlice()
		return intent.Bytes(b), err
	case valStringArray:
		n, err := r.readCount(4)
		if err != nil {
			return intent.Value{}, err
		}
		ss := make([]string, n)
		for i := range ss {
			if ss[i], err = r.ReadString(); err != nil {
				return intent.Value{}, err
			}
		}
		return intent.StringSlice(ss), nil
	case valIntArray:
		n, err := r.readCount(4)
		if err != nil {
			return intent.Value{}, err
		}
		is := make([]int32, n)
		for i := range is {
			if is[i], err = r.ReadInt32(); err != nil {
				return intent.Value{}, err
			}
		}
		return intent.IntSlice(is), nil
	case valLongArray:
		n, err := r.readCount(8)
		if err != nil {
			return intent.Value{}, err
		}
		ls := make([]int64, n)
		for i := range ls {
			if ls[i], err = r.ReadInt64(); err != nil {
				return intent.Value{}, err
			}
		}
		return intent.LongSlice(ls), nil
	case valBundle:
		if depth+1 > d.maxDepth {
			return intent.Value{}, r.errorf(intent.CodeTooDeep, "nesting deeper than %d", d.maxDepth)
		}
		x, err := d.readBundle(depth + 1)
		if err != nil {
			return intent.Value{}, err
		}
		return intent.ExtrasValue(x), nil
	case valDescriptor:
		if depth+1 > d.maxDepth {
			return intent.Value{}, r.errorf(intent.CodeTooDeep, "nesting deeper than %d", d.maxDepth)
		}
		nd, err := d.readBody(depth + 1)
		if err != nil {
			return intent.Value{}, err
		}
		return intent.DescriptorValue(nd), nil
	}
	return intent.Value{}, r.errorf(intent.CodeUnknownType, "unknown value type tag %d", tag)
}
