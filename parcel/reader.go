package parcel

import (
	"encoding/binary"
	"math"

	intent "github.com/reoring/intent"
)

// Reader consumes the primitives written by Writer. Every failure is an
// *intent.DecodeError carrying the offset where it happened.
type Reader struct {
	buf   []byte
	off   int
	field string
}

// NewReader reads from b without copying it.
func NewReader(b []byte) *Reader { return &Reader{buf: b} }

// Offset returns the current read position.
func (r *Reader) Offset() int { return r.off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) errorf(code, format string, args ...any) error {
	e := intent.NewDecodeError(code, int64(r.off), format, args...)
	e.Field = r.field
	return e
}

func (r *Reader) need(n int) error {
	if n < 0 || r.Remaining() < n {
		return r.errorf(intent.CodeTruncated, "need %d bytes, have %d", n, r.Remaining())
	}
	return nil
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return int32(v), nil
}

// ReadInt64 reads a little-endian int64.
func (r *Reader) ReadInt64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return int64(v), nil
}

// ReadFloat32 reads an IEEE 754 float32 from its int32 bits.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadInt32()
	return math.Float32frombits(uint32(v)), err
}

// ReadFloat64 reads an IEEE 754 float64 from its int64 bits.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadInt64()
	return math.Float64frombits(uint64(v)), err
}

// ReadBool reads an int32 that must be 0 or 1.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadInt32()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, r.errorf(intent.CodeInvalidFormat, "bool must be 0 or 1, got %d", v)
}

// ReadOptString returns ok=false for the absent marker.
func (r *Reader) ReadOptString() (s string, ok bool, err error) {
	n, err := r.ReadInt32()
	if err != nil {
		return "", false, err
	}
	if n == -1 {
		return "", false, nil
	}
	if n < -1 {
		return "", false, r.errorf(intent.CodeInvalidLength, "string length %d", n)
	}
	if err := r.need(int(n)); err != nil {
		return "", false, err
	}
	b := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	return string(b), true, nil
}

// ReadString is ReadOptString for values that must be present.
func (r *Reader) ReadString() (string, error) {
	s, ok, err := r.ReadOptString()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", r.errorf(intent.CodeInvalidFormat, "unexpected absent string")
	}
	return s, nil
}

// ReadByteSlice returns a copy of the next length-prefixed byte run.
func (r *Reader) ReadByteSlice() ([]byte, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, r.errorf(intent.CodeInvalidLength, "byte length %d", n)
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.off:])
	r.off += int(n)
	return out, nil
}

// readCount reads an element count that must fit in the remaining input
// given at least minSize bytes per element.
func (r *Reader) readCount(minSize int) (int, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 || int(n)*minSize > r.Remaining() {
		return 0, r.errorf(intent.CodeInvalidLength, "element count %d", n)
	}
	return int(n), nil
}
