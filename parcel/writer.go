package parcel

import (
	"encoding/binary"
	"math"
)

// Writer appends little-endian primitives to a growing buffer.
type Writer struct {
	buf []byte
}

// Bytes returns the encoded buffer. It aliases the writer's storage.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteInt32 appends v little-endian.
func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteInt64 appends v little-endian.
func (w *Writer) WriteInt64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// WriteFloat32 appends the IEEE 754 bits of v as an int32.
func (w *Writer) WriteFloat32(v float32) { w.WriteInt32(int32(math.Float32bits(v))) }

// WriteFloat64 appends the IEEE 754 bits of v as an int64.
func (w *Writer) WriteFloat64(v float64) { w.WriteInt64(int64(math.Float64bits(v))) }

// WriteBool appends v as an int32 0 or 1.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteInt32(1)
		return
	}
	w.WriteInt32(0)
}

// WriteString writes an int32 byte length followed by the string's bytes
// as they are; no encoding is enforced.
func (w *Writer) WriteString(s string) {
	w.WriteInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteNullString writes the absent-string marker (-1).
func (w *Writer) WriteNullString() { w.WriteInt32(-1) }

// WriteOptString writes s when ok, otherwise the absent marker.
func (w *Writer) WriteOptString(s string, ok bool) {
	if !ok {
		w.WriteNullString()
		return
	}
	w.WriteString(s)
}

// WriteByteSlice writes an int32 length followed by the raw bytes.
func (w *Writer) WriteByteSlice(b []byte) {
	w.WriteInt32(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// reserveInt32 writes a placeholder and returns its position for patchInt32.
func (w *Writer) reserveInt32() int {
	pos := len(w.buf)
	w.WriteInt32(0)
	return pos
}

func (w *Writer) patchInt32(pos int, v int32) {
	binary.LittleEndian.PutUint32(w.buf[pos:], uint32(v))
}
