// Package binary provides LEB128 and section framing for the wasm writer.
package binary

import "encoding/binary"

// Writer accumulates WASM binary output. The zero value is ready to use.
type Writer struct {
	b []byte
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte { return w.b }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.b) }

// Byte appends raw bytes, typically opcodes and type tags.
func (w *Writer) Byte(b ...byte) {
	w.b = append(w.b, b...)
}

// WriteBytes appends data verbatim.
func (w *Writer) WriteBytes(data []byte) {
	w.b = append(w.b, data...)
}

// WriteU32 appends v as unsigned LEB128. Go's uvarint encoding is the same
// byte sequence.
func (w *Writer) WriteU32(v uint32) {
	w.b = binary.AppendUvarint(w.b, uint64(v))
}

// WriteS32 appends v as signed LEB128.
func (w *Writer) WriteS32(v int32) {
	w.WriteS64(int64(v))
}

// WriteS64 appends v as signed LEB128.
func (w *Writer) WriteS64(v int64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0)
		if done {
			w.b = append(w.b, b)
			return
		}
		w.b = append(w.b, b|0x80)
	}
}

// WriteName appends a length-prefixed UTF-8 name.
func (w *Writer) WriteName(s string) {
	w.WriteU32(uint32(len(s)))
	w.b = append(w.b, s...)
}

// WriteU32LE appends v as a fixed 4-byte little-endian word.
func (w *Writer) WriteU32LE(v uint32) {
	w.b = binary.LittleEndian.AppendUint32(w.b, v)
}

// WriteSection appends a section: id, body size, body.
func (w *Writer) WriteSection(id byte, body *Writer) {
	w.b = append(w.b, id)
	w.WriteU32(uint32(body.Len()))
	w.b = append(w.b, body.b...)
}
