// Package netcodec implements the byte layout used for ability delta sync.
// Integers are little-endian. Counts and ids whose upper bound is known to
// both peers are written with the smallest width that fits the bound.
package netcodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrShortBuffer = errors.New("netcodec: short buffer")
	ErrOutOfBounds = errors.New("netcodec: value out of bounds")
)

// Width returns how many bytes are used to encode any value in [0, max].
func Width(max int) int {
	switch {
	case max <= math.MaxUint8:
		return 1
	case max <= math.MaxUint16:
		return 2
	default:
		return 4
	}
}

type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) WriteFloat32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

// WriteString writes a uvarint byte length followed by the UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.buf = binary.AppendUvarint(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteBounded writes v using Width(max) bytes.
func (w *Writer) WriteBounded(v, max int) error {
	if v < 0 || v > max {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfBounds, v, max)
	}
	switch Width(max) {
	case 1:
		w.buf = append(w.buf, uint8(v))
	case 2:
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v))
	default:
		w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
	}
	return nil
}

type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (r *Reader) ReadString() (string, error) {
	n, read := binary.Uvarint(r.buf[r.off:])
	if read <= 0 {
		return "", fmt.Errorf("%w: bad string length", ErrShortBuffer)
	}
	r.off += read
	if n > uint64(r.Remaining()) {
		return "", fmt.Errorf("%w: string of %d bytes, have %d", ErrShortBuffer, n, r.Remaining())
	}
	b, _ := r.take(int(n))
	return string(b), nil
}

// ReadBounded reads a value written by WriteBounded with the same max.
func (r *Reader) ReadBounded(max int) (int, error) {
	var v int
	switch Width(max) {
	case 1:
		b, err := r.ReadUint8()
		if err != nil {
			return 0, err
		}
		v = int(b)
	case 2:
		b, err := r.ReadUint16()
		if err != nil {
			return 0, err
		}
		v = int(b)
	default:
		b, err := r.take(4)
		if err != nil {
			return 0, err
		}
		v = int(binary.LittleEndian.Uint32(b))
	}
	if v > max {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrOutOfBounds, v, max)
	}
	return v, nil
}
