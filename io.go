// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"encoding/binary"
	"math"
)

// reader is a bounds-checked big-endian cursor over a byte slice, exposed
// as a standalone cursor rather than methods pinned to a top-level *File,
// since the class-file codec reuses it for the whole file, for a single
// method's code array, and for nested attribute payloads alike.
type reader struct {
	data []byte
	pos  uint32
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

// position returns the current byte offset into the underlying buffer.
func (r *reader) position() uint32 {
	return r.pos
}

// remaining returns the number of unread bytes.
func (r *reader) remaining() uint32 {
	return uint32(len(r.data)) - r.pos
}

func (r *reader) readExact(n uint32) ([]byte, error) {
	if n > r.remaining() {
		return nil, ErrOutsideBoundary
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readU8() (uint8, error) {
	b, err := r.readExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) readI8() (int8, error) {
	v, err := r.readU8()
	return int8(v), err
}

func (r *reader) readU16() (uint16, error) {
	b, err := r.readExact(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) readI16() (int16, error) {
	v, err := r.readU16()
	return int16(v), err
}

func (r *reader) readU32() (uint32, error) {
	b, err := r.readExact(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) readI32() (int32, error) {
	v, err := r.readU32()
	return int32(v), err
}

func (r *reader) readU64() (uint64, error) {
	b, err := r.readExact(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) readI64() (int64, error) {
	v, err := r.readU64()
	return int64(v), err
}

func (r *reader) readF32() (float32, error) {
	v, err := r.readU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *reader) readF64() (float64, error) {
	v, err := r.readU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// boundedCount validates a wire-declared length-prefix count against the
// caller's resource limit and the bytes actually remaining in the cursor,
// returning an error instead of letting a hostile length prefix drive an
// unbounded preallocation.
func boundedCount(declared, limit, minElemSize, remaining uint32) (uint32, error) {
	if limit != 0 && declared > limit {
		return 0, ErrResourceLimitExceeded
	}
	if minElemSize > 0 {
		maxByRemaining := remaining / minElemSize
		if declared > maxByRemaining {
			return 0, ErrOutsideBoundary
		}
	}
	return declared, nil
}

// writer is a growing big-endian byte buffer used to serialise a ClassFile
// back to its wire form. Mirrors the cursor/writer symmetry required by the
// round-trip invariant in spec.md §8.1.
type writer struct {
	buf []byte
}

func newWriter() *writer {
	return &writer{buf: make([]byte, 0, 256)}
}

func (w *writer) bytes() []byte { return w.buf }

func (w *writer) writeU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) writeI8(v int8) {
	w.writeU8(uint8(v))
}

func (w *writer) writeU16(v uint16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

func (w *writer) writeI16(v int16) {
	w.writeU16(uint16(v))
}

func (w *writer) writeU32(v uint32) {
	w.buf = append(w.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (w *writer) writeI32(v int32) {
	w.writeU32(uint32(v))
}

func (w *writer) writeU64(v uint64) {
	w.writeU32(uint32(v >> 32))
	w.writeU32(uint32(v))
}

func (w *writer) writeI64(v int64) {
	w.writeU64(uint64(v))
}

func (w *writer) writeF32(v float32) {
	w.writeU32(math.Float32bits(v))
}

func (w *writer) writeF64(v float64) {
	w.writeU64(math.Float64bits(v))
}

func (w *writer) writeBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// len reports the number of bytes written so far, used to compute attribute
// length prefixes that must be back-patched after their payload is emitted.
func (w *writer) len() uint32 {
	return uint32(len(w.buf))
}
