// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrTruncated is returned when a buffer ends before a field can be fully read.
var ErrTruncated = errors.New("wire: truncated payload")

// writer appends little-endian fields to an in-memory buffer.
type writer struct {
	buf []byte
}

func newWriter() *writer {
	return &writer{buf: make([]byte, 0, 256)}
}

func (w *writer) bytes() []byte { return w.buf }

func (w *writer) writeUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) writeBool(v bool) {
	if v {
		w.writeUint8(1)
	} else {
		w.writeUint8(0)
	}
}

func (w *writer) writeUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) writeInt32(v int32) {
	w.writeUint32(uint32(v))
}

func (w *writer) writeUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) writeInt64(v int64) {
	w.writeUint64(uint64(v))
}

func (w *writer) writeFloat64(v float64) {
	w.writeUint64(math.Float64bits(v))
}

func (w *writer) writeBytes(b []byte) {
	w.writeUint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *writer) writeString(s string) {
	w.writeBytes([]byte(s))
}

// reader consumes little-endian fields from a buffer, short-circuiting on
// the first error so call sites can chain reads without checking after
// every one.
type reader struct {
	data []byte
	pos  int
	err  error
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.fail(ErrTruncated)
		return nil
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out
}

func (r *reader) readUint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) readBool() bool {
	return r.readUint8() != 0
}

func (r *reader) readUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) readInt32() int32 {
	return int32(r.readUint32())
}

func (r *reader) readUint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) readInt64() int64 {
	return int64(r.readUint64())
}

func (r *reader) readFloat64() float64 {
	return math.Float64frombits(r.readUint64())
}

// readCount reads a uint32 length prefix and validates it against the
// number of bytes actually remaining in the buffer before the caller
// allocates anything sized by it. Every element needs at least one byte
// on the wire, so a count exceeding the remaining buffer is always
// malformed; rejecting it here keeps a corrupt or adversarial length
// prefix from reaching a make() call and exhausting memory.
func (r *reader) readCount() uint32 {
	n := r.readUint32()
	if r.err != nil {
		return 0
	}
	if int(n) > len(r.data)-r.pos {
		r.fail(ErrTruncated)
		return 0
	}
	return n
}

func (r *reader) readBytes() []byte {
	n := r.readCount()
	b := r.take(int(n))
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (r *reader) readString() string {
	return string(r.readBytes())
}

func (r *reader) finish() error {
	if r.err != nil {
		return fmt.Errorf("wire: decode failed: %w", r.err)
	}
	return nil
}
