// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "fmt"

// Value is the tagged union carried by a Variable / write command item.
// It matches one DataType discriminant exactly. A value whose discriminant
// this client does not recognise decodes as Unknown rather than failing
// the whole message.
type Value struct {
	typ DataType

	i64 int64
	f64 float64
	b   bool
	str *string
	ts  *Timestamp
	dur *Duration
}

// Type reports which DataType this value carries.
func (v Value) Type() DataType { return v.typ }

func Int64Value(v int64) Value   { return Value{typ: DataTypeInt64, i64: v} }
func Float64Value(v float64) Value { return Value{typ: DataTypeFloat64, f64: v} }
func BooleanValue(v bool) Value  { return Value{typ: DataTypeBoolean, b: v} }

// StringValue wraps an optional string value; pass nil for "absent".
func StringValue(v *string) Value { return Value{typ: DataTypeString, str: v} }

// TimestampValue wraps an optional Timestamp value; pass nil for "absent".
func TimestampValue(v *Timestamp) Value { return Value{typ: DataTypeTimestamp, ts: v} }

// DurationValue wraps an optional Duration value; pass nil for "absent".
func DurationValue(v *Duration) Value { return Value{typ: DataTypeDuration, dur: v} }

// UnknownValue represents a value whose union discriminant this client does
// not recognise. Its payload bytes are not preserved (the spec only
// requires the sentinel to survive, not round-trip re-encoding).
func UnknownValue(raw uint8) Value { return Value{typ: UnknownDataType(raw)} }

// Int64 returns the wrapped value and true if Type() == DataTypeInt64.
func (v Value) Int64() (int64, bool) {
	return v.i64, v.typ == DataTypeInt64
}

func (v Value) Float64() (float64, bool) {
	return v.f64, v.typ == DataTypeFloat64
}

func (v Value) Boolean() (bool, bool) {
	return v.b, v.typ == DataTypeBoolean
}

func (v Value) String() (*string, bool) {
	if v.typ != DataTypeString {
		return nil, false
	}
	return v.str, true
}

func (v Value) Timestamp() (*Timestamp, bool) {
	if v.typ != DataTypeTimestamp {
		return nil, false
	}
	return v.ts, true
}

func (v Value) DurationValue() (*Duration, bool) {
	if v.typ != DataTypeDuration {
		return nil, false
	}
	return v.dur, true
}

func (v Value) GoString() string {
	switch v.typ {
	case DataTypeInt64:
		return fmt.Sprintf("Int64(%d)", v.i64)
	case DataTypeFloat64:
		return fmt.Sprintf("Float64(%v)", v.f64)
	case DataTypeBoolean:
		return fmt.Sprintf("Boolean(%v)", v.b)
	case DataTypeString:
		if v.str == nil {
			return "String(<absent>)"
		}
		return fmt.Sprintf("String(%q)", *v.str)
	case DataTypeTimestamp:
		if v.ts == nil {
			return "Timestamp(<absent>)"
		}
		return fmt.Sprintf("Timestamp(%+v)", *v.ts)
	case DataTypeDuration:
		if v.dur == nil {
			return "Duration(<absent>)"
		}
		return fmt.Sprintf("Duration(%+v)", *v.dur)
	default:
		return v.typ.String()
	}
}

func (v Value) encode(w *writer) {
	w.writeUint8(v.typ.Raw())
	switch v.typ {
	case DataTypeInt64:
		w.writeInt64(v.i64)
	case DataTypeFloat64:
		w.writeFloat64(v.f64)
	case DataTypeBoolean:
		w.writeBool(v.b)
	case DataTypeString:
		w.writeBool(v.str != nil)
		if v.str != nil {
			w.writeString(*v.str)
		}
	case DataTypeTimestamp:
		w.writeBool(v.ts != nil)
		if v.ts != nil {
			v.ts.encode(w)
		}
	case DataTypeDuration:
		w.writeBool(v.dur != nil)
		if v.dur != nil {
			v.dur.encode(w)
		}
	default:
		// Unknown value carries no payload: we never produce these
		// ourselves, only decode them from a newer peer.
	}
}

func decodeValue(r *reader) Value {
	raw := r.readUint8()
	typ := dataTypeFromRaw(raw)
	switch typ {
	case DataTypeInt64:
		return Int64Value(r.readInt64())
	case DataTypeFloat64:
		return Float64Value(r.readFloat64())
	case DataTypeBoolean:
		return BooleanValue(r.readBool())
	case DataTypeString:
		if r.readBool() {
			s := r.readString()
			return StringValue(&s)
		}
		return StringValue(nil)
	case DataTypeTimestamp:
		if r.readBool() {
			ts := decodeTimestamp(r)
			return TimestampValue(&ts)
		}
		return TimestampValue(nil)
	case DataTypeDuration:
		if r.readBool() {
			d := decodeDuration(r)
			return DurationValue(&d)
		}
		return DurationValue(nil)
	default:
		return UnknownValue(raw)
	}
}
