// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "fmt"

// Timestamp is a point in time expressed as seconds and nanoseconds since
// the Unix epoch. On the wire, Nanos is always canonicalised to [0, 1e9).
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// Duration is a signed span of time. Unlike Timestamp, Nanos keeps its sign.
type Duration struct {
	Seconds int64
	Nanos   int32
}

const nanosPerSecond = int32(1_000_000_000)

// canonicalizeTimestamp normalises negative nanoseconds into the
// non-negative wire form: borrow whole seconds until 0 <= nanos < 1e9.
func canonicalizeTimestamp(ts Timestamp) Timestamp {
	for ts.Nanos < 0 {
		ts.Seconds--
		ts.Nanos += nanosPerSecond
	}
	for ts.Nanos >= nanosPerSecond {
		ts.Seconds++
		ts.Nanos -= nanosPerSecond
	}
	return ts
}

func (t Timestamp) encode(w *writer) {
	canon := canonicalizeTimestamp(t)
	w.writeInt64(canon.Seconds)
	w.writeInt32(canon.Nanos)
}

func decodeTimestamp(r *reader) Timestamp {
	return Timestamp{Seconds: r.readInt64(), Nanos: r.readInt32()}
}

func (d Duration) encode(w *writer) {
	w.writeInt64(d.Seconds)
	w.writeInt32(d.Nanos)
}

func decodeDuration(r *reader) Duration {
	return Duration{Seconds: r.readInt64(), Nanos: r.readInt32()}
}

// DataType is the wire discriminant for a variable's value type.
type DataType struct {
	discriminant uint8
	known        bool
}

var (
	DataTypeInt64     = DataType{discriminant: 0, known: true}
	DataTypeFloat64   = DataType{discriminant: 1, known: true}
	DataTypeBoolean   = DataType{discriminant: 2, known: true}
	DataTypeString    = DataType{discriminant: 3, known: true}
	DataTypeTimestamp = DataType{discriminant: 4, known: true}
	DataTypeDuration  = DataType{discriminant: 5, known: true}
)

// UnknownDataType wraps a raw discriminant this client does not recognise.
func UnknownDataType(raw uint8) DataType { return DataType{discriminant: raw} }

// IsKnown reports whether this is one of the named data types.
func (d DataType) IsKnown() bool { return d.known }

// Raw returns the wire discriminant, valid regardless of IsKnown.
func (d DataType) Raw() uint8 { return d.discriminant }

func (d DataType) String() string {
	switch d {
	case DataTypeInt64:
		return "Int64"
	case DataTypeFloat64:
		return "Float64"
	case DataTypeBoolean:
		return "Boolean"
	case DataTypeString:
		return "String"
	case DataTypeTimestamp:
		return "Timestamp"
	case DataTypeDuration:
		return "Duration"
	default:
		return fmt.Sprintf("Unknown(%d)", d.discriminant)
	}
}

func dataTypeFromRaw(raw uint8) DataType {
	switch raw {
	case 0:
		return DataTypeInt64
	case 1:
		return DataTypeFloat64
	case 2:
		return DataTypeBoolean
	case 3:
		return DataTypeString
	case 4:
		return DataTypeTimestamp
	case 5:
		return DataTypeDuration
	default:
		return UnknownDataType(raw)
	}
}

// AccessType is the wire discriminant for a variable's access rights.
type AccessType struct {
	discriminant uint8
	known        bool
}

var (
	AccessTypeReadOnly  = AccessType{discriminant: 0, known: true}
	AccessTypeReadWrite = AccessType{discriminant: 1, known: true}
)

// UnknownAccessType wraps a raw discriminant this client does not recognise.
func UnknownAccessType(raw uint8) AccessType { return AccessType{discriminant: raw} }

func (a AccessType) IsKnown() bool { return a.known }
func (a AccessType) Raw() uint8    { return a.discriminant }

func (a AccessType) String() string {
	switch a {
	case AccessTypeReadOnly:
		return "ReadOnly"
	case AccessTypeReadWrite:
		return "ReadWrite"
	default:
		return fmt.Sprintf("Unknown(%d)", a.discriminant)
	}
}

func accessTypeFromRaw(raw uint8) AccessType {
	switch raw {
	case 0:
		return AccessTypeReadOnly
	case 1:
		return AccessTypeReadWrite
	default:
		return UnknownAccessType(raw)
	}
}

// Quality is the wire discriminant for a variable state's trust level.
type Quality struct {
	discriminant uint8
	known        bool
}

var (
	QualityBadOrUndefined          = Quality{discriminant: 0, known: true}
	QualityGood                    = Quality{discriminant: 1, known: true}
	QualityUncertain                = Quality{discriminant: 2, known: true}
	QualityUncertainLastUsableValue = Quality{discriminant: 3, known: true}
	QualityUncertainInitialValue    = Quality{discriminant: 4, known: true}
)

// UnknownQuality wraps a raw discriminant this client does not recognise.
func UnknownQuality(raw uint8) Quality { return Quality{discriminant: raw} }

func (q Quality) IsKnown() bool { return q.known }
func (q Quality) Raw() uint8    { return q.discriminant }

func (q Quality) String() string {
	switch q {
	case QualityBadOrUndefined:
		return "BadOrUndefined"
	case QualityGood:
		return "Good"
	case QualityUncertain:
		return "Uncertain"
	case QualityUncertainLastUsableValue:
		return "UncertainLastUsableValue"
	case QualityUncertainInitialValue:
		return "UncertainInitialValue"
	default:
		return fmt.Sprintf("Unknown(%d)", q.discriminant)
	}
}

func qualityFromRaw(raw uint8) Quality {
	switch raw {
	case 0:
		return QualityBadOrUndefined
	case 1:
		return QualityGood
	case 2:
		return QualityUncertain
	case 3:
		return QualityUncertainLastUsableValue
	case 4:
		return QualityUncertainInitialValue
	default:
		return UnknownQuality(raw)
	}
}

// ProviderState is the wire discriminant for a catalogue's validity state.
type ProviderState struct {
	discriminant uint8
	known        bool
}

var (
	ProviderStateUnspecified = ProviderState{discriminant: 0, known: true}
	ProviderStateOk          = ProviderState{discriminant: 1, known: true}
)

func UnknownProviderState(raw uint8) ProviderState { return ProviderState{discriminant: raw} }

func (s ProviderState) IsKnown() bool { return s.known }
func (s ProviderState) Raw() uint8    { return s.discriminant }

func (s ProviderState) String() string {
	switch s {
	case ProviderStateUnspecified:
		return "Unspecified"
	case ProviderStateOk:
		return "Ok"
	default:
		return fmt.Sprintf("Unknown(%d)", s.discriminant)
	}
}

func providerStateFromRaw(raw uint8) ProviderState {
	switch raw {
	case 0:
		return ProviderStateUnspecified
	case 1:
		return ProviderStateOk
	default:
		return UnknownProviderState(raw)
	}
}

// RegistryState is the wire discriminant for the registry's run state.
type RegistryState struct {
	discriminant uint8
	known        bool
}

var (
	RegistryStateUnspecified = RegistryState{discriminant: 0, known: true}
	RegistryStateRunning     = RegistryState{discriminant: 1, known: true}
	RegistryStateStopping    = RegistryState{discriminant: 2, known: true}
)

func UnknownRegistryState(raw uint8) RegistryState { return RegistryState{discriminant: raw} }

func (s RegistryState) IsKnown() bool { return s.known }
func (s RegistryState) Raw() uint8    { return s.discriminant }

func (s RegistryState) String() string {
	switch s {
	case RegistryStateUnspecified:
		return "Unspecified"
	case RegistryStateRunning:
		return "Running"
	case RegistryStateStopping:
		return "Stopping"
	default:
		return fmt.Sprintf("Unknown(%d)", s.discriminant)
	}
}

func registryStateFromRaw(raw uint8) RegistryState {
	switch raw {
	case 0:
		return RegistryStateUnspecified
	case 1:
		return RegistryStateRunning
	case 2:
		return RegistryStateStopping
	default:
		return UnknownRegistryState(raw)
	}
}
