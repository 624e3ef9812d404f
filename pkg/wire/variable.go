// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

// VariableDefinition is a catalogue entry describing one variable.
type VariableDefinition struct {
	ID           uint32
	Key          string
	DataType     DataType
	AccessType   AccessType
	Experimental bool
}

func (d VariableDefinition) encode(w *writer) {
	w.writeUint32(d.ID)
	w.writeString(d.Key)
	w.writeUint8(d.DataType.Raw())
	w.writeUint8(d.AccessType.Raw())
	w.writeBool(d.Experimental)
}

func decodeVariableDefinition(r *reader) VariableDefinition {
	id := r.readUint32()
	key := r.readString()
	dt := dataTypeFromRaw(r.readUint8())
	at := accessTypeFromRaw(r.readUint8())
	exp := r.readBool()
	return VariableDefinition{ID: id, Key: key, DataType: dt, AccessType: at, Experimental: exp}
}

// Variable is a current value/state entry as carried in a VariableList.
type Variable struct {
	ID        uint32
	Quality   Quality
	Timestamp *Timestamp // nil: inherit VariableList.BaseTimestamp
	Value     Value
}

func (v Variable) encode(w *writer) {
	w.writeUint32(v.ID)
	w.writeUint8(v.Quality.Raw())
	w.writeBool(v.Timestamp != nil)
	if v.Timestamp != nil {
		v.Timestamp.encode(w)
	}
	v.Value.encode(w)
}

func decodeVariable(r *reader) Variable {
	id := r.readUint32()
	q := qualityFromRaw(r.readUint8())
	var ts *Timestamp
	if r.readBool() {
		t := decodeTimestamp(r)
		ts = &t
	}
	val := decodeValue(r)
	return Variable{ID: id, Quality: q, Timestamp: ts, Value: val}
}

// VariableList carries a fingerprinted snapshot of variable states.
//
// Items is nil to represent "absent" (distinct from an empty, present
// vector), matching the optional vector in the wire schema.
type VariableList struct {
	ProviderDefinitionFingerprint uint64
	BaseTimestamp                 Timestamp
	Items                         []Variable
}

func (l VariableList) encode(w *writer) {
	w.writeUint64(l.ProviderDefinitionFingerprint)
	l.BaseTimestamp.encode(w)
	w.writeBool(l.Items != nil)
	if l.Items != nil {
		w.writeUint32(uint32(len(l.Items)))
		for _, item := range l.Items {
			item.encode(w)
		}
	}
}

func decodeVariableList(r *reader) VariableList {
	fp := r.readUint64()
	base := decodeTimestamp(r)
	var items []Variable
	if r.readBool() {
		n := r.readCount()
		items = make([]Variable, 0, n)
		for i := uint32(0); i < n; i++ {
			items = append(items, decodeVariable(r))
		}
	}
	return VariableList{ProviderDefinitionFingerprint: fp, BaseTimestamp: base, Items: items}
}

// EncodeVariableList serialises a VariableList payload on its own, for
// callers that need the raw bytes outside an envelope (e.g. tests).
func EncodeVariableList(l VariableList) []byte {
	w := newWriter()
	l.encode(w)
	return w.bytes()
}

// DecodeVariableList deserialises a standalone VariableList payload.
func DecodeVariableList(data []byte) (VariableList, error) {
	r := newReader(data)
	l := decodeVariableList(r)
	return l, r.finish()
}
