// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

// ProviderDefinition is the catalogue a provider publishes on registration
// and whenever its variable set changes.
//
// VariableDefinitions is nil to represent "absent", matching the optional
// vector in the wire schema; providers normally send a present (possibly
// empty) vector.
type ProviderDefinition struct {
	Fingerprint          uint64
	State                ProviderState
	VariableDefinitions  []VariableDefinition
}

func (d ProviderDefinition) encode(w *writer) {
	w.writeUint64(d.Fingerprint)
	w.writeUint8(d.State.Raw())
	w.writeBool(d.VariableDefinitions != nil)
	if d.VariableDefinitions != nil {
		w.writeUint32(uint32(len(d.VariableDefinitions)))
		for _, vd := range d.VariableDefinitions {
			vd.encode(w)
		}
	}
}

func decodeProviderDefinition(r *reader) ProviderDefinition {
	fp := r.readUint64()
	state := providerStateFromRaw(r.readUint8())
	var defs []VariableDefinition
	if r.readBool() {
		n := r.readCount()
		defs = make([]VariableDefinition, 0, n)
		for i := uint32(0); i < n; i++ {
			defs = append(defs, decodeVariableDefinition(r))
		}
	}
	return ProviderDefinition{Fingerprint: fp, State: state, VariableDefinitions: defs}
}

// EncodeProviderDefinition serialises a ProviderDefinition payload.
func EncodeProviderDefinition(d ProviderDefinition) []byte {
	w := newWriter()
	d.encode(w)
	return w.bytes()
}

// DecodeProviderDefinition deserialises a ProviderDefinition payload.
func DecodeProviderDefinition(data []byte) (ProviderDefinition, error) {
	r := newReader(data)
	d := decodeProviderDefinition(r)
	return d, r.finish()
}
