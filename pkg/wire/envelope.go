// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

// ProviderDefinitionChangedEvent is published by a provider on
// registration, re-registration, catalogue change, and unregister.
// A nil ProviderDefinition means the provider was removed.
type ProviderDefinitionChangedEvent struct {
	ProviderDefinition *ProviderDefinition
}

func (e ProviderDefinitionChangedEvent) encode(w *writer) {
	w.writeBool(e.ProviderDefinition != nil)
	if e.ProviderDefinition != nil {
		e.ProviderDefinition.encode(w)
	}
}

func decodeProviderDefinitionChangedEvent(r *reader) ProviderDefinitionChangedEvent {
	var d *ProviderDefinition
	if r.readBool() {
		pd := decodeProviderDefinition(r)
		d = &pd
	}
	return ProviderDefinitionChangedEvent{ProviderDefinition: d}
}

// EncodeProviderDefinitionChangedEvent serialises the envelope.
func EncodeProviderDefinitionChangedEvent(e ProviderDefinitionChangedEvent) []byte {
	w := newWriter()
	e.encode(w)
	return w.bytes()
}

// DecodeProviderDefinitionChangedEvent deserialises the envelope.
func DecodeProviderDefinitionChangedEvent(data []byte) (ProviderDefinitionChangedEvent, error) {
	r := newReader(data)
	e := decodeProviderDefinitionChangedEvent(r)
	return e, r.finish()
}

// VariablesChangedEvent carries a snapshot of variables that changed.
type VariablesChangedEvent struct {
	ChangedVariables VariableList
}

func EncodeVariablesChangedEvent(e VariablesChangedEvent) []byte {
	w := newWriter()
	e.ChangedVariables.encode(w)
	return w.bytes()
}

func DecodeVariablesChangedEvent(data []byte) (VariablesChangedEvent, error) {
	r := newReader(data)
	vl := decodeVariableList(r)
	return VariablesChangedEvent{ChangedVariables: vl}, r.finish()
}

// ReadVariablesQueryRequest asks for all variables (Ids nil) or a subset.
type ReadVariablesQueryRequest struct {
	Ids []uint32
}

func EncodeReadVariablesQueryRequest(req ReadVariablesQueryRequest) []byte {
	w := newWriter()
	w.writeBool(req.Ids != nil)
	if req.Ids != nil {
		w.writeUint32(uint32(len(req.Ids)))
		for _, id := range req.Ids {
			w.writeUint32(id)
		}
	}
	return w.bytes()
}

func DecodeReadVariablesQueryRequest(data []byte) (ReadVariablesQueryRequest, error) {
	r := newReader(data)
	var ids []uint32
	if r.readBool() {
		n := r.readCount()
		ids = make([]uint32, 0, n)
		for i := uint32(0); i < n; i++ {
			ids = append(ids, r.readUint32())
		}
	}
	return ReadVariablesQueryRequest{Ids: ids}, r.finish()
}

// ReadVariablesQueryResponse is the reply to a ReadVariablesQueryRequest.
type ReadVariablesQueryResponse struct {
	Variables VariableList
}

func EncodeReadVariablesQueryResponse(resp ReadVariablesQueryResponse) []byte {
	w := newWriter()
	resp.Variables.encode(w)
	return w.bytes()
}

func DecodeReadVariablesQueryResponse(data []byte) (ReadVariablesQueryResponse, error) {
	r := newReader(data)
	vl := decodeVariableList(r)
	return ReadVariablesQueryResponse{Variables: vl}, r.finish()
}

// WriteVariablesCommand is a fire-and-forget write of one or more variables.
type WriteVariablesCommand struct {
	Variables VariableList
}

func EncodeWriteVariablesCommand(cmd WriteVariablesCommand) []byte {
	w := newWriter()
	cmd.Variables.encode(w)
	return w.bytes()
}

func DecodeWriteVariablesCommand(data []byte) (WriteVariablesCommand, error) {
	r := newReader(data)
	vl := decodeVariableList(r)
	return WriteVariablesCommand{Variables: vl}, r.finish()
}

// ProviderID is a single entry of a provider-id listing.
type ProviderID struct {
	ID string
}

// ProviderIDList is the shared shape used by both the provider-id query
// response and the provider-id changed event.
type ProviderIDList struct {
	Items []ProviderID // nil: absent
}

func (l ProviderIDList) encode(w *writer) {
	w.writeBool(l.Items != nil)
	if l.Items != nil {
		w.writeUint32(uint32(len(l.Items)))
		for _, item := range l.Items {
			w.writeString(item.ID)
		}
	}
}

func decodeProviderIDList(r *reader) ProviderIDList {
	var items []ProviderID
	if r.readBool() {
		n := r.readCount()
		items = make([]ProviderID, 0, n)
		for i := uint32(0); i < n; i++ {
			items = append(items, ProviderID{ID: r.readString()})
		}
	}
	return ProviderIDList{Items: items}
}

// ReadProvidersQueryResponse is the reply listing all known provider ids.
type ReadProvidersQueryResponse struct {
	Providers ProviderIDList
}

func EncodeReadProvidersQueryResponse(resp ReadProvidersQueryResponse) []byte {
	w := newWriter()
	resp.Providers.encode(w)
	return w.bytes()
}

func DecodeReadProvidersQueryResponse(data []byte) (ReadProvidersQueryResponse, error) {
	r := newReader(data)
	l := decodeProviderIDList(r)
	return ReadProvidersQueryResponse{Providers: l}, r.finish()
}

// ProvidersChangedEvent announces a change to the provider-id listing.
type ProvidersChangedEvent struct {
	Providers ProviderIDList
}

func EncodeProvidersChangedEvent(e ProvidersChangedEvent) []byte {
	w := newWriter()
	e.Providers.encode(w)
	return w.bytes()
}

func DecodeProvidersChangedEvent(data []byte) (ProvidersChangedEvent, error) {
	r := newReader(data)
	l := decodeProviderIDList(r)
	return ProvidersChangedEvent{Providers: l}, r.finish()
}

// StateChangedEvent announces the registry's run state.
type StateChangedEvent struct {
	State RegistryState
}

func EncodeStateChangedEvent(e StateChangedEvent) []byte {
	w := newWriter()
	w.writeUint8(e.State.Raw())
	return w.bytes()
}

func DecodeStateChangedEvent(data []byte) (StateChangedEvent, error) {
	r := newReader(data)
	state := registryStateFromRaw(r.readUint8())
	return StateChangedEvent{State: state}, r.finish()
}

// ReadProviderDefinitionQueryResponse is the registry's view of one
// provider's definition. A nil ProviderDefinition means the registry has
// no definition on file for that provider id.
type ReadProviderDefinitionQueryResponse struct {
	ProviderDefinition *ProviderDefinition
}

func EncodeReadProviderDefinitionQueryResponse(resp ReadProviderDefinitionQueryResponse) []byte {
	w := newWriter()
	w.writeBool(resp.ProviderDefinition != nil)
	if resp.ProviderDefinition != nil {
		resp.ProviderDefinition.encode(w)
	}
	return w.bytes()
}

func DecodeReadProviderDefinitionQueryResponse(data []byte) (ReadProviderDefinitionQueryResponse, error) {
	r := newReader(data)
	var d *ProviderDefinition
	if r.readBool() {
		pd := decodeProviderDefinition(r)
		d = &pd
	}
	return ReadProviderDefinitionQueryResponse{ProviderDefinition: d}, r.finish()
}
