// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weidmueller/u-os-hub-client-go/pkg/hubvar"
	"github.com/weidmueller/u-os-hub-client-go/pkg/wire"
)

func okDefinition(fingerprint uint64, defs ...wire.VariableDefinition) *wire.ProviderDefinition {
	return &wire.ProviderDefinition{
		Fingerprint:         fingerprint,
		State:               wire.ProviderStateOk,
		VariableDefinitions: defs,
	}
}

func varDef(id uint32, key string) wire.VariableDefinition {
	return wire.VariableDefinition{
		ID:         id,
		Key:        key,
		DataType:   wire.DataTypeInt64,
		AccessType: wire.AccessTypeReadWrite,
	}
}

func TestApplyDefinitionOkReplacesCachedState(t *testing.T) {
	pc := &ProviderConnection{providerID: "p1"}
	pc.applyDefinition(okDefinition(42, varDef(1, "a"), varDef(2, "b")))

	fp, ok := pc.Fingerprint()
	require.True(t, ok)
	assert.Equal(t, uint64(42), fp)
	assert.ElementsMatch(t, []uint32{1, 2}, pc.VariableIDs())

	id, err := pc.IDFromKey(StringKey("b"))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), id)
}

func TestApplyDefinitionInvalidClearsOnlyFingerprint(t *testing.T) {
	pc := &ProviderConnection{providerID: "p1"}
	pc.applyDefinition(okDefinition(1, varDef(1, "a")))

	pc.applyDefinition(&wire.ProviderDefinition{State: wire.ProviderStateUnspecified})

	_, ok := pc.Fingerprint()
	assert.False(t, ok)
	assert.False(t, pc.IsOnline())

	// mappings survive so lookups still resolve against the last known catalogue.
	id, err := pc.IDFromKey(StringKey("a"))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)
}

func TestApplyDefinitionAbsentClearsOnlyFingerprint(t *testing.T) {
	pc := &ProviderConnection{providerID: "p1"}
	pc.applyDefinition(okDefinition(1, varDef(1, "a")))

	pc.applyDefinition(nil)

	_, ok := pc.Fingerprint()
	assert.False(t, ok)

	d, err := pc.Definition(1)
	require.NoError(t, err)
	assert.Equal(t, "a", d.Key)
}

func TestIDFromKeyUnknownKey(t *testing.T) {
	pc := &ProviderConnection{providerID: "p1"}
	pc.applyDefinition(okDefinition(1, varDef(1, "a")))

	_, err := pc.IDFromKey(StringKey("missing"))
	var unknownErr *UnknownVariableKeyError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestDefinitionUnknownID(t *testing.T) {
	pc := &ProviderConnection{providerID: "p1"}
	pc.applyDefinition(okDefinition(1, varDef(1, "a")))

	_, err := pc.Definition(99)
	var unknownErr *UnknownVariableIDError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestBuildIDFilterSkipsUnresolvableKeys(t *testing.T) {
	pc := &ProviderConnection{providerID: "p1"}
	pc.applyDefinition(okDefinition(1, varDef(1, "a"), varDef(2, "b")))

	filter := pc.buildIDFilter([]KeyLike{StringKey("a"), StringKey("missing")})
	assert.Len(t, filter, 1)
	_, ok := filter[1]
	assert.True(t, ok)
}

func TestAllKeysPresent(t *testing.T) {
	defs := []hubvar.Definition{{ID: 1, Key: "a"}, {ID: 2, Key: "b"}}

	assert.True(t, allKeysPresent([]KeyLike{StringKey("a"), StringKey("b")}, defs))
	assert.False(t, allKeysPresent([]KeyLike{StringKey("a"), StringKey("c")}, defs))
	assert.True(t, allKeysPresent(nil, defs))
}

func TestHasAllKeys(t *testing.T) {
	pc := &ProviderConnection{providerID: "p1"}
	pc.applyDefinition(okDefinition(1, varDef(1, "a")))

	assert.True(t, pc.hasAllKeys([]KeyLike{StringKey("a")}))
	assert.False(t, pc.hasAllKeys([]KeyLike{StringKey("a"), StringKey("missing")}))
}

func TestNewVariableStateUsesOwnTimestampWhenPresent(t *testing.T) {
	base := wire.Timestamp{Seconds: 100}
	own := wire.Timestamp{Seconds: 200}
	v := wire.Variable{ID: 1, Quality: wire.QualityGood, Timestamp: &own, Value: wire.Int64Value(7)}

	state := newVariableState(v, base)
	assert.Equal(t, own, state.Timestamp)
	assert.Equal(t, wire.QualityGood, state.Quality)
}

func TestNewVariableStateFallsBackToBaseTimestamp(t *testing.T) {
	base := wire.Timestamp{Seconds: 100}
	v := wire.Variable{ID: 1, Quality: wire.QualityGood, Timestamp: nil, Value: wire.Int64Value(7)}

	state := newVariableState(v, base)
	assert.Equal(t, base, state.Timestamp)
}

func TestMapProviderEventOffline(t *testing.T) {
	evt, ok := mapProviderEvent(nil)
	require.True(t, ok)
	assert.Equal(t, ProviderEventOffline, evt.Kind)
}

func TestMapProviderEventInvalid(t *testing.T) {
	evt, ok := mapProviderEvent(&wire.ProviderDefinition{State: wire.ProviderStateUnspecified})
	require.True(t, ok)
	assert.Equal(t, ProviderEventInvalid, evt.Kind)
}

func TestMapProviderEventDefinitionChanged(t *testing.T) {
	evt, ok := mapProviderEvent(okDefinition(1, varDef(1, "a")))
	require.True(t, ok)
	assert.Equal(t, ProviderEventDefinitionChanged, evt.Kind)
	require.Len(t, evt.Definitions, 1)
	assert.Equal(t, "a", evt.Definitions[0].Key)
}
