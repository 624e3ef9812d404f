// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weidmueller/u-os-hub-client-go/pkg/hubconn"
	"github.com/weidmueller/u-os-hub-client-go/pkg/hubvar"
	"github.com/weidmueller/u-os-hub-client-go/pkg/wire"
)

func newTestActor(vars ...hubvar.Variable) *actor {
	table := make(map[uint32]hubvar.Variable, len(vars))
	for _, v := range vars {
		table[v.Definition.ID] = v
	}
	a := &actor{
		variables: table,
		crashed:   make(chan struct{}),
	}
	a.fingerprint = hubvar.Fingerprint(a.catalogue())
	return a
}

func TestActorCatalogueOrderedByAscendingID(t *testing.T) {
	a := newTestActor(
		mustBuildVariable(t, 3, "c", wire.Int64Value(1)),
		mustBuildVariable(t, 1, "a", wire.Int64Value(1)),
		mustBuildVariable(t, 2, "b", wire.Int64Value(1)),
	)
	ids := a.sortedIDs()
	assert.Equal(t, []uint32{1, 2, 3}, ids)
}

func TestActorAddVariablesRejectsDuplicateIDAgainstExisting(t *testing.T) {
	existing := mustBuildVariable(t, 1, "a", wire.Int64Value(1))
	a := newTestActor(existing)

	newVar := mustBuildVariable(t, 1, "b", wire.Int64Value(2))
	err := a.addVariables([]hubvar.Variable{newVar})

	var dupErr *DuplicateIDError
	assert.ErrorAs(t, err, &dupErr)
}

func TestActorAddVariablesRejectsDuplicateKeyAgainstExisting(t *testing.T) {
	existing := mustBuildVariable(t, 1, "a", wire.Int64Value(1))
	a := newTestActor(existing)

	newVar := mustBuildVariable(t, 2, "a", wire.Int64Value(2))
	err := a.addVariables([]hubvar.Variable{newVar})

	var dupErr *DuplicateKeyError
	assert.ErrorAs(t, err, &dupErr)
}

func TestActorAddVariablesRejectsDuplicateWithinBatch(t *testing.T) {
	a := newTestActor()
	v1 := mustBuildVariable(t, 1, "a", wire.Int64Value(1))
	v2 := mustBuildVariable(t, 1, "b", wire.Int64Value(2))

	err := a.addVariables([]hubvar.Variable{v1, v2})
	var dupErr *DuplicateIDError
	assert.ErrorAs(t, err, &dupErr)
}

func TestActorUpdateStatesRejectsUnknownID(t *testing.T) {
	a := newTestActor()
	err := a.updateStates([]stateUpdate{{id: 99, value: wire.Int64Value(1), quality: wire.QualityGood}})

	var notFound *VariableNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint32(99), notFound.ID)
}

func TestActorUpdateStatesRejectsTypeMismatch(t *testing.T) {
	a := newTestActor(mustBuildVariable(t, 1, "a", wire.Int64Value(1)))
	err := a.updateStates([]stateUpdate{{id: 1, value: wire.BooleanValue(true), quality: wire.QualityGood}})

	var mismatch *TypeMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestActorUpdateStatesValidatesAllBeforeApplyingAny(t *testing.T) {
	a := newTestActor(mustBuildVariable(t, 1, "a", wire.Int64Value(1)))
	original := a.variables[1].State.Value()

	err := a.updateStates([]stateUpdate{
		{id: 1, value: wire.Int64Value(42), quality: wire.QualityGood},
		{id: 99, value: wire.Int64Value(1), quality: wire.QualityGood},
	})

	require.Error(t, err)
	current, ok := a.variables[1].State.Value().Int64()
	require.True(t, ok)
	orig, _ := original.Int64()
	assert.Equal(t, orig, current)
}

func TestActorSubscribeRejectsUnknownID(t *testing.T) {
	a := newTestActor()
	_, err := a.subscribe([]uint32{1}, 16)
	var notFound *VariableNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestActorSubscribeRejectsAlreadySubscribed(t *testing.T) {
	a := newTestActor(mustBuildVariable(t, 1, "a", wire.Int64Value(1)))
	_, err := a.subscribe([]uint32{1}, 16)
	require.NoError(t, err)

	_, err = a.subscribe([]uint32{1}, 16)
	var already *AlreadySubscribedError
	assert.ErrorAs(t, err, &already)
}

func TestActorSubscribeSucceedsForDistinctIDs(t *testing.T) {
	a := newTestActor(
		mustBuildVariable(t, 1, "a", wire.Int64Value(1)),
		mustBuildVariable(t, 2, "b", wire.Int64Value(1)),
	)
	ch1, err := a.subscribe([]uint32{1}, 16)
	require.NoError(t, err)
	ch2, err := a.subscribe([]uint32{2}, 16)
	require.NoError(t, err)
	assert.NotEqual(t, ch1, ch2)
}

func writableVar(t *testing.T, id uint32, key string) hubvar.Variable {
	t.Helper()
	v, err := hubvar.NewBuilder(id, key).ReadWrite().InitialValue(wire.Int64Value(0)).Build()
	require.NoError(t, err)
	return v
}

func TestActorHandleWriteIgnoresStaleFingerprint(t *testing.T) {
	a := newTestActor(writableVar(t, 1, "a"))
	ch, err := a.subscribe([]uint32{1}, 16)
	require.NoError(t, err)

	cmd := wire.WriteVariablesCommand{Variables: wire.VariableList{
		ProviderDefinitionFingerprint: a.fingerprint + 1,
		Items:                         []wire.Variable{{ID: 1, Quality: wire.QualityGood, Value: wire.Int64Value(5)}},
	}}
	a.handleWrite(&nats.Msg{Data: wire.EncodeWriteVariablesCommand(cmd)})

	select {
	case <-ch:
		t.Fatal("expected no write command to be delivered")
	default:
	}
}

func TestActorHandleWriteDropsReadOnlyAndUnknownIDs(t *testing.T) {
	readOnly := mustBuildVariable(t, 1, "ro", wire.Int64Value(0))
	a := newTestActor(readOnly)
	ch, err := a.subscribe([]uint32{1}, 16)
	require.NoError(t, err)

	cmd := wire.WriteVariablesCommand{Variables: wire.VariableList{
		ProviderDefinitionFingerprint: a.fingerprint,
		Items: []wire.Variable{
			{ID: 1, Quality: wire.QualityGood, Value: wire.Int64Value(5)},
			{ID: 99, Quality: wire.QualityGood, Value: wire.Int64Value(5)},
		},
	}}
	a.handleWrite(&nats.Msg{Data: wire.EncodeWriteVariablesCommand(cmd)})

	select {
	case <-ch:
		t.Fatal("expected no write command for a read-only or unknown id")
	default:
	}
}

func TestActorHandleWriteRoutesOnlyToMatchingSubscriber(t *testing.T) {
	a := newTestActor(writableVar(t, 1, "a"), writableVar(t, 2, "b"))
	ch1, err := a.subscribe([]uint32{1}, 16)
	require.NoError(t, err)
	ch2, err := a.subscribe([]uint32{2}, 16)
	require.NoError(t, err)

	cmd := wire.WriteVariablesCommand{Variables: wire.VariableList{
		ProviderDefinitionFingerprint: a.fingerprint,
		Items:                         []wire.Variable{{ID: 1, Quality: wire.QualityGood, Value: wire.Int64Value(7)}},
	}}
	a.handleWrite(&nats.Msg{Data: wire.EncodeWriteVariablesCommand(cmd)})

	select {
	case got := <-ch1:
		require.Len(t, got, 1)
		assert.Equal(t, uint32(1), got[0].ID)
	default:
		t.Fatal("expected a write command on ch1")
	}
	select {
	case <-ch2:
		t.Fatal("expected no write command on ch2")
	default:
	}
}

func TestActorSubscribeClampsBufSizeToMinimum(t *testing.T) {
	a := newTestActor(writableVar(t, 1, "a"))
	ch, err := a.subscribe([]uint32{1}, 1)
	require.NoError(t, err)
	assert.Equal(t, minWriteNotifierBufSize, cap(ch))
}

func writeCmd(a *actor, value int64) *nats.Msg {
	cmd := wire.WriteVariablesCommand{Variables: wire.VariableList{
		ProviderDefinitionFingerprint: a.fingerprint,
		Items:                         []wire.Variable{{ID: 1, Quality: wire.QualityGood, Value: wire.Int64Value(value)}},
	}}
	return &nats.Msg{Data: wire.EncodeWriteVariablesCommand(cmd)}
}

func TestActorHandleWriteRemovesDeadSubscriberOnSendFailure(t *testing.T) {
	a := newTestActor(writableVar(t, 1, "a"))
	ch, err := a.subscribe([]uint32{1}, 1)
	require.NoError(t, err)

	for i := 0; i < minWriteNotifierBufSize; i++ {
		a.handleWrite(writeCmd(a, int64(i)))
	}
	require.Len(t, a.writeNotifiers, 1)

	a.handleWrite(writeCmd(a, 999))

	assert.Empty(t, a.writeNotifiers)
	_, ok := <-ch
	assert.True(t, ok, "batches buffered before the removal should still be readable")
}

func TestActorUnsubscribeAllowsResubscribe(t *testing.T) {
	a := newTestActor(writableVar(t, 1, "a"))
	_, err := a.subscribe([]uint32{1}, 16)
	require.NoError(t, err)

	require.NoError(t, a.unsubscribe([]uint32{1}))
	assert.Empty(t, a.writeNotifiers)

	_, err = a.subscribe([]uint32{1}, 16)
	assert.NoError(t, err)
}

func TestActorUnsubscribeRejectsUnknownID(t *testing.T) {
	a := newTestActor(writableVar(t, 1, "a"))
	err := a.unsubscribe([]uint32{1})
	var notFound *VariableNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestApplyConnEventTransitions(t *testing.T) {
	a := &actor{}
	a.applyConnEvent(hubconn.EventConnected)
	assert.Equal(t, stateRegistering, a.state)

	a.applyConnEvent(hubconn.EventDisconnected)
	assert.Equal(t, stateConnecting, a.state)

	a.applyConnEvent(hubconn.EventReconnected)
	assert.Equal(t, stateRegistering, a.state)
}
