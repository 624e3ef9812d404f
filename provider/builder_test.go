// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weidmueller/u-os-hub-client-go/pkg/hubvar"
	"github.com/weidmueller/u-os-hub-client-go/pkg/wire"
)

func mustBuildVariable(t *testing.T, id uint32, key string, value wire.Value) hubvar.Variable {
	t.Helper()
	v, err := hubvar.NewBuilder(id, key).InitialValue(value).Build()
	require.NoError(t, err)
	return v
}

func TestBuilderAddVariablesAccumulates(t *testing.T) {
	b := NewBuilder()
	v1 := mustBuildVariable(t, 1, "a", wire.Int64Value(1))
	v2 := mustBuildVariable(t, 2, "b", wire.Int64Value(2))

	_, err := b.AddVariables(v1)
	require.NoError(t, err)
	_, err = b.AddVariables(v2)
	require.NoError(t, err)

	assert.Len(t, b.variables, 2)
}

func TestBuilderAddVariablesRejectsDuplicateIDWithinCall(t *testing.T) {
	b := NewBuilder()
	v1 := mustBuildVariable(t, 1, "a", wire.Int64Value(1))
	v2 := mustBuildVariable(t, 1, "b", wire.Int64Value(2))

	_, err := b.AddVariables(v1, v2)
	var dupErr *DuplicateIDError
	assert.ErrorAs(t, err, &dupErr)
	assert.Equal(t, uint32(1), dupErr.ID)
}

func TestBuilderAddVariablesRejectsDuplicateKeyWithinCall(t *testing.T) {
	b := NewBuilder()
	v1 := mustBuildVariable(t, 1, "a", wire.Int64Value(1))
	v2 := mustBuildVariable(t, 2, "a", wire.Int64Value(2))

	_, err := b.AddVariables(v1, v2)
	var dupErr *DuplicateKeyError
	assert.ErrorAs(t, err, &dupErr)
}

func TestBuilderAddVariablesRejectsDuplicateIDAcrossCalls(t *testing.T) {
	b := NewBuilder()
	v1 := mustBuildVariable(t, 1, "a", wire.Int64Value(1))
	v2 := mustBuildVariable(t, 1, "b", wire.Int64Value(2))

	_, err := b.AddVariables(v1)
	require.NoError(t, err)
	_, err = b.AddVariables(v2)
	var dupErr *DuplicateIDError
	assert.ErrorAs(t, err, &dupErr)
}

func TestBuilderAddVariablesRejectsDuplicateKeyAcrossCalls(t *testing.T) {
	b := NewBuilder()
	v1 := mustBuildVariable(t, 1, "a", wire.Int64Value(1))
	v2 := mustBuildVariable(t, 2, "a", wire.Int64Value(2))

	_, err := b.AddVariables(v1)
	require.NoError(t, err)
	_, err = b.AddVariables(v2)
	var dupErr *DuplicateKeyError
	assert.ErrorAs(t, err, &dupErr)
}
