// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hubsubject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectBuilders(t *testing.T) {
	assert.Equal(t, "v1.loc.press1.vars.evt.changed", VariablesChangedEvent("press1"))
	assert.Equal(t, "v1.loc.press1.vars.qry.read", ReadVariablesQuery("press1"))
	assert.Equal(t, "v1.loc.press1.vars.cmd.write", WriteVariablesCommand("press1"))
	assert.Equal(t, "v1.loc.press1.def.evt.changed", ProviderDefinitionChangedEvent("press1"))
	assert.Equal(t, "v1.loc.registry.providers.press1.def.qry.read", RegistryProviderDefinitionReadQuery("press1"))
	assert.Equal(t, "v1.loc.registry.providers.press1.def.evt.changed", RegistryProviderDefinitionChangedEvent("press1"))
	assert.Equal(t, "v1.loc.registry.providers.qry.read", RegistryProvidersReadQuery())
	assert.Equal(t, "v1.loc.registry.providers.evt.changed", RegistryProvidersChangedEvent())
	assert.Equal(t, "v1.loc.registry.state.evt.changed", RegistryStateChangedEvent())
}

func TestExtractProviderIDFromProviderSubject(t *testing.T) {
	id, err := ExtractProviderID("v1.loc.press1.vars.evt.changed")
	require.NoError(t, err)
	assert.Equal(t, "press1", id)
}

func TestExtractProviderIDFromRegistrySubject(t *testing.T) {
	id, err := ExtractProviderID("v1.loc.registry.providers.press1.def.evt.changed")
	require.NoError(t, err)
	assert.Equal(t, "press1", id)
}

func TestExtractProviderIDRejectsEmpty(t *testing.T) {
	_, err := ExtractProviderID("v1.loc..vars.evt.changed")
	assert.ErrorIs(t, err, ErrNoProviderID)

	_, err = ExtractProviderID("v1.loc.registry.providers..def.evt.changed")
	assert.ErrorIs(t, err, ErrNoProviderID)
}

func TestExtractProviderIDRejectsShortSubject(t *testing.T) {
	_, err := ExtractProviderID("v1.loc")
	assert.ErrorIs(t, err, ErrNoProviderID)
}

func TestExtractProviderIDNonRegistryWithRegistryKeywordElsewhere(t *testing.T) {
	// "registry" only at position 2 without "providers" at position 3
	// must still be treated as a provider subject.
	id, err := ExtractProviderID("v1.loc.registry.vars.evt.changed")
	require.NoError(t, err)
	assert.Equal(t, "registry", id)
}
