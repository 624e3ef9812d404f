// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weidmueller/u-os-hub-client-go/pkg/wire"
)

func TestProviderIDStringsEmpty(t *testing.T) {
	assert.Equal(t, []string{}, providerIDStrings(wire.ProviderIDList{}))
}

func TestProviderIDStringsPreservesOrder(t *testing.T) {
	list := wire.ProviderIDList{Items: []wire.ProviderID{{ID: "b"}, {ID: "a"}}}
	assert.Equal(t, []string{"b", "a"}, providerIDStrings(list))
}
