// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hubvar

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/weidmueller/u-os-hub-client-go/pkg/wire"
)

// Catalogue is an ordered set of variable definitions: a provider's
// published variable table. Insertion order is significant — it feeds
// the fingerprint and is preserved on the wire.
type Catalogue struct {
	Definitions []Definition
}

// Fingerprint hashes the catalogue's definitions, in insertion order,
// into a single 64-bit value using the hub's hash function (xxhash,
// the same one used for KeyHash). Value changes never affect it: only
// key, access type, id, experimental flag, and data type feed the hash.
func Fingerprint(c Catalogue) uint64 {
	h := xxhash.New()
	var idBuf [4]byte
	for _, d := range c.Definitions {
		_, _ = h.Write([]byte(d.Key))
		_, _ = h.Write([]byte{d.AccessType.Raw()})
		binary.LittleEndian.PutUint32(idBuf[:], d.ID)
		_, _ = h.Write(idBuf[:])
		if d.Experimental {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte{d.DataType.Raw()})
	}
	return h.Sum64()
}

// ToWireProviderDefinition builds the wire payload for this catalogue,
// stamping it with its own fingerprint and the given state.
func (c Catalogue) ToWireProviderDefinition(state wire.ProviderState) wire.ProviderDefinition {
	defs := make([]wire.VariableDefinition, 0, len(c.Definitions))
	for _, d := range c.Definitions {
		defs = append(defs, d.ToWire())
	}
	return wire.ProviderDefinition{
		Fingerprint:         Fingerprint(c),
		State:               state,
		VariableDefinitions: defs,
	}
}

// CatalogueFromWire converts a wire.ProviderDefinition's variable
// definitions into a Catalogue, preserving their wire order.
func CatalogueFromWire(pd wire.ProviderDefinition) Catalogue {
	defs := make([]Definition, 0, len(pd.VariableDefinitions))
	for _, wd := range pd.VariableDefinitions {
		defs = append(defs, DefinitionFromWire(wd))
	}
	return Catalogue{Definitions: defs}
}
