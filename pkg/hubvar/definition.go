// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hubvar

import "github.com/weidmueller/u-os-hub-client-go/pkg/wire"

// Definition is a catalogue entry describing one variable: its identity,
// wire type, and access rights. It never changes after the variable is
// added to a catalogue; only its State does.
type Definition struct {
	ID           uint32
	Key          string
	DataType     wire.DataType
	AccessType   wire.AccessType
	Experimental bool
}

// ToWire converts a Definition to its wire representation.
func (d Definition) ToWire() wire.VariableDefinition {
	return wire.VariableDefinition{
		ID:           d.ID,
		Key:          d.Key,
		DataType:     d.DataType,
		AccessType:   d.AccessType,
		Experimental: d.Experimental,
	}
}

// DefinitionFromWire converts a wire.VariableDefinition to a Definition.
func DefinitionFromWire(wd wire.VariableDefinition) Definition {
	return Definition{
		ID:           wd.ID,
		Key:          wd.Key,
		DataType:     wd.DataType,
		AccessType:   wd.AccessType,
		Experimental: wd.Experimental,
	}
}
