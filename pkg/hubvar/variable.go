// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hubvar

import "github.com/weidmueller/u-os-hub-client-go/pkg/wire"

// Variable pairs a catalogue Definition with its current mutable State.
// Only Builder should construct one directly; building by hand skips key
// and access-type validation.
type Variable struct {
	Definition Definition
	State      State
}

// ToWireVariable converts a Variable to the wire record carried inside a
// VariableList.
func (v Variable) ToWireVariable() wire.Variable {
	return wire.Variable{
		ID:        v.State.id,
		Quality:   v.State.quality,
		Timestamp: v.State.timestamp,
		Value:     v.State.value,
	}
}
