// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"errors"
	"fmt"
)

// ErrActorCrashed is returned by every Provider method once the
// registration handshake has failed fatally; the handle is permanently
// unusable and a new Provider must be built.
var ErrActorCrashed = errors.New("provider: actor crashed, provider must be recreated")

// ErrRegistrationTimeout is returned by Register when waitForSuccess was
// requested and the registry did not acknowledge within five minutes.
var ErrRegistrationTimeout = errors.New("provider: registration timed out")

// InvalidDefinitionError is returned when the registry rejects a
// catalogue (a non-Ok state, or no definition at all, in its reply).
type InvalidDefinitionError struct {
	Reason string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("provider: registry rejected provider definition: %s", e.Reason)
}

// DuplicateIDError is returned by Builder.AddVariables / Provider.AddVariables
// when the merged catalogue would contain two variables with the same id.
type DuplicateIDError struct{ ID uint32 }

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("provider: duplicate variable id %d", e.ID)
}

// DuplicateKeyError is returned by Builder.AddVariables / Provider.AddVariables
// when the merged catalogue would contain two variables with the same key.
type DuplicateKeyError struct{ Key string }

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("provider: duplicate variable key %q", e.Key)
}

// VariableNotFoundError is returned when an operation references a
// variable id that is not in the provider's current catalogue.
type VariableNotFoundError struct{ ID uint32 }

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("provider: unknown variable id %d", e.ID)
}

// TypeMismatchError is returned by UpdateStates when a new value's data
// type does not match the variable's declared data type.
type TypeMismatchError struct{ ID uint32 }

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("provider: value type mismatch for variable id %d", e.ID)
}

// AlreadySubscribedError is returned by SubscribeToWriteCommand when a
// variable id already belongs to an existing write-command subscriber.
type AlreadySubscribedError struct{ ID uint32 }

func (e *AlreadySubscribedError) Error() string {
	return fmt.Sprintf("provider: variable id %d already has a write-command subscriber", e.ID)
}
