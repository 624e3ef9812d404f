// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package consumer

import "fmt"

// OfflineError reports that a provider is not currently registered, or
// its registered definition is not in the Ok state.
type OfflineError struct{ ProviderID string }

func (e *OfflineError) Error() string {
	return fmt.Sprintf("consumer: provider %q is offline or has an invalid definition", e.ProviderID)
}

// UnknownVariableIDError reports a variable id not present in the
// provider connection's cached catalogue.
type UnknownVariableIDError struct{ ID uint32 }

func (e *UnknownVariableIDError) Error() string {
	return fmt.Sprintf("consumer: unknown variable id %d", e.ID)
}

// UnknownVariableKeyError reports a variable key not present in the
// provider connection's cached catalogue.
type UnknownVariableKeyError struct{ Key string }

func (e *UnknownVariableKeyError) Error() string {
	return fmt.Sprintf("consumer: unknown variable key %q", e.Key)
}

// NotWritableError reports a write attempted against a read-only variable.
type NotWritableError struct{ Key string }

func (e *NotWritableError) Error() string {
	return fmt.Sprintf("consumer: variable %q does not allow writing", e.Key)
}

// TypeMismatchError reports a written value whose type does not match
// the variable's declared data type.
type TypeMismatchError struct{ Key string }

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("consumer: value type mismatch for variable %q", e.Key)
}

// FingerprintMismatchError reports a decoded reply whose fingerprint no
// longer matches the connection's cached one.
type FingerprintMismatchError struct {
	Expected uint64
	Actual   uint64
}

func (e *FingerprintMismatchError) Error() string {
	return fmt.Sprintf("consumer: provider fingerprint mismatch: expected %d, got %d", e.Expected, e.Actual)
}
