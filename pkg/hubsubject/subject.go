// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hubsubject builds and parses the dot-delimited broker subjects
// used to address hub participants.
package hubsubject

import (
	"errors"
	"strings"
)

// VersionPrefix is the fixed version segment of every hub subject.
const VersionPrefix = "v1"

// LocationPrefix is the fixed location segment of every hub subject.
const LocationPrefix = "loc"

// ErrNoProviderID is returned when a subject carries no usable provider id.
var ErrNoProviderID = errors.New("hubsubject: no provider id in subject")

// VariablesChangedEvent is the subject a provider publishes on whenever its
// variable values change.
func VariablesChangedEvent(providerID string) string {
	return VersionPrefix + "." + LocationPrefix + "." + providerID + ".vars.evt.changed"
}

// ReadVariablesQuery is the request/reply subject for reading variables.
func ReadVariablesQuery(providerID string) string {
	return VersionPrefix + "." + LocationPrefix + "." + providerID + ".vars.qry.read"
}

// WriteVariablesCommand is the subject for fire-and-forget variable writes.
func WriteVariablesCommand(providerID string) string {
	return VersionPrefix + "." + LocationPrefix + "." + providerID + ".vars.cmd.write"
}

// ProviderDefinitionChangedEvent is the subject a provider uses to notify
// the registry about its (possibly removed) catalogue.
func ProviderDefinitionChangedEvent(providerID string) string {
	return VersionPrefix + "." + LocationPrefix + "." + providerID + ".def.evt.changed"
}

// RegistryProviderDefinitionReadQuery is the request/reply subject for the
// registry's view of a provider's definition.
func RegistryProviderDefinitionReadQuery(providerID string) string {
	return VersionPrefix + "." + LocationPrefix + ".registry.providers." + providerID + ".def.qry.read"
}

// RegistryProviderDefinitionChangedEvent is the subject the registry uses
// to announce a provider's (possibly removed) definition to consumers.
func RegistryProviderDefinitionChangedEvent(providerID string) string {
	return VersionPrefix + "." + LocationPrefix + ".registry.providers." + providerID + ".def.evt.changed"
}

// RegistryProvidersReadQuery is the request/reply subject for listing all
// registered provider ids.
func RegistryProvidersReadQuery() string {
	return VersionPrefix + "." + LocationPrefix + ".registry.providers.qry.read"
}

// RegistryProvidersChangedEvent is the subject announcing a change to the
// provider-id listing.
func RegistryProvidersChangedEvent() string {
	return VersionPrefix + "." + LocationPrefix + ".registry.providers.evt.changed"
}

// RegistryStateChangedEvent is the subject the registry publishes its own
// run state on.
func RegistryStateChangedEvent() string {
	return VersionPrefix + "." + LocationPrefix + ".registry.state.evt.changed"
}

// isRegistrySubject reports whether parts look like a registry subject,
// i.e. segments 2 and 3 are "registry" and "providers".
func isRegistrySubject(parts []string) bool {
	return len(parts) >= 4 && parts[2] == "registry" && parts[3] == "providers"
}

// ExtractProviderID extracts the provider id embedded in a subject,
// selecting index 4 for registry subjects and index 2 otherwise. An empty
// or missing provider id segment is rejected.
func ExtractProviderID(subject string) (string, error) {
	parts := strings.Split(subject, ".")

	idx := 2
	if isRegistrySubject(parts) {
		idx = 4
	}

	if idx >= len(parts) {
		return "", ErrNoProviderID
	}
	id := parts[idx]
	if id == "" {
		return "", ErrNoProviderID
	}
	return id, nil
}
