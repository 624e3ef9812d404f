// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hubvar

import (
	"errors"
	"fmt"
	"strings"
)

// DuplicateIDError reports two definitions in a catalogue sharing an id.
type DuplicateIDError struct{ ID uint32 }

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("hubvar: duplicate variable id %d", e.ID)
}

// DuplicateKeyError reports two definitions in a catalogue sharing a key.
type DuplicateKeyError struct{ Key string }

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("hubvar: duplicate variable key %q", e.Key)
}

// LeafUnderFolderError reports a key that is both a leaf and a strict
// dotted prefix (folder) of another key in the same catalogue.
type LeafUnderFolderError struct{ Key string }

func (e *LeafUnderFolderError) Error() string {
	return fmt.Sprintf("hubvar: variable key %q is added to a leaf node, not a folder", e.Key)
}

// ErrUnspecifiedAccessType is returned when a definition's access type is
// Unknown (only valid on values decoded off the wire, never in a
// catalogue the library itself validates).
var ErrUnspecifiedAccessType = errors.New("hubvar: unspecified access type")

// ErrUnspecifiedDataType is returned when a definition's data type is Unknown.
var ErrUnspecifiedDataType = errors.New("hubvar: unspecified data type")

// Validate checks a catalogue and returns the first violation found, in
// this order: per-definition validity, id uniqueness, key uniqueness,
// leaf-under-folder collisions. Running uniqueness before the prefix
// check ensures duplicate keys are reported before collisions derived
// from them.
func Validate(c Catalogue) error {
	ids := make(map[uint32]struct{}, len(c.Definitions))
	keys := make(map[string]struct{}, len(c.Definitions))

	for _, d := range c.Definitions {
		if err := validateDefinition(d); err != nil {
			return err
		}
		if _, dup := ids[d.ID]; dup {
			return &DuplicateIDError{ID: d.ID}
		}
		ids[d.ID] = struct{}{}

		if _, dup := keys[d.Key]; dup {
			return &DuplicateKeyError{Key: d.Key}
		}
		keys[d.Key] = struct{}{}
	}

	for _, d := range c.Definitions {
		for _, prefix := range parentPaths(d.Key) {
			if _, isKey := keys[prefix]; isKey {
				return &LeafUnderFolderError{Key: d.Key}
			}
		}
	}

	return nil
}

func validateDefinition(d Definition) error {
	if err := ValidateKey(d.Key); err != nil {
		return err
	}
	if !d.AccessType.IsKnown() {
		return ErrUnspecifiedAccessType
	}
	if !d.DataType.IsKnown() {
		return ErrUnspecifiedDataType
	}
	return nil
}

// parentPaths returns every strict dotted prefix of key, e.g.
// "a.b.c" -> ["a", "a.b"]; a key with no dot has none.
func parentPaths(key string) []string {
	parts := strings.Split(key, ".")
	if len(parts) <= 1 {
		return nil
	}
	out := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		out = append(out, strings.Join(parts[:i], "."))
	}
	return out
}
