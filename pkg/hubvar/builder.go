// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hubvar

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/weidmueller/u-os-hub-client-go/pkg/wire"
)

// KeyPattern is the regular expression every VariableKey must match.
var KeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}(\.[A-Za-z_][A-Za-z0-9_]{0,62})*$`)

// MaxKeyLength is the maximum length, in bytes, of a variable key.
const MaxKeyLength = 1023

// ErrMissingValue is returned by Builder.Build when no initial value was set.
var ErrMissingValue = errors.New("hubvar: missing initial value")

// ErrInvalidValue is returned by Builder.Build when the initial value's
// data type cannot be determined (an Unknown(raw) value was supplied).
var ErrInvalidValue = errors.New("hubvar: invalid initial value")

// InvalidKeyError reports a key that fails §3's validation rule.
type InvalidKeyError struct {
	Key    string
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("hubvar: invalid variable key %q: %s", e.Key, e.Reason)
}

// ValidateKey checks a key string against the hub's key grammar: non-empty,
// at most MaxKeyLength bytes, matching KeyPattern, with no trailing dot.
func ValidateKey(key string) error {
	if key == "" {
		return &InvalidKeyError{Key: key, Reason: "empty key"}
	}
	if len(key) > MaxKeyLength {
		return &InvalidKeyError{Key: key, Reason: "key exceeds maximum length"}
	}
	if key[len(key)-1] == '.' {
		return &InvalidKeyError{Key: key, Reason: "trailing dot"}
	}
	if !KeyPattern.MatchString(key) {
		return &InvalidKeyError{Key: key, Reason: "contains invalid characters"}
	}
	return nil
}

// Builder constructs a Variable safely, validating the key and inferring
// the data type from the initial value.
type Builder struct {
	id           uint32
	key          string
	accessType   wire.AccessType
	experimental bool

	value   *wire.Value
	quality wire.Quality

	timestampOverridden bool
	timestamp           *wire.Timestamp
}

// NewBuilder starts building a variable with the required id and key.
// Access type defaults to ReadOnly, experimental to false, quality to
// Good, and the timestamp to "now" at Build time.
func NewBuilder(id uint32, key string) *Builder {
	return &Builder{
		id:         id,
		key:        key,
		accessType: wire.AccessTypeReadOnly,
		quality:    wire.QualityGood,
	}
}

// ReadWrite marks the variable writable by consumers.
func (b *Builder) ReadWrite() *Builder {
	b.accessType = wire.AccessTypeReadWrite
	return b
}

// Experimental marks the variable as experimental (hidden in UIs by convention).
func (b *Builder) Experimental() *Builder {
	b.experimental = true
	return b
}

// InitialValue sets the variable's starting value. The data type is
// inferred from it and fixed for the variable's lifetime. Required.
func (b *Builder) InitialValue(value wire.Value) *Builder {
	b.value = &value
	return b
}

// InitialQuality overrides the default Good starting quality.
func (b *Builder) InitialQuality(quality wire.Quality) *Builder {
	b.quality = quality
	return b
}

// InitialTimestamp overrides the default "now at build" starting
// timestamp. Passing nil makes the variable inherit its timestamp from
// the enclosing variable list at read/event time instead of carrying its
// own, trading per-variable precision for a smaller payload.
func (b *Builder) InitialTimestamp(timestamp *wire.Timestamp) *Builder {
	b.timestampOverridden = true
	b.timestamp = timestamp
	return b
}

// Build validates the key and value and produces the Variable, or the
// first validation error encountered.
func (b *Builder) Build() (Variable, error) {
	if err := ValidateKey(b.key); err != nil {
		return Variable{}, err
	}
	if b.value == nil {
		return Variable{}, ErrMissingValue
	}
	dataType := b.value.Type()
	if !dataType.IsKnown() {
		return Variable{}, ErrInvalidValue
	}

	timestamp := b.timestamp
	if !b.timestampOverridden {
		now := timestampNow()
		timestamp = &now
	}

	def := Definition{
		ID:           b.id,
		Key:          b.key,
		DataType:     dataType,
		AccessType:   b.accessType,
		Experimental: b.experimental,
	}
	state := State{
		id:        b.id,
		value:     *b.value,
		quality:   b.quality,
		timestamp: timestamp,
	}
	return Variable{Definition: def, State: state}, nil
}
