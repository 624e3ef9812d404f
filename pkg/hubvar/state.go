// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hubvar

import (
	"time"

	"github.com/weidmueller/u-os-hub-client-go/pkg/wire"
)

// State is the mutable part of a provider variable: its current value,
// quality, and timestamp. Fields are unexported so callers can only
// change them through SetValue/SetQuality/SetAll, which keep the
// timestamp consistent with the mutation that produced it.
type State struct {
	id        uint32
	value     wire.Value
	quality   wire.Quality
	timestamp *wire.Timestamp // nil: inherit the enclosing VariableList's base timestamp
}

// NewState builds a variable state with the given initial value, quality,
// and id, stamped with the current time.
func NewState(id uint32, value wire.Value, quality wire.Quality) State {
	ts := timestampNow()
	return State{id: id, value: value, quality: quality, timestamp: &ts}
}

// ID returns the id of the variable this state belongs to.
func (s State) ID() uint32 { return s.id }

// Value returns the current value.
func (s State) Value() wire.Value { return s.value }

// Quality returns the current quality.
func (s State) Quality() wire.Quality { return s.quality }

// Timestamp returns the current timestamp, or nil when the state inherits
// the timestamp of the enclosing variable list.
func (s State) Timestamp() *wire.Timestamp { return s.timestamp }

// SetValue replaces the value and stamps the current time.
func (s *State) SetValue(value wire.Value) {
	s.value = value
	ts := timestampNow()
	s.timestamp = &ts
}

// SetQuality replaces the quality and stamps the current time.
func (s *State) SetQuality(quality wire.Quality) {
	s.quality = quality
	ts := timestampNow()
	s.timestamp = &ts
}

// SetAll replaces value, quality, and timestamp in one step, giving full
// control over the timestamp. Passing a nil timestamp makes the state
// inherit the variable list's base timestamp at read/event time, trading
// per-variable temporal precision for a smaller payload.
func (s *State) SetAll(value wire.Value, quality wire.Quality, timestamp *wire.Timestamp) {
	s.value = value
	s.quality = quality
	s.timestamp = timestamp
}

func timestampNow() wire.Timestamp {
	now := time.Now()
	return wire.Timestamp{Seconds: now.Unix(), Nanos: int32(now.Nanosecond())}
}
