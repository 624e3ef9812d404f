// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"github.com/weidmueller/u-os-hub-client-go/pkg/hubvar"
	"github.com/weidmueller/u-os-hub-client-go/pkg/wire"
)

// WriteCommand is a single write a consumer asked the hub to apply to one
// of this provider's variables. Commands for a given Subscribe call arrive
// batched, in the order the triggering write request listed them.
type WriteCommand struct {
	ID    uint32
	Value wire.Value
}

// cmdAddVariables asks the actor to merge new variables into the running
// catalogue and republish the provider definition.
type cmdAddVariables struct {
	variables []hubvar.Variable
	reply     chan error
}

// cmdRemoveVariables asks the actor to drop variables from the catalogue
// and republish the provider definition (without a values-changed event).
type cmdRemoveVariables struct {
	ids   []uint32
	reply chan error
}

// cmdUpdateStates asks the actor to apply new states to existing
// variables and publish a values-changed event for the ones that changed.
type cmdUpdateStates struct {
	updates []stateUpdate
	reply   chan error
}

type stateUpdate struct {
	id        uint32
	value     wire.Value
	quality   wire.Quality
	timestamp *wire.Timestamp
}

// cmdSubscribe asks the actor to route write commands for a set of ids to
// a new channel.
type cmdSubscribe struct {
	ids     []uint32
	reply   chan subscribeResult
	bufSize int
}

type subscribeResult struct {
	ch  <-chan []WriteCommand
	err error
}

// cmdUnsubscribe asks the actor to end the subscription covering ids and
// close its channel, freeing those ids for a future subscribe call.
type cmdUnsubscribe struct {
	ids   []uint32
	reply chan error
}
