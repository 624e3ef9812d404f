// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package provider implements the provider role of the u-OS Data Hub
// client: publishing a catalogue of variables, keeping their values up to
// date, and accepting write commands from consumers.
//
// A Provider is built with Builder, which validates the initial catalogue
// before the first registration attempt. Once registered, the returned
// Provider can add, remove, and update variables, and subscribe to write
// commands, for as long as the underlying connection stays usable.
//
// Registration failure is fatal to the provider's background goroutine:
// once it happens, every Provider method returns ErrActorCrashed and a
// new Provider must be built.
package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/weidmueller/u-os-hub-client-go/pkg/hubconn"
	"github.com/weidmueller/u-os-hub-client-go/pkg/hubvar"
)

// registrationTimeout bounds how long Register waits for the registry's
// acknowledgement when the caller asks to wait for success. The
// background actor is not itself bound by this: if the timeout fires
// first it keeps waiting and the caller simply never receives a handle.
const registrationTimeout = 5 * time.Minute

// Builder accumulates variables before the first registration. Use
// NewBuilder, then AddVariables any number of times, then Register.
type Builder struct {
	variables map[uint32]hubvar.Variable
	keys      map[string]struct{}
}

// NewBuilder starts a provider builder with an empty catalogue.
func NewBuilder() *Builder {
	return &Builder{
		variables: make(map[uint32]hubvar.Variable),
		keys:      make(map[string]struct{}),
	}
}

// AddVariables adds variables to the builder's catalogue. It rejects any
// id or key collision, either within vars itself or against variables
// already added to the builder.
func (b *Builder) AddVariables(vars ...hubvar.Variable) (*Builder, error) {
	newIDs := make(map[uint32]struct{}, len(vars))
	newKeys := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if _, dup := newIDs[v.Definition.ID]; dup {
			return b, &DuplicateIDError{ID: v.Definition.ID}
		}
		newIDs[v.Definition.ID] = struct{}{}
		if _, dup := newKeys[v.Definition.Key]; dup {
			return b, &DuplicateKeyError{Key: v.Definition.Key}
		}
		newKeys[v.Definition.Key] = struct{}{}
	}
	for _, v := range vars {
		if _, dup := b.variables[v.Definition.ID]; dup {
			return b, &DuplicateIDError{ID: v.Definition.ID}
		}
		if _, dup := b.keys[v.Definition.Key]; dup {
			return b, &DuplicateKeyError{Key: v.Definition.Key}
		}
	}
	for _, v := range vars {
		b.variables[v.Definition.ID] = v
		b.keys[v.Definition.Key] = struct{}{}
	}
	return b, nil
}

// Register connects to the broker, starts the provider's background
// actor, and registers its catalogue with the registry.
//
// If waitForSuccess is true, Register blocks until the registry
// acknowledges the catalogue as valid, the registration is rejected, the
// context is cancelled, or five minutes pass — whichever comes first. A
// timeout here does not stop the background actor: it keeps waiting for
// the registry in case the caller gave up prematurely on a slow network,
// but since no handle was returned the provider can never be used or
// unregistered.
//
// If waitForSuccess is false, Register returns immediately with a handle.
// The actor only processes commands once registration has completed:
// calls made before that are queued, and each one blocks until the actor
// handles it or its context is done.
func Register(ctx context.Context, conn *hubconn.Connection, builder *Builder, waitForSuccess bool) (*Provider, error) {
	act, err := newActor(conn, builder.variables)
	if err != nil {
		return nil, err
	}

	ready := make(chan error, 1)
	go act.run(ready)

	p := &Provider{act: act}

	if !waitForSuccess {
		return p, nil
	}

	select {
	case err := <-ready:
		if err != nil {
			return nil, err
		}
		return p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(registrationTimeout):
		return nil, ErrRegistrationTimeout
	}
}

// Provider is a handle to a registered provider's background actor. It is
// safe for concurrent use; every method may be called from multiple
// goroutines at once.
type Provider struct {
	act      *actor
	closeOne sync.Once
}

// AddVariables adds new variables to the running provider's catalogue,
// rejecting any id or key collision with the existing catalogue, then
// re-registers the catalogue and publishes the new variables' values.
func (p *Provider) AddVariables(ctx context.Context, vars []hubvar.Variable) error {
	reply := make(chan error, 1)
	cmd := cmdAddVariables{variables: vars, reply: reply}
	return p.send(ctx, cmd, reply)
}

// RemoveVariables drops variables from the running catalogue, ignoring
// ids that are not present, and re-registers the (possibly unchanged)
// catalogue.
func (p *Provider) RemoveVariables(ctx context.Context, vars []hubvar.Variable) error {
	ids := make([]uint32, 0, len(vars))
	for _, v := range vars {
		ids = append(ids, v.Definition.ID)
	}
	reply := make(chan error, 1)
	cmd := cmdRemoveVariables{ids: ids, reply: reply}
	return p.send(ctx, cmd, reply)
}

// UpdateStates applies new values, qualities, and timestamps to existing
// variables and publishes a values-changed event for them.
//
// Every update is validated before any of them are applied: if any
// referenced id is unknown, or any value's data type does not match the
// variable's declared type, none of the updates take effect.
func (p *Provider) UpdateStates(ctx context.Context, states []hubvar.State) error {
	updates := make([]stateUpdate, 0, len(states))
	for _, s := range states {
		updates = append(updates, stateUpdate{
			id:        s.ID(),
			value:     s.Value(),
			quality:   s.Quality(),
			timestamp: s.Timestamp(),
		})
	}
	reply := make(chan error, 1)
	cmd := cmdUpdateStates{updates: updates, reply: reply}
	return p.send(ctx, cmd, reply)
}

// SubscribeToWriteCommand opens a channel that receives batches of write
// commands for the given variables' ids. Only one subscriber may exist
// per id at a time; a read-only variable can be named here, but will
// never produce a write command on the returned channel.
//
// bufSize bounds how many pending batches the channel holds, with a floor
// of 100: a smaller value is silently raised to it. If a batch arrives
// while the channel is full, the actor ends this subscription: the batch
// is dropped and the channel is closed after the batches already buffered.
func (p *Provider) SubscribeToWriteCommand(ctx context.Context, vars []hubvar.Variable, bufSize int) (<-chan []WriteCommand, error) {
	ids := make([]uint32, 0, len(vars))
	for _, v := range vars {
		ids = append(ids, v.Definition.ID)
	}
	reply := make(chan subscribeResult, 1)
	cmd := cmdSubscribe{ids: ids, reply: reply, bufSize: bufSize}

	select {
	case p.act.cmdCh <- cmd:
	case <-p.act.crashed:
		return nil, p.crashedErr()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.ch, res.err
	case <-p.act.crashed:
		return nil, p.crashedErr()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Unsubscribe ends a subscription previously returned by
// SubscribeToWriteCommand and closes its channel, freeing vars' ids for a
// later SubscribeToWriteCommand call. vars must be exactly the set passed
// to the subscribe call being ended.
func (p *Provider) Unsubscribe(ctx context.Context, vars []hubvar.Variable) error {
	ids := make([]uint32, 0, len(vars))
	for _, v := range vars {
		ids = append(ids, v.Definition.ID)
	}
	reply := make(chan error, 1)
	cmd := cmdUnsubscribe{ids: ids, reply: reply}
	return p.send(ctx, cmd, reply)
}

// Close stops the provider's background actor and unregisters it from
// the registry. It is safe to call more than once.
func (p *Provider) Close() {
	p.closeOne.Do(func() {
		close(p.act.cmdCh)
	})
}

func (p *Provider) send(ctx context.Context, cmd any, reply <-chan error) error {
	select {
	case p.act.cmdCh <- cmd:
	case <-p.act.crashed:
		return p.crashedErr()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-p.act.crashed:
		return p.crashedErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Provider) crashedErr() error {
	p.act.crashMu.Lock()
	defer p.act.crashMu.Unlock()
	return fmt.Errorf("%w: %v", ErrActorCrashed, p.act.crashErr)
}
