// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package consumer

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/weidmueller/u-os-hub-client-go/pkg/hubconn"
	"github.com/weidmueller/u-os-hub-client-go/pkg/hublog"
	"github.com/weidmueller/u-os-hub-client-go/pkg/hubsubject"
	"github.com/weidmueller/u-os-hub-client-go/pkg/hubvar"
	"github.com/weidmueller/u-os-hub-client-go/pkg/wire"
)

// VariableState is a consumer-friendly snapshot of a variable's current
// state, decoded off the wire with its timestamp already resolved
// against the enclosing list's base timestamp.
type VariableState struct {
	Value     wire.Value
	Quality   wire.Quality
	Timestamp wire.Timestamp
}

func newVariableState(v wire.Variable, fallback wire.Timestamp) VariableState {
	ts := fallback
	if v.Timestamp != nil {
		ts = *v.Timestamp
	}
	return VariableState{Value: v.Value, Quality: v.Quality, Timestamp: ts}
}

// ProviderEvent reports a change observed on a provider's published
// definition.
type ProviderEvent struct {
	// Kind distinguishes the three states a provider connection can
	// observe; Definitions is only meaningful when Kind is
	// ProviderEventDefinitionChanged.
	Kind        ProviderEventKind
	Definitions []hubvar.Definition
}

// ProviderEventKind enumerates the kinds of ProviderEvent.
type ProviderEventKind int

const (
	// ProviderEventDefinitionChanged carries the provider's new, valid
	// catalogue.
	ProviderEventDefinitionChanged ProviderEventKind = iota
	// ProviderEventOffline reports that the provider was removed from
	// the registry.
	ProviderEventOffline
	// ProviderEventInvalid reports that the provider is present but its
	// definition is not in the Ok state.
	ProviderEventInvalid
)

type providerState struct {
	fingerprint *uint64
	definitions map[uint32]hubvar.Definition
	keyToID     map[hubvar.KeyHash]uint32
}

// ProviderConnection is a cached, live view of one provider's published
// catalogue, kept current by a background event loop. Reads of the
// cache proceed without contention; the event loop is the only writer.
type ProviderConnection struct {
	conn       *hubconn.Connection
	providerID string

	mu    sync.RWMutex
	state providerState

	sub      *nats.Subscription
	closed   chan struct{}
	closeOne sync.Once
}

// Connect opens a connection to providerID's published catalogue.
//
// If waitForProvider is true, Connect first waits (with no internal
// timeout) until the provider publishes a valid definition; otherwise
// it fails immediately if the provider is not already registered and
// valid. Either way, once connected, the provider going offline later
// does not invalidate the handle: lookups against the last known
// catalogue keep working, only IsOnline and calls that require a live
// fingerprint start failing.
func Connect(ctx context.Context, conn *hubconn.Connection, providerID string, waitForProvider bool) (*ProviderConnection, error) {
	if waitForProvider {
		if err := NewRegistry(conn).WaitForProvider(ctx, providerID); err != nil {
			return nil, err
		}
	}

	nc := conn.Raw()

	reply, err := nc.RequestWithContext(ctx, hubsubject.RegistryProviderDefinitionReadQuery(providerID), nil)
	if err != nil {
		return nil, fmt.Errorf("consumer: reading provider %q definition failed: %w", providerID, err)
	}
	resp, err := wire.DecodeReadProviderDefinitionQueryResponse(reply.Data)
	if err != nil {
		return nil, fmt.Errorf("consumer: decoding provider %q definition failed: %w", providerID, err)
	}
	if resp.ProviderDefinition == nil || resp.ProviderDefinition.State != wire.ProviderStateOk {
		return nil, &OfflineError{ProviderID: providerID}
	}

	pc := &ProviderConnection{conn: conn, providerID: providerID, closed: make(chan struct{})}
	pc.applyDefinition(resp.ProviderDefinition)

	raw := make(chan *nats.Msg, 64)
	sub, err := nc.ChanSubscribe(hubsubject.RegistryProviderDefinitionChangedEvent(providerID), raw)
	if err != nil {
		return nil, fmt.Errorf("consumer: subscribing to provider %q definition changes failed: %w", providerID, err)
	}
	pc.sub = sub

	go pc.eventLoop(raw)

	return pc, nil
}

// eventLoop is the connection's single writer: it applies every
// decoded definition-changed event to the cached state until Close
// signals it to stop.
func (pc *ProviderConnection) eventLoop(raw <-chan *nats.Msg) {
	for {
		select {
		case <-pc.closed:
			return
		case msg, ok := <-raw:
			if !ok {
				return
			}
			evt, err := wire.DecodeProviderDefinitionChangedEvent(msg.Data)
			if err != nil {
				hublog.Warnf("consumer: could not decode provider %q definition changed event: %v", pc.providerID, err)
				continue
			}
			pc.applyDefinition(evt.ProviderDefinition)
		}
	}
}

// applyDefinition implements the three-way update rule: a valid
// catalogue atomically replaces fingerprint, definitions, and the key
// mapping; a present-but-invalid or absent (provider removed)
// definition clears only the fingerprint, keeping the last known
// mappings available for lookups while the provider is unavailable.
func (pc *ProviderConnection) applyDefinition(def *wire.ProviderDefinition) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if def == nil || def.State != wire.ProviderStateOk {
		pc.state.fingerprint = nil
		return
	}

	definitions := make(map[uint32]hubvar.Definition, len(def.VariableDefinitions))
	keyToID := make(map[hubvar.KeyHash]uint32, len(def.VariableDefinitions))
	for _, wd := range def.VariableDefinitions {
		d := hubvar.DefinitionFromWire(wd)
		definitions[d.ID] = d
		keyToID[hubvar.HashKey(d.Key)] = d.ID
	}

	fp := def.Fingerprint
	pc.state.fingerprint = &fp
	pc.state.definitions = definitions
	pc.state.keyToID = keyToID
}

// ProviderID returns the id of the connected provider.
func (pc *ProviderConnection) ProviderID() string { return pc.providerID }

// Fingerprint returns the cached catalogue fingerprint, and false if the
// provider is currently offline or invalid.
func (pc *ProviderConnection) Fingerprint() (uint64, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	if pc.state.fingerprint == nil {
		return 0, false
	}
	return *pc.state.fingerprint, true
}

// IsOnline reports whether the provider currently has a valid, cached
// fingerprint.
func (pc *ProviderConnection) IsOnline() bool {
	_, ok := pc.Fingerprint()
	return ok
}

// VariableIDs returns the cached list of known variable ids. The order
// is unspecified.
func (pc *ProviderConnection) VariableIDs() []uint32 {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	ids := make([]uint32, 0, len(pc.state.definitions))
	for id := range pc.state.definitions {
		ids = append(ids, id)
	}
	return ids
}

// Definition returns the cached definition for id.
func (pc *ProviderConnection) Definition(id uint32) (hubvar.Definition, error) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	d, ok := pc.state.definitions[id]
	if !ok {
		return hubvar.Definition{}, &UnknownVariableIDError{ID: id}
	}
	return d, nil
}

// AllDefinitions returns every cached variable definition. The order is
// unspecified.
func (pc *ProviderConnection) AllDefinitions() []hubvar.Definition {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	out := make([]hubvar.Definition, 0, len(pc.state.definitions))
	for _, d := range pc.state.definitions {
		out = append(out, d)
	}
	return out
}

// IDFromKey resolves a variable key to its current id.
func (pc *ProviderConnection) IDFromKey(key KeyLike) (uint32, error) {
	k := key.AsKey()
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	id, ok := pc.state.keyToID[k.Hash()]
	if !ok {
		return 0, &UnknownVariableKeyError{Key: k.String()}
	}
	return id, nil
}

// KeyFromID resolves a variable id to its current key string.
func (pc *ProviderConnection) KeyFromID(id uint32) (string, error) {
	d, err := pc.Definition(id)
	if err != nil {
		return "", err
	}
	return d.Key, nil
}

// SubscribeEvents subscribes to changes of the provider's published
// definition, mapped to the higher-level ProviderEvent shape. The
// subscription stops, closing the channel, when ctx is done.
func (pc *ProviderConnection) SubscribeEvents(ctx context.Context) (<-chan ProviderEvent, error) {
	raw := make(chan *nats.Msg, 64)
	sub, err := pc.conn.Raw().ChanSubscribe(hubsubject.RegistryProviderDefinitionChangedEvent(pc.providerID), raw)
	if err != nil {
		return nil, fmt.Errorf("consumer: subscribing to provider %q events failed: %w", pc.providerID, err)
	}

	out := make(chan ProviderEvent, 16)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-raw:
				if !ok {
					return
				}
				evt, err := wire.DecodeProviderDefinitionChangedEvent(msg.Data)
				if err != nil {
					hublog.Warnf("consumer: could not decode provider %q event: %v", pc.providerID, err)
					continue
				}
				mapped, ok := mapProviderEvent(evt.ProviderDefinition)
				if !ok {
					continue
				}
				select {
				case out <- mapped:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func mapProviderEvent(def *wire.ProviderDefinition) (ProviderEvent, bool) {
	if def == nil {
		return ProviderEvent{Kind: ProviderEventOffline}, true
	}
	if def.State != wire.ProviderStateOk {
		return ProviderEvent{Kind: ProviderEventInvalid}, true
	}
	defs := make([]hubvar.Definition, 0, len(def.VariableDefinitions))
	for _, wd := range def.VariableDefinitions {
		defs = append(defs, hubvar.DefinitionFromWire(wd))
	}
	return ProviderEvent{Kind: ProviderEventDefinitionChanged, Definitions: defs}, true
}

// ReadVariables reads the current state of a set of variables, resolved
// from keys. A nil filter reads every variable currently in the cached
// catalogue. The returned map is keyed by variable id.
func (pc *ProviderConnection) ReadVariables(ctx context.Context, filter []KeyLike) (map[uint32]VariableState, error) {
	fp, ok := pc.Fingerprint()
	if !ok {
		return nil, &OfflineError{ProviderID: pc.providerID}
	}

	var ids []uint32
	if filter != nil {
		ids = make([]uint32, 0, len(filter))
		for _, k := range filter {
			id, err := pc.IDFromKey(k)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}

	payload := wire.EncodeReadVariablesQueryRequest(wire.ReadVariablesQueryRequest{Ids: ids})
	reply, err := pc.conn.Raw().RequestWithContext(ctx, hubsubject.ReadVariablesQuery(pc.providerID), payload)
	if err != nil {
		return nil, fmt.Errorf("consumer: reading variables from provider %q failed: %w", pc.providerID, err)
	}
	resp, err := wire.DecodeReadVariablesQueryResponse(reply.Data)
	if err != nil {
		return nil, fmt.Errorf("consumer: decoding read reply from provider %q failed: %w", pc.providerID, err)
	}
	if resp.Variables.ProviderDefinitionFingerprint != fp {
		return nil, &FingerprintMismatchError{Expected: fp, Actual: resp.Variables.ProviderDefinitionFingerprint}
	}

	result := make(map[uint32]VariableState, len(resp.Variables.Items))
	for _, item := range resp.Variables.Items {
		result[item.ID] = newVariableState(item, resp.Variables.BaseTimestamp)
	}
	return result, nil
}

// ReadVariable reads the current state of a single variable.
func (pc *ProviderConnection) ReadVariable(ctx context.Context, key KeyLike) (VariableState, error) {
	states, err := pc.ReadVariables(ctx, []KeyLike{key})
	if err != nil {
		return VariableState{}, err
	}
	id, err := pc.IDFromKey(key)
	if err != nil {
		return VariableState{}, err
	}
	state, ok := states[id]
	if !ok {
		return VariableState{}, &UnknownVariableIDError{ID: id}
	}
	return state, nil
}

// Write pairs a variable key with the value to write to it.
type Write struct {
	Key   KeyLike
	Value wire.Value
}

// WriteVariables validates every pair — the key must resolve, the
// variable must be writable, and the value's type must match the
// variable's declared type — before sending anything. On success, a
// single write command stamped with the cached fingerprint is published
// and flushed to force transmission.
func (pc *ProviderConnection) WriteVariables(ctx context.Context, writes []Write) error {
	fp, ok := pc.Fingerprint()
	if !ok {
		return &OfflineError{ProviderID: pc.providerID}
	}

	items := make([]wire.Variable, 0, len(writes))
	for _, w := range writes {
		id, err := pc.IDFromKey(w.Key)
		if err != nil {
			return err
		}
		def, err := pc.Definition(id)
		if err != nil {
			return err
		}
		if def.AccessType != wire.AccessTypeReadWrite {
			return &NotWritableError{Key: def.Key}
		}
		if w.Value.Type() != def.DataType {
			return &TypeMismatchError{Key: def.Key}
		}
		items = append(items, wire.Variable{ID: id, Value: w.Value})
	}

	cmd := wire.WriteVariablesCommand{
		Variables: wire.VariableList{
			ProviderDefinitionFingerprint: fp,
			Items:                         items,
		},
	}
	nc := pc.conn.Raw()
	if err := nc.Publish(hubsubject.WriteVariablesCommand(pc.providerID), wire.EncodeWriteVariablesCommand(cmd)); err != nil {
		return fmt.Errorf("consumer: publishing write command to provider %q failed: %w", pc.providerID, err)
	}
	if err := nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("consumer: flushing write command to provider %q failed: %w", pc.providerID, err)
	}
	return nil
}

// WriteVariable writes a single variable. Prefer WriteVariables for more
// than one value at a time.
func (pc *ProviderConnection) WriteVariable(ctx context.Context, key KeyLike, value wire.Value) error {
	return pc.WriteVariables(ctx, []Write{{Key: key, Value: value}})
}

// VariableUpdate pairs a variable id with its new state, as delivered by
// SubscribeVariables.
type VariableUpdate struct {
	ID    uint32
	State VariableState
}

// SubscribeVariables subscribes to value changes published by the
// provider. A nil filter yields every changed variable; otherwise only
// changes to the given keys are yielded. The filter's id set is rebuilt
// from the current key mapping whenever the cached fingerprint advances,
// so a catalogue change that reassigns ids is handled transparently; a
// key that is dropped from the catalogue silently stops producing
// updates. The subscription survives catalogue changes and transient
// disconnects; it stops, closing the channel, when ctx is done.
func (pc *ProviderConnection) SubscribeVariables(ctx context.Context, filter []KeyLike) (<-chan []VariableUpdate, error) {
	raw := make(chan *nats.Msg, 64)
	sub, err := pc.conn.Raw().ChanSubscribe(hubsubject.VariablesChangedEvent(pc.providerID), raw)
	if err != nil {
		return nil, fmt.Errorf("consumer: subscribing to provider %q variable changes failed: %w", pc.providerID, err)
	}

	out := make(chan []VariableUpdate, 16)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()

		lastFP, _ := pc.Fingerprint()
		var idFilter map[uint32]struct{}
		if filter != nil {
			idFilter = pc.buildIDFilter(filter)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-raw:
				if !ok {
					return
				}

				if filter != nil {
					if fp, ok := pc.Fingerprint(); ok && fp != lastFP {
						idFilter = pc.buildIDFilter(filter)
						lastFP = fp
					}
				}

				evt, err := wire.DecodeVariablesChangedEvent(msg.Data)
				if err != nil {
					hublog.Warnf("consumer: could not decode provider %q variables changed event: %v", pc.providerID, err)
					continue
				}

				updates := make([]VariableUpdate, 0, len(evt.ChangedVariables.Items))
				for _, item := range evt.ChangedVariables.Items {
					if idFilter != nil {
						if _, wanted := idFilter[item.ID]; !wanted {
							continue
						}
					}
					updates = append(updates, VariableUpdate{
						ID:    item.ID,
						State: newVariableState(item, evt.ChangedVariables.BaseTimestamp),
					})
				}
				if len(updates) == 0 {
					continue
				}

				select {
				case out <- updates:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (pc *ProviderConnection) buildIDFilter(filter []KeyLike) map[uint32]struct{} {
	ids := make(map[uint32]struct{}, len(filter))
	for _, k := range filter {
		if id, err := pc.IDFromKey(k); err == nil {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// WaitUntilVariableKeysAreAvailable blocks until every key in keys
// resolves in the cached catalogue. It subscribes to definition events
// before the first check, so a registration between the check and the
// subscribe is never missed. There is no internal timeout; cancel ctx
// to give up. A provider that never publishes the requested keys blocks
// forever unless ctx is cancelled.
func (pc *ProviderConnection) WaitUntilVariableKeysAreAvailable(ctx context.Context, keys ...KeyLike) error {
	if len(keys) == 0 {
		return nil
	}

	events, err := pc.SubscribeEvents(ctx)
	if err != nil {
		return err
	}

	if pc.hasAllKeys(keys) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			if evt.Kind == ProviderEventDefinitionChanged && allKeysPresent(keys, evt.Definitions) {
				return nil
			}
		}
	}
}

func (pc *ProviderConnection) hasAllKeys(keys []KeyLike) bool {
	for _, k := range keys {
		if _, err := pc.IDFromKey(k); err != nil {
			return false
		}
	}
	return true
}

func allKeysPresent(keys []KeyLike, defs []hubvar.Definition) bool {
	present := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		present[d.Key] = struct{}{}
	}
	for _, k := range keys {
		if _, ok := present[k.AsKey().String()]; !ok {
			return false
		}
	}
	return true
}

// Close unsubscribes and stops the connection's background event loop.
// It is safe to call more than once.
func (pc *ProviderConnection) Close() {
	pc.closeOne.Do(func() {
		close(pc.closed)
		if pc.sub != nil {
			_ = pc.sub.Unsubscribe()
		}
	})
}
