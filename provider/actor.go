// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/weidmueller/u-os-hub-client-go/pkg/hubconn"
	"github.com/weidmueller/u-os-hub-client-go/pkg/hublog"
	"github.com/weidmueller/u-os-hub-client-go/pkg/hubsubject"
	"github.com/weidmueller/u-os-hub-client-go/pkg/hubvar"
	"github.com/weidmueller/u-os-hub-client-go/pkg/wire"
)

type actorState int

const (
	stateConnecting actorState = iota
	stateRegistering
	stateRunning
)

// errHandshakeInterrupted signals that a registration handshake was cut
// short by a connection event rather than by the registry's own reply.
var errHandshakeInterrupted = errors.New("provider: registration handshake interrupted by connection event")

var errConnectionClosed = errors.New("provider: connection closed")

type writeNotifier struct {
	ids map[uint32]struct{}
	ch  chan []WriteCommand
}

// actor owns the authoritative variable table and runs the registration
// state machine and command loop on its own goroutine. Its internal table
// is kept in ascending-id order whenever it is published or fingerprinted,
// mirroring the ordered map the variables are conceptually stored in.
type actor struct {
	conn       *hubconn.Connection
	providerID string

	state       actorState
	variables   map[uint32]hubvar.Variable
	fingerprint uint64

	writeNotifiers []writeNotifier

	cmdCh chan any

	events        <-chan hubconn.Event
	queryCh       chan *nats.Msg
	writeCh       chan *nats.Msg
	registryUpCh  chan *nats.Msg
	querySub      *nats.Subscription
	writeSub      *nats.Subscription
	registryUpSub *nats.Subscription

	crashMu  sync.Mutex
	crashed  chan struct{}
	crashErr error
}

func newActor(conn *hubconn.Connection, variables map[uint32]hubvar.Variable) (*actor, error) {
	a := &actor{
		conn:       conn,
		providerID: conn.ClientName(),
		variables:  variables,
		cmdCh:      make(chan any, 100),
		events:     conn.Events(),
		crashed:    make(chan struct{}),
	}

	nc := conn.Raw()

	a.queryCh = make(chan *nats.Msg, 64)
	querySub, err := nc.ChanSubscribe(hubsubject.ReadVariablesQuery(a.providerID), a.queryCh)
	if err != nil {
		return nil, fmt.Errorf("provider: subscribe to read query failed: %w", err)
	}
	a.querySub = querySub

	a.writeCh = make(chan *nats.Msg, 64)
	writeSub, err := nc.ChanSubscribe(hubsubject.WriteVariablesCommand(a.providerID), a.writeCh)
	if err != nil {
		return nil, fmt.Errorf("provider: subscribe to write command failed: %w", err)
	}
	a.writeSub = writeSub

	a.registryUpCh = make(chan *nats.Msg, 8)
	registryUpSub, err := nc.ChanSubscribe(hubsubject.RegistryStateChangedEvent(), a.registryUpCh)
	if err != nil {
		return nil, fmt.Errorf("provider: subscribe to registry state failed: %w", err)
	}
	a.registryUpSub = registryUpSub

	if nc.Status() == nats.CONNECTED {
		a.state = stateRegistering
	} else {
		a.state = stateConnecting
	}
	a.fingerprint = hubvar.Fingerprint(a.catalogue())

	return a, nil
}

// run drives the state machine until the connection is closed or the
// actor crashes. ready, if non-nil, receives exactly one value: nil once
// the first registration succeeds, or the error that crashed the actor if
// it fails first.
func (a *actor) run(ready chan<- error) {
	for {
		switch a.state {
		case stateConnecting:
			ev, ok := <-a.events
			if !ok {
				a.unsubscribeAll()
				return
			}
			a.applyConnEvent(ev)

		case stateRegistering:
			err := a.registerHandshake()
			if err != nil && !errors.Is(err, errHandshakeInterrupted) {
				a.crash(err)
				if ready != nil {
					ready <- err
					ready = nil
				}
				a.unsubscribeAll()
				return
			}
			if a.state == stateRunning && ready != nil {
				hublog.Infof("provider %q: registered", a.providerID)
				ready <- nil
				ready = nil
			}

		case stateRunning:
			if !a.runningStep() {
				a.unsubscribeAll()
				return
			}
		}
	}
}

func (a *actor) unsubscribeAll() {
	_ = a.querySub.Unsubscribe()
	_ = a.writeSub.Unsubscribe()
	_ = a.registryUpSub.Unsubscribe()
}

func (a *actor) applyConnEvent(ev hubconn.Event) {
	switch ev {
	case hubconn.EventConnected, hubconn.EventReconnected:
		a.state = stateRegistering
	case hubconn.EventDisconnected:
		a.state = stateConnecting
	}
}

// registerHandshake subscribes to the registry's reply subject before
// publishing, so a fast reply is never missed, then waits for the
// registry's verdict. A registry-up event arriving mid-wait triggers a
// republish without abandoning the wait. A connection event aborts the
// wait with errHandshakeInterrupted and updates a.state accordingly.
func (a *actor) registerHandshake() error {
	def := a.buildDefinition()
	payload := wire.EncodeProviderDefinitionChangedEvent(wire.ProviderDefinitionChangedEvent{ProviderDefinition: &def})

	replyCh := make(chan *nats.Msg, 8)
	sub, err := a.conn.Raw().ChanSubscribe(hubsubject.RegistryProviderDefinitionChangedEvent(a.providerID), replyCh)
	if err != nil {
		return fmt.Errorf("provider: subscribe to registration reply failed: %w", err)
	}
	defer sub.Unsubscribe()

	publish := func() error {
		return a.conn.Raw().Publish(hubsubject.ProviderDefinitionChangedEvent(a.providerID), payload)
	}
	if err := publish(); err != nil {
		return fmt.Errorf("provider: publishing provider definition failed: %w", err)
	}

	for {
		select {
		case msg := <-replyCh:
			resp, err := wire.DecodeProviderDefinitionChangedEvent(msg.Data)
			if err != nil {
				return &InvalidDefinitionError{Reason: "could not parse provider definition changed event"}
			}
			if resp.ProviderDefinition == nil {
				return &InvalidDefinitionError{Reason: "provider definition changed event did not contain a provider definition"}
			}
			if resp.ProviderDefinition.State != wire.ProviderStateOk {
				return &InvalidDefinitionError{Reason: "the registry marked the definition as invalid"}
			}
			a.state = stateRunning
			return nil

		case msg := <-a.registryUpCh:
			if !registryIsUp(msg) {
				continue
			}
			if err := publish(); err != nil {
				return fmt.Errorf("provider: publishing provider definition failed: %w", err)
			}

		case ev, ok := <-a.events:
			if !ok {
				return errConnectionClosed
			}
			switch ev {
			case hubconn.EventDisconnected:
				a.state = stateConnecting
				return errHandshakeInterrupted
			case hubconn.EventClosed:
				return errConnectionClosed
			}
			// Connected/Reconnected while already mid-handshake: ignore.
		}
	}
}

// runningStep processes exactly one event and reports whether the actor
// should keep running.
func (a *actor) runningStep() bool {
	select {
	case cmd, ok := <-a.cmdCh:
		if !ok {
			if err := a.sendEmptyDefinition(); err != nil {
				hublog.Errorf("provider %q: failed to unregister: %v", a.providerID, err)
			}
			return false
		}
		a.handleCommand(cmd)
		return true

	case msg := <-a.queryCh:
		a.handleReadQuery(msg)
		return true

	case msg := <-a.writeCh:
		a.handleWrite(msg)
		return true

	case msg := <-a.registryUpCh:
		if !registryIsUp(msg) {
			return true
		}
		if err := a.registerHandshake(); err != nil {
			if errors.Is(err, errHandshakeInterrupted) {
				return true
			}
			a.crash(err)
			return false
		}
		return true

	case ev, ok := <-a.events:
		if !ok {
			return false
		}
		a.applyConnEvent(ev)
		return true
	}
}

// registryIsUp reports whether msg is a registry state event announcing
// that the registry is running.
func registryIsUp(msg *nats.Msg) bool {
	ev, err := wire.DecodeStateChangedEvent(msg.Data)
	return err == nil && ev.State == wire.RegistryStateRunning
}

func (a *actor) crash(err error) {
	a.crashMu.Lock()
	defer a.crashMu.Unlock()
	select {
	case <-a.crashed:
		return
	default:
	}
	a.crashErr = err
	close(a.crashed)
	hublog.Errorf("provider %q failed to register: %v", a.providerID, err)
}

func (a *actor) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case cmdAddVariables:
		c.reply <- a.addVariables(c.variables)
	case cmdRemoveVariables:
		c.reply <- a.removeVariables(c.ids)
	case cmdUpdateStates:
		c.reply <- a.updateStates(c.updates)
	case cmdSubscribe:
		ch, err := a.subscribe(c.ids, c.bufSize)
		c.reply <- subscribeResult{ch: ch, err: err}
	case cmdUnsubscribe:
		c.reply <- a.unsubscribe(c.ids)
	}
}

// sortedIDs returns the current variable ids in ascending order, matching
// the ordered-map semantics the catalogue and publish operations rely on.
func (a *actor) sortedIDs() []uint32 {
	ids := make([]uint32, 0, len(a.variables))
	for id := range a.variables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (a *actor) catalogue() hubvar.Catalogue {
	ids := a.sortedIDs()
	defs := make([]hubvar.Definition, 0, len(ids))
	for _, id := range ids {
		defs = append(defs, a.variables[id].Definition)
	}
	return hubvar.Catalogue{Definitions: defs}
}

func (a *actor) buildDefinition() wire.ProviderDefinition {
	cat := a.catalogue()
	a.fingerprint = hubvar.Fingerprint(cat)
	return cat.ToWireProviderDefinition(wire.ProviderStateUnspecified)
}

func (a *actor) sendEmptyDefinition() error {
	payload := wire.EncodeProviderDefinitionChangedEvent(wire.ProviderDefinitionChangedEvent{ProviderDefinition: nil})
	return a.conn.Raw().Publish(hubsubject.ProviderDefinitionChangedEvent(a.providerID), payload)
}

// addVariables rejects any id/key collision, within the new batch or
// against the existing table, merges on success, republishes the
// definition, and emits a values-changed event scoped to the new ids.
func (a *actor) addVariables(vars []hubvar.Variable) error {
	newIDs := make(map[uint32]struct{}, len(vars))
	newKeys := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if _, dup := newIDs[v.Definition.ID]; dup {
			return &DuplicateIDError{ID: v.Definition.ID}
		}
		newIDs[v.Definition.ID] = struct{}{}
		if _, dup := newKeys[v.Definition.Key]; dup {
			return &DuplicateKeyError{Key: v.Definition.Key}
		}
		newKeys[v.Definition.Key] = struct{}{}
	}
	for id, existing := range a.variables {
		if _, clash := newIDs[id]; clash {
			return &DuplicateIDError{ID: id}
		}
		if _, clash := newKeys[existing.Definition.Key]; clash {
			return &DuplicateKeyError{Key: existing.Definition.Key}
		}
	}

	for _, v := range vars {
		a.variables[v.Definition.ID] = v
	}

	if err := a.republishAndWait(); err != nil {
		return err
	}

	ids := make([]uint32, 0, len(vars))
	for _, v := range vars {
		ids = append(ids, v.Definition.ID)
	}
	return a.publishUpdates(ids)
}

// removeVariables drops ids that exist, ignoring the rest, and
// republishes the (possibly unchanged) definition. No values-changed
// event is emitted: the removed variables no longer exist to report on.
func (a *actor) removeVariables(ids []uint32) error {
	for _, id := range ids {
		delete(a.variables, id)
	}
	return a.republishAndWait()
}

// updateStates validates every update before applying any of them, then
// publishes a values-changed event scoped to the updated ids.
func (a *actor) updateStates(updates []stateUpdate) error {
	for _, u := range updates {
		current, ok := a.variables[u.id]
		if !ok {
			return &VariableNotFoundError{ID: u.id}
		}
		if u.value.Type() != current.Definition.DataType {
			return &TypeMismatchError{ID: u.id}
		}
	}

	ids := make([]uint32, 0, len(updates))
	for _, u := range updates {
		v := a.variables[u.id]
		v.State.SetAll(u.value, u.quality, u.timestamp)
		a.variables[u.id] = v
		ids = append(ids, u.id)
	}

	return a.publishUpdates(ids)
}

// minWriteNotifierBufSize is the smallest channel capacity subscribe will
// honour; a caller-supplied bufSize below this is raised to it.
const minWriteNotifierBufSize = 100

// subscribe rejects unknown or already-subscribed ids and creates a new
// write-command channel for the given ids. Rust's mpsc::Sender exposes
// is_closed() so a dead subscriber can be swept the moment subscribe runs;
// a Go channel gives the sending side no equivalent signal when the
// receiver walks away, so unsubscribe retires a notifier the instant a
// caller is done with it instead of waiting for the next subscribe call to
// notice. A caller that abandons its channel without calling unsubscribe
// is still reclaimed, lazily, the next time handleWrite's send to it
// fails.
func (a *actor) subscribe(ids []uint32, bufSize int) (chan []WriteCommand, error) {
	for _, id := range ids {
		if _, ok := a.variables[id]; !ok {
			return nil, &VariableNotFoundError{ID: id}
		}
		for _, n := range a.writeNotifiers {
			if _, taken := n.ids[id]; taken {
				return nil, &AlreadySubscribedError{ID: id}
			}
		}
	}

	if bufSize < minWriteNotifierBufSize {
		bufSize = minWriteNotifierBufSize
	}

	idSet := make(map[uint32]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	ch := make(chan []WriteCommand, bufSize)
	a.writeNotifiers = append(a.writeNotifiers, writeNotifier{ids: idSet, ch: ch})
	return ch, nil
}

// unsubscribe ends the subscription covering every one of ids and closes
// its channel. ids must all belong to the same notifier, as returned by a
// single subscribe call; an id not currently subscribed is an error.
func (a *actor) unsubscribe(ids []uint32) error {
	idx := -1
	for i, n := range a.writeNotifiers {
		if _, ok := n.ids[ids[0]]; ok {
			idx = i
			break
		}
	}
	if idx == -1 {
		return &VariableNotFoundError{ID: ids[0]}
	}
	for _, id := range ids[1:] {
		if _, ok := a.writeNotifiers[idx].ids[id]; !ok {
			return &VariableNotFoundError{ID: id}
		}
	}
	a.removeNotifiers([]int{idx})
	return nil
}

func (a *actor) handleReadQuery(msg *nats.Msg) {
	if msg.Reply == "" {
		return
	}
	req, err := wire.DecodeReadVariablesQueryRequest(msg.Data)
	if err != nil {
		return
	}

	var ids []uint32
	if req.Ids != nil {
		ids = req.Ids
	} else {
		ids = a.sortedIDs()
	}

	items := make([]wire.Variable, 0, len(ids))
	for _, id := range ids {
		if v, ok := a.variables[id]; ok {
			items = append(items, v.ToWireVariable())
		}
	}

	resp := wire.ReadVariablesQueryResponse{
		Variables: wire.VariableList{
			ProviderDefinitionFingerprint: a.fingerprint,
			BaseTimestamp:                 nowTimestamp(),
			Items:                         items,
		},
	}
	_ = a.conn.Raw().Publish(msg.Reply, wire.EncodeReadVariablesQueryResponse(resp))
}

func (a *actor) handleWrite(msg *nats.Msg) {
	cmd, err := wire.DecodeWriteVariablesCommand(msg.Data)
	if err != nil {
		return
	}
	if cmd.Variables.ProviderDefinitionFingerprint != a.fingerprint {
		hublog.Debugf("provider %q: ignoring write command with stale fingerprint", a.providerID)
		return
	}
	if cmd.Variables.Items == nil {
		return
	}

	writes := make([]WriteCommand, 0, len(cmd.Variables.Items))
	for _, item := range cmd.Variables.Items {
		current, ok := a.variables[item.ID]
		if !ok {
			hublog.Debugf("provider %q: ignoring write for unknown id %d", a.providerID, item.ID)
			continue
		}
		if current.Definition.AccessType != wire.AccessTypeReadWrite {
			hublog.Debugf("provider %q: ignoring write for read-only id %d", a.providerID, item.ID)
			continue
		}
		writes = append(writes, WriteCommand{ID: item.ID, Value: item.Value})
	}
	if len(writes) == 0 {
		return
	}

	var dead []int
	for i := range a.writeNotifiers {
		n := &a.writeNotifiers[i]
		var forNotifier []WriteCommand
		for _, w := range writes {
			if _, ok := n.ids[w.ID]; ok {
				forNotifier = append(forNotifier, w)
			}
		}
		if len(forNotifier) == 0 {
			continue
		}
		select {
		case n.ch <- forNotifier:
		default:
			dead = append(dead, i)
		}
	}
	a.removeNotifiers(dead)
}

func (a *actor) removeNotifiers(dead []int) {
	if len(dead) == 0 {
		return
	}
	deadSet := make(map[int]struct{}, len(dead))
	for _, i := range dead {
		deadSet[i] = struct{}{}
	}
	alive := a.writeNotifiers[:0]
	for i, n := range a.writeNotifiers {
		if _, ok := deadSet[i]; ok {
			close(n.ch)
			continue
		}
		alive = append(alive, n)
	}
	a.writeNotifiers = alive
}

// publishUpdates publishes a values-changed event scoped to the given
// ids, in ascending order.
func (a *actor) publishUpdates(ids []uint32) error {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	items := make([]wire.Variable, 0, len(ids))
	for _, id := range ids {
		if v, ok := a.variables[id]; ok {
			items = append(items, v.ToWireVariable())
		}
	}
	payload := wire.EncodeVariablesChangedEvent(wire.VariablesChangedEvent{
		ChangedVariables: wire.VariableList{
			ProviderDefinitionFingerprint: a.fingerprint,
			BaseTimestamp:                 nowTimestamp(),
			Items:                         items,
		},
	})
	return a.conn.Raw().Publish(hubsubject.VariablesChangedEvent(a.providerID), payload)
}

func nowTimestamp() wire.Timestamp {
	now := time.Now()
	return wire.Timestamp{Seconds: now.Unix(), Nanos: int32(now.Nanosecond())}
}

// republishAndWait is the non-fatal counterpart to registerHandshake used
// by AddVariables/RemoveVariables: it runs the same wait-for-ack
// handshake but returns its error to the caller instead of crashing
// the actor, since the provider was already running successfully before
// the change was requested.
func (a *actor) republishAndWait() error {
	err := a.registerHandshake()
	if errors.Is(err, errHandshakeInterrupted) {
		return fmt.Errorf("provider: connection interrupted while updating provider definition")
	}
	return err
}
