// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package consumer implements the consumer role of the u-OS Data Hub
// client: discovering registered providers, connecting to one of them,
// and reading, writing, and subscribing to its variables by key.
package consumer

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/weidmueller/u-os-hub-client-go/pkg/hubconn"
	"github.com/weidmueller/u-os-hub-client-go/pkg/hublog"
	"github.com/weidmueller/u-os-hub-client-go/pkg/hubsubject"
	"github.com/weidmueller/u-os-hub-client-go/pkg/wire"
)

// Registry is a thin wrapper over the registry's broker-level surface:
// provider-id listing and its change events, registry run-state events,
// and waiting for a specific provider to publish a valid definition.
type Registry struct {
	conn *hubconn.Connection
}

// NewRegistry wraps an existing connection for registry-level queries.
func NewRegistry(conn *hubconn.Connection) *Registry {
	return &Registry{conn: conn}
}

// ReadProviderIDs requests the current list of registered provider ids.
// It fails if the registry is offline or the reply cannot be decoded.
func (r *Registry) ReadProviderIDs(ctx context.Context) ([]string, error) {
	reply, err := r.conn.Raw().RequestWithContext(ctx, hubsubject.RegistryProvidersReadQuery(), nil)
	if err != nil {
		return nil, fmt.Errorf("consumer: reading provider ids failed: %w", err)
	}
	resp, err := wire.DecodeReadProvidersQueryResponse(reply.Data)
	if err != nil {
		return nil, fmt.Errorf("consumer: decoding provider ids reply failed: %w", err)
	}
	return providerIDStrings(resp.Providers), nil
}

// SubscribeProviderIDs subscribes to changes in the registered-provider
// listing. Each value on the returned channel is the full, current list
// of provider ids at the time of the change. The subscription survives
// a registry outage; it stops, closing the channel, when ctx is done.
//
// A payload that fails to decode is logged and skipped; it never closes
// the channel or cancels the subscription.
func (r *Registry) SubscribeProviderIDs(ctx context.Context) (<-chan []string, error) {
	raw := make(chan *nats.Msg, 64)
	sub, err := r.conn.Raw().ChanSubscribe(hubsubject.RegistryProvidersChangedEvent(), raw)
	if err != nil {
		return nil, fmt.Errorf("consumer: subscribing to provider id changes failed: %w", err)
	}

	out := make(chan []string, 16)
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
				ev, err := wire.DecodeProvidersChangedEvent(msg.Data)
				if err != nil {
					hublog.Warnf("consumer: could not decode provider ids changed event: %v", err)
					continue
				}
				select {
				case out <- providerIDStrings(ev.Providers):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// SubscribeState subscribes to the registry's own run-state events. The
// subscription survives a registry outage; it stops, closing the
// channel, when ctx is done. A payload that fails to decode is logged
// and skipped.
func (r *Registry) SubscribeState(ctx context.Context) (<-chan wire.StateChangedEvent, error) {
	raw := make(chan *nats.Msg, 8)
	sub, err := r.conn.Raw().ChanSubscribe(hubsubject.RegistryStateChangedEvent(), raw)
	if err != nil {
		return nil, fmt.Errorf("consumer: subscribing to registry state failed: %w", err)
	}

	out := make(chan wire.StateChangedEvent, 8)
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
				ev, err := wire.DecodeStateChangedEvent(msg.Data)
				if err != nil {
					hublog.Warnf("consumer: could not decode registry state changed event: %v", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// WaitForProvider blocks until providerID has a published definition in
// the Ok state. It subscribes to the provider's definition-changed
// event before checking the current definition, so a registration that
// happens between the check and the subscribe is never missed. There is
// no internal timeout; cancel ctx to give up.
func (r *Registry) WaitForProvider(ctx context.Context, providerID string) error {
	nc := r.conn.Raw()

	raw := make(chan *nats.Msg, 8)
	sub, err := nc.ChanSubscribe(hubsubject.RegistryProviderDefinitionChangedEvent(providerID), raw)
	if err != nil {
		return fmt.Errorf("consumer: subscribing to provider definition changes failed: %w", err)
	}
	defer sub.Unsubscribe()

	if ok, err := readProviderDefinitionOK(ctx, nc, providerID); err == nil && ok {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-raw:
			if !ok {
				return ctx.Err()
			}
			evt, err := wire.DecodeProviderDefinitionChangedEvent(msg.Data)
			if err != nil {
				hublog.Warnf("consumer: could not decode provider definition changed event: %v", err)
				continue
			}
			if evt.ProviderDefinition != nil && evt.ProviderDefinition.State == wire.ProviderStateOk {
				return nil
			}
		}
	}
}

func readProviderDefinitionOK(ctx context.Context, nc *nats.Conn, providerID string) (bool, error) {
	reply, err := nc.RequestWithContext(ctx, hubsubject.RegistryProviderDefinitionReadQuery(providerID), nil)
	if err != nil {
		return false, err
	}
	resp, err := wire.DecodeReadProviderDefinitionQueryResponse(reply.Data)
	if err != nil {
		return false, err
	}
	return resp.ProviderDefinition != nil && resp.ProviderDefinition.State == wire.ProviderStateOk, nil
}

func providerIDStrings(l wire.ProviderIDList) []string {
	out := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		out = append(out, item.ID)
	}
	return out
}
