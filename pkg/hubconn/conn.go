// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hubconn wraps a NATS connection with the hub's authentication,
// reconnection, and connection-event fan-out conventions. It is shared by
// provider and consumer code alike.
package hubconn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/weidmueller/u-os-hub-client-go/pkg/hubauth"
	"github.com/weidmueller/u-os-hub-client-go/pkg/hublog"
)

// UnauthenticatedClientName is used as the NATS client name when no
// credentials were supplied.
const UnauthenticatedClientName = "_UNAUTHENTICATED"

// Permission is a hub access right, mapped to an OAuth2 scope on connect.
type Permission string

const (
	PermissionRead     Permission = hubauth.ScopeVariablesReadOnly
	PermissionReadWrite Permission = hubauth.ScopeVariablesReadWrite
	PermissionProvide   Permission = hubauth.ScopeVariablesProvide
)

// Event mirrors the NATS connection lifecycle events this client forwards.
type Event int

const (
	EventConnected Event = iota
	EventDisconnected
	EventReconnected
	EventClosed
)

func (e Event) String() string {
	switch e {
	case EventConnected:
		return "Connected"
	case EventDisconnected:
		return "Disconnected"
	case EventReconnected:
		return "Reconnected"
	case EventClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// AuthOption configures how a Connection authenticates to the broker.
type AuthOption struct {
	clientName  string
	permissions map[Permission]struct{}
	oauth2      *oauth2Settings
	userInfo    *userInfoSettings
	staticToken string
}

type oauth2Settings struct {
	creds         hubauth.Credentials
	tokenEndpoint string
}

type userInfoSettings struct {
	username string
	password string
}

// Unauthenticated configures a connection that presents no credentials.
// The client name defaults to UnauthenticatedClientName.
func Unauthenticated(permissions ...Permission) AuthOption {
	return AuthOption{permissions: permissionSet(permissions)}
}

// UserPassword configures username/password authentication.
func UserPassword(clientName, username, password string, permissions ...Permission) AuthOption {
	return AuthOption{
		clientName:  clientName,
		permissions: permissionSet(permissions),
		userInfo:    &userInfoSettings{username: username, password: password},
	}
}

// StaticToken configures a fixed bearer token, useful for tests and tools.
func StaticToken(clientName, token string, permissions ...Permission) AuthOption {
	return AuthOption{
		clientName:  clientName,
		permissions: permissionSet(permissions),
		staticToken: token,
	}
}

// OAuth2ClientCredentials configures the OAuth2 client-credentials flow
// against tokenEndpoint (hubauth.DefaultTokenEndpoint when empty).
func OAuth2ClientCredentials(clientName string, creds hubauth.Credentials, tokenEndpoint string, permissions ...Permission) AuthOption {
	if tokenEndpoint == "" {
		tokenEndpoint = hubauth.DefaultTokenEndpoint
	}
	return AuthOption{
		clientName:  clientName,
		permissions: permissionSet(permissions),
		oauth2:      &oauth2Settings{creds: creds, tokenEndpoint: tokenEndpoint},
	}
}

func permissionSet(perms []Permission) map[Permission]struct{} {
	out := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		out[p] = struct{}{}
	}
	return out
}

func (o AuthOption) scopeList() []string {
	scopes := make([]string, 0, len(o.permissions))
	for p := range o.permissions {
		scopes = append(scopes, string(p))
	}
	return scopes
}

func (o AuthOption) name() string {
	if o.clientName != "" {
		return o.clientName
	}
	return UnauthenticatedClientName
}

// Connection wraps a broker client together with a broadcast of
// connection events and the declared permission set.
type Connection struct {
	nc          *nats.Conn
	clientName  string
	permissions map[Permission]struct{}

	mu        sync.Mutex
	listeners []chan Event
}

// Dial connects to the broker at addr using the given AuthOption. It
// subscribes to connection events before initiating the connect so the
// first Connected event is never missed, and (when waitForConnected is
// true) blocks until that first event arrives.
func Dial(ctx context.Context, addr string, opt AuthOption, waitForConnected bool) (*Connection, error) {
	conn := &Connection{
		clientName:  opt.name(),
		permissions: opt.permissions,
	}

	firstConnected := make(chan struct{}, 1)

	opts := []nats.Option{
		nats.Name(conn.clientName),
		nats.CustomInboxPrefix("_INBOX." + conn.clientName),
		nats.RetryOnFailedConnect(true),
		nats.CustomReconnectDelay(reconnectDelay),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				hublog.Warnf("hubconn: disconnected: %v", err)
			}
			conn.broadcast(EventDisconnected)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			hublog.Infof("hubconn: reconnected to %s", nc.ConnectedUrl())
			conn.broadcast(EventReconnected)
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			conn.broadcast(EventClosed)
		}),
	}

	switch {
	case opt.oauth2 != nil:
		scopeList := hubauth.JoinScopes(opt.scopeList())
		creds := opt.oauth2.creds
		tokenEndpoint := opt.oauth2.tokenEndpoint
		if creds.ClientID != "" {
			opts = append(opts, nats.TokenHandler(func() string {
				hublog.Debugf("hubconn: requesting token for client id %s", creds.ClientID)
				token, err := hubauth.FetchToken(ctx, creds, tokenEndpoint, []string{scopeList})
				if err != nil {
					hublog.Errorf("hubconn: token request failed: %v", err)
					return ""
				}
				return token
			}))
		}
	case opt.userInfo != nil:
		opts = append(opts, nats.UserInfo(opt.userInfo.username, opt.userInfo.password))
	case opt.staticToken != "":
		opts = append(opts, nats.Token(opt.staticToken))
	}

	opts = append(opts, nats.ConnectHandler(func(*nats.Conn) {
		conn.broadcast(EventConnected)
		select {
		case firstConnected <- struct{}{}:
		default:
		}
	}))

	nc, err := nats.Connect(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("hubconn: connect to %q failed: %w", addr, err)
	}
	conn.nc = nc

	if waitForConnected {
		select {
		case <-firstConnected:
		case <-ctx.Done():
			nc.Close()
			return nil, ctx.Err()
		}
	}

	return conn, nil
}

// reconnectDelay implements the hub's backoff schedule: immediate on the
// first attempt, 5s through attempt 10, 30s through attempt 20, 300s
// thereafter. This bounds the rate of token re-fetches on a flapping link.
func reconnectDelay(attempts int) time.Duration {
	switch {
	case attempts <= 1:
		return 0
	case attempts <= 10:
		return 5 * time.Second
	case attempts <= 20:
		return 30 * time.Second
	default:
		return 300 * time.Second
	}
}

// ClientName returns the NATS client name this connection was given.
func (c *Connection) ClientName() string { return c.clientName }

// Permissions returns the set of permissions this connection requested.
func (c *Connection) Permissions() map[Permission]struct{} { return c.permissions }

// Raw returns the underlying *nats.Conn for direct publish/subscribe use
// by the provider and consumer packages.
func (c *Connection) Raw() *nats.Conn { return c.nc }

// Events returns a channel of connection lifecycle events. The channel is
// closed when the connection is closed. Capacity is bounded; a slow
// listener drops events rather than blocking the connection.
func (c *Connection) Events() <-chan Event {
	ch := make(chan Event, 16)
	c.mu.Lock()
	c.listeners = append(c.listeners, ch)
	c.mu.Unlock()
	return ch
}

func (c *Connection) broadcast(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close drains all event listeners and closes the broker connection.
func (c *Connection) Close() {
	c.mu.Lock()
	listeners := c.listeners
	c.listeners = nil
	c.mu.Unlock()

	for _, ch := range listeners {
		close(ch)
	}
	if c.nc != nil {
		c.nc.Close()
	}
}
