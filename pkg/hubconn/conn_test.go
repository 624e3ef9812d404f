// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hubconn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/weidmueller/u-os-hub-client-go/pkg/hubauth"
)

func TestReconnectDelaySchedule(t *testing.T) {
	assert.Equal(t, time.Duration(0), reconnectDelay(1))
	assert.Equal(t, 5*time.Second, reconnectDelay(2))
	assert.Equal(t, 5*time.Second, reconnectDelay(10))
	assert.Equal(t, 30*time.Second, reconnectDelay(11))
	assert.Equal(t, 30*time.Second, reconnectDelay(20))
	assert.Equal(t, 300*time.Second, reconnectDelay(21))
	assert.Equal(t, 300*time.Second, reconnectDelay(1000))
}

func TestUnauthenticatedDefaultsClientName(t *testing.T) {
	opt := Unauthenticated(PermissionRead)
	assert.Equal(t, UnauthenticatedClientName, opt.name())
}

func TestAuthOptionClientNameOverride(t *testing.T) {
	opt := UserPassword("press1", "u", "p", PermissionReadWrite)
	assert.Equal(t, "press1", opt.name())
}

func TestAuthOptionScopeList(t *testing.T) {
	opt := OAuth2ClientCredentials("press1", hubauth.Credentials{ClientID: "id"}, "", PermissionProvide, PermissionReadWrite)
	scopes := opt.scopeList()
	assert.Len(t, scopes, 2)
	assert.Contains(t, scopes, string(PermissionProvide))
	assert.Contains(t, scopes, string(PermissionReadWrite))
}

func TestOAuth2ClientCredentialsDefaultsTokenEndpoint(t *testing.T) {
	opt := OAuth2ClientCredentials("press1", hubauth.Credentials{ClientID: "id"}, "", PermissionProvide)
	assert.Equal(t, hubauth.DefaultTokenEndpoint, opt.oauth2.tokenEndpoint)
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "Connected", EventConnected.String())
	assert.Equal(t, "Disconnected", EventDisconnected.String())
	assert.Equal(t, "Reconnected", EventReconnected.String())
	assert.Equal(t, "Closed", EventClosed.String())
}

func TestConnectionEventsClosedOnClose(t *testing.T) {
	c := &Connection{clientName: "test"}
	ch := c.Events()
	c.Close()
	_, ok := <-ch
	assert.False(t, ok)
}
