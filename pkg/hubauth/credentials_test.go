// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package hubauth

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchTokenSendsBasicAuthAndFormBody(t *testing.T) {
	var gotAuth string
	var gotBody string
	var gotContentType string

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","expires_in":3600,"scope":"hub.variables.readonly","token_type":"Bearer"}`))
	}))
	defer srv.Close()

	creds := Credentials{ClientID: "my client", ClientSecret: "s3cr3t"}
	token, err := FetchToken(context.Background(), creds, srv.URL, []string{ScopeVariablesReadOnly})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	wantCreds := url.QueryEscape(creds.ClientID) + ":" + url.QueryEscape(creds.ClientSecret)
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte(wantCreds))
	assert.Equal(t, wantAuth, gotAuth)
	assert.Contains(t, gotContentType, "application/x-www-form-urlencoded")
	assert.Contains(t, gotBody, "grant_type=client_credentials")
	assert.True(t, strings.Contains(gotBody, "scope=hub.variables.readonly"))
}

func TestFetchTokenWrapsServerError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := FetchToken(context.Background(), Credentials{ClientID: "a", ClientSecret: "b"}, srv.URL, nil)
	require.Error(t, err)
}

func TestJoinScopes(t *testing.T) {
	assert.Equal(t, "hub.variables.readonly hub.variables.readwrite", JoinScopes([]string{ScopeVariablesReadOnly, ScopeVariablesReadWrite}))
	assert.Equal(t, "", JoinScopes(nil))
}
