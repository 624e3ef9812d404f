// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hubauth performs OAuth2 client-credentials token acquisition
// against a hub registry's token endpoint.
package hubauth

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Scopes recognised by the hub.
const (
	ScopeVariablesReadOnly  = "hub.variables.readonly"
	ScopeVariablesReadWrite = "hub.variables.readwrite"
	ScopeVariablesProvide   = "hub.variables.provide"
)

// DefaultTokenEndpoint is used when a connection does not override it.
const DefaultTokenEndpoint = "https://127.0.0.1/oauth2/token"

// Credentials identifies an OAuth2 client-credentials client.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// insecureHTTPClient accepts any TLS certificate, matching the hub's
// intra-device deployment model where the registry's certificate is not
// expected to chain to a public root.
func insecureHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		},
	}
}

// config builds the clientcredentials.Config for a given endpoint/scope
// set. Basic auth carries the client id/secret per the hub's token
// endpoint contract.
func config(creds Credentials, tokenEndpoint string, scopes []string) *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenEndpoint,
		Scopes:       scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
}

// withInsecureClient injects an HTTP client that skips certificate
// validation, the way golang.org/x/oauth2 expects callers to override its
// transport for a single request/token-source.
func withInsecureClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, insecureHTTPClient())
}

// TokenSource returns an oauth2.TokenSource that performs the client
// credentials flow on demand and caches the token until it expires.
func TokenSource(ctx context.Context, creds Credentials, tokenEndpoint string, scopes []string) oauth2.TokenSource {
	return config(creds, tokenEndpoint, scopes).TokenSource(withInsecureClient(ctx))
}

// FetchToken performs a single client-credentials token request and
// returns the raw access token. Any failure (network, non-JSON body,
// missing fields) is wrapped into a single error; the underlying
// oauth2.RetrieveError, when present, retains the raw response body for
// diagnostics.
func FetchToken(ctx context.Context, creds Credentials, tokenEndpoint string, scopes []string) (string, error) {
	token, err := config(creds, tokenEndpoint, scopes).Token(withInsecureClient(ctx))
	if err != nil {
		return "", fmt.Errorf("hubauth: client credentials token request failed: %w", err)
	}
	return token.AccessToken, nil
}

// JoinScopes joins a list of scopes into the hub's space-separated scope
// string form.
func JoinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}
