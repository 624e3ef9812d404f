// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package consumer

import "github.com/weidmueller/u-os-hub-client-go/pkg/hubvar"

// Key is a cheap, reusable handle on a variable key string: its hash is
// computed once and reused across every lookup made with it. It is the
// same type the provider-side catalogue uses internally, so consumer
// lookups and provider catalogue fingerprints never disagree about what
// two keys hashing equal means.
type Key = hubvar.Key

// KeyLike is anything ReadVariables/WriteVariables/SubscribeVariables
// accept in place of a precomputed Key: a Key itself, or a StringKey
// wrapping a plain string. Re-hashing a StringKey on every call is
// cheap but not free; callers making the same lookup repeatedly should
// build a Key once with NewKey and reuse it.
type KeyLike = hubvar.KeyLike

// StringKey wraps a plain key string for calls that don't need to reuse
// a precomputed Key.
type StringKey = hubvar.StringKey

// NewKey builds a Key from a raw key string, hashing it immediately.
func NewKey(key string) Key { return hubvar.NewKey(key) }
