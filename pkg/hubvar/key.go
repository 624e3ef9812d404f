// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hubvar defines the variable model (definitions, values, state),
// the builder used to construct variables safely, and the catalogue
// fingerprinting and validation rules shared by providers and consumers.
package hubvar

import "github.com/cespare/xxhash/v2"

// KeyHash is a 64-bit non-cryptographic hash of a VariableKey's string
// form. The hub uses xxhash everywhere a key needs hashing — for the
// catalogue fingerprint and for key lookup alike — so the two never
// diverge on a platform where hash(k1) == hash(k2) but k1 != k2.
type KeyHash uint64

// HashKey hashes a raw key string into its KeyHash form.
func HashKey(key string) KeyHash {
	return KeyHash(xxhash.Sum64String(key))
}

// Key is a cheap, reusable value type pairing a key string with its
// precomputed hash, so a hot call site can hash once and reuse the result
// across many lookups instead of re-hashing the string every time.
type Key struct {
	hash KeyHash
	str  string
}

// NewKey builds a Key from a raw key string, hashing it immediately.
func NewKey(key string) Key {
	return Key{hash: HashKey(key), str: key}
}

// Hash returns the precomputed KeyHash.
func (k Key) Hash() KeyHash { return k.hash }

// String returns the original key string.
func (k Key) String() string { return k.str }

// KeyLike is anything that can be turned into a Key: a plain string or an
// already-built Key. Go has no blanket "Into<Key>" conversion, so API
// methods accept this interface instead and call AsKey once per call.
type KeyLike interface {
	AsKey() Key
}

// StringKey is a plain key string satisfying KeyLike without requiring
// the caller to build a Key up front.
type StringKey string

// AsKey hashes the string into a Key.
func (s StringKey) AsKey() Key { return NewKey(string(s)) }

// AsKey returns k unchanged, so a precomputed Key is never re-hashed.
func (k Key) AsKey() Key { return k }
