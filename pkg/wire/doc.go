// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the binary payload codec for every message
// exchanged between hub participants.
//
// Every message is framed as a single self-describing buffer built from
// inline scalars, length-prefixed strings/vectors, and one presence byte
// ahead of every optional field or union. Semantically this is the same
// tagged-table object model FlatBuffers exposes (no separate schema
// compiler, no out-of-band type information, forward-compatible unions),
// implemented directly over encoding/binary because no FlatBuffers-family
// library is available in the dependency set this client is built
// against (see DESIGN.md).
//
// Decoders never fail a whole message because of an unrecognised enum or
// union discriminant: those surface as an Unknown(raw) value so a newer
// peer's wire format keeps decoding on an older client.
package wire
