// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides wicket's standard CBOR encoding configuration.
//
// Wicket uses two serialization formats with a clear boundary: JSON
// for external interfaces (the Bot API, the on-disk approval state
// file) and CBOR for the local control socket protocol between wicketd
// and wicketctl.
//
// This package provides the shared CBOR encoding and decoding modes so
// that both ends of the socket encode identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC
// 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (sockets):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
