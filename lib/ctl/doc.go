// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

// Package ctl implements the local control protocol between wicketd
// and operator tooling: a CBOR request-response exchange over a Unix
// socket, one request per connection.
//
// [SocketServer] is the daemon side. Actions are registered by name
// before serving; each connection decodes one CBOR request, routes on
// its "action" field, and writes one [Response]. [Client] is the
// operator side, used by wicketctl: each Call opens a fresh
// connection, sends the request, and decodes the response.
//
// The socket carries no authentication — access control is the file
// permission on the socket path, which the daemon creates in a
// directory only the operator can read.
package ctl
