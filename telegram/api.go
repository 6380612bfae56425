// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import "context"

// API is the gateway surface the gatekeeper core consumes. Production
// code uses *Client; tests substitute fakes that script approval and
// delivery outcomes.
//
// Operator-only methods (GetMe, CloseIdleConnections) are not part of
// this interface. Code that needs them should type-assert to *Client.
type API interface {
	// GetUpdates performs one long poll of the inbound event stream.
	GetUpdates(ctx context.Context, request UpdatesRequest) ([]Update, error)

	// ApproveJoinRequest approves a pending join request.
	ApproveJoinRequest(ctx context.Context, chatID, userID int64) error

	// SendMessage sends a message to a chat or user.
	SendMessage(ctx context.Context, request SendMessageRequest) (*Message, error)
}

// Compile-time check: *Client implements API.
var _ API = (*Client)(nil)
