// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"testing"

	"github.com/wicketlabs/wicket/lib/runner"
	"github.com/wicketlabs/wicket/telegram"
)

func TestListenAcknowledgesHandledUpdates(t *testing.T) {
	gateway := &fakeGateway{}
	polls := 0
	pollErr := &telegram.APIError{Code: 500, Description: "Internal Server Error"}
	gateway.getUpdates = func(ctx context.Context, request telegram.UpdatesRequest) ([]telegram.Update, error) {
		polls++
		switch polls {
		case 1:
			if request.Offset != 0 {
				t.Errorf("first poll offset = %d, want 0", request.Offset)
			}
			join := joinRequest(-1001, "Alpha", 42, "Ada")
			return []telegram.Update{
				{ID: 5, JoinRequest: &join},
				{ID: 6, Message: &telegram.Message{
					From: &telegram.User{ID: 7},
					Chat: telegram.Chat{ID: 7},
					Text: "hi",
				}},
			}, nil
		default:
			// Everything delivered so far is acknowledged even
			// though update 6 carried nothing actionable.
			if request.Offset != 7 {
				t.Errorf("second poll offset = %d, want 7", request.Offset)
			}
			return nil, pollErr
		}
	}
	service, _ := newTestService(t, gateway)

	err := service.listen(context.Background())
	if !errors.Is(err, pollErr) {
		t.Fatalf("listen error = %v, want wrapped poll error", err)
	}
	if got := service.store.Snapshot().TotalMembers(); got != 1 {
		t.Errorf("stored members = %d, want 1", got)
	}
}

func TestListenReturnsContextErrorOnCancel(t *testing.T) {
	gateway := &fakeGateway{}
	ctx, cancel := context.WithCancel(context.Background())
	gateway.getUpdates = func(ctx context.Context, request telegram.UpdatesRequest) ([]telegram.Update, error) {
		cancel()
		return nil, ctx.Err()
	}
	service, _ := newTestService(t, gateway)

	if err := service.listen(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("listen error = %v, want context.Canceled", err)
	}
}

func TestClassifyFault(t *testing.T) {
	conflict := &telegram.APIError{
		Code:        409,
		Description: "Conflict: terminated by other getUpdates request",
	}
	if got := classifyFault(conflict); got != runner.FaultConflict {
		t.Errorf("conflict classified as %v", got)
	}
	if got := classifyFault(errors.New("connection reset")); got != runner.FaultOther {
		t.Errorf("transport error classified as %v", got)
	}
	if got := classifyFault(&telegram.APIError{Code: 429, Description: "Too Many Requests"}); got != runner.FaultOther {
		t.Errorf("rate limit classified as %v", got)
	}
}
