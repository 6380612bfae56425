// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/wicketlabs/wicket/approval"
	"github.com/wicketlabs/wicket/lib/clock"
	"github.com/wicketlabs/wicket/lib/config"
	"github.com/wicketlabs/wicket/lib/runner"
	"github.com/wicketlabs/wicket/telegram"
)

type approveCall struct {
	chatID int64
	userID int64
}

// fakeGateway scripts gateway behavior for service tests. Zero value
// approves everything and delivers every message.
type fakeGateway struct {
	mu sync.Mutex

	// approveErr, when set, fails every ApproveJoinRequest call.
	approveErr error
	approved   []approveCall

	// sendErr, when set, decides per-request delivery failure. Nil
	// return means delivered.
	sendErr func(request telegram.SendMessageRequest) error
	sent    []telegram.SendMessageRequest

	// getUpdates, when set, backs GetUpdates. Unset fails the poll.
	getUpdates func(ctx context.Context, request telegram.UpdatesRequest) ([]telegram.Update, error)
}

func (g *fakeGateway) GetUpdates(ctx context.Context, request telegram.UpdatesRequest) ([]telegram.Update, error) {
	if g.getUpdates == nil {
		return nil, &telegram.APIError{Code: 502, Description: "unscripted poll"}
	}
	return g.getUpdates(ctx, request)
}

func (g *fakeGateway) ApproveJoinRequest(ctx context.Context, chatID, userID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.approveErr != nil {
		return g.approveErr
	}
	g.approved = append(g.approved, approveCall{chatID: chatID, userID: userID})
	return nil
}

func (g *fakeGateway) SendMessage(ctx context.Context, request telegram.SendMessageRequest) (*telegram.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		if err := g.sendErr(request); err != nil {
			return nil, err
		}
	}
	g.sent = append(g.sent, request)
	return &telegram.Message{MessageID: int64(len(g.sent)), Chat: telegram.Chat{ID: request.ChatID}}, nil
}

// sentTo returns the requests delivered to a specific chat or user.
func (g *fakeGateway) sentTo(chatID int64) []telegram.SendMessageRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	var matched []telegram.SendMessageRequest
	for _, request := range g.sent {
		if request.ChatID == chatID {
			matched = append(matched, request)
		}
	}
	return matched
}

func (g *fakeGateway) sentCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

func (g *fakeGateway) approveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.approved)
}

// unreachable builds the gateway error for a recipient the bot cannot
// message directly.
func unreachable() error {
	return &telegram.APIError{Code: 403, Description: "Forbidden: bot was blocked by the user"}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService builds a Service around the fake gateway with a
// store in a temp dir and a fake clock.
func newTestService(t *testing.T, gateway *fakeGateway) (*Service, *clock.FakeClock) {
	t.Helper()

	clk := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := testLogger()

	store, err := approval.Open(filepath.Join(t.TempDir(), "data.json"), logger, clk)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	cfg := config.Default()
	cfg.Token = "12345:test"
	cfg.AdminIDs = []int64{900}
	cfg.DataSpaceID = -100500
	cfg.LogSpaceID = -100600
	cfg.BroadcastInterval = 0

	service := &Service{
		api:       gateway,
		store:     store,
		config:    cfg,
		clock:     clk,
		logger:    logger,
		startedAt: clk.Now(),
	}
	service.run = runner.New(runner.Config{Clock: clk, Logger: logger})
	return service, clk
}

func joinRequest(spaceID int64, title string, userID int64, firstName string) telegram.ChatJoinRequest {
	return telegram.ChatJoinRequest{
		Chat: telegram.Chat{ID: spaceID, Type: "supergroup", Title: title},
		From: telegram.User{ID: userID, FirstName: firstName},
	}
}

func adminMessage(text string) telegram.Message {
	return telegram.Message{
		MessageID: 1,
		From:      &telegram.User{ID: 900, FirstName: "Op"},
		Chat:      telegram.Chat{ID: 900, Type: "private"},
		Text:      text,
	}
}
