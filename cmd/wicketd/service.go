// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/wicketlabs/wicket/approval"
	"github.com/wicketlabs/wicket/lib/clock"
	"github.com/wicketlabs/wicket/lib/config"
	"github.com/wicketlabs/wicket/lib/runner"
	"github.com/wicketlabs/wicket/telegram"
)

// Service is the core daemon state shared by the update listener, the
// command surface, and the control socket.
type Service struct {
	api    telegram.API
	store  *approval.Store
	config *config.Config
	clock  clock.Clock
	logger *slog.Logger

	startedAt time.Time

	// run supervises the listener. Set by main before Serve; the
	// status action reads its lifecycle state.
	run *runner.Runner

	// offset is the next update ID to request from the gateway.
	// Touched only by the listener goroutine.
	offset int64
}

// allowedUpdates restricts the long poll to the update kinds the
// gatekeeper handles. Everything else stays on the server.
var allowedUpdates = []string{"message", "chat_join_request"}

// listen is the long-poll loop handed to the supervisory runner. It
// returns nil only on context cancellation observed through the poll;
// any gateway error propagates to the runner for classification and
// backoff.
func (s *Service) listen(ctx context.Context) error {
	for {
		updates, err := s.api.GetUpdates(ctx, telegram.UpdatesRequest{
			Offset:         s.offset,
			Timeout:        int(s.config.PollTimeout.Std().Seconds()),
			AllowedUpdates: allowedUpdates,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("polling updates: %w", err)
		}

		for _, update := range updates {
			// Acknowledge before handling: a poisoned update must
			// not be redelivered forever after a restart.
			if update.ID >= s.offset {
				s.offset = update.ID + 1
			}
			s.dispatch(ctx, update)
		}
	}
}

// dispatch routes one update to its handler behind a recover boundary,
// so a fault in a single update cannot take down the listener.
func (s *Service) dispatch(ctx context.Context, update telegram.Update) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic handling update",
				"update_id", update.ID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			s.alert(ctx, fmt.Sprintf("wicket: fault handling update %d: %v", update.ID, r))
		}
	}()

	switch {
	case update.JoinRequest != nil:
		s.handleJoinRequest(ctx, *update.JoinRequest)
	case update.Message != nil:
		s.handleMessage(ctx, *update.Message)
	}
}

// classifyFault maps a listener error for the supervisory runner.
func classifyFault(err error) runner.Fault {
	if telegram.IsConflict(err) {
		return runner.FaultConflict
	}
	return runner.FaultOther
}

// alert posts an operator notice to the log space, if one is
// configured. Best effort: failures are logged and dropped.
func (s *Service) alert(ctx context.Context, text string) {
	if s.config.LogSpaceID == 0 {
		return
	}
	_, err := s.api.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID: s.config.LogSpaceID,
		Text:   text,
	})
	if err != nil {
		s.logger.Warn("sending operator alert", "error", err)
	}
}
