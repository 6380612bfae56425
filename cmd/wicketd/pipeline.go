// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"strconv"

	"github.com/wicketlabs/wicket/approval"
	"github.com/wicketlabs/wicket/telegram"
)

// handleJoinRequest runs the approval pipeline for one join request:
// approve, persist, notify, audit. A failed approval aborts the
// pipeline; any stage after a committed approval is advisory only and
// never undoes earlier work.
func (s *Service) handleJoinRequest(ctx context.Context, request telegram.ChatJoinRequest) {
	log := s.logger.With(
		"space", request.Chat.ID,
		"identity", request.From.ID,
	)
	log.Info("join request received",
		"display_name", request.From.DisplayName(),
		"title", request.Chat.Title,
	)

	if err := s.api.ApproveJoinRequest(ctx, request.Chat.ID, request.From.ID); err != nil {
		log.Error("approving join request", "error", err)
		return
	}

	title := request.Chat.Title
	if title == "" {
		title = strconv.FormatInt(request.Chat.ID, 10)
	}
	recorded := s.store.RecordJoin(request.Chat.ID, title, approval.Member{
		ID:          request.From.ID,
		DisplayName: request.From.DisplayName(),
		Username:    request.From.Username,
	})
	if !recorded {
		log.Info("identity already on record, title refreshed")
	}

	outcome := s.notifyApproved(ctx, request)
	log.Info("join request approved", "delivery", outcome.String())

	s.notifyAudit(ctx, request)
}
