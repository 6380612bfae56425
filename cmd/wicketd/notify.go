// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"html"

	"github.com/wicketlabs/wicket/telegram"
)

// Outcome reports which delivery path reached an approved requester.
type Outcome int

const (
	// DeliveredDirect means the welcome arrived as a direct message.
	DeliveredDirect Outcome = iota
	// DeliveredFallback means the direct message failed and the
	// welcome was posted into the space as a public mention.
	DeliveredFallback
	// BothFailed means neither path delivered. The approval and the
	// stored record stand regardless.
	BothFailed
)

func (o Outcome) String() string {
	switch o {
	case DeliveredDirect:
		return "direct"
	case DeliveredFallback:
		return "fallback"
	case BothFailed:
		return "both_failed"
	default:
		return "unknown"
	}
}

// notifyApproved welcomes an approved requester. It tries a direct
// message first; if that fails it posts a public mention into the
// origin space. An unreachable recipient is the expected failure mode
// of the direct path and is never logged as an error.
func (s *Service) notifyApproved(ctx context.Context, request telegram.ChatJoinRequest) Outcome {
	title := request.Chat.Title
	if title == "" {
		title = "the space"
	}

	welcome := fmt.Sprintf("Welcome, %s!\nYou have been approved to join %s.",
		request.From.FirstName, title)
	if promotion := s.store.Promotion(); promotion != "" {
		welcome += "\n\n" + promotion
	}

	_, err := s.api.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID: request.From.ID,
		Text:   welcome,
	})
	if err == nil {
		return DeliveredDirect
	}
	if telegram.IsUnreachable(err) {
		s.logger.Info("identity unreachable for direct message, using fallback",
			"identity", request.From.ID,
		)
	} else {
		s.logger.Warn("direct welcome failed",
			"identity", request.From.ID,
			"error", err,
		)
	}

	mention := fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`,
		request.From.ID, html.EscapeString(request.From.DisplayName()))
	_, err = s.api.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:    request.Chat.ID,
		Text:      fmt.Sprintf("Welcome, %s! Your request to join has been approved.", mention),
		ParseMode: telegram.ParseModeHTML,
	})
	if err != nil {
		s.logger.Error("fallback welcome failed",
			"identity", request.From.ID,
			"space", request.Chat.ID,
			"error", err,
		)
		return BothFailed
	}
	return DeliveredFallback
}

// notifyAudit reports an approval to the approval-log space and the
// operator log space. Both are optional and best effort: audit
// failures never affect the pipeline.
func (s *Service) notifyAudit(ctx context.Context, request telegram.ChatJoinRequest) {
	if s.config.DataSpaceID != 0 {
		handle := "(none)"
		if request.From.Username != "" {
			handle = "@" + request.From.Username
		}
		record := fmt.Sprintf(
			"New join request approved\n\nUser: %s\nIdentity: %d\nHandle: %s\nSpace: %s\nSpace ID: %d",
			request.From.DisplayName(), request.From.ID, handle,
			request.Chat.Title, request.Chat.ID,
		)
		_, err := s.api.SendMessage(ctx, telegram.SendMessageRequest{
			ChatID: s.config.DataSpaceID,
			Text:   record,
		})
		if err != nil {
			s.logger.Warn("sending approval record", "error", err)
		}
	}

	if s.config.LogSpaceID != 0 {
		_, err := s.api.SendMessage(ctx, telegram.SendMessageRequest{
			ChatID: s.config.LogSpaceID,
			Text: fmt.Sprintf("Auto-approved %s (%d) in %s",
				request.From.DisplayName(), request.From.ID, request.Chat.Title),
		})
		if err != nil {
			s.logger.Warn("sending approval summary", "error", err)
		}
	}
}
