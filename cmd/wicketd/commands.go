// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wicketlabs/wicket/telegram"
)

const startHelp = "Hi — I am your auto-approve gatekeeper.\n\n" +
	"Admin commands:\n" +
	"/users - Show stored users count\n" +
	"/broadcast <message> - Send message to all stored users\n" +
	"/promotion <text> - Set promotion message sent after approval (no text clears it)\n" +
	"/details - Show join counts per space\n"

const notAuthorized = "You are not authorized to use this command."

// detailsChunkSize splits /details output well under the platform's
// 4096-character message limit.
const detailsChunkSize = 3500

// handleMessage routes an inbound chat message. Only slash commands
// are acted on; everything else is ignored.
func (s *Service) handleMessage(ctx context.Context, message telegram.Message) {
	if message.From == nil || !strings.HasPrefix(message.Text, "/") {
		return
	}

	command, args := splitCommand(message.Text)
	log := s.logger.With(
		"command", command,
		"identity", message.From.ID,
		"chat", message.Chat.ID,
	)

	if command == "/start" {
		s.reply(ctx, message, startHelp)
		return
	}

	// Everything past /start is operator-only. Unauthorized callers
	// get an explicit rejection, never silence.
	if !s.config.IsAdmin(message.From.ID) {
		log.Warn("unauthorized command")
		s.reply(ctx, message, notAuthorized)
		return
	}

	switch command {
	case "/promotion":
		s.commandPromotion(ctx, message, args)
	case "/users":
		s.reply(ctx, message, fmt.Sprintf("Total stored users: %d", s.store.Snapshot().TotalMembers()))
	case "/details":
		s.commandDetails(ctx, message)
	case "/broadcast":
		s.commandBroadcast(ctx, message, args)
	default:
		s.reply(ctx, message, "Unknown command.")
	}
}

// splitCommand separates the command word from the argument text and
// strips the @botname suffix Telegram appends in group chats.
func splitCommand(text string) (command, args string) {
	command, args, _ = strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")
	return command, strings.TrimSpace(args)
}

func (s *Service) commandPromotion(ctx context.Context, message telegram.Message, args string) {
	s.store.SetPromotion(args)
	if args == "" {
		s.reply(ctx, message, "Promotion message cleared.")
		return
	}
	s.reply(ctx, message, "Promotion message saved.")
}

func (s *Service) commandDetails(ctx context.Context, message telegram.Message) {
	snapshot := s.store.Snapshot()
	if len(snapshot.Spaces) == 0 {
		s.reply(ctx, message, "No data yet.")
		return
	}

	lines := make([]string, 0, len(snapshot.Spaces))
	for _, space := range snapshot.Spaces {
		lines = append(lines, fmt.Sprintf("%s (%d) - %d approved users",
			space.Title, space.ID, len(space.Members)))
	}
	text := strings.Join(lines, "\n")

	for start := 0; start < len(text); {
		end := start + detailsChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			// Never split a multi-byte rune across chunks.
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
		}
		s.reply(ctx, message, text[start:end])
		start = end
	}
}

func (s *Service) commandBroadcast(ctx context.Context, message telegram.Message, args string) {
	if args == "" {
		s.reply(ctx, message, "Usage: /broadcast Your message here")
		return
	}
	result := s.broadcast(ctx, args)
	s.reply(ctx, message, fmt.Sprintf("Broadcast complete. Sent: %d, Failed: %d",
		result.Sent, result.Failed))
}

// reply answers in the chat the message came from. Best effort: a
// failed reply is logged and dropped.
func (s *Service) reply(ctx context.Context, message telegram.Message, text string) {
	_, err := s.api.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID: message.Chat.ID,
		Text:   text,
	})
	if err != nil {
		s.logger.Warn("sending reply",
			"chat", message.Chat.ID,
			"error", err,
		)
	}
}
