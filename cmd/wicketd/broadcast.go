// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/wicketlabs/wicket/telegram"
)

// BroadcastResult tallies a broadcast fan-out.
type BroadcastResult struct {
	Sent   int `cbor:"sent" json:"sent"`
	Failed int `cbor:"failed" json:"failed"`
}

// broadcast sends text to every distinct stored identity, pacing
// consecutive sends by the configured interval. Per-recipient failures
// are counted and logged, never fatal: the fan-out always runs to
// completion unless the context is cancelled.
func (s *Service) broadcast(ctx context.Context, text string) BroadcastResult {
	recipients := s.store.Snapshot().Recipients()

	var result BroadcastResult
	interval := s.config.BroadcastInterval.Std()
	for i, identity := range recipients {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				s.logger.Warn("broadcast cancelled",
					"sent", result.Sent,
					"failed", result.Failed,
					"remaining", len(recipients)-i,
				)
				return result
			case <-s.clock.After(interval):
			}
		}

		_, err := s.api.SendMessage(ctx, telegram.SendMessageRequest{
			ChatID: identity,
			Text:   text,
		})
		if err != nil {
			s.logger.Warn("broadcast delivery failed",
				"identity", identity,
				"error", err,
			)
			result.Failed++
			continue
		}
		result.Sent++
	}

	s.logger.Info("broadcast complete",
		"recipients", len(recipients),
		"sent", result.Sent,
		"failed", result.Failed,
	)
	return result
}
