// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/wicketlabs/wicket/lib/codec"
	"github.com/wicketlabs/wicket/lib/ctl"
)

// statusResponse is the control-socket view of daemon health.
type statusResponse struct {
	State        string `cbor:"state"`
	UptimeSecs   int64  `cbor:"uptime_seconds"`
	Spaces       int    `cbor:"spaces"`
	Members      int    `cbor:"members"`
	PromotionSet bool   `cbor:"promotion_set"`
}

type usersResponse struct {
	Total int `cbor:"total"`
}

type spaceDetail struct {
	ID      int64  `cbor:"id"`
	Title   string `cbor:"title"`
	Members int    `cbor:"members"`
}

type detailsResponse struct {
	Spaces []spaceDetail `cbor:"spaces"`
}

type promotionRequest struct {
	// Text, when present, replaces the promotion. An explicit empty
	// string clears it. Absent means read-only.
	Text *string `cbor:"text"`
}

type promotionResponse struct {
	Text string `cbor:"text"`
}

type broadcastRequest struct {
	Text string `cbor:"text"`
}

// registerActions wires the daemon's control surface onto the socket
// server. The action set mirrors the chat command surface so an
// operator with shell access never needs a Telegram account.
func (s *Service) registerActions(server *ctl.SocketServer) {
	server.Handle("status", s.actionStatus)
	server.Handle("users", s.actionUsers)
	server.Handle("details", s.actionDetails)
	server.Handle("promotion", s.actionPromotion)
	server.Handle("broadcast", s.actionBroadcast)
}

func (s *Service) actionStatus(ctx context.Context, raw []byte) (any, error) {
	snapshot := s.store.Snapshot()
	return statusResponse{
		State:        s.run.State().String(),
		UptimeSecs:   int64(s.clock.Now().Sub(s.startedAt).Seconds()),
		Spaces:       len(snapshot.Spaces),
		Members:      snapshot.TotalMembers(),
		PromotionSet: snapshot.Promotion != "",
	}, nil
}

func (s *Service) actionUsers(ctx context.Context, raw []byte) (any, error) {
	return usersResponse{Total: s.store.Snapshot().TotalMembers()}, nil
}

func (s *Service) actionDetails(ctx context.Context, raw []byte) (any, error) {
	snapshot := s.store.Snapshot()
	details := detailsResponse{Spaces: make([]spaceDetail, 0, len(snapshot.Spaces))}
	for _, space := range snapshot.Spaces {
		details.Spaces = append(details.Spaces, spaceDetail{
			ID:      space.ID,
			Title:   space.Title,
			Members: len(space.Members),
		})
	}
	return details, nil
}

func (s *Service) actionPromotion(ctx context.Context, raw []byte) (any, error) {
	var request promotionRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding promotion request: %w", err)
	}
	if request.Text != nil {
		s.store.SetPromotion(*request.Text)
	}
	return promotionResponse{Text: s.store.Promotion()}, nil
}

func (s *Service) actionBroadcast(ctx context.Context, raw []byte) (any, error) {
	var request broadcastRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding broadcast request: %w", err)
	}
	if request.Text == "" {
		return nil, fmt.Errorf("broadcast text is required")
	}
	return s.broadcast(ctx, request.Text), nil
}
