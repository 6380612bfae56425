// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/wicketlabs/wicket/lib/ctl"
	"github.com/wicketlabs/wicket/lib/testutil"
)

// startControlSocket serves the service's control actions on a socket
// in a temp dir and returns a connected client.
func startControlSocket(t *testing.T, service *Service) *ctl.Client {
	t.Helper()

	socketPath := filepath.Join(testutil.SocketDir(t), "wicketd.sock")
	server := ctl.NewSocketServer(socketPath, testLogger())
	service.registerActions(server)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Serve(ctx); err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		testutil.RequireClosed(t, done, 5*time.Second, "socket shutdown")
	})

	client := ctl.NewClient(socketPath)
	deadline := time.Now().Add(5 * time.Second)
	for {
		err := client.Call(context.Background(), "__probe__", nil, nil)
		var serverErr *ctl.ServerError
		if errors.As(err, &serverErr) {
			return client
		}
		if time.Now().After(deadline) {
			t.Fatalf("control socket did not come up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSocketStatus(t *testing.T) {
	gateway := &fakeGateway{}
	service, clk := newTestService(t, gateway)
	record(t, service, -1001, "Alpha", 42)
	clk.Advance(90 * time.Second)
	client := startControlSocket(t, service)

	var status struct {
		State        string `cbor:"state"`
		UptimeSecs   int64  `cbor:"uptime_seconds"`
		Spaces       int    `cbor:"spaces"`
		Members      int    `cbor:"members"`
		PromotionSet bool   `cbor:"promotion_set"`
	}
	if err := client.Call(context.Background(), "status", nil, &status); err != nil {
		t.Fatalf("status call: %v", err)
	}
	if status.State != "starting" {
		t.Errorf("state = %q, want starting before the listener runs", status.State)
	}
	if status.UptimeSecs != 90 {
		t.Errorf("uptime = %d, want 90", status.UptimeSecs)
	}
	if status.Spaces != 1 || status.Members != 1 {
		t.Errorf("spaces=%d members=%d, want 1/1", status.Spaces, status.Members)
	}
	if status.PromotionSet {
		t.Error("promotion_set = true, want false")
	}
}

func TestSocketUsersAndDetails(t *testing.T) {
	gateway := &fakeGateway{}
	service, _ := newTestService(t, gateway)
	record(t, service, -1001, "Alpha", 42)
	record(t, service, -1001, "Alpha", 43)
	record(t, service, -1002, "Beta", 42)
	client := startControlSocket(t, service)
	ctx := context.Background()

	var users struct {
		Total int `cbor:"total"`
	}
	if err := client.Call(ctx, "users", nil, &users); err != nil {
		t.Fatalf("users call: %v", err)
	}
	if users.Total != 3 {
		t.Errorf("total = %d, want 3", users.Total)
	}

	var details struct {
		Spaces []struct {
			ID      int64  `cbor:"id"`
			Title   string `cbor:"title"`
			Members int    `cbor:"members"`
		} `cbor:"spaces"`
	}
	if err := client.Call(ctx, "details", nil, &details); err != nil {
		t.Fatalf("details call: %v", err)
	}
	if len(details.Spaces) != 2 {
		t.Fatalf("spaces = %d, want 2", len(details.Spaces))
	}
	if details.Spaces[0].Title != "Alpha" || details.Spaces[0].Members != 2 {
		t.Errorf("first space = %+v", details.Spaces[0])
	}
}

func TestSocketPromotionLifecycle(t *testing.T) {
	gateway := &fakeGateway{}
	service, _ := newTestService(t, gateway)
	client := startControlSocket(t, service)
	ctx := context.Background()

	var response struct {
		Text string `cbor:"text"`
	}

	// Set.
	if err := client.Call(ctx, "promotion", map[string]any{"text": "perks inside"}, &response); err != nil {
		t.Fatalf("promotion set: %v", err)
	}
	if response.Text != "perks inside" {
		t.Errorf("set response = %q", response.Text)
	}
	if got := service.store.Promotion(); got != "perks inside" {
		t.Errorf("stored promotion = %q", got)
	}

	// Get leaves it alone.
	if err := client.Call(ctx, "promotion", nil, &response); err != nil {
		t.Fatalf("promotion get: %v", err)
	}
	if response.Text != "perks inside" {
		t.Errorf("get response = %q", response.Text)
	}

	// Explicit empty string clears.
	if err := client.Call(ctx, "promotion", map[string]any{"text": ""}, &response); err != nil {
		t.Fatalf("promotion clear: %v", err)
	}
	if got := service.store.Promotion(); got != "" {
		t.Errorf("stored promotion = %q, want cleared", got)
	}
}

func TestSocketBroadcast(t *testing.T) {
	gateway := &fakeGateway{}
	service, _ := newTestService(t, gateway)
	record(t, service, -1001, "Alpha", 42)
	record(t, service, -1002, "Beta", 7)
	client := startControlSocket(t, service)
	ctx := context.Background()

	var result BroadcastResult
	if err := client.Call(ctx, "broadcast", map[string]any{"text": "maintenance at noon"}, &result); err != nil {
		t.Fatalf("broadcast call: %v", err)
	}
	if result.Sent != 2 || result.Failed != 0 {
		t.Errorf("result = %+v, want Sent=2 Failed=0", result)
	}
	if got := len(gateway.sentTo(42)); got != 1 {
		t.Errorf("messages to 42 = %d, want 1", got)
	}
}

func TestSocketBroadcastRequiresText(t *testing.T) {
	gateway := &fakeGateway{}
	service, _ := newTestService(t, gateway)
	client := startControlSocket(t, service)

	err := client.Call(context.Background(), "broadcast", nil, nil)
	var serverErr *ctl.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("error = %v, want ServerError", err)
	}
}
