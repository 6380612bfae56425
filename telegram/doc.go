// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

// Package telegram wraps the Telegram Bot API for wicket's join-request
// moderation needs.
//
// [Client] is a thin HTTP client for the Bot API. Every call goes
// through one helper that POSTs JSON to
// https://api.telegram.org/bot<token>/<method>, reads a bounded
// response body, and unwraps the standard {ok, result} envelope. API
// failures are returned as [*APIError] with the HTTP status code,
// the server's description, and the retry-after hint for rate limits.
//
// The package exposes only the operations the gatekeeper consumes:
// identity verification (GetMe), the getUpdates long-poll stream,
// join-request approval, and message sending. [API] is the interface
// form of that surface; production code holds a *Client, tests
// substitute fakes.
//
// Error classification follows the platform's conventions rather than
// inspecting description strings where possible: [IsConflict] matches
// the 409 returned when another process is consuming the same
// getUpdates stream, [IsUnreachable] matches the 403 returned when a
// recipient cannot receive direct messages from the bot, and
// [IsTooManyRequests] matches 429 rate limiting.
package telegram
