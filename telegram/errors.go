// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents a structured error response from the Bot API.
// Callers can use errors.As to extract the structured information:
//
//	var apiErr *APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.Code == http.StatusConflict { ... }
//	}
type APIError struct {
	// Code is the error_code field of the response, which mirrors the
	// HTTP status code (e.g., 403, 409).
	Code int
	// Description is the human-readable error description from the
	// server (e.g., "Forbidden: bot was blocked by the user").
	Description string
	// RetryAfter is the server's cooldown hint in seconds for 429
	// responses. Zero when the server sent no hint.
	RetryAfter int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %d: %s", e.Code, e.Description)
}

// IsConflict reports whether err is the 409 response the platform
// returns when another process is already consuming the bot's
// getUpdates stream. This is the expected failure mode of running two
// instances against one token, not a transport problem.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}

// IsUnreachable reports whether err means the recipient cannot receive
// direct messages from the bot: the user never started a conversation,
// blocked the bot, or deactivated their account. The platform reports
// all of these as 403, plus a 400 "chat not found" for identities the
// server cannot route to at all.
func IsUnreachable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == http.StatusForbidden {
		return true
	}
	return apiErr.Code == http.StatusBadRequest &&
		strings.Contains(apiErr.Description, "chat not found")
}

// IsTooManyRequests reports whether err is a 429 rate-limit response.
func IsTooManyRequests(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}
