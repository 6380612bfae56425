// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/wicketlabs/wicket/lib/netutil"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// Token is the bot token issued by BotFather. Required.
	Token string
	// BaseURL is the Bot API endpoint. If empty, the public
	// https://api.telegram.org is used. Overridden in tests.
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used. The getUpdates long poll holds connections open for up
	// to the configured poll timeout, so the client must not carry a
	// shorter overall timeout.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// defaultBaseURL is the public Bot API endpoint.
const defaultBaseURL = "https://api.telegram.org"

// Client is a Telegram Bot API client. Safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Bot API client for the given token.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("telegram: Token is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("telegram: invalid BaseURL %q: %w", baseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a network disruption to
// force subsequent requests to establish fresh TCP connections instead
// of reusing a poisoned pooled connection.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// GetMe validates the token and returns the bot's own account.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	result, err := c.call(ctx, "getMe", nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: getMe failed: %w", err)
	}

	var me User
	if err := json.Unmarshal(result, &me); err != nil {
		return nil, fmt.Errorf("telegram: failed to parse getMe response: %w", err)
	}
	return &me, nil
}

// GetUpdates performs one getUpdates long poll and returns the
// delivered updates in update-ID order. The server holds the
// connection for up to request.Timeout seconds when no updates are
// pending. Returns a *APIError with code 409 when another process is
// consuming the same stream.
func (c *Client) GetUpdates(ctx context.Context, request UpdatesRequest) ([]Update, error) {
	result, err := c.call(ctx, "getUpdates", request)
	if err != nil {
		return nil, fmt.Errorf("telegram: getUpdates failed: %w", err)
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("telegram: failed to parse getUpdates response: %w", err)
	}
	return updates, nil
}

// ApproveJoinRequest approves a pending join request for the given
// chat and user. Fails with a *APIError when the request has expired
// or was already decided.
func (c *Client) ApproveJoinRequest(ctx context.Context, chatID, userID int64) error {
	params := map[string]any{
		"chat_id": chatID,
		"user_id": userID,
	}
	if _, err := c.call(ctx, "approveChatJoinRequest", params); err != nil {
		return fmt.Errorf("telegram: approveChatJoinRequest failed: %w", err)
	}
	return nil
}

// SendMessage sends a message and returns the delivered message.
// Direct messages to an identity that has never talked to the bot fail
// with a 403 the caller can detect via IsUnreachable.
func (c *Client) SendMessage(ctx context.Context, request SendMessageRequest) (*Message, error) {
	result, err := c.call(ctx, "sendMessage", request)
	if err != nil {
		return nil, fmt.Errorf("telegram: sendMessage failed: %w", err)
	}

	var message Message
	if err := json.Unmarshal(result, &message); err != nil {
		return nil, fmt.Errorf("telegram: failed to parse sendMessage response: %w", err)
	}
	return &message, nil
}

// apiEnvelope is the standard Bot API response wrapper. Successful
// responses carry the method result; failures carry error_code and
// description, plus an optional parameters object with rate-limit
// hints.
type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

// call performs one Bot API method call and returns the raw result.
// The request URL is built by string concatenation — method names are
// fixed identifiers, never user input. On an ok=false envelope the
// returned error is a *APIError.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	requestURL := c.baseURL + "/bot" + c.token + "/" + method

	var bodyReader *bytes.Reader
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request: %w", method, err)
		}
		bodyReader = bytes.NewReader(encoded)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", method, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response body: %w", method, err)
	}

	// Both success and failure use the same envelope shape, regardless
	// of HTTP status. Decode it first and trust the ok field.
	var envelope apiEnvelope
	if jsonErr := json.Unmarshal(responseBody, &envelope); jsonErr != nil {
		// Non-JSON body. This should not happen with the real Bot API,
		// but fail loud with the status and raw body.
		return nil, fmt.Errorf("unexpected %d response from %s: %s",
			response.StatusCode, method, string(responseBody))
	}

	if envelope.OK {
		return envelope.Result, nil
	}

	apiErr := &APIError{
		Code:        envelope.ErrorCode,
		Description: envelope.Description,
	}
	if apiErr.Code == 0 {
		apiErr.Code = response.StatusCode
	}
	if envelope.Parameters != nil {
		apiErr.RetryAfter = envelope.Parameters.RetryAfter
	}
	return nil, apiErr
}
