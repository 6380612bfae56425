// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

// User identifies a Telegram account. ID is the opaque numeric
// identity used as the unique key throughout wicket.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName returns the user's full name ("First Last", or just the
// first name when no last name is set).
func (u User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Chat identifies a channel, group, or private conversation. Title is
// empty for private chats.
type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// ChatJoinRequest is the inbound join-request event: a user asked to
// join a chat whose join setting requires approval.
type ChatJoinRequest struct {
	Chat Chat   `json:"chat"`
	From User   `json:"from"`
	Date int64  `json:"date"`
	Bio  string `json:"bio,omitempty"`
}

// Message is an inbound chat message. Only the fields the command
// surface consumes are decoded.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
}

// Update is one entry from the getUpdates stream. Exactly one of the
// optional payload fields is set per update; updates carrying payloads
// the gatekeeper does not handle decode with all of them nil.
type Update struct {
	ID          int64            `json:"update_id"`
	Message     *Message         `json:"message,omitempty"`
	JoinRequest *ChatJoinRequest `json:"chat_join_request,omitempty"`
}

// UpdatesRequest holds parameters for the getUpdates long poll.
type UpdatesRequest struct {
	// Offset is the first update ID to return. Pass the highest seen
	// update ID plus one to acknowledge everything before it.
	Offset int64 `json:"offset,omitempty"`
	// Timeout is the server-side long-poll hold in seconds. Zero
	// means short polling (immediate return).
	Timeout int `json:"timeout,omitempty"`
	// AllowedUpdates restricts which update kinds the server delivers.
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// SendMessageRequest holds parameters for sending a message to a chat
// or user. ChatID accepts both space IDs and user identities — the
// platform routes direct messages through the same method.
type SendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// ParseModeHTML enables HTML entity parsing in message text. The
// fallback delivery path uses it for inline mention links.
const ParseModeHTML = "HTML"
