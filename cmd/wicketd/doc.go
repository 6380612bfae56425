// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

// wicketd is the auto-approval gatekeeper daemon for membership-gated
// Telegram spaces. It long-polls the gateway for join requests,
// approves them, records each admission in a file-backed approval
// store, welcomes the requester (direct message, falling back to an
// in-space mention), and reports every approval to the configured
// audit spaces.
//
// Admins steer the daemon through chat commands (/promotion, /users,
// /details, /broadcast) or through the local control socket consumed
// by wicketctl.
package main
