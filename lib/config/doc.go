// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for wicketd.
//
// Configuration is layered, lowest precedence first: built-in
// defaults, an optional YAML file (the path comes from the
// WICKET_CONFIG environment variable or a --config flag — there is no
// automatic discovery), and finally WICKET_* environment variables.
// The environment wins so that deployments driven purely by the
// hosting environment (the common case for a single-process bot) need
// no file at all.
//
// Key exports:
//
//   - [Config] — all daemon settings, with yaml and env struct tags
//   - [Load] — defaults + optional WICKET_CONFIG file + environment
//   - [LoadFile] — same, with an explicit file path
//   - [Duration] — a time.Duration that unmarshals from "5s" forms in
//     both YAML and environment values
//
// This package depends on no other wicket packages.
package config
