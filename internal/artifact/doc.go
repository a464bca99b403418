// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package artifact is a disk-backed cache for expensive, deterministic
// computations keyed by a source name and its full parameter set.
//
// Entries live flat in one directory as <source>_k<encoding>.<ext>. An entry
// is written once, atomically, and never invalidated by the cache itself.
// There is no locking; two processes missing on the same key both compute
// and the last rename wins.
package artifact
