// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package audio loads PCM WAV files as normalized per-channel samples.
package audio
