// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package envelope computes smoothed amplitude envelopes of audio signals.
package envelope
