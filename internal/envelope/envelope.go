// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"errors"
	"fmt"
	"math"

	"github.com/staranto/envcachego/internal/artifact"
)

// DefaultWindow is the smoothing window used when none is configured.
const DefaultWindow = 201

var (
	// ErrInvalidWindow is returned for a window smaller than one sample.
	ErrInvalidWindow = errors.New("window must be at least 1")
	// ErrTooShort is returned when the signal cannot produce any output for
	// the window.
	ErrTooShort = errors.New("signal too short for window")
)

// Params returns the cache parameters for an envelope with window k. It must
// list everything Compute depends on.
func Params(k int) artifact.Params {
	return artifact.Params{"k": k}
}

// Compute returns the amplitude envelope of x: the absolute signal is max
// pooled and then average pooled, both with window k, stride 1 and (k-1)/2
// samples of padding on each side. Max pooling pads with -Inf; average pooling
// pads with zeros and always divides by k. An odd k preserves the length.
func Compute(x []float64, k int) ([]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, k)
	}
	p := (k - 1) / 2

	if len(x) == 0 || outLen(outLen(len(x), k, p), k, p) < 1 {
		return nil, fmt.Errorf("%w: %d samples, window %d", ErrTooShort, len(x), k)
	}

	abs := make([]float64, len(x))
	for i, v := range x {
		abs[i] = math.Abs(v)
	}

	return avgPool(maxPool(abs, k, p), k, p), nil
}

// ComputeChannels applies Compute to every channel.
func ComputeChannels(channels [][]float64, k int) ([][]float64, error) {
	out := make([][]float64, len(channels))
	for i, ch := range channels {
		env, err := Compute(ch, k)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", i, err)
		}
		out[i] = env
	}
	return out, nil
}

func outLen(n, k, p int) int {
	return n + 2*p - k + 1
}

// maxPool keeps a deque of indices with decreasing values so each window max
// is read from the front.
func maxPool(a []float64, k, p int) []float64 {
	n := outLen(len(a), k, p)
	out := make([]float64, n)

	dq := make([]int, 0, len(a))
	head, next := 0, 0
	for i := 0; i < n; i++ {
		lo, hi := i-p, i-p+k-1
		if hi > len(a)-1 {
			hi = len(a) - 1
		}
		for ; next <= hi; next++ {
			for len(dq) > head && a[dq[len(dq)-1]] <= a[next] {
				dq = dq[:len(dq)-1]
			}
			dq = append(dq, next)
		}
		for dq[head] < lo {
			head++
		}
		out[i] = a[dq[head]]
	}

	return out
}

func avgPool(a []float64, k, p int) []float64 {
	n := outLen(len(a), k, p)
	out := make([]float64, n)

	prefix := make([]float64, len(a)+1)
	for i, v := range a {
		prefix[i+1] = prefix[i] + v
	}

	for i := 0; i < n; i++ {
		lo, hi := i-p, i-p+k-1
		if lo < 0 {
			lo = 0
		}
		if hi > len(a)-1 {
			hi = len(a) - 1
		}
		out[i] = (prefix[hi+1] - prefix[lo]) / float64(k)
	}

	return out
}

// Summary describes an envelope for reports.
type Summary struct {
	Channels int
	Samples  int
	Peak     float64
	Mean     float64
}

// Stats summarizes env. Samples is the length of the longest channel.
func Stats(env [][]float64) Summary {
	s := Summary{Channels: len(env)}

	var sum float64
	var count int
	for _, ch := range env {
		if len(ch) > s.Samples {
			s.Samples = len(ch)
		}
		for _, v := range ch {
			if v > s.Peak {
				s.Peak = v
			}
			sum += v
		}
		count += len(ch)
	}
	if count > 0 {
		s.Mean = sum / float64(count)
	}

	return s
}
