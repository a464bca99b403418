// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package envelope

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		k    int
		want []float64
	}{
		{
			name: "window of one is the absolute value",
			x:    []float64{-1, 0.5, -0.25},
			k:    1,
			want: []float64{1, 0.5, 0.25},
		},
		{
			name: "window of three",
			x:    []float64{1, -2, 3, 0, 0},
			k:    3,
			want: []float64{5.0 / 3, 8.0 / 3, 3, 2, 1},
		},
		{
			name: "even window shrinks the output",
			x:    []float64{1, -3, 2},
			k:    2,
			want: []float64{3},
		},
		{
			name: "window wider than the signal",
			x:    []float64{0.5, -1},
			k:    5,
			want: []float64{2.0 / 5, 2.0 / 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.x, tt.k)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestCompute_Errors(t *testing.T) {
	_, err := Compute([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = Compute(nil, 3)
	assert.ErrorIs(t, err, ErrTooShort)

	_, err = Compute([]float64{1}, 2)
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestCompute_MatchesNaivePooling(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := make([]float64, 997)
	for i := range x {
		x[i] = rng.Float64()*2 - 1
	}

	for _, k := range []int{1, 2, 3, 4, 17, 64, 201} {
		got, err := Compute(x, k)
		require.NoError(t, err)
		want := naive(x, k)
		require.Len(t, got, len(want), "k=%d", k)
		assert.InDeltaSlice(t, want, got, 1e-9, "k=%d", k)
		if k%2 == 1 {
			assert.Len(t, got, len(x), "odd k=%d preserves length", k)
		}
	}
}

func TestComputeChannels(t *testing.T) {
	env, err := ComputeChannels([][]float64{{1, -1, 1}, {0, 0, 0}}, 3)
	require.NoError(t, err)
	require.Len(t, env, 2)
	assert.InDeltaSlice(t, []float64{2.0 / 3, 1, 2.0 / 3}, env[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, env[1], 1e-12)

	_, err = ComputeChannels([][]float64{{1, 2}, {}}, 3)
	assert.ErrorIs(t, err, ErrTooShort)
	assert.Contains(t, err.Error(), "channel 1")
}

func TestStats(t *testing.T) {
	s := Stats([][]float64{{0.1, 0.4}, {0.2, 0.3}})
	assert.Equal(t, 2, s.Channels)
	assert.Equal(t, 2, s.Samples)
	assert.InDelta(t, 0.4, s.Peak, 1e-12)
	assert.InDelta(t, 0.25, s.Mean, 1e-12)

	assert.Equal(t, Summary{}, Stats(nil))
}

func TestParams(t *testing.T) {
	p := Params(201)
	k, ok := p.Int("k")
	assert.True(t, ok)
	assert.Equal(t, int64(201), k)
	assert.Len(t, p, 1)
}

// naive is the direct O(n*k) form of Compute.
func naive(x []float64, k int) []float64 {
	p := (k - 1) / 2
	abs := make([]float64, len(x))
	for i, v := range x {
		abs[i] = math.Abs(v)
	}

	pool := func(a []float64, pad float64, reduce func([]float64) float64) []float64 {
		padded := make([]float64, 0, len(a)+2*p)
		for i := 0; i < p; i++ {
			padded = append(padded, pad)
		}
		padded = append(padded, a...)
		for i := 0; i < p; i++ {
			padded = append(padded, pad)
		}
		out := make([]float64, 0, len(padded)-k+1)
		for i := 0; i+k <= len(padded); i++ {
			out = append(out, reduce(padded[i:i+k]))
		}
		return out
	}

	maxOf := func(w []float64) float64 {
		m := math.Inf(-1)
		for _, v := range w {
			m = math.Max(m, v)
		}
		return m
	}
	meanOf := func(w []float64) float64 {
		var s float64
		for _, v := range w {
			s += v
		}
		return s / float64(len(w))
	}

	return pool(pool(abs, math.Inf(-1), maxOf), 0, meanOf)
}
