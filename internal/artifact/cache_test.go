// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter wraps a compute function and records how often it ran.
type counter[T any] struct {
	calls int
	value T
	err   error
}

func (c *counter[T]) compute() (T, error) {
	c.calls++
	return c.value, c.err
}

func newTestCache(t *testing.T, dir string, opts ...Option) *Cache[[]float64] {
	t.Helper()
	c, err := New[[]float64](dir, MsgpackCodec[[]float64]{}, opts...)
	require.NoError(t, err)
	return c
}

func TestCache_TrackScenario(t *testing.T) {
	dir := t.TempDir()
	c := newTestCache(t, dir)
	fn := &counter[[]float64]{value: []float64{0.1, 0.2, 0.3}}

	got, err := c.GetOrCompute("track01.wav", Params{"k": 201}, fn.compute)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, got)
	assert.Equal(t, 1, fn.calls)
	assert.FileExists(t, filepath.Join(dir, "track01.wav_k201.msgpack"))

	got, err = c.GetOrCompute("track01.wav", Params{"k": 201}, fn.compute)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, got)
	assert.Equal(t, 1, fn.calls, "second call must not recompute")
}

func TestCache_MissThenHit(t *testing.T) {
	c := newTestCache(t, t.TempDir())
	params := Params{"k": 51, "mono": true}
	key, err := c.Key("song.wav", params)
	require.NoError(t, err)

	exists, err := c.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)

	_, ok, err := c.Load(key)
	require.NoError(t, err)
	assert.False(t, ok)

	fn := &counter[[]float64]{value: []float64{1, 2}}
	res, err := c.Fetch("song.wav", params, fn.compute)
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.Equal(t, key, res.Key)
	assert.Equal(t, c.Path(key), res.Path)

	exists, err = c.Exists(key)
	require.NoError(t, err)
	assert.True(t, exists)

	// A second cache over the same directory loads the entry on its own.
	other := newTestCache(t, c.Dir())
	v, ok, err := other.Load(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2}, v)

	res, err = c.Fetch("song.wav", params, fn.compute)
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, 1, fn.calls)
}

func TestCache_DistinctParamsDistinctEntries(t *testing.T) {
	c := newTestCache(t, t.TempDir())

	a := &counter[[]float64]{value: []float64{1}}
	b := &counter[[]float64]{value: []float64{2}}

	_, err := c.GetOrCompute("x.wav", Params{"k": 201, "gain": 1.0}, a.compute)
	require.NoError(t, err)
	got, err := c.GetOrCompute("x.wav", Params{"k": 201, "gain": 2.0}, b.compute)
	require.NoError(t, err)

	assert.Equal(t, []float64{2}, got)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestCache_SignedAndUnsignedWindowDoNotShare(t *testing.T) {
	c := newTestCache(t, t.TempDir())

	a := &counter[[]float64]{value: []float64{1}}
	b := &counter[[]float64]{value: []float64{2}}

	ra, err := c.Fetch("x.wav", Params{"k": 201}, a.compute)
	require.NoError(t, err)
	rb, err := c.Fetch("x.wav", Params{"k": uint(201)}, b.compute)
	require.NoError(t, err)

	assert.NotEqual(t, ra.Path, rb.Path)
	assert.False(t, rb.Hit)
	assert.Equal(t, []float64{2}, rb.Value)
	assert.Equal(t, 1, b.calls)
}

func TestCache_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	c := newTestCache(t, dir)

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "New must not create the directory")

	fn := &counter[[]float64]{value: []float64{0.5}}
	_, err = c.GetOrCompute("a.wav", Params{"k": 3}, fn.compute)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestCache_ComputeErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	c := newTestCache(t, dir)
	boom := errors.New("boom")
	fn := &counter[[]float64]{err: boom}

	_, err := c.GetOrCompute("a.wav", Params{"k": 3}, fn.compute)
	assert.Same(t, boom, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed compute must not leave an entry")

	_, err = c.GetOrCompute("a.wav", Params{"k": 3}, fn.compute)
	assert.Same(t, boom, err)
	assert.Equal(t, 2, fn.calls)
}

func TestCache_StorageError(t *testing.T) {
	// The cache directory path is a regular file, so it cannot be created.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	c := newTestCache(t, filepath.Join(blocker, "cache"))
	fn := &counter[[]float64]{value: []float64{1}}

	key, err := c.Key("a.wav", Params{"k": 3})
	require.NoError(t, err)
	exists, err := c.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)
	_, ok, err := c.Load(key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.GetOrCompute("a.wav", Params{"k": 3}, fn.compute)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "mkdir", se.Op)
	assert.Equal(t, 1, fn.calls)
}

func TestCache_StoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	c := newTestCache(t, dir)

	for _, k := range []int{3, 5, 7} {
		fn := &counter[[]float64]{value: []float64{float64(k)}}
		_, err := c.GetOrCompute("a.wav", Params{"k": k}, fn.compute)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"a.wav_k3.msgpack", "a.wav_k5.msgpack", "a.wav_k7.msgpack"}, names)
}

func TestCache_CorruptEntry_Fail(t *testing.T) {
	for name, content := range map[string][]byte{
		"garbage":  []byte("this is not msgpack"),
		"empty":    {},
		"trailing": append(mustMarshal(t, []float64{1}), 0x01),
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			c := newTestCache(t, dir)
			path := filepath.Join(dir, "track01.wav_k201.msgpack")
			require.NoError(t, os.WriteFile(path, content, 0o600))

			fn := &counter[[]float64]{value: []float64{0.1}}
			for i := 0; i < 3; i++ {
				_, err := c.GetOrCompute("track01.wav", Params{"k": 201}, fn.compute)
				var ce *CorruptEntryError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, path, ce.Path)
			}
			assert.Equal(t, 0, fn.calls)

			onDisk, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, content, onDisk, "fail policy must not touch the file")
		})
	}
}

func TestCache_CorruptEntry_Recompute(t *testing.T) {
	dir := t.TempDir()
	c := newTestCache(t, dir, WithCorruptPolicy(RecomputeOnCorrupt))
	assert.Equal(t, RecomputeOnCorrupt, c.Policy())

	path := filepath.Join(dir, "track01.wav_k201.msgpack")
	require.NoError(t, os.WriteFile(path, []byte("not msgpack"), 0o600))

	fn := &counter[[]float64]{value: []float64{0.1, 0.2, 0.3}}
	for i := 0; i < 3; i++ {
		got, err := c.GetOrCompute("track01.wav", Params{"k": 201}, fn.compute)
		require.NoError(t, err)
		assert.Equal(t, []float64{0.1, 0.2, 0.3}, got)
	}
	assert.Equal(t, 1, fn.calls, "only the first call recomputes")

	key, err := c.Key("track01.wav", Params{"k": 201})
	require.NoError(t, err)
	v, ok, err := c.Load(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, v)
}

func TestCache_ZstdRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := New[[][]float64](dir, NewCodec[[][]float64](true))
	require.NoError(t, err)

	env := [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}
	fn := &counter[[][]float64]{value: env}

	_, err = c.GetOrCompute("stereo.wav", Params{"k": 201}, fn.compute)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "stereo.wav_k201.msgpack.zst"))

	got, err := c.GetOrCompute("stereo.wav", Params{"k": 201}, fn.compute)
	require.NoError(t, err)
	assert.Equal(t, env, got)
	assert.Equal(t, 1, fn.calls)

	// A plain msgpack cache does not see the compressed entry.
	plain := newTestCache(t, dir)
	key, err := plain.Key("stereo.wav", Params{"k": 201})
	require.NoError(t, err)
	exists, err := plain.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCache_ZstdCorrupt(t *testing.T) {
	dir := t.TempDir()
	c, err := New[[]float64](dir, NewCodec[[]float64](true))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.wav_k3.msgpack.zst"), []byte("nope"), 0o600))

	_, err = c.GetOrCompute("a.wav", Params{"k": 3}, (&counter[[]float64]{}).compute)
	var ce *CorruptEntryError
	assert.ErrorAs(t, err, &ce)
}

func TestNew_Validation(t *testing.T) {
	_, err := New[[]float64]("", nil)
	assert.ErrorIs(t, err, ErrNoDir)

	c, err := New[[]float64](t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, FailOnCorrupt, c.Policy())
	key, err := c.Key("a.wav", Params{"k": 3})
	require.NoError(t, err)
	assert.Equal(t, "a.wav_k3.msgpack", filepath.Base(c.Path(key)))
}

func TestParseCorruptPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    CorruptPolicy
		wantErr bool
	}{
		{in: "", want: FailOnCorrupt},
		{in: "fail", want: FailOnCorrupt},
		{in: "Recompute", want: RecomputeOnCorrupt},
		{in: "ignore", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCorruptPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.String(), tt.want.String())
		})
	}
}

func mustMarshal(t *testing.T, v []float64) []byte {
	t.Helper()
	b, err := MsgpackCodec[[]float64]{}.Marshal(v)
	require.NoError(t, err)
	return b
}
