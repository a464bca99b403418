// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	t.Setenv("ENVCACHE_CACHE_DIR", "/tmp/envcache-test")
	dir, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, "/tmp/envcache-test", dir)

	t.Setenv("ENVCACHE_CACHE_DIR", "")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	t.Setenv("HOME", "/tmp/home")
	dir, ok = Dir()
	assert.True(t, ok)
	assert.Equal(t, "envcache", filepath.Base(dir))
}

func TestEnabled(t *testing.T) {
	for value, want := range map[string]bool{"": true, "1": true, "true": true, "0": false, "false": false} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("ENVCACHE_CACHE", value)
			assert.Equal(t, want, Enabled())
		})
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		encoding string
		ext      string
		ok       bool
	}{
		{name: "track01.wav_k201.msgpack", source: "track01.wav", encoding: "201", ext: "msgpack", ok: true},
		{name: "a_kick.wav_k201-h0011223344556677.msgpack.zst", source: "a_kick.wav", encoding: "201-h0011223344556677", ext: "msgpack.zst", ok: true},
		{name: "song.wav_kh0011223344556677.msgpack", source: "song.wav", encoding: "h0011223344556677", ext: "msgpack", ok: true},
		{name: "README", ok: false},
		{name: "_k201.msgpack", ok: false},
		{name: "x.wav_k.msgpack", ok: false},
		{name: "x.wav_k201.", ok: false},
		{name: "x.wav_k201", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, encoding, ext, ok := ParseName(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.source, source)
			assert.Equal(t, tt.encoding, encoding)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"b.wav_k201.msgpack",
		"a.wav_k3.msgpack.zst",
		".b.wav_k201.msgpack.tmp-123",
		".take1.wav_k51.msgpack",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("1234"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub_k1.d"), 0o755))

	entries, err := List(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, ".take1.wav", entries[0].Source)
	assert.Equal(t, "51", entries[0].Encoding)
	entries = entries[1:]

	assert.Equal(t, "a.wav_k3.msgpack.zst", entries[0].Name)
	assert.Equal(t, "a.wav", entries[0].Source)
	assert.Equal(t, "3", entries[0].Encoding)
	assert.Equal(t, "msgpack.zst", entries[0].Ext)
	assert.Equal(t, int64(4), entries[0].Size)
	assert.Equal(t, filepath.Join(dir, "a.wav_k3.msgpack.zst"), entries[0].Path)
	assert.False(t, entries[0].ModTime.IsZero())

	assert.Equal(t, "b.wav", entries[1].Source)
}

func TestIsTempName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: ".b.wav_k201.msgpack.tmp-123", want: true},
		{name: ".take1.wav_k51.msgpack.zst.tmp-4096", want: true},
		{name: ".take1.wav_k51.msgpack", want: false},
		{name: "b.wav_k201.msgpack.tmp-123", want: false},
		{name: ".b.wav_k201.msgpack.tmp-", want: false},
		{name: ".b.tmp-x.wav_k3.msgpack", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTempName(tt.name))
		})
	}
}

func TestList_MissingDir(t *testing.T) {
	entries, err := List(filepath.Join(t.TempDir(), "missing"))
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
