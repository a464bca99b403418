// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
)

// EntryInfo describes an entry file found in a cache directory.
type EntryInfo struct {
	Name     string
	Path     string
	Source   string
	Encoding string
	Ext      string
	Size     int64
	ModTime  time.Time
}

// Dir resolves the base cache directory.
// Precedence:
//  1. ENVCACHE_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/envcache
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("ENVCACHE_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "envcache"), true
	}
	return "", false
}

// Enabled returns true unless ENVCACHE_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("ENVCACHE_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// ParseName splits an entry file name of the form <source>_k<encoding>.<ext>.
// The source may itself contain "_k", so the last occurrence wins. ext is
// everything after the first dot following the encoding (msgpack.zst).
func ParseName(name string) (source, encoding, ext string, ok bool) {
	idx := strings.LastIndex(name, "_k")
	if idx <= 0 {
		return "", "", "", false
	}
	source = name[:idx]
	rest := name[idx+2:]

	dot := strings.Index(rest, ".")
	if dot <= 0 || dot == len(rest)-1 {
		return "", "", "", false
	}
	return source, rest[:dot], rest[dot+1:], true
}

// List returns the entries in dir sorted by name. In-flight temporary writes,
// subdirectories and names that do not parse are skipped. Entries of
// dot-named sources are listed. A missing directory lists as empty.
func List(dir string) ([]EntryInfo, error) {
	des, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var entries []EntryInfo
	for _, de := range des {
		name := de.Name()
		if de.IsDir() || IsTempName(name) {
			continue
		}
		source, encoding, ext, ok := ParseName(name)
		if !ok {
			log.Debugf("skipping unrecognized cache file %s", name)
			continue
		}
		info, err := de.Info()
		if err != nil {
			log.WithError(err).Warnf("failed to stat cache file %s", name)
			continue
		}
		entries = append(entries, EntryInfo{
			Name:     name,
			Path:     filepath.Join(dir, name),
			Source:   source,
			Encoding: encoding,
			Ext:      ext,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// IsTempName reports whether name is a temporary file written during a store,
// .<entry>.tmp-<digits>.
func IsTempName(name string) bool {
	i := strings.LastIndex(name, ".tmp-")
	if !strings.HasPrefix(name, ".") || i < 1 {
		return false
	}
	suffix := name[i+len(".tmp-"):]
	if suffix == "" {
		return false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
