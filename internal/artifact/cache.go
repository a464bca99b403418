// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/apex/log"
)

// CorruptPolicy decides what happens when an existing entry cannot be
// decoded.
type CorruptPolicy int

const (
	// FailOnCorrupt returns a *CorruptEntryError and leaves the file alone.
	FailOnCorrupt CorruptPolicy = iota
	// RecomputeOnCorrupt treats the entry as a miss and overwrites it.
	RecomputeOnCorrupt
)

func (p CorruptPolicy) String() string {
	switch p {
	case FailOnCorrupt:
		return "fail"
	case RecomputeOnCorrupt:
		return "recompute"
	default:
		return fmt.Sprintf("CorruptPolicy(%d)", int(p))
	}
}

// ParseCorruptPolicy accepts "fail" or "recompute". An empty string is
// "fail".
func ParseCorruptPolicy(s string) (CorruptPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return FailOnCorrupt, nil
	case "recompute":
		return RecomputeOnCorrupt, nil
	default:
		return FailOnCorrupt, fmt.Errorf("unknown corrupt entry policy %q: must be one of [fail recompute]", s)
	}
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	policy CorruptPolicy
}

// WithCorruptPolicy sets how corrupt entries are handled.
func WithCorruptPolicy(p CorruptPolicy) Option {
	return func(o *options) { o.policy = p }
}

// ComputeFunc produces an artifact on a miss.
type ComputeFunc[T any] func() (T, error)

// Result is an artifact together with where it came from.
type Result[T any] struct {
	Value T
	Key   Key
	Path  string
	// Hit is true when Value was loaded from disk rather than computed.
	Hit bool
}

// Cache stores artifacts of type T in a single flat directory.
type Cache[T any] struct {
	dir    string
	codec  Codec[T]
	policy CorruptPolicy
}

// New returns a Cache rooted at dir. The directory is not touched until the
// first write.
func New[T any](dir string, codec Codec[T], opts ...Option) (*Cache[T], error) {
	if dir == "" {
		return nil, ErrNoDir
	}
	if codec == nil {
		codec = MsgpackCodec[T]{}
	}

	o := options{policy: FailOnCorrupt}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[T]{dir: dir, codec: codec, policy: o.policy}, nil
}

// Dir returns the cache directory.
func (c *Cache[T]) Dir() string { return c.dir }

// Ext returns the entry file extension of the cache's codec.
func (c *Cache[T]) Ext() string { return c.codec.Ext() }

// Policy returns the corrupt entry policy.
func (c *Cache[T]) Policy() CorruptPolicy { return c.policy }

// Key derives the key for sourceID and params.
func (c *Cache[T]) Key(sourceID string, params Params) (Key, error) {
	return NewKey(sourceID, params)
}

// Path returns where the entry for key lives, whether or not it exists.
func (c *Cache[T]) Path(key Key) string {
	return filepath.Join(c.dir, key.Filename(c.codec.Ext()))
}

// Exists reports whether an entry file is present for key.
func (c *Cache[T]) Exists(key Key) (bool, error) {
	p := c.Path(key)
	info, err := os.Stat(p)
	if isMissing(err) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: "stat", Path: p, Err: err}
	}
	return !info.IsDir(), nil
}

// isMissing reports whether err means the entry is absent. A path component
// that is not a directory also means nothing has been stored there.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// Load reads and decodes the entry for key. A missing entry returns ok=false
// and no error. Load never consults the corrupt policy.
func (c *Cache[T]) Load(key Key) (v T, ok bool, err error) {
	p := c.Path(key)
	data, err := os.ReadFile(p)
	if isMissing(err) {
		return v, false, nil
	}
	if err != nil {
		return v, false, &StorageError{Op: "read", Path: p, Err: err}
	}

	v, err = c.codec.Unmarshal(data)
	if err != nil {
		return v, false, &CorruptEntryError{Path: p, Err: err}
	}
	return v, true, nil
}

// Store encodes v and writes it as the entry for key. The bytes go to a
// temporary file in the cache directory that is renamed into place, so a
// crash mid-write never leaves a partial entry under the final name.
func (c *Cache[T]) Store(key Key, v T) error {
	data, err := c.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode artifact for %s: %w", key, err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil { //nolint:mnd
		return &StorageError{Op: "mkdir", Path: c.dir, Err: err}
	}

	final := c.Path(key)
	tmp, err := os.CreateTemp(c.dir, "."+filepath.Base(final)+".tmp-*")
	if err != nil {
		return &StorageError{Op: "create", Path: final, Err: err}
	}
	tmpPath := tmp.Name()

	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &StorageError{Op: op, Path: final, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &StorageError{Op: "close", Path: final, Err: err}
	}
	if err := os.Rename(tmpPath, final); err != nil {
		_ = os.Remove(tmpPath)
		return &StorageError{Op: "rename", Path: final, Err: err}
	}

	log.Debugf("wrote cache entry %s (%d bytes)", final, len(data))
	return nil
}

// Fetch returns the cached artifact for (sourceID, params), computing and
// storing it on a miss. Errors from compute are returned unchanged.
func (c *Cache[T]) Fetch(sourceID string, params Params, compute ComputeFunc[T]) (Result[T], error) {
	key, err := c.Key(sourceID, params)
	if err != nil {
		return Result[T]{}, err
	}
	res := Result[T]{Key: key, Path: c.Path(key)}

	v, ok, err := c.Load(key)
	var corrupt *CorruptEntryError
	switch {
	case errors.As(err, &corrupt) && c.policy == RecomputeOnCorrupt:
		log.WithError(corrupt.Err).Warnf("recomputing corrupt cache entry %s", corrupt.Path)
	case err != nil:
		return res, err
	case ok:
		log.Debugf("cache hit %s", res.Path)
		res.Value = v
		res.Hit = true
		return res, nil
	default:
		log.Debugf("cache miss %s", res.Path)
	}

	v, err = compute()
	if err != nil {
		return res, err
	}
	if err := c.Store(key, v); err != nil {
		return res, err
	}

	res.Value = v
	return res, nil
}

// GetOrCompute is Fetch without the entry metadata.
func (c *Cache[T]) GetOrCompute(sourceID string, params Params, compute ComputeFunc[T]) (T, error) {
	res, err := c.Fetch(sourceID, params, compute)
	return res.Value, err
}
