// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSource is returned when a source identifier has no usable base
	// name.
	ErrInvalidSource = errors.New("invalid source identifier")
	// ErrInvalidParam is returned for parameter names or values that cannot be
	// serialized into a key.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrNoDir is returned by New when no cache directory is given.
	ErrNoDir = errors.New("cache directory not specified")
)

// StorageError reports a failure to create the cache directory or to read or
// write an entry.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// CorruptEntryError reports an entry that exists but cannot be decoded.
type CorruptEntryError struct {
	Path string
	Err  error
}

func (e *CorruptEntryError) Error() string {
	return fmt.Sprintf("corrupt cache entry %s: %v", e.Path, e.Err)
}

func (e *CorruptEntryError) Unwrap() error { return e.Err }
