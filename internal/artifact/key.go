// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator joins the source and canonical params in Key.String.
const KeySeparator = "::"

// Key identifies a cache entry.
type Key struct {
	// Source is the base name of the source identifier.
	Source string
	// Canonical is the canonical serialization of the full parameter set.
	Canonical string
	// Encoding is the filesystem form of the parameters used in the entry
	// file name.
	Encoding string
}

// NewKey derives a Key from the base name of sourceID and every entry in
// params. Two sources with the same base name in different directories map to
// the same key.
func NewKey(sourceID string, params Params) (Key, error) {
	if strings.TrimSpace(sourceID) == "" {
		return Key{}, fmt.Errorf("%w: empty", ErrInvalidSource)
	}
	base := filepath.Base(sourceID)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return Key{}, fmt.Errorf("%w: %q has no base name", ErrInvalidSource, sourceID)
	}

	canonical, err := params.Canonical()
	if err != nil {
		return Key{}, err
	}

	return Key{
		Source:    base,
		Canonical: canonical,
		Encoding:  encodeParams(params, canonical),
	}, nil
}

// Filename returns the entry file name, <source>_k<encoding>.<ext>.
func (k Key) Filename(ext string) string {
	return k.Source + "_k" + k.Encoding + "." + ext
}

func (k Key) String() string {
	return k.Source + KeySeparator + k.Canonical
}

// encodeParams keeps the plain _k<int> form only when the set is a single
// signed integer k and hashes everything else, unsigned k included. The hash
// part always starts with "h" and is a fixed 17 characters, so it can never be
// confused with a bare integer.
func encodeParams(params Params, canonical string) string {
	kv, hasK := params.Int("k")
	if hasK && canonical == "k=i:"+strconv.FormatInt(kv, 10) {
		return strconv.FormatInt(kv, 10)
	}

	hash := fmt.Sprintf("h%016x", xxhash.Sum64String(canonical))
	if hasK {
		return strconv.FormatInt(kv, 10) + "-" + hash
	}
	return hash
}
