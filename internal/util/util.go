// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ParseScalar converts s to an int, a float64 or a bool when it looks like
// one, and returns it unchanged otherwise. Only True/true and False/false are
// treated as bools.
func ParseScalar(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "True", "true":
		return true
	case "False", "false":
		return false
	}
	return s
}

// ParseParam splits a name=value spec and parses the value with ParseScalar.
func ParseParam(spec string) (string, any, error) {
	name, value, ok := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid param %q: must be name=value", spec)
	}
	return name, ParseScalar(strings.TrimSpace(value)), nil
}

// ListFilesDeep walks dir and returns every regular file beneath it, sorted.
// When exts is non-empty only files with one of those extensions are kept;
// the comparison ignores case and a missing leading dot.
func ListFilesDeep(dir string, fullPaths bool, exts ...string) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want[e] = true
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if len(want) > 0 && !want[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if fullPaths {
			files = append(files, path)
		} else {
			files = append(files, d.Name())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

// ExpandSources returns args with every directory replaced by the matching
// files beneath it. Plain files are kept as given, in order.
func ExpandSources(args []string, exts ...string) ([]string, error) {
	var out []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, fmt.Errorf("failed to stat source: %w", err)
		}
		if !info.IsDir() {
			out = append(out, a)
			continue
		}
		files, err := ListFilesDeep(a, true, exts...)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}
