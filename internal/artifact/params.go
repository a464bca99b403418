// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Params is a set of named scalar parameters that affect a computation. Every
// entry participates in the cache key.
type Params map[string]any

// Canonical renders p as name=<tag>:<value> pairs sorted by name and joined by
// ",". The type tag keeps 1, 1.0, true and "1" apart.
func (p Params) Canonical() (string, error) {
	names := make([]string, 0, len(p))
	for name := range p {
		if err := validName(name); err != nil {
			return "", err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		v, err := scalar(p[name])
		if err != nil {
			return "", fmt.Errorf("%w %q: %v", ErrInvalidParam, name, err)
		}
		parts = append(parts, name+"="+v)
	}

	return strings.Join(parts, ","), nil
}

// Int returns the named parameter as an int64 when it holds any integer kind.
func (p Params) Int(name string) (int64, bool) {
	v, ok := p[name]
	if !ok || v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > 1<<63-1 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidParam)
	}
	if strings.ContainsAny(name, "=,/\\") {
		return fmt.Errorf("%w: name %q contains a reserved character", ErrInvalidParam, name)
	}
	return nil
}

// scalar serializes a single value with its type tag.
func scalar(v any) (string, error) {
	if v == nil {
		return "", fmt.Errorf("nil value")
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return "b:" + strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "i:" + strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "u:" + strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return "f:" + strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return "f:" + strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	case reflect.String:
		return "s:" + strconv.Quote(rv.String()), nil
	default:
		return "", fmt.Errorf("unsupported type %T", v)
	}
}
