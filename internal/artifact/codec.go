// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts artifacts to and from the bytes stored in an entry. The cache
// never looks inside those bytes.
type Codec[T any] interface {
	// Ext is the file extension of entries written with this codec, without
	// the leading dot.
	Ext() string
	Marshal(v T) ([]byte, error)
	Unmarshal(data []byte) (T, error)
}

// MsgpackCodec stores artifacts as a single MessagePack value.
type MsgpackCodec[T any] struct{}

func (MsgpackCodec[T]) Ext() string { return "msgpack" }

func (MsgpackCodec[T]) Marshal(v T) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes exactly one value. Empty input and trailing bytes are
// errors so a truncated or appended file never passes as valid.
func (MsgpackCodec[T]) Unmarshal(data []byte) (T, error) {
	var v T
	r := bytes.NewReader(data)
	if err := msgpack.NewDecoder(r).Decode(&v); err != nil {
		return v, err
	}
	if r.Len() != 0 {
		return v, fmt.Errorf("%d trailing bytes after value", r.Len())
	}
	return v, nil
}

// ZstdCodec compresses the output of Inner with zstd.
type ZstdCodec[T any] struct {
	Inner Codec[T]
}

func (z ZstdCodec[T]) Ext() string { return z.Inner.Ext() + ".zst" }

func (z ZstdCodec[T]) Marshal(v T) ([]byte, error) {
	raw, err := z.Inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(raw); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (z ZstdCodec[T]) Unmarshal(data []byte) (T, error) {
	var zero T
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return zero, err
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return zero, fmt.Errorf("failed to decompress: %w", err)
	}
	return z.Inner.Unmarshal(raw)
}

// NewCodec returns the msgpack codec, wrapped in zstd when compress is set.
func NewCodec[T any](compress bool) Codec[T] {
	var c Codec[T] = MsgpackCodec[T]{}
	if compress {
		c = ZstdCodec[T]{Inner: c}
	}
	return c
}
