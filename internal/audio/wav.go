// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrNotWAV is returned for files that are not RIFF/WAVE PCM.
var ErrNotWAV = errors.New("not a valid WAV file")

// Waveform holds de-interleaved samples scaled to [-1, 1].
type Waveform struct {
	SampleRate int
	BitDepth   int
	Channels   [][]float64
}

// Len returns the number of frames.
func (w *Waveform) Len() int {
	if len(w.Channels) == 0 {
		return 0
	}
	return len(w.Channels[0])
}

// LoadWAV decodes the PCM WAV file at path.
func LoadWAV(path string) (*Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrNotWAV, path)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	numChans := int(d.NumChans)
	bitDepth := int(d.BitDepth)
	if numChans < 1 || bitDepth < 1 {
		return nil, fmt.Errorf("%w: %s has %d channels at %d bits", ErrNotWAV, path, numChans, bitDepth)
	}

	scale := math.Ldexp(1, bitDepth-1)
	offset := pcmOffset(bitDepth)
	frames := len(buf.Data) / numChans
	channels := make([][]float64, numChans)
	for c := range channels {
		channels[c] = make([]float64, frames)
	}
	for i := 0; i < frames*numChans; i++ {
		channels[i%numChans][i/numChans] = float64(buf.Data[i]-offset) / scale
	}

	return &Waveform{
		SampleRate: int(d.SampleRate),
		BitDepth:   bitDepth,
		Channels:   channels,
	}, nil
}

// WriteWAV encodes w as PCM at w.BitDepth, defaulting to 16 bits. Samples are
// clipped to [-1, 1].
func WriteWAV(path string, w *Waveform) error {
	if len(w.Channels) == 0 {
		return errors.New("waveform has no channels")
	}
	bitDepth := w.BitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	numChans := len(w.Channels)
	maxVal := math.Ldexp(1, bitDepth-1) - 1
	offset := pcmOffset(bitDepth)
	data := make([]int, 0, w.Len()*numChans)
	for i := 0; i < w.Len(); i++ {
		for c := 0; c < numChans; c++ {
			v := math.Max(-1, math.Min(1, w.Channels[c][i]))
			data = append(data, int(math.Round(v*maxVal))+offset)
		}
	}

	enc := wav.NewEncoder(f, w.SampleRate, bitDepth, numChans, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: numChans, SampleRate: w.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

// pcmOffset is the zero level of stored samples. 8-bit PCM is unsigned and
// centered on 128; wider depths are signed.
func pcmOffset(bitDepth int) int {
	if bitDepth == 8 { //nolint:mnd
		return 128 //nolint:mnd
	}
	return 0
}
