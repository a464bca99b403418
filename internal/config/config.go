// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the standard locations.
const FileName = "envcache.yaml"

var (
	validOutputs      = []string{"text", "json", "yaml"}
	validPolicies     = []string{"fail", "recompute"}
	validDestinations = []string{"terminal", "file", "both"}
)

// EnvelopeConfig holds envelope computation defaults.
type EnvelopeConfig struct {
	K          int      `yaml:"k"`
	Extensions []string `yaml:"extensions"`
}

// LogConfig holds routed logging settings.
type LogConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	Destination string `yaml:"destination"`
}

// ColorsConfig holds the colors used for text tables.
type ColorsConfig struct {
	Title string `yaml:"title"`
	Even  string `yaml:"even"`
	Odd   string `yaml:"odd"`
}

// Type is the typed contents of envcache.yaml.
type Type struct {
	// Source is the file the values were loaded from; empty for defaults.
	Source string `yaml:"-"`

	CacheDir  string         `yaml:"cache_dir"`
	Compress  bool           `yaml:"compress"`
	OnCorrupt string         `yaml:"on_corrupt"`
	Output    string         `yaml:"output"`
	Titles    bool           `yaml:"titles"`
	Color     bool           `yaml:"color"`
	Padding   int            `yaml:"padding"`
	Envelope  EnvelopeConfig `yaml:"envelope"`
	Log       LogConfig      `yaml:"log"`
	Colors    ColorsConfig   `yaml:"colors"`
}

// Default returns the built-in configuration.
func Default() Type {
	return Type{
		OnCorrupt: "fail",
		Output:    "text",
		Envelope: EnvelopeConfig{
			K:          201,
			Extensions: []string{".wav"},
		},
		Log: LogConfig{
			Level:       "info",
			Destination: "both",
		},
		Colors: ColorsConfig{
			Title: "#f6be00",
			Even:  "#ffffff",
			Odd:   "#00c8f0",
		},
	}
}

// Load reads the config file named by ENVCACHE_CFG, or the first envcache.yaml
// in the standard locations, over the defaults. When no file is found the
// defaults are returned with an empty Source.
func Load() (Type, error) {
	cfg := Default()

	path, err := getConfigPath()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Default(), fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.Source = path

	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (t Type) Validate() error {
	if t.Envelope.K < 1 {
		return fmt.Errorf("envelope.k must be at least 1, got %d", t.Envelope.K)
	}
	if !oneOf(t.OnCorrupt, validPolicies) {
		return fmt.Errorf("on_corrupt must be one of %v", validPolicies)
	}
	if !oneOf(t.Output, validOutputs) {
		return fmt.Errorf("output must be one of %v", validOutputs)
	}
	if t.Log.Destination != "" && !oneOf(t.Log.Destination, validDestinations) {
		return fmt.Errorf("log.destination must be one of %v", validDestinations)
	}
	if t.Padding < 0 {
		return fmt.Errorf("padding must not be negative, got %d", t.Padding)
	}
	return nil
}

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if v == s {
			return true
		}
	}
	return false
}

func getConfigPath() (string, error) {
	if p, ok := os.LookupEnv("ENVCACHE_CFG"); ok && p != "" {
		info, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("config file not found: %s", p)
		}
		if info.IsDir() {
			return "", fmt.Errorf("ENVCACHE_CFG points to a directory: %s", p)
		}
		return p, nil
	}

	var candidates []string = []string{
		os.Getenv("XDG_CONFIG_HOME"),
		os.Getenv("APPDATA"),
		os.Getenv("HOME"),
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		file := filepath.Join(c, FileName)
		if fileInfo, err := os.Stat(file); err == nil {
			if !fileInfo.IsDir() {
				log.Debugf("using config file: %s", file)
				return file, nil
			}
		}
	}
	return "", nil
}
