// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/multi"
)

// Destination selects where a routed log line goes.
type Destination int

const (
	Terminal Destination = iota
	File
	Both
)

func (d Destination) String() string {
	switch d {
	case Terminal:
		return "terminal"
	case File:
		return "file"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("Destination(%d)", int(d))
	}
}

// ParseDestination accepts terminal, file or both. An empty string is both.
func ParseDestination(s string) (Destination, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "terminal":
		return Terminal, nil
	case "file":
		return File, nil
	case "", "both":
		return Both, nil
	default:
		return Terminal, fmt.Errorf("unknown log destination %q: must be one of [terminal file both]", s)
	}
}

// Router sends each log call to an explicitly chosen destination. Handlers
// are fixed at construction; nothing is swapped per call.
type Router struct {
	level    log.Level
	loggers  map[Destination]*log.Logger
	file     io.Closer
	filePath string
}

// NewRouter builds a Router writing terminal output to term and, when
// filePath is non-empty, appending file output to filePath. Without a file
// the File and Both destinations write to the terminal only.
func NewRouter(term io.Writer, filePath string, level log.Level) (*Router, error) {
	if term == nil {
		term = os.Stderr
	}
	r := &Router{level: level, filePath: filePath, loggers: map[Destination]*log.Logger{}}

	termHandler := NewCustomHandler(term)
	r.loggers[Terminal] = &log.Logger{Handler: termHandler, Level: level}

	if filePath == "" {
		r.loggers[File] = r.loggers[Terminal]
		r.loggers[Both] = r.loggers[Terminal]
		return r, nil
	}

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:mnd
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	r.file = f

	fileHandler := NewCustomHandler(f)
	r.loggers[File] = &log.Logger{Handler: fileHandler, Level: level}
	r.loggers[Both] = &log.Logger{Handler: multi.New(termHandler, fileHandler), Level: level}

	return r, nil
}

// Entry returns an entry whose output goes to dest.
func (r *Router) Entry(dest Destination) *log.Entry {
	l, ok := r.loggers[dest]
	if !ok {
		l = r.loggers[Terminal]
	}
	return log.NewEntry(l)
}

// Log writes msg at level to dest.
func (r *Router) Log(dest Destination, level log.Level, msg string) {
	e := r.Entry(dest)
	switch level {
	case log.DebugLevel:
		e.Debug(msg)
	case log.InfoLevel:
		e.Info(msg)
	case log.WarnLevel:
		e.Warn(msg)
	default:
		e.Error(msg)
	}
}

// FilePath returns the log file path, if any.
func (r *Router) FilePath() string { return r.filePath }

// Close closes the log file.
func (r *Router) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
