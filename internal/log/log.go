// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides the small leveled-logging interface used throughout
// the classfile codec, in the style of go-kratos/kratos's log package: a
// minimal Logger interface plus a StdLogger backed by the standard log
// package, a level Filter, and a Helper that adds printf-style convenience
// methods on top of any Logger.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level is a logging severity.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every diagnostic call in this module writes
// through. A caller may supply their own implementation to route class-file
// parsing diagnostics into an existing logging pipeline.
type Logger interface {
	Log(level Level, msg string) error
}

// stdLogger writes to an underlying io.Writer via the standard log package.
type stdLogger struct {
	log *log.Logger
}

// NewStdLogger returns a Logger that writes timestamped lines to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{log: log.New(w, "", log.LstdFlags)}
}

func (l *stdLogger) Log(level Level, msg string) error {
	l.log.Printf("[%s] %s", level, msg)
	return nil
}

// Filter wraps a Logger and drops any record below a configured level.
type Filter struct {
	logger Logger
	level  Level
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// FilterLevel sets the minimum level a Filter passes through.
func FilterLevel(level Level) FilterOption {
	return func(f *Filter) { f.level = level }
}

// NewFilter returns a Logger that forwards to logger only records at or
// above the configured level (LevelInfo by default).
func NewFilter(logger Logger, opts ...FilterOption) Logger {
	f := &Filter{logger: logger, level: LevelInfo}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Filter) Log(level Level, msg string) error {
	if level < f.level {
		return nil
	}
	return f.logger.Log(level, msg)
}

// Helper adds printf-style convenience methods on top of a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger with printf-style convenience methods.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(level, fmt.Sprintf(format, args...))
}

func (h *Helper) Debugf(format string, args ...interface{}) { h.log(LevelDebug, format, args...) }
func (h *Helper) Infof(format string, args ...interface{})  { h.log(LevelInfo, format, args...) }
func (h *Helper) Warnf(format string, args ...interface{})  { h.log(LevelWarn, format, args...) }
func (h *Helper) Errorf(format string, args ...interface{}) { h.log(LevelError, format, args...) }

// NewDefaultHelper returns the Helper used when no caller-supplied Logger
// is given to NewFromBytes/NewFromFile: stderr, filtered to warnings and above.
func NewDefaultHelper() *Helper {
	base := NewStdLogger(os.Stderr)
	return NewHelper(NewFilter(base, FilterLevel(LevelWarn)))
}
