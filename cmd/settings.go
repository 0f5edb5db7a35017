// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/luthersystems/reval/diagnostic"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Configuration keys, shared by flags, the config file and REVAL_*
// environment variables.
const (
	keyColor         = "color"
	keyLogLevel      = "log-level"
	keyErrorFormat   = "error-format"
	keyTrace         = "trace"
	keyBacktraceRows = "backtrace-rows"
	keyMaxFrames     = "max-frames"
	keyCollapseLimit = "collapse-limit"
)

var settingKeys = []string{
	keyColor,
	keyLogLevel,
	keyErrorFormat,
	keyTrace,
	keyBacktraceRows,
	keyMaxFrames,
	keyCollapseLimit,
}

// Trace backends.
const (
	traceNone       = ""
	traceOtel       = "otel"
	traceOpenCensus = "opencensus"
	traceLog        = "log"
	tracePprof      = "pprof"
)

// settings are the validated configuration of a command.
type settings struct {
	Color         diagnostic.ColorMode
	LogLevel      logrus.Level
	ErrorFormat   diagnostic.Format
	Trace         string
	BacktraceRows int
	MaxFrames     int
	CollapseLimit int
}

// loadSettings reads and validates settings from v.
func loadSettings(v *viper.Viper) (*settings, error) {
	s := &settings{
		Trace:         v.GetString(keyTrace),
		BacktraceRows: v.GetInt(keyBacktraceRows),
		MaxFrames:     v.GetInt(keyMaxFrames),
		CollapseLimit: v.GetInt(keyCollapseLimit),
	}
	var ok bool
	s.Color, ok = diagnostic.ParseColorMode(v.GetString(keyColor))
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q", keyColor, v.GetString(keyColor))
	}
	s.ErrorFormat, ok = diagnostic.ParseFormat(v.GetString(keyErrorFormat))
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q", keyErrorFormat, v.GetString(keyErrorFormat))
	}
	level := v.GetString(keyLogLevel)
	if level == "" {
		level = "warn"
	}
	var err error
	s.LogLevel, err = logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", keyLogLevel, err)
	}
	switch s.Trace {
	case traceNone, traceOtel, traceOpenCensus, traceLog, tracePprof:
	default:
		return nil, fmt.Errorf("invalid %s: %q", keyTrace, s.Trace)
	}
	return s, nil
}

// renderer returns a diagnostic renderer for the settings.
func (s *settings) renderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: s.Color, Format: s.ErrorFormat}
}
