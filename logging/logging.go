/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package logging

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Log source tags used in structured logger contexts.
const (
	SourceApp        = "app"
	SourceWeb        = "web"
	SourceWebRequest = "web_request"
	SourceDB         = "db"
	SourceGrowth     = "growth"
)

// Environment variables read once by Init. Loggers are derived at package
// init, so neither setting changes after the base logger exists.
const (
	LevelEnvVar  = "SPROUT_LOG_LEVEL"
	FormatEnvVar = "SPROUT_LOG_FORMAT"
)

var (
	initOnce   sync.Once
	baseLogger *log.Logger
)

// Init configures the base logger and stdlib log output.
func Init() {
	initOnce.Do(func() {
		baseLogger = newBaseLogger(os.Stdout, os.Getenv(LevelEnvVar), os.Getenv(FormatEnvVar))

		stdlog.SetFlags(0)
		stdlog.SetOutput(baseLogger.With("source", SourceApp).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel}).Writer())
	})
}

func newBaseLogger(w io.Writer, level, format string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		TimeFunction:    log.NowUTC,
		TimeFormat:      time.RFC3339Nano,
		Level:           levelFromEnv(level),
		ReportTimestamp: true,
		Formatter:       formatterFromEnv(format),
	})
}

// Logger returns a structured logger tagged with the provided source.
func Logger(source string) *log.Logger {
	Init()
	return baseLogger.With("source", source)
}

// StdLogger returns a stdlib logger that writes through the base logger.
func StdLogger(source string) *stdlog.Logger {
	Init()
	return baseLogger.With("source", source).StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
}

func levelFromEnv(value string) log.Level {
	if value == "" {
		return log.DebugLevel
	}

	level, err := log.ParseLevel(value)
	if err != nil {
		return log.DebugLevel
	}

	return level
}

// formatterFromEnv defaults to logfmt.
func formatterFromEnv(value string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "json":
		return log.JSONFormatter
	case "text":
		return log.TextFormatter
	default:
		return log.LogfmtFormatter
	}
}
