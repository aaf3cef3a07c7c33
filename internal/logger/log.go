// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSize    = 32 // MB
	logFileMaxBackups = 3
	logFileMaxAge     = 14 // days
)

// Logger wraps a slog.Logger.
type Logger struct {
	*slog.Logger
}

// New returns a text Logger writing to stderr.
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a text Logger writing to the given io.Writer.
func NewLogger(level slog.Level, output io.Writer) *Logger {
	return &Logger{slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))}
}

// NewFileLogger returns a JSON Logger that writes into a size-rotated log file at path.
func NewFileLogger(level slog.Level, path string) *Logger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logFileMaxSize,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAge,
		Compress:   true,
	}
	return &Logger{slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))}
}

// Println logs the given values at error level. It satisfies the recovery logger interface of
// gorilla/handlers.
func (l *Logger) Println(v ...any) {
	l.Error(fmt.Sprint(v...))
}

// Err returns the error as slog attribute.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}
