// Package logging builds the per-entry-point zerolog logger.
//
// Every binary appends to <dir>/<script>.log. Lines are rendered by
// zerolog.ConsoleWriter without color so the file reads as
//
//	2024-05-01 10:32:07 INFO batch written batch=3 rows=1000 total=3000
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"healthetl/internal/config"
)

// TimeFormat is the timestamp layout of every log line.
const TimeFormat = "2006-01-02 15:04:05"

// New opens (or creates) the append-only log file for script under cfg.Dir
// and returns a logger writing to it. The returned Closer closes the file.
func New(cfg config.Logging, script string) (zerolog.Logger, io.Closer, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, script+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log %s: %w", path, err)
	}

	var out io.Writer = f
	if cfg.Stderr {
		out = io.MultiWriter(f, os.Stderr)
	}
	return NewWriter(out, cfg.Level), f, nil
}

// NewWriter returns a logger rendering plain text lines to w at level.
func NewWriter(w io.Writer, level string) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: TimeFormat,
		FormatLevel: func(i any) string {
			s, ok := i.(string)
			if !ok || s == "" {
				return "-"
			}
			return strings.ToUpper(s)
		},
	}
	return zerolog.New(cw).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel maps debug|info|warn|error to a zerolog level; anything else
// is info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
