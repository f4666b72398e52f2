// Package logging builds the zerolog loggers used by every service.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// logger fields
const (
	SERVICE  = "svc"
	HOST     = "host"
	OPERATOR = "op"
	REQUEST  = "req_id"
	EXPR     = "expr"
	TARGET   = "target"
	DURATION = "duration_ms"
	STATUS   = "status"
	CALC     = "calc_id"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// ParseLevel maps debug, info, warn and error (any case) to a zerolog level.
// Anything else yields info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger tagged with the service name and hostname.
// A nil w means stderr, rendered for humans when stderr is a terminal.
func New(service, hostname, level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
		if isatty.IsTerminal(os.Stderr.Fd()) {
			w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		}
	}
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str(SERVICE, service).
		Str(HOST, hostname).
		Logger()
}
