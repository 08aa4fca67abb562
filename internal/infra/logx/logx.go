// Package logx arma el zerolog.Logger del proceso: consola legible o JSON,
// nivel configurable y, opcionalmente, una copia JSON en archivo (auditoría
// de recordatorios enviados).
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

type Config struct {
	Level  string // debug|info|warn|error
	Format string // console|json
	File   string // vacío = sin archivo
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New devuelve el logger y un Closer para el archivo (no-op si no hay).
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	return newWith(cfg, os.Stdout)
}

func newWith(cfg Config, stdout io.Writer) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = consoleTimeFormat
	zerolog.ErrorFieldName = "err"

	var out io.Writer = stdout
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: stdout, TimeFormat: consoleTimeFormat}
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, f)
		closer = f
	}

	l := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return l, closer, nil
}

// ParseLevel acepta los nombres de zerolog (y "warning"); default info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
