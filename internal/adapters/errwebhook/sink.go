package errwebhook

import "github.com/rs/zerolog"

// LogSink es el ErrorSink cuando no hay webhook configurado.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) LogSink {
	return LogSink{log: log.With().Str("component", "errors").Logger()}
}

func (s LogSink) Report(text string) { s.log.Error().Msg(text) }
