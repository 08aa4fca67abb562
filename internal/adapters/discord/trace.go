package discord

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// step abre un trace con id propio; el func devuelto loguea la duración.
func step(log zerolog.Logger, label string) (zerolog.Logger, func()) {
	start := time.Now()
	l := log.With().Str("trace_id", uuid.NewString()).Str("step", label).Logger()
	return l, func() {
		l.Debug().Dur("took", time.Since(start)).Msg("trace")
	}
}
