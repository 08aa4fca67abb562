package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Presence mantiene el "Watching Marin bot in N servers" al día.
type Presence struct {
	s   *discordgo.Session
	c   *cron.Cron
	log zerolog.Logger
}

func NewPresence(s *discordgo.Session, log zerolog.Logger) *Presence {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Presence{
		s:   s,
		c:   cron.New(cron.WithParser(parser)),
		log: log.With().Str("component", "presence").Logger(),
	}
}

// Start programa spec (ej. "@every 5m") y no actualiza nada hasta el primer tick;
// llamar a Update en el READY.
func (p *Presence) Start(spec string) error {
	if _, err := p.c.AddFunc(spec, p.Update); err != nil {
		return fmt.Errorf("presence spec %q: %w", spec, err)
	}
	p.c.Start()
	return nil
}

func (p *Presence) Stop() { <-p.c.Stop().Done() }

func (p *Presence) Update() {
	n := 0
	if p.s.State != nil {
		p.s.State.RLock()
		n = len(p.s.State.Guilds)
		p.s.State.RUnlock()
	}
	if err := p.s.UpdateWatchStatus(0, PresenceText(n)); err != nil {
		p.log.Warn().Err(err).Msg("failed to update presence")
	}
}

func PresenceText(guilds int) string {
	return fmt.Sprintf("Marin bot in %d servers", guilds)
}
