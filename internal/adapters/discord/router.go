package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Intents que necesita el bot: guilds (guía + presencia), mensajes del
// upstream y su contenido (los detectores leen content/embeds/componentes).
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent

// Tiempo máximo para procesar un evento de mensaje.
const eventTimeout = 15 * time.Second

type Router struct {
	s    *discordgo.Session
	deps Deps
	log  zerolog.Logger

	clickLimiter *userLimiter
	started      time.Time

	// guilds que ya estaban en el READY; su GuildCreate no es un join nuevo.
	mu      sync.Mutex
	initial map[string]bool
	onReady func()
}

func NewRouter(s *discordgo.Session, deps Deps, log zerolog.Logger) *Router {
	if deps.IsOwner == nil {
		deps.IsOwner = func(string) bool { return false }
	}
	return &Router{
		s:            s,
		deps:         deps,
		log:          log.With().Str("component", "discord").Logger(),
		clickLimiter: newUserLimiter(2 * time.Second),
		started:      time.Now(),
		initial:      map[string]bool{},
	}
}

// OnReady corre f en cada READY (reconexiones incluidas).
func (r *Router) OnReady(f func()) { r.onReady = f }

// Register crea los comandos globales.
func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for _, cmd := range Commands {
		if _, err := r.s.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(r.handleReady)
	r.s.AddHandler(r.handleGuildCreate)

	r.s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		defer r.recoverEvent("message_create")
		r.deps.Detector.HandleCreate(ctx, m.Message)
	})

	r.s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageUpdate) {
		if m.Message == nil {
			return
		}
		// los updates parciales pueden venir sin autor
		if m.Author == nil && m.BeforeUpdate != nil {
			m.Author = m.BeforeUpdate.Author
		}
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		defer r.recoverEvent("message_update")
		r.deps.Detector.HandleUpdate(ctx, m.Message)
	})

	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		switch ic.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleSlashCommand(s, ic)
		case discordgo.InteractionMessageComponent:
			r.handleMessageComponent(s, ic)
		}
	})
}

func (r *Router) handleReady(s *discordgo.Session, ev *discordgo.Ready) {
	r.mu.Lock()
	for _, g := range ev.Guilds {
		r.initial[g.ID] = true
	}
	r.mu.Unlock()

	r.log.Info().Str("user", ev.User.Username).Int("guilds", len(ev.Guilds)).Msg("bot logged in")
	if r.onReady != nil {
		r.onReady()
	}
}

// isNewGuild devuelve true solo para guilds que no estaban en el READY.
func (r *Router) isNewGuild(guildID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initial[guildID] {
		delete(r.initial, guildID)
		return false
	}
	return true
}

func (r *Router) recoverEvent(what string) {
	if rec := recover(); rec != nil {
		r.log.Error().Interface("panic", rec).Str("event", what).Msg("panic handling event")
		r.deps.Errors.Report("[ERROR] panic handling " + what)
	}
}
