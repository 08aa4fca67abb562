package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/marin-bot/internal/app/service"
	"github.com/jose-valero/marin-bot/internal/domain"
)

// Lo implementa service.DetectorService.
type Detector interface {
	HandleCreate(ctx context.Context, m *discordgo.Message)
	HandleUpdate(ctx context.Context, m *discordgo.Message)
}

// Lo implementa service.StaminaService.
type StaminaReminders interface {
	Remind(ctx context.Context, req service.StaminaRequest) (string, error)
}

// Lo implementa service.SettingsService.
type Settings interface {
	UserSettings(ctx context.Context, userID string) (domain.UserSettings, error)
	SetNotification(ctx context.Context, userID, key string, enabled bool) (string, error)
	GuildSettings(ctx context.Context, guildID string) (domain.GuildSettings, bool, error)
	SetTierRole(ctx context.Context, guildID string, tier int, roleID string) (string, error)
}

// Para /stats.
type TimerStats interface {
	Active() int
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps agrupa todo lo que el Router despacha.
type Deps struct {
	Detector Detector
	Stamina  StaminaReminders
	Settings Settings
	Timers   TimerStats
	DB       Pinger
	Errors   service.ErrorSink
	Messages service.Messages

	// IsOwner habilita /stats y se saltea el chequeo de Manage Roles.
	IsOwner func(userID string) bool
}
