package service

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/marin-bot/internal/domain"
)

// Lo implementa internal/infra/storage.ReminderRepo
type ReminderStore interface {
	Upsert(ctx context.Context, spec domain.ReminderSpec) (domain.Reminder, error)
	Get(ctx context.Context, id int64) (domain.Reminder, error)
	FindByKey(ctx context.Context, userID string, t domain.ReminderType) (domain.Reminder, error)
	FindInWindow(ctx context.Context, userID string, t domain.ReminderType, from, to time.Time) (domain.Reminder, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]domain.Reminder, error)
}

// Lo implementa internal/infra/storage.GuildSettingsRepo
type GuildSettingsRepo interface {
	Get(ctx context.Context, guildID string) (domain.GuildSettings, error)
	Upsert(ctx context.Context, gs domain.GuildSettings) error
}

// Lo implementa internal/infra/storage.UserSettingsRepo
type UserSettingsRepo interface {
	Get(ctx context.Context, userID string) (domain.UserSettings, error)
	Upsert(ctx context.Context, us domain.UserSettings) error
}

// Los senders devuelven domain.ErrChannelNotFound / ErrForbidden /
// ErrRecipientBlocked para los casos esperables.
type ChannelSender interface {
	SendChannel(ctx context.Context, channelID, text string) error
}

type DirectMessenger interface {
	SendDM(ctx context.Context, userID, text string) error
}

// Report nunca bloquea.
type ErrorSink interface {
	Report(text string)
}

// Lecturas contra Discord que necesita el detector para resolver usuarios.
type Directory interface {
	FetchMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error)
	RecentMessages(ctx context.Context, channelID string, limit int) ([]*discordgo.Message, error)
	// SearchMember devuelve "" si no hay match.
	SearchMember(ctx context.Context, guildID, query string) (string, error)
}

// Mensajes "en vivo" del detector (no son recordatorios).
type Announcer interface {
	// Announce manda text permitiendo mencionar solo roleIDs.
	Announce(ctx context.Context, channelID, text string, roleIDs []string) error
	// StaminaPrompt manda text con los botones de stamina.
	StaminaPrompt(ctx context.Context, channelID, text string) error
}
