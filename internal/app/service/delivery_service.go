package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jose-valero/marin-bot/internal/domain"
	"github.com/jose-valero/marin-bot/internal/infra/storage"
)

// DeliveryService decide canal vs DM, manda, y siempre borra el recordatorio.
// No reintenta.
type DeliveryService struct {
	store    ReminderStore
	users    UserSettingsRepo
	channels ChannelSender
	dms      DirectMessenger
	errs     ErrorSink
	msgs     Messages
	log      zerolog.Logger
}

func NewDeliveryService(store ReminderStore, users UserSettingsRepo, ch ChannelSender, dm DirectMessenger, errs ErrorSink, msgs Messages, log zerolog.Logger) *DeliveryService {
	return &DeliveryService{
		store:    store,
		users:    users,
		channels: ch,
		dms:      dm,
		errs:     errs,
		msgs:     msgs,
		log:      log.With().Str("component", "delivery").Logger(),
	}
}

func (d *DeliveryService) Deliver(ctx context.Context, id int64) {
	r, err := d.store.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// lo borraron (deleteTimer) antes de vencer
		return
	}
	if err != nil {
		d.log.Error().Err(err).Int64("reminder_id", id).Msg("load reminder")
		d.errs.Report("[ERROR] [delivery] Error triggering notification: " + err.Error())
		return
	}

	defer d.remove(ctx, r.ID)

	settings := d.settingsFor(ctx, r.UserID)
	if !settings.Enabled(r.Type) {
		d.log.Debug().Str("user_id", r.UserID).Str("type", string(r.Type)).Msg("reminder skipped by user settings")
		return
	}
	d.send(ctx, r, settings)
}

func (d *DeliveryService) settingsFor(ctx context.Context, userID string) domain.UserSettings {
	us, err := d.users.Get(ctx, userID)
	if err == nil {
		return us
	}
	if !errors.Is(err, storage.ErrNotFound) {
		d.log.Warn().Err(err).Str("user_id", userID).Msg("user settings unavailable, using defaults")
	}
	return domain.DefaultUserSettings(userID)
}

func (d *DeliveryService) send(ctx context.Context, r domain.Reminder, s domain.UserSettings) {
	l := d.log.With().Int64("reminder_id", r.ID).Str("type", string(r.Type)).Str("user_id", r.UserID).Logger()

	forceDM := r.Type == domain.ReminderRaid || s.DMNotifications
	if !forceDM {
		err := d.channels.SendChannel(ctx, r.ChannelID, r.Message)
		if err == nil {
			l.Info().Str("route", "channel").Str("channel_id", r.ChannelID).Msg("reminder sent")
			return
		}
		l.Warn().Err(err).Str("channel_id", r.ChannelID).Msg("channel send failed, falling back to DM")
	}

	text := r.Message
	if r.Type != domain.ReminderRaid && r.GuildID != "" && r.ChannelID != "" {
		text += d.msgs.Jump(r.GuildID, r.ChannelID)
	}
	if err := d.dms.SendDM(ctx, r.UserID, text); err != nil {
		if domain.Unreachable(err) {
			l.Warn().Err(err).Msg("user unreachable, reminder dropped")
			return
		}
		l.Error().Err(err).Msg("send reminder")
		d.errs.Report("[ERROR] [delivery] Failed to send reminder for user " + r.UserID + " (Type: " + string(r.Type) + "):\n" + err.Error())
		return
	}
	l.Info().Str("route", "dm").Bool("fallback", !forceDM).Msg("reminder sent")
}

func (d *DeliveryService) remove(ctx context.Context, id int64) {
	if _, err := d.store.Delete(ctx, id); err != nil {
		d.log.Error().Err(err).Int64("reminder_id", id).Msg("delete delivered reminder")
		d.errs.Report("[ERROR] [delivery] Error deleting reminder after delivery: " + err.Error())
	}
}
