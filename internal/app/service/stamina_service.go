package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/jose-valero/marin-bot/internal/domain"
	"github.com/jose-valero/marin-bot/internal/infra/storage"
)

// Stamina del upstream: máximo 50, se regenera 1 punto cada 2 minutos.
const (
	maxStamina      = 50
	minutesPerPoint = 2
)

// StaminaDelay es cuánto tarda en llegar a percent% desde 0.
func StaminaDelay(percent int) time.Duration {
	return time.Duration(maxStamina*percent*minutesPerPoint/100) * time.Minute
}

type StaminaRequest struct {
	UserID    string
	GuildID   string
	ChannelID string
	Percent   int
}

type StaminaService struct {
	timers TimerSetter
	store  ReminderStore
	msgs   Messages
	now    func() time.Time
	log    zerolog.Logger
}

func NewStaminaService(timers TimerSetter, store ReminderStore, msgs Messages, log zerolog.Logger) *StaminaService {
	return &StaminaService{
		timers: timers,
		store:  store,
		msgs:   msgs,
		now:    time.Now,
		log:    log.With().Str("component", "stamina").Logger(),
	}
}

func (s *StaminaService) SetClock(now func() time.Time) { s.now = now }

// Remind programa el recordatorio de stamina (pisa el anterior si había) y
// devuelve el texto de confirmación para el usuario.
func (s *StaminaService) Remind(ctx context.Context, req StaminaRequest) (string, error) {
	if req.Percent <= 0 || req.Percent > 100 {
		return "", fmt.Errorf("invalid stamina percent %d", req.Percent)
	}

	overwritten := false
	if _, err := s.store.FindByKey(ctx, req.UserID, domain.ReminderStamina); err == nil {
		overwritten = true
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", &PersistenceError{Op: "find", Err: err}
	}

	now := s.now()
	due := now.Add(StaminaDelay(req.Percent))
	if _, err := s.timers.SetTimer(ctx, domain.ReminderSpec{
		UserID:    req.UserID,
		GuildID:   req.GuildID,
		ChannelID: req.ChannelID,
		RemindAt:  due,
		Type:      domain.ReminderStamina,
		Message:   s.msgs.Reminder(domain.ReminderStamina, req.UserID, req.Percent),
	}); err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", req.UserID).Int("percent", req.Percent).Str("channel_id", req.ChannelID).
		Bool("overwritten", overwritten).Msg("stamina reminder set")

	tpl := s.msgs.Stamina.Set
	if overwritten {
		tpl = s.msgs.Stamina.Overwritten
	}
	eta := humanize.RelTime(due, now, "ago", "from now")
	return render(tpl, "percent", fmt.Sprint(req.Percent), "eta", eta), nil
}
