package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/jose-valero/marin-bot/internal/app/extract"
	"github.com/jose-valero/marin-bot/internal/domain"
	"github.com/jose-valero/marin-bot/internal/infra/storage"
)

const (
	staleAfter        = 60 * time.Second
	raidDedupWindow   = 5 * time.Second
	expeditionSameRun = 60 * time.Second
	resendHorizon     = 2 * time.Hour
	raidSpawnCooldown = 30 * time.Minute
	cardDropCooldown  = time.Hour
	spawnScanLimit    = 20
	spawnScanWindow   = 20 * time.Second
)

// TimerSetter es la parte del SchedulerService que usan los detectores.
type TimerSetter interface {
	SetTimer(ctx context.Context, spec domain.ReminderSpec) (domain.Reminder, error)
}

// DetectorService mira los mensajes del bot upstream, saca facts y programa
// recordatorios (o pinguea el rol del boss).
type DetectorService struct {
	timers     TimerSetter
	store      ReminderStore
	guilds     GuildSettingsRepo
	dir        Directory
	ann        Announcer
	errs       ErrorSink
	msgs       Messages
	upstreamID string
	now        func() time.Time
	log        zerolog.Logger
}

func NewDetectorService(timers TimerSetter, store ReminderStore, guilds GuildSettingsRepo, dir Directory, ann Announcer, errs ErrorSink, msgs Messages, upstreamID string, log zerolog.Logger) *DetectorService {
	return &DetectorService{
		timers:     timers,
		store:      store,
		guilds:     guilds,
		dir:        dir,
		ann:        ann,
		errs:       errs,
		msgs:       msgs,
		upstreamID: upstreamID,
		now:        time.Now,
		log:        log.With().Str("component", "detector").Logger(),
	}
}

// SetClock es para tests.
func (s *DetectorService) SetClock(now func() time.Time) { s.now = now }

// HandleCreate corre detectores de timers y el ping de boss.
func (s *DetectorService) HandleCreate(ctx context.Context, m *discordgo.Message) {
	if !s.accept(m) {
		return
	}
	s.processTimers(ctx, m)
	s.processBoss(ctx, m)
}

// HandleUpdate: el upstream edita la vista (raid, expediciones); el boss no se repite.
func (s *DetectorService) HandleUpdate(ctx context.Context, m *discordgo.Message) {
	if !s.accept(m) {
		return
	}
	s.processTimers(ctx, m)
}

func (s *DetectorService) accept(m *discordgo.Message) bool {
	if m == nil || m.GuildID == "" || m.Author == nil || m.Author.ID != s.upstreamID {
		return false
	}
	return s.now().Sub(m.Timestamp) <= staleAfter
}

func (s *DetectorService) processTimers(ctx context.Context, m *discordgo.Message) {
	if extract.StaminaShortage(m.Content) {
		s.staminaPrompt(ctx, m)
	}

	if rf, ok := extract.RaidFatigue(m); ok {
		s.raidFatigue(ctx, m, rf)
	}

	if f, ok := extract.Expedition(m); ok {
		switch v := f.(type) {
		case domain.ExpeditionResend:
			s.expeditionResend(ctx, m)
		case domain.ExpeditionStatus:
			s.expeditionStatus(ctx, m, v)
		}
		return
	}

	if extract.RaidSpawned(m) {
		s.raidSpawn(ctx, m)
		return
	}

	if extract.CardDropped(m) {
		s.cardDrop(ctx, m)
	}
}

func (s *DetectorService) staminaPrompt(ctx context.Context, m *discordgo.Message) {
	userID := interactionUser(m)
	if userID == "" && len(m.Mentions) > 0 && m.Mentions[0] != nil {
		userID = m.Mentions[0].ID
	}
	if userID == "" {
		if ref := s.referenced(ctx, m); ref != nil && ref.Author != nil {
			userID = ref.Author.ID
		}
	}
	if userID == "" {
		return
	}
	if err := s.ann.StaminaPrompt(ctx, m.ChannelID, s.msgs.StaminaPrompt(userID)); err != nil {
		s.sendFailed(err, "stamina message", m.ChannelID)
	}
}

func (s *DetectorService) raidFatigue(ctx context.Context, m *discordgo.Message, rf domain.RaidFatigue) {
	now := s.now()
	for _, e := range rf.Entries {
		due := now.Add(e.Fatigue)
		_, err := s.store.FindInWindow(ctx, e.UserID, domain.ReminderRaid, due.Add(-raidDedupWindow), due.Add(raidDedupWindow))
		if err == nil {
			// mismo evento de fatiga visto otra vez (el upstream edita la vista)
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			s.fail(err, "Failed to look up raid reminder")
			continue
		}
		s.set(ctx, domain.ReminderSpec{
			UserID:    e.UserID,
			GuildID:   m.GuildID,
			ChannelID: m.ChannelID,
			RemindAt:  due,
			Type:      domain.ReminderRaid,
			Message:   s.msgs.Reminder(domain.ReminderRaid, e.UserID, 0),
		}, "Failed to create reminder for raid fatigue")
	}
}

func (s *DetectorService) expeditionResend(ctx context.Context, m *discordgo.Message) {
	userID := interactionUser(m)
	if userID == "" {
		if ref := s.referenced(ctx, m); ref != nil {
			userID = interactionUser(ref)
			if userID == "" {
				if f, ok := extract.Expedition(ref); ok {
					if st, ok := f.(domain.ExpeditionStatus); ok {
						userID = s.member(ctx, m.GuildID, st.Username)
					}
				}
			}
		}
	}
	if userID == "" {
		s.log.Warn().Str("message_id", m.ID).Msg("expedition resend without a resolvable user")
		return
	}
	s.set(ctx, domain.ReminderSpec{
		UserID:    userID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		RemindAt:  s.now().Add(resendHorizon),
		Type:      domain.ReminderExpedition,
		Message:   s.msgs.Reminder(domain.ReminderExpedition, userID, 0),
	}, "Failed to set timer for expedition claim")
}

func (s *DetectorService) expeditionStatus(ctx context.Context, m *discordgo.Message, st domain.ExpeditionStatus) {
	userID := interactionUser(m)
	if userID == "" {
		if ref := s.referenced(ctx, m); ref != nil && ref.Author != nil && !ref.Author.Bot {
			userID = ref.Author.ID
		}
	}
	if userID == "" && st.Username != "" {
		userID = s.member(ctx, m.GuildID, st.Username)
	}
	if userID == "" {
		s.errs.Report("[WARN] Could not determine a userId for the expedition message of " + st.Username)
		return
	}

	card, ok := st.Longest()
	if !ok {
		return
	}
	due := s.now().Add(card.Remaining)

	prev, err := s.store.FindByKey(ctx, userID, domain.ReminderExpedition)
	switch {
	case err == nil:
		if absDuration(prev.RemindAt.Sub(due)) < expeditionSameRun {
			return
		}
	case !errors.Is(err, storage.ErrNotFound):
		s.fail(err, "Failed to look up expedition reminder")
		return
	}

	s.set(ctx, domain.ReminderSpec{
		UserID:    userID,
		GuildID:   m.GuildID,
		CardID:    card.CardID,
		ChannelID: m.ChannelID,
		RemindAt:  due,
		Type:      domain.ReminderExpedition,
		Message:   s.msgs.Reminder(domain.ReminderExpedition, userID, 0),
	}, "Failed to create reminder for expedition")
}

func (s *DetectorService) raidSpawn(ctx context.Context, m *discordgo.Message) {
	userID := interactionUser(m)
	if userID == "" {
		recent, err := s.dir.RecentMessages(ctx, m.ChannelID, spawnScanLimit)
		if err != nil {
			s.fail(err, "Failed to fetch messages for raid spawn check")
		}
		now := s.now()
		for _, rm := range recent {
			if rm == nil || rm.Author == nil || rm.Author.Bot {
				continue
			}
			if extract.RaidSpawnRequest(rm.Content) && now.Sub(rm.Timestamp) < spawnScanWindow {
				userID = rm.Author.ID
				break
			}
		}
	}
	if userID == "" {
		s.errs.Report("[WARN] Could not determine a userId for the raid spawn message. Message ID: " + m.ID)
		return
	}
	s.set(ctx, domain.ReminderSpec{
		UserID:    userID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		RemindAt:  s.now().Add(raidSpawnCooldown),
		Type:      domain.ReminderRaidSpawn,
		Message:   s.msgs.Reminder(domain.ReminderRaidSpawn, userID, 0),
	}, "Failed to create reminder for raid spawn")
}

func (s *DetectorService) cardDrop(ctx context.Context, m *discordgo.Message) {
	userID, ok := extract.CardDropUser(m)
	if !ok {
		s.errs.Report("[WARN] Card drop: could not extract user ID from footer. Message ID: " + m.ID)
		return
	}
	s.set(ctx, domain.ReminderSpec{
		UserID:    userID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		RemindAt:  s.now().Add(cardDropCooldown),
		Type:      domain.ReminderCardDrop,
		Message:   s.msgs.Reminder(domain.ReminderCardDrop, userID, 0),
	}, "Failed to create reminder for card drop")
}

func (s *DetectorService) processBoss(ctx context.Context, m *discordgo.Message) {
	boss, ok := extract.Boss(m)
	if !ok {
		return
	}
	gs, err := s.guilds.Get(ctx, m.GuildID)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.fail(err, "Failed to load guild settings")
		return
	}
	role := gs.RoleForTier(boss.Tier)
	if role == "" {
		return
	}
	if err := s.ann.Announce(ctx, m.ChannelID, s.msgs.Boss(role, boss), []string{role}); err != nil {
		s.sendFailed(err, "boss ping", m.ChannelID)
		return
	}
	s.log.Info().Str("guild_id", m.GuildID).Str("boss", boss.Name).Int("tier", boss.Tier).Msg("boss ping sent")
}

// set programa y reporta errores salvo el duplicado (benigno).
func (s *DetectorService) set(ctx context.Context, spec domain.ReminderSpec, what string) {
	r, err := s.timers.SetTimer(ctx, spec)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return
		}
		s.fail(err, what)
		return
	}
	s.log.Debug().Int64("reminder_id", r.ID).Str("type", string(r.Type)).Str("user_id", r.UserID).
		Time("remind_at", r.RemindAt).Msg("reminder scheduled")
}

func (s *DetectorService) fail(err error, what string) {
	s.log.Error().Err(err).Msg(what)
	s.errs.Report("[ERROR] " + what + ": " + err.Error())
}

func (s *DetectorService) sendFailed(err error, what, channelID string) {
	if domain.Unreachable(err) {
		s.log.Warn().Err(err).Str("channel_id", channelID).Msg("missing permissions to send " + what)
		return
	}
	s.fail(err, "Failed to send "+what)
}

func (s *DetectorService) referenced(ctx context.Context, m *discordgo.Message) *discordgo.Message {
	if m.MessageReference == nil || m.MessageReference.MessageID == "" {
		return nil
	}
	channelID := m.MessageReference.ChannelID
	if channelID == "" {
		channelID = m.ChannelID
	}
	ref, err := s.dir.FetchMessage(ctx, channelID, m.MessageReference.MessageID)
	if err != nil {
		s.log.Warn().Err(err).Str("message_id", m.MessageReference.MessageID).Msg("fetch referenced message")
		return nil
	}
	return ref
}

func (s *DetectorService) member(ctx context.Context, guildID, username string) string {
	id, err := s.dir.SearchMember(ctx, guildID, username)
	if err != nil {
		s.fail(err, "Failed to fetch member for username "+username)
		return ""
	}
	if id == "" {
		s.errs.Report("[WARN] Could not find a guild member with username: " + username)
	}
	return id
}

func interactionUser(m *discordgo.Message) string {
	if m.InteractionMetadata != nil && m.InteractionMetadata.User != nil {
		return m.InteractionMetadata.User.ID
	}
	if m.Interaction != nil && m.Interaction.User != nil {
		return m.Interaction.User.ID
	}
	return ""
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
