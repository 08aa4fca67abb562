package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jose-valero/marin-bot/internal/domain"
	"github.com/jose-valero/marin-bot/internal/infra/storage"
)

// NotificationKeyDM es la clave de /notifications set para mandar todo por DM.
const NotificationKeyDM = "dmNotifications"

type SettingsService struct {
	guilds GuildSettingsRepo
	users  UserSettingsRepo
}

func NewSettingsService(guilds GuildSettingsRepo, users UserSettingsRepo) *SettingsService {
	return &SettingsService{guilds: guilds, users: users}
}

// UserSettings: sin fila = defaults.
func (s *SettingsService) UserSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	us, err := s.users.Get(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.DefaultUserSettings(userID), nil
	}
	return us, err
}

// SetNotification aplica el cambio y devuelve la respuesta para el usuario.
func (s *SettingsService) SetNotification(ctx context.Context, userID, key string, enabled bool) (string, error) {
	patch, ok := domain.PatchFor(key, enabled)
	if !ok {
		return "❌ Unknown notification type.", nil
	}
	cur, err := s.UserSettings(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := s.users.Upsert(ctx, cur.Apply(patch)); err != nil {
		return "", err
	}

	if key == NotificationKeyDM {
		if enabled {
			return "You will now receive the reminders in your DMs.", nil
		}
		return "You will now stop receiving the reminders in your DMs.", nil
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return fmt.Sprintf("Notifications for **%s** have been **%s**.", key, state), nil
}

// GuildSettings devuelve (settings, existe, error).
func (s *SettingsService) GuildSettings(ctx context.Context, guildID string) (domain.GuildSettings, bool, error) {
	gs, err := s.guilds.Get(ctx, guildID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.GuildSettings{GuildID: guildID}, false, nil
	}
	if err != nil {
		return domain.GuildSettings{}, false, err
	}
	return gs, true, nil
}

// SetTierRole setea (o borra, con roleID "") el rol de un tier 1..3.
func (s *SettingsService) SetTierRole(ctx context.Context, guildID string, tier int, roleID string) (string, error) {
	var patch domain.GuildSettingsPatch
	switch tier {
	case 1:
		patch.Tier1RoleID = &roleID
	case 2:
		patch.Tier2RoleID = &roleID
	case 3:
		patch.Tier3RoleID = &roleID
	default:
		return "❌ Tier must be 1, 2 or 3.", nil
	}

	cur, _, err := s.GuildSettings(ctx, guildID)
	if err != nil {
		return "", err
	}
	if err := s.guilds.Upsert(ctx, cur.Apply(patch)); err != nil {
		return "", err
	}

	label := "T" + fmt.Sprint(tier)
	if roleID == "" {
		return fmt.Sprintf("✅ Role for %s has been removed.", label), nil
	}
	return fmt.Sprintf("✅ Role <@&%s> set for %s successfully!", roleID, label), nil
}

// ParseTier acepta "1", "t1", "Tier 1".
func ParseTier(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "tier")
	s = strings.TrimPrefix(s, "t")
	switch strings.TrimSpace(s) {
	case "1":
		return 1, true
	case "2":
		return 2, true
	case "3":
		return 3, true
	}
	return 0, false
}
