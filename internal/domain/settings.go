package domain

// GuildSettings: roles a pinguear por tier de boss. Vacío = sin rol.
type GuildSettings struct {
	GuildID     string
	Tier1RoleID string
	Tier2RoleID string
	Tier3RoleID string
}

// RoleForTier devuelve el rol configurado para el tier (1..3).
func (g GuildSettings) RoleForTier(tier int) string {
	switch tier {
	case 1:
		return g.Tier1RoleID
	case 2:
		return g.Tier2RoleID
	case 3:
		return g.Tier3RoleID
	}
	return ""
}

// Para updates parciales desde /set-tier-role. Un puntero a "" borra el rol.
type GuildSettingsPatch struct {
	Tier1RoleID *string
	Tier2RoleID *string
	Tier3RoleID *string
}

func (g GuildSettings) Apply(p GuildSettingsPatch) GuildSettings {
	if p.Tier1RoleID != nil {
		g.Tier1RoleID = *p.Tier1RoleID
	}
	if p.Tier2RoleID != nil {
		g.Tier2RoleID = *p.Tier2RoleID
	}
	if p.Tier3RoleID != nil {
		g.Tier3RoleID = *p.Tier3RoleID
	}
	return g
}

// UserSettings son las preferencias de notificación de un usuario.
// Si no hay fila en la DB se usa DefaultUserSettings.
type UserSettings struct {
	UserID          string
	Expedition      bool
	Stamina         bool
	Raid            bool
	RaidSpawn       bool
	CardDrop        bool
	DMNotifications bool
}

func DefaultUserSettings(userID string) UserSettings {
	return UserSettings{
		UserID:     userID,
		Expedition: true,
		Stamina:    true,
		Raid:       true,
		RaidSpawn:  true,
		CardDrop:   true,
	}
}

// Enabled reporta si el usuario quiere recibir recordatorios de ese tipo.
func (u UserSettings) Enabled(t ReminderType) bool {
	switch t {
	case ReminderExpedition:
		return u.Expedition
	case ReminderStamina:
		return u.Stamina
	case ReminderRaid:
		return u.Raid
	case ReminderRaidSpawn:
		return u.RaidSpawn
	case ReminderCardDrop:
		return u.CardDrop
	}
	return true
}

func (u UserSettings) IsDefault() bool {
	d := DefaultUserSettings(u.UserID)
	return u == d
}

// Para updates parciales desde /notifications set.
type UserSettingsPatch struct {
	Expedition      *bool
	Stamina         *bool
	Raid            *bool
	RaidSpawn       *bool
	CardDrop        *bool
	DMNotifications *bool
}

func (u UserSettings) Apply(p UserSettingsPatch) UserSettings {
	if p.Expedition != nil {
		u.Expedition = *p.Expedition
	}
	if p.Stamina != nil {
		u.Stamina = *p.Stamina
	}
	if p.Raid != nil {
		u.Raid = *p.Raid
	}
	if p.RaidSpawn != nil {
		u.RaidSpawn = *p.RaidSpawn
	}
	if p.CardDrop != nil {
		u.CardDrop = *p.CardDrop
	}
	if p.DMNotifications != nil {
		u.DMNotifications = *p.DMNotifications
	}
	return u
}

// PatchFor arma el patch para un tipo (o "dmNotifications").
func PatchFor(key string, enabled bool) (UserSettingsPatch, bool) {
	var p UserSettingsPatch
	v := enabled
	switch key {
	case string(ReminderExpedition):
		p.Expedition = &v
	case string(ReminderStamina):
		p.Stamina = &v
	case string(ReminderRaid):
		p.Raid = &v
	case string(ReminderRaidSpawn):
		p.RaidSpawn = &v
	case string(ReminderCardDrop):
		p.CardDrop = &v
	case "dmNotifications":
		p.DMNotifications = &v
	default:
		return p, false
	}
	return p, true
}
