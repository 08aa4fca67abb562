package domain

import "time"

// ReminderType es el set cerrado de recordatorios que maneja el bot.
type ReminderType string

const (
	ReminderExpedition ReminderType = "expedition"
	ReminderStamina    ReminderType = "stamina"
	ReminderRaid       ReminderType = "raid"
	ReminderRaidSpawn  ReminderType = "raid_spawn"
	ReminderCardDrop   ReminderType = "card_drop"
)

// ReminderTypes en el orden en que se muestran en /notifications.
var ReminderTypes = []ReminderType{
	ReminderExpedition,
	ReminderStamina,
	ReminderRaid,
	ReminderRaidSpawn,
	ReminderCardDrop,
}

func (t ReminderType) Valid() bool {
	for _, v := range ReminderTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Label es el nombre "humano" del tipo.
func (t ReminderType) Label() string {
	switch t {
	case ReminderExpedition:
		return "Expedition"
	case ReminderStamina:
		return "Stamina"
	case ReminderRaid:
		return "Raid Fatigue"
	case ReminderRaidSpawn:
		return "Raid Spawn"
	case ReminderCardDrop:
		return "Card Drop"
	}
	return string(t)
}

// Reminder es un recordatorio pendiente. Hay como mucho uno por (UserID, Type).
type Reminder struct {
	ID        int64
	UserID    string
	GuildID   string // vacío = sin guild (solo DM)
	CardID    string
	ChannelID string
	RemindAt  time.Time
	Type      ReminderType
	Message   string
}

// ReminderSpec son todos los campos de Reminder menos el ID (lo asigna el store).
type ReminderSpec struct {
	UserID    string
	GuildID   string
	CardID    string
	ChannelID string
	RemindAt  time.Time
	Type      ReminderType
	Message   string
}

func (s ReminderSpec) Reminder(id int64) Reminder {
	return Reminder{
		ID:        id,
		UserID:    s.UserID,
		GuildID:   s.GuildID,
		CardID:    s.CardID,
		ChannelID: s.ChannelID,
		RemindAt:  s.RemindAt,
		Type:      s.Type,
		Message:   s.Message,
	}
}
