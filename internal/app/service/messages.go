package service

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/jose-valero/marin-bot/internal/domain"
)

//go:embed messages.yaml
var defaultMessages []byte

// Messages son las plantillas de texto. Los valores por defecto vienen
// embebidos; MESSAGES_FILE puede pisar cualquier subconjunto.
type Messages struct {
	Reminders struct {
		Expedition string `yaml:"expedition"`
		Stamina    string `yaml:"stamina"`
		Raid       string `yaml:"raid"`
		RaidSpawn  string `yaml:"raid_spawn"`
		CardDrop   string `yaml:"card_drop"`
	} `yaml:"reminders"`
	BossPing string `yaml:"boss_ping"`
	JumpLink string `yaml:"jump_link"`
	Stamina  struct {
		Prompt      string `yaml:"prompt"`
		Set         string `yaml:"set"`
		Overwritten string `yaml:"overwritten"`
		NotYours    string `yaml:"not_yours"`
		Failed      string `yaml:"failed"`
	} `yaml:"stamina"`
}

// DefaultMessages no puede fallar: el yaml embebido se valida en los tests.
func DefaultMessages() Messages {
	var m Messages
	if err := yaml.Unmarshal(defaultMessages, &m); err != nil {
		panic(fmt.Sprintf("messages.yaml embebido inválido: %v", err))
	}
	return m
}

// LoadMessages carga los defaults y, si path != "", aplica el override.
func LoadMessages(path string) (Messages, error) {
	m := DefaultMessages()
	if path == "" {
		return m, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read messages file: %w", err)
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("parse messages file %s: %w", path, err)
	}
	return m, nil
}

func render(tpl string, kv ...string) string {
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+kv[i]+"}", kv[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// Reminder arma el texto del recordatorio para el tipo dado.
func (m Messages) Reminder(t domain.ReminderType, userID string, percent int) string {
	var tpl string
	switch t {
	case domain.ReminderExpedition:
		tpl = m.Reminders.Expedition
	case domain.ReminderStamina:
		tpl = m.Reminders.Stamina
	case domain.ReminderRaid:
		tpl = m.Reminders.Raid
	case domain.ReminderRaidSpawn:
		tpl = m.Reminders.RaidSpawn
	case domain.ReminderCardDrop:
		tpl = m.Reminders.CardDrop
	}
	return render(tpl, "user", userID, "percent", fmt.Sprint(percent))
}

func (m Messages) Boss(roleID string, b domain.BossSpawn) string {
	return render(m.BossPing, "role", roleID, "tier", b.TierLabel(), "boss", b.Name)
}

func (m Messages) Jump(guildID, channelID string) string {
	return render(m.JumpLink, "guild", guildID, "channel", channelID)
}

func (m Messages) StaminaPrompt(userID string) string {
	return render(m.Stamina.Prompt, "user", userID)
}
