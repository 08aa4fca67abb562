package extract

import (
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/marin-bot/internal/domain"
)

const staminaShortage = "you don't have enough stamina!"

var (
	reAvatarUser = regexp.MustCompile(`/(?:avatars|users)/(\d+)`)
	reRaidSpawn  = regexp.MustCompile(`(?i)\braid\s+spawn\b`)
)

// El upstream manda o un embed o un container; si hay embed, manda el embed.
func firstEmbed(m *discordgo.Message) *discordgo.MessageEmbed {
	if m == nil || len(m.Embeds) == 0 {
		return nil
	}
	return m.Embeds[0]
}

// Boss corre el parser que corresponda a la forma del mensaje.
func Boss(m *discordgo.Message) (domain.BossSpawn, bool) {
	if e := firstEmbed(m); e != nil {
		return BossFromEmbed(e)
	}
	if m == nil {
		return domain.BossSpawn{}, false
	}
	return BossFromComponents(m.Components)
}

func Expedition(m *discordgo.Message) (domain.Fact, bool) {
	if e := firstEmbed(m); e != nil {
		return ExpeditionFromEmbed(e)
	}
	if m == nil {
		return nil, false
	}
	return ExpeditionFromComponents(m.Components)
}

func RaidFatigue(m *discordgo.Message) (domain.RaidFatigue, bool) {
	if e := firstEmbed(m); e != nil {
		return RaidFatigueFromEmbed(e)
	}
	if m == nil {
		return domain.RaidFatigue{}, false
	}
	return RaidFatigueFromComponents(m.Components)
}

// StaminaShortage: el texto fijo que manda el upstream cuando te quedás sin stamina.
func StaminaShortage(content string) bool {
	return strings.Contains(content, staminaShortage)
}

// RaidSpawned mira título y descripción del embed.
func RaidSpawned(m *discordgo.Message) bool {
	e := firstEmbed(m)
	if e == nil {
		return false
	}
	return strings.Contains(strings.ToLower(e.Title), "raid spawned") ||
		strings.Contains(strings.ToLower(e.Description), "raid spawned")
}

// RaidSpawnRequest: mensaje de un humano pidiendo "raid spawn".
func RaidSpawnRequest(content string) bool {
	return reRaidSpawn.MatchString(content)
}

func CardDropped(m *discordgo.Message) bool {
	e := firstEmbed(m)
	return e != nil && strings.Contains(strings.ToLower(e.Title), "card dropped")
}

// CardDropUser saca el user id del avatar en el footer (…/avatars/<id>/…).
func CardDropUser(m *discordgo.Message) (string, bool) {
	e := firstEmbed(m)
	if e == nil || e.Footer == nil || e.Footer.IconURL == "" {
		return "", false
	}
	mm := reAvatarUser.FindStringSubmatch(e.Footer.IconURL)
	if mm == nil {
		return "", false
	}
	return mm[1], true
}
