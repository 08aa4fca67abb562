package extract

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/marin-bot/internal/domain"
)

// BossFromEmbed: título con <:LU_Monster:N> y algún field con <:LU_TierN:M>.
func BossFromEmbed(e *discordgo.MessageEmbed) (domain.BossSpawn, bool) {
	if e == nil || e.Title == "" {
		return domain.BossSpawn{}, false
	}
	for _, f := range e.Fields {
		if f == nil || !reTier.MatchString(f.Value) {
			continue
		}
		return bossFrom(e.Title, f.Value)
	}
	return domain.BossSpawn{}, false
}

// ExpeditionFromEmbed devuelve ExpeditionStatus o ExpeditionResend.
func ExpeditionFromEmbed(e *discordgo.MessageEmbed) (domain.Fact, bool) {
	if e == nil || e.Title == "" {
		return nil, false
	}
	title := heading(e.Title)
	if strings.HasSuffix(title, resendHeading) {
		return domain.ExpeditionResend{}, true
	}
	m := reExpTitle.FindStringSubmatch(title)
	if m == nil {
		return nil, false
	}
	st := domain.ExpeditionStatus{Username: strings.TrimSpace(m[1])}
	for _, f := range e.Fields {
		if f == nil {
			continue
		}
		if c, ok := parseCard(f.Name, f.Value); ok {
			st.Cards = append(st.Cards, c)
		}
	}
	if st.Username == "" || len(st.Cards) == 0 {
		return nil, false
	}
	return st, true
}

// RaidFatigueFromEmbed lee el field "Party Members" de la vista del raid.
func RaidFatigueFromEmbed(e *discordgo.MessageEmbed) (domain.RaidFatigue, bool) {
	if e == nil {
		return domain.RaidFatigue{}, false
	}
	for _, f := range e.Fields {
		if f != nil && strings.Contains(f.Name, partyMarker) {
			return parseFatigueLines(f.Value)
		}
	}
	return domain.RaidFatigue{}, false
}
