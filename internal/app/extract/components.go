package extract

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/marin-bot/internal/domain"
)

// Posiciones (ids) dentro del container que usa el upstream.
const (
	headingID = 2
	tierID    = 3
)

// block es un hijo directo del container, ya con su id resuelto.
type block struct {
	id      int
	kind    discordgo.ComponentType
	text    string   // TextDisplay
	section []string // textos de un Section
}

// flatten recorre el primer container. discordgo no expone el id de los
// TextDisplay, así que los numeramos en pre-orden desde 1 (igual que el
// auto-incremento de Discord) salvo que venga uno explícito.
func flatten(cs []discordgo.MessageComponent) ([]block, bool) {
	if len(cs) == 0 {
		return nil, false
	}
	root, ok := asContainer(cs[0])
	if !ok {
		return nil, false
	}
	next := 1
	if root.ID > 0 {
		next = root.ID
	}
	var out []block
	for _, c := range root.Components {
		next++
		switch v := c.(type) {
		case discordgo.TextDisplay:
			out = append(out, block{id: next, kind: v.Type(), text: v.Content})
		case *discordgo.TextDisplay:
			if v != nil {
				out = append(out, block{id: next, kind: v.Type(), text: v.Content})
			}
		case discordgo.Section:
			next = appendSection(&out, next, &v)
		case *discordgo.Section:
			if v != nil {
				next = appendSection(&out, next, v)
			}
		default:
			if c != nil {
				out = append(out, block{id: next, kind: c.Type()})
			}
		}
	}
	return out, true
}

func appendSection(out *[]block, id int, s *discordgo.Section) int {
	if s.ID > 0 {
		id = s.ID
	}
	b := block{id: id, kind: discordgo.SectionComponent}
	for _, c := range s.Components {
		id++
		switch t := c.(type) {
		case discordgo.TextDisplay:
			b.section = append(b.section, t.Content)
		case *discordgo.TextDisplay:
			if t != nil {
				b.section = append(b.section, t.Content)
			}
		}
	}
	if s.Accessory != nil {
		id++
	}
	*out = append(*out, b)
	return id
}

func asContainer(c discordgo.MessageComponent) (*discordgo.Container, bool) {
	switch v := c.(type) {
	case *discordgo.Container:
		return v, v != nil
	case discordgo.Container:
		return &v, true
	}
	return nil, false
}

// BossFromComponents: heading (id 2) con el monstruo y línea de tier (id 3).
func BossFromComponents(cs []discordgo.MessageComponent) (domain.BossSpawn, bool) {
	blocks, ok := flatten(cs)
	if !ok {
		return domain.BossSpawn{}, false
	}
	var title, tier string
	for _, b := range blocks {
		if b.kind != discordgo.TextDisplayComponent {
			continue
		}
		switch b.id {
		case headingID:
			title = b.text
		case tierID:
			tier = b.text
		}
	}
	return bossFrom(title, tier)
}

// ExpeditionFromComponents devuelve ExpeditionStatus o ExpeditionResend.
func ExpeditionFromComponents(cs []discordgo.MessageComponent) (domain.Fact, bool) {
	blocks, ok := flatten(cs)
	if !ok {
		return nil, false
	}
	var st domain.ExpeditionStatus
	for _, b := range blocks {
		switch b.kind {
		case discordgo.TextDisplayComponent:
			if b.id != headingID {
				continue
			}
			h := heading(b.text)
			if h == resendHeading {
				return domain.ExpeditionResend{}, true
			}
			if m := reExpTitle.FindStringSubmatch(h); m != nil {
				st.Username = strings.TrimSpace(m[1])
			}
		case discordgo.SectionComponent:
			if len(b.section) == 0 {
				continue
			}
			text := b.section[0]
			if c, ok := parseCard(text, text); ok {
				st.Cards = append(st.Cards, c)
			}
		}
	}
	if st.Username == "" || len(st.Cards) == 0 {
		return nil, false
	}
	return st, true
}

// RaidFatigueFromComponents busca el TextDisplay con "Party Members".
func RaidFatigueFromComponents(cs []discordgo.MessageComponent) (domain.RaidFatigue, bool) {
	blocks, ok := flatten(cs)
	if !ok {
		return domain.RaidFatigue{}, false
	}
	for _, b := range blocks {
		if b.kind == discordgo.TextDisplayComponent && strings.Contains(b.text, partyMarker) {
			return parseFatigueLines(b.text)
		}
	}
	return domain.RaidFatigue{}, false
}
