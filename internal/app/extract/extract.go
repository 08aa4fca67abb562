// Package extract convierte la salida del bot upstream (embeds o components v2)
// en facts tipados. Todo acá es puro: sin I/O, y si algo no matchea devolvemos
// "no hay fact", nunca un error.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jose-valero/marin-bot/internal/domain"
)

var (
	reMonster   = regexp.MustCompile(`<:LU_Monster:\d+>\s*(.+)`)
	reTier      = regexp.MustCompile(`<:LU_Tier(\d+):\d+>`)
	reExpTitle  = regexp.MustCompile(`^(.+)'s Expeditions$`)
	reCardName  = regexp.MustCompile(`<a?:\w+:\d+>\s*([^|\n]+)`)
	reCardID    = regexp.MustCompile(`ID: (\d+)`)
	reRemaining = regexp.MustCompile(`(?:(\d+)h)?\s*(?:(\d+)m)?\s*(?:(\d+)s)?\s*(?:\*\*)?\s*remaining`)
	reMention   = regexp.MustCompile(`<@!?(\d+)>`)
	reFatigued  = regexp.MustCompile(`Fatigued \((.*?)\)`)
	reMinutes   = regexp.MustCompile(`(\d+)m`)
	reSeconds   = regexp.MustCompile(`(\d+)s`)
	reEmojiTag  = regexp.MustCompile(`^<a?:\w+:\d+>`)
)

const (
	resendHeading = "Expedition Resend Results"
	partyMarker   = "Party Members"
	unknownCard   = "Unknown Card"
)

// ParseRemaining lee "1h 2m 3s remaining" (cualquier unidad opcional).
// Si hay horas o minutos pero no segundos suma 59s: el upstream omite los
// segundos cuando redondea al minuto.
func ParseRemaining(s string) time.Duration {
	m := reRemaining.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	var d time.Duration
	if m[1] != "" {
		d += time.Duration(atoi(m[1])) * time.Hour
	}
	if m[2] != "" {
		d += time.Duration(atoi(m[2])) * time.Minute
	}
	if m[3] != "" {
		d += time.Duration(atoi(m[3])) * time.Second
	} else if m[1] != "" || m[2] != "" {
		d += 59 * time.Second
	}
	return d
}

// parseFatigue suma "Nm" y "Ns" dentro del paréntesis de Fatigued (...).
func parseFatigue(s string) time.Duration {
	var d time.Duration
	if m := reMinutes.FindStringSubmatch(s); m != nil {
		d += time.Duration(atoi(m[1])) * time.Minute
	}
	if m := reSeconds.FindStringSubmatch(s); m != nil {
		d += time.Duration(atoi(m[1])) * time.Second
	}
	return d
}

func parseFatigueLines(text string) (domain.RaidFatigue, bool) {
	var out domain.RaidFatigue
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "Fatigued") {
			continue
		}
		um := reMention.FindStringSubmatch(line)
		fm := reFatigued.FindStringSubmatch(line)
		if um == nil || fm == nil {
			continue
		}
		d := parseFatigue(fm[1])
		if d <= 0 {
			continue
		}
		out.Entries = append(out.Entries, domain.FatigueEntry{UserID: um[1], Fatigue: d})
	}
	return out, len(out.Entries) > 0
}

// parseCard arma una carta a partir del nombre y el cuerpo (id + tiempo).
func parseCard(nameText, body string) (domain.ExpeditionCard, bool) {
	idm := reCardID.FindStringSubmatch(body)
	if idm == nil || !reRemaining.MatchString(body) {
		return domain.ExpeditionCard{}, false
	}
	d := ParseRemaining(body)
	if d <= 0 {
		return domain.ExpeditionCard{}, false
	}
	name := unknownCard
	if nm := reCardName.FindStringSubmatch(nameText); nm != nil {
		if n := strings.TrimSpace(nm[1]); n != "" {
			name = n
		}
	}
	return domain.ExpeditionCard{CardID: idm[1], Name: name, Remaining: d}, true
}

// heading limpia negritas y decoraciones (emojis, <:x:1>) al principio.
func heading(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
	for {
		before := s
		if loc := reEmojiTag.FindStringIndex(s); loc != nil {
			s = s[loc[1]:]
		}
		s = strings.TrimLeftFunc(s, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.In(r, unicode.So, unicode.Sk, unicode.Mn, unicode.Cf)
		})
		if s == before {
			return s
		}
	}
}

// bossFrom arma el fact a partir del heading y la línea del tier.
func bossFrom(title, tierText string) (domain.BossSpawn, bool) {
	name := ""
	if m := reMonster.FindStringSubmatch(title); m != nil {
		name = strings.TrimSpace(strings.ReplaceAll(m[1], "**", ""))
	}
	tm := reTier.FindStringSubmatch(tierText)
	if name == "" || tm == nil {
		return domain.BossSpawn{}, false
	}
	tier := atoi(tm[1])
	if tier <= 0 {
		return domain.BossSpawn{}, false
	}
	return domain.BossSpawn{Name: name, Tier: tier}, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
