package domain

import (
	"strconv"
	"time"
)

// Fact es lo que sale de parsear un mensaje del bot upstream.
// Variantes: BossSpawn, ExpeditionStatus, ExpeditionResend, RaidFatigue.
type Fact interface {
	isFact()
}

type BossSpawn struct {
	Name string
	Tier int
}

// TierLabel: "Tier 3".
func (b BossSpawn) TierLabel() string {
	return "Tier " + strconv.Itoa(b.Tier)
}

type ExpeditionCard struct {
	CardID    string
	Name      string
	Remaining time.Duration
}

type ExpeditionStatus struct {
	Username string
	Cards    []ExpeditionCard
}

// Longest devuelve la carta con más tiempo restante (el recordatorio salta cuando están todas).
func (e ExpeditionStatus) Longest() (ExpeditionCard, bool) {
	var best ExpeditionCard
	found := false
	for _, c := range e.Cards {
		if !found || c.Remaining > best.Remaining {
			best = c
			found = true
		}
	}
	return best, found
}

type ExpeditionResend struct{}

type FatigueEntry struct {
	UserID  string
	Fatigue time.Duration
}

type RaidFatigue struct {
	Entries []FatigueEntry
}

func (BossSpawn) isFact()        {}
func (ExpeditionStatus) isFact() {}
func (ExpeditionResend) isFact() {}
func (RaidFatigue) isFact()      {}
