package discord

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
)

func (r *Router) statsEmbed(ctx context.Context) *discordgo.MessageEmbed {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	guilds, channels := r.cacheCounts()

	db := "connected"
	if r.deps.DB == nil {
		db = "unknown"
	} else if err := r.deps.DB.PingContext(ctx); err != nil {
		db = "error: " + err.Error()
	}

	active := 0
	if r.deps.Timers != nil {
		active = r.deps.Timers.Active()
	}

	return &discordgo.MessageEmbed{
		Title: "Bot Statistics",
		Color: colorStats,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Memory Usage",
				Value: fmt.Sprintf("Sys: %s\nHeap In Use: %s\nGoroutines: %d",
					humanize.IBytes(ms.Sys), humanize.IBytes(ms.HeapInuse), runtime.NumGoroutine()),
				Inline: true,
			},
			{Name: "Uptime", Value: formatUptime(time.Since(r.started)), Inline: true},
			{
				Name:  "Cache Stats",
				Value: fmt.Sprintf("Guilds: %s\nChannels: %s\nActive Timers: %s", humanize.Comma(int64(guilds)), humanize.Comma(int64(channels)), humanize.Comma(int64(active))),
			},
			{Name: "Database", Value: "Connection State: " + db, Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (r *Router) cacheCounts() (guilds, channels int) {
	if r.s == nil || r.s.State == nil {
		return 0, 0
	}
	r.s.State.RLock()
	defer r.s.State.RUnlock()
	for _, g := range r.s.State.Guilds {
		channels += len(g.Channels)
	}
	return len(r.s.State.Guilds), channels
}

// 1d 2h 3m 4s
func formatUptime(d time.Duration) string {
	s := int64(d.Seconds())
	days := s / 86400
	s %= 86400
	h := s / 3600
	s %= 3600
	return fmt.Sprintf("%dd %dh %dm %ds", days, h, s/60, s%60)
}
