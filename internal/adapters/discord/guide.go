package discord

import (
	"sort"

	"github.com/bwmarrin/discordgo"
)

const helpText = "**Marin Kitagawa Setup Guide**\n\n" +
	"1️⃣ **Set Boss Ping Roles:**\n" +
	"- `/set-tier-role tier:1 role:@Role`\n" +
	"- `/set-tier-role tier:2 role:@Role`\n" +
	"- `/set-tier-role tier:3 role:@Role` *(recommended to set at least Tier 3)*\n\n" +
	"- `To remove any of the pings run the same command without the role`\n" +
	"  `The bot will ping those roles when bosses spawn.`\n\n" +
	"- `/view-settings` to view the current config.\n" +
	"- `Make sure I have permission to mention the role.`\n\n" +
	"2️⃣ **User Notification Settings:**\n" +
	"- `/notifications set` — Configure your personal notification preferences (e.g. expedition, stamina refill and raid fatigue.)\n" +
	"- `/notifications view` — View your current personal notification settings\n"

const guideText = "**Hello! Thanks for adding Marin Kitagawa!**\n\n" +
	"To set up the bot, please use these commands:\n\n" +
	"1️⃣ Set Boss Ping Roles:\n" +
	"- `/set-tier-role tier:1 role:@Role`\n" +
	"- `/set-tier-role tier:2 role:@Role`\n" +
	"- `/set-tier-role tier:3 role:@Role` *(recommended to set at least Tier 3)*\n\n" +
	"- `/view-settings` to view the current config.\n" +
	"- `Make sure I have permission to mention the role.`\n\n" +
	"2️⃣ **User Notification Settings:**\n" +
	"- `/notifications set` — Configure your personal notification preferences (e.g. expedition, stamina refill and raid fatigue.)\n" +
	"- `/notifications view` — View your current personal notification settings\n\n" +
	"For bugs or suggestions, join the support server (link in bio).\n"

// handleGuildCreate manda la guía de setup cuando entramos a un guild nuevo.
func (r *Router) handleGuildCreate(s *discordgo.Session, ev *discordgo.GuildCreate) {
	if ev.Guild == nil || ev.Unavailable || !r.isNewGuild(ev.ID) {
		return
	}
	log := r.log.With().Str("guild_id", ev.ID).Str("guild", ev.Name).Logger()

	ch := r.firstWritableText(ev.Guild)
	if ch == "" {
		log.Info().Msg("no accessible text channel found")
		return
	}
	if _, err := s.ChannelMessageSend(ch, guideText); err != nil {
		if restCode(err) == codeMissingAccess || restCode(err) == codeMissingPermissions {
			log.Warn().Err(err).Msg("could not send welcome message, missing Send Messages permission")
			return
		}
		log.Error().Err(err).Msg("failed to send setup message")
		return
	}
	log.Info().Str("channel_id", ch).Msg("sent setup guide")
}

// firstWritableText: primer canal de texto (por posición) donde podemos escribir.
func (r *Router) firstWritableText(g *discordgo.Guild) string {
	chans := make([]*discordgo.Channel, 0, len(g.Channels))
	for _, c := range g.Channels {
		if c.Type == discordgo.ChannelTypeGuildText {
			chans = append(chans, c)
		}
	}
	sort.SliceStable(chans, func(i, j int) bool { return chans[i].Position < chans[j].Position })

	me := ""
	if r.s.State != nil && r.s.State.User != nil {
		me = r.s.State.User.ID
	}
	for _, c := range chans {
		perms, err := r.s.State.UserChannelPermissions(me, c.ID)
		if err != nil {
			continue
		}
		if perms&discordgo.PermissionSendMessages != 0 && perms&discordgo.PermissionViewChannel != 0 {
			return c.ID
		}
	}
	return ""
}
