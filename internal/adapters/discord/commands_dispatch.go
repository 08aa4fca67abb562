// esta es la logica de InteractionApplicationCommand de discordgo
// aqui solo vamos a manejar logica de la interaccion del usuario y despachar a los servicios correspondientes
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/marin-bot/internal/app/service"
	"github.com/jose-valero/marin-bot/internal/domain"
)

const (
	colorNotifications = 0x5865F2
	colorSettings      = 0x00bcd4
	colorStats         = 0x00FF00
)

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	cmd := ic.ApplicationCommandData()
	log, done := step(r.log, "slash."+cmd.Name)
	defer done()
	log.Info().Str("cmd", cmd.Name).Str("by", userID(ic)).Str("guild_id", ic.GuildID).Msg("slash command")

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("panic in slash command")
			r.replyEphemeral(ic, "There was an error executing this command!")
		}
	}()

	if err := r.deferEphemeral(ic); err != nil && restCode(err) == codeUnknownInteraction {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	sub, opts := options(cmd)

	switch cmd.Name {

	//--> preferencias personales
	case "notifications":
		uid := userID(ic)
		switch sub {
		case "view":
			us, err := r.deps.Settings.UserSettings(ctx, uid)
			if err != nil {
				r.commandFailed(ic, "view notifications", err)
				return
			}
			r.replyEphemeral(ic, "", notificationsEmbed(us))
		case "set":
			key, _ := optStr(opts, "type")
			enabled, _ := optBool(opts, "enabled")
			msg, err := r.deps.Settings.SetNotification(ctx, uid, key, enabled)
			if err != nil {
				r.commandFailed(ic, "update notifications", err)
				return
			}
			r.replyEphemeral(ic, msg)
		default:
			r.replyEphemeral(ic, "Use `/notifications view` or `/notifications set`.")
		}

	//--> roles de boss por tier (Manage Roles)
	case "set-tier-role":
		if ic.GuildID == "" {
			r.replyEphemeral(ic, "This command can only be used in a server.")
			return
		}
		if !r.canManageRoles(ic) {
			r.replyEphemeral(ic, "You do not have permission to use this command.")
			return
		}
		raw, _ := optStr(opts, "tier")
		tier, ok := service.ParseTier(raw)
		if !ok {
			r.replyEphemeral(ic, "❌ Tier must be 1, 2 or 3.")
			return
		}
		roleID, _ := optRole(opts, "role")
		msg, err := r.deps.Settings.SetTierRole(ctx, ic.GuildID, tier, roleID)
		if err != nil {
			log.Error().Err(err).Msg("failed to set tier role")
			r.deps.Errors.Report("[ERROR] Failed to set tier role: " + err.Error())
			r.replyEphemeral(ic, "❌ An error occurred while trying to set the tier role.")
			return
		}
		r.replyEphemeral(ic, msg)

	case "view-settings":
		if ic.GuildID == "" {
			r.replyEphemeral(ic, "This command can only be used in a server.")
			return
		}
		if !r.canManageRoles(ic) {
			r.replyEphemeral(ic, "❌ You do not have permission to use this command.")
			return
		}
		gs, exists, err := r.deps.Settings.GuildSettings(ctx, ic.GuildID)
		if err != nil {
			log.Error().Err(err).Msg("failed to view settings")
			r.replyEphemeral(ic, "❌ An error occurred while trying to view settings.")
			return
		}
		if !exists {
			r.replyEphemeral(ic, "⚠️ No settings found for this server.")
			return
		}
		r.replyEphemeral(ic, "", settingsEmbed(gs))

	case "help":
		r.replyEphemeral(ic, helpText)

	//--> solo owners
	case "stats":
		if !r.deps.IsOwner(userID(ic)) {
			r.replyEphemeral(ic, "You are not authorized to use this command.")
			return
		}
		r.replyEphemeral(ic, "", r.statsEmbed(ctx))

	default:
		r.replyEphemeral(ic, "Unknown command.")
	}
}

func (r *Router) commandFailed(ic *discordgo.InteractionCreate, what string, err error) {
	r.log.Error().Err(err).Str("cmd", what).Msg("command failed")
	r.deps.Errors.Report(fmt.Sprintf("[ERROR] Failed to %s: %v", what, err))
	r.replyEphemeral(ic, "There was an error executing this command!")
}

func notificationsEmbed(us domain.UserSettings) *discordgo.MessageEmbed {
	field := func(name string, v bool) *discordgo.MessageEmbedField {
		return &discordgo.MessageEmbedField{Name: name, Value: enabledLabel(v), Inline: true}
	}
	return &discordgo.MessageEmbed{
		Title: "Your Notification Settings",
		Color: colorNotifications,
		Fields: []*discordgo.MessageEmbedField{
			field("Expedition", us.Expedition),
			field("Stamina", us.Stamina),
			field("Raid Fatigue", us.Raid),
			field("Raid Spawn", us.RaidSpawn),
			field("Card Drop", us.CardDrop),
			field("DM Notifications", us.DMNotifications),
		},
	}
}

func settingsEmbed(gs domain.GuildSettings) *discordgo.MessageEmbed {
	role := func(id string) string {
		if id == "" {
			return "❌ Not set"
		}
		return "<@&" + id + ">"
	}
	desc := strings.Join([]string{
		"**Tier 3 Role:** " + role(gs.Tier3RoleID),
		"**Tier 2 Role:** " + role(gs.Tier2RoleID),
		"**Tier 1 Role:** " + role(gs.Tier1RoleID),
	}, "\n")
	return &discordgo.MessageEmbed{
		Title:       "📊 Current Boss Tier Role Settings",
		Description: desc,
		Color:       colorSettings,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Marin Helper Settings"},
	}
}
