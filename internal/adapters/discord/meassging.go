package discord

import (
	"github.com/bwmarrin/discordgo"
)

// Códigos de error de Discord que miramos.
const (
	codeUnknownChannel     = 10003
	codeUnknownMessage     = 10008
	codeUnknownWebhook     = 10015
	codeUnknownInteraction = 10062
	codeMissingAccess      = 50001
	codeCannotDM           = 50007
	codeMissingPermissions = 50013
)

// Defer efímero (para trabajos >3s)
func (r *Router) deferEphemeral(ic *discordgo.InteractionCreate) error {
	err := r.s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil && restCode(err) != codeUnknownInteraction {
		r.log.Warn().Err(err).Str("interaction_id", ic.ID).Msg("defer failed")
	}
	return err
}

// respondEphemeral contesta sin defer previo.
func (r *Router) respondEphemeral(ic *discordgo.InteractionCreate, content string) {
	err := r.s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			Flags:           discordgo.MessageFlagsEphemeral,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
	if err != nil && restCode(err) != codeUnknownInteraction {
		r.log.Warn().Err(err).Str("interaction_id", ic.ID).Msg("respond failed")
	}
}

// replyEphemeral manda el followup de una interacción ya diferida.
func (r *Router) replyEphemeral(ic *discordgo.InteractionCreate, content string, embeds ...*discordgo.MessageEmbed) {
	_, err := r.s.FollowupMessageCreate(ic.Interaction, true, &discordgo.WebhookParams{
		Content:         content,
		Embeds:          embeds,
		Flags:           discordgo.MessageFlagsEphemeral,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err == nil {
		return
	}
	switch restCode(err) {
	case codeUnknownInteraction:
	case codeUnknownWebhook:
		// Fallback sólo si todavía no hay respuesta
		_ = r.s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
				Embeds:  embeds,
			},
		})
	default:
		r.log.Warn().Err(err).Str("interaction_id", ic.ID).Msg("reply failed")
	}
}

// editReply reemplaza el "pensando..." del defer.
func (r *Router) editReply(ic *discordgo.InteractionCreate, content string) error {
	_, err := r.s.InteractionResponseEdit(ic.Interaction, &discordgo.WebhookEdit{Content: &content})
	if err != nil && restCode(err) != codeUnknownInteraction {
		r.log.Warn().Err(err).Str("interaction_id", ic.ID).Msg("edit reply failed")
	}
	return err
}
