package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/marin-bot/internal/app/service"
)

const staminaPrefix = "stamina_"

var staminaPercents = []int{25, 50, 100}

// StaminaButtons arma la fila de botones del prompt de stamina.
func StaminaButtons(disabled bool) []discordgo.MessageComponent {
	btns := make([]discordgo.MessageComponent, 0, len(staminaPercents))
	for _, p := range staminaPercents {
		btns = append(btns, discordgo.Button{
			CustomID: fmt.Sprintf("%s%d", staminaPrefix, p),
			Label:    fmt.Sprintf("Remind at %d%% Stamina", p),
			Style:    discordgo.PrimaryButton,
			Disabled: disabled,
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: btns}}
}

func (r *Router) handleMessageComponent(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.MessageComponentData()
	if !strings.HasPrefix(data.CustomID, staminaPrefix) {
		return
	}
	r.handleStaminaButton(ic, data.CustomID)
}

func (r *Router) handleStaminaButton(ic *discordgo.InteractionCreate, customID string) {
	log, done := step(r.log, "component.stamina")
	defer done()

	msgs := r.deps.Messages
	uid := userID(ic)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("panic in stamina button")
			r.replyEphemeral(ic, msgs.Stamina.Failed)
		}
	}()

	// solo el usuario mencionado en el prompt puede elegir
	if ic.Message != nil {
		if owner := mentionedUser(ic.Message.Content); owner != "" && owner != uid {
			r.respondEphemeral(ic, msgs.Stamina.NotYours)
			return
		}
	}

	percent, ok := parseStaminaID(customID)
	if !ok {
		r.respondEphemeral(ic, msgs.Stamina.Failed)
		return
	}
	if !r.clickLimiter.Allow(uid) {
		r.respondEphemeral(ic, "⏳ Please wait a second…")
		return
	}

	if err := r.deferEphemeral(ic); err != nil {
		if restCode(err) == codeUnknownInteraction {
			log.Info().Str("interaction_id", ic.ID).Msg("interaction expired before deferring")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	reply, err := r.deps.Stamina.Remind(ctx, service.StaminaRequest{
		UserID:    uid,
		GuildID:   ic.GuildID,
		ChannelID: ic.ChannelID,
		Percent:   percent,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", uid).Msg("failed to create stamina reminder")
		r.deps.Errors.Report("[ERROR] Failed to create stamina reminder: " + err.Error())
		_ = r.editReply(ic, msgs.Stamina.Failed)
		return
	}

	if err := r.editReply(ic, reply); err != nil && restCode(err) == codeUnknownInteraction {
		return
	}
	r.disableStaminaButtons(ic)
}

// disableStaminaButtons deja el prompt con los botones grisados.
func (r *Router) disableStaminaButtons(ic *discordgo.InteractionCreate) {
	if ic.Message == nil {
		return
	}
	ch := ic.Message.ChannelID
	if ch == "" {
		ch = ic.ChannelID
	}
	comps := StaminaButtons(true)
	edit := discordgo.NewMessageEdit(ch, ic.Message.ID)
	edit.Components = &comps
	if _, err := r.s.ChannelMessageEditComplex(edit); err != nil {
		if restCode(err) == codeUnknownMessage {
			r.log.Info().Str("message_id", ic.Message.ID).Msg("failed to disable buttons: message was deleted")
			return
		}
		r.log.Warn().Err(err).Str("message_id", ic.Message.ID).Msg("failed to disable buttons")
	}
}
