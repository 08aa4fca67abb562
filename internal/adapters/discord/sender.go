package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/marin-bot/internal/domain"
)

// Sender implementa service.ChannelSender, service.DirectMessenger y
// service.Announcer sobre la sesión.
type Sender struct {
	s *discordgo.Session
}

func NewSender(s *discordgo.Session) *Sender { return &Sender{s: s} }

// Los recordatorios solo pueden mencionar usuarios.
var usersOnly = &discordgo.MessageAllowedMentions{
	Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
}

func (x *Sender) SendChannel(ctx context.Context, channelID, text string) error {
	_, err := x.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         text,
		AllowedMentions: usersOnly,
	}, discordgo.WithContext(ctx))
	return classify(err)
}

func (x *Sender) SendDM(ctx context.Context, userID, text string) error {
	ch, err := x.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return classify(err)
	}
	return x.SendChannel(ctx, ch.ID, text)
}

func (x *Sender) Announce(ctx context.Context, channelID, text string, roleIDs []string) error {
	_, err := x.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         text,
		AllowedMentions: &discordgo.MessageAllowedMentions{Roles: roleIDs},
	}, discordgo.WithContext(ctx))
	return classify(err)
}

func (x *Sender) StaminaPrompt(ctx context.Context, channelID, text string) error {
	_, err := x.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         text,
		Components:      StaminaButtons(false),
		AllowedMentions: usersOnly,
	}, discordgo.WithContext(ctx))
	return classify(err)
}

// classify traduce los códigos de Discord a los errores de dominio.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch restCode(err) {
	case codeUnknownChannel:
		return fmt.Errorf("%w: %v", domain.ErrChannelNotFound, err)
	case codeMissingAccess, codeMissingPermissions:
		return fmt.Errorf("%w: %v", domain.ErrForbidden, err)
	case codeCannotDM:
		return fmt.Errorf("%w: %v", domain.ErrRecipientBlocked, err)
	}
	return err
}
