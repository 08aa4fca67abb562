package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Directory implementa service.Directory (lecturas REST).
type Directory struct {
	s *discordgo.Session
}

func NewDirectory(s *discordgo.Session) *Directory { return &Directory{s: s} }

func (d *Directory) FetchMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	if m, err := d.s.State.Message(channelID, messageID); err == nil && m != nil {
		return m, nil
	}
	m, err := d.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	return m, classify(err)
}

// RecentMessages devuelve los últimos limit mensajes, más nuevo primero.
func (d *Directory) RecentMessages(ctx context.Context, channelID string, limit int) ([]*discordgo.Message, error) {
	ms, err := d.s.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	return ms, classify(err)
}

// SearchMember busca por prefijo de username/nick y devuelve el primer match.
func (d *Directory) SearchMember(ctx context.Context, guildID, query string) (string, error) {
	ms, err := d.s.GuildMembersSearch(guildID, query, 1, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify(err)
	}
	for _, m := range ms {
		if m != nil && m.User != nil {
			return m.User.ID, nil
		}
	}
	return "", nil
}
