package discord

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var reMention = regexp.MustCompile(`<@!?(\d+)>`)

// restCode devuelve el código JSON de un *discordgo.RESTError (0 si no hay).
func restCode(err error) int {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil {
		return rest.Message.Code
	}
	return 0
}

// mentionedUser es el primer <@id> del texto.
func mentionedUser(content string) string {
	if m := reMention.FindStringSubmatch(content); len(m) == 2 {
		return m[1]
	}
	return ""
}

// parseStaminaID: "stamina_50" -> 50.
func parseStaminaID(customID string) (int, bool) {
	rest, ok := strings.CutPrefix(customID, staminaPrefix)
	if !ok {
		return 0, false
	}
	p, err := strconv.Atoi(rest)
	if err != nil || p <= 0 || p > 100 {
		return 0, false
	}
	return p, true
}

// userID de quien disparó la interacción (Member en guilds, User en DMs).
func userID(ic *discordgo.InteractionCreate) string {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User.ID
	}
	if ic.User != nil {
		return ic.User.ID
	}
	return ""
}

// options aplana las opciones del comando (entrando a un subcomando si lo hay).
func options(data discordgo.ApplicationCommandInteractionData) (string, map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	opts := data.Options
	sub := ""
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		sub = opts[0].Name
		opts = opts[0].Options
	}
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return sub, m
}

func optStr(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (string, bool) {
	o, ok := opts[name]
	if !ok || o.Type != discordgo.ApplicationCommandOptionString {
		return "", false
	}
	return o.StringValue(), true
}

func optBool(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (bool, bool) {
	o, ok := opts[name]
	if !ok || o.Type != discordgo.ApplicationCommandOptionBoolean {
		return false, false
	}
	return o.BoolValue(), true
}

// optRole devuelve el id del rol sin ir a la API.
func optRole(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (string, bool) {
	o, ok := opts[name]
	if !ok || o.Type != discordgo.ApplicationCommandOptionRole {
		return "", false
	}
	return o.RoleValue(nil, "").ID, true
}

func enabledLabel(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}
