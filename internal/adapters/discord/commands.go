package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/marin-bot/internal/app/service"
)

var Commands = []*discordgo.ApplicationCommand{
	{
		Name:        "notifications",
		Description: "Manage your notification settings.",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "view", Description: "View your current notification settings."},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Enable or disable a notification type.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "type",
						Description: "The notification type to configure.",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "Expedition", Value: "expedition"},
							{Name: "Stamina", Value: "stamina"},
							{Name: "Raid Fatigue", Value: "raid"},
							{Name: "Raid Spawn", Value: "raid_spawn"},
							{Name: "Card Drop", Value: "card_drop"},
							{Name: "DM Notifications", Value: service.NotificationKeyDM},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "enabled",
						Description: "Whether to enable or disable this notification.",
						Required:    true,
					},
				},
			},
		},
	},
	{
		Name:        "set-tier-role",
		Description: "Set or remove the role to ping for a boss tier",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "tier",
				Description: "Boss tier to set/remove role for",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Tier 1", Value: "t1"},
					{Name: "Tier 2", Value: "t2"},
					{Name: "Tier 3", Value: "t3"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "Role to ping (leave empty to remove the role)",
			},
		},
	},
	{
		Name:        "view-settings",
		Description: "View current boss tier roles",
	},
	{
		Name:        "help",
		Description: "Shows setup instructions for Marin Kitagawa",
	},
	{
		Name:        "stats",
		Description: "Displays bot statistics and memory usage.",
	},
}
