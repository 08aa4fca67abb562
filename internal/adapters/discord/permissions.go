package discord

import "github.com/bwmarrin/discordgo"

// canManageRoles: owners del bot, dueño del guild o Manage Roles / Administrator.
// Member.Permissions ya viene calculado por Discord para el canal de la interacción.
func (r *Router) canManageRoles(ic *discordgo.InteractionCreate) bool {
	uid := userID(ic)
	if r.deps.IsOwner(uid) {
		return true
	}
	if ic.Member == nil {
		return false
	}
	if g, _ := r.s.State.Guild(ic.GuildID); g != nil && g.OwnerID == uid {
		return true
	}
	perms := ic.Member.Permissions
	return perms&discordgo.PermissionAdministrator != 0 || perms&discordgo.PermissionManageRoles != 0
}
