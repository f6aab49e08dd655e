package commands

import (
	"fmt"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
)

// GuildFetcher is the slice of the Discord client needed for permission
// checks. *session.Session satisfies it.
type GuildFetcher interface {
	Guild(guildID discord.GuildID) (*discord.Guild, error)
}

// memberIsAdmin reports whether the member holds the Administrator
// permission in the guild, either as the guild owner or through any of their
// roles (the @everyone role included).
func memberIsAdmin(f GuildFetcher, guildID discord.GuildID, member *discord.Member) (bool, error) {
	guild, err := f.Guild(guildID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch guild for permission check: %w", err)
	}

	if guild.OwnerID == member.User.ID {
		return true, nil
	}

	rolePerms := make(map[discord.RoleID]discord.Permissions, len(guild.Roles))
	for _, role := range guild.Roles {
		rolePerms[role.ID] = role.Permissions
	}

	// The @everyone role shares the guild's ID.
	if rolePerms[discord.RoleID(guildID)].Has(discord.PermissionAdministrator) {
		return true, nil
	}

	for _, roleID := range member.RoleIDs {
		if rolePerms[roleID].Has(discord.PermissionAdministrator) {
			return true, nil
		}
	}

	return false, nil
}

// respondEphemeral answers the interaction with a message only the invoker
// can see.
func respondEphemeral(s *session.Session, e *gateway.InteractionCreateEvent, content string) error {
	return s.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
		Type: api.MessageInteractionWithSource,
		Data: &api.InteractionResponseData{
			Content: option.NewNullableString(content),
			Flags:   discord.EphemeralMessage,
		},
	})
}
