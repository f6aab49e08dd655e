package commands

import (
	"errors"
	"testing"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGuildFetcher struct {
	guild *discord.Guild
	err   error
}

func (f *fakeGuildFetcher) Guild(guildID discord.GuildID) (*discord.Guild, error) {
	return f.guild, f.err
}

func TestMemberIsAdmin(t *testing.T) {
	const guildID discord.GuildID = 500

	guild := func(everyonePerms discord.Permissions, roles ...discord.Role) *discord.Guild {
		all := append([]discord.Role{
			{ID: discord.RoleID(guildID), Name: "@everyone", Permissions: everyonePerms},
		}, roles...)

		return &discord.Guild{ID: guildID, OwnerID: 1, Roles: all}
	}

	member := func(userID discord.UserID, roleIDs ...discord.RoleID) *discord.Member {
		return &discord.Member{User: discord.User{ID: userID}, RoleIDs: roleIDs}
	}

	t.Run("OwnerIsAlwaysAdmin", func(t *testing.T) {
		fetcher := &fakeGuildFetcher{guild: guild(0)}

		admin, err := memberIsAdmin(fetcher, guildID, member(1))
		require.NoError(t, err)
		assert.True(t, admin)
	})

	t.Run("AdminRoleGrantsAccess", func(t *testing.T) {
		fetcher := &fakeGuildFetcher{guild: guild(0,
			discord.Role{ID: 10, Name: "Admins", Permissions: discord.PermissionAdministrator},
		)}

		admin, err := memberIsAdmin(fetcher, guildID, member(2, 10))
		require.NoError(t, err)
		assert.True(t, admin)
	})

	t.Run("EveryoneRoleGrantsAccess", func(t *testing.T) {
		fetcher := &fakeGuildFetcher{guild: guild(discord.PermissionAdministrator)}

		admin, err := memberIsAdmin(fetcher, guildID, member(2))
		require.NoError(t, err)
		assert.True(t, admin)
	})

	t.Run("PlainMemberIsDenied", func(t *testing.T) {
		fetcher := &fakeGuildFetcher{guild: guild(discord.PermissionSendMessages,
			discord.Role{ID: 10, Name: "Members", Permissions: discord.PermissionSendMessages},
		)}

		admin, err := memberIsAdmin(fetcher, guildID, member(2, 10))
		require.NoError(t, err)
		assert.False(t, admin)
	})

	t.Run("UnknownRoleIsIgnored", func(t *testing.T) {
		fetcher := &fakeGuildFetcher{guild: guild(0)}

		admin, err := memberIsAdmin(fetcher, guildID, member(2, 999))
		require.NoError(t, err)
		assert.False(t, admin)
	})

	t.Run("GuildFetchError", func(t *testing.T) {
		fetcher := &fakeGuildFetcher{err: errors.New("gateway down")}

		admin, err := memberIsAdmin(fetcher, guildID, member(2))
		require.Error(t, err)
		assert.False(t, admin)
	})
}
