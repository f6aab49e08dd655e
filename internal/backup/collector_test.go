package backup_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Raikerian/go-discord-backup/internal/backup"
	"github.com/Raikerian/go-discord-backup/internal/config"
)

// fakeFetcher serves canned guild data, paginating message history the way
// the Discord API does: newest first, pages keyed by the before-ID cursor.
type fakeFetcher struct {
	guild    *discord.Guild
	channels []discord.Channel
	members  []discord.Member
	// history per channel, newest first
	history map[discord.ChannelID][]discord.Message
	// errs makes every call for the channel fail with the given error
	errs map[discord.ChannelID]error
	// failuresLeft makes the next N message fetches fail with failureErr
	failuresLeft int
	failureErr   error

	messageCalls int
}

func (f *fakeFetcher) GuildWithCount(guildID discord.GuildID) (*discord.Guild, error) {
	if f.guild == nil {
		return nil, &httputil.HTTPError{Status: 404}
	}

	return f.guild, nil
}

func (f *fakeFetcher) Channels(guildID discord.GuildID) ([]discord.Channel, error) {
	return f.channels, nil
}

func (f *fakeFetcher) Members(guildID discord.GuildID, limit uint) ([]discord.Member, error) {
	return f.members, nil
}

func (f *fakeFetcher) Messages(channelID discord.ChannelID, limit uint) ([]discord.Message, error) {
	return f.page(channelID, 0, limit)
}

func (f *fakeFetcher) MessagesBefore(channelID discord.ChannelID, before discord.MessageID, limit uint) ([]discord.Message, error) {
	return f.page(channelID, before, limit)
}

func (f *fakeFetcher) page(channelID discord.ChannelID, before discord.MessageID, limit uint) ([]discord.Message, error) {
	f.messageCalls++

	if err := f.errs[channelID]; err != nil {
		return nil, err
	}
	if f.failuresLeft > 0 {
		f.failuresLeft--

		return nil, f.failureErr
	}

	history := f.history[channelID]
	start := 0
	if before != 0 {
		for i, msg := range history {
			if msg.ID == before {
				start = i + 1

				break
			}
		}
	}

	end := start + int(limit)
	if end > len(history) {
		end = len(history)
	}

	return history[start:end], nil
}

func testConfig(pageSize uint, maxMessages int) *config.Config {
	return &config.Config{
		Backup: config.BackupConfig{
			PageSize:    pageSize,
			MaxMessages: maxMessages,
		},
	}
}

// makeHistory builds n messages, newest first, with descending IDs.
func makeHistory(n int) []discord.Message {
	msgs := make([]discord.Message, n)
	for i := 0; i < n; i++ {
		id := discord.MessageID(n - i)
		msgs[i] = discord.Message{
			ID:        id,
			Content:   fmt.Sprintf("message %d", n-i),
			Author:    discord.User{ID: 1, Username: "alice"},
			Timestamp: discord.Timestamp(time.Date(2024, 3, 7, 10, 0, n-i, 0, time.UTC)),
		}
	}

	return msgs
}

func TestCollectChannel(t *testing.T) {
	chID := discord.ChannelID(10)

	t.Run("PaginatesUntilShortPage", func(t *testing.T) {
		f := &fakeFetcher{history: map[discord.ChannelID][]discord.Message{chID: makeHistory(5)}}
		c := backup.NewCollector(f, testConfig(2, 0), zap.NewNop())

		var pages []int
		history, err := c.CollectChannel(context.Background(), chID, func(fetched int) {
			pages = append(pages, fetched)
		})
		require.NoError(t, err)

		require.Len(t, history, 5)
		// Newest first, as fetched.
		assert.Equal(t, "message 5", history[0].Content)
		assert.Equal(t, "message 1", history[4].Content)
		assert.Equal(t, []int{2, 4, 5}, pages)
		assert.Equal(t, 3, f.messageCalls)
	})

	t.Run("EmptyChannel", func(t *testing.T) {
		f := &fakeFetcher{history: map[discord.ChannelID][]discord.Message{}}
		c := backup.NewCollector(f, testConfig(100, 0), zap.NewNop())

		history, err := c.CollectChannel(context.Background(), chID, nil)
		require.NoError(t, err)
		assert.Empty(t, history)
		assert.Equal(t, 1, f.messageCalls)
	})

	t.Run("ExactPageBoundary", func(t *testing.T) {
		f := &fakeFetcher{history: map[discord.ChannelID][]discord.Message{chID: makeHistory(4)}}
		c := backup.NewCollector(f, testConfig(2, 0), zap.NewNop())

		history, err := c.CollectChannel(context.Background(), chID, nil)
		require.NoError(t, err)
		assert.Len(t, history, 4)
		// A full last page needs one more call to see the empty page.
		assert.Equal(t, 3, f.messageCalls)
	})

	t.Run("MaxMessagesTruncates", func(t *testing.T) {
		f := &fakeFetcher{history: map[discord.ChannelID][]discord.Message{chID: makeHistory(10)}}
		c := backup.NewCollector(f, testConfig(4, 5), zap.NewNop())

		history, err := c.CollectChannel(context.Background(), chID, nil)
		require.NoError(t, err)
		assert.Len(t, history, 5)
	})

	t.Run("ForbiddenChannel", func(t *testing.T) {
		f := &fakeFetcher{errs: map[discord.ChannelID]error{chID: &httputil.HTTPError{Status: 403}}}
		c := backup.NewCollector(f, testConfig(100, 0), zap.NewNop())

		_, err := c.CollectChannel(context.Background(), chID, nil)
		assert.ErrorIs(t, err, backup.ErrChannelForbidden)
		assert.Equal(t, 1, f.messageCalls, "403 must not be retried")
	})

	t.Run("ClientErrorIsNotRetried", func(t *testing.T) {
		f := &fakeFetcher{errs: map[discord.ChannelID]error{chID: &httputil.HTTPError{Status: 404}}}
		c := backup.NewCollector(f, testConfig(100, 0), zap.NewNop())

		_, err := c.CollectChannel(context.Background(), chID, nil)
		require.Error(t, err)
		assert.NotErrorIs(t, err, backup.ErrChannelForbidden)
		assert.Equal(t, 1, f.messageCalls)
	})

	t.Run("TransientErrorIsRetried", func(t *testing.T) {
		f := &fakeFetcher{
			history:      map[discord.ChannelID][]discord.Message{chID: makeHistory(1)},
			failuresLeft: 1,
			failureErr:   &httputil.HTTPError{Status: 500},
		}
		c := backup.NewCollector(f, testConfig(100, 0), zap.NewNop())

		history, err := c.CollectChannel(context.Background(), chID, nil)
		require.NoError(t, err)
		assert.Len(t, history, 1)
		assert.Equal(t, 2, f.messageCalls)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f := &fakeFetcher{
			failuresLeft: 10,
			failureErr:   &httputil.HTTPError{Status: 500},
		}
		c := backup.NewCollector(f, testConfig(100, 0), zap.NewNop())

		_, err := c.CollectChannel(ctx, chID, nil)
		assert.Error(t, err)
	})
}

func TestCollectChannels(t *testing.T) {
	guildID := discord.GuildID(1)

	f := &fakeFetcher{channels: []discord.Channel{
		{ID: 3, Name: "general", Type: discord.GuildText, Position: 1},
		{ID: 4, Name: "voice", Type: discord.GuildVoice, Position: 0},
		{ID: 5, Name: "announcements", Type: discord.GuildNews, Position: 0},
		{ID: 6, Name: "category", Type: discord.GuildCategory, Position: 2},
	}}
	c := backup.NewCollector(f, testConfig(100, 0), zap.NewNop())

	channels, err := c.CollectChannels(context.Background(), guildID)
	require.NoError(t, err)

	require.Len(t, channels, 2)
	assert.Equal(t, "announcements", channels[0].Name)
	assert.Equal(t, "general", channels[1].Name)
}

func TestCollectMembers(t *testing.T) {
	guildID := discord.GuildID(1)

	roles := []discord.Role{
		{ID: discord.RoleID(discord.Snowflake(guildID)), Name: "@everyone"},
		{ID: 20, Name: "Moderator"},
		{ID: 30, Name: "Member"},
	}
	f := &fakeFetcher{members: []discord.Member{
		{
			User:    discord.User{ID: 100, Username: "alice"},
			Nick:    "Ali",
			RoleIDs: []discord.RoleID{30, 20},
			Joined:  discord.Timestamp(time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)),
		},
		{
			User: discord.User{ID: 200, Username: "bot", Bot: true},
		},
	}}
	c := backup.NewCollector(f, testConfig(100, 0), zap.NewNop())

	members, err := c.CollectMembers(context.Background(), guildID, roles)
	require.NoError(t, err)

	require.Len(t, members, 2)

	alice := members["100"]
	assert.Equal(t, "alice", alice.Name)
	assert.Equal(t, "Ali", alice.DisplayName)
	assert.Equal(t, []string{"@everyone", "Member", "Moderator"}, alice.Roles)
	assert.Equal(t, "2023-01-02T03:04:05Z", alice.JoinedAt)
	assert.False(t, alice.Bot)

	bot := members["200"]
	assert.True(t, bot.Bot)
	assert.Equal(t, []string{"@everyone"}, bot.Roles)
	assert.Empty(t, bot.JoinedAt)
}

func TestCollectGuild(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		c := backup.NewCollector(&fakeFetcher{}, testConfig(100, 0), zap.NewNop())

		_, err := c.CollectGuild(context.Background(), 1)
		require.Error(t, err)

		var herr *httputil.HTTPError
		assert.True(t, errors.As(err, &herr))
	})

	t.Run("Found", func(t *testing.T) {
		f := &fakeFetcher{guild: &discord.Guild{ID: 1, Name: "guild"}}
		c := backup.NewCollector(f, testConfig(100, 0), zap.NewNop())

		guild, err := c.CollectGuild(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "guild", guild.Name)
	})
}
