package backup_test

import (
	"testing"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raikerian/go-discord-backup/internal/backup"
	"github.com/Raikerian/go-discord-backup/internal/catalog"
)

func TestTracker(t *testing.T) {
	guildID := discord.GuildID(1)

	t.Run("SingleFlightPerGuild", func(t *testing.T) {
		tr, err := backup.NewTracker(8)
		require.NoError(t, err)

		require.NoError(t, tr.Begin(guildID))
		assert.True(t, tr.Running(guildID))

		assert.ErrorIs(t, tr.Begin(guildID), backup.ErrRunInProgress)

		// A different guild is unaffected.
		require.NoError(t, tr.Begin(discord.GuildID(2)))
	})

	t.Run("EndReleasesAndRecords", func(t *testing.T) {
		tr, err := backup.NewTracker(8)
		require.NoError(t, err)

		require.NoError(t, tr.Begin(guildID))

		summary := backup.RunSummary{
			RunID:    "run-1",
			GuildID:  guildID,
			Status:   catalog.StatusCompleted,
			Messages: 41,
		}
		tr.End(guildID, summary)

		assert.False(t, tr.Running(guildID))
		require.NoError(t, tr.Begin(guildID))

		last, ok := tr.Last(guildID)
		require.True(t, ok)
		assert.Equal(t, summary, last)
	})

	t.Run("LastUnknownGuild", func(t *testing.T) {
		tr, err := backup.NewTracker(8)
		require.NoError(t, err)

		_, ok := tr.Last(guildID)
		assert.False(t, ok)
	})

	t.Run("RecentRunsEvictOldest", func(t *testing.T) {
		tr, err := backup.NewTracker(2)
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			id := discord.GuildID(i)
			require.NoError(t, tr.Begin(id))
			tr.End(id, backup.RunSummary{GuildID: id, FinishedAt: time.Now()})
		}

		_, ok := tr.Last(discord.GuildID(1))
		assert.False(t, ok, "oldest summary should have been evicted")
		_, ok = tr.Last(discord.GuildID(3))
		assert.True(t, ok)
	})
}
