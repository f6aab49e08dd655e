package catalog_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Raikerian/go-discord-backup/internal/catalog"
)

func openTestStore(t *testing.T) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(filepath.Join(t.TempDir(), "state", "catalog.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func record(guildID string, startedAt time.Time, messages int) catalog.Record {
	return catalog.Record{
		RunID:       guildID + "-" + startedAt.Format("150405"),
		GuildID:     guildID,
		GuildName:   "Test Guild",
		RequestedBy: "tester",
		Scope:       "all",
		Channels:    3,
		Messages:    messages,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(time.Minute),
		Status:      catalog.StatusCompleted,
	}
}

func TestStore(t *testing.T) {
	base := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)

	t.Run("PutAndListNewestFirst", func(t *testing.T) {
		store := openTestStore(t)

		for i := 0; i < 3; i++ {
			require.NoError(t, store.Put(record("100", base.Add(time.Duration(i)*time.Hour), i*10)))
		}

		records, err := store.ListByGuild("100", 0)
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, 20, records[0].Messages)
		assert.Equal(t, 10, records[1].Messages)
		assert.Equal(t, 0, records[2].Messages)
	})

	t.Run("LimitAppliesAfterOrdering", func(t *testing.T) {
		store := openTestStore(t)

		for i := 0; i < 5; i++ {
			require.NoError(t, store.Put(record("100", base.Add(time.Duration(i)*time.Hour), i)))
		}

		records, err := store.ListByGuild("100", 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 4, records[0].Messages)
		assert.Equal(t, 3, records[1].Messages)
	})

	t.Run("GuildsAreIsolated", func(t *testing.T) {
		store := openTestStore(t)

		require.NoError(t, store.Put(record("100", base, 1)))
		require.NoError(t, store.Put(record("1004", base, 2)))

		records, err := store.ListByGuild("100", 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "100", records[0].GuildID)
	})

	t.Run("UnknownGuildIsEmpty", func(t *testing.T) {
		store := openTestStore(t)

		records, err := store.ListByGuild("999", 0)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("RecordRoundTrip", func(t *testing.T) {
		store := openTestStore(t)

		rec := record("42", base, 7)
		rec.Status = catalog.StatusFailed
		rec.Error = "partial failure"
		rec.ArchivePath = "/tmp/backup.zip"
		rec.ArchiveBytes = 1024
		require.NoError(t, store.Put(rec))

		records, err := store.ListByGuild("42", 0)
		require.NoError(t, err)
		require.Len(t, records, 1)

		got := records[0]
		assert.Equal(t, rec.RunID, got.RunID)
		assert.Equal(t, catalog.StatusFailed, got.Status)
		assert.Equal(t, "partial failure", got.Error)
		assert.Equal(t, "/tmp/backup.zip", got.ArchivePath)
		assert.Equal(t, int64(1024), got.ArchiveBytes)
		assert.True(t, rec.StartedAt.Equal(got.StartedAt))
	})
}
