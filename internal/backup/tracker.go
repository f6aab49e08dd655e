package backup

import (
	"errors"
	"sync"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrRunInProgress is returned when a guild already has a backup running.
var ErrRunInProgress = errors.New("a backup is already in progress for this guild")

// RunSummary is the tracker's view of a finished run.
type RunSummary struct {
	RunID      string
	GuildID    discord.GuildID
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Channels   int
	Messages   int
}

// Tracker enforces one backup run per guild at a time and remembers recent
// run summaries for quick lookups without touching the catalog.
type Tracker struct {
	mu     sync.Mutex
	active map[discord.GuildID]struct{}
	recent *lru.Cache[discord.GuildID, RunSummary]
}

// NewTracker creates a tracker remembering up to size recent runs.
func NewTracker(size int) (*Tracker, error) {
	recent, err := lru.New[discord.GuildID, RunSummary](size)
	if err != nil {
		return nil, err
	}

	return &Tracker{
		active: make(map[discord.GuildID]struct{}),
		recent: recent,
	}, nil
}

// Begin claims the guild for a run. It fails with ErrRunInProgress when the
// guild is already claimed.
func (t *Tracker) Begin(guildID discord.GuildID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, running := t.active[guildID]; running {
		return ErrRunInProgress
	}
	t.active[guildID] = struct{}{}

	return nil
}

// End releases the guild and records the run summary.
func (t *Tracker) End(guildID discord.GuildID, summary RunSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.active, guildID)
	t.recent.Add(guildID, summary)
}

// Running reports whether the guild currently has a run in flight.
func (t *Tracker) Running(guildID discord.GuildID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, running := t.active[guildID]

	return running
}

// Last returns the most recent run summary for the guild, if still cached.
func (t *Tracker) Last(guildID discord.GuildID) (RunSummary, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.recent.Get(guildID)
}
