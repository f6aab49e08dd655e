package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Raikerian/go-discord-backup/internal/archive"
	"github.com/Raikerian/go-discord-backup/internal/catalog"
)

// Request describes one backup run.
type Request struct {
	GuildID discord.GuildID
	// Targets are the channels to archive, already resolved and validated.
	Targets     []discord.Channel
	Scope       string
	RequestedBy string
	// StatusChannelID/StatusMessageID locate the status embed to edit.
	StatusChannelID discord.ChannelID
	StatusMessageID discord.MessageID
}

// Service orchestrates backup runs: collect, archive, store, record, report.
type Service struct {
	collector *Collector
	store     *archive.Store
	catalog   *catalog.Store
	tracker   *Tracker
	editor    MessageEditor
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates the backup service.
func NewService(collector *Collector, store *archive.Store, cat *catalog.Store, tracker *Tracker, editor MessageEditor, progressInterval time.Duration, logger *zap.Logger) *Service {
	return &Service{
		collector: collector,
		store:     store,
		catalog:   cat,
		tracker:   tracker,
		editor:    editor,
		interval:  progressInterval,
		logger:    logger.Named("backup"),
		now:       time.Now,
	}
}

// Tracker exposes the run tracker for callers that pre-check run state.
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// ResolveTargets returns the channels a run would archive: every archivable
// channel of the guild, or just the requested one. An invalid channelID
// selects the whole guild. A nil result with nil error means the requested
// channel does not exist in the guild or cannot be archived.
func (s *Service) ResolveTargets(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) ([]discord.Channel, error) {
	channels, err := s.collector.CollectChannels(ctx, guildID)
	if err != nil {
		return nil, err
	}

	if !channelID.IsValid() {
		return channels, nil
	}

	for _, ch := range channels {
		if ch.ID == channelID {
			return []discord.Channel{ch}, nil
		}
	}

	return nil, nil
}

// Run executes one backup run end to end. Unreadable channels are skipped
// and recorded; any other collection or storage failure aborts the run. The
// returned error aggregates per-channel failures of an otherwise successful
// run, so callers can log them.
func (s *Service) Run(ctx context.Context, req Request) error {
	if err := s.tracker.Begin(req.GuildID); err != nil {
		return err
	}

	startedAt := s.now()
	summary := RunSummary{
		RunID:     fmt.Sprintf("%s-%d", req.GuildID, startedAt.UnixNano()),
		GuildID:   req.GuildID,
		StartedAt: startedAt,
		Status:    catalog.StatusFailed,
	}
	defer func() {
		summary.FinishedAt = s.now()
		s.tracker.End(req.GuildID, summary)
	}()

	reporter := NewReporter(s.editor, req.StatusChannelID, req.StatusMessageID, s.interval, s.logger)
	total := len(req.Targets)

	s.logger.Info("Backup run started",
		zap.String("runID", summary.RunID),
		zap.Stringer("guildID", req.GuildID),
		zap.String("scope", req.Scope),
		zap.String("requestedBy", req.RequestedBy),
		zap.Int("channels", total),
	)

	var guild *discord.Guild

	fail := func(done, messages int, reason string, err error) error {
		reporter.Failure(done, total, messages, reason)

		rec := catalog.Record{
			RunID:           summary.RunID,
			GuildID:         req.GuildID.String(),
			RequestedBy:     req.RequestedBy,
			Scope:           req.Scope,
			Channels:        done,
			ChannelsSkipped: total - done,
			Messages:        messages,
			StartedAt:       startedAt,
			FinishedAt:      s.now(),
			Status:          catalog.StatusFailed,
			Error:           err.Error(),
		}
		if guild != nil {
			rec.GuildName = guild.Name
		}
		if perr := s.catalog.Put(rec); perr != nil {
			s.logger.Error("Failed to record run in catalog", zap.Error(perr))
		}

		s.logger.Error("Backup run failed",
			zap.String("runID", summary.RunID),
			zap.Stringer("guildID", req.GuildID),
			zap.Error(err),
		)

		return err
	}

	guild, err := s.collector.CollectGuild(ctx, req.GuildID)
	if err != nil {
		return fail(0, 0, "could not fetch guild information", err)
	}

	members, err := s.collector.CollectMembers(ctx, req.GuildID, guild.Roles)
	if err != nil {
		return fail(0, 0, "could not fetch the member list", err)
	}

	snapshot := Snapshot{
		Info:     NewGuildInfo(guild),
		Members:  members,
		Channels: make(map[string][]Message, total),
	}

	var (
		totalMessages int
		skipped       int
		channelErrs   error
	)

	for i, ch := range req.Targets {
		if err := ctx.Err(); err != nil {
			return fail(i, totalMessages, "run canceled", err)
		}

		update := fmt.Sprintf("Backing up #%s...", ch.Name)
		reporter.Progress(i, total, totalMessages, update)

		history, err := s.collector.CollectChannel(ctx, ch.ID, func(fetched int) {
			reporter.Progress(i, total, totalMessages+fetched, update)
		})
		if err != nil {
			if errors.Is(err, ErrChannelForbidden) {
				s.logger.Warn("Access denied, skipping channel",
					zap.String("channel", ch.Name),
					zap.Stringer("channelID", ch.ID),
				)
			} else {
				s.logger.Error("Failed to back up channel, skipping",
					zap.String("channel", ch.Name),
					zap.Stringer("channelID", ch.ID),
					zap.Error(err),
				)
			}
			skipped++
			channelErrs = multierr.Append(channelErrs, fmt.Errorf("#%s: %w", ch.Name, err))

			continue
		}

		// Two channels can share a name; suffix the ID rather than silently
		// overwriting one history with the other.
		key := ch.Name
		if _, exists := snapshot.Channels[key]; exists {
			key = ch.Name + "-" + ch.ID.String()
		}
		snapshot.Channels[key] = history
		totalMessages += len(history)
	}

	archiveName := archive.ArchiveName(guild.Name, startedAt)
	data, err := archive.BuildZip(snapshot, archiveName)
	if err != nil {
		return fail(total-skipped, totalMessages, "could not build the archive", err)
	}

	path, err := s.store.Save(archiveName, data)
	if err != nil {
		return fail(total-skipped, totalMessages, "could not save the archive", err)
	}

	summary.Status = catalog.StatusCompleted
	summary.Channels = total - skipped
	summary.Messages = totalMessages

	rec := catalog.Record{
		RunID:           summary.RunID,
		GuildID:         req.GuildID.String(),
		GuildName:       guild.Name,
		RequestedBy:     req.RequestedBy,
		Scope:           req.Scope,
		Channels:        total - skipped,
		ChannelsSkipped: skipped,
		Messages:        totalMessages,
		ArchivePath:     path,
		ArchiveBytes:    int64(len(data)),
		StartedAt:       startedAt,
		FinishedAt:      s.now(),
		Status:          catalog.StatusCompleted,
	}
	if channelErrs != nil {
		rec.Error = channelErrs.Error()
	}
	if err := s.catalog.Put(rec); err != nil {
		// The archive is on disk; a catalog failure should not fail the run.
		s.logger.Error("Failed to record run in catalog", zap.Error(err))
	}

	reporter.Success(total, totalMessages, path, humanize.Bytes(uint64(len(data))))

	s.logger.Info("Backup run completed",
		zap.String("runID", summary.RunID),
		zap.String("path", path),
		zap.Int("messages", totalMessages),
		zap.Int("channelsSkipped", skipped),
	)

	return channelErrs
}
