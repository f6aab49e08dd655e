package backup

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cenkalti/backoff/v4"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/httputil"
	"go.uber.org/zap"

	"github.com/Raikerian/go-discord-backup/internal/config"
)

// ErrChannelForbidden marks a channel the bot is not allowed to read. Runs
// skip such channels and continue.
var ErrChannelForbidden = errors.New("channel access forbidden")

// collectMaxRetries bounds the exponential backoff applied to transient
// Discord REST failures.
const collectMaxRetries = 5

// Fetcher is the slice of the Discord client the collector needs.
// *session.Session satisfies it.
type Fetcher interface {
	GuildWithCount(guildID discord.GuildID) (*discord.Guild, error)
	Channels(guildID discord.GuildID) ([]discord.Channel, error)
	Members(guildID discord.GuildID, limit uint) ([]discord.Member, error)
	Messages(channelID discord.ChannelID, limit uint) ([]discord.Message, error)
	MessagesBefore(channelID discord.ChannelID, before discord.MessageID, limit uint) ([]discord.Message, error)
}

// Collector pulls guild data from Discord page by page, retrying transient
// REST failures.
type Collector struct {
	fetcher     Fetcher
	logger      *zap.Logger
	pageSize    uint
	maxMessages int
}

// NewCollector creates a collector using the configured page size and
// per-channel message limit.
func NewCollector(fetcher Fetcher, cfg *config.Config, logger *zap.Logger) *Collector {
	return &Collector{
		fetcher:     fetcher,
		logger:      logger.Named("collector"),
		pageSize:    cfg.Backup.PageSize,
		maxMessages: cfg.Backup.MaxMessages,
	}
}

// CollectGuild fetches the guild with its approximate member count.
func (c *Collector) CollectGuild(ctx context.Context, guildID discord.GuildID) (*discord.Guild, error) {
	var guild *discord.Guild
	err := c.retry(ctx, func() error {
		var err error
		guild, err = c.fetcher.GuildWithCount(guildID)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}

	return guild, nil
}

// CollectChannels fetches the guild's channels and returns the archivable
// ones (text and announcement channels) ordered by position.
func (c *Collector) CollectChannels(ctx context.Context, guildID discord.GuildID) ([]discord.Channel, error) {
	var channels []discord.Channel
	err := c.retry(ctx, func() error {
		var err error
		channels, err = c.fetcher.Channels(guildID)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channels of guild %s: %w", guildID, err)
	}

	archivable := channels[:0]
	for _, ch := range channels {
		if Archivable(ch.Type) {
			archivable = append(archivable, ch)
		}
	}

	sort.SliceStable(archivable, func(i, j int) bool {
		return archivable[i].Position < archivable[j].Position
	})

	return archivable, nil
}

// Archivable reports whether history of a channel type can be exported.
func Archivable(t discord.ChannelType) bool {
	return t == discord.GuildText || t == discord.GuildNews
}

// CollectMembers fetches the full member list and converts it into the
// archive projection keyed by user ID. Role IDs are resolved against the
// given guild roles; the @everyone role is listed first for every member.
func (c *Collector) CollectMembers(ctx context.Context, guildID discord.GuildID, roles []discord.Role) (map[string]Member, error) {
	var members []discord.Member
	err := c.retry(ctx, func() error {
		var err error
		// Limit 0 fetches the complete list; the client paginates internally.
		members, err = c.fetcher.Members(guildID, 0)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members of guild %s: %w", guildID, err)
	}

	roleNames := make(map[discord.RoleID]string, len(roles))
	everyoneName := "@everyone"
	for _, r := range roles {
		if r.ID == discord.RoleID(guildID) {
			everyoneName = r.Name

			continue
		}
		roleNames[r.ID] = r.Name
	}

	out := make(map[string]Member, len(members))
	for _, m := range members {
		out[m.User.ID.String()] = NewMember(m, roleNames, everyoneName)
	}

	c.logger.Debug("Collected guild members",
		zap.Stringer("guildID", guildID),
		zap.Int("count", len(out)),
	)

	return out, nil
}

// CollectChannel exports the channel's message history, newest first, pulling
// pages until a short page signals the beginning of the channel. onPage, when
// set, is invoked with the running message count after every fetched page.
// A 403 from Discord surfaces as ErrChannelForbidden.
func (c *Collector) CollectChannel(ctx context.Context, channelID discord.ChannelID, onPage func(fetched int)) ([]Message, error) {
	history := make([]Message, 0, c.pageSize)
	var before discord.MessageID

	for {
		var batch []discord.Message
		err := c.retry(ctx, func() error {
			var err error
			if before == 0 {
				batch, err = c.fetcher.Messages(channelID, c.pageSize)
			} else {
				batch, err = c.fetcher.MessagesBefore(channelID, before, c.pageSize)
			}

			return err
		})
		if err != nil {
			if isForbidden(err) {
				return nil, fmt.Errorf("%w: %s", ErrChannelForbidden, err)
			}

			return nil, fmt.Errorf("failed to fetch messages of channel %s: %w", channelID, err)
		}

		if len(batch) == 0 {
			break
		}

		for _, msg := range batch {
			history = append(history, NewMessage(msg))
		}
		before = batch[len(batch)-1].ID

		if onPage != nil {
			onPage(len(history))
		}

		if c.maxMessages > 0 && len(history) >= c.maxMessages {
			history = history[:c.maxMessages]

			break
		}

		if uint(len(batch)) < c.pageSize {
			break
		}
	}

	c.logger.Debug("Collected channel history",
		zap.Stringer("channelID", channelID),
		zap.Int("messages", len(history)),
	)

	return history, nil
}

// retry runs op, retrying transient Discord failures (rate limits, server
// errors, network hiccups) with capped exponential backoff. Client errors
// are returned immediately.
func (c *Collector) retry(ctx context.Context, op func() error) error {
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), collectMaxRetries), ctx)

	return backoff.Retry(func() error {
		err := op()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return backoff.Permanent(err)
		case isTransient(err):
			c.logger.Warn("Transient Discord error, will retry", zap.Error(err))

			return err
		default:
			return backoff.Permanent(err)
		}
	}, bo)
}

func httpStatus(err error) (int, bool) {
	var herr *httputil.HTTPError
	if errors.As(err, &herr) {
		return herr.Status, true
	}

	return 0, false
}

func isTransient(err error) bool {
	status, ok := httpStatus(err)
	if !ok {
		// Not an HTTP-level failure, assume a network hiccup.
		return true
	}

	return status == 429 || status >= 500
}

func isForbidden(err error) bool {
	status, ok := httpStatus(err)

	return ok && status == 403
}
