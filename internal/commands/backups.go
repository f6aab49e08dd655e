package commands

import (
	"context"
	"fmt"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Raikerian/go-discord-backup/internal/catalog"
	"github.com/Raikerian/go-discord-backup/internal/config"
)

// BackupsCommand handles /backups: an ephemeral listing of the most recent
// backup runs recorded for the guild.
type BackupsCommand struct {
	logger  *zap.Logger
	catalog *catalog.Store
	limit   int
}

// NewBackupsCommand creates a new BackupsCommand.
func NewBackupsCommand(logger *zap.Logger, cat *catalog.Store, cfg *config.Config) Command {
	return &BackupsCommand{
		logger:  logger.Named("backups_command"),
		catalog: cat,
		limit:   cfg.Catalog.HistoryLimit,
	}
}

// Name returns the name of the command.
func (c *BackupsCommand) Name() string {
	return "backups"
}

// Description returns the description of the command.
func (c *BackupsCommand) Description() string {
	return "Lists the most recent backups of this server."
}

// Options returns the command options.
func (c *BackupsCommand) Options() []discord.CommandOption {
	return nil
}

// DefaultPermissions restricts the command to administrators.
func (c *BackupsCommand) DefaultPermissions() discord.Permissions {
	return discord.PermissionAdministrator
}

// Execute responds with an ephemeral embed listing recent runs.
func (c *BackupsCommand) Execute(ctx context.Context, s *session.Session, e *gateway.InteractionCreateEvent, data *discord.CommandInteraction) error {
	if !e.GuildID.IsValid() {
		return respondEphemeral(s, e, "This command can only be used in a server.")
	}

	records, err := c.catalog.ListByGuild(e.GuildID.String(), c.limit)
	if err != nil {
		c.logger.Error("Failed to list backups", zap.Error(err), zap.Stringer("guildID", e.GuildID))

		return respondEphemeral(s, e, "Could not read the backup catalog. Please try again.")
	}

	if len(records) == 0 {
		return respondEphemeral(s, e, "No backups recorded for this server yet.")
	}

	embed := discord.Embed{
		Title: "Recent backups",
		Color: 0x3498DB,
	}
	for _, rec := range records {
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:  fmt.Sprintf("%s (%s)", rec.StartedAt.Local().Format("2006-01-02 15:04"), rec.Status),
			Value: describeRecord(rec),
		})
	}

	return s.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
		Type: api.MessageInteractionWithSource,
		Data: &api.InteractionResponseData{
			Embeds: &[]discord.Embed{embed},
			Flags:  discord.EphemeralMessage,
		},
	})
}

func describeRecord(rec catalog.Record) string {
	desc := fmt.Sprintf("Scope: %s • Channels: %d", rec.Scope, rec.Channels)
	if rec.ChannelsSkipped > 0 {
		desc += fmt.Sprintf(" (%d skipped)", rec.ChannelsSkipped)
	}
	desc += fmt.Sprintf(" • Messages: %s", humanize.Comma(int64(rec.Messages)))
	if rec.Status == catalog.StatusCompleted {
		desc += fmt.Sprintf(" • Size: %s", humanize.Bytes(uint64(rec.ArchiveBytes)))
	}
	desc += fmt.Sprintf("\nFinished %s, requested by %s", humanize.Time(rec.FinishedAt), rec.RequestedBy)

	return desc
}
