package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"go.uber.org/zap"

	"github.com/Raikerian/go-discord-backup/internal/backup"
)

// BackupCommand handles the /backup command: it validates the request and
// hands the long-running collection work to the backup service.
type BackupCommand struct {
	logger  *zap.Logger
	service *backup.Service
}

// NewBackupCommand creates a new BackupCommand.
func NewBackupCommand(logger *zap.Logger, service *backup.Service) Command {
	return &BackupCommand{
		logger:  logger.Named("backup_command"),
		service: service,
	}
}

// Name returns the name of the command.
func (c *BackupCommand) Name() string {
	return "backup"
}

// Description returns the description of the command.
func (c *BackupCommand) Description() string {
	return "Backs up this server's data to a local archive."
}

// Options returns the command options. The channel option narrows the run to
// a single text or announcement channel; without it the whole guild is
// archived.
func (c *BackupCommand) Options() []discord.CommandOption {
	return []discord.CommandOption{
		&discord.ChannelOption{
			OptionName:  "channel",
			Description: "Back up only this channel (default: every text channel)",
			Required:    false,
			ChannelTypes: []discord.ChannelType{
				discord.GuildText,
				discord.GuildNews,
			},
		},
	}
}

// DefaultPermissions restricts the command to administrators.
func (c *BackupCommand) DefaultPermissions() discord.Permissions {
	return discord.PermissionAdministrator
}

// Execute validates the request, posts the status embed, and starts the run
// in the background. The run edits the status embed as it proceeds.
func (c *BackupCommand) Execute(ctx context.Context, s *session.Session, e *gateway.InteractionCreateEvent, data *discord.CommandInteraction) error {
	if !e.GuildID.IsValid() || e.Member == nil {
		return respondEphemeral(s, e, "This command can only be used in a server.")
	}

	c.logger.Info("Backup requested",
		zap.String("user", e.Member.User.Username),
		zap.Stringer("guildID", e.GuildID),
	)

	admin, err := memberIsAdmin(s, e.GuildID, e.Member)
	if err != nil {
		c.logger.Error("Permission check failed", zap.Error(err))

		return respondEphemeral(s, e, "Could not verify your permissions. Please try again.")
	}
	if !admin {
		return respondEphemeral(s, e, "You need the Administrator permission to run backups.")
	}

	if c.service.Tracker().Running(e.GuildID) {
		return respondEphemeral(s, e, "A backup is already running for this server. Wait for it to finish.")
	}

	var channelID discord.ChannelID
	for _, opt := range data.Options {
		if opt.Name == "channel" {
			sf, err := opt.SnowflakeValue()
			if err != nil {
				c.logger.Warn("Invalid channel option", zap.Error(err))

				return respondEphemeral(s, e, "The channel option is invalid.")
			}
			channelID = discord.ChannelID(sf)
		}
	}

	targets, err := c.service.ResolveTargets(ctx, e.GuildID, channelID)
	if err != nil {
		c.logger.Error("Failed to resolve backup targets", zap.Error(err))

		return respondEphemeral(s, e, "Could not list this server's channels. Please try again.")
	}
	if len(targets) == 0 {
		if channelID.IsValid() {
			return respondEphemeral(s, e, "Channel not found, or its type cannot be archived.")
		}

		return respondEphemeral(s, e, "This server has no text channels to back up.")
	}

	scope := "all"
	if channelID.IsValid() {
		scope = "#" + targets[0].Name
	}

	// The status embed is the interaction response; the run edits it in
	// place, so fetch the created message to know where to edit.
	err = s.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
		Type: api.MessageInteractionWithSource,
		Data: &api.InteractionResponseData{
			Embeds: &[]discord.Embed{backup.StartEmbed()},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send status embed: %w", err)
	}

	statusMsg, err := s.InteractionResponse(e.AppID, e.Token)
	if err != nil {
		return fmt.Errorf("failed to fetch status message: %w", err)
	}

	req := backup.Request{
		GuildID:         e.GuildID,
		Targets:         targets,
		Scope:           scope,
		RequestedBy:     e.Member.User.Username,
		StatusChannelID: statusMsg.ChannelID,
		StatusMessageID: statusMsg.ID,
	}

	// The run outlives the interaction; detach it from the handler context.
	go func() {
		if err := c.service.Run(context.Background(), req); err != nil && !errors.Is(err, backup.ErrRunInProgress) {
			c.logger.Warn("Backup run finished with errors",
				zap.Stringer("guildID", req.GuildID),
				zap.Error(err),
			)
		}
	}()

	return nil
}
