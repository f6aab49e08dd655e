package bot

import (
	"context"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
	"go.uber.org/zap"

	"github.com/Raikerian/go-discord-backup/internal/commands"
)

func handleInteraction(ctx context.Context, s *session.Session, e *gateway.InteractionCreateEvent, manager *commands.Manager, logger *zap.Logger) {
	switch data := e.Data.(type) {
	case *discord.CommandInteraction:
		logger.Info("Received slash command",
			zap.String("commandName", data.Name),
			zap.Stringer("guildID", e.GuildID),
		)

		cmd, ok := manager.Get(data.Name)
		if !ok {
			logger.Warn("Unknown command", zap.String("commandName", data.Name))
			err := s.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
				Type: api.MessageInteractionWithSource,
				Data: &api.InteractionResponseData{
					Content: option.NewNullableString("Command not found."),
				},
			})
			if err != nil {
				logger.Error("Failed to respond to unknown command", zap.Error(err))
			}

			return
		}

		if err := cmd.Execute(ctx, s, e, data); err != nil {
			logger.Error("Error executing command",
				zap.String("commandName", data.Name),
				zap.Error(err),
			)
			errResp := s.RespondInteraction(e.ID, e.Token, api.InteractionResponse{
				Type: api.MessageInteractionWithSource,
				Data: &api.InteractionResponseData{
					Content: option.NewNullableString("An error occurred while executing the command."),
				},
			})
			if errResp != nil {
				logger.Error("Failed to send error response", zap.Error(errResp))
			}
		}

	default:
		logger.Debug("Received unhandled interaction type", zap.Any("type", e.Data))
	}
}
