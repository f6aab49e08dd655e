// Package bot wires the Discord session, the command manager and the event
// handlers together.
package bot

import (
	"context"
	"errors"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/session"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Raikerian/go-discord-backup/internal/commands"
	"github.com/Raikerian/go-discord-backup/internal/config"
)

// Bot represents the Discord bot.
type Bot struct {
	session *session.Session
	cfg     *config.Config
	manager *commands.Manager
	logger  *zap.Logger
}

// NewBotParams holds dependencies for NewBot.
type NewBotParams struct {
	fx.In
	Cfg     *config.Config
	Session *session.Session
	Manager *commands.Manager
	Logger  *zap.Logger
}

// NewBot creates and initializes a new Bot, attaching the interaction
// handler to the session. Session opening is handled by the Fx lifecycle.
func NewBot(params NewBotParams) (*Bot, error) {
	if params.Session == nil {
		return nil, errors.New("session provided to NewBot is nil")
	}
	if params.Manager == nil {
		return nil, errors.New("command manager provided to NewBot is nil")
	}

	b := &Bot{
		session: params.Session,
		cfg:     params.Cfg,
		manager: params.Manager,
		logger:  params.Logger,
	}

	params.Session.AddHandler(func(e *gateway.InteractionCreateEvent) {
		// Command execution does REST calls of its own; keep the gateway
		// event loop free.
		go handleInteraction(context.Background(), b.session, e, b.manager, b.logger)
	})

	return b, nil
}

// Start registers the slash commands for every configured guild.
func (b *Bot) Start(ctx context.Context) error {
	guildIDs := make([]discord.GuildID, 0, len(b.cfg.Discord.GuildIDs))
	for _, idStr := range b.cfg.Discord.GuildIDs {
		sf, err := discord.ParseSnowflake(idStr)
		if err != nil {
			b.logger.Error("Failed to parse guild ID, skipping",
				zap.String("guildID", idStr),
				zap.Error(err),
			)

			continue
		}
		guildIDs = append(guildIDs, discord.GuildID(sf))
	}

	if len(guildIDs) == 0 {
		b.logger.Warn("No valid guild IDs configured; no commands will be registered")

		return nil
	}

	b.manager.RegisterCommands(guildIDs)

	return nil
}

// Stop performs bot-specific shutdown. Registered commands are left in place
// so they survive restarts; session closing is handled by the Fx lifecycle.
func (b *Bot) Stop(ctx context.Context) error {
	b.logger.Info("Bot stopping")

	return nil
}
