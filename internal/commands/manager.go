package commands

import (
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ManagerParams holds dependencies for NewManager.
type ManagerParams struct {
	fx.In
	Session       *session.Session
	ApplicationID discord.AppID
	Logger        *zap.Logger
	Commands      []Command `group:"commands"`
}

// Manager holds the command set and handles its registration with Discord.
type Manager struct {
	session       *session.Session
	applicationID discord.AppID
	logger        *zap.Logger
	commands      map[string]Command
}

// NewManager creates a Manager from the provided command group.
func NewManager(params ManagerParams) *Manager {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	commands := make(map[string]Command, len(params.Commands))
	for _, cmd := range params.Commands {
		if cmd == nil {
			logger.Warn("Skipping nil command in command group")

			continue
		}
		if _, exists := commands[cmd.Name()]; exists {
			logger.Warn("Duplicate command name, keeping the first one", zap.String("commandName", cmd.Name()))

			continue
		}
		commands[cmd.Name()] = cmd
	}

	return &Manager{
		session:       params.Session,
		applicationID: params.ApplicationID,
		logger:        logger,
		commands:      commands,
	}
}

// Get retrieves a registered command by its name.
func (m *Manager) Get(name string) (Command, bool) {
	cmd, ok := m.commands[name]

	return cmd, ok
}

// RegisterCommands overwrites the slash command set for each of the given
// guilds.
func (m *Manager) RegisterCommands(guildIDs []discord.GuildID) {
	cmds := make([]api.CreateCommandData, 0, len(m.commands))
	for _, cmd := range m.commands {
		data := api.CreateCommandData{
			Name:        cmd.Name(),
			Description: cmd.Description(),
			Options:     cmd.Options(),
		}
		if restricted, ok := cmd.(PermissionRestricted); ok {
			perms := restricted.DefaultPermissions()
			data.DefaultMemberPermissions = &perms
		}
		cmds = append(cmds, data)
	}

	if len(cmds) == 0 {
		m.logger.Info("No commands to register.")

		return
	}

	for _, guildID := range guildIDs {
		registered, err := m.session.BulkOverwriteGuildCommands(m.applicationID, guildID, cmds)
		if err != nil {
			m.logger.Error("Failed to bulk overwrite commands for guild",
				zap.Error(err),
				zap.Stringer("applicationID", m.applicationID),
				zap.Stringer("guildID", guildID),
			)

			continue
		}
		m.logger.Info("Successfully registered slash commands for guild",
			zap.Int("count", len(registered)),
			zap.Stringer("guildID", guildID),
		)
	}
}

// UnregisterAllCommands removes all commands for the given guilds.
func (m *Manager) UnregisterAllCommands(guildIDs []discord.GuildID) {
	for _, guildID := range guildIDs {
		_, err := m.session.BulkOverwriteGuildCommands(m.applicationID, guildID, []api.CreateCommandData{})
		if err != nil {
			m.logger.Error("Failed to unregister commands for guild",
				zap.Error(err),
				zap.Stringer("guildID", guildID),
			)

			continue
		}
		m.logger.Info("Unregistered all slash commands for guild", zap.Stringer("guildID", guildID))
	}
}
