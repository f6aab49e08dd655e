// Package main provides the entry point for the Discord backup bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Raikerian/go-discord-backup/internal/app"
	"github.com/Raikerian/go-discord-backup/internal/backup"
	"github.com/Raikerian/go-discord-backup/internal/bot"
	"github.com/Raikerian/go-discord-backup/internal/catalog"
	"github.com/Raikerian/go-discord-backup/internal/commands"
	"github.com/Raikerian/go-discord-backup/internal/config"
	"github.com/Raikerian/go-discord-backup/internal/discord"
	"github.com/Raikerian/go-discord-backup/internal/infrastructure"
)

const shutdownTimeout = 30 * time.Second

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "go-discord-backup",
		Short:        "A Discord bot that archives server data to local ZIP backups",
		Version:      commands.AppVersion,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	application := app.New(
		// Core modules
		config.Module,
		infrastructure.LoggerModule,

		// External service modules
		discord.Module,

		// Application modules
		catalog.Module,
		backup.Module,
		commands.Module,
		bot.Module,

		// Supply the config path
		fx.Supply(configPath),

		// Route Fx's own events through the Zap logger
		fx.WithLogger(infrastructure.NewFxLoggerAdapter),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go application.Run()

	sig := <-sigCh
	fmt.Printf("Received signal: %s, initiating shutdown.\n", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}

	fmt.Println("Application has shut down gracefully.")

	return nil
}
