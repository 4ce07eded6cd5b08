package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/akaliyev/sponso/internal/bot"
	discordadapter "github.com/akaliyev/sponso/internal/bot/discord"
	slackadapter "github.com/akaliyev/sponso/internal/bot/slack"
	"github.com/akaliyev/sponso/internal/config"
)

func newBotCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Sponso chat bot",
		Long:  "Connects to the configured chat platform (Discord or Slack), runs the lead dialog and button actions, and posts the daily digest.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "sponso.yaml", "path to Sponso config file")
	return cmd
}

func runBot(cmd *cobra.Command, configPath string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Bot.Platform == "" {
		return fmt.Errorf("bot: no platform configured in %s (add bot.platform)", configPath)
	}

	adapter, err := createAdapter(cfg)
	if err != nil {
		return err
	}

	daemon, err := bot.NewDaemon(bot.DaemonOpts{
		DB:      gormDB,
		Config:  cfg,
		Adapter: adapter,
		Out:     cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return daemon.Run(ctx)
}

// createAdapter builds a platform adapter from the config.
func createAdapter(cfg *config.Config) (bot.Adapter, error) {
	switch cfg.Bot.Platform {
	case "discord":
		return discordadapter.New(discordadapter.AdapterOpts{
			BotToken:  cfg.Bot.Discord.BotToken,
			ChannelID: cfg.Bot.Discord.ChannelID,
		})
	case "slack":
		return slackadapter.New(slackadapter.AdapterOpts{
			AppToken:  cfg.Bot.Slack.AppToken,
			BotToken:  cfg.Bot.Slack.BotToken,
			ChannelID: cfg.Bot.Slack.ChannelID,
		})
	default:
		return nil, fmt.Errorf("bot: unsupported platform %q", cfg.Bot.Platform)
	}
}
