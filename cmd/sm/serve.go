package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/stationmaster/internal/config"
	"github.com/zulandar/stationmaster/internal/dashboard"
	"github.com/zulandar/stationmaster/internal/telegraph"
	"github.com/zulandar/stationmaster/internal/telegraph/discord"
	"github.com/zulandar/stationmaster/internal/telegraph/slack"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Stationmaster API server",
		Long:  "Serves the JSON API for the web front end and runs the telegraph digest schedule.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to Stationmaster config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default: from config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	announcer, err := buildAnnouncer(cfg)
	if err != nil {
		return err
	}
	if announcer != nil {
		defer announcer.Close()
		go telegraph.RunDigest(ctx, gormDB, announcer, cfg.Telegraph.DigestCron)
	}

	return dashboard.Start(ctx, dashboard.StartOpts{
		DB:        gormDB,
		Port:      port,
		Out:       cmd.OutOrStdout(),
		Announcer: announcer,
	})
}

// buildAnnouncer wires the configured chat adapters, or returns nil when
// none are configured.
func buildAnnouncer(cfg *config.Config) (telegraph.Announcer, error) {
	var multi telegraph.Multi

	if cfg.Telegraph.Slack.BotToken != "" {
		a, err := slack.New(slack.Opts{
			BotToken:  cfg.Telegraph.Slack.BotToken,
			ChannelID: cfg.Telegraph.Slack.ChannelID,
		})
		if err != nil {
			return nil, fmt.Errorf("telegraph slack: %w", err)
		}
		multi = append(multi, a)
	}

	if cfg.Telegraph.Discord.BotToken != "" {
		a, err := discord.New(discord.Opts{
			BotToken:  cfg.Telegraph.Discord.BotToken,
			ChannelID: cfg.Telegraph.Discord.ChannelID,
		})
		if err != nil {
			return nil, fmt.Errorf("telegraph discord: %w", err)
		}
		multi = append(multi, a)
	}

	if len(multi) == 0 {
		return nil, nil
	}
	return multi, nil
}
