// Package main is the habitctl command-line client for the habits API.
package main

import (
	"fmt"
	"os"

	"habits/internal/client"
	"habits/internal/config"
	"habits/internal/logging"
	"habits/internal/tracker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	apiURL     string
	env        string
	logLevel   string
}

// session is what every subcommand works with.
type session struct {
	tracker *tracker.Tracker
	log     *zap.Logger
}

func (g *globalFlags) open() (*session, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.env != "" {
		cfg.Env = g.env
	}
	if g.apiURL != "" {
		cfg.Client.BaseURL = g.apiURL
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	baseURL, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return nil, err
	}
	api := client.New(baseURL, cfg.Client.Timeout)
	tr := tracker.New(api, logger, tracker.WithLocation(cfg.Location()))
	return &session{tracker: tr, log: logger}, nil
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "habitctl",
		Short:         "Track weekly habits from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&g.apiURL, "api-url", "", "API base URL, e.g. http://localhost:8080/api")
	pf.StringVar(&g.env, "env", "", "Environment profile (development, production)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides log_level and LOG_LEVEL")

	cmd.AddCommand(
		listCmd(g),
		addCmd(g),
		deleteCmd(g),
		completeCmd(g),
		toggleCmd(g),
		searchCmd(g),
		showCmd(g),
		editCmd(g),
	)
	return cmd
}
