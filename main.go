package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"octoterm/cmd"
	"octoterm/internal/app"
	"octoterm/internal/auth"
	"octoterm/internal/db"
	"octoterm/internal/github"
	"octoterm/internal/i18n"
	"octoterm/internal/logging"
	"octoterm/internal/metrics"
	"octoterm/internal/poll"
	"octoterm/internal/store"
	"octoterm/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := cmd.ParseFlags()
	if err != nil {
		return err
	}

	log, logFile, err := logging.New(logging.Config{Path: config.LogPath, Level: config.LogLevel})
	if err != nil {
		return err
	}
	defer logFile.Close()
	log.WithField("version", version).Info("starting octoterm")

	database, err := db.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	text, err := i18n.New(config.Language)
	if err != nil {
		return err
	}

	opts := github.Options{BaseURL: config.APIURL, RatePerSecond: config.Rate, Logger: log}
	provider := auth.NewProvider(
		db.NewCredentialStore(database),
		auth.GitHubValidator(github.NewClient(nil, opts)),
		log.WithField("component", "auth"),
	)
	client := github.NewClient(provider, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.Token != "" {
		// A token from flags, the environment or onboarding replaces the stored one.
		if _, err := provider.SignIn(ctx, config.Token); err != nil {
			log.WithError(err).Warn("configured token rejected")
			fmt.Fprintf(os.Stderr, "ℹ  %s\n", text.Describe(err))
		}
	}

	collector := metrics.New()
	st := store.New(app.NewState(), app.Reducer(app.Env{
		API:      client,
		Auth:     provider,
		Settings: db.NewSettingsStore(database),
		Text:     text,
	}),
		store.WithLogger(log.WithField("component", "store")),
		store.WithObserver(collector),
		store.WithContext(ctx),
	)
	defer st.Close()

	st.Send(app.Started{})
	st.Send(app.TabSelected{Tab: app.TabHome})

	if config.PollingEnabled {
		poller, err := poll.New(config.PollSpec, func() { st.Send(app.NotificationsPolled{}) },
			log.WithField("component", "poll"))
		if err != nil {
			return err
		}
		poller.Start()
		defer func() {
			stopCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
			defer stop()
			poller.Stop(stopCtx)
		}()
	}

	p := tea.NewProgram(ui.New(st, text), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run app: %w", err)
	}

	if config.MetricsPath != "" {
		if err := dumpMetrics(config.MetricsPath, collector); err != nil {
			log.WithError(err).Warn("failed to write metrics")
		}
	}
	return nil
}

func dumpMetrics(path string, c *metrics.Collector) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.WriteText(f)
}
