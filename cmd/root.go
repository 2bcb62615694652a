package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"octoterm/internal/github"
	"octoterm/internal/i18n"
	"octoterm/internal/poll"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds CLI configuration.
type Config struct {
	DBPath      string
	LogPath     string
	MetricsPath string

	Token    string  `env:"GITHUB_TOKEN"`
	APIURL   string  `env:"OCTOTERM_API_URL,default=https://api.github.com"`
	LogLevel string  `env:"OCTOTERM_LOG_LEVEL,default=info"`
	PollSpec string  `env:"OCTOTERM_POLL,default=@every 2m"`
	Language string  `env:"OCTOTERM_LANG"`
	Rate     float64 `env:"OCTOTERM_RATE,default=5"`

	PollingEnabled bool
}

// ParseFlags parses command-line flags and returns configuration.
func ParseFlags() (*Config, error) {
	// Load .env files first so env-based defaults work with flag parsing.
	// godotenv never overrides variables that are already set.
	for _, path := range []string{".env", ".env.local"} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	config, err := parse(os.Args[1:], flag.CommandLine.Output())
	if err != nil {
		return nil, err
	}

	configDir := filepath.Dir(config.DBPath)
	settings, err := loadOnboardingSettings(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding settings: %w", err)
	}

	if shouldRunOnboarding(settings) {
		settings, err = runOnboarding(configDir, config.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		}
		if settings.capturedToken != "" {
			config.Token = settings.capturedToken
		}
	}

	config.PollingEnabled = settings.PollingEnabled || !settings.Completed
	if config.Language == "" {
		config.Language = settings.Language
	}
	return config, nil
}

// parse decodes the environment, then lets flags in args override it.
func parse(args []string, usage io.Writer) (*Config, error) {
	config := &Config{}
	if err := envdecode.Decode(config); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	fs := flag.NewFlagSet("octoterm", flag.ContinueOnError)
	fs.SetOutput(usage)
	fs.StringVar(&config.DBPath, "db", "", "Path to SQLite database file (default: ~/.octoterm/octoterm.db)")
	fs.StringVar(&config.Token, "token", config.Token, "GitHub personal access token (or set GITHUB_TOKEN)")
	fs.StringVar(&config.APIURL, "api", config.APIURL, "GitHub API base URL")
	fs.StringVar(&config.LogPath, "log", "", "Path to log file (default: ~/.octoterm/octoterm.log)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&config.PollSpec, "poll", config.PollSpec, "Notification poll schedule (cron spec or @every)")
	fs.StringVar(&config.Language, "lang", config.Language, "Interface language (en, ko)")
	fs.Float64Var(&config.Rate, "rate", config.Rate, "Maximum GitHub API requests per second")
	fs.StringVar(&config.MetricsPath, "metrics", "", "Write runtime metrics to this file on exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if config.APIURL == "" {
		config.APIURL = github.DefaultBaseURL
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	if config.DBPath == "" || config.LogPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir := filepath.Join(home, ".octoterm")
		if err := os.MkdirAll(configDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if config.DBPath == "" {
			config.DBPath = filepath.Join(configDir, "octoterm.db")
		}
		if config.LogPath == "" {
			config.LogPath = filepath.Join(configDir, "octoterm.log")
		}
	}
	config.Token = strings.TrimSpace(config.Token)
	return config, nil
}

func (c *Config) validate() error {
	if err := poll.ValidateSpec(c.PollSpec); err != nil {
		return err
	}
	if c.Rate <= 0 {
		return fmt.Errorf("invalid rate %v: must be positive", c.Rate)
	}
	if _, err := i18n.ParseLanguage(c.Language); err != nil {
		return err
	}
	return nil
}
