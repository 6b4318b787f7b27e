// Package config provides YAML-based configuration loading for the
// planner server.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in store.backend.
const (
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the top-level configuration, loaded from config.yaml.
// Secrets (OAuth client secret, Resend API key, token passphrase) are
// taken from the environment, never from the file.
type Config struct {
	Listen   string         `yaml:"listen"`
	Store    StoreConfig    `yaml:"store"`
	Google   GoogleConfig   `yaml:"google"`
	Reminder ReminderConfig `yaml:"reminder"`
}

// StoreConfig selects and parameterizes the row store backend.
type StoreConfig struct {
	Backend          string `yaml:"backend"`           // sheets, sqlite or memory
	SpreadsheetTitle string `yaml:"spreadsheet_title"` // sheets: Drive title to find or create
	SQLitePath       string `yaml:"sqlite_path"`       // sqlite: database file
}

// GoogleConfig holds the OAuth client settings for the sheets backend.
type GoogleConfig struct {
	ClientID    string `yaml:"client_id"`
	RedirectURL string `yaml:"redirect_url"`
	TokenFile   string `yaml:"token_file"` // encrypted refresh token location
}

// ReminderConfig controls the weekly reminder emails.
type ReminderConfig struct {
	Enabled bool     `yaml:"enabled"`
	Cron    string   `yaml:"cron"` // standard 5-field expression
	To      []string `yaml:"to"`
	From    string   `yaml:"from"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendSheets
	}
	if c.Store.SpreadsheetTitle == "" {
		c.Store.SpreadsheetTitle = "Fourth Generation Planner"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "planner.db"
	}
	if c.Google.TokenFile == "" {
		c.Google.TokenFile = "google-token.enc"
	}
	if c.Reminder.Cron == "" {
		c.Reminder.Cron = "0 9 * * 1" // Monday 09:00
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Store.Backend {
	case BackendSheets, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("store.backend %q is not one of sheets, sqlite, memory", c.Store.Backend))
	}
	if c.Store.Backend == BackendSheets {
		if c.Google.ClientID == "" {
			errs = append(errs, "google.client_id is required for the sheets backend")
		}
		if c.Google.RedirectURL == "" {
			errs = append(errs, "google.redirect_url is required for the sheets backend")
		}
	}
	if c.Reminder.Enabled {
		if len(c.Reminder.To) == 0 {
			errs = append(errs, "reminder.to is required when reminders are enabled")
		}
		if _, err := cron.ParseStandard(c.Reminder.Cron); err != nil {
			errs = append(errs, fmt.Sprintf("reminder.cron: %v", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
