// Package config reads run settings from MARKET_SHARE_* environment
// variables. An empty environment yields the published 2019 report.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tyler180/fantasy-market-share/internal/marketshare"
	"github.com/tyler180/fantasy-market-share/internal/nflscrapr"
)

const Prefix = "MARKET_SHARE_"

type Config struct {
	PlaysURL  string `env:"PLAYS_URL"`
	RosterURL string `env:"ROSTER_URL"`
	GamesURL  string `env:"GAMES_URL"`
	OutDir    string `env:"OUT_DIR" envDefault:"."`

	FocusWeek  int `env:"FOCUS_WEEK" envDefault:"12"`
	TopRBCount int `env:"TOP_RB_COUNT" envDefault:"20"`

	LogLevel    slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"60s"`

	// Optional sinks; each is enabled by its own setting.
	S3Bucket        string `env:"S3_BUCKET"`
	S3Prefix        string `env:"S3_PREFIX" envDefault:"fantasy"`
	DDBTable        string `env:"DDB_TABLE"`
	AthenaDB        string `env:"ATHENA_DB"`
	AthenaWorkgroup string `env:"ATHENA_WORKGROUP" envDefault:"primary"`
	AthenaOutput    string `env:"ATHENA_OUTPUT"`
	SQLitePath      string `env:"SQLITE_PATH"`
}

// Load parses the environment over the fixed source locations.
func Load() (Config, error) {
	cfg := Config{
		PlaysURL:  nflscrapr.PlaysURL,
		RosterURL: nflscrapr.RosterURL,
		GamesURL:  nflscrapr.GamesURL,
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.OutDir == "" {
		errs = append(errs, errors.New("OUT_DIR must not be empty"))
	}
	if c.FocusWeek < 1 {
		errs = append(errs, fmt.Errorf("FOCUS_WEEK must be positive, got %d", c.FocusWeek))
	}
	if c.TopRBCount < 0 {
		errs = append(errs, fmt.Errorf("TOP_RB_COUNT must not be negative, got %d", c.TopRBCount))
	}
	if c.AthenaDB != "" && c.S3Bucket == "" {
		errs = append(errs, errors.New("ATHENA_DB needs S3_BUCKET for the table location"))
	}
	return errors.Join(errs...)
}

func (c Config) Locations() nflscrapr.Locations {
	return nflscrapr.Locations{Plays: c.PlaysURL, Roster: c.RosterURL, Games: c.GamesURL}
}

func (c Config) Options() marketshare.Options {
	return marketshare.Options{FocusWeek: c.FocusWeek, TopRBCount: c.TopRBCount}
}

// NeedsAWS reports whether any input or sink talks to AWS.
func (c Config) NeedsAWS() bool {
	return c.S3Bucket != "" || c.DDBTable != "" || c.AthenaDB != "" ||
		isS3(c.PlaysURL) || isS3(c.RosterURL) || isS3(c.GamesURL)
}

func isS3(loc string) bool { return strings.HasPrefix(loc, "s3://") }
