// Package nflscrapr loads the nflscrapR play-by-play, roster and games tables.
package nflscrapr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tyler180/fantasy-market-share/internal/marketshare"
)

const dataRoot = "https://raw.githubusercontent.com/ryurko/nflscrapR-data/master"

// 2019 regular season tables.
const (
	PlaysURL  = dataRoot + "/play_by_play_data/regular_season/reg_pbp_2019.csv"
	RosterURL = dataRoot + "/roster_data/regular_season/reg_roster_2019.csv"
	GamesURL  = dataRoot + "/games_data/regular_season/reg_games_2019.csv"
)

// Locations names where each input table lives.
type Locations struct {
	Plays  string
	Roster string
	Games  string
}

// DefaultLocations returns the published 2019 regular season tables.
func DefaultLocations() Locations {
	return Locations{Plays: PlaysURL, Roster: RosterURL, Games: GamesURL}
}

// Load fetches and decodes all three tables. Any fetch or shape error aborts
// the load; nothing is returned partially.
func Load(ctx context.Context, f *Fetcher, loc Locations) (marketshare.Tables, error) {
	var t marketshare.Tables

	b, err := f.Fetch(ctx, loc.Plays)
	if err != nil {
		return t, fmt.Errorf("load plays: %w", err)
	}
	plays, err := DecodePlays(b)
	if err != nil {
		return t, err
	}

	b, err = f.Fetch(ctx, loc.Roster)
	if err != nil {
		return t, fmt.Errorf("load roster: %w", err)
	}
	roster, err := DecodeRoster(b)
	if err != nil {
		return t, err
	}

	b, err = f.Fetch(ctx, loc.Games)
	if err != nil {
		return t, fmt.Errorf("load games: %w", err)
	}
	games, err := DecodeGames(b)
	if err != nil {
		return t, err
	}

	slog.Info("loaded tables", "plays", len(plays), "roster", len(roster), "games", len(games))
	return marketshare.Tables{Plays: plays, Roster: roster, Games: games}, nil
}
