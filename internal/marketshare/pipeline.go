package marketshare

import (
	"fmt"
	"log/slog"
)

// Options tunes the report views.
type Options struct {
	FocusWeek  int // week of the *_wk<N> views
	TopRBCount int // running backs in the faceted chart
}

// DefaultOptions mirrors the published report: week 12, top 20 backs.
func DefaultOptions() Options {
	return Options{FocusWeek: 12, TopRBCount: 20}
}

// ChartData holds the series handed to the chart renderer.
type ChartData struct {
	RecWeekly              Series
	RecWeeklyByPosition    []Series
	RecWeeklyMaxByPosition []Series
	TopRBWeekly            []Series
}

// Report is the full result of one pipeline run.
type Report struct {
	PlayerGames []PlayerGameStat
	TeamGames   []TeamGameStat
	Enriched    []EnrichedStat
	Joins       JoinCounts
	Views       Views
	TopRBs      []RBAverage
	Charts      ChartData
}

// Build runs aggregation, enrichment, metrics and view derivation once over t.
func Build(t Tables, opts Options) (*Report, error) {
	players := PlayerGameStats(t.Plays)
	teams := TeamGameStats(t.Plays)
	slog.Info("aggregated plays", "plays", len(t.Plays), "player_games", len(players), "team_games", len(teams))

	enriched, joins := Enrich(players, t.Roster, t.Games, teams)
	slog.Info("joined",
		"player_games", joins.PlayerGames,
		"with_roster", joins.WithRoster,
		"with_game", joins.WithGame,
		"with_team", joins.WithTeam,
	)

	if err := ApplyMetrics(enriched); err != nil {
		return nil, fmt.Errorf("apply metrics: %w", err)
	}

	views := BuildViews(enriched, opts.FocusWeek)
	top := TopRBs(views.RBShareAll, opts.TopRBCount)
	slog.Info("built views",
		"rec_week", len(views.RecShareWeek),
		"rb_week", len(views.RBShareWeek),
		"rb_all", len(views.RBShareAll),
		"rec_all", len(views.RecShareAll),
		"top_rbs", len(top),
	)

	return &Report{
		PlayerGames: players,
		TeamGames:   teams,
		Enriched:    enriched,
		Joins:       joins,
		Views:       views,
		TopRBs:      top,
		Charts: ChartData{
			RecWeekly:              WeeklyMean(views.RecShareAll),
			RecWeeklyByPosition:    WeeklyMeanByPosition(views.RecShareAll),
			RecWeeklyMaxByPosition: WeeklyMaxByPosition(views.RecShareAll),
			TopRBWeekly:            RBWeeklySeries(views.RBShareAll, top),
		},
	}, nil
}
