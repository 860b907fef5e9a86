package marketshare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_TwoPlayGame(t *testing.T) {
	tables := Tables{
		Plays: []Play{
			run("G1", "T", "R1", "Runner"),
			pass("G1", "T", "P1", "Catcher", 1),
		},
		Roster: []RosterEntry{
			{GsisID: "R1", Team: "T", Position: PosRB},
			{GsisID: "P1", Team: "T", Position: PosWR},
		},
		Games: []Game{{GameID: "G1", Season: 2019, Week: 12}},
	}

	rep, err := Build(tables, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []PlayerGameStat{
		{GameID: "G1", PlayerID: "P1", PlayerName: "Catcher", Targets: 1, Catches: 1, Touches: 1},
		{GameID: "G1", PlayerID: "R1", PlayerName: "Runner", Carries: 1, Touches: 1},
	}, rep.PlayerGames)
	assert.Equal(t, []TeamGameStat{{GameID: "G1", Team: "T", TotalPlays: 2, TeamPassAttempts: 1}}, rep.TeamGames)

	require.Len(t, rep.Enriched, 2)
	for _, r := range rep.Enriched {
		switch r.PlayerID {
		case "R1":
			assert.InDelta(t, 0.5, r.RBMarketShare, 1e-12)
		case "P1":
			assert.InDelta(t, 1.0, r.RecMarketShare, 1e-12)
		default:
			t.Fatalf("unexpected player %q", r.PlayerID)
		}
	}

	assert.Equal(t, []RBWeekRow{{PlayerName: "Runner", RBMarketShare: 0.5}}, rep.Views.RBShareWeek)
	assert.Equal(t, []RecWeekRow{{PlayerName: "Catcher", Position: PosWR, RecMarketShare: 1.0}}, rep.Views.RecShareWeek)
	require.Len(t, rep.TopRBs, 1)
	assert.Equal(t, "Runner", rep.TopRBs[0].PlayerName)
	require.Len(t, rep.Charts.TopRBWeekly, 1)
	assert.Equal(t, []Point{{Week: 12, Value: 0.5}}, rep.Charts.TopRBWeekly[0].Points)
}

func TestBuild_QuarterbackNeverInViews(t *testing.T) {
	tables := Tables{
		Plays: []Play{
			run("G1", "T", "Q1", "Scrambler"),
			run("G1", "T", "Q1", "Scrambler"),
			pass("G1", "T", "W1", "Wideout", 1),
		},
		Roster: []RosterEntry{
			{GsisID: "Q1", Team: "T", Position: "QB"},
			{GsisID: "W1", Team: "T", Position: PosWR},
		},
		Games: []Game{{GameID: "G1", Season: 2019, Week: 4}},
	}

	rep, err := Build(tables, DefaultOptions())
	require.NoError(t, err)
	for _, r := range rep.Views.RBShareAll {
		assert.NotEqual(t, "Scrambler", r.PlayerName)
	}
	for _, r := range rep.Views.RecShareAll {
		assert.NotEqual(t, "Scrambler", r.PlayerName)
	}
	assert.Len(t, rep.Views.RecShareAll, 1)
	assert.Empty(t, rep.Views.RecShareWeek, "focus week 12 has no games")
}

func TestBuild_EmptyTables(t *testing.T) {
	rep, err := Build(Tables{}, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, rep.Enriched)
	assert.Empty(t, rep.TopRBs)
	assert.Empty(t, rep.Charts.RecWeekly.Points)
}
