package marketshare

import "errors"

// Play types that count as offensive snaps.
const (
	PlayTypePass = "pass"
	PlayTypeRun  = "run"
)

// Positions reported by the views.
const (
	PosRB = "RB"
	PosWR = "WR"
	PosTE = "TE"
)

// ErrDegenerateRatio is returned when a market-share denominator is zero while
// its numerator is not. Consistent play-by-play input can never produce this.
var ErrDegenerateRatio = errors.New("market share: zero denominator with non-zero numerator")

// Play is one play-by-play row. Empty strings stand for absent values.
type Play struct {
	PlayID             string
	GameID             string
	GameDate           string
	PosTeam            string
	DefTeam            string
	PlayType           string
	CompletePass       int // 0/1, only meaningful for pass plays
	ReceiverPlayerID   string
	ReceiverPlayerName string
	RusherPlayerID     string
	RusherPlayerName   string
}

// RosterEntry maps a GSIS player id to team and position for the season.
type RosterEntry struct {
	GsisID   string
	Team     string
	Position string
}

// Game carries the season/week metadata for a game id.
type Game struct {
	GameID string
	Season int
	Week   int
}

// Tables is the in-memory input of one pipeline run.
type Tables struct {
	Plays  []Play
	Roster []RosterEntry
	Games  []Game
}

// PlayerGameStat is keyed by (GameID, PlayerID, PlayerName).
type PlayerGameStat struct {
	GameID     string
	PlayerID   string
	PlayerName string
	Carries    int
	Targets    int
	Catches    int
	Touches    int
}

// TeamGameStat is keyed by (GameID, Team).
type TeamGameStat struct {
	GameID           string
	Team             string
	TotalPlays       int
	TeamPassAttempts int
}

// EnrichedStat is a player-game row joined with roster, game and team data.
// Team and Position are empty when the roster had no match; such rows never
// survive the team join.
type EnrichedStat struct {
	PlayerGameStat

	Team     string
	Position string
	Season   int
	Week     int

	TotalPlays       int
	TeamPassAttempts int

	RBMarketShare  float64 // touches / total_plays, NaN when 0/0
	RecMarketShare float64 // targets / team_pass_attempts, NaN when 0/0
}
