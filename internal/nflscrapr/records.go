package nflscrapr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tyler180/fantasy-market-share/internal/marketshare"
)

// naTokens are the cell values pandas read_csv treats as missing by default.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// cell is a CSV value with missing-value tokens collapsed to "".
type cell string

func (c *cell) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if _, ok := naTokens[s]; ok {
		*c = ""
		return nil
	}
	*c = cell(s)
	return nil
}

func (c cell) String() string { return string(c) }

// Int parses the cell as an integer count. Missing cells are 0; "1.0" style
// values are accepted since some nflscrapR exports write counts as floats,
// but a fractional value is an error.
func (c cell) Int() (int, error) {
	if c == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(string(c)); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(string(c), 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a whole number", string(c))
	}
	return int(f), nil
}

type playRecord struct {
	PlayID             cell `csv:"play_id"`
	GameID             cell `csv:"game_id"`
	GameDate           cell `csv:"game_date"`
	PosTeam            cell `csv:"posteam"`
	DefTeam            cell `csv:"defteam"`
	PlayType           cell `csv:"play_type"`
	CompletePass       cell `csv:"complete_pass"`
	ReceiverPlayerID   cell `csv:"receiver_player_id"`
	ReceiverPlayerName cell `csv:"receiver_player_name"`
	RusherPlayerID     cell `csv:"rusher_player_id"`
	RusherPlayerName   cell `csv:"rusher_player_name"`
}

type rosterRecord struct {
	GsisID   cell `csv:"gsis_id"`
	Team     cell `csv:"team"`
	Position cell `csv:"position"`
}

type gameRecord struct {
	GameID cell `csv:"game_id"`
	Season cell `csv:"season"`
	Week   cell `csv:"week"`
}

var (
	playColumns   = []string{"play_id", "game_id", "game_date", "posteam", "defteam", "play_type", "complete_pass", "receiver_player_id", "receiver_player_name", "rusher_player_id", "rusher_player_name"}
	rosterColumns = []string{"gsis_id", "team", "position"}
	gameColumns   = []string{"game_id", "season", "week"}
)

func (r *playRecord) play() (marketshare.Play, error) {
	complete, err := r.CompletePass.Int()
	if err != nil {
		return marketshare.Play{}, err
	}
	return marketshare.Play{
		PlayID:             r.PlayID.String(),
		GameID:             r.GameID.String(),
		GameDate:           r.GameDate.String(),
		PosTeam:            r.PosTeam.String(),
		DefTeam:            r.DefTeam.String(),
		PlayType:           r.PlayType.String(),
		CompletePass:       complete,
		ReceiverPlayerID:   r.ReceiverPlayerID.String(),
		ReceiverPlayerName: r.ReceiverPlayerName.String(),
		RusherPlayerID:     r.RusherPlayerID.String(),
		RusherPlayerName:   r.RusherPlayerName.String(),
	}, nil
}

func (r *rosterRecord) entry() marketshare.RosterEntry {
	return marketshare.RosterEntry{
		GsisID:   r.GsisID.String(),
		Team:     r.Team.String(),
		Position: r.Position.String(),
	}
}

func (r *gameRecord) game() (marketshare.Game, error) {
	season, err := r.Season.Int()
	if err != nil {
		return marketshare.Game{}, err
	}
	week, err := r.Week.Int()
	if err != nil {
		return marketshare.Game{}, err
	}
	return marketshare.Game{GameID: r.GameID.String(), Season: season, Week: week}, nil
}
