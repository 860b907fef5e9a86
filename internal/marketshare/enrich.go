package marketshare

// JoinCounts records how many rows survived each join stage.
type JoinCounts struct {
	PlayerGames int // after the rushing/receiving outer combine
	WithRoster  int // after the roster left join
	WithGame    int // after the game inner join
	WithTeam    int // after the team inner join
}

// Enrich joins player-game stats with roster, game and team-game data, in
// this order:
//
//	roster  LEFT  JOIN on player_id = gsis_id
//	games   INNER JOIN on game_id
//	teams   INNER JOIN on (game_id, team)
//
// Rows without a counterpart in the inner joins are dropped silently. A player
// missing from the roster keeps an empty team, which then never matches a
// team-game row. Duplicate right-hand keys fan out into one row per match.
// Row order follows the input order of players.
func Enrich(players []PlayerGameStat, roster []RosterEntry, games []Game, teams []TeamGameStat) ([]EnrichedStat, JoinCounts) {
	counts := JoinCounts{PlayerGames: len(players)}

	rosterByID := make(map[string][]RosterEntry, len(roster))
	for _, r := range roster {
		rosterByID[r.GsisID] = append(rosterByID[r.GsisID], r)
	}
	gamesByID := make(map[string][]Game, len(games))
	for _, g := range games {
		gamesByID[g.GameID] = append(gamesByID[g.GameID], g)
	}
	teamsByKey := make(map[teamKey][]TeamGameStat, len(teams))
	for _, t := range teams {
		k := teamKey{GameID: t.GameID, Team: t.Team}
		teamsByKey[k] = append(teamsByKey[k], t)
	}

	withRoster := make([]EnrichedStat, 0, len(players))
	for _, p := range players {
		matches := rosterByID[p.PlayerID]
		if len(matches) == 0 {
			withRoster = append(withRoster, EnrichedStat{PlayerGameStat: p})
			continue
		}
		for _, r := range matches {
			withRoster = append(withRoster, EnrichedStat{PlayerGameStat: p, Team: r.Team, Position: r.Position})
		}
	}
	counts.WithRoster = len(withRoster)

	withGame := make([]EnrichedStat, 0, len(withRoster))
	for _, row := range withRoster {
		for _, g := range gamesByID[row.GameID] {
			row.Season = g.Season
			row.Week = g.Week
			withGame = append(withGame, row)
		}
	}
	counts.WithGame = len(withGame)

	out := make([]EnrichedStat, 0, len(withGame))
	for _, row := range withGame {
		if row.Team == "" {
			continue
		}
		for _, t := range teamsByKey[teamKey{GameID: row.GameID, Team: row.Team}] {
			row.TotalPlays = t.TotalPlays
			row.TeamPassAttempts = t.TeamPassAttempts
			out = append(out, row)
		}
	}
	counts.WithTeam = len(out)

	return out, counts
}
