package marketshare

import "sort"

// playerKey is the composite key shared by the rushing and receiving aggregates.
type playerKey struct {
	GameID     string
	PlayerID   string
	PlayerName string
}

type teamKey struct {
	GameID string
	Team   string
}

type rushAgg struct {
	Carries int
}

type recAgg struct {
	Targets int
	Catches int
}

// rushingCounts counts run plays per (game, rusher). Plays with an absent
// game id, rusher id or rusher name have no group and are skipped.
func rushingCounts(plays []Play) map[playerKey]rushAgg {
	out := make(map[playerKey]rushAgg, 1024)
	for _, p := range plays {
		if p.PlayType != PlayTypeRun {
			continue
		}
		if p.GameID == "" || p.RusherPlayerID == "" || p.RusherPlayerName == "" {
			continue
		}
		k := playerKey{GameID: p.GameID, PlayerID: p.RusherPlayerID, PlayerName: p.RusherPlayerName}
		a := out[k]
		a.Carries++
		out[k] = a
	}
	return out
}

// receivingCounts counts targets and completions per (game, receiver).
func receivingCounts(plays []Play) map[playerKey]recAgg {
	out := make(map[playerKey]recAgg, 1024)
	for _, p := range plays {
		if p.PlayType != PlayTypePass {
			continue
		}
		if p.GameID == "" || p.ReceiverPlayerID == "" || p.ReceiverPlayerName == "" {
			continue
		}
		k := playerKey{GameID: p.GameID, PlayerID: p.ReceiverPlayerID, PlayerName: p.ReceiverPlayerName}
		a := out[k]
		a.Targets++
		a.Catches += p.CompletePass
		out[k] = a
	}
	return out
}

// combinePlayerStats is a full outer merge of the two aggregates on the
// composite key. A side that has no row for a key contributes zeros. Touches
// are derived after the merge. Output is ordered by key.
func combinePlayerStats(rec map[playerKey]recAgg, rush map[playerKey]rushAgg) []PlayerGameStat {
	keys := make([]playerKey, 0, len(rec)+len(rush))
	for k := range rec {
		keys = append(keys, k)
	}
	for k := range rush {
		if _, dup := rec[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	out := make([]PlayerGameStat, 0, len(keys))
	for _, k := range keys {
		// absent side reads as the zero value
		r, ru := rec[k], rush[k]
		s := PlayerGameStat{
			GameID:     k.GameID,
			PlayerID:   k.PlayerID,
			PlayerName: k.PlayerName,
			Carries:    ru.Carries,
			Targets:    r.Targets,
			Catches:    r.Catches,
		}
		s.Touches = s.Catches + s.Carries
		out = append(out, s)
	}
	return out
}

func (k playerKey) less(o playerKey) bool {
	if k.GameID != o.GameID {
		return k.GameID < o.GameID
	}
	if k.PlayerID != o.PlayerID {
		return k.PlayerID < o.PlayerID
	}
	return k.PlayerName < o.PlayerName
}

// PlayerGameStats derives per-(game, player) rushing and receiving counts.
// A player with neither a carry nor a target in a game has no row.
func PlayerGameStats(plays []Play) []PlayerGameStat {
	return combinePlayerStats(receivingCounts(plays), rushingCounts(plays))
}

// TeamGameStats derives per-(game, team) offensive play and pass attempt
// counts. The two counts are inner-joined, so a team-game without a single
// pass attempt has no row. Output is ordered by (game, team).
func TeamGameStats(plays []Play) []TeamGameStat {
	total := make(map[teamKey]int, 512)
	passes := make(map[teamKey]int, 512)
	for _, p := range plays {
		if p.PlayType != PlayTypePass && p.PlayType != PlayTypeRun {
			continue
		}
		if p.GameID == "" || p.PosTeam == "" {
			continue
		}
		k := teamKey{GameID: p.GameID, Team: p.PosTeam}
		total[k]++
		if p.PlayType == PlayTypePass {
			passes[k]++
		}
	}

	out := make([]TeamGameStat, 0, len(passes))
	for k, n := range passes {
		tp, ok := total[k]
		if !ok {
			continue
		}
		out = append(out, TeamGameStat{GameID: k.GameID, Team: k.Team, TotalPlays: tp, TeamPassAttempts: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GameID != out[j].GameID {
			return out[i].GameID < out[j].GameID
		}
		return out[i].Team < out[j].Team
	})
	return out
}
