package marketshare

import (
	"math"
	"sort"
)

// RecWeekRow is a row of the single-week receiving view.
type RecWeekRow struct {
	PlayerName     string
	Position       string
	RecMarketShare float64
}

// RBWeekRow is a row of the single-week rushing view.
type RBWeekRow struct {
	PlayerName    string
	RBMarketShare float64
}

// RBRow is a row of rb_market_share_all.
type RBRow struct {
	PlayerName    string
	Week          int
	RBMarketShare float64
}

// RecRow is a row of rec_market_share_all.
type RecRow struct {
	PlayerName     string
	Position       string
	Week           int
	RecMarketShare float64
}

// Views holds the four report views, all cut from the same enriched rows.
type Views struct {
	Week         int // week of RecShareWeek and RBShareWeek
	RecShareWeek []RecWeekRow
	RBShareWeek  []RBWeekRow
	RBShareAll   []RBRow
	RecShareAll  []RecRow
}

// BuildViews derives every view from rows. focusWeek selects the single-week views.
func BuildViews(rows []EnrichedStat, focusWeek int) Views {
	return Views{
		Week:         focusWeek,
		RecShareWeek: RecShareForWeek(rows, focusWeek),
		RBShareWeek:  RBShareForWeek(rows, focusWeek),
		RBShareAll:   RBShareAll(rows),
		RecShareAll:  RecShareAll(rows),
	}
}

func isReceiver(pos string) bool { return pos == PosWR || pos == PosTE }

func recShare(r *EnrichedStat) float64 { return r.RecMarketShare }
func rbShare(r *EnrichedStat) float64  { return r.RBMarketShare }

// RecShareForWeek keeps WR/TE rows of week, sorted by rec_market_share descending.
func RecShareForWeek(rows []EnrichedStat, week int) []RecWeekRow {
	sel := selectSorted(rows, func(r *EnrichedStat) bool {
		return r.Week == week && isReceiver(r.Position)
	}, recShare)
	out := make([]RecWeekRow, len(sel))
	for i, r := range sel {
		out[i] = RecWeekRow{PlayerName: r.PlayerName, Position: r.Position, RecMarketShare: r.RecMarketShare}
	}
	return out
}

// RBShareForWeek keeps RB rows of week, sorted by rb_market_share descending.
func RBShareForWeek(rows []EnrichedStat, week int) []RBWeekRow {
	sel := selectSorted(rows, func(r *EnrichedStat) bool {
		return r.Week == week && r.Position == PosRB
	}, rbShare)
	out := make([]RBWeekRow, len(sel))
	for i, r := range sel {
		out[i] = RBWeekRow{PlayerName: r.PlayerName, RBMarketShare: r.RBMarketShare}
	}
	return out
}

// RBShareAll keeps every RB row, ranked by rb_market_share descending across
// all weeks. It is not in week order.
func RBShareAll(rows []EnrichedStat) []RBRow {
	sel := selectSorted(rows, func(r *EnrichedStat) bool { return r.Position == PosRB }, rbShare)
	out := make([]RBRow, len(sel))
	for i, r := range sel {
		out[i] = RBRow{PlayerName: r.PlayerName, Week: r.Week, RBMarketShare: r.RBMarketShare}
	}
	return out
}

// RecShareAll keeps every WR/TE row, ranked by rec_market_share descending.
func RecShareAll(rows []EnrichedStat) []RecRow {
	sel := selectSorted(rows, func(r *EnrichedStat) bool { return isReceiver(r.Position) }, recShare)
	out := make([]RecRow, len(sel))
	for i, r := range sel {
		out[i] = RecRow{PlayerName: r.PlayerName, Position: r.Position, Week: r.Week, RecMarketShare: r.RecMarketShare}
	}
	return out
}

// selectSorted filters rows into a fresh slice and stable-sorts it by metric
// descending, NaN last. Ties keep input order.
func selectSorted(rows []EnrichedStat, keep func(*EnrichedStat) bool, metric func(*EnrichedStat) float64) []EnrichedStat {
	out := make([]EnrichedStat, 0, len(rows)/4)
	for i := range rows {
		if keep(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return descNaNLast(metric(&out[i]), metric(&out[j]))
	})
	return out
}

// descNaNLast orders a before b when a is greater; NaN sorts after every number.
func descNaNLast(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
