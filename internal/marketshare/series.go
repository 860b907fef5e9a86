package marketshare

import (
	"math"
	"sort"
)

// Point is one (week, value) sample of a chart series.
type Point struct {
	Week  int
	Value float64
}

// Series is a labelled, week-ordered line.
type Series struct {
	Label  string
	Points []Point
}

// RBAverage is a running back's mean rb_market_share over the weeks listed in
// rb_market_share_all.
type RBAverage struct {
	PlayerName     string
	AveMarketShare float64
}

// TopRBs groups rbAll by player name, averages rb_market_share (NaN skipped),
// and returns the n highest averages. Ties are broken by player name.
func TopRBs(rbAll []RBRow, n int) []RBAverage {
	type acc struct {
		sum float64
		cnt int
	}
	by := make(map[string]*acc, 256)
	for _, r := range rbAll {
		a := by[r.PlayerName]
		if a == nil {
			a = &acc{}
			by[r.PlayerName] = a
		}
		if !math.IsNaN(r.RBMarketShare) {
			a.sum += r.RBMarketShare
			a.cnt++
		}
	}

	out := make([]RBAverage, 0, len(by))
	for name, a := range by {
		ave := math.NaN()
		if a.cnt > 0 {
			ave = a.sum / float64(a.cnt)
		}
		out = append(out, RBAverage{PlayerName: name, AveMarketShare: ave})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerName < out[j].PlayerName })
	sort.SliceStable(out, func(i, j int) bool {
		return descNaNLast(out[i].AveMarketShare, out[j].AveMarketShare)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RBWeeklySeries restricts rbAll to the given players and re-sorts each
// player's rows by week, since rb_market_share_all is ranked by share and not
// in time order. Series follow the order of top.
func RBWeeklySeries(rbAll []RBRow, top []RBAverage) []Series {
	idx := make(map[string]int, len(top))
	out := make([]Series, len(top))
	for i, t := range top {
		idx[t.PlayerName] = i
		out[i].Label = t.PlayerName
	}
	for _, r := range rbAll {
		i, ok := idx[r.PlayerName]
		if !ok || math.IsNaN(r.RBMarketShare) {
			continue
		}
		out[i].Points = append(out[i].Points, Point{Week: r.Week, Value: r.RBMarketShare})
	}
	for i := range out {
		sortByWeek(out[i].Points)
	}
	return out
}

// WeeklyMean averages rec_market_share per week over every row.
func WeeklyMean(rows []RecRow) Series {
	groups := groupByWeek(rows, func(RecRow) string { return "" })
	return Series{Label: "all", Points: reduce(groups[""], mean)}
}

// WeeklyMeanByPosition averages rec_market_share per week and position.
func WeeklyMeanByPosition(rows []RecRow) []Series {
	return byPosition(rows, mean)
}

// WeeklyMaxByPosition takes the highest rec_market_share per week and position.
func WeeklyMaxByPosition(rows []RecRow) []Series {
	return byPosition(rows, maxOf)
}

func byPosition(rows []RecRow, fn func([]float64) float64) []Series {
	groups := groupByWeek(rows, func(r RecRow) string { return r.Position })
	labels := make([]string, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	out := make([]Series, 0, len(labels))
	for _, l := range labels {
		out = append(out, Series{Label: l, Points: reduce(groups[l], fn)})
	}
	return out
}

// groupByWeek buckets non-NaN shares by label, then by week.
func groupByWeek(rows []RecRow, label func(RecRow) string) map[string]map[int][]float64 {
	out := map[string]map[int][]float64{}
	for _, r := range rows {
		if math.IsNaN(r.RecMarketShare) {
			continue
		}
		l := label(r)
		if out[l] == nil {
			out[l] = map[int][]float64{}
		}
		out[l][r.Week] = append(out[l][r.Week], r.RecMarketShare)
	}
	return out
}

func reduce(weeks map[int][]float64, fn func([]float64) float64) []Point {
	pts := make([]Point, 0, len(weeks))
	for w, vals := range weeks {
		pts = append(pts, Point{Week: w, Value: fn(vals)})
	}
	sortByWeek(pts)
	return pts
}

func sortByWeek(pts []Point) {
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Week < pts[j].Week })
}

func mean(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s / float64(len(vals))
}

func maxOf(vals []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m
}
