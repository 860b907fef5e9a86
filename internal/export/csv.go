// Package export writes the market share views to disk: CSV tables, SVG
// charts and a parquet copy of the enriched relation.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/tyler180/fantasy-market-share/internal/marketshare"
)

// Output file names.
const (
	RecShareAllCSV = "rec_market_share_all.csv"
	RBShareAllCSV  = "rb_market_share_all.csv"
)

// RecShareWeekCSV names the single-week receiving view, e.g. rec_market_share_wk12.csv.
func RecShareWeekCSV(week int) string { return fmt.Sprintf("rec_market_share_wk%d.csv", week) }

// RBShareWeekCSV names the single-week rushing view.
func RBShareWeekCSV(week int) string { return fmt.Sprintf("rb_market_share_wk%d.csv", week) }

// Share is a market share cell. NaN is written as an empty cell and numbers
// use the shortest round-trip form with a trailing ".0" for whole values.
type Share float64

func (s Share) MarshalCSV() (string, error) { return FormatFloat(float64(s)), nil }

// FormatFloat renders f the way pandas writes floats to CSV.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if a := math.Abs(f); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

type recWeekCSVRow struct {
	PlayerName     string `csv:"player_name"`
	Position       string `csv:"position"`
	RecMarketShare Share  `csv:"rec_market_share"`
}

type rbWeekCSVRow struct {
	PlayerName    string `csv:"player_name"`
	RBMarketShare Share  `csv:"rb_market_share"`
}

type recAllCSVRow struct {
	PlayerName     string `csv:"player_name"`
	Position       string `csv:"position"`
	Week           int    `csv:"week"`
	RecMarketShare Share  `csv:"rec_market_share"`
}

type rbAllCSVRow struct {
	PlayerName    string `csv:"player_name"`
	Week          int    `csv:"week"`
	RBMarketShare Share  `csv:"rb_market_share"`
}

// WriteViews writes all four views into dir and returns the file paths in a
// fixed order.
func WriteViews(dir string, v marketshare.Views) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	recWeek := make([]recWeekCSVRow, len(v.RecShareWeek))
	for i, r := range v.RecShareWeek {
		recWeek[i] = recWeekCSVRow{PlayerName: r.PlayerName, Position: r.Position, RecMarketShare: Share(r.RecMarketShare)}
	}
	rbWeek := make([]rbWeekCSVRow, len(v.RBShareWeek))
	for i, r := range v.RBShareWeek {
		rbWeek[i] = rbWeekCSVRow{PlayerName: r.PlayerName, RBMarketShare: Share(r.RBMarketShare)}
	}
	recAll := make([]recAllCSVRow, len(v.RecShareAll))
	for i, r := range v.RecShareAll {
		recAll[i] = recAllCSVRow{PlayerName: r.PlayerName, Position: r.Position, Week: r.Week, RecMarketShare: Share(r.RecMarketShare)}
	}
	rbAll := make([]rbAllCSVRow, len(v.RBShareAll))
	for i, r := range v.RBShareAll {
		rbAll[i] = rbAllCSVRow{PlayerName: r.PlayerName, Week: r.Week, RBMarketShare: Share(r.RBMarketShare)}
	}

	files := []struct {
		name string
		rows any
	}{
		{RecShareWeekCSV(v.Week), recWeek},
		{RBShareWeekCSV(v.Week), rbWeek},
		{RecShareAllCSV, recAll},
		{RBShareAllCSV, rbAll},
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		p := filepath.Join(dir, f.name)
		if err := writeCSV(p, f.rows); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := gocsv.Marshal(rows, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
