package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/tyler180/fantasy-market-share/internal/marketshare"
)

// ParquetRow is one enriched player-game in the warehouse layout. season is
// carried by the partition path, not the file.
type ParquetRow struct {
	Week             int32    `parquet:"week"`
	GameID           string   `parquet:"game_id"`
	PlayerID         string   `parquet:"player_id"`
	PlayerName       string   `parquet:"player_name"`
	Team             string   `parquet:"team"`
	Position         *string  `parquet:"position,optional"`
	Carries          int32    `parquet:"carries"`
	Targets          int32    `parquet:"targets"`
	Catches          int32    `parquet:"catches"`
	Touches          int32    `parquet:"touches"`
	TotalPlays       int32    `parquet:"total_plays"`
	TeamPassAttempts int32    `parquet:"team_pass_attempts"`
	RBMarketShare    *float64 `parquet:"rb_market_share,optional"`
	RecMarketShare   *float64 `parquet:"rec_market_share,optional"`
}

func floatPtr(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ToParquetRow converts an enriched row; NaN shares become nulls.
func ToParquetRow(r marketshare.EnrichedStat) ParquetRow {
	return ParquetRow{
		Week:             int32(r.Week),
		GameID:           r.GameID,
		PlayerID:         r.PlayerID,
		PlayerName:       r.PlayerName,
		Team:             r.Team,
		Position:         strPtr(r.Position),
		Carries:          int32(r.Carries),
		Targets:          int32(r.Targets),
		Catches:          int32(r.Catches),
		Touches:          int32(r.Touches),
		TotalPlays:       int32(r.TotalPlays),
		TeamPassAttempts: int32(r.TeamPassAttempts),
		RBMarketShare:    floatPtr(r.RBMarketShare),
		RecMarketShare:   floatPtr(r.RecMarketShare),
	}
}

// WriteParquet writes rows as Snappy-compressed parquet.
func WriteParquet(w io.Writer, rows []marketshare.EnrichedStat) error {
	pw := parquet.NewWriter(w, parquet.SchemaOf(new(ParquetRow)), parquet.Compression(&parquet.Snappy))
	for _, r := range rows {
		if err := pw.Write(ToParquetRow(r)); err != nil {
			_ = pw.Close()
			return err
		}
	}
	return pw.Close()
}

// ParquetFile is one season partition written to disk.
type ParquetFile struct {
	Season int
	Rows   int
	Path   string // local path
	Key    string // slash-separated path relative to the output dir
}

// ParquetKey is the partitioned object key for one season. The name is
// fixed so a rerun overwrites the season instead of adding a second part.
func ParquetKey(prefix string, season int) string {
	return path.Join(prefix, fmt.Sprintf("season=%d", season), "part-0.parquet")
}

// WriteParquetPartitions splits rows by season and writes one file per season
// under dir/<prefix>/season=<season>/.
func WriteParquetPartitions(dir, prefix string, rows []marketshare.EnrichedStat) ([]ParquetFile, error) {
	bySeason := map[int][]marketshare.EnrichedStat{}
	for _, r := range rows {
		bySeason[r.Season] = append(bySeason[r.Season], r)
	}
	seasons := make([]int, 0, len(bySeason))
	for s := range bySeason {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)

	out := make([]ParquetFile, 0, len(seasons))
	for _, s := range seasons {
		key := ParquetKey(prefix, s)
		p := filepath.Join(dir, filepath.FromSlash(key))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return out, fmt.Errorf("mkdir %s: %w", filepath.Dir(p), err)
		}
		f, err := os.Create(p)
		if err != nil {
			return out, fmt.Errorf("create %s: %w", p, err)
		}
		if err := WriteParquet(f, bySeason[s]); err != nil {
			_ = f.Close()
			return out, fmt.Errorf("write parquet %s: %w", p, err)
		}
		if err := f.Close(); err != nil {
			return out, fmt.Errorf("close %s: %w", p, err)
		}
		out = append(out, ParquetFile{Season: s, Rows: len(bySeason[s]), Path: p, Key: key})
	}
	return out, nil
}
