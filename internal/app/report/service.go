// Package report runs one market share pass: load the nflscrapR tables,
// build the views, write local artifacts, then publish to the configured
// sinks.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tyler180/fantasy-market-share/internal/ath"
	"github.com/tyler180/fantasy-market-share/internal/config"
	"github.com/tyler180/fantasy-market-share/internal/export"
	"github.com/tyler180/fantasy-market-share/internal/marketshare"
	"github.com/tyler180/fantasy-market-share/internal/materializer"
	"github.com/tyler180/fantasy-market-share/internal/nflscrapr"
	"github.com/tyler180/fantasy-market-share/internal/store"
)

// Clients are the AWS APIs the service may call. Any of them may be nil when
// the matching input or sink is not configured.
type Clients struct {
	S3Get  nflscrapr.S3GetAPI
	S3Put  store.S3PutAPI
	DDB    store.DynamoDBAPI
	Athena ath.AthenaAPI
}

// NewAWSClients builds every client from the default credential chain.
func NewAWSClients(ctx context.Context) (Clients, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return Clients{}, fmt.Errorf("load aws config: %w", err)
	}
	s3c := s3.NewFromConfig(awsCfg)
	return Clients{
		S3Get:  s3c,
		S3Put:  s3c,
		DDB:    dynamodb.NewFromConfig(awsCfg),
		Athena: athena.NewFromConfig(awsCfg),
	}, nil
}

type Service struct {
	Cfg     config.Config
	Clients Clients
	HTTP    *http.Client
	Now     func() time.Time
	// AthenaPoll overrides the query poll interval; zero keeps the runner default.
	AthenaPoll time.Duration
}

// Counts are row counts per table, join stage and view.
type Counts struct {
	Plays        int `json:"plays"`
	Roster       int `json:"roster"`
	Games        int `json:"games"`
	PlayerGames  int `json:"player_games"`
	TeamGames    int `json:"team_games"`
	WithRoster   int `json:"with_roster"`
	WithGame     int `json:"with_game"`
	WithTeam     int `json:"with_team"`
	RecShareWeek int `json:"rec_market_share_wk"`
	RBShareWeek  int `json:"rb_market_share_wk"`
	RecShareAll  int `json:"rec_market_share_all"`
	RBShareAll   int `json:"rb_market_share_all"`
	TopRBs       int `json:"top_rbs"`
}

// Summary describes a finished run.
type Summary struct {
	OK          bool     `json:"ok"`
	Stamp       string   `json:"stamp"`
	Counts      Counts   `json:"counts"`
	Files       []string `json:"files"`
	S3Keys      []string `json:"s3_keys,omitempty"`
	DDBItems    int      `json:"ddb_items,omitempty"`
	SQLiteRows  int      `json:"sqlite_rows,omitempty"`
	AthenaTable string   `json:"athena_table,omitempty"`
	AthenaRows  int64    `json:"athena_rows,omitempty"`

	// Top backs by mean rb_market_share per season, read back from Athena.
	AthenaTopRBs map[int][]string `json:"athena_top_rbs,omitempty"`
}

func nowStamp(t time.Time) string { return t.UTC().Format("20060102T150405Z") }

func countsOf(t marketshare.Tables, r *marketshare.Report) Counts {
	return Counts{
		Plays:        len(t.Plays),
		Roster:       len(t.Roster),
		Games:        len(t.Games),
		PlayerGames:  len(r.PlayerGames),
		TeamGames:    len(r.TeamGames),
		WithRoster:   r.Joins.WithRoster,
		WithGame:     r.Joins.WithGame,
		WithTeam:     r.Joins.WithTeam,
		RecShareWeek: len(r.Views.RecShareWeek),
		RBShareWeek:  len(r.Views.RBShareWeek),
		RecShareAll:  len(r.Views.RecShareAll),
		RBShareAll:   len(r.Views.RBShareAll),
		TopRBs:       len(r.TopRBs),
	}
}

// Run executes the pass. Local CSV and SVG files are written only after the
// whole report is built; sinks run after that and any sink error fails the run.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	sum := &Summary{Stamp: nowStamp(now())}

	httpc := s.HTTP
	if httpc == nil {
		httpc = &http.Client{Timeout: s.Cfg.HTTPTimeout}
	}
	f := &nflscrapr.Fetcher{HTTP: httpc, S3: s.Clients.S3Get}
	tables, err := nflscrapr.Load(ctx, f, s.Cfg.Locations())
	if err != nil {
		return nil, err
	}

	rep, err := marketshare.Build(tables, s.Cfg.Options())
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	sum.Counts = countsOf(tables, rep)

	csvs, err := export.WriteViews(s.Cfg.OutDir, rep.Views)
	if err != nil {
		return nil, fmt.Errorf("write views: %w", err)
	}
	svgs, err := export.WriteCharts(s.Cfg.OutDir, rep.Charts)
	if err != nil {
		return nil, fmt.Errorf("write charts: %w", err)
	}
	sum.Files = append(append(sum.Files, csvs...), svgs...)
	slog.Info("wrote artifacts", "dir", s.Cfg.OutDir, "files", len(sum.Files))

	if err := s.publish(ctx, rep, sum); err != nil {
		return nil, err
	}
	sum.OK = true
	return sum, nil
}

func (s *Service) publish(ctx context.Context, rep *marketshare.Report, sum *Summary) error {
	if s.Cfg.SQLitePath != "" {
		if err := s.publishSQLite(ctx, rep, sum); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
	}

	var parts []export.ParquetFile
	if s.Cfg.S3Bucket != "" {
		var err error
		if parts, err = s.publishS3(ctx, rep, sum); err != nil {
			return fmt.Errorf("s3: %w", err)
		}
	}

	if s.Cfg.DDBTable != "" {
		if s.Clients.DDB == nil {
			return fmt.Errorf("dynamodb: no client configured")
		}
		n, err := store.PutMarketShareRows(ctx, s.Clients.DDB, s.Cfg.DDBTable, rep.Enriched)
		if err != nil {
			return fmt.Errorf("dynamodb: %w", err)
		}
		sum.DDBItems = n
		slog.Info("wrote dynamodb", "table", s.Cfg.DDBTable, "items", n)
	}

	if s.Cfg.AthenaDB != "" {
		if err := s.publishAthena(ctx, parts, sum); err != nil {
			return fmt.Errorf("athena: %w", err)
		}
	}
	return nil
}

func (s *Service) publishSQLite(ctx context.Context, rep *marketshare.Report, sum *Summary) error {
	db, err := store.OpenSQLite(s.Cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.ReplaceRows(ctx, rep.Enriched); err != nil {
		return err
	}
	sum.SQLiteRows = len(rep.Enriched)
	seasons := map[int]struct{}{}
	for _, r := range rep.Enriched {
		seasons[r.Season] = struct{}{}
	}
	for season := range seasons {
		n, err := db.CountSeason(ctx, season)
		if err != nil {
			return err
		}
		slog.Info("wrote sqlite", "path", s.Cfg.SQLitePath, "season", season, "rows", n)
	}
	return nil
}

// publishS3 uploads the local CSV and SVG files under reports/<stamp>/ and
// the enriched relation as season-partitioned parquet.
func (s *Service) publishS3(ctx context.Context, rep *marketshare.Report, sum *Summary) ([]export.ParquetFile, error) {
	if s.Clients.S3Put == nil {
		return nil, fmt.Errorf("no client configured")
	}
	up := &store.Uploader{Client: s.Clients.S3Put, Bucket: s.Cfg.S3Bucket, Prefix: s.Cfg.S3Prefix}

	for _, p := range sum.Files {
		key, err := up.PutFile(ctx, "reports/"+sum.Stamp+"/"+filepath.Base(p), p)
		if err != nil {
			return nil, err
		}
		sum.S3Keys = append(sum.S3Keys, key)
	}

	parts, err := export.WriteParquetPartitions(s.Cfg.OutDir, materializer.TableName, rep.Enriched)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		key, err := up.PutFile(ctx, p.Key, p.Path)
		if err != nil {
			return nil, err
		}
		sum.S3Keys = append(sum.S3Keys, key)
		slog.Info("uploaded parquet", "season", p.Season, "rows", p.Rows, "key", key)
	}
	return parts, nil
}

func (s *Service) publishAthena(ctx context.Context, parts []export.ParquetFile, sum *Summary) error {
	if s.Clients.Athena == nil {
		return fmt.Errorf("no client configured")
	}
	db := s.Cfg.AthenaDB
	r := &ath.Runner{
		Client:    s.Clients.Athena,
		Workgroup: s.Cfg.AthenaWorkgroup,
		Database:  db,
		OutputS3:  s.Cfg.AthenaOutput,
		Poll:      s.AthenaPoll,
	}
	location := fmt.Sprintf("s3://%s/%s/", s.Cfg.S3Bucket, (&store.Uploader{Prefix: s.Cfg.S3Prefix}).Key(materializer.TableName))

	// The table is external, so dropping it leaves the parquet files alone.
	if _, err := r.ExecAndWait(ctx, materializer.BuildDrop(db)); err != nil {
		slog.Warn("drop table failed", "err", err)
	}
	if _, err := r.ExecAndWait(ctx, materializer.BuildCreateExternal(db, location)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if _, err := r.ExecAndWait(ctx, materializer.BuildRepair(db)); err != nil {
		return fmt.Errorf("repair partitions: %w", err)
	}
	sum.AthenaTable = db + "." + materializer.TableName

	for _, p := range parts {
		n, err := r.QueryInt(ctx, materializer.BuildCount(db, p.Season))
		if err != nil {
			return fmt.Errorf("count rows: %w", err)
		}
		sum.AthenaRows += n
		slog.Info("athena rows", "table", sum.AthenaTable, "season", p.Season, "rows", n, "written", p.Rows)
		if n != int64(p.Rows) {
			slog.Warn("athena row count differs from parquet", "season", p.Season, "rows", n, "written", p.Rows)
		}

		// QA only, does not fail the run
		rows, err := r.QueryRows(ctx, materializer.BuildTopRBs(db, p.Season, s.Cfg.TopRBCount))
		if err != nil {
			slog.Warn("top rbs query failed", "season", p.Season, "err", err)
			continue
		}
		names := make([]string, 0, len(rows))
		for _, row := range rows {
			if len(row) > 0 {
				names = append(names, row[0])
			}
		}
		if sum.AthenaTopRBs == nil {
			sum.AthenaTopRBs = map[int][]string{}
		}
		sum.AthenaTopRBs[p.Season] = names
		slog.Info("athena top rbs", "season", p.Season, "players", names)
	}
	return nil
}
