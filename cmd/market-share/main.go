package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tyler180/fantasy-market-share/internal/app/report"
	"github.com/tyler180/fantasy-market-share/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := &report.Service{Cfg: cfg}
	if cfg.NeedsAWS() {
		if svc.Clients, err = report.NewAWSClients(ctx); err != nil {
			log.Fatal(err)
		}
	}

	sum, err := svc.Run(ctx)
	if err != nil {
		log.Fatalf("market share: %v", err)
	}
	log.Printf("OK rec_all=%d rb_all=%d top_rbs=%d files=%d s3=%d ddb=%d sqlite=%d athena=%d",
		sum.Counts.RecShareAll, sum.Counts.RBShareAll, sum.Counts.TopRBs, len(sum.Files),
		len(sum.S3Keys), sum.DDBItems, sum.SQLiteRows, sum.AthenaRows)
}
