package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/tyler180/fantasy-market-share/internal/app/report"
	"github.com/tyler180/fantasy-market-share/internal/config"
)

const defaultOutDir = "/tmp/market-share"

type Event struct {
	OutDir string `json:"out_dir"` // optional; only /tmp is writable in Lambda
}

func handler(ctx context.Context, e Event) (any, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	cfg.OutDir = defaultOutDir
	if d := strings.TrimSpace(e.OutDir); d != "" {
		cfg.OutDir = d
	}

	svc := &report.Service{Cfg: cfg}
	if cfg.NeedsAWS() {
		if svc.Clients, err = report.NewAWSClients(ctx); err != nil {
			return nil, err
		}
	}
	return svc.Run(ctx)
}

func main() {
	lambda.Start(handler)
}
