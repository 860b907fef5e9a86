// Package ath runs Athena statements and waits for them to finish.
package ath

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
)

type AthenaAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

type Runner struct {
	Client    AthenaAPI
	Workgroup string
	Database  string
	OutputS3  string        // s3://bucket/prefix/, empty uses the workgroup default
	Poll      time.Duration // zero means one second
	Logger    *slog.Logger
}

func (r *Runner) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// ExecAndWait starts sql and polls until it reaches a terminal state.
func (r *Runner) ExecAndWait(ctx context.Context, sql string) (*types.QueryExecution, error) {
	in := &athena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(r.Database),
		},
		WorkGroup: aws.String(r.Workgroup),
	}
	if r.OutputS3 != "" {
		in.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(r.OutputS3)}
	}
	startOut, err := r.Client.StartQueryExecution(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("start query: %w", err)
	}
	qid := aws.ToString(startOut.QueryExecutionId)
	r.log().Debug("athena query started", "qid", qid)

	poll := r.Poll
	if poll <= 0 {
		poll = time.Second
	}
	tick := time.NewTicker(poll)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-tick.C:
			ge, err := r.Client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
				QueryExecutionId: aws.String(qid),
			})
			if err != nil {
				return nil, fmt.Errorf("get query execution: %w", err)
			}
			qe := ge.QueryExecution
			switch qe.Status.State {
			case types.QueryExecutionStateSucceeded:
				var scannedMB, execSec float64
				if st := qe.Statistics; st != nil {
					scannedMB = float64(aws.ToInt64(st.DataScannedInBytes)) / 1024.0 / 1024.0
					execSec = float64(aws.ToInt64(st.EngineExecutionTimeInMillis)) / 1000.0
				}
				r.log().Info("athena query succeeded", "qid", qid, "scanned_mb", scannedMB, "exec_s", execSec)
				return qe, nil
			case types.QueryExecutionStateFailed:
				return nil, fmt.Errorf("athena qid=%s failed: %s", qid, aws.ToString(qe.Status.StateChangeReason))
			case types.QueryExecutionStateCancelled:
				return nil, fmt.Errorf("athena qid=%s cancelled", qid)
			}
		}
	}
}

// QueryRows runs sql and returns the data rows of the first result page as
// strings, header row removed. NULL cells are "".
func (r *Runner) QueryRows(ctx context.Context, sql string) ([][]string, error) {
	exec, err := r.ExecAndWait(ctx, sql)
	if err != nil {
		return nil, err
	}
	gr, err := r.Client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: exec.QueryExecutionId,
	})
	if err != nil {
		return nil, fmt.Errorf("get results: %w", err)
	}
	if gr.ResultSet == nil || len(gr.ResultSet.Rows) == 0 {
		return nil, nil
	}
	// row 0 is the header
	out := make([][]string, 0, len(gr.ResultSet.Rows)-1)
	for _, row := range gr.ResultSet.Rows[1:] {
		vals := make([]string, len(row.Data))
		for i, d := range row.Data {
			vals[i] = aws.ToString(d.VarCharValue)
		}
		out = append(out, vals)
	}
	return out, nil
}

// QueryInt runs sql and parses the first column of its first data row.
func (r *Runner) QueryInt(ctx context.Context, sql string) (int64, error) {
	rows, err := r.QueryRows(ctx, sql)
	if err != nil {
		return 0, err
	}
	if len(rows) < 1 || len(rows[0]) < 1 || rows[0][0] == "" {
		return 0, errors.New("unexpected single-value result shape")
	}
	var n int64
	if _, err := fmt.Sscan(rows[0][0], &n); err != nil {
		return 0, fmt.Errorf("parse result: %w", err)
	}
	return n, nil
}
