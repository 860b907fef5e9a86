package ath

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAthena reports RUNNING for the first `pending` polls, then final.
type fakeAthena struct {
	pending int
	final   types.QueryExecutionState
	reason  string
	count   string
	rows    [][]string
	started []*athena.StartQueryExecutionInput
	polls   int
}

func (f *fakeAthena) StartQueryExecution(_ context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.started = append(f.started, in)
	return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String("q-1")}, nil
}

func (f *fakeAthena) GetQueryExecution(_ context.Context, in *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	f.polls++
	state := f.final
	if f.polls <= f.pending {
		state = types.QueryExecutionStateRunning
	}
	return &athena.GetQueryExecutionOutput{QueryExecution: &types.QueryExecution{
		QueryExecutionId: in.QueryExecutionId,
		Status:           &types.QueryExecutionStatus{State: state, StateChangeReason: aws.String(f.reason)},
		Statistics:       &types.QueryExecutionStatistics{DataScannedInBytes: aws.Int64(2 << 20)},
	}}, nil
}

func (f *fakeAthena) GetQueryResults(context.Context, *athena.GetQueryResultsInput, ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	if f.rows != nil {
		rs := []types.Row{{Data: []types.Datum{{VarCharValue: aws.String("player_name")}, {VarCharValue: aws.String("ave_market_share")}}}}
		for _, r := range f.rows {
			var row types.Row
			for _, v := range r {
				d := types.Datum{}
				if v != "" {
					d.VarCharValue = aws.String(v)
				}
				row.Data = append(row.Data, d)
			}
			rs = append(rs, row)
		}
		return &athena.GetQueryResultsOutput{ResultSet: &types.ResultSet{Rows: rs}}, nil
	}
	if f.count == "" {
		return nil, errors.New("no results")
	}
	return &athena.GetQueryResultsOutput{ResultSet: &types.ResultSet{Rows: []types.Row{
		{Data: []types.Datum{{VarCharValue: aws.String("rows")}}},
		{Data: []types.Datum{{VarCharValue: aws.String(f.count)}}},
	}}}, nil
}

func runner(f *fakeAthena) *Runner {
	return &Runner{Client: f, Workgroup: "primary", Database: "fantasy", Poll: time.Millisecond}
}

func TestExecAndWait_PollsUntilSucceeded(t *testing.T) {
	f := &fakeAthena{pending: 2, final: types.QueryExecutionStateSucceeded}
	qe, err := runner(f).ExecAndWait(context.Background(), "MSCK REPAIR TABLE fantasy.market_share")
	require.NoError(t, err)
	assert.Equal(t, "q-1", aws.ToString(qe.QueryExecutionId))
	assert.Equal(t, 3, f.polls)

	require.Len(t, f.started, 1)
	assert.Equal(t, "fantasy", aws.ToString(f.started[0].QueryExecutionContext.Database))
	assert.Equal(t, "primary", aws.ToString(f.started[0].WorkGroup))
	assert.Nil(t, f.started[0].ResultConfiguration)
}

func TestExecAndWait_Failed(t *testing.T) {
	f := &fakeAthena{final: types.QueryExecutionStateFailed, reason: "SYNTAX_ERROR"}
	r := runner(f)
	r.OutputS3 = "s3://results/athena/"
	_, err := r.ExecAndWait(context.Background(), "SELEC 1")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "SYNTAX_ERROR"))
	assert.Equal(t, "s3://results/athena/", aws.ToString(f.started[0].ResultConfiguration.OutputLocation))
}

func TestExecAndWait_ContextCancelled(t *testing.T) {
	f := &fakeAthena{pending: 1 << 30}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := runner(f).ExecAndWait(ctx, "SELECT 1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueryInt(t *testing.T) {
	f := &fakeAthena{final: types.QueryExecutionStateSucceeded, count: "4213"}
	n, err := runner(f).QueryInt(context.Background(), "SELECT COUNT(*) FROM fantasy.market_share")
	require.NoError(t, err)
	assert.Equal(t, int64(4213), n)

	f = &fakeAthena{final: types.QueryExecutionStateSucceeded, count: "many"}
	_, err = runner(f).QueryInt(context.Background(), "SELECT 1")
	assert.Error(t, err)
}

func TestQueryRows(t *testing.T) {
	f := &fakeAthena{final: types.QueryExecutionStateSucceeded, rows: [][]string{
		{"C.McCaffrey", "0.93"},
		{"Ghost", ""},
	}}
	rows, err := runner(f).QueryRows(context.Background(), "SELECT player_name, AVG(rb_market_share)")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"C.McCaffrey", "0.93"}, {"Ghost", ""}}, rows)

	f = &fakeAthena{final: types.QueryExecutionStateFailed, reason: "boom"}
	_, err = runner(f).QueryRows(context.Background(), "SELECT 1")
	assert.Error(t, err)
}
