package store

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/fantasy-market-share/internal/marketshare"
)

type fakeS3 struct {
	puts map[string][]byte
	ct   map[string]string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts, f.ct = map[string][]byte{}, map[string]string{}
	}
	f.puts[*in.Bucket+"/"+*in.Key] = b
	if in.ContentType != nil {
		f.ct[*in.Key] = *in.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func TestUploader(t *testing.T) {
	fc := &fakeS3{}
	u := &Uploader{Client: fc, Bucket: "reports", Prefix: "market_share/run=1"}

	key, err := u.Put(context.Background(), "rb_market_share_all.csv", []byte("player_name\n"))
	require.NoError(t, err)
	assert.Equal(t, "market_share/run=1/rb_market_share_all.csv", key)
	assert.Equal(t, "player_name\n", string(fc.puts["reports/"+key]))
	assert.Equal(t, "text/csv", fc.ct[key])

	p := filepath.Join(t.TempDir(), "chart.svg")
	require.NoError(t, os.WriteFile(p, []byte("<svg/>"), 0o644))
	key, err = u.PutFile(context.Background(), "charts/chart.svg", p)
	require.NoError(t, err)
	assert.Equal(t, "market_share/run=1/charts/chart.svg", key)
	assert.Equal(t, "image/svg+xml", fc.ct[key])

	_, err = u.PutFile(context.Background(), "x.csv", filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestSQLite_ReplaceRowsIsIdempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "market_share.db"))
	require.NoError(t, err)
	defer db.Close()

	rows := []marketshare.EnrichedStat{
		shareRow("G1", "R1", "KC"),
		shareRow("G1", "W1", "KC"),
	}
	rows[1].RecMarketShare = math.NaN()

	ctx := context.Background()
	require.NoError(t, db.ReplaceRows(ctx, rows))
	require.NoError(t, db.ReplaceRows(ctx, rows))

	n, err := db.CountSeason(ctx, 2019)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var nulls int
	require.NoError(t, db.db.QueryRow(`SELECT COUNT(*) FROM market_share WHERE rec_market_share IS NULL`).Scan(&nulls))
	assert.Equal(t, 1, nulls)

	other := shareRow("G0", "R1", "KC")
	other.Season = 2018
	require.NoError(t, db.ReplaceRows(ctx, []marketshare.EnrichedStat{other}))
	n, err = db.CountSeason(ctx, 2019)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "other seasons are left alone")
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	assert.Error(t, err)
}
