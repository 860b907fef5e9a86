package materializer

import (
	"strings"
	"testing"
)

func TestBuildCreateExternal(t *testing.T) {
	sql := BuildCreateExternal("fantasy", "s3://reports/market_share")
	for _, want := range []string{
		"CREATE EXTERNAL TABLE IF NOT EXISTS fantasy.market_share",
		"PARTITIONED BY (season INT)",
		"STORED AS PARQUET",
		"LOCATION 's3://reports/market_share/'",
		"rec_market_share   DOUBLE",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("create statement missing %q:\n%s", want, sql)
		}
	}
	if strings.Contains(sql, "season             INT") {
		t.Fatalf("season must only appear as a partition column")
	}
}

func TestQAQueries(t *testing.T) {
	if got := BuildDrop("fantasy"); got != "DROP TABLE IF EXISTS fantasy.market_share" {
		t.Fatalf("BuildDrop = %q", got)
	}
	if got := BuildRepair("fantasy"); got != "MSCK REPAIR TABLE fantasy.market_share" {
		t.Fatalf("BuildRepair = %q", got)
	}
	if got := BuildCount("fantasy", 2019); !strings.HasSuffix(got, "WHERE season=2019") {
		t.Fatalf("BuildCount = %q", got)
	}
	top := BuildTopRBs("fantasy", 2019, 20)
	if !strings.Contains(top, "position='RB'") || !strings.HasSuffix(top, "LIMIT 20") {
		t.Fatalf("BuildTopRBs = %q", top)
	}
}
