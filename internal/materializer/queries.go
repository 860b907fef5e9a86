// Package materializer builds the Athena DDL and QA queries for the market
// share table.
package materializer

import (
	"fmt"
	"strings"
)

const TableName = "market_share"

// BuildDrop returns a DROP TABLE IF EXISTS for the market share table.
func BuildDrop(db string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s.%s", db, TableName)
}

// BuildCreateExternal declares the table over the season-partitioned parquet
// files under location (s3://bucket/prefix/). Columns mirror the parquet row.
func BuildCreateExternal(db, location string) string {
	if !strings.HasSuffix(location, "/") {
		location += "/"
	}
	return fmt.Sprintf(`
CREATE EXTERNAL TABLE IF NOT EXISTS %s.%s (
  week               INT,
  game_id            STRING,
  player_id          STRING,
  player_name        STRING,
  team               STRING,
  position           STRING,
  carries            INT,
  targets            INT,
  catches            INT,
  touches            INT,
  total_plays        INT,
  team_pass_attempts INT,
  rb_market_share    DOUBLE,
  rec_market_share   DOUBLE
)
PARTITIONED BY (season INT)
STORED AS PARQUET
LOCATION '%s'
TBLPROPERTIES ('parquet.compression'='SNAPPY')`, db, TableName, location)
}

// BuildRepair registers partitions added since the last run.
func BuildRepair(db string) string {
	return fmt.Sprintf("MSCK REPAIR TABLE %s.%s", db, TableName)
}

// Some light sanity/QA queries to log after the partitions are registered.
func BuildCount(db string, season int) string {
	return fmt.Sprintf(`SELECT COUNT(*) AS rows FROM %s.%s WHERE season=%d`, db, TableName, season)
}

// BuildTopRBs ranks running backs by mean rb_market_share for a season.
func BuildTopRBs(db string, season, limit int) string {
	return fmt.Sprintf(`
SELECT player_name, AVG(rb_market_share) AS ave_market_share
FROM %s.%s
WHERE season=%d AND position='RB'
GROUP BY player_name
ORDER BY ave_market_share DESC NULLS LAST, player_name
LIMIT %d`, db, TableName, season, limit)
}
