package store

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tyler180/fantasy-market-share/internal/marketshare"
)

type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Key layout of the market share table:
//
//	PK SeasonTeam   (e.g. "2019#KC")
//	SK GamePlayer   (e.g. "2019112400#00-0033280")
const (
	pkAttr = "SeasonTeam"
	skAttr = "GamePlayer"
)

func shareAttr(f float64) types.AttributeValue {
	if math.IsNaN(f) {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(f, 'f', -1, 64)}
}

func marketShareItem(r marketshare.EnrichedStat, now string) map[string]types.AttributeValue {
	season := strconv.Itoa(r.Season)
	return map[string]types.AttributeValue{
		pkAttr:             &types.AttributeValueMemberS{Value: season + "#" + r.Team},
		skAttr:             &types.AttributeValueMemberS{Value: r.GameID + "#" + r.PlayerID},
		"Season":           &types.AttributeValueMemberN{Value: season},
		"Week":             &types.AttributeValueMemberN{Value: strconv.Itoa(r.Week)},
		"GameID":           &types.AttributeValueMemberS{Value: r.GameID},
		"PlayerID":         &types.AttributeValueMemberS{Value: r.PlayerID},
		"Player":           &types.AttributeValueMemberS{Value: r.PlayerName},
		"Team":             &types.AttributeValueMemberS{Value: r.Team},
		"Pos":              &types.AttributeValueMemberS{Value: r.Position},
		"Carries":          &types.AttributeValueMemberN{Value: strconv.Itoa(r.Carries)},
		"Targets":          &types.AttributeValueMemberN{Value: strconv.Itoa(r.Targets)},
		"Catches":          &types.AttributeValueMemberN{Value: strconv.Itoa(r.Catches)},
		"Touches":          &types.AttributeValueMemberN{Value: strconv.Itoa(r.Touches)},
		"TotalPlays":       &types.AttributeValueMemberN{Value: strconv.Itoa(r.TotalPlays)},
		"TeamPassAttempts": &types.AttributeValueMemberN{Value: strconv.Itoa(r.TeamPassAttempts)},
		"RBMarketShare":    shareAttr(r.RBMarketShare),
		"RecMarketShare":   shareAttr(r.RecMarketShare),
		"UpdatedAt":        &types.AttributeValueMemberN{Value: now},
	}
}

// PutMarketShareRows upserts enriched player-game rows. Rows repeating a key
// already written in this call are skipped, since BatchWriteItem rejects a
// batch carrying the same key twice. It returns the number of items written.
func PutMarketShareRows(ctx context.Context, ddb DynamoDBAPI, table string, rows []marketshare.EnrichedStat) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	const maxBatch = 25
	now := strconv.FormatInt(time.Now().Unix(), 10)

	type key struct{ pk, sk string }
	seen := make(map[key]struct{}, len(rows))
	reqs := make([]types.WriteRequest, 0, len(rows))
	for _, r := range rows {
		if r.PlayerID == "" || r.Team == "" || r.GameID == "" {
			continue
		}
		k := key{strconv.Itoa(r.Season) + "#" + r.Team, r.GameID + "#" + r.PlayerID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		reqs = append(reqs, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: marketShareItem(r, now)},
		})
	}

	for i := 0; i < len(reqs); i += maxBatch {
		end := min(i+maxBatch, len(reqs))
		if err := batchWriteWithRetry(ctx, ddb, table, reqs[i:end]); err != nil {
			return i, fmt.Errorf("batch write market share rows: %w", err)
		}
	}
	return len(reqs), nil
}

func batchWriteWithRetry(ctx context.Context, ddb DynamoDBAPI, table string, reqs []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{table: reqs},
	}
	const maxAttempts = 6
	backoff := 120 * time.Millisecond

	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := ddb.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems) == 0 {
			return nil
		}
		input.RequestItems = out.UnprocessedItems
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff += 120 * time.Millisecond
		}
	}
	return fmt.Errorf("unprocessed items remained after retries for table %s", table)
}
