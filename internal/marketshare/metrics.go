package marketshare

import (
	"fmt"
	"math"
)

// share returns num/den. 0/0 is NaN; n/0 with n > 0 is ErrDegenerateRatio.
func share(num, den int) (float64, error) {
	if den == 0 {
		if num != 0 {
			return math.NaN(), ErrDegenerateRatio
		}
		return math.NaN(), nil
	}
	return float64(num) / float64(den), nil
}

// ApplyMetrics fills RBMarketShare and RecMarketShare in place.
func ApplyMetrics(rows []EnrichedStat) error {
	for i := range rows {
		r := &rows[i]
		rb, err := share(r.Touches, r.TotalPlays)
		if err != nil {
			return fmt.Errorf("rb_market_share game=%s player=%s touches=%d total_plays=%d: %w",
				r.GameID, r.PlayerID, r.Touches, r.TotalPlays, err)
		}
		rec, err := share(r.Targets, r.TeamPassAttempts)
		if err != nil {
			return fmt.Errorf("rec_market_share game=%s player=%s targets=%d team_pass_attempts=%d: %w",
				r.GameID, r.PlayerID, r.Targets, r.TeamPassAttempts, err)
		}
		r.RBMarketShare = rb
		r.RecMarketShare = rec
	}
	return nil
}
