package scoring

import (
	"errors"
	"fmt"
)

// MetricCount is the fixed arity of a civility rating vector. The metrics are
// ordered: clarity, respectfulness, relevance, evidence, constructiveness.
const MetricCount = 5

var ErrInvalidMetrics = errors.New("invalid metrics")

type Tier string

const (
	TierNone   Tier = ""
	TierBronze Tier = "Bronze"
	TierSilver Tier = "Silver"
	TierGold   Tier = "Gold"
)

// CalculateScore validates the rating vector and returns its arithmetic mean.
func CalculateScore(metrics []int) (float64, error) {
	if len(metrics) != MetricCount {
		return 0, fmt.Errorf("%w: expected %d metrics, got %d", ErrInvalidMetrics, MetricCount, len(metrics))
	}
	sum := 0
	for i, m := range metrics {
		if m < 0 || m > 5 {
			return 0, fmt.Errorf("%w: metric %d must be between 0 and 5, got %d", ErrInvalidMetrics, i, m)
		}
		sum += m
	}
	return float64(sum) / float64(MetricCount), nil
}

// GetTier maps a score onto its award tier. Bands are closed below and open
// above, except Gold which includes the top score. Scores below 3.0 yield
// TierNone.
func GetTier(score float64) Tier {
	switch {
	case score < 3.0:
		return TierNone
	case score < 4.0:
		return TierBronze
	case score < 4.6:
		return TierSilver
	default:
		return TierGold
	}
}

// GetEmoji returns the medal emoji for a tier.
func GetEmoji(tier Tier) (string, error) {
	switch tier {
	case TierBronze:
		return "🥉", nil
	case TierSilver:
		return "🥈", nil
	case TierGold:
		return "🥇", nil
	default:
		return "", fmt.Errorf("%w: unknown tier %q", ErrInvalidMetrics, string(tier))
	}
}
