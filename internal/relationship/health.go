package relationship

import (
	"math"
	"time"

	"kindred/backend/internal/models"
)

const (
	healthWindow     = 30 * 24 * time.Hour
	trendMinSessions = 4
	trendThreshold   = 5.0
)

// Trend describes how recent session scores compare with older ones.
type Trend string

const (
	TrendImproving Trend = "IMPROVING"
	TrendDeclining Trend = "DECLINING"
	TrendStable    Trend = "STABLE"
)

// Health is the 30-day rolling picture of a relationship.
type Health struct {
	HealthScore          *int       `json:"health_score"`
	Trend                *Trend     `json:"trend"`
	EmotionalBankBalance int        `json:"emotional_bank_balance"`
	GreenCardRatio       int        `json:"green_card_ratio"`
	TotalSessionCount    int64      `json:"total_session_count"`
	LastSessionDate      *time.Time `json:"last_session_date"`
}

// ComputeHealth derives health metrics from scored sessions ordered newest
// first. Sessions without an analysis result are ignored.
//
// The list is split at n/2: indices [0, n/2) are the recent half and the rest
// the older half. A recent mean more than 5 points above the older mean is
// IMPROVING, more than 5 below is DECLINING.
func ComputeHealth(sessions []models.Session, balance int, total int64) Health {
	h := Health{EmotionalBankBalance: balance, TotalSessionCount: total}

	scored := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Analysis != nil {
			scored = append(scored, s)
		}
	}
	if len(scored) == 0 {
		return h
	}

	scores := make([]float64, len(scored))
	var green, yellow, red int
	for i, s := range scored {
		scores[i] = s.Analysis.OverallScore
		green += s.Analysis.GreenCardCount
		yellow += s.Analysis.YellowCardCount
		red += s.Analysis.RedCardCount
	}

	score := roundHalfUp(mean(scores))
	h.HealthScore = &score

	if n := len(scores); n >= trendMinSessions {
		t := classifyTrend(mean(scores[:n/2]), mean(scores[n/2:]))
		h.Trend = &t
	}

	if cards := green + yellow + red; cards > 0 {
		h.GreenCardRatio = roundHalfUp(float64(green) / float64(cards) * 100)
	}

	last := scored[0].CreatedAt
	h.LastSessionDate = &last
	return h
}

func classifyTrend(recent, older float64) Trend {
	switch diff := recent - older; {
	case diff > trendThreshold:
		return TrendImproving
	case diff < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
