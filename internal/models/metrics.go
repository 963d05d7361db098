package models

import "time"

// EmotionalBankLedger keeps the running balance the analysis pipeline maintains
// for a relationship.
type EmotionalBankLedger struct {
	ID             string `gorm:"size:36;primaryKey"`
	RelationshipID string `gorm:"size:36;not null;uniqueIndex"`
	Balance        int    `gorm:"not null;default:0"`
	UpdatedAt      time.Time
}

// PatternMetricsCache is the precomputed insight snapshot produced by the
// background aggregation job.
type PatternMetricsCache struct {
	ID             string         `gorm:"size:36;primaryKey"`
	RelationshipID string         `gorm:"size:36;not null;uniqueIndex"`
	Metrics        map[string]any `gorm:"type:text;serializer:json"`
	SessionCount   int            `gorm:"not null;default:0"`
	ComputedAt     time.Time
}

func (PatternMetricsCache) TableName() string {
	return "pattern_metrics_cache"
}
