package models

import "time"

type SessionSource string

const (
	SessionSourceAudio      SessionSource = "AUDIO"
	SessionSourceChatImport SessionSource = "CHAT_IMPORT"
)

type SessionStatus string

const (
	SessionPending    SessionStatus = "PENDING"
	SessionProcessing SessionStatus = "PROCESSING"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionFailed     SessionStatus = "FAILED"
)

// Session is a logged conversation. Rows are written by the upload and analysis
// pipeline; the relationship service only reads them.
type Session struct {
	ID             string        `gorm:"size:36;primaryKey"`
	RelationshipID string        `gorm:"size:36;not null;index"`
	UploadedByID   string        `gorm:"size:36"`
	Title          string        `gorm:"size:255"`
	Source         SessionSource `gorm:"size:20;not null;default:'AUDIO'"`
	Status         SessionStatus `gorm:"size:20;not null;default:'PENDING';index"`
	CreatedAt      time.Time     `gorm:"index"`
	UpdatedAt      time.Time

	Analysis *AnalysisResult `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// AnalysisResult holds the scorer output for one session.
type AnalysisResult struct {
	ID              string  `gorm:"size:36;primaryKey"`
	SessionID       string  `gorm:"size:36;not null;uniqueIndex"`
	OverallScore    float64 `gorm:"not null"`
	GreenCardCount  int     `gorm:"not null;default:0"`
	YellowCardCount int     `gorm:"not null;default:0"`
	RedCardCount    int     `gorm:"not null;default:0"`
	Summary         string
	CreatedAt       time.Time
}
