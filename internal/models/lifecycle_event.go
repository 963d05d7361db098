package models

import "time"

// LifecycleEventType names a state-changing action on a relationship.
type LifecycleEventType string

const (
	EventCreated         LifecycleEventType = "CREATED"
	EventMemberJoined    LifecycleEventType = "MEMBER_JOINED"
	EventMemberLeft      LifecycleEventType = "MEMBER_LEFT"
	EventPaused          LifecycleEventType = "PAUSED"
	EventResumed         LifecycleEventType = "RESUMED"
	EventEndedMutual     LifecycleEventType = "ENDED_MUTUAL"
	EventEndedUnilateral LifecycleEventType = "ENDED_UNILATERAL"
	EventArchived        LifecycleEventType = "ARCHIVED"
)

// LifecycleEvent is an append-only audit record. Rows are never updated or deleted.
type LifecycleEvent struct {
	ID             string             `gorm:"size:36;primaryKey"`
	RelationshipID string             `gorm:"size:36;not null;index"`
	EventType      LifecycleEventType `gorm:"size:32;not null;index"`
	TriggeredByID  string             `gorm:"size:36;not null"`
	Reason         *string
	Metadata       map[string]any `gorm:"type:text;serializer:json"`
	CreatedAt      time.Time      `gorm:"index"`
}
