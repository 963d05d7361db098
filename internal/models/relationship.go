package models

import "time"

// RelationshipType classifies the kind of group a relationship models.
type RelationshipType string

const (
	TypeRomanticCouple         RelationshipType = "ROMANTIC_COUPLE"
	TypeRomanticPolyamorous    RelationshipType = "ROMANTIC_POLYAMOROUS"
	TypeFriendshipPair         RelationshipType = "FRIENDSHIP_PAIR"
	TypeFriendshipGroup        RelationshipType = "FRIENDSHIP_GROUP"
	TypeFamilyParentChild      RelationshipType = "FAMILY_PARENT_CHILD"
	TypeFamilySiblings         RelationshipType = "FAMILY_SIBLINGS"
	TypeFamilyExtended         RelationshipType = "FAMILY_EXTENDED"
	TypeBusinessPartnership    RelationshipType = "BUSINESS_PARTNERSHIP"
	TypeProfessionalMentorship RelationshipType = "PROFESSIONAL_MENTORSHIP"
	TypeProfessionalTeam       RelationshipType = "PROFESSIONAL_TEAM"
	TypeCommunityGroup         RelationshipType = "COMMUNITY_GROUP"
)

// RelationshipStatus is the lifecycle state of a relationship.
type RelationshipStatus string

const (
	StatusActive          RelationshipStatus = "ACTIVE"
	StatusPaused          RelationshipStatus = "PAUSED"
	StatusEndedMutual     RelationshipStatus = "ENDED_MUTUAL"
	StatusEndedUnilateral RelationshipStatus = "ENDED_UNILATERAL"
	StatusArchived        RelationshipStatus = "ARCHIVED"
)

// Relationship is a group of users coordinating through the app.
// InviteCode is assigned at creation and never rewritten.
type Relationship struct {
	ID         string             `gorm:"size:36;primaryKey"`
	Type       RelationshipType   `gorm:"size:40;not null;index"`
	Name       *string            `gorm:"size:255"`
	InviteCode string             `gorm:"size:16;uniqueIndex;not null"`
	Status     RelationshipStatus `gorm:"size:20;not null;default:'ACTIVE';index"`
	EndReason  *string
	EndedAt    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Members []RelationshipMember `gorm:"foreignKey:RelationshipID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Events  []LifecycleEvent     `gorm:"foreignKey:RelationshipID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Ledger  *EmotionalBankLedger `gorm:"foreignKey:RelationshipID"`
}

// RelationshipMember is a time-bounded association between a user and a relationship.
// A nil LeftAt marks the membership as active; the partial unique index allows
// one active row per (relationship, user) while keeping closed rows as history.
type RelationshipMember struct {
	ID             string     `gorm:"size:36;primaryKey"`
	RelationshipID string     `gorm:"size:36;not null;uniqueIndex:idx_member_active,where:left_at IS NULL"`
	UserID         string     `gorm:"size:36;not null;index;uniqueIndex:idx_member_active,where:left_at IS NULL"`
	Role           *string    `gorm:"size:100"`
	JoinedAt       time.Time  `gorm:"not null"`
	LeftAt         *time.Time `gorm:"index"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// IsActive reports whether the membership is still open.
func (m RelationshipMember) IsActive() bool {
	return m.LeftAt == nil
}
