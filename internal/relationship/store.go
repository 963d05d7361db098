package relationship

import (
	"context"
	"time"

	"kindred/backend/internal/models"
)

// Store is the persistence collaborator. Lookups of a single row return
// (nil, nil) when the row does not exist.
type Store interface {
	// Transaction runs fn against a Store bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateRelationship(ctx context.Context, rel *models.Relationship) error
	// LoadRelationship returns the relationship with its active members (users
	// preloaded, oldest membership first) and its ledger.
	LoadRelationship(ctx context.Context, id string) (*models.Relationship, error)
	FindRelationshipByInviteCode(ctx context.Context, code string) (*models.Relationship, error)
	// UpdateRelationshipStatus writes status, updated_at, ended_at and end_reason
	// only if the stored status still equals from. It reports whether a row changed.
	UpdateRelationshipStatus(ctx context.Context, rel *models.Relationship, from models.RelationshipStatus) (bool, error)
	// ListRelationshipsForUser returns relationships where the user has an active
	// membership, oldest first. An empty relType matches every type.
	ListRelationshipsForUser(ctx context.Context, userID string, relType models.RelationshipType) ([]models.Relationship, error)

	// CreateMember returns ErrDuplicateMembership when the user already holds an
	// active membership in the relationship.
	CreateMember(ctx context.Context, member *models.RelationshipMember) error
	FindActiveMember(ctx context.Context, relationshipID, userID string) (*models.RelationshipMember, error)
	// FindMemberClosedAt returns the user's membership whose left_at equals at.
	FindMemberClosedAt(ctx context.Context, relationshipID, userID string, at time.Time) (*models.RelationshipMember, error)
	// CloseMember stamps left_at on an open membership and reports whether it was open.
	CloseMember(ctx context.Context, memberID string, at time.Time) (bool, error)
	CloseAllMembers(ctx context.Context, relationshipID string, at time.Time) (int64, error)

	AppendEvent(ctx context.Context, event *models.LifecycleEvent) error
	ListEvents(ctx context.Context, relationshipID string) ([]models.LifecycleEvent, error)
	CountEvents(ctx context.Context, relationshipID string) (int64, error)

	CountSessions(ctx context.Context, relationshipID string) (int64, error)
	// ListSessions returns sessions newest first with their analysis. A limit
	// of zero returns every session.
	ListSessions(ctx context.Context, relationshipID string, offset, limit int) ([]models.Session, error)
	// ListScoredSessionsSince returns COMPLETED sessions that have an analysis
	// result and were created at or after since, newest first.
	ListScoredSessionsSince(ctx context.Context, relationshipID string, since time.Time) ([]models.Session, error)

	FindLedger(ctx context.Context, relationshipID string) (*models.EmotionalBankLedger, error)
	FindMetricsCache(ctx context.Context, relationshipID string) (*models.PatternMetricsCache, error)
}
