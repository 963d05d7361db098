package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kindred/backend/internal/models"
	"kindred/backend/internal/relationship"
)

// Store implements relationship.Store over gorm.
type Store struct {
	db *gorm.DB
}

var _ relationship.Store = (*Store)(nil)

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn inside a database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx relationship.Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) CreateRelationship(ctx context.Context, rel *models.Relationship) error {
	return s.conn(ctx).Omit(clause.Associations).Create(rel).Error
}

func (s *Store) LoadRelationship(ctx context.Context, id string) (*models.Relationship, error) {
	var rel models.Relationship
	err := s.conn(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Where("left_at IS NULL").Order("joined_at ASC, id ASC")
		}).
		Preload("Members.User").
		Preload("Ledger").
		First(&rel, "id = ?", id).Error
	return found(&rel, err)
}

func (s *Store) FindRelationshipByInviteCode(ctx context.Context, code string) (*models.Relationship, error) {
	var rel models.Relationship
	err := s.conn(ctx).Where("invite_code = ?", code).First(&rel).Error
	return found(&rel, err)
}

func (s *Store) UpdateRelationshipStatus(ctx context.Context, rel *models.Relationship, from models.RelationshipStatus) (bool, error) {
	result := s.conn(ctx).Model(&models.Relationship{}).
		Where("id = ? AND status = ?", rel.ID, from).
		Updates(map[string]any{
			"status":     rel.Status,
			"updated_at": rel.UpdatedAt,
			"ended_at":   rel.EndedAt,
			"end_reason": rel.EndReason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *Store) ListRelationshipsForUser(ctx context.Context, userID string, relType models.RelationshipType) ([]models.Relationship, error) {
	var rels []models.Relationship
	query := s.conn(ctx).
		Joins("JOIN relationship_members ON relationship_members.relationship_id = relationships.id").
		Where("relationship_members.user_id = ? AND relationship_members.left_at IS NULL", userID)
	if relType != "" {
		query = query.Where("relationships.type = ?", relType)
	}
	err := query.Order("relationships.created_at ASC, relationships.id ASC").Find(&rels).Error
	return rels, err
}

func (s *Store) CreateMember(ctx context.Context, member *models.RelationshipMember) error {
	err := s.conn(ctx).Omit(clause.Associations).Create(member).Error
	if isUniqueViolation(err) {
		return relationship.ErrDuplicateMembership
	}
	return err
}

func (s *Store) FindActiveMember(ctx context.Context, relationshipID, userID string) (*models.RelationshipMember, error) {
	var m models.RelationshipMember
	err := s.conn(ctx).
		Where("relationship_id = ? AND user_id = ? AND left_at IS NULL", relationshipID, userID).
		First(&m).Error
	return found(&m, err)
}

func (s *Store) FindMemberClosedAt(ctx context.Context, relationshipID, userID string, at time.Time) (*models.RelationshipMember, error) {
	var m models.RelationshipMember
	err := s.conn(ctx).
		Where("relationship_id = ? AND user_id = ? AND left_at = ?", relationshipID, userID, at).
		First(&m).Error
	return found(&m, err)
}

func (s *Store) CloseMember(ctx context.Context, memberID string, at time.Time) (bool, error) {
	result := s.conn(ctx).Model(&models.RelationshipMember{}).
		Where("id = ? AND left_at IS NULL", memberID).
		Update("left_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *Store) CloseAllMembers(ctx context.Context, relationshipID string, at time.Time) (int64, error) {
	result := s.conn(ctx).Model(&models.RelationshipMember{}).
		Where("relationship_id = ? AND left_at IS NULL", relationshipID).
		Update("left_at", at)
	return result.RowsAffected, result.Error
}

func (s *Store) AppendEvent(ctx context.Context, event *models.LifecycleEvent) error {
	return s.conn(ctx).Create(event).Error
}

func (s *Store) ListEvents(ctx context.Context, relationshipID string) ([]models.LifecycleEvent, error) {
	var events []models.LifecycleEvent
	err := s.conn(ctx).
		Where("relationship_id = ?", relationshipID).
		Order("created_at DESC, id DESC").
		Find(&events).Error
	return events, err
}

func (s *Store) CountEvents(ctx context.Context, relationshipID string) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.LifecycleEvent{}).Where("relationship_id = ?", relationshipID).Count(&n).Error
	return n, err
}

func (s *Store) CountSessions(ctx context.Context, relationshipID string) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Session{}).Where("relationship_id = ?", relationshipID).Count(&n).Error
	return n, err
}

func (s *Store) ListSessions(ctx context.Context, relationshipID string, offset, limit int) ([]models.Session, error) {
	var sessions []models.Session
	query := s.conn(ctx).
		Preload("Analysis").
		Where("relationship_id = ?", relationshipID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	err := query.Find(&sessions).Error
	return sessions, err
}

func (s *Store) ListScoredSessionsSince(ctx context.Context, relationshipID string, since time.Time) ([]models.Session, error) {
	var sessions []models.Session
	err := s.conn(ctx).
		InnerJoins("Analysis").
		Where("sessions.relationship_id = ? AND sessions.status = ? AND sessions.created_at >= ?",
			relationshipID, models.SessionCompleted, since).
		Order("sessions.created_at DESC, sessions.id DESC").
		Find(&sessions).Error
	return sessions, err
}

func (s *Store) FindLedger(ctx context.Context, relationshipID string) (*models.EmotionalBankLedger, error) {
	var ledger models.EmotionalBankLedger
	err := s.conn(ctx).Where("relationship_id = ?", relationshipID).First(&ledger).Error
	return found(&ledger, err)
}

func (s *Store) FindMetricsCache(ctx context.Context, relationshipID string) (*models.PatternMetricsCache, error) {
	var cache models.PatternMetricsCache
	err := s.conn(ctx).Where("relationship_id = ?", relationshipID).First(&cache).Error
	return found(&cache, err)
}

// found maps gorm's not-found error to a nil row.
func found[T any](row *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return row, nil
}

// isUniqueViolation recognizes unique index failures from both drivers. The
// SQLite dialector cannot translate modernc errors, so the message is checked too.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
