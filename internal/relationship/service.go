// Package relationship owns relationship creation, invite-based joining,
// membership over time, the status lifecycle and the derived health metrics.
package relationship

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kindred/backend/internal/models"
)

const notEnoughDataMessage = "Not enough data yet"

// CreateInput describes a new relationship.
type CreateInput struct {
	Type models.RelationshipType
	Name string
}

// JoinInput carries the invite code and the optional role label of the joiner.
type JoinInput struct {
	InviteCode string
	Role       string
}

type LeaveInput struct {
	Reason string
}

type UpdateStatusInput struct {
	Status models.RelationshipStatus
	Reason string
}

// Service implements the relationship lifecycle on top of a Store.
type Service struct {
	store      Store
	logger     *zap.SugaredLogger
	now        func() time.Time
	newID      func() string
	inviteCode func() (string, error)
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithInviteCodes replaces the invite code generator.
func WithInviteCodes(gen func() (string, error)) Option {
	return func(s *Service) { s.inviteCode = gen }
}

// NewService creates a new Service.
func NewService(store Store, logger *zap.SugaredLogger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Service{
		store:      store,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
		inviteCode: NewInviteCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// Create starts a relationship with the caller as its first member.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*View, error) {
	code, err := s.inviteCode()
	if err != nil {
		return nil, err
	}
	now := s.clock()

	rel := &models.Relationship{
		ID:         s.newID(),
		Type:       in.Type,
		Name:       optional(in.Name),
		InviteCode: NormalizeInviteCode(code),
		Status:     models.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	member := &models.RelationshipMember{
		ID:             s.newID(),
		RelationshipID: rel.ID,
		UserID:         userID,
		JoinedAt:       now,
	}
	event := s.newEvent(rel.ID, models.EventCreated, userID, nil, map[string]any{"type": string(in.Type)}, now)

	err = s.store.Transaction(ctx, func(tx Store) error {
		if err := tx.CreateRelationship(ctx, rel); err != nil {
			return fmt.Errorf("creating relationship: %w", err)
		}
		if err := tx.CreateMember(ctx, member); err != nil {
			return fmt.Errorf("adding creator: %w", err)
		}
		if err := tx.AppendEvent(ctx, event); err != nil {
			return fmt.Errorf("recording event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("relationship created", "relationship_id", rel.ID, "user_id", userID, "type", in.Type)
	return s.view(ctx, rel.ID)
}

// Join adds the caller to the relationship behind an invite code.
func (s *Service) Join(ctx context.Context, userID string, in JoinInput) (*View, error) {
	code := NormalizeInviteCode(in.InviteCode)
	now := s.clock()
	var relID string

	err := s.store.Transaction(ctx, func(tx Store) error {
		rel, err := tx.FindRelationshipByInviteCode(ctx, code)
		if err != nil {
			return fmt.Errorf("finding relationship by invite code: %w", err)
		}
		if rel == nil {
			return notFound("invalid invite code")
		}
		if rel.Status != models.StatusActive {
			return invalidState("cannot join relationship with status %s (must be %s)", rel.Status, models.StatusActive)
		}

		existing, err := tx.FindActiveMember(ctx, rel.ID, userID)
		if err != nil {
			return fmt.Errorf("checking membership: %w", err)
		}
		if existing != nil {
			return conflict("already a member of this relationship")
		}

		member := &models.RelationshipMember{
			ID:             s.newID(),
			RelationshipID: rel.ID,
			UserID:         userID,
			Role:           optional(in.Role),
			JoinedAt:       now,
		}
		if err := tx.CreateMember(ctx, member); err != nil {
			if isDuplicate(err) {
				return conflict("already a member of this relationship")
			}
			return fmt.Errorf("adding member: %w", err)
		}

		var metadata map[string]any
		if member.Role != nil {
			metadata = map[string]any{"role": *member.Role}
		}
		if err := tx.AppendEvent(ctx, s.newEvent(rel.ID, models.EventMemberJoined, userID, nil, metadata, now)); err != nil {
			return fmt.Errorf("recording event: %w", err)
		}
		relID = rel.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("member joined", "relationship_id", relID, "user_id", userID)
	return s.view(ctx, relID)
}

// GetByID returns the relationship if the caller is one of its active members.
// A missing relationship and a non-member caller produce the same ErrNotFound.
func (s *Service) GetByID(ctx context.Context, relationshipID, userID string) (*View, error) {
	rel, err := s.authorize(ctx, relationshipID, userID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, rel)
}

// Leave closes the caller's active membership. Status and history are untouched.
func (s *Service) Leave(ctx context.Context, relationshipID, userID string, in LeaveInput) (*LeaveResult, error) {
	rel, err := s.authorize(ctx, relationshipID, userID)
	if err != nil {
		return nil, err
	}
	member := activeMember(rel, userID)
	if member == nil {
		return nil, notFound("membership not found")
	}
	now := s.clock()

	err = s.store.Transaction(ctx, func(tx Store) error {
		closed, err := tx.CloseMember(ctx, member.ID, now)
		if err != nil {
			return fmt.Errorf("closing membership: %w", err)
		}
		if !closed {
			return notFound("membership not found")
		}
		if err := tx.AppendEvent(ctx, s.newEvent(rel.ID, models.EventMemberLeft, userID, optional(in.Reason), nil, now)); err != nil {
			return fmt.Errorf("recording event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("member left", "relationship_id", rel.ID, "user_id", userID)
	return &LeaveResult{Success: true}, nil
}

// UpdateStatus moves the relationship along the lifecycle graph. Ending a
// relationship closes every active membership in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, relationshipID, userID string, in UpdateStatusInput) (*View, error) {
	rel, err := s.authorizeTransition(ctx, relationshipID, userID)
	if err != nil {
		return nil, err
	}
	from, to := rel.Status, in.Status
	if !CanTransition(from, to) {
		return nil, invalidState("cannot transition relationship from %s to %s", from, to)
	}
	now := s.clock()
	reason := optional(in.Reason)

	updated := *rel
	updated.Status = to
	updated.UpdatedAt = now
	if IsEnded(to) {
		updated.EndedAt = &now
		updated.EndReason = reason
	}

	err = s.store.Transaction(ctx, func(tx Store) error {
		if IsEnded(to) {
			if _, err := tx.CloseAllMembers(ctx, rel.ID, now); err != nil {
				return fmt.Errorf("closing memberships: %w", err)
			}
		}
		changed, err := tx.UpdateRelationshipStatus(ctx, &updated, from)
		if err != nil {
			return fmt.Errorf("updating status: %w", err)
		}
		if !changed {
			return invalidState("cannot transition relationship from %s to %s: status changed concurrently", from, to)
		}
		event := s.newEvent(rel.ID, transitionEvent(from, to), userID, reason, map[string]any{"from": string(from), "to": string(to)}, now)
		if err := tx.AppendEvent(ctx, event); err != nil {
			return fmt.Errorf("recording event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("relationship status changed", "relationship_id", rel.ID, "user_id", userID, "from", from, "to", to)
	return s.view(ctx, rel.ID)
}

// GetMembers lists the active members with user summaries.
func (s *Service) GetMembers(ctx context.Context, relationshipID, userID string) ([]MemberView, error) {
	rel, err := s.authorize(ctx, relationshipID, userID)
	if err != nil {
		return nil, err
	}
	return newMemberViews(rel.Members), nil
}

// GetSessions lists sessions newest first with their analysis summaries.
func (s *Service) GetSessions(ctx context.Context, relationshipID, userID string, page PageRequest) (*SessionList, error) {
	if _, err := s.authorize(ctx, relationshipID, userID); err != nil {
		return nil, err
	}
	sessions, err := s.store.ListSessions(ctx, relationshipID, page.offset(), max(page.Limit, 0))
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	total, err := s.store.CountSessions(ctx, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}
	list := &SessionList{Sessions: make([]SessionView, 0, len(sessions)), Total: total}
	for _, sess := range sessions {
		list.Sessions = append(list.Sessions, newSessionView(sess))
	}
	return list, nil
}

// GetInsights surfaces the precomputed metrics cache. It never aggregates.
func (s *Service) GetInsights(ctx context.Context, relationshipID, userID string) (*Insights, error) {
	if _, err := s.authorize(ctx, relationshipID, userID); err != nil {
		return nil, err
	}
	cache, err := s.store.FindMetricsCache(ctx, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("finding metrics cache: %w", err)
	}
	if cache == nil {
		return &Insights{Available: false, Message: notEnoughDataMessage}, nil
	}
	computedAt := cache.ComputedAt
	return &Insights{
		Available:    true,
		Metrics:      cache.Metrics,
		SessionCount: cache.SessionCount,
		ComputedAt:   &computedAt,
	}, nil
}

// GetHealth computes the 30-day health picture. See ComputeHealth.
func (s *Service) GetHealth(ctx context.Context, relationshipID, userID string) (*Health, error) {
	rel, err := s.authorize(ctx, relationshipID, userID)
	if err != nil {
		return nil, err
	}
	since := s.clock().Add(-healthWindow)
	sessions, err := s.store.ListScoredSessionsSince(ctx, relationshipID, since)
	if err != nil {
		return nil, fmt.Errorf("listing recent sessions: %w", err)
	}
	total, err := s.store.CountSessions(ctx, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}
	var balance int
	if rel.Ledger != nil {
		balance = rel.Ledger.Balance
	}
	h := ComputeHealth(sessions, balance, total)
	return &h, nil
}

// GetEvents returns the lifecycle audit trail, newest first.
func (s *Service) GetEvents(ctx context.Context, relationshipID, userID string) ([]EventView, error) {
	if _, err := s.authorize(ctx, relationshipID, userID); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, newEventView(e))
	}
	return views, nil
}

// ListForUser returns every relationship the user is an active member of.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]View, error) {
	rels, err := s.store.ListRelationshipsForUser(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	views := make([]View, 0, len(rels))
	for _, r := range rels {
		v, err := s.view(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// GetCoupleForUser returns the user's first romantic couple in the legacy
// partner1/partner2 shape, or nil when there is none.
func (s *Service) GetCoupleForUser(ctx context.Context, userID string) (*Couple, error) {
	rels, err := s.store.ListRelationshipsForUser(ctx, userID, models.TypeRomanticCouple)
	if err != nil {
		return nil, fmt.Errorf("listing couples: %w", err)
	}
	if len(rels) == 0 {
		return nil, nil
	}
	v, err := s.view(ctx, rels[0].ID)
	if err != nil {
		return nil, err
	}
	return ToCouple(v), nil
}

// authorize is the single gate for member-scoped operations.
func (s *Service) authorize(ctx context.Context, relationshipID, userID string) (*models.Relationship, error) {
	rel, err := s.store.LoadRelationship(ctx, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("loading relationship: %w", err)
	}
	if rel == nil || activeMember(rel, userID) == nil {
		return nil, notFound("relationship not found")
	}
	return rel, nil
}

// authorizeTransition extends the gate for ended relationships: nobody is
// active after an ending, so the members whose membership the ending closed
// may still archive it.
func (s *Service) authorizeTransition(ctx context.Context, relationshipID, userID string) (*models.Relationship, error) {
	rel, err := s.store.LoadRelationship(ctx, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("loading relationship: %w", err)
	}
	if rel == nil {
		return nil, notFound("relationship not found")
	}
	if activeMember(rel, userID) != nil {
		return rel, nil
	}
	if IsEnded(rel.Status) && rel.EndedAt != nil {
		m, err := s.store.FindMemberClosedAt(ctx, rel.ID, userID, *rel.EndedAt)
		if err != nil {
			return nil, fmt.Errorf("checking closed membership: %w", err)
		}
		if m != nil {
			return rel, nil
		}
	}
	return nil, notFound("relationship not found")
}

func (s *Service) view(ctx context.Context, relationshipID string) (*View, error) {
	rel, err := s.store.LoadRelationship(ctx, relationshipID)
	if err != nil {
		return nil, fmt.Errorf("loading relationship: %w", err)
	}
	if rel == nil {
		return nil, notFound("relationship not found")
	}
	return s.hydrate(ctx, rel)
}

func (s *Service) hydrate(ctx context.Context, rel *models.Relationship) (*View, error) {
	sessions, err := s.store.CountSessions(ctx, rel.ID)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}
	events, err := s.store.CountEvents(ctx, rel.ID)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}
	return newView(rel, Counts{Sessions: sessions, Events: events}), nil
}

func (s *Service) newEvent(relationshipID string, eventType models.LifecycleEventType, userID string, reason *string, metadata map[string]any, at time.Time) *models.LifecycleEvent {
	return &models.LifecycleEvent{
		ID:             s.newID(),
		RelationshipID: relationshipID,
		EventType:      eventType,
		TriggeredByID:  userID,
		Reason:         reason,
		Metadata:       metadata,
		CreatedAt:      at,
	}
}

func activeMember(rel *models.Relationship, userID string) *models.RelationshipMember {
	for i := range rel.Members {
		if rel.Members[i].UserID == userID && rel.Members[i].IsActive() {
			return &rel.Members[i]
		}
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
