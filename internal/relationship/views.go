package relationship

import (
	"time"

	"kindred/backend/internal/models"
)

// UserSummary is the public slice of a user shown next to memberships.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type MemberView struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	Role     *string      `json:"role,omitempty"`
	JoinedAt time.Time    `json:"joined_at"`
	LeftAt   *time.Time   `json:"left_at,omitempty"`
	User     *UserSummary `json:"user,omitempty"`
}

type LedgerView struct {
	Balance   int       `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Counts struct {
	Members  int   `json:"members"`
	Sessions int64 `json:"sessions"`
	Events   int64 `json:"events"`
}

// View is the hydrated relationship returned by every lifecycle operation.
type View struct {
	ID         string                    `json:"id"`
	Type       models.RelationshipType   `json:"type"`
	Name       *string                   `json:"name,omitempty"`
	InviteCode string                    `json:"invite_code"`
	Status     models.RelationshipStatus `json:"status"`
	EndReason  *string                   `json:"end_reason,omitempty"`
	EndedAt    *time.Time                `json:"ended_at,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
	Members    []MemberView              `json:"members"`
	Ledger     *LedgerView               `json:"emotional_bank,omitempty"`
	Counts     Counts                    `json:"counts"`
}

type EventView struct {
	ID            string                    `json:"id"`
	EventType     models.LifecycleEventType `json:"event_type"`
	TriggeredByID string                    `json:"triggered_by"`
	Reason        *string                   `json:"reason,omitempty"`
	Metadata      map[string]any            `json:"metadata,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

type AnalysisSummary struct {
	OverallScore    float64 `json:"overall_score"`
	GreenCardCount  int     `json:"green_card_count"`
	YellowCardCount int     `json:"yellow_card_count"`
	RedCardCount    int     `json:"red_card_count"`
	Summary         string  `json:"summary,omitempty"`
}

type SessionView struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Source    models.SessionSource `json:"source"`
	Status    models.SessionStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	Analysis  *AnalysisSummary     `json:"analysis,omitempty"`
}

// SessionList is one page of sessions plus the lifetime total.
type SessionList struct {
	Sessions []SessionView `json:"sessions"`
	Total    int64         `json:"total"`
}

// PageRequest selects a page of sessions. The zero value selects everything.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) offset() int {
	if p.Limit <= 0 || p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Insights surfaces the precomputed metrics cache.
type Insights struct {
	Available    bool           `json:"available"`
	Message      string         `json:"message,omitempty"`
	Metrics      map[string]any `json:"metrics,omitempty"`
	SessionCount int            `json:"session_count,omitempty"`
	ComputedAt   *time.Time     `json:"computed_at,omitempty"`
}

// LeaveResult acknowledges a successful leave.
type LeaveResult struct {
	Success bool `json:"success"`
}

func newUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email}
}

func newMemberView(m models.RelationshipMember) MemberView {
	return MemberView{
		ID:       m.ID,
		UserID:   m.UserID,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
		LeftAt:   m.LeftAt,
		User:     newUserSummary(m.User),
	}
}

func newMemberViews(members []models.RelationshipMember) []MemberView {
	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, newMemberView(m))
	}
	return views
}

func newView(rel *models.Relationship, counts Counts) *View {
	v := &View{
		ID:         rel.ID,
		Type:       rel.Type,
		Name:       rel.Name,
		InviteCode: rel.InviteCode,
		Status:     rel.Status,
		EndReason:  rel.EndReason,
		EndedAt:    rel.EndedAt,
		CreatedAt:  rel.CreatedAt,
		UpdatedAt:  rel.UpdatedAt,
		Members:    newMemberViews(rel.Members),
		Counts:     counts,
	}
	if rel.Ledger != nil {
		v.Ledger = &LedgerView{Balance: rel.Ledger.Balance, UpdatedAt: rel.Ledger.UpdatedAt}
	}
	v.Counts.Members = len(v.Members)
	return v
}

func newEventView(e models.LifecycleEvent) EventView {
	return EventView{
		ID:            e.ID,
		EventType:     e.EventType,
		TriggeredByID: e.TriggeredByID,
		Reason:        e.Reason,
		Metadata:      e.Metadata,
		CreatedAt:     e.CreatedAt,
	}
}

func newSessionView(s models.Session) SessionView {
	v := SessionView{
		ID:        s.ID,
		Title:     s.Title,
		Source:    s.Source,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
	}
	if a := s.Analysis; a != nil {
		v.Analysis = &AnalysisSummary{
			OverallScore:    a.OverallScore,
			GreenCardCount:  a.GreenCardCount,
			YellowCardCount: a.YellowCardCount,
			RedCardCount:    a.RedCardCount,
			Summary:         a.Summary,
		}
	}
	return v
}
