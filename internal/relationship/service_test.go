package relationship_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kindred/backend/internal/config"
	"kindred/backend/internal/database"
	"kindred/backend/internal/models"
	"kindred/backend/internal/relationship"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db  *gorm.DB
	svc *relationship.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open(&config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    ":memory:",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	// each call advances one second so events order deterministically
	var mu sync.Mutex
	clock := base
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	return &fixture{
		db:  db,
		svc: relationship.NewService(database.NewStore(db), zap.NewNop().Sugar(), relationship.WithClock(now)),
	}
}

func (f *fixture) user(t *testing.T, name string) string {
	t.Helper()
	u := models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(name) + "@example.com",
		DisplayName:  name,
		PasswordHash: "hash",
	}
	require.NoError(t, f.db.Create(&u).Error)
	return u.ID
}

func (f *fixture) session(t *testing.T, relID string, at time.Time, status models.SessionStatus, analysis *models.AnalysisResult) {
	t.Helper()
	s := models.Session{
		ID:             uuid.NewString(),
		RelationshipID: relID,
		Title:          "session",
		Source:         models.SessionSourceAudio,
		Status:         status,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	if analysis != nil {
		analysis.ID = uuid.NewString()
		analysis.SessionID = s.ID
		s.Analysis = analysis
	}
	require.NoError(t, f.db.Create(&s).Error)
}

func (f *fixture) create(t *testing.T, userID string, relType models.RelationshipType) *relationship.View {
	t.Helper()
	v, err := f.svc.Create(context.Background(), userID, relationship.CreateInput{Type: relType, Name: "Us"})
	require.NoError(t, err)
	return v
}

func eventTypes(events []relationship.EventView) []models.LifecycleEventType {
	types := make([]models.LifecycleEventType, len(events))
	for i, e := range events {
		types[i] = e.EventType
	}
	return types
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex := f.user(t, "Alex")

	v, err := f.svc.Create(ctx, alex, relationship.CreateInput{Type: models.TypeFriendshipGroup, Name: "  Book Club "})
	require.NoError(t, err)

	assert.Equal(t, models.StatusActive, v.Status)
	assert.Equal(t, models.TypeFriendshipGroup, v.Type)
	require.NotNil(t, v.Name)
	assert.Equal(t, "Book Club", *v.Name)
	assert.Len(t, v.InviteCode, 10)
	assert.Equal(t, strings.ToUpper(v.InviteCode), v.InviteCode)
	require.Len(t, v.Members, 1)
	assert.Equal(t, alex, v.Members[0].UserID)
	require.NotNil(t, v.Members[0].User)
	assert.Equal(t, "Alex", v.Members[0].User.DisplayName)
	assert.Equal(t, 1, v.Counts.Members)
	assert.Equal(t, int64(1), v.Counts.Events)
	assert.Equal(t, int64(0), v.Counts.Sessions)

	events, err := f.svc.GetEvents(ctx, v.ID, alex)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventCreated, events[0].EventType)
	assert.Equal(t, alex, events[0].TriggeredByID)
	assert.Equal(t, "FRIENDSHIP_GROUP", events[0].Metadata["type"])
}

func TestCreateWithoutName(t *testing.T) {
	f := newFixture(t)
	alex := f.user(t, "Alex")

	v, err := f.svc.Create(context.Background(), alex, relationship.CreateInput{Type: models.TypeRomanticCouple})
	require.NoError(t, err)
	assert.Nil(t, v.Name)
}

func TestInviteCodesAreUnique(t *testing.T) {
	f := newFixture(t)
	alex := f.user(t, "Alex")

	codes := make(map[string]bool)
	for range 20 {
		v := f.create(t, alex, models.TypeFriendshipPair)
		assert.False(t, codes[v.InviteCode])
		codes[v.InviteCode] = true
	}
}

func TestJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex, sam := f.user(t, "Alex"), f.user(t, "Sam")
	created := f.create(t, alex, models.TypeRomanticCouple)

	v, err := f.svc.Join(ctx, sam, relationship.JoinInput{
		InviteCode: "  " + strings.ToLower(created.InviteCode) + " ",
		Role:       "partner",
	})
	require.NoError(t, err)

	require.Len(t, v.Members, 2)
	assert.Equal(t, alex, v.Members[0].UserID)
	assert.Equal(t, sam, v.Members[1].UserID)
	require.NotNil(t, v.Members[1].Role)
	assert.Equal(t, "partner", *v.Members[1].Role)

	events, err := f.svc.GetEvents(ctx, v.ID, sam)
	require.NoError(t, err)
	assert.Equal(t, []models.LifecycleEventType{models.EventMemberJoined, models.EventCreated}, eventTypes(events))
	assert.Equal(t, "partner", events[0].Metadata["role"])
}

func TestJoinTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex, sam := f.user(t, "Alex"), f.user(t, "Sam")
	created := f.create(t, alex, models.TypeRomanticCouple)

	_, err := f.svc.Join(ctx, sam, relationship.JoinInput{InviteCode: created.InviteCode})
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, sam, relationship.JoinInput{InviteCode: created.InviteCode})
	assert.ErrorIs(t, err, relationship.ErrConflict)

	_, err = f.svc.Join(ctx, alex, relationship.JoinInput{InviteCode: created.InviteCode})
	assert.ErrorIs(t, err, relationship.ErrConflict)

	members, err := f.svc.GetMembers(ctx, created.ID, alex)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestJoinUnknownCode(t *testing.T) {
	f := newFixture(t)
	sam := f.user(t, "Sam")

	_, err := f.svc.Join(context.Background(), sam, relationship.JoinInput{InviteCode: "NOPE000000"})
	assert.ErrorIs(t, err, relationship.ErrNotFound)
}

func TestJoinRequiresActiveStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex, sam := f.user(t, "Alex"), f.user(t, "Sam")
	created := f.create(t, alex, models.TypeRomanticCouple)

	_, err := f.svc.UpdateStatus(ctx, created.ID, alex, relationship.UpdateStatusInput{Status: models.StatusPaused})
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, sam, relationship.JoinInput{InviteCode: created.InviteCode})
	require.ErrorIs(t, err, relationship.ErrInvalidState)
	assert.Contains(t, err.Error(), "PAUSED")
}

func TestLeaveAndRejoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex, sam := f.user(t, "Alex"), f.user(t, "Sam")
	created := f.create(t, alex, models.TypeFriendshipPair)
	_, err := f.svc.Join(ctx, sam, relationship.JoinInput{InviteCode: created.InviteCode})
	require.NoError(t, err)

	res, err := f.svc.Leave(ctx, created.ID, sam, relationship.LeaveInput{Reason: "moving away"})
	require.NoError(t, err)
	assert.True(t, res.Success)

	_, err = f.svc.GetByID(ctx, created.ID, sam)
	assert.ErrorIs(t, err, relationship.ErrNotFound)

	v, err := f.svc.GetByID(ctx, created.ID, alex)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, v.Status)
	assert.Len(t, v.Members, 1)

	_, err = f.svc.Join(ctx, sam, relationship.JoinInput{InviteCode: created.InviteCode})
	require.NoError(t, err)

	var rows []models.RelationshipMember
	require.NoError(t, f.db.Where("relationship_id = ? AND user_id = ?", created.ID, sam).Order("joined_at").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.NotNil(t, rows[0].LeftAt)
	assert.Nil(t, rows[1].LeftAt)

	events, err := f.svc.GetEvents(ctx, created.ID, sam)
	require.NoError(t, err)
	assert.Equal(t, []models.LifecycleEventType{
		models.EventMemberJoined,
		models.EventMemberLeft,
		models.EventMemberJoined,
		models.EventCreated,
	}, eventTypes(events))
	require.NotNil(t, events[1].Reason)
	assert.Equal(t, "moving away", *events[1].Reason)
}

func TestLeaveByNonMember(t *testing.T) {
	f := newFixture(t)
	alex, stranger := f.user(t, "Alex"), f.user(t, "Stranger")
	created := f.create(t, alex, models.TypeFriendshipPair)

	_, err := f.svc.Leave(context.Background(), created.ID, stranger, relationship.LeaveInput{})
	assert.ErrorIs(t, err, relationship.ErrNotFound)
}

func TestLastMemberLeavingKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex := f.user(t, "Alex")
	created := f.create(t, alex, models.TypeFriendshipPair)

	_, err := f.svc.Leave(ctx, created.ID, alex, relationship.LeaveInput{})
	require.NoError(t, err)

	var rel models.Relationship
	require.NoError(t, f.db.First(&rel, "id = ?", created.ID).Error)
	assert.Equal(t, models.StatusActive, rel.Status)
}

func TestNonMemberSeesNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex, stranger := f.user(t, "Alex"), f.user(t, "Stranger")
	created := f.create(t, alex, models.TypeFriendshipPair)

	_, err := f.svc.GetByID(ctx, created.ID, stranger)
	assert.ErrorIs(t, err, relationship.ErrNotFound)
	_, err = f.svc.GetByID(ctx, "missing", alex)
	assert.ErrorIs(t, err, relationship.ErrNotFound)
	_, err = f.svc.GetMembers(ctx, created.ID, stranger)
	assert.ErrorIs(t, err, relationship.ErrNotFound)
	_, err = f.svc.GetSessions(ctx, created.ID, stranger, relationship.PageRequest{})
	assert.ErrorIs(t, err, relationship.ErrNotFound)
	_, err = f.svc.GetInsights(ctx, created.ID, stranger)
	assert.ErrorIs(t, err, relationship.ErrNotFound)
	_, err = f.svc.GetHealth(ctx, created.ID, stranger)
	assert.ErrorIs(t, err, relationship.ErrNotFound)
	_, err = f.svc.GetEvents(ctx, created.ID, stranger)
	assert.ErrorIs(t, err, relationship.ErrNotFound)
	_, err = f.svc.UpdateStatus(ctx, created.ID, stranger, relationship.UpdateStatusInput{Status: models.StatusPaused})
	assert.ErrorIs(t, err, relationship.ErrNotFound)
}

func TestPauseAndResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex := f.user(t, "Alex")
	created := f.create(t, alex, models.TypeRomanticCouple)

	v, err := f.svc.UpdateStatus(ctx, created.ID, alex, relationship.UpdateStatusInput{Status: models.StatusPaused, Reason: "vacation"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, v.Status)
	assert.Nil(t, v.EndedAt)

	v, err = f.svc.UpdateStatus(ctx, created.ID, alex, relationship.UpdateStatusInput{Status: models.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, v.Status)

	events, err := f.svc.GetEvents(ctx, created.ID, alex)
	require.NoError(t, err)
	assert.Equal(t, []models.LifecycleEventType{models.EventResumed, models.EventPaused, models.EventCreated}, eventTypes(events))
	assert.Equal(t, "PAUSED", events[0].Metadata["from"])
	assert.Equal(t, "ACTIVE", events[0].Metadata["to"])
	require.NotNil(t, events[1].Reason)
	assert.Equal(t, "vacation", *events[1].Reason)
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex := f.user(t, "Alex")
	created := f.create(t, alex, models.TypeRomanticCouple)

	_, err := f.svc.UpdateStatus(ctx, created.ID, alex, relationship.UpdateStatusInput{Status: models.StatusArchived})
	require.ErrorIs(t, err, relationship.ErrInvalidState)
	assert.Equal(t, "cannot transition relationship from ACTIVE to ARCHIVED", err.Error())

	_, err = f.svc.UpdateStatus(ctx, created.ID, alex, relationship.UpdateStatusInput{Status: models.StatusActive})
	assert.ErrorIs(t, err, relationship.ErrInvalidState)

	events, err := f.svc.GetEvents(ctx, created.ID, alex)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEndClosesMembershipsAndArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex, sam, stranger := f.user(t, "Alex"), f.user(t, "Sam"), f.user(t, "Stranger")
	created := f.create(t, alex, models.TypeRomanticCouple)
	_, err := f.svc.Join(ctx, sam, relationship.JoinInput{InviteCode: created.InviteCode})
	require.NoError(t, err)

	v, err := f.svc.UpdateStatus(ctx, created.ID, sam, relationship.UpdateStatusInput{
		Status: models.StatusEndedMutual,
		Reason: "grew apart",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusEndedMutual, v.Status)
	require.NotNil(t, v.EndedAt)
	require.NotNil(t, v.EndReason)
	assert.Equal(t, "grew apart", *v.EndReason)
	assert.Empty(t, v.Members)

	var open int64
	require.NoError(t, f.db.Model(&models.RelationshipMember{}).
		Where("relationship_id = ? AND left_at IS NULL", created.ID).Count(&open).Error)
	assert.Zero(t, open)

	_, err = f.svc.GetByID(ctx, created.ID, alex)
	assert.ErrorIs(t, err, relationship.ErrNotFound)

	rels, err := f.svc.ListForUser(ctx, alex)
	require.NoError(t, err)
	assert.Empty(t, rels)

	_, err = f.svc.UpdateStatus(ctx, created.ID, stranger, relationship.UpdateStatusInput{Status: models.StatusArchived})
	assert.ErrorIs(t, err, relationship.ErrNotFound)

	_, err = f.svc.UpdateStatus(ctx, created.ID, alex, relationship.UpdateStatusInput{Status: models.StatusActive})
	assert.ErrorIs(t, err, relationship.ErrInvalidState)

	v, err = f.svc.UpdateStatus(ctx, created.ID, alex, relationship.UpdateStatusInput{Status: models.StatusArchived})
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, v.Status)
	assert.NotNil(t, v.EndedAt)

	var events []models.LifecycleEvent
	require.NoError(t, f.db.Where("relationship_id = ?", created.ID).Order("created_at").Find(&events).Error)
	require.Len(t, events, 4)
	assert.Equal(t, models.EventEndedMutual, events[2].EventType)
	assert.Equal(t, sam, events[2].TriggeredByID)
	assert.Equal(t, models.EventArchived, events[3].EventType)
}

func TestEndUnilateralFromPaused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex := f.user(t, "Alex")
	created := f.create(t, alex, models.TypeBusinessPartnership)

	_, err := f.svc.UpdateStatus(ctx, created.ID, alex, relationship.UpdateStatusInput{Status: models.StatusPaused})
	require.NoError(t, err)
	v, err := f.svc.UpdateStatus(ctx, created.ID, alex, relationship.UpdateStatusInput{Status: models.StatusEndedUnilateral})
	require.NoError(t, err)
	assert.Equal(t, models.StatusEndedUnilateral, v.Status)
	assert.Nil(t, v.EndReason)
}

func TestGetHealth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex := f.user(t, "Alex")
	created := f.create(t, alex, models.TypeRomanticCouple)

	h, err := f.svc.GetHealth(ctx, created.ID, alex)
	require.NoError(t, err)
	assert.Nil(t, h.HealthScore)
	assert.Nil(t, h.Trend)
	assert.Nil(t, h.LastSessionDate)
	assert.Zero(t, h.GreenCardRatio)
	assert.Zero(t, h.EmotionalBankBalance)
	assert.Zero(t, h.TotalSessionCount)

	for i, score := range []float64{90, 85, 40, 35, 30} {
		at := base.Add(-time.Duration(i+1) * 24 * time.Hour)
		f.session(t, created.ID, at, models.SessionCompleted, &models.AnalysisResult{
			OverallScore:   score,
			GreenCardCount: 1,
			RedCardCount:   i % 2,
		})
	}
	// outside the window, pending, and failed sessions only count toward the total
	f.session(t, created.ID, base.Add(-40*24*time.Hour), models.SessionCompleted, &models.AnalysisResult{OverallScore: 10})
	f.session(t, created.ID, base.Add(-time.Hour), models.SessionPending, nil)
	f.session(t, created.ID, base.Add(-2*time.Hour), models.SessionFailed, nil)
	require.NoError(t, f.db.Create(&models.EmotionalBankLedger{
		ID:             uuid.NewString(),
		RelationshipID: created.ID,
		Balance:        42,
	}).Error)

	h, err = f.svc.GetHealth(ctx, created.ID, alex)
	require.NoError(t, err)
	require.NotNil(t, h.HealthScore)
	assert.Equal(t, 56, *h.HealthScore)
	require.NotNil(t, h.Trend)
	assert.Equal(t, relationship.TrendImproving, *h.Trend)
	assert.Equal(t, 42, h.EmotionalBankBalance)
	// 5 green, 2 red
	assert.Equal(t, 71, h.GreenCardRatio)
	assert.Equal(t, int64(8), h.TotalSessionCount)
	require.NotNil(t, h.LastSessionDate)
	assert.True(t, h.LastSessionDate.Equal(base.Add(-24*time.Hour)))
}

func TestGetInsights(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex := f.user(t, "Alex")
	created := f.create(t, alex, models.TypeRomanticCouple)

	insights, err := f.svc.GetInsights(ctx, created.ID, alex)
	require.NoError(t, err)
	assert.False(t, insights.Available)
	assert.Equal(t, "Not enough data yet", insights.Message)

	require.NoError(t, f.db.Create(&models.PatternMetricsCache{
		ID:             uuid.NewString(),
		RelationshipID: created.ID,
		Metrics:        map[string]any{"bids_turned_toward": 0.8},
		SessionCount:   6,
		ComputedAt:     base,
	}).Error)

	insights, err = f.svc.GetInsights(ctx, created.ID, alex)
	require.NoError(t, err)
	assert.True(t, insights.Available)
	assert.Empty(t, insights.Message)
	assert.Equal(t, 6, insights.SessionCount)
	assert.Equal(t, 0.8, insights.Metrics["bids_turned_toward"])
	require.NotNil(t, insights.ComputedAt)
	assert.True(t, insights.ComputedAt.Equal(base))
}

func TestGetSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex := f.user(t, "Alex")
	created := f.create(t, alex, models.TypeRomanticCouple)

	f.session(t, created.ID, base.Add(-3*time.Hour), models.SessionCompleted, &models.AnalysisResult{OverallScore: 70, Summary: "oldest"})
	f.session(t, created.ID, base.Add(-2*time.Hour), models.SessionProcessing, nil)
	f.session(t, created.ID, base.Add(-1*time.Hour), models.SessionCompleted, &models.AnalysisResult{OverallScore: 80, Summary: "newest"})

	page, err := f.svc.GetSessions(ctx, created.ID, alex, relationship.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Sessions, 2)
	require.NotNil(t, page.Sessions[0].Analysis)
	assert.Equal(t, "newest", page.Sessions[0].Analysis.Summary)
	assert.Equal(t, models.SessionProcessing, page.Sessions[1].Status)
	assert.Nil(t, page.Sessions[1].Analysis)

	page, err = f.svc.GetSessions(ctx, created.ID, alex, relationship.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Sessions, 1)
	assert.Equal(t, "oldest", page.Sessions[0].Analysis.Summary)

	all, err := f.svc.GetSessions(ctx, created.ID, alex, relationship.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Sessions, 3)

	v, err := f.svc.GetByID(ctx, created.ID, alex)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Counts.Sessions)
}

func TestListForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex, sam := f.user(t, "Alex"), f.user(t, "Sam")

	first := f.create(t, alex, models.TypeRomanticCouple)
	second := f.create(t, sam, models.TypeFamilySiblings)
	_, err := f.svc.Join(ctx, alex, relationship.JoinInput{InviteCode: second.InviteCode})
	require.NoError(t, err)

	rels, err := f.svc.ListForUser(ctx, alex)
	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, first.ID, rels[0].ID)
	assert.Equal(t, second.ID, rels[1].ID)

	rels, err = f.svc.ListForUser(ctx, sam)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, second.ID, rels[0].ID)
}

func TestGetCoupleForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alex, sam := f.user(t, "Alex"), f.user(t, "Sam")

	f.create(t, alex, models.TypeFriendshipPair)
	couple, err := f.svc.GetCoupleForUser(ctx, alex)
	require.NoError(t, err)
	assert.Nil(t, couple)

	created := f.create(t, alex, models.TypeRomanticCouple)
	_, err = f.svc.Join(ctx, sam, relationship.JoinInput{InviteCode: created.InviteCode})
	require.NoError(t, err)

	couple, err = f.svc.GetCoupleForUser(ctx, sam)
	require.NoError(t, err)
	require.NotNil(t, couple)
	assert.Equal(t, created.ID, couple.ID)
	require.NotNil(t, couple.Partner1)
	assert.Equal(t, "Alex", couple.Partner1.DisplayName)
	require.NotNil(t, couple.Partner2)
	assert.Equal(t, "Sam", couple.Partner2.DisplayName)
}
