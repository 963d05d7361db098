package relationship

import "kindred/backend/internal/models"

type statusSet map[models.RelationshipStatus]struct{}

// transitions is the complete lifecycle graph. Any new status must be added here
// with its full set of successors; nothing else decides what is allowed.
var transitions = map[models.RelationshipStatus]statusSet{
	models.StatusActive: {
		models.StatusPaused:          {},
		models.StatusEndedMutual:     {},
		models.StatusEndedUnilateral: {},
	},
	models.StatusPaused: {
		models.StatusActive:          {},
		models.StatusEndedMutual:     {},
		models.StatusEndedUnilateral: {},
	},
	models.StatusEndedMutual: {
		models.StatusArchived: {},
	},
	models.StatusEndedUnilateral: {
		models.StatusArchived: {},
	},
	models.StatusArchived: {},
}

// Statuses lists every known status in graph order.
var Statuses = []models.RelationshipStatus{
	models.StatusActive,
	models.StatusPaused,
	models.StatusEndedMutual,
	models.StatusEndedUnilateral,
	models.StatusArchived,
}

// CanTransition reports whether the lifecycle graph has an edge from -> to.
func CanTransition(from, to models.RelationshipStatus) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// IsEnded reports whether status closes the relationship.
func IsEnded(status models.RelationshipStatus) bool {
	return status == models.StatusEndedMutual || status == models.StatusEndedUnilateral
}

// transitionEvent names the audit event for an allowed transition. Resuming a
// paused relationship is recorded as RESUMED rather than ACTIVE.
func transitionEvent(from, to models.RelationshipStatus) models.LifecycleEventType {
	if from == models.StatusPaused && to == models.StatusActive {
		return models.EventResumed
	}
	return models.LifecycleEventType(to)
}
