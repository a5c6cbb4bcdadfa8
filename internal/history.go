package internal

import (
	"sync"

	"github.com/caisyy0514/sentinel/internal/domain"
)

const defaultHistoryLimit = 50

// PlanHistory keeps the most recent tactical plans, newest first. Writers
// and readers never share backing storage, Recent returns a copy.
type PlanHistory struct {
	mu    sync.RWMutex
	limit int
	plans []domain.TacticalPlan
}

// NewPlanHistory creates a history bounded to limit entries.
func NewPlanHistory(limit int) *PlanHistory {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &PlanHistory{limit: limit}
}

// Add inserts a plan at the front, evicting the oldest entry when the
// history is full.
func (h *PlanHistory) Add(plan domain.TacticalPlan) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.plans) < h.limit {
		h.plans = append(h.plans, domain.TacticalPlan{})
	}
	copy(h.plans[1:], h.plans)
	h.plans[0] = plan
}

// Recent returns the stored plans, newest first.
func (h *PlanHistory) Recent() []domain.TacticalPlan {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.TacticalPlan, len(h.plans))
	copy(out, h.plans)
	return out
}

// Len returns the number of stored plans.
func (h *PlanHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.plans)
}
