package internal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caisyy0514/sentinel/internal/domain"
)

func numberedPlan(n int) domain.TacticalPlan {
	return domain.TacticalPlan{
		Symbol:    "BTC_USDT",
		Action:    domain.ActionWait,
		Rationale: fmt.Sprintf("plan-%d", n),
	}
}

func TestPlanHistoryNewestFirst(t *testing.T) {
	h := NewPlanHistory(10)
	for i := 0; i < 3; i++ {
		h.Add(numberedPlan(i))
	}

	recent := h.Recent()
	require.Len(t, recent, 3)
	require.Equal(t, "plan-2", recent[0].Rationale)
	require.Equal(t, "plan-1", recent[1].Rationale)
	require.Equal(t, "plan-0", recent[2].Rationale)
}

func TestPlanHistoryEvictsOldest(t *testing.T) {
	h := NewPlanHistory(2)
	for i := 0; i < 5; i++ {
		h.Add(numberedPlan(i))
	}

	require.Equal(t, 2, h.Len())
	recent := h.Recent()
	require.Equal(t, "plan-4", recent[0].Rationale)
	require.Equal(t, "plan-3", recent[1].Rationale)
}

func TestPlanHistoryRecentReturnsCopy(t *testing.T) {
	h := NewPlanHistory(5)
	h.Add(numberedPlan(0))

	recent := h.Recent()
	recent[0].Rationale = "mutated"

	require.Equal(t, "plan-0", h.Recent()[0].Rationale)
}

func TestPlanHistoryDefaultLimit(t *testing.T) {
	h := NewPlanHistory(0)
	for i := 0; i < defaultHistoryLimit+10; i++ {
		h.Add(numberedPlan(i))
	}
	require.Equal(t, defaultHistoryLimit, h.Len())
}
