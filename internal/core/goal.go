package core

import (
	"math"
	"time"
)

// GoalProgress is the derived view of a savings goal: how far along it is and
// how many whole days remain. It never mutates the goal itself.
type GoalProgress struct {
	ID         int64
	Name       string
	Target     Money
	Current    Money
	Percentage float64 // 2 decimals, 0 when target is 0
	DaysLeft   int     // ceiling of remaining days, floored at 0
	Status     GoalStatus
}

// ComputeProgress derives percentage-complete and days-remaining for a goal
// at the given instant.
func ComputeProgress(g SavingsGoal, now time.Time) GoalProgress {
	var pct float64
	if g.Target.Cents > 0 {
		pct = Round2(float64(g.Current.Cents) / float64(g.Target.Cents) * 100)
	}

	days := int(math.Ceil(g.EndDate.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}

	return GoalProgress{
		ID:         g.ID,
		Name:       g.Name,
		Target:     g.Target,
		Current:    g.Current,
		Percentage: pct,
		DaysLeft:   days,
		Status:     g.Status,
	}
}

// NextGoalStatus evaluates the goal lifecycle rule. The completed check runs
// first, so a goal that reached its target stays completed even past the
// deadline. Status is re-derived on every amount update; terminal states are
// not sticky.
func NextGoalStatus(g SavingsGoal, now time.Time) GoalStatus {
	switch {
	case g.Current.Cents >= g.Target.Cents:
		return GoalCompleted
	case now.After(g.EndDate):
		return GoalFailed
	default:
		return GoalInProgress
	}
}
