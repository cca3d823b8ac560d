package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smallledger/internal/core"
	"smallledger/internal/events"
)

// GoalStore is the savings goal persistence the service depends on.
type GoalStore interface {
	CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
	GoalByID(ctx context.Context, id, userID int64) (core.SavingsGoal, error)
	GoalsByUser(ctx context.Context, userID int64) ([]core.SavingsGoal, error)
	UpdateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
	DeleteGoal(ctx context.Context, id, userID int64) error
}

// GoalService manages savings goals and their derived lifecycle status.
type GoalService struct {
	store  GoalStore
	events EventPublisher
	now    func() time.Time
}

func NewGoalService(store GoalStore, publisher EventPublisher) *GoalService {
	return &GoalService{store: store, events: publisher, now: time.Now}
}

// WithClock overrides the service clock. Tests only.
func (s *GoalService) WithClock(now func() time.Time) *GoalService {
	s.now = now
	return s
}

func (s *GoalService) Create(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	g.Status = core.NextGoalStatus(g, s.now())

	created, err := s.store.CreateGoal(ctx, g)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}

	s.publish(ctx, created.ID, created.UserID, events.ActionCreated)
	return created, nil
}

func (s *GoalService) Get(ctx context.Context, id, userID int64) (core.SavingsGoal, error) {
	return s.store.GoalByID(ctx, id, userID)
}

func (s *GoalService) List(ctx context.Context, userID int64) ([]core.SavingsGoal, error) {
	return s.store.GoalsByUser(ctx, userID)
}

func (s *GoalService) Update(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	g.Status = core.NextGoalStatus(g, s.now())

	updated, err := s.store.UpdateGoal(ctx, g)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	s.publish(ctx, updated.ID, updated.UserID, events.ActionUpdated)
	return updated, nil
}

// UpdateAmount sets the saved amount and re-derives the goal status. The
// status rule is re-evaluated on every call, so lowering the amount can move
// a completed goal back to in_progress or failed.
func (s *GoalService) UpdateAmount(ctx context.Context, id, userID int64, amount core.Money) (core.SavingsGoal, error) {
	if amount.Cents < 0 {
		return core.SavingsGoal{}, core.ErrInvalidAmount
	}

	goal, err := s.store.GoalByID(ctx, id, userID)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	goal.Current = amount
	goal.Status = core.NextGoalStatus(goal, s.now())

	updated, err := s.store.UpdateGoal(ctx, goal)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	slog.InfoContext(ctx, "Goal amount updated",
		"goal_id", updated.ID,
		"user_id", updated.UserID,
		"current_cents", updated.Current.Cents,
		"status", string(updated.Status))

	s.publish(ctx, updated.ID, updated.UserID, events.ActionUpdated)
	return updated, nil
}

// Progress reports percentage-complete and days-remaining for one goal.
func (s *GoalService) Progress(ctx context.Context, id, userID int64) (core.GoalProgress, error) {
	goal, err := s.store.GoalByID(ctx, id, userID)
	if err != nil {
		return core.GoalProgress{}, err
	}
	return core.ComputeProgress(goal, s.now()), nil
}

func (s *GoalService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.store.DeleteGoal(ctx, id, userID); err != nil {
		return err
	}

	s.publish(ctx, id, userID, events.ActionDeleted)
	return nil
}

func (s *GoalService) publish(ctx context.Context, goalID, userID int64, action string) {
	if s.events == nil {
		return
	}
	event := events.NewLedgerEvent(events.EntityGoal, goalID, userID, action)
	if err := s.events.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish goal event",
			"goal_id", goalID,
			"action", action,
			"error", err)
	}
}
