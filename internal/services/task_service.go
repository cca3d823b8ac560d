package services

import (
	"context"
	"fmt"
	"log/slog"

	"smallledger/internal/core"
	"smallledger/internal/events"
)

// TaskStore is the task persistence the service depends on.
type TaskStore interface {
	CreateTask(ctx context.Context, t core.Task) (core.Task, error)
	TaskByID(ctx context.Context, id, userID int64) (core.Task, error)
	TasksByUser(ctx context.Context, userID int64) ([]core.Task, error)
	TasksByPeriod(ctx context.Context, userID int64, period core.TaskPeriod) ([]core.Task, error)
	UpdateTask(ctx context.Context, t core.Task) (core.Task, error)
	DeleteTask(ctx context.Context, id, userID int64) error
}

// QuadrantView groups tasks into the four importance/urgency quadrants.
// Importance and urgency of 3 or above count as high.
type QuadrantView struct {
	UrgentImportant       []core.Task
	NotUrgentImportant    []core.Task
	UrgentNotImportant    []core.Task
	NotUrgentNotImportant []core.Task
}

// TaskService manages tasks with their time-period and quadrant views.
type TaskService struct {
	store  TaskStore
	events EventPublisher
}

func NewTaskService(store TaskStore, publisher EventPublisher) *TaskService {
	return &TaskService{store: store, events: publisher}
}

// applyTaskDefaults fills omitted fields so a bare title is enough to make
// or replace a task.
func applyTaskDefaults(t core.Task) core.Task {
	if t.Status == "" {
		t.Status = core.TaskPending
	}
	if t.Priority == "" {
		t.Priority = core.PriorityMedium
	}
	if t.Importance == 0 {
		t.Importance = 2
	}
	if t.Urgency == 0 {
		t.Urgency = 2
	}
	if t.TimePeriod == "" {
		t.TimePeriod = core.PeriodWeek
	}
	return t
}

func (s *TaskService) Create(ctx context.Context, t core.Task) (core.Task, error) {
	t = applyTaskDefaults(t)
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}

	created, err := s.store.CreateTask(ctx, t)
	if err != nil {
		return core.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.publish(ctx, created.ID, created.UserID, events.ActionCreated)
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, id, userID int64) (core.Task, error) {
	return s.store.TaskByID(ctx, id, userID)
}

func (s *TaskService) List(ctx context.Context, userID int64) ([]core.Task, error) {
	return s.store.TasksByUser(ctx, userID)
}

func (s *TaskService) ListByPeriod(ctx context.Context, userID int64, period core.TaskPeriod) ([]core.Task, error) {
	if !period.Valid() {
		return nil, core.ErrInvalidPeriod
	}
	return s.store.TasksByPeriod(ctx, userID, period)
}

// Quadrant buckets every task of the user into the Eisenhower matrix.
func (s *TaskService) Quadrant(ctx context.Context, userID int64) (QuadrantView, error) {
	tasks, err := s.store.TasksByUser(ctx, userID)
	if err != nil {
		return QuadrantView{}, fmt.Errorf("load tasks: %w", err)
	}

	var view QuadrantView
	for _, t := range tasks {
		important := t.Importance >= 3
		urgent := t.Urgency >= 3
		switch {
		case important && urgent:
			view.UrgentImportant = append(view.UrgentImportant, t)
		case important:
			view.NotUrgentImportant = append(view.NotUrgentImportant, t)
		case urgent:
			view.UrgentNotImportant = append(view.UrgentNotImportant, t)
		default:
			view.NotUrgentNotImportant = append(view.NotUrgentNotImportant, t)
		}
	}
	return view, nil
}

func (s *TaskService) Update(ctx context.Context, t core.Task) (core.Task, error) {
	t = applyTaskDefaults(t)
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}

	updated, err := s.store.UpdateTask(ctx, t)
	if err != nil {
		return core.Task{}, err
	}

	s.publish(ctx, updated.ID, updated.UserID, events.ActionUpdated)
	return updated, nil
}

// UpdateStatus changes only the task status, leaving everything else as is.
func (s *TaskService) UpdateStatus(ctx context.Context, id, userID int64, status core.TaskStatus) (core.Task, error) {
	if !status.Valid() {
		return core.Task{}, core.ErrInvalidStatus
	}

	task, err := s.store.TaskByID(ctx, id, userID)
	if err != nil {
		return core.Task{}, err
	}

	task.Status = status
	updated, err := s.store.UpdateTask(ctx, task)
	if err != nil {
		return core.Task{}, err
	}

	slog.InfoContext(ctx, "Task status updated",
		"task_id", updated.ID,
		"user_id", updated.UserID,
		"status", string(updated.Status))

	s.publish(ctx, updated.ID, updated.UserID, events.ActionUpdated)
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.store.DeleteTask(ctx, id, userID); err != nil {
		return err
	}

	s.publish(ctx, id, userID, events.ActionDeleted)
	return nil
}

func (s *TaskService) publish(ctx context.Context, taskID, userID int64, action string) {
	if s.events == nil {
		return
	}
	event := events.NewLedgerEvent(events.EntityTask, taskID, userID, action)
	if err := s.events.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish task event",
			"task_id", taskID,
			"action", action,
			"error", err)
	}
}
