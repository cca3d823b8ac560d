package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"smallledger/internal/core"
	"smallledger/internal/events"
)

// fakeStore keeps everything in maps and implements LedgerStore, GoalStore
// and TaskStore.
type fakeStore struct {
	nextID       int64
	transactions map[int64]core.Transaction
	goals        map[int64]core.SavingsGoal
	tasks        map[int64]core.Task
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		transactions: make(map[int64]core.Transaction),
		goals:        make(map[int64]core.SavingsGoal),
		tasks:        make(map[int64]core.Task),
	}
}

func (f *fakeStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	f.nextID++
	t.ID = f.nextID
	f.transactions[t.ID] = t
	return t, nil
}

func (f *fakeStore) TransactionByID(_ context.Context, id, userID int64) (core.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) TransactionsByUser(_ context.Context, userID int64) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	existing, ok := f.transactions[t.ID]
	if !ok || existing.UserID != t.UserID {
		return core.Transaction{}, core.ErrNotFound
	}
	f.transactions[t.ID] = t
	return t, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, id, userID int64) error {
	t, ok := f.transactions[id]
	if !ok || t.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.transactions, id)
	return nil
}

func (f *fakeStore) CreateGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	f.nextID++
	g.ID = f.nextID
	f.goals[g.ID] = g
	return g, nil
}

func (f *fakeStore) GoalByID(_ context.Context, id, userID int64) (core.SavingsGoal, error) {
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return core.SavingsGoal{}, core.ErrNotFound
	}
	return g, nil
}

func (f *fakeStore) GoalsByUser(_ context.Context, userID int64) ([]core.SavingsGoal, error) {
	var out []core.SavingsGoal
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	existing, ok := f.goals[g.ID]
	if !ok || existing.UserID != g.UserID {
		return core.SavingsGoal{}, core.ErrNotFound
	}
	f.goals[g.ID] = g
	return g, nil
}

func (f *fakeStore) DeleteGoal(_ context.Context, id, userID int64) error {
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.goals, id)
	return nil
}

func (f *fakeStore) CreateTask(_ context.Context, t core.Task) (core.Task, error) {
	f.nextID++
	t.ID = f.nextID
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeStore) TaskByID(_ context.Context, id, userID int64) (core.Task, error) {
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return core.Task{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) TasksByUser(_ context.Context, userID int64) ([]core.Task, error) {
	var out []core.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) TasksByPeriod(_ context.Context, userID int64, period core.TaskPeriod) ([]core.Task, error) {
	var out []core.Task
	for _, t := range f.tasks {
		if t.UserID == userID && t.TimePeriod == period {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateTask(_ context.Context, t core.Task) (core.Task, error) {
	existing, ok := f.tasks[t.ID]
	if !ok || existing.UserID != t.UserID {
		return core.Task{}, core.ErrNotFound
	}
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeStore) DeleteTask(_ context.Context, id, userID int64) error {
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return core.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

// recordingPublisher captures events; failing makes every publish error.
type recordingPublisher struct {
	published []*events.LedgerEvent
	failing   bool
}

func (p *recordingPublisher) Publish(_ context.Context, event *events.LedgerEvent) error {
	if p.failing {
		return errors.New("broker down")
	}
	p.published = append(p.published, event)
	return nil
}

func validTransaction(userID int64) core.Transaction {
	return core.Transaction{
		UserID:   userID,
		Type:     core.Income,
		Amount:   core.Money{Cents: 100000},
		Category: "salary",
		Date:     time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func validGoal(userID int64) core.SavingsGoal {
	return core.SavingsGoal{
		UserID:    userID,
		Name:      "vacation",
		Target:    core.Money{Cents: 100000},
		Current:   core.Money{Cents: 0},
		Period:    core.Monthly,
		StartDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestLedgerService_CreateValidates(t *testing.T) {
	svc := NewLedgerService(newFakeStore(), nil)

	tx := validTransaction(1)
	tx.Type = "transfer"
	if _, err := svc.Create(context.Background(), tx); !errors.Is(err, core.ErrInvalidType) {
		t.Errorf("Create with bad type: error = %v, want ErrInvalidType", err)
	}

	tx = validTransaction(1)
	tx.Amount = core.Money{Cents: 0}
	if _, err := svc.Create(context.Background(), tx); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("Create with zero amount: error = %v, want ErrInvalidAmount", err)
	}
}

func TestLedgerService_CreatePublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewLedgerService(newFakeStore(), pub)

	created, err := svc.Create(context.Background(), validTransaction(1))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.published))
	}
	event := pub.published[0]
	if event.Entity != events.EntityTransaction || event.Action != events.ActionCreated {
		t.Errorf("event = %s/%s, want transaction/created", event.Entity, event.Action)
	}
	if event.EntityID != created.ID {
		t.Errorf("event entity id = %d, want %d", event.EntityID, created.ID)
	}
}

func TestLedgerService_BrokerFailureIsNonFatal(t *testing.T) {
	svc := NewLedgerService(newFakeStore(), &recordingPublisher{failing: true})

	if _, err := svc.Create(context.Background(), validTransaction(1)); err != nil {
		t.Errorf("Create() error = %v, want nil despite broker failure", err)
	}
}

func TestLedgerService_Statistics(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, nil)
	ctx := context.Background()

	mk := func(typ core.TransactionType, cents int64, category string) {
		tx := validTransaction(1)
		tx.Type = typ
		tx.Amount = core.Money{Cents: cents}
		tx.Category = category
		if _, err := svc.Create(ctx, tx); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	mk(core.Income, 100000, "salary")
	mk(core.Income, 50000, "freelance")
	mk(core.Expense, 30000, "rent")
	mk(core.Expense, 20000, "food")

	stats, err := svc.Statistics(ctx, 1)
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}

	if stats.TotalIncome.Cents != 150000 {
		t.Errorf("TotalIncome = %d, want 150000", stats.TotalIncome.Cents)
	}
	if stats.TotalExpense.Cents != 50000 {
		t.Errorf("TotalExpense = %d, want 50000", stats.TotalExpense.Cents)
	}
	if stats.Balance.Cents != 100000 {
		t.Errorf("Balance = %d, want 100000", stats.Balance.Cents)
	}
	if got := stats.ByCategory["income-salary"].Percentage; got != 66.67 {
		t.Errorf("salary percentage = %v, want 66.67", got)
	}
	if got := stats.ByCategory["expense-rent"].Percentage; got != 60.0 {
		t.Errorf("rent percentage = %v, want 60", got)
	}
}

func TestLedgerService_StatisticsScopedToUser(t *testing.T) {
	store := newFakeStore()
	svc := NewLedgerService(store, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validTransaction(1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	other := validTransaction(2)
	other.Amount = core.Money{Cents: 999999}
	if _, err := svc.Create(ctx, other); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	stats, err := svc.Statistics(ctx, 1)
	if err != nil {
		t.Fatalf("Statistics() error = %v", err)
	}
	if stats.TotalIncome.Cents != 100000 {
		t.Errorf("TotalIncome = %d, want only user 1's income", stats.TotalIncome.Cents)
	}
}

func TestGoalService_CreateDerivesStatus(t *testing.T) {
	now := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	svc := NewGoalService(newFakeStore(), nil).WithClock(func() time.Time { return now })

	created, err := svc.Create(context.Background(), validGoal(1))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Status != core.GoalInProgress {
		t.Errorf("Status = %v, want in_progress", created.Status)
	}
}

func TestGoalService_UpdateAmountTransitions(t *testing.T) {
	now := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	clock := &now
	svc := NewGoalService(newFakeStore(), nil).WithClock(func() time.Time { return *clock })
	ctx := context.Background()

	goal, err := svc.Create(ctx, validGoal(1))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Reaching the target completes the goal.
	updated, err := svc.UpdateAmount(ctx, goal.ID, 1, core.Money{Cents: 100000})
	if err != nil {
		t.Fatalf("UpdateAmount() error = %v", err)
	}
	if updated.Status != core.GoalCompleted {
		t.Errorf("Status = %v, want completed", updated.Status)
	}

	// Lowering it before the deadline reopens the goal.
	updated, err = svc.UpdateAmount(ctx, goal.ID, 1, core.Money{Cents: 50000})
	if err != nil {
		t.Fatalf("UpdateAmount() error = %v", err)
	}
	if updated.Status != core.GoalInProgress {
		t.Errorf("Status = %v, want in_progress after lowering amount", updated.Status)
	}

	// Past the deadline an unmet goal fails.
	past := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	clock = &past
	updated, err = svc.UpdateAmount(ctx, goal.ID, 1, core.Money{Cents: 60000})
	if err != nil {
		t.Fatalf("UpdateAmount() error = %v", err)
	}
	if updated.Status != core.GoalFailed {
		t.Errorf("Status = %v, want failed past deadline", updated.Status)
	}

	// But reaching the target past the deadline still completes.
	updated, err = svc.UpdateAmount(ctx, goal.ID, 1, core.Money{Cents: 120000})
	if err != nil {
		t.Fatalf("UpdateAmount() error = %v", err)
	}
	if updated.Status != core.GoalCompleted {
		t.Errorf("Status = %v, want completed even past deadline", updated.Status)
	}
}

func TestGoalService_UpdateAmountRejectsNegative(t *testing.T) {
	svc := NewGoalService(newFakeStore(), nil)

	_, err := svc.UpdateAmount(context.Background(), 1, 1, core.Money{Cents: -100})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("UpdateAmount(-1.00) error = %v, want ErrInvalidAmount", err)
	}
}

func TestGoalService_Progress(t *testing.T) {
	now := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)
	svc := NewGoalService(newFakeStore(), nil).WithClock(func() time.Time { return now })
	ctx := context.Background()

	goal, err := svc.Create(ctx, validGoal(1))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.UpdateAmount(ctx, goal.ID, 1, core.Money{Cents: 50000}); err != nil {
		t.Fatalf("UpdateAmount() error = %v", err)
	}

	progress, err := svc.Progress(ctx, goal.ID, 1)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if progress.Percentage != 50.0 {
		t.Errorf("Percentage = %v, want 50", progress.Percentage)
	}
	if progress.DaysLeft != 30 {
		t.Errorf("DaysLeft = %v, want 30", progress.DaysLeft)
	}
}

func TestGoalService_ProgressNotOwned(t *testing.T) {
	svc := NewGoalService(newFakeStore(), nil)
	ctx := context.Background()

	goal, err := svc.Create(ctx, validGoal(1))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Progress(ctx, goal.ID, 2); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Progress for another user: error = %v, want ErrNotFound", err)
	}
}

func TestTaskService_CreateAppliesDefaults(t *testing.T) {
	svc := NewTaskService(newFakeStore(), nil)

	created, err := svc.Create(context.Background(), core.Task{UserID: 1, Title: "write report"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.Status != core.TaskPending {
		t.Errorf("Status = %v, want pending", created.Status)
	}
	if created.Priority != core.PriorityMedium {
		t.Errorf("Priority = %v, want medium", created.Priority)
	}
	if created.Importance != 2 || created.Urgency != 2 {
		t.Errorf("Importance/Urgency = %d/%d, want 2/2", created.Importance, created.Urgency)
	}
	if created.TimePeriod != core.PeriodWeek {
		t.Errorf("TimePeriod = %v, want week", created.TimePeriod)
	}
}

func TestTaskService_CreateRejectsEmptyTitle(t *testing.T) {
	svc := NewTaskService(newFakeStore(), nil)

	_, err := svc.Create(context.Background(), core.Task{UserID: 1, Title: "   "})
	if !errors.Is(err, core.ErrEmptyTitle) {
		t.Errorf("Create() error = %v, want ErrEmptyTitle", err)
	}
}

func TestTaskService_Quadrant(t *testing.T) {
	svc := NewTaskService(newFakeStore(), nil)
	ctx := context.Background()

	mk := func(title string, importance, urgency int) {
		_, err := svc.Create(ctx, core.Task{
			UserID:     1,
			Title:      title,
			Importance: importance,
			Urgency:    urgency,
		})
		if err != nil {
			t.Fatalf("Create(%s) error = %v", title, err)
		}
	}
	mk("crisis", 4, 4)
	mk("planning", 4, 1)
	mk("interruptions", 1, 4)
	mk("distractions", 1, 1)

	view, err := svc.Quadrant(ctx, 1)
	if err != nil {
		t.Fatalf("Quadrant() error = %v", err)
	}

	if len(view.UrgentImportant) != 1 || view.UrgentImportant[0].Title != "crisis" {
		t.Errorf("UrgentImportant = %v, want [crisis]", view.UrgentImportant)
	}
	if len(view.NotUrgentImportant) != 1 || view.NotUrgentImportant[0].Title != "planning" {
		t.Errorf("NotUrgentImportant = %v, want [planning]", view.NotUrgentImportant)
	}
	if len(view.UrgentNotImportant) != 1 || view.UrgentNotImportant[0].Title != "interruptions" {
		t.Errorf("UrgentNotImportant = %v, want [interruptions]", view.UrgentNotImportant)
	}
	if len(view.NotUrgentNotImportant) != 1 || view.NotUrgentNotImportant[0].Title != "distractions" {
		t.Errorf("NotUrgentNotImportant = %v, want [distractions]", view.NotUrgentNotImportant)
	}
}

func TestTaskService_UpdateStatus(t *testing.T) {
	svc := NewTaskService(newFakeStore(), nil)
	ctx := context.Background()

	task, err := svc.Create(ctx, core.Task{UserID: 1, Title: "ship release"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, task.ID, 1, core.TaskCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if updated.Status != core.TaskCompleted {
		t.Errorf("Status = %v, want completed", updated.Status)
	}
	if updated.Title != "ship release" {
		t.Errorf("Title changed to %q, status update must not touch other fields", updated.Title)
	}

	if _, err := svc.UpdateStatus(ctx, task.ID, 1, "archived"); !errors.Is(err, core.ErrInvalidStatus) {
		t.Errorf("UpdateStatus(archived) error = %v, want ErrInvalidStatus", err)
	}

	if _, err := svc.UpdateStatus(ctx, task.ID, 2, core.TaskPending); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateStatus by other user: error = %v, want ErrNotFound", err)
	}
}

func TestTaskService_ListByPeriodValidatesPeriod(t *testing.T) {
	svc := NewTaskService(newFakeStore(), nil)

	if _, err := svc.ListByPeriod(context.Background(), 1, "decade"); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("ListByPeriod(decade) error = %v, want ErrInvalidPeriod", err)
	}
}
