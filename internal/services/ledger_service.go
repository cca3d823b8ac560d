package services

import (
	"context"
	"fmt"
	"log/slog"

	"smallledger/internal/core"
	"smallledger/internal/events"
)

// LedgerStore is the transaction persistence the service depends on.
type LedgerStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	TransactionByID(ctx context.Context, id, userID int64) (core.Transaction, error)
	TransactionsByUser(ctx context.Context, userID int64) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id, userID int64) error
}

// EventPublisher pushes change notifications to the message broker. A nil
// *events.Client satisfies it as a no-op.
type EventPublisher interface {
	Publish(ctx context.Context, event *events.LedgerEvent) error
}

// LedgerService orchestrates transaction operations across SQLite and AMQP.
type LedgerService struct {
	store  LedgerStore
	events EventPublisher
}

func NewLedgerService(store LedgerStore, publisher EventPublisher) *LedgerService {
	return &LedgerService{store: store, events: publisher}
}

func (s *LedgerService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, events.EntityTransaction, created.ID, created.UserID, events.ActionCreated)
	return created, nil
}

func (s *LedgerService) Get(ctx context.Context, id, userID int64) (core.Transaction, error) {
	return s.store.TransactionByID(ctx, id, userID)
}

func (s *LedgerService) List(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return s.store.TransactionsByUser(ctx, userID)
}

func (s *LedgerService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, events.EntityTransaction, updated.ID, updated.UserID, events.ActionUpdated)
	return updated, nil
}

func (s *LedgerService) Delete(ctx context.Context, id, userID int64) error {
	if err := s.store.DeleteTransaction(ctx, id, userID); err != nil {
		return err
	}

	s.publish(ctx, events.EntityTransaction, id, userID, events.ActionDeleted)
	return nil
}

// Statistics aggregates the user's full transaction history into income and
// expense totals with per-category breakdowns.
func (s *LedgerService) Statistics(ctx context.Context, userID int64) (core.Statistics, error) {
	transactions, err := s.store.TransactionsByUser(ctx, userID)
	if err != nil {
		return core.Statistics{}, fmt.Errorf("load transactions: %w", err)
	}
	return core.ComputeStatistics(transactions), nil
}

// publish sends the event asynchronously from the caller's point of view. A
// broker failure is logged and swallowed; the row is already committed.
func (s *LedgerService) publish(ctx context.Context, entity string, entityID, userID int64, action string) {
	if s.events == nil {
		return
	}
	event := events.NewLedgerEvent(entity, entityID, userID, action)
	if err := s.events.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"entity", entity,
			"entity_id", entityID,
			"action", action,
			"error", err)
	}
}
