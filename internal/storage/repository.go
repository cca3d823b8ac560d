package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"smallledger/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Cascading deletes depend on the foreign_keys pragma, which is off by
	// default and per-connection, so it goes in the DSN.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Ping reports whether the database is reachable. Used by the readiness
// probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return core.User{}, core.ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)
	return r.UserByID(ctx, id)
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at, updated_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at, updated_at FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *SQLiteRepository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, id)
	if err != nil {
		return core.User{}, fmt.Errorf("update user password: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.User{}, err
	}
	return r.UserByID(ctx, id)
}

// DeleteUser removes the user and, via cascading foreign keys, everything
// the user owns.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "User deleted", "user_id", id)
	return nil
}

// --- transactions ---

const transactionColumns = `id, user_id, type, amount_cents, category, description, transaction_date, created_at, updated_at`

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, type, amount_cents, category, description, transaction_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, string(t.Type), t.Amount.Cents, t.Category, t.Description, t.Date.UTC())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", id,
		"user_id", t.UserID,
		"type", string(t.Type),
		"amount_cents", t.Amount.Cents,
		"category", t.Category)

	return r.TransactionByID(ctx, id, t.UserID)
}

func (r *SQLiteRepository) TransactionByID(ctx context.Context, id, userID int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row)
}

func (r *SQLiteRepository) TransactionsByUser(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = ? ORDER BY transaction_date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET type = ?, amount_cents = ?, category = ?, description = ?, transaction_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		string(t.Type), t.Amount.Cents, t.Category, t.Description, t.Date.UTC(), t.ID, t.UserID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.Transaction{}, err
	}
	return r.TransactionByID(ctx, t.ID, t.UserID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// --- savings goals ---

const goalColumns = `id, user_id, name, target_cents, current_cents, period, start_date, end_date, status, created_at, updated_at`

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (user_id, name, target_cents, current_cents, period, start_date, end_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.Target.Cents, g.Current.Cents, string(g.Period),
		g.StartDate.UTC(), g.EndDate.UTC(), string(g.Status))
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("insert savings goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("savings goal insert id: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal created",
		"goal_id", id,
		"user_id", g.UserID,
		"target_cents", g.Target.Cents,
		"period", string(g.Period))

	return r.GoalByID(ctx, id, g.UserID)
}

func (r *SQLiteRepository) GoalByID(ctx context.Context, id, userID int64) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
	return scanGoal(row)
}

func (r *SQLiteRepository) GoalsByUser(ctx context.Context, userID int64) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM savings_goals WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals
		 SET name = ?, target_cents = ?, current_cents = ?, period = ?, start_date = ?, end_date = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		g.Name, g.Target.Cents, g.Current.Cents, string(g.Period),
		g.StartDate.UTC(), g.EndDate.UTC(), string(g.Status), g.ID, g.UserID)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("update savings goal: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.SavingsGoal{}, err
	}
	return r.GoalByID(ctx, g.ID, g.UserID)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	return requireRow(res)
}

// --- tasks ---

const taskColumns = `id, user_id, title, description, status, priority, importance, urgency, time_period, due_date, created_at, updated_at`

func (r *SQLiteRepository) CreateTask(ctx context.Context, t core.Task) (core.Task, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (user_id, title, description, status, priority, importance, urgency, time_period, due_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Title, t.Description, string(t.Status), string(t.Priority),
		t.Importance, t.Urgency, string(t.TimePeriod), nullableTime(t.DueDate))
	if err != nil {
		return core.Task{}, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Task{}, fmt.Errorf("task insert id: %w", err)
	}

	slog.InfoContext(ctx, "Task created", "task_id", id, "user_id", t.UserID, "title", t.Title)
	return r.TaskByID(ctx, id, t.UserID)
}

func (r *SQLiteRepository) TaskByID(ctx context.Context, id, userID int64) (core.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	return scanTask(row)
}

func (r *SQLiteRepository) TasksByUser(ctx context.Context, userID int64) ([]core.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *SQLiteRepository) TasksByPeriod(ctx context.Context, userID int64, period core.TaskPeriod) ([]core.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = ? AND time_period = ? ORDER BY created_at DESC, id DESC`,
		userID, string(period))
	if err != nil {
		return nil, fmt.Errorf("list tasks by period: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, t core.Task) (core.Task, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = ?, description = ?, status = ?, priority = ?, importance = ?, urgency = ?, time_period = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, string(t.Status), string(t.Priority),
		t.Importance, t.Urgency, string(t.TimePeriod), nullableTime(t.DueDate), t.ID, t.UserID)
	if err != nil {
		return core.Task{}, fmt.Errorf("update task: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.Task{}, err
	}
	return r.TaskByID(ctx, t.ID, t.UserID)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireRow(res)
}

// --- audit log ---

// AuditEntry is one row of the change history written by the event worker.
type AuditEntry struct {
	ID         int64
	Entity     string
	EntityID   int64
	UserID     int64
	Action     string
	OccurredAt time.Time
	RecordedAt time.Time
}

func (r *SQLiteRepository) AppendAuditEntry(ctx context.Context, e AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (entity, entity_id, user_id, action, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Entity, e.EntityID, e.UserID, e.Action, e.OccurredAt.UTC())
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RecentAuditEntries(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entity, entity_id, user_id, action, occurred_at, recorded_at
		 FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &e.UserID, &e.Action,
			&e.OccurredAt, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t   core.Transaction
		typ string
	)
	err := row.Scan(&t.ID, &t.UserID, &typ, &t.Amount.Cents, &t.Category,
		&t.Description, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	return t, nil
}

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g              core.SavingsGoal
		period, status string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Target.Cents, &g.Current.Cents,
		&period, &g.StartDate, &g.EndDate, &status, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, core.ErrNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("scan savings goal: %w", err)
	}
	g.Period = core.GoalPeriod(period)
	g.Status = core.GoalStatus(status)
	return g, nil
}

func scanTask(row rowScanner) (core.Task, error) {
	var (
		t                        core.Task
		status, priority, period string
		due                      sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &status, &priority,
		&t.Importance, &t.Urgency, &period, &due, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Task{}, core.ErrNotFound
	}
	if err != nil {
		return core.Task{}, fmt.Errorf("scan task: %w", err)
	}
	t.Status = core.TaskStatus(status)
	t.Priority = core.TaskPriority(priority)
	t.TimePeriod = core.TaskPeriod(period)
	if due.Valid {
		t.DueDate = due.Time
	}
	return t, nil
}

func collectTasks(rows *sql.Rows) ([]core.Task, error) {
	var out []core.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// requireRow turns a zero-row write into core.ErrNotFound so updates and
// deletes scoped by (id, user_id) behave like reads.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
