package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Monthly    GoalPeriod = "monthly"
	Quarterly  GoalPeriod = "quarterly"
	HalfYearly GoalPeriod = "half_yearly"
	Yearly     GoalPeriod = "yearly"
)

const (
	GoalInProgress GoalStatus = "in_progress"
	GoalCompleted  GoalStatus = "completed"
	GoalFailed     GoalStatus = "failed"
)

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

const (
	PeriodWeek  TaskPeriod = "week"
	PeriodMonth TaskPeriod = "month"
	PeriodYear  TaskPeriod = "year"
)

type (
	TransactionType string
	GoalPeriod      string
	GoalStatus      string
	TaskStatus      string
	TaskPriority    string
	TaskPeriod      string

	Money struct {
		Cents int64
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	Transaction struct {
		ID          int64
		UserID      int64
		Type        TransactionType
		Amount      Money
		Category    string
		Description string
		Date        time.Time // transaction date, not creation time
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	SavingsGoal struct {
		ID        int64
		UserID    int64
		Name      string
		Target    Money
		Current   Money
		Period    GoalPeriod
		StartDate time.Time
		EndDate   time.Time
		Status    GoalStatus
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Task struct {
		ID          int64
		UserID      int64
		Title       string
		Description string
		Status      TaskStatus
		Priority    TaskPriority
		Importance  int // 1-4
		Urgency     int // 1-4
		TimePeriod  TaskPeriod
		DueDate     time.Time
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

var (
	// ErrNotFound covers both a genuinely missing row and a row owned by a
	// different user; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyTitle       = errors.New("empty title")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidQuadrant  = errors.New("importance and urgency must be between 1 and 4")
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrLongDescription  = errors.New("description too long")
	ErrMissingDate      = errors.New("date is required")
	ErrInvalidUsername  = errors.New("username must be 3-50 characters")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrUsernameTaken    = errors.New("username already exists")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (p GoalPeriod) Valid() bool {
	switch p {
	case Monthly, Quarterly, HalfYearly, Yearly:
		return true
	}
	return false
}

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalInProgress, GoalCompleted, GoalFailed:
		return true
	}
	return false
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (p TaskPeriod) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// ValidateUsername enforces the 3-50 character window.
func ValidateUsername(username string) error {
	n := len(strings.TrimSpace(username))
	if n < 3 || n > 50 {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword checks the minimum plaintext length. The plaintext itself
// is never stored or logged anywhere.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return ErrLongDescription
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.Target.Validate(); err != nil {
		return err
	}
	if g.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	if !g.Period.Valid() {
		return ErrInvalidPeriod
	}
	if g.StartDate.IsZero() || g.EndDate.IsZero() {
		return ErrMissingDate
	}
	if !g.EndDate.After(g.StartDate) {
		return ErrInvalidDateRange
	}
	if g.Status != "" && !g.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len(t.Description) > 500 {
		return ErrLongDescription
	}
	if t.Status != "" && !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.Priority != "" && !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if t.Importance < 1 || t.Importance > 4 || t.Urgency < 1 || t.Urgency > 4 {
		return ErrInvalidQuadrant
	}
	if t.TimePeriod != "" && !t.TimePeriod.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}
