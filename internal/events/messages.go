package events

import (
	"encoding/json"
	"time"
)

const (
	EntityTransaction = "transaction"
	EntityGoal        = "savings_goal"
	EntityTask        = "task"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LedgerEvent is a lightweight notification that an entity changed. It carries
// only identifiers; consumers fetch the full row themselves.
type LedgerEvent struct {
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(entity string, entityID, userID int64, action string) *LedgerEvent {
	return &LedgerEvent{
		Entity:    entity,
		EntityID:  entityID,
		UserID:    userID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
