package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Ledger event actions.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionTransfer = "transfer"
	ActionBuy      = "buy"
	ActionSell     = "sell"
)

// LedgerEvent describes one completed mutation of a user's ledger.
// Consumers fetch full records from the database; the event carries only
// enough to identify and filter.
type LedgerEvent struct {
	EventID    string    `json:"eventId"`
	UserID     int64     `json:"userId"`
	Entity     string    `json:"entity"`
	EntityID   int64     `json:"entityId"`
	Action     string    `json:"action"`
	Amount     int64     `json:"amount"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewLedgerEvent stamps a fresh event id and timestamp.
func NewLedgerEvent(userID int64, entity string, entityID int64, action string, amount int64) *LedgerEvent {
	return &LedgerEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Entity:     entity,
		EntityID:   entityID,
		Action:     action,
		Amount:     amount,
		OccurredAt: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
