package events

import (
	"testing"
	"time"
)

func TestNewLedgerEvent(t *testing.T) {
	e := NewLedgerEvent(7, "transaction", 42, ActionCreate, 25000)

	if e.EventID == "" {
		t.Error("NewLedgerEvent() EventID should not be empty")
	}
	if e.UserID != 7 {
		t.Errorf("NewLedgerEvent() UserID = %v, want 7", e.UserID)
	}
	if e.Entity != "transaction" {
		t.Errorf("NewLedgerEvent() Entity = %v, want transaction", e.Entity)
	}
	if e.Action != ActionCreate {
		t.Errorf("NewLedgerEvent() Action = %v, want %v", e.Action, ActionCreate)
	}
	if e.OccurredAt.IsZero() {
		t.Error("NewLedgerEvent() OccurredAt should not be zero")
	}
	if time.Since(e.OccurredAt) > time.Second {
		t.Error("NewLedgerEvent() OccurredAt should be recent")
	}
}

func TestLedgerEvent_JSON(t *testing.T) {
	occurred := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	e := &LedgerEvent{
		EventID:    "ev-1",
		UserID:     3,
		Entity:     "asset",
		EntityID:   9,
		Action:     ActionBuy,
		Amount:     1500000,
		OccurredAt: occurred,
	}

	body, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := LedgerEventFromJSON(body)
	if err != nil {
		t.Fatalf("LedgerEventFromJSON() error = %v", err)
	}

	if parsed.EventID != e.EventID || parsed.UserID != e.UserID || parsed.EntityID != e.EntityID {
		t.Errorf("parsed event = %+v, want %+v", parsed, e)
	}
	if parsed.Action != e.Action || parsed.Amount != e.Amount {
		t.Errorf("parsed event = %+v, want %+v", parsed, e)
	}
	if !parsed.OccurredAt.Equal(e.OccurredAt) {
		t.Errorf("parsed OccurredAt = %v, want %v", parsed.OccurredAt, e.OccurredAt)
	}
}

func TestLedgerEventFromJSON_Invalid(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte(`{"userId": "nope"}`)); err == nil {
		t.Error("LedgerEventFromJSON() should fail with invalid JSON")
	}
}
