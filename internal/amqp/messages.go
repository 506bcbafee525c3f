package amqp

import (
	"encoding/json"
	"time"
)

// LedgerEventMessage signals that the ledger changed for a given month.
// The worker fetches current data from storage, so the message carries only
// the month key and what kind of record changed.
type LedgerEventMessage struct {
	Month     string    `json:"month"`
	Entity    string    `json:"entity"`
	Timestamp time.Time `json:"timestamp"`
}

// Entities carried by ledger events.
const (
	EntityExpense     = "expense"
	EntityIncome      = "income"
	EntityCouple      = "couple"
	EntityGoal        = "goal"
	EntityGoalTx      = "goal_transaction"
	EntitySnapshotAll = "all"
)

func NewLedgerEventMessage(month, entity string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Month:     month,
		Entity:    entity,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
