package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetLine is the status of one budget category at publish time.
type BudgetLine struct {
	Category  string          `json:"category"`
	Budgeted  decimal.Decimal `json:"budgeted"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

// ChangeMessage announces one store change for a user, together with the
// figures a notifier needs without querying the store back.
type ChangeMessage struct {
	UserID    string          `json:"userId"`
	Kind      string          `json:"kind"`
	Op        string          `json:"op"`
	EntityID  string          `json:"entityId,omitempty"`
	NewID     string          `json:"newId,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	Budgets   []BudgetLine    `json:"budgets,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewChangeMessage stamps the message with the current time.
func NewChangeMessage(userID, kind, op, entityID string) *ChangeMessage {
	return &ChangeMessage{
		UserID:    userID,
		Kind:      kind,
		Op:        op,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
