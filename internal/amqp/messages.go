package amqp

import (
	"encoding/json"
	"time"
)

// LimitBreachMessage notifies downstream consumers that a recorded expense
// pushed a category past its configured limit. Amounts travel as decimal
// strings; the currency is never converted.
type LimitBreachMessage struct {
	Category    string    `json:"category"`
	Currency    string    `json:"currency"`
	Amount      string    `json:"amount"`
	LimitAmount string    `json:"limit_amount"`
	LimitType   string    `json:"limit_type"`
	Total       string    `json:"total"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

func (m *LimitBreachMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LimitBreachMessageFromJSON(data []byte) (*LimitBreachMessage, error) {
	var msg LimitBreachMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
