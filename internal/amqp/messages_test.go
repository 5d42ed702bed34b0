package amqp

import (
	"strings"
	"testing"
	"time"
)

func TestLimitBreachMessageWireFields(t *testing.T) {
	msg := &LimitBreachMessage{
		Category:    "food",
		Currency:    "USD",
		Amount:      "25",
		LimitAmount: "50",
		LimitType:   "daily",
		Total:       "55",
		Message:     "WARNING: over limit",
		Timestamp:   time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Consumers match on these snake_case keys; renaming them is a breaking
	// change to the queue contract.
	for _, key := range []string{`"category"`, `"currency"`, `"amount"`, `"limit_amount"`, `"limit_type"`, `"total"`} {
		if !strings.Contains(string(body), key) {
			t.Errorf("payload %s is missing %s", body, key)
		}
	}

	decoded, err := LimitBreachMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Category != "food" || decoded.Total != "55" {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}
