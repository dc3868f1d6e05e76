package notify

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the payment status change published downstream.
type Event struct {
	ID             string          `json:"event_id"`
	TransactionID  string          `json:"transaction_id"`
	PaymentID      string          `json:"payment_id,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	PlanID         string          `json:"plan_id,omitempty"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency,omitempty"`
	ObservedAt     time.Time       `json:"observed_at"`
}

// attributes are the non-empty message attributes queue-style sinks attach to each event.
func (e Event) attributes() map[string]string {
	attrs := make(map[string]string, 4)
	for k, v := range map[string]string{
		"event_id":       e.ID,
		"transaction_id": e.TransactionID,
		"status":         e.Status,
		"plan_id":        e.PlanID,
	} {
		if v != "" {
			attrs[k] = v
		}
	}
	return attrs
}
