package payments

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Transaction is a stored payment attempt.
type Transaction struct {
	ID                    string              `json:"id"`
	UserID                string              `json:"user_id"`
	PlanID                *string             `json:"plan_id,omitempty"`
	Amount                decimal.NullDecimal `json:"amount"`
	Currency              *string             `json:"currency,omitempty"`
	Status                *string             `json:"status,omitempty"`
	PaymentID             *string             `json:"payment_id,omitempty"`
	TrxID                 *string             `json:"trx_id,omitempty"`
	MerchantInvoiceNumber *string             `json:"merchant_invoice_number,omitempty"`
	InvoiceNumber         *string             `json:"invoice_number,omitempty"`
	RawResponse           map[string]any      `json:"raw_response,omitempty"`
	CreatedAt             int64               `json:"created_at"`
	UpdatedAt             int64               `json:"updated_at"`
}

// StatusValue returns the status or "" when unset.
func (t Transaction) StatusValue() string { return deref(t.Status) }

// TransactionsPage is the paged envelope returned by transaction listings.
type TransactionsPage struct {
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Data     []Transaction `json:"data"`
}

// PaymentResponse is returned by the bKash create and execute calls. Unknown fields are
// kept in Extra.
type PaymentResponse struct {
	Status    string                     `json:"status"`
	PaymentID *string                    `json:"payment_id,omitempty"`
	BkashURL  *string                    `json:"bkash_url,omitempty"`
	TrxID     *string                    `json:"trx_id,omitempty"`
	Message   *string                    `json:"message,omitempty"`
	Extra     map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps fields the backend adds beyond the documented ones.
func (r *PaymentResponse) UnmarshalJSON(data []byte) error {
	type plain PaymentResponse
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range []string{"status", "payment_id", "bkash_url", "trx_id", "message"} {
		delete(all, k)
	}
	if len(all) > 0 {
		p.Extra = all
	}
	*r = PaymentResponse(p)
	return nil
}

// CreatePaymentRequest starts a bKash checkout.
type CreatePaymentRequest struct {
	PlanID                string          `json:"plan_id,omitempty"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency,omitempty"`
	PayerReference        string          `json:"payer_reference,omitempty"`
	MerchantInvoiceNumber string          `json:"merchant_invoice_number,omitempty"`
	Intent                string          `json:"intent,omitempty"`
	Mode                  string          `json:"mode,omitempty"`
}

const (
	DefaultCurrency = "BDT"
	DefaultIntent   = "sale"
	DefaultMode     = "0011"
)

// withDefaults fills currency, intent and mode the way the backend would.
func (r CreatePaymentRequest) withDefaults() CreatePaymentRequest {
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	if r.Intent == "" {
		r.Intent = DefaultIntent
	}
	if r.Mode == "" {
		r.Mode = DefaultMode
	}
	return r
}

// MarshalJSON sends the amount as a JSON number.
func (r CreatePaymentRequest) MarshalJSON() ([]byte, error) {
	type plain CreatePaymentRequest
	return json.Marshal(struct {
		plain
		Amount json.Number `json:"amount"`
	}{plain(r), json.Number(r.Amount.String())})
}

// ExecutePaymentRequest finalizes a checkout after the payer approved it.
type ExecutePaymentRequest struct {
	PaymentID string `json:"payment_id"`
}

// AdminTransactionsParams filters admin transaction listings and metrics.
type AdminTransactionsParams struct {
	UserID                string
	Status                string
	PaymentID             string
	TrxID                 string
	MerchantInvoiceNumber string
	UserQuery             string
	StartDate             *int64
	EndDate               *int64
	Page                  *int
	PageSize              *int
}

// UserTransactionsParams filters the caller's own transactions.
type UserTransactionsParams struct {
	Status                string
	PaymentID             string
	TrxID                 string
	MerchantInvoiceNumber string
	StartDate             *int64
	EndDate               *int64
	Page                  *int
	PageSize              *int
}

// ExportParams filters the CSV export (no paging).
type ExportParams struct {
	UserID                string
	Status                string
	PaymentID             string
	TrxID                 string
	MerchantInvoiceNumber string
	UserQuery             string
	StartDate             *int64
	EndDate               *int64
}

// KPIParams filters the admin KPI rollup.
type KPIParams struct {
	Status    string
	StartDate *int64
	EndDate   *int64
}

// UsersSummaryParams filters the per-user payment summary.
type UsersSummaryParams struct {
	Status    string
	StartDate *int64
	EndDate   *int64
	// UserIDs is a comma separated list.
	UserIDs string
}

// DateRange bounds summaries by unix timestamps.
type DateRange struct {
	StartDate *int64
	EndDate   *int64
}

// Subscription describes the caller's current plan.
type Subscription struct {
	HasSubscription       bool                `json:"has_subscription"`
	PlanID                *string             `json:"plan_id,omitempty"`
	Status                *string             `json:"status,omitempty"`
	StartDate             *int64              `json:"start_date,omitempty"`
	RenewalDate           *int64              `json:"renewal_date,omitempty"`
	ExpiryDate            *int64              `json:"expiry_date,omitempty"`
	LatestTransactionID   *string             `json:"latest_transaction_id,omitempty"`
	MerchantInvoiceNumber *string             `json:"merchant_invoice_number,omitempty"`
	Currency              *string             `json:"currency,omitempty"`
	Amount                decimal.NullDecimal `json:"amount"`
}

// PricingPlan is a purchasable plan as served by the backend.
type PricingPlan struct {
	PlanID   string          `json:"plan_id"`
	Name     string          `json:"name"`
	Features string          `json:"features"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Period   string          `json:"period"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
