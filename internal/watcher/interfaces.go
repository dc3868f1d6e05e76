package watcher

import (
	"context"

	"github.com/samvad-hq/samvad-webui-client/internal/notify"
	"github.com/samvad-hq/samvad-webui-client/pkg/payments"
)

// TransactionSource is the part of the payments client the watcher polls.
type TransactionSource interface {
	ListMyTransactions(ctx context.Context, token string, params payments.UserTransactionsParams) (*payments.TransactionsPage, error)
	QueryBkashPayment(ctx context.Context, token, paymentID string) (*payments.Transaction, error)
}

// EventPublisher delivers events and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt notify.Event) (int, error)
}

// Ledger remembers delivered statuses per transaction.
type Ledger interface {
	Seen(transactionID, status string) (bool, error)
	Mark(transactionID, status string) error
	LastStatus(transactionID string) (string, error)
}
