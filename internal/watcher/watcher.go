// Package watcher polls payment transactions and publishes status changes.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-webui-client/internal/logger"
	"github.com/samvad-hq/samvad-webui-client/internal/notify"
	"github.com/samvad-hq/samvad-webui-client/internal/storage"
	"github.com/samvad-hq/samvad-webui-client/pkg/payments"
)

// Options selects what a pass looks at.
type Options struct {
	Token string
	// PaymentIDs switches the watcher from listing to querying these payments.
	PaymentIDs []string
	Status     string
	MaxPages   int
	PageSize   int
}

// Result summarizes one pass.
type Result struct {
	Scanned   int
	Published int
	Skipped   int
}

// Service runs watch passes.
type Service struct {
	source    TransactionSource
	publisher EventPublisher
	ledger    Ledger
	log       logger.Logger
	opts      Options
	now       func() time.Time

	mu   sync.Mutex
	last map[string]string
}

// NewService wires a watcher. A nil ledger publishes every observed status.
func NewService(src TransactionSource, pub EventPublisher, ledger Ledger, log logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	return &Service{
		source:    src,
		publisher: pub,
		ledger:    ledger,
		log:       log,
		opts:      opts,
		now:       time.Now,
		last:      make(map[string]string),
	}
}

// RunOnce performs a single pass: collect, drop delivered statuses, publish, mark.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	if s == nil || s.source == nil || s.publisher == nil {
		return Result{}, fmt.Errorf("watcher service is not initialized")
	}

	txs, collectErr := s.collect(ctx)
	res := Result{Scanned: len(txs)}

	fresh := s.filterNew(txs)
	res.Skipped = len(txs) - len(fresh)

	var errs []error
	if collectErr != nil {
		errs = append(errs, collectErr)
	}
	for _, tx := range fresh {
		if ctx.Err() != nil {
			break
		}
		if err := s.publish(ctx, tx); err != nil {
			errs = append(errs, err)
			continue
		}
		res.Published++
	}

	s.log.InfoObj("watch pass completed", "watch_result", map[string]any{
		"scanned":   res.Scanned,
		"published": res.Published,
		"skipped":   res.Skipped,
		"errors":    len(errs),
	})
	return res, errors.Join(errs...)
}

func (s *Service) collect(ctx context.Context) ([]payments.Transaction, error) {
	if len(s.opts.PaymentIDs) > 0 {
		return s.queryPayments(ctx)
	}
	return s.listPages(ctx)
}

func (s *Service) listPages(ctx context.Context) ([]payments.Transaction, error) {
	var out []payments.Transaction
	pageSize := s.opts.PageSize
	for page := 1; page <= s.opts.MaxPages; page++ {
		if ctx.Err() != nil {
			return out, nil
		}
		p, size := page, pageSize
		resp, err := s.source.ListMyTransactions(ctx, s.opts.Token, payments.UserTransactionsParams{
			Status:   s.opts.Status,
			Page:     &p,
			PageSize: &size,
		})
		if err != nil {
			return out, fmt.Errorf("list transactions page %d: %w", page, err)
		}
		if resp == nil || len(resp.Data) == 0 {
			break
		}
		out = append(out, resp.Data...)
		if resp.Total > 0 && page*pageSize >= resp.Total {
			break
		}
		if len(resp.Data) < pageSize {
			break
		}
	}
	return out, nil
}

func (s *Service) queryPayments(ctx context.Context) ([]payments.Transaction, error) {
	var (
		out  []payments.Transaction
		errs []error
	)
	for _, id := range s.opts.PaymentIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		tx, err := s.source.QueryBkashPayment(ctx, s.opts.Token, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("query payment %s: %w", id, err))
			continue
		}
		if tx == nil {
			continue
		}
		out = append(out, *tx)
	}
	return out, errors.Join(errs...)
}

// filterNew keeps transactions whose current status has not been delivered,
// once per transaction and status even when pages overlap.
// Ledger lookup errors keep the transaction.
func (s *Service) filterNew(txs []payments.Transaction) []payments.Transaction {
	out := make([]payments.Transaction, 0, len(txs))
	pass := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		status := tx.StatusValue()
		if tx.ID == "" || status == "" {
			continue
		}
		key := storage.DeliveryKey(tx.ID, status)
		if _, dup := pass[key]; dup {
			continue
		}
		pass[key] = struct{}{}

		if s.ledger == nil {
			out = append(out, tx)
			continue
		}
		seen, err := s.ledger.Seen(tx.ID, status)
		if err != nil {
			s.log.WarnObj("ledger lookup failed", "ledger_error", map[string]any{
				"transaction_id": tx.ID,
				"error":          err.Error(),
			})
			out = append(out, tx)
			continue
		}
		if seen {
			s.remember(tx.ID, status)
			continue
		}
		out = append(out, tx)
	}
	return out
}

func (s *Service) publish(ctx context.Context, tx payments.Transaction) error {
	evt := s.eventFor(tx)
	delivered, err := s.publisher.Publish(ctx, evt)
	if err != nil {
		s.log.ErrorObj("event publish failed", "publish_error", map[string]any{
			"transaction_id": tx.ID,
			"delivered":      delivered,
			"error":          err.Error(),
		})
		if delivered == 0 {
			return fmt.Errorf("publish transaction %s: %w", tx.ID, err)
		}
	}

	s.remember(tx.ID, evt.Status)
	if s.ledger != nil {
		if err := s.ledger.Mark(tx.ID, evt.Status); err != nil {
			return fmt.Errorf("mark transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}

// EventFor converts a transaction into the published event shape. Each call gets a new
// event id that sinks can use for idempotency.
func EventFor(tx payments.Transaction, observed time.Time) notify.Event {
	evt := notify.Event{
		ID:            uuid.NewString(),
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Status:        strings.ToLower(tx.StatusValue()),
		ObservedAt:    observed.UTC(),
	}
	if tx.PaymentID != nil {
		evt.PaymentID = *tx.PaymentID
	}
	if tx.PlanID != nil {
		evt.PlanID = *tx.PlanID
	}
	if tx.Currency != nil {
		evt.Currency = *tx.Currency
	}
	if tx.Amount.Valid {
		evt.Amount = tx.Amount.Decimal
	}
	return evt
}

// eventFor fills PreviousStatus from the ledger, falling back to what this
// process has seen when the ledger has nothing on record.
func (s *Service) eventFor(tx payments.Transaction) notify.Event {
	evt := EventFor(tx, s.now())
	if s.ledger != nil {
		prev, err := s.ledger.LastStatus(tx.ID)
		if err != nil {
			s.log.WarnObj("ledger status lookup failed", "ledger_error", map[string]any{
				"transaction_id": tx.ID,
				"error":          err.Error(),
			})
		}
		evt.PreviousStatus = prev
	}
	if evt.PreviousStatus == "" {
		s.mu.Lock()
		evt.PreviousStatus = s.last[tx.ID]
		s.mu.Unlock()
	}
	return evt
}

func (s *Service) remember(id, status string) {
	s.mu.Lock()
	s.last[id] = strings.ToLower(status)
	s.mu.Unlock()
}
