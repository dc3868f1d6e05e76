package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-webui-client/internal/notify"
	"github.com/samvad-hq/samvad-webui-client/internal/storage"
	"github.com/samvad-hq/samvad-webui-client/pkg/payments"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func tx(id, status string) payments.Transaction {
	return payments.Transaction{
		ID:        id,
		UserID:    "u1",
		PlanID:    strPtr("pro"),
		PaymentID: strPtr("pay-" + id),
		Status:    strPtr(status),
		Currency:  strPtr("BDT"),
		Amount:    decimal.NewNullDecimal(decimal.NewFromInt(24270)),
	}
}

// fakeSource serves preset pages or per-payment transactions.
type fakeSource struct {
	mu       sync.Mutex
	pages    [][]payments.Transaction
	total    int
	byID     map[string]payments.Transaction
	listErr  error
	queryErr map[string]error
	calls    []int
	token    string
}

func (f *fakeSource) ListMyTransactions(_ context.Context, token string, params payments.UserTransactionsParams) (*payments.TransactionsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	page := *params.Page
	f.calls = append(f.calls, page)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if page-1 >= len(f.pages) {
		return &payments.TransactionsPage{Total: f.total, Page: page}, nil
	}
	return &payments.TransactionsPage{Total: f.total, Page: page, PageSize: *params.PageSize, Data: f.pages[page-1]}, nil
}

func (f *fakeSource) QueryBkashPayment(_ context.Context, _ string, paymentID string) (*payments.Transaction, error) {
	if err := f.queryErr[paymentID]; err != nil {
		return nil, err
	}
	t, ok := f.byID[paymentID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// fakePublisher records events and can fail for one transaction.
type fakePublisher struct {
	mu      sync.Mutex
	events  []notify.Event
	failTx  string
	partial bool
}

func (f *fakePublisher) Publish(_ context.Context, evt notify.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if evt.TransactionID == f.failTx {
		if f.partial {
			return 1, errors.New("one sink down")
		}
		return 0, errors.New("all sinks down")
	}
	return 2, nil
}

// fakeLedger tracks marked keys and last statuses.
type fakeLedger struct {
	mu      sync.Mutex
	seen    map[string]bool
	last    map[string]string
	failKey string
}

func (f *fakeLedger) Seen(id, status string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := storage.DeliveryKey(id, status)
	if key == f.failKey {
		return false, errors.New("lookup failed")
	}
	return f.seen[key], nil
}

func (f *fakeLedger) Mark(id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
		f.last = make(map[string]string)
	}
	f.seen[storage.DeliveryKey(id, status)] = true
	f.last[id] = strings.ToLower(status)
	return nil
}

func (f *fakeLedger) LastStatus(id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last[id], nil
}

func TestRunOncePublishesEachStatusOnce(t *testing.T) {
	src := &fakeSource{pages: [][]payments.Transaction{{tx("t1", "Pending"), tx("t2", "completed")}}, total: 2}
	pub := &fakePublisher{}
	ledger := &fakeLedger{}
	svc := NewService(src, pub, ledger, nil, Options{Token: "tok", MaxPages: 3, PageSize: 10})

	res, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if res.Published != 2 || res.Scanned != 2 {
		t.Fatalf("unexpected first result %+v", res)
	}
	if src.token != "tok" {
		t.Fatalf("token not forwarded")
	}
	if !ledger.seen["t1:pending"] || !ledger.seen["t2:completed"] {
		t.Fatalf("expected keys marked, got %#v", ledger.seen)
	}

	res, err = svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if res.Published != 0 || res.Skipped != 2 {
		t.Fatalf("expected everything skipped, got %+v", res)
	}

	src.pages[0][0] = tx("t1", "completed")
	if _, err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("third RunOnce: %v", err)
	}
	if len(pub.events) != 3 {
		t.Fatalf("expected status change to publish, got %d events", len(pub.events))
	}
	last := pub.events[2]
	if last.TransactionID != "t1" || last.Status != "completed" || last.PreviousStatus != "pending" {
		t.Fatalf("unexpected transition event %+v", last)
	}
}

func TestEventForCopiesFields(t *testing.T) {
	observed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("BD", 6*3600))
	evt := EventFor(tx("t9", "Completed"), observed)
	if evt.PaymentID != "pay-t9" || evt.PlanID != "pro" || evt.Currency != "BDT" || evt.UserID != "u1" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if _, err := uuid.Parse(evt.ID); err != nil {
		t.Fatalf("expected a uuid event id, got %q", evt.ID)
	}
	if evt.Status != "completed" {
		t.Fatalf("status should be lower-cased, got %q", evt.Status)
	}
	if !evt.Amount.Equal(decimal.NewFromInt(24270)) {
		t.Fatalf("unexpected amount %s", evt.Amount)
	}
	if evt.ObservedAt.Location() != time.UTC {
		t.Fatalf("observed time should be UTC")
	}
}

func TestListStopsAtTotalAndMaxPages(t *testing.T) {
	src := &fakeSource{
		pages: [][]payments.Transaction{{tx("a", "pending"), tx("b", "pending")}, {tx("c", "pending"), tx("d", "pending")}, {tx("e", "pending")}},
		total: 4,
	}
	svc := NewService(src, &fakePublisher{}, nil, nil, Options{MaxPages: 5, PageSize: 2})
	res, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if res.Scanned != 4 || len(src.calls) != 2 {
		t.Fatalf("expected 2 pages and 4 transactions, got calls=%v result=%+v", src.calls, res)
	}

	src2 := &fakeSource{pages: src.pages, total: 100}
	svc2 := NewService(src2, &fakePublisher{}, nil, nil, Options{MaxPages: 1, PageSize: 2})
	if _, err := svc2.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(src2.calls) != 1 {
		t.Fatalf("expected max pages to cap listing, got %v", src2.calls)
	}
}

func TestQueryModeCollectsErrors(t *testing.T) {
	src := &fakeSource{
		byID:     map[string]payments.Transaction{"p1": tx("t1", "completed")},
		queryErr: map[string]error{"p2": errors.New("not found")},
	}
	pub := &fakePublisher{}
	svc := NewService(src, pub, &fakeLedger{}, nil, Options{PaymentIDs: []string{"p1", " ", "p2", "p3"}})

	res, err := svc.RunOnce(context.Background())
	if err == nil || !strings.Contains(err.Error(), "query payment p2") {
		t.Fatalf("expected query error for p2, got %v", err)
	}
	if res.Published != 1 || len(pub.events) != 1 {
		t.Fatalf("expected the found payment to publish, got %+v", res)
	}
	if len(src.calls) != 0 {
		t.Fatalf("query mode should not list transactions")
	}
}

func TestPublishFailureLeavesKeyUnmarked(t *testing.T) {
	src := &fakeSource{pages: [][]payments.Transaction{{tx("bad", "failed"), tx("ok", "completed")}}, total: 2}
	ledger := &fakeLedger{}
	svc := NewService(src, &fakePublisher{failTx: "bad"}, ledger, nil, Options{PageSize: 10})

	res, err := svc.RunOnce(context.Background())
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected error mentioning bad transaction, got %v", err)
	}
	if res.Published != 1 {
		t.Fatalf("expected the healthy transaction to publish, got %+v", res)
	}
	if ledger.seen["bad:failed"] {
		t.Fatalf("failed delivery must be retried on the next pass")
	}
}

func TestPartialDeliveryMarksKey(t *testing.T) {
	src := &fakeSource{pages: [][]payments.Transaction{{tx("t1", "completed")}}, total: 1}
	ledger := &fakeLedger{}
	svc := NewService(src, &fakePublisher{failTx: "t1", partial: true}, ledger, nil, Options{PageSize: 10})

	if _, err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("partial delivery should not fail the pass: %v", err)
	}
	if !ledger.seen["t1:completed"] {
		t.Fatalf("expected key marked after partial delivery")
	}
}

func TestFilterNewFailsOpenOnLedgerErrors(t *testing.T) {
	ledger := &fakeLedger{
		seen:    map[string]bool{"skip:completed": true},
		failKey: "err:completed",
	}
	svc := NewService(&fakeSource{}, &fakePublisher{}, ledger, nil, Options{})
	txs := []payments.Transaction{tx("keep", "completed"), tx("skip", "completed"), tx("err", "completed"), {ID: "nostatus"}}

	filtered := svc.filterNew(txs)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 transactions after filter, got %d", len(filtered))
	}
	if filtered[0].ID != "keep" || filtered[1].ID != "err" {
		t.Fatalf("unexpected filter result %#v", filtered)
	}
}

func TestRunOnceListErrorIsReturned(t *testing.T) {
	src := &fakeSource{listErr: errors.New("Please sign in to continue.")}
	svc := NewService(src, &fakePublisher{}, nil, nil, Options{})
	if _, err := svc.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected list error")
	}
}

func TestRunOnceRequiresWiring(t *testing.T) {
	var svc *Service
	if _, err := svc.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error for nil service")
	}
}

func TestRunOnceDropsRowsRepeatedAcrossPages(t *testing.T) {
	// t2 slid from page 1 to page 2 between requests.
	src := &fakeSource{
		pages: [][]payments.Transaction{{tx("t1", "pending"), tx("t2", "pending")}, {tx("t2", "Pending")}},
		total: 3,
	}
	pub := &fakePublisher{}
	svc := NewService(src, pub, &fakeLedger{}, nil, Options{MaxPages: 3, PageSize: 2})

	res, err := svc.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if res.Scanned != 3 || res.Published != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	counts := map[string]int{}
	for _, evt := range pub.events {
		counts[evt.TransactionID]++
	}
	if counts["t2"] != 1 {
		t.Fatalf("t2 published %d times in one pass, want 1", counts["t2"])
	}
}

func TestPreviousStatusSurvivesLedgerReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	src := &fakeSource{pages: [][]payments.Transaction{{tx("t1", "pending")}}, total: 1}

	first, err := storage.NewStore("bbolt", path, storage.Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := NewService(src, &fakePublisher{}, first, nil, Options{PageSize: 10}).RunOnce(context.Background()); err != nil {
		t.Fatalf("first RunOnce: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := storage.NewStore("bbolt", path, storage.Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	src.pages[0][0] = tx("t1", "completed")
	pub := &fakePublisher{}
	if _, err := NewService(src, pub, second, nil, Options{PageSize: 10}).RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected one transition event, got %d", len(pub.events))
	}
	if evt := pub.events[0]; evt.Status != "completed" || evt.PreviousStatus != "pending" {
		t.Fatalf("status=%q previous_status=%q, want completed/pending", evt.Status, evt.PreviousStatus)
	}
}
