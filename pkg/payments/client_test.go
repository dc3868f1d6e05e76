package payments

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/samvad-hq/samvad-webui-client/pkg/httpclient"
)

type countingTransport struct {
	calls int
}

func (c *countingTransport) Do(context.Context, string, string, map[string]string, []byte) (httpclient.Response, error) {
	c.calls++
	return nil, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	hc, err := httpclient.New(srv.URL+"/api/v1", httpclient.WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	return NewClient(hc)
}

func TestCreateBkashPaymentBlankTokenSkipsNetwork(t *testing.T) {
	transport := &countingTransport{}
	hc, err := httpclient.New("https://example.com/api/v1", httpclient.WithTransport(transport))
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	client := NewClient(hc)

	_, err = client.CreateBkashPayment(context.Background(), "", CreatePaymentRequest{Amount: decimal.NewFromInt(999)})
	if err == nil || err.Error() != "Please sign in to continue." {
		t.Fatalf("expected sign-in error, got %v", err)
	}
	if transport.calls != 0 {
		t.Fatalf("expected no network calls, got %d", transport.calls)
	}
}

func TestCreateBkashPaymentSendsDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/payments/bkash/create" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["currency"] != "BDT" || body["intent"] != "sale" || body["mode"] != "0011" || body["plan_id"] != "go" {
			t.Errorf("unexpected body %s", raw)
		}
		if body["amount"] != float64(999) {
			t.Errorf("amount should be a JSON number: %s", raw)
		}
		if _, ok := body["payer_reference"]; ok {
			t.Errorf("empty payer_reference should be omitted: %s", raw)
		}
		_, _ = w.Write([]byte(`{"status":"created","payment_id":"P1","bkash_url":"https://pay.example/P1","statusCode":"0000"}`))
	})

	resp, err := client.CreateBkashPayment(context.Background(), "tok", CreatePaymentRequest{
		PlanID: "go",
		Amount: decimal.NewFromInt(999),
	})
	if err != nil {
		t.Fatalf("CreateBkashPayment: %v", err)
	}
	if resp.Status != "created" || deref(resp.PaymentID) != "P1" || deref(resp.BkashURL) != "https://pay.example/P1" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if _, ok := resp.Extra["statusCode"]; !ok {
		t.Fatalf("expected extra fields to be kept, got %v", resp.Extra)
	}
}

func TestQueryBkashPaymentDecodesTransaction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("payment_id"); got != "P 1" {
			t.Errorf("payment_id = %q", got)
		}
		_, _ = w.Write([]byte(`{"id":"t1","user_id":"u1","amount":999.5,"currency":"BDT","status":"completed","created_at":1,"updated_at":2}`))
	})

	tx, err := client.QueryBkashPayment(context.Background(), "tok", "P 1")
	if err != nil {
		t.Fatalf("QueryBkashPayment: %v", err)
	}
	if tx.StatusValue() != "completed" || !tx.Amount.Valid || !tx.Amount.Decimal.Equal(decimal.RequireFromString("999.5")) {
		t.Fatalf("unexpected transaction %+v", tx)
	}
}

func TestListPricingPlansWithoutToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/payments/plans" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("plans listing must not send Authorization")
		}
		_, _ = w.Write([]byte(`{"data":[{"plan_id":"go","name":"Go","features":"","amount":999,"currency":"BDT","period":"/ month"}]}`))
	})

	plans, err := client.ListPricingPlans(context.Background())
	if err != nil {
		t.Fatalf("ListPricingPlans: %v", err)
	}
	if len(plans) != 1 || plans[0].PlanID != "go" || !plans[0].Amount.Equal(decimal.NewFromInt(999)) {
		t.Fatalf("unexpected plans %+v", plans)
	}
}

func TestListPricingPlansAcceptsBareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"plan_id":"free","name":"Free","amount":0,"currency":"BDT","period":"/ month"}]`))
	})

	plans, err := client.ListPricingPlans(context.Background())
	if err != nil {
		t.Fatalf("ListPricingPlans: %v", err)
	}
	if len(plans) != 1 || plans[0].PlanID != "free" {
		t.Fatalf("unexpected plans %+v", plans)
	}
}

func TestListMyTransactionsBuildsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "completed" || q.Get("page") != "2" || q.Has("trx_id") || q.Has("start_date") {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"total":3,"page":2,"page_size":2,"data":[{"id":"t3","user_id":"u","created_at":1,"updated_at":1}]}`))
	})

	page := 2
	res, err := client.ListMyTransactions(context.Background(), "tok", UserTransactionsParams{Status: "completed", Page: &page})
	if err != nil {
		t.Fatalf("ListMyTransactions: %v", err)
	}
	if res.Total != 3 || len(res.Data) != 1 || res.Data[0].ID != "t3" {
		t.Fatalf("unexpected page %+v", res)
	}
}

func TestSubscriptionCallsUseExpectedVerbs(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		_, _ = w.Write([]byte(`{"has_subscription":true,"plan_id":"plus","status":"active"}`))
	})

	ctx := context.Background()
	if _, err := client.MySubscription(ctx, "tok"); err != nil {
		t.Fatalf("MySubscription: %v", err)
	}
	if _, err := client.PauseMySubscription(ctx, "tok"); err != nil {
		t.Fatalf("PauseMySubscription: %v", err)
	}
	sub, err := client.CancelMySubscription(ctx, "tok")
	if err != nil {
		t.Fatalf("CancelMySubscription: %v", err)
	}
	if !sub.HasSubscription || deref(sub.PlanID) != "plus" {
		t.Fatalf("unexpected subscription %+v", sub)
	}
	want := []string{
		"GET /api/v1/payments/me/subscription",
		"POST /api/v1/payments/me/subscription/pause",
		"POST /api/v1/payments/me/subscription/cancel",
	}
	for i := range want {
		if i >= len(seen) || seen[i] != want[i] {
			t.Fatalf("calls = %v, want %v", seen, want)
		}
	}
}

func TestSubscriptionNotFoundSurfacesDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"not found"}`))
	})

	_, err := client.MySubscription(context.Background(), "tok")
	if err == nil || err.Error() != "not found" {
		t.Fatalf("expected detail message, got %v", err)
	}
}

func TestEmptySuccessBodyDecodesToNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	sub, err := client.MySubscription(context.Background(), "tok")
	if err != nil || sub != nil {
		t.Fatalf("expected nil result, got %+v err=%v", sub, err)
	}
}

func TestExecuteBkashPaymentPostsPaymentID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/payments/bkash/execute" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body) != 1 || body["payment_id"] != "P1" {
			t.Errorf("unexpected body %s", raw)
		}
		_, _ = w.Write([]byte(`{"status":"completed","payment_id":"P1","trx_id":"TRX9"}`))
	})

	resp, err := client.ExecuteBkashPayment(context.Background(), "tok", ExecutePaymentRequest{PaymentID: "P1"})
	if err != nil {
		t.Fatalf("ExecuteBkashPayment: %v", err)
	}
	if resp.Status != "completed" || deref(resp.TrxID) != "TRX9" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestExecuteBkashPaymentBlankTokenSkipsNetwork(t *testing.T) {
	transport := &countingTransport{}
	hc, err := httpclient.New("https://example.com/api/v1", httpclient.WithTransport(transport))
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	_, err = NewClient(hc).ExecuteBkashPayment(context.Background(), "  ", ExecutePaymentRequest{PaymentID: "P1"})
	if !httpclient.IsAuth(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if transport.calls != 0 {
		t.Fatalf("expected no network calls, got %d", transport.calls)
	}
}
