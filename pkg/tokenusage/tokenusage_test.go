package tokenusage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-webui-client/pkg/httpclient"
)

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

func TestSummaryUnwrapsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("timezone") != "Asia/Dhaka" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"data":{"window_start":1,"window_end":2,"limit_tokens":100,"used_tokens":25,"reserved_tokens":0,"remaining_tokens":75,"used_percent":25.0}}`))
	})

	sum, err := client.Summary(context.Background(), "tok", Params{Timezone: "Asia/Dhaka"})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.UsedTokens != 25 || sum.UsedPercent != 25 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestSummaryPlainPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"window_start":1,"window_end":2,"limit_tokens":0,"used_tokens":7,"reserved_tokens":0,"remaining_tokens":0,"used_percent":0}`))
	})

	sum, err := client.Summary(context.Background(), "", Params{})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.UsedTokens != 7 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestSeriesWithoutTokenOmitsAuthorization(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header")
		}
		_, _ = w.Write([]byte(`[{"date":"2026-10-01","tokens":120,"top_model":"gpt-4o"}]`))
	})

	points, err := client.Series(context.Background(), "  ", Params{Start: "2026-10-01", End: ""})
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(points) != 1 || points[0].Tokens != 120 {
		t.Fatalf("unexpected series %+v", points)
	}
}

func TestSeriesEmptyBodyIsEmptySlice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	points, err := client.Series(context.Background(), "tok", Params{})
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if points == nil || len(points) != 0 {
		t.Fatalf("expected empty slice, got %#v", points)
	}
}

func TestByModelUnwrapsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"model":"gpt-4o","tokens":10,"share":100}]}`))
	})

	rows, err := client.ByModel(context.Background(), "tok", Params{})
	if err != nil {
		t.Fatalf("ByModel: %v", err)
	}
	if len(rows) != 1 || rows[0].Model != "gpt-4o" || rows[0].Share != 100 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestActivityKeepsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "limit=5&page=2" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"a1","timestamp":5,"model":"m","type":"chat","input_tokens":1,"output_tokens":2,"total_tokens":3}],"page":2,"total":6}`))
	})

	page, limit := 2, 5
	res, err := client.Activity(context.Background(), "tok", Params{Page: &page, Limit: &limit})
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if res.Total != 6 || res.Page != 2 || len(res.Data) != 1 || res.Data[0].TotalTokens != 3 {
		t.Fatalf("unexpected page %+v", res)
	}
}

func TestActivityDetailDecodesMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/token-usage/activity/a1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"a1","timestamp":5,"model":"m","type":"chat","input_tokens":1,"output_tokens":2,"total_tokens":3,"metadata":{"chat_id":"c1"}}`))
	})

	detail, err := client.ActivityDetail(context.Background(), "tok", "a1")
	if err != nil {
		t.Fatalf("ActivityDetail: %v", err)
	}
	if detail.ID != "a1" || detail.Metadata["chat_id"] != "c1" {
		t.Fatalf("unexpected detail %+v", detail)
	}
}

func TestActivityDetailRequiresID(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Errorf("server should not be called")
	})
	if _, err := client.ActivityDetail(context.Background(), "tok", ""); !httpclient.IsKind(err, httpclient.KindInvalid) {
		t.Fatalf("expected invalid argument error, got %v", err)
	}
}
