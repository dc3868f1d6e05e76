package payments

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/samvad-hq/samvad-webui-client/pkg/httpclient"
)

// Client calls the /payments endpoints.
type Client struct {
	http *httpclient.Client
}

// NewClient wraps a shared HTTP client.
func NewClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

// CreateBkashPayment starts a checkout and returns the redirect details.
func (c *Client) CreateBkashPayment(ctx context.Context, token string, req CreatePaymentRequest) (*PaymentResponse, error) {
	headers, err := httpclient.JSONHeaders(token)
	if err != nil {
		return nil, err
	}
	body, err := httpclient.JSONBody(req.withDefaults())
	if err != nil {
		return nil, err
	}
	payload, err := c.http.RequestJSON(ctx, http.MethodPost, c.http.URL("/payments/bkash/create", nil), headers, body)
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[PaymentResponse](payload)
}

// ExecuteBkashPayment finalizes a checkout the payer approved.
func (c *Client) ExecuteBkashPayment(ctx context.Context, token string, req ExecutePaymentRequest) (*PaymentResponse, error) {
	headers, err := httpclient.JSONHeaders(token)
	if err != nil {
		return nil, err
	}
	body, err := httpclient.JSONBody(req)
	if err != nil {
		return nil, err
	}
	payload, err := c.http.RequestJSON(ctx, http.MethodPost, c.http.URL("/payments/bkash/execute", nil), headers, body)
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[PaymentResponse](payload)
}

// QueryBkashPayment refreshes a transaction from the gateway.
func (c *Client) QueryBkashPayment(ctx context.Context, token, paymentID string) (*Transaction, error) {
	headers, err := httpclient.JSONHeaders(token)
	if err != nil {
		return nil, err
	}
	q := httpclient.NewQuery().Set("payment_id", paymentID)
	payload, err := c.http.RequestJSON(ctx, http.MethodGet, c.http.URL("/payments/bkash/query", q), headers, nil)
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[Transaction](payload)
}

// ListMyTransactions pages through the caller's own transactions.
func (c *Client) ListMyTransactions(ctx context.Context, token string, params UserTransactionsParams) (*TransactionsPage, error) {
	headers, err := httpclient.JSONHeaders(token)
	if err != nil {
		return nil, err
	}
	q := httpclient.NewQuery().
		Set("status", params.Status).
		Set("payment_id", params.PaymentID).
		Set("trx_id", params.TrxID).
		Set("merchant_invoice_number", params.MerchantInvoiceNumber).
		Set("start_date", params.StartDate).
		Set("end_date", params.EndDate).
		Set("page", params.Page).
		Set("page_size", params.PageSize)
	payload, err := c.http.RequestJSON(ctx, http.MethodGet, c.http.URL("/payments/transactions", q), headers, nil)
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[TransactionsPage](payload)
}

// DownloadInvoicePDF fetches the PDF invoice for one of the caller's transactions.
func (c *Client) DownloadInvoicePDF(ctx context.Context, token, transactionID string) (*httpclient.Blob, error) {
	headers, err := httpclient.AcceptHeaders(token, httpclient.ContentTypePDF)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(transactionID) == "" {
		return nil, httpclient.Invalid("Transaction ID is required.")
	}
	path := "/payments/invoices/" + url.PathEscape(transactionID) + ".pdf"
	return c.http.RequestBlob(ctx, http.MethodGet, c.http.URL(path, nil), headers)
}

// MySubscription returns the caller's subscription details.
func (c *Client) MySubscription(ctx context.Context, token string) (*Subscription, error) {
	return c.subscriptionCall(ctx, token, http.MethodGet, "/payments/me/subscription")
}

// PauseMySubscription pauses auto-renewal.
func (c *Client) PauseMySubscription(ctx context.Context, token string) (*Subscription, error) {
	return c.subscriptionCall(ctx, token, http.MethodPost, "/payments/me/subscription/pause")
}

// CancelMySubscription cancels the subscription.
func (c *Client) CancelMySubscription(ctx context.Context, token string) (*Subscription, error) {
	return c.subscriptionCall(ctx, token, http.MethodPost, "/payments/me/subscription/cancel")
}

func (c *Client) subscriptionCall(ctx context.Context, token, method, path string) (*Subscription, error) {
	headers, err := httpclient.JSONHeaders(token)
	if err != nil {
		return nil, err
	}
	payload, err := c.http.RequestJSON(ctx, method, c.http.URL(path, nil), headers, nil)
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[Subscription](payload)
}

// ListPricingPlans lists purchasable plans. It needs no token. Both a bare array and a
// {"data": [...]} envelope are accepted.
func (c *Client) ListPricingPlans(ctx context.Context) ([]PricingPlan, error) {
	payload, err := c.http.RequestJSON(ctx, http.MethodGet, c.http.URL("/payments/plans", nil), httpclient.PublicJSONHeaders(), nil)
	if err != nil {
		return nil, err
	}
	return httpclient.DecodeList[PricingPlan](payload.Data())
}
