package payments

import (
	"context"
	"net/http"

	"github.com/samvad-hq/samvad-webui-client/pkg/httpclient"
)

// AdminListTransactions lists all transactions with filters and paging.
func (c *Client) AdminListTransactions(ctx context.Context, token string, params AdminTransactionsParams) (*TransactionsPage, error) {
	payload, err := c.adminGet(ctx, token, "/payments/admin/payments/transactions", adminQuery(params))
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[TransactionsPage](payload)
}

// AdminMetrics returns aggregate payment metrics for the filter.
func (c *Client) AdminMetrics(ctx context.Context, token string, params AdminTransactionsParams) (*httpclient.Payload, error) {
	return c.adminGet(ctx, token, "/payments/admin/payments/metrics", adminQuery(params))
}

// AdminKPIs returns the KPI rollup. The token is optional here; it is forwarded only when set.
func (c *Client) AdminKPIs(ctx context.Context, token string, params KPIParams) (*httpclient.Payload, error) {
	q := httpclient.NewQuery().
		Set("status", params.Status).
		Set("start_date", params.StartDate).
		Set("end_date", params.EndDate)
	return c.http.RequestJSON(ctx, http.MethodGet, c.http.URL("/payments/admin/payments/kpis", q), httpclient.OptionalJSONHeaders(token), nil)
}

// AdminUsersSummary returns per-user payment totals.
func (c *Client) AdminUsersSummary(ctx context.Context, token string, params UsersSummaryParams) (*httpclient.Payload, error) {
	q := httpclient.NewQuery().
		Set("status", params.Status).
		Set("start_date", params.StartDate).
		Set("end_date", params.EndDate).
		Set("user_ids", params.UserIDs)
	return c.adminGet(ctx, token, "/payments/admin/payments/users/summary", q)
}

// AdminExportTransactions downloads the filtered transactions as CSV.
func (c *Client) AdminExportTransactions(ctx context.Context, token string, params ExportParams) (*httpclient.Blob, error) {
	headers, err := httpclient.AcceptHeaders(token, httpclient.ContentTypeCSV)
	if err != nil {
		return nil, err
	}
	q := httpclient.NewQuery().
		Set("user_id", params.UserID).
		Set("status", params.Status).
		Set("payment_id", params.PaymentID).
		Set("trx_id", params.TrxID).
		Set("merchant_invoice_number", params.MerchantInvoiceNumber).
		Set("user_query", params.UserQuery).
		Set("start_date", params.StartDate).
		Set("end_date", params.EndDate)
	return c.http.RequestBlob(ctx, http.MethodGet, c.http.URL("/payments/admin/payments/transactions/export", q), headers)
}

// AdminPlansSummary returns revenue grouped by plan.
func (c *Client) AdminPlansSummary(ctx context.Context, token string, rng DateRange) (*httpclient.Payload, error) {
	q := httpclient.NewQuery().
		Set("start_date", rng.StartDate).
		Set("end_date", rng.EndDate)
	return c.adminGet(ctx, token, "/payments/admin/payments/plans/summary", q)
}

// AdminPlanTotalAmount returns the total collected for a single plan.
func (c *Client) AdminPlanTotalAmount(ctx context.Context, token, planID string) (*httpclient.Payload, error) {
	q := httpclient.NewQuery().Set("plan_id", planID)
	return c.adminGet(ctx, token, "/payments/admin/transactions/plans", q)
}

func (c *Client) adminGet(ctx context.Context, token, path string, q *httpclient.Query) (*httpclient.Payload, error) {
	headers, err := httpclient.JSONHeaders(token)
	if err != nil {
		return nil, err
	}
	return c.http.RequestJSON(ctx, http.MethodGet, c.http.URL(path, q), headers, nil)
}

func adminQuery(p AdminTransactionsParams) *httpclient.Query {
	return httpclient.NewQuery().
		Set("user_id", p.UserID).
		Set("status", p.Status).
		Set("payment_id", p.PaymentID).
		Set("trx_id", p.TrxID).
		Set("merchant_invoice_number", p.MerchantInvoiceNumber).
		Set("user_query", p.UserQuery).
		Set("start_date", p.StartDate).
		Set("end_date", p.EndDate).
		Set("page", p.Page).
		Set("page_size", p.PageSize)
}
