package tokenbudgets

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/samvad-hq/samvad-webui-client/pkg/httpclient"
)

// Budget is a per-user token allowance.
type Budget struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	WindowType  string  `json:"window_type"`
	Timezone    *string `json:"timezone,omitempty"`
	LimitTokens int64   `json:"limit_tokens"`
	Enabled     bool    `json:"enabled"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

// Status is a budget evaluated against the current window.
type Status struct {
	UserID          string  `json:"user_id"`
	Enabled         bool    `json:"enabled"`
	WindowType      string  `json:"window_type"`
	Timezone        *string `json:"timezone,omitempty"`
	WindowStart     int64   `json:"window_start"`
	ResetAt         int64   `json:"reset_at"`
	LimitTokens     int64   `json:"limit_tokens"`
	UsedTokens      int64   `json:"used_tokens"`
	ReservedTokens  int64   `json:"reserved_tokens"`
	RemainingTokens int64   `json:"remaining_tokens"`
}

// UpsertRequest creates or replaces a user's budget.
type UpsertRequest struct {
	LimitTokens int64   `json:"limit_tokens"`
	Enabled     *bool   `json:"enabled,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// ListParams filters the budget listing.
type ListParams struct {
	// Query matches user ids by substring.
	Query  string
	Limit  *int
	Offset *int
}

// Client calls the /admin/token-budgets endpoints.
type Client struct {
	http *httpclient.Client
}

// NewClient wraps a shared HTTP client.
func NewClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

// Upsert sets a user's monthly token limit.
func (c *Client) Upsert(ctx context.Context, token, userID string, req UpsertRequest) (*Budget, error) {
	headers, err := httpclient.JSONHeaders(token)
	if err != nil {
		return nil, err
	}
	path, err := userPath(userID)
	if err != nil {
		return nil, err
	}
	if req.LimitTokens < 0 {
		return nil, httpclient.Invalid("Token limit must be zero or greater.")
	}
	body, err := httpclient.JSONBody(req)
	if err != nil {
		return nil, err
	}
	payload, err := c.http.RequestJSON(ctx, http.MethodPut, c.http.URL(path, nil), headers, body)
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[Budget](payload)
}

// Status reports usage against a user's budget.
func (c *Client) Status(ctx context.Context, token, userID string) (*Status, error) {
	headers, err := httpclient.JSONHeaders(token)
	if err != nil {
		return nil, err
	}
	path, err := userPath(userID)
	if err != nil {
		return nil, err
	}
	payload, err := c.http.RequestJSON(ctx, http.MethodGet, c.http.URL(path+"/status", nil), headers, nil)
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[Status](payload)
}

// List returns configured budgets ordered by user id.
func (c *Client) List(ctx context.Context, token string, params ListParams) ([]Budget, error) {
	headers, err := httpclient.JSONHeaders(token)
	if err != nil {
		return nil, err
	}
	q := httpclient.NewQuery().
		Set("query", params.Query).
		Set("limit", params.Limit).
		Set("offset", params.Offset)
	payload, err := c.http.RequestJSON(ctx, http.MethodGet, c.http.URL("/admin/token-budgets", q), headers, nil)
	if err != nil {
		return nil, err
	}
	return httpclient.DecodeList[Budget](payload)
}

func userPath(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", httpclient.Invalid("User ID is required.")
	}
	return "/admin/token-budgets/users/" + url.PathEscape(userID), nil
}
