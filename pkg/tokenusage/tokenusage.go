package tokenusage

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/samvad-hq/samvad-webui-client/pkg/httpclient"
)

// Summary is token consumption for the current window.
type Summary struct {
	WindowStart     int64   `json:"window_start"`
	WindowEnd       int64   `json:"window_end"`
	LimitTokens     int64   `json:"limit_tokens"`
	UsedTokens      int64   `json:"used_tokens"`
	ReservedTokens  int64   `json:"reserved_tokens"`
	RemainingTokens int64   `json:"remaining_tokens"`
	UsedPercent     float64 `json:"used_percent"`
	Timezone        *string `json:"timezone,omitempty"`
}

// SeriesPoint is one day of usage.
type SeriesPoint struct {
	Date     string  `json:"date"`
	Tokens   int64   `json:"tokens"`
	TopModel *string `json:"top_model,omitempty"`
}

// ModelBreakdown is one model's share of usage.
type ModelBreakdown struct {
	Model  string  `json:"model"`
	Tokens int64   `json:"tokens"`
	Share  float64 `json:"share"`
}

// ActivityRow is a single metered request.
type ActivityRow struct {
	ID             string  `json:"id"`
	Timestamp      int64   `json:"timestamp"`
	Model          string  `json:"model"`
	Type           string  `json:"type"`
	InputTokens    int64   `json:"input_tokens"`
	OutputTokens   int64   `json:"output_tokens"`
	TotalTokens    int64   `json:"total_tokens"`
	ConversationID *string `json:"conversation_id,omitempty"`
}

// ActivityDetail is an activity row plus its recorded metadata.
type ActivityDetail struct {
	ActivityRow
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ActivityPage is the paged activity listing.
type ActivityPage struct {
	Data  []ActivityRow `json:"data"`
	Page  int           `json:"page"`
	Total int           `json:"total"`
}

// Params filters usage queries. Start and End are YYYY-MM-DD in Timezone.
type Params struct {
	Start    string
	End      string
	Timezone string
	Model    string
	Type     string
	Page     *int
	Limit    *int
}

func (p Params) query() *httpclient.Query {
	return httpclient.NewQuery().
		Set("start", p.Start).
		Set("end", p.End).
		Set("timezone", p.Timezone).
		Set("model", p.Model).
		Set("type", p.Type).
		Set("page", p.Page).
		Set("limit", p.Limit)
}

// Client calls the /token-usage endpoints. The token is optional: the backend also
// accepts the session cookie kept by the transport.
type Client struct {
	http *httpclient.Client
}

// NewClient wraps a shared HTTP client.
func NewClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

// Summary returns window totals, unwrapping a {"data": ...} envelope if present.
func (c *Client) Summary(ctx context.Context, token string, params Params) (*Summary, error) {
	payload, err := c.get(ctx, token, "/token-usage/summary", params.query())
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[Summary](payload.Data())
}

// Series returns daily usage points.
func (c *Client) Series(ctx context.Context, token string, params Params) ([]SeriesPoint, error) {
	payload, err := c.get(ctx, token, "/token-usage/series", params.query())
	if err != nil {
		return nil, err
	}
	return httpclient.DecodeList[SeriesPoint](payload.Data())
}

// ByModel returns usage grouped by model.
func (c *Client) ByModel(ctx context.Context, token string, params Params) ([]ModelBreakdown, error) {
	payload, err := c.get(ctx, token, "/token-usage/models", params.query())
	if err != nil {
		return nil, err
	}
	return httpclient.DecodeList[ModelBreakdown](payload.Data())
}

// Activity returns a page of metered requests. The envelope is kept for paging.
func (c *Client) Activity(ctx context.Context, token string, params Params) (*ActivityPage, error) {
	payload, err := c.get(ctx, token, "/token-usage/activity", params.query())
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[ActivityPage](payload)
}

// ActivityDetail returns one metered request with metadata.
func (c *Client) ActivityDetail(ctx context.Context, token, activityID string) (*ActivityDetail, error) {
	activityID = strings.TrimSpace(activityID)
	if activityID == "" {
		return nil, httpclient.Invalid("Activity ID is required.")
	}
	payload, err := c.get(ctx, token, "/token-usage/activity/"+url.PathEscape(activityID), nil)
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[ActivityDetail](payload)
}

func (c *Client) get(ctx context.Context, token, path string, q *httpclient.Query) (*httpclient.Payload, error) {
	return c.http.RequestJSON(ctx, http.MethodGet, c.http.URL(path, q), httpclient.OptionalJSONHeaders(token), nil)
}
