package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyTransport adapts resty.Client to the httpclient.Transport interface.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport creates a new RestyTransport with the specified timeout.
func NewRestyTransport(timeout time.Duration) *RestyTransport {
	return &RestyTransport{client: newRestyBaseClient(timeout)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing direct access.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
// resty keeps a cookie jar per client, so session cookies set by the backend are replayed.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// SetLogger routes resty's internal diagnostics to the given logger.
func (r *RestyTransport) SetLogger(l resty.Logger) {
	if r == nil || l == nil {
		return
	}
	r.client.SetLogger(l)
}

// Do performs a single HTTP request with any verb.
func (r *RestyTransport) Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte             { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int          { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header(key string) string { return r.resp.Header().Get(key) }
