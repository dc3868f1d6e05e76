package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

// Client issues single request/response cycles against the backend and normalizes every
// failure into an *Error. It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL   string
	transport Transport
	log       Logger
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	timeout     time.Duration
	transport   Transport
	log         Logger
	restyLogger resty.Logger
}

// WithTimeout bounds every request made by the default transport.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithTransport replaces the resty transport.
func WithTransport(t Transport) Option {
	return func(o *clientOptions) { o.transport = t }
}

// WithLogger sets the structured logger used for failed calls.
func WithLogger(l Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithRestyLogger routes resty's own diagnostics (zap's SugaredLogger satisfies it).
func WithRestyLogger(l resty.Logger) Option {
	return func(o *clientOptions) { o.restyLogger = l }
}

// New builds a client rooted at baseURL, e.g. "https://chat.example.com/api/v1".
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	o := clientOptions{timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	transport := o.transport
	if transport == nil {
		rt := NewRestyTransport(o.timeout)
		rt.SetLogger(o.restyLogger)
		transport = rt
	}

	return &Client{
		baseURL:   baseURL,
		transport: transport,
		log:       ensureLogger(o.log),
	}, nil
}

// URL joins path onto the base URL and appends the query when it has values.
func (c *Client) URL(path string, q *Query) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// RequestJSON performs one request and interprets the body as JSON or text.
// A nil payload with a nil error means the server sent no content.
func (c *Client) RequestJSON(ctx context.Context, method, url string, headers map[string]string, body []byte) (*Payload, error) {
	resp, err := c.do(ctx, method, url, headers, body)
	if err != nil {
		return nil, err
	}
	payload := parsePayload(resp.Body())
	if !isSuccess(resp.StatusCode()) {
		return nil, c.fail(method, url, statusError(resp.StatusCode(), payload.Value()))
	}
	return payload, nil
}

// RequestBlob performs one request and returns the body untouched on success.
func (c *Client) RequestBlob(ctx context.Context, method, url string, headers map[string]string) (*Blob, error) {
	return c.RequestBlobWithBody(ctx, method, url, headers, nil)
}

// RequestBlobWithBody is RequestBlob for verbs that carry a request body.
func (c *Client) RequestBlobWithBody(ctx context.Context, method, url string, headers map[string]string, body []byte) (*Blob, error) {
	resp, err := c.do(ctx, method, url, headers, body)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode()) {
		payload := parsePayload(resp.Body())
		return nil, c.fail(method, url, statusError(resp.StatusCode(), payload.Value()))
	}
	contentType := resp.Header("Content-Type")
	return &Blob{
		Data:        resp.Body(),
		ContentType: contentType,
		FileName:    fileNameFromDisposition(resp.Header("Content-Disposition")),
	}, nil
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error) {
	if c == nil || c.transport == nil {
		return nil, transportError(fmt.Errorf("http client is not initialized"))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := c.transport.Do(ctx, method, url, headers, body)
	if err != nil {
		return nil, c.fail(method, url, transportError(err))
	}
	return resp, nil
}

func (c *Client) fail(method, url string, e *Error) *Error {
	fields := map[string]any{
		"method":  method,
		"url":     url,
		"kind":    e.Kind.String(),
		"message": e.Message,
	}
	if e.Status != 0 {
		fields["status"] = e.Status
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	c.log.ErrorObj("api request failed", "request_error", fields)
	return e
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// JSONBody serializes v for use as a request body.
func JSONBody(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, &Error{Kind: KindInvalid, Message: "Request could not be encoded.", Err: err}
	}
	return body, nil
}

// Blob is an opaque binary response (CSV export, PDF invoice, DOCX report).
type Blob struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Size returns the payload length in bytes.
func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

func fileNameFromDisposition(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
