package documents

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/samvad-hq/samvad-webui-client/pkg/httpclient"
)

// GenerateRequest asks the backend to draft a report with a chat model.
type GenerateRequest struct {
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// GeneratedDocument is the drafted report in markdown, HTML and DOCX (base64) forms.
type GeneratedDocument struct {
	Content  string `json:"content"`
	HTML     string `json:"html"`
	DOCX     string `json:"docx"`
	FileName string `json:"file_name"`
}

// DOCXBytes decodes the base64 DOCX payload.
func (d *GeneratedDocument) DOCXBytes() ([]byte, error) {
	if d == nil || d.DOCX == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(d.DOCX)
	if err != nil {
		return nil, fmt.Errorf("decode docx payload: %w", err)
	}
	return raw, nil
}

// RenderRequest converts markdown (or HTML) into a DOCX file.
type RenderRequest struct {
	Content  string `json:"content"`
	HTML     string `json:"html,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

// Client calls the /documents endpoints.
type Client struct {
	http *httpclient.Client
}

// NewClient wraps a shared HTTP client.
func NewClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

// Generate drafts a document from a prompt.
func (c *Client) Generate(ctx context.Context, token string, req GenerateRequest) (*GeneratedDocument, error) {
	headers, err := httpclient.JSONHeaders(token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, httpclient.Invalid("Prompt is required.")
	}
	body, err := httpclient.JSONBody(req)
	if err != nil {
		return nil, err
	}
	payload, err := c.http.RequestJSON(ctx, http.MethodPost, c.http.URL("/documents/docx/generate", nil), headers, body)
	if err != nil {
		return nil, err
	}
	return httpclient.Decode[GeneratedDocument](payload)
}

// Render converts content into a DOCX download.
func (c *Client) Render(ctx context.Context, token string, req RenderRequest) (*httpclient.Blob, error) {
	headers, err := httpclient.JSONHeaders(token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, httpclient.Invalid("Content is required.")
	}
	headers["Accept"] = httpclient.ContentTypeDOCX + ", " + httpclient.ContentTypeJSON
	body, err := httpclient.JSONBody(req)
	if err != nil {
		return nil, err
	}
	return c.http.RequestBlobWithBody(ctx, http.MethodPost, c.http.URL("/documents/docx", nil), headers, body)
}
