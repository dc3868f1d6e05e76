package httpclient

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errNotJSON = errors.New("response body is not JSON")

// Payload is a successfully received response body. A nil *Payload means the server
// sent no content; all methods are safe to call on nil.
type Payload struct {
	raw    []byte
	value  any
	isJSON bool
}

// parsePayload interprets a body as JSON, falling back to its raw text.
func parsePayload(body []byte) *Payload {
	if len(body) == 0 {
		return nil
	}
	p := &Payload{raw: body}
	var v any
	if err := json.Unmarshal(body, &v); err == nil {
		p.value = v
		p.isJSON = true
		return p
	}
	p.value = string(body)
	return p
}

// NewPayload builds a payload from raw bytes, applying the same JSON-or-text rule as Client.
func NewPayload(body []byte) *Payload {
	return parsePayload(body)
}

// Value returns the decoded JSON value, the raw text for non-JSON bodies, or nil.
func (p *Payload) Value() any {
	if p == nil {
		return nil
	}
	return p.value
}

// IsJSON reports whether the body parsed as JSON.
func (p *Payload) IsJSON() bool {
	return p != nil && p.isJSON
}

// Raw returns the body bytes exactly as received.
func (p *Payload) Raw() []byte {
	if p == nil {
		return nil
	}
	return p.raw
}

// Text returns the body as a string.
func (p *Payload) Text() string {
	if p == nil {
		return ""
	}
	return string(p.raw)
}

// Decode unmarshals the JSON body into dst. A nil payload leaves dst untouched.
func (p *Payload) Decode(dst any) error {
	if p == nil {
		return nil
	}
	if !p.isJSON {
		return decodeError(errNotJSON)
	}
	if err := json.Unmarshal(p.raw, dst); err != nil {
		return decodeError(err)
	}
	return nil
}

// Data unwraps a {"data": ...} envelope. Payloads that are not objects, or whose data
// member is missing or null, are returned unchanged.
func (p *Payload) Data() *Payload {
	if p == nil || !p.isJSON {
		return p
	}
	obj, ok := p.value.(map[string]any)
	if !ok {
		return p
	}
	inner, ok := obj["data"]
	if !ok || inner == nil {
		return p
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(p.raw, &envelope); err != nil {
		return p
	}
	return &Payload{raw: bytes.TrimSpace(envelope.Data), value: inner, isJSON: true}
}

// MarshalJSON emits the body unchanged for JSON payloads and as a JSON string otherwise.
func (p *Payload) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	if p.isJSON {
		return p.raw, nil
	}
	return json.Marshal(string(p.raw))
}

// Decode maps a payload onto T. It returns nil for no content.
func Decode[T any](p *Payload) (*T, error) {
	if p == nil {
		return nil, nil
	}
	var out T
	if err := p.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecodeList maps a payload onto []T. It returns an empty slice for no content or null.
func DecodeList[T any](p *Payload) ([]T, error) {
	out := []T{}
	if p == nil || p.value == nil {
		return out, nil
	}
	if err := p.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
