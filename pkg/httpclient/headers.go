package httpclient

import "strings"

const (
	ContentTypeJSON = "application/json"
	ContentTypeCSV  = "text/csv"
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// BearerToken validates a caller-supplied token before any request is built.
func BearerToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", ErrSignInRequired
	}
	return trimmed, nil
}

// PublicJSONHeaders returns the JSON negotiation headers for unauthenticated calls.
func PublicJSONHeaders() map[string]string {
	return map[string]string{
		"Accept":       ContentTypeJSON,
		"Content-Type": ContentTypeJSON,
	}
}

// JSONHeaders returns JSON headers carrying a required bearer token.
func JSONHeaders(token string) (map[string]string, error) {
	bearer, err := BearerToken(token)
	if err != nil {
		return nil, err
	}
	headers := PublicJSONHeaders()
	headers["Authorization"] = "Bearer " + bearer
	return headers, nil
}

// OptionalJSONHeaders adds Authorization only when token is non-blank.
func OptionalJSONHeaders(token string) map[string]string {
	headers := PublicJSONHeaders()
	if trimmed := strings.TrimSpace(token); trimmed != "" {
		headers["Authorization"] = "Bearer " + trimmed
	}
	return headers
}

// AcceptHeaders returns headers for a binary download with a narrowed Accept.
func AcceptHeaders(token, accept string) (map[string]string, error) {
	bearer, err := BearerToken(token)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"Accept":        accept,
		"Authorization": "Bearer " + bearer,
	}, nil
}
