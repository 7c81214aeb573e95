package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/desertthunder/catalogctl/internal/shared"
)

// ErrorKind classifies a failed response.
type ErrorKind int

const (
	KindRequest ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate limited"
	default:
		return "request"
	}
}

// APIError is a non-2xx response from the catalog service.
//
// Validation failures carry every field message in Fields; all other kinds carry a single Message, which may be empty when the body held nothing readable.
type APIError struct {
	Status  int
	Kind    ErrorKind
	Fields  map[string][]string
	Message string
	Body    []byte
}

// NewAPIError classifies resp by status and extracts its message(s).
func NewAPIError(resp *APIResponse) *APIError {
	e := &APIError{Status: resp.StatusCode, Kind: kindFor(resp.StatusCode), Body: resp.Body}

	if e.Kind == KindValidation {
		if fields, ok := parseFieldErrors(resp.Body); ok {
			e.Fields = fields
			return e
		}
	}

	e.Message = parseMessage(resp.Body)
	return e
}

func kindFor(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusConflict:
		return KindConflict
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindRequest
	}
}

// Lines returns the display lines: one "field: message" per validation message sorted by field, or the single message.
func (e *APIError) Lines() []string {
	if len(e.Fields) == 0 {
		if e.Message == "" {
			return nil
		}
		return []string{e.Message}
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		for _, msg := range e.Fields[k] {
			lines = append(lines, k+": "+msg)
		}
	}
	return lines
}

func (e *APIError) Error() string {
	detail := strings.Join(e.Lines(), "; ")
	if detail == "" {
		detail = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%v (%d): %s", e.Unwrap(), e.Status, detail)
}

// Unwrap maps the kind to its sentinel in [shared].
func (e *APIError) Unwrap() error {
	switch e.Kind {
	case KindValidation:
		return shared.ErrValidation
	case KindConflict:
		return shared.ErrConflict
	case KindNotFound:
		return shared.ErrNotFound
	case KindUnauthorized:
		return shared.ErrNotAuthenticated
	case KindRateLimited:
		return shared.ErrRateLimited
	default:
		return shared.ErrAPIRequest
	}
}

// parseFieldErrors reads a 400 body of field -> message or messages.
// Objects shaped like a generic error envelope are not treated as field maps.
func parseFieldErrors(body []byte) (map[string][]string, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil, false
	}
	if _, ok := raw["message"]; ok {
		if _, hasStatus := raw["status"]; hasStatus || len(raw) == 1 {
			return nil, false
		}
	}

	fields := make(map[string][]string, len(raw))
	for k, v := range raw {
		var one string
		if err := json.Unmarshal(v, &one); err == nil {
			fields[k] = []string{one}
			continue
		}
		var many []string
		if err := json.Unmarshal(v, &many); err == nil {
			fields[k] = many
			continue
		}
		return nil, false
	}
	return fields, true
}

// parseMessage extracts a best-effort message from a JSON envelope, a JSON string, or plain text.
func parseMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		return envelope.Error
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}

	if strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

type lineser interface {
	Lines() []string
}

// Describe renders err for display: every validation line joined by newlines, a service message, or fallback when nothing readable is available.
func Describe(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var ae *APIError
	if errors.As(err, &ae) {
		if lines := ae.Lines(); len(lines) > 0 {
			return strings.Join(lines, "\n")
		}
		return fallback
	}

	var le lineser
	if errors.As(err, &le) {
		if lines := le.Lines(); len(lines) > 0 {
			return strings.Join(lines, "\n")
		}
	}

	if fallback != "" {
		return fallback
	}
	return err.Error()
}
