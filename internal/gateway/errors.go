package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const DefaultFailureMessage = "order submission failed"

var (
	ErrUnavailable     = errors.New("order backend is unavailable")
	ErrInvalidResponse = errors.New("invalid response from order backend")
)

// Error is a non-2xx answer from the backend. Detail is the server's message, when it sent one.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
}

func (e *Error) serverSide() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.StatusCode == http.StatusNotFound
}

// UserMessage picks the text shown to the user for a failed backend call.
// 4xx details pass through verbatim; everything else gets the generic message.
func UserMessage(err error) string {
	var gwErr *Error
	if errors.As(err, &gwErr) && !gwErr.serverSide() && gwErr.Detail != "" {
		return gwErr.Detail
	}
	return DefaultFailureMessage
}

// parseDetail extracts the error text from a JSON error body ({"detail"|"error"|"message": "..."}).
// A detail list of validation errors ([{"msg": "..."}]) is joined into one line.
func parseDetail(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		switch v := payload[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			if s := joinMessages(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func joinMessages(items []any) string {
	var msgs []string
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if msg, ok := obj["msg"].(string); ok && msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "; ")
}
