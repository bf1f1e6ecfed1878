package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lodestone-ai/lodestone-go/internal/domain"
)

// statusError maps a non-200 response to the error taxonomy, keeping
// the remote-reported message verbatim.
func statusError(status int, body []byte, header http.Header) error {
	msg := serverMessage(body)

	switch {
	case status == http.StatusNotFound:
		return domain.NewAPIError(status, msg, domain.ErrNotFound)
	case status == http.StatusTooManyRequests:
		return &domain.APIError{
			Status:     status,
			Message:    msg,
			Kind:       domain.ErrRateLimited,
			RetryAfter: parseRetryAfter(header.Get("Retry-After")),
		}
	case status >= 500:
		return domain.NewAPIError(status, msg, domain.ErrTransientServer)
	case status >= 400:
		return domain.NewAPIError(status, msg, domain.ErrPermanentServer)
	default:
		return domain.NewAPIError(status, msg, domain.ErrTransport)
	}
}

// serverMessage extracts a human-readable message from an error body.
// The service usually answers {"message": ...} but older deployments
// use {"error": ...} or plain text.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
