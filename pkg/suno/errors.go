package suno

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is returned for any non-2xx response from the service.
type APIError struct {
	Status int    // HTTP status code
	Msg    string // human-readable message for display
	Detail string // server-supplied detail, if any
}

func (e *APIError) Error() string {
	if e.Detail != "" && e.Detail != e.Msg {
		return fmt.Sprintf("suno: %s (status %d): %s", e.Msg, e.Status, e.Detail)
	}
	return fmt.Sprintf("suno: %s (status %d)", e.Msg, e.Status)
}

// newAPIError maps a non-2xx response into an *APIError. The body is
// expected to be `{"detail": "..."}`; anything else falls back to the
// transport-level status text.
func newAPIError(resp *http.Response) *APIError {
	detail := ""
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		var payload struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &payload) == nil {
			detail = payload.Detail
		}
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	msg := ""
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		msg = "invalid API key"
	case http.StatusForbidden:
		msg = "access denied"
	case http.StatusTooManyRequests:
		msg = "rate limit exceeded, please wait"
	case http.StatusBadRequest:
		msg = detail
		if msg == "" {
			msg = "bad request"
		}
	default:
		msg = detail
		if msg == "" {
			msg = fmt.Sprintf("request failed (%d)", resp.StatusCode)
		}
	}
	return &APIError{Status: resp.StatusCode, Msg: msg, Detail: detail}
}
