package history

import (
	"errors"
	"fmt"
)

// FetchError is a failed historical fetch. Status 0 means the transport
// itself failed (no response); otherwise Status is the HTTP status and
// Detail the server's optional explanation.
type FetchError struct {
	Status int
	Detail string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("history fetch: %v", e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("history fetch: status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("history fetch: status %d", e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// UserMessage maps the failure to the message shown in the UI. A server
// detail wins when present; otherwise the status picks a default.
func (e *FetchError) UserMessage() string {
	if e.Status == 0 {
		return "network error"
	}
	if e.Detail != "" {
		return e.Detail
	}
	switch e.Status {
	case 400:
		return "invalid range or parameters"
	case 404:
		return "no candles found"
	case 429:
		return "rate limit exceeded"
	default:
		return fmt.Sprintf("unexpected error (status %d)", e.Status)
	}
}

// UserMessage renders any fetch failure for the UI.
func UserMessage(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.UserMessage()
	}
	return "network error"
}
