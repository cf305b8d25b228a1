package canvas

import (
	"errors"
	"fmt"
	"net"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

var (
	// ErrUnexpectedShape is wrapped by an APIError when a response body is
	// neither a JSON list nor a JSON object.
	ErrUnexpectedShape = errors.New("response body is neither a list nor an object")

	// ErrMissingDataKey is wrapped by an APIError when the requested data key
	// is absent from an object response.
	ErrMissingDataKey = errors.New("data key not found in response")
)

// APIError reports a non-success response or a body that could not be
// shaped into the requested result.
type APIError struct {
	StatusCode int
	// Content is the parsed JSON body, or the raw body as a string when it
	// is not valid JSON.
	Content  any
	Body     []byte
	URL      string
	Response *resty.Response
	Err      error
}

func newAPIError(resp *resty.Response, cause error) *APIError {
	e := &APIError{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Response:   resp,
		Err:        cause,
	}
	if resp.Request != nil {
		e.URL = resp.Request.URL
	}
	var content any
	if err := sonic.Unmarshal(e.Body, &content); err == nil {
		e.Content = content
	} else {
		e.Content = string(e.Body)
	}
	return e
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("canvas api error: status %d - content: %v", e.StatusCode, e.Content)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

// ToJSON renders the status code and content as a JSON document.
func (e *APIError) ToJSON() ([]byte, error) {
	return sonic.Marshal(map[string]any{
		"status_code": e.StatusCode,
		"content":     e.Content,
	})
}

// TransportError reports a failure below the HTTP status layer: connection
// refused, timeouts, TLS failures and the like.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("canvas transport error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying failure was a timeout.
func (e *TransportError) Timeout() bool {
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// ValidationError is returned by the parameter validators used in
// generated code.
type ValidationError struct {
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %v: %s", e.Value, e.Reason)
}
