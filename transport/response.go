package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	sdk "github.com/strategyone/sdk"
)

// Response is the decoded-enough result of one REST call: status, headers,
// and the raw body. JSON decoding is deferred until a caller asks for it, so
// cached responses round-trip as plain bytes.
type Response struct {
	// StatusCode is the HTTP status of the reply.
	StatusCode int

	// Header holds the reply headers.
	Header http.Header

	// Body is the raw reply body.
	Body []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns nil for a 2xx response and a structured transport error
// otherwise. A 404 maps to the not-found sentinel so callers can use
// errors.Is.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}

	underlying := sdk.ErrTransport
	kind := sdk.KindTransport
	if r.StatusCode == http.StatusNotFound {
		underlying = sdk.ErrNotFound
		kind = sdk.KindNotFound
	}

	e := &sdk.Error{
		Op:   "transport.Request",
		Kind: kind,
		Err:  fmt.Errorf("server returned %d: %w", r.StatusCode, underlying),
	}
	if msg := r.serverMessage(); msg != "" {
		return e.WithContext(map[string]any{"message": msg})
	}
	return e
}

// JSON decodes the body into an arbitrary JSON value.
func (r *Response) JSON() (any, error) {
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, sdk.NewDecodeError("Response.JSON", err)
	}
	return v, nil
}

// JSONMap decodes the body into a JSON object.
func (r *Response) JSONMap() (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(r.Body, &m); err != nil {
		return nil, sdk.NewDecodeError("Response.JSONMap", err)
	}
	return m, nil
}

// JSONList decodes the body into a JSON array.
func (r *Response) JSONList() ([]any, error) {
	var l []any
	if err := json.Unmarshal(r.Body, &l); err != nil {
		return nil, sdk.NewDecodeError("Response.JSONList", err)
	}
	return l, nil
}

// serverMessage extracts the human-readable error message the REST layer
// embeds in failure bodies, when present.
func (r *Response) serverMessage() string {
	var body struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return ""
	}
	if body.Code != "" && body.Message != "" {
		return fmt.Sprintf("%s: %s", body.Code, body.Message)
	}
	return body.Message
}
