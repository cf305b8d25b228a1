package canvas

import (
	"bytes"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// ResultKind tells which field of a Result carries the data.
type ResultKind int

const (
	// KindValue carries a parsed JSON value in Value.
	KindValue ResultKind = iota
	// KindPages carries the accumulated items of every page in Items.
	KindPages
	// KindNotPaginated is returned when pagination was requested but the
	// first response had no Link header. Value holds that response's data.
	KindNotPaginated
	// KindRaw carries the transport response in Raw.
	KindRaw
	// KindStatus carries only the status code.
	KindStatus
)

func (k ResultKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindPages:
		return "pages"
	case KindNotPaginated:
		return "not_paginated"
	case KindRaw:
		return "raw"
	case KindStatus:
		return "status"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the shaped outcome of one Execute call.
type Result struct {
	Kind   ResultKind
	Status int
	URL    string

	Value any
	Items []any
	// Pages counts the responses merged into Items.
	Pages int
	Raw   *resty.Response
}

// Data returns the payload regardless of kind: Items for paginated results,
// Value otherwise.
func (r *Result) Data() any {
	if r.Kind == KindPages {
		return r.Items
	}
	return r.Value
}

// Decode converts the payload into v by round-tripping it through JSON.
func (r *Result) Decode(v any) error {
	raw, err := sonic.Marshal(r.Data())
	if err != nil {
		return err
	}
	return sonic.Unmarshal(raw, v)
}

func (r *Result) String() string {
	switch r.Kind {
	case KindPages:
		return fmt.Sprintf("%d items from %d pages", len(r.Items), r.Pages)
	case KindNotPaginated:
		return fmt.Sprintf("response from %s has no pagination links", r.URL)
	case KindStatus, KindRaw:
		return fmt.Sprintf("status %d", r.Status)
	default:
		return fmt.Sprintf("%v", r.Value)
	}
}

func valueResult(resp *resty.Response, v any) *Result {
	return &Result{Kind: KindValue, Status: resp.StatusCode(), URL: responseURL(resp), Value: v}
}

func responseURL(resp *resty.Response) string {
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		return resp.RawResponse.Request.URL.String()
	}
	if resp.Request != nil {
		return resp.Request.URL
	}
	return ""
}

func decodeBody(resp *resty.Response) (any, error) {
	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return nil, nil
	}
	var v any
	if err := sonic.Unmarshal(body, &v); err != nil {
		return nil, newAPIError(resp, fmt.Errorf("decode body: %w", err))
	}
	return v, nil
}
