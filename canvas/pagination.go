package canvas

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/tomnomnom/linkheader"
)

// ExtractData parses the response body. Lists are returned verbatim and
// ignore dataKey; objects are unwrapped by dataKey when one is given.
// Anything else fails with ErrUnexpectedShape.
func ExtractData(resp *resty.Response, dataKey string) (any, error) {
	body, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	switch v := body.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if dataKey == "" {
			return v, nil
		}
		data, ok := v[dataKey]
		if !ok {
			return nil, newAPIError(resp, ErrMissingDataKey)
		}
		return data, nil
	default:
		return nil, newAPIError(resp, ErrUnexpectedShape)
	}
}

// HasPaginationLinks reports whether the response carries a Link header.
func HasPaginationLinks(resp *resty.Response) bool {
	return len(resp.Header().Values("Link")) > 0
}

// NextLink returns the URL of the rel="next" entry of the Link header, or ""
// when there is none.
func NextLink(resp *resty.Response) string {
	links := linkheader.ParseMultiple(resp.Header().Values("Link")).FilterByRel("next")
	if len(links) == 0 {
		return ""
	}
	return links[0].URL
}

// Depaginate accumulates the data of resp and every page reachable through
// next links. A first response without a Link header yields a
// KindNotPaginated result holding only that response's data.
func (s *Session) Depaginate(ctx context.Context, resp *resty.Response, dataKey string) (*Result, error) {
	first, err := ExtractData(resp, dataKey)
	if err != nil {
		return nil, err
	}
	if !HasPaginationLinks(resp) {
		return &Result{
			Kind:   KindNotPaginated,
			Status: resp.StatusCode(),
			URL:    responseURL(resp),
			Value:  first,
		}, nil
	}

	res := &Result{Kind: KindPages, Status: resp.StatusCode(), URL: responseURL(resp), Items: []any{}}
	res.Items = accumulate(res.Items, first)
	res.Pages = 1

	for next := NextLink(resp); next != ""; next = NextLink(resp) {
		resp, err = s.client.R().SetContext(ctx).Get(next)
		if err != nil {
			return nil, &TransportError{Method: http.MethodGet, URL: next, Err: err}
		}
		if resp.IsError() {
			return nil, newAPIError(resp, nil)
		}
		data, err := ExtractData(resp, dataKey)
		if err != nil {
			return nil, err
		}
		res.Items = accumulate(res.Items, data)
		res.Pages++
	}
	s.log.Debug().Str("url", res.URL).Int("pages", res.Pages).Int("items", len(res.Items)).Msg("depaginated")
	return res, nil
}

func accumulate(all []any, data any) []any {
	if data == nil {
		return all
	}
	if list, ok := data.([]any); ok {
		return append(all, list...)
	}
	return append(all, data)
}
