package canvas

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Shape selects how a response is turned into a Result. Exactly one shape
// applies to a request.
type Shape int

const (
	// ShapeJSON returns the parsed JSON body.
	ShapeJSON Shape = iota
	// ShapeSingleItem returns one JSON value, unwrapped by the data key.
	ShapeSingleItem
	// ShapeAllPages follows next links and accumulates every page.
	ShapeAllPages
	// ShapeRaw returns the transport response untouched.
	ShapeRaw
	// ShapeStatusOnly returns only the status code.
	ShapeStatusOnly
	// ShapePoly inspects the body: lists are depaginated, anything else is
	// returned directly.
	ShapePoly
)

func (s Shape) String() string {
	switch s {
	case ShapeJSON:
		return "json"
	case ShapeSingleItem:
		return "single_item"
	case ShapeAllPages:
		return "all_pages"
	case ShapeRaw:
		return "raw"
	case ShapeStatusOnly:
		return "status_only"
	case ShapePoly:
		return "poly"
	default:
		return "shape(" + strconv.Itoa(int(s)) + ")"
	}
}

// Request describes one logical API call.
type Request struct {
	Method string
	// Path is resolved against the instance address unless it is already
	// an absolute http(s) URL.
	Path    string
	DataKey string
	// Data is sent as a form body for POST and PUT.
	Data url.Values
	// Params is sent as the query string for GET and DELETE.
	Params url.Values
	Shape  Shape
	// ForceURLEncodeData appends Data to the URL instead of sending a body.
	ForceURLEncodeData bool
	// NoRedirects stops the transport from following redirects.
	NoRedirects bool
}

// RequestOption adjusts a Request built by the verb helpers.
type RequestOption func(*Request)

func WithDataKey(key string) RequestOption {
	return func(r *Request) { r.DataKey = key }
}

func WithShape(shape Shape) RequestOption {
	return func(r *Request) { r.Shape = shape }
}

func SingleItem() RequestOption { return WithShape(ShapeSingleItem) }
func AllPages() RequestOption   { return WithShape(ShapeAllPages) }
func Raw() RequestOption        { return WithShape(ShapeRaw) }
func StatusOnly() RequestOption { return WithShape(ShapeStatusOnly) }
func Poly() RequestOption       { return WithShape(ShapePoly) }

func ForceURLEncode() RequestOption {
	return func(r *Request) { r.ForceURLEncodeData = true }
}

func NoRedirects() RequestOption {
	return func(r *Request) { r.NoRedirects = true }
}

// NewRequest builds a Request. Values go to the query string for GET and
// DELETE and to the body for POST and PUT.
func NewRequest(method, path string, values url.Values, opts ...RequestOption) *Request {
	r := &Request{Method: strings.ToUpper(method), Path: path}
	switch r.Method {
	case http.MethodPost, http.MethodPut:
		r.Data = values
	default:
		r.Params = values
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get issues a GET. Paginated shapes also send per_page.
func (s *Session) Get(ctx context.Context, path string, params url.Values, opts ...RequestOption) (*Result, error) {
	return s.Execute(ctx, NewRequest(http.MethodGet, path, params, opts...))
}

func (s *Session) Post(ctx context.Context, path string, data url.Values, opts ...RequestOption) (*Result, error) {
	return s.Execute(ctx, NewRequest(http.MethodPost, path, data, opts...))
}

func (s *Session) Put(ctx context.Context, path string, data url.Values, opts ...RequestOption) (*Result, error) {
	return s.Execute(ctx, NewRequest(http.MethodPut, path, data, opts...))
}

func (s *Session) Delete(ctx context.Context, path string, params url.Values, opts ...RequestOption) (*Result, error) {
	return s.Execute(ctx, NewRequest(http.MethodDelete, path, params, opts...))
}

// prepare adds per_page to paginated GET requests without touching the
// caller's request.
func (s *Session) prepare(r *Request) *Request {
	if !strings.EqualFold(r.Method, http.MethodGet) || (r.Shape != ShapeAllPages && r.Shape != ShapePoly) {
		return r
	}
	params := url.Values{}
	for k, v := range r.Params {
		params[k] = append([]string(nil), v...)
	}
	params.Set("per_page", strconv.Itoa(s.maxPerPage))
	cp := *r
	cp.Params = params
	return &cp
}

// Execute performs the request and shapes the response according to
// r.Shape. Paginated GET requests also send per_page. Status codes of 400
// and above yield an *APIError; failures in the transport itself yield a
// *TransportError.
func (s *Session) Execute(ctx context.Context, r *Request) (*Result, error) {
	r = s.prepare(r)
	uri := s.resolve(r.Path)
	if r.ForceURLEncodeData && len(r.Data) > 0 {
		sep := "?"
		if strings.Contains(uri, "?") {
			sep = "&"
		}
		uri += sep + r.Data.Encode()
	}

	method := strings.ToUpper(r.Method)
	client := s.client
	if r.NoRedirects {
		client = s.noRedirect
	}
	req := client.R().SetContext(ctx)

	switch method {
	case http.MethodPost, http.MethodPut:
		if len(r.Data) > 0 && !r.ForceURLEncodeData {
			req.SetFormDataFromValues(r.Data)
		}
	case http.MethodDelete:
		req.SetQueryParamsFromValues(r.Params)
	default:
		method = http.MethodGet
		req.SetQueryParamsFromValues(r.Params)
	}

	resp, err := req.Execute(method, uri)
	if err != nil {
		s.log.Debug().Err(err).Str("method", method).Str("url", uri).Msg("transport failure")
		return nil, &TransportError{Method: method, URL: uri, Err: err}
	}
	s.log.Debug().Str("method", method).Str("url", uri).Int("status", resp.StatusCode()).Msg("canvas request")

	if resp.IsError() {
		return nil, newAPIError(resp, nil)
	}
	return s.shape(ctx, resp, r)
}

func (s *Session) shape(ctx context.Context, resp *resty.Response, r *Request) (*Result, error) {
	switch r.Shape {
	case ShapeRaw:
		return &Result{Kind: KindRaw, Raw: resp, Status: resp.StatusCode()}, nil
	case ShapeStatusOnly:
		return &Result{Kind: KindStatus, Status: resp.StatusCode()}, nil
	case ShapeAllPages:
		return s.Depaginate(ctx, resp, r.DataKey)
	case ShapePoly:
		body, err := decodeBody(resp)
		if err != nil {
			return nil, err
		}
		if _, ok := body.([]any); !ok {
			return valueResult(resp, body), nil
		}
		if HasPaginationLinks(resp) {
			return s.Depaginate(ctx, resp, r.DataKey)
		}
		data, err := ExtractData(resp, r.DataKey)
		if err != nil {
			return nil, err
		}
		return valueResult(resp, data), nil
	case ShapeSingleItem:
		body, err := decodeBody(resp)
		if err != nil {
			return nil, err
		}
		if r.DataKey != "" {
			m, ok := body.(map[string]any)
			if !ok {
				return nil, newAPIError(resp, ErrUnexpectedShape)
			}
			v, ok := m[r.DataKey]
			if !ok {
				return nil, newAPIError(resp, ErrMissingDataKey)
			}
			body = v
		}
		return valueResult(resp, body), nil
	default:
		body, err := decodeBody(resp)
		if err != nil {
			return nil, err
		}
		return valueResult(resp, body), nil
	}
}
