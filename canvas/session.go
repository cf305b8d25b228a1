// Package canvas is a client for the Canvas LMS REST API. A Session wraps an
// HTTP transport with token authentication, transparent Link header
// pagination and JSON payload extraction.
package canvas

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultMaxPerPage = 100
	DefaultWorkers    = 4
)

// Session is an authenticated connection context to one Canvas instance.
// It is safe for concurrent use and is never mutated after New returns.
type Session struct {
	instanceAddress string
	accessToken     string
	maxPerPage      int

	client     *resty.Client
	noRedirect *resty.Client
	workers    *semaphore.Weighted
	log        zerolog.Logger
}

type sessionConfig struct {
	maxPerPage int
	timeout    time.Duration
	httpClient *http.Client
	authHeader string
	authScheme string
	workers    int64
	log        zerolog.Logger
}

// Option configures a Session.
type Option func(*sessionConfig)

// WithMaxPerPage sets the per_page value sent with paginated GET requests.
func WithMaxPerPage(n int) Option {
	return func(c *sessionConfig) { c.maxPerPage = n }
}

// WithTimeout sets the per-request transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *sessionConfig) { c.timeout = d }
}

// WithHTTPClient supplies the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *sessionConfig) { c.httpClient = hc }
}

// WithAuthHeader sends the token in a custom header. An empty scheme sends
// the bare token.
func WithAuthHeader(name, scheme string) Option {
	return func(c *sessionConfig) {
		c.authHeader = name
		c.authScheme = scheme
	}
}

// WithWorkers bounds how many async calls may run at once.
func WithWorkers(n int) Option {
	return func(c *sessionConfig) { c.workers = int64(n) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *sessionConfig) { c.log = l }
}

// New creates a Session for the instance at instanceAddress.
func New(instanceAddress, accessToken string, opts ...Option) *Session {
	cfg := &sessionConfig{
		maxPerPage: DefaultMaxPerPage,
		authHeader: "Authorization",
		authScheme: "Bearer",
		workers:    DefaultWorkers,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.maxPerPage <= 0 {
		cfg.maxPerPage = DefaultMaxPerPage
	}
	if cfg.workers <= 0 {
		cfg.workers = DefaultWorkers
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{}
	}
	token := accessToken
	if cfg.authScheme != "" {
		token = cfg.authScheme + " " + accessToken
	}

	s := &Session{
		instanceAddress: strings.TrimSuffix(instanceAddress, "/"),
		accessToken:     accessToken,
		maxPerPage:      cfg.maxPerPage,
		client:          newTransport(hc, cfg, token),
		workers:         semaphore.NewWeighted(cfg.workers),
		log:             cfg.log,
	}

	// Same connection pool, redirects surfaced to the caller.
	noFollow := *hc
	noFollow.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	s.noRedirect = newTransport(&noFollow, cfg, token)
	return s
}

func newTransport(hc *http.Client, cfg *sessionConfig, token string) *resty.Client {
	c := resty.NewWithClient(hc).
		SetHeader(cfg.authHeader, token).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if cfg.timeout > 0 {
		c.SetTimeout(cfg.timeout)
	}
	return c
}

// InstanceAddress returns the base address requests are resolved against.
func (s *Session) InstanceAddress() string { return s.instanceAddress }

// MaxPerPage returns the per_page value used for paginated requests.
func (s *Session) MaxPerPage() int { return s.maxPerPage }

// resolve turns a path into an absolute URL. Anything already carrying a
// scheme is used as is.
func (s *Session) resolve(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return s.instanceAddress + pathOrURL
}
