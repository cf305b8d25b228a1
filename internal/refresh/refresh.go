// Package refresh downloads the Canvas API spec files from the upstream
// documentation index.
package refresh

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/tylerclair/canopy/internal/config"
	"github.com/tylerclair/canopy/internal/model"
	"golang.org/x/sync/errgroup"
)

// Report summarizes a refresh run. Keys of Failed are spec file names.
type Report struct {
	Updated   []string
	Converted []string
	Failed    map[string]error
}

// Updater fetches the index and every spec it references.
type Updater struct {
	cfg     config.RefreshConfig
	specDir string
	client  *resty.Client
	log     zerolog.Logger

	mu     sync.Mutex
	report *Report
}

func New(cfg config.RefreshConfig, specDir string, log zerolog.Logger) *Updater {
	return &Updater{
		cfg:     cfg,
		specDir: specDir,
		client:  resty.New().SetRetryCount(0),
		log:     log,
	}
}

// SetHTTPClient replaces the transport used for every download.
func (u *Updater) SetHTTPClient(hc *http.Client) *Updater {
	u.client = resty.NewWithClient(hc)
	return u
}

// Run refreshes every spec. Only a failure to fetch or parse the index is
// returned as an error; per-spec failures are recorded in the report.
func (u *Updater) Run(ctx context.Context) (*Report, error) {
	indexURL := u.url(u.cfg.DocsIndex)
	resp, err := u.client.R().SetContext(ctx).Get(indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch index %s: %w", indexURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch index %s: status %d", indexURL, resp.StatusCode())
	}
	index, err := model.ParseIndex(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("parse index %s: %w", indexURL, err)
	}

	if err := os.MkdirAll(u.specDir, 0o755); err != nil {
		return nil, err
	}
	if u.cfg.ConverterURL != "" {
		if err := os.MkdirAll(u.convertedDir(), 0o755); err != nil {
			return nil, err
		}
	}

	u.report = &Report{Failed: make(map[string]error)}
	var g errgroup.Group
	g.SetLimit(max(1, u.cfg.Concurrency))
	for _, api := range index.APIs {
		name := filepath.Base(api.FileName())
		if name == "" || name == "." {
			continue
		}
		g.Go(func() error {
			u.fetch(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(u.report.Updated)
	slices.Sort(u.report.Converted)
	u.log.Info().Int("updated", len(u.report.Updated)).Int("failed", len(u.report.Failed)).Msg("spec refresh finished")
	return u.report, nil
}

func (u *Updater) url(name string) string {
	return strings.TrimSuffix(u.cfg.DocsBaseURL, "/") + "/" + strings.TrimPrefix(name, "/")
}

func (u *Updater) convertedDir() string {
	if u.cfg.ConvertedDir != "" {
		return u.cfg.ConvertedDir
	}
	return filepath.Join(u.specDir, "openapi")
}

func (u *Updater) fail(name string, err error) {
	u.log.Warn().Err(err).Str("spec", name).Msg("spec refresh failed")
	u.mu.Lock()
	u.report.Failed[name] = err
	u.mu.Unlock()
}

func (u *Updater) fetch(ctx context.Context, name string) {
	resp, err := u.client.R().SetContext(ctx).Get(u.url(name))
	if err != nil {
		u.fail(name, err)
		return
	}
	if resp.StatusCode() != http.StatusOK {
		u.fail(name, fmt.Errorf("something went wrong trying to retrieve %s: status code %d", name, resp.StatusCode()))
		return
	}

	path := filepath.Join(u.specDir, name)
	if err := os.WriteFile(path, resp.Body(), 0o644); err != nil {
		u.fail(name, err)
		return
	}
	u.log.Info().Str("file", path).Msg("updated")
	u.mu.Lock()
	u.report.Updated = append(u.report.Updated, name)
	u.mu.Unlock()

	if u.cfg.ConverterURL != "" {
		if err := u.convert(ctx, name, resp.Body()); err != nil {
			u.fail(name, fmt.Errorf("convert: %w", err))
		}
	}
}

// convert posts a spec to the conversion service and keeps the result if it
// loads as an OpenAPI 3 document.
func (u *Updater) convert(ctx context.Context, name string, spec []byte) error {
	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(spec).
		Post(u.cfg.ConverterURL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("status %d", resp.StatusCode())
	}
	doc, err := openapi3.NewLoader().LoadFromData(resp.Body())
	if err != nil {
		return fmt.Errorf("invalid openapi document: %w", err)
	}
	if doc.OpenAPI == "" {
		return fmt.Errorf("invalid openapi document: missing version")
	}

	path := filepath.Join(u.convertedDir(), name)
	if err := os.WriteFile(path, resp.Body(), 0o644); err != nil {
		return err
	}
	u.log.Debug().Str("file", path).Msg("converted")
	u.mu.Lock()
	u.report.Converted = append(u.report.Converted, name)
	u.mu.Unlock()
	return nil
}
