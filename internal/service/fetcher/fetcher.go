// Package fetcher downloads files from the shared-file host, handling the
// virus-scan confirmation interstitial and the HTML fallback URL.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain/content"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/observability/types"
)

const (
	virusScanMarker     = "virus scan warning"
	warningCookiePrefix = "download_warning"
)

var filenamePattern = regexp.MustCompile(`filename="?([^"]+)"?`)

// Fetcher implements domain.FileFetcher
type Fetcher struct {
	client   domain.HTTPClient
	baseURL  string
	authHost string
	maxSize  int64
	logger   types.Logger
	metrics  types.Metrics
}

// New creates a fetcher for the host described by cfg
func New(client domain.HTTPClient, cfg config.DriveConfig, logger types.Logger, metrics types.Metrics) *Fetcher {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = config.DefaultDriveConfig().MaxFileSize
	}
	return &Fetcher{
		client:   client,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		authHost: cfg.AuthHost,
		maxSize:  cfg.MaxFileSize,
		logger:   logger,
		metrics:  metrics,
	}
}

// page is a fully read response
type page struct {
	status   int
	header   http.Header
	cookies  []*http.Cookie
	finalURL string
	body     []byte
}

// Fetch retrieves the file named by fileID. Every request of one fetch
// goes through the same session so host cookies are honored.
func (f *Fetcher) Fetch(ctx context.Context, fileID string) (*domain.FetchResult, error) {
	f.metrics.StartOperation("fetch")
	defer f.metrics.EndOperation("fetch")
	startTime := time.Now()
	defer func() {
		f.metrics.RecordDuration("fetch", time.Since(startTime).Seconds())
	}()

	ctx = context.WithValue(ctx, types.FileIDKey, fileID)
	f.logger.Info(ctx, "Fetching file", nil)

	session, err := f.client.NewSession()
	if err != nil {
		return nil, f.fail(ctx, domain.NewFetchError(domain.KindTransport, fileID, "", err))
	}

	downloadURL := f.downloadURL(fileID)
	p, err := f.get(ctx, session, fileID, downloadURL)
	if err != nil {
		return nil, f.fail(ctx, err)
	}

	if strings.Contains(strings.ToLower(string(p.body)), virusScanMarker) {
		if token, ok := confirmToken(p.cookies); ok {
			f.logger.Debug(ctx, "Confirming virus scan warning", nil)
			p, err = f.get(ctx, session, fileID, downloadURL+"&confirm="+url.QueryEscape(token))
			if err != nil {
				return nil, f.fail(ctx, err)
			}
		}
	}

	if content.IsHTML(p.header.Get("Content-Type")) {
		f.logger.Debug(ctx, "Host answered with HTML, trying alternate URL", nil)
		p, err = f.get(ctx, session, fileID, f.alternateURL(fileID))
		if err != nil {
			return nil, f.fail(ctx, err)
		}

		if content.IsHTML(p.header.Get("Content-Type")) {
			if f.authHost != "" && strings.Contains(p.finalURL, f.authHost) {
				return nil, f.fail(ctx, domain.NewFetchError(domain.KindAuthRequired, fileID, domain.MsgAuthRequired, nil))
			}
			return nil, f.fail(ctx, domain.NewFetchError(domain.KindNotPublic, fileID, domain.MsgNotPublic, nil))
		}
	}

	if p.status < 200 || p.status > 299 {
		return nil, f.fail(ctx, domain.NewFetchError(domain.KindBadStatus, fileID,
			fmt.Sprintf("Unable to download file. Host responded with status %d.", p.status), nil))
	}

	result := &domain.FetchResult{
		FileID:      fileID,
		Content:     p.body,
		Filename:    filenameFrom(p.header.Get("Content-Disposition")),
		ContentType: content.Detect(p.body, p.header.Get("Content-Type")),
		Size:        int64(len(p.body)),
	}

	f.metrics.RecordSuccess("fetch")
	f.metrics.RecordFileSize(content.Label(result.ContentType), result.Size)
	f.logger.Info(ctx, "File fetched", types.Fields{
		"filename":     result.Filename,
		"content_type": result.ContentType,
		"size":         result.Size,
	})

	return result, nil
}

func (f *Fetcher) downloadURL(fileID string) string {
	return fmt.Sprintf("%s/uc?export=download&id=%s", f.baseURL, url.QueryEscape(fileID))
}

func (f *Fetcher) alternateURL(fileID string) string {
	return fmt.Sprintf("%s/u/0/uc?id=%s&export=download", f.baseURL, url.QueryEscape(fileID))
}

// get issues one request and reads the body up to the size limit
func (f *Fetcher) get(ctx context.Context, session domain.HTTPSession, fileID, rawURL string) (*page, error) {
	resp, err := session.Get(ctx, rawURL)
	if err != nil {
		return nil, domain.NewFetchError(domain.KindTransport, fileID, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, domain.NewFetchError(domain.KindRead, fileID, "", fmt.Errorf("failed to read response body: %w", err))
	}
	if int64(len(body)) > f.maxSize {
		return nil, domain.NewFetchError(domain.KindTooLarge, fileID,
			fmt.Sprintf("File exceeds the maximum allowed size of %d bytes.", f.maxSize), nil)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &page{
		status:   resp.StatusCode,
		header:   resp.Header,
		cookies:  resp.Cookies(),
		finalURL: finalURL,
		body:     body,
	}, nil
}

func (f *Fetcher) fail(ctx context.Context, err error) error {
	kind := "unknown"
	if fe, ok := domain.AsFetchError(err); ok {
		kind = string(fe.Kind)
	}

	f.metrics.RecordError("fetch", kind)
	f.logger.Error(ctx, "Fetch failed", err, types.Fields{"error_kind": kind})
	return err
}

// confirmToken returns the value of the first download_warning cookie
func confirmToken(cookies []*http.Cookie) (string, bool) {
	for _, c := range cookies {
		if strings.HasPrefix(c.Name, warningCookiePrefix) {
			return c.Value, true
		}
	}
	return "", false
}

// filenameFrom reads the plain filename parameter of a Content-Disposition
// value. RFC 5987 filename* values are only used when no plain one exists.
// The name is returned as sent; callers that build paths from it sanitize it.
func filenameFrom(disposition string) string {
	if m := filenamePattern.FindStringSubmatch(disposition); m != nil {
		return m[1]
	}

	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}

	return content.DefaultFilename
}
