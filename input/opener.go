package input

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Opener opens the input named by a FileSpec URL for reading.
type Opener interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// FileOpener opens local paths and file:// URLs.
type FileOpener struct{}

func (FileOpener) Open(_ context.Context, rawURL string) (io.ReadCloser, error) {
	path := rawURL
	if strings.HasPrefix(rawURL, "file://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOpen, err)
		}
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return f, nil
}

// URLOpener opens local files and http(s) URLs. Remote requests are retried and rate limited.
type URLOpener struct {
	files   FileOpener
	client  *retryablehttp.Client
	limiter *rate.Limiter
}

// NewOpener returns a URLOpener configured by opts.
func NewOpener(opts ...Option) (*URLOpener, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(int(cfg.RateLimit), 1))
	}

	return &URLOpener{client: client, limiter: limiter}, nil
}

func (o *URLOpener) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	scheme := ""
	if i := strings.Index(rawURL, "://"); i > 0 {
		scheme = strings.ToLower(rawURL[:i])
	}

	switch scheme {
	case "", "file":
		return o.files.Open(ctx, rawURL)
	case "http", "https":
		return o.fetch(ctx, rawURL)
	default:
		return nil, fmt.Errorf("%w: %w %q", ErrOpen, ErrUnsupportedScheme, scheme)
	}
}

func (o *URLOpener) fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %w: %s", ErrOpen, ErrUnexpectedHTTPCode, resp.Status)
	}
	return resp.Body, nil
}
