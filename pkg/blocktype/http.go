package blocktype

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anchit2000/flowcanvas/pkg/cache"
	"github.com/anchit2000/flowcanvas/pkg/errors"
	"github.com/anchit2000/flowcanvas/pkg/observability"
)

const httpTimeout = 10 * time.Second

// HTTPSource fetches descriptors from a template server. The server
// answers GET <base>/<type>.toml with the descriptor and GET <base>/index.json
// with a JSON array of type names.
//
// Transport errors and 5xx responses are retried with exponential backoff.
type HTTPSource struct {
	base     string
	http     *http.Client
	attempts int
	delay    time.Duration
}

// HTTPOption configures an [HTTPSource].
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.http = c }
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.attempts, s.delay = attempts, delay }
}

// NewHTTPSource creates a source for the template server at base.
func NewHTTPSource(base string, opts ...HTTPOption) (*HTTPSource, error) {
	if err := errors.ValidateURL(base); err != nil {
		return nil, err
	}
	s := &HTTPSource{
		base:     strings.TrimSuffix(base, "/"),
		http:     &http.Client{Timeout: httpTimeout},
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name implements [Source].
func (s *HTTPSource) Name() string { return s.base }

// Fetch implements [Source].
func (s *HTTPSource) Fetch(ctx context.Context, blockType string) ([]byte, error) {
	if err := errors.ValidateBlockType(blockType); err != nil {
		return nil, err
	}
	var data []byte
	err := cache.Retry(ctx, s.attempts, s.delay, func() error {
		var err error
		data, err = s.get(ctx, "/"+blockType+".toml")
		return err
	})
	return data, err
}

// List implements [Source].
func (s *HTTPSource) List(ctx context.Context) ([]string, error) {
	var data []byte
	err := cache.Retry(ctx, s.attempts, s.delay, func() error {
		var err error
		data, err = s.get(ctx, "/index.json")
		return err
	})
	if stderrors.Is(err, ErrUnknownType) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var types []string
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "template index from %s", s.base)
	}
	return types, nil
}

func (s *HTTPSource) get(ctx context.Context, path string) ([]byte, error) {
	u, err := url.Parse(s.base + path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/toml, application/json")

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := s.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrUnknownType
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

var _ Source = (*HTTPSource)(nil)
