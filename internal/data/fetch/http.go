package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/penwyp/go-activity-timeline/internal/util"
)

const (
	DefaultTimeout  = 15 * time.Second
	maxResponseSize = 32 * 1024 * 1024
	requestIDHeader = "X-Request-Id"
)

// HTTPSource fetches a payload with a GET request.
type HTTPSource struct {
	url     string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPSource creates an HTTP source. A nil limiter disables throttling.
func NewHTTPSource(url string, timeout time.Duration, token string, limiter *rate.Limiter) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSource{
		url:     url,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (s *HTTPSource) Name() string { return s.url }

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait for %s: %w", s.url, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", s.url, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", s.url, err)
	}
	defer resp.Body.Close()

	util.Logger().Debug().
		Str("url", s.url).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Fetched source")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s returned %d (request %s)", ErrUnexpectedStatus, s.url, resp.StatusCode, requestID)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", s.url, err)
	}
	return data, nil
}
