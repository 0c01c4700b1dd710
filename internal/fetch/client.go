package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUnreachable marks a transport failure or non-200 response after all
// retries were spent. Callers skip the entity and log the gap.
var ErrUnreachable = errors.New("page unreachable")

// Options carries the fixed request state the target site expects. It is
// passed in explicitly so concurrent workers share an immutable session
// instead of racing on module-level headers.
type Options struct {
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	UserAgent string
	Platform  string // platform cookie, controls which prices the page renders
	SessionID string // PHPSESSID cookie
}

// Session is a configured HTTP client shared by all fetch workers.
type Session struct {
	client *resty.Client
}

func NewSession(opts Options) *Session {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryWait * 8).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeaders(map[string]string{
			"User-Agent":      opts.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": "en,en-US;q=0.7",
			"Connection":      "keep-alive",
		})

	cookies := []*http.Cookie{
		{Name: "platform", Value: opts.Platform},
		{Name: "theme_player", Value: "true"},
	}
	if opts.SessionID != "" {
		cookies = append(cookies, &http.Cookie{Name: "PHPSESSID", Value: opts.SessionID})
	}
	client.SetCookies(cookies)

	return &Session{client: client}
}

// Get fetches url and returns the response body. Any transport error or
// non-200 status is reported as ErrUnreachable.
func (s *Session) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreachable, url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ErrUnreachable, url, resp.StatusCode())
	}
	return resp.Body(), nil
}
