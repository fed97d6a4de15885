package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// SessionHandler receives session changes made by the [AuthTransport].
type SessionHandler interface {
	// TokensRefreshed stores the new pair in memory and on disk in one step.
	TokensRefreshed(tok *oauth2.Token)
	// SessionExpired tears the session down (logout).
	SessionExpired()
}

// AuthTransport attaches the bearer token and recovers from an expired access token.
//
// Tokens are read from Memory first and Storage second. A 401 triggers at most one
// refresh-and-replay per request; concurrent refreshes of the same token are collapsed.
type AuthTransport struct {
	Base      http.RoundTripper
	Memory    oauth2.TokenSource
	Storage   oauth2.TokenSource
	Refresher Refresher
	Session   SessionHandler
	Logger    *log.Logger

	// RefreshTimeout bounds one shared refresh call (30s when zero).
	RefreshTimeout time.Duration

	group singleflight.Group
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	first, err := rewind(req)
	if err != nil {
		return nil, err
	}

	sent := t.resolve(func(tok *oauth2.Token) string { return tok.AccessToken })
	if sent != "" {
		setBearer(first, sent)
	}

	resp, err := t.base().RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// Another request may already have rotated the pair while this one was in flight.
	if current := t.resolve(func(tok *oauth2.Token) string { return tok.AccessToken }); current != "" && current != sent {
		discard(resp)
		return t.replay(req, current)
	}

	refresh := t.resolve(func(tok *oauth2.Token) string { return tok.RefreshToken })
	if refresh == "" || t.Refresher == nil {
		t.logger().Warn("unauthorized with no refresh token, ending session", "path", req.URL.Path)
		t.expire()
		return resp, nil
	}
	discard(resp)

	tok, err := t.refresh(req.Context(), refresh)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		t.logger().Warn("token refresh failed, ending session", "error", err)
		t.expire()
		return nil, err
	}
	return t.replay(req, tok.AccessToken)
}

// replay re-issues req once with access as its bearer token.
func (t *AuthTransport) replay(req *http.Request, access string) (*http.Response, error) {
	retry, err := rewind(req)
	if err != nil {
		return nil, err
	}
	setBearer(retry, access)
	return t.base().RoundTrip(retry)
}

// refresh waits for the shared refresh of refreshToken or for ctx, whichever ends first.
// The flight itself outlives any one caller and is bounded by RefreshTimeout.
func (t *AuthTransport) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ch := t.group.DoChan(refreshToken, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.refreshTimeout())
		defer cancel()

		tok, err := t.Refresher.Refresh(rctx, refreshToken)
		if err != nil {
			return nil, err
		}
		if t.Session != nil {
			t.Session.TokensRefreshed(tok)
		}
		return tok, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrRefreshFailed, res.Err)
		}
		if res.Shared {
			t.logger().Debug("joined in-flight token refresh")
		}
		return res.Val.(*oauth2.Token), nil
	}
}

func (t *AuthTransport) refreshTimeout() time.Duration {
	if t.RefreshTimeout > 0 {
		return t.RefreshTimeout
	}
	return 30 * time.Second
}

// resolve returns the first non-empty field of the memory then storage token.
func (t *AuthTransport) resolve(field func(*oauth2.Token) string) string {
	for _, src := range []oauth2.TokenSource{t.Memory, t.Storage} {
		if src == nil {
			continue
		}
		tok, err := src.Token()
		if err != nil || tok == nil {
			continue
		}
		if v := field(tok); v != "" {
			return v
		}
	}
	return ""
}

func (t *AuthTransport) expire() {
	if t.Session != nil {
		t.Session.SessionExpired()
	}
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *AuthTransport) logger() *log.Logger {
	if t.Logger == nil {
		return shared.DiscardLogger()
	}
	return t.Logger
}

// RetryTransport re-issues requests answered with 429 Too Many Requests.
//
// The wait is the Retry-After header when present, otherwise BaseDelay doubled
// per attempt; both are capped at MaxDelay. After MaxRetries retries the
// request fails with [shared.ErrRateLimited].
type RetryTransport struct {
	Base       http.RoundTripper
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Logger     *log.Logger

	// Sleep waits for d or until ctx is done. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	sleep := t.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 0; ; attempt++ {
		r, err := rewind(req)
		if err != nil {
			return nil, err
		}

		resp, err := base.RoundTrip(r)
		if err != nil || resp.StatusCode != http.StatusTooManyRequests {
			return resp, err
		}

		if attempt >= t.MaxRetries {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("%w after %d retries: %w", shared.ErrRateLimited, attempt, newAPIError(resp.StatusCode, body))
		}

		delay := t.delay(resp.Header.Get("Retry-After"), attempt)
		discard(resp)

		if t.Logger != nil {
			t.Logger.Warn("rate limited, retrying", "path", req.URL.Path, "attempt", attempt+1, "delay", delay)
		}
		if err := sleep(req.Context(), delay); err != nil {
			return nil, err
		}
	}
}

// delay computes the wait before retry number attempt+1.
func (t *RetryTransport) delay(retryAfter string, attempt int) time.Duration {
	d, ok := ParseRetryAfter(retryAfter, time.Now())
	if !ok {
		d = Backoff(t.BaseDelay, t.MaxDelay, attempt)
	}
	if t.MaxDelay > 0 && d > t.MaxDelay {
		d = t.MaxDelay
	}
	return d
}

// ParseRetryAfter reads a Retry-After value in delta-seconds or HTTP-date form.
func ParseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

// Backoff returns base doubled attempt times, capped at max. A zero base means one second.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	d := base
	for range attempt {
		d *= 2
		if max > 0 && d >= max {
			return max
		}
	}
	return d
}

// LimitTransport spaces outgoing requests with a token bucket.
type LimitTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

func (t *LimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// PipelineOpts configures [NewPipeline].
type PipelineOpts struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration

	Memory    oauth2.TokenSource
	Storage   oauth2.TokenSource
	Refresher Refresher
	Session   SessionHandler
	Logger    *log.Logger

	// Base is the wire transport; defaults to a clone of [http.DefaultTransport].
	Base  http.RoundTripper
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewPipeline assembles the intercepted client: retry(auth(limit(base))).
//
// Timeout bounds each attempt's wait for response headers rather than the
// whole call, so 429 waits do not count against it.
func NewPipeline(opts PipelineOpts) *http.Client {
	base := opts.Base
	if base == nil {
		base = NewBaseTransport(opts.Timeout)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	var rt http.RoundTripper = &LimitTransport{Base: base, Limiter: limiter}
	rt = &AuthTransport{
		Base:      rt,
		Memory:    opts.Memory,
		Storage:   opts.Storage,
		Refresher: opts.Refresher,
		Session:   opts.Session,
		Logger:    opts.Logger,

		RefreshTimeout: opts.Timeout,
	}
	rt = &RetryTransport{
		Base:       rt,
		MaxRetries: opts.MaxRetries,
		BaseDelay:  opts.BaseDelay,
		MaxDelay:   opts.MaxDelay,
		Logger:     opts.Logger,
		Sleep:      opts.Sleep,
	}
	return &http.Client{Transport: rt}
}

// NewBaseTransport clones the default transport with a per-attempt header timeout.
func NewBaseTransport(timeout time.Duration) http.RoundTripper {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if timeout > 0 {
		tr.ResponseHeaderTimeout = timeout
	}
	return tr
}

// rewind clones req with a fresh body so it can be sent again.
func rewind(req *http.Request) (*http.Request, error) {
	r := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return r, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	r.Body = body
	return r, nil
}

func setBearer(req *http.Request, access string) {
	(&oauth2.Token{AccessToken: access, TokenType: "Bearer"}).SetAuthHeader(req)
}

// discard drains and closes a response that will not be returned.
func discard(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
