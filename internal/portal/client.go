// Package portal manages authenticated interactions with the remote
// court-records portal: captcha challenges, search submissions and
// history fetches, with cookie continuity within one session and
// classified failures toward the retry policy.
package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/nikhilbhat/courtwatch/internal/faults"
	"github.com/nikhilbhat/courtwatch/internal/models"
	"github.com/nikhilbhat/courtwatch/internal/parser"
	"github.com/nikhilbhat/courtwatch/internal/search"
)

const (
	// defaultCaptchaPath serves the challenge image.
	defaultCaptchaPath = "/securimage/securimage_show.php"

	// courtContextPath primes the server-side court selection so search
	// queries route to the right data partition.
	courtContextPath = "/cases/case_no.php"

	// challengeTokenHeader carries the portal-issued challenge token when
	// the portal versions it explicitly.
	challengeTokenHeader = "X-Challenge-Token"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
)

// Config holds portal client settings.
type Config struct {
	BaseURL     string
	CallTimeout time.Duration
	// RequestsPerSecond paces all portal traffic from this client across
	// every session, so bulk runs do not trigger portal rate limiting.
	RequestsPerSecond float64
}

// Client is the shared entry point for portal sessions. One Client is
// safe for concurrent use; each pipeline run opens its own Session.
type Client struct {
	cfg     Config
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a portal client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 15 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// Challenge is one portal captcha: an opaque image plus a single-use
// token. A challenge expires after one submission, success or failure.
type Challenge struct {
	Image []byte
	Token string

	used bool
}

// Session is one authenticated interaction with the portal: its own
// cookie jar, a fixed court context, and the challenge/submit/fetch
// operations of one pipeline run. Not safe for concurrent use.
type Session struct {
	client *Client
	http   *http.Client
	court  models.Court
}

// NewSession opens a fresh session for the given bench: new cookie jar,
// court context primed on the server before any search.
func (c *Client) NewSession(ctx context.Context, court models.Court) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	s := &Session{
		client: c,
		court:  court,
		http: &http.Client{
			Jar: jar,
			// Redirects are classified, not followed: the portal signals
			// rejections via errormsg redirects.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	// Prime the court context; server-side validation routes subsequent
	// queries by the session's selected bench.
	ctxURL := c.cfg.BaseURL + courtContextPath + "?" + court.QueryParams().Encode()
	resp, err := s.get(ctx, ctxURL)
	if err != nil {
		return nil, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return s, nil
}

// OpenChallenge acquires a fresh captcha challenge. Every solver attempt
// calls this again: a rejected challenge is never reused.
func (s *Session) OpenChallenge(ctx context.Context) (*Challenge, error) {
	resp, err := s.get(ctx, s.client.cfg.BaseURL+defaultCaptchaPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, faults.Newf(faults.KindTransient,
			"challenge fetch returned status %d", resp.StatusCode)
	}
	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.Wrap(faults.KindTransient, "read challenge image", err)
	}
	if len(image) == 0 {
		return nil, faults.New(faults.KindTransient, "portal served an empty challenge image")
	}

	// The portal tracks the live challenge in the cookie session; when it
	// does not issue an explicit token, mint a correlation token so
	// single-use is still enforced and observable.
	token := resp.Header.Get(challengeTokenHeader)
	if token == "" {
		token = uuid.New().String()
	}
	return &Challenge{Image: image, Token: token}, nil
}

// Submit sends a solved challenge together with the search request and
// returns the raw result payload. The challenge is consumed either way.
func (s *Session) Submit(ctx context.Context, ch *Challenge, solved string, req search.Request) ([]byte, error) {
	if ch.used {
		return nil, ErrChallengeUsed
	}
	ch.used = true

	req = req.Clone()
	req.Params.Set("captcha", solved)
	return s.post(ctx, req)
}

// Fetch executes a request that needs session continuity but no captcha,
// such as the history expansion of a search result.
func (s *Session) Fetch(ctx context.Context, req search.Request) ([]byte, error) {
	return s.post(ctx, req.Clone())
}

// CaseTypes enumerates the case types registered on the session's bench,
// in portal order. Their codes are what case-number searches expect.
func (s *Session) CaseTypes(ctx context.Context) ([]models.CaseType, error) {
	req, err := search.BuildCaseTypes(s.court)
	if err != nil {
		return nil, err
	}
	payload, err := s.post(ctx, req)
	if err != nil {
		return nil, err
	}
	var types []models.CaseType
	for _, opt := range dropPlaceholder(parser.ParseOptions(payload)) {
		types = append(types, models.CaseType{Code: opt[0], Description: opt[1]})
	}
	return types, nil
}

// ActTypes enumerates the acts matching a query on the session's bench.
// An empty query lists everything.
func (s *Session) ActTypes(ctx context.Context, query string) ([]models.ActType, error) {
	req, err := search.BuildActTypes(s.court, query)
	if err != nil {
		return nil, err
	}
	payload, err := s.post(ctx, req)
	if err != nil {
		return nil, err
	}
	var types []models.ActType
	for _, opt := range dropPlaceholder(parser.ParseOptions(payload)) {
		types = append(types, models.ActType{Code: opt[0], Description: opt[1]})
	}
	return types, nil
}

// dropPlaceholder removes the leading "Select ..." row the portal puts
// in every dropdown payload.
func dropPlaceholder(options [][2]string) [][2]string {
	if len(options) == 0 {
		return nil
	}
	return options[1:]
}

// DownloadOrder retrieves the PDF document behind an order's filename
// reference on the authenticated session.
func (s *Session) DownloadOrder(ctx context.Context, rec *models.CaseRecord, order models.Order) ([]byte, error) {
	req, err := search.BuildOrderDocument(s.court, rec, order)
	if err != nil {
		return nil, err
	}
	resp, err := s.get(ctx, s.client.cfg.BaseURL+req.Path+"?"+req.Params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.Wrap(faults.KindTransient, "read order document", err)
	}
	if len(body) == 0 {
		return nil, faults.New(faults.KindTransient, "portal served an empty document")
	}
	return body, nil
}

func (s *Session) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := s.client.limiter.Wait(ctx); err != nil {
		return nil, faults.Wrap(faults.KindTransient, "rate limiter", err)
	}
	callCtx, cancel := context.WithTimeout(ctx, s.client.cfg.CallTimeout)
	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		cancel()
		return nil, classifyTransport(err)
	}
	// Tie body lifetime to the call timeout.
	resp.Body = &cancelingBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (s *Session) post(ctx context.Context, req search.Request) ([]byte, error) {
	if err := s.client.limiter.Wait(ctx); err != nil {
		return nil, faults.Wrap(faults.KindTransient, "rate limiter", err)
	}
	callCtx, cancel := context.WithTimeout(ctx, s.client.cfg.CallTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost,
		s.client.cfg.BaseURL+req.Path, strings.NewReader(req.Params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.Wrap(faults.KindTransient, "read response body", err)
	}
	if err := classifyBody(body); err != nil {
		return nil, err
	}
	return body, nil
}

// classifyTransport maps transport-level failures. Network errors and
// per-call timeouts are transient by definition.
func classifyTransport(err error) error {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout(),
		errors.Is(err, context.DeadlineExceeded):
		return faults.Wrap(faults.KindTransient, "portal call timed out", err)
	default:
		return faults.Wrap(faults.KindTransient, "portal call failed", err)
	}
}

// classifyStatus maps HTTP status semantics: errormsg redirects carry
// the portal's own rejection, 5xx is transient, unexplained 4xx is
// treated as a malformed response.
func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusFound:
		loc := resp.Header.Get("Location")
		if msg, ok := errormsgRedirect(loc); ok {
			return faults.Newf(faults.KindNotFound, "portal rejected the query: %s", msg)
		}
		return faults.Newf(faults.KindTransient, "unexpected redirect to %q", loc)
	case resp.StatusCode >= 500:
		return faults.Newf(faults.KindTransient, "portal returned status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return faults.Newf(faults.KindTransient, "unexpected status %d", resp.StatusCode)
	}
	return nil
}

// errormsgRedirect extracts the message of the portal's errormsg
// redirect convention.
func errormsgRedirect(location string) (string, bool) {
	if !strings.HasPrefix(location, "errormsg") {
		return "", false
	}
	if u, err := url.Parse(location); err == nil && u.RawQuery != "" {
		return u.RawQuery, true
	}
	return location, true
}

// cancelingBody releases the per-call timeout when the body is closed.
type cancelingBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelingBody) Close() error {
	b.cancel()
	return b.ReadCloser.Close()
}
