package artic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/rshade/pagesel/internal/logging"
)

// Client defaults.
const (
	DefaultBaseURL   = "https://api.artic.edu/api/v1/artworks"
	DefaultPageSize  = 12
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 1.0
	DefaultRateBurst = 5
	DefaultUserAgent = "pagesel"

	// aicUserAgentHeader is the header the AIC API asks clients to identify with.
	aicUserAgentHeader = "AIC-User-Agent"
)

// Client fetches single pages of artworks.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	PageSize   int
	Fields     []string
	UserAgent  string

	limiter *rate.Limiter
	group   singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the collection endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.BaseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

// WithPageSize sets the number of records requested per page.
func WithPageSize(size int) Option {
	return func(c *Client) {
		c.PageSize = size
	}
}

// WithFields sets the field projection. An empty list requests every field.
func WithFields(fields []string) Option {
	return func(c *Client) {
		c.Fields = fields
	}
}

// WithUserAgent sets the User-Agent and AIC-User-Agent headers.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.UserAgent = ua
	}
}

// WithRateLimit limits outbound requests to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.HTTPClient = &http.Client{Timeout: d}
	}
}

// NewClient creates a Client with the given options.
//
// Example:
//
//	client := artic.NewClient(
//	    artic.WithPageSize(25),
//	    artic.WithRateLimit(2, 5),
//	)
func NewClient(opts ...Option) *Client {
	c := &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		PageSize:   DefaultPageSize,
		Fields:     DefaultFields,
		UserAgent:  DefaultUserAgent,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateBurst),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage fetches the 1-based page. Errors are always *FetchError.
//
// Concurrent calls for the same page share one HTTP request; the returned
// result must be treated as read-only. When ctx is cancelled FetchPage returns
// immediately, while a shared request in flight still completes for any other
// caller waiting on it.
func (c *Client) FetchPage(ctx context.Context, page int) (*PageResult, error) {
	if page < 1 {
		return nil, &FetchError{
			Page:    page,
			Message: fmt.Sprintf("invalid page %d", page),
			Err:     ErrInvalidPage,
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Page: page, Message: err.Error(), Err: err}
	}

	key := strconv.Itoa(page) + "/" + strconv.Itoa(c.PageSize)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), page)
	})

	select {
	case <-ctx.Done():
		return nil, &FetchError{Page: page, Message: "request cancelled", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		result, _ := res.Val.(*PageResult)
		return result, nil
	}
}

func (c *Client) fetch(ctx context.Context, page int) (*PageResult, error) {
	log := logging.ComponentLogger(logging.FromContext(ctx), "artic")
	start := time.Now()

	pageURL, err := c.pageURL(page)
	if err != nil {
		return nil, &FetchError{Page: page, Message: err.Error(), Err: err}
	}

	log.Debug().
		Ctx(ctx).
		Str("operation", "fetch_page").
		Int("page", page).
		Int("page_size", c.PageSize).
		Str("url", pageURL).
		Msg("fetching page")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{Page: page, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
		req.Header.Set(aicUserAgentHeader, c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Int("page", page).Msg("page request failed")
		return nil, &FetchError{
			Page:    page,
			Message: err.Error(),
			Err:     fmt.Errorf("%w: %w", ErrTransport, err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Warn().
			Ctx(ctx).
			Int("page", page).
			Int("status", resp.StatusCode).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("page request returned error status")
		return nil, statusError(page, resp.StatusCode)
	}

	var result PageResult
	if decodeErr := json.NewDecoder(resp.Body).Decode(&result); decodeErr != nil {
		return nil, &FetchError{
			Page:       page,
			StatusCode: resp.StatusCode,
			Message:    "invalid response: " + decodeErr.Error(),
			Err:        fmt.Errorf("%w: %w", ErrDecode, decodeErr),
		}
	}

	if normErr := c.normalize(&result, page); normErr != nil {
		return nil, &FetchError{
			Page:       page,
			StatusCode: resp.StatusCode,
			Message:    "invalid response: " + normErr.Error(),
			Err:        normErr,
		}
	}

	log.Debug().
		Ctx(ctx).
		Str("operation", "fetch_page").
		Int("page", page).
		Int("status", resp.StatusCode).
		Int("records", len(result.Data)).
		Int("total", result.Pagination.Total).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("page fetched")

	return &result, nil
}

// normalize fills pagination fields the server omitted and rejects pages that
// cannot be mapped onto global positions.
func (c *Client) normalize(result *PageResult, page int) error {
	p := &result.Pagination
	if p.CurrentPage == 0 {
		p.CurrentPage = page
	}
	if p.Limit == 0 {
		p.Limit = c.PageSize
	}
	if p.CurrentPage != page {
		return fmt.Errorf("%w: requested page %d, got page %d", ErrDecode, page, p.CurrentPage)
	}
	if len(result.Data) > p.Limit {
		return fmt.Errorf("%w: %d records exceed page size %d", ErrDecode, len(result.Data), p.Limit)
	}
	if p.TotalPages == 0 && p.Total > 0 {
		p.TotalPages = (p.Total + p.Limit - 1) / p.Limit
	}
	return nil
}

func (c *Client) pageURL(page int) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL %q: %w", c.BaseURL, err)
	}

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(c.PageSize))
	if len(c.Fields) > 0 {
		q.Set("fields", strings.Join(c.Fields, ","))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
