// Package apiclient is the HTTP wrapper every domain service goes through. It
// attaches the bearer token and silently refreshes it when the API answers 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/homestay/homestay-client/internal/pkg/logger"
	"github.com/homestay/homestay-client/internal/pkg/metrics"
	"github.com/homestay/homestay-client/internal/pkg/response"
	"github.com/homestay/homestay-client/internal/pkg/session"
)

const (
	defaultTimeout    = 15 * time.Second
	DefaultMaxRefresh = 4
	maxResponseBytes  = 8 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	UserAgent         string
	RateLimitRPS      int
	MaxRefreshRetries int
	// HTTPClient overrides the tuned default client. Its Jar, when nil, is
	// replaced by a cookie jar so the refresh cookie survives between calls.
	HTTPClient *http.Client
}

// Client talks to the marketplace API on behalf of one session.
type Client struct {
	baseURL    string
	ua         string
	http       *http.Client
	session    *session.Session
	rl         *rate.Limiter
	maxRefresh int
	refreshes  singleflight.Group
	log        zerolog.Logger
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded unless RawBody is set.
	Body        any
	RawBody     []byte
	ContentType string
}

// New creates a Client bound to sess.
func New(opts Options, sess *session.Session) *Client {
	if sess == nil {
		sess = session.New()
	}
	maxRefresh := opts.MaxRefreshRetries
	if maxRefresh <= 0 {
		maxRefresh = DefaultMaxRefresh
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = newHTTPClient(opts.Timeout)
	}
	if hc.Jar == nil {
		jar, _ := cookiejar.New(nil)
		hc.Jar = jar
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		ua:         opts.UserAgent,
		http:       hc,
		session:    sess,
		maxRefresh: maxRefresh,
		log:        logger.Component("apiclient"),
	}
	if opts.RateLimitRPS > 0 {
		c.rl = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitRPS)
	}
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session { return c.session }

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
	return err
}

// GetPage fetches a list endpoint and returns its pagination metadata.
func (c *Client) GetPage(ctx context.Context, path string, query url.Values, out any) (*response.Meta, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
	return err
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
	return err
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
	return err
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, nil)
	return err
}

// Upload sends one file as multipart/form-data under field, plus extra form
// fields. The body is buffered so a refresh can replay it.
func (c *Client) Upload(ctx context.Context, method, path, field, filename string, r io.Reader, fields map[string]string, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	_, err = c.Do(ctx, Request{
		Method:      method,
		Path:        path,
		RawBody:     buf.Bytes(),
		ContentType: mw.FormDataContentType(),
	}, out)
	return err
}

// Do sends req and decodes the envelope's data member into out. A 401 from a
// non-auth endpoint triggers up to maxRefresh token refreshes, each followed by
// one replay of the original request. When refreshing fails or the attempts run
// out, the session is cleared and the returned error matches ErrSessionExpired.
func (c *Client) Do(ctx context.Context, req Request, out any) (*response.Meta, error) {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	resp, usedToken, err := c.send(ctx, req, body, contentType)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isAuthEndpoint(req.Path) {
		return c.decode(resp, out)
	}
	discard(resp)

	for attempt := 1; attempt <= c.maxRefresh; attempt++ {
		if err := c.refresh(ctx, usedToken); err != nil {
			if ctx.Err() != nil {
				// the caller gave up; the session is still good for others
				return nil, classifyRequestError(ctx, err)
			}
			c.log.Warn().Err(err).Int("attempt", attempt).Str("path", req.Path).Msg("Token refresh failed, clearing session")
			c.session.Clear()
			return nil, sessionExpired(err)
		}

		resp, usedToken, err = c.send(ctx, req, body, contentType)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusUnauthorized {
			return c.decode(resp, out)
		}
		discard(resp)
		c.log.Debug().Int("attempt", attempt).Str("path", req.Path).Msg("Replay still unauthorized")
	}

	metrics.ObserveRefresh("exhausted")
	c.log.Warn().Int("attempts", c.maxRefresh).Str("path", req.Path).Msg("Refresh attempts exhausted, clearing session")
	c.session.Clear()
	return nil, sessionExpired(nil)
}

func (c *Client) send(ctx context.Context, req Request, body []byte, contentType string) (*http.Response, string, error) {
	if c.rl != nil {
		if err := c.rl.Wait(ctx); err != nil {
			return nil, "", err
		}
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, c.url(req.Path, req.Query), rdr)
	if err != nil {
		return nil, "", fmt.Errorf("api request error: %w", err)
	}

	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		hreq.Header.Set("Content-Type", contentType)
	}
	if c.ua != "" {
		hreq.Header.Set("User-Agent", c.ua)
	}
	token := c.session.AccessToken()
	if token != "" {
		hreq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		metrics.ObserveAPI(req.Method, endpointLabel(req.Path), 0, time.Since(start))
		return nil, token, classifyRequestError(ctx, err)
	}
	metrics.ObserveAPI(req.Method, endpointLabel(req.Path), resp.StatusCode, time.Since(start))
	return resp, token, nil
}

func (c *Client) decode(resp *http.Response, out any) (*response.Meta, error) {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	env, decodeErr := response.Decode(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode >= http.StatusBadRequest || (decodeErr == nil && !env.Success) {
		return nil, newAPIError(resp, env, decodeErr)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	if err := env.Into(out); err != nil {
		return nil, err
	}
	return env.Meta, nil
}

func newAPIError(resp *http.Response, env *response.Response, cause error) *APIError {
	apiErr := &APIError{
		Status:    resp.StatusCode,
		RequestID: resp.Request.Header.Get("X-Request-ID"),
		Err:       cause,
	}
	if env != nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func encodeBody(req Request) ([]byte, string, error) {
	if req.RawBody != nil {
		return req.RawBody, req.ContentType, nil
	}
	if req.Body == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode request body: %w", err)
	}
	return b, "application/json", nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	resp.Body.Close()
}

// endpointLabel collapses IDs so metric labels stay bounded.
func endpointLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if _, err := uuid.Parse(s); err == nil {
			segments[i] = ":id"
		}
	}
	return "/" + strings.Join(segments, "/")
}
