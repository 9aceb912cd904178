package umzug

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// DefaultTimeout is the per-request timeout used unless WithTimeout is given
const DefaultTimeout = 10 * time.Second

// Scheme is the URL scheme of the API server
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

// Server identifies the API server
type Server struct {
	Scheme Scheme
	Host   string
	Port   uint16
}

// String returns scheme://host:port
func (s Server) String() string {
	host := s.Host
	if s.Port != 0 {
		host = net.JoinHostPort(s.Host, strconv.Itoa(int(s.Port)))
	}
	return fmt.Sprintf("%s://%s", s.Scheme, host)
}

// Authentication holds the Basic-Auth credentials
type Authentication struct {
	Username string
	Password string
}

// header builds the Authorization header value
func (a Authentication) header() (string, error) {
	if a.Username == "" {
		return "", errors.New("username is required")
	}
	if strings.Contains(a.Username, ":") {
		return "", errors.New("username must not contain ':'")
	}
	token := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
	return "Basic " + token, nil
}

// Response is the raw outcome of a request that passed the status check
type Response struct {
	StatusCode int
	Body       []byte
}

// Client talks to the Umzug API
type Client struct {
	server     Server
	auth       Authentication
	httpClient *http.Client
	reporter   *Reporter
	logger     zerolog.Logger
	closed     atomic.Bool
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithReporter sets the session-wide sticky error slot
func WithReporter(r *Reporter) Option {
	return func(c *Client) {
		c.reporter = r
	}
}

// NewClient creates a new Umzug client. Invalid server or credentials are
// reported by the first request, not here.
func NewClient(server Server, auth Authentication, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		server:     server,
		auth:       auth,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Server returns the server the client talks to
func (c *Client) Server() Server {
	return c.server
}

// Username returns the user the client authenticates as
func (c *Client) Username() string {
	return c.auth.Username
}

// Close shuts the client down. Later requests fail with KindClientShutdown.
func (c *Client) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.httpClient.CloseIdleConnections()
	}
}

// Do performs the request and returns the body of a 200 response. The
// returned error is always an *APIError.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	resp, apiErr := c.do(ctx, req)
	if apiErr != nil {
		c.logger.Debug().
			Err(apiErr).
			Str("method", string(req.Method)).
			Strs("path", req.Path).
			Msg("Umzug API request failed")

		// A caller giving up is not a session problem
		if c.reporter != nil && ctx.Err() == nil && c.reporter.Report(apiErr) {
			c.logger.Warn().Err(apiErr).Msg("Reported session error")
		}
		return Response{}, apiErr
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, req Request) (Response, *APIError) {
	if c.closed.Load() {
		return Response{}, &APIError{Kind: KindClientShutdown}
	}

	requestURL, apiErr := c.buildURL(req)
	if apiErr != nil {
		return Response{}, apiErr
	}

	authorization, err := c.auth.header()
	if err != nil {
		return Response{}, &APIError{Kind: KindInvalidAuthentication, Err: err}
	}

	method := req.Method
	if method == "" {
		method = MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, string(method), requestURL, nil)
	if err != nil {
		return Response{}, &APIError{Kind: KindInvalidURL, Err: err}
	}
	httpReq.Header.Set("Authorization", authorization)
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("method", string(method)).
		Str("url", requestURL).
		Msg("Making Umzug API request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, c.classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return Response{}, InvalidStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &APIError{Kind: KindOther, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// buildURL renders scheme://host:port/api/<path>?<query>. Query parameters
// that cannot be percent-encoded are dropped.
func (c *Client) buildURL(req Request) (string, *APIError) {
	switch c.server.Scheme {
	case SchemeHTTP, SchemeHTTPS:
	default:
		return "", &APIError{Kind: KindInvalidURL, Err: fmt.Errorf("unsupported scheme %q", c.server.Scheme)}
	}
	if strings.TrimSpace(c.server.Host) == "" {
		return "", &APIError{Kind: KindInvalidURL, Err: errors.New("empty host")}
	}

	segments := make([]string, 0, len(req.Path))
	for _, segment := range req.Path {
		if !utf8.ValidString(segment) {
			return "", &APIError{Kind: KindInvalidURL, Err: fmt.Errorf("path segment %q is not valid UTF-8", segment)}
		}
		segments = append(segments, url.PathEscape(segment))
	}

	query := url.Values{}
	for key, value := range req.Query {
		if !utf8.ValidString(key) || !utf8.ValidString(value) {
			c.logger.Debug().Str("key", key).Msg("Dropping query parameter that cannot be encoded")
			continue
		}
		query.Set(key, value)
	}

	requestURL := c.server.String() + "/api/" + strings.Join(segments, "/")
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	if _, err := url.Parse(requestURL); err != nil {
		return "", &APIError{Kind: KindInvalidURL, Err: err}
	}
	return requestURL, nil
}

// classify maps an http.Client error onto the error taxonomy
func (c *Client) classify(err error) *APIError {
	if c.closed.Load() {
		return &APIError{Kind: KindClientShutdown, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		msg := urlErr.Err.Error()
		if strings.Contains(msg, "unsupported protocol scheme") || strings.Contains(msg, "no Host in request URL") {
			return &APIError{Kind: KindInvalidURL, Err: err}
		}
	}
	return &APIError{Kind: KindOther, Err: err}
}

// MakeRequest performs req and decodes the body into a Result. Domain
// failures are returned inside the Result; the error is always an *APIError.
func MakeRequest[S any, F FailureType[F]](ctx context.Context, c *Client, req Request) (Result[S, F], error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return Result[S, F]{}, err
	}

	result := Decode[S, F](resp.Body)
	if failure, failed := result.Failure(); failed {
		c.logger.Debug().
			Str("failure", failure.Error()).
			Strs("path", req.Path).
			Msg("Umzug API answered with a failure")
	}
	return result, nil
}

// MakeOptionalRequest is MakeRequest for endpoints that may answer with an
// empty body on success
func MakeOptionalRequest[S any, F OptionalFailureType[F]](ctx context.Context, c *Client, req Request) (Result[*S, F], error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return Result[*S, F]{}, err
	}
	return DecodeOptional[S, F](resp.Body), nil
}
