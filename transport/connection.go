// Package transport implements the REST connection the object model issues
// its calls through: session authentication, the generic HTTP verb surface,
// optional response caching, and per-request tracing.
//
// The object model treats a Connection as an opaque capability. It never
// mutates connection-level state beyond reading the active project and
// server version before issuing a call, so one connection is safely shared
// across many objects.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	sdk "github.com/strategyone/sdk"
	"github.com/strategyone/sdk/cache"
	"github.com/strategyone/sdk/types"
)

// Connection is the verb surface the object model consumes. Implementations
// must be safe for concurrent use.
type Connection interface {
	// Get issues a GET request against the API path.
	Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error)

	// Post issues a POST request with a JSON body.
	Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error)

	// Put issues a PUT request with a JSON body.
	Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error)

	// Patch issues a PATCH request with a JSON body.
	Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error)

	// Delete issues a DELETE request against the API path.
	Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error)

	// ProjectID returns the active project context, or "" when none is set.
	ProjectID() string

	// ServerVersion returns the connected Intelligence Server version, used
	// by the object model for feature gating.
	ServerVersion() types.Version
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	query     url.Values
	header    http.Header
	projectID string
	noCache   bool
}

// WithQuery adds a query parameter to the request.
func WithQuery(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.query == nil {
			o.query = url.Values{}
		}
		o.query.Add(key, value)
	}
}

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.header == nil {
			o.header = http.Header{}
		}
		o.header.Add(key, value)
	}
}

// WithProject overrides the connection's project context for this request.
func WithProject(projectID string) RequestOption {
	return func(o *requestOptions) {
		o.projectID = projectID
	}
}

// WithNoCache bypasses the response cache for this request.
func WithNoCache() RequestOption {
	return func(o *requestOptions) {
		o.noCache = true
	}
}

// Option configures an HTTPConnection.
type Option func(*HTTPConnection)

// WithLogger sets a custom logger for the connection.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPConnection) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer; every REST request then runs
// inside its own span.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *HTTPConnection) {
		c.tracer = tracer
	}
}

// WithHTTPClient replaces the underlying HTTP client, e.g. to install a
// proxy or custom TLS configuration.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPConnection) {
		c.client = client
	}
}

// WithResponseCache installs a response cache for GET requests. Writes to a
// path invalidate cached reads under the same path.
func WithResponseCache(store cache.Store, ttl time.Duration) Option {
	return func(c *HTTPConnection) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// HTTPConnection is the standard Connection implementation over net/http.
//
// The session token obtained at login is attached to every request. All
// methods are safe for concurrent use.
type HTTPConnection struct {
	baseURL *url.URL
	client  *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer

	cache    cache.Store
	cacheTTL time.Duration

	projectID     string
	serverVersion types.Version

	mu        sync.RWMutex
	authToken string
}

// Open authenticates against the server described by cfg and returns a live
// connection. The server version is read once at login and reused for
// feature gating. The connection must be closed with Close to end the
// server-side session.
func Open(ctx context.Context, cfg Config, opts ...Option) (*HTTPConnection, error) {
	if cfg.BaseURL == "" {
		return nil, sdk.NewValidationError("transport.Open", fmt.Errorf("base URL cannot be empty"))
	}

	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, sdk.NewValidationError("transport.Open", fmt.Errorf("invalid base URL: %w", err))
	}

	conn := &HTTPConnection{
		baseURL:   base,
		client:    &http.Client{Timeout: cfg.GetRequestTimeout()},
		logger:    slog.Default(),
		projectID: cfg.ProjectID,
	}
	for _, opt := range opts {
		opt(conn)
	}

	if cfg.Cache != nil && cfg.Cache.Enabled && conn.cache == nil {
		store, err := openConfiguredCache(cfg.Cache)
		if err != nil {
			return nil, err
		}
		conn.cache = store
		conn.cacheTTL = cfg.Cache.GetTTL()
	}

	if err := conn.login(ctx, cfg); err != nil {
		return nil, err
	}
	if err := conn.readServerStatus(ctx); err != nil {
		return nil, err
	}

	conn.logger.Info("session opened",
		"base_url", cfg.BaseURL,
		"server_version", conn.serverVersion.String())
	return conn, nil
}

func openConfiguredCache(cfg *CacheConfig) (cache.Store, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemoryStore(), nil
	}
	store, err := cache.NewRedisStore(cache.RedisOptions{URL: cfg.RedisURL})
	if err != nil {
		return nil, sdk.NewTransportError("transport.Open", err)
	}
	return store, nil
}

// login creates the REST session and stores its token.
func (c *HTTPConnection) login(ctx context.Context, cfg Config) error {
	body := map[string]any{
		"username":  cfg.Username,
		"password":  cfg.Password,
		"loginMode": cfg.GetLoginMode(),
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/login", body, nil)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	token := resp.Header.Get("X-MSTR-AuthToken")
	if token == "" {
		return sdk.NewTransportError("Connection.Login",
			fmt.Errorf("login reply carried no session token"))
	}

	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
	return nil
}

// readServerStatus fetches the server version used for feature gating.
func (c *HTTPConnection) readServerStatus(ctx context.Context) error {
	resp, err := c.Get(ctx, "/status", WithNoCache())
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	var status struct {
		IServerVersion string `json:"iServerVersion"`
	}
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return sdk.NewDecodeError("Connection.Status", err)
	}

	version, err := types.ParseVersion(status.IServerVersion)
	if err != nil {
		return sdk.NewDecodeError("Connection.Status", err)
	}
	c.serverVersion = version
	return nil
}

// Close ends the server-side session and releases the cache store.
func (c *HTTPConnection) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err == nil && !resp.OK() {
		c.logger.Warn("logout rejected", "status", resp.StatusCode)
	}

	c.mu.Lock()
	c.authToken = ""
	c.mu.Unlock()

	if c.cache != nil {
		if cerr := c.cache.Close(); cerr != nil {
			c.logger.Warn("failed to close response cache", "error", cerr)
		}
	}
	return err
}

// ProjectID returns the active project context.
func (c *HTTPConnection) ProjectID() string {
	return c.projectID
}

// ServerVersion returns the Intelligence Server version read at login.
func (c *HTTPConnection) ServerVersion() types.Version {
	return c.serverVersion
}

// Get issues a GET request, served from the response cache when one is
// installed and the entry is fresh.
func (c *HTTPConnection) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	reqOpts := collectOptions(opts)

	if c.cache != nil && !reqOpts.noCache {
		key := cacheKey(path, reqOpts.query)
		if cached, err := c.cache.Get(ctx, key); err == nil {
			return &Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: cached}, nil
		}

		resp, err := c.do(ctx, http.MethodGet, path, nil, reqOpts)
		if err != nil {
			return nil, err
		}
		if resp.OK() {
			if serr := c.cache.Set(ctx, key, resp.Body, c.cacheTTL); serr != nil {
				c.logger.Warn("failed to cache response", "path", path, "error", serr)
			}
		}
		return resp, nil
	}

	return c.do(ctx, http.MethodGet, path, nil, reqOpts)
}

// Post issues a POST request with a JSON body.
func (c *HTTPConnection) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.write(ctx, http.MethodPost, path, body, opts)
}

// Put issues a PUT request with a JSON body.
func (c *HTTPConnection) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.write(ctx, http.MethodPut, path, body, opts)
}

// Patch issues a PATCH request with a JSON body.
func (c *HTTPConnection) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.write(ctx, http.MethodPatch, path, body, opts)
}

// Delete issues a DELETE request.
func (c *HTTPConnection) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.write(ctx, http.MethodDelete, path, nil, opts)
}

// write runs a mutating verb and drops cached reads under the same path.
func (c *HTTPConnection) write(ctx context.Context, method, path string, body any, opts []RequestOption) (*Response, error) {
	reqOpts := collectOptions(opts)

	resp, err := c.do(ctx, method, path, body, reqOpts)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && resp.OK() {
		if ierr := c.cache.Invalidate(ctx, path); ierr != nil {
			c.logger.Warn("failed to invalidate cached responses", "path", path, "error", ierr)
		}
	}
	return resp, nil
}

// do performs one HTTP round trip. Network-level failures are returned as
// transport errors; HTTP error statuses are reported through the Response so
// callers distinguish "could not ask" from "server said no".
func (c *HTTPConnection) do(ctx context.Context, method, path string, body any, reqOpts *requestOptions) (*Response, error) {
	if reqOpts == nil {
		reqOpts = &requestOptions{}
	}

	requestID := uuid.NewString()
	var span trace.Span
	if c.tracer != nil {
		ctx, span = c.tracer.Start(ctx, "mstr.rest "+method,
			trace.WithAttributes(
				attribute.String("http.request.method", method),
				attribute.String("url.path", path),
				attribute.String("request.id", requestID),
			))
		defer span.End()
	}

	target := *c.baseURL
	target.Path = strings.TrimSuffix(target.Path, "/") + path
	if reqOpts.query != nil {
		target.RawQuery = reqOpts.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, sdk.NewValidationError("Connection.Request", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, sdk.NewTransportError("Connection.Request", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.authToken
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("X-MSTR-AuthToken", token)
	}

	projectID := c.projectID
	if reqOpts.projectID != "" {
		projectID = reqOpts.projectID
	}
	if projectID != "" {
		req.Header.Set("X-MSTR-ProjectID", projectID)
	}
	for key, values := range reqOpts.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	started := time.Now()
	httpResp, err := c.client.Do(req)
	if err != nil {
		if span != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, sdk.NewTransportError("Connection.Request", err).
			WithContext(map[string]any{"method": method, "path": path})
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, sdk.NewTransportError("Connection.Request", err).
			WithContext(map[string]any{"method": method, "path": path})
	}

	if span != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", httpResp.StatusCode))
	}

	c.logger.Debug("rest call",
		"method", method,
		"path", path,
		"status", httpResp.StatusCode,
		"duration", time.Since(started),
		"request_id", requestID)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
	}, nil
}

func collectOptions(opts []RequestOption) *requestOptions {
	reqOpts := &requestOptions{}
	for _, opt := range opts {
		opt(reqOpts)
	}
	return reqOpts
}

func cacheKey(path string, query url.Values) string {
	if query == nil {
		return path
	}
	return path + "?" + query.Encode()
}
