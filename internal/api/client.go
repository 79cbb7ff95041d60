// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the AGRINOVA client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:5000)
	BaseURL string

	// Timeout bounds every request including rate limiter waits (default: 15s)
	Timeout time.Duration

	// RateLimit is the outbound request rate in requests/second. Zero disables limiting.
	RateLimit float64

	// RateBurst is the limiter bucket size (default: 1 when RateLimit is set)
	RateBurst int

	// Jar stores the session cookie for credential-bearing calls.
	// Nil means an in-memory jar that forgets the session on exit.
	Jar http.CookieJar

	// UserAgent sent with every request (default: agrinova-tui/dev)
	UserAgent string

	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper

	// Logger receives request lifecycle events at debug level.
	Logger *zap.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "http://127.0.0.1:5000",
		Timeout:   15 * time.Second,
		RateLimit: 5,
		RateBurst: 5,
		UserAgent: "agrinova-tui/dev",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the AGRINOVA backend.
//
// The Client is thread-safe for concurrent use.
type Client struct {
	config *ClientConfig

	// withCredential sends and stores cookies; anonymous never does.
	withCredential *http.Client
	anonymous      *http.Client

	limiter *rate.Limiter
	logger  *zap.Logger

	lastRequestID atomic.Value // string
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:5000"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "agrinova-tui/dev"
	}
	if config.Jar == nil {
		config.Jar = NewJar()
	}

	limit := rate.Inf
	burst := 0
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
		burst = config.RateBurst
		if burst < 1 {
			burst = 1
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := config.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	c := &Client{
		config:         config,
		withCredential: &http.Client{Transport: transport, Jar: config.Jar},
		anonymous:      &http.Client{Transport: transport},
		limiter:        rate.NewLimiter(limit, burst),
		logger:         logger.Named("api"),
	}
	c.lastRequestID.Store("")
	return c
}

// BaseURL returns the backend URL the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// LastRequestID returns the X-Request-ID of the most recent request.
func (c *Client) LastRequestID() string {
	return c.lastRequestID.Load().(string)
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// call describes one HTTP exchange.
type call struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	credential  bool
	fallback    string
}

func jsonCall(method, path string, payload interface{}, credential bool, fallback string) (call, error) {
	c := call{method: method, path: path, credential: credential, fallback: fallback}
	if payload == nil {
		return c, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return c, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}
	c.body = body
	c.contentType = "application/json"
	return c, nil
}

// send performs the exchange and returns the body of a 2xx response.
// Non-2xx responses become rejected errors carrying the body's "error" or
// the call's fallback.
func (c *Client) send(ctx context.Context, cl call) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestID := uuid.NewString()
	c.lastRequestID.Store(requestID)
	log := c.logger.With(
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.String("request_id", requestID),
	)

	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		// Wait fails early when the next token lies past the deadline.
		if ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return nil, c.transportError(ctx, log, err)
	}

	target := c.config.BaseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", requestID)

	httpClient := c.anonymous
	if cl.credential {
		httpClient = c.withCredential
	}

	log.Debug("request started", zap.Bool("credential", cl.credential))
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, log, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.transportError(ctx, log, err)
	}

	log.Debug("request finished",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rejected(resp.StatusCode, errorMessage(data, cl.fallback))
	}
	return data, nil
}

// transportError classifies a failure that produced no usable response.
func (c *Client) transportError(ctx context.Context, log *zap.Logger, err error) error {
	log.Debug("request failed", zap.Error(err))

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ClientError{
			Type:    ErrTypeTimeout,
			Message: fmt.Sprintf("request timed out after %s", c.config.Timeout),
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeUnreachable, Message: "request canceled", Cause: err}
	}

	msg := err.Error()
	var uerr *url.Error
	if errors.As(err, &uerr) {
		msg = uerr.Err.Error()
	}
	return &ClientError{Type: ErrTypeUnreachable, Message: msg, Cause: err}
}

// errorMessage extracts {"error": "..."} from a failure body.
func errorMessage(data []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil && strings.TrimSpace(eb.Error) != "" {
		return eb.Error
	}
	return fallback
}

func decode(data []byte, out interface{}, what string) error {
	if err := json.Unmarshal(data, out); err != nil {
		return invalidResponse(what, err)
	}
	return nil
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health fetches the backend banner from GET /.
func (c *Client) Health(ctx context.Context) (string, error) {
	data, err := c.send(ctx, call{method: http.MethodGet, path: "/", fallback: "backend unhealthy"})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// Profile returns the identity bound to the stored session cookie.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	data, err := c.send(ctx, call{method: http.MethodGet, path: "/profile", credential: true, fallback: "Not authenticated"})
	if err != nil {
		return nil, err
	}

	var result ProfileResponse
	if err := decode(data, &result, "profile"); err != nil {
		return nil, err
	}
	if result.User == nil {
		return nil, invalidResponse("profile", errors.New("missing user"))
	}
	return result.User, nil
}

// Login exchanges credentials for a session cookie and returns the identity.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*User, error) {
	cl, err := jsonCall(http.MethodPost, "/login", LoginRequest{
		UsernameOrEmail: usernameOrEmail,
		Password:        password,
	}, true, FallbackAuth)
	if err != nil {
		return nil, err
	}

	data, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}

	var result LoginResponse
	if err := decode(data, &result, "login"); err != nil {
		return nil, err
	}
	if result.User == nil {
		return nil, invalidResponse("login", errors.New("missing user"))
	}
	return result.User, nil
}

// Signup registers a new account. It does not log in.
func (c *Client) Signup(ctx context.Context, username, email, password string) (string, error) {
	cl, err := jsonCall(http.MethodPost, "/signup", SignupRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, false, FallbackAuth)
	if err != nil {
		return "", err
	}

	data, err := c.send(ctx, cl)
	if err != nil {
		return "", err
	}

	var result MessageResponse
	// The message is informational; an odd body still means success.
	_ = json.Unmarshal(data, &result)
	return result.Message, nil
}

// Logout ends the server session. The response body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.send(ctx, call{method: http.MethodPost, path: "/logout", credential: true, fallback: FallbackLogout})
	return err
}

// =============================================================================
// FEATURE OPERATIONS
// =============================================================================

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Predict uploads an image for classification as multipart field "file".
// The part's content type is sniffed from data.
func (c *Client) Predict(ctx context.Context, filename string, data []byte) (*Prediction, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`,
		quoteEscaper.Replace(filepath.Base(filename))))
	h.Set("Content-Type", http.DetectContentType(data))

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload", Cause: err}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload", Cause: err}
	}
	if err := w.Close(); err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload", Cause: err}
	}

	body, err := c.send(ctx, call{
		method:      http.MethodPost,
		path:        "/predict",
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
		fallback:    FallbackPrediction,
	})
	if err != nil {
		return nil, err
	}

	// A 2xx that carries "error" is still a rejection.
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		return nil, rejected(http.StatusOK, eb.Error)
	}

	var result Prediction
	if err := decode(body, &result, "prediction"); err != nil {
		return nil, err
	}
	return &result, nil
}

// Weather fetches current conditions for city.
func (c *Client) Weather(ctx context.Context, city string) (*Weather, error) {
	data, err := c.send(ctx, call{
		method:   http.MethodGet,
		path:     "/weather",
		query:    url.Values{"city": {city}},
		fallback: FallbackWeather,
	})
	if err != nil {
		return nil, err
	}

	var result Weather
	if err := decode(data, &result, "weather"); err != nil {
		return nil, err
	}
	return &result, nil
}

// Chat sends one message to the chatbot. language may be empty.
func (c *Client) Chat(ctx context.Context, message, language string) (string, error) {
	cl, err := jsonCall(http.MethodPost, "/chatbot", ChatRequest{
		Message:  message,
		Language: language,
	}, true, FallbackChat)
	if err != nil {
		return "", err
	}

	data, err := c.send(ctx, cl)
	if err != nil {
		return "", err
	}

	var result ChatResponse
	if err := decode(data, &result, "chatbot"); err != nil {
		return "", err
	}
	return result.Reply, nil
}

// MarketPrices looks up price rows for crop, optionally narrowed by location.
// An empty result is not an error.
func (c *Client) MarketPrices(ctx context.Context, crop, location string) ([]MarketQuote, error) {
	cl, err := jsonCall(http.MethodPost, "/market_price", MarketRequest{
		Crop:     crop,
		Location: location,
	}, false, FallbackMarket)
	if err != nil {
		return nil, err
	}

	data, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}

	var result MarketResponse
	if err := decode(data, &result, "market price"); err != nil {
		return nil, err
	}
	if result.MarketPrices == nil {
		result.MarketPrices = []MarketQuote{}
	}
	return result.MarketPrices, nil
}
