package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-account-api/internal/types"
)

const profileCacheKey = "session:profile"

// APIError carries the decoded error envelope from a failed call.
type APIError struct {
	Status  int
	Message string
	Errors  []types.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Client is a thin SDK over the account REST API. It attaches the stored
// bearer token to every call and, on any 401, discards the token and fires
// the OnUnauthorized hook so the caller can redirect to a login view.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	logger     *slog.Logger
	cache      *gocache.Cache

	// OnUnauthorized runs after the stored token has been discarded.
	OnUnauthorized func()
}

// Option customizes a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.OnUnauthorized = fn }
}

// New creates a Client for the given API base URL, e.g. "http://localhost:8000".
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     NewMemoryTokenStore(),
		logger:     logger,
		cache:      gocache.New(5*time.Minute, 10*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUser returns the session's cached user, fetching the profile when
// the cache is cold. Mirrors the session context a frontend would keep:
// initialized from the persisted token, updated on login/logout/update.
func (c *Client) CurrentUser(ctx context.Context) (*types.User, error) {
	if cached, ok := c.cache.Get(profileCacheKey); ok {
		return cached.(*types.User), nil
	}
	return c.GetProfile(ctx)
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*types.User, error) {
	body := types.RegisterRequest{Name: name, Email: email, Password: password}

	var payload types.AuthPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &payload); err != nil {
		return nil, err
	}

	if err := c.tokens.Save(payload.Token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	c.cache.SetDefault(profileCacheKey, payload.User)
	return payload.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*types.User, error) {
	body := types.LoginRequest{Email: email, Password: password}

	var payload types.AuthPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &payload); err != nil {
		return nil, err
	}

	if err := c.tokens.Save(payload.Token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	c.cache.SetDefault(profileCacheKey, payload.User)
	return payload.User, nil
}

func (c *Client) GetProfile(ctx context.Context) (*types.User, error) {
	var payload types.ProfilePayload
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &payload); err != nil {
		return nil, err
	}
	c.cache.SetDefault(profileCacheKey, payload.User)
	return payload.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, name, email *string) (*types.User, error) {
	body := types.UpdateProfileRequest{Name: name, Email: email}

	var payload types.ProfilePayload
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", body, &payload); err != nil {
		return nil, err
	}
	c.cache.SetDefault(profileCacheKey, payload.User)
	return payload.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := types.ChangePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}
	return c.do(ctx, http.MethodPut, "/api/auth/change-password", body, nil)
}

// Logout tells the server (audit only, tokens are stateless) and always
// tears the local session down, even when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.clearSession()
	return err
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/api/auth/profile", nil, nil); err != nil {
		return err
	}
	c.clearSession()
	return nil
}

func (c *Client) clearSession() {
	if err := c.tokens.Clear(); err != nil {
		c.logger.Warn("Failed to clear stored token", slog.Any("error", err))
	}
	c.cache.Delete(profileCacheKey)
}

// do performs the request, attaching the bearer token when present, and
// decodes the response envelope into out (the envelope's data payload).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(js)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Load()
	if err != nil {
		c.logger.Warn("Failed to load stored token", slog.Any("error", err))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.clearSession()
		if c.OnUnauthorized != nil {
			c.OnUnauthorized()
		}
	}

	var envelope struct {
		Success bool               `json:"success"`
		Message string             `json:"message"`
		Data    json.RawMessage    `json:"data"`
		Errors  []types.FieldError `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if !envelope.Success {
		return &APIError{
			Status:  resp.StatusCode,
			Message: envelope.Message,
			Errors:  envelope.Errors,
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode response payload: %w", err)
		}
	}
	return nil
}
