package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-account-api/internal/types"
)

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.Response{
		Success: success,
		Message: message,
		Data:    data,
	})
}

func TestLoginStoresToken(t *testing.T) {
	user := &types.User{ID: uuid.New(), Name: "Ann", Email: "ann@x.com", IsActive: true}

	var seenAuthHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var req types.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ann@x.com", req.Email)
			writeEnvelope(w, http.StatusOK, true, "Login successful", types.AuthPayload{Token: "tok-123", User: user})
		case "/api/auth/logout":
			seenAuthHeader = r.Header.Get("Authorization")
			writeEnvelope(w, http.StatusOK, true, "Logged out successfully", nil)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := New(server.URL, slog.Default())

	got, err := c.Login(context.Background(), "ann@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	token, err := c.tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	// Subsequent calls carry the stored token.
	require.NoError(t, c.Logout(context.Background()))
	assert.Equal(t, "Bearer tok-123", seenAuthHeader)

	// Logout tears the local session down.
	token, err = c.tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCurrentUserUsesCache(t *testing.T) {
	user := &types.User{ID: uuid.New(), Name: "Ann", Email: "ann@x.com", IsActive: true}

	var profileCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/register":
			writeEnvelope(w, http.StatusCreated, true, "User registered successfully", types.AuthPayload{Token: "tok", User: user})
		case "/api/auth/profile":
			profileCalls++
			writeEnvelope(w, http.StatusOK, true, "", types.ProfilePayload{User: user})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := New(server.URL, slog.Default())

	_, err := c.Register(context.Background(), "Ann", "ann@x.com", "secret1")
	require.NoError(t, err)

	// Register primed the cache, so no profile fetch happens.
	got, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, 0, profileCalls)

	// A cold cache falls back to the API.
	c.cache.Delete(profileCacheKey)
	_, err = c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, profileCalls)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, "Token has expired", nil)
	}))
	defer server.Close()

	var hookFired bool
	c := New(server.URL, slog.Default(), WithOnUnauthorized(func() { hookFired = true }))
	require.NoError(t, c.tokens.Save("stale-token"))

	_, err := c.GetProfile(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Token has expired", apiErr.Message)

	assert.True(t, hookFired)
	token, err := c.tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAPIErrorCarriesFieldErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(types.Response{
			Success: false,
			Message: "Validation failed",
			Errors: []types.FieldError{
				{Field: "password", Message: "Password must be at least 6 characters"},
			},
		})
	}))
	defer server.Close()

	c := New(server.URL, slog.Default())

	_, err := c.Register(context.Background(), "Ann", "ann@x.com", "123")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Len(t, apiErr.Errors, 1)
	assert.Equal(t, "password", apiErr.Errors[0].Field)
}

func TestDeleteAccountClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		writeEnvelope(w, http.StatusOK, true, "Account deleted successfully", nil)
	}))
	defer server.Close()

	c := New(server.URL, slog.Default())
	require.NoError(t, c.tokens.Save("tok"))

	require.NoError(t, c.DeleteAccount(context.Background()))
	token, err := c.tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFileTokenStore(path)

	// Missing file reads as no session.
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("tok-456"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-456", token)

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}
