package account

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-account-api/internal/types"
)

func TestAuthenticate(t *testing.T) {
	cfg := testJWTConfig()

	// Terminal handler that records the identity the middleware injected.
	newProbe := func() (*http.Handler, *string, *bool) {
		var seenUserID string
		var called bool
		h := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			seenUserID, _ = GetUserIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
		return &h, &seenUserID, &called
	}

	t.Run("ValidToken", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		user := testUser()
		token, err := IssueToken(cfg, user)
		require.NoError(t, err)

		mockRepo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()

		probe, seenUserID, called := newProbe()
		mw := Authenticate(slog.Default(), cfg, mockRepo)(*probe)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, *called)
		assert.Equal(t, user.ID.String(), *seenUserID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		probe, _, called := newProbe()
		mw := Authenticate(slog.Default(), cfg, mockRepo)(*probe)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
	})

	t.Run("BadHeaderFormat", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		probe, _, called := newProbe()
		mw := Authenticate(slog.Default(), cfg, mockRepo)(*probe)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Bearer {token}")
		assert.False(t, *called)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		expiredCfg := cfg
		expiredCfg.TokenTTL = -time.Minute
		token, err := IssueToken(expiredCfg, testUser())
		require.NoError(t, err)

		probe, _, called := newProbe()
		mw := Authenticate(slog.Default(), cfg, mockRepo)(*probe)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Token has expired")
		assert.False(t, *called)
		mockRepo.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})

	t.Run("TamperedToken", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		otherCfg := cfg
		otherCfg.SecretKey = "other-secret"
		token, err := IssueToken(otherCfg, testUser())
		require.NoError(t, err)

		probe, _, called := newProbe()
		mw := Authenticate(slog.Default(), cfg, mockRepo)(*probe)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
	})

	t.Run("DeletedUser", func(t *testing.T) {
		// A structurally valid token stops working the moment the account
		// is hard deleted.
		mockRepo := new(MockAccountRepo)
		user := testUser()
		token, err := IssueToken(cfg, user)
		require.NoError(t, err)

		mockRepo.On("GetUserByID", mock.Anything, user.ID).Return(nil, types.ErrNotFound).Once()

		probe, _, called := newProbe()
		mw := Authenticate(slog.Default(), cfg, mockRepo)(*probe)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
		mockRepo.AssertExpectations(t)
	})

	t.Run("InactiveUser", func(t *testing.T) {
		mockRepo := new(MockAccountRepo)
		user := testUser()
		user.IsActive = false
		token, err := IssueToken(cfg, user)
		require.NoError(t, err)

		mockRepo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil).Once()

		probe, _, called := newProbe()
		mw := Authenticate(slog.Default(), cfg, mockRepo)(*probe)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, *called)
	})
}

func TestAuthenticatePanicsWithoutSecret(t *testing.T) {
	cfg := testJWTConfig()
	cfg.SecretKey = ""
	assert.Panics(t, func() {
		Authenticate(slog.Default(), cfg, new(MockAccountRepo))
	})
}
