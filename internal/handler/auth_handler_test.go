package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backoffice-api/internal/models"
	"github.com/noah-isme/backoffice-api/internal/service"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
)

type fakeAuthService struct {
	signIn     *models.SessionTokens
	signInErr  error
	refresh    *models.SessionTokens
	refreshErr error
	signOutErr error
	lastCookie string
	lastSignIn models.SignInRequest
}

func (f *fakeAuthService) SignIn(ctx context.Context, req models.SignInRequest) (*models.SessionTokens, error) {
	f.lastSignIn = req
	return f.signIn, f.signInErr
}

func (f *fakeAuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.SessionTokens, error) {
	if err := service.NewValidator().Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	return f.signIn, f.signInErr
}

func (f *fakeAuthService) Refresh(ctx context.Context, refreshToken string, meta models.RequestMeta) (*models.SessionTokens, error) {
	f.lastCookie = refreshToken
	return f.refresh, f.refreshErr
}

func (f *fakeAuthService) SignOut(ctx context.Context, refreshToken string, meta models.RequestMeta) error {
	f.lastCookie = refreshToken
	return f.signOutErr
}

var testCookies = CookieConfig{AuthPath: "/api/auth", Secure: true}

func newAuthRouter(svc authService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc, testCookies)
	r := gin.New()
	r.POST("/api/auth/signin", h.SignIn)
	r.POST("/api/auth/signup", h.SignUp)
	r.POST("/api/auth/refresh", h.Refresh)
	r.POST("/api/auth/signout", h.SignOut)
	return r
}

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestSignInSetsCookies(t *testing.T) {
	svc := &fakeAuthService{signIn: &models.SessionTokens{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &models.UserInfo{ID: "u1", Email: "ada@example.com"},
	}}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"email":"ada@example.com","password":"Secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body models.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "access", body.AccessToken)
	require.NotNil(t, body.User)
	assert.Equal(t, "u1", body.User.ID)
	assert.Equal(t, "test-agent", svc.lastSignIn.UserAgent)

	cookies := cookiesByName(rec)
	refresh := cookies[RefreshCookie]
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh", refresh.Value)
	assert.Equal(t, "/api/auth", refresh.Path)
	assert.True(t, refresh.HttpOnly)
	assert.True(t, refresh.Secure)
	assert.Equal(t, http.SameSiteLaxMode, refresh.SameSite)
	assert.Equal(t, 86400, refresh.MaxAge)

	flag := cookies["session_active"]
	require.NotNil(t, flag)
	assert.Equal(t, "true", flag.Value)
	assert.Equal(t, "/", flag.Path)
	assert.False(t, flag.HttpOnly)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSignInErrors(t *testing.T) {
	router := newAuthRouter(&fakeAuthService{signInErr: appErrors.ErrInvalidCredentials})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"email":"ada@example.com","password":"nope"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password.")
	assert.Empty(t, rec.Result().Cookies())

	req = httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{not json`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid json")
}

func TestSignUpValidationReportsFields(t *testing.T) {
	router := newAuthRouter(&fakeAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"firstName":"A","lastName":"Lovelace","email":"bad","password":"short"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error       string            `json:"error"`
		FieldErrors map[string]string `json:"fieldErrors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation failed.", body.Error)
	assert.Contains(t, body.FieldErrors, "firstName")
	assert.Contains(t, body.FieldErrors, "email")
	assert.Contains(t, body.FieldErrors, "password")
}

func TestSignUpReturnsUserAndCookies(t *testing.T) {
	svc := &fakeAuthService{signIn: &models.SessionTokens{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &models.UserInfo{ID: "u9", Email: "grace@example.com", FirstName: "Grace", Role: models.RoleUser},
	}}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"firstName":"Grace","lastName":"Hopper","email":"grace@example.com","password":"Secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body models.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "access", body.AccessToken)
	require.NotNil(t, body.User)
	assert.Equal(t, "u9", body.User.ID)
	assert.Equal(t, "grace@example.com", body.User.Email)
	assert.Contains(t, cookiesByName(rec), RefreshCookie)
}

func TestRefreshRotatesCookie(t *testing.T) {
	svc := &fakeAuthService{refresh: &models.SessionTokens{AccessToken: "access-2", RefreshToken: "refresh-2"}}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "refresh-1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "refresh-1", svc.lastCookie)
	assert.JSONEq(t, `{"accessToken":"access-2"}`, rec.Body.String())
	assert.Equal(t, "refresh-2", cookiesByName(rec)[RefreshCookie].Value)
}

func TestRefreshFailuresLookIdentical(t *testing.T) {
	storeRead := appErrors.Wrap(appErrors.Unavailable(context.DeadlineExceeded, "session get"),
		appErrors.ErrSessionExpired.Code, appErrors.ErrSessionExpired.Status, appErrors.ErrSessionExpired.Message)

	for name, err := range map[string]error{
		"reuse":    appErrors.ErrSessionReuse,
		"missing":  appErrors.ErrSessionNotFound,
		"invalid":  appErrors.ErrInvalidToken,
		"lifetime": appErrors.ErrSessionLifetimeExceeded,
		"store":    storeRead,
	} {
		t.Run(name, func(t *testing.T) {
			router := newAuthRouter(&fakeAuthService{refreshErr: err})
			req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
			req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "stale"})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"session expired","code":"SESSION_EXPIRED"}`, rec.Body.String())
			cookies := cookiesByName(rec)
			require.Contains(t, cookies, RefreshCookie)
			assert.Equal(t, -1, cookies[RefreshCookie].MaxAge)
			require.Contains(t, cookies, "session_active")
			assert.Equal(t, -1, cookies["session_active"].MaxAge)
		})
	}
}

func TestRefreshStoreWriteFailureIs500(t *testing.T) {
	router := newAuthRouter(&fakeAuthService{refreshErr: appErrors.Unavailable(context.DeadlineExceeded, "session rotate")})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "current"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "session rotate")
	assert.Empty(t, rec.Result().Cookies())
}

func TestSignOutAlwaysClearsCookies(t *testing.T) {
	svc := &fakeAuthService{}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
	assert.Equal(t, -1, cookiesByName(rec)[RefreshCookie].MaxAge)

	svc.signOutErr = appErrors.Unavailable(context.DeadlineExceeded, "session delete")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, -1, cookiesByName(rec)["session_active"].MaxAge)
}
