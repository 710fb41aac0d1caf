package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testTokens() TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "romhub-test", Duration: time.Hour}
}

func TestSignAndParse(t *testing.T) {
	ts := testTokens()

	raw, exp, err := ts.Sign("admin", RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ts.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "admin", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestParseRejects(t *testing.T) {
	ts := testTokens()

	other := ts
	other.Secret = []byte("another-secret")
	raw, _, err := other.Sign("admin", RoleAdmin)
	require.NoError(t, err)
	_, err = ts.Parse(raw)
	assert.Error(t, err, "wrong secret")

	other = ts
	other.Issuer = "someone-else"
	raw, _, err = other.Sign("admin", RoleAdmin)
	require.NoError(t, err)
	_, err = ts.Parse(raw)
	assert.Error(t, err, "wrong issuer")

	expired := ts
	expired.Duration = -time.Minute
	raw, _, err = expired.Sign("admin", RoleAdmin)
	require.NoError(t, err)
	_, err = ts.Parse(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: RoleAdmin})
	raw, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ts.Parse(raw)
	assert.Error(t, err, "alg none")
}

func newAuthRouter(t *testing.T, password string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var hash string
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		hash = string(b)
	}

	r := gin.New()
	NewHandler(testTokens(), hash).RegisterRoutes(r.Group("/auth"))

	protected := r.Group("/admin")
	protected.Use(AuthMiddleware(testTokens(), RoleAdmin))
	protected.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": MustGetClaims(c).Subject})
	})
	return r
}

func postToken(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestTokenEndpoint(t *testing.T) {
	r := newAuthRouter(t, "hunter22")

	assert.Equal(t, http.StatusUnauthorized, postToken(r, `{"password":"wrong"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postToken(r, `{}`).Code)

	w := postToken(r, `{"password":"hunter22"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	get := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	r.ServeHTTP(get, req)
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Contains(t, get.Body.String(), `"subject":"admin"`)
}

func TestTokenEndpointDisabledWithoutHash(t *testing.T) {
	r := newAuthRouter(t, "")
	assert.Equal(t, http.StatusServiceUnavailable, postToken(r, `{"password":"anything"}`).Code)
}

func TestMiddleware(t *testing.T) {
	r := newAuthRouter(t, "")

	call := func(header string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call("Basic abc"))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer not-a-jwt"))

	viewer, _, err := testTokens().Sign("someone", "viewer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call("Bearer "+viewer))

	admin, _, err := testTokens().Sign("admin", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, call("bearer "+admin))
}

func TestRequireAdminDisabledWithoutHash(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandler(testTokens(), "")
	r := gin.New()
	r.POST("/imports", h.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	// A token signed with the server's own secret is still refused.
	forged, _, err := testTokens().Sign(RoleAdmin, RoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/imports", strings.NewReader(`{"path":"/etc/passwd"}`))
	req.Header.Set("Authorization", "Bearer "+forged)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "admin access disabled")
}

func TestRequireAdminWithHash(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	h := NewHandler(testTokens(), string(hash))
	r := gin.New()
	r.POST("/imports", h.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	call := func(token string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/imports", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		return w.Code
	}

	other := TokenService{Secret: []byte("dev-secret-change-me"), Issuer: "romhub-test", Duration: time.Hour}
	wrongKey, _, err := other.Sign(RoleAdmin, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(wrongKey))

	admin, _, err := testTokens().Sign(RoleAdmin, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, call(admin))
}
