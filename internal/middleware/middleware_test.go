package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tokens *utils.TokenIssuer, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(tokens)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		p := Principal(c)
		c.JSON(http.StatusOK, p)
	})
	r.GET("/me", handlers...)
	return r
}

func token(t *testing.T, tokens *utils.TokenIssuer, claims utils.Claims) string {
	t.Helper()
	tok, err := tokens.GenerateJWT(claims)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	r := newRouter(tokens)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, tokens, utils.Claims{UserID: 4, Role: models.RoleReceptionist, HospitalID: 2}))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":4,"email":"","role":"receptionist","hospitalId":2}`, w.Body.String())
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	r := newRouter(tokens)

	tok := token(t, tokens, utils.Claims{UserID: 1, Role: models.RoleDoctor, HospitalID: 1})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+tok, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	r := newRouter(tokens, RequireRole(models.RoleDoctor))

	for role, want := range map[string]int{
		models.RoleDoctor:       http.StatusOK,
		models.RoleReceptionist: http.StatusUnauthorized,
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, tokens, utils.Claims{UserID: 1, Role: role, HospitalID: 1}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestRequireTerms(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	r := newRouter(tokens, RequireTerms())

	cases := []struct {
		claims utils.Claims
		want   int
	}{
		{utils.Claims{UserID: 1, Role: models.RoleDoctor, HospitalID: 1}, http.StatusUnauthorized},
		{utils.Claims{UserID: 1, Role: models.RoleDoctor, HospitalID: 1, AcceptedTAndC: true}, http.StatusOK},
		{utils.Claims{UserID: 3, Role: models.RoleReceptionist, HospitalID: 1}, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, tokens, tc.claims))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusNoContent), entries[0].ContextMap()["status"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}
