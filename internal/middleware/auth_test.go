package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T) (*gin.Engine, auth.JWTService) {
	t.Helper()
	jwt := auth.NewJWTService("test-secret", time.Hour)

	r := gin.New()
	r.Use(NewAuthMiddleware(jwt).Authenticate())
	r.GET("/whoami", func(c *gin.Context) {
		id, _ := UserID(c)
		role, _ := Role(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "role": role})
	})
	r.GET("/admin", RequireRole(model.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, jwt
}

func tokenFor(t *testing.T, jwt auth.JWTService, role model.UserRole) string {
	t.Helper()
	token, err := jwt.GenerateToken(&model.User{
		Base: model.Base{ID: uuid.New()},
		Role: role,
	})
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	r, jwt := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, model.UserRoleCustomer))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	r, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	r, jwt := newAuthRouter(t)

	for _, header := range []string{
		"garbage",
		"Basic dXNlcjpwYXNz",
		"Bearer " + tokenFor(t, jwt, model.UserRoleCustomer) + " extra",
	} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthenticateBadSignature(t *testing.T) {
	r, _ := newAuthRouter(t)
	other := auth.NewJWTService("other-secret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, other, model.UserRoleCustomer))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	r, jwt := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, model.UserRoleAdmin))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwt, model.UserRoleCustomer))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
