package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"regional-storefront-go/internal/logger"
	"regional-storefront-go/internal/middleware"
	"regional-storefront-go/internal/region"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type seen struct {
	ginCode    string
	headerCode string
	ctxCode    string
}

func serveRegion(t *testing.T, host, spoofed string) (*httptest.ResponseRecorder, seen) {
	t.Helper()

	var got seen
	router := gin.New()
	router.Use(middleware.RegionMiddleware(region.DefaultRegistry()))
	router.GET("/probe", func(c *gin.Context) {
		got = seen{
			ginCode:    middleware.RegionCode(c),
			headerCode: c.GetHeader(middleware.RegionHeader),
			ctxCode:    region.CodeFromContext(c.Request.Context()),
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Host = host
	if spoofed != "" {
		req.Header.Set(middleware.RegionHeader, spoofed)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, got
}

func TestRegionMiddleware_PublishesRegion(t *testing.T) {
	rec, got := serveRegion(t, "Yalta.Example.com", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "yalta", got.ginCode)
	assert.Equal(t, "yalta", got.headerCode)
	assert.Equal(t, "yalta", got.ctxCode)
	assert.Equal(t, "yalta", rec.Header().Get(middleware.RegionHeader))
}

func TestRegionMiddleware_UnknownHostIsDefault(t *testing.T) {
	rec, got := serveRegion(t, "moscow.example.com", "")

	assert.Equal(t, "default", got.ginCode)
	assert.Equal(t, "default", rec.Header().Get(middleware.RegionHeader))
}

func TestRegionMiddleware_OverwritesClientHeader(t *testing.T) {
	_, got := serveRegion(t, "example.com", "yalta")

	assert.Equal(t, "default", got.headerCode)
}

func TestRegionCode_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "default", middleware.RegionCode(c))
}

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func serveAuth(t *testing.T, authorization string) (*httptest.ResponseRecorder, int) {
	t.Helper()

	userID := 0
	router := gin.New()
	router.Use(middleware.JWTAuthMiddleware(testSecret))
	router.GET("/admin", func(c *gin.Context) {
		userID = c.GetInt("user_id")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec, userID
}

func TestJWTAuthMiddleware(t *testing.T) {
	valid := signToken(t, testSecret, jwt.MapClaims{
		"user_id":  42,
		"username": "editor",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	foreign := signToken(t, "other-secret", jwt.MapClaims{"user_id": 42})
	noUser := signToken(t, testSecret, jwt.MapClaims{"username": "ghost"})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   int
	}{
		{"missing header", "", http.StatusUnauthorized, 0},
		{"not bearer", "Basic abc", http.StatusUnauthorized, 0},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, 0},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, 0},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized, 0},
		{"no user id", "Bearer " + noUser, http.StatusUnauthorized, 0},
		{"valid", "Bearer " + valid, http.StatusOK, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, userID := serveAuth(t, tt.header)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, userID)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(middleware.RegionMiddleware(region.DefaultRegistry()))
	router.Use(middleware.RequestLogger(logger.FromZap(zap.New(core))))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Host = "kerch.example.com"
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "kerch", entries[0].ContextMap()["region"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}
