package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/trovemarket/settle/config"
)

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecretKeyAuthMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestSecretKeyAuthMiddleware(t *testing.T) {
	config.MockConfig(&config.Configuration{
		Server: config.ServerConfig{SecretKey: "super-secret"},
	})
	router := protectedRouter()

	cases := []struct {
		name   string
		key    string
		status int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "nope", http.StatusUnauthorized},
		{"correct key", "super-secret", http.StatusOK},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ping", nil)
			if c.key != "" {
				req.Header.Set("X-Settle-Key", c.key)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			assert.Equal(t, c.status, resp.Code)
		})
	}
}

func TestRateLimitMiddleware_DisabledByDefault(t *testing.T) {
	conf := &config.Configuration{}
	handler := RateLimitMiddleware(conf)
	assert.NotNil(t, handler)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handler)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest("GET", "/ping", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusOK, resp.Code)
	}
}
