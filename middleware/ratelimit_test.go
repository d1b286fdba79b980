package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func limitedRouter(r rate.Limit, b int) *gin.Engine {
	eng := gin.New()
	eng.Use(RateLimit(r, b))
	eng.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng
}

func hitFrom(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitAllowsWithinBurst(t *testing.T) {
	r := limitedRouter(0.001, 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hitFrom(r, "10.0.0.1"), "request %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, hitFrom(r, "10.0.0.1"))
}

func TestRateLimitIsPerIP(t *testing.T) {
	r := limitedRouter(0.001, 1)

	assert.Equal(t, http.StatusOK, hitFrom(r, "10.0.1.1"))
	assert.Equal(t, http.StatusOK, hitFrom(r, "10.0.1.2"))
	assert.Equal(t, http.StatusTooManyRequests, hitFrom(r, "10.0.1.1"))
}

func TestLimiterStoreSweep(t *testing.T) {
	s := &limiterStore{rps: 1, burst: 1, clients: make(map[string]*clientLimiter)}
	s.get("10.2.0.1")
	s.clients["10.2.0.1"].lastSeen = s.clients["10.2.0.1"].lastSeen.Add(-2 * limiterIdleTimeout)
	s.get("10.2.0.2")

	s.sweep()
	assert.NotContains(t, s.clients, "10.2.0.1")
	assert.Contains(t, s.clients, "10.2.0.2")
}
