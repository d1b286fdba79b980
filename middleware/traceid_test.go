package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracedRouter() *gin.Engine {
	r := gin.New()
	r.Use(TraceID())
	r.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, GetTraceID(c))
	})
	return r
}

func TestTraceIDGeneratesUUID(t *testing.T) {
	r := tracedRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Body.String()
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Header().Get(TraceIDHeader))
}

func TestTraceIDHonorsIncomingHeader(t *testing.T) {
	r := tracedRouter()
	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(TraceIDHeader, "caller-supplied")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "caller-supplied", w.Body.String())
	assert.Equal(t, "caller-supplied", w.Header().Get(TraceIDHeader))
}

func TestTraceIDUniqueAcrossRequests(t *testing.T) {
	r := tracedRouter()
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/id", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.NotEqual(t, w1.Body.String(), w2.Body.String())
}

func TestGetTraceIDOutsideMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetTraceID(c))
}
