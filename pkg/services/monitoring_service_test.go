package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := NewMonitoringService()
	router := gin.New()
	router.Use(svc.LoggingMiddleware())
	router.GET("/api/v1/chat", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/api/v1/admin/health-status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/api/v1/monitoring/logs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for _, path := range []string{"/api/v1/chat", "/api/v1/admin/health-status", "/api/v1/monitoring/logs"} {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// 管理・モニタリング系のパスは集計から除外される
	data := svc.GetDashboardData(24)
	assert.Equal(t, 1, data.TotalRequests)
	assert.Equal(t, 1, data.Endpoints["/api/v1/chat"])
	assert.NotContains(t, data.Endpoints, "/api/v1/admin/health-status")
}

func TestGetDashboardData(t *testing.T) {
	svc := NewMonitoringService()
	now := time.Now()

	svc.LogRequest(RequestLog{Timestamp: now, Path: "/api/v1/chat", Method: "POST", StatusCode: 200, ResponseTime: 10 * time.Millisecond})
	svc.LogRequest(RequestLog{Timestamp: now, Path: "/api/v1/chat", Method: "POST", StatusCode: 400, ResponseTime: 20 * time.Millisecond})
	svc.LogRequest(RequestLog{Timestamp: now, Path: "/api/v1/doctors", Method: "GET", StatusCode: 500, ResponseTime: 30 * time.Millisecond})

	// 期間外のログは集計に含まれない
	svc.LogRequest(RequestLog{Timestamp: now.Add(-48 * time.Hour), Path: "/api/v1/chat", Method: "POST", StatusCode: 200})

	data := svc.GetDashboardData(24)
	assert.Equal(t, 3, data.TotalRequests)
	assert.Equal(t, 2, data.Endpoints["/api/v1/chat"])
	assert.Equal(t, 1, data.StatusCodes["2xx Success"])
	assert.Equal(t, 1, data.StatusCodes["4xx Client Error"])
	assert.Equal(t, 1, data.StatusCodes["5xx Server Error"])

	assert.Len(t, data.RecentErrors, 1)
	assert.Equal(t, "/api/v1/doctors", data.RecentErrors[0].Path)
}
