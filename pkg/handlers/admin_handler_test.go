package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	config "health-chat-api/configs"
	"health-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAdminRouter(t *testing.T) (*gin.Engine, *services.ClassifierService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{AdminUsername: "admin", AdminPassword: "secret"}
	dataset := services.NewDatasetService()
	classifier := services.NewClassifierService(dataset)
	handler := NewAdminHandler(cfg, dataset, classifier)

	router := gin.New()
	router.GET("/health", HealthCheck)
	admin := router.Group("/api/v1/admin")
	{
		admin.GET("/health-status", handler.GetHealthStatus)
		admin.POST("/maintenance/start", handler.StartMaintenance)
		admin.POST("/maintenance/stop", handler.StopMaintenance)
		admin.POST("/dataset/import", handler.ImportDataset)
	}
	return router, classifier
}

func TestMaintenanceMode(t *testing.T) {
	router, _ := newAdminRouter(t)
	defer postJSON(router, "/api/v1/admin/maintenance/stop", gin.H{"username": "admin", "password": "secret"})

	// 通常時のヘルスチェック
	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// メンテナンス開始
	w = postJSON(router, "/api/v1/admin/maintenance/start", gin.H{"username": "admin", "password": "secret"})
	assert.Equal(t, http.StatusOK, w.Code)

	// メンテナンス中のヘルスチェックは503
	req, _ = http.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// メンテナンス停止で復帰
	w = postJSON(router, "/api/v1/admin/maintenance/stop", gin.H{"username": "admin", "password": "secret"})
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMaintenanceInvalidCredentials(t *testing.T) {
	router, _ := newAdminRouter(t)

	w := postJSON(router, "/api/v1/admin/maintenance/start", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(router, "/api/v1/admin/maintenance/start", gin.H{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHealthStatus(t *testing.T) {
	router, _ := newAdminRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/admin/health-status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "isMaintenanceMode")
	assert.Contains(t, w.Body.String(), "classifierTrained")
}

func importDatasetRequest(t *testing.T, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("file", fileName)
	assert.NoError(t, err)
	_, err = part.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req, _ := http.NewRequest("POST", "/api/v1/admin/dataset/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestImportDataset(t *testing.T) {
	router, classifier := newAdminRouter(t)
	assert.False(t, classifier.Available())

	csvContent := "itching,fever,cough,prognosis\n" +
		"1,0,0,Fungal infection\n" +
		"0,1,1,Common Cold\n"
	req := importDatasetRequest(t, "Training.csv", csvContent, map[string]string{
		"username": "admin", "password": "secret",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "retrained")

	// インポート後は分類器が利用可能になる
	assert.True(t, classifier.Available())
}

func TestImportDatasetUnauthorized(t *testing.T) {
	router, _ := newAdminRouter(t)

	req := importDatasetRequest(t, "Training.csv", "itching,prognosis\n1,X\n", map[string]string{
		"username": "admin", "password": "wrong",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImportDatasetUnsupportedExtension(t *testing.T) {
	router, _ := newAdminRouter(t)

	req := importDatasetRequest(t, "Training.txt", "whatever", map[string]string{
		"username": "admin", "password": "secret",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportDatasetInvalidTable(t *testing.T) {
	router, _ := newAdminRouter(t)

	// ヘッダーのみの学習テーブルは拒否される
	req := importDatasetRequest(t, "Training.csv", "itching,prognosis\n", map[string]string{
		"username": "admin", "password": "secret",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
