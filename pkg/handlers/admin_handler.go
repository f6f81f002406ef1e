package handlers

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"

	config "health-chat-api/configs"
	"health-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// isMaintenanceMode はサーバーがメンテナンスモードかどうかを示します。
// atomic.Boolを使用して、スレッドセーフな読み書きを保証します。
var isMaintenanceMode atomic.Bool

// AdminHandler は管理者向け操作のハンドラです。
type AdminHandler struct {
	AdminUsername     string
	AdminPassword     string
	datasetService    *services.DatasetService
	classifierService *services.ClassifierService
}

// NewAdminHandler は新しいAdminHandlerを生成します。
func NewAdminHandler(cfg *config.Config, datasetService *services.DatasetService, classifierService *services.ClassifierService) *AdminHandler {
	return &AdminHandler{
		AdminUsername:     cfg.AdminUsername,
		AdminPassword:     cfg.AdminPassword,
		datasetService:    datasetService,
		classifierService: classifierService,
	}
}

// AdminCredentials は管理者認証のためのリクエストボディです。
type AdminCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// StartMaintenance はメンテナンスモードを開始します。
func (h *AdminHandler) StartMaintenance(c *gin.Context) {
	var input AdminCredentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	if input.Username != h.AdminUsername || input.Password != h.AdminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	isMaintenanceMode.Store(true)
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode started"})
}

// StopMaintenance はメンテナンスモードを停止します。
func (h *AdminHandler) StopMaintenance(c *gin.Context) {
	var input AdminCredentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	if input.Username != h.AdminUsername || input.Password != h.AdminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	isMaintenanceMode.Store(false)
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode stopped"})
}

// GetHealthStatus は現在のサーバーの状態を返します。
func (h *AdminHandler) GetHealthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"isMaintenanceMode": isMaintenanceMode.Load(),
		"classifierTrained": h.classifierService != nil && h.classifierService.Available(),
	})
}

// ImportDataset は学習テーブル（CSV/Excel）をアップロードで差し替え、
// 分類器を再学習します。認証情報はフォームフィールドで渡します。
func (h *AdminHandler) ImportDataset(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username != h.AdminUsername || password != h.AdminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ファイルが必要です: " + err.Error()})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("未対応のファイル形式です: %s（.csv または .xlsx のみ）", ext)})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ファイルのオープンに失敗しました。"})
		return
	}
	defer file.Close()

	rows, err := services.ReadTable(file, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ファイルの解析に失敗しました: " + err.Error()})
		return
	}

	if err := h.datasetService.LoadRows(rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "学習テーブルの読み込みに失敗しました: " + err.Error()})
		return
	}

	if err := h.classifierService.Train(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "分類器の再学習に失敗しました: " + err.Error()})
		return
	}

	log.Printf("✅ 学習テーブルを更新して再学習しました: %s (%d行)", fileHeader.Filename, len(rows)-1)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Dataset imported and classifier retrained",
		"rows":     len(rows) - 1,
		"symptoms": len(h.datasetService.Symptoms()),
		"diseases": len(h.datasetService.Diseases()),
	})
}

// HealthCheck は外部のヘルスチェッカー（例: ロードバランサー）からのリクエストに応答します。
func HealthCheck(c *gin.Context) {
	if isMaintenanceMode.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Server is in maintenance mode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
