package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"health-chat-api/pkg/models"
	"health-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// PredictionHandler はリスク予測エンドポイントのハンドラです。
// predictionServiceがnilの場合（DB未接続）は履歴保存をスキップします。
type PredictionHandler struct {
	riskModelService  *services.RiskModelService
	predictionService *services.PredictionService
}

// NewPredictionHandler は新しいPredictionHandlerを生成します。
func NewPredictionHandler(riskModelService *services.RiskModelService, predictionService *services.PredictionService) *PredictionHandler {
	return &PredictionHandler{
		riskModelService:  riskModelService,
		predictionService: predictionService,
	}
}

// PredictDiabetes は糖尿病リスクを予測します。
func (h *PredictionHandler) PredictDiabetes(c *gin.Context) {
	var input models.DiabetesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストの形式が正しくありません: " + err.Error()})
		return
	}
	h.predict(c, "diabetes", input.FeatureVector(), &input)
}

// PredictHeartDisease は心疾患リスクを予測します。
func (h *PredictionHandler) PredictHeartDisease(c *gin.Context) {
	var input models.HeartDiseaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストの形式が正しくありません: " + err.Error()})
		return
	}
	h.predict(c, "heart_disease", input.FeatureVector(), &input)
}

// PredictParkinsons はパーキンソン病リスクを予測します。
func (h *PredictionHandler) PredictParkinsons(c *gin.Context) {
	var input models.ParkinsonsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストの形式が正しくありません: " + err.Error()})
		return
	}
	h.predict(c, "parkinsons", input.FeatureVector(), &input)
}

// predict は疾病タイプごとの予測と履歴保存の共通処理です。
func (h *PredictionHandler) predict(c *gin.Context, diseaseType string, features []float64, input interface{}) {
	if h.riskModelService == nil || !h.riskModelService.Available(diseaseType) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "予測モデルが利用できません。設定を確認してください。",
		})
		return
	}

	result, err := h.riskModelService.Predict(diseaseType, features)
	if err != nil {
		if errors.Is(err, services.ErrModelUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "予測モデルが利用できません。"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "予測に失敗しました: " + err.Error()})
		return
	}

	// ユーザーIDがあれば履歴に保存する（失敗しても応答は返す）
	userID := c.Query("user_id")
	if h.predictionService != nil && userID != "" {
		record := &models.PredictionRecord{
			UserID:           userID,
			DiseaseType:      diseaseType,
			PredictionResult: result.Prediction,
			ConfidenceScore:  result.Confidence,
			InputData:        toMap(input),
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.predictionService.Save(ctx, record); err != nil {
			log.Printf("予測履歴の保存に失敗: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"disease_type": diseaseType,
		"result":       result,
	})
}

// GetHistory はユーザーの予測履歴をページングして返します。
func (h *PredictionHandler) GetHistory(c *gin.Context) {
	if h.predictionService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "データベースサービスが利用できません。設定を確認してください。",
		})
		return
	}

	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_idが必要です。"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(services.DefaultPredictionPageSize)))

	records, total, err := h.predictionService.List(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "履歴の取得に失敗しました: " + err.Error()})
		return
	}
	if records == nil {
		records = []models.PredictionRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
		"pagination": gin.H{
			"page":        page,
			"total":       total,
			"total_pages": totalPages(total, pageSize, services.DefaultPredictionPageSize),
		},
	})
}

// toMap は入力構造体をJSONB保存用のマップに変換します。
func toMap(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// totalPages は総件数からページ数を計算します。
func totalPages(total, pageSize, defaultSize int) int {
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	return (total + pageSize - 1) / pageSize
}
