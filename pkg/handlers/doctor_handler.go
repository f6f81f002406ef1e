package handlers

import (
	"net/http"
	"strconv"

	"health-chat-api/pkg/models"
	"health-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// DoctorHandler は医師ディレクトリのハンドラです。
type DoctorHandler struct {
	doctorService *services.DoctorService
}

// NewDoctorHandler は新しいDoctorHandlerを生成します。
func NewDoctorHandler(doctorService *services.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorService: doctorService}
}

// Search は条件に一致する医師の一覧をページングして返します。
func (h *DoctorHandler) Search(c *gin.Context) {
	if h.doctorService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "データベースサービスが利用できません。設定を確認してください。",
		})
		return
	}

	query := models.DoctorSearchQuery{
		Specialization: c.Query("specialization"),
		Location:       c.Query("location"),
	}
	if v := c.Query("min_rating"); v != "" {
		if rating, err := strconv.ParseFloat(v, 64); err == nil {
			query.MinRating = &rating
		}
	}
	if v := c.Query("max_fees"); v != "" {
		if fees, err := strconv.ParseFloat(v, 64); err == nil {
			query.MaxFees = &fees
		}
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(services.DefaultDoctorPageSize)))

	doctors, total, err := h.doctorService.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "医師の検索に失敗しました: " + err.Error()})
		return
	}
	if doctors == nil {
		doctors = []models.Doctor{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    doctors,
		"pagination": gin.H{
			"page":        query.Page,
			"total":       total,
			"total_pages": totalPages(total, query.PageSize, services.DefaultDoctorPageSize),
		},
	})
}
