package handlers

import (
	"net/http"

	"health-chat-api/pkg/models"
	"health-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ContactHandler は問い合わせフォームのハンドラです。
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler は新しいContactHandlerを生成します。
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Submit は問い合わせメッセージを受け付けます。
func (h *ContactHandler) Submit(c *gin.Context) {
	if h.contactService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "データベースサービスが利用できません。設定を確認してください。",
		})
		return
	}

	var msg models.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストの形式が正しくありません: " + err.Error()})
		return
	}

	if err := h.contactService.Save(c.Request.Context(), &msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "問い合わせの保存に失敗しました。"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "id": msg.ID})
}
