package handlers

import (
	"log"
	"net/http"

	"health-chat-api/pkg/models"
	"health-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// チャットボットが利用不可のときに返す固定メッセージ
const chatbotUnavailableMessage = "Sorry, the chatbot is currently unavailable. Please try again later."

// ChatHandler は症状チェッカーチャットボットのハンドラです。
// sessionLockerはHTTP/WebSocketの全チャット入口で共有する必要があります。
// 入口ごとに別のロックを持つと同一セッションのターンが直列化されません。
type ChatHandler struct {
	dialogueService *services.DialogueService
	sessionLocker   *services.SessionLocker
}

// NewChatHandler は新しいChatHandlerを生成します。
func NewChatHandler(dialogueService *services.DialogueService, sessionLocker *services.SessionLocker) *ChatHandler {
	return &ChatHandler{
		dialogueService: dialogueService,
		sessionLocker:   sessionLocker,
	}
}

// Chat は1ターン分のチャットメッセージを処理します。
// 同一セッションへの同時リクエストはセッション単位で直列化されます。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ChatResponse{
			Response: "リクエストの形式が正しくありません: " + err.Error(),
			Type:     "error",
		})
		return
	}

	// セッションキーが指定されていない場合は新規生成
	if req.SessionKey == "" {
		req.SessionKey = uuid.New().String()
	}

	if h.dialogueService == nil || !h.dialogueService.Available() {
		c.JSON(http.StatusServiceUnavailable, models.ChatResponse{
			Response:   chatbotUnavailableMessage,
			Type:       "error",
			SessionKey: req.SessionKey,
		})
		return
	}

	unlock := h.sessionLocker.Lock(req.SessionKey)
	defer unlock()

	reply, err := h.dialogueService.ProcessMessage(req.SessionKey, req.Message)
	if err != nil {
		log.Printf("チャットメッセージの処理に失敗: %v", err)
		c.JSON(http.StatusInternalServerError, models.ChatResponse{
			Response:   "Sorry, there was an error processing your request. Please try again.",
			Type:       "error",
			SessionKey: req.SessionKey,
		})
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{
		Response:   reply,
		Type:       "success",
		SessionKey: req.SessionKey,
	})
}

// Reset はセッションの会話状態を破棄します。
func (h *ChatHandler) Reset(c *gin.Context) {
	var req models.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "セッションキーが必要です: " + err.Error()})
		return
	}

	if h.dialogueService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "チャットボットサービスが利用できません。"})
		return
	}

	h.dialogueService.Reset(req.SessionKey)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
