package handlers

import (
	"log"
	"net/http"

	"health-chat-api/pkg/models"
	"health-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// フロントエンドは別オリジンで動作するため全オリジンを許可
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler はWebSocket経由のチャットハンドラです。
// 1コネクション = 1セッションとして、接続中の全メッセージを同じ会話に紐付けます。
// sessionLockerはChatHandlerと共有し、HTTPターンとWebSocketフレームが
// 同一セッションの状態を同時に進めないようにします。
type WSHandler struct {
	dialogueService *services.DialogueService
	sessionLocker   *services.SessionLocker
}

// NewWSHandler は新しいWSHandlerを生成します。
func NewWSHandler(dialogueService *services.DialogueService, sessionLocker *services.SessionLocker) *WSHandler {
	return &WSHandler{
		dialogueService: dialogueService,
		sessionLocker:   sessionLocker,
	}
}

// Chat はWebSocket接続をアップグレードし、メッセージごとに応答を返します。
func (h *WSHandler) Chat(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocketへのアップグレードに失敗: %v", err)
		return
	}
	defer conn.Close()

	// クエリパラメータのセッションキーを優先し、無ければ接続ごとに生成
	sessionKey := c.Query("session_key")
	if sessionKey == "" {
		sessionKey = uuid.New().String()
	}
	log.Printf("🔌 WebSocketチャット接続を開始: session=%s", sessionKey)

	for {
		var req models.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket読み取りエラー: %v", err)
			}
			return
		}

		resp := h.handleMessage(sessionKey, &req)
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("WebSocket書き込みエラー: %v", err)
			return
		}
	}
}

// handleMessage は1メッセージ分の処理をHTTPハンドラと同じ規約で行います。
func (h *WSHandler) handleMessage(sessionKey string, req *models.ChatRequest) models.ChatResponse {
	if req.Message == "" {
		return models.ChatResponse{
			Response:   "メッセージが必要です。",
			Type:       "error",
			SessionKey: sessionKey,
		}
	}

	// メッセージ側で明示されたセッションキーは接続既定より優先する
	if req.SessionKey != "" {
		sessionKey = req.SessionKey
	}

	if h.dialogueService == nil || !h.dialogueService.Available() {
		return models.ChatResponse{
			Response:   chatbotUnavailableMessage,
			Type:       "error",
			SessionKey: sessionKey,
		}
	}

	unlock := h.sessionLocker.Lock(sessionKey)
	defer unlock()

	reply, err := h.dialogueService.ProcessMessage(sessionKey, req.Message)
	if err != nil {
		log.Printf("WebSocketチャットの処理に失敗: %v", err)
		return models.ChatResponse{
			Response:   "Sorry, there was an error processing your request. Please try again.",
			Type:       "error",
			SessionKey: sessionKey,
		}
	}

	return models.ChatResponse{
		Response:   reply,
		Type:       "success",
		SessionKey: sessionKey,
	}
}
