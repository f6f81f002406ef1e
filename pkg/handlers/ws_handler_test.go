package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"health-chat-api/pkg/models"
	"health-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestWebSocketChat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/chat/ws", NewWSHandler(newTestDialogueService(t), services.NewSessionLocker()).Chat)

	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/chat/ws?session_key=ws1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer conn.Close()

	// 1ターン目: 症状を申告
	err = conn.WriteJSON(models.ChatRequest{Message: "I have fever and cough"})
	assert.NoError(t, err)

	var resp models.ChatResponse
	err = conn.ReadJSON(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "success", resp.Type)
	assert.Equal(t, "ws1", resp.SessionKey)
	assert.Contains(t, resp.Response, "I detected these symptoms")

	// 2ターン目: 同一コネクションで会話が継続する
	err = conn.WriteJSON(models.ChatRequest{Message: "yes"})
	assert.NoError(t, err)
	err = conn.ReadJSON(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "success", resp.Type)
}

// HTTPターンとWebSocketフレームが同一セッションで競合しても、
// 共有ロックにより状態が1ターンずつ進むことを確認する。
func TestChatSerializedAcrossTransports(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rows := [][]string{
		{"itching", "skin_rash", "fever", "headache", "cough", "chills", "prognosis"},
		{"1", "1", "0", "0", "0", "0", "Fungal infection"},
		{"0", "0", "1", "1", "1", "1", "Common Cold"},
	}
	dataset := services.NewDatasetService()
	assert.NoError(t, dataset.LoadRows(rows))
	classifier := services.NewClassifierService(dataset)
	assert.NoError(t, classifier.Train())
	store := services.NewMemorySessionStore()
	dialogue := services.NewDialogueService(
		services.NewLexiconService(dataset, nil, 0.8), classifier,
		services.NewKnowledgeBaseService(), dataset, store, nil, "", 5,
	)

	// 両ハンドラが同じロックを共有する（本番の配線と同じ）
	locker := services.NewSessionLocker()
	router := gin.New()
	router.POST("/api/v1/chat", NewChatHandler(dialogue, locker).Chat)
	router.GET("/api/v1/chat/ws", NewWSHandler(dialogue, locker).Chat)

	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/chat/ws?session_key=s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer conn.Close()

	messages := []string{"I have fever and cough", "yes", "no", "I have itching"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, _ := json.Marshal(models.ChatRequest{
				Message:    messages[i%len(messages)],
				SessionKey: "s1",
			})
			resp, err := http.Post(server.URL+"/api/v1/chat", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Errorf("HTTPチャットリクエストに失敗: %v", err)
				return
			}
			resp.Body.Close()
		}(i)
	}

	// WebSocket側は同時に同じセッションへフレームを送る
	for _, msg := range messages {
		err = conn.WriteJSON(models.ChatRequest{Message: msg})
		assert.NoError(t, err)
		var resp models.ChatResponse
		assert.NoError(t, conn.ReadJSON(&resp))
		assert.Equal(t, "s1", resp.SessionKey)
	}
	wg.Wait()

	// 直列化されていれば状態は常にターン単位で整合している
	state, ok := store.Get("s1")
	assert.True(t, ok)
	seen := make(map[string]bool)
	for _, sym := range state.ConfirmedSymptoms {
		assert.False(t, seen[sym], "確認済み症状が重複: %s", sym)
		seen[sym] = true
	}
	assert.Contains(t, []models.DialogueStage{
		models.StageInitial, models.StageAwaitingConfirmation, models.StageComplete,
	}, state.Stage)
}

func TestWebSocketEmptyMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/chat/ws", NewWSHandler(newTestDialogueService(t), services.NewSessionLocker()).Chat)

	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer conn.Close()

	err = conn.WriteJSON(models.ChatRequest{Message: ""})
	assert.NoError(t, err)

	var resp models.ChatResponse
	err = conn.ReadJSON(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "error", resp.Type)

	// セッションキー未指定でも接続ごとに採番されて返る
	assert.NotEmpty(t, resp.SessionKey)
}
