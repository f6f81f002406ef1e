package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"health-chat-api/pkg/models"
	"health-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// テスト用のチャットボット一式（小さな学習テーブルで学習済み）
func newTestDialogueService(t *testing.T) *services.DialogueService {
	t.Helper()
	rows := [][]string{
		{"itching", "skin_rash", "fever", "headache", "cough", "chills", "prognosis"},
		{"1", "1", "0", "0", "0", "0", "Fungal infection"},
		{"0", "0", "1", "1", "1", "1", "Common Cold"},
		{"0", "0", "1", "0", "1", "1", "Common Cold"},
	}
	dataset := services.NewDatasetService()
	if err := dataset.LoadRows(rows); err != nil {
		t.Fatalf("学習テーブルの読み込みに失敗: %v", err)
	}
	classifier := services.NewClassifierService(dataset)
	if err := classifier.Train(); err != nil {
		t.Fatalf("分類器の学習に失敗: %v", err)
	}
	lexicon := services.NewLexiconService(dataset, nil, 0.8)
	return services.NewDialogueService(
		lexicon, classifier, services.NewKnowledgeBaseService(), dataset,
		services.NewMemorySessionStore(), nil, "⚠️ Disclaimer.", 5,
	)
}

func newChatRouter(dialogue *services.DialogueService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewChatHandler(dialogue, services.NewSessionLocker())
	router.POST("/api/v1/chat", handler.Chat)
	router.POST("/api/v1/chat/reset", handler.Reset)
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatEndpoint(t *testing.T) {
	router := newChatRouter(newTestDialogueService(t))

	w := postJSON(router, "/api/v1/chat", models.ChatRequest{Message: "I have fever and cough"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ChatResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Type)
	assert.Contains(t, resp.Response, "I detected these symptoms")

	// セッションキーを省略した場合は新規生成されて返る
	assert.NotEmpty(t, resp.SessionKey)
}

func TestChatMultiTurnSession(t *testing.T) {
	router := newChatRouter(newTestDialogueService(t))

	w := postJSON(router, "/api/v1/chat", models.ChatRequest{Message: "I have fever and cough", SessionKey: "s1"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ChatResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionKey)
	assert.Contains(t, resp.Response, "Do you also have")

	// 同一セッションで追質問に回答すると会話が継続する
	w = postJSON(router, "/api/v1/chat", models.ChatRequest{Message: "yes", SessionKey: "s1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Type)
}

func TestChatMissingMessage(t *testing.T) {
	router := newChatRouter(newTestDialogueService(t))

	w := postJSON(router, "/api/v1/chat", gin.H{"session_key": "s1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ChatResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Type)
}

func TestChatUnavailable(t *testing.T) {
	// 学習テーブルが無い = 分類器が利用不可
	dataset := services.NewDatasetService()
	classifier := services.NewClassifierService(dataset)
	dialogue := services.NewDialogueService(
		services.NewLexiconService(dataset, nil, 0.8), classifier,
		services.NewKnowledgeBaseService(), dataset,
		services.NewMemorySessionStore(), nil, "", 5,
	)
	router := newChatRouter(dialogue)

	w := postJSON(router, "/api/v1/chat", models.ChatRequest{Message: "I have fever"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "currently unavailable")
}

func TestChatReset(t *testing.T) {
	router := newChatRouter(newTestDialogueService(t))

	w := postJSON(router, "/api/v1/chat", models.ChatRequest{Message: "I have fever and cough", SessionKey: "s1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/v1/chat/reset", models.ResetRequest{SessionKey: "s1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")

	// リセット後は新しい相談として最初から始まる
	w = postJSON(router, "/api/v1/chat", models.ChatRequest{Message: "I have itching and skin rash", SessionKey: "s1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fungal infection")
}

func TestChatResetMissingSessionKey(t *testing.T) {
	router := newChatRouter(newTestDialogueService(t))

	w := postJSON(router, "/api/v1/chat/reset", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
