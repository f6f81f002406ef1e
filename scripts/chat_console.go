//go:build ignore

package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	config "health-chat-api/configs"
	"health-chat-api/pkg/services"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// チャットボットをサーバー無しで対話的に試すためのコンソールツール。
// go run scripts/chat_console.go
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.LoadConfig()

	content, err := config.LoadChatbotContent(filepath.Join(cfg.DataDir, cfg.ContentFile))
	if err != nil {
		log.Printf("⚠️ 会話コンテンツの読み込みに失敗（デフォルトを使用します）: %v", err)
		content = config.DefaultChatbotContent()
	}

	datasetService := services.NewDatasetService()
	if err := datasetService.LoadFromFile(filepath.Join(cfg.DataDir, cfg.TrainingDataFile)); err != nil {
		log.Fatalf("学習テーブルの読み込みに失敗: %v", err)
	}

	classifierService := services.NewClassifierService(datasetService)
	if err := classifierService.Train(); err != nil {
		log.Fatalf("分類器の学習に失敗: %v", err)
	}

	knowledgeService := services.NewKnowledgeBaseService()
	if err := knowledgeService.LoadDescriptions(filepath.Join(cfg.DataDir, cfg.DescriptionFile)); err != nil {
		log.Printf("⚠️ 疾病説明データの読み込みに失敗: %v", err)
	}
	if err := knowledgeService.LoadPrecautions(filepath.Join(cfg.DataDir, cfg.PrecautionFile)); err != nil {
		log.Printf("⚠️ 予防策データの読み込みに失敗: %v", err)
	}

	lexiconService := services.NewLexiconService(datasetService, content.Synonyms, cfg.FuzzyCutoff)
	dialogueService := services.NewDialogueService(
		lexiconService,
		classifierService,
		knowledgeService,
		datasetService,
		services.NewMemorySessionStore(),
		content.Quotes,
		content.Disclaimer,
		cfg.MaxFollowUpQuestions,
	)

	sessionKey := uuid.New().String()
	fmt.Println("💬 症状チェッカーチャットボット（終了: quit）")
	fmt.Println("Please describe your symptoms (e.g., 'I have fever and headache').")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "quit" || message == "exit" {
			break
		}

		reply, err := dialogueService.ProcessMessage(sessionKey, message)
		if err != nil {
			log.Printf("❌ メッセージの処理に失敗: %v", err)
			continue
		}
		fmt.Println(reply)
	}
}
