package main

import (
	"context"
	"log"
	"net/http"
	"path/filepath"

	config "health-chat-api/configs"
	"health-chat-api/pkg/database"
	"health-chat-api/pkg/handlers"
	"health-chat-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()

	// Ginルーターの初期化
	r := gin.Default()

	// サービスの初期化
	monitoringService := services.NewMonitoringService()

	content, err := config.LoadChatbotContent(filepath.Join(cfg.DataDir, cfg.ContentFile))
	if err != nil {
		log.Printf("⚠️ 会話コンテンツの読み込みに失敗（デフォルトを使用します）: %v", err)
		content = config.DefaultChatbotContent()
	}

	datasetService := services.NewDatasetService()
	if err := datasetService.LoadFromFile(filepath.Join(cfg.DataDir, cfg.TrainingDataFile)); err != nil {
		log.Printf("FATAL: 学習テーブルの読み込みに失敗（チャットボットは利用不可になります）: %v", err)
	}

	classifierService := services.NewClassifierService(datasetService)
	if err := classifierService.Train(); err != nil {
		log.Printf("FATAL: 分類器の学習に失敗（チャットボットは利用不可になります）: %v", err)
	} else {
		log.Printf("✅ 分類器を学習しました: %d症状 / %d疾病",
			len(datasetService.Symptoms()), len(datasetService.Diseases()))
	}

	knowledgeService := services.NewKnowledgeBaseService()
	if err := knowledgeService.LoadSeverity(filepath.Join(cfg.DataDir, cfg.SeverityFile)); err != nil {
		log.Printf("⚠️ 重症度データの読み込みに失敗: %v", err)
	}
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

	riskModelService := services.NewRiskModelService()
	riskModelService.LoadFromDir(filepath.Join(cfg.DataDir, cfg.RiskModelDir))

	// PostgreSQLは任意: 未接続でも予測・チャットは動作する
	var (
		pool              *pgxpool.Pool
		doctorService     *services.DoctorService
		predictionService *services.PredictionService
		contactService    *services.ContactService
	)
	if cfg.DatabaseURL != "" {
		pool, err = database.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Printf("⚠️ データベース接続に失敗（履歴・医師検索は利用不可になります）: %v", err)
		} else {
			defer pool.Close()
			if err := database.EnsureSchema(context.Background(), pool); err != nil {
				log.Printf("⚠️ スキーマの初期化に失敗: %v", err)
			}
			doctorService = services.NewDoctorService(pool)
			predictionService = services.NewPredictionService(pool)
			contactService = services.NewContactService(pool)
			log.Println("✅ PostgreSQLに接続しました")
		}
	} else {
		log.Println("⚠️ DATABASE_URLが未設定のため、履歴・医師検索・問い合わせは利用不可になります")
	}

	// ハンドラーの初期化
	// セッションロックはHTTPとWebSocketのチャット入口で共有する
	sessionLocker := services.NewSessionLocker()
	chatHandler := handlers.NewChatHandler(dialogueService, sessionLocker)
	wsHandler := handlers.NewWSHandler(dialogueService, sessionLocker)
	predictionHandler := handlers.NewPredictionHandler(riskModelService, predictionService)
	doctorHandler := handlers.NewDoctorHandler(doctorService)
	contactHandler := handlers.NewContactHandler(contactService)
	adminHandler := handlers.NewAdminHandler(cfg, datasetService, classifierService)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// ミドルウェアの登録
	r.Use(monitoringService.LoggingMiddleware()) // ロギングミドルウェアをグローバルに適用
	r.Use(cors.Default())

	// 認証ミドルウェア
	authMiddleware := func(apiKey string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if apiKey == "" || apiKey == "default_secret_key" {
				c.Next()
				return
			}
			providedKey := c.GetHeader("X-API-KEY")
			if providedKey != apiKey {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
		}
	}

	// ヘルスチェックエンドポイント
	r.GET("/health", handlers.HealthCheck)

	// APIバージョン1のルートグループ
	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(cfg.APIKey))
	{
		// 症状チェッカーチャットボットAPI
		chat := v1.Group("/chat")
		{
			chat.POST("", chatHandler.Chat)
			chat.POST("/reset", chatHandler.Reset)
			chat.GET("/ws", wsHandler.Chat)
		}

		// リスク予測API
		predict := v1.Group("/predict")
		{
			predict.POST("/diabetes", predictionHandler.PredictDiabetes)
			predict.POST("/heart-disease", predictionHandler.PredictHeartDisease)
			predict.POST("/parkinsons", predictionHandler.PredictParkinsons)
		}
		v1.GET("/predictions", predictionHandler.GetHistory)

		// 医師ディレクトリAPI
		v1.GET("/doctors", doctorHandler.Search)

		// 問い合わせAPI
		v1.POST("/contact", contactHandler.Submit)

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
			admin.POST("/dataset/import", adminHandler.ImportDataset)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}
	}

	log.Printf("Starting Health Chat-API server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
