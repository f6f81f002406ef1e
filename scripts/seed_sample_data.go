//go:build ignore

package main

import (
	"context"
	"log"

	config "health-chat-api/configs"
	"health-chat-api/pkg/database"
	"health-chat-api/pkg/models"
	"health-chat-api/pkg/services"

	"github.com/joho/godotenv"
)

func main() {
	log.Println("🚀 サンプルデータの投入を開始します...")

	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.LoadConfig()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URLが設定されていません")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("データベース接続に失敗: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("スキーマの初期化に失敗: %v", err)
	}

	doctorService := services.NewDoctorService(pool)

	doctors := []models.Doctor{
		{
			Name:            "Dr. Rajesh Kumar",
			Specialization:  "cardiology",
			Location:        "Delhi, India",
			PhoneNumber:     "+91-98100-12345",
			Email:           "rajesh.kumar@example.com",
			Rating:          4.8,
			Fees:            1500,
			ExperienceYears: 15,
			Bio:             "Dr. Rajesh Kumar is a board-certified cardiologist with over 15 years of experience in treating heart conditions.",
			IsAvailable:     true,
		},
		{
			Name:            "Dr. Priya Sharma",
			Specialization:  "endocrinology",
			Location:        "Mumbai, India",
			PhoneNumber:     "+91-98200-23456",
			Email:           "priya.sharma@example.com",
			Rating:          4.9,
			Fees:            1200,
			ExperienceYears: 12,
			Bio:             "Dr. Priya Sharma specializes in diabetes management and hormonal disorders.",
			IsAvailable:     true,
		},
		{
			Name:            "Dr. Amit Patel",
			Specialization:  "neurology",
			Location:        "Bangalore, India",
			PhoneNumber:     "+91-98300-34567",
			Email:           "amit.patel@example.com",
			Rating:          4.7,
			Fees:            1800,
			ExperienceYears: 18,
			Bio:             "Dr. Amit Patel is a leading neurologist specializing in movement disorders and Parkinson's disease.",
			IsAvailable:     true,
		},
		{
			Name:            "Dr. Sunita Reddy",
			Specialization:  "general",
			Location:        "Hyderabad, India",
			PhoneNumber:     "+91-98400-45678",
			Email:           "sunita.reddy@example.com",
			Rating:          4.6,
			Fees:            800,
			ExperienceYears: 20,
			Bio:             "Dr. Sunita Reddy is a general physician with two decades of experience in primary care.",
			IsAvailable:     true,
		},
		{
			Name:            "Dr. Vikram Singh",
			Specialization:  "pediatrics",
			Location:        "Chennai, India",
			PhoneNumber:     "+91-98500-56789",
			Email:           "vikram.singh@example.com",
			Rating:          4.9,
			Fees:            1000,
			ExperienceYears: 14,
			Bio:             "Dr. Vikram Singh is a pediatrician focused on child health and development.",
			IsAvailable:     true,
		},
		{
			Name:            "Dr. Anjali Gupta",
			Specialization:  "dermatology",
			Location:        "Pune, India",
			PhoneNumber:     "+91-98600-67890",
			Email:           "anjali.gupta@example.com",
			Rating:          4.5,
			Fees:            1300,
			ExperienceYears: 16,
			Bio:             "Dr. Anjali Gupta treats a wide range of skin conditions with a patient-first approach.",
			IsAvailable:     true,
		},
		{
			Name:            "Dr. Ravi Verma",
			Specialization:  "orthopedics",
			Location:        "Kolkata, India",
			PhoneNumber:     "+91-98700-78901",
			Email:           "ravi.verma@example.com",
			Rating:          4.8,
			Fees:            1600,
			ExperienceYears: 13,
			Bio:             "Dr. Ravi Verma specializes in joint replacement and sports injuries.",
			IsAvailable:     true,
		},
		{
			Name:            "Dr. Meera Joshi",
			Specialization:  "cardiology",
			Location:        "Ahmedabad, India",
			PhoneNumber:     "+91-98800-89012",
			Email:           "meera.joshi@example.com",
			Rating:          4.7,
			Fees:            1400,
			ExperienceYears: 17,
			Bio:             "Dr. Meera Joshi focuses on preventive cardiology and heart failure management.",
			IsAvailable:     true,
		},
		{
			Name:            "Dr. Suresh Kumar",
			Specialization:  "endocrinology",
			Location:        "Jaipur, India",
			PhoneNumber:     "+91-98900-90123",
			Email:           "suresh.kumar@example.com",
			Rating:          4.6,
			Fees:            1100,
			ExperienceYears: 11,
			Bio:             "Dr. Suresh Kumar helps patients manage thyroid and metabolic disorders.",
			IsAvailable:     true,
		},
		{
			Name:            "Dr. Kavita Nair",
			Specialization:  "neurology",
			Location:        "Kochi, India",
			PhoneNumber:     "+91-99000-01234",
			Email:           "kavita.nair@example.com",
			Rating:          4.8,
			Fees:            1700,
			ExperienceYears: 19,
			Bio:             "Dr. Kavita Nair has extensive experience in treating epilepsy and migraine.",
			IsAvailable:     true,
		},
	}

	successCount := 0
	failCount := 0
	for i := range doctors {
		if err := doctorService.Create(ctx, &doctors[i]); err != nil {
			log.Printf("⚠️ 医師の登録に失敗: %s - %v", doctors[i].Name, err)
			failCount++
			continue
		}
		log.Printf("✅ 登録成功: %s (%s)", doctors[i].Name, doctors[i].Specialization)
		successCount++
	}

	log.Printf("📊 投入完了: 成功 %d件 / 失敗 %d件", successCount, failCount)
}
