package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Port                 string
	Environment          string
	APIKey               string
	AdminUsername        string
	AdminPassword        string
	DatabaseURL          string
	DataDir              string
	TrainingDataFile     string
	SeverityFile         string
	DescriptionFile      string
	PrecautionFile       string
	ContentFile          string
	RiskModelDir         string
	FuzzyCutoff          float64
	MaxFollowUpQuestions int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:                 getEnv("PORT", "8080"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		APIKey:               getEnv("API_KEY", ""),
		AdminUsername:        getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:        getEnv("ADMIN_PASSWORD", "default_secret_key"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DataDir:              getEnv("DATA_DIR", "data"),
		TrainingDataFile:     getEnv("TRAINING_DATA_FILE", "Training.csv"),
		SeverityFile:         getEnv("SEVERITY_FILE", "symptom_severity.csv"),
		DescriptionFile:      getEnv("DESCRIPTION_FILE", "symptom_Description.csv"),
		PrecautionFile:       getEnv("PRECAUTION_FILE", "symptom_precaution.csv"),
		ContentFile:          getEnv("CONTENT_FILE", "chatbot_content.yaml"),
		RiskModelDir:         getEnv("RISK_MODEL_DIR", "models"),
		FuzzyCutoff:          getEnvFloat("FUZZY_CUTOFF", 0.8),
		MaxFollowUpQuestions: getEnvInt("MAX_FOLLOWUP_QUESTIONS", 5),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
