package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChatbotContent はチャットボットの会話コンテンツ設定（chatbot_content.yaml）の構造を定義
type ChatbotContent struct {
	// Synonyms は自由入力のフレーズから正規化された症状IDへのマッピング
	Synonyms map[string]string `yaml:"synonyms"`

	// Quotes は診断結果に添える応援メッセージのプール
	Quotes []string `yaml:"quotes"`

	// Disclaimer は診断結果の末尾に必ず付与する医療免責文
	Disclaimer string `yaml:"disclaimer"`
}

// LoadChatbotContent はYAMLファイルから会話コンテンツ設定を読み込む。
// ファイルが存在しない場合は組み込みのデフォルトを返す（起動を妨げない）。
func LoadChatbotContent(path string) (*ChatbotContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultChatbotContent(), nil
		}
		return nil, fmt.Errorf("コンテンツ設定ファイルの読み込みに失敗: %w", err)
	}

	var content ChatbotContent
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("YAMLのパースに失敗: %w", err)
	}

	// 部分的な設定はデフォルトで補完する
	defaults := DefaultChatbotContent()
	if len(content.Synonyms) == 0 {
		content.Synonyms = defaults.Synonyms
	}
	if len(content.Quotes) == 0 {
		content.Quotes = defaults.Quotes
	}
	if content.Disclaimer == "" {
		content.Disclaimer = defaults.Disclaimer
	}

	return &content, nil
}

// DefaultChatbotContent は組み込みの会話コンテンツを返す
func DefaultChatbotContent() *ChatbotContent {
	return &ChatbotContent{
		Synonyms: map[string]string{
			"stomach ache":        "stomach_pain",
			"belly pain":          "stomach_pain",
			"tummy pain":          "stomach_pain",
			"loose motion":        "diarrhea",
			"motions":             "diarrhea",
			"high temperature":    "fever",
			"temperature":         "fever",
			"feaver":              "fever",
			"coughing":            "cough",
			"throat pain":         "sore_throat",
			"cold":                "chills",
			"breathing issue":     "breathlessness",
			"shortness of breath": "breathlessness",
			"body ache":           "muscle_pain",
		},
		Quotes: []string{
			"⚡ Health is wealth, take care of yourself.",
			"⚡ A healthy outside starts from the inside.",
			"⚡ Every day is a chance to get stronger and healthier.",
			"⚡ Take a deep breath, your health matters the most.",
			"⚡ Remember, self-care is not selfish.",
		},
		Disclaimer: "⚠️ **Important**: This is an AI-powered assessment and should not replace professional medical advice. " +
			"Please consult a healthcare provider for proper diagnosis and treatment.",
	}
}
