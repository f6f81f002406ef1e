package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"

	"health-chat-api/pkg/models"
)

// RiskModel は学習済みのロジスティック回帰モデル（JSONアーティファクト）です。
// 重み・バイアスと標準化パラメータを持ち、確率を出力します。
type RiskModel struct {
	Name          string    `json:"name"`
	FeatureNames  []string  `json:"feature_names"`
	Means         []float64 `json:"means"`
	Stds          []float64 `json:"stds"`
	Weights       []float64 `json:"weights"`
	Bias          float64   `json:"bias"`
	PositiveLabel string    `json:"positive_label"`
	NegativeLabel string    `json:"negative_label"`
}

// Predict は特徴量ベクトルから陽性確率を計算し、予測結果を返します。
func (m *RiskModel) Predict(features []float64) (*models.RiskPredictionResult, error) {
	if len(features) != len(m.Weights) {
		return nil, fmt.Errorf("特徴量の数が一致しません: got %d, want %d", len(features), len(m.Weights))
	}

	z := m.Bias
	for i, x := range features {
		// 学習時と同じ標準化を適用する
		if i < len(m.Means) && i < len(m.Stds) {
			std := m.Stds[i]
			if std == 0 {
				std = 1
			}
			x = (x - m.Means[i]) / std
		}
		z += m.Weights[i] * x
	}

	positive := 1.0 / (1.0 + math.Exp(-z))
	negative := 1.0 - positive

	prediction := m.NegativeLabel
	confidence := negative
	if positive >= 0.5 {
		prediction = m.PositiveLabel
		confidence = positive
	}

	return &models.RiskPredictionResult{
		Prediction:          prediction,
		Confidence:          round2(confidence * 100),
		ProbabilityPositive: round2(positive * 100),
		ProbabilityNegative: round2(negative * 100),
	}, nil
}

// 疾病タイプごとのアーティファクトファイル名
var riskModelFiles = map[string]string{
	"diabetes":      "diabetes_model.json",
	"heart_disease": "heart_disease_model.json",
	"parkinsons":    "parkinsons_model.json",
}

// RiskModelService は疾病タイプごとの学習済みリスクモデルを保持します。
// 起動時に一度だけ読み込まれ、以降は読み取り専用です。
// アーティファクトが存在しない疾病タイプはErrModelUnavailableになります。
type RiskModelService struct {
	mu     sync.RWMutex
	models map[string]*RiskModel
}

// NewRiskModelService は新しいRiskModelServiceを生成します。
func NewRiskModelService() *RiskModelService {
	return &RiskModelService{
		models: make(map[string]*RiskModel),
	}
}

// LoadFromDir はディレクトリから全リスクモデルを読み込みます。
// 個別のモデルが欠けていても起動は継続します（該当エンドポイントのみ利用不可）。
func (s *RiskModelService) LoadFromDir(dir string) {
	for diseaseType, fileName := range riskModelFiles {
		path := filepath.Join(dir, fileName)
		model, err := loadRiskModel(path)
		if err != nil {
			log.Printf("⚠️ リスクモデル %s の読み込みに失敗（エンドポイントは利用不可になります）: %v", diseaseType, err)
			continue
		}
		s.mu.Lock()
		s.models[diseaseType] = model
		s.mu.Unlock()
		log.Printf("✅ リスクモデルを読み込みました: %s (%s)", diseaseType, path)
	}
}

// Register はリスクモデルを登録します（テスト・シード用）。
func (s *RiskModelService) Register(diseaseType string, model *RiskModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[diseaseType] = model
}

// Available は疾病タイプのモデルが利用可能かを返します。
func (s *RiskModelService) Available(diseaseType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.models[diseaseType]
	return ok
}

// Predict は疾病タイプのモデルで予測します。
func (s *RiskModelService) Predict(diseaseType string, features []float64) (*models.RiskPredictionResult, error) {
	s.mu.RLock()
	model, ok := s.models[diseaseType]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrModelUnavailable
	}
	return model.Predict(features)
}

// loadRiskModel はJSONアーティファクトを読み込み、整合性を検証します。
func loadRiskModel(path string) (*RiskModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var model RiskModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("モデルJSONのパースに失敗: %w", err)
	}
	if len(model.Weights) == 0 {
		return nil, fmt.Errorf("モデルに重みがありません")
	}
	if model.PositiveLabel == "" || model.NegativeLabel == "" {
		return nil, fmt.Errorf("モデルのラベルが不足しています")
	}
	return &model, nil
}
