package services

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrModelUnavailable は分類器が初期化されていない場合に返されます。
// 呼び出し側は予測を試みず、利用不可の旨をユーザーに返す必要があります。
var ErrModelUnavailable = errors.New("classifier model is not available")

// DiagnosisPrediction は1回の疾病予測の結果です。
type DiagnosisPrediction struct {
	Disease      string    `json:"disease"`
	Confidence   float64   `json:"confidence"`   // 最大クラス確率（%、小数2桁）
	Distribution []float64 `json:"distribution"` // 全クラスの確率分布（疾病ラベル順）
}

// ClassifierService は症状指標ベクトルに対する多クラス分類器です。
// 起動時に学習テーブルから一度だけ学習し、以降は読み取り専用で共有されます。
// （ベルヌーイ型ナイーブベイズ + ラプラススムージング）
type ClassifierService struct {
	mu       sync.RWMutex
	dataset  *DatasetService
	diseases []string
	logPrior []float64   // クラスごとの事前確率（対数）
	logProb  [][]float64 // [クラス][特徴量] 症状あり確率（対数）
	logNot   [][]float64 // [クラス][特徴量] 症状なし確率（対数）
	trained  bool
}

// NewClassifierService は新しいClassifierServiceを生成します。
func NewClassifierService(dataset *DatasetService) *ClassifierService {
	return &ClassifierService{dataset: dataset}
}

// Train は学習テーブルからモデルを学習します。
// データセットが未読み込みの場合はErrModelUnavailableを返し、
// サービスは「利用不可」状態のままになります（部分初期化はしない）。
func (s *ClassifierService) Train() error {
	if !s.dataset.Loaded() {
		return ErrModelUnavailable
	}

	matrix, labels, diseases := s.dataset.TrainingData()
	if len(matrix) == 0 || len(diseases) == 0 {
		return ErrModelUnavailable
	}

	numClasses := len(diseases)
	numFeatures := len(matrix[0])

	classCount := make([]float64, numClasses)
	featureCount := make([][]float64, numClasses)
	for c := range featureCount {
		featureCount[c] = make([]float64, numFeatures)
	}

	for i, row := range matrix {
		c := labels[i]
		if c < 0 || c >= numClasses {
			continue
		}
		classCount[c]++
		for j, v := range row {
			if v == 1 {
				featureCount[c][j]++
			}
		}
	}

	total := float64(len(matrix))
	logPrior := make([]float64, numClasses)
	logProb := make([][]float64, numClasses)
	logNot := make([][]float64, numClasses)
	for c := 0; c < numClasses; c++ {
		logPrior[c] = math.Log(classCount[c] / total)
		logProb[c] = make([]float64, numFeatures)
		logNot[c] = make([]float64, numFeatures)
		for j := 0; j < numFeatures; j++ {
			// ラプラススムージング（+1/+2）でゼロ確率を回避
			p := (featureCount[c][j] + 1) / (classCount[c] + 2)
			logProb[c][j] = math.Log(p)
			logNot[c][j] = math.Log(1 - p)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.diseases = diseases
	s.logPrior = logPrior
	s.logProb = logProb
	s.logNot = logNot
	s.trained = true
	return nil
}

// Available は分類器が利用可能かを返します。
func (s *ClassifierService) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trained
}

// Diseases は分類器のラベル集合を返します。
func (s *ClassifierService) Diseases() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diseases
}

// Predict は症状集合から疾病を予測します。
// ボキャブラリ全体のバイナリ指標ベクトルを構築し、クラスごとの事後確率を計算、
// 最大確率のクラスをその確信度（% 小数2桁）および全分布とともに返します。
func (s *ClassifierService) Predict(symptoms []string) (*DiagnosisPrediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.trained {
		return nil, ErrModelUnavailable
	}

	numFeatures := len(s.logProb[0])
	vector := make([]float64, numFeatures)
	for _, sym := range symptoms {
		if idx, ok := s.dataset.SymptomIndex(sym); ok && idx < numFeatures {
			vector[idx] = 1
		}
	}

	// 対数事後確率を計算し、オーバーフローを避けてソフトマックス正規化
	numClasses := len(s.diseases)
	logPosterior := make([]float64, numClasses)
	maxLog := math.Inf(-1)
	for c := 0; c < numClasses; c++ {
		score := s.logPrior[c]
		for j := 0; j < numFeatures; j++ {
			if vector[j] == 1 {
				score += s.logProb[c][j]
			} else {
				score += s.logNot[c][j]
			}
		}
		logPosterior[c] = score
		if score > maxLog {
			maxLog = score
		}
	}

	distribution := make([]float64, numClasses)
	var sum float64
	for c := 0; c < numClasses; c++ {
		distribution[c] = math.Exp(logPosterior[c] - maxLog)
		sum += distribution[c]
	}
	if sum == 0 {
		return nil, fmt.Errorf("確率分布の正規化に失敗しました")
	}

	bestIdx := 0
	for c := 0; c < numClasses; c++ {
		distribution[c] /= sum
		if distribution[c] > distribution[bestIdx] {
			bestIdx = c
		}
	}

	return &DiagnosisPrediction{
		Disease:      s.diseases[bestIdx],
		Confidence:   round2(distribution[bestIdx] * 100),
		Distribution: distribution,
	}, nil
}

// round2 は小数2桁に丸めます。
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
