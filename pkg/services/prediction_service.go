package services

import (
	"context"
	"encoding/json"
	"fmt"

	"health-chat-api/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultPredictionPageSize は予測履歴の1ページあたりの件数です。
const DefaultPredictionPageSize = 10

// PredictionService はリスク予測結果の保存と履歴取得を提供します。
type PredictionService struct {
	pool *pgxpool.Pool
}

// NewPredictionService は新しいPredictionServiceを生成します。
func NewPredictionService(pool *pgxpool.Pool) *PredictionService {
	return &PredictionService{pool: pool}
}

// Save は予測結果を履歴に保存します。
func (s *PredictionService) Save(ctx context.Context, record *models.PredictionRecord) error {
	inputJSON, err := json.Marshal(record.InputData)
	if err != nil {
		return fmt.Errorf("marshal input data: %w", err)
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO predictions
			(user_id, disease_type, prediction_result, confidence_score, input_data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		record.UserID, record.DiseaseType, record.PredictionResult,
		record.ConfidenceScore, inputJSON,
	).Scan(&record.ID, &record.CreatedAt)
}

// List はユーザーの予測履歴を新しい順にページングして返します。
// 戻り値の2つ目は総件数です。
func (s *PredictionService) List(ctx context.Context, userID string, page, pageSize int) ([]models.PredictionRecord, int, error) {
	if pageSize <= 0 {
		pageSize = DefaultPredictionPageSize
	}
	if page < 1 {
		page = 1
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, disease_type, prediction_result, confidence_score,
		       input_data, created_at, COUNT(*) OVER() AS total
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var (
		records []models.PredictionRecord
		total   int
	)
	for rows.Next() {
		var (
			r         models.PredictionRecord
			inputJSON []byte
		)
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.DiseaseType, &r.PredictionResult,
			&r.ConfidenceScore, &inputJSON, &r.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan prediction: %w", err)
		}
		if len(inputJSON) > 0 {
			if err := json.Unmarshal(inputJSON, &r.InputData); err != nil {
				r.InputData = nil // 壊れた入力データは表示しない
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
