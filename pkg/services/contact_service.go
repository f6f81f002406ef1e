package services

import (
	"context"
	"fmt"

	"health-chat-api/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactService は問い合わせメッセージの保存を提供します。
type ContactService struct {
	pool *pgxpool.Pool
}

// NewContactService は新しいContactServiceを生成します。
func NewContactService(pool *pgxpool.Pool) *ContactService {
	return &ContactService{pool: pool}
}

// Save は問い合わせメッセージを保存します。
func (s *ContactService) Save(ctx context.Context, msg *models.ContactMessage) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, subject, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		msg.Name, msg.Email, msg.Subject, msg.Message,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("save contact message: %w", err)
	}
	return nil
}
