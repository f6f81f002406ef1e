package services

import (
	"context"
	"fmt"
	"strings"

	"health-chat-api/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultDoctorPageSize は医師検索の1ページあたりの件数です。
const DefaultDoctorPageSize = 6

// DoctorService は医師ディレクトリの検索・登録を提供します。
type DoctorService struct {
	pool *pgxpool.Pool
}

// NewDoctorService は新しいDoctorServiceを生成します。
func NewDoctorService(pool *pgxpool.Pool) *DoctorService {
	return &DoctorService{pool: pool}
}

// Search は条件に一致する医師を評価降順・名前昇順で返します。
// 戻り値の2つ目はページングのための総件数です。
func (s *DoctorService) Search(ctx context.Context, q models.DoctorSearchQuery) ([]models.Doctor, int, error) {
	var (
		conditions = []string{"is_available = TRUE"}
		args       []interface{}
	)

	if q.Specialization != "" {
		args = append(args, q.Specialization)
		conditions = append(conditions, fmt.Sprintf("specialization = $%d", len(args)))
	}
	if q.Location != "" {
		args = append(args, "%"+q.Location+"%")
		conditions = append(conditions, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if q.MinRating != nil {
		args = append(args, *q.MinRating)
		conditions = append(conditions, fmt.Sprintf("rating >= $%d", len(args)))
	}
	if q.MaxFees != nil {
		args = append(args, *q.MaxFees)
		conditions = append(conditions, fmt.Sprintf("fees <= $%d", len(args)))
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultDoctorPageSize
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	args = append(args, pageSize, (page-1)*pageSize)

	query := fmt.Sprintf(`
		SELECT id, name, specialization, location, phone_number, email,
		       rating, fees, experience_years, bio, is_available, created_at,
		       COUNT(*) OVER() AS total
		FROM doctors
		WHERE %s
		ORDER BY rating DESC, name ASC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search doctors: %w", err)
	}
	defer rows.Close()

	var (
		doctors []models.Doctor
		total   int
	)
	for rows.Next() {
		var d models.Doctor
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Specialization, &d.Location, &d.PhoneNumber,
			&d.Email, &d.Rating, &d.Fees, &d.ExperienceYears, &d.Bio,
			&d.IsAvailable, &d.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return doctors, total, nil
}

// Create は医師を登録します（シード・管理用）。
func (s *DoctorService) Create(ctx context.Context, d *models.Doctor) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO doctors
			(name, specialization, location, phone_number, email,
			 rating, fees, experience_years, bio, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		d.Name, d.Specialization, d.Location, d.PhoneNumber, d.Email,
		d.Rating, d.Fees, d.ExperienceYears, d.Bio, d.IsAvailable,
	).Scan(&d.ID, &d.CreatedAt)
}
