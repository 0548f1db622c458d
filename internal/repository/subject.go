package repository

import (
	"context"
	"fmt"

	"github.com/Pistatapp/fieldgazer/internal/models"
)

// SubjectRepository 跟踪对象数据仓库
type SubjectRepository struct {
	db *DB
}

// NewSubjectRepository 创建对象仓库
func NewSubjectRepository(db *DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = `id, farm_id, name, kind, COALESCE(imei, ''), attendance_enabled, zone_id, created_at`

// GetByID 获取对象
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE id = $1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByImei 按设备串号获取对象
func (r *SubjectRepository) GetByImei(ctx context.Context, imei string) (*models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE imei = $1`
	return r.scanOne(r.db.Pool.QueryRow(ctx, query, imei))
}

// ListByFarm 获取农场的全部对象
func (r *SubjectRepository) ListByFarm(ctx context.Context, farmID int64) ([]models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE farm_id = $1 ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, query, farmID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.FarmID, &s.Name, &s.Kind, &s.Imei,
			&s.AttendanceEnabled, &s.ZoneID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// ListAll 获取全部对象, 用于 WebSocket 初始快照
func (r *SubjectRepository) ListAll(ctx context.Context) ([]models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all subjects: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.FarmID, &s.Name, &s.Kind, &s.Imei,
			&s.AttendanceEnabled, &s.ZoneID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// Create 创建对象
func (r *SubjectRepository) Create(ctx context.Context, s *models.Subject) error {
	query := `
		INSERT INTO subjects (farm_id, name, kind, imei, attendance_enabled, zone_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING id, created_at
	`
	err := r.db.Pool.QueryRow(ctx, query, s.FarmID, s.Name, s.Kind, s.Imei,
		s.AttendanceEnabled, s.ZoneID).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert subject: %w", err)
	}
	return nil
}

func (r *SubjectRepository) scanOne(row interface{ Scan(dest ...any) error }) (*models.Subject, error) {
	s := &models.Subject{}
	err := row.Scan(&s.ID, &s.FarmID, &s.Name, &s.Kind, &s.Imei,
		&s.AttendanceEnabled, &s.ZoneID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return s, nil
}
