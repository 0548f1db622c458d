package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Pistatapp/fieldgazer/internal/models"
)

// ReportRepository 位置上报数据仓库
type ReportRepository struct {
	db *DB
}

// NewReportRepository 创建上报仓库
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create 创建上报记录
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (subject_id, latitude, longitude, altitude, speed_kmh, status, imei, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.Pool.QueryRow(ctx, query,
		report.SubjectID,
		report.Latitude,
		report.Longitude,
		report.Altitude,
		report.SpeedKmh,
		report.Status,
		report.Imei,
		report.RecordedAt,
	).Scan(&report.ID)

	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ListBySubject 按时间升序获取对象在时间窗内的上报
// from/to 为零值时对应方向不限制
func (r *ReportRepository) ListBySubject(ctx context.Context, subjectID int64, from, to time.Time) ([]models.Report, error) {
	query := `
		SELECT id, subject_id, latitude, longitude, altitude, speed_kmh, status, COALESCE(imei, ''), recorded_at
		FROM reports
		WHERE subject_id = $1
		  AND ($2::timestamptz IS NULL OR recorded_at >= $2)
		  AND ($3::timestamptz IS NULL OR recorded_at <= $3)
		ORDER BY recorded_at ASC
	`
	var fromArg, toArg any
	if !from.IsZero() {
		fromArg = from
	}
	if !to.IsZero() {
		toArg = to
	}

	rows, err := r.db.Pool.Query(ctx, query, subjectID, fromArg, toArg)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(
			&rep.ID,
			&rep.SubjectID,
			&rep.Latitude,
			&rep.Longitude,
			&rep.Altitude,
			&rep.SpeedKmh,
			&rep.Status,
			&rep.Imei,
			&rep.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// LatestBySubject 获取对象最新一条上报
func (r *ReportRepository) LatestBySubject(ctx context.Context, subjectID int64) (*models.Report, error) {
	query := `
		SELECT id, subject_id, latitude, longitude, altitude, speed_kmh, status, COALESCE(imei, ''), recorded_at
		FROM reports WHERE subject_id = $1 ORDER BY recorded_at DESC LIMIT 1
	`
	rep := &models.Report{}
	err := r.db.Pool.QueryRow(ctx, query, subjectID).Scan(
		&rep.ID,
		&rep.SubjectID,
		&rep.Latitude,
		&rep.Longitude,
		&rep.Altitude,
		&rep.SpeedKmh,
		&rep.Status,
		&rep.Imei,
		&rep.RecordedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get latest report: %w", err)
	}
	return rep, nil
}

// LatestAll 每个对象的最新一条上报, 用于 WebSocket 初始快照
func (r *ReportRepository) LatestAll(ctx context.Context) ([]models.Report, error) {
	query := `
		SELECT DISTINCT ON (subject_id)
			id, subject_id, latitude, longitude, altitude, speed_kmh, status, COALESCE(imei, ''), recorded_at
		FROM reports
		ORDER BY subject_id, recorded_at DESC
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list latest reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(
			&rep.ID,
			&rep.SubjectID,
			&rep.Latitude,
			&rep.Longitude,
			&rep.Altitude,
			&rep.SpeedKmh,
			&rep.Status,
			&rep.Imei,
			&rep.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// CountBySubject 统计对象的上报条数
func (r *ReportRepository) CountBySubject(ctx context.Context, subjectID int64) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE subject_id = $1`, subjectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return count, nil
}
