package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Pistatapp/fieldgazer/internal/models"
)

// AttendanceRepository 考勤会话数据仓库
type AttendanceRepository struct {
	db *DB
}

// NewAttendanceRepository 创建考勤仓库
func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const sessionColumns = `id, subject_id, zone_id, to_char(day, 'YYYY-MM-DD'), entry_time, exit_time, status, in_zone_seconds, out_zone_seconds, updated_at`

// Upsert 按 (subject_id, day) 唯一键插入或更新会话
func (r *AttendanceRepository) Upsert(ctx context.Context, s *models.AttendanceSession) error {
	query := `
		INSERT INTO attendance_sessions (subject_id, zone_id, day, entry_time, exit_time, status, in_zone_seconds, out_zone_seconds, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (subject_id, day) DO UPDATE SET
			exit_time = EXCLUDED.exit_time,
			status = EXCLUDED.status,
			in_zone_seconds = EXCLUDED.in_zone_seconds,
			out_zone_seconds = EXCLUDED.out_zone_seconds,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	err := r.db.Pool.QueryRow(ctx, query,
		s.SubjectID,
		s.ZoneID,
		s.Day,
		s.EntryTime,
		s.ExitTime,
		s.Status,
		s.InZoneSeconds,
		s.OutZoneSeconds,
		s.UpdatedAt,
	).Scan(&s.ID)

	if err != nil {
		return fmt.Errorf("upsert attendance session: %w", err)
	}
	return nil
}

// ListRestorable 获取重启后需要恢复跟踪状态的会话:
// 全部未关闭的, 加上指定日期已关闭的 (否则当日终态丢失, 再次入界会重开覆盖)
func (r *AttendanceRepository) ListRestorable(ctx context.Context, day string) ([]models.AttendanceSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE status = 'in_progress' OR day = $1::date
	`
	return r.list(ctx, query, day)
}

// ListBySubject 分页获取对象的历史会话
func (r *AttendanceRepository) ListBySubject(ctx context.Context, subjectID int64, limit, offset int) ([]models.AttendanceSession, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM attendance_sessions
		WHERE subject_id = $1
		ORDER BY day DESC
		LIMIT %d OFFSET %d
	`, sessionColumns, limit, offset)
	return r.list(ctx, query, subjectID)
}

// CountBySubject 统计对象的会话条数
func (r *AttendanceRepository) CountBySubject(ctx context.Context, subjectID int64) (int64, error) {
	var count int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_sessions WHERE subject_id = $1`, subjectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

// ForceCloseOpenBefore 强制关闭指定日期之前仍未关闭的会话
// 跨天遗留的 in_progress 会话没有可信的离场时间, 以最后更新时间收尾
func (r *AttendanceRepository) ForceCloseOpenBefore(ctx context.Context, subjectID int64, day string, closedAt time.Time) error {
	query := `
		UPDATE attendance_sessions
		SET status = 'completed', exit_time = updated_at, updated_at = $3
		WHERE subject_id = $1 AND day < $2::date AND status = 'in_progress'
	`
	if _, err := r.db.Pool.Exec(ctx, query, subjectID, day, closedAt); err != nil {
		return fmt.Errorf("force close sessions: %w", err)
	}
	return nil
}

func (r *AttendanceRepository) list(ctx context.Context, query string, args ...any) ([]models.AttendanceSession, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.AttendanceSession
	for rows.Next() {
		var s models.AttendanceSession
		if err := rows.Scan(&s.ID, &s.SubjectID, &s.ZoneID, &s.Day, &s.EntryTime,
			&s.ExitTime, &s.Status, &s.InZoneSeconds, &s.OutZoneSeconds, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *AttendanceRepository) scanOne(row pgx.Row) (*models.AttendanceSession, error) {
	s := &models.AttendanceSession{}
	err := row.Scan(&s.ID, &s.SubjectID, &s.ZoneID, &s.Day, &s.EntryTime,
		&s.ExitTime, &s.Status, &s.InZoneSeconds, &s.OutZoneSeconds, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
