package repository

import (
	"context"
	"fmt"

	"github.com/Pistatapp/fieldgazer/internal/models"
)

// ZoneRepository 地块围栏数据仓库
type ZoneRepository struct {
	db *DB
}

// NewZoneRepository 创建地块仓库
func NewZoneRepository(db *DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

// GetByID 获取地块
func (r *ZoneRepository) GetByID(ctx context.Context, id int64) (*models.Zone, error) {
	query := `SELECT id, farm_id, name, boundary, created_at FROM zones WHERE id = $1`
	zone := &models.Zone{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&zone.ID,
		&zone.FarmID,
		&zone.Name,
		&zone.Boundary,
		&zone.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get zone: %w", err)
	}
	return zone, nil
}

// ListByFarm 获取农场的全部地块
func (r *ZoneRepository) ListByFarm(ctx context.Context, farmID int64) ([]models.Zone, error) {
	query := `SELECT id, farm_id, name, boundary, created_at FROM zones WHERE farm_id = $1 ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, query, farmID)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	var zones []models.Zone
	for rows.Next() {
		var zone models.Zone
		if err := rows.Scan(&zone.ID, &zone.FarmID, &zone.Name, &zone.Boundary, &zone.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		zones = append(zones, zone)
	}
	return zones, rows.Err()
}

// Create 创建地块
func (r *ZoneRepository) Create(ctx context.Context, zone *models.Zone) error {
	query := `
		INSERT INTO zones (farm_id, name, boundary)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.Pool.QueryRow(ctx, query, zone.FarmID, zone.Name, zone.Boundary).
		Scan(&zone.ID, &zone.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert zone: %w", err)
	}
	return nil
}
