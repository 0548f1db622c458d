package models

import (
	"time"

	"github.com/Pistatapp/fieldgazer/internal/geo"
)

// Zone 农场地块围栏
type Zone struct {
	ID        int64       `json:"id" db:"id"`
	FarmID    int64       `json:"farm_id" db:"farm_id"`
	Name      string      `json:"name" db:"name"`
	Boundary  geo.Polygon `json:"boundary" db:"boundary"` // JSONB [[lon,lat],...]
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
