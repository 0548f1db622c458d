package models

import "time"

// 跟踪对象类型常量
const (
	SubjectTractor = "tractor"
	SubjectLabour  = "labour"
	SubjectUser    = "user"
)

// Subject 被跟踪对象 (拖拉机/工人/用户)
type Subject struct {
	ID                int64     `json:"id" db:"id"`
	FarmID            int64     `json:"farm_id" db:"farm_id"`
	Name              string    `json:"name" db:"name"`
	Kind              string    `json:"kind" db:"kind"`
	Imei              string    `json:"imei,omitempty" db:"imei"`
	AttendanceEnabled bool      `json:"attendance_enabled" db:"attendance_enabled"`
	ZoneID            *int64    `json:"zone_id,omitempty" db:"zone_id"` // 考勤地块
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
