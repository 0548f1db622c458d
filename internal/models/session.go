package models

import "time"

// 考勤会话状态常量
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
)

// 考勤事件类型常量
const (
	AttendanceEventEntry  = "entry"
	AttendanceEventUpdate = "update"
	AttendanceEventExit   = "exit"
)

// AttendanceSession 考勤会话, 每个对象每天一条
type AttendanceSession struct {
	ID             int64      `json:"id" db:"id"`
	SubjectID      int64      `json:"subject_id" db:"subject_id"`
	ZoneID         int64      `json:"zone_id" db:"zone_id"`
	Day            string     `json:"day" db:"day"` // YYYY-MM-DD (UTC)
	EntryTime      time.Time  `json:"entry_time" db:"entry_time"`
	ExitTime       *time.Time `json:"exit_time,omitempty" db:"exit_time"`
	Status         string     `json:"status" db:"status"`
	InZoneSeconds  float64    `json:"in_zone_seconds" db:"in_zone_seconds"`
	OutZoneSeconds float64    `json:"out_zone_seconds" db:"out_zone_seconds"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// AttendanceEvent 考勤会话变更事件, 由调用方广播/通知
type AttendanceEvent struct {
	ID         string             `json:"id"`   // uuid
	Type       string             `json:"type"` // entry / update / exit
	SubjectID  int64              `json:"subject_id"`
	ZoneID     int64              `json:"zone_id"`
	Session    *AttendanceSession `json:"session"`
	OccurredAt time.Time          `json:"occurred_at"`
}
