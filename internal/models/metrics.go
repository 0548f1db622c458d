package models

import (
	"fmt"
	"time"
)

// MetricsResult 运动分析结果
type MetricsResult struct {
	MovementDurationSeconds float64 `json:"movement_duration_seconds"`
	MovementDuration        string  `json:"movement_duration"` // HH:MM:SS
	MovementDistanceKm      float64 `json:"movement_distance_km"`

	StoppageCount           int     `json:"stoppage_count"`
	StoppageDurationSeconds float64 `json:"stoppage_duration_seconds"`
	StoppageDuration        string  `json:"stoppage_duration"` // HH:MM:SS
	StoppageWhileOnSeconds  float64 `json:"stoppage_while_on_seconds"`
	StoppageWhileOffSeconds float64 `json:"stoppage_while_off_seconds"`

	AverageSpeedKmh float64 `json:"average_speed_kmh"`

	FirstMovementTime *time.Time `json:"first_movement_time,omitempty"`
	DeviceOnTime      *time.Time `json:"device_on_time,omitempty"`
	LatestStatus      *int       `json:"latest_status,omitempty"`
}

// FormatDuration 将秒数格式化为 HH:MM:SS, 小时数不回绕
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
