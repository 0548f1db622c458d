package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Coordinate 经纬度坐标 (纬度在前)
type Coordinate struct {
	Lat float64
	Lon float64
}

// ParseCoordinate 解析坐标字符串
// 兼容两种编码: JSON 数组 "[lat,lon]" 和逗号分隔 "lat,lon"
func ParseCoordinate(s string) (Coordinate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Coordinate{}, fmt.Errorf("empty coordinate")
	}

	if strings.HasPrefix(s, "[") {
		var pair []float64
		if err := json.Unmarshal([]byte(s), &pair); err != nil {
			return Coordinate{}, fmt.Errorf("parse json coordinate: %w", err)
		}
		if len(pair) != 2 {
			return Coordinate{}, fmt.Errorf("json coordinate must have 2 elements, got %d", len(pair))
		}
		return Coordinate{Lat: pair[0], Lon: pair[1]}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("coordinate must be \"lat,lon\", got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parse longitude: %w", err)
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// UnmarshalJSON 兼容三种上报编码: [lat,lon] 数组、"lat,lon" 字符串、"[lat,lon]" 字符串
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseCoordinate(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("parse coordinate pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinate pair must have 2 elements, got %d", len(pair))
	}
	c.Lat = pair[0]
	c.Lon = pair[1]
	return nil
}

// MarshalJSON 输出 [lat,lon] 数组
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lon})
}

// Report 设备位置上报记录
type Report struct {
	ID         int64     `json:"id" db:"id"`
	SubjectID  int64     `json:"subject_id" db:"subject_id"`
	Latitude   float64   `json:"latitude" db:"latitude"`
	Longitude  float64   `json:"longitude" db:"longitude"`
	Altitude   *float64  `json:"altitude,omitempty" db:"altitude"`
	SpeedKmh   float64   `json:"speed_kmh" db:"speed_kmh"`
	Status     int       `json:"status" db:"status"` // 设备在线标志 0/1
	Imei       string    `json:"imei,omitempty" db:"imei"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// IsOnline 上报时设备是否在线
func (r *Report) IsOnline() bool {
	return r.Status == 1
}
