package analytics

import "math"

// Productivity 在场生产率: 在地块内时长占总考勤时长的百分比, 保留两位小数
// 总时长为零时返回 nil, 区别于 "出勤了但全程在地块外" 的 0%
func Productivity(inZoneSeconds, outZoneSeconds float64) *float64 {
	total := inZoneSeconds + outZoneSeconds
	if total == 0 {
		return nil
	}
	v := math.Round(inZoneSeconds/total*100*100) / 100
	return &v
}
