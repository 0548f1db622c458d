package analytics

import (
	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/geo"
	"github.com/Pistatapp/fieldgazer/internal/models"
)

// Segment 连续同侧分类的上报区间
// 各段按时间顺序无缝无重叠地划分整个序列
type Segment struct {
	Inside  bool
	Reports []models.Report
}

// SplitSegments 按是否在围栏内将序列切分为极大连续段
func SplitSegments(reports []models.Report, zone geo.Polygon) []Segment {
	var segments []Segment
	for _, r := range reports {
		inside := zone.Contains(r.Latitude, r.Longitude)
		if len(segments) == 0 || segments[len(segments)-1].Inside != inside {
			segments = append(segments, Segment{Inside: inside})
		}
		last := &segments[len(segments)-1]
		last.Reports = append(last.Reports, r)
	}
	return segments
}

// ZoneAnalyzer 地块内运动分析器
// 与 Analyzer 采用同一跨度分类逻辑, 但只统计围栏内的连续段:
// 出界时间对指标而言不存在, 既不算停顿也不算空档
type ZoneAnalyzer struct {
	cfg    Config
	logger *zap.Logger
}

// NewZoneAnalyzer 创建地块内分析器
func NewZoneAnalyzer(cfg Config, logger *zap.Logger) *ZoneAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZoneAnalyzer{cfg: cfg, logger: logger}
}

// Analyze 对上报序列做地块内运动分析
// 分类状态 (待定停顿/连续运动计数/开机标记) 跨段保持:
// 对象短暂出界不会单独结算一次停顿或打断运动连进,
// 但跨出界空档的区间不贡献时长与里程
func (a *ZoneAnalyzer) Analyze(reports []models.Report, zone geo.Polygon) models.MetricsResult {
	if len(reports) == 0 || !zone.Valid() {
		return zeroResult()
	}

	sorted := sortReports(reports)
	segments := SplitSegments(sorted, zone)

	var kept []*models.Report
	engine := newSpanEngine(a.cfg, a.logger)
	for si := range segments {
		seg := &segments[si]
		if !seg.Inside {
			continue
		}
		for i := range seg.Reports {
			if i > 0 {
				engine.feed(&seg.Reports[i-1], &seg.Reports[i])
			}
			kept = append(kept, &seg.Reports[i])
		}
	}
	if len(kept) == 0 {
		return zeroResult()
	}
	return engine.finalize(kept)
}
