package analytics

import (
	"time"

	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/geo"
	"github.com/Pistatapp/fieldgazer/internal/models"
)

// Analyzer 全程运动分析器
// 消费单个对象的完整上报序列, 统计运动/停顿时长、里程与均速
type Analyzer struct {
	cfg    Config
	logger *zap.Logger
}

// NewAnalyzer 创建分析器
func NewAnalyzer(cfg Config, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// Options 分析过滤条件
// Start/End 为含端点的时间窗; Zone 非 nil 时丢弃围栏外的上报
type Options struct {
	Start *time.Time
	End   *time.Time
	Zone  geo.Polygon
}

// Analyze 对上报序列做全程运动分析
// 过滤先于分段: 被丢弃的点与其邻居之间的时间不计入任何累积项
func (a *Analyzer) Analyze(reports []models.Report, opts Options) models.MetricsResult {
	if len(reports) == 0 {
		return zeroResult()
	}

	sorted := sortReports(reports)
	keep := make([]bool, len(sorted))
	var kept []*models.Report
	for i := range sorted {
		r := &sorted[i]
		if opts.Start != nil && r.RecordedAt.Before(*opts.Start) {
			continue
		}
		if opts.End != nil && r.RecordedAt.After(*opts.End) {
			continue
		}
		if opts.Zone != nil && !opts.Zone.Contains(r.Latitude, r.Longitude) {
			continue
		}
		keep[i] = true
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return zeroResult()
	}

	engine := newSpanEngine(a.cfg, a.logger)
	for i := 1; i < len(sorted); i++ {
		// 只有原序列中相邻且均保留的点对构成有效跨度, 过滤空洞不被桥接
		if keep[i-1] && keep[i] {
			engine.feed(&sorted[i-1], &sorted[i])
		}
	}
	return engine.finalize(kept)
}
