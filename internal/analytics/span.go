package analytics

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/geo"
	"github.com/Pistatapp/fieldgazer/internal/models"
)

// Config 运动分析参数
type Config struct {
	// StoppageThreshold 短于该时长的停顿视为测量噪声, 并入运动时间
	StoppageThreshold time.Duration
	// MovementConfirmCount 连续运动跨度达到该次数才确认首次开工
	MovementConfirmCount int
}

// DefaultConfig 默认分析参数
func DefaultConfig() Config {
	return Config{
		StoppageThreshold:    60 * time.Second,
		MovementConfirmCount: 3,
	}
}

// spanEngine 逐跨度累积运动/停顿指标
// 跨度 = 相邻两条上报之间的区间, 按前一点的 status/speed 分类
// 停顿先进入待定缓冲, 只有总时长达到阈值才计为一次真实停顿
type spanEngine struct {
	cfg    Config
	logger *zap.Logger

	movementSeconds float64
	distanceKm      float64

	stoppageCount      int
	stoppageSeconds    float64
	stoppageOnSeconds  float64
	stoppageOffSeconds float64

	pendingActive  bool
	pendingSeconds float64
	pendingOn      float64
	pendingOff     float64

	streak        int
	streakStart   time.Time
	firstMovement *time.Time
}

func newSpanEngine(cfg Config, logger *zap.Logger) *spanEngine {
	if cfg.StoppageThreshold <= 0 {
		cfg.StoppageThreshold = DefaultConfig().StoppageThreshold
	}
	if cfg.MovementConfirmCount <= 0 {
		cfg.MovementConfirmCount = DefaultConfig().MovementConfirmCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &spanEngine{cfg: cfg, logger: logger}
}

// feed 处理一个相邻跨度
// 过滤造成的空洞不经过此处: 调用方只对原序列中相邻且均保留的点对调用
func (e *spanEngine) feed(prev, cur *models.Report) {
	elapsed := cur.RecordedAt.Sub(prev.RecordedAt).Seconds()
	if elapsed < 0 {
		// 输入已经排序, 出现负间隔说明时间戳重复或数据损坏
		e.logger.Warn("negative elapsed between reports, span skipped",
			zap.Int64("subject_id", prev.SubjectID),
			zap.Time("prev", prev.RecordedAt),
			zap.Time("current", cur.RecordedAt))
		return
	}

	moving := prev.Status == 1 && prev.SpeedKmh > 0
	if moving {
		e.flushPending()
		e.movementSeconds += elapsed
		e.distanceKm += geo.HaversineKm(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude)

		if e.streak == 0 {
			e.streakStart = prev.RecordedAt
		}
		e.streak++
		if e.firstMovement == nil && e.streak >= e.cfg.MovementConfirmCount {
			t := e.streakStart
			e.firstMovement = &t
		}
		return
	}

	e.streak = 0
	e.pendingActive = true
	e.pendingSeconds += elapsed
	if prev.Status == 1 {
		e.pendingOn += elapsed
	} else {
		e.pendingOff += elapsed
	}
}

// flushPending 结算待定停顿缓冲
// 达到阈值计为一次停顿并按设备开关机拆分时长, 否则并入运动时间
func (e *spanEngine) flushPending() {
	if !e.pendingActive {
		return
	}
	if e.pendingSeconds >= e.cfg.StoppageThreshold.Seconds() {
		e.stoppageCount++
		e.stoppageSeconds += e.pendingSeconds
		e.stoppageOnSeconds += e.pendingOn
		e.stoppageOffSeconds += e.pendingOff
	} else {
		e.movementSeconds += e.pendingSeconds
	}
	e.pendingActive = false
	e.pendingSeconds = 0
	e.pendingOn = 0
	e.pendingOff = 0
}

// finalize 序列结束时结算尾部停顿并组装结果
// kept 为过滤后仍保留的上报序列, 用于开机时间和末状态
func (e *spanEngine) finalize(kept []*models.Report) models.MetricsResult {
	e.flushPending()

	result := models.MetricsResult{
		MovementDurationSeconds: e.movementSeconds,
		MovementDistanceKm:      e.distanceKm,
		StoppageCount:           e.stoppageCount,
		StoppageDurationSeconds: e.stoppageSeconds,
		StoppageWhileOnSeconds:  e.stoppageOnSeconds,
		StoppageWhileOffSeconds: e.stoppageOffSeconds,
		FirstMovementTime:       e.firstMovement,
	}
	result.MovementDuration = models.FormatDuration(result.MovementDurationSeconds)
	result.StoppageDuration = models.FormatDuration(result.StoppageDurationSeconds)

	if e.movementSeconds > 0 {
		result.AverageSpeedKmh = e.distanceKm / e.movementSeconds * 3600
	}

	if len(kept) > 0 {
		status := kept[len(kept)-1].Status
		result.LatestStatus = &status
		result.DeviceOnTime = deviceOnTime(kept)
	}

	return result
}

// deviceOnTime 设备开机时间: 首条上报即在线取其时间, 否则取第一次 0→1 翻转
func deviceOnTime(kept []*models.Report) *time.Time {
	if kept[0].Status == 1 {
		t := kept[0].RecordedAt
		return &t
	}
	for i := 1; i < len(kept); i++ {
		if kept[i].Status == 1 && kept[i-1].Status == 0 {
			t := kept[i].RecordedAt
			return &t
		}
	}
	return nil
}

// zeroResult 无数据时的全零结果
func zeroResult() models.MetricsResult {
	return models.MetricsResult{
		MovementDuration: models.FormatDuration(0),
		StoppageDuration: models.FormatDuration(0),
	}
}

// sortReports 按时间升序排序的防御性拷贝
// 分段逻辑假设时间戳单调递增, 调用方未排序时在此兜底
func sortReports(reports []models.Report) []models.Report {
	sorted := make([]models.Report, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecordedAt.Before(sorted[j].RecordedAt)
	})
	return sorted
}
