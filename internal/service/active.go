package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/cache"
	"github.com/Pistatapp/fieldgazer/internal/models"
)

// SubjectPresence 活跃对象及其是否在地块围栏内
type SubjectPresence struct {
	Subject  models.Subject `json:"subject"`
	IsInZone bool           `json:"is_in_zone"`
	LastSeen time.Time      `json:"last_seen"`
}

// SubjectSource 对象来源端口
type SubjectSource interface {
	ListByFarm(ctx context.Context, farmID int64) ([]models.Subject, error)
}

// ReportSource 最新位置来源端口
type ReportSource interface {
	LatestBySubject(ctx context.Context, subjectID int64) (*models.Report, error)
}

// activeEntry 缓存条目, 记录计算时使用的时间窗
type activeEntry struct {
	window time.Duration
	result []SubjectPresence
}

// ActiveIndex 地块活跃对象索引
// 最近时间窗内有上报的对象视为活跃; 结果按地块缓存,
// 不做定时失效, 由写入新位置数据的一方显式调用 ClearCache
type ActiveIndex struct {
	logger   *zap.Logger
	cache    cache.Cache
	subjects SubjectSource
	reports  ReportSource
	now      func() time.Time
}

// NewActiveIndex 创建活跃对象索引
func NewActiveIndex(logger *zap.Logger, c cache.Cache, subjects SubjectSource, reports ReportSource) *ActiveIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActiveIndex{
		logger:   logger,
		cache:    c,
		subjects: subjects,
		reports:  reports,
		now:      time.Now,
	}
}

func activeCacheKey(zoneID int64) string {
	return fmt.Sprintf("active_subjects:%d", zoneID)
}

// Active 获取地块内活跃对象列表
// 缓存命中且时间窗一致时直接返回, 否则重算并覆盖缓存
func (ix *ActiveIndex) Active(ctx context.Context, zone *models.Zone, window time.Duration) ([]SubjectPresence, error) {
	key := activeCacheKey(zone.ID)
	if v, ok := ix.cache.Get(key); ok {
		if entry, ok := v.(activeEntry); ok && entry.window == window {
			return entry.result, nil
		}
	}

	subjects, err := ix.subjects.ListByFarm(ctx, zone.FarmID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	cutoff := ix.now().Add(-window)
	result := make([]SubjectPresence, 0, len(subjects))
	for _, subject := range subjects {
		latest, err := ix.reports.LatestBySubject(ctx, subject.ID)
		if err != nil {
			// 从未上报过的对象不算活跃
			ix.logger.Debug("No position reports for subject", zap.Int64("subject_id", subject.ID))
			continue
		}
		if latest.RecordedAt.Before(cutoff) {
			continue
		}
		result = append(result, SubjectPresence{
			Subject:  subject,
			IsInZone: zone.Boundary.Contains(latest.Latitude, latest.Longitude),
			LastSeen: latest.RecordedAt,
		})
	}

	ix.cache.Set(key, activeEntry{window: window, result: result})
	return result, nil
}

// ClearCache 失效指定地块的缓存
func (ix *ActiveIndex) ClearCache(zoneID int64) {
	ix.cache.Delete(activeCacheKey(zoneID))
}
