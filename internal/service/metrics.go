package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/analytics"
	"github.com/Pistatapp/fieldgazer/internal/models"
	"github.com/Pistatapp/fieldgazer/internal/repository"
)

// MetricsService 运动指标查询服务
type MetricsService struct {
	logger       *zap.Logger
	zoneRepo     *repository.ZoneRepository
	reportRepo   *repository.ReportRepository
	analyzer     *analytics.Analyzer
	zoneAnalyzer *analytics.ZoneAnalyzer
}

// NewMetricsService 创建指标服务
func NewMetricsService(
	logger *zap.Logger,
	cfg analytics.Config,
	zoneRepo *repository.ZoneRepository,
	reportRepo *repository.ReportRepository,
) *MetricsService {
	return &MetricsService{
		logger:       logger,
		zoneRepo:     zoneRepo,
		reportRepo:   reportRepo,
		analyzer:     analytics.NewAnalyzer(cfg, logger),
		zoneAnalyzer: analytics.NewZoneAnalyzer(cfg, logger),
	}
}

// SubjectMetrics 对象全程运动指标
// from/to 为零值时不限制; zoneID 非 nil 时只统计该地块围栏内的上报
func (s *MetricsService) SubjectMetrics(ctx context.Context, subjectID int64, from, to time.Time, zoneID *int64) (models.MetricsResult, error) {
	reports, err := s.reportRepo.ListBySubject(ctx, subjectID, from, to)
	if err != nil {
		return models.MetricsResult{}, fmt.Errorf("load reports: %w", err)
	}

	opts := analytics.Options{}
	if !from.IsZero() {
		opts.Start = &from
	}
	if !to.IsZero() {
		opts.End = &to
	}
	if zoneID != nil {
		zone, err := s.zoneRepo.GetByID(ctx, *zoneID)
		if err != nil {
			return models.MetricsResult{}, fmt.Errorf("load zone: %w", err)
		}
		opts.Zone = zone.Boundary
	}

	return s.analyzer.Analyze(reports, opts), nil
}

// ZoneMetrics 对象在地块围栏内的运动指标
// 只统计围栏内的连续段, 出界时间不参与任何累积
func (s *MetricsService) ZoneMetrics(ctx context.Context, subjectID, zoneID int64, from, to time.Time) (models.MetricsResult, error) {
	zone, err := s.zoneRepo.GetByID(ctx, zoneID)
	if err != nil {
		return models.MetricsResult{}, fmt.Errorf("load zone: %w", err)
	}

	reports, err := s.reportRepo.ListBySubject(ctx, subjectID, from, to)
	if err != nil {
		return models.MetricsResult{}, fmt.Errorf("load reports: %w", err)
	}

	return s.zoneAnalyzer.Analyze(reports, zone.Boundary), nil
}
