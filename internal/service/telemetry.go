package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/attendance"
	"github.com/Pistatapp/fieldgazer/internal/config"
	"github.com/Pistatapp/fieldgazer/internal/geo"
	"github.com/Pistatapp/fieldgazer/internal/models"
	"github.com/Pistatapp/fieldgazer/internal/repository"
	"github.com/Pistatapp/fieldgazer/pkg/ws"
)

// IngestReport 设备上报的规范化载荷
// coordinate 兼容三种编码: [lat,lon] 数组、"lat,lon" 字符串、"[lat,lon]" 字符串
type IngestReport struct {
	SubjectID  int64           `json:"subject_id"`
	Imei       string          `json:"imei"`
	Coordinate json.RawMessage `json:"coordinate"`
	SpeedKmh   float64         `json:"speed"`
	Status     int             `json:"status"`
	Altitude   *float64        `json:"altitude,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// TelemetryService 遥测接入服务
// 单条上报的处理链: 解析坐标 → 可选卡尔曼平滑 → 落库 → 考勤状态机 → 广播
type TelemetryService struct {
	cfg    *config.Config
	logger *zap.Logger

	subjectRepo *repository.SubjectRepository
	zoneRepo    *repository.ZoneRepository
	reportRepo  *repository.ReportRepository
	sessionRepo *repository.AttendanceRepository

	tracker *attendance.Tracker
	active  *ActiveIndex
	wsHub   *ws.Hub

	mu        sync.Mutex
	smoothers map[int64]*geo.Kalman // 每对象一个位置平滑器
}

// NewTelemetryService 创建遥测服务
func NewTelemetryService(
	cfg *config.Config,
	logger *zap.Logger,
	subjectRepo *repository.SubjectRepository,
	zoneRepo *repository.ZoneRepository,
	reportRepo *repository.ReportRepository,
	sessionRepo *repository.AttendanceRepository,
	tracker *attendance.Tracker,
	active *ActiveIndex,
	wsHub *ws.Hub,
) *TelemetryService {
	return &TelemetryService{
		cfg:         cfg,
		logger:      logger,
		subjectRepo: subjectRepo,
		zoneRepo:    zoneRepo,
		reportRepo:  reportRepo,
		sessionRepo: sessionRepo,
		tracker:     tracker,
		active:      active,
		wsHub:       wsHub,
		smoothers:   make(map[int64]*geo.Kalman),
	}
}

// RestoreSessions 服务重启后从库里恢复考勤跟踪状态
// 未关闭的会话继续累计; 当日已关闭的会话恢复成终态, 防止再次入界重开覆盖
func (s *TelemetryService) RestoreSessions(ctx context.Context) error {
	today := time.Now().UTC().Format("2006-01-02")
	sessions, err := s.sessionRepo.ListRestorable(ctx, today)
	if err != nil {
		return fmt.Errorf("restore sessions: %w", err)
	}
	for i := range sessions {
		s.tracker.Restore(&sessions[i])
	}
	if len(sessions) > 0 {
		s.logger.Info("Restored attendance sessions", zap.Int("count", len(sessions)))
	}
	return nil
}

// IngestBatch 接收一批上报
// 单条坏记录 (坐标解析失败、对象不存在) 跳过并继续, 返回接受条数
func (s *TelemetryService) IngestBatch(ctx context.Context, batch []IngestReport) (int, error) {
	accepted := 0
	for i := range batch {
		if err := s.ingestOne(ctx, &batch[i]); err != nil {
			s.logger.Debug("Report skipped", zap.Error(err))
			continue
		}
		accepted++
	}
	return accepted, nil
}

func (s *TelemetryService) ingestOne(ctx context.Context, in *IngestReport) error {
	subject, err := s.resolveSubject(ctx, in)
	if err != nil {
		return err
	}

	var coord models.Coordinate
	if err := json.Unmarshal(in.Coordinate, &coord); err != nil {
		return fmt.Errorf("malformed coordinate for subject %d: %w", subject.ID, err)
	}

	recordedAt := in.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	lat, lon := coord.Lat, coord.Lon
	if s.cfg.KalmanEnabled {
		lat, lon = s.smoother(subject.ID).Filter(lat, lon)
	}

	report := &models.Report{
		SubjectID:  subject.ID,
		Latitude:   lat,
		Longitude:  lon,
		Altitude:   in.Altitude,
		SpeedKmh:   in.SpeedKmh,
		Status:     in.Status,
		Imei:       in.Imei,
		RecordedAt: recordedAt,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return err
	}

	s.wsHub.BroadcastPositionUpdate(report)
	s.processAttendance(ctx, subject, report)

	// 有新位置落库, 地块活跃索引交由调用方显式失效
	if subject.ZoneID != nil {
		s.active.ClearCache(*subject.ZoneID)
	}
	return nil
}

// processAttendance 将打点送入考勤状态机并落库/广播产生的会话变更
// 未启用考勤或围栏缺失时状态机静默忽略, 不是错误
func (s *TelemetryService) processAttendance(ctx context.Context, subject *models.Subject, report *models.Report) {
	var zone geo.Polygon
	if subject.AttendanceEnabled && subject.ZoneID != nil {
		z, err := s.zoneRepo.GetByID(ctx, *subject.ZoneID)
		if err != nil {
			s.logger.Warn("Failed to load attendance zone",
				zap.Int64("subject_id", subject.ID),
				zap.Int64p("zone_id", subject.ZoneID),
				zap.Error(err))
			return
		}
		zone = z.Boundary
	}

	upd := s.tracker.ProcessPoint(subject, zone, report.Latitude, report.Longitude, report.RecordedAt)
	if upd == nil {
		return
	}

	if upd.Type == models.AttendanceEventEntry {
		// 新会话开启时兜底关闭跨天遗留的旧会话
		if err := s.sessionRepo.ForceCloseOpenBefore(ctx, subject.ID, upd.Session.Day, report.RecordedAt); err != nil {
			s.logger.Warn("Failed to force close stale sessions", zap.Error(err), zap.Int64("subject_id", subject.ID))
		}
	}

	if err := s.sessionRepo.Upsert(ctx, upd.Session); err != nil {
		s.logger.Error("Failed to persist attendance session", zap.Error(err),
			zap.Int64("subject_id", subject.ID))
		return
	}

	event := &models.AttendanceEvent{
		ID:         uuid.NewString(),
		Type:       upd.Type,
		SubjectID:  subject.ID,
		ZoneID:     upd.Session.ZoneID,
		Session:    upd.Session,
		OccurredAt: report.RecordedAt,
	}
	s.wsHub.BroadcastAttendanceEvent(event)
}

// resolveSubject 按 subject_id 或 imei 定位上报对象
func (s *TelemetryService) resolveSubject(ctx context.Context, in *IngestReport) (*models.Subject, error) {
	if in.SubjectID > 0 {
		subject, err := s.subjectRepo.GetByID(ctx, in.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("unknown subject %d: %w", in.SubjectID, err)
		}
		return subject, nil
	}
	if in.Imei != "" {
		subject, err := s.subjectRepo.GetByImei(ctx, in.Imei)
		if err != nil {
			return nil, fmt.Errorf("unknown device %s: %w", in.Imei, err)
		}
		return subject, nil
	}
	return nil, fmt.Errorf("report without subject_id or imei")
}

func (s *TelemetryService) smoother(subjectID int64) *geo.Kalman {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.smoothers[subjectID]
	if !ok {
		k = geo.NewKalman(s.cfg.KalmanQ, s.cfg.KalmanR)
		s.smoothers[subjectID] = k
	}
	return k
}
