package attendance

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Pistatapp/fieldgazer/internal/geo"
	"github.com/Pistatapp/fieldgazer/internal/models"
)

// Config 考勤跟踪参数
type Config struct {
	// ExitDebounce 连续出界达到该时长才判定离场, 过滤围栏边缘的 GPS 抖动
	ExitDebounce time.Duration
}

// DefaultConfig 默认考勤参数
func DefaultConfig() Config {
	return Config{ExitDebounce: 30 * time.Minute}
}

// Update 一次打点产生的会话变更, 由集成层持久化并广播
type Update struct {
	Type    string // models.AttendanceEventEntry / Update / Exit
	Session *models.AttendanceSession
}

// dayState 单个 (对象, 日期) 的跟踪状态
type dayState struct {
	session    *models.AttendanceSession
	machine    *Machine
	lastPoint  time.Time  // 上一条已处理的上报时间
	lastInside time.Time  // 最近一次在围栏内的时间
	outSince   *time.Time // 当前连续出界的首条上报时间
}

// Tracker 流式考勤跟踪器
// 每条上报调用一次 ProcessPoint, 按 (对象, 日期) 维护会话状态机
// 纯状态转移, 不做任何 I/O; 并发上报的串行化由集成层负责
type Tracker struct {
	cfg    Config
	logger *zap.Logger

	mu   sync.Mutex
	days map[string]*dayState
}

// NewTracker 创建跟踪器
func NewTracker(cfg Config, logger *zap.Logger) *Tracker {
	if cfg.ExitDebounce <= 0 {
		cfg.ExitDebounce = DefaultConfig().ExitDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		cfg:    cfg,
		logger: logger,
		days:   make(map[string]*dayState),
	}
}

// dayKey 按 UTC 日历日切分会话
func dayKey(subjectID int64, ts time.Time) string {
	return fmt.Sprintf("%d:%s", subjectID, ts.UTC().Format("2006-01-02"))
}

// ProcessPoint 处理一条上报
// 返回 nil 表示无会话变更 (未启用考勤、围栏无效、从未入界等)
// 新的一天总是从空状态开始, 不受前一天会话是否关闭影响
func (t *Tracker) ProcessPoint(subject *models.Subject, zone geo.Polygon, lat, lon float64, ts time.Time) *Update {
	if subject == nil || !subject.AttendanceEnabled || subject.ZoneID == nil {
		return nil
	}
	if !zone.Valid() {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := dayKey(subject.ID, ts)
	inside := zone.Contains(lat, lon)

	st, ok := t.days[key]
	if !ok {
		if !inside {
			return nil
		}
		return t.openSession(key, subject, ts)
	}

	if st.machine.Current() == StateCompleted {
		// 当日会话已关闭, 每对象每天只有一个会话
		return nil
	}

	elapsed := ts.Sub(st.lastPoint)
	if elapsed < 0 {
		t.logger.Warn("out-of-order report dropped by attendance tracker",
			zap.Int64("subject_id", subject.ID),
			zap.Time("last_point", st.lastPoint),
			zap.Time("report", ts))
		return nil
	}
	st.lastPoint = ts

	if inside {
		st.session.InZoneSeconds += elapsed.Seconds()
		st.lastInside = ts
		st.outSince = nil
		st.session.UpdatedAt = ts
		return &Update{Type: models.AttendanceEventUpdate, Session: st.session}
	}

	st.session.OutZoneSeconds += elapsed.Seconds()
	if st.outSince == nil {
		out := ts
		st.outSince = &out
	}
	st.session.UpdatedAt = ts

	if ts.Sub(st.lastInside) >= t.cfg.ExitDebounce {
		return t.closeSession(subject, st)
	}
	return &Update{Type: models.AttendanceEventUpdate, Session: st.session}
}

// openSession 首次入界, 开启当日会话
func (t *Tracker) openSession(key string, subject *models.Subject, ts time.Time) *Update {
	// 回收该对象往日的跟踪状态, days 的规模只与对象数相关
	prefix := fmt.Sprintf("%d:", subject.ID)
	for k := range t.days {
		if k != key && len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(t.days, k)
		}
	}

	st := &dayState{
		session: &models.AttendanceSession{
			SubjectID: subject.ID,
			ZoneID:    *subject.ZoneID,
			Day:       ts.UTC().Format("2006-01-02"),
			EntryTime: ts,
			Status:    models.SessionInProgress,
			UpdatedAt: ts,
		},
		machine:    NewMachine(nil),
		lastPoint:  ts,
		lastInside: ts,
	}
	if err := st.machine.Trigger(EventEnterZone); err != nil {
		t.logger.Error("failed to open attendance session", zap.Error(err),
			zap.Int64("subject_id", subject.ID))
		return nil
	}
	t.days[key] = st

	t.logger.Info("attendance session opened",
		zap.Int64("subject_id", subject.ID),
		zap.Int64("zone_id", st.session.ZoneID),
		zap.Time("entry_time", ts))
	return &Update{Type: models.AttendanceEventEntry, Session: st.session}
}

// closeSession 出界去抖到期, 关闭会话
// 离场时间取本次连续出界的首条上报, 而非当前上报
func (t *Tracker) closeSession(subject *models.Subject, st *dayState) *Update {
	if err := st.machine.Trigger(EventConfirmExit); err != nil {
		t.logger.Error("failed to close attendance session", zap.Error(err),
			zap.Int64("subject_id", subject.ID))
		return nil
	}
	exit := *st.outSince
	st.session.ExitTime = &exit
	st.session.Status = models.SessionCompleted

	t.logger.Info("attendance session closed",
		zap.Int64("subject_id", subject.ID),
		zap.Int64("zone_id", st.session.ZoneID),
		zap.Time("exit_time", exit),
		zap.Float64("in_zone_seconds", st.session.InZoneSeconds),
		zap.Float64("out_zone_seconds", st.session.OutZoneSeconds))
	return &Update{Type: models.AttendanceEventExit, Session: st.session}
}

// Restore 从持久化会话恢复跟踪状态, 服务重启后继续累计
// 已完成的会话同样要恢复成终态: 否则重启后丢失当日记忆,
// 对象再次入界会重开会话并覆盖已落库的考勤时长
func (t *Tracker) Restore(session *models.AttendanceSession) {
	if session == nil {
		return
	}
	if session.Status != models.SessionInProgress && session.Status != models.SessionCompleted {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	key := fmt.Sprintf("%d:%s", session.SubjectID, session.Day)
	if _, ok := t.days[key]; ok {
		return
	}
	st := &dayState{
		session:    session,
		machine:    NewMachine(nil),
		lastPoint:  session.UpdatedAt,
		lastInside: session.UpdatedAt,
	}
	if err := st.machine.Trigger(EventEnterZone); err != nil {
		return
	}
	if session.Status == models.SessionCompleted {
		if err := st.machine.Trigger(EventConfirmExit); err != nil {
			return
		}
	}
	t.days[key] = st
}
