package attendance

import (
	"testing"
	"time"

	"github.com/Pistatapp/fieldgazer/internal/geo"
	"github.com/Pistatapp/fieldgazer/internal/models"
)

var day = time.Date(2026, 4, 10, 10, 0, 0, 0, time.UTC)

func trackedSubject() *models.Subject {
	zoneID := int64(7)
	return &models.Subject{
		ID:                3,
		FarmID:            1,
		Name:              "tractor-03",
		Kind:              "tractor",
		AttendanceEnabled: true,
		ZoneID:            &zoneID,
	}
}

func attendanceZone() geo.Polygon {
	return geo.Polygon{{51.0, 35.0}, {52.0, 35.0}, {52.0, 36.0}, {51.0, 36.0}}
}

func TestTrackerEntryOnFirstInsidePoint(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	subject := trackedSubject()
	zone := attendanceZone()

	upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, day)
	if upd == nil || upd.Type != models.AttendanceEventEntry {
		t.Fatalf("got %+v, want entry event", upd)
	}
	s := upd.Session
	if !s.EntryTime.Equal(day) {
		t.Errorf("entry_time = %v, want %v", s.EntryTime, day)
	}
	if s.Status != models.SessionInProgress {
		t.Errorf("status = %q, want %q", s.Status, models.SessionInProgress)
	}
	if s.Day != "2026-04-10" {
		t.Errorf("day = %q, want 2026-04-10", s.Day)
	}
	if s.ZoneID != 7 || s.SubjectID != 3 {
		t.Errorf("session keys = (%d, %d), want (3, 7)", s.SubjectID, s.ZoneID)
	}
}

func TestTrackerOutsidePointsBeforeEntryIgnored(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	subject := trackedSubject()
	zone := attendanceZone()

	if upd := tr.ProcessPoint(subject, zone, 40.0, 60.0, day); upd != nil {
		t.Fatalf("outside point before entry must yield nil, got %+v", upd)
	}

	// 之后入界正常开启会话
	upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(5*time.Minute))
	if upd == nil || upd.Type != models.AttendanceEventEntry {
		t.Fatalf("got %+v, want entry event", upd)
	}
}

func TestTrackerAccumulatesInAndOutTime(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	subject := trackedSubject()
	zone := attendanceZone()

	tr.ProcessPoint(subject, zone, 35.5, 51.5, day)
	upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(10*time.Minute))
	if upd == nil || upd.Type != models.AttendanceEventUpdate {
		t.Fatalf("got %+v, want update event", upd)
	}
	if upd.Session.InZoneSeconds != 600 {
		t.Errorf("in_zone_seconds = %v, want 600", upd.Session.InZoneSeconds)
	}

	upd = tr.ProcessPoint(subject, zone, 40.0, 60.0, day.Add(20*time.Minute))
	if upd == nil || upd.Type != models.AttendanceEventUpdate {
		t.Fatalf("got %+v, want update event", upd)
	}
	if upd.Session.OutZoneSeconds != 600 {
		t.Errorf("out_zone_seconds = %v, want 600", upd.Session.OutZoneSeconds)
	}
	if upd.Session.ExitTime != nil {
		t.Errorf("exit_time = %v, want nil before debounce", upd.Session.ExitTime)
	}
}

func TestTrackerShortAbsenceDoesNotClose(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	subject := trackedSubject()
	zone := attendanceZone()

	tr.ProcessPoint(subject, zone, 35.5, 51.5, day)
	tr.ProcessPoint(subject, zone, 40.0, 60.0, day.Add(10*time.Minute))

	// 15 分钟后回到界内, 去抖计时复位
	upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(15*time.Minute))
	if upd == nil || upd.Type != models.AttendanceEventUpdate {
		t.Fatalf("got %+v, want update event", upd)
	}
	if upd.Session.Status != models.SessionInProgress {
		t.Errorf("status = %q, want still in progress", upd.Session.Status)
	}

	// 复位后再次短暂出界仍不关闭
	upd = tr.ProcessPoint(subject, zone, 40.0, 60.0, day.Add(40*time.Minute))
	if upd.Session.Status != models.SessionInProgress || upd.Session.ExitTime != nil {
		t.Errorf("session closed too early: %+v", upd.Session)
	}
}

func TestTrackerDebouncedExit(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	subject := trackedSubject()
	zone := attendanceZone()

	tr.ProcessPoint(subject, zone, 35.5, 51.5, day)
	tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(30*time.Minute))

	firstOut := day.Add(40 * time.Minute)
	tr.ProcessPoint(subject, zone, 40.0, 60.0, firstOut)

	// 距最后一次在界内已满 30 分钟, 判定离场
	upd := tr.ProcessPoint(subject, zone, 40.0, 60.0, day.Add(65*time.Minute))
	if upd == nil || upd.Type != models.AttendanceEventExit {
		t.Fatalf("got %+v, want exit event", upd)
	}
	s := upd.Session
	if s.Status != models.SessionCompleted {
		t.Errorf("status = %q, want %q", s.Status, models.SessionCompleted)
	}
	// 离场时间回溯到本次连续出界的首条上报
	if s.ExitTime == nil || !s.ExitTime.Equal(firstOut) {
		t.Errorf("exit_time = %v, want %v", s.ExitTime, firstOut)
	}
	if s.InZoneSeconds != 1800 {
		t.Errorf("in_zone_seconds = %v, want 1800", s.InZoneSeconds)
	}
	if s.OutZoneSeconds != 2100 {
		t.Errorf("out_zone_seconds = %v, want 2100", s.OutZoneSeconds)
	}
}

func TestTrackerCompletedDayIsFinal(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	subject := trackedSubject()
	zone := attendanceZone()

	tr.ProcessPoint(subject, zone, 35.5, 51.5, day)
	tr.ProcessPoint(subject, zone, 40.0, 60.0, day.Add(10*time.Minute))
	upd := tr.ProcessPoint(subject, zone, 40.0, 60.0, day.Add(45*time.Minute))
	if upd == nil || upd.Type != models.AttendanceEventExit {
		t.Fatalf("got %+v, want exit event", upd)
	}

	// 当日再次入界不再产生会话, 每对象每天至多一个
	if upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(2*time.Hour)); upd != nil {
		t.Errorf("re-entry after completion must yield nil, got %+v", upd)
	}
}

func TestTrackerNewDayStartsFresh(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	subject := trackedSubject()
	zone := attendanceZone()

	tr.ProcessPoint(subject, zone, 35.5, 51.5, day)

	nextDay := day.Add(23 * time.Hour)
	upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, nextDay)
	if upd == nil || upd.Type != models.AttendanceEventEntry {
		t.Fatalf("got %+v, want entry event on new UTC day", upd)
	}
	if upd.Session.Day != "2026-04-11" {
		t.Errorf("day = %q, want 2026-04-11", upd.Session.Day)
	}
	if upd.Session.InZoneSeconds != 0 {
		t.Errorf("new day session must start empty, in_zone_seconds = %v", upd.Session.InZoneSeconds)
	}
}

func TestTrackerSkipsUntrackedSubjects(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	zone := attendanceZone()

	disabled := trackedSubject()
	disabled.AttendanceEnabled = false
	if upd := tr.ProcessPoint(disabled, zone, 35.5, 51.5, day); upd != nil {
		t.Errorf("disabled subject must yield nil, got %+v", upd)
	}

	noZone := trackedSubject()
	noZone.ZoneID = nil
	if upd := tr.ProcessPoint(noZone, zone, 35.5, 51.5, day); upd != nil {
		t.Errorf("subject without zone must yield nil, got %+v", upd)
	}

	if upd := tr.ProcessPoint(nil, zone, 35.5, 51.5, day); upd != nil {
		t.Errorf("nil subject must yield nil, got %+v", upd)
	}

	// 围栏顶点不足三点视为无效
	if upd := tr.ProcessPoint(trackedSubject(), geo.Polygon{{51, 35}}, 35.5, 51.5, day); upd != nil {
		t.Errorf("degenerate zone must yield nil, got %+v", upd)
	}
}

func TestTrackerDropsOutOfOrderReports(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	subject := trackedSubject()
	zone := attendanceZone()

	tr.ProcessPoint(subject, zone, 35.5, 51.5, day)
	tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(10*time.Minute))

	// 时间倒流的上报被丢弃, 不影响累计
	if upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(5*time.Minute)); upd != nil {
		t.Errorf("out-of-order report must yield nil, got %+v", upd)
	}

	upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(20*time.Minute))
	if upd.Session.InZoneSeconds != 1200 {
		t.Errorf("in_zone_seconds = %v, want 1200", upd.Session.InZoneSeconds)
	}
}

func TestTrackerRestore(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	subject := trackedSubject()
	zone := attendanceZone()

	session := &models.AttendanceSession{
		SubjectID:     3,
		ZoneID:        7,
		Day:           "2026-04-10",
		EntryTime:     day,
		Status:        models.SessionInProgress,
		InZoneSeconds: 3600,
		UpdatedAt:     day.Add(time.Hour),
	}
	tr.Restore(session)

	// 恢复后继续累计, 不重复产生入场事件
	upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(70*time.Minute))
	if upd == nil || upd.Type != models.AttendanceEventUpdate {
		t.Fatalf("got %+v, want update event after restore", upd)
	}
	if upd.Session.InZoneSeconds != 4200 {
		t.Errorf("in_zone_seconds = %v, want 4200", upd.Session.InZoneSeconds)
	}
}

func TestTrackerRestoreCompletedDayStaysClosed(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	subject := trackedSubject()
	zone := attendanceZone()

	exit := day.Add(90 * time.Minute)
	tr.Restore(&models.AttendanceSession{
		SubjectID:     3,
		ZoneID:        7,
		Day:           "2026-04-10",
		EntryTime:     day,
		ExitTime:      &exit,
		Status:        models.SessionCompleted,
		InZoneSeconds: 7200,
		UpdatedAt:     exit,
	})

	// 当日会话已关闭, 重启后再次入界不得重开覆盖已落库的时长
	if upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(2*time.Hour)); upd != nil {
		t.Fatalf("re-entry after restored completed session must yield nil, got %+v", upd)
	}

	// 新的一天照常从空状态开始
	upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(23*time.Hour))
	if upd == nil || upd.Type != models.AttendanceEventEntry {
		t.Fatalf("got %+v, want entry event on new day", upd)
	}
	if upd.Session.Day != "2026-04-11" || upd.Session.InZoneSeconds != 0 {
		t.Errorf("new day session = %+v, want fresh 2026-04-11 session", upd.Session)
	}
}

func TestTrackerRestoreIgnoresUnknownStatus(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	subject := trackedSubject()
	zone := attendanceZone()

	tr.Restore(&models.AttendanceSession{
		SubjectID: 3,
		ZoneID:    7,
		Day:       "2026-04-10",
		EntryTime: day,
		Status:    "corrupt",
		UpdatedAt: day,
	})

	// 无法识别的状态不恢复, 入界视为当日首次
	upd := tr.ProcessPoint(subject, zone, 35.5, 51.5, day.Add(time.Hour))
	if upd == nil || upd.Type != models.AttendanceEventEntry {
		t.Fatalf("got %+v, want entry event", upd)
	}
}
