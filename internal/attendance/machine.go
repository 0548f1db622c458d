package attendance

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/Pistatapp/fieldgazer/internal/models"
)

// 会话状态常量
const (
	StateIdle       = "idle"
	StateInProgress = models.SessionInProgress
	StateCompleted  = models.SessionCompleted
)

// 事件常量
const (
	EventEnterZone   = "enter_zone"
	EventConfirmExit = "confirm_exit"
)

// Machine 单个 (对象, 日期) 的考勤会话状态机
type Machine struct {
	fsm *fsm.FSM
}

// NewMachine 创建状态机
func NewMachine(onTransition func(from, to string)) *Machine {
	m := &Machine{}
	m.fsm = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			// 首次入界开启会话
			{Name: EventEnterZone, Src: []string{StateIdle}, Dst: StateInProgress},

			// 连续出界达到去抖阈值后关闭会话
			{Name: EventConfirmExit, Src: []string{StateInProgress}, Dst: StateCompleted},
		},
		fsm.Callbacks{
			"after_event": func(ctx context.Context, e *fsm.Event) {
				if onTransition != nil && e.Src != e.Dst {
					onTransition(e.Src, e.Dst)
				}
			},
		},
	)
	return m
}

// Current 获取当前状态
func (m *Machine) Current() string {
	return m.fsm.Current()
}

// Trigger 触发事件
func (m *Machine) Trigger(event string) error {
	if err := m.fsm.Event(context.Background(), event); err != nil {
		return fmt.Errorf("trigger event %s: %w", event, err)
	}
	return nil
}

// Can 检查是否可以转换
func (m *Machine) Can(event string) bool {
	return m.fsm.Can(event)
}
