package ws

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestHubEvictsSlowConsumer(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	client := NewClient(h, nil)
	client.Register()
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client registered")

	// 客户端不消费, 发满缓冲后下一条广播将其驱逐
	// waitFor 同时在并发调用 ClientCount, 覆盖驱逐与读数的锁交错
	for i := 0; i < 300; i++ {
		h.BroadcastMessage(MsgTypePositionUpdate, i)
	}
	waitFor(t, func() bool { return h.ClientCount() == 0 }, "slow consumer evicted")
}

func TestHubUnregister(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	client := NewClient(h, nil)
	client.Register()
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client registered")

	client.Unregister()
	waitFor(t, func() bool { return h.ClientCount() == 0 }, "client unregistered")
}
