package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRelayDefaults(t *testing.T) {
	r := NewRelay(nil, nil, "donation_outbox_messages", "proof_outbox_messages")

	assert.Equal(t, []string{"donation_outbox_messages", "proof_outbox_messages"}, r.tables)
	assert.Equal(t, time.Second, r.interval)
	assert.Equal(t, 100, r.batch)
	// 清理周期远长于投递周期，已投递消息保留一天
	assert.Equal(t, time.Hour, r.cleanupInterval)
	assert.Equal(t, 24*time.Hour, r.retention)
	assert.Greater(t, r.retention, r.cleanupInterval)
}

func TestRelayRunStopsOnCancel(t *testing.T) {
	r := NewRelay(nil, nil, "donation_outbox_messages")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after context cancellation")
	}
}
