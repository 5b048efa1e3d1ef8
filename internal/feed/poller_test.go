package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerEmitsOnInterval(t *testing.T) {
	p := NewPoller(20 * time.Millisecond)
	events, release, err := p.Subscribe(context.Background(), "orders")
	require.NoError(t, err)
	defer release()

	select {
	case ev := <-events:
		assert.Equal(t, "orders", ev.Table)
		assert.False(t, ev.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("poller never fired")
	}
}

func TestPollerReleaseClosesChannel(t *testing.T) {
	p := NewPoller(10 * time.Millisecond)
	events, release, err := p.Subscribe(context.Background(), "orders")
	require.NoError(t, err)

	release()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return // closed, no leaked handler
			}
		case <-deadline:
			t.Fatal("channel not closed after release")
		}
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(10 * time.Millisecond)
	events, release, err := p.Subscribe(ctx, "menu_items")
	require.NoError(t, err)
	defer release()

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after context cancel")
		}
	}
}
