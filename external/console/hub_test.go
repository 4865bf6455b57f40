package console

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func nextFrame(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "client channel closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no frame delivered")
		return Envelope{}
	}
}

func TestHub_FramePublishedBeforeSnapshotIsDelivered(t *testing.T) {
	h := runHub(t)
	c := h.NewClient(nil, "view-1")
	require.True(t, h.Register(c))

	h.Publish("view-1", FrameNavigate, NavigateFrame{Location: "/open_channels/c1"})
	require.True(t, h.SendTo(c, FrameState, StateView{Version: 4}))

	assert.Equal(t, FrameNavigate, nextFrame(t, c).Type)
	assert.Equal(t, FrameState, nextFrame(t, c).Type)
}

func TestHub_SendToReachesOnlyTarget(t *testing.T) {
	h := runHub(t)
	a := h.NewClient(nil, "view-1")
	b := h.NewClient(nil, "view-1")
	require.True(t, h.Register(a))
	require.True(t, h.Register(b))

	require.True(t, h.SendTo(a, FrameState, StateView{Version: 1}))
	h.Publish("view-1", FrameNotice, map[string]string{"message": "hi"})

	assert.Equal(t, FrameState, nextFrame(t, a).Type)
	assert.Equal(t, FrameNotice, nextFrame(t, a).Type)
	assert.Equal(t, FrameNotice, nextFrame(t, b).Type)
	assert.Equal(t, 2, h.Clients("view-1"))
}

func TestHub_StoppedHubRefusesClients(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := h.NewClient(nil, "view-1")
	assert.False(t, h.Register(c))
	assert.False(t, h.SendTo(c, FrameState, StateView{}))
	h.CloseView("view-1")
}
