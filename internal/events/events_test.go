package events_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riffbox/internal/events"
	"riffbox/internal/riffbox"
)

func TestMemoryBus_RecordsInOrder(t *testing.T) {
	bus := events.NewMemoryBus()
	bus.Publish(riffbox.Event{Type: riffbox.EventCollectionCreated})
	bus.Publish(riffbox.Event{Type: riffbox.EventVideoAdded})
	bus.Publish(riffbox.Event{Type: riffbox.EventVideoSelected, Data: riffbox.NewVideo("a.mp4", "", 0)})

	assert.Equal(t, []string{
		riffbox.EventCollectionCreated,
		riffbox.EventVideoAdded,
		riffbox.EventVideoSelected,
	}, bus.Types())
	assert.Len(t, bus.OfType(riffbox.EventVideoAdded), 1)
	require.Len(t, bus.SelectedVideos(), 1)
	assert.Equal(t, "a.mp4", bus.SelectedVideos()[0].Path)

	bus.Reset()
	assert.Empty(t, bus.Events())
}

func TestTee_FansOut(t *testing.T) {
	a, b := events.NewMemoryBus(), events.NewMemoryBus()
	tee := events.Tee{a, nil, b}

	tee.Publish(riffbox.Event{Type: riffbox.EventVideoAdded})

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}

func TestHub_BroadcastsToClients(t *testing.T) {
	hub := events.NewHub(riffbox.NewNopLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(riffbox.Event{
		Type: riffbox.EventVideoSelected,
		Data: riffbox.NewVideo("/videos/song1.mp4", "", 42),
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&got))

	assert.Equal(t, riffbox.EventVideoSelected, got.Type)
	assert.Equal(t, "/videos/song1.mp4", got.Data["path"])
	assert.Equal(t, "song1.mp4", got.Data["name"])
}

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := events.NewHub(riffbox.NewNopLogger())
	assert.NotPanics(t, func() {
		hub.Publish(riffbox.Event{Type: riffbox.EventVideoAdded})
	})
}
