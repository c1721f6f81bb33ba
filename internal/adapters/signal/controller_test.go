package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarkov/jamsync/internal/app"
	"github.com/dmarkov/jamsync/internal/core"
	"github.com/dmarkov/jamsync/internal/domain"
)

type stubCatalog struct {
	songs []domain.Song
	err   error
}

func (c *stubCatalog) Search(_ context.Context, _ string) ([]domain.Song, error) {
	return c.songs, c.err
}

func (c *stubCatalog) Recommendations(_ context.Context, _ *domain.Preferences) ([]domain.Song, error) {
	return c.songs, c.err
}

func newTestController(cat core.Catalog) (*SignalWSController, *WsSignalConn) {
	ctl := &SignalWSController{
		Registry:       app.NewRegistry(time.Minute),
		Recommender:    core.Recommender{Catalog: cat},
		CatalogTimeout: time.Second,
	}
	conn := &WsSignalConn{send: make(chan core.Frame, 64)}
	ctl.Registry.BindSignal("m1", conn, nil)
	return ctl, conn
}

func nextEvent(t *testing.T, conn *WsSignalConn) map[string]any {
	t.Helper()
	select {
	case frame := <-conn.send:
		var m map[string]any
		require.NoError(t, json.Unmarshal(frame, &m))
		return m
	default:
		t.Fatal("expected an event, send queue is empty")
		return nil
	}
}

func noEvent(t *testing.T, conn *WsSignalConn) {
	t.Helper()
	select {
	case frame := <-conn.send:
		t.Fatalf("unexpected event: %s", frame)
	default:
	}
}

func addSongMsg(roomID, songID, title, genre string) []byte {
	return fmt.Appendf(nil,
		`{"type":"intent:add-song","roomId":%q,"song":{"id":%q,"title":%q,"artist":"a","streamUrl":"u","genre":%q}}`,
		roomID, songID, title, genre)
}

func TestCreateRoomRepliesRoomJoined(t *testing.T) {
	ctl, conn := newTestController(&stubCatalog{})

	ctl.handleCreateRoom("m1", conn)

	ev := nextEvent(t, conn)
	assert.Equal(t, "room-joined", ev["type"])
	assert.Len(t, ev["roomId"], 8)
	assert.Equal(t, "idle", ev["playbackState"])
}

func TestIntentAgainstUnknownRoom(t *testing.T) {
	ctl, conn := newTestController(&stubCatalog{})

	ctl.handlePlay("m1", conn, []byte(`{"type":"intent:play","roomId":"gone","timestamp":3}`))

	ev := nextEvent(t, conn)
	assert.Equal(t, "error", ev["type"])
	assert.Equal(t, "Room not found", ev["message"])
}

func TestAddSongBroadcasts(t *testing.T) {
	ctl, conn := newTestController(&stubCatalog{})
	ctl.handleCreateRoom("m1", conn)
	roomID, _ := nextEvent(t, conn)["roomId"].(string)

	// First song of an idle room becomes current: full snapshot.
	ctl.handleAddSong("m1", conn, addSongMsg(roomID, "s1", "One", "Rock"))
	ev := nextEvent(t, conn)
	assert.Equal(t, "room-state", ev["type"])

	// Second song is appended: queue delta only.
	ctl.handleAddSong("m1", conn, addSongMsg(roomID, "s2", "Two", "Rock"))
	ev = nextEvent(t, conn)
	assert.Equal(t, "playlist-update", ev["type"])

	// Duplicate is silently dropped.
	ctl.handleAddSong("m1", conn, addSongMsg(roomID, "s2", "Two", "Rock"))
	noEvent(t, conn)
}

func TestAdvanceBroadcastOrdering(t *testing.T) {
	cat := &stubCatalog{songs: []domain.Song{
		{ID: "r1", Title: "Rec", Artist: "a", StreamURL: "u", Genre: "Rock"},
		{ID: "r2", Title: "Rec2", Artist: "a", StreamURL: "u", Genre: "Rock"},
	}}
	ctl, conn := newTestController(cat)
	ctl.handleCreateRoom("m1", conn)
	roomID, _ := nextEvent(t, conn)["roomId"].(string)

	ctl.handleAddSong("m1", conn, addSongMsg(roomID, "s1", "One", "Rock"))
	nextEvent(t, conn)
	ctl.handleAddSong("m1", conn, addSongMsg(roomID, "s2", "Two", "Rock"))
	nextEvent(t, conn)

	// Skip pops s2 into current; the queue is now below the low-water mark, so
	// the snapshot must land before the recommendations.
	ctl.handleAdvance("m1", conn, fmt.Appendf(nil, `{"type":"intent:skip","roomId":%q}`, roomID))

	ev := nextEvent(t, conn)
	require.Equal(t, "room-state", ev["type"])
	assert.Equal(t, "playing", ev["playbackState"])

	ev = nextEvent(t, conn)
	require.Equal(t, "recommendations", ev["type"])

	// Next advance empties the room; the refill adopts the first candidate and
	// suggests the rest, again in order.
	ctl.handleAdvance("m1", conn, fmt.Appendf(nil, `{"type":"intent:song-ended","roomId":%q}`, roomID))

	ev = nextEvent(t, conn)
	require.Equal(t, "room-state", ev["type"])
	assert.Equal(t, "idle", ev["playbackState"])

	ev = nextEvent(t, conn)
	require.Equal(t, "room-state", ev["type"])
	assert.Equal(t, "playing", ev["playbackState"])

	ev = nextEvent(t, conn)
	require.Equal(t, "recommendations", ev["type"])
}

func TestAdvanceCatalogFailureOmitsRecommendations(t *testing.T) {
	ctl, conn := newTestController(&stubCatalog{err: context.DeadlineExceeded})
	ctl.handleCreateRoom("m1", conn)
	roomID, _ := nextEvent(t, conn)["roomId"].(string)

	ctl.handleAddSong("m1", conn, addSongMsg(roomID, "s1", "One", "Rock"))
	nextEvent(t, conn)

	ctl.handleAdvance("m1", conn, fmt.Appendf(nil, `{"type":"intent:skip","roomId":%q}`, roomID))

	ev := nextEvent(t, conn)
	assert.Equal(t, "room-state", ev["type"])
	noEvent(t, conn)
}

func TestCreateRoomRateLimited(t *testing.T) {
	ctl, conn := newTestController(&stubCatalog{})
	ctl.CreateLimiter = NewRoomRateLimiter(1, time.Minute)

	ctl.handleCreateRoom("m1", conn)
	assert.Equal(t, "room-joined", nextEvent(t, conn)["type"])

	ctl.handleCreateRoom("m1", conn)
	assert.Equal(t, "error", nextEvent(t, conn)["type"])
}

func TestDisconnectBroadcastsUserLeft(t *testing.T) {
	ctl, conn := newTestController(&stubCatalog{})
	ctl.handleCreateRoom("m1", conn)
	roomID, _ := nextEvent(t, conn)["roomId"].(string)

	other := &WsSignalConn{send: make(chan core.Frame, 8)}
	ctl.Registry.BindSignal("m2", other, nil)
	ctl.handleJoinRoom("m2", other, fmt.Appendf(nil, `{"type":"join-room","roomId":%q}`, roomID))
	assert.Equal(t, "room-joined", nextEvent(t, other)["type"])
	assert.Equal(t, "user-joined", nextEvent(t, other)["type"])
	assert.Equal(t, "user-joined", nextEvent(t, conn)["type"])

	ctl.handleDisconnect("m2")
	ev := nextEvent(t, conn)
	assert.Equal(t, "user-left", ev["type"])
	assert.Equal(t, "m2", ev["userId"])
}
