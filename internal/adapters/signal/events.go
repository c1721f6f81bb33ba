package signal

import (
	"github.com/dmarkov/jamsync/internal/core"
	"github.com/dmarkov/jamsync/internal/domain"
)

// Wire event shapes. The envelope type is always the first field so the
// client can dispatch without decoding the rest.

type roomEvent struct {
	Type string `json:"type"`
	core.Snapshot
}

func roomJoined(snap core.Snapshot) roomEvent { return roomEvent{"room-joined", snap} }
func roomState(snap core.Snapshot) roomEvent  { return roomEvent{"room-state", snap} }

type syncEvent struct {
	Type          string               `json:"type"`
	PlaybackState domain.PlaybackState `json:"playbackState"`
	BaseTimestamp float64              `json:"baseTimestamp"`
	PlayAt        int64                `json:"playAt,omitempty"`
	LastSyncTime  int64                `json:"lastSyncTime,omitempty"`
	IsSeek        bool                 `json:"isSeek,omitempty"`
}

func syncUpdate(u core.SyncUpdate) syncEvent {
	return syncEvent{
		Type:          "sync-update",
		PlaybackState: u.PlaybackState,
		BaseTimestamp: u.BaseTimestamp,
		PlayAt:        u.PlayAt,
		LastSyncTime:  u.LastSyncTime,
		IsSeek:        u.Seek,
	}
}

type playlistEvent struct {
	Type     string        `json:"type"`
	Playlist []domain.Song `json:"playlist"`
}

type recommendationsEvent struct {
	Type  string        `json:"type"`
	Songs []domain.Song `json:"songs"`
}
