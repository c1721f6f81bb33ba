// Package domain contains entities without logic, just meta-data.
package domain

type RoomID string

// PlaybackState is the room-wide playback mode.
type PlaybackState string

const (
	// StateIdle means no current song; base timestamp is meaningless.
	StateIdle PlaybackState = "idle"
	// StatePaused means the base timestamp is the frozen position in seconds.
	StatePaused PlaybackState = "paused"
	// StatePlaying means the live position must be derived from the base
	// timestamp and the last sync instant.
	StatePlaying PlaybackState = "playing"
)
