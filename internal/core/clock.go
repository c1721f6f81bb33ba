package core

import (
	"math"
	"time"

	"github.com/dmarkov/jamsync/internal/domain"
)

// Playback synchronization math. Servers stamp transitions to Playing with a
// start instant slightly in the future so every participant can receive the
// update and prime its player before the nominal start; consumers then run
// periodic drift correction against the authoritative triple.
const (
	// StartBuffer is added to the server clock on every transition to Playing.
	StartBuffer = 500 * time.Millisecond
	// DriftTolerance is the largest position error (seconds) a running player
	// may accumulate before being snapped.
	DriftTolerance = 0.3
	// PauseTolerance is the snap threshold (seconds) while paused.
	PauseTolerance = 0.5
	// ReconcileInterval is how often a consumer should re-run Reconcile.
	ReconcileInterval = time.Second
)

// EpochMillis converts t to the wire clock (Unix milliseconds).
func EpochMillis(t time.Time) int64 { return t.UnixMilli() }

// StartAt returns the buffered start instant for a transition happening at now.
func StartAt(now time.Time) int64 {
	return EpochMillis(now.Add(StartBuffer))
}

// Position derives the expected live position (seconds) of a playing room.
// Before the start instant the expected position is the base itself.
func Position(base float64, lastSyncMillis int64, now time.Time) float64 {
	nowMs := EpochMillis(now)
	if nowMs <= lastSyncMillis {
		return base
	}
	return base + float64(nowMs-lastSyncMillis)/1000
}

// PlayerStatus is what a consumer observes about its local player.
type PlayerStatus struct {
	Position float64
	Running  bool
}

type DecisionKind int

const (
	// DecideNone: the player is close enough, leave it running.
	DecideNone DecisionKind = iota
	// DecideSchedule: the start instant is still in the future; arm a one-shot
	// at At that seeks to Position and starts playback. Superseded by any
	// newer sync update or a song change.
	DecideSchedule
	// DecideStart: seek to Position and start playback now.
	DecideStart
	// DecideSnap: playback keeps running, position jumps to Position.
	DecideSnap
	// DecideStop: stop playback; Position carries the paused position when a
	// snap is also needed.
	DecideStop
)

// Decision tells a consumer what to do with its local player.
type Decision struct {
	Kind     DecisionKind
	Position float64
	At       int64 // epoch ms, set for DecideSchedule
}

// Reconcile implements the consumer-side algorithm: run it on every sync
// update and once per ReconcileInterval. It is pure; the caller owns acting on
// the decision and cancelling a scheduled start when the song changes.
func Reconcile(state domain.PlaybackState, base float64, lastSyncMillis int64, player PlayerStatus, now time.Time) Decision {
	switch state {
	case domain.StatePlaying:
		if EpochMillis(now) < lastSyncMillis {
			return Decision{Kind: DecideSchedule, Position: base, At: lastSyncMillis}
		}
		expected := Position(base, lastSyncMillis, now)
		if !player.Running {
			return Decision{Kind: DecideStart, Position: expected}
		}
		if math.Abs(player.Position-expected) > DriftTolerance {
			return Decision{Kind: DecideSnap, Position: expected}
		}
		return Decision{Kind: DecideNone}
	case domain.StatePaused:
		if player.Running || math.Abs(player.Position-base) > PauseTolerance {
			return Decision{Kind: DecideStop, Position: base}
		}
		return Decision{Kind: DecideNone}
	default:
		if player.Running {
			return Decision{Kind: DecideStop}
		}
		return Decision{Kind: DecideNone}
	}
}
