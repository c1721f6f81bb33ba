package core

import (
	"context"
	"sync"
	"time"

	"github.com/dmarkov/jamsync/internal/domain"
)

// LowWaterMark is the queue length below which an advance also asks the
// catalog for recommendations.
const LowWaterMark = 3

// Session is the authoritative state of one room: current song, playback
// triple, pending queue and preference scores. All mutable fields are a single
// unit of mutual exclusion; every public method takes the session lock, so two
// intents against the same room serialize while different rooms stay parallel.
// Membership lives in the registry, never here.
type Session struct {
	mu        sync.Mutex
	id        domain.RoomID
	createdAt time.Time

	current  *domain.Song
	state    domain.PlaybackState
	base     float64 // seconds
	lastSync int64   // epoch ms
	queue    songQueue
	prefs    *domain.Preferences

	// gen is bumped on every current-song change; refill continuations
	// re-validate it after the catalog call returns.
	gen uint64
}

func NewSession(id domain.RoomID) *Session {
	return &Session{
		id:        id,
		createdAt: time.Now(),
		state:     domain.StateIdle,
		lastSync:  EpochMillis(time.Now()),
		prefs:     domain.NewPreferences(),
	}
}

func (s *Session) ID() domain.RoomID    { return s.id }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Snapshot is the full wire view of a room, built under the lock so it always
// reflects a completely applied transition.
type Snapshot struct {
	RoomID        domain.RoomID        `json:"roomId"`
	CurrentSong   *domain.Song         `json:"currentSong"`
	PlaybackState domain.PlaybackState `json:"playbackState"`
	BaseTimestamp float64              `json:"baseTimestamp"`
	LastSyncTime  int64                `json:"lastSyncTime"`
	Playlist      []domain.Song        `json:"playlist"`
	Preferences   *domain.Preferences  `json:"roomPreferences"`
}

// SyncUpdate describes a play/pause/seek transition that kept the same song.
type SyncUpdate struct {
	PlaybackState domain.PlaybackState
	BaseTimestamp float64
	PlayAt        int64 // buffered start instant, set while playing
	LastSyncTime  int64 // set while paused
	Seek          bool
}

func (s *Session) snapshotLocked() Snapshot {
	var cur *domain.Song
	if s.current != nil {
		c := *s.current
		cur = &c
	}
	return Snapshot{
		RoomID:        s.id,
		CurrentSong:   cur,
		PlaybackState: s.state,
		BaseTimestamp: s.base,
		LastSyncTime:  s.lastSync,
		Playlist:      s.queue.Snapshot(),
		Preferences:   s.prefs.Clone(),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Play starts playback from position with a buffered start. No-op without a
// current song; reported ok=false so the caller broadcasts nothing.
func (s *Session) Play(position float64) (SyncUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return SyncUpdate{}, false
	}
	s.state = domain.StatePlaying
	s.base = position
	s.lastSync = StartAt(time.Now())
	return SyncUpdate{
		PlaybackState: s.state,
		BaseTimestamp: s.base,
		PlayAt:        s.lastSync,
	}, true
}

// Pause freezes playback at position. Pausing an already paused or idle room
// is a no-op, which makes duplicate delivery harmless.
func (s *Session) Pause(position float64) (SyncUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StatePlaying {
		return SyncUpdate{}, false
	}
	s.state = domain.StatePaused
	s.base = position
	s.lastSync = EpochMillis(time.Now())
	return SyncUpdate{
		PlaybackState: s.state,
		BaseTimestamp: s.base,
		LastSyncTime:  s.lastSync,
	}, true
}

// Seek moves the position without changing the playback mode. While playing it
// re-arms a buffered start so all members land on the new position together.
func (s *Session) Seek(position float64) (SyncUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return SyncUpdate{}, false
	}
	s.base = position
	if s.state == domain.StatePlaying {
		s.lastSync = StartAt(time.Now())
		return SyncUpdate{
			PlaybackState: s.state,
			BaseTimestamp: s.base,
			PlayAt:        s.lastSync,
			Seek:          true,
		}, true
	}
	s.lastSync = EpochMillis(time.Now())
	return SyncUpdate{
		PlaybackState: s.state,
		BaseTimestamp: s.base,
		LastSyncTime:  s.lastSync,
		Seek:          true,
	}, true
}

type EnqueueResult struct {
	// Ignored is set when the song id is already current or queued.
	Ignored bool
	// BecameCurrent is set when the room was idle and the song was promoted
	// directly to current (paused at zero); Snapshot is valid then.
	BecameCurrent bool
	Snapshot      Snapshot
	// Playlist is the queue after a plain append.
	Playlist []domain.Song
}

// Enqueue adds a song and bumps the genre score. An idle room promotes the
// song to current instead of queueing it.
func (s *Session) Enqueue(song domain.Song) EnqueueResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == song.ID {
		return EnqueueResult{Ignored: true}
	}
	if s.queue.Contains(song.ID) {
		return EnqueueResult{Ignored: true}
	}

	s.prefs.BumpGenre(song.Genre, 2)

	if s.current == nil {
		s.current = &song
		s.state = domain.StatePaused
		s.base = 0
		s.lastSync = EpochMillis(time.Now())
		s.gen++
		return EnqueueResult{BecameCurrent: true, Snapshot: s.snapshotLocked()}
	}
	s.queue.Append(song)
	return EnqueueResult{Playlist: s.queue.Snapshot()}
}

// RemoveFromQueue removes a pending song by id. ok=false when absent.
func (s *Session) RemoveFromQueue(id domain.SongID) ([]domain.Song, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.queue.Remove(id) {
		return nil, false
	}
	return s.queue.Snapshot(), true
}

type AdvanceResult struct {
	Snapshot Snapshot
	// NeedRefill is set when the queue dropped below the low-water mark (or
	// emptied out); the caller should follow up with Refill.
	NeedRefill bool
}

// Advance moves to the next song: pop the queue head into current with a
// buffered start, or go idle when the queue is empty. Skip and song-ended both
// land here.
func (s *Session) Advance() AdvanceResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if head, ok := s.queue.PopHead(); ok {
		s.current = &head
		s.state = domain.StatePlaying
		s.base = 0
		s.lastSync = StartAt(time.Now())
		return AdvanceResult{
			Snapshot:   s.snapshotLocked(),
			NeedRefill: s.queue.Len() < LowWaterMark,
		}
	}
	s.current = nil
	s.state = domain.StateIdle
	s.base = 0
	s.lastSync = EpochMillis(time.Now())
	return AdvanceResult{Snapshot: s.snapshotLocked(), NeedRefill: true}
}

type RefillResult struct {
	// Stale is set when the room moved on (current song changed) while the
	// catalog call was in flight; nothing was applied.
	Stale bool
	// Adopted is set when an idle room took the first recommendation as its
	// new current song; Snapshot is valid then.
	Adopted  bool
	Snapshot Snapshot
	// Suggestions are broadcast-only; they never touch the queue.
	Suggestions []domain.Song
}

// Refill asks the catalog for recommendations and, if the room is still idle
// when they arrive, adopts the first one for immediate continuity. The catalog
// call runs outside the session lock; the continuation re-validates the
// generation counter before touching any state.
func (s *Session) Refill(ctx context.Context, rec Recommender) (RefillResult, error) {
	s.mu.Lock()
	gen := s.gen
	prefs := s.prefs.Clone()
	excluded := s.queue.IDs()
	if s.current != nil {
		excluded[s.current.ID] = struct{}{}
	}
	s.mu.Unlock()

	songs, err := rec.Recommend(ctx, prefs, excluded)
	if err != nil {
		return RefillResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return RefillResult{Stale: true}, nil
	}
	if s.state == domain.StateIdle && len(songs) > 0 {
		head := songs[0]
		s.current = &head
		s.state = domain.StatePlaying
		s.base = 0
		s.lastSync = StartAt(time.Now())
		s.gen++
		return RefillResult{
			Adopted:     true,
			Snapshot:    s.snapshotLocked(),
			Suggestions: songs[1:],
		}, nil
	}
	// Songs may have been queued while the call was outstanding; the queue
	// alone does not bump the generation, so filter once more.
	fresh := songs[:0]
	for _, song := range songs {
		if s.queue.Contains(song.ID) {
			continue
		}
		fresh = append(fresh, song)
	}
	return RefillResult{Suggestions: fresh}, nil
}
