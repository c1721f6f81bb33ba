package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dmarkov/jamsync/internal/core"
	"github.com/dmarkov/jamsync/internal/domain"
)

// DefaultGracePeriod is how long an empty room survives before deletion.
const DefaultGracePeriod = 30 * time.Second

const roomIDLen = 8

type connEntry struct {
	conn   core.SignalConnection
	cancel context.CancelFunc
}

type roomEntry struct {
	session *core.Session
	members map[core.SessionID]struct{}
	// deletion is armed when the last member leaves and stopped on join.
	deletion *time.Timer
}

// Registry owns every live room and the membership sets. Sessions themselves
// never touch membership; the registry never touches playback state. The
// registry lock only guards the maps, so rooms stay independent.
type Registry struct {
	mu    sync.RWMutex
	grace time.Duration
	rooms map[domain.RoomID]*roomEntry
	conns map[core.SessionID]*connEntry
}

func NewRegistry(grace time.Duration) *Registry {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Registry{
		grace: grace,
		rooms: make(map[domain.RoomID]*roomEntry),
		conns: make(map[core.SessionID]*connEntry),
	}
}

// BindSignal associates a participant connection with its transport endpoint.
func (r *Registry) BindSignal(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[sid] = &connEntry{conn: conn, cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

func (r *Registry) Connection(sid core.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[sid]; ok {
		return e.conn, true
	}
	return nil, false
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.conns[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.cancel != nil {
		e.cancel()
	}
	return true
}

// CreateRoom mints a room with a short shareable id and stores it idle and
// empty. Ids come from a UUID truncated to eight characters; on the
// astronomically unlikely collision we just roll again.
func (r *Registry) CreateRoom() *core.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var id domain.RoomID
	for {
		id = domain.RoomID(strings.ReplaceAll(uuid.NewString(), "-", "")[:roomIDLen])
		if _, taken := r.rooms[id]; !taken {
			break
		}
	}
	session := core.NewSession(id)
	r.rooms[id] = &roomEntry{
		session: session,
		members: make(map[core.SessionID]struct{}),
	}
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room created")
	return session
}

func (r *Registry) GetRoom(id domain.RoomID) (*core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.rooms[id]; ok {
		return e.session, true
	}
	return nil, false
}

// Join adds a member and defuses any pending deletion of the room.
func (r *Registry) Join(id domain.RoomID, sid core.SessionID) (*core.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rooms[id]
	if !ok {
		return nil, false
	}
	e.members[sid] = struct{}{}
	if e.deletion != nil {
		e.deletion.Stop()
		e.deletion = nil
	}
	log.Info().Str("module", "app.registry").Str("room", string(id)).Str("sid", string(sid)).Msg("member joined")
	return e.session, true
}

// Leave removes a member; removing an absent member is a no-op. When the room
// empties out a grace timer is armed, and the timer re-checks membership at
// fire time, so a join racing the arm wins.
func (r *Registry) Leave(id domain.RoomID, sid core.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rooms[id]
	if !ok {
		return false
	}
	if _, present := e.members[sid]; !present {
		return true
	}
	delete(e.members, sid)
	log.Info().Str("module", "app.registry").Str("room", string(id)).Str("sid", string(sid)).Msg("member left")
	if len(e.members) == 0 && e.deletion == nil {
		e.deletion = time.AfterFunc(r.grace, func() { r.reap(id) })
	}
	return true
}

func (r *Registry) reap(id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rooms[id]
	if !ok {
		return
	}
	e.deletion = nil
	if len(e.members) > 0 {
		// A join slipped in between Stop and the callback firing.
		return
	}
	delete(r.rooms, id)
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room deleted after grace period")
}

// RemoveEverywhere drops the member from every room it is in and returns the
// affected room ids. Used on disconnect, when the departing room is unknown.
func (r *Registry) RemoveEverywhere(sid core.SessionID) []domain.RoomID {
	r.mu.RLock()
	var ids []domain.RoomID
	for id, e := range r.rooms {
		if _, ok := e.members[sid]; ok {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()
	for _, id := range ids {
		r.Leave(id, sid)
	}
	return ids
}

func (r *Registry) MembersOf(id domain.RoomID) []core.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rooms[id]
	if !ok {
		return nil
	}
	out := make([]core.SessionID, 0, len(e.members))
	for sid := range e.members {
		out = append(out, sid)
	}
	return out
}

type RoomInfo struct {
	ID            domain.RoomID        `json:"roomId"`
	MemberCount   int                  `json:"memberCount"`
	PlaybackState domain.PlaybackState `json:"playbackState"`
}

// List snapshots the live rooms. Session state is read after the registry lock
// is released so one slow room cannot stall the map.
func (r *Registry) List() []RoomInfo {
	r.mu.RLock()
	type pair struct {
		session *core.Session
		count   int
	}
	pairs := make([]pair, 0, len(r.rooms))
	for _, e := range r.rooms {
		pairs = append(pairs, pair{session: e.session, count: len(e.members)})
	}
	r.mu.RUnlock()

	out := make([]RoomInfo, 0, len(pairs))
	for _, p := range pairs {
		snap := p.session.Snapshot()
		out = append(out, RoomInfo{
			ID:            snap.RoomID,
			MemberCount:   p.count,
			PlaybackState: snap.PlaybackState,
		})
	}
	return out
}
