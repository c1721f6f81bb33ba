package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dmarkov/jamsync/internal/core"
	"github.com/dmarkov/jamsync/internal/domain"
)

func (ctl *SignalWSController) handleCreateRoom(sid core.SessionID, conn *WsSignalConn) {
	if ctl.CreateLimiter != nil && !ctl.CreateLimiter.Allow(sid) {
		ctl.sendError(conn, "too many rooms created, slow down")
		return
	}

	session := ctl.Registry.CreateRoom()
	ctl.Registry.Join(session.ID(), sid)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(session.ID())).Msg("room created")
	ctl.sendJSON(conn, roomJoined(session.Snapshot()))
}

func (ctl *SignalWSController) handleJoinRoom(sid core.SessionID, conn *WsSignalConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad payload")
		return
	}

	session, ok := ctl.Registry.Join(domain.RoomID(p.RoomID), sid)
	if !ok {
		log.Warn().Str("module", "signal").Str("room", p.RoomID).Msg("join: room not found")
		ctl.sendError(conn, "Room not found")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.RoomID).Msg("join")
	ctl.sendJSON(conn, roomJoined(session.Snapshot()))
	ctl.broadcastRoom(session.ID(), struct {
		Type   string         `json:"type"`
		UserID core.SessionID `json:"userId"`
	}{"user-joined", sid})
}

// session resolves the room for an intent, emitting the user-visible error on
// an unknown or expired id. Every intent handler goes through here so an
// intent against a vanished room degrades to an error event, never a panic.
func (ctl *SignalWSController) session(conn *WsSignalConn, roomID string) (*core.Session, bool) {
	s, ok := ctl.Registry.GetRoom(domain.RoomID(roomID))
	if !ok {
		ctl.sendError(conn, "Room not found")
		return nil, false
	}
	return s, true
}
