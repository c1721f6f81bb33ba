package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dmarkov/jamsync/internal/core"
)

type playbackPayload struct {
	Type      string  `json:"type"`
	RoomID    string  `json:"roomId"`
	Timestamp float64 `json:"timestamp"`
}

func (ctl *SignalWSController) playbackIntent(conn *WsSignalConn, data []byte) (playbackPayload, *core.Session, bool) {
	var p playbackPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad playback payload")
		ctl.sendError(conn, "bad payload")
		return p, nil, false
	}
	session, ok := ctl.session(conn, p.RoomID)
	return p, session, ok
}

func (ctl *SignalWSController) handlePlay(sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, session, ok := ctl.playbackIntent(conn, data)
	if !ok {
		return
	}
	update, ok := session.Play(p.Timestamp)
	if !ok {
		return
	}
	log.Debug().Str("module", "signal").Str("room", p.RoomID).Float64("pos", p.Timestamp).Msg("play")
	ctl.broadcastRoom(session.ID(), syncUpdate(update))
}

func (ctl *SignalWSController) handlePause(sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, session, ok := ctl.playbackIntent(conn, data)
	if !ok {
		return
	}
	update, ok := session.Pause(p.Timestamp)
	if !ok {
		return
	}
	log.Debug().Str("module", "signal").Str("room", p.RoomID).Float64("pos", p.Timestamp).Msg("pause")
	ctl.broadcastRoom(session.ID(), syncUpdate(update))
}

func (ctl *SignalWSController) handleSeek(sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, session, ok := ctl.playbackIntent(conn, data)
	if !ok {
		return
	}
	update, ok := session.Seek(p.Timestamp)
	if !ok {
		return
	}
	log.Debug().Str("module", "signal").Str("room", p.RoomID).Float64("pos", p.Timestamp).Msg("seek")
	ctl.broadcastRoom(session.ID(), syncUpdate(update))
}
