package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dmarkov/jamsync/internal/core"
	"github.com/dmarkov/jamsync/internal/domain"
)

func (ctl *SignalWSController) handleAddSong(sid core.SessionID, conn *WsSignalConn, data []byte) {
	var p struct {
		Type   string      `json:"type"`
		RoomID string      `json:"roomId"`
		Song   domain.Song `json:"song"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad add-song payload")
		ctl.sendError(conn, "bad payload")
		return
	}
	session, ok := ctl.session(conn, p.RoomID)
	if !ok {
		return
	}

	res := session.Enqueue(p.Song)
	if res.Ignored {
		log.Debug().Str("module", "signal").Str("room", p.RoomID).Str("song", string(p.Song.ID)).Msg("duplicate song ignored")
		return
	}
	if res.BecameCurrent {
		ctl.broadcastRoom(session.ID(), roomState(res.Snapshot))
		return
	}
	ctl.broadcastRoom(session.ID(), playlistEvent{"playlist-update", res.Playlist})
}

func (ctl *SignalWSController) handleRemoveSong(sid core.SessionID, conn *WsSignalConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
		SongID string `json:"songId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad remove-song payload")
		ctl.sendError(conn, "bad payload")
		return
	}
	session, ok := ctl.session(conn, p.RoomID)
	if !ok {
		return
	}

	playlist, removed := session.RemoveFromQueue(domain.SongID(p.SongID))
	if !removed {
		return
	}
	ctl.broadcastRoom(session.ID(), playlistEvent{"playlist-update", playlist})
}

// handleAdvance serves both skip and song-ended; the effect is identical.
func (ctl *SignalWSController) handleAdvance(sid core.SessionID, conn *WsSignalConn, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad advance payload")
		ctl.sendError(conn, "bad payload")
		return
	}
	session, ok := ctl.session(conn, p.RoomID)
	if !ok {
		return
	}

	res := session.Advance()
	ctl.broadcastRoom(session.ID(), roomState(res.Snapshot))
	if res.NeedRefill {
		ctl.refill(session)
	}
}

// refill runs the recommendation continuation. It executes in the same
// goroutine that just broadcast the advance, so members observe the two
// updates in order. A catalog failure only means no suggestions this round.
func (ctl *SignalWSController) refill(session *core.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), ctl.CatalogTimeout)
	defer cancel()

	res, err := session.Refill(ctx, ctl.Recommender)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("room", string(session.ID())).Msg("catalog unavailable, skipping recommendations")
		return
	}
	if res.Stale {
		log.Debug().Str("module", "signal").Str("room", string(session.ID())).Msg("refill superseded")
		return
	}
	if res.Adopted {
		ctl.broadcastRoom(session.ID(), roomState(res.Snapshot))
	}
	if res.Adopted || len(res.Suggestions) > 0 {
		ctl.broadcastRoom(session.ID(), recommendationsEvent{"recommendations", res.Suggestions})
	}
}
