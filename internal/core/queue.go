package core

import "github.com/dmarkov/jamsync/internal/domain"

// songQueue is the FIFO pending-song queue of one room. It is not safe for
// concurrent use; the owning session's lock guards it.
type songQueue struct {
	songs []domain.Song
}

func (q *songQueue) Len() int { return len(q.songs) }

func (q *songQueue) Contains(id domain.SongID) bool {
	for _, s := range q.songs {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (q *songQueue) Append(s domain.Song) {
	q.songs = append(q.songs, s)
}

func (q *songQueue) PopHead() (domain.Song, bool) {
	if len(q.songs) == 0 {
		return domain.Song{}, false
	}
	head := q.songs[0]
	q.songs = q.songs[1:]
	return head, true
}

func (q *songQueue) Remove(id domain.SongID) bool {
	for i, s := range q.songs {
		if s.ID == id {
			q.songs = append(q.songs[:i], q.songs[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot copies the queue so callers never see the internal slice.
func (q *songQueue) Snapshot() []domain.Song {
	out := make([]domain.Song, len(q.songs))
	copy(out, q.songs)
	return out
}

func (q *songQueue) IDs() map[domain.SongID]struct{} {
	out := make(map[domain.SongID]struct{}, len(q.songs))
	for _, s := range q.songs {
		out[s.ID] = struct{}{}
	}
	return out
}
