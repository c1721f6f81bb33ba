package domain

type SongID string

// Song is an immutable catalog entry. Whoever holds it never mutates it;
// collections copy the value, not share pointers.
type Song struct {
	ID        SongID `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	StreamURL string `json:"streamUrl"`
	Genre     string `json:"genre,omitempty"`
}
