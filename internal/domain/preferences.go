package domain

import "encoding/json"

// Preferences accumulates taste signals for one room. Scores only ever go up.
// Genre insertion order is preserved so that ranking over equal scores is
// deterministic (first genre to reach the top score wins).
type Preferences struct {
	genreScores  map[string]int
	genreOrder   []string
	artistScores map[string]int
	artistOrder  []string
}

func NewPreferences() *Preferences {
	return &Preferences{
		genreScores:  make(map[string]int),
		artistScores: make(map[string]int),
	}
}

func (p *Preferences) BumpGenre(genre string, delta int) {
	if genre == "" {
		return
	}
	if _, ok := p.genreScores[genre]; !ok {
		p.genreOrder = append(p.genreOrder, genre)
	}
	p.genreScores[genre] += delta
}

func (p *Preferences) BumpArtist(artist string, delta int) {
	if artist == "" {
		return
	}
	if _, ok := p.artistScores[artist]; !ok {
		p.artistOrder = append(p.artistOrder, artist)
	}
	p.artistScores[artist] += delta
}

func (p *Preferences) GenreScore(genre string) int { return p.genreScores[genre] }

// TopGenre returns the genre with the strictly highest score, scanning in
// insertion order. Second return is false when no genre has been scored yet.
func (p *Preferences) TopGenre() (string, bool) {
	top := ""
	best := 0
	for _, g := range p.genreOrder {
		if s := p.genreScores[g]; top == "" || s > best {
			top = g
			best = s
		}
	}
	return top, top != ""
}

// Clone is a deep copy safe to hand to another goroutine.
func (p *Preferences) Clone() *Preferences {
	c := NewPreferences()
	c.genreOrder = append(c.genreOrder, p.genreOrder...)
	c.artistOrder = append(c.artistOrder, p.artistOrder...)
	for g, s := range p.genreScores {
		c.genreScores[g] = s
	}
	for a, s := range p.artistScores {
		c.artistScores[a] = s
	}
	return c
}

type preferencesJSON struct {
	GenreScores  map[string]int `json:"genreScores"`
	ArtistScores map[string]int `json:"artistScores"`
}

func (p *Preferences) MarshalJSON() ([]byte, error) {
	return json.Marshal(preferencesJSON{
		GenreScores:  p.genreScores,
		ArtistScores: p.artistScores,
	})
}
