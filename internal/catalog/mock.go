// Package catalog provides music provider implementations behind the
// core.Catalog capability.
package catalog

import (
	"context"
	"math/rand"
	"strings"

	"github.com/dmarkov/jamsync/internal/domain"
)

const randomSampleSize = 3

// MockProvider is an in-memory catalog with a fixed database. It backs tests
// and local development; a real provider would sit behind the same interface.
type MockProvider struct {
	songs []domain.Song
}

func NewMockProvider() *MockProvider {
	return &MockProvider{songs: mockDatabase()}
}

// NewMockProviderWith builds a provider over a custom database.
func NewMockProviderWith(songs []domain.Song) *MockProvider {
	return &MockProvider{songs: songs}
}

// Search matches the query case-insensitively against title and artist.
func (p *MockProvider) Search(_ context.Context, query string) ([]domain.Song, error) {
	q := strings.ToLower(query)
	out := make([]domain.Song, 0)
	for _, s := range p.songs {
		if strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(s.Artist), q) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Recommendations returns every song of the highest-scored genre, or a random
// sample of three when no genre has been scored yet. Ties between genres go to
// the first one scored, which keeps the result deterministic for a fixed
// preference state.
func (p *MockProvider) Recommendations(_ context.Context, prefs *domain.Preferences) ([]domain.Song, error) {
	if prefs != nil {
		if top, ok := prefs.TopGenre(); ok {
			out := make([]domain.Song, 0)
			for _, s := range p.songs {
				if s.Genre == top {
					out = append(out, s)
				}
			}
			return out, nil
		}
	}
	shuffled := make([]domain.Song, len(p.songs))
	copy(shuffled, p.songs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > randomSampleSize {
		shuffled = shuffled[:randomSampleSize]
	}
	return shuffled, nil
}

func mockDatabase() []domain.Song {
	return []domain.Song{
		{ID: "1", Title: "Bohemian Rhapsody", Artist: "Queen", StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3", Genre: "Rock"},
		{ID: "2", Title: "Hotel California", Artist: "Eagles", StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-2.mp3", Genre: "Rock"},
		{ID: "3", Title: "Start Me Up", Artist: "The Rolling Stones", StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-3.mp3", Genre: "Rock"},
		{ID: "4", Title: "Take Five", Artist: "Dave Brubeck", StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-4.mp3", Genre: "Jazz"},
		{ID: "5", Title: "So What", Artist: "Miles Davis", StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-5.mp3", Genre: "Jazz"},
		{ID: "6", Title: "Billie Jean", Artist: "Michael Jackson", StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-6.mp3", Genre: "Pop"},
		{ID: "7", Title: "Thriller", Artist: "Michael Jackson", StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-7.mp3", Genre: "Pop"},
		{ID: "8", Title: "Rolling in the Deep", Artist: "Adele", StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-8.mp3", Genre: "Pop"},
		{ID: "9", Title: "Smells Like Teen Spirit", Artist: "Nirvana", StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-9.mp3", Genre: "Grunge"},
		{ID: "10", Title: "Wonderwall", Artist: "Oasis", StreamURL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-10.mp3", Genre: "Rock"},
	}
}
