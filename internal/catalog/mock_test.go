package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarkov/jamsync/internal/domain"
)

func TestSearchMatchesTitleAndArtist(t *testing.T) {
	p := NewMockProvider()

	byTitle, err := p.Search(context.Background(), "bohemian")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, domain.SongID("1"), byTitle[0].ID)

	byArtist, err := p.Search(context.Background(), "MICHAEL jackson")
	require.NoError(t, err)
	assert.Len(t, byArtist, 2)
}

func TestSearchNoMatches(t *testing.T) {
	p := NewMockProvider()
	songs, err := p.Search(context.Background(), "xyzzy")
	require.NoError(t, err)
	assert.Empty(t, songs)
}

func TestRecommendationsTopGenre(t *testing.T) {
	p := NewMockProvider()
	prefs := domain.NewPreferences()
	prefs.BumpGenre("Jazz", 6)
	prefs.BumpGenre("Rock", 2)

	songs, err := p.Recommendations(context.Background(), prefs)
	require.NoError(t, err)
	require.NotEmpty(t, songs)
	for _, s := range songs {
		assert.Equal(t, "Jazz", s.Genre)
	}
}

func TestRecommendationsTieBreakFirstSeen(t *testing.T) {
	p := NewMockProvider()
	prefs := domain.NewPreferences()
	prefs.BumpGenre("Rock", 4)
	prefs.BumpGenre("Jazz", 4)

	songs, err := p.Recommendations(context.Background(), prefs)
	require.NoError(t, err)
	require.NotEmpty(t, songs)
	for _, s := range songs {
		assert.Equal(t, "Rock", s.Genre, "tie on equal scores goes to the first genre scored")
	}
}

func TestRecommendationsRandomSampleWithoutPreferences(t *testing.T) {
	p := NewMockProvider()

	songs, err := p.Recommendations(context.Background(), domain.NewPreferences())
	require.NoError(t, err)
	assert.Len(t, songs, 3)

	seen := make(map[domain.SongID]bool)
	for _, s := range songs {
		assert.False(t, seen[s.ID])
		seen[s.ID] = true
	}
}
