package core

import (
	"context"

	"github.com/dmarkov/jamsync/internal/domain"
)

// SuggestionLimit caps how many songs a refill keeps from one catalog call.
const SuggestionLimit = 3

// Recommender wraps the catalog's recommendation capability with the room-side
// post-processing: drop excluded ids, keep the top few.
type Recommender struct {
	Catalog Catalog
}

func (r Recommender) Recommend(ctx context.Context, prefs *domain.Preferences, excluded map[domain.SongID]struct{}) ([]domain.Song, error) {
	candidates, err := r.Catalog.Recommendations(ctx, prefs)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Song, 0, SuggestionLimit)
	for _, s := range candidates {
		if _, skip := excluded[s.ID]; skip {
			continue
		}
		out = append(out, s)
		if len(out) == SuggestionLimit {
			break
		}
	}
	return out, nil
}
