package core

import (
	"context"
	"errors"

	"github.com/dmarkov/jamsync/internal/domain"
)

// Frame is a raw outbound payload (already marshalled JSON).
type Frame []byte

// SessionID identifies one participant connection.
type SessionID string

var ErrBackpressure = errors.New("backpressure")

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Catalog is the capability boundary to the external music provider.
// Both calls hit an external collaborator and may block; a failure yields
// an error and never a partial list.
type Catalog interface {
	Search(ctx context.Context, query string) ([]domain.Song, error)
	Recommendations(ctx context.Context, prefs *domain.Preferences) ([]domain.Song, error)
}
