package navigation

import (
	"context"

	"github.com/abhisheknishant138/scope/pkg/storage"
	"github.com/abhisheknishant138/scope/pkg/urlcodec"
	"github.com/abhisheknishant138/scope/pkg/viewstate"
)

// StorageKey is the store key of the persisted encoded view state.
const StorageKey = "scopeViewState"

// ClearStoredViewState clears the persisted view state.
func ClearStoredViewState(ctx context.Context, store storage.Store) error {
	return store.Set(ctx, StorageKey, "")
}

// LoadStoredViewState reads and decodes the persisted view state. Nothing
// stored decodes to the empty view state; so does a malformed value, which
// is also returned as an error.
func LoadStoredViewState(ctx context.Context, store storage.Store) (viewstate.ViewState, error) {
	encoded, ok, err := store.Get(ctx, StorageKey)
	if err != nil {
		return viewstate.ViewState{}, err
	}
	if !ok || encoded == "" {
		return viewstate.ViewState{}, nil
	}
	m, err := urlcodec.Decode(encoded)
	if err != nil {
		return viewstate.ViewState{}, err
	}
	return viewstate.ViewState(m), nil
}
