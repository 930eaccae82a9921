package stores

import (
	"context"
	"net/http"

	"hangar/contexts/distribution/store-submission-service/domain/entities"
	domainerrors "hangar/contexts/distribution/store-submission-service/domain/errors"
	"hangar/contexts/distribution/store-submission-service/ports"
)

// RawLinkAdapter covers channels that are just a download page: there is no
// review pipeline to drive, only a manually maintained listing.
type RawLinkAdapter struct{}

func (RawLinkAdapter) Submit(ctx context.Context, storeApp entities.StoreApp, release ports.ReleaseInfo) (string, error) {
	return "", domainerrors.ErrStoreUnsupported
}

func (RawLinkAdapter) SubmitResult(ctx context.Context, storeApp entities.StoreApp, taskID string) (ports.ReviewStatus, string, error) {
	return 0, "", domainerrors.ErrStoreUnsupported
}

func (RawLinkAdapter) CurrentVersion(ctx context.Context, storeApp entities.StoreApp) (string, error) {
	return storeApp.CurrentVersion, nil
}

// Registry is the default adapter set. Store types without an automated
// backend fall back to RawLinkAdapter semantics.
type Registry struct {
	adapters map[entities.StoreType]ports.StoreAdapter
}

func NewRegistry(client *http.Client) *Registry {
	raw := RawLinkAdapter{}
	return &Registry{adapters: map[entities.StoreType]ports.StoreAdapter{
		entities.StoreRawLink:    raw,
		entities.StoreAppStore:   raw,
		entities.StoreGooglePlay: raw,
		entities.StoreMicrosoft:  raw,
		entities.StoreVivo:       NewVivoAdapter(client),
	}}
}

func (r *Registry) Adapter(storeType entities.StoreType) (ports.StoreAdapter, bool) {
	adapter, ok := r.adapters[storeType]
	return adapter, ok
}

// Register replaces the adapter for a store type.
func (r *Registry) Register(storeType entities.StoreType, adapter ports.StoreAdapter) {
	r.adapters[storeType] = adapter
}
