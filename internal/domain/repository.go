package domain

import (
	"context"
	"time"
)

// CatalogRepository defines read access to the product catalog.
type CatalogRepository interface {
	ListProducts(ctx context.Context, limit, offset int) ([]CatalogProduct, error)
	GetProduct(ctx context.Context, id string) (*CatalogProduct, error)
}

// SessionRepository defines persistence for upload sessions. UpdateItems
// replaces the session's item list wholesale; there is no incremental
// patch path.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *Session) (string, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateItems(ctx context.Context, id string, items []EnrichedItem, imagesProcessed bool) error
}

// ImageSearcher defines the stock-photo lookup collaborator. It may return
// fewer than count records, never more. A failure is signaled as an error
// rather than an empty slice so callers can tell "no results" from
// "provider down".
type ImageSearcher interface {
	Search(ctx context.Context, term string, count int) ([]ImageRecord, error)
}

// Extractor defines the vision OCR collaborator. Recoverable extraction
// problems are reported via Extraction.Error; a non-nil error means the
// service itself was unreachable.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (*Extraction, error)
}

// ObjectStorage defines binary storage for uploaded menu images. Store
// returns an opaque locator for the stored object.
type ObjectStorage interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
