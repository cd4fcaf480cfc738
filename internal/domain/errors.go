package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product id does not exist in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrSessionNotFound is returned when a session id does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidUpload is returned when the uploaded file is missing, oversized, or not an image
	ErrInvalidUpload = errors.New("invalid upload")

	// ErrEnrichmentActive is returned when enrichment is started twice for the same session
	ErrEnrichmentActive = errors.New("enrichment already in progress for session")

	// ErrCatalogUnavailable is returned when the catalog store cannot be read
	ErrCatalogUnavailable = errors.New("catalog store unavailable")

	// ErrVisionAPIFailure is returned when the vision API is unreachable
	ErrVisionAPIFailure = errors.New("vision API request failed")

	// ErrImageSearchFailure is returned when all image providers fail for a search
	ErrImageSearchFailure = errors.New("image search failed")

	// ErrStorageFailure is returned when the object store rejects an upload
	ErrStorageFailure = errors.New("object storage request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
