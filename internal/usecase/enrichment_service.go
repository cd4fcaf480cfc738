package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/platelens/backend/internal/domain"
)

// placeholderURLFormat renders a neutral image card with the dish name.
const placeholderURLFormat = "https://via.placeholder.com/400x300/e5e7eb/6b7280?text=%s"

// EnrichmentConfig holds configuration for the enrichment service
type EnrichmentConfig struct {
	ImagesPerItem  int
	SearchTimeout  time.Duration
	PersistTimeout time.Duration
	PersistRetries int
}

// EnrichmentService runs the background image-enrichment phase: one
// goroutine per item fans out to the image-search collaborator, failures
// are contained per item with placeholder substitution, and the fully
// enriched item list is persisted back onto the session after all items
// finish.
type EnrichmentService struct {
	images   domain.ImageSearcher
	sessions domain.SessionRepository
	progress *ProgressTracker

	imagesPerItem  int
	searchTimeout  time.Duration
	persistTimeout time.Duration
	persistRetries int
}

// EnrichmentHandle lets callers join on a background run. The HTTP flow
// discards it; tests wait on it.
type EnrichmentHandle struct {
	done chan struct{}
}

// Wait blocks until the run has reached a terminal state.
func (h *EnrichmentHandle) Wait() {
	<-h.done
}

// NewEnrichmentService creates a new enrichment service with dependencies.
func NewEnrichmentService(
	images domain.ImageSearcher,
	sessions domain.SessionRepository,
	progress *ProgressTracker,
	config EnrichmentConfig,
) *EnrichmentService {
	imagesPerItem := config.ImagesPerItem
	if imagesPerItem <= 0 {
		imagesPerItem = 3
	}

	searchTimeout := config.SearchTimeout
	if searchTimeout <= 0 {
		searchTimeout = 10 * time.Second
	}

	persistTimeout := config.PersistTimeout
	if persistTimeout <= 0 {
		persistTimeout = 15 * time.Second
	}

	persistRetries := config.PersistRetries
	if persistRetries <= 0 {
		persistRetries = 3
	}

	return &EnrichmentService{
		images:         images,
		sessions:       sessions,
		progress:       progress,
		imagesPerItem:  imagesPerItem,
		searchTimeout:  searchTimeout,
		persistTimeout: persistTimeout,
		persistRetries: persistRetries,
	}
}

// Start registers progress for sessionID and launches the enrichment run
// on its own goroutine. Returns ErrEnrichmentActive if a run for this
// session is still processing. The caller does not wait on the returned
// handle; the run always drives itself to a terminal state.
func (s *EnrichmentService) Start(sessionID string, items []domain.EnrichedItem) (*EnrichmentHandle, error) {
	if err := s.progress.Begin(sessionID, len(items)); err != nil {
		return nil, err
	}

	handle := &EnrichmentHandle{done: make(chan struct{})}
	go func() {
		defer close(handle.done)
		s.run(sessionID, items)
	}()
	return handle, nil
}

// run fans out one goroutine per item, joins on all of them, then persists
// the enriched list wholesale. Each goroutine writes only its own item
// slot; the shared completed counter lives in the progress tracker.
func (s *EnrichmentService) run(sessionID string, items []domain.EnrichedItem) {
	log.Printf("[ENRICH] session %s: enriching %d items", sessionID, len(items))

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(item *domain.EnrichedItem) {
			defer wg.Done()
			s.enrichItem(sessionID, item)
		}(&items[i])
	}
	wg.Wait()

	if err := s.persist(sessionID, items); err != nil {
		log.Printf("[ENRICH] session %s: persisting enriched items failed: %v", sessionID, err)
		s.progress.Fail(sessionID, err.Error())
		return
	}

	s.progress.Complete(sessionID)
	log.Printf("[ENRICH] session %s: completed", sessionID)
}

// enrichItem fetches images for a single item. A collaborator failure or
// timeout is fully contained here: the item gets placeholder records and
// the run continues.
func (s *EnrichmentService) enrichItem(sessionID string, item *domain.EnrichedItem) {
	defer s.progress.MarkItemDone(sessionID)

	term := item.NameEnglish
	if term == "" {
		term = item.Name
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.searchTimeout)
	defer cancel()

	images, err := s.images.Search(ctx, term, s.imagesPerItem)
	if err != nil {
		log.Printf("[ENRICH] session %s: image search for %q failed, using placeholders: %v", sessionID, term, err)
		images = placeholderImages(term, s.imagesPerItem)
	}

	item.Images = images
	if len(images) > 0 {
		item.ImageURL = images[0].URL
	}
}

// persist replaces the session's item list and marks images processed,
// retrying transient store failures with linear backoff. No rollback on
// final failure: the progress record is marked errored instead.
func (s *EnrichmentService) persist(sessionID string, items []domain.EnrichedItem) error {
	var lastErr error
	for attempt := 1; attempt <= s.persistRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
		err := s.sessions.UpdateItems(ctx, sessionID, items, true)
		cancel()
		if err == nil {
			return nil
		}

		lastErr = err
		log.Printf("[ENRICH] session %s: persist attempt %d failed: %v", sessionID, attempt, err)
		if attempt < s.persistRetries {
			time.Sleep(time.Duration(attempt*500) * time.Millisecond)
		}
	}
	return fmt.Errorf("persisting enriched items after %d attempts: %w", s.persistRetries, lastErr)
}

// placeholderImages builds count identical placeholder records whose URL
// is derived deterministically from the dish's display name.
func placeholderImages(name string, count int) []domain.ImageRecord {
	record := domain.ImageRecord{
		URL:          fmt.Sprintf(placeholderURLFormat, strings.ReplaceAll(name, " ", "+")),
		Source:       domain.ImageSourcePlaceholder,
		Photographer: "System Generated",
	}

	images := make([]domain.ImageRecord, count)
	for i := range images {
		images[i] = record
	}
	return images
}
