package usecase

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/platelens/backend/internal/domain"
)

// defaultProductPageSize is used when a catalog listing request does not
// specify a limit.
const defaultProductPageSize = 50

// MenuServiceConfig holds configuration for the menu service
type MenuServiceConfig struct {
	MaxUploadSize int64
}

// MenuService orchestrates the synchronous phase of an upload: store the
// image, extract dishes via the vision collaborator, match them against
// the catalog, persist the session, and hand the items to the background
// enrichment service. It also serves the polling and catalog reads.
type MenuService struct {
	extractor domain.Extractor
	storage   domain.ObjectStorage
	catalog   domain.CatalogRepository
	sessions  domain.SessionRepository
	matcher   *MatchingService
	enricher  *EnrichmentService
	progress  *ProgressTracker

	maxUploadSize int64
}

// ProcessResult is the synchronous response for one upload. Items carry
// match outcomes but no images yet; those arrive via polling.
type ProcessResult struct {
	SessionID    string                `json:"session_id"`
	Items        []domain.EnrichedItem `json:"items"`
	TotalItems   int                   `json:"total_items"`
	MatchedItems int                   `json:"matched_items"`
	OCRError     string                `json:"ocr_error,omitempty"`
}

// NewMenuService creates a new menu service with dependencies.
func NewMenuService(
	extractor domain.Extractor,
	storage domain.ObjectStorage,
	catalog domain.CatalogRepository,
	sessions domain.SessionRepository,
	matcher *MatchingService,
	enricher *EnrichmentService,
	progress *ProgressTracker,
	config MenuServiceConfig,
) *MenuService {
	maxUploadSize := config.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = 5 * 1024 * 1024
	}

	return &MenuService{
		extractor:     extractor,
		storage:       storage,
		catalog:       catalog,
		sessions:      sessions,
		matcher:       matcher,
		enricher:      enricher,
		progress:      progress,
		maxUploadSize: maxUploadSize,
	}
}

// ProcessUpload runs stage 1 for an uploaded menu image and kicks off the
// background enrichment run before returning. A degraded extraction (OCR
// error, zero dishes) still produces a session and a response; only
// malformed uploads and unreachable collaborators fail the request.
func (s *MenuService) ProcessUpload(ctx context.Context, image []byte, contentType string) (*ProcessResult, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidUpload)
	}
	if int64(len(image)) > s.maxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d byte limit", domain.ErrInvalidUpload, s.maxUploadSize)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: file must be an image, got %q", domain.ErrInvalidUpload, contentType)
	}

	imagePath, err := s.storage.Store(ctx, image, contentType)
	if err != nil {
		return nil, fmt.Errorf("storing uploaded image: %w", err)
	}

	extraction, err := s.extractor.Extract(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("extracting menu items: %w", err)
	}
	if extraction.Error != "" {
		log.Printf("[MENU] extraction degraded: %s", extraction.Error)
	}

	extracted := validExtractedItems(extraction.Items)
	names := make([]string, 0, len(extracted))
	for _, item := range extracted {
		names = append(names, item.Name)
	}
	log.Printf("[MENU] extracted %d dishes for matching", len(names))

	outcomes := s.matcher.MatchAll(ctx, names)
	items := buildEnrichedItems(extracted, outcomes)

	session := &domain.Session{
		ImagePath:      imagePath,
		ExtractedItems: extracted,
		Items:          items,
		OCRError:       extraction.Error,
	}
	sessionID, err := s.sessions.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	// The background run mutates its own copy; the response keeps the
	// image-free stage-1 view.
	if _, err := s.enricher.Start(sessionID, slices.Clone(items)); err != nil {
		// Fresh session ids never collide with an active run; log and move on.
		log.Printf("[MENU] session %s: starting enrichment failed: %v", sessionID, err)
	}

	return &ProcessResult{
		SessionID:    sessionID,
		Items:        items,
		TotalItems:   len(items),
		MatchedItems: countMatched(items),
		OCRError:     extraction.Error,
	}, nil
}

// GetSession returns the persisted session record.
func (s *MenuService) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.sessions.GetSession(ctx, sessionID)
}

// GetSessionStatus returns the polling view for a session: the persisted
// items merged with live enrichment progress. When the process has no
// in-memory progress (e.g. after a restart) the status is synthesized
// from the persisted ImagesProcessed flag.
func (s *MenuService) GetSessionStatus(ctx context.Context, sessionID string) (*domain.SessionStatus, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	status := &domain.SessionStatus{
		SessionID:    sessionID,
		Items:        session.Items,
		TotalItems:   len(session.Items),
		MatchedItems: countMatched(session.Items),
		OCRError:     session.OCRError,
	}

	if progress, ok := s.progress.Get(sessionID); ok {
		status.Status = progress.Status
		status.Progress = progress.Progress
	} else if session.ImagesProcessed {
		status.Status = domain.StatusCompleted
		status.Progress = 100
	} else {
		status.Status = domain.StatusNotStarted
	}
	return status, nil
}

// ListProducts returns a page of the catalog.
func (s *MenuService) ListProducts(ctx context.Context, limit, offset int) ([]domain.CatalogProduct, error) {
	if limit <= 0 {
		limit = defaultProductPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.catalog.ListProducts(ctx, limit, offset)
}

// GetProduct returns a single catalog product by id.
func (s *MenuService) GetProduct(ctx context.Context, productID string) (*domain.CatalogProduct, error) {
	return s.catalog.GetProduct(ctx, productID)
}

// validExtractedItems drops extraction records without a usable name so
// match outcomes stay aligned one-to-one with the items they were
// computed for.
func validExtractedItems(items []domain.ExtractedItem) []domain.ExtractedItem {
	valid := make([]domain.ExtractedItem, 0, len(items))
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			continue
		}
		valid = append(valid, item)
	}
	return valid
}

// buildEnrichedItems merges match outcomes with their OCR display fields.
// outcomes[i] corresponds to extracted[i].
func buildEnrichedItems(extracted []domain.ExtractedItem, outcomes []domain.MatchOutcome) []domain.EnrichedItem {
	items := make([]domain.EnrichedItem, 0, len(outcomes))
	for i, outcome := range outcomes {
		item := domain.EnrichedItem{
			Name:        outcome.QueryName,
			Matched:     outcome.Matched,
			Confidence:  outcome.Confidence,
			ProductID:   outcome.ProductID,
			MatchedName: outcome.MatchedName,
		}
		if i < len(extracted) {
			item.NameEnglish = extracted[i].NameEnglish
			item.Price = extracted[i].Price
			item.Description = extracted[i].Description
			item.ParsingError = extracted[i].ParsingError
		}
		items = append(items, item)
	}
	return items
}

func countMatched(items []domain.EnrichedItem) int {
	count := 0
	for _, item := range items {
		if item.Matched {
			count++
		}
	}
	return count
}
