package usecase

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/platelens/backend/internal/domain"
)

// matchThreshold is the minimum similarity score (out of 100) required to
// accept a catalog match. Outcomes below it are reported as unmatched with
// their best score as confidence.
const matchThreshold = 80

// minPartialTokenLen is the minimum rune length for a token of a compound
// dish name to be considered for partial scoring. Shorter tokens ("de",
// "con", "the") produce noise matches.
const minPartialTokenLen = 4

// catalogFetchLimit caps how many products one matching batch scans.
const catalogFetchLimit = 1000

// catalogCacheKey is the cache key under which the catalog snapshot is stored.
const catalogCacheKey = "catalog:snapshot"

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	CatalogCacheTTL    time.Duration
	EnableDebugLogging bool
}

// MatchingService reconciles noisy OCR-derived dish names against the
// product catalog using fuzzy similarity scoring.
type MatchingService struct {
	catalog            domain.CatalogRepository
	cache              domain.CacheRepository
	catalogCacheTTL    time.Duration
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given catalog
// collaborator. The cache is optional; when present the catalog snapshot
// is reused across batches within the TTL.
func NewMatchingService(catalog domain.CatalogRepository, cache domain.CacheRepository, config MatchConfig) *MatchingService {
	ttl := config.CatalogCacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &MatchingService{
		catalog:            catalog,
		cache:              cache,
		catalogCacheTTL:    ttl,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// FindBestMatch scans the given catalog snapshot for the entry most
// similar to queryName. Three signals are scored per product, in order:
// the canonical name, each alias, and (for multi-word queries) each token
// longer than three runes against the canonical name in partial mode.
// Only a strictly greater score replaces the current best, so the first
// catalog entry reaching the maximum wins ties. Deterministic for a fixed
// snapshot.
func (s *MatchingService) FindBestMatch(queryName string, products []domain.CatalogProduct) domain.MatchOutcome {
	bestScore := 0
	var bestProduct *domain.CatalogProduct

	for i := range products {
		product := &products[i]

		if score := Ratio(queryName, product.Name); score > bestScore {
			bestScore = score
			bestProduct = product
		}

		for _, alias := range product.Aliases {
			if score := Ratio(queryName, alias); score > bestScore {
				bestScore = score
				bestProduct = product
			}
		}

		if strings.Contains(queryName, " ") {
			for _, word := range strings.Fields(queryName) {
				if utf8.RuneCountInString(word) < minPartialTokenLen {
					continue
				}
				if score := PartialRatio(word, product.Name); score > bestScore {
					bestScore = score
					bestProduct = product
				}
			}
		}
	}

	if s.enableDebugLogging {
		log.Printf("[MATCH] query=%q bestScore=%d", queryName, bestScore)
	}

	outcome := domain.MatchOutcome{QueryName: queryName}
	if bestScore >= matchThreshold && bestProduct != nil {
		outcome.Matched = true
		outcome.Confidence = float64(bestScore) / 100.0
		outcome.ProductID = bestProduct.ID
		outcome.MatchedName = bestProduct.Name
	} else if bestScore > 0 {
		outcome.Confidence = float64(bestScore) / 100.0
	}
	return outcome
}

// MatchAll matches a batch of dish names against the catalog. The catalog
// is fetched once and shared read-only across the batch. Output order and
// length mirror the input; a catalog read failure degrades every outcome
// to unmatched with confidence 0 instead of failing the batch. An empty
// batch makes no catalog calls.
func (s *MatchingService) MatchAll(ctx context.Context, queryNames []string) []domain.MatchOutcome {
	outcomes := make([]domain.MatchOutcome, 0, len(queryNames))
	if len(queryNames) == 0 {
		return outcomes
	}

	products, err := s.catalogSnapshot(ctx)
	if err != nil {
		log.Printf("[MATCH] catalog fetch failed, degrading batch of %d to unmatched: %v", len(queryNames), err)
		for _, name := range queryNames {
			outcomes = append(outcomes, domain.MatchOutcome{QueryName: name})
		}
		return outcomes
	}

	matched := 0
	for _, name := range queryNames {
		outcome := s.FindBestMatch(name, products)
		if outcome.Matched {
			matched++
		}
		outcomes = append(outcomes, outcome)
	}

	log.Printf("[MATCH] matched %d of %d dishes", matched, len(outcomes))
	return outcomes
}

// catalogSnapshot returns the full catalog, served from cache when fresh.
func (s *MatchingService) catalogSnapshot(ctx context.Context) ([]domain.CatalogProduct, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, catalogCacheKey); err == nil {
			if products, ok := cached.([]domain.CatalogProduct); ok {
				return products, nil
			}
		}
	}

	products, err := s.catalog.ListProducts(ctx, catalogFetchLimit, 0)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, catalogCacheKey, products, s.catalogCacheTTL); err != nil {
			log.Printf("[MATCH] failed to cache catalog snapshot: %v", err)
		}
	}
	return products, nil
}
