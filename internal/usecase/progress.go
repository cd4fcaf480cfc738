package usecase

import (
	"sync"

	"github.com/platelens/backend/internal/domain"
)

// ProgressTracker is the process-local progress map for enrichment runs,
// keyed by session id. It is injected into the enrichment service and the
// status reporter so both see the same state. Terminal entries are kept
// until overwritten by a later run for the same session; they are not
// evicted (see DESIGN.md).
type ProgressTracker struct {
	mu       sync.Mutex
	sessions map[string]*domain.EnrichmentProgress
}

// NewProgressTracker creates an empty progress tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		sessions: make(map[string]*domain.EnrichmentProgress),
	}
}

// Begin registers a new run for sessionID with zero completed items.
// Returns ErrEnrichmentActive if a run for the session is still in the
// processing state; a terminal entry (completed/error) is overwritten.
func (t *ProgressTracker) Begin(sessionID string, total int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.sessions[sessionID]; ok && existing.Status == domain.StatusProcessingImages {
		return domain.ErrEnrichmentActive
	}

	t.sessions[sessionID] = &domain.EnrichmentProgress{
		Status: domain.StatusProcessingImages,
		Total:  total,
	}
	return nil
}

// MarkItemDone increments the completed counter for sessionID and
// recomputes the progress percentage. Safe for concurrent use by the
// per-item enrichment goroutines.
func (t *ProgressTracker) MarkItemDone(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.sessions[sessionID]
	if !ok {
		return
	}
	p.Completed++
	if p.Total > 0 {
		p.Progress = float64(p.Completed) / float64(p.Total) * 100
	}
}

// Complete marks the run for sessionID as finished.
func (t *ProgressTracker) Complete(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.sessions[sessionID]
	if !ok {
		return
	}
	p.Status = domain.StatusCompleted
	p.Progress = 100
}

// Fail marks the run for sessionID as errored with the given message.
func (t *ProgressTracker) Fail(sessionID, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.sessions[sessionID]
	if !ok {
		return
	}
	p.Status = domain.StatusError
	p.ErrorMessage = message
}

// Get returns a copy of the progress record for sessionID, if tracked.
func (t *ProgressTracker) Get(sessionID string) (domain.EnrichmentProgress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.sessions[sessionID]
	if !ok {
		return domain.EnrichmentProgress{}, false
	}
	return *p, true
}
