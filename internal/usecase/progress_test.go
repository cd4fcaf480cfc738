package usecase

import (
	"errors"
	"testing"

	"github.com/platelens/backend/internal/domain"
)

func TestProgressTracker(t *testing.T) {
	t.Run("begin registers a processing entry", func(t *testing.T) {
		tracker := NewProgressTracker()
		if err := tracker.Begin("ses-1", 4); err != nil {
			t.Fatalf("Begin() error = %v, want nil", err)
		}

		progress, ok := tracker.Get("ses-1")
		if !ok {
			t.Fatal("expected progress entry")
		}
		if progress.Status != domain.StatusProcessingImages {
			t.Errorf("Status = %s, want %s", progress.Status, domain.StatusProcessingImages)
		}
		if progress.Total != 4 {
			t.Errorf("Total = %d, want 4", progress.Total)
		}
		if progress.Completed != 0 || progress.Progress != 0 {
			t.Errorf("Completed = %d, Progress = %v, want 0, 0", progress.Completed, progress.Progress)
		}
	})

	t.Run("begin rejects a session that is still processing", func(t *testing.T) {
		tracker := NewProgressTracker()
		if err := tracker.Begin("ses-1", 2); err != nil {
			t.Fatalf("first Begin() error = %v", err)
		}

		err := tracker.Begin("ses-1", 2)
		if !errors.Is(err, domain.ErrEnrichmentActive) {
			t.Errorf("error = %v, want ErrEnrichmentActive", err)
		}
	})

	t.Run("terminal entries are overwritten by a new run", func(t *testing.T) {
		tracker := NewProgressTracker()
		tracker.Begin("ses-1", 2)
		tracker.Complete("ses-1")

		if err := tracker.Begin("ses-1", 3); err != nil {
			t.Fatalf("Begin() after Complete error = %v, want nil", err)
		}
		progress, _ := tracker.Get("ses-1")
		if progress.Total != 3 || progress.Completed != 0 {
			t.Errorf("progress = %+v, want fresh entry with Total 3", progress)
		}
	})

	t.Run("mark item done recomputes percentage", func(t *testing.T) {
		tracker := NewProgressTracker()
		tracker.Begin("ses-1", 4)

		tracker.MarkItemDone("ses-1")
		progress, _ := tracker.Get("ses-1")
		if progress.Completed != 1 {
			t.Errorf("Completed = %d, want 1", progress.Completed)
		}
		if progress.Progress != 25 {
			t.Errorf("Progress = %v, want 25", progress.Progress)
		}

		tracker.MarkItemDone("ses-1")
		tracker.MarkItemDone("ses-1")
		progress, _ = tracker.Get("ses-1")
		if progress.Progress != 75 {
			t.Errorf("Progress = %v, want 75", progress.Progress)
		}
	})

	t.Run("complete forces progress to 100", func(t *testing.T) {
		tracker := NewProgressTracker()
		tracker.Begin("ses-1", 3)
		tracker.Complete("ses-1")

		progress, _ := tracker.Get("ses-1")
		if progress.Status != domain.StatusCompleted {
			t.Errorf("Status = %s, want %s", progress.Status, domain.StatusCompleted)
		}
		if progress.Progress != 100 {
			t.Errorf("Progress = %v, want 100", progress.Progress)
		}
	})

	t.Run("fail records the error message", func(t *testing.T) {
		tracker := NewProgressTracker()
		tracker.Begin("ses-1", 3)
		tracker.Fail("ses-1", "persist failed")

		progress, _ := tracker.Get("ses-1")
		if progress.Status != domain.StatusError {
			t.Errorf("Status = %s, want %s", progress.Status, domain.StatusError)
		}
		if progress.ErrorMessage != "persist failed" {
			t.Errorf("ErrorMessage = %s, want 'persist failed'", progress.ErrorMessage)
		}
	})

	t.Run("unknown session is a no-op", func(t *testing.T) {
		tracker := NewProgressTracker()
		tracker.MarkItemDone("ghost")
		tracker.Complete("ghost")
		tracker.Fail("ghost", "boom")

		if _, ok := tracker.Get("ghost"); ok {
			t.Error("expected no entry for unknown session")
		}
	})

	t.Run("get returns a copy", func(t *testing.T) {
		tracker := NewProgressTracker()
		tracker.Begin("ses-1", 2)

		progress, _ := tracker.Get("ses-1")
		progress.Completed = 99

		fresh, _ := tracker.Get("ses-1")
		if fresh.Completed != 0 {
			t.Errorf("Completed = %d, want 0 (Get must return a copy)", fresh.Completed)
		}
	})
}
