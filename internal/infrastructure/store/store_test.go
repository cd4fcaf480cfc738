package store

import (
	"context"
	"strings"
	"testing"

	"github.com/platelens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeedCatalog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SeedCatalog(ctx))

	products, err := s.ListProducts(ctx, 100, 0)
	require.NoError(t, err)
	assert.Len(t, products, 8)

	names := make(map[string]bool)
	for _, p := range products {
		assert.True(t, strings.HasPrefix(p.ID, "prod-"), "id = %s", p.ID)
		assert.NotEmpty(t, p.Aliases)
		names[p.Name] = true
	}
	assert.True(t, names["Margherita Pizza"])
	assert.True(t, names["Caesar Salad"])

	// Seeding again must not duplicate
	require.NoError(t, s.SeedCatalog(ctx))
	products, err = s.ListProducts(ctx, 100, 0)
	require.NoError(t, err)
	assert.Len(t, products, 8)
}

func TestCreateAndGetProduct(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateProduct(ctx, &domain.CatalogProduct{
		Name:    "Pad Thai",
		Aliases: []string{"pad thai", "thai noodles"},
		Tags:    []string{"thai", "noodles"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "prod-"), "id = %s", id)

	product, err := s.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Pad Thai", product.Name)
	assert.Equal(t, []string{"pad thai", "thai noodles"}, product.Aliases)
}

func TestCancelledContext(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SeedCatalog(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListProducts(ctx, 100, 0)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.GetProduct(ctx, "prod-1")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.CreateSession(ctx, &domain.Session{})
	assert.ErrorIs(t, err, context.Canceled)

	err = s.UpdateItems(ctx, "ses-missing", nil, true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetProduct_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetProduct(context.Background(), "prod-missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestListProducts_Pagination(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SeedCatalog(ctx))

	t.Run("pages cover the catalog without duplicates", func(t *testing.T) {
		seen := make(map[string]bool)
		total := 0
		for offset := 0; ; offset += 3 {
			page, err := s.ListProducts(ctx, 3, offset)
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			for _, p := range page {
				assert.False(t, seen[p.ID], "duplicate product %s across pages", p.ID)
				seen[p.ID] = true
			}
			total += len(page)
		}
		assert.Equal(t, 8, total)
	})

	t.Run("iteration order is stable across calls", func(t *testing.T) {
		first, err := s.ListProducts(ctx, 100, 0)
		require.NoError(t, err)
		second, err := s.ListProducts(ctx, 100, 0)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("non-positive limit returns empty page", func(t *testing.T) {
		page, err := s.ListProducts(ctx, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("offset past the end returns empty page", func(t *testing.T) {
		page, err := s.ListProducts(ctx, 10, 100)
		require.NoError(t, err)
		assert.Empty(t, page)
	})
}

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	session := &domain.Session{
		ImagePath: "minio://menu-images/uploads/test.jpg",
		ExtractedItems: []domain.ExtractedItem{
			{Name: "Caesar Salad", Price: "$10.50"},
		},
		Items: []domain.EnrichedItem{
			{Name: "Caesar Salad", Matched: true, Confidence: 1.0, ProductID: "prod-1"},
		},
	}

	id, err := s.CreateSession(ctx, session)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "ses-"), "id = %s", id)

	loaded, err := s.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, loaded.ID)
	assert.False(t, loaded.CreatedAt.IsZero())
	assert.Equal(t, "minio://menu-images/uploads/test.jpg", loaded.ImagePath)
	require.Len(t, loaded.ExtractedItems, 1)
	assert.Equal(t, "$10.50", loaded.ExtractedItems[0].Price)
	assert.False(t, loaded.ImagesProcessed)

	enriched := []domain.EnrichedItem{
		{
			Name:      "Caesar Salad",
			Matched:   true,
			ProductID: "prod-1",
			ImageURL:  "https://images.pexels.com/1/medium.jpg",
			Images: []domain.ImageRecord{
				{URL: "https://images.pexels.com/1/medium.jpg", Source: "pexels", Photographer: "Alice"},
			},
		},
	}
	require.NoError(t, s.UpdateItems(ctx, id, enriched, true))

	loaded, err = s.GetSession(ctx, id)
	require.NoError(t, err)
	assert.True(t, loaded.ImagesProcessed)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "https://images.pexels.com/1/medium.jpg", loaded.Items[0].ImageURL)
	require.Len(t, loaded.Items[0].Images, 1)
	assert.Equal(t, "pexels", loaded.Items[0].Images[0].Source)

	// Extracted items are untouched by enrichment persist
	require.Len(t, loaded.ExtractedItems, 1)
}

func TestGetSession_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetSession(context.Background(), "ses-missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestUpdateItems_NotFound(t *testing.T) {
	s := openTestStore(t)

	err := s.UpdateItems(context.Background(), "ses-missing", nil, true)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
