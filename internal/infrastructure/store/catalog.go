package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/dgraph-io/badger/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/platelens/backend/internal/domain"
)

const productKeyPrefix = "product:"

func productKey(id string) []byte {
	return []byte(productKeyPrefix + id)
}

// ListProducts returns up to limit products starting at offset, ordered
// by id. Iteration order is stable across calls for an unchanged catalog,
// which keeps matching tie-breaks deterministic.
func (s *Store) ListProducts(ctx context.Context, limit, offset int) ([]domain.CatalogProduct, error) {
	// Badger transactions cannot observe ctx, so honor cancellation before
	// entering one.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []domain.CatalogProduct{}, nil
	}

	products := make([]domain.CatalogProduct, 0, limit)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(productKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		skipped := 0
		for it.Rewind(); it.Valid() && len(products) < limit; it.Next() {
			if skipped < offset {
				skipped++
				continue
			}

			var product domain.CatalogProduct
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &product)
			})
			if err != nil {
				return fmt.Errorf("failed to decode product %s: %w", it.Item().Key(), err)
			}
			products = append(products, product)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return products, nil
}

// GetProduct returns a single product by id.
func (s *Store) GetProduct(ctx context.Context, id string) (*domain.CatalogProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var product domain.CatalogProduct
	err := s.get(productKey(id), &product)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return &product, nil
}

// CreateProduct stores a product, generating a prefixed id if it has none.
func (s *Store) CreateProduct(ctx context.Context, product *domain.CatalogProduct) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if product.ID == "" {
		suffix, err := gonanoid.New()
		if err != nil {
			return "", fmt.Errorf("generate product id: %w", err)
		}
		product.ID = "prod-" + suffix
	}

	if err := s.set(productKey(product.ID), product); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return product.ID, nil
}

// SeedCatalog inserts the starter catalog when the store holds no
// products yet. Safe to call on every startup.
func (s *Store) SeedCatalog(ctx context.Context) error {
	count, err := s.countPrefix([]byte(productKeyPrefix))
	if err != nil {
		return fmt.Errorf("counting products: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := range seedProducts {
		if _, err := s.CreateProduct(ctx, &seedProducts[i]); err != nil {
			return err
		}
	}

	log.Printf("[STORE] seeded %d catalog products", len(seedProducts))
	return nil
}

// seedProducts is the starter catalog inserted into an empty store.
var seedProducts = []domain.CatalogProduct{
	{
		Name:    "Caesar Salad",
		Aliases: []string{"caesar", "caesar salad", "salad caesar"},
		Tags:    []string{"salad", "appetizer", "healthy"},
	},
	{
		Name:    "Minestrone Soup",
		Aliases: []string{"minestrone", "vegetable soup", "italian soup"},
		Tags:    []string{"soup", "italian", "vegetarian"},
	},
	{
		Name:    "Margherita Pizza",
		Aliases: []string{"margherita", "pizza margherita", "cheese pizza"},
		Tags:    []string{"pizza", "italian", "vegetarian"},
	},
	{
		Name:    "Grilled Chicken",
		Aliases: []string{"chicken", "grilled chicken", "chicken breast"},
		Tags:    []string{"chicken", "grilled", "protein"},
	},
	{
		Name:    "Fish and Chips",
		Aliases: []string{"fish chips", "fried fish", "fish & chips"},
		Tags:    []string{"fish", "fried", "british"},
	},
	{
		Name:    "Chocolate Cake",
		Aliases: []string{"chocolate cake", "cake", "dessert"},
		Tags:    []string{"dessert", "chocolate", "sweet"},
	},
	{
		Name:    "Pasta Carbonara",
		Aliases: []string{"carbonara", "pasta carbonara", "spaghetti carbonara"},
		Tags:    []string{"pasta", "italian", "carbonara"},
	},
	{
		Name:    "Beef Burger",
		Aliases: []string{"burger", "hamburger", "beef burger", "cheeseburger"},
		Tags:    []string{"burger", "beef", "american"},
	},
}
