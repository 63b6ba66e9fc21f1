package store

import (
	"context"
	"sort"

	"github.com/your-org/solar-storefront/internal/domain/product"
	"github.com/your-org/solar-storefront/internal/pkg/events"
)

// ListProducts returns every stored product. The first read with no stored
// data seeds the fallback catalog and persists it, so this read may write.
func (s *Store) ListProducts(ctx context.Context) ([]product.Product, error) {
	var products []product.Product
	found, err := s.load(ctx, KeyProducts, &products)
	if err != nil {
		return nil, err
	}

	if !found {
		products = product.FallbackCatalog()
		now := s.Now()
		for i := range products {
			products[i].CreatedAt = now
			products[i].UpdatedAt = now
		}
		if err := s.save(ctx, KeyProducts, products); err != nil {
			return nil, err
		}
		s.log.WithField("count", len(products)).Info("Seeded local store with fallback catalog")
	}

	return products, nil
}

// GetProduct returns a product by id, or product.ErrProductNotFound
func (s *Store) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, product.ErrProductNotFound
}

// SaveProduct inserts or replaces a product by id
func (s *Store) SaveProduct(ctx context.Context, p product.Product) (*product.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	p.UpdatedAt = now

	replaced := false
	for i := range products {
		if products[i].ID == p.ID {
			p.CreatedAt = products[i].CreatedAt
			products[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		p.CreatedAt = now
		products = append(products, p)
	}

	if err := s.save(ctx, KeyProducts, products); err != nil {
		return nil, err
	}
	s.publish(ctx, events.ProductsChanged)
	return &p, nil
}

// DeleteProduct removes a product by id
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return err
	}

	kept := products[:0]
	removed := false
	for _, p := range products {
		if p.ID == id {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return product.ErrProductNotFound
	}

	if err := s.save(ctx, KeyProducts, kept); err != nil {
		return err
	}
	s.publish(ctx, events.ProductsChanged)
	return nil
}

// ReplaceProducts overwrites the whole product collection, typically with a
// fresh copy from the backend.
func (s *Store) ReplaceProducts(ctx context.Context, products []product.Product) error {
	sorted := append([]product.Product(nil), products...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Category < sorted[j].Category })

	if err := s.save(ctx, KeyProducts, sorted); err != nil {
		return err
	}
	s.publish(ctx, events.ProductsChanged)
	return nil
}
