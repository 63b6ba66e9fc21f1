// internal/domain/product/category_service.go
package product

import (
	"context"
	"sort"
)

// CategoryWithProductCount represents a catalog category with product count
type CategoryWithProductCount struct {
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
	MinPrice     int64  `json:"min_price"`
}

// Categories derives the category list from the visible catalog. Categories
// are free-text product attributes, not a separate table.
func (c *Catalog) Categories(ctx context.Context) []CategoryWithProductCount {
	byName := make(map[string]*CategoryWithProductCount)
	for _, p := range c.List(ctx, &ProductListRequest{}) {
		if p.Category == "" {
			continue
		}
		cat, ok := byName[p.Category]
		if !ok {
			cat = &CategoryWithProductCount{Name: p.Category, MinPrice: p.Price}
			byName[p.Category] = cat
		}
		cat.ProductCount++
		if p.Price < cat.MinPrice {
			cat.MinPrice = p.Price
		}
	}

	categories := make([]CategoryWithProductCount, 0, len(byName))
	for _, cat := range byName {
		categories = append(categories, *cat)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories
}
