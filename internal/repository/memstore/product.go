package memstore

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/repository"
)

type ProductRepo struct{ s *Store }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func cloneProduct(p model.Product) model.Product {
	p.Description = cloneStr(p.Description)
	p.Category = cloneStr(p.Category)
	p.Brand = cloneStr(p.Brand)
	return p
}

func (r *ProductRepo) Save(_ context.Context, p *model.Product) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if p.ID == 0 {
		p.ID = s.id("products")
		p.CreatedAt = now
	} else {
		existing, ok := s.products[p.ID]
		if !ok {
			return repository.ErrNoRows
		}
		p.CreatedAt = existing.CreatedAt
	}
	p.UpdatedAt = now
	s.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r *ProductRepo) FindByID(_ context.Context, id int64) (*model.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *ProductRepo) FindAll(_ context.Context) ([]model.Product, error) {
	return r.filter(nil), nil
}

func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return repository.ErrNoRows
	}
	delete(r.s.products, id)
	return nil
}

func (r *ProductRepo) SearchByName(_ context.Context, name string) ([]model.Product, error) {
	return r.filter(func(p model.Product) bool { return containsFold(p.Name, name) }), nil
}

func (r *ProductRepo) FindByCategory(_ context.Context, category string, activeOnly bool) ([]model.Product, error) {
	return r.filter(func(p model.Product) bool {
		return optEqualFold(p.Category, category) && (!activeOnly || p.IsActive)
	}), nil
}

func (r *ProductRepo) FindByBrand(_ context.Context, brand string, activeOnly bool) ([]model.Product, error) {
	return r.filter(func(p model.Product) bool {
		return optEqualFold(p.Brand, brand) && (!activeOnly || p.IsActive)
	}), nil
}

func (r *ProductRepo) FindByActive(_ context.Context, active bool) ([]model.Product, error) {
	return r.filter(func(p model.Product) bool { return p.IsActive == active }), nil
}

func (r *ProductRepo) FindInStock(_ context.Context) ([]model.Product, error) {
	return r.filter(func(p model.Product) bool { return p.InStock() }), nil
}

func (r *ProductRepo) FindOutOfStock(_ context.Context) ([]model.Product, error) {
	return r.filter(func(p model.Product) bool { return p.StockQuantity == 0 }), nil
}

func (r *ProductRepo) FindByPriceRange(_ context.Context, min, max decimal.Decimal) ([]model.Product, error) {
	return byPrice(r.filter(func(p model.Product) bool {
		return p.Price.GreaterThanOrEqual(min) && p.Price.LessThanOrEqual(max)
	})), nil
}

func (r *ProductRepo) FindByPriceAtMost(_ context.Context, max decimal.Decimal) ([]model.Product, error) {
	return byPrice(r.filter(func(p model.Product) bool { return p.Price.LessThanOrEqual(max) })), nil
}

func (r *ProductRepo) FindByPriceAtLeast(_ context.Context, min decimal.Decimal) ([]model.Product, error) {
	return byPrice(r.filter(func(p model.Product) bool { return p.Price.GreaterThanOrEqual(min) })), nil
}

func (r *ProductRepo) Search(_ context.Context, keyword string) ([]model.Product, error) {
	return r.filter(func(p model.Product) bool {
		return containsFold(p.Name, keyword) ||
			optContainsFold(p.Description, keyword) ||
			optContainsFold(p.Category, keyword) ||
			optContainsFold(p.Brand, keyword)
	}), nil
}

func (r *ProductRepo) DistinctCategories(_ context.Context) ([]string, error) {
	return r.distinct(func(p model.Product) *string { return p.Category }), nil
}

func (r *ProductRepo) DistinctBrands(_ context.Context) ([]string, error) {
	return r.distinct(func(p model.Product) *string { return p.Brand }), nil
}

func (r *ProductRepo) distinct(field func(model.Product) *string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range r.filter(nil) {
		v := field(p)
		if v == nil {
			continue
		}
		if _, ok := seen[*v]; ok {
			continue
		}
		seen[*v] = struct{}{}
		out = append(out, *v)
	}
	slices.Sort(out)
	return out
}

func (r *ProductRepo) filter(keep func(model.Product) bool) []model.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := sortedByID(r.s.products, keep)
	for i := range rows {
		rows[i] = cloneProduct(rows[i])
	}
	return rows
}

func byPrice(products []model.Product) []model.Product {
	slices.SortStableFunc(products, func(a, b model.Product) int { return a.Price.Cmp(b.Price) })
	return products
}
