package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/flicky/custorder-api/internal/model"
	"github.com/flicky/custorder-api/internal/repository"
)

// ProductInput carries the mutable product fields. A nil IsActive means
// "leave as is" on update and "active" on create.
type ProductInput struct {
	Name          string
	Description   *string
	Price         decimal.Decimal
	StockQuantity int
	Category      *string
	Brand         *string
	IsActive      *bool
}

type ProductService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	product := &model.Product{IsActive: true}
	in.applyTo(product)
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, in ProductInput) (*model.Product, error) {
	return s.mutate(ctx, id, func(p *model.Product) error {
		in.applyTo(p)
		return nil
	})
}

// UpdateStock sets the stock level outright.
func (s *ProductService) UpdateStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	if quantity < 0 {
		return nil, validationf("stock quantity must not be negative")
	}
	return s.mutate(ctx, id, func(p *model.Product) error {
		p.StockQuantity = quantity
		return nil
	})
}

func (s *ProductService) ReduceStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, validationf("quantity must be positive")
	}
	return s.mutate(ctx, id, func(p *model.Product) error {
		if err := p.ReduceStock(quantity); err != nil {
			return fmt.Errorf("%w: product %d has %d, requested %d", ErrInsufficientStock, p.ID, p.StockQuantity, quantity)
		}
		return nil
	})
}

func (s *ProductService) IncreaseStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		return nil, validationf("quantity must be positive")
	}
	return s.mutate(ctx, id, func(p *model.Product) error {
		p.IncreaseStock(quantity)
		return nil
	})
}

func (s *ProductService) Activate(ctx context.Context, id int64) (*model.Product, error) {
	return s.setActive(ctx, id, true)
}

func (s *ProductService) Deactivate(ctx context.Context, id int64) (*model.Product, error) {
	return s.setActive(ctx, id, false)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return notFound("Product", id)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *ProductService) GetAll(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

// GetByID returns nil, nil when no product has the id.
func (s *ProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *ProductService) SearchByName(ctx context.Context, name string) ([]model.Product, error) {
	return s.productRepo.SearchByName(ctx, name)
}

func (s *ProductService) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	return s.productRepo.Search(ctx, keyword)
}

func (s *ProductService) GetByCategory(ctx context.Context, category string, activeOnly bool) ([]model.Product, error) {
	return s.productRepo.FindByCategory(ctx, category, activeOnly)
}

func (s *ProductService) GetByBrand(ctx context.Context, brand string, activeOnly bool) ([]model.Product, error) {
	return s.productRepo.FindByBrand(ctx, brand, activeOnly)
}

func (s *ProductService) GetActive(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindByActive(ctx, true)
}

func (s *ProductService) GetInactive(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindByActive(ctx, false)
}

func (s *ProductService) GetInStock(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindInStock(ctx)
}

func (s *ProductService) GetOutOfStock(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindOutOfStock(ctx)
}

func (s *ProductService) GetByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]model.Product, error) {
	if min.GreaterThan(max) {
		return nil, validationf("minimum price must not exceed maximum price")
	}
	return s.productRepo.FindByPriceRange(ctx, min, max)
}

func (s *ProductService) GetByPriceAtMost(ctx context.Context, max decimal.Decimal) ([]model.Product, error) {
	return s.productRepo.FindByPriceAtMost(ctx, max)
}

func (s *ProductService) GetByPriceAtLeast(ctx context.Context, min decimal.Decimal) ([]model.Product, error) {
	return s.productRepo.FindByPriceAtLeast(ctx, min)
}

func (s *ProductService) DistinctCategories(ctx context.Context) ([]string, error) {
	return s.productRepo.DistinctCategories(ctx)
}

func (s *ProductService) DistinctBrands(ctx context.Context) ([]string, error) {
	return s.productRepo.DistinctBrands(ctx)
}

func (s *ProductService) setActive(ctx context.Context, id int64, active bool) (*model.Product, error) {
	return s.mutate(ctx, id, func(p *model.Product) error {
		p.IsActive = active
		return nil
	})
}

// mutate loads the product, applies change and saves it. Nothing is written
// when change fails.
func (s *ProductService) mutate(ctx context.Context, id int64, change func(*model.Product) error) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, notFound("Product", id)
	}
	if err := change(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, notFound("Product", id)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

func (in ProductInput) applyTo(p *model.Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.StockQuantity = in.StockQuantity
	p.Category = in.Category
	p.Brand = in.Brand
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}
