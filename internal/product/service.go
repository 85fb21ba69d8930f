package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
	Search(ctx context.Context, keyword string) ([]Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validate(p *Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("service: product name is required")
	}
	if p.Price.IsNegative() {
		return errors.New("service: product price cannot be negative")
	}
	if p.Stock < 0 {
		return errors.New("service: product stock cannot be negative")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to get product")
		return nil, fmt.Errorf("service: failed to get product by id '%s': %w", id, err)
	}
	return p, nil
}

func (s *service) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	products, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		log.Error().Err(err).Str("category", category).Msg("service: failed to list products by category")
		return nil, fmt.Errorf("service: failed to list products by category '%s': %w", category, err)
	}
	return products, nil
}

func (s *service) Search(ctx context.Context, keyword string) ([]Product, error) {
	products, err := s.repo.Search(ctx, keyword)
	if err != nil {
		log.Error().Err(err).Str("keyword", keyword).Msg("service: failed to search products")
		return nil, fmt.Errorf("service: failed to search products: %w", err)
	}
	return products, nil
}

func (s *service) Create(ctx context.Context, p *Product) (*Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("service: product created")
	return p, nil
}

func (s *service) Update(ctx context.Context, p *Product) error {
	if err := validate(p); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", p.ID).Msg("service: failed to update product")
		return fmt.Errorf("service: failed to update product '%s': %w", p.ID, err)
	}

	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product '%s': %w", id, err)
	}

	return nil
}

func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientStock) {
			return err
		}
		log.Error().Err(err).Stringer("product_id", id).Int("delta", delta).Msg("service: failed to adjust stock")
		return fmt.Errorf("service: failed to adjust stock for product '%s': %w", id, err)
	}

	return nil
}
