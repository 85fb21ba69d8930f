package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/online-shop/internal/product"
)

var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// ProductGetter is the slice of the product service the cart needs.
type ProductGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

type Service interface {
	Add(ctx context.Context, c *Cart, productID uuid.UUID, quantity int) error
	Update(c *Cart, productID uuid.UUID, quantity int)
	Remove(c *Cart, productID uuid.UUID)
	Clear(c *Cart)
}

type service struct {
	products ProductGetter
}

func NewService(products ProductGetter) Service {
	return &service{products: products}
}

// Add verifies the product exists and has enough stock for the requested
// quantity, then merges the line into the cart. The check is against current
// stock only; quantities already in the cart are not counted.
func (s *service) Add(ctx context.Context, c *Cart, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return product.ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to fetch product for cart")
		return fmt.Errorf("service: failed to fetch product for cart: %w", err)
	}

	if p.Stock < quantity {
		log.Warn().Stringer("product_id", productID).Int("stock", p.Stock).Int("requested", quantity).
			Msg("service: not enough stock to add to cart")
		return product.ErrInsufficientStock
	}

	c.Add(Item{
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.Price,
		Quantity:    quantity,
		ImageURL:    p.ImageURL,
	})

	return nil
}

// Update overwrites a line's quantity without re-checking stock. The final
// check happens at order submission, where the decrement is guarded.
func (s *service) Update(c *Cart, productID uuid.UUID, quantity int) {
	c.Update(productID, quantity)
}

func (s *service) Remove(c *Cart, productID uuid.UUID) {
	c.Remove(productID)
}

func (s *service) Clear(c *Cart) {
	c.Clear()
}
