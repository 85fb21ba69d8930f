package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/online-shop/internal/cart"
)

var ErrEmptyCart = errors.New("cart is empty")

// Notifier is told about status changes after they are committed. All
// implementations must be best-effort: a failed notification never fails the
// operation that triggered it.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, o *Order, oldStatus, newStatus Status)
}

type NoopNotifier struct{}

func (NoopNotifier) OrderStatusChanged(context.Context, *Order, Status, Status) {}

type Service interface {
	CreateFromCart(ctx context.Context, userID uuid.UUID, items []cart.Item) (*Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Pay(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) Service {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &service{repo: repo, notifier: notifier}
}

// CreateFromCart turns the session cart into a PENDING order. Line items copy
// the cart's name/price snapshot; the total is the sum of subtotals. The
// repository applies the stock decrements in the same transaction, so a
// failed decrement leaves nothing behind. The caller clears the cart only
// after a successful return.
func (s *service) CreateFromCart(ctx context.Context, userID uuid.UUID, items []cart.Item) (*Order, error) {
	if len(items) == 0 {
		log.Warn().Stringer("user_id", userID).Msg("service: attempt to create order from empty cart")
		return nil, ErrEmptyCart
	}

	o := &Order{
		UserID: userID,
		Status: StatusPending,
		Items:  make([]Item, 0, len(items)),
	}

	total := decimal.Zero
	for _, ci := range items {
		if ci.Quantity <= 0 {
			return nil, fmt.Errorf("service: quantity for product %s must be greater than zero", ci.ProductID)
		}

		subtotal := ci.Subtotal()
		o.Items = append(o.Items, Item{
			ProductID:   ci.ProductID,
			ProductName: ci.ProductName,
			Price:       ci.Price,
			Quantity:    ci.Quantity,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}
	o.TotalPrice = total

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to create order")
		return nil, err
	}

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", userID).
		Str("total", o.TotalPrice.String()).Msg("service: order created")
	return o, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch orders")
		return nil, fmt.Errorf("service: failed to fetch orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus overwrites the status without checking the transition. The
// admin flow depends on being able to move an order to any status; Cancel is
// the only guarded transition.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("service: unknown order status %q", status)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order for status update")
		return fmt.Errorf("service: failed to fetch order for status update: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Stringer("status", status).
			Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", id).Stringer("old_status", current.Status).
		Stringer("new_status", status).Msg("service: order status updated")

	if current.Status != status {
		s.notifier.OrderStatusChanged(ctx, current, current.Status, status)
	}

	return nil
}

func (s *service) Pay(ctx context.Context, id uuid.UUID) error {
	return s.UpdateStatus(ctx, id, StatusPaid)
}

// Cancel is only legal from PENDING. The repository restores the stock that
// order creation decremented and flips the status in one transaction.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order for cancellation")
		return fmt.Errorf("service: failed to fetch order for cancellation: %w", err)
	}

	if err := s.repo.Cancel(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotCancellable) {
			return err
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to cancel order")
		return fmt.Errorf("service: failed to cancel order: %w", err)
	}

	log.Info().Stringer("order_id", id).Msg("service: order cancelled")
	s.notifier.OrderStatusChanged(ctx, current, current.Status, StatusCancelled)

	return nil
}
