package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/online-shop/internal/cart"
	"github.com/vasiliy-maslov/online-shop/internal/order"
	"github.com/vasiliy-maslov/online-shop/internal/product"
)

type mockOrderRepository struct {
	createFunc       func(ctx context.Context, o *order.Order) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	listByUserFunc   func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	listAllFunc      func(ctx context.Context) ([]order.Order, error)
	updateStatusFunc func(ctx context.Context, id uuid.UUID, status order.Status) error
	cancelFunc       func(ctx context.Context, id uuid.UUID) error

	countPendingFunc func(ctx context.Context, userID uuid.UUID) (int64, error)

	totalSalesFunc        func(ctx context.Context) (decimal.Decimal, error)
	countOrdersFunc       func(ctx context.Context) (int64, error)
	countWithStatusesFunc func(ctx context.Context, statuses []order.Status) (int64, error)
	salesByStatusFunc     func(ctx context.Context, status order.Status) (decimal.Decimal, error)
	countSinceFunc        func(ctx context.Context, since time.Time) (int64, error)
	salesSinceFunc        func(ctx context.Context, since time.Time) (decimal.Decimal, error)
	productSalesFunc      func(ctx context.Context) ([]order.ProductSales, error)
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return m.createFunc(ctx, o)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockOrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	return m.listAllFunc(ctx)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	return m.updateStatusFunc(ctx, id, status)
}

func (m *mockOrderRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	return m.cancelFunc(ctx, id)
}

func (m *mockOrderRepository) CountPendingByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.countPendingFunc(ctx, userID)
}

func (m *mockOrderRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return m.totalSalesFunc(ctx)
}

func (m *mockOrderRepository) CountOrders(ctx context.Context) (int64, error) {
	return m.countOrdersFunc(ctx)
}

func (m *mockOrderRepository) CountWithStatuses(ctx context.Context, statuses []order.Status) (int64, error) {
	return m.countWithStatusesFunc(ctx, statuses)
}

func (m *mockOrderRepository) SalesByStatus(ctx context.Context, status order.Status) (decimal.Decimal, error) {
	return m.salesByStatusFunc(ctx, status)
}

func (m *mockOrderRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return m.countSinceFunc(ctx, since)
}

func (m *mockOrderRepository) SalesSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	return m.salesSinceFunc(ctx, since)
}

func (m *mockOrderRepository) ProductSales(ctx context.Context) ([]order.ProductSales, error) {
	return m.productSalesFunc(ctx)
}

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

type recordingNotifier struct {
	calls []struct {
		orderID   uuid.UUID
		oldStatus order.Status
		newStatus order.Status
	}
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, o *order.Order, oldStatus, newStatus order.Status) {
	n.calls = append(n.calls, struct {
		orderID   uuid.UUID
		oldStatus order.Status
		newStatus order.Status
	}{o.ID, oldStatus, newStatus})
}

func cartItem(t *testing.T, name, price string, qty int) cart.Item {
	t.Helper()
	return cart.Item{
		ProductID:   uuid.Must(uuid.NewV4()),
		ProductName: name,
		Price:       decimal.RequireFromString(price),
		Quantity:    qty,
	}
}

func TestOrderService_CreateFromCart_Success(t *testing.T) {
	var persisted *order.Order
	repo := &mockOrderRepository{
		createFunc: func(ctx context.Context, o *order.Order) error {
			o.ID = uuid.Must(uuid.NewV4())
			persisted = o
			return nil
		},
	}
	service := order.NewService(repo, nil)

	userID := uuid.Must(uuid.NewV4())
	items := []cart.Item{
		cartItem(t, "Product A", "10.00", 2),
		cartItem(t, "Product B", "5.00", 1),
	}

	created, err := service.CreateFromCart(context.Background(), userID, items)

	require.NoError(t, err)
	require.NotNil(t, created)
	require.Same(t, persisted, created)
	require.Equal(t, order.StatusPending, created.Status)
	require.Equal(t, userID, created.UserID)
	require.True(t, created.TotalPrice.Equal(decimal.RequireFromString("25.00")),
		"expected total 25.00, got %s", created.TotalPrice)

	wantItems := []order.Item{
		{
			ProductID:   items[0].ProductID,
			ProductName: "Product A",
			Price:       decimal.RequireFromString("10.00"),
			Quantity:    2,
			Subtotal:    decimal.RequireFromString("20.00"),
		},
		{
			ProductID:   items[1].ProductID,
			ProductName: "Product B",
			Price:       decimal.RequireFromString("5.00"),
			Quantity:    1,
			Subtotal:    decimal.RequireFromString("5.00"),
		},
	}
	if diff := cmp.Diff(wantItems, created.Items, decimalComparer); diff != "" {
		t.Errorf("order items mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderService_CreateFromCart_EmptyCart(t *testing.T) {
	repo := &mockOrderRepository{
		createFunc: func(ctx context.Context, o *order.Order) error {
			t.Fatal("Create must not be called for an empty cart")
			return nil
		},
	}
	service := order.NewService(repo, nil)

	created, err := service.CreateFromCart(context.Background(), uuid.Must(uuid.NewV4()), nil)

	require.ErrorIs(t, err, order.ErrEmptyCart)
	require.Nil(t, created)
}

func TestOrderService_CreateFromCart_InsufficientStock(t *testing.T) {
	repo := &mockOrderRepository{
		createFunc: func(ctx context.Context, o *order.Order) error {
			return product.ErrInsufficientStock
		},
	}
	service := order.NewService(repo, nil)

	created, err := service.CreateFromCart(context.Background(), uuid.Must(uuid.NewV4()),
		[]cart.Item{cartItem(t, "Product A", "10.00", 2)})

	require.ErrorIs(t, err, product.ErrInsufficientStock)
	require.Nil(t, created)
}

func TestOrderService_UpdateStatus_NotifiesOnChange(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, Status: order.StatusPending}, nil
		},
		updateStatusFunc: func(ctx context.Context, id uuid.UUID, status order.Status) error {
			require.Equal(t, order.StatusPaid, status)
			return nil
		},
	}
	notifier := &recordingNotifier{}
	service := order.NewService(repo, notifier)

	err := service.Pay(context.Background(), orderID)

	require.NoError(t, err)
	require.Len(t, notifier.calls, 1)
	require.Equal(t, order.StatusPending, notifier.calls[0].oldStatus)
	require.Equal(t, order.StatusPaid, notifier.calls[0].newStatus)
}

func TestOrderService_UpdateStatus_NoNotifyWhenUnchanged(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, Status: order.StatusPaid}, nil
		},
		updateStatusFunc: func(ctx context.Context, id uuid.UUID, status order.Status) error {
			return nil
		},
	}
	notifier := &recordingNotifier{}
	service := order.NewService(repo, notifier)

	err := service.UpdateStatus(context.Background(), orderID, order.StatusPaid)

	require.NoError(t, err)
	require.Empty(t, notifier.calls)
}

func TestOrderService_UpdateStatus_RejectsUnknownStatus(t *testing.T) {
	service := order.NewService(&mockOrderRepository{}, nil)

	err := service.UpdateStatus(context.Background(), uuid.Must(uuid.NewV4()), order.Status("LOST"))

	require.Error(t, err)
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return nil, order.ErrNotFound
		},
	}
	service := order.NewService(repo, nil)

	err := service.UpdateStatus(context.Background(), uuid.Must(uuid.NewV4()), order.StatusShipped)

	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderService_Cancel_Success(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	cancelled := false
	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, Status: order.StatusPending}, nil
		},
		cancelFunc: func(ctx context.Context, id uuid.UUID) error {
			cancelled = true
			return nil
		},
	}
	notifier := &recordingNotifier{}
	service := order.NewService(repo, notifier)

	err := service.Cancel(context.Background(), orderID)

	require.NoError(t, err)
	require.True(t, cancelled)
	require.Len(t, notifier.calls, 1)
	require.Equal(t, order.StatusCancelled, notifier.calls[0].newStatus)
}

func TestOrderService_Cancel_NotPending(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, Status: order.StatusPaid}, nil
		},
		cancelFunc: func(ctx context.Context, id uuid.UUID) error {
			return order.ErrNotCancellable
		},
	}
	notifier := &recordingNotifier{}
	service := order.NewService(repo, notifier)

	err := service.Cancel(context.Background(), orderID)

	require.ErrorIs(t, err, order.ErrNotCancellable)
	require.Empty(t, notifier.calls)
}
