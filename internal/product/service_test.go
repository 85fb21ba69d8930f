package product_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/online-shop/internal/product"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *product.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductRepository) ListByCategory(ctx context.Context, category string) ([]product.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, keyword string) ([]product.Product, error) {
	args := m.Called(ctx, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p *product.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func TestProductService_Create_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := product.NewService(mockRepo)

	p := &product.Product{
		Name:     "Keyboard",
		Price:    decimal.RequireFromString("49.90"),
		Stock:    10,
		Category: "Electronics",
	}
	mockRepo.On("Create", mock.Anything, p).Return(nil)

	created, err := service.Create(context.Background(), p)

	require.NoError(t, err)
	require.Same(t, p, created)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Create_EmptyName(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := product.NewService(mockRepo)

	p := &product.Product{
		Name:  "   ",
		Price: decimal.RequireFromString("49.90"),
		Stock: 10,
	}

	created, err := service.Create(context.Background(), p)

	require.Error(t, err)
	require.Nil(t, created)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_Create_NegativePrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := product.NewService(mockRepo)

	p := &product.Product{
		Name:  "Keyboard",
		Price: decimal.RequireFromString("-1.00"),
		Stock: 10,
	}

	_, err := service.Create(context.Background(), p)

	require.Error(t, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_Create_NegativeStock(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := product.NewService(mockRepo)

	p := &product.Product{
		Name:  "Keyboard",
		Price: decimal.RequireFromString("49.90"),
		Stock: -1,
	}

	_, err := service.Create(context.Background(), p)

	require.Error(t, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := product.NewService(mockRepo)

	id := uuid.Must(uuid.NewV4())
	mockRepo.On("GetByID", mock.Anything, id).Return(nil, product.ErrNotFound)

	p, err := service.GetByID(context.Background(), id)

	require.ErrorIs(t, err, product.ErrNotFound)
	require.Nil(t, p)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Search_PassesKeyword(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := product.NewService(mockRepo)

	want := []product.Product{{Name: "Mechanical Keyboard"}}
	mockRepo.On("Search", mock.Anything, "keyboard").Return(want, nil)

	got, err := service.Search(context.Background(), "keyboard")

	require.NoError(t, err)
	require.Equal(t, want, got)
	mockRepo.AssertExpectations(t)
}

func TestProductService_AdjustStock_Insufficient(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := product.NewService(mockRepo)

	id := uuid.Must(uuid.NewV4())
	mockRepo.On("AdjustStock", mock.Anything, id, -5).Return(product.ErrInsufficientStock)

	err := service.AdjustStock(context.Background(), id, -5)

	require.ErrorIs(t, err, product.ErrInsufficientStock)
	mockRepo.AssertExpectations(t)
}
