package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forno/pizza-shop-api/internal/dto"
	"github.com/forno/pizza-shop-api/internal/model"
	"github.com/forno/pizza-shop-api/internal/repository"
)

type mockOrderRepo struct {
	orders    map[uuid.UUID]*model.Order
	createErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, order *model.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	return m.orders[id], nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range m.orders {
		orders = append(orders, *o)
	}
	return orders, nil
}

func (m *mockOrderRepo) ListByStatus(_ context.Context, status model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	for _, o := range m.orders {
		if o.Status == status {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *mockOrderRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status model.PaymentStatus, paid bool, intentID string) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.PaymentStatus = status
	o.Paid = paid
	if intentID != "" {
		o.StripePaymentIntentID = intentID
	}
	return nil
}

func (m *mockOrderRepo) Stats(_ context.Context) (*repository.OrderStats, error) {
	stats := &repository.OrderStats{
		StatusCounts: make(map[model.OrderStatus]int),
		TotalRevenue: decimal.Zero,
	}
	for _, o := range m.orders {
		stats.StatusCounts[o.Status]++
		stats.TotalOrders++
		stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalPrice)
	}
	return stats, nil
}

type mockProductRepo struct {
	products  map[uuid.UUID]*model.Product
	createErr error
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (m *mockProductRepo) Create(_ context.Context, product *model.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return m.products[id], nil
}

func (m *mockProductRepo) List(_ context.Context) ([]model.Product, error) {
	var products []model.Product
	for _, p := range m.products {
		products = append(products, *p)
	}
	return products, nil
}

func (m *mockProductRepo) ListByCategory(_ context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	for _, p := range m.products {
		if p.CategoryID == categoryID {
			products = append(products, *p)
		}
	}
	return products, nil
}

func (m *mockProductRepo) BestSellers(_ context.Context, limit int) ([]model.Product, error) {
	products, _ := m.List(context.Background())
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (m *mockProductRepo) Update(_ context.Context, product *model.Product, _ bool) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func validOrderRequest(items ...dto.CartItemRequest) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		UserEmail:     "mario@example.com",
		Phone:         "5551234567",
		StreetAddress: "1 Via Roma, Apt 2",
		PostalCode:    "00100",
		City:          "Rome",
		Country:       "Italy",
		PaymentMethod: model.PaymentMethodCash,
		CartItems:     items,
	}
}

func seedMargherita(t *testing.T, repo *mockProductRepo) *model.Product {
	t.Helper()
	product := &model.Product{
		ID:        uuid.New(),
		Name:      "Margherita",
		BasePrice: decimal.NewFromInt(10),
		Sizes: []model.Size{
			{ID: uuid.New(), Name: "Small", Price: decimal.Zero},
			{ID: uuid.New(), Name: "Large", Price: decimal.NewFromInt(2)},
		},
		Extras: []model.Extra{
			{ID: uuid.New(), Name: "Extra cheese", Price: decimal.NewFromInt(3)},
		},
	}
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func TestOrderService_Create_ValidationBeforePersistence(t *testing.T) {
	orderRepo := newMockOrderRepo()
	svc := NewOrderService(orderRepo, newMockProductRepo(), nil, nil, nil)

	req := validOrderRequest()
	req.UserEmail = "not-an-email"
	req.Phone = "123"
	req.StreetAddress = "short"
	req.PostalCode = "ab"
	req.City = "R"
	req.Country = "I"
	req.PaymentMethod = "VENMO"

	_, err := svc.Create(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 8)
	assert.Contains(t, verr.Fields, "user_email")
	assert.Contains(t, verr.Fields, "cart_items")
	assert.Contains(t, verr.Fields, "payment_method")
	assert.Empty(t, orderRepo.orders, "nothing may be persisted when validation fails")
}

func TestOrderService_Create_PricesFromDatabase(t *testing.T) {
	orderRepo := newMockOrderRepo()
	productRepo := newMockProductRepo()
	product := seedMargherita(t, productRepo)

	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil)

	large := product.Sizes[1].ID
	cheese := product.Extras[0].ID
	resp, err := svc.Create(context.Background(), validOrderRequest(
		dto.CartItemRequest{ProductID: product.ID, Quantity: 2, SizeID: &large, ExtraIDs: []uuid.UUID{cheese}},
		dto.CartItemRequest{ProductID: product.ID, Quantity: 1},
	))
	require.NoError(t, err)

	// (10 + 2 + 3) * 2 = 30, plus 10 and a 5 delivery fee.
	assert.True(t, resp.SubTotal.Equal(decimal.NewFromInt(40)), "got %s", resp.SubTotal)
	assert.True(t, resp.TotalPrice.Equal(decimal.NewFromInt(45)), "got %s", resp.TotalPrice)
	assert.Equal(t, model.OrderStatusPending, resp.Status)
	assert.Equal(t, model.PaymentStatusPending, resp.PaymentStatus)
	assert.False(t, resp.Paid)

	// The response carries the looked-up product details, not just IDs.
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "Margherita", resp.Products[0].ProductName)
	assert.True(t, resp.Products[0].BasePrice.Equal(decimal.NewFromInt(10)), "got %s", resp.Products[0].BasePrice)
	assert.Equal(t, 2, resp.Products[0].Quantity)
}

func TestOrderService_Create_UnknownProduct(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), newMockProductRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), validOrderRequest(
		dto.CartItemRequest{ProductID: uuid.New(), Quantity: 1},
	))
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestOrderService_Create_UnknownSizeOrExtra(t *testing.T) {
	productRepo := newMockProductRepo()
	product := seedMargherita(t, productRepo)
	svc := NewOrderService(newMockOrderRepo(), productRepo, nil, nil, nil)

	bogus := uuid.New()
	_, err := svc.Create(context.Background(), validOrderRequest(
		dto.CartItemRequest{ProductID: product.ID, Quantity: 1, SizeID: &bogus},
	))
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = svc.Create(context.Background(), validOrderRequest(
		dto.CartItemRequest{ProductID: product.ID, Quantity: 1, ExtraIDs: []uuid.UUID{bogus}},
	))
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestOrderService_Create_MapsRepositoryErrors(t *testing.T) {
	productRepo := newMockProductRepo()
	product := seedMargherita(t, productRepo)

	orderRepo := newMockOrderRepo()
	orderRepo.createErr = repository.ErrDuplicate
	svc := NewOrderService(orderRepo, productRepo, nil, nil, nil)

	_, err := svc.Create(context.Background(), validOrderRequest(
		dto.CartItemRequest{ProductID: product.ID, Quantity: 1},
	))
	assert.ErrorIs(t, err, ErrOrderAlreadyExists)

	orderRepo.createErr = repository.ErrInvalidReference
	_, err = svc.Create(context.Background(), validOrderRequest(
		dto.CartItemRequest{ProductID: product.ID, Quantity: 1},
	))
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	orderRepo := newMockOrderRepo()
	orderID := uuid.New()
	orderRepo.orders[orderID] = &model.Order{ID: orderID, Status: model.OrderStatusPending}

	svc := NewOrderService(orderRepo, newMockProductRepo(), nil, nil, nil)

	require.NoError(t, svc.UpdateStatus(context.Background(), orderID, model.OrderStatusPreparing))
	assert.Equal(t, model.OrderStatusPreparing, orderRepo.orders[orderID].Status)

	// Setting the same status again converges, it does not error.
	require.NoError(t, svc.UpdateStatus(context.Background(), orderID, model.OrderStatusPreparing))
	assert.Equal(t, model.OrderStatusPreparing, orderRepo.orders[orderID].Status)

	err := svc.UpdateStatus(context.Background(), orderID, "SHIPPED_TO_MARS")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	err = svc.UpdateStatus(context.Background(), uuid.New(), model.OrderStatusReady)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_UpdatePaymentStatus_DerivesPaid(t *testing.T) {
	orderRepo := newMockOrderRepo()
	orderID := uuid.New()
	orderRepo.orders[orderID] = &model.Order{
		ID: orderID, PaymentMethod: model.PaymentMethodStripe,
		PaymentStatus: model.PaymentStatusPending,
	}

	svc := NewOrderService(orderRepo, newMockProductRepo(), nil, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.UpdatePaymentStatus(ctx, orderID, model.PaymentStatusPaid, "pi_123"))
	assert.True(t, orderRepo.orders[orderID].Paid)
	assert.Equal(t, "pi_123", orderRepo.orders[orderID].StripePaymentIntentID)

	require.NoError(t, svc.UpdatePaymentStatus(ctx, orderID, model.PaymentStatusFailed, ""))
	assert.False(t, orderRepo.orders[orderID].Paid)
	assert.Equal(t, "pi_123", orderRepo.orders[orderID].StripePaymentIntentID)

	err := svc.UpdatePaymentStatus(ctx, uuid.New(), model.PaymentStatusPaid, "pi_456")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	err = svc.UpdatePaymentStatus(ctx, orderID, "GOLD_BARS", "")
	assert.ErrorIs(t, err, ErrInvalidPayment)
}

func TestOrderService_GetAndListByStatus(t *testing.T) {
	orderRepo := newMockOrderRepo()
	orderID := uuid.New()
	orderRepo.orders[orderID] = &model.Order{
		ID: orderID, Status: model.OrderStatusConfirmed,
		TotalPrice: decimal.NewFromInt(44),
	}

	svc := NewOrderService(orderRepo, newMockProductRepo(), nil, nil, nil)

	order, err := svc.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)

	list, err := svc.ListByStatus(context.Background(), model.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	list, err = svc.ListByStatus(context.Background(), model.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	_, err = svc.ListByStatus(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderService_Stats(t *testing.T) {
	orderRepo := newMockOrderRepo()
	for _, st := range []model.OrderStatus{
		model.OrderStatusPending, model.OrderStatusPending, model.OrderStatusDelivered,
	} {
		id := uuid.New()
		orderRepo.orders[id] = &model.Order{ID: id, Status: st, TotalPrice: decimal.NewFromInt(10)}
	}

	svc := NewOrderService(orderRepo, newMockProductRepo(), nil, nil, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 2, stats.StatusCounts[model.OrderStatusPending])
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(30)))
}
