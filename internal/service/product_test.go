package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forno/pizza-shop-api/internal/dto"
	"github.com/forno/pizza-shop-api/internal/model"
	"github.com/forno/pizza-shop-api/internal/repository"
)

type mockCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (m *mockCategoryRepo) Create(_ context.Context, category *model.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	return m.categories[id], nil
}

func (m *mockCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	var categories []model.Category
	for _, c := range m.categories {
		categories = append(categories, *c)
	}
	return categories, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, category *model.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return repository.ErrNotFound
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func TestProductService_CreateWithVariants(t *testing.T) {
	productRepo := newMockProductRepo()
	svc := NewProductService(productRepo, newMockCategoryRepo(), nil)

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:        "Margherita",
		Description: "Tomato, mozzarella and basil",
		BasePrice:   decimal.NewFromInt(10),
		CategoryID:  uuid.New(),
		Sizes: []dto.VariantRequest{
			{Name: "Small"},
			{Name: "Large", Price: decimal.NewFromInt(4)},
		},
		Extras: []dto.VariantRequest{
			{Name: "Extra cheese", Price: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Sizes, 2)
	assert.Len(t, resp.Extras, 1)
}

func TestProductService_CreateUnknownCategory(t *testing.T) {
	productRepo := newMockProductRepo()
	productRepo.createErr = repository.ErrInvalidReference
	svc := NewProductService(productRepo, newMockCategoryRepo(), nil)

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Orphan", Description: "d", BasePrice: decimal.NewFromInt(5), CategoryID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), newMockCategoryRepo(), nil)
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_UpdateKeepsVariantsUnlessSent(t *testing.T) {
	productRepo := newMockProductRepo()
	product := seedMargherita(t, productRepo)
	svc := NewProductService(productRepo, newMockCategoryRepo(), nil)
	ctx := context.Background()

	// A rename leaves the variant set alone.
	newName := "Margherita DOP"
	resp, err := svc.Update(ctx, product.ID, dto.UpdateProductRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Margherita DOP", resp.Name)
	assert.Len(t, resp.Sizes, 2)

	// Sending sizes replaces the whole variant set.
	resp, err = svc.Update(ctx, product.ID, dto.UpdateProductRequest{
		Sizes: []dto.VariantRequest{{Name: "Family", Price: decimal.NewFromInt(8)}},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Sizes, 1)
	assert.Empty(t, resp.Extras)
}

func TestProductService_Update_NotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), newMockCategoryRepo(), nil)
	_, err := svc.Update(context.Background(), uuid.New(), dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Delete_NotFound(t *testing.T) {
	svc := NewProductService(newMockProductRepo(), newMockCategoryRepo(), nil)
	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_MenuGroupsByCategory(t *testing.T) {
	productRepo := newMockProductRepo()
	categoryRepo := newMockCategoryRepo()
	ctx := context.Background()

	pizzas := &model.Category{Name: "Pizzas"}
	drinks := &model.Category{Name: "Drinks"}
	require.NoError(t, categoryRepo.Create(ctx, pizzas))
	require.NoError(t, categoryRepo.Create(ctx, drinks))

	require.NoError(t, productRepo.Create(ctx, &model.Product{
		ID: uuid.New(), Name: "Diavola", BasePrice: decimal.NewFromInt(12), CategoryID: pizzas.ID,
	}))
	require.NoError(t, productRepo.Create(ctx, &model.Product{
		ID: uuid.New(), Name: "Cola", BasePrice: decimal.NewFromInt(3), CategoryID: drinks.ID,
	}))

	svc := NewProductService(productRepo, categoryRepo, nil)
	menu, err := svc.Menu(ctx)
	require.NoError(t, err)
	require.Len(t, menu, 2)

	byName := make(map[string]dto.MenuCategoryResponse)
	for _, m := range menu {
		byName[m.Name] = m
	}
	assert.Len(t, byName["Pizzas"].Products, 1)
	assert.Len(t, byName["Drinks"].Products, 1)
}

func TestCategoryService_CRUD(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CategoryRequest{Name: "Pizzas"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, dto.CategoryRequest{Name: "Classic Pizzas"})
	require.NoError(t, err)
	assert.Equal(t, "Classic Pizzas", updated.Name)

	_, err = svc.Update(ctx, uuid.New(), dto.CategoryRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	require.NoError(t, svc.Delete(ctx, created.ID))
	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
