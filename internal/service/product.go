package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/forno/pizza-shop-api/internal/dto"
	"github.com/forno/pizza-shop-api/internal/model"
	"github.com/forno/pizza-shop-api/internal/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductInUse    = errors.New("product is referenced by existing orders")
)

const (
	productCacheTTL = 60 * time.Second
	menuCacheKey    = "menu"
)

type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	redisClient  *redis.Client
}

func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, categoryRepo: categoryRepo, redisClient: redisClient}
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		BasePrice:   req.BasePrice,
		CategoryID:  req.CategoryID,
		Sizes:       toSizes(req.Sizes),
		Extras:      toExtras(req.Extras),
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidateCache(ctx, product.ID)
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	cacheKey := "product:" + id.String()

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	resp := toProductResponse(product)

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}
	return &resp, nil
}

// Menu lists every category with its products, cached briefly since the
// storefront hits it on every page load.
func (s *ProductService) Menu(ctx context.Context) ([]dto.MenuCategoryResponse, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, menuCacheKey).Result(); err == nil {
			var menu []dto.MenuCategoryResponse
			if json.Unmarshal([]byte(cached), &menu) == nil {
				return menu, nil
			}
		}
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	byCategory := make(map[uuid.UUID][]dto.ProductResponse)
	for i := range products {
		byCategory[products[i].CategoryID] = append(byCategory[products[i].CategoryID], toProductResponse(&products[i]))
	}

	menu := make([]dto.MenuCategoryResponse, 0, len(categories))
	for _, c := range categories {
		menu = append(menu, dto.MenuCategoryResponse{
			ID:       c.ID,
			Name:     c.Name,
			Products: byCategory[c.ID],
		})
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(menu); err == nil {
			s.redisClient.Set(ctx, menuCacheKey, data, productCacheTTL)
		}
	}
	return menu, nil
}

func (s *ProductService) BestSellers(ctx context.Context, limit int) ([]dto.ProductResponse, error) {
	if limit <= 0 {
		limit = 3
	}
	products, err := s.productRepo.BestSellers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("best sellers: %w", err)
	}
	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	return resp, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.BasePrice != nil {
		product.BasePrice = *req.BasePrice
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}

	replaceVariants := req.Sizes != nil || req.Extras != nil
	if replaceVariants {
		product.Sizes = toSizes(req.Sizes)
		product.Extras = toExtras(req.Extras)
	}

	if err := s.productRepo.Update(ctx, product, replaceVariants); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateCache(ctx, id)
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		if errors.Is(err, repository.ErrInvalidReference) {
			return ErrProductInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidateCache(ctx, id)
	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String(), menuCacheKey)
	}
}

func toSizes(reqs []dto.VariantRequest) []model.Size {
	sizes := make([]model.Size, 0, len(reqs))
	for _, r := range reqs {
		sizes = append(sizes, model.Size{Name: r.Name, Price: r.Price})
	}
	return sizes
}

func toExtras(reqs []dto.VariantRequest) []model.Extra {
	extras := make([]model.Extra, 0, len(reqs))
	for _, r := range reqs {
		extras = append(extras, model.Extra{Name: r.Name, Price: r.Price})
	}
	return extras
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Image:       p.Image,
		BasePrice:   p.BasePrice,
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, s := range p.Sizes {
		resp.Sizes = append(resp.Sizes, dto.VariantResponse{ID: s.ID, Name: s.Name, Price: s.Price})
	}
	for _, e := range p.Extras {
		resp.Extras = append(resp.Extras, dto.VariantResponse{ID: e.ID, Name: e.Name, Price: e.Price})
	}
	return resp
}
