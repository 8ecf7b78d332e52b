package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forno/pizza-shop-api/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error)
	BestSellers(ctx context.Context, limit int) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product, replaceVariants bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	product.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO products (id, name, description, image, base_price, category_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING created_at, updated_at`,
		product.ID, product.Name, product.Description, product.Image,
		product.BasePrice, product.CategoryID,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", classify(err))
	}

	if err := insertVariants(ctx, tx, product); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertVariants(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	for i := range product.Sizes {
		product.Sizes[i].ID = uuid.New()
		product.Sizes[i].ProductID = product.ID
		_, err := tx.Exec(ctx,
			`INSERT INTO sizes (id, product_id, name, price) VALUES ($1, $2, $3, $4)`,
			product.Sizes[i].ID, product.ID, product.Sizes[i].Name, product.Sizes[i].Price,
		)
		if err != nil {
			return fmt.Errorf("insert size: %w", classify(err))
		}
	}
	for i := range product.Extras {
		product.Extras[i].ID = uuid.New()
		product.Extras[i].ProductID = product.ID
		_, err := tx.Exec(ctx,
			`INSERT INTO extras (id, product_id, name, price) VALUES ($1, $2, $3, $4)`,
			product.Extras[i].ID, product.ID, product.Extras[i].Name, product.Extras[i].Price,
		)
		if err != nil {
			return fmt.Errorf("insert extra: %w", classify(err))
		}
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p := &model.Product{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, image, base_price, category_id, created_at, updated_at
		 FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Image, &p.BasePrice, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	products := []model.Product{*p}
	if err := r.loadVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *pgProductRepo) List(ctx context.Context) ([]model.Product, error) {
	return r.query(ctx,
		`SELECT id, name, description, image, base_price, category_id, created_at, updated_at
		 FROM products ORDER BY created_at DESC`)
}

func (r *pgProductRepo) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	return r.query(ctx,
		`SELECT id, name, description, image, base_price, category_id, created_at, updated_at
		 FROM products WHERE category_id = $1 ORDER BY name`, categoryID)
}

// BestSellers ranks products by how often they appear in order lines.
func (r *pgProductRepo) BestSellers(ctx context.Context, limit int) ([]model.Product, error) {
	return r.query(ctx,
		`SELECT p.id, p.name, p.description, p.image, p.base_price, p.category_id, p.created_at, p.updated_at
		 FROM products p
		 JOIN order_products op ON op.product_id = p.id
		 GROUP BY p.id
		 ORDER BY SUM(op.quantity) DESC
		 LIMIT $1`, limit)
}

func (r *pgProductRepo) query(ctx context.Context, sql string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Image, &p.BasePrice,
			&p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := r.loadVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *pgProductRepo) loadVariants(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(products))
	index := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = &products[i]
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, name, price FROM sizes WHERE product_id = ANY($1) ORDER BY price`, ids)
	if err != nil {
		return fmt.Errorf("load sizes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s model.Size
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Name, &s.Price); err != nil {
			return fmt.Errorf("scan size: %w", err)
		}
		if p := index[s.ProductID]; p != nil {
			p.Sizes = append(p.Sizes, s)
		}
	}

	extraRows, err := r.pool.Query(ctx,
		`SELECT id, product_id, name, price FROM extras WHERE product_id = ANY($1) ORDER BY price`, ids)
	if err != nil {
		return fmt.Errorf("load extras: %w", err)
	}
	defer extraRows.Close()
	for extraRows.Next() {
		var e model.Extra
		if err := extraRows.Scan(&e.ID, &e.ProductID, &e.Name, &e.Price); err != nil {
			return fmt.Errorf("scan extra: %w", err)
		}
		if p := index[e.ProductID]; p != nil {
			p.Extras = append(p.Extras, e)
		}
	}
	return nil
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product, replaceVariants bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`UPDATE products SET name=$2, description=$3, image=$4, base_price=$5, category_id=$6, updated_at=NOW()
		 WHERE id=$1 RETURNING updated_at`,
		product.ID, product.Name, product.Description, product.Image,
		product.BasePrice, product.CategoryID,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update product: %w", classify(err))
	}

	if replaceVariants {
		if _, err := tx.Exec(ctx, `DELETE FROM sizes WHERE product_id = $1`, product.ID); err != nil {
			return fmt.Errorf("clear sizes: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM extras WHERE product_id = $1`, product.ID); err != nil {
			return fmt.Errorf("clear extras: %w", err)
		}
		if err := insertVariants(ctx, tx, product); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", classify(err))
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
