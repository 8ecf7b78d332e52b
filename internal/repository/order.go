package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/forno/pizza-shop-api/internal/model"
)

type OrderStats struct {
	StatusCounts map[model.OrderStatus]int
	TotalOrders  int
	TotalRevenue decimal.Decimal
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, paid bool, intentID string) error
	Stats(ctx context.Context) (*OrderStats, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

// Create inserts the order and its line items in one transaction so a
// crash cannot leave an order without lines.
func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	order.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, user_email, phone, street_address, postal_code, city, country,
		                     status, payment_method, payment_status, paid,
		                     sub_total, delivery_fee, total_price, stripe_payment_intent_id, notes,
		                     created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		order.ID, order.UserEmail, order.Phone, order.StreetAddress, order.PostalCode,
		order.City, order.Country, order.Status, order.PaymentMethod, order.PaymentStatus,
		order.Paid, order.SubTotal, order.DeliveryFee, order.TotalPrice,
		order.StripePaymentIntentID, order.Notes,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", classify(err))
	}

	for i := range order.Products {
		order.Products[i].ID = uuid.New()
		order.Products[i].OrderID = order.ID
		_, err := tx.Exec(ctx,
			`INSERT INTO order_products (id, order_id, product_id, quantity)
			 VALUES ($1, $2, $3, $4)`,
			order.Products[i].ID, order.ID, order.Products[i].ProductID, order.Products[i].Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order product: %w", classify(err))
		}
	}
	return tx.Commit(ctx)
}

const orderColumns = `id, user_email, phone, street_address, postal_code, city, country,
	status, payment_method, payment_status, paid, sub_total, delivery_fee, total_price,
	COALESCE(stripe_payment_intent_id, ''), COALESCE(notes, ''), created_at, updated_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.UserEmail, &o.Phone, &o.StreetAddress, &o.PostalCode, &o.City, &o.Country,
		&o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.Paid,
		&o.SubTotal, &o.DeliveryFee, &o.TotalPrice,
		&o.StripePaymentIntentID, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT op.id, op.product_id, op.quantity, p.name, p.base_price
		 FROM order_products op
		 JOIN products p ON p.id = op.product_id
		 WHERE op.order_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get order products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var op model.OrderProduct
		if err := rows.Scan(&op.ID, &op.ProductID, &op.Quantity, &op.ProductName, &op.BasePrice); err != nil {
			return nil, fmt.Errorf("scan order product: %w", err)
		}
		op.OrderID = order.ID
		order.Products = append(order.Products, op)
	}
	return order, nil
}

func (r *pgOrderRepo) List(ctx context.Context) ([]model.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *pgOrderRepo) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	return r.query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC`, status)
}

func (r *pgOrderRepo) query(ctx context.Context, sql string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePaymentStatus keeps any previously stored intent id when
// intentID is empty.
func (r *pgOrderRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, paid bool, intentID string) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders
		 SET payment_status = $2, paid = $3,
		     stripe_payment_intent_id = COALESCE(NULLIF($4, ''), stripe_payment_intent_id),
		     updated_at = NOW()
		 WHERE id = $1`, id, status, paid, intentID)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgOrderRepo) Stats(ctx context.Context) (*OrderStats, error) {
	stats := &OrderStats{StatusCounts: make(map[model.OrderStatus]int)}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status model.OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.StatusCounts[status] = count
		stats.TotalOrders += count
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_price), 0) FROM orders`).Scan(&stats.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("total revenue: %w", err)
	}
	return stats, nil
}
