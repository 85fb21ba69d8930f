package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/online-shop/internal/product"
)

var (
	ErrNotFound       = errors.New("order not found")
	ErrNotCancellable = errors.New("only pending orders can be cancelled")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Cancel(ctx context.Context, id uuid.UUID) error
	CountPendingByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	TotalSales(ctx context.Context) (decimal.Decimal, error)
	CountOrders(ctx context.Context) (int64, error)
	CountWithStatuses(ctx context.Context, statuses []Status) (int64, error)
	SalesByStatus(ctx context.Context, status Status) (decimal.Decimal, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	SalesSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
	ProductSales(ctx context.Context) ([]ProductSales, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Create persists the order, its line items and the matching stock decrements
// in one transaction. If any product lacks stock the whole operation rolls
// back and product.ErrInsufficientStock is returned.
func (r *postgresRepository) Create(ctx context.Context, o *Order) (err error) {
	if o.ID == uuid.Nil {
		id, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order id: %w", genErr)
		}
		o.ID = id
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("repository: failed to rollback after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	queryOrder := `
		INSERT INTO orders (id, user_id, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, queryOrder, o.ID, o.UserID, o.TotalPrice, string(o.Status), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, product_name, price, quantity, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	queryStock := `
		UPDATE products
		SET stock = stock - $1, updated_at = $2
		WHERE id = $3 AND stock >= $1
	`

	for i := range o.Items {
		item := &o.Items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate order item id: %w", genErr)
			return err
		}
		item.ID = itemID
		item.OrderID = o.ID
		item.CreatedAt = now

		_, err = tx.Exec(ctx, queryItem,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.Price, item.Quantity, item.Subtotal, item.CreatedAt)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}

		cmdTag, execErr := tx.Exec(ctx, queryStock, item.Quantity, now, item.ProductID)
		if execErr != nil {
			err = fmt.Errorf("repository: failed to decrement stock for product %s: %w", item.ProductID, execErr)
			return err
		}
		if cmdTag.RowsAffected() == 0 {
			var exists bool
			if scanErr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, item.ProductID).Scan(&exists); scanErr != nil {
				err = fmt.Errorf("repository: failed to check product %s: %w", item.ProductID, scanErr)
				return err
			}
			if !exists {
				err = product.ErrNotFound
				return err
			}
			err = product.ErrInsufficientStock
			return err
		}
	}

	return nil
}

const orderColumns = "id, user_id, total_price, status, created_at, updated_at"

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	o.Items, err = r.queryItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *postgresRepository) queryItems(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	query := `
		SELECT id, order_id, product_id, product_name, price, quantity, subtotal, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Price, &item.Quantity, &item.Subtotal, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order %s: %w", orderID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order %s: %w", orderID, err)
	}

	return items, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, userID)
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.queryOrders(ctx, query)
}

func (r *postgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]Item, 0)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	return orders, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	cmdTag, err := r.db.Exec(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update status for order %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Cancel moves a PENDING order to CANCELLED and puts every decremented unit
// of stock back, all in one transaction. The order row is locked first so a
// concurrent status change cannot slip in between the check and the update.
func (r *postgresRepository) Cancel(ctx context.Context, id uuid.UUID) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", id).Msg("repository: failed to rollback after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", id).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	var status Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNotFound
			return err
		}
		return fmt.Errorf("repository: failed to lock order %s: %w", id, err)
	}
	if status != StatusPending {
		err = ErrNotCancellable
		return err
	}

	rows, err := tx.Query(ctx, `SELECT product_id, quantity FROM order_items WHERE order_id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to query items for order %s: %w", id, err)
	}

	type restore struct {
		productID uuid.UUID
		quantity  int
	}
	var restores []restore
	for rows.Next() {
		var rs restore
		if scanErr := rows.Scan(&rs.productID, &rs.quantity); scanErr != nil {
			rows.Close()
			err = fmt.Errorf("repository: failed to scan item for order %s: %w", id, scanErr)
			return err
		}
		restores = append(restores, rs)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating items for order %s: %w", id, err)
	}

	now := time.Now().UTC()
	for _, rs := range restores {
		// Products deleted since purchase have no stock row to restore.
		_, err = tx.Exec(ctx, `UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3`,
			rs.quantity, now, rs.productID)
		if err != nil {
			return fmt.Errorf("repository: failed to restore stock for product %s: %w", rs.productID, err)
		}
	}

	_, err = tx.Exec(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(StatusCancelled), now, id)
	if err != nil {
		return fmt.Errorf("repository: failed to cancel order %s: %w", id, err)
	}

	return nil
}

func (r *postgresRepository) CountPendingByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status = $2`,
		userID, string(StatusPending)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count pending orders for user %s: %w", userID, err)
	}
	return count, nil
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *postgresRepository) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE status = ANY($1)`,
		statusStrings(RevenueStatuses)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("repository: failed to sum total sales: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count orders: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) CountWithStatuses(ctx context.Context, statuses []Status) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE status = ANY($1)`,
		statusStrings(statuses)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count orders by statuses: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) SalesByStatus(ctx context.Context, status Status) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE status = $1`,
		string(status)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("repository: failed to sum sales for status %s: %w", status, err)
	}
	return total, nil
}

func (r *postgresRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count orders since %s: %w", since, err)
	}
	return count, nil
}

func (r *postgresRepository) SalesSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE status = ANY($1) AND created_at >= $2`,
		statusStrings(RevenueStatuses), since).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("repository: failed to sum sales since %s: %w", since, err)
	}
	return total, nil
}

func (r *postgresRepository) ProductSales(ctx context.Context) ([]ProductSales, error) {
	query := `
		SELECT oi.product_id, oi.product_name, SUM(oi.quantity), SUM(oi.subtotal)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = ANY($1)
		GROUP BY oi.product_id, oi.product_name
		ORDER BY SUM(oi.quantity) DESC
	`
	rows, err := r.db.Query(ctx, query, statusStrings(RevenueStatuses))
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query product sales: %w", err)
	}
	defer rows.Close()

	sales := make([]ProductSales, 0)
	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.ProductName, &ps.SoldQuantity, &ps.SalesAmount); err != nil {
			return nil, fmt.Errorf("repository: failed to scan product sales row: %w", err)
		}
		sales = append(sales, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating product sales: %w", err)
	}

	return sales, nil
}
