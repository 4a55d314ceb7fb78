package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"restobackend/internal/domain"
	"restobackend/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = domain.ErrNotFound

var _ service.Store = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const saleColumns = `
	id,
	created_at,
	total::double precision,
	discount::double precision,
	channel,
	status,
	client_name,
	customer_id
`

// ListSalesBetween returns sales created in [from, to] with their items.
// No statuses means every status.
func (r *Repository) ListSalesBetween(ctx context.Context, from, to time.Time, statuses ...domain.OrderStatus) ([]domain.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE created_at >= $1
			AND created_at <= $2
			AND (cardinality($3::text[]) = 0 OR status = ANY($3))
		ORDER BY created_at ASC, id ASC
	`, from, to, statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("list sales between: %w", err)
	}
	sales, err := pgx.CollectRows(rows, scanSale)
	if err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	if err := r.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *Repository) ListSalesByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE cardinality($1::text[]) = 0 OR status = ANY($1)
		ORDER BY created_at ASC, id ASC
	`, statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("list sales by status: %w", err)
	}
	sales, err := pgx.CollectRows(rows, scanSale)
	if err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	if err := r.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *Repository) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	sale, err := scanSaleRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	sales := []domain.Sale{sale}
	if err := r.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

// CreateSale inserts the sale and its items in one transaction.
func (r *Repository) CreateSale(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	for idx, item := range sale.Items {
		if err := item.Validate(); err != nil {
			return domain.Sale{}, fmt.Errorf("sale item %d: %w", idx+1, err)
		}
	}
	if sale.Status == "" {
		sale.Status = domain.StatusPending
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("begin sale tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `
		INSERT INTO sales (created_at, total, discount, channel, status, client_name, customer_id)
		VALUES (COALESCE($1, NOW()), $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`,
		nullableTime(sale.CreatedAt),
		sale.Total,
		sale.Discount,
		sale.Channel,
		string(sale.Status),
		sale.ClientName,
		sale.CustomerID,
	).Scan(&sale.ID, &sale.CreatedAt); err != nil {
		return domain.Sale{}, fmt.Errorf("insert sale: %w", err)
	}

	for idx := range sale.Items {
		item := &sale.Items[idx]
		item.SaleID = sale.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO sale_items (sale_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, sale.ID, item.ProductID, item.Quantity, item.UnitPrice).Scan(&item.ID); err != nil {
			return domain.Sale{}, fmt.Errorf("insert sale item %d: %w", idx+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Sale{}, fmt.Errorf("commit sale tx: %w", err)
	}
	return sale, nil
}

// UpdateSaleStatus moves a sale from one status to another only if it is
// still in the expected status.
func (r *Repository) UpdateSaleStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sales SET status = $3 WHERE id = $1 AND status = $2
	`, id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM sales WHERE id = $1)", id).Scan(&exists); err != nil {
		return fmt.Errorf("check sale: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return domain.ErrStatusConflict
}

func (r *Repository) attachItems(ctx context.Context, sales []domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]int64, len(sales))
	position := make(map[int64]int, len(sales))
	for idx, sale := range sales {
		ids[idx] = sale.ID
		position[sale.ID] = idx
		sales[idx].Items = []domain.SaleItem{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price::double precision
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id ASC, id ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		idx := position[item.SaleID]
		sales[idx].Items = append(sales[idx].Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate sale items: %w", err)
	}
	return nil
}

func scanSale(rows pgx.CollectableRow) (domain.Sale, error) {
	return scanSaleRow(rows)
}

func scanSaleRow(row pgx.Row) (domain.Sale, error) {
	var (
		sale       domain.Sale
		status     string
		clientName sql.NullString
		customerID sql.NullInt64
	)
	if err := row.Scan(
		&sale.ID,
		&sale.CreatedAt,
		&sale.Total,
		&sale.Discount,
		&sale.Channel,
		&status,
		&clientName,
		&customerID,
	); err != nil {
		return domain.Sale{}, err
	}
	sale.Status = domain.OrderStatus(status)
	if clientName.Valid {
		value := clientName.String
		sale.ClientName = &value
	}
	if customerID.Valid {
		value := customerID.Int64
		sale.CustomerID = &value
	}
	return sale, nil
}

func statusStrings(statuses []domain.OrderStatus) []string {
	out := make([]string, len(statuses))
	for idx, status := range statuses {
		out[idx] = string(status)
	}
	return out
}

func nullableTime(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	return &value
}
