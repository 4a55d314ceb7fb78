package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"restobackend/internal/domain"
	"restobackend/internal/service"

	"github.com/jmoiron/sqlx"
)

// Store keeps the forecasting data in a single SQLite file, for single-site
// installs and the CLI.
type Store struct {
	db *sqlx.DB
}

var _ service.Store = (*Store)(nil)

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

type saleRow struct {
	ID         int64          `db:"id"`
	CreatedAt  int64          `db:"created_at"`
	Total      float64        `db:"total"`
	Discount   float64        `db:"discount"`
	Channel    string         `db:"channel"`
	Status     string         `db:"status"`
	ClientName sql.NullString `db:"client_name"`
	CustomerID sql.NullInt64  `db:"customer_id"`
}

func (r saleRow) toDomain() domain.Sale {
	sale := domain.Sale{
		ID:        r.ID,
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
		Total:     r.Total,
		Discount:  r.Discount,
		Channel:   r.Channel,
		Status:    domain.OrderStatus(r.Status),
		Items:     []domain.SaleItem{},
	}
	if r.ClientName.Valid {
		value := r.ClientName.String
		sale.ClientName = &value
	}
	if r.CustomerID.Valid {
		value := r.CustomerID.Int64
		sale.CustomerID = &value
	}
	return sale
}

type productRow struct {
	ID         int64         `db:"id"`
	Name       string        `db:"name"`
	CategoryID sql.NullInt64 `db:"category_id"`
	Active     bool          `db:"active"`
	Public     bool          `db:"public"`
	Price      float64       `db:"price"`
}

const saleColumns = `id, created_at, total, discount, channel, status, client_name, customer_id`

func (s *Store) ListSalesBetween(ctx context.Context, from, to time.Time, statuses ...domain.OrderStatus) ([]domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE created_at >= ? AND created_at <= ?`
	args := []any{from.UnixMilli(), to.UnixMilli()}
	if len(statuses) > 0 {
		query += ` AND status IN (?)`
		args = append(args, statusStrings(statuses))
	}
	query += ` ORDER BY created_at ASC, id ASC`
	return s.selectSales(ctx, query, args...)
}

func (s *Store) ListSalesByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales`
	var args []any
	if len(statuses) > 0 {
		query += ` WHERE status IN (?)`
		args = append(args, statusStrings(statuses))
	}
	query += ` ORDER BY created_at ASC, id ASC`
	return s.selectSales(ctx, query, args...)
}

func (s *Store) selectSales(ctx context.Context, query string, args ...any) ([]domain.Sale, error) {
	if len(args) > 0 {
		expanded, expandedArgs, err := sqlx.In(query, args...)
		if err != nil {
			return nil, fmt.Errorf("prepare sales query: %w", err)
		}
		query, args = s.db.Rebind(expanded), expandedArgs
	}

	var rows []saleRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sales := make([]domain.Sale, len(rows))
	for idx, row := range rows {
		sales[idx] = row.toDomain()
	}
	if err := s.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	var row saleRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	sales := []domain.Sale{row.toDomain()}
	if err := s.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

func (s *Store) attachItems(ctx context.Context, sales []domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]int64, len(sales))
	position := make(map[int64]int, len(sales))
	for idx, sale := range sales {
		ids[idx] = sale.ID
		position[sale.ID] = idx
	}

	query, args, err := sqlx.In(`SELECT id, sale_id, product_id, quantity, unit_price
		FROM sale_items
		WHERE sale_id IN (?)
		ORDER BY sale_id ASC, id ASC`, ids)
	if err != nil {
		return fmt.Errorf("prepare sale items query: %w", err)
	}

	var items []struct {
		ID        int64   `db:"id"`
		SaleID    int64   `db:"sale_id"`
		ProductID int64   `db:"product_id"`
		Quantity  int     `db:"quantity"`
		UnitPrice float64 `db:"unit_price"`
	}
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	for _, item := range items {
		idx := position[item.SaleID]
		sales[idx].Items = append(sales[idx].Items, domain.SaleItem{
			ID:        item.ID,
			SaleID:    item.SaleID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	for idx, item := range sale.Items {
		if err := item.Validate(); err != nil {
			return domain.Sale{}, fmt.Errorf("sale item %d: %w", idx+1, err)
		}
	}
	if sale.Status == "" {
		sale.Status = domain.StatusPending
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	sale.CreatedAt = time.UnixMilli(sale.CreatedAt.UnixMilli()).UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("begin sale tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO sales (created_at, total, discount, channel, status, client_name, customer_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		sale.CreatedAt.UnixMilli(),
		sale.Total,
		sale.Discount,
		sale.Channel,
		string(sale.Status),
		sale.ClientName,
		sale.CustomerID,
	)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("insert sale: %w", err)
	}
	if sale.ID, err = res.LastInsertId(); err != nil {
		return domain.Sale{}, fmt.Errorf("sale id: %w", err)
	}

	for idx := range sale.Items {
		item := &sale.Items[idx]
		item.SaleID = sale.ID
		res, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?)
		`, sale.ID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return domain.Sale{}, fmt.Errorf("insert sale item %d: %w", idx+1, err)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return domain.Sale{}, fmt.Errorf("sale item id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Sale{}, fmt.Errorf("commit sale tx: %w", err)
	}
	return sale, nil
}

func (s *Store) UpdateSaleStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sales SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM sales WHERE id = ?)`, id); err != nil {
		return fmt.Errorf("check sale: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrStatusConflict
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, name, category_id, active, public, price FROM products ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var recipe []struct {
		ProductID    int64   `db:"product_id"`
		IngredientID int64   `db:"ingredient_id"`
		Quantity     float64 `db:"quantity"`
	}
	if err := s.db.SelectContext(ctx, &recipe,
		`SELECT product_id, ingredient_id, quantity FROM recipe_items ORDER BY product_id ASC, ingredient_id ASC`); err != nil {
		return nil, fmt.Errorf("list recipe items: %w", err)
	}

	products := make([]domain.Product, len(rows))
	position := make(map[int64]int, len(rows))
	for idx, row := range rows {
		products[idx] = domain.Product{
			ID:     row.ID,
			Name:   row.Name,
			Active: row.Active,
			Public: row.Public,
			Price:  row.Price,
		}
		if row.CategoryID.Valid {
			value := row.CategoryID.Int64
			products[idx].CategoryID = &value
		}
		position[row.ID] = idx
	}
	for _, line := range recipe {
		if idx, ok := position[line.ProductID]; ok {
			products[idx].Recipe = append(products[idx].Recipe, domain.RecipeItem{
				ProductID:    line.ProductID,
				IngredientID: line.IngredientID,
				Quantity:     line.Quantity,
			})
		}
	}
	return products, nil
}

const ingredientColumns = `id, name, unit, cost_per_unit, stock, min_stock`

type ingredientRow struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Unit        string  `db:"unit"`
	CostPerUnit float64 `db:"cost_per_unit"`
	Stock       float64 `db:"stock"`
	MinStock    float64 `db:"min_stock"`
}

func (r ingredientRow) toDomain() domain.Ingredient {
	return domain.Ingredient{
		ID:          r.ID,
		Name:        r.Name,
		Unit:        r.Unit,
		CostPerUnit: r.CostPerUnit,
		Stock:       r.Stock,
		MinStock:    r.MinStock,
	}
}

func (s *Store) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	var rows []ingredientRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+ingredientColumns+` FROM ingredients ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	ingredients := make([]domain.Ingredient, len(rows))
	for idx, row := range rows {
		ingredients[idx] = row.toDomain()
	}
	return ingredients, nil
}

func (s *Store) ListPlatformConfigs(ctx context.Context) ([]domain.PlatformConfig, error) {
	var rows []struct {
		Channel           string  `db:"channel"`
		CommissionPercent float64 `db:"commission_percent"`
	}
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT channel, commission_percent FROM platform_configs ORDER BY channel ASC`); err != nil {
		return nil, fmt.Errorf("list platform configs: %w", err)
	}
	configs := make([]domain.PlatformConfig, len(rows))
	for idx, row := range rows {
		configs[idx] = domain.PlatformConfig{Channel: row.Channel, CommissionPercent: row.CommissionPercent}
	}
	return configs, nil
}

func (s *Store) AdjustIngredientStock(ctx context.Context, id int64, delta float64) (*domain.Ingredient, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE ingredients SET stock = stock + ? WHERE id = ?`, delta, id)
	if err != nil {
		return nil, fmt.Errorf("adjust ingredient stock: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("adjust ingredient stock: %w", err)
	} else if affected == 0 {
		return nil, domain.ErrNotFound
	}

	var row ingredientRow
	if err := s.db.GetContext(ctx, &row, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("reload ingredient: %w", err)
	}
	ing := row.toDomain()
	return &ing, nil
}

func (s *Store) UpsertIngredients(ctx context.Context, rows []domain.IngredientStockRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	count := 0
	for _, line := range rows {
		name := strings.TrimSpace(line.Name)
		if name == "" {
			continue
		}
		unit := strings.TrimSpace(line.Unit)

		var existingID int64
		err := tx.GetContext(ctx, &existingID, `SELECT id FROM ingredients WHERE LOWER(name) = LOWER(?)`, name)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO ingredients (name, unit, stock, min_stock, cost_per_unit)
				VALUES (?, ?, ?, COALESCE(?, 0), COALESCE(?, 0))
			`, name, unit, line.Stock, line.MinStock, line.CostPerUnit); err != nil {
				return 0, fmt.Errorf("insert ingredient %q: %w", name, err)
			}
		case err != nil:
			return 0, fmt.Errorf("query existing ingredient %q: %w", name, err)
		default:
			if _, err := tx.ExecContext(ctx, `
				UPDATE ingredients
				SET
					unit = CASE WHEN ? = '' THEN unit ELSE ? END,
					stock = ?,
					min_stock = COALESCE(?, min_stock),
					cost_per_unit = COALESCE(?, cost_per_unit)
				WHERE id = ?
			`, unit, unit, line.Stock, line.MinStock, line.CostPerUnit, existingID); err != nil {
				return 0, fmt.Errorf("update ingredient %q: %w", name, err)
			}
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import tx: %w", err)
	}
	return count, nil
}

func statusStrings(statuses []domain.OrderStatus) []string {
	out := make([]string, len(statuses))
	for idx, status := range statuses {
		out[idx] = string(status)
	}
	return out
}
