package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"restobackend/internal/domain"

	"github.com/jackc/pgx/v5"
)

// ListProducts returns every product with its recipe lines.
func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, category_id, active, public, price::double precision
		FROM products
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Product, error) {
		var (
			p        domain.Product
			category sql.NullInt64
		)
		if err := row.Scan(&p.ID, &p.Name, &category, &p.Active, &p.Public, &p.Price); err != nil {
			return domain.Product{}, err
		}
		if category.Valid {
			value := category.Int64
			p.CategoryID = &value
		}
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	recipeRows, err := r.pool.Query(ctx, `
		SELECT product_id, ingredient_id, quantity::double precision
		FROM recipe_items
		ORDER BY product_id ASC, ingredient_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list recipe items: %w", err)
	}
	recipe, err := pgx.CollectRows(recipeRows, func(row pgx.CollectableRow) (domain.RecipeItem, error) {
		var item domain.RecipeItem
		err := row.Scan(&item.ProductID, &item.IngredientID, &item.Quantity)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("iterate recipe items: %w", err)
	}

	position := make(map[int64]int, len(products))
	for idx, p := range products {
		position[p.ID] = idx
	}
	for _, item := range recipe {
		if idx, ok := position[item.ProductID]; ok {
			products[idx].Recipe = append(products[idx].Recipe, item)
		}
	}
	return products, nil
}

func (r *Repository) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			id,
			name,
			unit,
			cost_per_unit::double precision,
			stock::double precision,
			min_stock::double precision
		FROM ingredients
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	ingredients, err := pgx.CollectRows(rows, scanIngredient)
	if err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}
	return ingredients, nil
}

func (r *Repository) ListPlatformConfigs(ctx context.Context) ([]domain.PlatformConfig, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT channel, commission_percent::double precision
		FROM platform_configs
		ORDER BY channel ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list platform configs: %w", err)
	}
	configs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PlatformConfig, error) {
		var cfg domain.PlatformConfig
		err := row.Scan(&cfg.Channel, &cfg.CommissionPercent)
		return cfg, err
	})
	if err != nil {
		return nil, fmt.Errorf("iterate platform configs: %w", err)
	}
	return configs, nil
}

// AdjustIngredientStock adds delta to the stock without clamping.
func (r *Repository) AdjustIngredientStock(ctx context.Context, id int64, delta float64) (*domain.Ingredient, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE ingredients
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING
			id,
			name,
			unit,
			cost_per_unit::double precision,
			stock::double precision,
			min_stock::double precision
	`, id, delta)
	ing, err := scanIngredientRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("adjust ingredient stock: %w", err)
	}
	return &ing, nil
}

// UpsertIngredients matches rows to ingredients by case-insensitive name.
// Optional columns left empty keep their stored value.
func (r *Repository) UpsertIngredients(ctx context.Context, rows []domain.IngredientStockRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback(ctx)

	count := 0
	for _, line := range rows {
		name := strings.TrimSpace(line.Name)
		if name == "" {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO ingredients (name, unit, stock, min_stock, cost_per_unit)
			VALUES ($1, $2, $3, COALESCE($4::double precision, 0), COALESCE($5::double precision, 0))
			ON CONFLICT ((LOWER(name))) DO UPDATE
			SET
				unit = CASE WHEN EXCLUDED.unit = '' THEN ingredients.unit ELSE EXCLUDED.unit END,
				stock = EXCLUDED.stock,
				min_stock = COALESCE($4::double precision, ingredients.min_stock),
				cost_per_unit = COALESCE($5::double precision, ingredients.cost_per_unit),
				updated_at = NOW()
		`,
			name,
			strings.TrimSpace(line.Unit),
			line.Stock,
			line.MinStock,
			line.CostPerUnit,
		); err != nil {
			return 0, fmt.Errorf("upsert ingredient %q: %w", name, err)
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import tx: %w", err)
	}
	return count, nil
}

func scanIngredient(rows pgx.CollectableRow) (domain.Ingredient, error) {
	return scanIngredientRow(rows)
}

func scanIngredientRow(row pgx.Row) (domain.Ingredient, error) {
	var ing domain.Ingredient
	if err := row.Scan(
		&ing.ID,
		&ing.Name,
		&ing.Unit,
		&ing.CostPerUnit,
		&ing.Stock,
		&ing.MinStock,
	); err != nil {
		return domain.Ingredient{}, err
	}
	return ing, nil
}
