package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/repository"
)

// ingredientRepository implements repository.IngredientRepository for PostgreSQL.
type ingredientRepository struct {
	db *DB
}

// NewIngredientRepository creates a new PostgreSQL ingredient repository.
func NewIngredientRepository(db *DB) repository.IngredientRepository {
	return &ingredientRepository{db: db}
}

// GetByID retrieves an ingredient by ID.
func (r *ingredientRepository) GetByID(ctx context.Context, id int64) (*domain.Ingredient, error) {
	ing := &domain.Ingredient{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`, id,
	).Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}

	return ing, nil
}

// List returns ingredients matching a case-insensitive name prefix,
// ordered by name.
func (r *ingredientRepository) List(ctx context.Context, namePrefix string) ([]*domain.Ingredient, error) {
	query := `SELECT id, name, measurement_unit FROM ingredients`
	args := []interface{}{}

	if namePrefix != "" {
		query += ` WHERE lower(name) LIKE $1`
		args = append(args, strings.ToLower(namePrefix)+"%")
	}
	query += ` ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []*domain.Ingredient
	for rows.Next() {
		ing := &domain.Ingredient{}
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingredients: %w", err)
	}

	return ingredients, nil
}

// BulkImport inserts records whose (name, measurement_unit) pair is not
// already present. Duplicates inside the batch or against existing rows
// are skipped silently; the whole batch runs in one transaction.
func (r *ingredientRepository) BulkImport(ctx context.Context, records []*domain.Ingredient) (int64, error) {
	var inserted int64

	err := r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			tag, err := tx.Exec(ctx, `
				INSERT INTO ingredients (name, measurement_unit)
				VALUES ($1, $2)
				ON CONFLICT (name, measurement_unit) DO NOTHING
			`, rec.Name, rec.MeasurementUnit)
			if err != nil {
				return fmt.Errorf("failed to insert ingredient %q: %w", rec.Name, err)
			}
			inserted += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// ExistAll checks that every ingredient id is present, reporting the
// first missing id otherwise.
func (r *ingredientRepository) ExistAll(ctx context.Context, ids []int64) (int64, bool, error) {
	for _, id := range ids {
		var exists bool
		err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ingredients WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return 0, false, fmt.Errorf("failed to check ingredient existence: %w", err)
		}
		if !exists {
			return id, false, nil
		}
	}
	return 0, true, nil
}

// Ensure ingredientRepository implements repository.IngredientRepository.
var _ repository.IngredientRepository = (*ingredientRepository)(nil)
