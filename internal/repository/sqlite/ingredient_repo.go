package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/repository"
)

// ingredientRepository implements repository.IngredientRepository for SQLite.
type ingredientRepository struct {
	db *DB
}

// NewIngredientRepository creates a new SQLite ingredient repository.
func NewIngredientRepository(db *DB) repository.IngredientRepository {
	return &ingredientRepository{db: db}
}

// GetByID retrieves an ingredient by ID.
func (r *ingredientRepository) GetByID(ctx context.Context, id int64) (*domain.Ingredient, error) {
	ing := &domain.Ingredient{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = ?`, id,
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
		// LIKE is case-insensitive for ASCII in SQLite; lower() keeps
		// the behavior uniform with the PostgreSQL implementation.
		query += ` WHERE lower(name) LIKE ?`
		args = append(args, strings.ToLower(namePrefix)+"%")
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
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

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO ingredients (name, measurement_unit)
			VALUES (?, ?)
			ON CONFLICT (name, measurement_unit) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare import statement: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			res, err := stmt.ExecContext(ctx, rec.Name, rec.MeasurementUnit)
			if err != nil {
				return fmt.Errorf("failed to insert ingredient %q: %w", rec.Name, err)
			}
			n, _ := res.RowsAffected()
			inserted += n
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
		var count int
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingredients WHERE id = ?`, id).Scan(&count)
		if err != nil {
			return 0, false, fmt.Errorf("failed to check ingredient existence: %w", err)
		}
		if count == 0 {
			return id, false, nil
		}
	}
	return 0, true, nil
}

// Ensure ingredientRepository implements repository.IngredientRepository.
var _ repository.IngredientRepository = (*ingredientRepository)(nil)
