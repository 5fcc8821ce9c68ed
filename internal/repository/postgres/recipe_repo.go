package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/repository"
)

// recipeRepository implements repository.RecipeRepository for PostgreSQL.
type recipeRepository struct {
	db *DB
}

// NewRecipeRepository creates a new PostgreSQL recipe repository.
func NewRecipeRepository(db *DB) repository.RecipeRepository {
	return &recipeRepository{db: db}
}

// Create persists the recipe row and its ingredient rows in one
// transaction; partial writes are never observable.
func (r *recipeRepository) Create(ctx context.Context, recipe *domain.Recipe, lines []domain.IngredientLine) error {
	return r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO recipes (author_id, name, text, cooking_time, image, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`,
			recipe.AuthorID,
			recipe.Name,
			recipe.Text,
			recipe.CookingTime,
			recipe.Image,
			recipe.CreatedAt,
		).Scan(&recipe.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", domain.ErrRecipeAlreadyExists, recipe.Name)
			}
			return fmt.Errorf("failed to create recipe: %w", err)
		}

		return insertIngredientLines(ctx, tx, recipe.ID, lines)
	})
}

// Update updates the recipe row and, when lines is non-nil, replaces
// the full ingredient set (clear-then-insert) in the same transaction.
func (r *recipeRepository) Update(ctx context.Context, recipe *domain.Recipe, lines []domain.IngredientLine) error {
	return r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE recipes
			SET name = $1, text = $2, cooking_time = $3, image = $4, updated_at = now()
			WHERE id = $5
		`,
			recipe.Name,
			recipe.Text,
			recipe.CookingTime,
			recipe.Image,
			recipe.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %q", domain.ErrRecipeAlreadyExists, recipe.Name)
			}
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrRecipeNotFound
		}

		if lines == nil {
			return nil
		}

		if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipe.ID); err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}

		return insertIngredientLines(ctx, tx, recipe.ID, lines)
	})
}

// insertIngredientLines bulk-inserts the ingredient rows for a recipe.
func insertIngredientLines(ctx context.Context, tx pgx.Tx, recipeID int64, lines []domain.IngredientLine) error {
	for _, line := range lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount)
			VALUES ($1, $2, $3)
		`, recipeID, line.IngredientID, line.Amount)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: id %d", domain.ErrIngredientNotFound, line.IngredientID)
			}
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: id %d", domain.ErrDuplicateIngredient, line.IngredientID)
			}
			return fmt.Errorf("failed to insert ingredient line: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a recipe by ID.
func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	recipe := &domain.Recipe{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, author_id, name, text, cooking_time, image, created_at
		FROM recipes
		WHERE id = $1
	`, id).Scan(
		&recipe.ID,
		&recipe.AuthorID,
		&recipe.Name,
		&recipe.Text,
		&recipe.CookingTime,
		&recipe.Image,
		&recipe.CreatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	return recipe, nil
}

// Delete deletes a recipe by ID. Ingredient and relation rows cascade
// via the schema's foreign keys.
func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecipeNotFound
	}

	return nil
}

// Ingredients returns the recipe's ingredient rows with denormalized
// name and unit, ordered by ingredient name.
func (r *recipeRepository) Ingredients(ctx context.Context, recipeID int64) ([]*domain.RecipeIngredient, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT ri.recipe_id, ri.ingredient_id, ri.amount, i.name, i.measurement_unit
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = $1
		ORDER BY i.name
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe ingredients: %w", err)
	}
	defer rows.Close()

	var items []*domain.RecipeIngredient
	for rows.Next() {
		ri := &domain.RecipeIngredient{}
		if err := rows.Scan(&ri.RecipeID, &ri.IngredientID, &ri.Amount, &ri.Name, &ri.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		items = append(items, ri)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe ingredients: %w", err)
	}

	return items, nil
}

// Query returns recipes matching the filter, newest-first.
func (r *recipeRepository) Query(ctx context.Context, filter repository.RecipeFilter, opts repository.ListOptions) (*repository.ListResult[domain.Recipe], error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AuthorID > 0 {
		where += ` AND r.author_id = ` + arg(filter.AuthorID)
	}
	if filter.FavoritedBy > 0 {
		where += ` AND EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = r.id AND f.user_id = ` + arg(filter.FavoritedBy) + `)`
	}
	if filter.InCartOf > 0 {
		where += ` AND EXISTS (SELECT 1 FROM shopping_cart_items c WHERE c.recipe_id = r.id AND c.user_id = ` + arg(filter.InCartOf) + `)`
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM recipes r` + where
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	query := `
		SELECT r.id, r.author_id, r.name, r.text, r.cooking_time, r.image, r.created_at
		FROM recipes r` + where + `
		ORDER BY r.id DESC
		LIMIT ` + arg(opts.Limit) + ` OFFSET ` + arg(opts.Offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	recipes, err := scanRecipes(rows)
	if err != nil {
		return nil, err
	}

	return &repository.ListResult[domain.Recipe]{
		Items:  recipes,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// ListByAuthor returns the author's recipes newest-first plus the total count.
func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]*domain.Recipe, int64, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM recipes WHERE author_id = $1`, authorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count author recipes: %w", err)
	}

	query := `
		SELECT id, author_id, name, text, cooking_time, image, created_at
		FROM recipes
		WHERE author_id = $1
		ORDER BY id DESC
	`
	args := []interface{}{authorID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list author recipes: %w", err)
	}
	defer rows.Close()

	recipes, err := scanRecipes(rows)
	if err != nil {
		return nil, 0, err
	}

	return recipes, total, nil
}

// Exists checks if a recipe with the given ID exists.
func (r *recipeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recipe existence: %w", err)
	}
	return exists, nil
}

// scanRecipes reads recipe rows produced by the seven-column selects above.
func scanRecipes(rows pgx.Rows) ([]*domain.Recipe, error) {
	var recipes []*domain.Recipe
	for rows.Next() {
		recipe := &domain.Recipe{}
		err := rows.Scan(
			&recipe.ID,
			&recipe.AuthorID,
			&recipe.Name,
			&recipe.Text,
			&recipe.CookingTime,
			&recipe.Image,
			&recipe.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}

	return recipes, nil
}

// Ensure recipeRepository implements repository.RecipeRepository.
var _ repository.RecipeRepository = (*recipeRepository)(nil)
