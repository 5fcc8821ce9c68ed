package postgres

import (
	"context"
	"fmt"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/repository"
)

// relationTable describes the storage mapping for one relation kind.
type relationTable struct {
	name       string
	subjectCol string
	objectCol  string
}

// relationTables maps each relation kind to its table. All three tables
// share the same shape: (subject, object, created_at) with a composite
// primary key enforcing at-most-one-relation-per-pair.
var relationTables = map[domain.RelationKind]relationTable{
	domain.RelationFavorite:     {name: "favorites", subjectCol: "user_id", objectCol: "recipe_id"},
	domain.RelationShoppingCart: {name: "shopping_cart_items", subjectCol: "user_id", objectCol: "recipe_id"},
	domain.RelationSubscription: {name: "subscriptions", subjectCol: "subscriber_id", objectCol: "publisher_id"},
}

// relationRepository implements repository.RelationRepository for PostgreSQL.
type relationRepository struct {
	db *DB
}

// NewRelationRepository creates a new PostgreSQL relation repository.
func NewRelationRepository(db *DB) repository.RelationRepository {
	return &relationRepository{db: db}
}

func tableFor(kind domain.RelationKind) (relationTable, error) {
	t, ok := relationTables[kind]
	if !ok {
		return relationTable{}, fmt.Errorf("unknown relation kind %q", kind)
	}
	return t, nil
}

// Add inserts the pair. The composite primary key is the arbiter under
// concurrency: of two racing inserts exactly one succeeds.
func (r *relationRepository) Add(ctx context.Context, rel domain.Relation) error {
	t, err := tableFor(rel.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
		t.name, t.subjectCol, t.objectCol,
	)

	_, err = r.db.Pool.Exec(ctx, query, rel.SubjectID, rel.ObjectID)
	if err != nil {
		if isUniqueViolation(err) {
			return rel.Kind.AlreadyExistsError()
		}
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to add %s relation: %w", rel.Kind, err)
	}

	return nil
}

// Remove deletes the pair, reporting the kind's not-found sentinel when
// no row was present.
func (r *relationRepository) Remove(ctx context.Context, rel domain.Relation) error {
	t, err := tableFor(rel.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		t.name, t.subjectCol, t.objectCol,
	)

	tag, err := r.db.Pool.Exec(ctx, query, rel.SubjectID, rel.ObjectID)
	if err != nil {
		return fmt.Errorf("failed to remove %s relation: %w", rel.Kind, err)
	}

	if tag.RowsAffected() == 0 {
		return rel.Kind.NotFoundError()
	}

	return nil
}

// Exists checks if the pair is present.
func (r *relationRepository) Exists(ctx context.Context, rel domain.Relation) (bool, error) {
	t, err := tableFor(rel.Kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		t.name, t.subjectCol, t.objectCol,
	)

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, rel.SubjectID, rel.ObjectID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s relation: %w", rel.Kind, err)
	}

	return exists, nil
}

// ListObjects returns object ids linked to the subject in insertion order.
func (r *relationRepository) ListObjects(ctx context.Context, kind domain.RelationKind, subjectID int64, opts repository.ListOptions) ([]int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1 ORDER BY created_at, %s`,
		t.objectCol, t.name, t.subjectCol, t.objectCol,
	)
	args := []interface{}{subjectID}
	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s relations: %w", kind, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan relation object: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s relations: %w", kind, err)
	}

	return ids, nil
}

// Count returns the number of pairs with the given subject.
func (r *relationRepository) Count(ctx context.Context, kind domain.RelationKind, subjectID int64) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, t.name, t.subjectCol)

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, subjectID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s relations: %w", kind, err)
	}

	return count, nil
}

// Ensure relationRepository implements repository.RelationRepository.
var _ repository.RelationRepository = (*relationRepository)(nil)
