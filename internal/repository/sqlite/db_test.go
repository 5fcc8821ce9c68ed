package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/repository"
)

func newTestRepositories(t *testing.T) *repository.Repositories {
	t.Helper()

	ctx := context.Background()
	db, err := NewDB(ctx, DefaultConfig(filepath.Join(t.TempDir(), "test.db")), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	return NewRepositories(db)
}

func seedUser(t *testing.T, repos *repository.Repositories, username string) *domain.User {
	t.Helper()

	user := domain.NewUser(username+"@example.com", username, "Test", "User", "not-a-real-hash")
	require.NoError(t, repos.User.Create(context.Background(), user))
	return user
}

func seedRecipe(t *testing.T, repos *repository.Repositories, authorID int64, name string, lines []domain.IngredientLine) *domain.Recipe {
	t.Helper()

	recipe := domain.NewRecipe(authorID, name, "Instructions.", 10, "images/"+name+".png")
	require.NoError(t, repos.Recipe.Create(context.Background(), recipe, lines))
	return recipe
}

// Deleting a recipe must take its ingredient rows, favorites, and cart
// entries with it, leaving other recipes' rows untouched.
func TestRecipeDelete_CascadesDependentRows(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)

	author := seedUser(t, repos, "author")
	shopper := seedUser(t, repos, "shopper")

	// Two salt entries with distinct ids but the same display name.
	_, err := repos.Ingredient.BulkImport(ctx, []*domain.Ingredient{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "pinch"},
	})
	require.NoError(t, err)
	salts, err := repos.Ingredient.List(ctx, "salt")
	require.NoError(t, err)
	require.Len(t, salts, 2)

	doomed := seedRecipe(t, repos, author.ID, "Soup",
		[]domain.IngredientLine{{IngredientID: salts[0].ID, Amount: 10}})
	kept := seedRecipe(t, repos, author.ID, "Bread",
		[]domain.IngredientLine{{IngredientID: salts[1].ID, Amount: 5}})

	for _, rel := range []domain.Relation{
		{SubjectID: shopper.ID, ObjectID: doomed.ID, Kind: domain.RelationShoppingCart},
		{SubjectID: shopper.ID, ObjectID: kept.ID, Kind: domain.RelationShoppingCart},
		{SubjectID: shopper.ID, ObjectID: doomed.ID, Kind: domain.RelationFavorite},
	} {
		require.NoError(t, repos.Relation.Add(ctx, rel))
	}

	require.NoError(t, repos.Recipe.Delete(ctx, doomed.ID))

	cart, err := repos.Relation.ListObjects(ctx, domain.RelationShoppingCart, shopper.ID, repository.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, []int64{kept.ID}, cart)

	favorites, err := repos.Relation.ListObjects(ctx, domain.RelationFavorite, shopper.ID, repository.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, favorites)

	rows, err := repos.Recipe.Ingredients(ctx, doomed.ID)
	require.NoError(t, err)
	require.Empty(t, rows)

	// The surviving recipe's rows are intact.
	rows, err = repos.Recipe.Ingredients(ctx, kept.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

// Foreign keys must be enforced on every connection: inserting a
// relation against a nonexistent recipe is a constraint violation, not
// a silent orphan row.
func TestRelationAdd_MissingRecipeRejected(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)

	shopper := seedUser(t, repos, "shopper")

	err := repos.Relation.Add(ctx, domain.Relation{
		SubjectID: shopper.ID,
		ObjectID:  999,
		Kind:      domain.RelationFavorite,
	})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

// Deleting a user removes their subscriptions in both directions.
func TestUserDelete_CascadesSubscriptions(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepositories(t)

	subscriber := seedUser(t, repos, "subscriber")
	publisher := seedUser(t, repos, "publisher")

	require.NoError(t, repos.Relation.Add(ctx, domain.Relation{
		SubjectID: subscriber.ID,
		ObjectID:  publisher.ID,
		Kind:      domain.RelationSubscription,
	}))

	require.NoError(t, repos.User.Delete(ctx, publisher.ID))

	subs, err := repos.Relation.ListObjects(ctx, domain.RelationSubscription, subscriber.ID, repository.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, subs)
}
