package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/domain"
)

// relationFixture bundles the repositories behind a RelationService.
type relationFixture struct {
	users     *MockUserRepository
	recipes   *MockRecipeRepository
	relations *MockRelationRepository
	svc       *RelationService
}

func newRelationFixture() *relationFixture {
	f := &relationFixture{
		users:     NewMockUserRepository(),
		recipes:   NewMockRecipeRepository(nil),
		relations: NewMockRelationRepository(),
	}
	f.svc = NewRelationService(f.relations, f.recipes, f.users, zerolog.Nop())
	return f
}

func (f *relationFixture) addUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user := domain.NewUser(username+"@example.com", username, "Test", "User", "hash")
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return user
}

func (f *relationFixture) addRecipe(t *testing.T, authorID int64, name string) *domain.Recipe {
	t.Helper()
	recipe := domain.NewRecipe(authorID, name, "steps", 10, "img.png")
	if err := f.recipes.Create(context.Background(), recipe, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return recipe
}

func TestRelationService_Add(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.RelationKind
		setup   func(f *relationFixture, rel *domain.Relation)
		wantErr error
	}{
		{
			name: "favorite a recipe",
			kind: domain.RelationFavorite,
		},
		{
			name: "add recipe to cart",
			kind: domain.RelationShoppingCart,
		},
		{
			name: "subscribe to a user",
			kind: domain.RelationSubscription,
		},
		{
			name: "favorite twice",
			kind: domain.RelationFavorite,
			setup: func(f *relationFixture, rel *domain.Relation) {
				if err := f.svc.Add(context.Background(), *rel); err != nil {
					t.Fatalf("Add() setup error = %v", err)
				}
			},
			wantErr: domain.ErrAlreadyFavorited,
		},
		{
			name: "cart twice",
			kind: domain.RelationShoppingCart,
			setup: func(f *relationFixture, rel *domain.Relation) {
				if err := f.svc.Add(context.Background(), *rel); err != nil {
					t.Fatalf("Add() setup error = %v", err)
				}
			},
			wantErr: domain.ErrAlreadyInCart,
		},
		{
			name: "subscribe twice",
			kind: domain.RelationSubscription,
			setup: func(f *relationFixture, rel *domain.Relation) {
				if err := f.svc.Add(context.Background(), *rel); err != nil {
					t.Fatalf("Add() setup error = %v", err)
				}
			},
			wantErr: domain.ErrAlreadySubscribed,
		},
		{
			name: "favorite a missing recipe",
			kind: domain.RelationFavorite,
			setup: func(f *relationFixture, rel *domain.Relation) {
				rel.ObjectID = 999
			},
			wantErr: domain.ErrRecipeNotFound,
		},
		{
			name: "subscribe to a missing user",
			kind: domain.RelationSubscription,
			setup: func(f *relationFixture, rel *domain.Relation) {
				rel.ObjectID = 999
			},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name: "subscribe to self",
			kind: domain.RelationSubscription,
			setup: func(f *relationFixture, rel *domain.Relation) {
				rel.ObjectID = rel.SubjectID
			},
			wantErr: domain.ErrSelfSubscription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRelationFixture()
			subject := f.addUser(t, "subscriber")
			publisher := f.addUser(t, "publisher")
			recipe := f.addRecipe(t, publisher.ID, "Pancakes")

			rel := domain.Relation{SubjectID: subject.ID, Kind: tt.kind}
			if tt.kind.UserToUser() {
				rel.ObjectID = publisher.ID
			} else {
				rel.ObjectID = recipe.ID
			}
			if tt.setup != nil {
				tt.setup(f, &rel)
			}

			err := f.svc.Add(context.Background(), rel)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Add() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Add() unexpected error = %v", err)
			}
			exists, err := f.relations.Exists(context.Background(), rel)
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if !exists {
				t.Error("relation not stored")
			}
		})
	}
}

func TestRelationService_Add_UnknownKind(t *testing.T) {
	f := newRelationFixture()
	if err := f.svc.Add(context.Background(), domain.Relation{Kind: "bogus"}); err == nil {
		t.Error("Add() expected error for unknown kind")
	}
}

func TestRelationService_Remove(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.RelationKind
		seed    bool
		wantErr error
	}{
		{
			name: "remove favorite",
			kind: domain.RelationFavorite,
			seed: true,
		},
		{
			name:    "remove absent favorite",
			kind:    domain.RelationFavorite,
			wantErr: domain.ErrNotFavorited,
		},
		{
			name:    "remove absent cart entry",
			kind:    domain.RelationShoppingCart,
			wantErr: domain.ErrNotInCart,
		},
		{
			name:    "remove absent subscription",
			kind:    domain.RelationSubscription,
			wantErr: domain.ErrNotSubscribed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRelationFixture()
			subject := f.addUser(t, "subscriber")
			publisher := f.addUser(t, "publisher")
			recipe := f.addRecipe(t, publisher.ID, "Pancakes")

			rel := domain.Relation{SubjectID: subject.ID, Kind: tt.kind}
			if tt.kind.UserToUser() {
				rel.ObjectID = publisher.ID
			} else {
				rel.ObjectID = recipe.ID
			}
			if tt.seed {
				if err := f.relations.Add(context.Background(), rel); err != nil {
					t.Fatalf("Add() error = %v", err)
				}
			}

			err := f.svc.Remove(context.Background(), rel)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Remove() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Remove() unexpected error = %v", err)
			}
		})
	}
}

func TestRelationService_Remove_MissingObject(t *testing.T) {
	f := newRelationFixture()
	subject := f.addUser(t, "subscriber")

	err := f.svc.Remove(context.Background(), domain.Relation{
		SubjectID: subject.ID,
		ObjectID:  999,
		Kind:      domain.RelationFavorite,
	})
	if !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Errorf("Remove() error = %v, want %v", err, domain.ErrRecipeNotFound)
	}
}

func TestRelationService_ListSubscriptions(t *testing.T) {
	f := newRelationFixture()
	subscriber := f.addUser(t, "subscriber")
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	for i := 0; i < 3; i++ {
		f.addRecipe(t, alice.ID, "Dish "+string(rune('A'+i)))
	}
	f.addRecipe(t, bob.ID, "Bread")

	subscribe := func(publisherID int64) {
		t.Helper()
		err := f.svc.Add(context.Background(), domain.Relation{
			SubjectID: subscriber.ID,
			ObjectID:  publisherID,
			Kind:      domain.RelationSubscription,
		})
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	subscribe(alice.ID)
	subscribe(bob.ID)

	views, total, err := f.svc.ListSubscriptions(context.Background(), ListSubscriptionsInput{
		SubscriberID: subscriber.ID,
		RecipesLimit: 2,
	})
	if err != nil {
		t.Fatalf("ListSubscriptions() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d subscriptions, want 2", len(views))
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}

	// Subscription order is preserved.
	if views[0].Publisher.ID != alice.ID || views[1].Publisher.ID != bob.ID {
		t.Errorf("unexpected publisher order: %d, %d", views[0].Publisher.ID, views[1].Publisher.ID)
	}
	// The preview is truncated but the count is not.
	if len(views[0].Recipes) != 2 {
		t.Errorf("alice preview has %d recipes, want 2", len(views[0].Recipes))
	}
	if views[0].RecipesCount != 3 {
		t.Errorf("alice RecipesCount = %d, want 3", views[0].RecipesCount)
	}
	if len(views[1].Recipes) != 1 || views[1].RecipesCount != 1 {
		t.Errorf("bob preview = %d recipes, count %d, want 1 and 1",
			len(views[1].Recipes), views[1].RecipesCount)
	}
}

func TestRelationService_ListSubscriptions_Empty(t *testing.T) {
	f := newRelationFixture()
	subscriber := f.addUser(t, "subscriber")

	views, total, err := f.svc.ListSubscriptions(context.Background(), ListSubscriptionsInput{
		SubscriberID: subscriber.ID,
	})
	if err != nil {
		t.Fatalf("ListSubscriptions() error = %v", err)
	}
	if len(views) != 0 {
		t.Errorf("got %d subscriptions, want 0", len(views))
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}

func TestRelationService_ListSubscriptions_Paginated(t *testing.T) {
	f := newRelationFixture()
	subscriber := f.addUser(t, "subscriber")

	publishers := make([]*domain.User, 0, 3)
	for _, name := range []string{"alice", "bob", "carol"} {
		publishers = append(publishers, f.addUser(t, name))
	}
	for _, p := range publishers {
		err := f.svc.Add(context.Background(), domain.Relation{
			SubjectID: subscriber.ID,
			ObjectID:  p.ID,
			Kind:      domain.RelationSubscription,
		})
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	views, total, err := f.svc.ListSubscriptions(context.Background(), ListSubscriptionsInput{
		SubscriberID: subscriber.ID,
		Limit:        2,
		Offset:       2,
	})
	if err != nil {
		t.Fatalf("ListSubscriptions() error = %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d subscriptions on page, want 1", len(views))
	}
	if views[0].Publisher.ID != publishers[2].ID {
		t.Errorf("page publisher = %d, want %d", views[0].Publisher.ID, publishers[2].ID)
	}
	// Total reflects all subscriptions, not the page.
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}
