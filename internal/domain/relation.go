// Package domain contains the core business entities for Foodshare.
package domain

// RelationKind identifies one of the user-to-entity relation sets.
// Favorites and the shopping cart link a user to a recipe; a
// subscription links a user to another user (the publisher).
type RelationKind string

const (
	// RelationFavorite marks a recipe as favorited by a user.
	RelationFavorite RelationKind = "favorite"

	// RelationShoppingCart marks a recipe as queued in a user's cart.
	RelationShoppingCart RelationKind = "shopping_cart"

	// RelationSubscription subscribes a user to another user's recipes.
	RelationSubscription RelationKind = "subscription"
)

// Valid reports whether k is one of the known relation kinds.
func (k RelationKind) Valid() bool {
	switch k {
	case RelationFavorite, RelationShoppingCart, RelationSubscription:
		return true
	}
	return false
}

// UserToUser reports whether the relation links two users rather than
// a user and a recipe.
func (k RelationKind) UserToUser() bool {
	return k == RelationSubscription
}

// Relation is a single (subject, object) pair in one relation set.
// The pair carries no identity beyond its endpoints: it is unique per
// kind and cascade-deleted when either endpoint is deleted.
type Relation struct {
	// SubjectID is always a user id (the favoriter, cart owner, or
	// subscriber).
	SubjectID int64 `json:"subject_id"`

	// ObjectID is a recipe id, or a user id for subscriptions.
	ObjectID int64 `json:"object_id"`

	Kind RelationKind `json:"kind"`
}

// AlreadyExistsError returns the conflict sentinel matching the kind.
func (k RelationKind) AlreadyExistsError() error {
	switch k {
	case RelationFavorite:
		return ErrAlreadyFavorited
	case RelationShoppingCart:
		return ErrAlreadyInCart
	case RelationSubscription:
		return ErrAlreadySubscribed
	}
	return ErrRelationExists
}

// NotFoundError returns the not-found sentinel matching the kind.
func (k RelationKind) NotFoundError() error {
	switch k {
	case RelationFavorite:
		return ErrNotFavorited
	case RelationShoppingCart:
		return ErrNotInCart
	case RelationSubscription:
		return ErrNotSubscribed
	}
	return ErrRelationNotFound
}
