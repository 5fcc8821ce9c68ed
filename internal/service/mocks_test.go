package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/foodshare-app/foodshare/internal/auth"
	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/media"
	"github.com/foodshare-app/foodshare/internal/repository"
)

// testImagePayload is a well-formed data URI holding a stand-in image.
const testImagePayload = "data:image/png;base64,ZmFrZXBuZw=="

// =============================================================================
// Mock repositories
// =============================================================================

// MockUserRepository is an in-memory repository.UserRepository.
type MockUserRepository struct {
	users  map[int64]*domain.User
	nextID int64
	getErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return domain.ErrUserAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	var users []*domain.User
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return &repository.ListResult[domain.User]{
		Items:  users,
		Total:  int64(len(users)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	return err == nil, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

// MockIngredientRepository is an in-memory repository.IngredientRepository.
type MockIngredientRepository struct {
	ingredients map[int64]*domain.Ingredient
	nextID      int64
	listCalls   int
	listErr     error
}

func NewMockIngredientRepository() *MockIngredientRepository {
	return &MockIngredientRepository{
		ingredients: make(map[int64]*domain.Ingredient),
		nextID:      1,
	}
}

func (m *MockIngredientRepository) Add(name, unit string) *domain.Ingredient {
	ing := &domain.Ingredient{ID: m.nextID, Name: name, MeasurementUnit: unit}
	m.ingredients[m.nextID] = ing
	m.nextID++
	return ing
}

func (m *MockIngredientRepository) GetByID(ctx context.Context, id int64) (*domain.Ingredient, error) {
	if ing, ok := m.ingredients[id]; ok {
		return ing, nil
	}
	return nil, domain.ErrIngredientNotFound
}

func (m *MockIngredientRepository) List(ctx context.Context, namePrefix string) ([]*domain.Ingredient, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*domain.Ingredient
	for _, ing := range m.ingredients {
		if namePrefix == "" || strings.HasPrefix(strings.ToLower(ing.Name), strings.ToLower(namePrefix)) {
			result = append(result, ing)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockIngredientRepository) BulkImport(ctx context.Context, records []*domain.Ingredient) (int64, error) {
	var inserted int64
	for _, rec := range records {
		dup := false
		for _, ing := range m.ingredients {
			if ing.Name == rec.Name && ing.MeasurementUnit == rec.MeasurementUnit {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		m.Add(rec.Name, rec.MeasurementUnit)
		inserted++
	}
	return inserted, nil
}

func (m *MockIngredientRepository) ExistAll(ctx context.Context, ids []int64) (int64, bool, error) {
	for _, id := range ids {
		if _, ok := m.ingredients[id]; !ok {
			return id, false, nil
		}
	}
	return 0, true, nil
}

// MockRecipeRepository is an in-memory repository.RecipeRepository.
type MockRecipeRepository struct {
	recipes map[int64]*domain.Recipe
	lines   map[int64][]domain.IngredientLine
	catalog *MockIngredientRepository
	nextID  int64
}

func NewMockRecipeRepository(catalog *MockIngredientRepository) *MockRecipeRepository {
	return &MockRecipeRepository{
		recipes: make(map[int64]*domain.Recipe),
		lines:   make(map[int64][]domain.IngredientLine),
		catalog: catalog,
		nextID:  1,
	}
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *domain.Recipe, lines []domain.IngredientLine) error {
	for _, r := range m.recipes {
		if r.AuthorID == recipe.AuthorID && r.Name == recipe.Name {
			return domain.ErrRecipeAlreadyExists
		}
	}
	recipe.ID = m.nextID
	m.nextID++
	m.recipes[recipe.ID] = recipe
	m.lines[recipe.ID] = lines
	return nil
}

func (m *MockRecipeRepository) Update(ctx context.Context, recipe *domain.Recipe, lines []domain.IngredientLine) error {
	if _, ok := m.recipes[recipe.ID]; !ok {
		return domain.ErrRecipeNotFound
	}
	m.recipes[recipe.ID] = recipe
	if lines != nil {
		m.lines[recipe.ID] = lines
	}
	return nil
}

func (m *MockRecipeRepository) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	if r, ok := m.recipes[id]; ok {
		return r, nil
	}
	return nil, domain.ErrRecipeNotFound
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.recipes[id]; !ok {
		return domain.ErrRecipeNotFound
	}
	delete(m.recipes, id)
	delete(m.lines, id)
	return nil
}

func (m *MockRecipeRepository) Ingredients(ctx context.Context, recipeID int64) ([]*domain.RecipeIngredient, error) {
	var items []*domain.RecipeIngredient
	for _, line := range m.lines[recipeID] {
		ri := &domain.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		}
		if m.catalog != nil {
			if ing, ok := m.catalog.ingredients[line.IngredientID]; ok {
				ri.Name = ing.Name
				ri.MeasurementUnit = ing.MeasurementUnit
			}
		}
		items = append(items, ri)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (m *MockRecipeRepository) Query(ctx context.Context, filter repository.RecipeFilter, opts repository.ListOptions) (*repository.ListResult[domain.Recipe], error) {
	var recipes []*domain.Recipe
	for _, r := range m.recipes {
		if filter.AuthorID > 0 && r.AuthorID != filter.AuthorID {
			continue
		}
		recipes = append(recipes, r)
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].ID > recipes[j].ID })
	return &repository.ListResult[domain.Recipe]{
		Items:  recipes,
		Total:  int64(len(recipes)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

func (m *MockRecipeRepository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]*domain.Recipe, int64, error) {
	var recipes []*domain.Recipe
	for _, r := range m.recipes {
		if r.AuthorID == authorID {
			recipes = append(recipes, r)
		}
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].ID > recipes[j].ID })
	total := int64(len(recipes))
	if limit > 0 && len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes, total, nil
}

func (m *MockRecipeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := m.recipes[id]
	return ok, nil
}

// MockRelationRepository is an in-memory repository.RelationRepository.
type MockRelationRepository struct {
	pairs map[string][]int64 // "kind:subject" -> object ids in insertion order
}

func NewMockRelationRepository() *MockRelationRepository {
	return &MockRelationRepository{pairs: make(map[string][]int64)}
}

func relKey(kind domain.RelationKind, subjectID int64) string {
	return fmt.Sprintf("%s:%d", kind, subjectID)
}

func (m *MockRelationRepository) Add(ctx context.Context, rel domain.Relation) error {
	key := relKey(rel.Kind, rel.SubjectID)
	for _, id := range m.pairs[key] {
		if id == rel.ObjectID {
			return rel.Kind.AlreadyExistsError()
		}
	}
	m.pairs[key] = append(m.pairs[key], rel.ObjectID)
	return nil
}

func (m *MockRelationRepository) Remove(ctx context.Context, rel domain.Relation) error {
	key := relKey(rel.Kind, rel.SubjectID)
	for i, id := range m.pairs[key] {
		if id == rel.ObjectID {
			m.pairs[key] = append(m.pairs[key][:i], m.pairs[key][i+1:]...)
			return nil
		}
	}
	return rel.Kind.NotFoundError()
}

func (m *MockRelationRepository) Exists(ctx context.Context, rel domain.Relation) (bool, error) {
	for _, id := range m.pairs[relKey(rel.Kind, rel.SubjectID)] {
		if id == rel.ObjectID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRelationRepository) ListObjects(ctx context.Context, kind domain.RelationKind, subjectID int64, opts repository.ListOptions) ([]int64, error) {
	ids := m.pairs[relKey(kind, subjectID)]
	if opts.Offset > 0 {
		if opts.Offset >= len(ids) {
			return nil, nil
		}
		ids = ids[opts.Offset:]
	}
	if opts.Limit > 0 && len(ids) > opts.Limit {
		ids = ids[:opts.Limit]
	}
	return ids, nil
}

func (m *MockRelationRepository) Count(ctx context.Context, kind domain.RelationKind, subjectID int64) (int64, error) {
	return int64(len(m.pairs[relKey(kind, subjectID)])), nil
}

// =============================================================================
// Mock media store, token maker, cache
// =============================================================================

// MockMediaStore records stored objects in memory.
type MockMediaStore struct {
	objects map[string][]byte
	saveErr error
}

func NewMockMediaStore() *MockMediaStore {
	return &MockMediaStore{objects: make(map[string][]byte)}
}

func (m *MockMediaStore) Save(ctx context.Context, key, contentType string, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.objects[key] = data
	return nil
}

func (m *MockMediaStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, media.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (m *MockMediaStore) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

// MockTokenMaker issues predictable tokens.
type MockTokenMaker struct{}

func (m *MockTokenMaker) CreateToken(userID int64, isAdmin bool) (string, error) {
	return fmt.Sprintf("token-%d", userID), nil
}

func (m *MockTokenMaker) VerifyToken(token string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}

// MockCache is an in-memory repository.Cache without expiry.
type MockCache struct {
	data     map[string][]byte
	counters map[string]int64
	gets     int
	sets     int
}

func NewMockCache() *MockCache {
	return &MockCache{
		data:     make(map[string][]byte),
		counters: make(map[string]int64),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.gets++
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, repository.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.sets++
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCache) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	m.counters[key] += delta
	return m.counters[key], nil
}
