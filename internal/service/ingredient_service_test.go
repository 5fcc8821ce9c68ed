package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/domain"
)

func TestIngredientService_List(t *testing.T) {
	repo := NewMockIngredientRepository()
	repo.Add("salt", "g")
	repo.Add("sugar", "g")
	repo.Add("milk", "ml")
	svc := NewIngredientService(repo, nil, 0, zerolog.Nop())

	tests := []struct {
		name      string
		prefix    string
		wantNames []string
	}{
		{
			name:      "full catalog",
			prefix:    "",
			wantNames: []string{"milk", "salt", "sugar"},
		},
		{
			name:      "prefix match",
			prefix:    "s",
			wantNames: []string{"salt", "sugar"},
		},
		{
			name:      "case-insensitive prefix",
			prefix:    "MI",
			wantNames: []string{"milk"},
		},
		{
			name:   "no match",
			prefix: "xyz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), tt.prefix)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != len(tt.wantNames) {
				t.Fatalf("List() returned %d ingredients, want %d", len(got), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if got[i].Name != want {
					t.Errorf("List()[%d].Name = %q, want %q", i, got[i].Name, want)
				}
			}
		})
	}
}

func TestIngredientService_List_Caching(t *testing.T) {
	repo := NewMockIngredientRepository()
	repo.Add("salt", "g")
	cache := NewMockCache()
	svc := NewIngredientService(repo, cache, time.Minute, zerolog.Nop())

	if _, err := svc.List(context.Background(), ""); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("repository hit %d times, want 1", repo.listCalls)
	}

	// Second read is served from the cache.
	got, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.listCalls != 1 {
		t.Errorf("repository hit %d times after cached read, want 1", repo.listCalls)
	}
	if len(got) != 1 || got[0].Name != "salt" {
		t.Errorf("cached result = %v, want single salt entry", got)
	}

	// Corrupt entries are dropped and re-read from the repository.
	cache.data[catalogCacheKey+"0:"] = []byte("{not json")
	if _, err := svc.List(context.Background(), ""); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.listCalls != 2 {
		t.Errorf("repository hit %d times after corrupt entry, want 2", repo.listCalls)
	}
}

func TestIngredientService_Get(t *testing.T) {
	repo := NewMockIngredientRepository()
	ing := repo.Add("salt", "g")
	svc := NewIngredientService(repo, nil, 0, zerolog.Nop())

	got, err := svc.Get(context.Background(), ing.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "salt" {
		t.Errorf("Get().Name = %q, want salt", got.Name)
	}

	if _, err := svc.Get(context.Background(), 999); !errors.Is(err, domain.ErrIngredientNotFound) {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrIngredientNotFound)
	}
}

func TestIngredientService_Import(t *testing.T) {
	tests := []struct {
		name         string
		records      []*domain.Ingredient
		setupRepo    func(*MockIngredientRepository)
		wantErr      error
		wantInserted int64
		wantSkipped  int64
	}{
		{
			name: "all new records",
			records: []*domain.Ingredient{
				{Name: "salt", MeasurementUnit: "g"},
				{Name: "milk", MeasurementUnit: "ml"},
			},
			wantInserted: 2,
		},
		{
			name: "existing pairs skipped",
			records: []*domain.Ingredient{
				{Name: "salt", MeasurementUnit: "g"},
				{Name: "milk", MeasurementUnit: "ml"},
			},
			setupRepo: func(repo *MockIngredientRepository) {
				repo.Add("salt", "g")
			},
			wantInserted: 1,
			wantSkipped:  1,
		},
		{
			name: "same name different unit inserts",
			records: []*domain.Ingredient{
				{Name: "salt", MeasurementUnit: "kg"},
			},
			setupRepo: func(repo *MockIngredientRepository) {
				repo.Add("salt", "g")
			},
			wantInserted: 1,
		},
		{
			name: "invalid record fails batch",
			records: []*domain.Ingredient{
				{Name: "salt", MeasurementUnit: "g"},
				{Name: "", MeasurementUnit: "ml"},
			},
			wantErr: domain.ErrInvalidIngredientName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockIngredientRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			svc := NewIngredientService(repo, nil, 0, zerolog.Nop())

			out, err := svc.Import(context.Background(), ImportIngredientsInput{Records: tt.records})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Import() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Import() unexpected error = %v", err)
			}
			if out.Inserted != tt.wantInserted {
				t.Errorf("Import().Inserted = %d, want %d", out.Inserted, tt.wantInserted)
			}
			if out.Skipped != tt.wantSkipped {
				t.Errorf("Import().Skipped = %d, want %d", out.Skipped, tt.wantSkipped)
			}
		})
	}
}

func TestIngredientService_Import_InvalidatesCache(t *testing.T) {
	repo := NewMockIngredientRepository()
	repo.Add("salt", "g")
	cache := NewMockCache()
	svc := NewIngredientService(repo, cache, time.Minute, zerolog.Nop())

	// Prime both the full-catalog page and a prefix-filtered page.
	if _, err := svc.List(context.Background(), ""); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := svc.List(context.Background(), "s"); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("repository hit %d times while priming, want 2", repo.listCalls)
	}

	_, err := svc.Import(context.Background(), ImportIngredientsInput{
		Records: []*domain.Ingredient{{Name: "sugar", MeasurementUnit: "g"}},
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	// Both pages must be refetched and reflect the imported record.
	full, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(full) != 2 {
		t.Errorf("full catalog has %d entries after import, want 2", len(full))
	}
	filtered, err := svc.List(context.Background(), "s")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("prefix page has %d entries after import, want 2", len(filtered))
	}
	if repo.listCalls != 4 {
		t.Errorf("repository hit %d times after import, want 4", repo.listCalls)
	}
}
