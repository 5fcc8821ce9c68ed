package domain

import (
	"errors"
	"testing"
)

func TestNormalizeIngredientLines(t *testing.T) {
	tests := []struct {
		name    string
		lines   []IngredientLine
		merge   bool
		want    []IngredientLine
		wantErr error
	}{
		{
			name:    "empty submission",
			lines:   nil,
			wantErr: ErrNoIngredients,
		},
		{
			name:    "zero amount",
			lines:   []IngredientLine{{IngredientID: 1, Amount: 0}},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			lines:   []IngredientLine{{IngredientID: 1, Amount: -5}},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "duplicate rejected",
			lines: []IngredientLine{
				{IngredientID: 1, Amount: 2},
				{IngredientID: 1, Amount: 3},
			},
			merge:   false,
			wantErr: ErrDuplicateIngredient,
		},
		{
			name: "duplicate merged",
			lines: []IngredientLine{
				{IngredientID: 1, Amount: 2},
				{IngredientID: 2, Amount: 7},
				{IngredientID: 1, Amount: 3},
			},
			merge: true,
			want: []IngredientLine{
				{IngredientID: 1, Amount: 5},
				{IngredientID: 2, Amount: 7},
			},
		},
		{
			name: "unique lines pass through",
			lines: []IngredientLine{
				{IngredientID: 3, Amount: 1},
				{IngredientID: 4, Amount: 10},
			},
			merge: false,
			want: []IngredientLine{
				{IngredientID: 3, Amount: 1},
				{IngredientID: 4, Amount: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeIngredientLines(tt.lines, tt.merge)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d lines, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"salt", "Salt"},
		{"SALT", "Salt"},
		{"olive oil", "Olive oil"},
	}

	for _, tt := range tests {
		if got := Capitalize(tt.in); got != tt.want {
			t.Errorf("Capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"alice", "a.b+c@d-e", "user_1"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{"", "has space", "semi;colon"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("ValidateUsername(%q) = nil, want error", u)
		}
	}
}
