package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/foodshare-app/foodshare/internal/auth"
	"github.com/foodshare-app/foodshare/internal/domain"
)

func newUserService(repo *MockUserRepository, store *MockMediaStore) *UserService {
	logger := zerolog.Nop()
	return NewUserService(repo, &MockTokenMaker{}, store, bcrypt.MinCost, 1<<20, logger)
}

func seedUser(t *testing.T, repo *MockUserRepository, email, username, password string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	user := domain.NewUser(email, username, "Test", "User", hash)
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return user
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name      string
		input     RegisterInput
		setupRepo func(*MockUserRepository)
		wantErr   error
	}{
		{
			name: "successful registration",
			input: RegisterInput{
				Email:     "chef@example.com",
				Username:  "chef",
				FirstName: "Anna",
				LastName:  "Smith",
				Password:  "longenough",
			},
		},
		{
			name: "duplicate email",
			input: RegisterInput{
				Email:    "chef@example.com",
				Username: "otherchef",
				Password: "longenough",
			},
			setupRepo: func(repo *MockUserRepository) {
				seedUser(t, repo, "chef@example.com", "chef", "longenough")
			},
			wantErr: domain.ErrUserAlreadyExists,
		},
		{
			name: "duplicate username",
			input: RegisterInput{
				Email:    "other@example.com",
				Username: "chef",
				Password: "longenough",
			},
			setupRepo: func(repo *MockUserRepository) {
				seedUser(t, repo, "chef@example.com", "chef", "longenough")
			},
			wantErr: domain.ErrUserAlreadyExists,
		},
		{
			name: "invalid username characters",
			input: RegisterInput{
				Email:    "chef@example.com",
				Username: "chef with spaces",
				Password: "longenough",
			},
			wantErr: domain.ErrInvalidUsername,
		},
		{
			name: "invalid email",
			input: RegisterInput{
				Email:    "not-an-email",
				Username: "chef",
				Password: "longenough",
			},
			wantErr: ErrInvalidEmail,
		},
		{
			name: "password too short",
			input: RegisterInput{
				Email:    "chef@example.com",
				Username: "chef",
				Password: "short",
			},
			wantErr: ErrInvalidPassword,
		},
		{
			name: "first name too long",
			input: RegisterInput{
				Email:     "chef@example.com",
				Username:  "chef",
				FirstName: strings.Repeat("a", 151),
				Password:  "longenough",
			},
			wantErr: domain.ErrInvalidUsername,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			svc := newUserService(repo, NewMockMediaStore())

			out, err := svc.Register(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() unexpected error = %v", err)
			}
			if out.User.ID == 0 {
				t.Error("Register() user ID not set")
			}
			if !out.User.IsActive {
				t.Error("Register() new user should be active")
			}
			if out.User.IsAdmin {
				t.Error("Register() new user should not be admin")
			}
			if out.User.PasswordHash == tt.input.Password {
				t.Error("Register() stored password in plaintext")
			}
		})
	}
}

func TestUserService_Login(t *testing.T) {
	tests := []struct {
		name      string
		input     LoginInput
		setupRepo func(*MockUserRepository)
		wantErr   error
	}{
		{
			name:  "successful login",
			input: LoginInput{Email: "chef@example.com", Password: "longenough"},
			setupRepo: func(repo *MockUserRepository) {
				seedUser(t, repo, "chef@example.com", "chef", "longenough")
			},
		},
		{
			name:    "unknown email",
			input:   LoginInput{Email: "nobody@example.com", Password: "longenough"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:  "wrong password",
			input: LoginInput{Email: "chef@example.com", Password: "wrongpassword"},
			setupRepo: func(repo *MockUserRepository) {
				seedUser(t, repo, "chef@example.com", "chef", "longenough")
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:  "deactivated user",
			input: LoginInput{Email: "chef@example.com", Password: "longenough"},
			setupRepo: func(repo *MockUserRepository) {
				user := seedUser(t, repo, "chef@example.com", "chef", "longenough")
				user.IsActive = false
			},
			wantErr: ErrUserInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			svc := newUserService(repo, NewMockMediaStore())

			out, err := svc.Login(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() unexpected error = %v", err)
			}
			if out.Token == "" {
				t.Error("Login() returned empty token")
			}
		})
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		wantErr error
	}{
		{
			name:    "successful change",
			current: "longenough",
			next:    "evenlonger1",
		},
		{
			name:    "wrong current password",
			current: "notthepassword",
			next:    "evenlonger1",
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "new password too short",
			current: "longenough",
			next:    "short",
			wantErr: ErrInvalidPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			user := seedUser(t, repo, "chef@example.com", "chef", "longenough")
			svc := newUserService(repo, NewMockMediaStore())

			err := svc.ChangePassword(context.Background(), ChangePasswordInput{
				UserID:          user.ID,
				CurrentPassword: tt.current,
				NewPassword:     tt.next,
			})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ChangePassword() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ChangePassword() unexpected error = %v", err)
			}
			if err := auth.CheckPassword(tt.next, repo.users[user.ID].PasswordHash); err != nil {
				t.Errorf("new password does not verify: %v", err)
			}
		})
	}
}

func TestUserService_SetAvatar(t *testing.T) {
	repo := NewMockUserRepository()
	user := seedUser(t, repo, "chef@example.com", "chef", "longenough")
	store := NewMockMediaStore()
	svc := newUserService(repo, store)

	out, err := svc.SetAvatar(context.Background(), SetAvatarInput{
		UserID:  user.ID,
		Payload: testImagePayload,
	})
	if err != nil {
		t.Fatalf("SetAvatar() error = %v", err)
	}
	if out.Avatar == "" {
		t.Fatal("SetAvatar() returned empty key")
	}
	if _, ok := store.objects[out.Avatar]; !ok {
		t.Error("avatar object not stored")
	}

	// Replacing the avatar removes the previous object.
	first := out.Avatar
	out, err = svc.SetAvatar(context.Background(), SetAvatarInput{
		UserID:  user.ID,
		Payload: testImagePayload,
	})
	if err != nil {
		t.Fatalf("SetAvatar() second call error = %v", err)
	}
	if _, ok := store.objects[first]; ok {
		t.Error("previous avatar object not deleted")
	}
	if repo.users[user.ID].Avatar != out.Avatar {
		t.Errorf("user avatar = %q, want %q", repo.users[user.ID].Avatar, out.Avatar)
	}
}

func TestUserService_SetAvatar_InvalidPayload(t *testing.T) {
	repo := NewMockUserRepository()
	user := seedUser(t, repo, "chef@example.com", "chef", "longenough")
	svc := newUserService(repo, NewMockMediaStore())

	_, err := svc.SetAvatar(context.Background(), SetAvatarInput{
		UserID:  user.ID,
		Payload: "not a data uri",
	})
	if err == nil {
		t.Fatal("SetAvatar() expected error for invalid payload")
	}
}

func TestUserService_DeleteAvatar(t *testing.T) {
	repo := NewMockUserRepository()
	user := seedUser(t, repo, "chef@example.com", "chef", "longenough")
	store := NewMockMediaStore()
	svc := newUserService(repo, store)

	// Deleting a missing avatar is a no-op.
	if err := svc.DeleteAvatar(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteAvatar() no-op error = %v", err)
	}

	out, err := svc.SetAvatar(context.Background(), SetAvatarInput{
		UserID:  user.ID,
		Payload: testImagePayload,
	})
	if err != nil {
		t.Fatalf("SetAvatar() error = %v", err)
	}

	if err := svc.DeleteAvatar(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteAvatar() error = %v", err)
	}
	if repo.users[user.ID].Avatar != "" {
		t.Error("avatar reference not cleared")
	}
	if _, ok := store.objects[out.Avatar]; ok {
		t.Error("avatar object not deleted")
	}
}

func TestUserService_Deactivate(t *testing.T) {
	repo := NewMockUserRepository()
	user := seedUser(t, repo, "chef@example.com", "chef", "longenough")
	svc := newUserService(repo, NewMockMediaStore())

	if err := svc.Deactivate(context.Background(), user.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if repo.users[user.ID].IsActive {
		t.Error("user still active after Deactivate()")
	}

	// Idempotent on an already inactive user.
	if err := svc.Deactivate(context.Background(), user.ID); err != nil {
		t.Errorf("Deactivate() repeat error = %v", err)
	}

	if err := svc.Deactivate(context.Background(), 999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Deactivate() error = %v, want %v", err, domain.ErrUserNotFound)
	}
}
