package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/auth"
	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/media"
	"github.com/foodshare-app/foodshare/internal/repository"
)

// UserService handles user registration, authentication, and profiles.
type UserService struct {
	userRepo     repository.UserRepository
	tokenMaker   auth.Maker
	mediaStore   media.Store
	bcryptCost   int
	maxImageSize int64
	logger       zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	tokenMaker auth.Maker,
	mediaStore media.Store,
	bcryptCost int,
	maxImageSize int64,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		tokenMaker:   tokenMaker,
		mediaStore:   mediaStore,
		bcryptCost:   bcryptCost,
		maxImageSize: maxImageSize,
		logger:       logger.With().Str("service", "user").Logger(),
	}
}

// =============================================================================
// Input/Output Structs
// =============================================================================

// RegisterInput contains the data needed to register a user.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// RegisterOutput contains the result of registering a user.
type RegisterOutput struct {
	User *domain.User
}

// LoginInput contains the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput contains the issued access token.
type LoginOutput struct {
	Token string
	User  *domain.User
}

// ChangePasswordInput contains the data needed to change a password.
type ChangePasswordInput struct {
	UserID          int64
	CurrentPassword string
	NewPassword     string
}

// SetAvatarInput contains the data needed to set a user's avatar.
type SetAvatarInput struct {
	UserID int64
	// Payload is a base64 data URI ("data:image/...;base64,...").
	Payload string
}

// SetAvatarOutput contains the stored avatar reference.
type SetAvatarOutput struct {
	Avatar string
}

// ListUsersInput contains pagination for the user listing.
type ListUsersInput struct {
	Limit  int
	Offset int
}

// ListUsersOutput contains a page of users.
type ListUsersOutput struct {
	Users  []*domain.User
	Total  int64
	Limit  int
	Offset int
}

// =============================================================================
// Service Methods
// =============================================================================

// Register creates a new user account.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(input.Email); err != nil || len(input.Email) > 254 {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < 8 {
		return nil, ErrInvalidPassword
	}
	if len(input.FirstName) > 150 || len(input.LastName) > 150 {
		return nil, domain.NewDomainError(domain.ErrInvalidUsername, "name too long", input.Username)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user := domain.NewUser(input.Email, input.Username, input.FirstName, input.LastName, hash)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrUserAlreadyExists
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user registered")

	return &RegisterOutput{User: user}, nil
}

// Login verifies credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("failed to get user for login")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !user.CanAuthenticate() {
		return nil, ErrUserInactive
	}

	if err := auth.CheckPassword(input.Password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenMaker.CreateToken(user.ID, user.IsAdmin)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")

	return &LoginOutput{Token: token, User: user}, nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// ListUsers returns a page of users ordered by email.
func (s *UserService) ListUsers(ctx context.Context, input ListUsersInput) (*ListUsersOutput, error) {
	result, err := s.userRepo.List(ctx, repository.ListOptions{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return &ListUsersOutput{
		Users:  result.Items,
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	}, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *UserService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	if len(input.NewPassword) < 8 {
		return ErrInvalidPassword
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", input.UserID).Msg("failed to get user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := auth.CheckPassword(input.CurrentPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(input.NewPassword, s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to update password")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("password changed")
	return nil
}

// SetAvatar decodes the data-URI payload, stores the image, and points
// the user's avatar at the new object. The previous avatar object, if
// any, is removed afterwards.
func (s *UserService) SetAvatar(ctx context.Context, input SetAvatarInput) (*SetAvatarOutput, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", input.UserID).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	img, err := media.DecodeDataURI(input.Payload, s.maxImageSize)
	if err != nil {
		return nil, err
	}

	key := media.NewObjectKey(img.ContentType)
	if err := s.mediaStore.Save(ctx, key, img.ContentType, img.Data); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to store avatar")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	previous := user.Avatar
	user.Avatar = key
	if err := s.userRepo.Update(ctx, user); err != nil {
		_ = s.mediaStore.Delete(ctx, key)
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to update avatar")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if previous != "" {
		if err := s.mediaStore.Delete(ctx, previous); err != nil {
			s.logger.Warn().Err(err).Str("key", previous).Msg("failed to delete previous avatar")
		}
	}

	s.logger.Info().Int64("user_id", user.ID).Str("avatar", key).Msg("avatar updated")
	return &SetAvatarOutput{Avatar: key}, nil
}

// DeleteAvatar removes the user's avatar.
func (s *UserService) DeleteAvatar(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if user.Avatar == "" {
		return nil
	}

	key := user.Avatar
	user.Avatar = ""
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to clear avatar")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.mediaStore.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to delete avatar object")
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("avatar removed")
	return nil
}

// Deactivate disables a user account. Authored recipes and relations
// are retained.
func (s *UserService) Deactivate(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to get user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !user.IsActive {
		return nil
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to deactivate user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user deactivated")
	return nil
}
