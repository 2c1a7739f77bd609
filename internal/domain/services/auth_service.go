package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danateck/eco-file-system/internal/domain/entities"
	"github.com/danateck/eco-file-system/internal/domain/repositories"
	"github.com/danateck/eco-file-system/internal/utils"
	"github.com/danateck/eco-file-system/pkg/errors"
)

// AuthService handles registration and session tokens. Users are identified
// by normalized email; sessions live in the session store until they expire
// or the user signs out.
type AuthService struct {
	userRepo      repositories.UserRepository
	sessionRepo   repositories.SessionRepository
	docs          *DocumentService
	tokenDuration time.Duration
}

func NewAuthService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	docs *DocumentService,
	tokenDuration time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		docs:          docs,
		tokenDuration: tokenDuration,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*entities.User, error) {
	email = utils.NormalizeEmail(email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}

	// A row with an empty password is a membership placeholder created when
	// someone shared a folder with this address before the user signed up.
	// Registration claims it.
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing.Password != "" {
		return nil, errors.NewConflictError("user already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password")
	}

	user := &entities.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  string(hashedPassword),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.NewInternalError("failed to create user")
	}

	return user, nil
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = utils.NormalizeEmail(email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", errors.NewUnauthorizedError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", errors.NewUnauthorizedError("invalid credentials")
	}

	token := utils.GenerateToken()
	session := &entities.Session{
		ID:        uuid.NewString(),
		UserEmail: user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenDuration),
		UpdatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", errors.NewInternalError("failed to create session")
	}

	return token, nil
}

func (s *AuthService) ValidateToken(ctx context.Context, token string) (*entities.User, error) {
	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, errors.NewUnauthorizedError("invalid token")
	}

	if session.ExpiresAt.Before(time.Now()) {
		s.sessionRepo.Delete(ctx, token)
		return nil, errors.NewUnauthorizedError("token expired")
	}

	user, err := s.userRepo.GetByEmail(ctx, session.UserEmail)
	if err != nil {
		return nil, errors.NewUnauthorizedError("user not found")
	}

	return user, nil
}

// Logout deletes the session and tears down the user's open document state
// and live subscriptions.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err == nil && s.docs != nil {
		s.docs.Close(session.UserEmail)
	}
	return s.sessionRepo.Delete(ctx, token)
}
