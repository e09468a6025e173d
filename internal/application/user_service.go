package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

const minPasswordLength = 8

// UserAccount is the persisted account record, including the credential
// hash. It stays inside the application layer.
type UserAccount struct {
	User
	PasswordHash string
}

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	CreateUser(ctx context.Context, account UserAccount) (UserAccount, error)
	GetUser(ctx context.Context, id int64) (UserAccount, error)
	GetUserByEmail(ctx context.Context, email string) (UserAccount, error)
}

// UserService orchestrates validation, credential hashing and persistence
// for account sign-up.
type UserService struct {
	users  UserRepository
	params Argon2idParams
	now    func() time.Time
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, params: DefaultArgon2idParams, now: now}
}

// SignUp validates input, hashes the password and persists a new account.
// A duplicate email is reported as ErrAlreadyExists.
func (s *UserService) SignUp(ctx context.Context, params SignUpParams) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	normalized := normalizeSignUpInput(params)
	if vErr := validateSignUpInput(normalized); vErr.HasErrors() {
		return User{}, vErr
	}

	passwordHash, err := CreatePasswordHash(normalized.Password, s.params)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	createdAt := s.now()
	account := UserAccount{
		User: User{
			Email:       normalized.Email,
			DisplayName: normalized.DisplayName,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		},
		PasswordHash: passwordHash,
	}

	persisted, err := s.users.CreateUser(ctx, account)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}

	return persisted.User, nil
}

// GetUser returns an account's public profile by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	account, err := s.users.GetUser(ctx, id)
	if err != nil {
		return User{}, mapUserRepoError(err)
	}
	return account.User, nil
}

// Authenticate checks an email and password pair against the stored hash.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	account, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, mapUserRepoError(err)
	}

	if err := VerifyPassword(account.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return account.User, nil
}

func normalizeSignUpInput(params SignUpParams) SignUpParams {
	return SignUpParams{
		Email:       strings.ToLower(strings.TrimSpace(params.Email)),
		DisplayName: strings.TrimSpace(params.DisplayName),
		Password:    params.Password,
	}
}

func validateSignUpInput(params SignUpParams) *ValidationError {
	vErr := &ValidationError{}

	if params.Email == "" {
		vErr.Add("email", "email is required")
	} else if _, err := mail.ParseAddress(params.Email); err != nil {
		vErr.Add("email", "email is invalid")
	}

	if params.DisplayName == "" {
		vErr.Add("display_name", "display name is required")
	}

	if len(params.Password) < minPasswordLength {
		vErr.Add("password", "password must be at least 8 characters")
	}

	return vErr
}

func mapUserRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
