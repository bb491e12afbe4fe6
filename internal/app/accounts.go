package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"quizdesk/internal/domain"
)

const (
	minUsernameLen = 5
	maxUsernameLen = 16
	minPasswordLen = 6
)

// CredentialRepository abstracts how user accounts are stored (in-memory,
// SQLite, Postgres).
type CredentialRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	UpdateUsername(ctx context.Context, id int64, username string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	List(ctx context.Context, filter string) ([]domain.User, error)
}

// AccountService contains the credential use cases: sign-up, login and
// self-service account changes.
type AccountService struct {
	creds CredentialRepository
}

func NewAccountService(creds CredentialRepository) *AccountService {
	return &AccountService{creds: creds}
}

// Register creates a new account with a salted one-way password hash.
func (s *AccountService) Register(ctx context.Context, username, password string, accountType domain.AccountType) (domain.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return domain.User{}, err
	}
	if len(password) < minPasswordLen {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters long", domain.ErrValidation, minPasswordLen)
	}
	if !accountType.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown account type %q", domain.ErrValidation, accountType)
	}

	if _, err := s.creds.FindByUsername(ctx, username); err == nil {
		return domain.User{}, domain.ErrDuplicateUser
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	return s.creds.Create(ctx, domain.User{
		Username:     username,
		PasswordHash: string(hash),
		AccountType:  accountType,
	})
}

// Authenticate verifies credentials. Every failure collapses into ErrAuth so
// callers cannot probe for existing usernames.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.creds.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return domain.User{}, domain.ErrAuth
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrAuth
	}
	return user, nil
}

// ChangeUsername renames the account. The store row and the caller's session
// copy move together: user is only mutated after the update succeeds.
func (s *AccountService) ChangeUsername(ctx context.Context, user *domain.User, newUsername string) error {
	newUsername = strings.TrimSpace(newUsername)
	if err := validateUsername(newUsername); err != nil {
		return err
	}

	existing, err := s.creds.FindByUsername(ctx, newUsername)
	switch {
	case err == nil && existing.ID != user.ID:
		return domain.ErrDuplicateUser
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return err
	}

	if err := s.creds.UpdateUsername(ctx, user.ID, newUsername); err != nil {
		return err
	}
	user.Username = newUsername
	return nil
}

// ChangePassword replaces the password hash after confirming the new password
// differs from the current one (compared via hash verification, never
// plaintext).
func (s *AccountService) ChangePassword(ctx context.Context, user *domain.User, newPassword, confirmation string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: new password must be at least %d characters long", domain.ErrValidation, minPasswordLen)
	}
	if newPassword != confirmation {
		return fmt.Errorf("%w: password confirmation does not match", domain.ErrValidation)
	}

	// Re-read the stored hash rather than trusting the session copy.
	current, err := s.creds.FindByUsername(ctx, user.Username)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(newPassword)) == nil {
		return domain.ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.creds.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return nil
}

// ListUsers returns accounts whose username contains filter
// (case-insensitive); an empty filter lists everyone. Backs the teacher-role
// user browser.
func (s *AccountService) ListUsers(ctx context.Context, filter string) ([]domain.User, error) {
	return s.creds.List(ctx, strings.TrimSpace(filter))
}

func validateUsername(username string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return fmt.Errorf("%w: username must be between %d and %d characters", domain.ErrValidation, minUsernameLen, maxUsernameLen)
	}
	return nil
}
