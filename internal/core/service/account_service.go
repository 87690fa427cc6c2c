package service

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"github.com/queuejw/messenger/internal/core/domain"
	"github.com/queuejw/messenger/internal/core/ports"
)

// AccountService implements registration, lookup and password checks.
type AccountService struct {
	users  ports.EntityStore[domain.User]
	logins ports.EntityStore[domain.LoginClaim]
	cipher ports.CredentialCipher
	logger zerolog.Logger
}

var _ ports.AccountService = (*AccountService)(nil)

func NewAccountService(
	users ports.EntityStore[domain.User],
	logins ports.EntityStore[domain.LoginClaim],
	cipher ports.CredentialCipher,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{users: users, logins: logins, cipher: cipher, logger: logger}
}

func (s *AccountService) IsLoginTaken(ctx context.Context, login string) (bool, error) {
	_, found, err := s.GetUserByLogin(ctx, login)
	return found, err
}

// RegisterUser creates a user with the given credentials. The login is claimed
// with an exclusive create before the user record is written, so two
// concurrent registrations of one login cannot both succeed.
func (s *AccountService) RegisterUser(ctx context.Context, login, password string) (*domain.User, error) {
	if err := validateCredentials(login, password); err != nil {
		return nil, err
	}

	taken, err := s.IsLoginTaken(ctx, login)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrLoginTaken
	}

	id, err := s.users.NewID(ctx)
	if err != nil {
		return nil, err
	}

	token, err := s.cipher.Encrypt(password)
	if err != nil {
		return nil, fmt.Errorf("encrypt password: %w", err)
	}

	now := time.Now().UTC()
	claimID := loginKey(login)
	claim := &domain.LoginClaim{ID: claimID, Login: login, UserID: id, ClaimedAt: now}
	if err := s.logins.Create(ctx, claimID, claim); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.ErrLoginTaken
		}
		return nil, err
	}

	user := &domain.User{
		ID:                  id,
		Login:               login,
		Password:            token,
		Nickname:            login,
		AccountCreationDate: now,
		IsAdmin:             false,
	}
	if err := s.users.Create(ctx, id, user); err != nil {
		if derr := s.logins.Delete(context.WithoutCancel(ctx), claimID); derr != nil {
			s.logger.Warn().Err(derr).Str("login", login).Msg("failed to release login claim")
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to create user")
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Str("login", login).Msg("user registered")
	return user, nil
}

func (s *AccountService) GetUserByLogin(ctx context.Context, login string) (*domain.User, bool, error) {
	return first(s.users.Find(ctx, func(u *domain.User) bool { return u.Login == login }))
}

func (s *AccountService) GetUserByID(ctx context.Context, id string) (*domain.User, bool, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return user, true, nil
}

// ValidatePassword decrypts the stored token and compares it with candidate.
// A token that cannot be decrypted is an error, not a mismatch.
func (s *AccountService) ValidatePassword(user *domain.User, candidate string) (bool, error) {
	if user == nil {
		return false, nil
	}
	stored, err := s.cipher.Decrypt(user.Password)
	if err != nil {
		return false, fmt.Errorf("decrypt password of user %s: %w", user.ID, err)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1, nil
}

func (s *AccountService) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	user, found, err := s.GetUserByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.ValidatePassword(user, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func validateCredentials(login, password string) error {
	if n := utf8.RuneCountInString(login); n < domain.LoginMinLen || n > domain.LoginMaxLen {
		return &domain.ValidationError{
			Field:  "login",
			Reason: fmt.Sprintf("must be between %d and %d characters", domain.LoginMinLen, domain.LoginMaxLen),
		}
	}
	if n := utf8.RuneCountInString(password); n < domain.PasswordMinLen || n > domain.PasswordMaxLen {
		return &domain.ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("must be between %d and %d characters", domain.PasswordMinLen, domain.PasswordMaxLen),
		}
	}
	return nil
}

// loginKey maps a login to a fixed-length id safe for every backend.
func loginKey(login string) string {
	sum := blake3.Sum256([]byte(login))
	return hex.EncodeToString(sum[:16])
}
