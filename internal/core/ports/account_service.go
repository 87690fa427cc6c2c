package ports

import (
	"context"

	"github.com/queuejw/messenger/internal/core/domain"
)

// AccountService registers users and checks their credentials.
type AccountService interface {
	IsLoginTaken(ctx context.Context, login string) (bool, error)
	RegisterUser(ctx context.Context, login, password string) (*domain.User, error)
	// GetUserByLogin and GetUserByID report absence through the bool, not an error.
	GetUserByLogin(ctx context.Context, login string) (*domain.User, bool, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, bool, error)
	ValidatePassword(user *domain.User, candidate string) (bool, error)
	// Authenticate returns domain.ErrInvalidCredentials for unknown logins and wrong passwords.
	Authenticate(ctx context.Context, login, password string) (*domain.User, error)
}
