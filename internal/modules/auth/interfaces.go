package auth

import (
	"context"

	"nepalstay/internal/domain"
)

// UserRepository is the slice of user storage auth needs.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	UpdateProfile(ctx context.Context, u *domain.User) error
	SubmitVerification(ctx context.Context, id int64, docs domain.VerificationDocuments) error
}

type tokenIssuer interface {
	GenerateToken(userID int64, role domain.UserRole) (string, error)
}
