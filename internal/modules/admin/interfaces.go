package admin

import (
	"context"

	"nepalstay/internal/domain"
	"nepalstay/internal/repository"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, f repository.UserFilter) ([]domain.User, int64, error)
	Count(ctx context.Context) (int64, error)
	CountPendingOwners(ctx context.Context) (int64, error)
	SetVerification(ctx context.Context, id int64, status domain.VerificationStatus) error
}

type PropertyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
	Search(ctx context.Context, f repository.PropertyFilter) ([]domain.Property, int64, error)
	Count(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int64, error)
	SetApproved(ctx context.Context, id int64, approved bool) error
	TopCities(ctx context.Context, limit int) ([]repository.CityCount, error)
}

type BookingRepository interface {
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, int64, error)
	Count(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (float64, error)
}

type Notifier interface {
	OwnerVerified(ctx context.Context, u *domain.User)
	PropertyApproved(ctx context.Context, p *domain.Property)
}
