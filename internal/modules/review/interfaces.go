package review

import (
	"context"
	"time"

	"nepalstay/internal/domain"
	"nepalstay/internal/repository"
)

type ReviewRepository interface {
	CreateWithRating(ctx context.Context, rv *domain.Review) error
	ExistsForBooking(ctx context.Context, bookingID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	ListByProperty(ctx context.Context, propertyID int64, page repository.Page) ([]domain.Review, int64, error)
	SaveReply(ctx context.Context, id int64, text string, at time.Time) error
}

type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type PropertyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
}

type Notifier interface {
	ReviewPosted(ctx context.Context, rv *domain.Review, ownerID int64)
}
