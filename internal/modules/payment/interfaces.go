package payment

import (
	"context"

	"nepalstay/internal/domain"
)

type BookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ConfirmPayment(ctx context.Context, id int64, paymentID string) (bool, error)
}

type Notifier interface {
	BookingConfirmed(ctx context.Context, b *domain.Booking)
}
