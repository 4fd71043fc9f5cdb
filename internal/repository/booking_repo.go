package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nepalstay/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// BookingFilter scopes a listing. Zero fields are ignored.
type BookingFilter struct {
	UserID          int64
	PropertyOwnerID int64
	Status          domain.BookingStatus
	Page
}

// CreateIfAvailable inserts b after checking, with the property row locked,
// that the rooms are free on every night of the stay.
func (r *BookingRepository) CreateIfAvailable(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockProperty(tx, b.PropertyID)
		if err != nil {
			return err
		}

		held, err := overlapping(tx, b.PropertyID, b.CheckIn, b.CheckOut)
		if err != nil {
			return err
		}
		peak := domain.PeakRoomsHeld(held, b.CheckIn, b.CheckOut)
		if peak+b.Rooms > p.RoomsTotal {
			return fmt.Errorf("%w: only %d of %d rooms available for the selected dates",
				domain.ErrConflict, max(p.RoomsTotal-peak, 0), p.RoomsTotal)
		}

		return tx.Omit("User", "Property").Create(b).Error
	})
}

// HeldBookings returns non-cancelled bookings overlapping [checkIn, checkOut).
func (r *BookingRepository) HeldBookings(ctx context.Context, propertyID int64, checkIn, checkOut time.Time) ([]domain.Booking, error) {
	return overlapping(r.db.WithContext(ctx), propertyID, checkIn, checkOut)
}

func overlapping(db *gorm.DB, propertyID int64, checkIn, checkOut time.Time) ([]domain.Booking, error) {
	var held []domain.Booking
	err := db.Model(&domain.Booking{}).
		Where("property_id = ? AND status <> ? AND check_in < ? AND check_out > ?",
			propertyID, domain.BookingCancelled, checkOut, checkIn).
		Find(&held).Error
	return held, err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).Preload("Property").Preload("User").First(&b, id).Error
	if err != nil {
		return nil, notFound(err, "booking")
	}
	return &b, nil
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, int64, error) {
	p := f.Page.Normalize(DefaultBookingLimit, MaxLimit)
	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if f.UserID != 0 {
		q = q.Where("bookings.user_id = ?", f.UserID)
	}
	if f.PropertyOwnerID != 0 {
		q = q.Where("bookings.property_id IN (?)",
			r.db.Model(&domain.Property{}).Select("id").Where("owner_id = ?", f.PropertyOwnerID))
	}
	if f.Status != "" {
		q = q.Where("bookings.status = ?", f.Status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bookings []domain.Booking
	err := q.Preload("Property").Preload("User").
		Order("bookings.created_at DESC").Order("bookings.id DESC").
		Offset(p.offset()).Limit(p.Limit).
		Find(&bookings).Error
	return bookings, total, err
}

// StatusChange is applied only while the booking is still in From.
type StatusChange struct {
	From               domain.BookingStatus
	To                 domain.BookingStatus
	CancelledAt        *time.Time
	CancellationReason string
}

func (r *BookingRepository) ChangeStatus(ctx context.Context, id int64, ch StatusChange) error {
	updates := map[string]any{"status": ch.To, "updated_at": time.Now().UTC()}
	if ch.To == domain.BookingCancelled {
		updates["cancelled_at"] = ch.CancelledAt
		updates["cancellation_reason"] = ch.CancellationReason
	}
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, ch.From).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: booking status changed concurrently", domain.ErrInvalidState)
	}
	return nil
}

// ErrPaymentReferenceUsed means the gateway reference already settled a
// different booking.
var ErrPaymentReferenceUsed = fmt.Errorf("%w: payment reference was already used for another booking", domain.ErrPaymentVerificationFailed)

// ConfirmPayment marks a pending, unpaid booking as paid and confirmed.
// It reports false when another request confirmed it first.
func (r *BookingRepository) ConfirmPayment(ctx context.Context, id int64, paymentID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND payment_status <> ? AND status = ?", id, domain.PaymentCompleted, domain.BookingPending).
		Updates(map[string]any{
			"payment_status": domain.PaymentCompleted,
			"payment_id":     paymentID,
			"status":         domain.BookingConfirmed,
			"updated_at":     time.Now().UTC(),
		})
	if IsUniqueViolation(res.Error) {
		return false, ErrPaymentReferenceUsed
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *BookingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).Count(&n).Error
	return n, err
}

// Revenue sums paid bookings that were not cancelled afterwards.
func (r *BookingRepository) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("payment_status = ? AND status <> ?", domain.PaymentCompleted, domain.BookingCancelled).
		Scan(&total).Error
	return total, err
}
