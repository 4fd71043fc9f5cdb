// Package testutil seeds in-memory databases for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"nepalstay/internal/database"
	"nepalstay/internal/domain"
)

var seq atomic.Int64

func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func User(t *testing.T, db *gorm.DB, role domain.UserRole, mutate ...func(*domain.User)) *domain.User {
	t.Helper()
	n := seq.Add(1)
	u := &domain.User{
		Name:         fmt.Sprintf("User %d", n),
		Email:        fmt.Sprintf("user%d@example.np", n),
		Phone:        "9800000000",
		PasswordHash: "x",
		Role:         role,
	}
	if role == domain.RolePropertyOwner {
		u.IsVerified = true
		u.VerificationStatus = domain.VerificationApproved
	}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Property(t *testing.T, db *gorm.DB, ownerID int64, mutate ...func(*domain.Property)) *domain.Property {
	t.Helper()
	n := seq.Add(1)
	p := &domain.Property{
		OwnerID:       ownerID,
		Name:          fmt.Sprintf("Hotel %d", n),
		Description:   "Lakeside rooms",
		Type:          domain.PropertyHotel,
		Address:       domain.Address{City: "Pokhara", Country: "Nepal"},
		Amenities:     []string{"wifi"},
		Images:        []domain.Image{{URL: "/img/1.jpg"}},
		PricePerNight: 2000,
		MaxGuests:     4,
		RoomsTotal:    3,
		IsActive:      true,
		IsApproved:    true,
	}
	for _, m := range mutate {
		m(p)
	}
	active, approved := p.IsActive, p.IsApproved
	require.NoError(t, db.Create(p).Error)
	// gorm replaces zero values with the column default on insert
	require.NoError(t, db.Model(p).Updates(map[string]any{"is_active": active, "is_approved": approved}).Error)
	p.IsActive, p.IsApproved = active, approved
	return p
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func Booking(t *testing.T, db *gorm.DB, userID int64, p *domain.Property, checkIn, checkOut time.Time, rooms int, mutate ...func(*domain.Booking)) *domain.Booking {
	t.Helper()
	nights := domain.Nights(checkIn, checkOut)
	b := &domain.Booking{
		UserID:        userID,
		PropertyID:    p.ID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        1,
		Rooms:         rooms,
		Nights:        nights,
		PricePerNight: p.PricePerNight,
		TotalAmount:   domain.TotalAmount(p.PricePerNight, nights, rooms),
		PaymentMethod: domain.PaymentKhalti,
		PaymentStatus: domain.PaymentPending,
		Status:        domain.BookingPending,
	}
	for _, m := range mutate {
		m(b)
	}
	require.NoError(t, db.Omit("User", "Property").Create(b).Error)
	return b
}
