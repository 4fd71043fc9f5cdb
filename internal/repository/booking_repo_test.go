package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nepalstay/internal/domain"
	"nepalstay/internal/testutil"
)

func newBooking(userID int64, p *domain.Property, in, out time.Time, rooms int) *domain.Booking {
	nights := domain.Nights(in, out)
	return &domain.Booking{
		UserID:        userID,
		PropertyID:    p.ID,
		CheckIn:       in,
		CheckOut:      out,
		Guests:        1,
		Rooms:         rooms,
		Nights:        nights,
		PricePerNight: p.PricePerNight,
		TotalAmount:   domain.TotalAmount(p.PricePerNight, nights, rooms),
		PaymentMethod: domain.PaymentKhalti,
		PaymentStatus: domain.PaymentPending,
		Status:        domain.BookingPending,
	}
}

func TestBookingRepository_CreateIfAvailable(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewBookingRepository(db)

	owner := testutil.User(t, db, domain.RolePropertyOwner)
	guest := testutil.User(t, db, domain.RoleUser)
	p := testutil.Property(t, db, owner.ID, func(p *domain.Property) { p.RoomsTotal = 3 })
	day := func(d int) time.Time { return testutil.Day(2030, time.March, d) }

	require.NoError(t, repo.CreateIfAvailable(ctx, newBooking(guest.ID, p, day(1), day(3), 2)))
	require.NoError(t, repo.CreateIfAvailable(ctx, newBooking(guest.ID, p, day(2), day(4), 1)))
	testutil.Booking(t, db, guest.ID, p, day(2), day(3), 3, func(b *domain.Booking) {
		b.Status = domain.BookingCancelled
	})

	// night of the 2nd already holds 3 rooms
	err := repo.CreateIfAvailable(ctx, newBooking(guest.ID, p, day(2), day(3), 1))
	assert.ErrorIs(t, err, domain.ErrConflict)

	// the 3rd holds only 1
	require.NoError(t, repo.CreateIfAvailable(ctx, newBooking(guest.ID, p, day(3), day(4), 2)))

	var n int64
	require.NoError(t, db.Model(&domain.Booking{}).Count(&n).Error)
	assert.Equal(t, int64(4), n)
}

func TestBookingRepository_CreateIfAvailable_MissingProperty(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewBookingRepository(db)
	guest := testutil.User(t, db, domain.RoleUser)

	b := newBooking(guest.ID, &domain.Property{ID: 999, PricePerNight: 10}, testutil.Day(2030, 1, 1), testutil.Day(2030, 1, 2), 1)
	assert.ErrorIs(t, repo.CreateIfAvailable(context.Background(), b), domain.ErrNotFound)
}

func TestBookingRepository_ConfirmPayment_OnlyOnce(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewBookingRepository(db)

	owner := testutil.User(t, db, domain.RolePropertyOwner)
	guest := testutil.User(t, db, domain.RoleUser)
	p := testutil.Property(t, db, owner.ID)
	b := testutil.Booking(t, db, guest.ID, p, testutil.Day(2030, 5, 1), testutil.Day(2030, 5, 2), 1)

	ok, err := repo.ConfirmPayment(ctx, b.ID, "pay-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConfirmPayment(ctx, b.ID, "pay-2")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay-1", got.PaymentID)
	assert.Equal(t, domain.PaymentCompleted, got.PaymentStatus)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
}

func TestBookingRepository_ConfirmPayment_ReferenceIsSingleUse(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewBookingRepository(db)

	owner := testutil.User(t, db, domain.RolePropertyOwner)
	guest := testutil.User(t, db, domain.RoleUser)
	p := testutil.Property(t, db, owner.ID)
	a := testutil.Booking(t, db, guest.ID, p, testutil.Day(2030, 5, 1), testutil.Day(2030, 5, 2), 1)
	b := testutil.Booking(t, db, guest.ID, p, testutil.Day(2030, 5, 3), testutil.Day(2030, 5, 4), 1)
	esewa := testutil.Booking(t, db, guest.ID, p, testutil.Day(2030, 5, 5), testutil.Day(2030, 5, 6), 1,
		func(b *domain.Booking) { b.PaymentMethod = domain.PaymentEsewa })

	ok, err := repo.ConfirmPayment(ctx, a.ID, "ref-1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.ConfirmPayment(ctx, b.ID, "ref-1")
	assert.ErrorIs(t, err, ErrPaymentReferenceUsed)
	assert.ErrorIs(t, err, domain.ErrPaymentVerificationFailed)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
	assert.Empty(t, got.PaymentID)

	ok, err = repo.ConfirmPayment(ctx, esewa.ID, "ref-1")
	require.NoError(t, err)
	assert.True(t, ok, "references are scoped per gateway")
}

func TestBookingRepository_ChangeStatus_GuardsCurrentStatus(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewBookingRepository(db)

	owner := testutil.User(t, db, domain.RolePropertyOwner)
	guest := testutil.User(t, db, domain.RoleUser)
	p := testutil.Property(t, db, owner.ID)
	b := testutil.Booking(t, db, guest.ID, p, testutil.Day(2030, 5, 1), testutil.Day(2030, 5, 2), 1)

	now := time.Now().UTC()
	require.NoError(t, repo.ChangeStatus(ctx, b.ID, StatusChange{
		From: domain.BookingPending, To: domain.BookingCancelled, CancelledAt: &now, CancellationReason: "plans changed",
	}))

	err := repo.ChangeStatus(ctx, b.ID, StatusChange{From: domain.BookingPending, To: domain.BookingConfirmed})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	assert.Equal(t, "plans changed", got.CancellationReason)
	require.NotNil(t, got.CancelledAt)
}

func TestBookingRepository_ListScopes(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewBookingRepository(db)

	ownerA := testutil.User(t, db, domain.RolePropertyOwner)
	ownerB := testutil.User(t, db, domain.RolePropertyOwner)
	guest := testutil.User(t, db, domain.RoleUser)
	other := testutil.User(t, db, domain.RoleUser)
	pa := testutil.Property(t, db, ownerA.ID)
	pb := testutil.Property(t, db, ownerB.ID)
	in, out := testutil.Day(2030, 6, 1), testutil.Day(2030, 6, 2)

	testutil.Booking(t, db, guest.ID, pa, in, out, 1)
	testutil.Booking(t, db, guest.ID, pb, in, out, 1)
	testutil.Booking(t, db, other.ID, pa, in, out, 1, func(b *domain.Booking) { b.Status = domain.BookingConfirmed })

	mine, total, err := repo.List(ctx, BookingFilter{UserID: guest.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)
	require.NotNil(t, mine[0].Property)

	forOwner, total, err := repo.List(ctx, BookingFilter{PropertyOwnerID: ownerA.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, b := range forOwner {
		assert.Equal(t, pa.ID, b.PropertyID)
	}

	confirmed, total, err := repo.List(ctx, BookingFilter{Status: domain.BookingConfirmed})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, other.ID, confirmed[0].UserID)

	paged, total, err := repo.List(ctx, BookingFilter{Page: Page{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, paged, 1)
}

func TestBookingRepository_Revenue(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewBookingRepository(db)

	owner := testutil.User(t, db, domain.RolePropertyOwner)
	guest := testutil.User(t, db, domain.RoleUser)
	p := testutil.Property(t, db, owner.ID)
	in, out := testutil.Day(2030, 7, 1), testutil.Day(2030, 7, 3)

	paid := func(b *domain.Booking) { b.PaymentStatus = domain.PaymentCompleted; b.Status = domain.BookingConfirmed }
	testutil.Booking(t, db, guest.ID, p, in, out, 1, paid)
	testutil.Booking(t, db, guest.ID, p, in, out, 1, paid, func(b *domain.Booking) { b.Status = domain.BookingCancelled })
	testutil.Booking(t, db, guest.ID, p, in, out, 1)

	revenue, err := repo.Revenue(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 4000.0, revenue, 0.001)
}
