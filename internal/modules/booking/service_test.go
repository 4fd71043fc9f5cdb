package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"nepalstay/internal/domain"
	"nepalstay/internal/pkg/events"
	"nepalstay/internal/pkg/logger"
	"nepalstay/internal/repository"
	"nepalstay/internal/testutil"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) record(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, name)
}

func (n *recordingNotifier) BookingCreated(context.Context, *domain.Booking)   { n.record("created") }
func (n *recordingNotifier) BookingCancelled(context.Context, *domain.Booking) { n.record("cancelled") }
func (n *recordingNotifier) BookingStatusChanged(context.Context, *domain.Booking) {
	n.record("status")
}

type fixture struct {
	svc      *Service
	db       *gorm.DB
	notifier *recordingNotifier
	events   *events.Recorder
	guest    *domain.User
	owner    *domain.User
	admin    *domain.User
	property *domain.Property
}

var testNow = time.Date(2030, 1, 10, 15, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	f := &fixture{
		db:       db,
		notifier: &recordingNotifier{},
		events:   &events.Recorder{},
	}
	f.svc = NewService(repository.NewBookingRepository(db), repository.NewPropertyRepository(db), f.notifier, f.events, logger.Discard())
	f.svc.now = func() time.Time { return testNow }

	f.guest = testutil.User(t, db, domain.RoleUser)
	f.owner = testutil.User(t, db, domain.RolePropertyOwner)
	f.admin = testutil.User(t, db, domain.RoleCompanyAdmin)
	f.property = testutil.Property(t, db, f.owner.ID)
	return f
}

func actor(u *domain.User) domain.Actor {
	return domain.Actor{UserID: u.ID, Role: u.Role}
}

func request(propertyID int64, in, out time.Time, guests, rooms int) CreateBookingRequest {
	return CreateBookingRequest{
		PropertyID:    propertyID,
		CheckIn:       &Date{in},
		CheckOut:      &Date{out},
		Guests:        guests,
		Rooms:         rooms,
		PaymentMethod: domain.PaymentKhalti,
	}
}

func (f *fixture) countBookings(t *testing.T) int64 {
	var n int64
	require.NoError(t, f.db.Model(&domain.Booking{}).Count(&n).Error)
	return n
}

func TestCreate_PricesAndSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Create(ctx, actor(f.guest), request(f.property.ID, testutil.Day(2030, 1, 12), testutil.Day(2030, 1, 14), 2, 2))
	require.NoError(t, err)

	assert.Equal(t, 2, view.Nights)
	assert.Equal(t, 8000.0, view.TotalAmount)
	assert.Equal(t, domain.BookingPending, view.Status)
	assert.Equal(t, domain.PaymentPending, view.PaymentStatus)
	require.NotNil(t, view.Property)
	assert.Equal(t, f.property.Name, view.Property.Name)
	require.NotNil(t, view.User)
	assert.Equal(t, f.guest.Email, view.User.Email)

	require.NoError(t, f.db.Model(&domain.Property{}).Where("id = ?", f.property.ID).Update("price_per_night", 3500).Error)
	got, err := f.svc.Get(ctx, actor(f.guest), view.ID)
	require.NoError(t, err)
	assert.Equal(t, 8000.0, got.TotalAmount)
	assert.Equal(t, 2000.0, got.PricePerNight)

	assert.Equal(t, []string{"created"}, f.notifier.calls)
	assert.Equal(t, []string{events.BookingCreated}, f.events.Subjects())
}

func TestCreate_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := actor(f.guest)

	_, err := f.svc.Create(ctx, g, request(9999, testutil.Day(2029, 1, 1), testutil.Day(2028, 1, 1), 50, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Create(ctx, g, request(f.property.ID, testutil.Day(2030, 1, 9), testutil.Day(2030, 1, 8), 50, 1))
	assert.ErrorIs(t, err, ErrCheckInPast)

	_, err = f.svc.Create(ctx, g, request(f.property.ID, testutil.Day(2030, 1, 12), testutil.Day(2030, 1, 12), 50, 1))
	assert.ErrorIs(t, err, ErrCheckOutOrder)

	_, err = f.svc.Create(ctx, g, request(f.property.ID, testutil.Day(2030, 1, 12), testutil.Day(2030, 1, 13), 5, 1))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "4")

	assert.Equal(t, int64(0), f.countBookings(t))
	assert.Empty(t, f.events.Subjects())
}

func TestCreate_StayLengthLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := testutil.Day(2030, 1, 20)

	_, err := f.svc.Create(ctx, actor(f.guest), request(f.property.ID, in, testutil.Day(9999, 12, 31), 1, 1))
	assert.ErrorIs(t, err, ErrStayTooLong)

	_, err = f.svc.Create(ctx, actor(f.guest), request(f.property.ID, in, in.AddDate(0, 0, domain.MaxStayNights+1), 1, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(0), f.countBookings(t))

	view, err := f.svc.Create(ctx, actor(f.guest), request(f.property.ID, in, in.AddDate(0, 0, domain.MaxStayNights), 1, 1))
	require.NoError(t, err)
	assert.Equal(t, domain.MaxStayNights, view.Nights)
	assert.Equal(t, 2000.0*float64(domain.MaxStayNights), view.TotalAmount)
}

func TestAvailability_RangeLimit(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Availability(context.Background(), f.property.ID,
		time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), testutil.Day(9999, 12, 31))

	assert.ErrorIs(t, err, ErrStayTooLong)
}

func TestCreate_TodayIsAllowed(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), actor(f.guest),
		request(f.property.ID, testutil.Day(2030, 1, 10), testutil.Day(2030, 1, 11), 1, 1))

	require.NoError(t, err)
}

func TestCreate_CapacityPerNight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := actor(f.guest)

	// 3 rooms total; nights 12 and 13 already hold 2.
	testutil.Booking(t, f.db, f.guest.ID, f.property, testutil.Day(2030, 1, 12), testutil.Day(2030, 1, 14), 2)
	testutil.Booking(t, f.db, f.guest.ID, f.property, testutil.Day(2030, 1, 13), testutil.Day(2030, 1, 14), 3,
		func(b *domain.Booking) { b.Status = domain.BookingCancelled })

	_, err := f.svc.Create(ctx, g, request(f.property.ID, testutil.Day(2030, 1, 13), testutil.Day(2030, 1, 15), 2, 2))
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "only 1 of 3")

	_, err = f.svc.Create(ctx, g, request(f.property.ID, testutil.Day(2030, 1, 13), testutil.Day(2030, 1, 15), 2, 1))
	require.NoError(t, err)

	// Check-out day of an existing stay is free for a new check-in.
	_, err = f.svc.Create(ctx, g, request(f.property.ID, testutil.Day(2030, 1, 15), testutil.Day(2030, 1, 16), 2, 3))
	require.NoError(t, err)

	av, err := f.svc.Availability(ctx, f.property.ID, testutil.Day(2030, 1, 12), testutil.Day(2030, 1, 16))
	require.NoError(t, err)
	assert.Equal(t, 3, av.RoomsHeld)
	assert.Equal(t, 0, av.RoomsAvailable)

	av, err = f.svc.Availability(ctx, f.property.ID, testutil.Day(2030, 1, 12), testutil.Day(2030, 1, 13))
	require.NoError(t, err)
	assert.Equal(t, 2, av.RoomsHeld)
	assert.Equal(t, 1, av.RoomsAvailable)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := testutil.Booking(t, f.db, f.guest.ID, f.property, testutil.Day(2030, 2, 1), testutil.Day(2030, 2, 3), 1)

	_, err := f.svc.Cancel(ctx, actor(f.owner), b.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	view, err := f.svc.Cancel(ctx, actor(f.guest), b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, view.Status)
	assert.Equal(t, reasonByUser, view.CancellationReason)
	require.NotNil(t, view.CancelledAt)
	assert.True(t, view.CancelledAt.Equal(testNow))

	_, err = f.svc.Cancel(ctx, actor(f.guest), b.ID, "changed my mind")
	require.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Contains(t, err.Error(), "already cancelled")

	again, err := f.svc.Get(ctx, actor(f.guest), b.ID)
	require.NoError(t, err)
	assert.Equal(t, reasonByUser, again.CancellationReason)
	assert.True(t, again.CancelledAt.Equal(testNow))

	assert.Equal(t, []string{"status", "cancelled"}, f.notifier.calls)
	assert.Equal(t, []string{events.BookingCancelled}, f.events.Subjects())
}

func TestCancel_AdminDefaultReason(t *testing.T) {
	f := newFixture(t)
	b := testutil.Booking(t, f.db, f.guest.ID, f.property, testutil.Day(2030, 2, 1), testutil.Day(2030, 2, 3), 1)

	view, err := f.svc.Cancel(context.Background(), actor(f.admin), b.ID, "")

	require.NoError(t, err)
	assert.Equal(t, reasonByAdmin, view.CancellationReason)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := testutil.Booking(t, f.db, f.guest.ID, f.property, testutil.Day(2030, 2, 1), testutil.Day(2030, 2, 3), 1)
	stranger := testutil.User(t, f.db, domain.RolePropertyOwner)

	_, err := f.svc.SetStatus(ctx, actor(stranger), b.ID, domain.BookingConfirmed, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	view, err := f.svc.SetStatus(ctx, actor(f.owner), b.ID, domain.BookingConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, view.Status)

	view, err = f.svc.SetStatus(ctx, actor(f.admin), b.ID, domain.BookingCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, view.Status)

	_, err = f.svc.SetStatus(ctx, actor(f.owner), b.ID, domain.BookingCancelled, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.svc.Cancel(ctx, actor(f.guest), b.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSetStatus_OwnerCancelReason(t *testing.T) {
	f := newFixture(t)
	b := testutil.Booking(t, f.db, f.guest.ID, f.property, testutil.Day(2030, 2, 1), testutil.Day(2030, 2, 3), 1)

	view, err := f.svc.SetStatus(context.Background(), actor(f.owner), b.ID, domain.BookingCancelled, "")

	require.NoError(t, err)
	assert.Equal(t, reasonByOwner, view.CancellationReason)

	_, err = f.svc.SetStatus(context.Background(), actor(f.admin), b.ID, domain.BookingPending, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestListAndGet_ScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	otherGuest := testutil.User(t, f.db, domain.RoleUser)
	otherOwner := testutil.User(t, f.db, domain.RolePropertyOwner)
	otherProperty := testutil.Property(t, f.db, otherOwner.ID)

	mine := testutil.Booking(t, f.db, f.guest.ID, f.property, testutil.Day(2030, 2, 1), testutil.Day(2030, 2, 2), 1)
	testutil.Booking(t, f.db, otherGuest.ID, f.property, testutil.Day(2030, 2, 1), testutil.Day(2030, 2, 2), 1)
	testutil.Booking(t, f.db, f.guest.ID, otherProperty, testutil.Day(2030, 2, 1), testutil.Day(2030, 2, 2), 1)

	res, err := f.svc.List(ctx, actor(f.guest), "", repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	res, err = f.svc.List(ctx, actor(f.owner), "", repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	res, err = f.svc.List(ctx, actor(f.admin), "", repository.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Len(t, res.Bookings, 2)
	assert.Equal(t, 2, res.Limit)

	_, err = f.svc.Get(ctx, actor(otherGuest), mine.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.svc.Get(ctx, actor(otherOwner), mine.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.svc.Get(ctx, actor(f.owner), mine.ID)
	assert.NoError(t, err)
}
