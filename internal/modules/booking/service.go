package booking

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"nepalstay/internal/domain"
	"nepalstay/internal/pkg/events"
	"nepalstay/internal/pkg/logger"
	"nepalstay/internal/repository"
)

const (
	reasonByUser  = "Cancelled by user"
	reasonByAdmin = "Cancelled by admin"
	reasonByOwner = "Cancelled by property owner"
)

type Service struct {
	bookings   BookingRepository
	properties PropertyReader
	notify     Notifier
	events     events.Publisher
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewService(bookings BookingRepository, properties PropertyReader, notify Notifier, pub events.Publisher, log logrus.FieldLogger) *Service {
	return &Service{
		bookings:   bookings,
		properties: properties,
		notify:     notify,
		events:     pub,
		log:        log,
		now:        time.Now,
	}
}

// Create validates the request in a fixed order and books the rooms if
// every night of the stay has capacity left.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req CreateBookingRequest) (*domain.BookingView, error) {
	p, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	checkIn, checkOut := req.CheckIn.UTC(), req.CheckOut.UTC()
	today := domain.StartOfDay(s.now().UTC())
	if domain.StartOfDay(checkIn).Before(today) {
		return nil, ErrCheckInPast
	}
	if !checkOut.After(checkIn) {
		return nil, ErrCheckOutOrder
	}
	if domain.Nights(checkIn, checkOut) > domain.MaxStayNights {
		return nil, ErrStayTooLong
	}
	if req.Guests > p.MaxGuests {
		return nil, errTooManyGuests(p.MaxGuests)
	}
	if !p.Searchable() {
		return nil, ErrPropertyNotListed
	}

	rooms := req.Rooms
	if rooms == 0 {
		rooms = 1
	}
	nights := domain.Nights(checkIn, checkOut)
	b := &domain.Booking{
		UserID:          actor.UserID,
		PropertyID:      p.ID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.Guests,
		Rooms:           rooms,
		Nights:          nights,
		PricePerNight:   p.PricePerNight,
		TotalAmount:     domain.TotalAmount(p.PricePerNight, nights, rooms),
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   domain.PaymentPending,
		Status:          domain.BookingPending,
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
	}
	if req.ContactInfo != nil {
		b.ContactInfo = datatypes.NewJSONType(*req.ContactInfo)
	}

	if err := s.bookings.CreateIfAvailable(ctx, b); err != nil {
		return nil, err
	}

	created, err := s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, s.log)
	log.WithFields(logrus.Fields{
		"booking_id":  created.ID,
		"property_id": p.ID,
		"rooms":       rooms,
		"nights":      nights,
	}).Info("booking created")

	s.notify.BookingCreated(ctx, created)
	events.PublishBestEffort(ctx, s.events, log, events.BookingCreated, bookingEvent(created, ""))
	return domain.NewBookingView(created), nil
}

// List scopes bookings by role: guests see their own, owners see bookings
// on their properties, admins see everything.
func (s *Service) List(ctx context.Context, actor domain.Actor, status domain.BookingStatus, page repository.Page) (*ListResult, error) {
	f := repository.BookingFilter{Status: status, Page: page}
	switch actor.Role {
	case domain.RoleCompanyAdmin:
	case domain.RolePropertyOwner:
		f.PropertyOwnerID = actor.UserID
	default:
		f.UserID = actor.UserID
	}

	rows, total, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, err
	}
	views := make([]*domain.BookingView, 0, len(rows))
	for i := range rows {
		views = append(views, domain.NewBookingView(&rows[i]))
	}
	p := page.Normalize(repository.DefaultBookingLimit, repository.MaxLimit)
	return &ListResult{Bookings: views, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.BookingView, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Authorize(actor, domain.ActionViewBooking, resourceOf(b)) {
		return nil, ErrNotYourBooking
	}
	return domain.NewBookingView(b), nil
}

// Cancel lets the guest or an admin cancel a booking that is not yet
// cancelled or completed.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, id int64, reason string) (*domain.BookingView, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Authorize(actor, domain.ActionCancelBooking, resourceOf(b)) {
		return nil, ErrCannotCancel
	}
	if _, err := domain.Transition(b.Status, domain.BookingCancelled); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = reasonByUser
		if actor.IsAdmin() && actor.UserID != b.UserID {
			reason = reasonByAdmin
		}
	}
	return s.apply(ctx, b, domain.BookingCancelled, reason)
}

// SetStatus moves a booking along the lifecycle on behalf of the property
// owner or an admin.
func (s *Service) SetStatus(ctx context.Context, actor domain.Actor, id int64, status domain.BookingStatus, reason string) (*domain.BookingView, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Authorize(actor, domain.ActionSetBookingStatus, resourceOf(b)) {
		return nil, ErrCannotSetStatus
	}
	next, err := domain.Transition(b.Status, status)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if next == domain.BookingCancelled && reason == "" {
		reason = reasonByOwner
	}
	return s.apply(ctx, b, next, reason)
}

func (s *Service) apply(ctx context.Context, b *domain.Booking, next domain.BookingStatus, reason string) (*domain.BookingView, error) {
	ch := repository.StatusChange{From: b.Status, To: next}
	if next == domain.BookingCancelled {
		at := s.now().UTC()
		ch.CancelledAt = &at
		ch.CancellationReason = reason
	}
	if err := s.bookings.ChangeStatus(ctx, b.ID, ch); err != nil {
		return nil, err
	}

	updated, err := s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"booking_id": b.ID,
		"from":       b.Status,
		"to":         next,
	})
	log.Info("booking status changed")

	s.notify.BookingStatusChanged(ctx, updated)
	subject := events.BookingStatusChanged
	if next == domain.BookingCancelled {
		subject = events.BookingCancelled
		s.notify.BookingCancelled(ctx, updated)
	}
	events.PublishBestEffort(ctx, s.events, log, subject, bookingEvent(updated, reason))
	return domain.NewBookingView(updated), nil
}

// Availability reports how many rooms are free on the busiest night of the
// range.
func (s *Service) Availability(ctx context.Context, propertyID int64, checkIn, checkOut time.Time) (*Availability, error) {
	p, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	checkIn, checkOut = checkIn.UTC(), checkOut.UTC()
	if !checkOut.After(checkIn) {
		return nil, ErrCheckOutOrder
	}
	if domain.Nights(checkIn, checkOut) > domain.MaxStayNights {
		return nil, ErrStayTooLong
	}

	held, err := s.bookings.HeldBookings(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	peak := domain.PeakRoomsHeld(held, checkIn, checkOut)
	return &Availability{
		PropertyID:     propertyID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		RoomsTotal:     p.RoomsTotal,
		RoomsHeld:      peak,
		RoomsAvailable: max(p.RoomsTotal-peak, 0),
	}, nil
}

func resourceOf(b *domain.Booking) domain.Resource {
	res := domain.Resource{OwnerUserID: b.UserID}
	if b.Property != nil {
		res.PropertyOwnerID = b.Property.OwnerID
	}
	return res
}

func bookingEvent(b *domain.Booking, reason string) events.BookingEvent {
	return events.BookingEvent{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		UserID:     b.UserID,
		Status:     string(b.Status),
		Reason:     reason,
		At:         time.Now().UTC(),
	}
}
