package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"nepalstay/internal/domain"
)

// Event types pushed over the live feed.
const (
	TypeBookingCreated       = "booking.created"
	TypeBookingConfirmed     = "booking.confirmed"
	TypeBookingCancelled     = "booking.cancelled"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeReviewPosted         = "review.posted"
	TypeVerification         = "owner.verification"
	TypePropertyApproved     = "property.approved"
)

type Event struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	BookingID int64     `json:"bookingId,omitempty"`
	ReviewID  int64     `json:"reviewId,omitempty"`
	At        time.Time `json:"at"`
}

// Pusher delivers live events to connected users.
type Pusher interface {
	SendToUser(userID int64, message any) bool
}

// Service turns domain happenings into emails and live events. Every method
// only enqueues work; failures are logged by the dispatcher.
type Service struct {
	mailer     Mailer
	pusher     Pusher
	dispatcher *Dispatcher
	log        logrus.FieldLogger
}

func NewService(mailer Mailer, pusher Pusher, dispatcher *Dispatcher, log logrus.FieldLogger) *Service {
	return &Service{mailer: mailer, pusher: pusher, dispatcher: dispatcher, log: log}
}

func (s *Service) email(name string, e Email) {
	if e.ToEmail == "" {
		s.log.WithField("job", name).Warn("email skipped, no recipient")
		return
	}
	s.dispatcher.Enqueue(Job{Name: name, Run: func(ctx context.Context) error {
		return s.mailer.Send(ctx, e)
	}})
}

func (s *Service) push(userID int64, ev Event) {
	if userID == 0 || s.pusher == nil {
		return
	}
	ev.At = time.Now().UTC()
	s.dispatcher.Enqueue(Job{Name: "push:" + ev.Type, Run: func(context.Context) error {
		s.pusher.SendToUser(userID, ev)
		return nil
	}})
}

// BookingCreated tells the property owner about a new booking. b must have
// its property loaded.
func (s *Service) BookingCreated(_ context.Context, b *domain.Booking) {
	if b.Property == nil {
		return
	}
	s.push(b.Property.OwnerID, Event{
		Type:      TypeBookingCreated,
		Title:     "New booking",
		Body:      fmt.Sprintf("%s: %d room(s), %s to %s", b.Property.Name, b.Rooms, b.CheckIn.Format(dateLayout), b.CheckOut.Format(dateLayout)),
		BookingID: b.ID,
	})
}

func (s *Service) BookingConfirmed(_ context.Context, b *domain.Booking) {
	s.email("email:booking-confirmation", BookingConfirmationEmail(b))
	s.push(b.UserID, Event{Type: TypeBookingConfirmed, Title: "Booking confirmed", BookingID: b.ID})
	if b.Property != nil {
		s.push(b.Property.OwnerID, Event{Type: TypeBookingConfirmed, Title: "Booking paid", BookingID: b.ID})
	}
}

func (s *Service) BookingCancelled(_ context.Context, b *domain.Booking) {
	s.email("email:booking-cancellation", BookingCancellationEmail(b))
	if b.Property != nil {
		s.push(b.Property.OwnerID, Event{
			Type: TypeBookingCancelled, Title: "Booking cancelled", Body: b.CancellationReason, BookingID: b.ID,
		})
	}
}

func (s *Service) BookingStatusChanged(_ context.Context, b *domain.Booking) {
	s.push(b.UserID, Event{
		Type: TypeBookingStatusChanged, Title: "Booking " + string(b.Status), BookingID: b.ID,
	})
}

func (s *Service) ReviewPosted(_ context.Context, rv *domain.Review, ownerID int64) {
	s.push(ownerID, Event{
		Type: TypeReviewPosted, Title: "New review", Body: fmt.Sprintf("%d/5: %s", rv.Rating, rv.Title), ReviewID: rv.ID,
	})
}

func (s *Service) OwnerVerified(_ context.Context, u *domain.User) {
	s.email("email:owner-verification", OwnerVerificationEmail(u))
	s.push(u.ID, Event{Type: TypeVerification, Title: "Verification " + string(u.VerificationStatus)})
}

func (s *Service) PropertyApproved(_ context.Context, p *domain.Property) {
	title := "Listing approved"
	if !p.IsApproved {
		title = "Listing unpublished"
	}
	s.push(p.OwnerID, Event{Type: TypePropertyApproved, Title: title, Body: p.Name})
}
