package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"nepalstay/internal/domain"
	"nepalstay/internal/pkg/events"
	"nepalstay/internal/pkg/logger"
	"nepalstay/internal/repository"
)

type Service struct {
	bookings BookingStore
	gateways map[domain.PaymentMethod]Gateway
	currency string
	notify   Notifier
	events   events.Publisher
	log      logrus.FieldLogger
}

func NewService(bookings BookingStore, notify Notifier, pub events.Publisher, log logrus.FieldLogger, currency string, gateways ...Gateway) *Service {
	s := &Service{
		bookings: bookings,
		gateways: make(map[domain.PaymentMethod]Gateway, len(gateways)),
		currency: currency,
		notify:   notify,
		events:   pub,
		log:      log,
	}
	for _, g := range gateways {
		s.gateways[g.Method()] = g
	}
	return s
}

// Confirm verifies a client-reported payment with the gateway and marks the
// booking paid and confirmed. Repeated calls after success return the first
// confirmation without contacting the gateway.
func (s *Service) Confirm(ctx context.Context, actor domain.Actor, method domain.PaymentMethod, bookingID int64, reference string) (*ConfirmResult, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !domain.Authorize(actor, domain.ActionPayBooking, domain.Resource{OwnerUserID: b.UserID}) {
		return nil, ErrNotYourBooking
	}
	if b.Paid() {
		return &ConfirmResult{BookingView: domain.NewBookingView(b), AlreadyConfirmed: true}, nil
	}
	if b.Status != domain.BookingPending {
		return nil, ErrBookingNotOpen
	}
	if b.PaymentMethod != method {
		return nil, errMethodMismatch(b.PaymentMethod, method)
	}
	gw, ok := s.gateways[method]
	if !ok {
		return nil, errNoGateway(method)
	}

	log := logger.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"booking_id": b.ID,
		"gateway":    method,
	})

	expected := AmountOf(b.TotalAmount, s.currency)
	expected.BookingID = b.ID
	v, err := gw.Verify(ctx, reference, expected)
	if err != nil {
		s.publishFailure(ctx, log, b, method, err.Error())
		if !errors.Is(err, domain.ErrPaymentVerificationFailed) {
			err = fmt.Errorf("%w: %v", domain.ErrPaymentVerificationFailed, err)
		}
		return nil, err
	}
	if !v.Succeeded {
		s.publishFailure(ctx, log, b, method, v.Status)
		log.WithField("gateway_status", v.Status).Info("payment declined")
		return nil, ErrPaymentDeclined
	}

	externalID := v.ExternalID
	if externalID == "" {
		externalID = reference
	}
	changed, err := s.bookings.ConfirmPayment(ctx, b.ID, externalID)
	if errors.Is(err, repository.ErrPaymentReferenceUsed) {
		s.publishFailure(ctx, log, b, method, "payment reference reused")
		log.WithField("payment_id", externalID).Warn("payment reference already settled another booking")
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	current, err := s.bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if !changed {
		if current.Paid() {
			return &ConfirmResult{BookingView: domain.NewBookingView(current), AlreadyConfirmed: true}, nil
		}
		return nil, ErrBookingNotOpen
	}

	log.WithField("payment_id", externalID).Info("payment captured")
	events.PublishBestEffort(ctx, s.events, log, events.PaymentCaptured, events.PaymentEvent{
		BookingID:  current.ID,
		Gateway:    string(method),
		ExternalID: externalID,
		Amount:     current.TotalAmount,
		At:         time.Now().UTC(),
	})
	s.notify.BookingConfirmed(ctx, current)
	return &ConfirmResult{BookingView: domain.NewBookingView(current)}, nil
}

func (s *Service) publishFailure(ctx context.Context, log logrus.FieldLogger, b *domain.Booking, method domain.PaymentMethod, reason string) {
	events.PublishBestEffort(ctx, s.events, log, events.PaymentFailed, events.PaymentEvent{
		BookingID: b.ID,
		Gateway:   string(method),
		Amount:    b.TotalAmount,
		Reason:    reason,
		At:        time.Now().UTC(),
	})
}
