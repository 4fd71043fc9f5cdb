package review

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"nepalstay/internal/domain"
	"nepalstay/internal/pkg/events"
	"nepalstay/internal/pkg/logger"
	"nepalstay/internal/repository"
)

type Service struct {
	reviews    ReviewRepository
	bookings   BookingReader
	properties PropertyReader
	notify     Notifier
	events     events.Publisher
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewService(reviews ReviewRepository, bookings BookingReader, properties PropertyReader, notify Notifier, pub events.Publisher, log logrus.FieldLogger) *Service {
	return &Service{
		reviews:    reviews,
		bookings:   bookings,
		properties: properties,
		notify:     notify,
		events:     pub,
		log:        log,
		now:        time.Now,
	}
}

// Create records the guest's review of a completed stay and updates the
// property rating in the same transaction.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req CreateReviewRequest) (*domain.ReviewView, error) {
	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if !domain.Authorize(actor, domain.ActionReviewBooking, domain.Resource{OwnerUserID: b.UserID}) {
		return nil, ErrNotYourBooking
	}
	if b.PropertyID != req.PropertyID {
		return nil, ErrPropertyMismatch
	}
	if b.Status != domain.BookingCompleted {
		return nil, ErrStayNotCompleted
	}
	exists, err := s.reviews.ExistsForBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	rv := &domain.Review{
		UserID:     actor.UserID,
		PropertyID: b.PropertyID,
		BookingID:  b.ID,
		Rating:     req.Rating,
		Title:      strings.TrimSpace(req.Title),
		Comment:    strings.TrimSpace(req.Comment),
		IsVerified: true,
	}
	if err := s.reviews.CreateWithRating(ctx, rv); err != nil {
		return nil, err
	}

	created, err := s.reviews.GetByID(ctx, rv.ID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"review_id":   created.ID,
		"property_id": created.PropertyID,
		"rating":      created.Rating,
	})
	log.Info("review created")

	if b.Property != nil {
		s.notify.ReviewPosted(ctx, created, b.Property.OwnerID)
	}
	events.PublishBestEffort(ctx, s.events, log, events.ReviewCreated, events.ReviewEvent{
		ReviewID:   created.ID,
		PropertyID: created.PropertyID,
		Rating:     created.Rating,
		At:         created.CreatedAt.UTC(),
	})
	return domain.NewReviewView(created), nil
}

// ListByProperty returns reviews newest first.
func (s *Service) ListByProperty(ctx context.Context, propertyID int64, page repository.Page) (*ListResult, error) {
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}
	rows, total, err := s.reviews.ListByProperty(ctx, propertyID, page)
	if err != nil {
		return nil, err
	}
	views := make([]*domain.ReviewView, 0, len(rows))
	for i := range rows {
		views = append(views, domain.NewReviewView(&rows[i]))
	}
	p := page.Normalize(repository.DefaultReviewLimit, repository.MaxLimit)
	return &ListResult{Reviews: views, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

// Reply sets the owner's single reply, replacing any earlier one.
func (s *Service) Reply(ctx context.Context, actor domain.Actor, reviewID int64, text string) (*domain.ReviewView, error) {
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	p, err := s.properties.GetByID(ctx, rv.PropertyID)
	if err != nil {
		return nil, err
	}
	if !domain.Authorize(actor, domain.ActionReplyReview, domain.Resource{PropertyOwnerID: p.OwnerID}) {
		return nil, ErrCannotReply
	}

	if err := s.reviews.SaveReply(ctx, rv.ID, strings.TrimSpace(text), s.now().UTC()); err != nil {
		return nil, err
	}
	updated, err := s.reviews.GetByID(ctx, rv.ID)
	if err != nil {
		return nil, err
	}
	return domain.NewReviewView(updated), nil
}
