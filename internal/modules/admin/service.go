package admin

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"nepalstay/internal/domain"
	"nepalstay/internal/pkg/events"
	"nepalstay/internal/pkg/logger"
	"nepalstay/internal/repository"
)

const (
	listLimit    = 20
	topCityLimit = 5
)

type Service struct {
	users      UserRepository
	properties PropertyRepository
	bookings   BookingRepository
	notify     Notifier
	events     events.Publisher
	log        logrus.FieldLogger
}

func NewService(users UserRepository, properties PropertyRepository, bookings BookingRepository, notify Notifier, pub events.Publisher, log logrus.FieldLogger) *Service {
	return &Service{
		users:      users,
		properties: properties,
		bookings:   bookings,
		notify:     notify,
		events:     pub,
		log:        log,
	}
}

// Stats is computed from the store on every call.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	var err error
	if st.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalProperties, err = s.properties.Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalBookings, err = s.bookings.Count(ctx); err != nil {
		return nil, err
	}
	if st.PendingProperties, err = s.properties.CountPending(ctx); err != nil {
		return nil, err
	}
	if st.PendingOwners, err = s.users.CountPendingOwners(ctx); err != nil {
		return nil, err
	}
	if st.TotalRevenue, err = s.bookings.Revenue(ctx); err != nil {
		return nil, err
	}
	if st.TopCities, err = s.properties.TopCities(ctx, topCityLimit); err != nil {
		return nil, err
	}
	if st.TopCities == nil {
		st.TopCities = []repository.CityCount{}
	}
	return &st, nil
}

func withDefaultLimit(p repository.Page) repository.Page {
	if p.Limit <= 0 {
		p.Limit = listLimit
	}
	return p.Normalize(listLimit, repository.MaxLimit)
}

func (s *Service) ListUsers(ctx context.Context, role domain.UserRole, page repository.Page) (*Page[domain.User], error) {
	page = withDefaultLimit(page)
	users, total, err := s.users.List(ctx, repository.UserFilter{Role: role, Page: page})
	if err != nil {
		return nil, err
	}
	return &Page[domain.User]{Items: users, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

// VerifyOwner records the document review outcome for a property owner.
func (s *Service) VerifyOwner(ctx context.Context, userID int64, status domain.VerificationStatus) (*domain.User, error) {
	if status != domain.VerificationApproved && status != domain.VerificationRejected {
		return nil, ErrBadVerificationStatus
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RolePropertyOwner {
		return nil, ErrNotPropertyOwner
	}
	if err := s.users.SetVerification(ctx, u.ID, status); err != nil {
		return nil, err
	}
	u, err = s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, s.log).WithFields(logrus.Fields{"owner_id": u.ID, "status": status})
	log.Info("owner verification decided")
	s.notify.OwnerVerified(ctx, u)
	events.PublishBestEffort(ctx, s.events, log, events.OwnerVerified, map[string]any{
		"user_id": u.ID,
		"status":  status,
		"at":      time.Now().UTC(),
	})
	return u, nil
}

func (s *Service) ListProperties(ctx context.Context, isApproved *bool, page repository.Page) (*Page[domain.Property], error) {
	page = withDefaultLimit(page)
	props, total, err := s.properties.Search(ctx, repository.PropertyFilter{
		IsApproved: isApproved,
		Sort:       "createdAt",
		Desc:       true,
		Page:       page,
	})
	if err != nil {
		return nil, err
	}
	return &Page[domain.Property]{Items: props, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

func (s *Service) ApproveProperty(ctx context.Context, id int64, approved bool) (*domain.Property, error) {
	if err := s.properties.SetApproved(ctx, id, approved); err != nil {
		return nil, err
	}
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, s.log).WithFields(logrus.Fields{"property_id": id, "approved": approved})
	log.Info("property moderation decided")
	s.notify.PropertyApproved(ctx, p)
	events.PublishBestEffort(ctx, s.events, log, events.PropertyApproved, map[string]any{
		"property_id": p.ID,
		"approved":    approved,
		"at":          time.Now().UTC(),
	})
	return p, nil
}

func (s *Service) ListBookings(ctx context.Context, status domain.BookingStatus, page repository.Page) (*Page[*domain.BookingView], error) {
	page = withDefaultLimit(page)
	rows, total, err := s.bookings.List(ctx, repository.BookingFilter{Status: status, Page: page})
	if err != nil {
		return nil, err
	}
	views := make([]*domain.BookingView, 0, len(rows))
	for i := range rows {
		views = append(views, domain.NewBookingView(&rows[i]))
	}
	return &Page[*domain.BookingView]{Items: views, Total: total, Page: page.Page, Limit: page.Limit}, nil
}
