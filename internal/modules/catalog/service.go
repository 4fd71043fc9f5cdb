package catalog

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"nepalstay/internal/domain"
	"nepalstay/internal/pkg/logger"
	"nepalstay/internal/repository"
)

type Service struct {
	properties PropertyRepository
	users      UserReader
	log        logrus.FieldLogger
}

func NewService(properties PropertyRepository, users UserReader, log logrus.FieldLogger) *Service {
	return &Service{properties: properties, users: users, log: log}
}

// Search lists active, approved properties.
func (s *Service) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	f.PublicOnly = true
	return s.search(ctx, f)
}

// MyProperties lists every property of the owner regardless of approval.
func (s *Service) MyProperties(ctx context.Context, ownerID int64, page repository.Page) (*SearchResult, error) {
	return s.search(ctx, repository.PropertyFilter{OwnerID: ownerID, Sort: "createdAt", Desc: true, Page: page})
}

func (s *Service) search(ctx context.Context, f repository.PropertyFilter) (*SearchResult, error) {
	props, total, err := s.properties.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	p := f.Page.Normalize(repository.DefaultPropertyLimit, repository.MaxLimit)
	return &SearchResult{Properties: props, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

func (q SearchQuery) filter() (repository.PropertyFilter, error) {
	f := repository.PropertyFilter{
		City:      q.City,
		Type:      q.Type,
		MinPrice:  q.MinPrice,
		MaxPrice:  q.MaxPrice,
		MinRating: q.MinRating,
		MinGuests: q.MaxGuests,
		Sort:      "createdAt",
		Desc:      q.Order != "asc",
		Page:      repository.Page{Page: q.Page, Limit: q.Limit},
	}
	if q.Sort != "" {
		if !repository.SortableField(q.Sort) {
			return f, ErrBadSort
		}
		f.Sort = q.Sort
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return f, ErrBadPriceRange
	}
	return f, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*PropertyDetail, error) {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PropertyDetail{Property: p, Owner: p.Owner.Summary()}, nil
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, req CreatePropertyRequest) (*domain.Property, error) {
	if !domain.Authorize(actor, domain.ActionCreateProperty, domain.Resource{}) {
		return nil, ErrCannotList
	}
	if actor.Role == domain.RolePropertyOwner {
		owner, err := s.users.GetByID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !owner.IsVerified {
			return nil, ErrOwnerNotVerified
		}
	}

	p := &domain.Property{
		OwnerID:       actor.UserID,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Type:          req.Type,
		Address:       req.Address.toDomain(),
		Location:      req.Location,
		Amenities:     req.Amenities,
		Images:        req.Images,
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
		RoomsTotal:    req.RoomsTotal,
		Policies:      req.Policies,
		IsActive:      true,
		IsApproved:    actor.IsAdmin(),
	}
	if err := s.properties.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"property_id": p.ID,
		"approved":    p.IsApproved,
	}).Info("property created")
	return p, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, id int64, req UpdatePropertyRequest) (*domain.Property, error) {
	p, err := s.ownedProperty(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Type != nil {
		p.Type = *req.Type
	}
	if req.Address != nil {
		p.Address = req.Address.toDomain()
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.Amenities != nil {
		p.Amenities = req.Amenities
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.PricePerNight != nil {
		p.PricePerNight = *req.PricePerNight
	}
	if req.MaxGuests != nil {
		p.MaxGuests = *req.MaxGuests
	}
	if req.RoomsTotal != nil {
		p.RoomsTotal = *req.RoomsTotal
	}
	if req.Policies != nil {
		p.Policies = *req.Policies
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.properties.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if _, err := s.ownedProperty(ctx, actor, id); err != nil {
		return err
	}
	if err := s.properties.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx, s.log).WithField("property_id", id).Info("property deleted")
	return nil
}

func (s *Service) ownedProperty(ctx context.Context, actor domain.Actor, id int64) (*domain.Property, error) {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Authorize(actor, domain.ActionManageProperty, domain.Resource{PropertyOwnerID: p.OwnerID}) {
		return nil, ErrNotPropertyOwner
	}
	return p, nil
}
