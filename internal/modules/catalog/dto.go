package catalog

import (
	"nepalstay/internal/domain"
)

// SearchQuery binds GET /properties query parameters.
type SearchQuery struct {
	City      string              `form:"city"`
	Type      domain.PropertyType `form:"type" binding:"omitempty,oneof=hotel hostel"`
	MinPrice  *float64            `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice  *float64            `form:"maxPrice" binding:"omitempty,gte=0"`
	MinRating *float64            `form:"minRating" binding:"omitempty,gte=0,lte=5"`
	MaxGuests *int                `form:"maxGuests" binding:"omitempty,gte=1"`
	Page      int                 `form:"page" binding:"omitempty,gte=1"`
	Limit     int                 `form:"limit" binding:"omitempty,gte=1"`
	Sort      string              `form:"sort"`
	Order     string              `form:"order" binding:"omitempty,oneof=asc desc"`
}

type AddressInput struct {
	Street     string `json:"street"`
	City       string `json:"city" binding:"required"`
	District   string `json:"district"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (a AddressInput) toDomain() domain.Address {
	country := a.Country
	if country == "" {
		country = "Nepal"
	}
	return domain.Address{
		Street:     a.Street,
		City:       a.City,
		District:   a.District,
		Province:   a.Province,
		PostalCode: a.PostalCode,
		Country:    country,
	}
}

type CreatePropertyRequest struct {
	Name          string              `json:"name" binding:"required,max=200"`
	Description   string              `json:"description" binding:"required"`
	Type          domain.PropertyType `json:"type" binding:"required,oneof=hotel hostel"`
	Address       AddressInput        `json:"address"`
	Location      domain.Location     `json:"location"`
	Amenities     []string            `json:"amenities"`
	Images        []domain.Image      `json:"images"`
	PricePerNight float64             `json:"pricePerNight" binding:"required,gt=0"`
	MaxGuests     int                 `json:"maxGuests" binding:"required,gte=1"`
	RoomsTotal    int                 `json:"roomsTotal" binding:"required,gte=1"`
	Policies      domain.Policies     `json:"policies"`
}

// UpdatePropertyRequest is a partial update; nil fields are left as stored.
type UpdatePropertyRequest struct {
	Name          *string              `json:"name" binding:"omitempty,max=200"`
	Description   *string              `json:"description"`
	Type          *domain.PropertyType `json:"type" binding:"omitempty,oneof=hotel hostel"`
	Address       *AddressInput        `json:"address"`
	Location      *domain.Location     `json:"location"`
	Amenities     []string             `json:"amenities"`
	Images        []domain.Image       `json:"images"`
	PricePerNight *float64             `json:"pricePerNight" binding:"omitempty,gt=0"`
	MaxGuests     *int                 `json:"maxGuests" binding:"omitempty,gte=1"`
	RoomsTotal    *int                 `json:"roomsTotal" binding:"omitempty,gte=1"`
	Policies      *domain.Policies     `json:"policies"`
	IsActive      *bool                `json:"isActive"`
}

// PropertyDetail is the public view of one listing with its owner contact.
type PropertyDetail struct {
	*domain.Property
	Owner *domain.UserSummary `json:"owner,omitempty"`
}

// SearchResult is one page of properties.
type SearchResult struct {
	Properties []domain.Property
	Total      int64
	Page       int
	Limit      int
}
