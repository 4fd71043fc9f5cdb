package domain

import (
	"time"

	"gorm.io/datatypes"
)

type PropertyType string

const (
	PropertyHotel  PropertyType = "hotel"
	PropertyHostel PropertyType = "hostel"
)

func (t PropertyType) Valid() bool {
	return t == PropertyHotel || t == PropertyHostel
}

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city" gorm:"index"`
	District   string `json:"district,omitempty"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PlaceID   string  `json:"placeId,omitempty"`
}

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type Policies struct {
	CheckIn      string `json:"checkIn,omitempty"`
	CheckOut     string `json:"checkOut,omitempty"`
	Cancellation string `json:"cancellation,omitempty"`
}

// Rating keeps the running sum so a new review updates the aggregate without
// rereading every review of the property.
type Rating struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
	Sum     int64   `json:"-"`
}

type Property struct {
	ID            int64                       `json:"id" gorm:"primaryKey"`
	OwnerID       int64                       `json:"ownerId" gorm:"index;not null"`
	Name          string                      `json:"name" gorm:"not null"`
	Description   string                      `json:"description"`
	Type          PropertyType                `json:"type" gorm:"type:varchar(16);index"`
	Address       Address                     `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Location      Location                    `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	Amenities     datatypes.JSONSlice[string] `json:"amenities"`
	Images        datatypes.JSONSlice[Image]  `json:"images"`
	PricePerNight float64                     `json:"pricePerNight" gorm:"not null"`
	MaxGuests     int                         `json:"maxGuests" gorm:"not null"`
	RoomsTotal    int                         `json:"roomsTotal" gorm:"not null"`
	Rating        Rating                      `json:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	IsActive      bool                        `json:"isActive" gorm:"default:true;index"`
	IsApproved    bool                        `json:"isApproved" gorm:"default:false;index"`
	Policies      Policies                    `json:"policies" gorm:"embedded;embeddedPrefix:policy_"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`

	Owner *User `json:"-" gorm:"foreignKey:OwnerID"`
}

// Searchable reports whether the property may appear in public search.
func (p *Property) Searchable() bool {
	return p.IsActive && p.IsApproved
}

type PropertySummary struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Address       Address `json:"address"`
	Images        []Image `json:"images,omitempty"`
	PricePerNight float64 `json:"pricePerNight"`
	OwnerID       int64   `json:"ownerId"`
}

func (p *Property) Summary() *PropertySummary {
	if p == nil {
		return nil
	}
	return &PropertySummary{
		ID:            p.ID,
		Name:          p.Name,
		Address:       p.Address,
		Images:        p.Images,
		PricePerNight: p.PricePerNight,
		OwnerID:       p.OwnerID,
	}
}

// AddRating folds a new review rating into the aggregate.
func (r Rating) AddRating(rating int) Rating {
	r.Sum += int64(rating)
	r.Count++
	r.Average = float64(r.Sum) / float64(r.Count)
	return r
}
