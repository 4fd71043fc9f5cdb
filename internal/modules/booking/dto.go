package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"nepalstay/internal/domain"
)

// Date accepts either a bare calendar date or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parse(s)
}

// ParseDate parses a query string date in the formats Date accepts.
func ParseDate(s string) (time.Time, error) {
	var d Date
	err := d.parse(s)
	return d.Time, err
}

func (d *Date) parse(s string) error {
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	d.Time = t.UTC()
	return nil
}

type CreateBookingRequest struct {
	PropertyID      int64                `json:"propertyId" binding:"required,gt=0"`
	CheckIn         *Date                `json:"checkIn" binding:"required"`
	CheckOut        *Date                `json:"checkOut" binding:"required"`
	Guests          int                  `json:"guests" binding:"required,gte=1"`
	Rooms           int                  `json:"rooms" binding:"omitempty,gte=1"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod" binding:"required,oneof=khalti esewa stripe cash"`
	SpecialRequests string               `json:"specialRequests" binding:"max=1000"`
	ContactInfo     *domain.ContactInfo  `json:"contactInfo"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type StatusRequest struct {
	Status domain.BookingStatus `json:"status" binding:"required,oneof=pending confirmed cancelled completed"`
	Reason string               `json:"reason" binding:"max=500"`
}

type AvailabilityQuery struct {
	CheckIn  string `form:"checkIn" binding:"required"`
	CheckOut string `form:"checkOut" binding:"required"`
}

type Availability struct {
	PropertyID     int64     `json:"propertyId"`
	CheckIn        time.Time `json:"checkIn"`
	CheckOut       time.Time `json:"checkOut"`
	RoomsTotal     int       `json:"roomsTotal"`
	RoomsHeld      int       `json:"roomsHeld"`
	RoomsAvailable int       `json:"roomsAvailable"`
}

type ListResult struct {
	Bookings []*domain.BookingView
	Total    int64
	Page     int
	Limit    int
}
