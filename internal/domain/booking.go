package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"gorm.io/datatypes"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentKhalti PaymentMethod = "khalti"
	PaymentEsewa  PaymentMethod = "esewa"
	PaymentStripe PaymentMethod = "stripe"
	PaymentCash   PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentKhalti, PaymentEsewa, PaymentStripe, PaymentCash:
		return true
	}
	return false
}

// bookingTransitions lists every status a booking may move to from its
// current status. Cancelled and completed are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
	BookingCancelled: nil,
	BookingCompleted: nil,
}

// Transition validates a status change and returns the new status.
func Transition(current, requested BookingStatus) (BookingStatus, error) {
	if !requested.Valid() {
		return current, fmt.Errorf("%w: unknown booking status %q", ErrInvalidInput, requested)
	}
	for _, next := range bookingTransitions[current] {
		if next == requested {
			return requested, nil
		}
	}
	if current == BookingCancelled && requested == BookingCancelled {
		return current, fmt.Errorf("%w: booking is already cancelled", ErrInvalidState)
	}
	return current, fmt.Errorf("%w: cannot move booking from %s to %s", ErrInvalidState, current, requested)
}

type ContactInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Booking struct {
	ID                 int64                           `json:"id" gorm:"primaryKey"`
	UserID             int64                           `json:"userId" gorm:"index;not null"`
	PropertyID         int64                           `json:"propertyId" gorm:"index:idx_bookings_property_range;not null"`
	CheckIn            time.Time                       `json:"checkIn" gorm:"index:idx_bookings_property_range;not null"`
	CheckOut           time.Time                       `json:"checkOut" gorm:"index:idx_bookings_property_range;not null"`
	Guests             int                             `json:"guests" gorm:"not null"`
	Rooms              int                             `json:"rooms" gorm:"not null"`
	Nights             int                             `json:"nights" gorm:"not null"`
	PricePerNight      float64                         `json:"pricePerNight" gorm:"not null"`
	TotalAmount        float64                         `json:"totalAmount" gorm:"not null"`
	PaymentMethod      PaymentMethod                   `json:"paymentMethod" gorm:"type:varchar(16);not null;uniqueIndex:idx_bookings_payment_ref,where:payment_id <> ''"`
	PaymentStatus      PaymentStatus                   `json:"paymentStatus" gorm:"type:varchar(16);not null;default:pending"`
	PaymentID          string                          `json:"paymentId,omitempty" gorm:"uniqueIndex:idx_bookings_payment_ref"`
	Status             BookingStatus                   `json:"status" gorm:"type:varchar(16);index;not null;default:pending"`
	SpecialRequests    string                          `json:"specialRequests,omitempty" gorm:"type:text"`
	ContactInfo        datatypes.JSONType[ContactInfo] `json:"contactInfo"`
	CreatedAt          time.Time                       `json:"createdAt" gorm:"index"`
	UpdatedAt          time.Time                       `json:"updatedAt"`
	CancelledAt        *time.Time                      `json:"cancelledAt,omitempty"`
	CancellationReason string                          `json:"cancellationReason,omitempty" gorm:"type:text"`

	User     *User     `json:"-" gorm:"foreignKey:UserID"`
	Property *Property `json:"-" gorm:"foreignKey:PropertyID"`
}

// Paid reports whether a gateway or staff already settled the booking.
func (b *Booking) Paid() bool {
	return b.PaymentStatus == PaymentCompleted
}

// MaxStayNights bounds a single booking and an availability query.
const MaxStayNights = 365

const secondsPerDay = 24 * 60 * 60

// Nights counts started 24h periods between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	if !checkOut.After(checkIn) {
		return 0
	}
	secs := checkOut.Unix() - checkIn.Unix()
	n := (secs + secondsPerDay - 1) / secondsPerDay
	if n < 1 {
		n = 1
	}
	return int(n)
}

// TotalAmount prices a stay. The result is frozen onto the booking.
func TotalAmount(pricePerNight float64, nights, rooms int) float64 {
	total := pricePerNight * float64(nights) * float64(rooms)
	return math.Round(total*100) / 100
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// PeakRoomsHeld returns the largest number of rooms held on any single night
// of [checkIn, checkOut) by the given bookings. A booking holds every night
// it touches.
func PeakRoomsHeld(held []Booking, checkIn, checkOut time.Time) int {
	type edge struct{ night, rooms int64 }
	edges := make([]edge, 0, 2*len(held))
	for _, b := range held {
		if b.Status == BookingCancelled || b.Rooms <= 0 {
			continue
		}
		from, to := b.CheckIn, b.CheckOut
		if from.Before(checkIn) {
			from = checkIn
		}
		if to.After(checkOut) {
			to = checkOut
		}
		if !from.Before(to) {
			continue
		}
		first := (from.Unix() - checkIn.Unix()) / secondsPerDay
		end := (to.Unix() - checkIn.Unix() + secondsPerDay - 1) / secondsPerDay
		if end <= first {
			end = first + 1
		}
		edges = append(edges, edge{first, int64(b.Rooms)}, edge{end, -int64(b.Rooms)})
	}
	// releases sort before holds on the same night
	slices.SortFunc(edges, func(a, b edge) int {
		if a.night != b.night {
			return cmp.Compare(a.night, b.night)
		}
		return cmp.Compare(a.rooms, b.rooms)
	})

	var current, peak int64
	for _, e := range edges {
		current += e.rooms
		peak = max(peak, current)
	}
	return int(peak)
}

// BookingView is a booking with its property and guest expanded for display.
type BookingView struct {
	Booking
	Property *PropertySummary `json:"property,omitempty"`
	User     *UserSummary     `json:"user,omitempty"`
}

func NewBookingView(b *Booking) *BookingView {
	v := &BookingView{Booking: *b}
	if b.Property != nil {
		v.Property = b.Property.Summary()
	}
	if b.User != nil {
		v.User = b.User.Summary()
	}
	return v
}
