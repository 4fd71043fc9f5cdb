package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nepalstay/internal/domain"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// PropertyFilter drives both public search and moderation listings.
type PropertyFilter struct {
	City      string
	Type      domain.PropertyType
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	MinGuests *int
	OwnerID   int64
	// PublicOnly restricts to active and approved listings.
	PublicOnly bool
	IsApproved *bool
	Sort       string
	Desc       bool
	Page
}

var propertySortColumns = map[string]string{
	"createdAt":     "created_at",
	"pricePerNight": "price_per_night",
	"rating":        "rating_average",
	"name":          "name",
}

// SortableField reports whether field may be used to order a search.
func SortableField(field string) bool {
	_, ok := propertySortColumns[field]
	return ok
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	var p domain.Property
	if err := r.db.WithContext(ctx).Preload("Owner").First(&p, id).Error; err != nil {
		return nil, notFound(err, "property")
	}
	return &p, nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	return r.db.WithContext(ctx).Model(p).
		Select("*").
		Omit("id", "owner_id", "created_at", "rating_average", "rating_count", "rating_sum", "Owner").
		Updates(p).Error
}

// ErrPropertyInUse means the property still has bookings that are not
// cancelled and cannot be removed.
var ErrPropertyInUse = fmt.Errorf("%w: property has active bookings; deactivate it instead", domain.ErrInvalidState)

// Delete removes the property together with its cancelled bookings. It
// refuses while any other booking references it.
func (r *PropertyRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockProperty(tx, id); err != nil {
			return err
		}
		var held int64
		if err := tx.Model(&domain.Booking{}).
			Where("property_id = ? AND status <> ?", id, domain.BookingCancelled).
			Count(&held).Error; err != nil {
			return err
		}
		if held > 0 {
			return ErrPropertyInUse
		}
		if err := tx.Where("property_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&domain.Booking{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Property{}, id).Error
	})
}

func (r *PropertyRepository) SetApproved(ctx context.Context, id int64, approved bool) error {
	res := r.db.WithContext(ctx).Model(&domain.Property{}).Where("id = ?", id).Update("is_approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: property not found", domain.ErrNotFound)
	}
	return nil
}

func (r *PropertyRepository) Search(ctx context.Context, f PropertyFilter) ([]domain.Property, int64, error) {
	p := f.Page.Normalize(DefaultPropertyLimit, MaxLimit)
	q := r.db.WithContext(ctx).Model(&domain.Property{})

	if f.PublicOnly {
		q = q.Where("is_active = ? AND is_approved = ?", true, true)
	}
	if f.IsApproved != nil {
		q = q.Where("is_approved = ?", *f.IsApproved)
	}
	if f.OwnerID != 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if city := strings.TrimSpace(f.City); city != "" {
		q = q.Where("LOWER(address_city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.MinPrice != nil {
		q = q.Where("price_per_night >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price_per_night <= ?", *f.MaxPrice)
	}
	if f.MinRating != nil {
		q = q.Where("rating_average >= ?", *f.MinRating)
	}
	if f.MinGuests != nil {
		q = q.Where("max_guests >= ?", *f.MinGuests)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := propertySortColumns[f.Sort]
	if !ok {
		col = "created_at"
	}
	var props []domain.Property
	err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: f.Desc}).
		Order("id DESC").
		Offset(p.offset()).
		Limit(p.Limit).
		Find(&props).Error
	return props, total, err
}

func (r *PropertyRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Property{}).Count(&n).Error
	return n, err
}

func (r *PropertyRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Property{}).Where("is_approved = ?", false).Count(&n).Error
	return n, err
}

type CityCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}

// TopCities ranks cities by approved listings.
func (r *PropertyRepository) TopCities(ctx context.Context, limit int) ([]CityCount, error) {
	var rows []CityCount
	err := r.db.WithContext(ctx).Model(&domain.Property{}).
		Select("address_city AS city, COUNT(*) AS count").
		Where("is_approved = ?", true).
		Group("address_city").
		Order("count DESC").
		Order("city ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// lockProperty loads the property row inside tx with FOR UPDATE. SQLite has
// no row locks and serialises writers instead.
func lockProperty(tx *gorm.DB, id int64) (*domain.Property, error) {
	var p domain.Property
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	if err != nil {
		return nil, notFound(err, "property")
	}
	return &p, nil
}
