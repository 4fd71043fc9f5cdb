package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nepalstay/internal/domain"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

var errReviewExists = fmt.Errorf("%w: a review already exists for this booking", domain.ErrConflict)

// CreateWithRating inserts the review and folds its rating into the property
// aggregate in one transaction. A second review for the same booking fails
// on the unique index and is reported as a conflict.
func (r *ReviewRepository) CreateWithRating(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockProperty(tx, rv.PropertyID)
		if err != nil {
			return err
		}

		if err := tx.Omit("User").Create(rv).Error; err != nil {
			if IsUniqueViolation(err) {
				return errReviewExists
			}
			return err
		}

		next := p.Rating.AddRating(rv.Rating)
		return tx.Model(&domain.Property{}).Where("id = ?", p.ID).Updates(map[string]any{
			"rating_sum":     next.Sum,
			"rating_count":   next.Count,
			"rating_average": next.Average,
		}).Error
	})
}

func (r *ReviewRepository) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).Where("booking_id = ?", bookingID).Count(&n).Error
	return n > 0, err
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	var rv domain.Review
	if err := r.db.WithContext(ctx).Preload("User").First(&rv, id).Error; err != nil {
		return nil, notFound(err, "review")
	}
	return &rv, nil
}

func (r *ReviewRepository) ListByProperty(ctx context.Context, propertyID int64, page Page) ([]domain.Review, int64, error) {
	p := page.Normalize(DefaultReviewLimit, MaxLimit)
	q := r.db.WithContext(ctx).Model(&domain.Review{}).Where("property_id = ?", propertyID)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reviews []domain.Review
	err := q.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Offset(p.offset()).Limit(p.Limit).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *ReviewRepository) SaveReply(ctx context.Context, id int64, text string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Review{}).Where("id = ?", id).Updates(map[string]any{
		"reply_text":       text,
		"reply_replied_at": at,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: review not found", domain.ErrNotFound)
	}
	return nil
}
