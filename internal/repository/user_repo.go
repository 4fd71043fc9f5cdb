package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"nepalstay/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type UserFilter struct {
	Role domain.UserRole
	Page
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: user already exists with this email", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (r *UserRepository) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ? AND id <> ?", normalizeEmail(email), exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	err := r.db.WithContext(ctx).Model(u).Select("name", "email", "phone", "avatar").Updates(u).Error
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: email already in use", domain.ErrConflict)
	}
	return err
}

func (r *UserRepository) SubmitVerification(ctx context.Context, id int64, docs domain.VerificationDocuments) error {
	return r.db.WithContext(ctx).Model(&domain.User{ID: id}).Updates(map[string]any{
		"verification_status": domain.VerificationPending,
		"verification_docs":   datatypes.NewJSONType(docs),
	}).Error
}

// SetVerification records the admin decision on an owner.
func (r *UserRepository) SetVerification(ctx context.Context, id int64, status domain.VerificationStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"verification_status": status,
		"is_verified":         status == domain.VerificationApproved,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]domain.User, int64, error) {
	p := f.Page.Normalize(DefaultUserLimit, MaxLimit)
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	err := q.Order("created_at DESC").Order("id DESC").Offset(p.offset()).Limit(p.Limit).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}

func (r *UserRepository) CountPendingOwners(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("role = ? AND verification_status = ?", domain.RolePropertyOwner, domain.VerificationPending).
		Count(&n).Error
	return n, err
}
