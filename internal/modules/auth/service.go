package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"nepalstay/internal/domain"
	"nepalstay/internal/pkg/logger"
)

type Service struct {
	users UserRepository
	jwt   tokenIssuer
	log   logrus.FieldLogger
}

func NewService(users UserRepository, jwt tokenIssuer, log logrus.FieldLogger) *Service {
	return &Service{users: users, jwt: jwt, log: log}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role == domain.RoleCompanyAdmin {
		return nil, ErrAdminSelfRegister
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		Role:         role,
	}
	if role == domain.RolePropertyOwner {
		user.VerificationStatus = domain.VerificationUnset
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).WithFields(logrus.Fields{"new_user_id": user.ID, "role": role}).Info("user registered")
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *Service) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Avatar != nil {
		user.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		taken, err := s.users.EmailTaken(ctx, *req.Email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailInUse
		}
		user.Email = *req.Email
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SubmitVerification stores owner documents and puts the owner in the admin
// review queue. A document left empty keeps its previous upload.
func (s *Service) SubmitVerification(ctx context.Context, actor domain.Actor, docs domain.VerificationDocuments) (*domain.User, error) {
	if actor.Role != domain.RolePropertyOwner {
		return nil, ErrNotPropertyOwner
	}
	if docs.BusinessRegistration == "" && docs.CitizenshipID == "" {
		return nil, ErrNoDocuments
	}

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	merged := user.VerificationDocs.Data()
	if docs.BusinessRegistration != "" {
		merged.BusinessRegistration = docs.BusinessRegistration
	}
	if docs.CitizenshipID != "" {
		merged.CitizenshipID = docs.CitizenshipID
	}

	if err := s.users.SubmitVerification(ctx, user.ID, merged); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, user.ID)
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
