package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"nepalstay/internal/config"
	"nepalstay/internal/database"
	"nepalstay/internal/domain"
	"nepalstay/internal/modules/auth"
	"nepalstay/internal/pkg/logger"
	"nepalstay/internal/repository"
)

func main() {
	demo := flag.Bool("demo", false, "also create a demo owner, guest and two listed properties")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logger.Default().WithError(err).Fatal("config")
	}
	log := logger.New(os.Stdout, cfg.LogLevel)

	db, err := database.Connect(cfg.Database.URL, log)
	if err != nil {
		log.WithError(err).Fatal("DB connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migrate failed")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	admin, err := ensureUser(ctx, users, domain.User{
		Name:       cfg.Admin.Name,
		Email:      cfg.Admin.Email,
		Phone:      cfg.Admin.Phone,
		Role:       domain.RoleCompanyAdmin,
		IsVerified: true,
	}, cfg.Admin.Password)
	if err != nil {
		log.WithError(err).Fatal("seed admin")
	}
	log.WithFields(logrus.Fields{"id": admin.ID, "email": admin.Email}).Info("company admin ready")

	if !*demo {
		return
	}
	if err := seedDemo(ctx, db, users, log); err != nil {
		log.WithError(err).Fatal("seed demo data")
	}
}

// ensureUser returns the user with u.Email, creating it with password when
// it does not exist yet.
func ensureUser(ctx context.Context, users *repository.UserRepository, u domain.User, password string) (*domain.User, error) {
	existing, err := users.GetByEmail(ctx, u.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	if err := users.Create(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func seedDemo(ctx context.Context, db *gorm.DB, users *repository.UserRepository, log logrus.FieldLogger) error {
	owner, err := ensureUser(ctx, users, domain.User{
		Name:               "Demo Owner",
		Email:              "owner@nepalstay.local",
		Phone:              "9801111111",
		Role:               domain.RolePropertyOwner,
		IsVerified:         true,
		VerificationStatus: domain.VerificationApproved,
	}, "owner12345")
	if err != nil {
		return err
	}
	guest, err := ensureUser(ctx, users, domain.User{
		Name:  "Demo Guest",
		Email: "guest@nepalstay.local",
		Phone: "9802222222",
		Role:  domain.RoleUser,
	}, "guest12345")
	if err != nil {
		return err
	}

	var count int64
	if err := db.WithContext(ctx).Model(&domain.Property{}).Where("owner_id = ?", owner.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.WithField("owner_id", owner.ID).Info("demo properties already present")
		return nil
	}

	properties := repository.NewPropertyRepository(db)
	for i, p := range demoProperties(owner.ID) {
		if err := properties.Create(ctx, &p); err != nil {
			return fmt.Errorf("property %d: %w", i, err)
		}
	}
	log.WithFields(logrus.Fields{"owner_id": owner.ID, "guest_id": guest.ID}).Info("demo data created")
	return nil
}

func demoProperties(ownerID int64) []domain.Property {
	return []domain.Property{
		{
			OwnerID:       ownerID,
			Name:          "Thamel Courtyard Hotel",
			Description:   "Quiet rooms a short walk from Durbar Square.",
			Type:          domain.PropertyHotel,
			Address:       domain.Address{Street: "Chaksibari Marg", City: "Kathmandu", Province: "Bagmati", Country: "Nepal"},
			Location:      domain.Location{Latitude: 27.7154, Longitude: 85.3123},
			Amenities:     []string{"wifi", "breakfast", "airport pickup"},
			PricePerNight: 4500,
			MaxGuests:     4,
			RoomsTotal:    12,
			IsActive:      true,
			IsApproved:    true,
			Policies:      domain.Policies{CheckIn: "14:00", CheckOut: "12:00", Cancellation: "Free cancellation up to 24h before check-in"},
		},
		{
			OwnerID:       ownerID,
			Name:          "Lakeside Backpackers",
			Description:   "Dorms and private rooms on Phewa lake.",
			Type:          domain.PropertyHostel,
			Address:       domain.Address{Street: "Lakeside Road", City: "Pokhara", Province: "Gandaki", Country: "Nepal"},
			Location:      domain.Location{Latitude: 28.2096, Longitude: 83.9596},
			Amenities:     []string{"wifi", "lockers", "rooftop"},
			PricePerNight: 900,
			MaxGuests:     2,
			RoomsTotal:    20,
			IsActive:      true,
			IsApproved:    true,
		},
	}
}
