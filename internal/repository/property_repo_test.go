package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nepalstay/internal/domain"
	"nepalstay/internal/testutil"
)

func TestPropertyRepository_SearchFilters(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewPropertyRepository(db)
	owner := testutil.User(t, db, domain.RolePropertyOwner)

	testutil.Property(t, db, owner.ID, func(p *domain.Property) {
		p.Name = "Lake Inn"
		p.PricePerNight = 1500
		p.MaxGuests = 2
	})
	testutil.Property(t, db, owner.ID, func(p *domain.Property) {
		p.Name = "Summit Hostel"
		p.Type = domain.PropertyHostel
		p.Address.City = "Kathmandu"
		p.PricePerNight = 800
		p.MaxGuests = 6
	})
	testutil.Property(t, db, owner.ID, func(p *domain.Property) {
		p.Name = "Hidden"
		p.IsApproved = false
	})
	testutil.Property(t, db, owner.ID, func(p *domain.Property) {
		p.Name = "Closed"
		p.IsActive = false
	})

	all, total, err := repo.Search(ctx, PropertyFilter{PublicOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	byCity, _, err := repo.Search(ctx, PropertyFilter{PublicOnly: true, City: "kathm"})
	require.NoError(t, err)
	require.Len(t, byCity, 1)
	assert.Equal(t, "Summit Hostel", byCity[0].Name)

	maxPrice := 1000.0
	cheap, _, err := repo.Search(ctx, PropertyFilter{PublicOnly: true, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, cheap, 1)
	assert.Equal(t, domain.PropertyHostel, cheap[0].Type)

	guests := 3
	roomy, _, err := repo.Search(ctx, PropertyFilter{PublicOnly: true, MinGuests: &guests})
	require.NoError(t, err)
	require.Len(t, roomy, 1)
	assert.Equal(t, "Summit Hostel", roomy[0].Name)

	sorted, _, err := repo.Search(ctx, PropertyFilter{PublicOnly: true, Sort: "pricePerNight"})
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	assert.Equal(t, 800.0, sorted[0].PricePerNight)

	notApproved := false
	pending, total, err := repo.Search(ctx, PropertyFilter{IsApproved: &notApproved})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Hidden", pending[0].Name)
}

func TestPropertyRepository_UpdateKeepsRating(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewPropertyRepository(db)
	owner := testutil.User(t, db, domain.RolePropertyOwner)
	p := testutil.Property(t, db, owner.ID)
	require.NoError(t, db.Model(p).Updates(map[string]any{"rating_sum": 9, "rating_count": 2, "rating_average": 4.5}).Error)

	p.PricePerNight = 2500
	p.Rating = domain.Rating{}
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, got.PricePerNight)
	assert.Equal(t, int64(2), got.Rating.Count)
	assert.Equal(t, owner.ID, got.OwnerID)
}

func TestPropertyRepository_TopCities(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPropertyRepository(db)
	owner := testutil.User(t, db, domain.RolePropertyOwner)

	for _, city := range []string{"Pokhara", "Pokhara", "Kathmandu", "Chitwan", "Chitwan", "Chitwan"} {
		c := city
		testutil.Property(t, db, owner.ID, func(p *domain.Property) { p.Address.City = c })
	}
	testutil.Property(t, db, owner.ID, func(p *domain.Property) {
		p.Address.City = "Lumbini"
		p.IsApproved = false
	})

	cities, err := repo.TopCities(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, cities, 3)
	assert.Equal(t, CityCount{City: "Chitwan", Count: 3}, cities[0])
	assert.Equal(t, CityCount{City: "Pokhara", Count: 2}, cities[1])
}

func TestPropertyRepository_DeleteRefusesWhileBooked(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewPropertyRepository(db)
	owner := testutil.User(t, db, domain.RolePropertyOwner)
	guest := testutil.User(t, db, domain.RoleUser)
	p := testutil.Property(t, db, owner.ID)

	for _, status := range []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed, domain.BookingCompleted} {
		b := testutil.Booking(t, db, guest.ID, p, testutil.Day(2030, 8, 1), testutil.Day(2030, 8, 2), 1,
			func(b *domain.Booking) { b.Status = status })

		err := repo.Delete(ctx, p.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState, status)
		assert.ErrorIs(t, err, ErrPropertyInUse, status)

		require.NoError(t, db.Model(b).Update("status", domain.BookingCancelled).Error)
	}

	_, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err, "refused delete must keep the property")

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var left int64
	require.NoError(t, db.Model(&domain.Booking{}).Where("property_id = ?", p.ID).Count(&left).Error)
	assert.Zero(t, left)

	assert.ErrorIs(t, repo.Delete(ctx, p.ID), domain.ErrNotFound)
}
