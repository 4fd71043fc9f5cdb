package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nepalstay/internal/domain"
	"nepalstay/internal/testutil"
)

func TestUserRepository_EmailIsUniqueCaseInsensitive(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	require.NoError(t, repo.Create(ctx, &domain.User{Name: "Sita", Email: "Sita@Example.np", PasswordHash: "x", Role: domain.RoleUser}))
	err := repo.Create(ctx, &domain.User{Name: "Other", Email: " sita@example.np", PasswordHash: "x", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrConflict)

	u, err := repo.GetByEmail(ctx, "SITA@example.np")
	require.NoError(t, err)
	assert.Equal(t, "sita@example.np", u.Email)

	_, err = repo.GetByEmail(ctx, "nobody@example.np")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_Verification(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	owner := testutil.User(t, db, domain.RolePropertyOwner, func(u *domain.User) {
		u.IsVerified = false
		u.VerificationStatus = domain.VerificationUnset
	})

	require.NoError(t, repo.SubmitVerification(ctx, owner.ID, domain.VerificationDocuments{
		BusinessRegistration: "uploads/br.pdf", CitizenshipID: "uploads/cz.pdf",
	}))
	pending, err := repo.CountPendingOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	require.NoError(t, repo.SetVerification(ctx, owner.ID, domain.VerificationApproved))
	got, err := repo.GetByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Equal(t, domain.VerificationApproved, got.VerificationStatus)
	assert.Equal(t, "uploads/br.pdf", got.VerificationDocs.Data().BusinessRegistration)

	assert.ErrorIs(t, repo.SetVerification(ctx, 9999, domain.VerificationRejected), domain.ErrNotFound)
}

func TestUserRepository_ListByRole(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	testutil.User(t, db, domain.RoleUser)
	testutil.User(t, db, domain.RoleUser)
	testutil.User(t, db, domain.RolePropertyOwner)

	users, total, err := repo.List(context.Background(), UserFilter{Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)
}
