package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nepalstay/internal/domain"
	"nepalstay/internal/pkg/logger"
)

func TestConnect_SQLiteFile(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_time_format=sqlite"
	db, err := Connect(dsn, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	require.NoError(t, Migrate(db))
	for _, table := range []string{"users", "properties", "bookings", "reviews"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestMigrate_UniqueIndexes(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)

	u := &domain.User{Name: "A", Email: "a@example.np", PasswordHash: "x", Role: domain.RoleUser}
	require.NoError(t, db.Create(u).Error)
	dup := &domain.User{Name: "B", Email: "a@example.np", PasswordHash: "x", Role: domain.RoleUser}
	assert.Error(t, db.Create(dup).Error)

	rv := &domain.Review{UserID: u.ID, PropertyID: 1, BookingID: 1, Rating: 5, Comment: "ok"}
	require.NoError(t, db.Create(rv).Error)
	again := &domain.Review{UserID: u.ID, PropertyID: 1, BookingID: 1, Rating: 4, Comment: "again"}
	assert.Error(t, db.Create(again).Error)
}
