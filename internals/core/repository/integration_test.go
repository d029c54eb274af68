//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/database"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("marketplace"),
		tcpostgres.WithUsername("marketplace"),
		tcpostgres.WithPassword("marketplace"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestFollowCounterRoundTrip(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	vendors := repository.NewVendorRepository(db)
	follows := repository.NewFollowRepository(db)

	owner := &models.User{Name: "Dueña", Email: "duena@example.com", PasswordHash: "x"}
	fan := &models.User{Name: "Cliente", Email: "cliente@example.com", PasswordHash: "x"}
	require.NoError(t, users.CreateUser(ctx, owner))
	require.NoError(t, users.CreateUser(ctx, fan))

	vendor := &models.Vendor{UserID: owner.ID, Name: "Panadería La Espiga"}
	require.NoError(t, vendors.CreateVendor(ctx, vendor))

	count, err := follows.Follow(ctx, fan.ID, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = follows.Follow(ctx, fan.ID, vendor.ID)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	stored, err := vendors.GetVendorByID(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FollowersCount, "a rejected duplicate must not move the counter")

	count, err = follows.Unfollow(ctx, fan.ID, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = follows.Unfollow(ctx, fan.ID, vendor.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = follows.Follow(ctx, fan.ID, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFeaturedExpiry(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	vendors := repository.NewVendorRepository(db)
	payments := repository.NewPaymentRepository(db)

	owner := &models.User{Name: "Dueño", Email: "dueno@example.com", PasswordHash: "x"}
	require.NoError(t, users.CreateUser(ctx, owner))
	vendor := &models.Vendor{UserID: owner.ID, Name: "Tacos Don Beto"}
	require.NoError(t, vendors.CreateVendor(ctx, vendor))
	require.NoError(t, payments.CreatePayment(ctx, &models.Payment{
		VendorID: vendor.ID, UserID: owner.ID, SessionID: "cs_it_1",
		AmountCents: 9900, Currency: "mxn", Status: models.PaymentPending,
	}))

	now := time.Now().UTC()
	paidAt := now.Add(-31 * 24 * time.Hour)
	featured, applied, err := payments.CompletePayment(ctx, "cs_it_1", paidAt, 30*24*time.Hour)
	require.NoError(t, err)
	require.True(t, applied)
	assert.True(t, featured.Featured)

	_, applied, err = payments.CompletePayment(ctx, "cs_it_1", now, 30*24*time.Hour)
	require.NoError(t, err)
	assert.False(t, applied)

	// lapsed windows are hidden before the expiry job runs
	listed, err := vendors.ListFeaturedVendors(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, listed)

	expired, err := vendors.ExpireFeatured(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	stored, err := vendors.GetVendorByID(ctx, vendor.ID)
	require.NoError(t, err)
	assert.False(t, stored.Featured)
}
