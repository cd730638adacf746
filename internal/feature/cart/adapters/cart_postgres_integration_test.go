//go:build integration

package adapters

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"shop_backend/internal/feature/cart/domain/entity"
	"shop_backend/internal/feature/cart/usecase"
	"shop_backend/internal/platform/db"
)

// setupPostgres starts a disposable Postgres container and migrates the cart tables.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "shop",
			"POSTGRES_PASSWORD": "shop",
			"POSTGRES_DB":       "shop",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=shop password=shop dbname=shop sslmode=disable", host, port.Port())
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(Models()...))
	require.NoError(t, CreateActiveCartIndexes(gdb))
	return gdb
}

func TestCartUsecase_ConcurrentGetOrCreateCartKeepsOneCart(t *testing.T) {
	gdb := setupPostgres(t)
	uc := usecase.NewCartUsecase(NewCartGorm(gdb), NewProductGorm(gdb), db.NewTransactor(gdb, 3))
	ctx := context.Background()
	user := uuid.New()

	const workers = 10
	ids := make(chan uint, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart, err := uc.GetOrCreateCart(ctx, entity.Owner{UserID: &user})
			if assert.NoError(t, err) {
				ids <- cart.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint]bool{}
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1)

	var rows int64
	require.NoError(t, gdb.Model(&CartModel{}).Where("user_id = ? AND status = ?", user, entity.StatusActive).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestCartUsecase_ConcurrentAddItemSerializes(t *testing.T) {
	gdb := setupPostgres(t)
	products := NewProductGorm(gdb)
	uc := usecase.NewCartUsecase(NewCartGorm(gdb), products, db.NewTransactor(gdb, 3))
	ctx := context.Background()

	mug := &entity.Product{Name: "Mug", Price: decimal.RequireFromString("12.50"), Stock: 100, IsActive: true}
	require.NoError(t, products.Create(ctx, mug))
	cart, err := uc.GetOrCreateCart(ctx, entity.Owner{SessionKey: "concurrent"})
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.AddItem(ctx, cart.ID, mug.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	loaded, err := uc.GetOrCreateCart(ctx, entity.Owner{SessionKey: "concurrent"})
	require.NoError(t, err)
	assert.Equal(t, workers, loaded.TotalItems(), "every increment must survive")

	var rows int64
	require.NoError(t, gdb.Model(&CartItemModel{}).Where("cart_id = ?", cart.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}
