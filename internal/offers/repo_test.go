package offers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-offers/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.SupplierOffer{}, &models.OutboxEvent{}))
	return conn
}

func seedOffer(t *testing.T, conn *gorm.DB, supplier, product string, variant *string, cost string, qty *int, active bool) {
	t.Helper()
	row := models.SupplierOffer{
		SupplierID:   supplier,
		ProductID:    product,
		VariantID:    variant,
		UnitCost:     decimal.RequireFromString(cost),
		AvailableQty: qty,
		IsActive:     active,
		IsInStock:    true,
	}
	require.NoError(t, conn.Create(&row).Error)
	if !active {
		require.NoError(t, conn.Model(&row).Update("is_active", false).Error)
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestRepositoryListByProductsNormalizesRows(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	seedOffer(t, conn, "A", "p1", nil, "100", intPtr(2), true)
	seedOffer(t, conn, "B", "p1", nil, "120.50", nil, true)
	seedOffer(t, conn, "C", "p1", strPtr("v1"), "90", intPtr(1), false)
	seedOffer(t, conn, "D", "p2", nil, "10", intPtr(1), true)

	offers, err := repo.ListByProducts(context.Background(), []string{"p1", "p1", " "})
	require.NoError(t, err)
	require.Len(t, offers, 3)

	byID := map[string]Offer{}
	for _, o := range offers {
		byID[o.SupplierID] = o
	}
	assert.True(t, byID["A"].UnitCost.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, byID["A"].AvailableQty)
	assert.Equal(t, 2, *byID["A"].AvailableQty)
	assert.True(t, byID["B"].UnitCost.Equal(decimal.RequireFromString("120.5")))
	assert.Nil(t, byID["B"].AvailableQty, "NULL quantity stays unknown")
	assert.True(t, byID["B"].IsBase())
	require.NotNil(t, byID["C"].VariantID)
	assert.Equal(t, "v1", *byID["C"].VariantID)
	assert.False(t, byID["C"].IsActive)

	empty, err := repo.ListByProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepositoryLockedVariantIDs(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	seedOffer(t, conn, "A", "p1", strPtr("v2"), "10", nil, true)
	seedOffer(t, conn, "B", "p1", strPtr("v2"), "11", nil, true)
	seedOffer(t, conn, "C", "p1", strPtr("v1"), "12", nil, true)
	seedOffer(t, conn, "D", "p1", strPtr("v3"), "12", nil, false)
	seedOffer(t, conn, "E", "p1", nil, "12", nil, true)
	seedOffer(t, conn, "F", "p2", strPtr("v9"), "12", nil, true)

	ids, err := repo.LockedVariantIDs(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, ids)
}

func TestRepositoryUpsertMatchesIdentity(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	created, err := repo.Upsert(ctx, &models.SupplierOffer{
		SupplierID: "A", ProductID: "p1", UnitCost: decimal.NewFromInt(100), IsActive: true, IsInStock: true,
	})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Upsert(ctx, &models.SupplierOffer{
		SupplierID: "A", ProductID: "p1", VariantID: strPtr("v1"), UnitCost: decimal.NewFromInt(90), IsActive: true, IsInStock: true,
	})
	require.NoError(t, err)
	assert.True(t, created, "variant offer is a separate identity")

	created, err = repo.Upsert(ctx, &models.SupplierOffer{
		SupplierID: "A", ProductID: "p1", UnitCost: decimal.NewFromInt(95), AvailableQty: intPtr(7), IsActive: true, IsInStock: true,
	})
	require.NoError(t, err)
	assert.False(t, created)

	var rows []models.SupplierOffer
	require.NoError(t, conn.Order("unit_cost").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.True(t, rows[1].UnitCost.Equal(decimal.NewFromInt(95)))
	require.NotNil(t, rows[1].AvailableQty)
	assert.Equal(t, 7, *rows[1].AvailableQty)
}

func TestRepositoryDeactivateStale(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)

	seedOffer(t, conn, "A", "p1", nil, "10", nil, true)
	seedOffer(t, conn, "B", "p1", nil, "11", nil, true)
	old := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, conn.Model(&models.SupplierOffer{}).Where("supplier_id = ?", "A").UpdateColumn("updated_at", old).Error)

	n, err := repo.DeactivateStale(context.Background(), time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	offers, err := repo.ListByProducts(context.Background(), []string{"p1"})
	require.NoError(t, err)
	active := map[string]bool{}
	for _, o := range offers {
		active[o.SupplierID] = o.IsActive
	}
	assert.False(t, active["A"])
	assert.True(t, active["B"])
}
