package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wholesail/wholesail-backend/internal/alerts"
	"github.com/wholesail/wholesail-backend/pkg/db/models"
	"github.com/wholesail/wholesail-backend/pkg/enums"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
	"github.com/wholesail/wholesail-backend/pkg/outbox"
	"github.com/wholesail/wholesail-backend/pkg/pagination"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Wholesaler{},
		&models.Product{},
		&models.StockMovement{},
		&models.StockAlert{},
		&models.OutboxEvent{},
	))
	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	events := outbox.NewService(outbox.NewRepository(db), nil)
	engine := alerts.NewEngine(alerts.NewRepository(db), events, nil, nil)
	svc, err := NewService(NewRepository(db), testTxRunner{db: db}, engine, events, nil, nil)
	require.NoError(t, err)
	return svc
}

func seedInventoryWholesaler(t *testing.T, db *gorm.DB) *models.Wholesaler {
	t.Helper()

	wholesaler := &models.Wholesaler{
		ID:                       uuid.New(),
		BusinessName:             "Smith Foods",
		Email:                    "ops@smithfoods.example",
		DefaultLowStockThreshold: 10,
		IsActive:                 true,
	}
	require.NoError(t, db.Create(wholesaler).Error)
	return wholesaler
}

func seedInventoryProduct(t *testing.T, db *gorm.DB, wholesalerID uuid.UUID, stock int) *models.Product {
	t.Helper()

	threshold := 10
	product := &models.Product{
		ID:                uuid.New(),
		WholesalerID:      wholesalerID,
		Name:              "Canned Tomatoes",
		UnitPrice:         decimal.RequireFromString("4.50"),
		PalletPrice:       decimal.RequireFromString("200.00"),
		BaseUnitStock:     stock,
		QuantityInPack:    6,
		UnitsPerPallet:    48,
		LowStockThreshold: &threshold,
		IsActive:          true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestRecordMovementManualDecrease(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newTestService(t, db)

	wholesaler := seedInventoryWholesaler(t, db)
	product := seedInventoryProduct(t, db, wholesaler.ID, 100)

	reason := "damaged in warehouse"
	movement, err := svc.RecordMovement(context.Background(), RecordMovementInput{
		WholesalerID: wholesaler.ID,
		ProductID:    product.ID,
		MovementType: enums.MovementTypeManualDecrease,
		Quantity:     30,
		Reason:       &reason,
		ActorUserID:  uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, -30, movement.Quantity)
	assert.Equal(t, 100, movement.StockBefore)
	assert.Equal(t, 70, movement.StockAfter)
	assert.Equal(t, movement.StockBefore+movement.Quantity, movement.StockAfter)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 70, reloaded.BaseUnitStock)
	assert.Equal(t, 11, reloaded.Stock)
	assert.Equal(t, 1, reloaded.PalletStock)
}

func TestRecordMovementManualIncrease(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newTestService(t, db)

	wholesaler := seedInventoryWholesaler(t, db)
	product := seedInventoryProduct(t, db, wholesaler.ID, 20)

	movement, err := svc.RecordMovement(context.Background(), RecordMovementInput{
		WholesalerID: wholesaler.ID,
		ProductID:    product.ID,
		MovementType: enums.MovementTypeManualIncrease,
		Quantity:     15,
		ActorUserID:  uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, 15, movement.Quantity)
	assert.Equal(t, 35, movement.StockAfter)
}

func TestRecordMovementRaisesAlertOnBreach(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newTestService(t, db)

	wholesaler := seedInventoryWholesaler(t, db)
	product := seedInventoryProduct(t, db, wholesaler.ID, 12)

	_, err := svc.RecordMovement(context.Background(), RecordMovementInput{
		WholesalerID: wholesaler.ID,
		ProductID:    product.ID,
		MovementType: enums.MovementTypeManualDecrease,
		Quantity:     7,
		ActorUserID:  uuid.New(),
	})
	require.NoError(t, err)

	var alert models.StockAlert
	require.NoError(t, db.First(&alert, "product_id = ?", product.ID).Error)
	assert.Equal(t, enums.StockAlertTypeLowStock, alert.AlertType)
	assert.Equal(t, 5, alert.CurrentStock)
}

func TestRecordMovementRejectsPurchaseType(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newTestService(t, db)

	wholesaler := seedInventoryWholesaler(t, db)
	product := seedInventoryProduct(t, db, wholesaler.ID, 100)

	_, err := svc.RecordMovement(context.Background(), RecordMovementInput{
		WholesalerID: wholesaler.ID,
		ProductID:    product.ID,
		MovementType: enums.MovementTypePurchase,
		Quantity:     5,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRecordMovementMissingProductWritesNothing(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newTestService(t, db)

	wholesaler := seedInventoryWholesaler(t, db)

	_, err := svc.RecordMovement(context.Background(), RecordMovementInput{
		WholesalerID: wholesaler.ID,
		ProductID:    uuid.New(),
		MovementType: enums.MovementTypeManualDecrease,
		Quantity:     5,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	var movements int64
	require.NoError(t, db.Model(&models.StockMovement{}).Count(&movements).Error)
	assert.Equal(t, int64(0), movements)
}

func TestRecordMovementScopedToWholesaler(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newTestService(t, db)

	owner := seedInventoryWholesaler(t, db)
	other := seedInventoryWholesaler(t, db)
	product := seedInventoryProduct(t, db, owner.ID, 100)

	_, err := svc.RecordMovement(context.Background(), RecordMovementInput{
		WholesalerID: other.ID,
		ProductID:    product.ID,
		MovementType: enums.MovementTypeManualDecrease,
		Quantity:     5,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListMovementsPagination(t *testing.T) {
	db := setupInventoryTestDB(t)
	svc := newTestService(t, db)

	wholesaler := seedInventoryWholesaler(t, db)
	product := seedInventoryProduct(t, db, wholesaler.ID, 1000)

	for i := 0; i < 3; i++ {
		_, err := svc.RecordMovement(context.Background(), RecordMovementInput{
			WholesalerID: wholesaler.ID,
			ProductID:    product.ID,
			MovementType: enums.MovementTypeManualDecrease,
			Quantity:     10,
			ActorUserID:  uuid.New(),
		})
		require.NoError(t, err)
	}

	page, err := svc.ListMovements(context.Background(), wholesaler.ID, pagination.Params{Limit: 2}, MovementFilters{ProductID: &product.ID})
	require.NoError(t, err)
	require.Len(t, page.Movements, 2)
	assert.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListMovements(context.Background(), wholesaler.ID, pagination.Params{Limit: 2, Cursor: page.NextCursor}, MovementFilters{ProductID: &product.ID})
	require.NoError(t, err)
	require.Len(t, rest.Movements, 1)
	assert.Empty(t, rest.NextCursor)
}
