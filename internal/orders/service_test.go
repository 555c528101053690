package orders

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
	"github.com/wholesail/wholesail-backend/internal/customers"
	"github.com/wholesail/wholesail-backend/internal/inventory"
	"github.com/wholesail/wholesail-backend/internal/ordernumber"
	"github.com/wholesail/wholesail-backend/pkg/db/models"
	"github.com/wholesail/wholesail-backend/pkg/enums"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
	"github.com/wholesail/wholesail-backend/pkg/fees"
	"github.com/wholesail/wholesail-backend/pkg/outbox"
	"github.com/wholesail/wholesail-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Wholesaler{},
		&models.User{},
		&models.WholesalerCustomer{},
		&models.CustomerGroup{},
		&models.CustomerGroupMember{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderCounter{},
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

func newTestOrderService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	events := outbox.NewService(outbox.NewRepository(db), nil)
	engine := alerts.NewEngine(alerts.NewRepository(db), events, nil, nil)
	resolver, err := customers.NewService(customers.NewRepository(db), nil)
	require.NoError(t, err)

	svc, err := NewService(
		NewRepository(db),
		inventory.NewRepository(db),
		ordernumber.NewAllocator(ordernumber.NewRepository(db)),
		engine,
		resolver,
		fees.NewCalculatorFromConfig(250, "0.30"),
		testTxRunner{db: db},
		events,
		nil,
		nil,
	)
	require.NoError(t, err)
	return svc
}

func seedOrderWholesaler(t *testing.T, db *gorm.DB, businessName string) *models.Wholesaler {
	t.Helper()

	wholesaler := &models.Wholesaler{
		ID:                       uuid.New(),
		BusinessName:             businessName,
		Email:                    "orders@smithfoods.com",
		DefaultLowStockThreshold: 10,
		IsActive:                 true,
	}
	require.NoError(t, db.Create(wholesaler).Error)
	return wholesaler
}

func seedRetailer(t *testing.T, db *gorm.DB, wholesalerID uuid.UUID) *models.User {
	t.Helper()

	phone := "+14155550134"
	user := &models.User{
		ID:        uuid.New(),
		Email:     "alice@corner-store.com",
		FirstName: "Alice",
		LastName:  "Nguyen",
		Phone:     &phone,
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	link := &models.WholesalerCustomer{
		ID:           uuid.New(),
		WholesalerID: wholesalerID,
		UserID:       user.ID,
		Status:       models.RelationshipStatusActive,
	}
	require.NoError(t, db.Create(link).Error)
	return user
}

func seedOrderProduct(t *testing.T, db *gorm.DB, wholesalerID uuid.UUID, stock int) *models.Product {
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

func TestCreateOrderUnitsDecrementsStock(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	retailer := seedRetailer(t, db, wholesaler.ID)
	product := seedOrderProduct(t, db, wholesaler.ID, 100)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		WholesalerID: wholesaler.ID,
		RetailerID:   retailer.ID,
		ActorUserID:  retailer.ID,
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("4.50"), SellingType: enums.SellingTypeUnits},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "SF-001", order.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, order.Status)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 88, reloaded.BaseUnitStock)

	var movement models.StockMovement
	require.NoError(t, db.First(&movement, "order_id = ?", order.ID).Error)
	assert.Equal(t, enums.MovementTypePurchase, movement.MovementType)
	assert.Equal(t, -12, movement.Quantity)
	assert.Equal(t, 100, movement.StockBefore)
	assert.Equal(t, 88, movement.StockAfter)
	require.NotNil(t, movement.Reason)
	assert.Equal(t, "2 units x 6 units/pack = 12 base units", *movement.Reason)
	require.NotNil(t, movement.CustomerName)
	assert.Equal(t, "Alice Nguyen", *movement.CustomerName)
}

func TestCreateOrderPalletDecrementsStock(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	retailer := seedRetailer(t, db, wholesaler.ID)
	product := seedOrderProduct(t, db, wholesaler.ID, 100)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		WholesalerID: wholesaler.ID,
		RetailerID:   retailer.ID,
		ActorUserID:  retailer.ID,
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("200.00"), SellingType: enums.SellingTypePallets},
		},
	})
	require.NoError(t, err)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 52, reloaded.BaseUnitStock)

	var movement models.StockMovement
	require.NoError(t, db.First(&movement, "order_id = ?", order.ID).Error)
	assert.Equal(t, -48, movement.Quantity)
	require.NotNil(t, movement.Reason)
	assert.Equal(t, "1 pallet x 48 units/pallet = 48 base units", *movement.Reason)
}

func TestCreateOrderTotalsMatchLineItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	retailer := seedRetailer(t, db, wholesaler.ID)
	first := seedOrderProduct(t, db, wholesaler.ID, 500)
	second := seedOrderProduct(t, db, wholesaler.ID, 500)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		WholesalerID: wholesaler.ID,
		RetailerID:   retailer.ID,
		ActorUserID:  retailer.ID,
		Lines: []LineInput{
			{ProductID: first.ID, Quantity: 3, UnitPrice: decimal.RequireFromString("4.50"), SellingType: enums.SellingTypeUnits},
			{ProductID: second.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("12.25"), SellingType: enums.SellingTypeUnits},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 2)

	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.Total)
	}
	assert.True(t, sum.Sub(order.Subtotal).Abs().LessThanOrEqual(decimal.RequireFromString("0.01")),
		"items sum %s vs subtotal %s", sum, order.Subtotal)
	assert.Equal(t, "38.00", order.Subtotal.StringFixed(2))
	// 2.5% of 38.00 plus the fixed 0.30.
	assert.Equal(t, "1.25", order.PlatformFee.StringFixed(2))
	// The platform fee is deducted from the wholesaler's payout, not added
	// to what the retailer owes.
	assert.True(t, order.Total.Equal(order.Subtotal))
}

func TestCreateOrderSequentialNumbers(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	retailer := seedRetailer(t, db, wholesaler.ID)
	product := seedOrderProduct(t, db, wholesaler.ID, 1000)

	want := []string{"SF-001", "SF-002", "SF-003"}
	for _, expected := range want {
		order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			WholesalerID: wholesaler.ID,
			RetailerID:   retailer.ID,
			ActorUserID:  retailer.ID,
			Lines: []LineInput{
				{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("4.50"), SellingType: enums.SellingTypeUnits},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, expected, order.OrderNumber)
	}
}

func TestCreateOrderRetriesAfterNumberConflict(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	retailer := seedRetailer(t, db, wholesaler.ID)
	product := seedOrderProduct(t, db, wholesaler.ID, 1000)

	// A stale counter pointing below an already assigned number forces the
	// first attempt into a uniqueness conflict.
	existing := &models.Order{
		ID:           uuid.New(),
		OrderNumber:  "SF-001",
		WholesalerID: wholesaler.ID,
		RetailerID:   retailer.ID,
		Status:       enums.OrderStatusPending,
		Subtotal:     decimal.RequireFromString("10.00"),
		Total:        decimal.RequireFromString("10.00"),
	}
	require.NoError(t, db.Create(existing).Error)
	counter := &models.OrderCounter{
		ID:           uuid.New(),
		WholesalerID: wholesaler.ID,
		Prefix:       "SF",
		LastNumber:   0,
	}
	require.NoError(t, db.Create(counter).Error)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		WholesalerID: wholesaler.ID,
		RetailerID:   retailer.ID,
		ActorUserID:  retailer.ID,
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("4.50"), SellingType: enums.SellingTypeUnits},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "SF-002", order.OrderNumber)

	// The failed attempt left no partial writes behind.
	var movements int64
	require.NoError(t, db.Model(&models.StockMovement{}).Count(&movements).Error)
	assert.Equal(t, int64(1), movements)
}

func TestCreateOrderMissingProductRollsBackEverything(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	retailer := seedRetailer(t, db, wholesaler.ID)
	product := seedOrderProduct(t, db, wholesaler.ID, 100)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		WholesalerID: wholesaler.ID,
		RetailerID:   retailer.ID,
		ActorUserID:  retailer.ID,
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("4.50"), SellingType: enums.SellingTypeUnits},
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.RequireFromString("9.00"), SellingType: enums.SellingTypeUnits},
		},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	var orderCount, itemCount, movementCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	require.NoError(t, db.Model(&models.StockMovement{}).Count(&movementCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, itemCount)
	assert.Zero(t, movementCount)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 100, reloaded.BaseUnitStock)
}

func TestCreateOrderCrossTenantProductRejected(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	other := seedOrderWholesaler(t, db, "Valley Traders")
	retailer := seedRetailer(t, db, wholesaler.ID)
	foreign := seedOrderProduct(t, db, other.ID, 100)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		WholesalerID: wholesaler.ID,
		RetailerID:   retailer.ID,
		ActorUserID:  retailer.ID,
		Lines: []LineInput{
			{ProductID: foreign.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("4.50"), SellingType: enums.SellingTypeUnits},
		},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateOrderRejectsNonCustomer(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	product := seedOrderProduct(t, db, wholesaler.ID, 100)

	stranger := &models.User{
		ID:        uuid.New(),
		Email:     "stranger@elsewhere.com",
		FirstName: "Sam",
		LastName:  "Stranger",
		IsActive:  true,
	}
	require.NoError(t, db.Create(stranger).Error)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		WholesalerID: wholesaler.ID,
		RetailerID:   stranger.ID,
		ActorUserID:  stranger.ID,
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("4.50"), SellingType: enums.SellingTypeUnits},
		},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestCreateOrderRaisesAlertOnBreach(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	retailer := seedRetailer(t, db, wholesaler.ID)
	product := seedOrderProduct(t, db, wholesaler.ID, 14)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		WholesalerID: wholesaler.ID,
		RetailerID:   retailer.ID,
		ActorUserID:  retailer.ID,
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("4.50"), SellingType: enums.SellingTypeUnits},
		},
	})
	require.NoError(t, err)

	var alert models.StockAlert
	require.NoError(t, db.First(&alert, "product_id = ?", product.ID).Error)
	assert.Equal(t, enums.StockAlertTypeLowStock, alert.AlertType)
	assert.Equal(t, 8, alert.CurrentStock)
}

func TestCreateOrderOversellGoesNegative(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	retailer := seedRetailer(t, db, wholesaler.ID)
	product := seedOrderProduct(t, db, wholesaler.ID, 10)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		WholesalerID: wholesaler.ID,
		RetailerID:   retailer.ID,
		ActorUserID:  retailer.ID,
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("200.00"), SellingType: enums.SellingTypePallets},
		},
	})
	require.NoError(t, err)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, -38, reloaded.BaseUnitStock)

	var alert models.StockAlert
	require.NoError(t, db.First(&alert, "product_id = ?", product.ID).Error)
	assert.Equal(t, enums.StockAlertTypeOutOfStock, alert.AlertType)
}

func TestCreateOrderEmitsOutboxEvent(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	retailer := seedRetailer(t, db, wholesaler.ID)
	product := seedOrderProduct(t, db, wholesaler.ID, 100)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		WholesalerID: wholesaler.ID,
		RetailerID:   retailer.ID,
		ActorUserID:  retailer.ID,
		Lines: []LineInput{
			{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("4.50"), SellingType: enums.SellingTypeUnits},
		},
	})
	require.NoError(t, err)

	var event models.OutboxEvent
	require.NoError(t, db.First(&event, "event_type = ?", enums.EventOrderCreated).Error)
	assert.Equal(t, enums.AggregateOrder, event.AggregateType)
	assert.Equal(t, order.ID, event.AggregateID)
	assert.Nil(t, event.PublishedAt)
}

func TestCreateOrderValidation(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	retailer := seedRetailer(t, db, wholesaler.ID)

	cases := []struct {
		name  string
		input CreateOrderInput
	}{
		{
			name:  "no lines",
			input: CreateOrderInput{WholesalerID: wholesaler.ID, RetailerID: retailer.ID},
		},
		{
			name: "zero quantity",
			input: CreateOrderInput{
				WholesalerID: wholesaler.ID,
				RetailerID:   retailer.ID,
				Lines: []LineInput{
					{ProductID: uuid.New(), Quantity: 0, UnitPrice: decimal.RequireFromString("1.00"), SellingType: enums.SellingTypeUnits},
				},
			},
		},
		{
			name: "negative price",
			input: CreateOrderInput{
				WholesalerID: wholesaler.ID,
				RetailerID:   retailer.ID,
				Lines: []LineInput{
					{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.RequireFromString("-1.00"), SellingType: enums.SellingTypeUnits},
				},
			},
		},
		{
			name: "bad selling type",
			input: CreateOrderInput{
				WholesalerID: wholesaler.ID,
				RetailerID:   retailer.ID,
				Lines: []LineInput{
					{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.RequireFromString("1.00"), SellingType: enums.SellingType("crates")},
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), tc.input)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestGetAndListOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestOrderService(t, db)

	wholesaler := seedOrderWholesaler(t, db, "Smith Foods")
	retailer := seedRetailer(t, db, wholesaler.ID)
	product := seedOrderProduct(t, db, wholesaler.ID, 1000)

	var last *models.Order
	for i := 0; i < 3; i++ {
		order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			WholesalerID: wholesaler.ID,
			RetailerID:   retailer.ID,
			ActorUserID:  retailer.ID,
			Lines: []LineInput{
				{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("4.50"), SellingType: enums.SellingTypeUnits},
			},
		})
		require.NoError(t, err)
		last = order
	}

	loaded, err := svc.GetOrder(context.Background(), wholesaler.ID, last.ID)
	require.NoError(t, err)
	assert.Equal(t, last.OrderNumber, loaded.OrderNumber)
	require.Len(t, loaded.Items, 1)

	page, err := svc.ListOrders(context.Background(), wholesaler.ID, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.NotEmpty(t, page.NextCursor)
	assert.Equal(t, "SF-003", page.Orders[0].OrderNumber)

	rest, err := svc.ListOrders(context.Background(), wholesaler.ID, pagination.Params{Limit: 2, Cursor: page.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	assert.Equal(t, "SF-001", rest.Orders[0].OrderNumber)

	_, err = svc.GetOrder(context.Background(), uuid.New(), last.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
