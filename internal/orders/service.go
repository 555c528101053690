// Package orders coordinates order ingestion: number allocation, header and
// line persistence, stock decrement, ledger append, and alert evaluation,
// all inside one transaction per submission.
package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wholesail/wholesail-backend/internal/inventory"
	"github.com/wholesail/wholesail-backend/internal/ordernumber"
	"github.com/wholesail/wholesail-backend/pkg/db/models"
	"github.com/wholesail/wholesail-backend/pkg/enums"
	pkgerrors "github.com/wholesail/wholesail-backend/pkg/errors"
	"github.com/wholesail/wholesail-backend/pkg/fees"
	"github.com/wholesail/wholesail-backend/pkg/logger"
	"github.com/wholesail/wholesail-backend/pkg/metrics"
	"github.com/wholesail/wholesail-backend/pkg/outbox"
	"github.com/wholesail/wholesail-backend/pkg/pagination"
)

// maxCreateAttempts bounds the automatic retry after an order number race.
const maxCreateAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type alertChecker interface {
	Check(ctx context.Context, tx *gorm.DB, product *models.Product) (*models.StockAlert, error)
}

type relationshipChecker interface {
	IsCustomer(ctx context.Context, wholesalerID, userID uuid.UUID) (bool, error)
}

// Service exposes order ingestion and reads.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, wholesalerID, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, wholesalerID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error)
}

type service struct {
	repo      *Repository
	inventory *inventory.Repository
	allocator *ordernumber.Allocator
	alerts    alertChecker
	customers relationshipChecker
	fees      *fees.Calculator
	tx        txRunner
	outbox    outboxPublisher
	logg      *logger.Logger
	metrics   *metrics.OrderMetrics
}

// NewService builds the order coordinator with the required dependencies.
func NewService(
	repo *Repository,
	inv *inventory.Repository,
	allocator *ordernumber.Allocator,
	alerts alertChecker,
	customers relationshipChecker,
	feeCalc *fees.Calculator,
	tx txRunner,
	events outboxPublisher,
	logg *logger.Logger,
	m *metrics.OrderMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("order number allocator required")
	}
	if alerts == nil {
		return nil, fmt.Errorf("alert checker required")
	}
	if customers == nil {
		return nil, fmt.Errorf("relationship checker required")
	}
	if feeCalc == nil {
		return nil, fmt.Errorf("fee calculator required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		inventory: inv,
		allocator: allocator,
		alerts:    alerts,
		customers: customers,
		fees:      feeCalc,
		tx:        tx,
		outbox:    events,
		logg:      logg,
		metrics:   m,
	}, nil
}

// CreateOrder runs the full ingestion pipeline. The order, its items, the
// stock decrements, the ledger rows, and any alerts commit together or not
// at all. An order number race rolls the transaction back and retries from
// scratch up to maxCreateAttempts times.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	retailer, err := s.repo.FindRetailer(ctx, input.RetailerID)
	if err != nil {
		return nil, err
	}
	wholesaler, err := s.repo.FindWholesaler(ctx, input.WholesalerID)
	if err != nil {
		return nil, err
	}
	isCustomer, err := s.customers.IsCustomer(ctx, input.WholesalerID, input.RetailerID)
	if err != nil {
		return nil, err
	}
	if !isCustomer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "retailer is not a customer of this wholesaler").
			WithDetails(map[string]any{"retailerId": input.RetailerID.String()})
	}

	var created *models.Order
	for attempt := 1; ; attempt++ {
		created, err = s.createOnce(ctx, input, wholesaler, retailer)
		if err == nil {
			break
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeConcurrency || attempt >= maxCreateAttempts {
			return nil, err
		}
		s.metrics.IncAllocationRetry()
		// The conflicting increment rolled back with the transaction, so
		// realign the counter with the numbers actually assigned before the
		// next attempt.
		if err := s.allocator.Reconcile(ctx, input.WholesalerID, wholesaler.BusinessName); err != nil {
			return nil, err
		}
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"wholesaler_id": input.WholesalerID.String(),
				"attempt":       attempt,
			})
			s.logg.Warn(logCtx, "order number conflict, retrying order creation")
		}
	}

	s.metrics.IncOrderCreated(created.Status.String())
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":     created.ID.String(),
			"order_number": created.OrderNumber,
			"line_count":   len(created.Items),
		})
		s.logg.Info(logCtx, "order created")
	}
	return created, nil
}

// createOnce is a single transactional attempt at order creation.
func (s *service) createOnce(ctx context.Context, input CreateOrderInput, wholesaler *models.Wholesaler, retailer *models.User) (*models.Order, error) {
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txInventory := s.inventory.WithTx(tx)

		// Every product must exist and belong to the wholesaler before any
		// write happens.
		products := make([]*models.Product, len(input.Lines))
		for i, line := range input.Lines {
			product, err := txInventory.FindProduct(ctx, line.ProductID, input.WholesalerID)
			if err != nil {
				return err
			}
			products[i] = product
		}

		number, err := s.allocator.Allocate(ctx, tx, input.WholesalerID, wholesaler.BusinessName)
		if err != nil {
			return err
		}

		subtotal := decimal.Zero
		for _, line := range input.Lines {
			subtotal = subtotal.Add(fees.LineTotal(line.UnitPrice, line.Quantity))
		}
		platformFee := s.fees.PlatformFee(subtotal)

		order := &models.Order{
			ID:              uuid.New(),
			OrderNumber:     number,
			WholesalerID:    input.WholesalerID,
			RetailerID:      input.RetailerID,
			Status:          enums.OrderStatusPending,
			Subtotal:        subtotal,
			PlatformFee:     platformFee,
			Total:           subtotal,
			DeliveryAddress: input.DeliveryAddress,
			Notes:           input.Notes,
		}
		if err := txRepo.InsertOrder(ctx, order); err != nil {
			return err
		}

		customerName := retailer.FullName()
		for i, line := range input.Lines {
			product := products[i]

			item := &models.OrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				Total:       fees.LineTotal(line.UnitPrice, line.Quantity),
				SellingType: line.SellingType,
			}
			if err := txRepo.InsertItem(ctx, item); err != nil {
				return err
			}
			order.Items = append(order.Items, *item)

			dec, err := inventory.ComputeDecrement(line.Quantity, line.SellingType, inventory.Snapshot{
				BaseUnitStock:  product.BaseUnitStock,
				QuantityInPack: product.QuantityInPack,
				UnitsPerPallet: product.UnitsPerPallet,
			})
			if err != nil {
				return err
			}

			before, after, err := txInventory.AdjustStock(ctx, product.ID, -dec.ConsumedBaseUnits)
			if err != nil {
				return err
			}

			trail := dec.Trail
			movement := &models.StockMovement{
				ID:           uuid.New(),
				ProductID:    product.ID,
				WholesalerID: input.WholesalerID,
				MovementType: enums.MovementTypePurchase,
				Quantity:     -dec.ConsumedBaseUnits,
				StockBefore:  before,
				StockAfter:   after,
				Reason:       &trail,
				OrderID:      &order.ID,
				CustomerName: &customerName,
			}
			if err := txInventory.InsertMovement(ctx, movement); err != nil {
				return err
			}
			s.metrics.IncStockMovement(enums.MovementTypePurchase.String())

			product.BaseUnitStock = after
			if _, err := s.alerts.Check(ctx, tx, product); err != nil {
				return err
			}
		}

		err = s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, WholesalerID: &input.WholesalerID},
			Data: OrderCreatedEvent{
				OrderID:      order.ID,
				OrderNumber:  order.OrderNumber,
				WholesalerID: order.WholesalerID,
				RetailerID:   order.RetailerID,
				Subtotal:     order.Subtotal,
				PlatformFee:  order.PlatformFee,
				Total:        order.Total,
				LineCount:    len(order.Items),
			},
			Version: 1,
		})
		if err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetOrder loads one order with its items.
func (s *service) GetOrder(ctx context.Context, wholesalerID, orderID uuid.UUID) (*models.Order, error) {
	return s.repo.FindByID(ctx, wholesalerID, orderID)
}

// ListOrders returns the wholesaler's orders.
func (s *service) ListOrders(ctx context.Context, wholesalerID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return s.repo.ListForWholesaler(ctx, wholesalerID, params, filters)
}

func validateInput(input CreateOrderInput) error {
	if input.WholesalerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "wholesaler id required")
	}
	if input.RetailerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "retailer id required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one line")
	}
	for i, line := range input.Lines {
		if line.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "line product id required").
				WithDetails(map[string]any{"line": i})
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive").
				WithDetails(map[string]any{"line": i, "quantity": line.Quantity})
		}
		if line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "line unit price must not be negative").
				WithDetails(map[string]any{"line": i})
		}
		if !line.SellingType.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown selling type").
				WithDetails(map[string]any{"line": i, "sellingType": string(line.SellingType)})
		}
	}
	return nil
}
