package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"kalpa/internal/domain"
	apperrors "kalpa/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (uint, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.OrderStatus, stampColumn string) error
	Complete(ctx context.Context, tx *sql.Tx, id uint, finalTotal float64) error
	StampServedAt(ctx context.Context, tx *sql.Tx, id uint) error
}

type OrderItemRepository interface {
	BulkInsert(ctx context.Context, tx *sql.Tx, items []domain.OrderItem) error
	UpsertIncrement(ctx context.Context, tx *sql.Tx, item domain.OrderItem) error
	FindInOrder(ctx context.Context, tx *sql.Tx, orderID, itemID uint) (*domain.OrderItem, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, itemID uint, status domain.ItemStatus) error
	CountUnserved(ctx context.Context, tx *sql.Tx, orderID uint) (int, error)
}

// stampColumns maps each order status to its write-once timestamp column.
// Cancellation stamps cancelledAt; servedAt is stamped separately when the
// last item is served.
var stampColumns = map[domain.OrderStatus]string{
	domain.OrderStatusConfirmed: "confirmedAt",
	domain.OrderStatusCooking:   "preparedAt",
	domain.OrderStatusCheckout:  "readyAt",
	domain.OrderStatusCompleted: "completedAt",
	domain.OrderStatusCancelled: "cancelledAt",
}

// WorkflowService executes order mutations. Every method runs as one
// transaction that first takes the order row lock, so all writes to a given
// order are serialized; callers that validated against a stale status get a
// ConflictError and must reload and retry.
type WorkflowService struct {
	db              TransactionManager
	orderRepo       OrderRepository
	itemRepo        OrderItemRepository
	logger          *zap.Logger
	txTimeout       time.Duration
	lockWaitTimeout time.Duration
}

func NewWorkflowService(
	db TransactionManager,
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
	lockWaitTimeout time.Duration,
) *WorkflowService {
	return &WorkflowService{
		db:              db,
		orderRepo:       orderRepo,
		itemRepo:        itemRepo,
		logger:          logger,
		txTimeout:       txTimeout,
		lockWaitTimeout: lockWaitTimeout,
	}
}

func (s *WorkflowService) CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) (uint, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return 0, err
	}
	// MySQL ignores rollback after a successful commit.
	defer tx.Rollback()

	orderID, err := s.orderRepo.Insert(txCtx, tx, order)
	if err != nil {
		return 0, mapStorageError(err)
	}

	for i := range items {
		items[i].OrderID = orderID
	}

	if err := s.itemRepo.BulkInsert(txCtx, tx, items); err != nil {
		return 0, mapStorageError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit order creation", zap.Uint("orderId", orderID), zap.Error(err))
		return 0, mapStorageError(err)
	}

	s.logger.Info("order created",
		zap.Uint("orderId", orderID),
		zap.String("orderNumber", order.OrderNumber),
		zap.Int("itemCount", len(items)))

	return orderID, nil
}

// AddItem inserts or increments one line item under the order lock. The
// terminal check runs on the locked row, so an order completed by a
// concurrent cashier is rejected even if the caller saw it open.
func (s *WorkflowService) AddItem(ctx context.Context, orderID uint, item domain.OrderItem) error {
	return s.withOrderLock(ctx, orderID, func(txCtx context.Context, tx *sql.Tx, order *domain.Order) error {
		if order.Status.Terminal() {
			return apperrors.NewInvalidStateError(
				fmt.Sprintf("cannot add items to a %s order", order.Status),
			)
		}

		item.OrderID = orderID
		if err := s.itemRepo.UpsertIncrement(txCtx, tx, item); err != nil {
			return err
		}

		s.logger.Info("item added",
			zap.Uint("orderId", orderID),
			zap.Int("menuItemId", item.MenuItemID),
			zap.Int("quantity", item.Quantity))
		return nil
	})
}

// TransitionOrder applies an already-authorized order-level transition. The
// from status is the one the policy decision was made against; if the locked
// row no longer matches it, another actor won the race and the caller gets a
// ConflictError.
func (s *WorkflowService) TransitionOrder(ctx context.Context, orderID uint, from, to domain.OrderStatus) error {
	return s.withOrderLock(ctx, orderID, func(txCtx context.Context, tx *sql.Tx, order *domain.Order) error {
		if order.Status != from {
			return apperrors.NewConflictError(
				fmt.Sprintf("order status changed from %s to %s, reload and retry", from, order.Status),
			)
		}

		if err := s.orderRepo.UpdateStatus(txCtx, tx, orderID, to, stampColumns[to]); err != nil {
			return err
		}

		s.logger.Info("order transitioned",
			zap.Uint("orderId", orderID),
			zap.String("from", string(from)),
			zap.String("to", string(to)))
		return nil
	})
}

// TransitionItem applies an already-authorized item-level transition. When
// the last item reaches served, servedAt is stamped on the order; the order
// status is left alone, completion stays an explicit billing act.
func (s *WorkflowService) TransitionItem(ctx context.Context, orderID, itemID uint, from, to domain.ItemStatus) error {
	return s.withOrderLock(ctx, orderID, func(txCtx context.Context, tx *sql.Tx, order *domain.Order) error {
		if order.Status.Terminal() {
			return apperrors.NewInvalidStateError(
				fmt.Sprintf("cannot update items of a %s order", order.Status),
			)
		}

		item, err := s.itemRepo.FindInOrder(txCtx, tx, orderID, itemID)
		if err != nil {
			return err
		}

		if item.Status != from {
			return apperrors.NewConflictError(
				fmt.Sprintf("item status changed from %s to %s, reload and retry", from, item.Status),
			)
		}

		if err := s.itemRepo.UpdateStatus(txCtx, tx, itemID, to); err != nil {
			return err
		}

		if to == domain.ItemStatusServed {
			unserved, err := s.itemRepo.CountUnserved(txCtx, tx, orderID)
			if err != nil {
				return err
			}
			if unserved == 0 {
				if err := s.orderRepo.StampServedAt(txCtx, tx, orderID); err != nil {
					return err
				}
			}
		}

		s.logger.Info("item transitioned",
			zap.Uint("orderId", orderID),
			zap.Uint("itemId", itemID),
			zap.String("from", string(from)),
			zap.String("to", string(to)))
		return nil
	})
}

// Checkout finalizes billing: final total, completed status and completedAt
// move in one atomic step. Repeating a checkout with the same amount is a
// no-op success; a different amount is a conflict because finalTotal is
// immutable once set.
func (s *WorkflowService) Checkout(ctx context.Context, orderID uint, finalTotal float64) error {
	return s.withOrderLock(ctx, orderID, func(txCtx context.Context, tx *sql.Tx, order *domain.Order) error {
		switch order.Status {
		case domain.OrderStatusCompleted:
			if order.FinalTotal != nil && equalCents(*order.FinalTotal, finalTotal) {
				s.logger.Info("checkout retried with same amount",
					zap.Uint("orderId", orderID), zap.Float64("finalTotal", finalTotal))
				return nil
			}
			return apperrors.NewConflictError("order already completed with a different final total")
		case domain.OrderStatusCheckout:
			if err := s.orderRepo.Complete(txCtx, tx, orderID, finalTotal); err != nil {
				return err
			}
			s.logger.Info("order completed",
				zap.Uint("orderId", orderID), zap.Float64("finalTotal", finalTotal))
			return nil
		default:
			return apperrors.NewInvalidStateError(
				fmt.Sprintf("cannot checkout an order in %s status", order.Status),
			)
		}
	})
}

// withOrderLock runs fn inside a transaction that holds the order row lock.
// Commit-or-nothing: any error from fn rolls the whole mutation back.
func (s *WorkflowService) withOrderLock(ctx context.Context, orderID uint, fn func(context.Context, *sql.Tx, *domain.Order) error) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	// Bounded wait for the row lock; exceeding it surfaces as MySQL 1205
	// which maps to a retryable Busy error.
	lockWaitSeconds := int(s.lockWaitTimeout / time.Second)
	if lockWaitSeconds < 1 {
		lockWaitSeconds = 1
	}
	if _, err := tx.ExecContext(txCtx, fmt.Sprintf("SET innodb_lock_wait_timeout = %d", lockWaitSeconds)); err != nil {
		s.logger.Error("failed to set lock wait timeout", zap.Error(err))
		return mapStorageError(err)
	}

	order, err := s.orderRepo.FindByIDForUpdate(txCtx, tx, orderID)
	if err != nil {
		return mapStorageError(err)
	}

	if err := fn(txCtx, tx, order); err != nil {
		return mapStorageError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Uint("orderId", orderID), zap.Error(err))
		return mapStorageError(err)
	}

	return nil
}

// mapStorageError translates MySQL lock errors into the app taxonomy. Lock
// wait timeout (1205) becomes Busy. Deadlocks (1213) pass through unchanged;
// the usecase layer retries those with backoff. Duplicate key (1062) becomes
// Conflict.
func mapStorageError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1205:
			return apperrors.NewBusyError("order is locked by another operation, try again")
		case 1062:
			return apperrors.NewConflictError("duplicate entry")
		}
	}
	return err
}

func equalCents(a, b float64) bool {
	return math.Round(a*100) == math.Round(b*100)
}
