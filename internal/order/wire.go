package order

import (
	"database/sql"

	"go.uber.org/zap"

	catalogrepo "kalpa/internal/catalog/repository"
	"kalpa/internal/config"
	"kalpa/internal/order/controller"
	orderrepo "kalpa/internal/order/repository"
	"kalpa/internal/order/service"
	"kalpa/internal/order/usecase"
	tablerepo "kalpa/internal/table/repository"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.OrderController {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	itemRepo := orderrepo.NewMySQLOrderItemRepository(db)
	catalogRepo := catalogrepo.NewMySQLMenuItemRepository(db)
	tableRepo := tablerepo.NewMySQLTableRepository(db)

	workflow := service.NewWorkflowService(
		db,
		orderRepo,
		itemRepo,
		logger,
		cfg.Order.TxTimeout,
		cfg.Order.LockWaitTimeout,
	)

	retries := cfg.Order.MaxRetryAttempts

	return controller.NewOrderController(
		usecase.NewCreateOrderUseCase(orderRepo, itemRepo, tableRepo, catalogRepo, workflow, logger),
		usecase.NewGetOrderUseCase(orderRepo, itemRepo),
		usecase.NewListOrdersUseCase(orderRepo, itemRepo),
		usecase.NewAddItemUseCase(orderRepo, itemRepo, catalogRepo, workflow, logger, retries),
		usecase.NewTransitionOrderUseCase(orderRepo, itemRepo, workflow, logger, retries),
		usecase.NewTransitionItemUseCase(orderRepo, itemRepo, workflow, logger, retries),
		usecase.NewCheckoutUseCase(orderRepo, itemRepo, workflow, logger, retries),
		logger,
	)
}
