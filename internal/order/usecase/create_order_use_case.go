package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kalpa/internal/domain"
	"kalpa/internal/dto"
	apperrors "kalpa/internal/errors"
)

const (
	maxItemsPerOrder = 100
	maxItemQuantity  = 10000
)

type CreateOrderUseCase struct {
	orderRepo OrderRepository
	itemRepo  OrderItemRepository
	tableRepo TableRepository
	catalog   CatalogGateway
	workflow  Workflow
	logger    *zap.Logger
}

func NewCreateOrderUseCase(
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	tableRepo TableRepository,
	catalog CatalogGateway,
	workflow Workflow,
	logger *zap.Logger,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		tableRepo: tableRepo,
		catalog:   catalog,
		workflow:  workflow,
		logger:    logger,
	}
}

func (uc *CreateOrderUseCase) CreateOrder(ctx context.Context, actor domain.Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	uc.logger.Info("create order started",
		zap.Int("restaurantId", actor.RestaurantID),
		zap.String("role", string(actor.Role)),
		zap.Int("itemCount", len(req.Items)))

	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	catalogItems, err := uc.resolveCatalogItems(ctx, actor, req.Items)
	if err != nil {
		return nil, err
	}

	if req.TableID != nil {
		if err := uc.validateTable(ctx, actor, *req.TableID); err != nil {
			return nil, err
		}
	}

	order := &domain.Order{
		OrderNumber:   newOrderNumber(),
		RestaurantID:  actor.RestaurantID,
		TableID:       req.TableID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Status:        domain.OrderStatusConfirmed,
		Instructions:  req.Instructions,
	}

	items := make([]domain.OrderItem, len(req.Items))
	for i, itemReq := range req.Items {
		catalogItem := catalogItems[itemReq.MenuItemID]
		items[i] = newOrderItem(catalogItem, itemReq.Quantity, itemReq.Instructions)
	}

	orderID, err := uc.workflow.CreateOrder(ctx, order, items)
	if err != nil {
		return nil, err
	}

	created, err := loadAggregate(ctx, uc.orderRepo, uc.itemRepo, actor, orderID)
	if err != nil {
		return nil, err
	}

	return dto.NewOrderResponse(created), nil
}

func (uc *CreateOrderUseCase) validateRequest(req dto.CreateOrderRequest) error {
	var details []apperrors.ValidationDetail

	if len(req.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	if len(req.Items) > maxItemsPerOrder {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: fmt.Sprintf("items exceeds maximum of %d", maxItemsPerOrder),
		})
	}

	menuItemIDs := make(map[int]bool)
	for idx, item := range req.Items {
		if item.MenuItemID <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].menuItemId",
				Message: "each menuItemId must be a positive integer",
			})
		}

		if menuItemIDs[item.MenuItemID] {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].menuItemId",
				Message: "menuItemId must not be duplicated",
			})
		}
		menuItemIDs[item.MenuItemID] = true

		if item.Quantity < 1 || item.Quantity > maxItemQuantity {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].quantity",
				Message: fmt.Sprintf("quantity must be between 1 and %d", maxItemQuantity),
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (uc *CreateOrderUseCase) resolveCatalogItems(ctx context.Context, actor domain.Actor, itemReqs []dto.OrderItemRequest) (map[int]*domain.CatalogItem, error) {
	ids := make([]int, len(itemReqs))
	for i, item := range itemReqs {
		ids[i] = item.MenuItemID
	}

	catalogItems, err := uc.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*domain.CatalogItem, len(catalogItems))
	for i := range catalogItems {
		byID[catalogItems[i].ID] = &catalogItems[i]
	}

	var details []apperrors.ValidationDetail
	for _, id := range ids {
		catalogItem, ok := byID[id]
		if !ok {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items",
				Message: fmt.Sprintf("menu item %d not found", id),
			})
			continue
		}
		if detail := validateCatalogItem(catalogItem, actor); detail != nil {
			details = append(details, *detail)
		}
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	return byID, nil
}

func (uc *CreateOrderUseCase) validateTable(ctx context.Context, actor domain.Actor, tableID uint) error {
	table, err := uc.tableRepo.FindByID(ctx, tableID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "tableId",
				Message: fmt.Sprintf("table %d not found", tableID),
			})
		}
		return err
	}

	if table.RestaurantID != actor.RestaurantID {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "tableId",
			Message: "table does not belong to this restaurant",
		})
	}

	if !table.IsActive {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "tableId",
			Message: "table is not active",
		})
	}

	return nil
}

func validateCatalogItem(item *domain.CatalogItem, actor domain.Actor) *apperrors.ValidationDetail {
	if item.RestaurantID != actor.RestaurantID {
		return &apperrors.ValidationDetail{
			Field:   "items",
			Message: fmt.Sprintf("menu item %d does not belong to this restaurant", item.ID),
		}
	}
	if item.IsDisabled {
		return &apperrors.ValidationDetail{
			Field:   "items",
			Message: fmt.Sprintf("menu item %d is disabled", item.ID),
		}
	}
	if !item.IsAvailable {
		return &apperrors.ValidationDetail{
			Field:   "items",
			Message: fmt.Sprintf("menu item %d is currently unavailable", item.ID),
		}
	}
	return nil
}

// newOrderItem snapshots the catalog item at insertion time. The unit price
// is captured here and never re-read, so menu price changes do not affect
// open orders.
func newOrderItem(catalogItem *domain.CatalogItem, quantity int, instructions string) domain.OrderItem {
	return domain.OrderItem{
		MenuItemID:          catalogItem.ID,
		NameSnapshot:        catalogItem.Name,
		DescriptionSnapshot: catalogItem.Description,
		CategorySnapshot:    catalogItem.CategoryName,
		Quantity:            quantity,
		UnitPrice:           catalogItem.Price,
		Status:              domain.ItemStatusPending,
		Instructions:        instructions,
	}
}

// Format: ORD-20240125-A3F9B2C1.
func newOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%s",
		time.Now().Format("20060102"),
		strings.ToUpper(uuid.New().String()[:8]))
}
