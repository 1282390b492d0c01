package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kalpa/internal/domain"
	"kalpa/internal/dto"
	apperrors "kalpa/internal/errors"
)

type CreateOrderUseCase interface {
	CreateOrder(ctx context.Context, actor domain.Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
}

type GetOrderUseCase interface {
	GetOrder(ctx context.Context, actor domain.Actor, orderID uint) (*dto.OrderResponse, error)
}

type ListOrdersUseCase interface {
	ListOrders(ctx context.Context, actor domain.Actor, statusFilter string, tableID *uint) ([]dto.OrderResponse, error)
}

type AddItemUseCase interface {
	AddItem(ctx context.Context, actor domain.Actor, orderID uint, req dto.OrderItemRequest) (*dto.OrderResponse, error)
}

type TransitionOrderUseCase interface {
	TransitionOrder(ctx context.Context, actor domain.Actor, orderID uint, requestedStatus string) (*dto.OrderResponse, error)
}

type TransitionItemUseCase interface {
	TransitionItem(ctx context.Context, actor domain.Actor, orderID, itemID uint, requestedStatus string) (*dto.OrderResponse, error)
}

type CheckoutUseCase interface {
	Checkout(ctx context.Context, actor domain.Actor, orderID uint, req dto.CheckoutRequest) (*dto.OrderResponse, error)
}

type OrderController struct {
	createOrder     CreateOrderUseCase
	getOrder        GetOrderUseCase
	listOrders      ListOrdersUseCase
	addItem         AddItemUseCase
	transitionOrder TransitionOrderUseCase
	transitionItem  TransitionItemUseCase
	checkout        CheckoutUseCase
	logger          *zap.Logger
}

func NewOrderController(
	createOrder CreateOrderUseCase,
	getOrder GetOrderUseCase,
	listOrders ListOrdersUseCase,
	addItem AddItemUseCase,
	transitionOrder TransitionOrderUseCase,
	transitionItem TransitionItemUseCase,
	checkout CheckoutUseCase,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		createOrder:     createOrder,
		getOrder:        getOrder,
		listOrders:      listOrders,
		addItem:         addItem,
		transitionOrder: transitionOrder,
		transitionItem:  transitionItem,
		checkout:        checkout,
		logger:          logger,
	}
}

func (c *OrderController) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := c.actorFromRequest(w, r, traceID)
	if !ok {
		return
	}

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	resp, err := c.createOrder.CreateOrder(r.Context(), actor, req)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, resp)
}

func (c *OrderController) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := c.actorFromRequest(w, r, traceID)
	if !ok {
		return
	}

	orderID, ok := c.orderIDFromPath(w, r, traceID)
	if !ok {
		return
	}

	resp, err := c.getOrder.GetOrder(r.Context(), actor, orderID)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *OrderController) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := c.actorFromRequest(w, r, traceID)
	if !ok {
		return
	}

	var tableID *uint
	if raw := r.URL.Query().Get("table"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.writeValidationError(w, traceID, "invalid table filter", apperrors.ValidationDetail{
				Field:   "table",
				Message: "table must be a positive integer",
			})
			return
		}
		id := uint(parsed)
		tableID = &id
	}

	resp, err := c.listOrders.ListOrders(r.Context(), actor, r.URL.Query().Get("status"), tableID)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *OrderController) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := c.actorFromRequest(w, r, traceID)
	if !ok {
		return
	}

	orderID, ok := c.orderIDFromPath(w, r, traceID)
	if !ok {
		return
	}

	var req dto.OrderItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	resp, err := c.addItem.AddItem(r.Context(), actor, orderID, req)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *OrderController) HandleOrderStatusUpdate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := c.actorFromRequest(w, r, traceID)
	if !ok {
		return
	}

	orderID, ok := c.orderIDFromPath(w, r, traceID)
	if !ok {
		return
	}

	var req dto.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	resp, err := c.transitionOrder.TransitionOrder(r.Context(), actor, orderID, req.Status)
	if err != nil {
		// An idempotent retry carries the unchanged order; render it as
		// success rather than an error.
		if _, ok := apperrors.IsNoOpError(err); ok && resp != nil {
			c.writeJSON(w, http.StatusOK, resp)
			return
		}
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *OrderController) HandleCancelOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := c.actorFromRequest(w, r, traceID)
	if !ok {
		return
	}

	orderID, ok := c.orderIDFromPath(w, r, traceID)
	if !ok {
		return
	}

	resp, err := c.transitionOrder.TransitionOrder(r.Context(), actor, orderID, string(domain.OrderStatusCancelled))
	if err != nil {
		if _, ok := apperrors.IsNoOpError(err); ok && resp != nil {
			c.writeJSON(w, http.StatusOK, resp)
			return
		}
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *OrderController) HandleItemStatusUpdate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := c.actorFromRequest(w, r, traceID)
	if !ok {
		return
	}

	orderID, ok := c.orderIDFromPath(w, r, traceID)
	if !ok {
		return
	}

	itemIDStr := chi.URLParam(r, "itemId")
	itemID, err := strconv.ParseUint(itemIDStr, 10, 64)
	if err != nil {
		c.writeValidationError(w, traceID, "invalid itemId", apperrors.ValidationDetail{
			Field:   "itemId",
			Message: "itemId must be a positive integer",
		})
		return
	}

	var req dto.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	resp, err := c.transitionItem.TransitionItem(r.Context(), actor, orderID, uint(itemID), req.Status)
	if err != nil {
		if _, ok := apperrors.IsNoOpError(err); ok && resp != nil {
			c.writeJSON(w, http.StatusOK, resp)
			return
		}
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func (c *OrderController) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := c.actorFromRequest(w, r, traceID)
	if !ok {
		return
	}

	orderID, ok := c.orderIDFromPath(w, r, traceID)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	resp, err := c.checkout.Checkout(r.Context(), actor, orderID, req)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

// actorFromRequest reads the tenant context resolved upstream. This service
// trusts the gateway; it does no authentication of its own.
func (c *OrderController) actorFromRequest(w http.ResponseWriter, r *http.Request, traceID string) (domain.Actor, bool) {
	restaurantIDStr := r.Header.Get("X-Restaurant-ID")
	restaurantID, err := strconv.Atoi(restaurantIDStr)
	if err != nil || restaurantID <= 0 {
		c.writeValidationError(w, traceID, "missing restaurant context", apperrors.ValidationDetail{
			Field:   "X-Restaurant-ID",
			Message: "X-Restaurant-ID header must be a positive integer",
		})
		return domain.Actor{}, false
	}

	role := domain.Role(r.Header.Get("X-Actor-Role"))
	if !role.Valid() {
		c.writeError(w, traceID, http.StatusForbidden, "FORBIDDEN", "unknown actor role")
		return domain.Actor{}, false
	}

	return domain.Actor{RestaurantID: restaurantID, Role: role}, true
}

func (c *OrderController) orderIDFromPath(w http.ResponseWriter, r *http.Request, traceID string) (uint, bool) {
	orderIDStr := chi.URLParam(r, "orderId")
	orderID, err := strconv.ParseUint(orderIDStr, 10, 64)
	if err != nil {
		c.writeValidationError(w, traceID, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return 0, false
	}
	return uint(orderID), true
}

// handleError maps the app error taxonomy onto stable HTTP codes. Each code
// is distinct so clients can react differently: FORBIDDEN hides the action,
// CONFLICT triggers a reload-and-retry, BUSY retries after a pause.
func (c *OrderController) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeError(w, traceID, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}

	if _, ok := apperrors.IsInvalidTransitionError(err); ok {
		c.writeError(w, traceID, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error())
		return
	}

	if _, ok := apperrors.IsInvalidStateError(err); ok {
		c.writeError(w, traceID, http.StatusUnprocessableEntity, "INVALID_STATE", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	if _, ok := apperrors.IsNoOpError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "NO_OP", err.Error())
		return
	}

	if _, ok := apperrors.IsBusyError(err); ok {
		w.Header().Set("Retry-After", "1")
		c.writeError(w, traceID, http.StatusServiceUnavailable, "BUSY", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

type errorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (c *OrderController) writeError(w http.ResponseWriter, traceID string, statusCode int, code, message string) {
	c.writeJSON(w, statusCode, errorResponse{
		TraceID:   traceID,
		Status:    statusCode,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
