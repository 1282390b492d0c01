package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kalpa/internal/domain"
	"kalpa/internal/dto"
	apperrors "kalpa/internal/errors"
)

type TableRepository interface {
	Insert(ctx context.Context, table *domain.Table) (uint, error)
	FindByID(ctx context.Context, id uint) (*domain.Table, error)
	ListByRestaurant(ctx context.Context, restaurantID int) ([]domain.Table, error)
	Deactivate(ctx context.Context, id uint) error
}

// TableController manages dining tables. Management-only: tables are created
// and retired by managers and owners, and retirement is always a soft
// deactivation because past orders reference them.
type TableController struct {
	tables TableRepository
	logger *zap.Logger
}

func NewTableController(tables TableRepository, logger *zap.Logger) *TableController {
	return &TableController{
		tables: tables,
		logger: logger,
	}
}

func (c *TableController) HandleCreateTable(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := c.actorFromRequest(w, r, traceID)
	if !ok {
		return
	}

	if actor.Role != domain.RoleManager && actor.Role != domain.RoleOwner {
		c.writeError(w, traceID, http.StatusForbidden, "FORBIDDEN", "only managers and owners may manage tables")
		return
	}

	var req dto.CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
		return
	}
	if req.Capacity < 0 {
		c.writeValidationError(w, traceID, "validation failed", apperrors.ValidationDetail{
			Field:   "capacity",
			Message: "capacity must not be negative",
		})
		return
	}

	table := &domain.Table{
		RestaurantID: actor.RestaurantID,
		Name:         strings.TrimSpace(req.Name),
		Capacity:     req.Capacity,
		IsActive:     true,
	}

	id, err := c.tables.Insert(r.Context(), table)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	created, err := c.tables.FindByID(r.Context(), id)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, dto.NewTableResponse(created))
}

func (c *TableController) HandleListTables(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := c.actorFromRequest(w, r, traceID)
	if !ok {
		return
	}

	tables, err := c.tables.ListByRestaurant(r.Context(), actor.RestaurantID)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	responses := make([]dto.TableResponse, 0, len(tables))
	for i := range tables {
		responses = append(responses, *dto.NewTableResponse(&tables[i]))
	}

	c.writeJSON(w, http.StatusOK, responses)
}

func (c *TableController) HandleDeactivateTable(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	actor, ok := c.actorFromRequest(w, r, traceID)
	if !ok {
		return
	}

	if actor.Role != domain.RoleManager && actor.Role != domain.RoleOwner {
		c.writeError(w, traceID, http.StatusForbidden, "FORBIDDEN", "only managers and owners may manage tables")
		return
	}

	tableIDStr := chi.URLParam(r, "tableId")
	tableID, err := strconv.ParseUint(tableIDStr, 10, 64)
	if err != nil {
		c.writeValidationError(w, traceID, "invalid tableId", apperrors.ValidationDetail{
			Field:   "tableId",
			Message: "tableId must be a positive integer",
		})
		return
	}

	table, err := c.tables.FindByID(r.Context(), uint(tableID))
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	if table.RestaurantID != actor.RestaurantID {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", "table not found")
		return
	}

	if err := c.tables.Deactivate(r.Context(), uint(tableID)); err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *TableController) actorFromRequest(w http.ResponseWriter, r *http.Request, traceID string) (domain.Actor, bool) {
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

func (c *TableController) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", err.Error())
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

func (c *TableController) writeError(w http.ResponseWriter, traceID string, statusCode int, code, message string) {
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

func (c *TableController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *TableController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
