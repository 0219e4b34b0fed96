package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/trogers1052/portfolio-service/internal/models"
)

// PositionStore is the persistence surface the handlers need.
type PositionStore interface {
	CreatePosition(p *models.Position) error
	GetPositionByID(id int) (*models.Position, error)
	GetAllPositions() ([]*models.Position, error)
	UpdatePosition(id int, upd *models.PositionUpdate) (*models.Position, error)
	DeletePosition(id int) (bool, error)
}

// Valuator computes position metrics and the portfolio summary.
type Valuator interface {
	PositionsWithMetrics(ctx context.Context) ([]*models.PositionWithMetrics, error)
	Summary(ctx context.Context) (*models.PortfolioSummary, error)
}

// EventPublisher publishes position change events. Publishing is
// best-effort; failures are logged and never fail the request.
type EventPublisher interface {
	PublishPositionCreated(ctx context.Context, p *models.Position) error
	PublishPositionUpdated(ctx context.Context, p *models.Position) error
	PublishPositionDeleted(ctx context.Context, id int) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store    PositionStore
	valuator Valuator
	producer EventPublisher
	logger   zerolog.Logger
}

// NewHandler creates a new Handler. producer may be nil when event
// publishing is disabled.
func NewHandler(store PositionStore, valuator Valuator, producer EventPublisher, logger zerolog.Logger) *Handler {
	return &Handler{
		store:    store,
		valuator: valuator,
		producer: producer,
		logger:   logger,
	}
}

// CreatePosition handles POST /positions
func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req models.PositionCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	position := &models.Position{
		Symbol:        req.Symbol,
		AssetClass:    req.AssetClass,
		Quantity:      req.Quantity,
		PurchasePrice: req.PurchasePrice,
	}
	if err := h.store.CreatePosition(position); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error().Err(err).Msg("create position failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishPositionCreated(r.Context(), position); err != nil {
			h.logger.Warn().Err(err).Int("position_id", position.ID).Msg("failed to publish position created event")
		}
	}

	respondJSON(w, http.StatusCreated, position)
}

// GetPosition handles GET /positions/{id}
func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := positionID(w, r)
	if !ok {
		return
	}

	position, err := h.store.GetPositionByID(id)
	if err != nil {
		h.logger.Error().Err(err).Int("position_id", id).Msg("get position failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if position == nil {
		http.Error(w, "position not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, position)
}

// ListPositions handles GET /positions
func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.store.GetAllPositions()
	if err != nil {
		h.logger.Error().Err(err).Msg("list positions failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if positions == nil {
		positions = []*models.Position{}
	}

	respondJSON(w, http.StatusOK, positions)
}

// UpdatePosition handles PUT /positions/{id}
func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := positionID(w, r)
	if !ok {
		return
	}

	var upd models.PositionUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	position, err := h.store.UpdatePosition(id, &upd)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error().Err(err).Int("position_id", id).Msg("update position failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if position == nil {
		http.Error(w, "position not found", http.StatusNotFound)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishPositionUpdated(r.Context(), position); err != nil {
			h.logger.Warn().Err(err).Int("position_id", id).Msg("failed to publish position updated event")
		}
	}

	respondJSON(w, http.StatusOK, position)
}

// DeletePosition handles DELETE /positions/{id}
func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := positionID(w, r)
	if !ok {
		return
	}

	deleted, err := h.store.DeletePosition(id)
	if err != nil {
		h.logger.Error().Err(err).Int("position_id", id).Msg("delete position failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "position not found", http.StatusNotFound)
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishPositionDeleted(r.Context(), id); err != nil {
			h.logger.Warn().Err(err).Int("position_id", id).Msg("failed to publish position deleted event")
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// PortfolioPositions handles GET /portfolio/positions
func (h *Handler) PortfolioPositions(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.valuator.PositionsWithMetrics(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("portfolio positions failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// PortfolioSummary handles GET /portfolio/summary
func (h *Handler) PortfolioSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.valuator.Summary(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("portfolio summary failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func positionID(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "invalid position id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
