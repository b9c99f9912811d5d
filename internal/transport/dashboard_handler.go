package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"salespoint/internal/middleware"
	"salespoint/internal/repository"
	"salespoint/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardHandler serves the read-only statistics and sale history
type DashboardHandler struct {
	dashboardService service.DashboardService
	saleRepo         repository.SaleRepository
	logger           *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(
	dashboardService service.DashboardService,
	saleRepo repository.SaleRepository,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		saleRepo:         saleRepo,
		logger:           logger,
	}
}

// RegisterRoutes registers the dashboard and sales routes
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/dashboard/stats", h.Stats)
	r.Route("/api/sales", func(r chi.Router) {
		r.Get("/", h.ListSales)
		r.Get("/{id}", h.GetSale)
	})
}

// Stats returns the aggregate counters
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to load dashboard stats", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

// ListSales returns recent sales, or sales within ?from=&to= when both
// RFC 3339 bounds are given
func (h *DashboardHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	if from != "" && to != "" {
		start, err := time.Parse(time.RFC3339, from)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		end, err := time.Parse(time.RFC3339, to)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}

		sales, err := h.saleRepo.ListByDateRange(r.Context(), start, end)
		if err != nil {
			h.logger.Error("Failed to list sales by date range", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list sales")
			return
		}

		middleware.RespondWithJSON(w, http.StatusOK, sales)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	sales, err := h.dashboardService.RecentSales(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list recent sales", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list sales")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sales)
}

// GetSale returns one sale with its line items
func (h *DashboardHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale id")
		return
	}

	sale, err := h.saleRepo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "sale not found")
			return
		}

		h.logger.Error("Failed to get sale", zap.Error(err), zap.Int64("sale_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get sale")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sale)
}
