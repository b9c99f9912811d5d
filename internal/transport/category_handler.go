package transport

import (
	"errors"
	"net/http"
	"strconv"

	"salespoint/internal/domain"
	"salespoint/internal/middleware"
	"salespoint/internal/repository"
	"salespoint/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryRequest represents the category create/update payload
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// CategoryHandler handles HTTP requests for category management
type CategoryHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(catalogService service.CatalogService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all category routes. Mutations sit behind
// the operator auth middleware.
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns all categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// Get returns a single category
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	category, err := h.catalogService.GetCategory(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}

		h.logger.Error("Failed to get category", zap.Error(err), zap.Int64("category_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// Create adds a new category
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), &domain.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondCategoryError(w, err, "failed to create category")
		return
	}

	h.logger.Info("Category created", zap.Int64("category_id", category.ID), actorField(r))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// Update modifies an existing category
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.catalogService.UpdateCategory(r.Context(), &domain.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondCategoryError(w, err, "failed to update category")
		return
	}

	h.logger.Info("Category updated", zap.Int64("category_id", id), actorField(r))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category updated"})
}

// Delete removes a category when no products reference it
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrCategoryInUse) {
			middleware.RespondWithError(w, http.StatusConflict, "category still has products")
			return
		}
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}

		h.logger.Error("Failed to delete category", zap.Error(err), zap.Int64("category_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	h.logger.Info("Category deleted", zap.Int64("category_id", id), actorField(r))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func (h *CategoryHandler) respondCategoryError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrEmptyName):
		middleware.RespondWithError(w, http.StatusBadRequest, "category name must not be empty")
	case errors.Is(err, repository.ErrCategoryAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, "category with this name already exists")
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "category not found")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
