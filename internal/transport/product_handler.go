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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest represents the product create/update payload. Price
// travels as a string so the decimal survives JSON without float
// rounding.
type ProductRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	CategoryID    int64  `json:"category_id" validate:"required,gt=0"`
	Price         string `json:"price" validate:"required"`
	StockQuantity int    `json:"stock_quantity" validate:"gte=0"`
	ImagePath     string `json:"image_path" validate:"max=500"`
}

// ProductHandler handles HTTP requests for product management
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Mutations sit behind
// the operator auth middleware.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
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

// List returns products, optionally filtered by category or name search
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = &id
	}

	search := r.URL.Query().Get("q")

	products, err := h.catalogService.ListProducts(r.Context(), categoryID, search)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to get product", zap.Error(err), zap.Int64("product_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create adds a new product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	created, err := h.catalogService.CreateProduct(r.Context(), product)
	if err != nil {
		h.respondProductError(w, err, "failed to create product")
		return
	}

	h.logger.Info("Product created",
		zap.Int64("product_id", created.ID),
		zap.String("name", created.Name),
		actorField(r),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, created)
}

// Update modifies an existing product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product.ID = id

	if err := h.catalogService.UpdateProduct(r.Context(), product); err != nil {
		h.respondProductError(w, err, "failed to update product")
		return
	}

	h.logger.Info("Product updated", zap.Int64("product_id", id), actorField(r))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product updated"})
}

// Delete removes a product from the catalog
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to delete product", zap.Error(err), zap.Int64("product_id", id))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id), actorField(r))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *ProductHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (*domain.Product, bool) {
	var req ProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return nil, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
		return nil, false
	}

	return &domain.Product{
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		Price:         price,
		StockQuantity: req.StockQuantity,
		ImagePath:     req.ImagePath,
	}, true
}

func (h *ProductHandler) respondProductError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrEmptyName):
		middleware.RespondWithError(w, http.StatusBadRequest, "product name must not be empty")
	case errors.Is(err, service.ErrInvalidPrice):
		middleware.RespondWithError(w, http.StatusBadRequest, "price must be greater than zero")
	case errors.Is(err, service.ErrInvalidStock):
		middleware.RespondWithError(w, http.StatusBadRequest, "stock quantity must not be negative")
	case errors.Is(err, service.ErrUnknownCategory):
		middleware.RespondWithError(w, http.StatusBadRequest, "category does not exist")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	default:
		h.logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// actorField tags audit log lines on mutating routes with the role
// the auth middleware resolved for the request.
func actorField(r *http.Request) zap.Field {
	role, _ := middleware.GetOperatorRole(r.Context())
	return zap.String("actor", role)
}
