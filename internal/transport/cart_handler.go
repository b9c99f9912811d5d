package transport

import (
	"errors"
	"net/http"
	"strconv"

	"salespoint/internal/cart"
	"salespoint/internal/domain"
	"salespoint/internal/middleware"
	"salespoint/internal/repository"
	"salespoint/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0"`
}

// ChangeQuantityRequest represents a quantity delta for a cart line
type ChangeQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// CartLineResponse is one line of the cart view
type CartLineResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
}

// CartResponse is the full cart view, recomputed on every read
type CartResponse struct {
	CartID string             `json:"cart_id"`
	Lines  []CartLineResponse `json:"lines"`
	Total  string             `json:"total"`
}

// CartHandler handles the cart session and checkout endpoints
type CartHandler struct {
	carts           *cart.Store
	catalogService  service.CatalogService
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(
	carts *cart.Store,
	catalogService service.CatalogService,
	checkoutService service.CheckoutService,
	logger *zap.Logger,
) *CartHandler {
	return &CartHandler{
		carts:           carts,
		catalogService:  catalogService,
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/carts", func(r chi.Router) {
		r.Post("/", h.CreateCart)
		r.Route("/{cartID}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.DeleteCart)
			r.Post("/items", h.AddItem)
			r.Delete("/items", h.ClearCart)
			r.Patch("/items/{productID}", h.ChangeQuantity)
			r.Delete("/items/{productID}", h.RemoveItem)
			r.Post("/checkout", h.Checkout)
		})
	})
}

// CreateCart opens a new cart session
func (h *CartHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	id := h.carts.Create()
	h.logger.Info("Cart session created", zap.String("cart_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"cart_id": id.String()})
}

// GetCart returns the cart's lines and recomputed total
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCartID(w, r)
	if !ok {
		return
	}

	var view CartResponse
	err := h.carts.Update(id, func(c *cart.Cart) error {
		view = cartView(id, c)
		return nil
	})
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// DeleteCart discards the cart session
func (h *CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCartID(w, r)
	if !ok {
		return
	}

	h.carts.Remove(id)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart discarded"})
}

// AddItem puts a product into the cart, merging with an existing line
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCartID(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	product, err := h.catalogService.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to fetch product for cart", zap.Error(err), zap.Int64("product_id", req.ProductID))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	var view CartResponse
	err = h.carts.Update(id, func(c *cart.Cart) error {
		if err := c.AddItem(product, qty); err != nil {
			return err
		}

		view = cartView(id, c)
		return nil
	})
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// ChangeQuantity adjusts a line by a delta; reaching zero removes it
func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCartID(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ChangeQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var view CartResponse
	err = h.carts.Update(id, func(c *cart.Cart) error {
		if err := c.ChangeQuantity(productID, req.Delta); err != nil {
			return err
		}

		view = cartView(id, c)
		return nil
	})
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// RemoveItem drops a line from the cart; absent lines are a no-op
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCartID(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var view CartResponse
	err = h.carts.Update(id, func(c *cart.Cart) error {
		c.RemoveItem(productID)
		view = cartView(id, c)
		return nil
	})
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// ClearCart empties all lines but keeps the session open
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCartID(w, r)
	if !ok {
		return
	}

	var view CartResponse
	err := h.carts.Update(id, func(c *cart.Cart) error {
		c.Clear()
		view = cartView(id, c)
		return nil
	})
	if err != nil {
		h.respondCartError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// Checkout commits the cart into a persisted sale. On failure the cart
// is untouched so the caller can retry or abandon it.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCartID(w, r)
	if !ok {
		return
	}

	var sale *domain.Sale
	err := h.carts.Update(id, func(c *cart.Cart) error {
		committed, err := h.checkoutService.Commit(r.Context(), c)
		if err != nil {
			return err
		}

		sale = committed
		return nil
	})
	if err != nil {
		var stockErr *service.InsufficientStockError
		switch {
		case errors.Is(err, cart.ErrSessionNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "cart not found")
		case errors.Is(err, service.ErrEmptyCart):
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		case errors.As(err, &stockErr):
			middleware.RespondWithError(w, http.StatusConflict, stockErr.Error())
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusConflict, "a product in the cart no longer exists")
		default:
			h.logger.Error("Checkout failed", zap.Error(err), zap.String("cart_id", id.String()))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process sale")
		}
		return
	}

	// Commit cleared the cart; the session itself is done.
	h.carts.Remove(id)

	h.logger.Info("Sale committed",
		zap.Int64("sale_id", sale.ID),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
		zap.Int("line_count", len(sale.Items)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

func parseCartID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "cartID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart id")
		return uuid.Nil, false
	}

	return id, true
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrSessionNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "cart not found")
	case errors.Is(err, cart.ErrOutOfStock):
		middleware.RespondWithError(w, http.StatusConflict, "product is out of stock")
	case errors.Is(err, cart.ErrStockLimitExceeded):
		middleware.RespondWithError(w, http.StatusConflict, "requested quantity exceeds available stock")
	case errors.Is(err, cart.ErrLineNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product is not in the cart")
	default:
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	}
}

func cartView(id uuid.UUID, c *cart.Cart) CartResponse {
	lines := c.Lines()
	out := make([]CartLineResponse, 0, len(lines))
	for _, line := range lines {
		out = append(out, CartLineResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			Subtotal:    line.Subtotal().StringFixed(2),
		})
	}

	return CartResponse{
		CartID: id.String(),
		Lines:  out,
		Total:  c.Total().StringFixed(2),
	}
}
