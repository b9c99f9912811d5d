package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"salespoint/internal/domain"
	"salespoint/internal/repository"
	"salespoint/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCatalog is a configurable CatalogService for handler tests
type fakeCatalog struct {
	createProduct func(ctx context.Context, p *domain.Product) (*domain.Product, error)
	updateProduct func(ctx context.Context, p *domain.Product) error
	deleteProduct func(ctx context.Context, id int64) error
	getProduct    func(ctx context.Context, id int64) (*domain.Product, error)
	listProducts  func(ctx context.Context, categoryID *int64, search string) ([]*domain.Product, error)

	createCategory func(ctx context.Context, c *domain.Category) (*domain.Category, error)
	updateCategory func(ctx context.Context, c *domain.Category) error
	deleteCategory func(ctx context.Context, id int64) error
	getCategory    func(ctx context.Context, id int64) (*domain.Category, error)
	listCategories func(ctx context.Context) ([]*domain.Category, error)
}

func (f *fakeCatalog) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	return f.createProduct(ctx, p)
}

func (f *fakeCatalog) UpdateProduct(ctx context.Context, p *domain.Product) error {
	return f.updateProduct(ctx, p)
}

func (f *fakeCatalog) DeleteProduct(ctx context.Context, id int64) error {
	return f.deleteProduct(ctx, id)
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return f.getProduct(ctx, id)
}

func (f *fakeCatalog) ListProducts(ctx context.Context, categoryID *int64, search string) ([]*domain.Product, error) {
	return f.listProducts(ctx, categoryID, search)
}

func (f *fakeCatalog) CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	return f.createCategory(ctx, c)
}

func (f *fakeCatalog) UpdateCategory(ctx context.Context, c *domain.Category) error {
	return f.updateCategory(ctx, c)
}

func (f *fakeCatalog) DeleteCategory(ctx context.Context, id int64) error {
	return f.deleteCategory(ctx, id)
}

func (f *fakeCatalog) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return f.getCategory(ctx, id)
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return f.listCategories(ctx)
}

func passthroughAuth(next http.Handler) http.Handler {
	return next
}

func newProductRouter(catalog *fakeCatalog) chi.Router {
	router := chi.NewRouter()
	NewProductHandler(catalog, zap.NewNop()).RegisterRoutes(router, passthroughAuth)
	return router
}

func TestProductHandler_List(t *testing.T) {
	var gotCategoryID *int64
	var gotSearch string

	catalog := &fakeCatalog{
		listProducts: func(_ context.Context, categoryID *int64, search string) ([]*domain.Product, error) {
			gotCategoryID = categoryID
			gotSearch = search
			return []*domain.Product{
				{ID: 1, Name: "Espresso", Price: decimal.RequireFromString("2.50")},
			}, nil
		},
	}
	router := newProductRouter(catalog)

	req := httptest.NewRequest("GET", "/api/products?category_id=3&q=esp", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotCategoryID)
	assert.Equal(t, int64(3), *gotCategoryID)
	assert.Equal(t, "esp", gotSearch)

	var products []*domain.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Espresso", products[0].Name)
}

func TestProductHandler_ListBadCategoryID(t *testing.T) {
	router := newProductRouter(&fakeCatalog{})

	req := httptest.NewRequest("GET", "/api/products?category_id=abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_GetNotFound(t *testing.T) {
	catalog := &fakeCatalog{
		getProduct: func(_ context.Context, id int64) (*domain.Product, error) {
			return nil, repository.ErrProductNotFound
		},
	}
	router := newProductRouter(catalog)

	req := httptest.NewRequest("GET", "/api/products/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_Create(t *testing.T) {
	var created *domain.Product
	catalog := &fakeCatalog{
		createProduct: func(_ context.Context, p *domain.Product) (*domain.Product, error) {
			created = p
			out := *p
			out.ID = 7
			return &out, nil
		},
	}
	router := newProductRouter(catalog)

	body := `{"name":"Espresso","category_id":3,"price":"2.50","stock_quantity":10}`
	req := httptest.NewRequest("POST", "/api/products", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, created)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("2.50")))
	assert.Equal(t, 10, created.StockQuantity)
}

func TestProductHandler_CreateValidation(t *testing.T) {
	router := newProductRouter(&fakeCatalog{})

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"category_id":3,"price":"2.50"}`},
		{"missing category", `{"name":"Espresso","price":"2.50"}`},
		{"missing price", `{"name":"Espresso","category_id":3}`},
		{"negative stock", `{"name":"Espresso","category_id":3,"price":"2.50","stock_quantity":-1}`},
		{"unparseable price", `{"name":"Espresso","category_id":3,"price":"two fifty"}`},
		{"malformed json", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/products", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestProductHandler_CreateUnknownCategory(t *testing.T) {
	catalog := &fakeCatalog{
		createProduct: func(_ context.Context, p *domain.Product) (*domain.Product, error) {
			return nil, service.ErrUnknownCategory
		},
	}
	router := newProductRouter(catalog)

	body := `{"name":"Espresso","category_id":99,"price":"2.50"}`
	req := httptest.NewRequest("POST", "/api/products", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_Update(t *testing.T) {
	var updated *domain.Product
	catalog := &fakeCatalog{
		updateProduct: func(_ context.Context, p *domain.Product) error {
			updated = p
			return nil
		},
	}
	router := newProductRouter(catalog)

	body := `{"name":"Espresso","category_id":3,"price":"2.75","stock_quantity":5}`
	req := httptest.NewRequest("PUT", "/api/products/7", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, updated)
	assert.Equal(t, int64(7), updated.ID)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("2.75")))
}

func TestProductHandler_Delete(t *testing.T) {
	catalog := &fakeCatalog{
		deleteProduct: func(_ context.Context, id int64) error {
			if id != 7 {
				return repository.ErrProductNotFound
			}
			return nil
		},
	}
	router := newProductRouter(catalog)

	req := httptest.NewRequest("DELETE", "/api/products/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("DELETE", "/api/products/8", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_MutationsRequireAuth(t *testing.T) {
	denyAll := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}

	catalog := &fakeCatalog{
		listProducts: func(_ context.Context, _ *int64, _ string) ([]*domain.Product, error) {
			return nil, nil
		},
	}
	router := chi.NewRouter()
	NewProductHandler(catalog, zap.NewNop()).RegisterRoutes(router, denyAll)

	// Reads stay open
	req := httptest.NewRequest("GET", "/api/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Mutations hit the auth middleware
	req = httptest.NewRequest("POST", "/api/products", bytes.NewReader([]byte(`{}`)))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
