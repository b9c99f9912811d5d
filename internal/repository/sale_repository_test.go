package repository

import (
	"context"
	"testing"
	"time"

	"salespoint/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSale(t *testing.T, repo SaleRepository, total string, saleDate time.Time) int64 {
	t.Helper()

	id, err := repo.Create(context.Background(), decimal.RequireFromString(total), saleDate)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = testDB.Exec("DELETE FROM sale_items WHERE sale_id = $1", id)
		_, _ = testDB.Exec("DELETE FROM sales WHERE id = $1", id)
	})

	return id
}

func TestSaleRepository_CreateAndFind(t *testing.T) {
	categoryRepo := NewCategoryRepository(testDB)
	productRepo := NewProductRepository(testDB)
	saleRepo := NewSaleRepository(testDB)
	ctx := context.Background()

	category := createTestCategory(t, categoryRepo)
	product := createTestProduct(t, productRepo, category.ID, "12.50", 10)

	saleDate := time.Now().UTC().Truncate(time.Second)
	saleID := createTestSale(t, saleRepo, "25.00", saleDate)

	items := []*domain.SaleItem{
		{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("12.50"),
			Subtotal:    decimal.RequireFromString("25.00"),
		},
	}
	require.NoError(t, saleRepo.AppendLineItems(ctx, saleID, items))

	sale, err := saleRepo.FindByID(ctx, saleID)
	require.NoError(t, err)
	assert.Equal(t, saleID, sale.ID)
	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("25.00")))
	assert.WithinDuration(t, saleDate, sale.SaleDate, time.Second)

	require.Len(t, sale.Items, 1)
	item := sale.Items[0]
	assert.Equal(t, saleID, item.SaleID)
	assert.Equal(t, product.ID, item.ProductID)
	assert.Equal(t, product.Name, item.ProductName)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, item.Subtotal.Equal(decimal.RequireFromString("25.00")))
}

func TestSaleRepository_FindMissing(t *testing.T) {
	repo := NewSaleRepository(testDB)

	_, err := repo.FindByID(context.Background(), -1)
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestSaleRepository_ListOrderAndLimit(t *testing.T) {
	repo := NewSaleRepository(testDB)
	ctx := context.Background()

	older := createTestSale(t, repo, "10.00", time.Now().UTC().Add(-2*time.Hour))
	newer := createTestSale(t, repo, "20.00", time.Now().UTC().Add(-1*time.Hour))

	sales, err := repo.List(ctx, 100)
	require.NoError(t, err)

	var olderIdx, newerIdx = -1, -1
	for i, s := range sales {
		switch s.ID {
		case older:
			olderIdx = i
		case newer:
			newerIdx = i
		}
	}
	require.NotEqual(t, -1, olderIdx)
	require.NotEqual(t, -1, newerIdx)
	assert.Less(t, newerIdx, olderIdx, "newer sales come first")

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSaleRepository_ListByDateRange(t *testing.T) {
	repo := NewSaleRepository(testDB)
	ctx := context.Background()

	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	inside := createTestSale(t, repo, "15.00", base)
	createTestSale(t, repo, "30.00", base.AddDate(0, 0, 7))

	sales, err := repo.ListByDateRange(ctx, base.AddDate(0, 0, -1), base.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, inside, sales[0].ID)
}

func TestSaleRepository_CountAndRevenue(t *testing.T) {
	repo := NewSaleRepository(testDB)
	ctx := context.Background()

	countBefore, err := repo.Count(ctx)
	require.NoError(t, err)
	revenueBefore, err := repo.SumRevenue(ctx)
	require.NoError(t, err)

	createTestSale(t, repo, "15.00", time.Now().UTC())
	createTestSale(t, repo, "7.25", time.Now().UTC())

	countAfter, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, countBefore+2, countAfter)

	revenueAfter, err := repo.SumRevenue(ctx)
	require.NoError(t, err)
	assert.True(t, revenueAfter.Sub(revenueBefore).Equal(decimal.RequireFromString("22.25")))
}
