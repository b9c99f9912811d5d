package service

import (
	"context"
	"fmt"

	"salespoint/internal/domain"
	"salespoint/internal/repository"

	"github.com/shopspring/decimal"
)

// Stats is the read-only aggregate view shown on the dashboard
type Stats struct {
	TotalProducts   int             `json:"total_products"`
	TotalCategories int             `json:"total_categories"`
	TotalSales      int             `json:"total_sales"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

// DashboardService computes aggregates from the catalog and the sales
// ledger. Strictly read-only.
type DashboardService interface {
	Stats(ctx context.Context) (*Stats, error)
	RecentSales(ctx context.Context, limit int) ([]*domain.Sale, error)
}

type dashboardService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	saleRepo     repository.SaleRepository
}

// NewDashboardService creates a new instance of DashboardService
func NewDashboardService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	saleRepo repository.SaleRepository,
) DashboardService {
	return &dashboardService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		saleRepo:     saleRepo,
	}
}

// Stats gathers the dashboard counters
func (s *dashboardService) Stats(ctx context.Context) (*Stats, error) {
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	categories, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	sales, err := s.saleRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}

	revenue, err := s.saleRepo.SumRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return &Stats{
		TotalProducts:   products,
		TotalCategories: categories,
		TotalSales:      sales,
		TotalRevenue:    revenue,
	}, nil
}

// RecentSales lists the latest sales for the dashboard table
func (s *dashboardService) RecentSales(ctx context.Context, limit int) ([]*domain.Sale, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.saleRepo.List(ctx, limit)
}
