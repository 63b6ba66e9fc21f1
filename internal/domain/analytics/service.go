// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/your-org/solar-storefront/internal/domain/order"
	"github.com/your-org/solar-storefront/internal/domain/product"
	"github.com/your-org/solar-storefront/internal/domain/store"
)

// Source is the read side of the local state store used by the dashboard
type Source interface {
	ListOrders(ctx context.Context) ([]order.Order, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
	ListSessions(ctx context.Context) ([]store.Session, error)
	ListBanned(ctx context.Context) ([]string, error)
	Now() time.Time
}

// Service handles analytics business logic
type Service struct {
	source Source
}

// NewService creates a new analytics service
func NewService(source Source) *Service {
	return &Service{source: source}
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	// Sales metrics
	TotalRevenue     int64   `json:"total_revenue"` // minor units, cancelled orders excluded
	RevenueToday     int64   `json:"revenue_today"`
	RevenueThisWeek  int64   `json:"revenue_this_week"`
	RevenueThisMonth int64   `json:"revenue_this_month"`
	RevenueGrowth    float64 `json:"revenue_growth"` // Percentage, month over month

	// Order metrics
	TotalOrders    int64            `json:"total_orders"`
	OrdersToday    int64            `json:"orders_today"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	AvgOrderValue  int64            `json:"avg_order_value"`

	// Catalog and traffic
	TotalProducts      int64 `json:"total_products"`
	ActiveProducts     int64 `json:"active_products"`
	OutOfStockProducts int64 `json:"out_of_stock_products"`
	LiveSessions       int64 `json:"live_sessions"`
	BannedIPs          int64 `json:"banned_ips"`

	TopProducts []ProductSalesData `json:"top_products"`
}

// ProductSalesData aggregates the sold units of one product
type ProductSalesData struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	TotalSold   int64  `json:"total_sold"`
	Revenue     int64  `json:"revenue"`
	OrderCount  int64  `json:"order_count"`
}

// TimeSeriesData is one bucket of a revenue series
type TimeSeriesData struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
	Count int64  `json:"count,omitempty"`
}

// SalesAnalytics represents sales analytics data
type SalesAnalytics struct {
	DailyRevenue  []TimeSeriesData `json:"daily_revenue"`
	TotalSales    int64            `json:"total_sales"`
	TotalRevenue  int64            `json:"total_revenue"`
	AvgOrderValue int64            `json:"avg_order_value"`
}

const topProductsLimit = 5

// GetDashboardStats retrieves overall dashboard statistics
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	orders, err := s.source.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	products, err := s.source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	sessions, err := s.source.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	banned, err := s.source.ListBanned(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load banned ips: %w", err)
	}

	now := s.source.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	thisWeek := today.AddDate(0, 0, -int(today.Weekday()))
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)

	stats := &DashboardStats{
		OrdersByStatus: make(map[string]int64, len(order.Statuses)),
		LiveSessions:   int64(len(sessions)),
		BannedIPs:      int64(len(banned)),
		TotalProducts:  int64(len(products)),
	}
	for _, status := range order.Statuses {
		stats.OrdersByStatus[string(status)] = 0
	}

	var revenueOrders, lastMonthRevenue int64
	for i := range orders {
		o := &orders[i]
		stats.TotalOrders++
		stats.OrdersByStatus[string(o.Status)]++
		if !o.Date.Before(today) {
			stats.OrdersToday++
		}
		if !o.CountsAsRevenue() {
			continue
		}

		revenueOrders++
		stats.TotalRevenue += o.Total
		switch {
		case !o.Date.Before(thisMonth):
			stats.RevenueThisMonth += o.Total
		case !o.Date.Before(lastMonth):
			lastMonthRevenue += o.Total
		}
		if !o.Date.Before(thisWeek) {
			stats.RevenueThisWeek += o.Total
		}
		if !o.Date.Before(today) {
			stats.RevenueToday += o.Total
		}
	}

	if lastMonthRevenue > 0 {
		stats.RevenueGrowth = float64(stats.RevenueThisMonth-lastMonthRevenue) / float64(lastMonthRevenue) * 100
	}
	if revenueOrders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue / revenueOrders
	}

	for i := range products {
		switch products[i].Status {
		case product.StatusOutOfStock:
			stats.OutOfStockProducts++
		case product.StatusHidden:
		default:
			stats.ActiveProducts++
		}
	}

	stats.TopProducts = topProducts(orders, topProductsLimit)
	return stats, nil
}

// GetSalesAnalytics returns the daily revenue of the last days days
func (s *Service) GetSalesAnalytics(ctx context.Context, days int) (*SalesAnalytics, error) {
	// Default to 30 days if not specified
	if days <= 0 {
		days = 30
	}

	orders, err := s.source.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	now := s.source.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))

	buckets := make(map[string]*TimeSeriesData, days)
	analytics := &SalesAnalytics{DailyRevenue: make([]TimeSeriesData, 0, days)}
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format("2006-01-02")
		analytics.DailyRevenue = append(analytics.DailyRevenue, TimeSeriesData{Date: date})
	}
	for i := range analytics.DailyRevenue {
		buckets[analytics.DailyRevenue[i].Date] = &analytics.DailyRevenue[i]
	}

	for i := range orders {
		o := &orders[i]
		if !o.CountsAsRevenue() || o.Date.Before(start) {
			continue
		}
		bucket, ok := buckets[o.Date.In(now.Location()).Format("2006-01-02")]
		if !ok {
			continue
		}
		bucket.Value += o.Total
		bucket.Count++
		analytics.TotalSales++
		analytics.TotalRevenue += o.Total
	}

	if analytics.TotalSales > 0 {
		analytics.AvgOrderValue = analytics.TotalRevenue / analytics.TotalSales
	}
	return analytics, nil
}

func topProducts(orders []order.Order, limit int) []ProductSalesData {
	byID := make(map[string]*ProductSalesData)
	for i := range orders {
		if !orders[i].CountsAsRevenue() {
			continue
		}
		for _, item := range orders[i].Items {
			data, ok := byID[item.ProductID]
			if !ok {
				data = &ProductSalesData{ProductID: item.ProductID, ProductName: item.Name}
				byID[item.ProductID] = data
			}
			data.TotalSold += int64(item.Quantity)
			data.Revenue += item.Price * int64(item.Quantity)
			data.OrderCount++
		}
	}

	result := make([]ProductSalesData, 0, len(byID))
	for _, data := range byID {
		result = append(result, *data)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Revenue != result[j].Revenue {
			return result[i].Revenue > result[j].Revenue
		}
		return result[i].ProductID < result[j].ProductID
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}
