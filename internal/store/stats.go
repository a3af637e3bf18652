package store

import (
	"context"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalUsers      int
	TotalBeekeepers int
	ActiveHoneys    int
	TotalOrders     int
	Revenue         decimal.Decimal
	OrdersByStatus  map[string]int
	TopProducts     []ProductOrderCount
}

type ProductOrderCount struct {
	ProductName string `db:"product_name"`
	Quantity    int    `db:"quantity"`
}

func (s *Store) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		OrdersByStatus: make(map[string]int),
	}

	counts := []struct {
		dest  *int
		query string
	}{
		{&stats.TotalUsers, `SELECT COUNT(*) FROM users`},
		{&stats.TotalBeekeepers, `SELECT COUNT(*) FROM beekeepers`},
		{&stats.TotalOrders, `SELECT COUNT(*) FROM orders`},
	}
	for _, c := range counts {
		if err := s.DB.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, err
		}
	}

	var err error
	if stats.ActiveHoneys, err = s.CountActiveHoneys(ctx); err != nil {
		return nil, err
	}

	var revenue decimal.NullDecimal
	if err := s.DB.GetContext(ctx, &revenue, `SELECT SUM(total_price) FROM orders`); err != nil {
		return nil, err
	}
	stats.Revenue = revenue.Decimal

	rows, err := s.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.OrdersByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.DB.SelectContext(ctx, &stats.TopProducts, `
		SELECT product_name, SUM(quantity) AS quantity
		FROM order_items
		GROUP BY product_name
		ORDER BY quantity DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
