package order

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var allStatuses = []Status{StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled}

// startOfMonth is the first instant of t's calendar month in t's location.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Stats assembles the admin dashboard snapshot: overall totals, per-status
// breakdowns, the current calendar month and per-product sales. Every figure
// is zero-valued when there is no matching data.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		CountByStatus: make(map[Status]int64, len(allStatuses)),
		SalesByStatus: make(map[Status]decimal.Decimal, len(allStatuses)),
	}

	var err error
	if stats.TotalSales, err = s.repo.TotalSales(ctx); err != nil {
		return nil, s.statsErr("total sales", err)
	}
	if stats.TotalOrders, err = s.repo.CountOrders(ctx); err != nil {
		return nil, s.statsErr("total orders", err)
	}
	if stats.PaidOrders, err = s.repo.CountWithStatuses(ctx, RevenueStatuses); err != nil {
		return nil, s.statsErr("paid orders", err)
	}

	for _, status := range allStatuses {
		count, err := s.repo.CountWithStatuses(ctx, []Status{status})
		if err != nil {
			return nil, s.statsErr(fmt.Sprintf("count for status %s", status), err)
		}
		stats.CountByStatus[status] = count

		sales, err := s.repo.SalesByStatus(ctx, status)
		if err != nil {
			return nil, s.statsErr(fmt.Sprintf("sales for status %s", status), err)
		}
		stats.SalesByStatus[status] = sales
	}

	monthStart := startOfMonth(time.Now())
	if stats.OrdersThisMonth, err = s.repo.CountSince(ctx, monthStart); err != nil {
		return nil, s.statsErr("orders this month", err)
	}
	if stats.SalesThisMonth, err = s.repo.SalesSince(ctx, monthStart); err != nil {
		return nil, s.statsErr("sales this month", err)
	}

	if stats.ProductSales, err = s.repo.ProductSales(ctx); err != nil {
		return nil, s.statsErr("product sales", err)
	}

	return stats, nil
}

func (s *service) statsErr(what string, err error) error {
	log.Error().Err(err).Str("figure", what).Msg("service: failed to gather statistics")
	return fmt.Errorf("service: failed to gather %s: %w", what, err)
}
