package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

// AnalyticsRepository agregados sobre lo confirmado en el Store.
type AnalyticsRepository struct {
	s *Store
}

var _ repository.AnalyticsRepository = (*AnalyticsRepository)(nil)

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func active(s entity.Sale) bool {
	_, cancelled := s.State.(entity.CancelledSale)
	return !cancelled
}

func (r *AnalyticsRepository) SalesSummary(_ context.Context, from, to time.Time) (repository.SalesSummaryResult, error) {
	res := repository.SalesSummaryResult{Total: decimal.Zero}
	err := r.s.read(func(d *data) error {
		for _, s := range d.sales {
			if !within(s.Date, from, to) {
				continue
			}
			if !active(s) {
				res.CancelledCount++
				continue
			}
			res.Count++
			res.Total = res.Total.Add(s.TotalPrice)
		}
		return nil
	})
	return res, err
}

func (r *AnalyticsRepository) TopProducts(_ context.Context, from, to time.Time, limit int) ([]repository.TopProductResult, error) {
	byProduct := make(map[string]*repository.TopProductResult)
	err := r.s.read(func(d *data) error {
		for _, it := range d.items {
			s, ok := d.sales[it.SaleID]
			if !ok || !active(s) || !within(s.Date, from, to) {
				continue
			}
			row, ok := byProduct[it.ProductID]
			if !ok {
				p := d.products[it.ProductID]
				row = &repository.TopProductResult{ProductID: it.ProductID, Name: p.Name, Code: p.Code, Amount: decimal.Zero}
				byProduct[it.ProductID] = row
			}
			row.Quantity += it.Quantity
			row.Amount = row.Amount.Add(it.Subtotal)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.TopProductResult, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AnalyticsRepository) SalesByUser(_ context.Context, from, to time.Time) ([]repository.UserSalesResult, error) {
	byUser := make(map[string]*repository.UserSalesResult)
	err := r.s.read(func(d *data) error {
		for _, s := range d.sales {
			if !active(s) || !within(s.Date, from, to) {
				continue
			}
			row, ok := byUser[s.UserID]
			if !ok {
				row = &repository.UserSalesResult{UserID: s.UserID, Username: d.users[s.UserID].Username, Total: decimal.Zero}
				byUser[s.UserID] = row
			}
			row.Count++
			row.Total = row.Total.Add(s.TotalPrice)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.UserSalesResult, 0, len(byUser))
	for _, row := range byUser {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// TruncatePeriod inicio del período que contiene t, en UTC. Las semanas empiezan el lunes,
// igual que date_trunc('week') de PostgreSQL.
func TruncatePeriod(period string, t time.Time) (time.Time, error) {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case repository.PeriodDay:
		return day, nil
	case repository.PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset), nil
	case repository.PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, domain.Invalid("period", fmt.Sprintf("período %q no soportado", period))
}

func (r *AnalyticsRepository) SalesByPeriod(_ context.Context, period string, from, to time.Time) ([]repository.PeriodSalesResult, error) {
	if _, err := TruncatePeriod(period, from); err != nil {
		return nil, err
	}
	byStart := make(map[time.Time]*repository.PeriodSalesResult)
	err := r.s.read(func(d *data) error {
		for _, s := range d.sales {
			if !active(s) || !within(s.Date, from, to) {
				continue
			}
			start, _ := TruncatePeriod(period, s.Date)
			row, ok := byStart[start]
			if !ok {
				row = &repository.PeriodSalesResult{Start: start, Total: decimal.Zero}
				byStart[start] = row
			}
			row.Count++
			row.Total = row.Total.Add(s.TotalPrice)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.PeriodSalesResult, 0, len(byStart))
	for _, row := range byStart {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *AnalyticsRepository) ProductsByCategory(_ context.Context) ([]repository.CategoryResult, error) {
	byCategory := make(map[string]*repository.CategoryResult)
	err := r.s.read(func(d *data) error {
		for _, p := range d.products {
			row, ok := byCategory[p.Category]
			if !ok {
				row = &repository.CategoryResult{Category: p.Category, Value: decimal.Zero}
				byCategory[p.Category] = row
			}
			row.Products++
			row.Stock += p.Stock
			row.Value = row.Value.Add(p.StockValue())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]repository.CategoryResult, 0, len(byCategory))
	for _, row := range byCategory {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
