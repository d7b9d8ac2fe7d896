package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/dto"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

const dashboardLowStockRows = 10

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Dashboard KPIs del día de now (UTC). No persiste nada.
func (g *Generator) Dashboard(ctx context.Context, now time.Time) (*dto.DashboardDTO, error) {
	from := startOfDay(now)
	to := from.AddDate(0, 0, 1)

	sum, err := g.analytics.SalesSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	top, err := g.analytics.TopProducts(ctx, from, to, 1)
	if err != nil {
		return nil, err
	}
	byUser, err := g.analytics.SalesByUser(ctx, from, to)
	if err != nil {
		return nil, err
	}
	threshold := g.lowStock
	low, err := g.repos.Products.List(ctx, repository.ProductFilter{MaxStock: &threshold})
	if err != nil {
		return nil, err
	}

	out := &dto.DashboardDTO{
		Date:           from.Format("2006-01-02"),
		TodaySales:     sum.Total,
		TodayCount:     sum.Count,
		TodayCancelled: sum.CancelledCount,
		LowStockCount:  len(low),
		LowStock:       make([]dto.LowStockDTO, 0, dashboardLowStockRows),
		SalesByUser:    make([]dto.UserSalesDTO, 0, len(byUser)),
	}
	if len(top) > 0 {
		out.TopProduct = &dto.TopProductDTO{
			ProductID: top[0].ProductID,
			Name:      top[0].Name,
			Code:      top[0].Code,
			Quantity:  top[0].Quantity,
			Amount:    top[0].Amount,
		}
	}
	for i, p := range low {
		if i == dashboardLowStockRows {
			break
		}
		out.LowStock = append(out.LowStock, dto.LowStockDTO{ProductID: p.ID, Name: p.Name, Code: p.Code, Stock: p.Stock})
	}
	for _, u := range byUser {
		out.SalesByUser = append(out.SalesByUser, dto.UserSalesDTO{UserID: u.UserID, Username: u.Username, Count: u.Count, Total: u.Total})
	}
	return out, nil
}

// periodWindow ventana hacia atrás de cada granularidad.
func periodWindow(period string, now time.Time) (time.Time, error) {
	switch period {
	case repository.PeriodDay:
		return startOfDay(now).AddDate(0, 0, -6), nil
	case repository.PeriodWeek:
		return startOfDay(now).AddDate(0, 0, -7*4), nil
	case repository.PeriodMonth:
		return startOfDay(now).AddDate(-1, 0, 0), nil
	}
	return time.Time{}, domain.Invalid("period", fmt.Sprintf("período %q no soportado (day, week, month)", period))
}

func periodLabel(period string, start time.Time) string {
	switch period {
	case repository.PeriodWeek:
		y, w := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	case repository.PeriodMonth:
		return start.Format("2006-01")
	default:
		return start.Format("2006-01-02")
	}
}

// SalesByPeriod ventas vigentes agrupadas: últimos 7 días, 4 semanas o 12 meses.
func (g *Generator) SalesByPeriod(ctx context.Context, period string, now time.Time) ([]dto.PeriodSalesDTO, error) {
	from, err := periodWindow(period, now)
	if err != nil {
		return nil, err
	}
	to := startOfDay(now).AddDate(0, 0, 1)
	rows, err := g.analytics.SalesByPeriod(ctx, period, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PeriodSalesDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PeriodSalesDTO{
			Period: periodLabel(period, r.Start),
			Start:  r.Start,
			Count:  r.Count,
			Total:  r.Total,
		})
	}
	return out, nil
}
