// Package analytics contiene los casos de uso del tablero de resumen.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/buildmaster/backoffice-api/internal/application/dto"
	"github.com/buildmaster/backoffice-api/internal/application/usecase"
	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

const (
	LowStockThreshold = 10 // stock por debajo de este valor se considera alerta
	dashboardTopItems = 5
)

// DashboardUseCase genera el resumen del inventario y de las ventas del día y del mes.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Consultas en paralelo:
//  1. GetInventoryTotals          → TotalItems + InventoryValue
//  2. GetLowStock(umbral)         → LowStock
//  3. GetSalesTotals(hoy/mes/todo) → TodaySales, MonthlySales, TotalRevenue
//  4. GetTopProducts(mes, top 5)  → TopProducts
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// ── Rangos de fecha (to exclusivo) ────────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := todayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type inventoryResult struct {
		totals repository.InventoryTotals
		err    error
	}
	type lowStockResult struct {
		list []*entity.Product
		err  error
	}
	type salesResult struct {
		totals repository.SalesTotals
		err    error
	}
	type topResult struct {
		list []repository.TopProductResult
		err  error
	}

	invCh := make(chan inventoryResult, 1)
	lowCh := make(chan lowStockResult, 1)
	todayCh := make(chan salesResult, 1)
	monthCh := make(chan salesResult, 1)
	allCh := make(chan salesResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		t, err := uc.analyticsRepo.GetInventoryTotals(ctx)
		invCh <- inventoryResult{t, err}
	}()
	go func() {
		l, err := uc.analyticsRepo.GetLowStock(ctx, LowStockThreshold)
		lowCh <- lowStockResult{l, err}
	}()
	go func() {
		t, err := uc.analyticsRepo.GetSalesTotals(ctx, &todayStart, &tomorrow)
		todayCh <- salesResult{t, err}
	}()
	go func() {
		t, err := uc.analyticsRepo.GetSalesTotals(ctx, &monthStart, &tomorrow)
		monthCh <- salesResult{t, err}
	}()
	go func() {
		t, err := uc.analyticsRepo.GetSalesTotals(ctx, nil, nil)
		allCh <- salesResult{t, err}
	}()
	go func() {
		l, err := uc.analyticsRepo.GetTopProducts(ctx, &monthStart, &tomorrow, dashboardTopItems)
		topCh <- topResult{l, err}
	}()

	inv, low, today, month, all, top := <-invCh, <-lowCh, <-todayCh, <-monthCh, <-allCh, <-topCh

	switch {
	case inv.err != nil:
		return nil, fmt.Errorf("dashboard: inventario: %w", inv.err)
	case low.err != nil:
		return nil, fmt.Errorf("dashboard: stock bajo: %w", low.err)
	case today.err != nil:
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", today.err)
	case month.err != nil:
		return nil, fmt.Errorf("dashboard: ventas del mes: %w", month.err)
	case all.err != nil:
		return nil, fmt.Errorf("dashboard: ventas totales: %w", all.err)
	case top.err != nil:
		return nil, fmt.Errorf("dashboard: top productos: %w", top.err)
	}

	lowStock := make([]dto.ProductResponse, 0, len(low.list))
	for _, p := range low.list {
		lowStock = append(lowStock, usecase.ToProductResponse(p))
	}
	topProducts := make([]dto.TopProductDTO, 0, len(top.list))
	for _, t := range top.list {
		topProducts = append(topProducts, dto.TopProductDTO{
			ProductID:    t.ProductID,
			Name:         t.Name,
			QuantitySold: t.QtySold,
			TotalRevenue: t.Revenue.Round(2),
		})
	}

	return &dto.DashboardSummaryDTO{
		TotalItems:     inv.totals.TotalItems,
		InventoryValue: inv.totals.TotalValue.Round(2),
		TotalRevenue:   all.totals.Revenue.Round(2),
		TodaySales:     today.totals.Revenue.Round(2),
		TodayCount:     today.totals.Count,
		MonthlySales:   month.totals.Revenue.Round(2),
		LowStock:       lowStock,
		TopProducts:    topProducts,
		DateLabel:      monthLabel(now),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
