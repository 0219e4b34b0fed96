// Package portfolio computes per-position and portfolio-wide profitability
// metrics from stored positions and current market prices.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trogers1052/portfolio-service/internal/models"
	"github.com/trogers1052/portfolio-service/internal/pricing"
)

// PositionStore provides the stored positions to value.
type PositionStore interface {
	GetAllPositions() ([]*models.Position, error)
}

// PriceSource resolves current market prices for a batch of symbols.
type PriceSource interface {
	GetPrices(ctx context.Context, reqs []pricing.Request) map[string]pricing.Result
}

// Service is the valuation engine.
type Service struct {
	store  PositionStore
	prices PriceSource
}

// NewService creates a valuation engine over a position store and a price
// source.
func NewService(store PositionStore, prices PriceSource) *Service {
	return &Service{store: store, prices: prices}
}

var oneHundred = decimal.NewFromInt(100)

// roiPercent is profit/loss as a percentage of cost. Zero cost yields zero,
// never a division error.
func roiPercent(profitLoss, totalCost decimal.Decimal) decimal.Decimal {
	if !totalCost.IsPositive() {
		return decimal.Zero
	}
	return profitLoss.Div(totalCost).Mul(oneHundred)
}

// PositionsWithMetrics fetches all positions, resolves their prices in one
// batch, and computes current value, profit/loss, and ROI per position.
// A position whose price is unavailable is valued at zero and flagged, not
// dropped. An empty portfolio yields an empty slice.
func (s *Service) PositionsWithMetrics(ctx context.Context) ([]*models.PositionWithMetrics, error) {
	positions, err := s.store.GetAllPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	if len(positions) == 0 {
		return []*models.PositionWithMetrics{}, nil
	}

	reqs := make([]pricing.Request, 0, len(positions))
	for _, p := range positions {
		reqs = append(reqs, pricing.Request{Symbol: p.Symbol, AssetClass: p.AssetClass})
	}
	prices := s.prices.GetPrices(ctx, reqs)

	metrics := make([]*models.PositionWithMetrics, 0, len(positions))
	for _, p := range positions {
		res := prices[p.Symbol]

		currentValue := p.Quantity.Mul(res.Price)
		totalCost := p.TotalCost()
		profitLoss := currentValue.Sub(totalCost)

		metrics = append(metrics, &models.PositionWithMetrics{
			ID:               p.ID,
			Symbol:           p.Symbol,
			AssetClass:       p.AssetClass,
			Quantity:         p.Quantity,
			PurchasePrice:    p.PurchasePrice,
			CurrentPrice:     res.Price,
			CurrentValue:     currentValue,
			ProfitLoss:       profitLoss,
			ROIPercentage:    roiPercent(profitLoss, totalCost),
			PriceUnavailable: !res.Available,
			CreatedAt:        p.CreatedAt,
			UpdatedAt:        p.UpdatedAt,
		})
	}

	return metrics, nil
}

// Summary aggregates metrics across the portfolio. An empty portfolio
// yields a well-formed all-zero summary with a fresh timestamp.
func (s *Service) Summary(ctx context.Context) (*models.PortfolioSummary, error) {
	positions, err := s.PositionsWithMetrics(ctx)
	if err != nil {
		return nil, err
	}

	totalValue := decimal.Zero
	totalCost := decimal.Zero
	for _, p := range positions {
		totalValue = totalValue.Add(p.CurrentValue)
		totalCost = totalCost.Add(p.Quantity.Mul(p.PurchasePrice))
	}
	totalProfitLoss := totalValue.Sub(totalCost)

	return &models.PortfolioSummary{
		TotalPositions:     len(positions),
		TotalValue:         totalValue,
		TotalCost:          totalCost,
		TotalProfitLoss:    totalProfitLoss,
		TotalROIPercentage: roiPercent(totalProfitLoss, totalCost),
		LastUpdated:        time.Now().UTC(),
	}, nil
}
