package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssetClass categorizes an instrument for price lookup purposes.
type AssetClass string

const (
	AssetClassStock  AssetClass = "stock"
	AssetClassCrypto AssetClass = "crypto"
)

// MaxSymbolLength is the longest symbol the positions table accepts.
const MaxSymbolLength = 20

// Valid reports whether the asset class is a known value.
func (a AssetClass) Valid() bool {
	return a == AssetClassStock || a == AssetClassCrypto
}

// ValidationError reports an input that violates a data-model invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Position represents a recorded holding of an asset
type Position struct {
	ID            int             `json:"id"`
	Symbol        string          `json:"symbol"`
	AssetClass    AssetClass      `json:"asset_class"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TotalCost returns the cost basis of the position (quantity * purchase price).
func (p *Position) TotalCost() decimal.Decimal {
	return p.Quantity.Mul(p.PurchasePrice)
}

// PositionCreate is the validated input shape for creating a position.
// An empty AssetClass defaults to stock at the store boundary.
type PositionCreate struct {
	Symbol        string          `json:"symbol"`
	AssetClass    AssetClass      `json:"asset_class"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// Validate checks the create request against the data-model invariants.
func (c *PositionCreate) Validate() error {
	if c.Symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if len(c.Symbol) > MaxSymbolLength {
		return &ValidationError{Field: "symbol", Reason: fmt.Sprintf("must be at most %d characters", MaxSymbolLength)}
	}
	if c.AssetClass != "" && !c.AssetClass.Valid() {
		return &ValidationError{Field: "asset_class", Reason: fmt.Sprintf("must be %q or %q", AssetClassStock, AssetClassCrypto)}
	}
	if !c.Quantity.IsPositive() {
		return &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if !c.PurchasePrice.IsPositive() {
		return &ValidationError{Field: "purchase_price", Reason: "must be greater than zero"}
	}
	return nil
}

// PositionUpdate is a partial update request. Nil fields are left unchanged;
// supplied fields must still satisfy the create-time invariants.
type PositionUpdate struct {
	Symbol        *string          `json:"symbol,omitempty"`
	AssetClass    *AssetClass      `json:"asset_class,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
}

// Validate checks the supplied fields of a partial update.
func (u *PositionUpdate) Validate() error {
	if u.Symbol != nil {
		if *u.Symbol == "" {
			return &ValidationError{Field: "symbol", Reason: "must not be empty"}
		}
		if len(*u.Symbol) > MaxSymbolLength {
			return &ValidationError{Field: "symbol", Reason: fmt.Sprintf("must be at most %d characters", MaxSymbolLength)}
		}
	}
	if u.AssetClass != nil && !u.AssetClass.Valid() {
		return &ValidationError{Field: "asset_class", Reason: fmt.Sprintf("must be %q or %q", AssetClassStock, AssetClassCrypto)}
	}
	if u.Quantity != nil && !u.Quantity.IsPositive() {
		return &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if u.PurchasePrice != nil && !u.PurchasePrice.IsPositive() {
		return &ValidationError{Field: "purchase_price", Reason: "must be greater than zero"}
	}
	return nil
}

// PositionWithMetrics is a position enriched with current market data.
// When the provider has no quote for the symbol, CurrentPrice is zero and
// PriceUnavailable is true so callers can tell "worthless" from "unknown".
type PositionWithMetrics struct {
	ID               int             `json:"id"`
	Symbol           string          `json:"symbol"`
	AssetClass       AssetClass      `json:"asset_class"`
	Quantity         decimal.Decimal `json:"quantity"`
	PurchasePrice    decimal.Decimal `json:"purchase_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	ProfitLoss       decimal.Decimal `json:"profit_loss"`
	ROIPercentage    decimal.Decimal `json:"roi_percentage"`
	PriceUnavailable bool            `json:"price_unavailable"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PortfolioSummary aggregates metrics across the whole portfolio.
type PortfolioSummary struct {
	TotalPositions     int             `json:"total_positions"`
	TotalValue         decimal.Decimal `json:"total_value"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	TotalProfitLoss    decimal.Decimal `json:"total_profit_loss"`
	TotalROIPercentage decimal.Decimal `json:"total_roi_percentage"`
	LastUpdated        time.Time       `json:"last_updated"`
}
