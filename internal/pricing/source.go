package pricing

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/trogers1052/portfolio-service/internal/models"
)

// quoteSuffix is appended to bare crypto tickers before querying the
// provider, e.g. BTC becomes BTC-USD.
const quoteSuffix = "-USD"

// Request identifies one price to resolve.
type Request struct {
	Symbol     string
	AssetClass models.AssetClass
}

// Result is a price-or-unavailable outcome. When Available is false, Price
// is zero.
type Result struct {
	Price     decimal.Decimal
	Available bool
}

// Source resolves current prices, consulting the cache before the provider.
// Provider and cache failures never escape; they resolve to unavailable.
type Source struct {
	provider *ProviderClient
	cache    Cache
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewSource creates a price source. cache may be nil to disable caching.
func NewSource(provider *ProviderClient, cache Cache, ttl time.Duration, logger zerolog.Logger) *Source {
	return &Source{
		provider: provider,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// NormalizeSymbol returns the symbol as sent to the provider: crypto tickers
// get the -USD quote suffix unless already present.
func NormalizeSymbol(symbol string, class models.AssetClass) string {
	if class == models.AssetClassCrypto && !strings.HasSuffix(symbol, quoteSuffix) {
		return symbol + quoteSuffix
	}
	return symbol
}

// GetPrice resolves the current price for one symbol. Any failure maps to an
// unavailable result.
func (s *Source) GetPrice(ctx context.Context, symbol string, class models.AssetClass) Result {
	normalized := NormalizeSymbol(symbol, class)

	if s.cache != nil {
		if price, ok := s.cache.Get(ctx, normalized); ok {
			return Result{Price: price, Available: true}
		}
	}

	price, err := s.provider.Quote(ctx, normalized)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", normalized).Msg("price unavailable")
		return Result{}
	}

	if s.cache != nil {
		s.cache.Set(ctx, normalized, price, s.ttl)
	}
	return Result{Price: price, Available: true}
}

// GetPrices resolves a batch of symbols concurrently and joins before
// returning. The map is keyed by the caller's original symbol; each symbol
// resolves independently, so one failure never affects another. An empty
// batch yields an empty map.
func (s *Source) GetPrices(ctx context.Context, reqs []Request) map[string]Result {
	results := make(map[string]Result, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	seen := make(map[string]bool, len(reqs))
	var distinct []Request
	for _, r := range reqs {
		if !seen[r.Symbol] {
			seen[r.Symbol] = true
			distinct = append(distinct, r)
		}
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, r := range distinct {
		wg.Add(1)
		go func(r Request) {
			defer wg.Done()
			res := s.GetPrice(ctx, r.Symbol, r.AssetClass)
			mu.Lock()
			results[r.Symbol] = res
			mu.Unlock()
		}(r)
	}
	wg.Wait()

	return results
}
