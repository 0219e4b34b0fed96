package pricing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/portfolio-service/internal/models"
)

// mapCache is an in-memory Cache for tests.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]decimal.Decimal
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]decimal.Decimal)}
}

func (c *mapCache) Get(_ context.Context, symbol string) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	price, ok := c.entries[symbol]
	return price, ok
}

func (c *mapCache) Set(_ context.Context, symbol string, price decimal.Decimal, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = price
	c.sets++
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol("AAPL", models.AssetClassStock))
	assert.Equal(t, "BTC-USD", NormalizeSymbol("BTC", models.AssetClassCrypto))
	assert.Equal(t, "BTC-USD", NormalizeSymbol("BTC-USD", models.AssetClassCrypto))
	assert.Equal(t, "ETH-USD", NormalizeSymbol("ETH", models.AssetClassCrypto))
}

func TestSourceGetPrice(t *testing.T) {
	t.Run("resolves a quoted price", func(t *testing.T) {
		fake := &fakeProvider{quoteBody: `{"regularMarketPrice": 150.25}`}
		srv := fake.server()
		defer srv.Close()

		source := NewSource(NewProviderClient(srv.URL, time.Second), nil, time.Minute, zerolog.Nop())
		res := source.GetPrice(context.Background(), "AAPL", models.AssetClassStock)
		require.True(t, res.Available)
		assert.True(t, decimal.RequireFromString("150.25").Equal(res.Price))
		assert.Equal(t, "AAPL", fake.lastSymbol)
	})

	t.Run("queries provider with normalized crypto symbol", func(t *testing.T) {
		fake := &fakeProvider{quoteBody: `{"regularMarketPrice": 65000.00}`}
		srv := fake.server()
		defer srv.Close()

		source := NewSource(NewProviderClient(srv.URL, time.Second), nil, time.Minute, zerolog.Nop())
		res := source.GetPrice(context.Background(), "BTC", models.AssetClassCrypto)
		require.True(t, res.Available)
		assert.Equal(t, "BTC-USD", fake.lastSymbol)
	})

	t.Run("maps provider failure to unavailable", func(t *testing.T) {
		fake := &fakeProvider{quoteStatus: 500}
		srv := fake.server()
		defer srv.Close()

		source := NewSource(NewProviderClient(srv.URL, time.Second), nil, time.Minute, zerolog.Nop())
		res := source.GetPrice(context.Background(), "AAPL", models.AssetClassStock)
		assert.False(t, res.Available)
		assert.True(t, res.Price.IsZero())
	})

	t.Run("cache hit skips the provider", func(t *testing.T) {
		fake := &fakeProvider{quoteBody: `{"regularMarketPrice": 150.25}`}
		srv := fake.server()
		defer srv.Close()

		cache := newMapCache()
		cache.entries["AAPL"] = decimal.RequireFromString("149.00")

		source := NewSource(NewProviderClient(srv.URL, time.Second), cache, time.Minute, zerolog.Nop())
		res := source.GetPrice(context.Background(), "AAPL", models.AssetClassStock)
		require.True(t, res.Available)
		assert.True(t, decimal.RequireFromString("149.00").Equal(res.Price))
		assert.Equal(t, 0, fake.quoteHits)
	})

	t.Run("cache miss fetches and stores", func(t *testing.T) {
		fake := &fakeProvider{quoteBody: `{"regularMarketPrice": 150.25}`}
		srv := fake.server()
		defer srv.Close()

		cache := newMapCache()
		source := NewSource(NewProviderClient(srv.URL, time.Second), cache, time.Minute, zerolog.Nop())
		res := source.GetPrice(context.Background(), "AAPL", models.AssetClassStock)
		require.True(t, res.Available)
		assert.Equal(t, 1, fake.quoteHits)
		assert.Equal(t, 1, cache.sets)

		cached, ok := cache.Get(context.Background(), "AAPL")
		require.True(t, ok)
		assert.True(t, decimal.RequireFromString("150.25").Equal(cached))
	})

	t.Run("unavailable result is not cached", func(t *testing.T) {
		fake := &fakeProvider{quoteStatus: 500}
		srv := fake.server()
		defer srv.Close()

		cache := newMapCache()
		source := NewSource(NewProviderClient(srv.URL, time.Second), cache, time.Minute, zerolog.Nop())
		res := source.GetPrice(context.Background(), "AAPL", models.AssetClassStock)
		assert.False(t, res.Available)
		assert.Equal(t, 0, cache.sets)
	})
}

func TestSourceGetPrices(t *testing.T) {
	t.Run("empty batch returns empty map", func(t *testing.T) {
		source := NewSource(NewProviderClient("http://localhost:0", time.Second), nil, time.Minute, zerolog.Nop())
		results := source.GetPrices(context.Background(), nil)
		require.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("symbols resolve independently", func(t *testing.T) {
		srv := fakeQuoteServer(map[string]string{
			"AAPL": `{"regularMarketPrice": 150.25}`,
		})
		defer srv.Close()

		source := NewSource(NewProviderClient(srv.URL, time.Second), nil, time.Minute, zerolog.Nop())
		results := source.GetPrices(context.Background(), []Request{
			{Symbol: "AAPL", AssetClass: models.AssetClassStock},
			{Symbol: "BOGUS", AssetClass: models.AssetClassStock},
		})

		require.Len(t, results, 2)
		assert.True(t, results["AAPL"].Available)
		assert.True(t, decimal.RequireFromString("150.25").Equal(results["AAPL"].Price))
		assert.False(t, results["BOGUS"].Available)
		assert.True(t, results["BOGUS"].Price.IsZero())
	})

	t.Run("results are keyed by the original symbol", func(t *testing.T) {
		srv := fakeQuoteServer(map[string]string{
			"BTC-USD": `{"regularMarketPrice": 65000.00}`,
		})
		defer srv.Close()

		source := NewSource(NewProviderClient(srv.URL, time.Second), nil, time.Minute, zerolog.Nop())
		results := source.GetPrices(context.Background(), []Request{
			{Symbol: "BTC", AssetClass: models.AssetClassCrypto},
		})

		res, ok := results["BTC"]
		require.True(t, ok, "result should be keyed by the caller's symbol, not the normalized one")
		assert.True(t, res.Available)
	})

	t.Run("duplicate symbols are fetched once", func(t *testing.T) {
		fake := &fakeProvider{quoteBody: `{"regularMarketPrice": 150.25}`}
		srv := fake.server()
		defer srv.Close()

		source := NewSource(NewProviderClient(srv.URL, time.Second), nil, time.Minute, zerolog.Nop())
		results := source.GetPrices(context.Background(), []Request{
			{Symbol: "AAPL", AssetClass: models.AssetClassStock},
			{Symbol: "AAPL", AssetClass: models.AssetClassStock},
		})

		require.Len(t, results, 1)
		assert.Equal(t, 1, fake.quoteHits)
	})
}
