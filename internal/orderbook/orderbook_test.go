package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanyu/clob/internal/domain"
)

func newOrder(id int64, seq uint64, side domain.Side, price string, qty int64) *domain.Order {
	return &domain.Order{
		ID:                id,
		Symbol:            "AAPL",
		Side:              side,
		Price:             decimal.RequireFromString(price),
		Quantity:          qty,
		RemainingQuantity: qty,
		Status:            domain.OrderStatusNew,
		ArrivalSeq:        seq,
	}
}

func TestAddOrder(t *testing.T) {
	ob := NewOrderBook("AAPL")

	ob.AddOrder(newOrder(1, 1, domain.SideSell, "100.10", 1000))

	assert.Equal(t, 1, ob.AskCount())
	assert.Equal(t, 0, ob.BidCount())

	best, found := ob.BestAsk()
	require.True(t, found)
	assert.True(t, best.Price.Equal(decimal.RequireFromString("100.10")))
}

func TestBestPriceTracking(t *testing.T) {
	ob := NewOrderBook("AAPL")

	ob.AddOrder(newOrder(1, 1, domain.SideBuy, "99.90", 100))
	ob.AddOrder(newOrder(2, 2, domain.SideBuy, "100.00", 100))
	ob.AddOrder(newOrder(3, 3, domain.SideBuy, "99.80", 100))

	// Best bid = highest buy price
	bestBid, found := ob.BestBid()
	require.True(t, found)
	assert.Equal(t, int64(2), bestBid.ID)

	ob.AddOrder(newOrder(4, 4, domain.SideSell, "100.10", 100))
	ob.AddOrder(newOrder(5, 5, domain.SideSell, "100.20", 100))

	// Best ask = lowest sell price
	bestAsk, found := ob.BestAsk()
	require.True(t, found)
	assert.Equal(t, int64(4), bestAsk.ID)
}

func TestMatchAll_FullFill(t *testing.T) {
	ob := NewOrderBook("AAPL")

	ob.AddOrder(newOrder(1, 1, domain.SideSell, "100.10", 1000))
	ob.AddOrder(newOrder(2, 2, domain.SideBuy, "100.10", 1000))

	trades := ob.MatchAll()

	require.Len(t, trades, 1)
	assert.Equal(t, int64(2), trades[0].BuyOrderID)
	assert.Equal(t, int64(1), trades[0].SellOrderID)
	assert.Equal(t, int64(1000), trades[0].Quantity)
	assert.True(t, trades[0].Price.Equal(decimal.RequireFromString("100.10")))
	assert.NotEmpty(t, trades[0].TradeID)

	assert.Equal(t, 0, ob.BidCount())
	assert.Equal(t, 0, ob.AskCount())
}

func TestMatchAll_PartialFill(t *testing.T) {
	ob := NewOrderBook("AAPL")

	// Scenario: Buy 100@150.00 rests first, then Sell 50@149.50 crosses.
	ob.AddOrder(newOrder(1, 1, domain.SideBuy, "150.00", 100))
	ob.AddOrder(newOrder(2, 2, domain.SideSell, "149.50", 50))

	trades := ob.MatchAll()

	require.Len(t, trades, 1)
	assert.Equal(t, int64(1), trades[0].BuyOrderID)
	assert.Equal(t, int64(2), trades[0].SellOrderID)
	assert.True(t, trades[0].Price.Equal(decimal.RequireFromString("149.50")))
	assert.Equal(t, int64(50), trades[0].Quantity)

	// Buy retains 50@150.00 with its original id.
	require.Equal(t, 1, ob.BidCount())
	assert.Equal(t, 0, ob.AskCount())
	rest, found := ob.BestBid()
	require.True(t, found)
	assert.Equal(t, int64(1), rest.ID)
	assert.Equal(t, int64(50), rest.RemainingQuantity)
	assert.Equal(t, int64(50), rest.FilledQuantity)
	assert.Equal(t, domain.OrderStatusPartiallyFilled, rest.Status)
}

func TestMatchAll_DealPriceIsAskPrice(t *testing.T) {
	ob := NewOrderBook("AAPL")

	// The ask rests first and the crossing bid pays less than its own limit:
	// the trade still prints at the ask's quoted price.
	ob.AddOrder(newOrder(1, 1, domain.SideSell, "149.50", 100))
	ob.AddOrder(newOrder(2, 2, domain.SideBuy, "151.00", 100))

	trades := ob.MatchAll()

	require.Len(t, trades, 1)
	assert.True(t, trades[0].Price.Equal(decimal.RequireFromString("149.50")))
}

func TestMatchAll_FIFOPriority(t *testing.T) {
	ob := NewOrderBook("AAPL")

	// Two asks at the same price; the earlier sequence trades first.
	ob.AddOrder(newOrder(1, 1, domain.SideSell, "100.10", 100))
	ob.AddOrder(newOrder(2, 2, domain.SideSell, "100.10", 100))
	ob.AddOrder(newOrder(3, 3, domain.SideBuy, "100.10", 100))

	trades := ob.MatchAll()

	require.Len(t, trades, 1)
	assert.Equal(t, int64(1), trades[0].SellOrderID)
}

func TestMatchAll_PartialFillKeepsPriority(t *testing.T) {
	ob := NewOrderBook("AAPL")

	// Ask 1 is partially filled, then a same-price ask arrives. Ask 1 keeps
	// its original arrival sequence and must still trade first.
	ob.AddOrder(newOrder(1, 1, domain.SideSell, "100.10", 300))
	ob.AddOrder(newOrder(2, 2, domain.SideBuy, "100.10", 100))
	trades := ob.MatchAll()
	require.Len(t, trades, 1)

	ob.AddOrder(newOrder(3, 3, domain.SideSell, "100.10", 100))
	ob.AddOrder(newOrder(4, 4, domain.SideBuy, "100.10", 100))
	trades = ob.MatchAll()

	require.Len(t, trades, 1)
	assert.Equal(t, int64(1), trades[0].SellOrderID)

	rest, found := ob.BestAsk()
	require.True(t, found)
	assert.Equal(t, int64(1), rest.ID)
	assert.Equal(t, int64(100), rest.RemainingQuantity)
}

func TestMatchAll_SweepsMultipleLevels(t *testing.T) {
	ob := NewOrderBook("AAPL")

	ob.AddOrder(newOrder(1, 1, domain.SideSell, "100.10", 100))
	ob.AddOrder(newOrder(2, 2, domain.SideSell, "100.20", 200))
	ob.AddOrder(newOrder(3, 3, domain.SideBuy, "100.20", 300))

	trades := ob.MatchAll()

	require.Len(t, trades, 2)
	assert.Equal(t, int64(100), trades[0].Quantity)
	assert.True(t, trades[0].Price.Equal(decimal.RequireFromString("100.10")))
	assert.Equal(t, int64(200), trades[1].Quantity)
	assert.True(t, trades[1].Price.Equal(decimal.RequireFromString("100.20")))

	assert.Equal(t, 0, ob.BidCount())
	assert.Equal(t, 0, ob.AskCount())
}

func TestMatchAll_NoCross(t *testing.T) {
	ob := NewOrderBook("AAPL")

	ob.AddOrder(newOrder(1, 1, domain.SideBuy, "100.00", 100))
	ob.AddOrder(newOrder(2, 2, domain.SideSell, "100.10", 100))

	trades := ob.MatchAll()

	assert.Empty(t, trades)
	assert.Equal(t, 1, ob.BidCount())
	assert.Equal(t, 1, ob.AskCount())
}

func TestMatchAll_QuantityConservation(t *testing.T) {
	ob := NewOrderBook("AAPL")

	ob.AddOrder(newOrder(1, 1, domain.SideBuy, "100.10", 250))
	ob.AddOrder(newOrder(2, 2, domain.SideSell, "100.00", 100))
	ob.AddOrder(newOrder(3, 3, domain.SideSell, "100.10", 100))

	trades := ob.MatchAll()

	var total int64
	for _, tr := range trades {
		assert.Positive(t, tr.Quantity)
		total += tr.Quantity
	}
	assert.Equal(t, int64(200), total)

	rest, found := ob.BestBid()
	require.True(t, found)
	assert.Equal(t, int64(200), rest.FilledQuantity)
	assert.Equal(t, int64(50), rest.RemainingQuantity)
	assert.Equal(t, rest.Quantity, rest.FilledQuantity+rest.RemainingQuantity)
}

func TestMatchAll_NoResidualCross(t *testing.T) {
	ob := NewOrderBook("AAPL")

	ob.AddOrder(newOrder(1, 1, domain.SideBuy, "100.30", 120))
	ob.AddOrder(newOrder(2, 2, domain.SideBuy, "100.20", 80))
	ob.AddOrder(newOrder(3, 3, domain.SideSell, "100.00", 90))
	ob.AddOrder(newOrder(4, 4, domain.SideSell, "100.25", 60))
	ob.AddOrder(newOrder(5, 5, domain.SideSell, "100.40", 50))

	ob.MatchAll()

	bid, hasBid := ob.BestBid()
	ask, hasAsk := ob.BestAsk()
	if hasBid && hasAsk {
		assert.True(t, bid.Price.LessThan(ask.Price))
	}
}

func TestSnapshot_PriorityOrder(t *testing.T) {
	ob := NewOrderBook("AAPL")

	ob.AddOrder(newOrder(1, 1, domain.SideBuy, "99.90", 100))
	ob.AddOrder(newOrder(2, 2, domain.SideBuy, "100.00", 100))
	ob.AddOrder(newOrder(3, 3, domain.SideBuy, "100.00", 100))
	ob.AddOrder(newOrder(4, 4, domain.SideSell, "100.30", 100))
	ob.AddOrder(newOrder(5, 5, domain.SideSell, "100.20", 100))

	snap := ob.Snapshot()

	require.Len(t, snap.Bids, 3)
	assert.Equal(t, int64(2), snap.Bids[0].ID) // best price, earliest seq
	assert.Equal(t, int64(3), snap.Bids[1].ID)
	assert.Equal(t, int64(1), snap.Bids[2].ID)

	require.Len(t, snap.Asks, 2)
	assert.Equal(t, int64(5), snap.Asks[0].ID) // lowest ask first
	assert.Equal(t, int64(4), snap.Asks[1].ID)
}

func TestSnapshot_DoesNotAliasBook(t *testing.T) {
	ob := NewOrderBook("AAPL")

	ob.AddOrder(newOrder(1, 1, domain.SideBuy, "100.00", 100))

	snap := ob.Snapshot()
	snap.Bids[0].RemainingQuantity = 0

	best, found := ob.BestBid()
	require.True(t, found)
	assert.Equal(t, int64(100), best.RemainingQuantity)
}

func TestL2_AggregatesAndLimitsDepth(t *testing.T) {
	ob := NewOrderBook("AAPL")

	ob.AddOrder(newOrder(1, 1, domain.SideSell, "100.10", 500))
	ob.AddOrder(newOrder(2, 2, domain.SideSell, "100.10", 300))
	ob.AddOrder(newOrder(3, 3, domain.SideSell, "100.20", 200))
	ob.AddOrder(newOrder(4, 4, domain.SideSell, "100.30", 100))

	snap := ob.L2(2)

	require.Len(t, snap.Asks, 2)
	assert.True(t, snap.Asks[0].Price.Equal(decimal.RequireFromString("100.10")))
	assert.Equal(t, int64(800), snap.Asks[0].Quantity) // aggregated
	assert.Equal(t, int64(200), snap.Asks[1].Quantity)
	assert.Empty(t, snap.Bids)
}

func TestL2_NonPositiveDepthReturnsAllLevels(t *testing.T) {
	ob := NewOrderBook("AAPL")

	ob.AddOrder(newOrder(1, 1, domain.SideSell, "100.10", 500))
	ob.AddOrder(newOrder(2, 2, domain.SideSell, "100.20", 200))
	ob.AddOrder(newOrder(3, 3, domain.SideBuy, "100.00", 100))

	for _, depth := range []int{0, -1} {
		snap := ob.L2(depth)
		assert.Len(t, snap.Asks, 2)
		assert.Len(t, snap.Bids, 1)
	}
}
