package orderbook

import (
	"container/heap"
	"time"

	"github.com/google/uuid"

	"github.com/nathanyu/clob/internal/domain"
)

// OrderBook holds the two-sided book for a single symbol and implements the
// batch crossing loop. It is single-writer: callers must serialize access,
// there is no locking here.
type OrderBook struct {
	symbol string
	bids   *sideQueue
	asks   *sideQueue
}

// NewOrderBook creates an empty order book for a symbol.
func NewOrderBook(symbol string) *OrderBook {
	ob := &OrderBook{
		symbol: symbol,
		bids:   &sideQueue{bids: true},
		asks:   &sideQueue{},
	}
	heap.Init(ob.bids)
	heap.Init(ob.asks)
	return ob
}

// Symbol returns the symbol this book trades.
func (ob *OrderBook) Symbol() string {
	return ob.symbol
}

// AddOrder inserts an order into the side given by its Side field.
// No validation is performed; the caller guarantees positive price and
// quantity and a unique id/arrival sequence.
func (ob *OrderBook) AddOrder(order *domain.Order) {
	if order.Side == domain.SideBuy {
		heap.Push(ob.bids, order)
	} else {
		heap.Push(ob.asks, order)
	}
}

// BestBid returns a copy of the highest-priority bid.
func (ob *OrderBook) BestBid() (domain.Order, bool) {
	if top := ob.bids.peek(); top != nil {
		return *top, true
	}
	return domain.Order{}, false
}

// BestAsk returns a copy of the highest-priority ask.
func (ob *OrderBook) BestAsk() (domain.Order, bool) {
	if top := ob.asks.peek(); top != nil {
		return *top, true
	}
	return domain.Order{}, false
}

// BidCount returns the number of resting bids.
func (ob *OrderBook) BidCount() int { return ob.bids.Len() }

// AskCount returns the number of resting asks.
func (ob *OrderBook) AskCount() int { return ob.asks.Len() }

// crossed reports whether the best bid and best ask can trade.
func (ob *OrderBook) crossed() bool {
	bid := ob.bids.peek()
	ask := ob.asks.peek()
	if bid == nil || ask == nil {
		return false
	}
	return bid.Price.GreaterThanOrEqual(ask.Price)
}

// MatchAll repeatedly crosses the best bid against the best ask until no
// cross remains, returning the trades in execution order.
//
// The deal price is always the resting ask's limit price, regardless of which
// side rested first. A partially filled order is reinserted with its original
// id and arrival sequence, so it keeps its time priority.
func (ob *OrderBook) MatchAll() []*domain.Trade {
	var trades []*domain.Trade

	for ob.crossed() {
		bid := heap.Pop(ob.bids).(*domain.Order)
		ask := heap.Pop(ob.asks).(*domain.Order)

		dealQty := min(bid.RemainingQuantity, ask.RemainingQuantity)
		dealPrice := ask.Price

		trades = append(trades, &domain.Trade{
			TradeID:     uuid.New().String(),
			BuyOrderID:  bid.ID,
			SellOrderID: ask.ID,
			Symbol:      ob.symbol,
			Price:       dealPrice,
			Quantity:    dealQty,
			ExecutedAt:  time.Now(),
		})

		bid.FilledQuantity += dealQty
		bid.RemainingQuantity -= dealQty
		ask.FilledQuantity += dealQty
		ask.RemainingQuantity -= dealQty

		if bid.RemainingQuantity > 0 {
			bid.Status = domain.OrderStatusPartiallyFilled
			heap.Push(ob.bids, bid)
		} else {
			bid.Status = domain.OrderStatusFilled
		}
		if ask.RemainingQuantity > 0 {
			ask.Status = domain.OrderStatusPartiallyFilled
			heap.Push(ob.asks, ask)
		} else {
			ask.Status = domain.OrderStatusFilled
		}
	}

	return trades
}

// Snapshot returns both sides in priority order as value copies.
func (ob *OrderBook) Snapshot() domain.BookSnapshot {
	return domain.BookSnapshot{
		Symbol: ob.symbol,
		Bids:   ob.bids.sorted(),
		Asks:   ob.asks.sorted(),
	}
}

// L2 returns an aggregated view of the top price levels on each side.
// A depth of 0 or less returns all levels.
func (ob *OrderBook) L2(depth int) domain.L2Snapshot {
	return domain.L2Snapshot{
		Symbol: ob.symbol,
		Bids:   aggregateLevels(ob.bids.sorted(), depth),
		Asks:   aggregateLevels(ob.asks.sorted(), depth),
	}
}

// aggregateLevels folds priority-ordered orders into per-price levels.
func aggregateLevels(orders []domain.Order, depth int) []domain.PriceLevel {
	if depth < 0 {
		depth = 0
	}
	levels := make([]domain.PriceLevel, 0, depth)
	for _, o := range orders {
		n := len(levels)
		if n > 0 && levels[n-1].Price.Equal(o.Price) {
			levels[n-1].Quantity += o.RemainingQuantity
			continue
		}
		if depth > 0 && n == depth {
			break
		}
		levels = append(levels, domain.PriceLevel{
			Price:    o.Price,
			Quantity: o.RemainingQuantity,
		})
	}
	return levels
}
