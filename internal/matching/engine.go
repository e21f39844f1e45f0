package matching

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nathanyu/clob/internal/domain"
	"github.com/nathanyu/clob/internal/orderbook"
)

// ErrInvalidOrder is returned by SubmitOrder for non-positive price or quantity.
var ErrInvalidOrder = errors.New("invalid order")

// Engine is the matching engine. It owns the per-symbol order books and the
// two process-wide counters: the next order id and the next arrival sequence.
// Both counters are shared across all symbols, so time-priority comparisons
// stay consistent engine-wide.
//
// The engine is single-threaded; concurrent callers go through the sequencer.
type Engine struct {
	books       map[string]*orderbook.OrderBook // symbol -> order book
	nextOrderID int64
	nextArrival uint64
}

// NewEngine creates a new matching engine.
func NewEngine() *Engine {
	return &Engine{
		books:       make(map[string]*orderbook.OrderBook),
		nextOrderID: 1,
	}
}

// getOrCreateBook returns the order book for a symbol, creating it if needed.
// Books are never deleted.
func (e *Engine) getOrCreateBook(symbol string) *orderbook.OrderBook {
	book, exists := e.books[symbol]
	if !exists {
		book = orderbook.NewOrderBook(symbol)
		e.books[symbol] = book
	}
	return book
}

// SubmitOrder validates the order, assigns the next order id and arrival
// sequence, and rests it in the symbol's book. Matching does not happen here;
// call RunMatching to cross the book.
func (e *Engine) SubmitOrder(symbol string, side domain.Side, price decimal.Decimal, quantity int64) (int64, error) {
	if price.Sign() <= 0 {
		return 0, fmt.Errorf("%w: price must be positive, got %s", ErrInvalidOrder, price)
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidOrder, quantity)
	}

	id := e.nextOrderID
	e.nextOrderID++
	seq := e.nextArrival
	e.nextArrival++

	order := &domain.Order{
		ID:                id,
		Symbol:            symbol,
		Side:              side,
		Price:             price,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		Status:            domain.OrderStatusNew,
		ArrivalSeq:        seq,
		CreatedAt:         time.Now(),
	}

	e.getOrCreateBook(symbol).AddOrder(order)
	return id, nil
}

// RunMatching crosses the given symbol's book until no cross remains.
// An unknown symbol has no resting liquidity, so it yields no trades.
func (e *Engine) RunMatching(symbol string) []*domain.Trade {
	book, exists := e.books[symbol]
	if !exists {
		return nil
	}
	return book.MatchAll()
}

// GetOrderBook returns the book for a symbol, or false if no order has ever
// referenced it.
func (e *Engine) GetOrderBook(symbol string) (*orderbook.OrderBook, bool) {
	book, exists := e.books[symbol]
	return book, exists
}
