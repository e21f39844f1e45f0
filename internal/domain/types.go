package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side represents the order side (buy or sell).
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
)

// Order represents a limit order resting in (or entering) a book.
// IDs and arrival sequences are assigned by the matching engine from
// process-wide counters; the arrival sequence is never reassigned, so a
// partially filled order keeps its original time priority.
type Order struct {
	ID                int64           `json:"id"`
	Symbol            string          `json:"symbol"`
	Side              Side            `json:"side"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int64           `json:"quantity"`
	FilledQuantity    int64           `json:"filled_quantity"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	Status            OrderStatus     `json:"status"`
	ArrivalSeq        uint64          `json:"arrival_seq"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Trade is the immutable record of one execution between a bid and an ask.
// Price is always the resting ask's limit price at the moment of the cross.
type Trade struct {
	TradeID     string          `json:"trade_id"`
	BuyOrderID  int64           `json:"buy_order_id"`
	SellOrderID int64           `json:"sell_order_id"`
	Symbol      string          `json:"symbol"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Seq         uint64          `json:"seq"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

// BookSnapshot is a read-only copy of one symbol's resting orders,
// both sides in priority order. Mutating it does not touch the live book.
type BookSnapshot struct {
	Symbol string  `json:"symbol"`
	Bids   []Order `json:"bids"`
	Asks   []Order `json:"asks"`
}

// PriceLevel represents an aggregated price level in the L2 view.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// L2Snapshot represents an aggregated L2 order book snapshot.
type L2Snapshot struct {
	Symbol string       `json:"symbol"`
	Bids   []PriceLevel `json:"bids"`
	Asks   []PriceLevel `json:"asks"`
}

// Candlestick represents OHLCV data for a time interval.
type Candlestick struct {
	Symbol    string          `json:"symbol"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
	Interval  string          `json:"interval"` // e.g. "1m"
}
