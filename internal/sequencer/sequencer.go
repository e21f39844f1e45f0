package sequencer

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/nathanyu/clob/internal/domain"
	"github.com/nathanyu/clob/internal/matching"
	"github.com/nathanyu/clob/internal/middleware"
)

// ErrStopped is returned by Submit when the sequencer has shut down.
var ErrStopped = errors.New("sequencer stopped")

// Sequencer is the single-writer gateway in front of a matching engine.
// One goroutine owns the engine and applies requests in arrival order, so a
// symbol never has more than one matching pass in flight and the engine's
// counters need no locks. Submit/Match/Snapshot/L2 are synchronous wrappers
// over the request channel.
//
// Trades produced by matching are stamped with an outbound sequence and
// published to TradeOut for downstream consumers (market data, streaming).
type Sequencer struct {
	engine      *matching.Engine
	requests    chan request
	outboundSeq atomic.Uint64
	done        chan struct{}

	// TradeOut carries each matching pass's trades, in execution order.
	TradeOut chan []*domain.Trade
}

type requestKind int

const (
	requestSubmit requestKind = iota
	requestMatch
	requestSnapshot
	requestL2
)

type request struct {
	kind     requestKind
	symbol   string
	side     domain.Side
	price    decimal.Decimal
	quantity int64
	depth    int
	reply    chan reply
}

type reply struct {
	orderID  int64
	trades   []*domain.Trade
	snapshot domain.BookSnapshot
	l2       domain.L2Snapshot
	found    bool
	err      error
}

// NewSequencer creates a sequencer wired to the given matching engine.
func NewSequencer(engine *matching.Engine, bufferSize int) *Sequencer {
	return &Sequencer{
		engine:   engine,
		requests: make(chan request, bufferSize),
		TradeOut: make(chan []*domain.Trade, bufferSize),
		done:     make(chan struct{}),
	}
}

// Start begins the application loop in a goroutine.
func (s *Sequencer) Start() {
	go s.run()
}

// Stop signals the sequencer to shut down. Queued requests are not drained;
// calls in flight or made after Stop fail with ErrStopped (or an empty
// result) instead of blocking.
func (s *Sequencer) Stop() {
	close(s.done)
}

// Submit routes an order submission through the application loop.
func (s *Sequencer) Submit(symbol string, side domain.Side, price decimal.Decimal, quantity int64) (int64, error) {
	r := s.do(request{
		kind:     requestSubmit,
		symbol:   symbol,
		side:     side,
		price:    price,
		quantity: quantity,
	})
	return r.orderID, r.err
}

// Match runs a matching pass for the symbol and returns its trades.
func (s *Sequencer) Match(symbol string) []*domain.Trade {
	return s.do(request{kind: requestMatch, symbol: symbol}).trades
}

// Snapshot returns a copy of the symbol's book, or false if it has no book.
func (s *Sequencer) Snapshot(symbol string) (domain.BookSnapshot, bool) {
	r := s.do(request{kind: requestSnapshot, symbol: symbol})
	return r.snapshot, r.found
}

// L2 returns an aggregated view of the symbol's book, or false if it has no book.
func (s *Sequencer) L2(symbol string, depth int) (domain.L2Snapshot, bool) {
	r := s.do(request{kind: requestL2, symbol: symbol, depth: depth})
	return r.l2, r.found
}

// CurrentOutboundSeq returns the sequence of the last stamped trade.
func (s *Sequencer) CurrentOutboundSeq() uint64 {
	return s.outboundSeq.Load()
}

func (s *Sequencer) do(req request) reply {
	req.reply = make(chan reply, 1)
	select {
	case s.requests <- req:
	case <-s.done:
		return reply{err: ErrStopped}
	}
	select {
	case r := <-req.reply:
		return r
	case <-s.done:
		return reply{err: ErrStopped}
	}
}

// run is the main application loop. Single writer over the engine.
func (s *Sequencer) run() {
	slog.Info("sequencer started", "component", "sequencer")
	for {
		select {
		case req := <-s.requests:
			req.reply <- s.apply(req)
		case <-s.done:
			slog.Info("sequencer stopped", "component", "sequencer")
			return
		}
	}
}

func (s *Sequencer) apply(req request) reply {
	switch req.kind {
	case requestSubmit:
		id, err := s.engine.SubmitOrder(req.symbol, req.side, req.price, req.quantity)
		if err == nil {
			middleware.OrdersTotal.WithLabelValues(string(req.side), req.symbol).Inc()
			s.updateDepthGauges(req.symbol)
		}
		return reply{orderID: id, err: err}

	case requestMatch:
		trades := s.engine.RunMatching(req.symbol)
		for _, trade := range trades {
			trade.Seq = s.outboundSeq.Add(1)
		}
		if len(trades) > 0 {
			middleware.TradesTotal.WithLabelValues(req.symbol).Add(float64(len(trades)))
			middleware.SequencerOutboundSeq.Set(float64(s.outboundSeq.Load()))
			s.updateDepthGauges(req.symbol)
			s.publish(trades)
		}
		return reply{trades: trades}

	case requestSnapshot:
		book, found := s.engine.GetOrderBook(req.symbol)
		if !found {
			return reply{}
		}
		return reply{snapshot: book.Snapshot(), found: true}

	case requestL2:
		book, found := s.engine.GetOrderBook(req.symbol)
		if !found {
			return reply{}
		}
		return reply{l2: book.L2(req.depth), found: true}

	default:
		return reply{}
	}
}

// publish sends trades downstream without blocking the application loop.
func (s *Sequencer) publish(trades []*domain.Trade) {
	select {
	case s.TradeOut <- trades:
	default:
		slog.Warn("trade output channel full, dropping batch",
			"component", "sequencer", "trades", len(trades))
	}
}

func (s *Sequencer) updateDepthGauges(symbol string) {
	book, found := s.engine.GetOrderBook(symbol)
	if !found {
		return
	}
	middleware.OrderBookDepth.WithLabelValues(symbol, string(domain.SideBuy)).Set(float64(book.BidCount()))
	middleware.OrderBookDepth.WithLabelValues(symbol, string(domain.SideSell)).Set(float64(book.AskCount()))
}
