package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nathanyu/clob/internal/domain"
	"github.com/nathanyu/clob/internal/marketdata"
	"github.com/nathanyu/clob/internal/matching"
	"github.com/nathanyu/clob/internal/sequencer"
	"github.com/nathanyu/clob/internal/stream"
)

// Handler holds the HTTP handler dependencies.
type Handler struct {
	seq       *sequencer.Sequencer
	publisher *marketdata.Publisher
	streamer  *stream.Server
}

// NewHandler creates a new Handler.
func NewHandler(seq *sequencer.Sequencer, publisher *marketdata.Publisher, streamer *stream.Server) *Handler {
	return &Handler{
		seq:       seq,
		publisher: publisher,
		streamer:  streamer,
	}
}

// RegisterRoutes sets up the Gin routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/v1")
	{
		v1.POST("/order", h.SubmitOrder)
		v1.POST("/match", h.Match)
		v1.GET("/orderbook", h.GetOrderBook)
		v1.GET("/orderbook/L2", h.GetL2OrderBook)
		v1.GET("/trades", h.GetTrades)
		v1.GET("/marketdata/candles", h.GetCandles)
	}

	r.GET("/ws/marketdata", func(c *gin.Context) {
		h.streamer.HandleWS(c.Writer, c.Request)
	})
}

// Health returns a health check response.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "clob",
	})
}

// SubmitOrderRequest is the request body for submitting an order.
type SubmitOrderRequest struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Side     domain.Side     `json:"side" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Quantity int64           `json:"quantity" binding:"required"`
}

// SubmitOrder handles POST /v1/order.
func (h *Handler) SubmitOrder(c *gin.Context) {
	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Side != domain.SideBuy && req.Side != domain.SideSell {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be 'buy' or 'sell'"})
		return
	}

	orderID, err := h.seq.Submit(req.Symbol, req.Side, req.Price, req.Quantity)
	if err != nil {
		if errors.Is(err, matching.ErrInvalidOrder) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": orderID,
		"symbol":   req.Symbol,
		"side":     req.Side,
		"price":    req.Price,
		"quantity": req.Quantity,
	})
}

// MatchRequest is the request body for running a matching pass.
type MatchRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// Match handles POST /v1/match.
func (h *Handler) Match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trades := h.seq.Match(req.Symbol)
	if trades == nil {
		trades = []*domain.Trade{}
	}

	c.JSON(http.StatusOK, trades)
}

// GetOrderBook handles GET /v1/orderbook.
func (h *Handler) GetOrderBook(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	snapshot, found := h.seq.Snapshot(symbol)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no order book for symbol " + symbol})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetL2OrderBook handles GET /v1/orderbook/L2.
func (h *Handler) GetL2OrderBook(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	depthStr := c.DefaultQuery("depth", "10")
	depth, err := strconv.Atoi(depthStr)
	if err != nil || depth <= 0 {
		depth = 10
	}

	snapshot, found := h.seq.L2(symbol, depth)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no order book for symbol " + symbol})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetTrades handles GET /v1/trades.
func (h *Handler) GetTrades(c *gin.Context) {
	symbol := c.Query("symbol")

	var orderID int64
	if idStr := c.Query("order_id"); idStr != "" {
		parsed, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order_id"})
			return
		}
		orderID = parsed
	}

	var since time.Time
	if sinceStr := c.Query("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since format, use RFC3339"})
			return
		}
		since = parsed
	}

	trades := h.publisher.GetTrades(symbol, orderID, since)
	if trades == nil {
		trades = []*domain.Trade{}
	}

	c.JSON(http.StatusOK, trades)
}

// GetCandles handles GET /v1/marketdata/candles.
func (h *Handler) GetCandles(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	countStr := c.DefaultQuery("count", "100")
	count, err := strconv.Atoi(countStr)
	if err != nil || count <= 0 {
		count = 100
	}

	candles := h.publisher.GetCandles(symbol, count)
	if candles == nil {
		candles = []*domain.Candlestick{}
	}

	c.JSON(http.StatusOK, candles)
}
