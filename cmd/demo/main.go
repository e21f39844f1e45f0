// Terminal demo: random order flow against a single symbol, one matching
// pass per submission, book rendered after every step.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nathanyu/clob/internal/config"
	"github.com/nathanyu/clob/internal/domain"
	"github.com/nathanyu/clob/internal/matching"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}
	demo := cfg.Demo

	symbol := flag.String("symbol", demo.Symbol, "symbol to trade")
	steps := flag.Int("steps", demo.Steps, "number of orders to generate")
	interval := flag.Duration("interval", time.Duration(demo.IntervalMS)*time.Millisecond, "pause between steps")
	seed := flag.Int64("seed", demo.Seed, "rng seed (0 seeds from the clock)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	engine := matching.NewEngine()

	for i := 0; i < *steps; i++ {
		side := domain.SideSell
		if rng.Intn(2) == 1 {
			side = domain.SideBuy
		}
		qty := demo.MinQty + rng.Int63n(demo.MaxQty-demo.MinQty+1)
		price := decimal.NewFromFloat(demo.MinPrice + rng.Float64()*(demo.MaxPrice-demo.MinPrice)).Round(2)

		id, err := engine.SubmitOrder(*symbol, side, price, qty)
		if err != nil {
			fmt.Fprintf(os.Stderr, "submit failed: %v\n", err)
			os.Exit(1)
		}
		trades := engine.RunMatching(*symbol)

		clearScreen()

		fmt.Println("Continuous Limit Order Book demo")
		fmt.Printf("New order id=%d side=%s qty=%d price=%s\n\n",
			id, side, qty, price.StringFixed(2))

		if len(trades) > 0 {
			fmt.Println("Executed trades:")
			for _, t := range trades {
				fmt.Printf("BUY %d vs SELL %d | %s | qty=%d @ %s\n",
					t.BuyOrderID, t.SellOrderID, t.Symbol, t.Quantity, t.Price.StringFixed(2))
			}
			fmt.Println()
		} else {
			fmt.Print("No trades executed in this step\n\n")
		}

		printBook(engine, *symbol)

		time.Sleep(*interval)
	}

	fmt.Println("\nEnd of demo")
}

// printBook renders both sides of the book in priority order.
func printBook(engine *matching.Engine, symbol string) {
	book, found := engine.GetOrderBook(symbol)
	if !found {
		fmt.Println("No order book for this symbol")
		return
	}
	snap := book.Snapshot()

	fmt.Printf("ORDER BOOK: %s\n", snap.Symbol)
	fmt.Println("----------------------------------------")

	fmt.Println("BIDS (buy)")
	fmt.Println("qty\tprice")
	for _, o := range snap.Bids {
		fmt.Printf("%d\t%s\n", o.RemainingQuantity, o.Price.StringFixed(2))
	}

	fmt.Println("\nASKS (sell)")
	fmt.Println("qty\tprice")
	for _, o := range snap.Asks {
		fmt.Printf("%d\t%s\n", o.RemainingQuantity, o.Price.StringFixed(2))
	}

	fmt.Println("----------------------------------------")
}

func clearScreen() {
	fmt.Print("\x1b[2J\x1b[H")
}
