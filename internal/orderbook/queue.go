package orderbook

import (
	"sort"

	"github.com/nathanyu/clob/internal/domain"
)

// sideQueue implements a price-time priority queue over one side of the book.
// Bids rank higher prices first, asks rank lower prices first; ties go to the
// earlier arrival sequence. The relation is total: no two distinct orders
// compare equal because arrival sequences are unique.
type sideQueue struct {
	orders []*domain.Order
	bids   bool
}

func (q *sideQueue) Len() int { return len(q.orders) }

func (q *sideQueue) Less(i, j int) bool {
	return q.higherPriority(q.orders[i], q.orders[j])
}

func (q *sideQueue) higherPriority(a, b *domain.Order) bool {
	if !a.Price.Equal(b.Price) {
		if q.bids {
			return a.Price.GreaterThan(b.Price)
		}
		return a.Price.LessThan(b.Price)
	}
	return a.ArrivalSeq < b.ArrivalSeq
}

func (q *sideQueue) Swap(i, j int) {
	q.orders[i], q.orders[j] = q.orders[j], q.orders[i]
}

func (q *sideQueue) Push(x any) {
	q.orders = append(q.orders, x.(*domain.Order))
}

func (q *sideQueue) Pop() any {
	old := q.orders
	n := len(old)
	order := old[n-1]
	old[n-1] = nil
	q.orders = old[:n-1]
	return order
}

// peek returns the highest-priority order without removing it.
func (q *sideQueue) peek() *domain.Order {
	if len(q.orders) == 0 {
		return nil
	}
	return q.orders[0]
}

// sorted returns value copies of all orders in priority order. The heap's
// internal slice holds pointers into the live book, so callers get copies.
func (q *sideQueue) sorted() []domain.Order {
	result := make([]domain.Order, len(q.orders))
	for i, o := range q.orders {
		result[i] = *o
	}
	sort.Slice(result, func(i, j int) bool {
		return q.higherPriority(&result[i], &result[j])
	})
	return result
}
