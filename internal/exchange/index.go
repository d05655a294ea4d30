// Package exchange holds the exchange-side collaborators of the matching
// loop: the live order registry, fee strategies and the per-bar order
// processor.
package exchange

import (
	"github.com/google/btree"
	"github.com/google/uuid"

	"backtest_go/internal/domain"
	"backtest_go/internal/order"
)

// compactEvery bounds how stale the open-order cache may get before closed
// orders are swept out of it. Reads are always exact; the sweep only keeps
// the cache from growing with long-dead orders.
const compactEvery = 50

type indexEntry struct {
	seq uint64
	ord order.Order
}

// OrderIndex is the exchange's registry of orders: id lookup over every
// order ever added, plus a cache of currently open orders kept in
// submission order so that per-bar candidate scans are deterministic.
type OrderIndex struct {
	orders  map[string]order.Order
	open    *btree.BTreeG[indexEntry]
	nextSeq uint64
	reads   int
}

func NewOrderIndex() *OrderIndex {
	return &OrderIndex{
		orders: map[string]order.Order{},
		open: btree.NewG(16, func(a, b indexEntry) bool {
			return a.seq < b.seq
		}),
	}
}

// NewOrderID returns a fresh exchange-generated order id.
func NewOrderID() string {
	return uuid.NewString()
}

// AddOrder registers an order. Ids must be unique.
func (idx *OrderIndex) AddOrder(o order.Order) {
	_, exists := idx.orders[o.ID()]
	domain.Require(!exists, "exchange.AddOrder", "duplicate order id %s", o.ID())
	idx.orders[o.ID()] = o
	if o.IsOpen() {
		idx.nextSeq++
		idx.open.ReplaceOrInsert(indexEntry{seq: idx.nextSeq, ord: o})
	}
}

// GetOrder returns the order for an id.
func (idx *OrderIndex) GetOrder(id string) (order.Order, bool) {
	o, ok := idx.orders[id]
	return o, ok
}

// GetOpenOrders returns the currently open orders in submission order,
// optionally restricted to a set of pairs. Orders that turned terminal
// since the last call are filtered on every read and periodically swept
// from the cache.
func (idx *OrderIndex) GetOpenOrders(pairs ...domain.Pair) []order.Order {
	idx.reads++
	if idx.reads%compactEvery == 0 {
		idx.compact()
	}

	var ret []order.Order
	idx.open.Ascend(func(entry indexEntry) bool {
		if entry.ord.IsOpen() && matchesPairs(entry.ord.Pair(), pairs) {
			ret = append(ret, entry.ord)
		}
		return true
	})
	return ret
}

// OpenOrderCount reports the size of the open-order cache, including
// not-yet-swept terminal orders.
func (idx *OrderIndex) OpenOrderCount() int {
	return idx.open.Len()
}

func (idx *OrderIndex) compact() {
	var stale []indexEntry
	idx.open.Ascend(func(entry indexEntry) bool {
		if !entry.ord.IsOpen() {
			stale = append(stale, entry)
		}
		return true
	})
	for _, entry := range stale {
		idx.open.Delete(entry)
	}
}

func matchesPairs(p domain.Pair, pairs []domain.Pair) bool {
	if len(pairs) == 0 {
		return true
	}
	for _, candidate := range pairs {
		if p == candidate {
			return true
		}
	}
	return false
}
