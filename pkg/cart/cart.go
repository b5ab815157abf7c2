// Package cart is the client-side shopping cart: a pure reducer over line
// items plus a Store that mirrors the item list into local storage.
package cart

import (
	"math"
	"slices"
	"time"
)

// StorageKey is the local storage key holding the serialized item list.
const StorageKey = "cartItems"

// Product is the snapshot of a catalog product taken when it is added.
type Product struct {
	ID          string  `json:"_id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

type LineItem struct {
	Product
	CartQuantity int `json:"cartQuantity"`
}

type State struct {
	CartItems         []LineItem `json:"cartItems"`
	CartTotalQuantity int        `json:"cartTotalQuantity"`
	CartTotalAmount   float64    `json:"cartTotalAmount"`
}

type Action interface {
	apply(State) State
}

type Add struct{ Product Product }
type Remove struct{ ID string }
type Decrease struct{ ID string }
type Clear struct{}
type GetTotals struct{}

// Reduce returns the state after a. s is never modified.
func Reduce(s State, a Action) State {
	next := State{
		CartItems:         slices.Clone(s.CartItems),
		CartTotalQuantity: s.CartTotalQuantity,
		CartTotalAmount:   s.CartTotalAmount,
	}
	return a.apply(next)
}

func (a Add) apply(s State) State {
	if i := indexOf(s.CartItems, a.Product.ID); i >= 0 {
		s.CartItems[i].CartQuantity++
		return s
	}
	s.CartItems = append(s.CartItems, LineItem{Product: a.Product, CartQuantity: 1})
	return s
}

func (a Remove) apply(s State) State {
	if i := indexOf(s.CartItems, a.ID); i >= 0 {
		s.CartItems = slices.Delete(s.CartItems, i, i+1)
	}
	return s
}

func (a Decrease) apply(s State) State {
	i := indexOf(s.CartItems, a.ID)
	switch {
	case i < 0:
	case s.CartItems[i].CartQuantity > 1:
		s.CartItems[i].CartQuantity--
	default:
		s.CartItems = slices.Delete(s.CartItems, i, i+1)
	}
	return s
}

func (Clear) apply(s State) State {
	s.CartItems = []LineItem{}
	return s
}

func (GetTotals) apply(s State) State {
	var (
		qty    int
		amount float64
	)
	for _, it := range s.CartItems {
		qty += it.CartQuantity
		amount += it.Price * float64(it.CartQuantity)
	}
	s.CartTotalQuantity = qty
	s.CartTotalAmount = Round2(amount)
	return s
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func indexOf(items []LineItem, id string) int {
	return slices.IndexFunc(items, func(it LineItem) bool { return it.ID == id })
}
