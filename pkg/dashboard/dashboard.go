// Package dashboard reduces already-fetched product and user lists into the
// numbers shown on the admin overview.
package dashboard

import (
	"github.com/Skotchmaster/storefront/pkg/apiclient"
	"github.com/Skotchmaster/storefront/pkg/cart"
)

type Stats struct {
	Products     int      `json:"products"`
	CatalogValue float64  `json:"catalogValue"`
	AveragePrice float64  `json:"averagePrice"`
	Categories   []string `json:"categories"`
	Users        int      `json:"users"`
	Admins       int      `json:"admins"`
}

func ProductStats(products []apiclient.Product) (count int, value, average float64) {
	for _, p := range products {
		value += p.Price
	}
	count = len(products)
	if count > 0 {
		average = cart.Round2(value / float64(count))
	}
	return count, cart.Round2(value), average
}

// DistinctCategories keeps first-seen order.
func DistinctCategories(products []apiclient.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok || p.Category == "" {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

func AdminCount(users []apiclient.User) int {
	n := 0
	for _, u := range users {
		if u.IsAdmin() {
			n++
		}
	}
	return n
}

func Compute(products []apiclient.Product, users []apiclient.User) Stats {
	count, value, avg := ProductStats(products)
	return Stats{
		Products:     count,
		CatalogValue: value,
		AveragePrice: avg,
		Categories:   DistinctCategories(products),
		Users:        len(users),
		Admins:       AdminCount(users),
	}
}
