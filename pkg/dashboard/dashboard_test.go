package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/storefront/pkg/apiclient"
)

func TestCompute(t *testing.T) {
	products := []apiclient.Product{
		{ID: "1", Price: 10, Category: "shirts"},
		{ID: "2", Price: 5.5, Category: "mugs"},
		{ID: "3", Price: 4.5, Category: "shirts"},
	}
	users := []apiclient.User{{Role: "admin"}, {Role: "customer"}, {Role: "customer"}}

	s := Compute(products, users)
	assert.Equal(t, 3, s.Products)
	assert.Equal(t, 20.0, s.CatalogValue)
	assert.Equal(t, 6.67, s.AveragePrice)
	assert.Equal(t, []string{"shirts", "mugs"}, s.Categories)
	assert.Equal(t, 3, s.Users)
	assert.Equal(t, 1, s.Admins)
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, nil)
	assert.Zero(t, s.Products)
	assert.Zero(t, s.AveragePrice)
	assert.Empty(t, s.Categories)
	assert.Zero(t, s.Admins)
}
