package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

func TestSearchProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "running shoes", r.URL.Query().Get("q"))
		assert.Equal(t, "Acme", r.URL.Query().Get("brand"))
		assert.Equal(t, "red", r.URL.Query().Get("color"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[
			{"product_id":"B01ABC1234","name":"Acme Running Shoes","price":49.99,"currency":"USD"},
			{"product_id":"B09XYZ9876","name":"Acme Trail Shoes","price":59.99,"currency":"USD"}
		]}`))
	}))
	defer server.Close()

	adapter := NewAdapter(domain.PlatformAmazon, server.URL)

	products, err := adapter.SearchProducts(context.Background(), "running shoes", "Acme", "", map[string]string{"color": "red"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, domain.PlatformAmazon, products[0].Platform)
	assert.Equal(t, "B01ABC1234", products[0].ProductID)
	assert.Equal(t, "Acme Running Shoes", products[0].Name)
}

func TestGetProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/12345", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Gadget","price":19.99,"currency":"USD","brand":"Acme"}`))
	}))
	defer server.Close()

	adapter := NewAdapter(domain.PlatformEbay, server.URL)

	product, err := adapter.GetProduct(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformEbay, product.Platform)
	// Id backfilled when the payload omits it.
	assert.Equal(t, "12345", product.ProductID)
	assert.Equal(t, "Gadget", product.Name)
}

func TestGetProductPriceNotListed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := NewAdapter(domain.PlatformWalmart, server.URL)

	price, err := adapter.GetProductPrice(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestGetProductPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price":15.00,"currency":"USD","availability":"in_stock"}`))
	}))
	defer server.Close()

	adapter := NewAdapter(domain.PlatformTarget, server.URL)

	price, err := adapter.GetProductPrice(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, price)
	require.NotNil(t, price.Price)
	assert.Equal(t, 15.00, *price.Price)
	assert.Equal(t, "in_stock", price.Availability)
}

func TestSearchRetriesOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"products":[]}`))
	}))
	defer server.Close()

	adapter := NewAdapter(domain.PlatformBestBuy, server.URL)

	products, err := adapter.SearchProducts(context.Background(), "tv", "", "", nil)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 3, attempts)
}

func TestSearchExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := NewAdapter(domain.PlatformNewegg, server.URL)

	_, err := adapter.SearchProducts(context.Background(), "gpu", "", "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAdapterFailure))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(map[string]string{
		"amazon":  "http://amazon.local",
		"walmart": "http://walmart.local",
		"myshop":  "http://unsupported.local",
	})

	_, ok := reg.Lookup(domain.PlatformAmazon)
	assert.True(t, ok)
	_, ok = reg.Lookup(domain.PlatformEbay)
	assert.False(t, ok)
	_, ok = reg.Lookup(domain.Platform("myshop"))
	assert.False(t, ok)

	assert.Equal(t, []domain.Platform{domain.PlatformAmazon, domain.PlatformWalmart}, reg.Platforms())
}
