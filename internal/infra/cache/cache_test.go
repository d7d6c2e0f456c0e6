package cache_test

import (
	"testing"
	"time"

	"github.com/holzmann/marketpay-go/internal/domain"
	"github.com/holzmann/marketpay-go/internal/infra/cache"
)

func TestCache_SetGet(t *testing.T) {
	c := cache.New[string](time.Minute)

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("expected hit with 'v', got %q (hit=%v)", got, ok)
	}
}

func TestCache_MissingKey(t *testing.T) {
	c := cache.New[string](time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := cache.New[int](10 * time.Millisecond)

	c.Set("k", 42)
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after TTL")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](time.Minute)

	c.Set("k", "v")
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestCache_CatalogListings(t *testing.T) {
	c := cache.New[[]domain.ProductWithPrice](time.Minute)

	listing := []domain.ProductWithPrice{
		{Product: domain.Product{ID: "prod_1", Name: "Lawn care"}},
	}
	c.Set("catalog:acct_1", listing)

	got, ok := c.Get("catalog:acct_1")
	if !ok || len(got) != 1 || got[0].Product.ID != "prod_1" {
		t.Errorf("unexpected cached listing %+v (hit=%v)", got, ok)
	}
}
