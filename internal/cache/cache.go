package cache

import (
	"context"

	"github.com/uspizza/loyalty-cli/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

//go:generate mockgen -source internal/cache/cache.go -destination=internal/cache/cache_mock_test.go -package=cache

type lister interface {
	Orders(ctx context.Context) ([]domain.Order, error)
}

// Cache keeps recently seen orders so repeat lookups (order detail after
// a list, receipt after a detail) skip the network.
type Cache struct {
	size int
	lru  *lru.Cache[string, domain.Order]
}

func New(size int) (*Cache, error) {
	if size <= 0 {
		size = 1
	}
	c, err := lru.New[string, domain.Order](size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		size: size,
		lru:  c,
	}, nil
}

// Warm fills the cache from an order listing; listing errors are ignored,
// a cold cache is not a failure.
func (c *Cache) Warm(ctx context.Context, l lister) {
	orders, err := l.Orders(ctx)
	if err != nil {
		return
	}
	for i := range orders {
		c.Set(&orders[i])
	}
}

func (c *Cache) Get(id string) (*domain.Order, bool) {
	order, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	return &order, true
}

func (c *Cache) Set(order *domain.Order) {
	c.lru.Add(order.ID, *order)
}
