package usecase

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"shop_backend/internal/feature/cart/domain/entity"
)

// memProducts is an in-memory ProductRepository.
type memProducts struct {
	mu       sync.Mutex
	products map[uint]entity.Product
	findErr  error
}

func newMemProducts(ps ...entity.Product) *memProducts {
	m := &memProducts{products: map[uint]entity.Product{}}
	for _, p := range ps {
		m.products[p.ID] = p
	}
	return m
}

func (m *memProducts) List(_ context.Context, activeOnly bool) ([]entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.Product{}
	for _, p := range m.products {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProducts) FindByID(_ context.Context, id uint) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (m *memProducts) Create(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uint(len(m.products) + 1)
	m.products[p.ID] = *p
	return nil
}

func (m *memProducts) Update(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	m.products[p.ID] = *p
	return nil
}

// memCarts is an in-memory CartRepository that records lock requests.
type memCarts struct {
	mu       sync.Mutex
	carts    map[uint]entity.Cart
	items    map[uint]entity.CartItem
	nextItem uint
	locked   []uint
	touched  int
}

func newMemCarts() *memCarts {
	return &memCarts{carts: map[uint]entity.Cart{}, items: map[uint]entity.CartItem{}}
}

func (m *memCarts) FindActive(_ context.Context, owner entity.Owner, _ bool) (*entity.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findActive(owner)
}

func (m *memCarts) findActive(owner entity.Owner) (*entity.Cart, error) {
	for _, c := range m.carts {
		if c.Status != entity.StatusActive {
			continue
		}
		if owner.UserID != nil && c.UserID != nil && *c.UserID == *owner.UserID {
			return &c, nil
		}
		if owner.UserID == nil && c.UserID == nil && c.SessionKey != nil && *c.SessionKey == owner.SessionKey {
			return &c, nil
		}
	}
	return nil, ErrCartNotFound
}

func (m *memCarts) FindByID(_ context.Context, id uint, forUpdate bool) (*entity.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	if forUpdate {
		m.locked = append(m.locked, id)
	}
	return &c, nil
}

// Create enforces one active cart per owner like the partial unique indexes.
func (m *memCarts) Create(_ context.Context, c *entity.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Status == entity.StatusActive {
		owner := entity.Owner{UserID: c.UserID}
		if c.UserID == nil && c.SessionKey != nil {
			owner.SessionKey = *c.SessionKey
		}
		if _, err := m.findActive(owner); err == nil {
			return ErrActiveCartExists
		}
	}
	c.ID = uint(len(m.carts) + 1)
	m.carts[c.ID] = *c
	return nil
}

func (m *memCarts) Touch(context.Context, uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched++
	return nil
}

func (m *memCarts) ListItems(_ context.Context, cartID uint) ([]entity.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.CartItem{}
	for _, it := range m.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCarts) FindItem(_ context.Context, cartID, productID uint, _ bool) (*entity.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.CartID == cartID && it.ProductID == productID {
			return &it, nil
		}
	}
	return nil, ErrCartItemNotFound
}

func (m *memCarts) SaveItem(_ context.Context, it *entity.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it.ID == 0 {
		m.nextItem++
		it.ID = m.nextItem
	}
	m.items[it.ID] = *it
	return nil
}

func (m *memCarts) DeleteItem(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// racingCarts holds every FindActive call until n callers have read,
// so concurrent get-or-create calls all observe a missing cart.
type racingCarts struct {
	*memCarts
	n       int32
	arrived atomic.Int32
	release chan struct{}
}

func newRacingCarts(n int32) *racingCarts {
	return &racingCarts{memCarts: newMemCarts(), n: n, release: make(chan struct{})}
}

func (r *racingCarts) FindActive(ctx context.Context, owner entity.Owner, forUpdate bool) (*entity.Cart, error) {
	c, err := r.memCarts.FindActive(ctx, owner, forUpdate)
	if r.arrived.Add(1) == r.n {
		close(r.release)
	}
	<-r.release
	return c, err
}

// passthroughTx runs fn directly and counts calls.
type passthroughTx struct{ calls int }

func (p *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}
