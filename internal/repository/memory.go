package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"steakz/internal/domain"
)

// MemoryStore объединённое in-memory хранилище и простой генератор ID.
// Используется в тестах и в дев-режиме без MySQL.
type MemoryStore struct {
	mu            sync.RWMutex
	nextOrderID   int64
	nextItemID    int64
	nextPaymentID int64
	branchesByID  map[int64]domain.Branch
	menuByID      map[int64]domain.MenuItem
	ordersByID    map[int64]domain.Order
	paymentsByID  map[int64]domain.Payment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextOrderID:   1,
		nextItemID:    1,
		nextPaymentID: 1,
		branchesByID:  make(map[int64]domain.Branch),
		menuByID:      make(map[int64]domain.MenuItem),
		ordersByID:    make(map[int64]domain.Order),
		paymentsByID:  make(map[int64]domain.Payment),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ BranchRepository = (*MemoryStore)(nil)

// PutBranch наполняет каталог филиалов; каталог ведётся внешним модулем,
// поэтому метод не входит в BranchRepository
func (m *MemoryStore) PutBranch(b domain.Branch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.branchesByID[b.ID] = b
}

// PutMenuItem наполняет каталог меню, аналогично PutBranch
func (m *MemoryStore) PutMenuItem(mi domain.MenuItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menuByID[mi.ID] = mi
}

// BranchRepository implementation
func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	b, ok := m.branchesByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := b
	return &cp, nil
}

// List возвращает филиалы в естественном порядке каталога (по id); на этот
// порядок опирается разрешение ничьих в подборе филиала по адресу
func (m *MemoryStore) List(ctx context.Context) ([]domain.Branch, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Branch, 0, len(m.branchesByID))
	for _, b := range m.branchesByID {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MenuRepository implementation on wrapper type
type MemoryMenu struct{ store *MemoryStore }

func NewMemoryMenu(store *MemoryStore) *MemoryMenu { return &MemoryMenu{store: store} }

var _ MenuRepository = (*MemoryMenu)(nil)

func (mm *MemoryMenu) GetByID(ctx context.Context, id int64) (*domain.MenuItem, error) {
	mm.store.rlock(ctx)
	defer mm.store.runlock(ctx)
	mi, ok := mm.store.menuByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := mi
	return &cp, nil
}

func (mm *MemoryMenu) ListAvailable(ctx context.Context) ([]domain.MenuItem, error) {
	mm.store.rlock(ctx)
	defer mm.store.runlock(ctx)
	out := make([]domain.MenuItem, 0, len(mm.store.menuByID))
	for _, mi := range mm.store.menuByID {
		if mi.IsAvailable {
			out = append(out, mi)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// OrderRepository implementation on wrapper type
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.ID = mo.store.nextOrderID
	mo.store.nextOrderID++
	for i := range o.Items {
		o.Items[i].ID = mo.store.nextItemID
		mo.store.nextItemID++
		o.Items[i].OrderID = o.ID
	}
	o.Version = 1
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	mo.store.ordersByID[o.ID] = copyOrder(*o)
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyOrder(o)
	mo.store.attachPayment(&cp)
	return &cp, nil
}

func (mo *MemoryOrders) UpdateStatus(ctx context.Context, o *domain.Order, status domain.OrderStatus) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	stored, ok := mo.store.ordersByID[o.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != o.Version {
		return ErrStaleOrder
	}
	stored.Status = status
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()
	mo.store.ordersByID[o.ID] = stored
	o.Status = status
	o.Version = stored.Version
	o.UpdatedAt = stored.UpdatedAt
	return nil
}

func (mo *MemoryOrders) Delete(ctx context.Context, id int64) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[id]; !ok {
		return ErrNotFound
	}
	delete(mo.store.ordersByID, id)
	return nil
}

func (mo *MemoryOrders) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for _, o := range mo.store.ordersByID {
		if f.BranchID != nil && o.BranchID != *f.BranchID {
			continue
		}
		if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		cp := copyOrder(o)
		mo.store.attachPayment(&cp)
		out = append(out, cp)
	}
	// newest first, id as tiebreak for orders created in the same instant
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// PaymentRepository implementation on wrapper type
type MemoryPayments struct{ store *MemoryStore }

func NewMemoryPayments(store *MemoryStore) *MemoryPayments { return &MemoryPayments{store: store} }

var _ PaymentRepository = (*MemoryPayments)(nil)

func (mp *MemoryPayments) Create(ctx context.Context, p *domain.Payment) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	p.ID = mp.store.nextPaymentID
	mp.store.nextPaymentID++
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	mp.store.paymentsByID[p.ID] = *p
	return nil
}

func (mp *MemoryPayments) GetByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)
	for _, p := range mp.store.paymentsByID {
		if p.OrderID == orderID {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (mp *MemoryPayments) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	p, ok := mp.store.paymentsByID[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	mp.store.paymentsByID[id] = p
	return nil
}

// attachPayment подкладывает платёж в копию заказа; caller держит блокировку
func (m *MemoryStore) attachPayment(o *domain.Order) {
	for _, p := range m.paymentsByID {
		if p.OrderID == o.ID {
			cp := p
			o.Payment = &cp
			return
		}
	}
}

func copyOrder(o domain.Order) domain.Order {
	cp := o
	cp.Items = make([]domain.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	cp.Payment = nil
	return cp
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
