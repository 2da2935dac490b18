package repository

import (
	"context"
	"errors"

	"steakz/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// ErrStaleOrder возвращается, когда версия заказа изменилась между чтением и
// записью; вызывающий может перечитать и повторить
var ErrStaleOrder = errors.New("stale order version")

// OrderFilter параметры выборки заказов; nil-поля выборку не ограничивают
type OrderFilter struct {
	BranchID   *int64
	CustomerID *int64
	Status     *domain.OrderStatus
}

// BranchRepository каталог филиалов, только чтение
type BranchRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Branch, error)
	List(ctx context.Context) ([]domain.Branch, error)
}

// MenuRepository каталог меню, только чтение
type MenuRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.MenuItem, error)
	ListAvailable(ctx context.Context) ([]domain.MenuItem, error)
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	// Create пишет заказ вместе с позициями атомарно
	Create(ctx context.Context, o *domain.Order) error
	// GetByID возвращает заказ с позициями и платежом
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// UpdateStatus меняет статус, только если версия в базе равна o.Version;
	// иначе ErrStaleOrder
	UpdateStatus(ctx context.Context, o *domain.Order, status domain.OrderStatus) error
	Delete(ctx context.Context, id int64) error
	// List возвращает заказы, самые новые первыми
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
}

// TxManager абстракция транзакции. Для in-memory — глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
