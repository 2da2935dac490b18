package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"steakz/internal/domain"
	"steakz/internal/repository"
)

// OrderService реализует жизненный цикл заказа: построение с фиксацией цен,
// смену статуса по графу переходов, удаление и выборку с учётом роли
type OrderService struct {
	branches repository.BranchRepository
	menu     repository.MenuRepository
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	resolver BranchResolver
	tx       repository.TxManager
}

func NewOrderService(
	branches repository.BranchRepository,
	menu repository.MenuRepository,
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	resolver BranchResolver,
	tx repository.TxManager,
) *OrderService {
	return &OrderService{
		branches: branches,
		menu:     menu,
		orders:   orders,
		payments: payments,
		resolver: resolver,
		tx:       tx,
	}
}

// OrderItemInput запрошенная позиция заказа
type OrderItemInput struct {
	MenuItemID int64
	Quantity   int64
}

// CreateOrderInput параметры создания заказа
type CreateOrderInput struct {
	BranchID        *int64
	Items           []OrderItemInput
	DeliveryAddress string
	CustomerID      *int64
}

// CreateOrder проверяет позиции по каталогу меню, фиксирует цены, считает
// итог и атомарно пишет заказ в статусе PENDING
func (s *OrderService) CreateOrder(ctx context.Context, p domain.Principal, in CreateOrderInput) (*domain.Order, error) {
	customerID, err := effectiveCustomerID(p, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, it := range in.Items {
		if it.MenuItemID <= 0 || it.Quantity <= 0 {
			return nil, ErrInvalidInput
		}
	}

	branchID, err := s.pickBranch(ctx, in)
	if err != nil {
		return nil, err
	}
	if _, err := s.branches.GetByID(ctx, branchID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			available, lerr := s.branches.List(ctx)
			if lerr != nil {
				return nil, lerr
			}
			return nil, &BranchNotFoundError{BranchID: branchID, Available: available}
		}
		return nil, err
	}

	var created *domain.Order
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		items := make([]domain.OrderItem, 0, len(in.Items))
		total := decimal.Zero
		for _, it := range in.Items {
			mi, err := s.menu.GetByID(ctx, it.MenuItemID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return &MenuItemNotFoundError{MenuItemID: it.MenuItemID}
				}
				return err
			}
			if !mi.IsAvailable {
				return &MenuItemUnavailableError{Name: mi.Name}
			}
			// снимок цены: после этого момента каталог не перечитывается
			sub := mi.Price.Mul(decimal.NewFromInt(it.Quantity))
			items = append(items, domain.OrderItem{
				MenuItemID: mi.ID,
				Quantity:   it.Quantity,
				UnitPrice:  mi.Price,
				Subtotal:   sub,
			})
			total = total.Add(sub)
		}

		o := domain.Order{
			BranchID:        branchID,
			CustomerID:      customerID,
			Status:          domain.OrderStatusPending,
			TotalAmount:     total,
			DeliveryAddress: in.DeliveryAddress,
			Items:           items,
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			return err
		}
		created = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// pickBranch: явный филиал, иначе подбор по адресу доставки
func (s *OrderService) pickBranch(ctx context.Context, in CreateOrderInput) (int64, error) {
	if in.BranchID != nil && *in.BranchID > 0 {
		return *in.BranchID, nil
	}
	if in.DeliveryAddress == "" {
		return 0, ErrBranchRequired
	}
	branches, err := s.branches.List(ctx)
	if err != nil {
		return 0, err
	}
	return s.resolver.Resolve(in.DeliveryAddress, branches)
}

// GetOrder возвращает заказ, если он виден роли; чужие заказы на чтение не
// раскрываются и выглядят как отсутствующие
func (s *OrderService) GetOrder(ctx context.Context, p domain.Principal, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canReadOrder(p, o) {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

// ListOrders выборка с областью роли поверх фильтров запроса, новые первыми
func (s *OrderService) ListOrders(ctx context.Context, p domain.Principal, f repository.OrderFilter) ([]domain.Order, error) {
	return s.orders.List(ctx, scopedFilter(p, f))
}

// UpdateStatus переводит заказ по графу переходов. Проверка роли идёт раньше
// таблицы переходов, обе должны пройти. При отмене платёж, если он есть,
// возвращается в той же транзакции, что и смена статуса.
func (s *OrderService) UpdateStatus(ctx context.Context, p domain.Principal, id int64, target domain.OrderStatus) (*domain.Order, error) {
	if id <= 0 || !target.Valid() {
		return nil, ErrInvalidInput
	}
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !canMutateOrder(p, o) || !canSetStatus(p.Role, target) {
			return ErrUnauthorized
		}
		if !o.Status.CanTransitionTo(target) {
			return &InvalidTransitionError{From: o.Status, To: target}
		}
		if target == domain.OrderStatusCancelled && o.Payment != nil {
			// компенсация: возврат независимо от прежнего статуса платежа
			if err := s.payments.UpdateStatus(ctx, o.Payment.ID, domain.PaymentStatusRefunded); err != nil {
				return err
			}
			o.Payment.Status = domain.PaymentStatusRefunded
		}
		if err := s.orders.UpdateStatus(ctx, o, target); err != nil {
			if errors.Is(err, repository.ErrStaleOrder) {
				return ErrConcurrentModification
			}
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteOrder доступно ADMIN и BRANCH_MANAGER; менеджер — только в своём
// филиале. Доставленные заказы не удаляются; платёж помечается REFUNDED до
// удаления строки заказа и остаётся как след для сверки.
func (s *OrderService) DeleteOrder(ctx context.Context, p domain.Principal, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	if p.Role != domain.RoleAdmin && p.Role != domain.RoleBranchManager {
		return ErrUnauthorized
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p.Role == domain.RoleBranchManager && (p.BranchID == 0 || o.BranchID != p.BranchID) {
			return ErrUnauthorized
		}
		if o.Status == domain.OrderStatusDelivered {
			return ErrDeleteDelivered
		}
		if o.Payment != nil {
			if err := s.payments.UpdateStatus(ctx, o.Payment.ID, domain.PaymentStatusRefunded); err != nil {
				return err
			}
		}
		return s.orders.Delete(ctx, id)
	})
}
