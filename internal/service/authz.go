package service

import (
	"steakz/internal/domain"
	"steakz/internal/repository"
)

// Таблицы доступа по ролям. Единственное место, где роли сопоставляются с
// областью видимости и допустимыми операциями; сервисы сверяются только здесь.

// readScope вид области видимости заказов для роли
type readScope int

const (
	scopeAll       readScope = iota // все заказы, опционально фильтр по филиалу
	scopeBranch                     // только свой филиал
	scopeOwnOrders                  // только собственные заказы
)

var readScopes = map[domain.Role]readScope{
	domain.RoleAdmin:          scopeAll,
	domain.RoleGeneralManager: scopeAll,
	domain.RoleBranchManager:  scopeBranch,
	domain.RoleChef:           scopeBranch,
	domain.RoleCashier:        scopeBranch,
	domain.RoleCustomer:       scopeOwnOrders,
}

// settableStatuses целевые статусы, которые роль может выставлять;
// nil — любой допустимый переход, пустой срез — запрет записи
var settableStatuses = map[domain.Role][]domain.OrderStatus{
	domain.RoleAdmin:          nil,
	domain.RoleGeneralManager: nil,
	domain.RoleBranchManager:  nil,
	domain.RoleChef:           {domain.OrderStatusPreparing, domain.OrderStatusReady, domain.OrderStatusCancelled},
	domain.RoleCashier:        {domain.OrderStatusDelivered, domain.OrderStatusCancelled},
	domain.RoleCustomer:       {},
}

// роли, которым разрешены явные фильтры списка
var (
	branchFilterRoles = map[domain.Role]bool{
		domain.RoleAdmin:          true,
		domain.RoleGeneralManager: true,
	}
	customerFilterRoles = map[domain.Role]bool{
		domain.RoleAdmin:          true,
		domain.RoleGeneralManager: true,
		domain.RoleBranchManager:  true,
	}
	createOrderRoles = map[domain.Role]bool{
		domain.RoleCustomer:       true,
		domain.RoleCashier:        true,
		domain.RoleBranchManager:  true,
		domain.RoleAdmin:          true,
		domain.RoleGeneralManager: true,
	}
)

// canReadOrder проверка видимости одного заказа
func canReadOrder(p domain.Principal, o *domain.Order) bool {
	switch readScopes[p.Role] {
	case scopeAll:
		return true
	case scopeBranch:
		return p.BranchID != 0 && o.BranchID == p.BranchID
	case scopeOwnOrders:
		return o.CustomerID == p.ID
	default:
		return false
	}
}

// canMutateOrder изоляция по филиалу для мутаций; ADMIN и GENERAL_MANAGER без
// ограничений
func canMutateOrder(p domain.Principal, o *domain.Order) bool {
	if readScopes[p.Role] == scopeAll {
		return true
	}
	return p.BranchID != 0 && o.BranchID == p.BranchID
}

// canSetStatus проверяется до таблицы переходов
func canSetStatus(role domain.Role, target domain.OrderStatus) bool {
	allowed, ok := settableStatuses[role]
	if !ok {
		return false
	}
	if allowed == nil {
		return true
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// effectiveCustomerID определяет, на кого записывается заказ. CUSTOMER только
// на себя; персонал может указать клиента, иначе заказ walk-in записывается на
// самого сотрудника.
func effectiveCustomerID(p domain.Principal, requested *int64) (int64, error) {
	if !createOrderRoles[p.Role] {
		return 0, ErrInsufficientPermissions
	}
	if p.Role == domain.RoleCustomer {
		return p.ID, nil
	}
	if requested != nil && *requested > 0 {
		return *requested, nil
	}
	return p.ID, nil
}

// scopedFilter применяет область роли раньше фильтров запроса; фильтры,
// недоступные роли, молча игнорируются, а не отклоняются
func scopedFilter(p domain.Principal, f repository.OrderFilter) repository.OrderFilter {
	out := repository.OrderFilter{Status: f.Status}
	switch readScopes[p.Role] {
	case scopeAll:
		if branchFilterRoles[p.Role] {
			out.BranchID = f.BranchID
		}
		if customerFilterRoles[p.Role] {
			out.CustomerID = f.CustomerID
		}
	case scopeBranch:
		// привязка к филиалу сотрудника; сотрудник без филиала не видит ничего
		b := p.BranchID
		out.BranchID = &b
		if customerFilterRoles[p.Role] {
			out.CustomerID = f.CustomerID
		}
	case scopeOwnOrders:
		id := p.ID
		out.CustomerID = &id
	}
	return out
}
