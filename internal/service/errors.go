package service

import (
	"errors"
	"fmt"

	"steakz/internal/domain"
)

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrInsufficientPermissions = errors.New("insufficient permissions to create orders")
	ErrEmptyOrder              = errors.New("order must contain at least one item")
	ErrBranchRequired          = errors.New("no branch id or delivery address provided")
	ErrNoBranchesAvailable     = errors.New("no branches available")
	ErrUnauthorized            = errors.New("order belongs to another branch or role lacks access")
	ErrDeleteDelivered         = errors.New("cannot delete delivered orders")
	// ErrConcurrentModification сигнализирует о гонке статусов; запрос можно повторить
	ErrConcurrentModification = errors.New("order was modified concurrently, retry the request")
)

// BranchNotFoundError несёт список доступных филиалов, чтобы клиент мог
// повторить запрос с корректным id
type BranchNotFoundError struct {
	BranchID  int64
	Available []domain.Branch
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %d not found", e.BranchID)
}

type MenuItemNotFoundError struct{ MenuItemID int64 }

func (e *MenuItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item %d not found", e.MenuItemID)
}

type MenuItemUnavailableError struct{ Name string }

func (e *MenuItemUnavailableError) Error() string {
	return fmt.Sprintf("menu item %s is not available", e.Name)
}

// InvalidTransitionError называет исходный и целевой статусы
type InvalidTransitionError struct{ From, To domain.OrderStatus }

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}
