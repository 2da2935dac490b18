package service

import (
	"context"

	"steakz/internal/domain"
	"steakz/internal/repository"
)

// CatalogService читающая обёртка над каталогами филиалов и меню. Ведение
// каталогов принадлежит внешним модулям, ядро заказов их только читает.
type CatalogService struct {
	branches repository.BranchRepository
	menu     repository.MenuRepository
}

func NewCatalogService(branches repository.BranchRepository, menu repository.MenuRepository) *CatalogService {
	return &CatalogService{branches: branches, menu: menu}
}

// ListBranches список филиалов в естественном порядке каталога
func (s *CatalogService) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	return s.branches.List(ctx)
}

// ListMenu доступные позиции меню
func (s *CatalogService) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	return s.menu.ListAvailable(ctx)
}
