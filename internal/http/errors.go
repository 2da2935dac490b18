package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"steakz/internal/repository"
	"steakz/internal/service"
)

// writeError единая точка перевода ошибок бизнес-логики в HTTP-ответы
func writeError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		// детали хранилища наружу не отдаём
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	var bnf *service.BranchNotFoundError
	if errors.As(err, &bnf) {
		c.JSON(status, gin.H{"error": bnf.Error(), "available_branches": bnf.Available})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func mapErrorToStatus(err error) int {
	var (
		branchNotFound  *service.BranchNotFoundError
		menuNotFound    *service.MenuItemNotFoundError
		menuUnavailable *service.MenuItemUnavailableError
		badTransition   *service.InvalidTransitionError
	)
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrBranchRequired),
		errors.Is(err, service.ErrNoBranchesAvailable),
		errors.Is(err, service.ErrDeleteDelivered):
		return http.StatusBadRequest
	case errors.As(err, &branchNotFound),
		errors.As(err, &menuNotFound),
		errors.As(err, &menuUnavailable),
		errors.As(err, &badTransition):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInsufficientPermissions),
		errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConcurrentModification):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
