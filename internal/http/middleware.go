package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"steakz/internal/domain"
)

const principalKey = "principal"

// PrincipalFromHeaders извлекает субъект запроса из доверенных заголовков,
// которые проставляет внешний шлюз аутентификации. Сама аутентификация вне
// ядра заказов.
func PrincipalFromHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader("X-User-Id"), 10, 64)
		role := domain.Role(c.GetHeader("X-User-Role"))
		if err != nil || id <= 0 || !role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		p := domain.Principal{ID: id, Role: role}
		if v := c.GetHeader("X-Branch-Id"); v != "" {
			if b, err := strconv.ParseInt(v, 10, 64); err == nil && b > 0 {
				p.BranchID = b
			}
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func principal(c *gin.Context) domain.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(domain.Principal)
	return p
}
