package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"steakz/internal/domain"
	"steakz/internal/repository"
	"steakz/internal/service"
)

type Server struct {
	engine  *gin.Engine
	orders  *service.OrderService
	catalog *service.CatalogService
}

func NewServer(orders *service.OrderService, catalog *service.CatalogService) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{engine: r, orders: orders, catalog: catalog}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	v1.Use(PrincipalFromHeaders())
	{
		v1.GET("/branches", s.listBranches)
		v1.GET("/menu", s.listMenu)

		orders := v1.Group("/orders")
		orders.GET("", s.listOrders)
		orders.POST("", s.createOrder)
		orders.GET(":id", s.getOrder)
		orders.PUT(":id/status", s.updateOrderStatus)
		orders.DELETE(":id", s.deleteOrder)
	}
}

// Catalog handlers

// @Summary List branches
// @Tags catalog
// @Produce json
// @Success 200 {array} domain.Branch
// @Router /branches [get]
func (s *Server) listBranches(c *gin.Context) {
	list, err := s.catalog.ListBranches(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary List available menu items
// @Tags catalog
// @Produce json
// @Success 200 {array} domain.MenuItem
// @Router /menu [get]
func (s *Server) listMenu(c *gin.Context) {
	list, err := s.catalog.ListMenu(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Order handlers
type orderItemReq struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int64 `json:"quantity"`
}

type createOrderReq struct {
	BranchID        *int64         `json:"branch_id"`
	Items           []orderItemReq `json:"items"`
	DeliveryAddress string         `json:"delivery_address"`
	CustomerID      *int64         `json:"customer_id"`
}

// @Summary Create order
// @Tags orders
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Order"
// @Success 201 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	in := service.CreateOrderInput{
		BranchID:        req.BranchID,
		DeliveryAddress: req.DeliveryAddress,
		CustomerID:      req.CustomerID,
		Items:           make([]service.OrderItemInput, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.OrderItemInput{MenuItemID: it.MenuItemID, Quantity: it.Quantity})
	}
	o, err := s.orders.CreateOrder(c, principal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// @Summary List orders
// @Tags orders
// @Produce json
// @Param branch_id query int false "Branch filter (ADMIN, GENERAL_MANAGER)"
// @Param customer_id query int false "Customer filter (managerial roles)"
// @Param status query string false "Status filter"
// @Success 200 {array} domain.Order
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	var f repository.OrderFilter
	if v := c.Query("branch_id"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.BranchID = &x
		}
	}
	if v := c.Query("customer_id"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.CustomerID = &x
		}
	}
	if v := c.Query("status"); v != "" {
		st := domain.OrderStatus(v)
		if !st.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		f.Status = &st
	}
	list, err := s.orders.ListOrders(c, principal(c), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.orders.GetOrder(c, principal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type updateStatusReq struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

// @Summary Update order status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param input body updateStatusReq true "Target status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/status [put]
func (s *Server) updateOrderStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o, err := s.orders.UpdateStatus(c, principal(c), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Delete order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [delete]
func (s *Server) deleteOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.orders.DeleteOrder(c, principal(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
