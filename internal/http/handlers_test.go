package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"steakz/internal/domain"
	"steakz/internal/repository"
	"steakz/internal/service"
)

func setupServer(t *testing.T) (*Server, *repository.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	store.PutBranch(domain.Branch{ID: 1, Name: "London", Address: "123 Main St, London"})
	store.PutBranch(domain.Branch{ID: 2, Name: "Manchester", Address: "456 King St, Manchester"})
	store.PutMenuItem(domain.MenuItem{ID: 5, Name: "Ribeye", Price: decimal.NewFromInt(10), IsAvailable: true})
	store.PutMenuItem(domain.MenuItem{ID: 6, Name: "Soup", Price: decimal.NewFromInt(4), IsAvailable: false})

	menu := repository.NewMemoryMenu(store)
	orders := service.NewOrderService(
		store,
		menu,
		repository.NewMemoryOrders(store),
		repository.NewMemoryPayments(store),
		service.NewAddressMatcher(),
		repository.NewMemoryTx(store),
	)
	catalog := service.NewCatalogService(store, menu)
	return NewServer(orders, catalog), store
}

type auth struct {
	userID   int64
	role     domain.Role
	branchID int64
}

func doJSON(t *testing.T, s *Server, method, path string, a *auth, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a != nil {
		req.Header.Set("X-User-Id", fmt.Sprintf("%d", a.userID))
		req.Header.Set("X-User-Role", string(a.role))
		if a.branchID != 0 {
			req.Header.Set("X-Branch-Id", fmt.Sprintf("%d", a.branchID))
		}
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) domain.Order {
	t.Helper()
	var o domain.Order
	if err := json.Unmarshal(w.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode order: %v body=%s", err, w.Body.String())
	}
	return o
}

func createOrderAs(t *testing.T, s *Server, a *auth, branchID int64) domain.Order {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/v1/orders", a, gin.H{
		"branch_id": branchID,
		"items":     []gin.H{{"menu_item_id": 5, "quantity": 2}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: %d %s", w.Code, w.Body.String())
	}
	return decodeOrder(t, w)
}

func TestAPI_RequiresAuthHeaders(t *testing.T) {
	s, _ := setupServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/v1/orders", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/orders", &auth{userID: 1, role: "WIZARD"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown role must be rejected, got %d", w.Code)
	}
}

func TestAPI_CreateOrder(t *testing.T) {
	s, _ := setupServer(t)
	customer := &auth{userID: 7, role: domain.RoleCustomer}

	o := createOrderAs(t, s, customer, 1)
	if o.ID == 0 || o.Status != domain.OrderStatusPending || o.CustomerID != 7 {
		t.Fatalf("unexpected order: %+v", o)
	}
	if !o.TotalAmount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected total 20, got %v", o.TotalAmount)
	}
	if len(o.Items) != 1 || !o.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected items: %+v", o.Items)
	}
}

func TestAPI_CreateOrderValidation(t *testing.T) {
	s, _ := setupServer(t)
	customer := &auth{userID: 7, role: domain.RoleCustomer}

	// пустой заказ
	w := doJSON(t, s, http.MethodPost, "/api/v1/orders", customer, gin.H{"branch_id": 1, "items": []gin.H{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty order: expected 400, got %d %s", w.Code, w.Body.String())
	}

	// недоступная позиция меню
	w = doJSON(t, s, http.MethodPost, "/api/v1/orders", customer, gin.H{
		"branch_id": 1,
		"items":     []gin.H{{"menu_item_id": 6, "quantity": 1}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unavailable item: expected 400, got %d", w.Code)
	}

	// повар не создаёт заказы
	w = doJSON(t, s, http.MethodPost, "/api/v1/orders", &auth{userID: 3, role: domain.RoleChef, branchID: 1}, gin.H{
		"branch_id": 1,
		"items":     []gin.H{{"menu_item_id": 5, "quantity": 1}},
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("chef create: expected 403, got %d", w.Code)
	}
}

func TestAPI_UnknownBranchListsAlternatives(t *testing.T) {
	s, _ := setupServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/v1/orders", &auth{userID: 7, role: domain.RoleCustomer}, gin.H{
		"branch_id": 99,
		"items":     []gin.H{{"menu_item_id": 5, "quantity": 1}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "available_branches") {
		t.Fatalf("body must list branches: %s", w.Body.String())
	}
}

func TestAPI_ResolvesBranchFromAddress(t *testing.T) {
	s, _ := setupServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/v1/orders", &auth{userID: 7, role: domain.RoleCustomer}, gin.H{
		"items":            []gin.H{{"menu_item_id": 5, "quantity": 1}},
		"delivery_address": "123 Main Street",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}
	if o := decodeOrder(t, w); o.BranchID != 1 {
		t.Fatalf("expected branch 1 from address, got %v", o.BranchID)
	}
}

func TestAPI_StatusFlow(t *testing.T) {
	s, _ := setupServer(t)
	o := createOrderAs(t, s, &auth{userID: 7, role: domain.RoleCustomer}, 1)

	chef := &auth{userID: 3, role: domain.RoleChef, branchID: 1}
	cashier := &auth{userID: 4, role: domain.RoleCashier, branchID: 1}

	for _, step := range []struct {
		who    *auth
		status domain.OrderStatus
	}{
		{chef, domain.OrderStatusPreparing},
		{chef, domain.OrderStatusReady},
		{cashier, domain.OrderStatusDelivered},
	} {
		w := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/status", o.ID), step.who, gin.H{"status": step.status})
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d %s", step.status, w.Code, w.Body.String())
		}
		if got := decodeOrder(t, w); got.Status != step.status {
			t.Fatalf("expected %s, got %s", step.status, got.Status)
		}
	}
}

func TestAPI_StatusErrors(t *testing.T) {
	s, _ := setupServer(t)
	o := createOrderAs(t, s, &auth{userID: 7, role: domain.RoleCustomer}, 1)

	path := fmt.Sprintf("/api/v1/orders/%d/status", o.ID)
	admin := &auth{userID: 1, role: domain.RoleAdmin}

	// недопустимый переход
	w := doJSON(t, s, http.MethodPut, path, admin, gin.H{"status": domain.OrderStatusReady})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid transition: expected 400, got %d", w.Code)
	}

	// клиент не меняет статусы
	w = doJSON(t, s, http.MethodPut, path, &auth{userID: 7, role: domain.RoleCustomer}, gin.H{"status": domain.OrderStatusCancelled})
	if w.Code != http.StatusForbidden {
		t.Fatalf("customer update: expected 403, got %d", w.Code)
	}

	// чужой филиал
	w = doJSON(t, s, http.MethodPut, path, &auth{userID: 9, role: domain.RoleChef, branchID: 2}, gin.H{"status": domain.OrderStatusPreparing})
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-branch: expected 403, got %d", w.Code)
	}

	// несуществующий заказ проверяется раньше прав
	w = doJSON(t, s, http.MethodPut, "/api/v1/orders/999/status", &auth{userID: 7, role: domain.RoleCustomer}, gin.H{"status": domain.OrderStatusCancelled})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing order: expected 404, got %d", w.Code)
	}

	w = doJSON(t, s, http.MethodPut, path, admin, gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing status: expected 400, got %d", w.Code)
	}
}

func TestAPI_GetOrderScope(t *testing.T) {
	s, _ := setupServer(t)
	o := createOrderAs(t, s, &auth{userID: 7, role: domain.RoleCustomer}, 1)
	path := fmt.Sprintf("/api/v1/orders/%d", o.ID)

	if w := doJSON(t, s, http.MethodGet, path, &auth{userID: 7, role: domain.RoleCustomer}, nil); w.Code != http.StatusOK {
		t.Fatalf("owner read: expected 200, got %d", w.Code)
	}
	// чужой заказ выглядит как отсутствующий
	if w := doJSON(t, s, http.MethodGet, path, &auth{userID: 8, role: domain.RoleCustomer}, nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign read: expected 404, got %d", w.Code)
	}
	if w := doJSON(t, s, http.MethodGet, path, &auth{userID: 9, role: domain.RoleChef, branchID: 2}, nil); w.Code != http.StatusNotFound {
		t.Fatalf("other branch read: expected 404, got %d", w.Code)
	}
	if w := doJSON(t, s, http.MethodGet, path, &auth{userID: 1, role: domain.RoleAdmin}, nil); w.Code != http.StatusOK {
		t.Fatalf("admin read: expected 200, got %d", w.Code)
	}
}

func TestAPI_ListOrdersScope(t *testing.T) {
	s, _ := setupServer(t)
	createOrderAs(t, s, &auth{userID: 7, role: domain.RoleCustomer}, 1)
	createOrderAs(t, s, &auth{userID: 8, role: domain.RoleCustomer}, 2)

	decode := func(w *httptest.ResponseRecorder) []domain.Order {
		var list []domain.Order
		if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
			t.Fatalf("decode list: %v body=%s", err, w.Body.String())
		}
		return list
	}

	w := doJSON(t, s, http.MethodGet, "/api/v1/orders", &auth{userID: 7, role: domain.RoleCustomer}, nil)
	if list := decode(w); len(list) != 1 || list[0].CustomerID != 7 {
		t.Fatalf("customer scope: %+v", list)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/orders", &auth{userID: 3, role: domain.RoleChef, branchID: 2}, nil)
	if list := decode(w); len(list) != 1 || list[0].BranchID != 2 {
		t.Fatalf("chef scope: %+v", list)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/orders", &auth{userID: 1, role: domain.RoleAdmin}, nil)
	if list := decode(w); len(list) != 2 {
		t.Fatalf("admin scope: %+v", list)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/orders?status=BOGUS", &auth{userID: 1, role: domain.RoleAdmin}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter: expected 400, got %d", w.Code)
	}
}

func TestAPI_DeleteOrder(t *testing.T) {
	s, _ := setupServer(t)
	admin := &auth{userID: 1, role: domain.RoleAdmin}

	o := createOrderAs(t, s, &auth{userID: 7, role: domain.RoleCustomer}, 1)
	path := fmt.Sprintf("/api/v1/orders/%d", o.ID)

	if w := doJSON(t, s, http.MethodDelete, path, &auth{userID: 4, role: domain.RoleCashier, branchID: 1}, nil); w.Code != http.StatusForbidden {
		t.Fatalf("cashier delete: expected 403, got %d", w.Code)
	}
	if w := doJSON(t, s, http.MethodDelete, path, &auth{userID: 5, role: domain.RoleBranchManager, branchID: 2}, nil); w.Code != http.StatusForbidden {
		t.Fatalf("cross-branch manager delete: expected 403, got %d", w.Code)
	}
	if w := doJSON(t, s, http.MethodDelete, path, admin, nil); w.Code != http.StatusOK {
		t.Fatalf("admin delete: expected 200, got %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, s, http.MethodGet, path, admin, nil); w.Code != http.StatusNotFound {
		t.Fatalf("deleted order must be gone, got %d", w.Code)
	}

	// доставленный заказ защищён от удаления
	o = createOrderAs(t, s, &auth{userID: 7, role: domain.RoleCustomer}, 1)
	path = fmt.Sprintf("/api/v1/orders/%d", o.ID)
	w := doJSON(t, s, http.MethodPut, path+"/status", admin, gin.H{"status": domain.OrderStatusDelivered})
	if w.Code != http.StatusOK {
		t.Fatalf("deliver: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, s, http.MethodDelete, path, admin, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("delete delivered: expected 400, got %d", w.Code)
	}
}

func TestAPI_Catalog(t *testing.T) {
	s, _ := setupServer(t)
	customer := &auth{userID: 7, role: domain.RoleCustomer}

	w := doJSON(t, s, http.MethodGet, "/api/v1/branches", customer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("branches: %d", w.Code)
	}
	var branches []domain.Branch
	if err := json.Unmarshal(w.Body.Bytes(), &branches); err != nil || len(branches) != 2 {
		t.Fatalf("branches body: %v %s", err, w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/menu", customer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("menu: %d", w.Code)
	}
	var menu []domain.MenuItem
	if err := json.Unmarshal(w.Body.Bytes(), &menu); err != nil || len(menu) != 1 || menu[0].Name != "Ribeye" {
		t.Fatalf("menu body: %v %s", err, w.Body.String())
	}
}
