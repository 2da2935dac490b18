package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role роль аутентифицированного пользователя
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleGeneralManager Role = "GENERAL_MANAGER"
	RoleBranchManager  Role = "BRANCH_MANAGER"
	RoleChef           Role = "CHEF"
	RoleCashier        Role = "CASHIER"
	RoleCustomer       Role = "CUSTOMER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGeneralManager, RoleBranchManager, RoleChef, RoleCashier, RoleCustomer:
		return true
	}
	return false
}

// Principal аутентифицированный субъект запроса; приходит от внешнего модуля
// аутентификации и в базе не хранится
type Principal struct {
	ID       int64
	Role     Role
	BranchID int64 // 0, если роль не привязана к филиалу
}

// Branch филиал ресторана; каталог ведётся извне, ядро заказов только читает
type Branch struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:64" json:"name"`
	Address string `gorm:"size:255" json:"address"`
	Phone   string `gorm:"size:32" json:"phone,omitempty"`
}

// MenuItem позиция меню; каталог ведётся извне, ядро заказов только читает
type MenuItem struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:128" json:"name"`
	Description string          `gorm:"size:255" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Category    string          `gorm:"size:32;index" json:"category,omitempty"`
	IsAvailable bool            `json:"is_available"`
	Image       string          `gorm:"size:255" json:"image,omitempty"`
}

// PaymentStatus статус платежа
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment платёж по заказу, один к одному. Создаётся внешним модулем оплаты;
// ядро заказов только переводит его в REFUNDED при отмене
type Payment struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	OrderID   int64           `gorm:"uniqueIndex" json:"order_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	Status    PaymentStatus   `gorm:"size:16" json:"status"`
	TxnRef    string          `gorm:"size:64" json:"txn_ref,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderItem позиция заказа
type OrderItem struct {
	ID         int64 `gorm:"primaryKey" json:"id"`
	OrderID    int64 `gorm:"index" json:"order_id"`
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int64 `json:"quantity"`
	// UnitPrice фиксируется в момент создания заказа и не перечитывается из
	// меню, даже если цена позиции потом изменится
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`
}

// Order сущность заказа
type Order struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	BranchID        int64           `gorm:"index" json:"branch_id"` // immutable once set
	CustomerID      int64           `gorm:"index" json:"customer_id"`
	Status          OrderStatus     `gorm:"size:16;index" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2)" json:"total_amount"`
	DeliveryAddress string          `gorm:"size:255" json:"delivery_address,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Payment         *Payment        `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
	Version         int64           `gorm:"not null;default:1" json:"-"` // optimistic lock column
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
