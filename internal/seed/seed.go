package seed

import (
	"context"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"steakz/internal/domain"
)

// Branches стартовый каталог филиалов
func Branches() []domain.Branch {
	return []domain.Branch{
		{ID: 1, Name: "London", Address: "123 Main St, London", Phone: "020-7946-0958"},
		{ID: 2, Name: "Manchester", Address: "456 King St, Manchester", Phone: "0161-909-0186"},
		{ID: 3, Name: "Birmingham", Address: "789 High St, Birmingham", Phone: "0121-643-2514"},
	}
}

// MenuItems стартовое меню
func MenuItems() []domain.MenuItem {
	price := decimal.NewFromInt
	return []domain.MenuItem{
		{ID: 1, Name: "Heritage Tomato Bruschetta", Description: "Grilled sourdough with Isle of Wight tomatoes, garlic, and basil.", Price: price(9), Category: "starter", IsAvailable: true},
		{ID: 2, Name: "Stilton & Pear Salad", Description: "English Blue Stilton, Conference pears, and candied walnuts.", Price: price(11), Category: "salad", IsAvailable: true},
		{ID: 3, Name: "28-Day Dry-Aged Ribeye", Description: "Grass-fed British beef, served with roasted bone marrow.", Price: price(34), Category: "main", IsAvailable: true},
		{ID: 4, Name: "Pan-Seared Scottish Salmon", Description: "Loch Duart salmon with minted crushed peas and lemon.", Price: price(24), Category: "main", IsAvailable: true},
		{ID: 5, Name: "Corn-fed Roasted Chicken", Description: "Free-range chicken breast with wild mushroom sauce.", Price: price(21), Category: "main", IsAvailable: true},
		{ID: 6, Name: "Triple-Cooked Chips", Description: "Thick-cut Maris Piper potatoes, rosemary salt.", Price: price(6), Category: "side", IsAvailable: true},
		{ID: 7, Name: "Truffled Mac & Cheese", Description: "Mature Cheddar and black truffle oil.", Price: price(8), Category: "side", IsAvailable: true},
		{ID: 8, Name: "Sticky Toffee Pudding", Description: "Warm date sponge with butterscotch sauce and clotted cream.", Price: price(9), Category: "pudding", IsAvailable: true},
		{ID: 9, Name: "English Strawberry Eton Mess", Description: "Crushed meringue, Chantilly cream, and local strawberries.", Price: price(8), Category: "pudding", IsAvailable: true},
		{ID: 10, Name: "London Dry Gin & Tonic", Description: "Premium gin with elderflower tonic and cucumber.", Price: price(12), Category: "beverage", IsAvailable: true},
	}
}

// Run идемпотентно наполняет каталоги и, если заказов ещё нет, создаёт
// демо-заказ с завершённым платежом для проверки сценария возврата
func Run(ctx context.Context, db *gorm.DB) error {
	for _, b := range Branches() {
		b := b
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&b).Error; err != nil {
			return err
		}
	}
	for _, mi := range MenuItems() {
		mi := mi
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&mi).Error; err != nil {
			return err
		}
	}

	var orders int64
	if err := db.WithContext(ctx).Model(&domain.Order{}).Count(&orders).Error; err != nil {
		return err
	}
	if orders > 0 {
		return nil
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ribeye := MenuItems()[2]
		chips := MenuItems()[5]
		total := ribeye.Price.Add(chips.Price.Mul(decimal.NewFromInt(2)))
		order := domain.Order{
			BranchID:        1,
			CustomerID:      1,
			Status:          domain.OrderStatusPending,
			TotalAmount:     total,
			DeliveryAddress: "42 Baker Street, London",
			Version:         1,
			Items: []domain.OrderItem{
				{MenuItemID: ribeye.ID, Quantity: 1, UnitPrice: ribeye.Price, Subtotal: ribeye.Price},
				{MenuItemID: chips.ID, Quantity: 2, UnitPrice: chips.Price, Subtotal: chips.Price.Mul(decimal.NewFromInt(2))},
			},
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		payment := domain.Payment{
			OrderID: order.ID,
			Amount:  total,
			Status:  domain.PaymentStatusCompleted,
			TxnRef:  uuid.NewString(),
		}
		return tx.Create(&payment).Error
	})
}

// PrintSummary печатает количество строк по таблицам
func PrintSummary(ctx context.Context, db *gorm.DB, w io.Writer) error {
	counts := []struct {
		name  string
		model any
	}{
		{"branches", &domain.Branch{}},
		{"menu_items", &domain.MenuItem{}},
		{"orders", &domain.Order{}},
		{"order_items", &domain.OrderItem{}},
		{"payments", &domain.Payment{}},
	}

	table := tablewriter.NewWriter(w)
	table.Header("TABLE", "ROWS")
	for _, c := range counts {
		var n int64
		if err := db.WithContext(ctx).Model(c.model).Count(&n).Error; err != nil {
			return err
		}
		if err := table.Append([]string{c.name, strconv.FormatInt(n, 10)}); err != nil {
			return err
		}
	}
	return table.Render()
}
