package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"steakz/internal/domain"
)

// MySQLConfig параметры подключения к MySQL
type MySQLConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
	Params   string
}

// MySQLFromEnv собирает конфигурацию из переменных окружения с дефолтами для
// локального запуска
func MySQLFromEnv() MySQLConfig {
	return MySQLConfig{
		User:     getEnv("MYSQL_USER", "steakz"),
		Password: getEnv("MYSQL_PASSWORD", "steakz"),
		Host:     getEnv("MYSQL_HOST", "127.0.0.1"),
		Port:     getEnv("MYSQL_PORT", "3306"),
		Database: getEnv("MYSQL_DATABASE", "steakz"),
		Params:   getEnv("MYSQL_PARAMS", "charset=utf8mb4&parseTime=True&loc=Local"),
	}
}

// OpenMySQL возвращает gorm DB по конфигурации
func OpenMySQL(cfg MySQLConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.Params,
	)

	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return gdb, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// GormStore хранилище на gorm; реализует BranchRepository и TxManager,
// остальные репозитории — обёртки по образцу in-memory хранилища
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

var _ BranchRepository = (*GormStore)(nil)
var _ TxManager = (*GormStore)(nil)

// EnsureSchema применяет схему базы
func (s *GormStore) EnsureSchema() error {
	return s.db.AutoMigrate(
		&domain.Branch{},
		&domain.MenuItem{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Payment{},
	)
}

type gormTxKey struct{}

// conn возвращает транзакцию из контекста, если она открыта
func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

func (s *GormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}

// BranchRepository implementation
func (s *GormStore) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	var b domain.Branch
	if err := s.conn(ctx).First(&b, id).Error; err != nil {
		return nil, translateGormErr(err)
	}
	return &b, nil
}

func (s *GormStore) List(ctx context.Context) ([]domain.Branch, error) {
	var out []domain.Branch
	if err := s.conn(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MenuRepository implementation on wrapper type
type GormMenu struct{ store *GormStore }

func NewGormMenu(store *GormStore) *GormMenu { return &GormMenu{store: store} }

var _ MenuRepository = (*GormMenu)(nil)

func (g *GormMenu) GetByID(ctx context.Context, id int64) (*domain.MenuItem, error) {
	var mi domain.MenuItem
	if err := g.store.conn(ctx).First(&mi, id).Error; err != nil {
		return nil, translateGormErr(err)
	}
	return &mi, nil
}

func (g *GormMenu) ListAvailable(ctx context.Context) ([]domain.MenuItem, error) {
	var out []domain.MenuItem
	if err := g.store.conn(ctx).Where("is_available = ?", true).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// OrderRepository implementation on wrapper type
type GormOrders struct{ store *GormStore }

func NewGormOrders(store *GormStore) *GormOrders { return &GormOrders{store: store} }

var _ OrderRepository = (*GormOrders)(nil)

func (g *GormOrders) Create(ctx context.Context, o *domain.Order) error {
	// gorm пишет заказ и позиции одним Create; вызывается внутри транзакции
	return g.store.conn(ctx).Create(o).Error
}

func (g *GormOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := g.store.conn(ctx).Preload("Items").Preload("Payment").First(&o, id).Error
	if err != nil {
		return nil, translateGormErr(err)
	}
	return &o, nil
}

func (g *GormOrders) UpdateStatus(ctx context.Context, o *domain.Order, status domain.OrderStatus) error {
	now := time.Now().UTC()
	res := g.store.conn(ctx).Model(&domain.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]any{"status": status, "version": o.Version + 1, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// either the row is gone or the version moved under us
		var count int64
		if err := g.store.conn(ctx).Model(&domain.Order{}).Where("id = ?", o.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrStaleOrder
	}
	o.Status = status
	o.Version++
	o.UpdatedAt = now
	return nil
}

func (g *GormOrders) Delete(ctx context.Context, id int64) error {
	if err := g.store.conn(ctx).Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
		return err
	}
	res := g.store.conn(ctx).Delete(&domain.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormOrders) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	q := g.store.conn(ctx).Preload("Items").Preload("Payment")
	if f.BranchID != nil {
		q = q.Where("branch_id = ?", *f.BranchID)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var out []domain.Order
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// PaymentRepository implementation on wrapper type
type GormPayments struct{ store *GormStore }

func NewGormPayments(store *GormStore) *GormPayments { return &GormPayments{store: store} }

var _ PaymentRepository = (*GormPayments)(nil)

func (g *GormPayments) Create(ctx context.Context, p *domain.Payment) error {
	return g.store.conn(ctx).Create(p).Error
}

func (g *GormPayments) GetByOrderID(ctx context.Context, orderID int64) (*domain.Payment, error) {
	var p domain.Payment
	err := g.store.conn(ctx).Where("order_id = ?", orderID).First(&p).Error
	if err != nil {
		return nil, translateGormErr(err)
	}
	return &p, nil
}

func (g *GormPayments) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	res := g.store.conn(ctx).Model(&domain.Payment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translateGormErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
