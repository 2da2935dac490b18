package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "steakz/internal/http"
	"steakz/internal/repository"
	"steakz/internal/seed"
	"steakz/internal/service"

	_ "steakz/docs"
)

func main() {
	var (
		branches repository.BranchRepository
		menu     repository.MenuRepository
		orders   repository.OrderRepository
		payments repository.PaymentRepository
		tx       repository.TxManager
	)

	switch os.Getenv("STORE") {
	case "mysql":
		db, err := repository.OpenMySQL(repository.MySQLFromEnv())
		if err != nil {
			log.Fatalf("failed to connect to MySQL: %v", err)
		}
		store := repository.NewGormStore(db)
		if err := store.EnsureSchema(); err != nil {
			log.Fatalf("failed to migrate schema: %v", err)
		}
		branches = store
		menu = repository.NewGormMenu(store)
		orders = repository.NewGormOrders(store)
		payments = repository.NewGormPayments(store)
		tx = store
	default:
		// in-memory режим для локальной разработки; каталоги наполняются стартовыми данными
		store := repository.NewMemoryStore()
		for _, b := range seed.Branches() {
			store.PutBranch(b)
		}
		for _, mi := range seed.MenuItems() {
			store.PutMenuItem(mi)
		}
		branches = store
		menu = repository.NewMemoryMenu(store)
		orders = repository.NewMemoryOrders(store)
		payments = repository.NewMemoryPayments(store)
		tx = repository.NewMemoryTx(store)
	}

	ordersSvc := service.NewOrderService(branches, menu, orders, payments, service.NewAddressMatcher(), tx)
	catalogSvc := service.NewCatalogService(branches, menu)

	srv := httpapi.NewServer(ordersSvc, catalogSvc)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":9091"
	}
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Engine(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
