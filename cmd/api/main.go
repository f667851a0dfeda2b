package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/maintenance-service/internal/api/http"
	"github.com/spec-kit/maintenance-service/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/observability"
	"github.com/spec-kit/maintenance-service/internal/persistence"
	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/service"
	"github.com/spec-kit/maintenance-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	bidRepo := repository.NewBidRepository(pool)
	workOrderRepo := repository.NewWorkOrderRepository(pool)
	invoiceRepo := repository.NewInvoiceRepository(pool)
	calendarRepo := repository.NewCalendarRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)

	defaultTax, err := decimal.NewFromString(cfg.Billing.DefaultTaxPercentage)
	if err != nil {
		logger.Fatal("invalid BILLING_DEFAULT_TAX_PERCENTAGE", zap.Error(err))
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		BidRepo:       bidRepo,
		WorkOrderRepo: workOrderRepo,
		HistoryRepo:   historyRepo,
		Dispatcher:    dispatcher,
	})
	bidService := service.NewBidService(service.BidDependencies{
		TicketRepo: ticketRepo,
		BidRepo:    bidRepo,
		Locker:     redis,
		Dispatcher: dispatcher,
	})
	workOrderService := service.NewWorkOrderService(service.WorkOrderDependencies{
		TicketRepo:    ticketRepo,
		WorkOrderRepo: workOrderRepo,
		HistoryRepo:   historyRepo,
		Dispatcher:    dispatcher,
	})
	invoiceService := service.NewInvoiceService(service.InvoiceDependencies{
		TicketRepo:           ticketRepo,
		WorkOrderRepo:        workOrderRepo,
		InvoiceRepo:          invoiceRepo,
		HistoryRepo:          historyRepo,
		Dispatcher:           dispatcher,
		DefaultTaxPercentage: defaultTax,
	})
	scheduleService := service.NewScheduleService(cfg.Scheduling, service.ScheduleDependencies{
		CalendarRepo: calendarRepo,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(ctx, notificationService, logger)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Bids:           handlers.NewBidsHandler(bidService),
		WorkOrders:     handlers.NewWorkOrdersHandler(workOrderService),
		Invoices:       handlers.NewInvoicesHandler(invoiceService),
		Schedule:       handlers.NewScheduleHandler(scheduleService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
