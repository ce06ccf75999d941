package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/climatiza-api/docs"
	appanalytics "github.com/jhoicas/climatiza-api/internal/application/analytics"
	"github.com/jhoicas/climatiza-api/internal/application/auth"
	"github.com/jhoicas/climatiza-api/internal/application/billing"
	"github.com/jhoicas/climatiza-api/internal/application/crm"
	"github.com/jhoicas/climatiza-api/internal/application/inventory"
	"github.com/jhoicas/climatiza-api/internal/application/service"
	"github.com/jhoicas/climatiza-api/internal/application/usecase"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/kml"
	infrapdf "github.com/jhoicas/climatiza-api/internal/infrastructure/pdf"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/postgres"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/realtime"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/climatiza-api/internal/interfaces/http"
	"github.com/jhoicas/climatiza-api/pkg/config"
	"github.com/jhoicas/climatiza-api/pkg/logger"
)

// @title        Climatiza API
// @version      1.0
// @description  CRM y ERP para empresas de climatización: clientes, equipos, órdenes de servicio,
// @description  tickets, inventario de furgonetas, flota, agenda, ofertas y facturas.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios
	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	deviceRepo := postgres.NewDeviceRepository(pool)
	orderRepo := postgres.NewServiceOrderRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	calendarRepo := postgres.NewCalendarRepository(pool)
	offerRepo := postgres.NewOfferRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	linkRepo := postgres.NewLinkRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Tiempo real: los casos de uso notifican por pg_notify y el listener reparte a los streams SSE
	// de esta instancia, así todas las réplicas ven los mismos eventos.
	hub := realtime.NewHub(64)
	defer hub.Close()
	events := postgres.NewNotifier(pool)
	listener := postgres.NewListener(pool, hub, log.Component("listener").Zerolog())
	go func() {
		if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("listener de eventos finalizado")
		}
	}()

	// Proveedores externos
	ext, err := newExternal(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("proveedores externos")
	}

	// Casos de uso
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	moduleSvc := usecase.NewModuleService(companyRepo, companyRepo)
	userUC := usecase.NewUserUseCase(userRepo)

	customerUC := crm.NewCustomerUseCase(customerRepo, ext.geocoder, log)
	deviceUC := crm.NewDeviceUseCase(deviceRepo, customerRepo)
	importUC := crm.NewImportUseCase(spreadsheet.NewCustomerReader(), customerUC)
	insightUC := crm.NewInsightUseCase(customerRepo, deviceRepo, orderRepo, ext.llm, log)

	registerMovementUC := inventory.NewRegisterMovementUseCase(txRunner, productRepo, warehouseRepo)
	stockUC := inventory.NewStockUseCase(stockRepo, movementRepo, productRepo, warehouseRepo)
	replenishmentUC := inventory.NewReplenishmentUseCase(stockRepo, reportRepo)
	productUC := inventory.NewProductUseCase(productRepo)
	warehouseUC := inventory.NewWarehouseUseCase(warehouseRepo)

	orderUC := service.NewOrderUseCase(service.OrderDeps{
		Tx:         txRunner,
		Orders:     orderRepo,
		Customers:  customerRepo,
		Devices:    deviceRepo,
		Users:      userRepo,
		Warehouses: warehouseRepo,
		Stock:      registerMovementUC,
		Events:     events,
		Log:        log,
	})
	ticketUC := service.NewTicketUseCase(ticketRepo, ext.analyzer, events, log)

	fleetUC := usecase.NewFleetUseCase(vehicleRepo, kml.WriteFleet, events, log)
	calendarUC := usecase.NewCalendarUseCase(calendarRepo, orderRepo, ext.calendar)

	linkUC := billing.NewLinkUseCase(linkRepo, offerRepo, invoiceRepo, orderRepo, billing.LinkConfig{
		PublicBaseURL: cfg.Links.PublicBaseURL,
		DefaultTTL:    cfg.Links.DefaultTTL,
	})
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	offerUC := billing.NewOfferUseCase(billing.OfferDeps{
		Tx:        txRunner,
		Offers:    offerRepo,
		Customers: customerRepo,
		Companies: companyRepo,
		Products:  productRepo,
		PDF:       pdfGenerator,
		Links:     linkUC,
		Events:    events,
		Log:       log,
	})
	invoiceUC := billing.NewInvoiceUseCase(billing.InvoiceDeps{
		Tx:         txRunner,
		Stock:      registerMovementUC,
		Invoices:   invoiceRepo,
		Customers:  customerRepo,
		Companies:  companyRepo,
		Products:   productRepo,
		Warehouses: warehouseRepo,
		Orders:     orderRepo,
		PDF:        pdfGenerator,
		Links:      linkUC,
	})

	dashboardUC := appanalytics.NewDashboardUseCase(reportRepo, vehicleRepo)
	reportUC := appanalytics.NewReportUseCase(reportRepo, spreadsheet.NewReportWriter())
	aiUC := usecase.NewAIUseCase(ext.analyzer, ext.llm, ext.geocoder, ext.transcriber, log)

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		// Sin WriteTimeout: cortaría los streams SSE.
		IdleTimeout: time.Second * 60,
		BodyLimit:   30 << 20, // notas de voz de hasta 25 MB más el multipart
	})
	app.Use(recover.New())
	app.Use(httpRouter.CORS(cfg.HTTP.CORSOrigins))
	app.Use(httpRouter.RequestLogger(log))

	if cfg.Metrics.Enabled {
		metrics := httpRouter.NewMetrics()
		app.Use(metrics.Middleware())
		app.Get("/metrics", metrics.Handler())
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Climatiza API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		CompanyUC:        companyUC,
		ModuleSvc:        moduleSvc,
		UserUC:           userUC,
		CustomerUC:       customerUC,
		DeviceUC:         deviceUC,
		ImportUC:         importUC,
		InsightUC:        insightUC,
		OrderUC:          orderUC,
		TicketUC:         ticketUC,
		ProductUC:        productUC,
		WarehouseUC:      warehouseUC,
		RegisterMovement: registerMovementUC,
		StockUC:          stockUC,
		Replenishment:    replenishmentUC,
		FleetUC:          fleetUC,
		CalendarUC:       calendarUC,
		OfferUC:          offerUC,
		InvoiceUC:        invoiceUC,
		LinkUC:           linkUC,
		DashboardUC:      dashboardUC,
		ReportUC:         reportUC,
		AIUC:             aiUC,
		Hub:              hub,
		Log:              log,
		JWTSecret:        cfg.JWT.Secret,

		PlatformCompanyID: cfg.App.PlatformCompanyID,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// Cerrar el hub primero libera los streams SSE abiertos; si no, el apagado esperaría al timeout.
	stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
