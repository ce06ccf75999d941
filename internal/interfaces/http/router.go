package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/climatiza-api/internal/application/analytics"
	"github.com/jhoicas/climatiza-api/internal/application/auth"
	"github.com/jhoicas/climatiza-api/internal/application/billing"
	"github.com/jhoicas/climatiza-api/internal/application/crm"
	"github.com/jhoicas/climatiza-api/internal/application/inventory"
	"github.com/jhoicas/climatiza-api/internal/application/service"
	"github.com/jhoicas/climatiza-api/internal/application/usecase"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/internal/infrastructure/realtime"
	"github.com/jhoicas/climatiza-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	CompanyUC *usecase.CompanyUseCase
	ModuleSvc *usecase.ModuleService
	UserUC    *usecase.UserUseCase

	CustomerUC *crm.CustomerUseCase
	DeviceUC   *crm.DeviceUseCase
	ImportUC   *crm.ImportUseCase
	InsightUC  *crm.InsightUseCase

	OrderUC  *service.OrderUseCase
	TicketUC *service.TicketUseCase

	ProductUC        *inventory.ProductUseCase
	WarehouseUC      *inventory.WarehouseUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	StockUC          *inventory.StockUseCase
	Replenishment    *inventory.ReplenishmentUseCase

	FleetUC    *usecase.FleetUseCase
	CalendarUC *usecase.CalendarUseCase

	OfferUC   *billing.OfferUseCase
	InvoiceUC *billing.InvoiceUseCase
	LinkUC    *billing.LinkUseCase

	DashboardUC *appanalytics.DashboardUseCase
	ReportUC    *appanalytics.ReportUseCase
	AIUC        *usecase.AIUseCase

	Hub       *realtime.Hub
	Log       *logger.Logger
	JWTSecret string
	// PlatformCompanyID empresa operadora con acceso a todas las empresas.
	PlatformCompanyID string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	module := func(name string) fiber.Handler {
		return RequireModule(name, deps.ModuleSvc, deps.Log)
	}
	adminOnly := RequireRole(entity.RoleAdmin)
	planners := RequireRole(entity.RoleAdmin, entity.RoleCoordinador)
	sales := RequireRole(entity.RoleAdmin, entity.RoleVendedor)

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Alta de empresa (público: onboarding)
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.ModuleSvc, deps.PlatformCompanyID)
	api.Post("/companies", companyHandler.Create)

	// Enlaces públicos
	linkHandler := NewLinkHandler(deps.LinkUC)
	api.Get("/public/links/:token", linkHandler.Resolve)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Companies y módulos
	companies := protected.Group("/companies")
	companies.Get("/", adminOnly, companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", adminOnly, companyHandler.Update)
	companies.Put("/:id/modules", adminOnly, companyHandler.SetModule)
	protected.Get("/modules", companyHandler.Modules)

	// Users
	userHandler := NewUserHandler(deps.UserUC)
	users := protected.Group("/users")
	users.Get("/me", userHandler.Me)
	users.Get("/", adminOnly, userHandler.List)
	users.Post("/:id/roles", adminOnly, userHandler.AssignRole)
	users.Delete("/:id/roles/:role", adminOnly, userHandler.RevokeRole)

	// Realtime (SSE)
	realtimeHandler := NewRealtimeHandler(deps.Hub, deps.Log)
	protected.Get("/realtime/stream", realtimeHandler.Stream)

	// CRM: clientes y equipos instalados
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.DeviceUC, deps.ImportUC, deps.InsightUC)
	customers := protected.Group("/customers", module(entity.ModuleCRM))
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Post("/import", planners, customerHandler.Import)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", planners, customerHandler.Delete)
	customers.Get("/:id/insight", customerHandler.Insight)
	customers.Post("/:id/devices", customerHandler.CreateDevice)
	customers.Get("/:id/devices", customerHandler.ListDevices)

	devices := protected.Group("/devices", module(entity.ModuleCRM))
	devices.Get("/due", customerHandler.DevicesDue)
	devices.Get("/:id", customerHandler.GetDevice)
	devices.Put("/:id", customerHandler.UpdateDevice)
	devices.Delete("/:id", planners, customerHandler.DeleteDevice)

	// Órdenes de servicio
	orderHandler := NewServiceOrderHandler(deps.OrderUC)
	orders := protected.Group("/service-orders", module(entity.ModuleService))
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.Get)
	orders.Put("/:id", orderHandler.Update)
	orders.Patch("/:id/status", orderHandler.ChangeStatus)
	orders.Post("/:id/schedule", planners, orderHandler.Schedule)
	orders.Post("/:id/parts", orderHandler.AddPart)

	// Tickets (kanban)
	ticketHandler := NewTicketHandler(deps.TicketUC)
	tickets := protected.Group("/tickets", module(entity.ModuleService))
	tickets.Post("/", ticketHandler.Create)
	tickets.Get("/", ticketHandler.List)
	tickets.Get("/board", ticketHandler.Board)
	tickets.Get("/:id", ticketHandler.Get)
	tickets.Put("/:id", ticketHandler.Update)
	tickets.Patch("/:id/move", ticketHandler.Move)

	// Inventario
	productHandler := NewProductHandler(deps.ProductUC)
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.StockUC, deps.Replenishment)

	products := protected.Group("/products", module(entity.ModuleInventory))
	products.Post("/", planners, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", planners, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Get("/:id/stock", inventoryHandler.StockByProduct)
	products.Get("/:id/movements", inventoryHandler.Movements)

	warehouses := protected.Group("/warehouses", module(entity.ModuleInventory))
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Get("/:id/stock", inventoryHandler.StockByWarehouse)

	invGroup := protected.Group("/inventory", module(entity.ModuleInventory))
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/replenishment-list", planners, inventoryHandler.GetReplenishmentList)

	// Flota
	fleetHandler := NewFleetHandler(deps.FleetUC)
	fleet := protected.Group("/fleet", module(entity.ModuleFleet))
	fleet.Get("/alerts", fleetHandler.Alerts)
	fleet.Get("/export.kml", fleetHandler.ExportKML)
	fleet.Post("/vehicles", planners, fleetHandler.Create)
	fleet.Get("/vehicles", fleetHandler.List)
	fleet.Get("/vehicles/:id", fleetHandler.Get)
	fleet.Put("/vehicles/:id", planners, fleetHandler.Update)
	fleet.Post("/vehicles/:id/position", fleetHandler.ReportPosition)

	// Agenda
	calendarHandler := NewCalendarHandler(deps.CalendarUC)
	cal := protected.Group("/calendar", module(entity.ModuleCalendar))
	cal.Get("/events", calendarHandler.Range)
	cal.Post("/events", calendarHandler.Create)
	cal.Delete("/events/:id", calendarHandler.Delete)
	cal.Post("/sync", planners, calendarHandler.Sync)

	// Ofertas
	offerHandler := NewOfferHandler(deps.OfferUC)
	offers := protected.Group("/offers", module(entity.ModuleOffers))
	offers.Post("/", sales, offerHandler.Create)
	offers.Get("/", offerHandler.List)
	offers.Get("/:id", offerHandler.Get)
	offers.Get("/:id/pdf", offerHandler.PDF)
	offers.Post("/:id/send", sales, offerHandler.Send)
	offers.Post("/:id/accept", sales, offerHandler.Accept)
	offers.Post("/:id/reject", sales, offerHandler.Reject)
	offers.Post("/:id/convert", offerHandler.Convert)

	// Facturas
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices := protected.Group("/invoices", module(entity.ModuleBilling))
	invoices.Post("/", sales, invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.Get)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
	invoices.Post("/:id/issue", sales, invoiceHandler.Issue)
	invoices.Post("/:id/pay", sales, invoiceHandler.MarkPaid)
	invoices.Post("/:id/void", adminOnly, invoiceHandler.Void)

	// Enlaces dinámicos (gestión)
	links := protected.Group("/links")
	links.Post("/", linkHandler.Create)
	links.Get("/", linkHandler.List)
	links.Delete("/:id", linkHandler.Revoke)

	// Dashboard e informes
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)

	analyticsHandler := NewAnalyticsHandler(deps.ReportUC)
	reports := protected.Group("/reports", module(entity.ModuleReports), planners)
	reports.Get("/workload", analyticsHandler.Workload)
	reports.Get("/margins", analyticsHandler.GetMargins)
	reports.Get("/service-orders.xlsx", analyticsHandler.ExportServiceOrders)

	// IA y proxies externos
	aiHandler := NewAIHandler(deps.AIUC)
	ai := protected.Group("/ai", module(entity.ModuleAI))
	ai.Post("/analyze", aiHandler.Analyze)
	ai.Get("/geocode", aiHandler.Geocode)
	ai.Post("/transcribe", aiHandler.Transcribe)
}
