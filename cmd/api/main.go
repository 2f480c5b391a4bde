package main

import (
	"log"
	"os"

	_ "crmbackend/api/swagger" // swagger docs
	"crmbackend/internal/database"
	"crmbackend/internal/handler"
	"crmbackend/internal/mailer"
	"crmbackend/internal/middleware"
	"crmbackend/internal/repository"
	"crmbackend/internal/service"
	"crmbackend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           CRM Back Office API
// @version         1.0
// @description     Invoicing, credit notes, ROT deductions, payroll and reminders for a Swedish service business.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Outbound mail. LogSender until a real notification service is wired.
	sender := mailer.NewLogSender()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewEmployeeProfileRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	timeLogRepo := repository.NewTimeLogRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditService := service.NewAuditService(auditRepo)
	userService := service.NewUserService(userRepo)
	customerService := service.NewCustomerService(customerRepo)
	orderService := service.NewOrderService(orderRepo, quoteRepo, customerRepo, userRepo, reminderRepo, sender)
	invoiceService := service.NewInvoiceService(invoiceRepo, orderRepo, customerRepo, reminderRepo, txManager, sender, auditService, wsHub)
	creditNoteService := service.NewCreditNoteService(invoiceRepo, reminderRepo, txManager, sender, auditService, wsHub)
	payrollService := service.NewPayrollService(profileRepo, timeLogRepo, orderRepo, userRepo, auditService)
	timeLogService := service.NewTimeLogService(timeLogRepo, userRepo)
	reminderService := service.NewReminderService(reminderRepo, quoteRepo, invoiceRepo, sender, wsHub, auditService)
	exportService := service.NewExportService(invoiceService)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	customerHandler := handler.NewCustomerHandler(customerService)
	orderHandler := handler.NewOrderHandler(orderService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, exportService)
	creditNoteHandler := handler.NewCreditNoteHandler(creditNoteService)
	payrollHandler := handler.NewPayrollHandler(payrollService)
	timeLogHandler := handler.NewTimeLogHandler(timeLogService)
	reminderHandler := handler.NewReminderHandler(reminderService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	customerHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	creditNoteHandler.RegisterRoutes(router.Group(""))
	payrollHandler.RegisterRoutes(router.Group(""))
	timeLogHandler.RegisterRoutes(router.Group(""))
	reminderHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
