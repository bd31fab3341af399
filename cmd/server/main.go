package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AE-VISA/internal"
	"AE-VISA/internal/auth"
	"AE-VISA/internal/config"
	"AE-VISA/internal/handlers"
	"AE-VISA/internal/middleware"
	"AE-VISA/internal/realtime"
	"AE-VISA/internal/services"
	"AE-VISA/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := internal.OpenDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize storage client based on configuration
	ctx := context.Background()
	var storageClient storage.Client
	var localClient *storage.LocalClient

	switch cfg.Storage.Type {
	case "gcs":
		log.Infof("Initializing GCS storage with bucket: %s", cfg.GCS.BucketName)
		client, err := storage.NewGCSClient(ctx, cfg.GCS.BucketName, cfg.GCS.CredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize GCS client: %v", err)
		}
		storageClient = client
	default:
		log.Infof("Initializing local storage at: %s", cfg.Storage.LocalPath)
		client, err := storage.NewLocalClient(cfg.Storage.LocalPath, cfg.Storage.LocalURL)
		if err != nil {
			log.Fatalf("Failed to initialize local storage client: %v", err)
		}
		storageClient = client
		localClient = client
	}
	defer storageClient.Close()

	// Shared collaborators
	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTRefreshSecret)
	hub := realtime.NewHub(log)
	emailSender := services.NewSMTPSender(cfg.Email)
	pushClient := services.NewFCMClient(cfg.FCM)
	nomodClient := services.NewHTTPNomodClient(cfg.Nomod)

	// Services
	userService := services.NewUserService(db, tokens, emailSender, log)
	catalogService := services.NewCatalogService(db, log)
	formService := services.NewFormService(db, log)
	submissionService := services.NewSubmissionService(db, hub, pushClient, log)
	statisticsService := services.NewStatisticsService(db)
	notificationService := services.NewNotificationService(db, hub)
	chatService := services.NewChatService(db, hub, log)
	documentService := services.NewDocumentService(db)
	applicationService := services.NewApplicationService(db)
	paymentService := services.NewPaymentService(db, nomodClient, cfg.Server, log)

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	formHandler := handlers.NewFormHandler(formService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	statisticsHandler := handlers.NewStatisticsHandler(statisticsService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	chatHandler := handlers.NewChatHandler(chatService)
	documentHandler := handlers.NewDocumentHandler(documentService, storageClient)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, userService, pushClient, cfg.Server.AppScheme)

	// Payment link expiry sweep
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 1h", func() {
		if _, err := paymentService.ExpireStalePayments(); err != nil {
			log.WithError(err).Error("payment expiry sweep failed")
		}
	}); err != nil {
		log.Fatalf("Failed to schedule payment expiry sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize Gin router
	r := gin.Default()
	r.Use(cors.Default())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"storage":   cfg.Storage.Type,
		})
	})

	// Local file server (local storage only)
	if localClient != nil {
		r.Static("/files", localClient.BasePath())
	}

	// Payment provider redirect pages, hit from the customer's browser
	r.GET("/payment/success", paymentHandler.PaymentSuccess)
	r.GET("/payment/failure", paymentHandler.PaymentFailure)

	// Public API: these endpoints are reachable without a token. Everything
	// else lives behind the auth middleware; there is no per-operation
	// allowlist beyond this route split.
	public := r.Group("/api/v1")
	{
		public.POST("/auth/login", userHandler.Login)
		public.POST("/auth/refresh", userHandler.Refresh)
		public.POST("/auth/verify-email", userHandler.SendOTP)
		public.POST("/auth/verify-otp", userHandler.VerifyOTP)
		public.POST("/users", userHandler.Register)

		public.GET("/services", catalogHandler.ListServices)
		public.GET("/services/:id", catalogHandler.GetService)
		public.GET("/categories", catalogHandler.ListCategories)
		public.GET("/categories/:id", catalogHandler.GetCategory)
		public.GET("/categories/:id/form", formHandler.GetFormByCategory)
		public.GET("/visas", catalogHandler.ListVisas)
		public.GET("/visas/:id", catalogHandler.GetVisa)
		public.GET("/visas/:id/form", formHandler.GetFormByVisa)
	}

	// Authenticated API
	api := r.Group("/api/v1", middleware.RequireAuth(tokens))
	{
		api.POST("/auth/logout", userHandler.Logout)
		api.POST("/auth/change-password", userHandler.ChangePassword)

		api.GET("/users", userHandler.ListUsers)
		api.GET("/users/:id", userHandler.GetUser)
		api.PUT("/users/:id", userHandler.UpdateUser)
		api.DELETE("/users/:id", userHandler.DeleteUser)
		api.GET("/roles", userHandler.ListRoles)
		api.POST("/roles", userHandler.CreateRole)
		api.PUT("/roles/:id", userHandler.UpdateRole)

		api.POST("/services", catalogHandler.CreateService)
		api.PUT("/services/:id", catalogHandler.UpdateService)
		api.DELETE("/services/:id", catalogHandler.DeleteService)
		api.POST("/categories", catalogHandler.CreateCategory)
		api.PUT("/categories/:id", catalogHandler.UpdateCategory)
		api.DELETE("/categories/:id", catalogHandler.DeleteCategory)
		api.PUT("/category-attributes/:id", catalogHandler.UpdateCategoryAttribute)
		api.POST("/visas", catalogHandler.CreateVisa)
		api.PUT("/visas/:id", catalogHandler.UpdateVisa)
		api.DELETE("/visas/:id", catalogHandler.DeleteVisa)

		api.POST("/forms", formHandler.CreateForm)
		api.GET("/forms", formHandler.ListForms)
		api.GET("/forms/:id", formHandler.GetForm)

		api.POST("/submissions", submissionHandler.Submit)
		api.GET("/submissions", submissionHandler.List)
		api.GET("/submissions/mine", submissionHandler.ListMine)
		api.GET("/submissions/mine/pending", submissionHandler.ListMinePending)
		api.GET("/submissions/:id", submissionHandler.Get)
		api.PUT("/submissions/:id/status", submissionHandler.UpdateStatus)

		api.GET("/stats/submissions", statisticsHandler.Submissions)
		api.GET("/stats/status-graph", statisticsHandler.StatusGraph)
		api.GET("/stats/services", statisticsHandler.Services)
		api.GET("/stats/dashboard", statisticsHandler.Dashboard)
		api.GET("/stats/registered-users", statisticsHandler.RegisteredUsers)
		api.GET("/stats/user-types", statisticsHandler.UserTypes)

		api.GET("/notifications", notificationHandler.ListMine)
		api.GET("/notifications/admin", notificationHandler.ListAdmin)
		api.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		api.GET("/notifications/:id", notificationHandler.Get)
		api.PUT("/notifications/:id/read", notificationHandler.MarkRead)

		api.POST("/chats", chatHandler.CreateChat)
		api.GET("/chats", chatHandler.ListChats)
		api.GET("/chats/:id", chatHandler.GetChat)
		api.POST("/chats/:id/messages", chatHandler.SendMessage)

		api.GET("/documents", documentHandler.List)
		api.GET("/documents/:id", documentHandler.Get)
		api.PUT("/documents/:id", documentHandler.Update)
		api.DELETE("/documents/:id", documentHandler.Delete)

		api.POST("/applications", applicationHandler.Create)
		api.GET("/applications", applicationHandler.ListMine)
		api.GET("/applications/:id", applicationHandler.Get)
		api.DELETE("/applications/:id", applicationHandler.Delete)
		api.POST("/applications/:id/complete", submissionHandler.Complete)
	}

	// REST augmentation routes kept at the root for client compatibility
	authed := r.Group("/", middleware.RequireAuth(tokens))
	{
		authed.POST("/upload", documentHandler.Upload)
		authed.POST("/create-payment", paymentHandler.CreatePayment)
		authed.GET("/payment-status/:id", paymentHandler.PaymentStatus)
		authed.POST("/send-fcm", paymentHandler.SendFCM)
	}

	// Notification subscriptions over websocket
	r.GET("/ws/notifications", gin.WrapH(hub))

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Infof("Starting server on port %s (environment: %s)", cfg.Server.Port, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	if err := internal.CloseDB(db); err != nil {
		log.Errorf("Error closing database: %v", err)
	}

	log.Info("Server exited")
}
