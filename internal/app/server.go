// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"billgate-service/internal/config"
	"billgate-service/internal/db"
	billingHandler "billgate-service/internal/handlers/billing"
	notifyHandler "billgate-service/internal/handlers/notification"
	"billgate-service/internal/middleware"
	"billgate-service/internal/pkg/jwt"
	"billgate-service/internal/pkg/lock"
	"billgate-service/internal/provider"
	"billgate-service/internal/repository/postgres"
	billingUsecase "billgate-service/internal/service/billing"
	"billgate-service/internal/service/email"
	notifyUsecase "billgate-service/internal/service/notification"
	"billgate-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.Default()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(s.cfg.RedisAddr, s.cfg.RedisPass)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("[REDIS] ✅ Connected successfully")

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- JWT Verifier -----
	verifier, err := jwt.NewVerifier(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT verifier: %w", err)
	}

	// ----- Email -----
	emailSender := email.NewEmailSender(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFromName,
		s.cfg.SMTPSecure,
	)

	// ----- Repositories -----
	planRepo := postgres.NewPlanRepository(pool)
	gatewayRepo := postgres.NewGatewayRepository(pool)
	workspaceRepo := postgres.NewWorkspaceRepository(pool)
	methodRepo := postgres.NewPaymentMethodRepository(pool)
	notifyRepo := postgres.NewNotificationRepository(pool)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(logger)

	// ----- Providers -----
	stripeCharger := provider.NewStripeCharger(s.cfg.Currency, s.cfg.AppName, s.cfg.ProviderTimeout, nil, logger)
	paystackClient := provider.NewPaystackClient("", s.cfg.ProviderTimeout, logger)

	// ----- Locks -----
	workspaceLock := lock.NewWorkspaceLock(redisClient, s.cfg.BillingLockTTL)

	// ----- Services (Usecases) -----
	notifService := notifyUsecase.NewNotificationService(notifyRepo, emailSender, hub, s.cfg.AdminEmail, logger)
	billingService := billingUsecase.NewBillingService(
		planRepo,
		gatewayRepo,
		workspaceRepo,
		methodRepo,
		stripeCharger,
		paystackClient,
		notifService,
		workspaceLock,
		s.cfg.AppURL,
		logger,
	)

	// ----- Handlers -----
	billingHandlerInst := billingHandler.NewBillingHandler(billingService)
	notifHandlerInst := notifyHandler.NewNotificationHandler(notifService)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		BillingHandler: billingHandlerInst,
		NotifHandler:   notifHandlerInst,
		Hub:            hub,
		AuthMiddleware: authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("🚀 Server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
