package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kudzaim/kiosk-commerce/internal/config"
	"github.com/kudzaim/kiosk-commerce/internal/database"
	"github.com/kudzaim/kiosk-commerce/internal/mailer"
	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/outbox"
	"github.com/kudzaim/kiosk-commerce/internal/paynow"
	"github.com/kudzaim/kiosk-commerce/internal/repository"
	"github.com/kudzaim/kiosk-commerce/internal/service"
	"github.com/kudzaim/kiosk-commerce/pkg/kafka"
	"github.com/kudzaim/kiosk-commerce/pkg/logger"
)

// Server wires the HTTP surface to the services and the background outbox
// processor.
type Server struct {
	config     *config.Config
	logger     logger.Logger
	router     *mux.Router
	httpServer *http.Server
	metrics    *metrics

	db              *database.Database
	kafkaProducer   *kafka.Producer
	outboxProcessor *outbox.Processor

	orderService   *service.OrderService
	productService *service.ProductService
	userService    *service.UserService
	authService    *service.AuthService
}

// NewServer builds the full production server: Postgres, Kafka (when brokers
// are configured), SMTP receipts and the outbox processor.
func NewServer(cfg *config.Config, l logger.Logger) (*Server, error) {
	db, err := database.New(cfg, l)

	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	orderRepo := repository.NewOrderRepository(db, l)
	productRepo := repository.NewProductRepository(db, l)
	userRepo := repository.NewUserRepository(db, l)
	outboxRepo := repository.NewOutboxRepository(db, l)

	var receipts mailer.Mailer = mailer.NoopMailer{}
	if cfg.SMTP.User != "" {
		receipts = mailer.NewSMTPMailer(cfg.SMTP, l)
	} else {
		l.Warn("SMTP not configured, receipt emails disabled")
	}

	links := paynow.NewLinkBuilder(cfg.PayNow.BaseURL, cfg.PayNow.MerchantCode)

	orderService := service.NewOrderService(orderRepo, links, receipts, cfg.VATRate, cfg.PayNow.Currency, l)
	productService := service.NewProductService(productRepo, l)
	userService := service.NewUserService(userRepo, l)
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, l)

	server := newServer(cfg, l, orderService, productService, userService, authService)
	server.db = db

	// Outbox publishing: Kafka when brokers are configured, otherwise the
	// events are drained to the log so the table never grows unbounded.
	var handler outbox.MessageHandler = outbox.NewLoggingHandler(l)

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, l)

		if err != nil {
			db.Close()
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}

		server.kafkaProducer = producer
		handler = outbox.NewKafkaHandler(producer, cfg.Kafka.OrdersTopic, l)
	}

	processor := outbox.NewProcessor(outboxRepo, outbox.ProcessorConfig{
		PollingInterval: 5 * time.Second,
		BatchSize:       10,
		MaxRetries:      3,
	}, l)

	processor.RegisterHandler(models.EventOrderCreated, handler)
	processor.RegisterHandler(models.EventOrderPaid, handler)
	processor.RegisterHandler(models.EventOrderFailed, handler)

	server.outboxProcessor = processor
	processor.Start()

	return server, nil
}

// newServer assembles the router and HTTP server around the given services.
// Tests build servers through this with in-memory repositories.
func newServer(
	cfg *config.Config,
	l logger.Logger,
	orders *service.OrderService,
	products *service.ProductService,
	users *service.UserService,
	auth *service.AuthService,
) *Server {
	r := mux.NewRouter()

	server := &Server{
		config: cfg,
		logger: l,
		router: r,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		metrics:        newMetrics(),
		orderService:   orders,
		productService: products,
		userService:    users,
		authService:    auth,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its background workers
func (s *Server) Shutdown(ctx context.Context) error {
	if s.outboxProcessor != nil {
		s.outboxProcessor.Stop()
	}

	if s.kafkaProducer != nil {
		if err := s.kafkaProducer.Close(); err != nil {
			s.logger.Error("Error closing Kafka producer", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Error closing database connection", "error", err)
		}
	}

	return s.httpServer.Shutdown(ctx)
}

// setupRoutes configures all the routes for our API
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.metricsMiddleware)

	s.router.Handle("/metrics", promhttp.HandlerFor(
		s.metrics.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Public kiosk surface
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.healthCheckHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders", s.createOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/payments/webhook", s.paymentWebhookHandler).Methods(http.MethodPost)
	api.HandleFunc("/payments/resend/{orderId}", s.resendPaymentLinkHandler).Methods(http.MethodPost)
	api.HandleFunc("/products", s.listProductsHandler).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", s.getProductHandler).Methods(http.MethodGet)
	api.HandleFunc("/cart/totals", s.cartTotalsHandler).Methods(http.MethodPost)

	api.HandleFunc("/auth/login", s.loginHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.logoutHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/first-login-reset", s.firstLoginResetHandler).Methods(http.MethodPost)

	// Admin surface, session required
	admin := s.router.PathPrefix("/api/v1/admin").Subrouter()
	admin.Use(s.authMiddleware)

	admin.HandleFunc("/orders", s.getOrdersHandler).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", s.getOrderByIDHandler).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", s.updateOrderHandler).Methods(http.MethodPut)
	admin.HandleFunc("/orders/{id}", s.deleteOrderHandler).Methods(http.MethodDelete)
	admin.HandleFunc("/orders/{orderId}/approve-cash", s.approveCashOrderHandler).Methods(http.MethodPost)

	admin.HandleFunc("/products", s.createProductHandler).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id}", s.updateProductHandler).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id}", s.deleteProductHandler).Methods(http.MethodDelete)

	admin.HandleFunc("/users", s.listUsersHandler).Methods(http.MethodGet)
	admin.HandleFunc("/users", s.requireAdmin(s.createUserHandler)).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}", s.getUserHandler).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", s.updateUserHandler).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}", s.requireAdmin(s.deleteUserHandler)).Methods(http.MethodDelete)
	admin.HandleFunc("/users/{id}/reset-password", s.resetPasswordHandler).Methods(http.MethodPut)
}
