package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	adminapp "github.com/donatetrack/donatetrack/internal/admin/application"
	adminhttp "github.com/donatetrack/donatetrack/internal/admin/interfaces/http"
	analyticsapp "github.com/donatetrack/donatetrack/internal/analytics/application"
	analyticsmysql "github.com/donatetrack/donatetrack/internal/analytics/infrastructure/persistence/mysql"
	analyticshttp "github.com/donatetrack/donatetrack/internal/analytics/interfaces/http"
	beneficiaryapp "github.com/donatetrack/donatetrack/internal/beneficiary/application"
	beneficiarydomain "github.com/donatetrack/donatetrack/internal/beneficiary/domain"
	beneficiarymysql "github.com/donatetrack/donatetrack/internal/beneficiary/infrastructure/persistence/mysql"
	beneficiaryhttp "github.com/donatetrack/donatetrack/internal/beneficiary/interfaces/http"
	donationapp "github.com/donatetrack/donatetrack/internal/donation/application"
	donationdomain "github.com/donatetrack/donatetrack/internal/donation/domain"
	donationmsg "github.com/donatetrack/donatetrack/internal/donation/infrastructure/messaging"
	donationmysql "github.com/donatetrack/donatetrack/internal/donation/infrastructure/persistence/mysql"
	donationhttp "github.com/donatetrack/donatetrack/internal/donation/interfaces/http"
	frauddomain "github.com/donatetrack/donatetrack/internal/fraud/domain"
	identityapp "github.com/donatetrack/donatetrack/internal/identity/application"
	identitydomain "github.com/donatetrack/donatetrack/internal/identity/domain"
	identitymsg "github.com/donatetrack/donatetrack/internal/identity/infrastructure/messaging"
	identitymysql "github.com/donatetrack/donatetrack/internal/identity/infrastructure/persistence/mysql"
	identityhttp "github.com/donatetrack/donatetrack/internal/identity/interfaces/http"
	notificationapp "github.com/donatetrack/donatetrack/internal/notification/application"
	notificationdomain "github.com/donatetrack/donatetrack/internal/notification/domain"
	notificationmsg "github.com/donatetrack/donatetrack/internal/notification/infrastructure/messaging"
	notificationmysql "github.com/donatetrack/donatetrack/internal/notification/infrastructure/persistence/mysql"
	notificationhttp "github.com/donatetrack/donatetrack/internal/notification/interfaces/http"
	"github.com/donatetrack/donatetrack/internal/payment/gateway"
	projectapp "github.com/donatetrack/donatetrack/internal/project/application"
	projectdomain "github.com/donatetrack/donatetrack/internal/project/domain"
	projectmysql "github.com/donatetrack/donatetrack/internal/project/infrastructure/persistence/mysql"
	projecthttp "github.com/donatetrack/donatetrack/internal/project/interfaces/http"
	proofapp "github.com/donatetrack/donatetrack/internal/proof/application"
	proofdomain "github.com/donatetrack/donatetrack/internal/proof/domain"
	proofmsg "github.com/donatetrack/donatetrack/internal/proof/infrastructure/messaging"
	proofmysql "github.com/donatetrack/donatetrack/internal/proof/infrastructure/persistence/mysql"
	proofhttp "github.com/donatetrack/donatetrack/internal/proof/interfaces/http"
	"github.com/donatetrack/donatetrack/pkg/cache"
	"github.com/donatetrack/donatetrack/pkg/config"
	"github.com/donatetrack/donatetrack/pkg/db"
	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/metrics"
	"github.com/donatetrack/donatetrack/pkg/middleware"
	"github.com/donatetrack/donatetrack/pkg/mq"
	"github.com/donatetrack/donatetrack/pkg/outbox"
	"github.com/donatetrack/donatetrack/pkg/ratelimit"
	"github.com/donatetrack/donatetrack/pkg/token"
	"github.com/donatetrack/donatetrack/pkg/trace"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "配置文件路径")
	flag.Parse()

	ctx := context.Background()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Starting DonateTrack server",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment)

	// 3. 初始化链路追踪
	if cfg.Tracing.Enabled {
		shutdown, err := trace.InitTracer(cfg.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize tracer", "error", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error(ctx, "Failed to shutdown tracer", "error", err)
			}
		}()
	}

	// 4. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	// 5. 迁移数据表
	if err := database.AutoMigrate(
		&identitydomain.User{},
		&identitydomain.DonorProfile{},
		&identitydomain.NGOProfile{},
		&projectdomain.Project{},
		&projectdomain.Milestone{},
		&projectdomain.ProjectUpdate{},
		&donationdomain.Donation{},
		&proofdomain.Proof{},
		&proofdomain.ProofDonation{},
		&beneficiarydomain.Beneficiary{},
		&beneficiarydomain.AidRecord{},
		&notificationdomain.Notification{},
		&identitymsg.OutboxMessage{},
		&donationmsg.OutboxMessage{},
		&proofmsg.OutboxMessage{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	// 6. 初始化 Redis
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
	}
	defer redisCache.Close()

	// 7. 初始化限流器
	rateLimiter := ratelimit.NewRedisRateLimiter(redisCache.GetClient())

	// 8. 初始化 Kafka 生产者
	kafkaCfg := mq.KafkaConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		SessionTimeout: cfg.Kafka.SessionTimeout,
		MaxRetries:     cfg.Kafka.MaxRetries,
		RetryBackoff:   cfg.Kafka.RetryBackoff,
	}
	producer, err := mq.NewProducer(kafkaCfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize Kafka producer", "error", err)
	}
	defer producer.Close()

	// 9. 初始化指标
	metricsInstance := metrics.New(cfg.ServiceName)
	if err := metricsInstance.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
	}

	// 10. 初始化仓储
	userRepo := identitymysql.NewUserRepository(database.DB)
	donorRepo := identitymysql.NewDonorProfileRepository(database.DB)
	ngoRepo := identitymysql.NewNGOProfileRepository(database.DB)
	projectRepo := projectmysql.NewProjectRepository(database.DB)
	milestoneRepo := projectmysql.NewMilestoneRepository(database.DB)
	updateRepo := projectmysql.NewUpdateRepository(database.DB)
	donationRepo := donationmysql.NewDonationRepository(database.DB)
	proofRepo := proofmysql.NewProofRepository(database.DB)
	beneficiaryRepo := beneficiarymysql.NewBeneficiaryRepository(database.DB)
	notificationRepo := notificationmysql.NewNotificationRepository(database.DB)
	analyticsQueries := analyticsmysql.NewAnalyticsQueries(database.DB)

	// 11. 初始化事件发布器（Outbox）
	identityPublisher := identitymsg.NewOutboxEventPublisher(database.DB)
	donationPublisher := donationmsg.NewOutboxEventPublisher(database.DB)
	proofPublisher := proofmsg.NewOutboxEventPublisher(database.DB)

	// 12. 初始化支付网关
	var paymentGateway gateway.Gateway
	switch cfg.Payment.Provider {
	case "razorpay":
		paymentGateway = gateway.NewRazorpayGateway(cfg.Payment, metricsInstance)
	default:
		paymentGateway = gateway.NewMockGateway(cfg.Payment.KeySecret)
		logger.Warn(ctx, "Using mock payment gateway", "provider", cfg.Payment.Provider)
	}

	// 13. 初始化应用服务
	tokenManager := token.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer,
		time.Duration(cfg.JWT.ExpiresInHours)*time.Hour)
	idgen := utils.NewSnowflakeID(1)

	identityCmd := identityapp.NewIdentityCommandService(userRepo, donorRepo, ngoRepo, tokenManager, idgen, database.DB)
	identityQuery := identityapp.NewIdentityQueryService(userRepo, donorRepo, ngoRepo)
	projectCmd := projectapp.NewProjectCommandService(projectRepo, milestoneRepo, updateRepo, ngoRepo, idgen)
	projectQuery := projectapp.NewProjectQueryService(projectRepo, milestoneRepo, updateRepo, redisCache)
	donationCmd := donationapp.NewDonationCommandService(
		donationRepo, projectRepo, userRepo, donorRepo, ngoRepo,
		donationPublisher, paymentGateway, frauddomain.DefaultPolicy(),
		metricsInstance, idgen, database.DB)
	donationQuery := donationapp.NewDonationQueryService(donationRepo)
	proofSvc := proofapp.NewProofService(proofRepo, projectRepo, proofPublisher, idgen, database.DB)
	beneficiarySvc := beneficiaryapp.NewBeneficiaryService(beneficiaryRepo, projectRepo, idgen)
	notificationSvc := notificationapp.NewNotificationService(notificationRepo, metricsInstance)
	analyticsSvc := analyticsapp.NewAnalyticsService(analyticsQueries)
	adminSvc := adminapp.NewAdminService(ngoRepo, projectRepo, identityPublisher, database.DB)

	// 14. 启动 Outbox 中继与通知消费者
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	relay := outbox.NewRelay(database.DB, producer,
		"identity_outbox_messages",
		"donation_outbox_messages",
		"proof_outbox_messages")
	go relay.Run(bgCtx)

	dlq := mq.NewDeadLetterQueue(producer, "donatetrack.dlq")
	consumer := notificationmsg.NewConsumer(kafkaCfg, notificationSvc, donationRepo, dlq)
	go consumer.Run(bgCtx)

	// 15. 创建 HTTP 服务器
	httpServer := createHTTPServer(cfg, rateLimiter, tokenManager, handlers{
		identity:     identityhttp.NewHandler(identityCmd, identityQuery),
		project:      projecthttp.NewHandler(projectCmd, projectQuery),
		donation:     donationhttp.NewHandler(donationCmd, donationQuery),
		proof:        proofhttp.NewHandler(proofSvc),
		beneficiary:  beneficiaryhttp.NewHandler(beneficiarySvc),
		notification: notificationhttp.NewHandler(notificationSvc),
		analytics:    analyticshttp.NewHandler(analyticsSvc),
		admin:        adminhttp.NewHandler(adminSvc, identityCmd, identityQuery, donationCmd, donationQuery),
	})

	// 16. 启动 HTTP 服务器
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		logger.Info(ctx, "Starting HTTP server", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 17. 优雅关停
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "Shutting down DonateTrack server")

	bgCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}

	logger.Info(ctx, "DonateTrack server stopped")
}

// handlers 汇集各上下文的 HTTP 处理器
type handlers struct {
	identity     *identityhttp.Handler
	project      *projecthttp.Handler
	donation     *donationhttp.Handler
	proof        *proofhttp.Handler
	beneficiary  *beneficiaryhttp.Handler
	notification *notificationhttp.Handler
	analytics    *analyticshttp.Handler
	admin        *adminhttp.Handler
}

// createHTTPServer 创建 HTTP 服务器。角色权限在路由组边界统一施加，
// 处理器内部不再做角色分支。
func createHTTPServer(cfg *config.Config, rateLimiter ratelimit.RateLimiter, tm *token.Manager, h handlers) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 添加中间件
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.RateLimitMiddleware(rateLimiter, cfg.RateLimit))

	api := router.Group("/api/v1")

	// 公开路由：注册登录、项目与捐赠的公开视图
	h.identity.RegisterRoutes(api)
	h.project.RegisterPublicRoutes(api)
	h.donation.RegisterPublicRoutes(api)
	h.proof.RegisterPublicRoutes(api)
	h.beneficiary.RegisterPublicRoutes(api)

	// 登录后路由
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(tm))
	h.identity.RegisterProtectedRoutes(authed)
	h.notification.RegisterRoutes(authed)

	// 捐赠人路由
	donor := authed.Group("")
	donor.Use(middleware.RequireRole("donor", "admin"))
	h.donation.RegisterDonorRoutes(donor)
	h.proof.RegisterDonorRoutes(donor)
	h.analytics.RegisterDonorRoutes(donor)

	// 公益组织路由
	ngo := authed.Group("")
	ngo.Use(middleware.RequireRole("ngo"))
	h.project.RegisterNGORoutes(ngo)
	h.proof.RegisterNGORoutes(ngo)
	h.beneficiary.RegisterNGORoutes(ngo)
	h.analytics.RegisterNGORoutes(ngo)

	// 管理员路由
	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole("admin"))
	h.admin.RegisterRoutes(admin)
	h.proof.RegisterAdminRoutes(admin)
	h.analytics.RegisterAdminRoutes(admin)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}
