package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kyc-hub/config"
	"kyc-hub/controllers"
	db "kyc-hub/database"
	"kyc-hub/jobs"
	"kyc-hub/logger"
	"kyc-hub/metrics"
	"kyc-hub/models"
	"kyc-hub/ocr"
	"kyc-hub/ocr/tesseract"
	"kyc-hub/routes"
	"kyc-hub/services"
	"kyc-hub/storage"
	"kyc-hub/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning Error loading .env file:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatal("Failed to create logger: ", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("Server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongo, err := db.Connect(ctx, cfg.Mongo, zl)
	if err != nil {
		return err
	}
	defer mongo.Disconnect(context.Background())
	if err := mongo.EnsureIndexes(ctx); err != nil {
		zl.Warn("Failed to create indexes", zap.Error(err))
	}

	files, err := storage.New(ctx, cfg.Storage, zl)
	if err != nil {
		return err
	}
	if c, ok := files.(io.Closer); ok {
		defer c.Close()
	}

	otps, revoker, closeRedis, err := sessionStores(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer closeRedis()

	var mailer services.Mailer = utils.LogMailer{Log: zl}
	if cfg.Mail.Enabled {
		mailer = utils.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password,
			cfg.Mail.From, int(cfg.OTP.TTL.Minutes()))
	}

	engine := tesseract.New(cfg.OCR.Languages...)
	processor := ocr.NewProcessor(engine, ocr.WithParallelism(cfg.OCR.Parallelism), ocr.WithLogger(zl))

	users := db.NewUserRepository(mongo)
	records := db.NewRecordRepository(mongo)
	alerts := db.NewAlertRepository(mongo)
	hashes := db.NewHashRepository(mongo)
	blacklist := db.NewBlacklistRepository(mongo)

	audit := services.NewAuditService(db.NewAuditRepository(mongo), zl)
	rules := services.NewComplianceEngine(records, blacklist, services.ComplianceRules{
		SharedAddressUsers:  cfg.Compliance.SharedAddressUsers,
		HighRiskRecordCount: cfg.Compliance.HighRiskRecordCount,
		HighRiskFraudScore:  cfg.Compliance.HighRiskFraudScore,
	}, zl)
	if err := rules.RefreshBlacklist(ctx); err != nil {
		zl.Warn("Failed to load Aadhaar blacklist", zap.Error(err))
	}

	tokens := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.Issuer)
	auth := services.NewAuthService(users, otps, revoker, tokens, mailer, audit, services.AuthConfig{
		OTPLength:        cfg.OTP.Length,
		OTPTTL:           cfg.OTP.TTL,
		AllowAdminSignup: cfg.App.AllowAdminSignup,
	}, zl)
	userService := services.NewUserService(users, audit, zl)

	var stats *metrics.Metrics
	if cfg.HTTP.MetricsEnabled {
		stats = metrics.New()
	}

	handler := &controllers.Handler{
		Auth: auth,
		KYC: services.NewKYCService(processor, files, records, hashes, alerts, rules, audit, services.KYCConfig{
			AllowedExtensions: cfg.Upload.AllowedExtensions,
			MaxUploadSize:     cfg.HTTP.MaxUploadSize,
		}, zl),
		Records:    services.NewRecordService(records, files, audit, zl),
		Review:     services.NewReviewService(records, alerts, audit, zl),
		Users:      userService,
		Compliance: services.NewComplianceService(rules, users, records, alerts, blacklist),
		Audit:      audit,
		DB:         mongo,
		OCR: controllers.OCRInfo{
			Engine:            engine.Name(),
			Version:           engine.Version(),
			Languages:         cfg.OCR.Languages,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
			MaxUploadMB:       cfg.HTTP.MaxUploadSize >> 20,
			DocumentTypes:     []string{models.DocTypeAadhaar, models.DocTypePAN},
		},
		Cookie:    cfg.Cookie,
		MaxUpload: cfg.HTTP.MaxUploadSize,
		Metrics:   stats,
		Log:       zl,
	}

	if cfg.Scheduler.Enabled {
		scheduler, err := jobs.New(cfg.Scheduler, rules, userService, zl)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			scheduler.Stop(stopCtx)
		}()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = cfg.HTTP.MaxUploadSize
	r.Use(logger.Recovery(zl), logger.GinMiddleware(zl))
	err = routes.SetupRoutes(r, handler, auth, routes.Options{
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AuthRateLimit:    cfg.HTTP.AuthRateLimitRequests,
		AuthRateWindow:   cfg.HTTP.AuthRateLimitWindow,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		Metrics:          stats,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zl.Info("Starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sessionStores picks the OTP and token revocation backends
func sessionStores(ctx context.Context, cfg *config.Config, zl *zap.Logger) (services.OTPStore, services.TokenRevoker, func(), error) {
	var otps services.OTPStore = services.NewMemoryOTPStore()
	var revoker services.TokenRevoker = services.NewMemoryRevoker()
	if cfg.OTP.Backend != "redis" && cfg.OTP.TokenRevoker != "redis" {
		return otps, revoker, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, err
	}
	zl.Info("Connected to Redis", zap.String("host", cfg.Redis.Host))

	if cfg.OTP.Backend == "redis" {
		otps = services.NewRedisOTPStore(rdb)
	}
	if cfg.OTP.TokenRevoker == "redis" {
		revoker = services.NewRedisRevoker(rdb)
	}
	return otps, revoker, func() { _ = rdb.Close() }, nil
}
