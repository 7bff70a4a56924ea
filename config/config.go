package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Cookie     CookieConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Upload     UploadConfig
	OCR        OCRConfig
	Storage    StorageConfig
	OTP        OTPConfig
	Mail       MailConfig
	Scheduler  SchedulerConfig
	Compliance ComplianceConfig
}

type AppConfig struct {
	Name             string
	Env              string
	Port             string
	AllowAdminSignup bool
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// RedisConfig is only used when OTP or token revocation runs on redis
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CookieConfig struct {
	Domain   string
	Secure   bool
	SameSite string // strict, lax or none
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

type HTTPConfig struct {
	CORSAllowOrigins      []string
	MaxUploadSize         int64
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
	MetricsEnabled        bool
	// TrustedProxies lists the IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the socket address is always the client IP.
	TrustedProxies []string
}

type UploadConfig struct {
	AllowedExtensions []string
}

type OCRConfig struct {
	Languages   []string
	Parallelism int
}

// StorageConfig selects where uploaded documents are kept
type StorageConfig struct {
	Backend            string // local, gcs, s3
	LocalDir           string
	PublicBaseURL      string
	Bucket             string
	GCSCredentialsFile string
	S3Endpoint         string
	S3Region           string
	S3AccessKey        string
	S3SecretKey        string
	S3UsePathStyle     bool
}

type OTPConfig struct {
	Backend      string // memory, redis
	TTL          time.Duration
	Length       int
	TokenRevoker string // memory, redis
}

type MailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SchedulerConfig struct {
	Enabled             bool
	BlacklistRefresh    string
	UnverifiedPurge     string
	UnverifiedRetention time.Duration
}

// ComplianceConfig holds the thresholds used by the rules engine
type ComplianceConfig struct {
	SharedAddressUsers  int
	HighRiskRecordCount int
	HighRiskFraudScore  float64
}

// Load reads configuration with the following priority:
// 1. Environment variables with KYC_ prefix (e.g. KYC_MONGO_URI)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("KYC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// plain names used by older deployments
	_ = v.BindEnv("mongo.uri", "KYC_MONGO_URI", "MONGODB_URI")
	_ = v.BindEnv("jwt.secret", "KYC_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("mail.username", "KYC_MAIL_USERNAME", "EMAIL_FROM")
	_ = v.BindEnv("mail.password", "KYC_MAIL_PASSWORD", "EMAIL_PASS")
	_ = v.BindEnv("storage.gcs_credentials_file", "KYC_STORAGE_GCS_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS")

	cfg := &Config{
		App: AppConfig{
			Name:             v.GetString("app.name"),
			Env:              v.GetString("app.env"),
			Port:             v.GetString("app.port"),
			AllowAdminSignup: v.GetBool("app.allow_admin_signup"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongo.uri"),
			Database: v.GetString("mongo.database"),
			Timeout:  v.GetDuration("mongo.timeout"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Cookie: CookieConfig{
			Domain:   v.GetString("cookie.domain"),
			Secure:   v.GetBool("cookie.secure"),
			SameSite: v.GetString("cookie.same_site"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			CORSAllowOrigins:      splitList(v.GetString("http.cors_allow_origins")),
			MaxUploadSize:         v.GetInt64("http.max_upload_size"),
			AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
			MetricsEnabled:        v.GetBool("http.metrics_enabled"),
			TrustedProxies:        splitList(v.GetString("http.trusted_proxies")),
		},
		Upload: UploadConfig{
			AllowedExtensions: splitList(v.GetString("upload.allowed_extensions")),
		},
		OCR: OCRConfig{
			Languages:   splitList(v.GetString("ocr.languages")),
			Parallelism: v.GetInt("ocr.parallelism"),
		},
		Storage: StorageConfig{
			Backend:            v.GetString("storage.backend"),
			LocalDir:           v.GetString("storage.local_dir"),
			PublicBaseURL:      v.GetString("storage.public_base_url"),
			Bucket:             v.GetString("storage.bucket"),
			GCSCredentialsFile: v.GetString("storage.gcs_credentials_file"),
			S3Endpoint:         v.GetString("storage.s3_endpoint"),
			S3Region:           v.GetString("storage.s3_region"),
			S3AccessKey:        v.GetString("storage.s3_access_key"),
			S3SecretKey:        v.GetString("storage.s3_secret_key"),
			S3UsePathStyle:     v.GetBool("storage.s3_use_path_style"),
		},
		OTP: OTPConfig{
			Backend:      v.GetString("otp.backend"),
			TTL:          v.GetDuration("otp.ttl"),
			Length:       v.GetInt("otp.length"),
			TokenRevoker: v.GetString("otp.token_revoker"),
		},
		Mail: MailConfig{
			Enabled:  v.GetBool("mail.enabled"),
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			Username: v.GetString("mail.username"),
			Password: v.GetString("mail.password"),
			From:     v.GetString("mail.from"),
		},
		Scheduler: SchedulerConfig{
			Enabled:             v.GetBool("scheduler.enabled"),
			BlacklistRefresh:    v.GetString("scheduler.blacklist_refresh"),
			UnverifiedPurge:     v.GetString("scheduler.unverified_purge"),
			UnverifiedRetention: v.GetDuration("scheduler.unverified_retention"),
		},
		Compliance: ComplianceConfig{
			SharedAddressUsers:  v.GetInt("compliance.shared_address_users"),
			HighRiskRecordCount: v.GetInt("compliance.high_risk_record_count"),
			HighRiskFraudScore:  v.GetFloat64("compliance.high_risk_fraud_score"),
		},
	}

	if !v.IsSet("scheduler.enabled") {
		cfg.Scheduler.Enabled = true
	}
	if !v.IsSet("http.metrics_enabled") {
		cfg.HTTP.MetricsEnabled = true
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "kyc-hub"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017/kycdb"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "kycdb"
	}
	if cfg.Mongo.Timeout == 0 {
		cfg.Mongo.Timeout = 10 * time.Second
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "kyc-hub"
	}
	if cfg.Cookie.SameSite == "" {
		cfg.Cookie.SameSite = "lax"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"http://localhost:5173"}
	}
	if cfg.HTTP.MaxUploadSize == 0 {
		cfg.HTTP.MaxUploadSize = 16 << 20
	}
	if cfg.HTTP.AuthRateLimitRequests == 0 {
		cfg.HTTP.AuthRateLimitRequests = 10
	}
	if cfg.HTTP.AuthRateLimitWindow == 0 {
		cfg.HTTP.AuthRateLimitWindow = time.Minute
	}
	if len(cfg.Upload.AllowedExtensions) == 0 {
		cfg.Upload.AllowedExtensions = []string{"png", "jpg", "jpeg", "pdf", "tiff", "bmp"}
	}
	if len(cfg.OCR.Languages) == 0 {
		cfg.OCR.Languages = []string{"eng"}
	}
	if cfg.OCR.Parallelism == 0 {
		cfg.OCR.Parallelism = 2
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "./uploads"
	}
	if cfg.Storage.S3Region == "" {
		cfg.Storage.S3Region = "us-east-1"
	}
	if cfg.OTP.Backend == "" {
		cfg.OTP.Backend = "memory"
	}
	if cfg.OTP.TokenRevoker == "" {
		cfg.OTP.TokenRevoker = cfg.OTP.Backend
	}
	if cfg.OTP.TTL == 0 {
		cfg.OTP.TTL = 10 * time.Minute
	}
	if cfg.OTP.Length == 0 {
		cfg.OTP.Length = 6
	}
	if cfg.Mail.Host == "" {
		cfg.Mail.Host = "smtp.gmail.com"
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.Username
	}
	if cfg.Scheduler.BlacklistRefresh == "" {
		cfg.Scheduler.BlacklistRefresh = "@every 10m"
	}
	if cfg.Scheduler.UnverifiedPurge == "" {
		cfg.Scheduler.UnverifiedPurge = "@daily"
	}
	if cfg.Scheduler.UnverifiedRetention == 0 {
		cfg.Scheduler.UnverifiedRetention = 7 * 24 * time.Hour
	}
	if cfg.Compliance.SharedAddressUsers == 0 {
		cfg.Compliance.SharedAddressUsers = 3
	}
	if cfg.Compliance.HighRiskRecordCount == 0 {
		cfg.Compliance.HighRiskRecordCount = 2
	}
	if cfg.Compliance.HighRiskFraudScore == 0 {
		cfg.Compliance.HighRiskFraudScore = 70
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "local", "gcs", "s3":
	default:
		return fmt.Errorf("storage.backend must be one of local, gcs, s3; got %q", c.Storage.Backend)
	}
	if c.Storage.Backend != "local" && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required for the %s backend", c.Storage.Backend)
	}
	for _, backend := range []string{c.OTP.Backend, c.OTP.TokenRevoker} {
		if backend != "memory" && backend != "redis" {
			return fmt.Errorf("otp backends must be memory or redis; got %q", backend)
		}
	}
	if c.OTP.Length < 4 || c.OTP.Length > 10 {
		return fmt.Errorf("otp.length must be between 4 and 10")
	}
	if c.HTTP.MaxUploadSize <= 0 {
		return fmt.Errorf("http.max_upload_size must be positive")
	}
	switch c.Cookie.SameSite {
	case "strict", "lax", "none":
	default:
		return fmt.Errorf("cookie.same_site must be strict, lax or none")
	}

	if c.IsProduction() {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if !c.Cookie.Secure {
			return fmt.Errorf("cookie.secure must be true in production")
		}
		if !c.Mail.Enabled {
			return fmt.Errorf("mail.enabled must be true in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production")
			}
		}
	} else if c.JWT.Secret == "" {
		c.JWT.Secret = "development-secret-change-me"
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
