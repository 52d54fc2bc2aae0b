package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	AuthProviderFirebase = "firebase"
	AuthProviderLocal    = "local"
)

type Config struct {
	Port string

	MongoURI          string
	MongoDatabase     string
	MongoTransactions bool
	MongoTimeout      time.Duration

	StripeSecretKey string
	SiteDomain      string
	Currency        string

	AuthProvider            string
	FirebaseCredentialsFile string
	JWTSecret               string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	ReceiptBucket  string

	LogLevel    string
	LogFile     string
	CORSOrigins string
}

// Load reads configuration from the environment, after loading a .env file
// if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "3000"),
		MongoURI:                os.Getenv("MONGO_URI"),
		MongoDatabase:           getEnv("MONGO_DB", "zap_shift_db"),
		MongoTransactions:       getEnvAsBool("MONGO_TRANSACTIONS", false),
		MongoTimeout:            getEnvAsDuration("MONGO_TIMEOUT", 10*time.Second),
		StripeSecretKey:         os.Getenv("STRIPE_SECRET_KEY"),
		SiteDomain:              strings.TrimRight(os.Getenv("SITE_DOMAIN"), "/"),
		Currency:                strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),
		AuthProvider:            strings.ToLower(getEnv("AUTH_PROVIDER", AuthProviderFirebase)),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "./serviceAccountKey.json"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		MinioEndpoint:           os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:          getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:          getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioUseSSL:             getEnvAsBool("MINIO_USE_SSL", false),
		ReceiptBucket:           getEnv("RECEIPT_BUCKET", "parcel-receipts"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFile:                 os.Getenv("LOG_FILE"),
		CORSOrigins:             getEnv("CORS_ORIGINS", "*"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	required := map[string]string{
		"MONGO_URI":         c.MongoURI,
		"STRIPE_SECRET_KEY": c.StripeSecretKey,
		"SITE_DOMAIN":       c.SiteDomain,
	}
	for _, key := range []string{"MONGO_URI", "STRIPE_SECRET_KEY", "SITE_DOMAIN"} {
		if required[key] == "" {
			return errors.Errorf("missing required environment variable %s", key)
		}
	}

	switch c.AuthProvider {
	case AuthProviderFirebase:
		if c.FirebaseCredentialsFile == "" {
			return errors.New("missing required environment variable FIREBASE_CREDENTIALS_FILE")
		}
	case AuthProviderLocal:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_PROVIDER=local")
		}
	default:
		return errors.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}
	return nil
}

// ReceiptsEnabled reports whether object storage for payment receipts is
// configured.
func (c *Config) ReceiptsEnabled() bool {
	return c.MinioEndpoint != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
