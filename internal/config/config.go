package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MpesaConfig holds the Daraja credentials used for STK push and C2B.
type MpesaConfig struct {
	Environment    string
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
	Timeout        time.Duration
}

// B2CConfig holds the disbursement account, which Safaricom issues separately.
type B2CConfig struct {
	Shortcode          string
	ConsumerKey        string
	ConsumerSecret     string
	InitiatorName      string
	SecurityCredential string
	ResultURL          string
	TimeoutURL         string
}

type Config struct {
	Port         string
	AllowOrigins string
	CountryCode  string
	JWTSecret    string
	AMQPURL      string
	Database     DatabaseConfig
	Redis        RedisConfig
	Mpesa        MpesaConfig
	B2C          B2CConfig
}

// Load reads the full service configuration from the environment.
func Load() *Config {
	env := GetEnv("MPESA_ENV", "sandbox")

	return &Config{
		Port:         GetEnv("PORT", "3000"),
		AllowOrigins: GetEnv("CORS_ALLOW_ORIGINS", "*"),
		CountryCode:  GetEnv("COUNTRY_CODE", "254"),
		JWTSecret:    GetEnv("API_JWT_SECRET", ""),
		AMQPURL:      GetEnv("AMQP_URL", ""),
		Database: DatabaseConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "mpesa"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
		},
		Mpesa: MpesaConfig{
			Environment:    env,
			BaseURL:        GetEnv("MPESA_BASE_URL", defaultBaseURL(env)),
			ConsumerKey:    GetEnv("CONSUMER_KEY", ""),
			ConsumerSecret: GetEnv("CONSUMER_SECRET", ""),
			Shortcode:      GetEnv("SHORTCODE", ""),
			Passkey:        GetEnv("PASSKEY", ""),
			CallbackURL:    GetEnv("STK_CALLBACK_URL", ""),
			Timeout:        GetDurationEnv("MPESA_TIMEOUT", 30*time.Second),
		},
		B2C: B2CConfig{
			Shortcode:          GetEnv("B2C_SHORTCODE", ""),
			ConsumerKey:        GetEnv("B2C_CONSUMER_KEY", ""),
			ConsumerSecret:     GetEnv("B2C_CONSUMER_SECRET", ""),
			InitiatorName:      GetEnv("B2C_USER_NAME", ""),
			SecurityCredential: GetEnv("B2C_SECURITY_CREDENTIAL", ""),
			ResultURL:          GetEnv("B2C_RESULT_URL", ""),
			TimeoutURL:         GetEnv("B2C_TIMEOUT_URL", ""),
		},
	}
}

func defaultBaseURL(env string) string {
	if env == "production" {
		return "https://api.safaricom.co.ke"
	}
	return "https://sandbox.safaricom.co.ke"
}
