package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Invoice   InvoiceConfig
	Log       LogConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Driver   string // sqlite or postgres
	Path     string // sqlite file
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours time.Duration
}

type AuthConfig struct {
	CredentialsFile string
}

// Credential is one entry of the static credentials file
type Credential struct {
	Username     string `mapstructure:"username"`
	DisplayName  string `mapstructure:"name"`
	PasswordHash string `mapstructure:"password_hash"`
}

type StorageConfig struct {
	Backend       string // local or s3
	OutputDir     string
	LogoDir       string
	UploadMaxSize int64
	S3Bucket      string
	S3Region      string
	S3Prefix      string
}

type InvoiceConfig struct {
	DefaultType    string
	CurrencySymbol string
	CurrencyCode   string
	MaxLineItems   int
	TemplatePath   string
	FontPath       string
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "invoicer")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", false)
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_PATH", "./data/invoicer.db")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "invoicer")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_ISSUER", "invoicer")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("AUTH_CREDENTIALS_FILE", "./credentials.yaml")
	viper.SetDefault("STORAGE_BACKEND", "local")
	viper.SetDefault("STORAGE_OUTPUT_DIR", "./storage/invoices")
	viper.SetDefault("STORAGE_LOGO_DIR", "./storage/logos")
	viper.SetDefault("UPLOAD_MAX_SIZE", 5242880)
	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_PREFIX", "invoices")
	viper.SetDefault("INVOICE_DEFAULT_TYPE", "standard")
	viper.SetDefault("INVOICE_CURRENCY_SYMBOL", "₹")
	viper.SetDefault("INVOICE_CURRENCY_CODE", "INR")
	viper.SetDefault("INVOICE_MAX_LINE_ITEMS", 10)
	viper.SetDefault("INVOICE_TEMPLATE_PATH", "")
	viper.SetDefault("PDF_FONT_PATH", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(viper.GetString("DB_DRIVER")),
			Path:     viper.GetString("DB_PATH"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			Issuer:      viper.GetString("JWT_ISSUER"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		Auth: AuthConfig{
			CredentialsFile: viper.GetString("AUTH_CREDENTIALS_FILE"),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(viper.GetString("STORAGE_BACKEND")),
			OutputDir:     viper.GetString("STORAGE_OUTPUT_DIR"),
			LogoDir:       viper.GetString("STORAGE_LOGO_DIR"),
			UploadMaxSize: viper.GetInt64("UPLOAD_MAX_SIZE"),
			S3Bucket:      viper.GetString("S3_BUCKET"),
			S3Region:      viper.GetString("S3_REGION"),
			S3Prefix:      viper.GetString("S3_PREFIX"),
		},
		Invoice: InvoiceConfig{
			DefaultType:    viper.GetString("INVOICE_DEFAULT_TYPE"),
			CurrencySymbol: viper.GetString("INVOICE_CURRENCY_SYMBOL"),
			CurrencyCode:   viper.GetString("INVOICE_CURRENCY_CODE"),
			MaxLineItems:   viper.GetInt("INVOICE_MAX_LINE_ITEMS"),
			TemplatePath:   viper.GetString("INVOICE_TEMPLATE_PATH"),
			FontPath:       viper.GetString("PDF_FONT_PATH"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// LoadCredentials reads the static credential table from a YAML file:
//
//	users:
//	  - username: alice
//	    name: Alice Example
//	    password_hash: $2a$10$...
func LoadCredentials(path string) ([]Credential, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	var creds []Credential
	if err := v.UnmarshalKey("users", &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(creds))
	for i, c := range creds {
		if c.Username == "" || c.PasswordHash == "" {
			return nil, fmt.Errorf("credentials entry %d: username and password_hash are required", i)
		}
		if seen[c.Username] {
			return nil, fmt.Errorf("credentials entry %d: duplicate username %q", i, c.Username)
		}
		seen[c.Username] = true
		if creds[i].DisplayName == "" {
			creds[i].DisplayName = c.Username
		}
	}
	return creds, nil
}
