package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	Storage  StorageConfig  `json:"storage"`
	GCS      GCSConfig      `json:"gcs"`
	Nomod    NomodConfig    `json:"nomod"`
	Email    EmailConfig    `json:"email"`
	FCM      FCMConfig      `json:"fcm"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
	BaseURL     string `json:"base_url"`
	AppScheme   string `json:"app_scheme"` // deep-link scheme for payment redirects
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
}

type AuthConfig struct {
	JWTSecret        string `json:"jwt_secret"`
	JWTRefreshSecret string `json:"jwt_refresh_secret"`
}

type StorageConfig struct {
	Type      string `json:"type"`       // "local" or "gcs"
	LocalPath string `json:"local_path"` // directory for local uploads
	LocalURL  string `json:"local_url"`  // base URL files are served from
}

type GCSConfig struct {
	BucketName      string `json:"bucket_name"`
	ProjectID       string `json:"project_id"`
	CredentialsPath string `json:"credentials_path"`
}

type NomodConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type EmailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	From     string `json:"from"`
}

type FCMConfig struct {
	ServerKey string `json:"server_key"`
	Endpoint  string `json:"endpoint"`
}

func (d *DatabaseConfig) DSN() string {
	// Cloud SQL Unix socket support
	if len(d.Host) > 0 && d.Host[0] == '/' {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
			d.Host, d.User, d.Password, d.DBName)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.DBName)
}

// findProjectRoot finds the project root by looking for go.mod file
func findProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func Load() (*Config, error) {
	envPaths := []string{}
	if projectRoot := findProjectRoot(); projectRoot != "" {
		envPaths = append(envPaths, filepath.Join(projectRoot, ".env"))
	}
	envPaths = append(envPaths, "../../.env", ".env")

	loaded := false
	for _, envPath := range envPaths {
		if err := godotenv.Load(envPath); err == nil {
			loaded = true
			break
		}
	}
	if !loaded {
		fmt.Printf("Failed to load .env file from any location, using system environment variables\n")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "4006"),
			Environment: getEnv("ENVIRONMENT", "development"),
			BaseURL:     getEnv("BASE_URL", "http://localhost:4006"),
			AppScheme:   getEnv("APP_SCHEME", "uaevisaapp"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "uae_visa"),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", ""),
			JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "local"),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			LocalURL:  getEnv("STORAGE_LOCAL_URL", "http://localhost:4006/files"),
		},
		GCS: GCSConfig{
			BucketName:      getEnv("GCS_BUCKET_NAME", ""),
			ProjectID:       getEnv("GOOGLE_CLOUD_PROJECT", ""),
			CredentialsPath: getEnv("GCS_CREDENTIALS_PATH", ""),
		},
		Nomod: NomodConfig{
			APIKey:  getEnv("NOMOD_API_KEY", ""),
			BaseURL: getEnv("NOMOD_API_BASE_URL", "https://api.nomod.com"),
		},
		Email: EmailConfig{
			Host:     getEnv("EMAIL_HOST", ""),
			Port:     getEnvInt("EMAIL_PORT", 587),
			User:     getEnv("EMAIL_USER", ""),
			Password: getEnv("EMAIL_PASS", ""),
			From:     getEnv("EMAIL_FROM", ""),
		},
		FCM: FCMConfig{
			ServerKey: getEnv("FCM_SERVER_KEY", ""),
			Endpoint:  getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.Auth.JWTRefreshSecret == "" {
		cfg.Auth.JWTRefreshSecret = cfg.Auth.JWTSecret
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err == nil {
			return n
		}
	}
	return defaultValue
}
