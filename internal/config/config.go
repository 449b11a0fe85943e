package config

import (
	"errors"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	Env               string
	LogLevel          string
	HTTPAddr          string
	DBType            string
	DBDSN             string
	FileHabits        string
	FileCheckIns      string
	FileNotifications string
	AuthToken         string
	AuthServiceURL    string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{
			Env:               getEnv("APP_ENV", "development"),
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
			DBType:            getEnv("STORAGE_BACKEND", "file"),
			DBDSN:             getEnv("POSTGRES_DSN", ""),
			FileHabits:        getEnv("HABITS_FILE", "data/habits.json"),
			FileCheckIns:      getEnv("CHECKINS_FILE", "data/checkins.json"),
			FileNotifications: getEnv("NOTIFICATIONS_FILE", "data/notifications.json"),
			AuthToken:         getEnv("AUTH_TOKEN", "MOCK-TOKEN"),
			AuthServiceURL:    getEnv("AUTH_SERVICE_URL", ""),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && (c.FileHabits == "" || c.FileCheckIns == "" || c.FileNotifications == "") {
		return errors.New("File storage requires HABITS_FILE, CHECKINS_FILE and NOTIFICATIONS_FILE to be set")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.AuthServiceURL == "" {
		return errors.New("AUTH_SERVICE_URL is required outside development")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
