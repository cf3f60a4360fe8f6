package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	CassandraHosts    []string
	CassandraKeyspace string
	ServerPort        string
	Environment       string
	JWTSecret         string
	InternalAPIKey    string
	ShutdownTimeout   time.Duration

	LogFilePath   string
	LogHMACKey    string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	return &Config{
		CassandraHosts:    splitHosts(getEnv("CASSANDRA_HOSTS", "cassandra")),
		CassandraKeyspace: getEnv("CASSANDRA_KEYSPACE", "notifications"),
		ServerPort:        getEnv("SERVER_PORT", "8085"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		InternalAPIKey:    getEnv("INTERNAL_API_KEY", "internal-key-change-in-production"),
		ShutdownTimeout:   getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		LogFilePath:   getEnv("LOG_FILE_PATH", "/var/log/notifications-service/app.log"),
		LogHMACKey:    getEnv("LOG_HMAC_KEY", "default-hmac-key-change-in-production"),
		LogMaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
	}
}

func splitHosts(v string) []string {
	var hosts []string
	for _, h := range strings.Split(v, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
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
