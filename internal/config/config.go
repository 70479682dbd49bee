package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AdvisoryServiceConfig struct {
	Port         string
	LogDir       string
	GinMode      string
	DelayCfg     DelayConfig
	WorkerCfg    WorkerConfig
	StoreCfg     StoreConfig
	RedisCfg     RedisConfig
	MinioCfg     MinioConfig
	RabbitMQCfg  RabbitMQConfig
	PostgresCfg  PostgresConfig
	GeminiAPICfg GeminiAPIConfig
	WeatherCfg   WeatherConfig
}

// DelayConfig holds the simulated latency applied before each canned result is released.
type DelayConfig struct {
	SoilAnalysis     time.Duration
	CropAnalysis     time.Duration
	ChatReply        time.Duration
	ReportExtraction time.Duration
}

type WorkerConfig struct {
	NumWorkers int
	QueueSize  int
}

type StoreConfig struct {
	Backend string // memory | redis
	ViewTTL time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinioConfig struct {
	Enabled        bool
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioLocation  string
	MinioSecure    string
	RetentionDays  int
}

type RabbitMQConfig struct {
	Enabled  bool
	Host     string
	Username string
	Password string
	Port     string
}

type PostgresConfig struct {
	Enabled  bool
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type GeminiAPIConfig struct {
	APIKeys   []string
	FlashName string
	ProName   string
}

type WeatherConfig struct {
	APIKey          string
	BaseURL         string
	Lat             string
	Lon             string
	Location        string
	BreakerFailures int
	BreakerOpenFor  time.Duration
}

func New() *AdvisoryServiceConfig {
	return &AdvisoryServiceConfig{
		Port:    getEnvOrDefault("PORT", "8088"),
		LogDir:  getEnvOrDefault("LOG_DIR", "/krishi/log/advisory_service"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
		DelayCfg: DelayConfig{
			SoilAnalysis:     getEnvMillis("SOIL_ANALYSIS_DELAY_MS", 3000),
			CropAnalysis:     getEnvMillis("CROP_ANALYSIS_DELAY_MS", 3000),
			ChatReply:        getEnvMillis("CHAT_REPLY_DELAY_MS", 1500),
			ReportExtraction: getEnvMillis("REPORT_EXTRACTION_DELAY_MS", 2000),
		},
		WorkerCfg: WorkerConfig{
			NumWorkers: getEnvInt("WORKER_COUNT", 4),
			QueueSize:  getEnvInt("WORKER_QUEUE_SIZE", 64),
		},
		StoreCfg: StoreConfig{
			Backend: getEnvOrDefault("STORE_BACKEND", "memory"),
			ViewTTL: time.Duration(getEnvInt("VIEW_TTL_MINUTES", 30)) * time.Minute,
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinioCfg: MinioConfig{
			Enabled:        getEnvBool("MINIO_ENABLED", false),
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9407"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:  getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
			RetentionDays:  getEnvInt("MINIO_REPORT_RETENTION_DAYS", 30),
		},
		RabbitMQCfg: RabbitMQConfig{
			Enabled:  getEnvBool("RABBITMQ_ENABLED", false),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		PostgresCfg: PostgresConfig{
			Enabled:  getEnvBool("POSTGRES_ENABLED", false),
			DBname:   getEnvOrDefault("POSTGRES_DB", "krishi"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		GeminiAPICfg: GeminiAPIConfig{
			APIKeys:   getEnvList("GEMINI_KEYS"),
			FlashName: getEnvOrDefault("GEMINI_FLASH_MODEL", "gemini-2.5-flash"),
			ProName:   getEnvOrDefault("GEMINI_PRO_MODEL", "gemini-2.5-pro"),
		},
		WeatherCfg: WeatherConfig{
			APIKey:          getEnvOrDefault("WEATHER_API_KEY", ""),
			BaseURL:         getEnvOrDefault("WEATHER_BASE_URL", "https://api.openweathermap.org/data/3.0"),
			Lat:             getEnvOrDefault("WEATHER_LAT", "30.9010"),
			Lon:             getEnvOrDefault("WEATHER_LON", "75.8573"),
			Location:        getEnvOrDefault("WEATHER_LOCATION", "Punjab, India"),
			BreakerFailures: getEnvInt("WEATHER_CB_FAILURES", 3),
			BreakerOpenFor:  getEnvMillis("WEATHER_CB_OPEN_MS", 30000),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvMillis reads a millisecond count. Negative values are treated as zero.
func getEnvMillis(key string, defaultValue int) time.Duration {
	ms := getEnvInt(key, defaultValue)
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
