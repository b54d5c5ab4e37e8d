// internal/config/config.go
package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogFormat      string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	MaxUploadMB    int64
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders a lib/pq keyword connection string.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host + " port=" + c.Port + " user=" + c.User +
		" password=" + c.Password + " dbname=" + c.DBName + " sslmode=" + c.SSLMode
}

type AppConfig struct {
	DataDir        string
	DefaultDataset string
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	AnalyticsTTLSeconds int
}

type LLMConfig struct {
	Provider    string
	APIBase     string
	APIKey      string
	Model       string
	AutoDetect  bool
	Temperature float64
	Timeout     time.Duration
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	Enabled         bool
	CredentialsJSON string
	CredentialsFile string
	FolderPath      string
}

type SessionConfig struct {
	IdleTTL      time.Duration
	JanitorSpec  string
	ChatTimeout  time.Duration
	MaxChatTurns int
	SimulationLT float64
	SimulationSL float64
}

var (
	once     sync.Once
	instance *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 90)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER_MAX_UPLOAD_MB", 32)

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "supplychain")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("APP_DATA_DIR", "./data")
	v.SetDefault("APP_DEFAULT_DATASET", "")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_ANALYTICS_TTL_SECONDS", 300)

	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("LLM_API_BASE", "http://localhost:11434/v1")
	v.SetDefault("LLM_API_KEY", "sk-no-key-required")
	v.SetDefault("LLM_MODEL", "qwen2.5:7b")
	v.SetDefault("LLM_AUTODETECT_MODEL", true)
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("LLM_TIMEOUT_SECONDS", 60)

	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_ENDPOINT", "localhost:9000")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "datasets")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", false)

	v.SetDefault("DRIVE_ENABLED", false)
	v.SetDefault("DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("DRIVE_CREDENTIALS_FILE", "")
	v.SetDefault("DRIVE_FOLDER_PATH", "")

	v.SetDefault("SESSION_IDLE_TTL_MINUTES", 120)
	v.SetDefault("SESSION_JANITOR_SPEC", "@every 10m")
	v.SetDefault("SESSION_MAX_CHAT_TURNS", 50)
	v.SetDefault("SIMULATION_LEAD_TIME_DAYS", 15)
	v.SetDefault("SIMULATION_SERVICE_LEVEL", 0.95)
}

// Load reads configuration once from .env, the environment and defaults.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		setDefaults(v)
		v.AutomaticEnv()

		instance = fromViper(v)
	})

	return instance
}

// FromViper builds a Config from an explicit viper instance. Used by tests and
// the CLI tools that do not want the process-wide singleton.
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	llmTimeout := time.Duration(v.GetInt("LLM_TIMEOUT_SECONDS")) * time.Second

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			LogFormat:      v.GetString("LOG_FORMAT"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			MaxUploadMB:    v.GetInt64("SERVER_MAX_UPLOAD_MB"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("DB_ENABLED"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			DataDir:        v.GetString("APP_DATA_DIR"),
			DefaultDataset: v.GetString("APP_DEFAULT_DATASET"),
		},
		Cache: CacheConfig{
			Enabled:             v.GetBool("CACHE_ENABLED"),
			RedisURL:            v.GetString("REDIS_URL"),
			RedisHost:           v.GetString("REDIS_HOST"),
			RedisPort:           v.GetString("REDIS_PORT"),
			RedisPassword:       v.GetString("REDIS_PASSWORD"),
			RedisDB:             v.GetInt("REDIS_DB"),
			AnalyticsTTLSeconds: v.GetInt("CACHE_ANALYTICS_TTL_SECONDS"),
		},
		LLM: LLMConfig{
			Provider:    v.GetString("LLM_PROVIDER"),
			APIBase:     v.GetString("LLM_API_BASE"),
			APIKey:      v.GetString("LLM_API_KEY"),
			Model:       v.GetString("LLM_MODEL"),
			AutoDetect:  v.GetBool("LLM_AUTODETECT_MODEL"),
			Temperature: v.GetFloat64("LLM_TEMPERATURE"),
			Timeout:     llmTimeout,
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
		},
		Drive: DriveConfig{
			Enabled:         v.GetBool("DRIVE_ENABLED"),
			CredentialsJSON: v.GetString("DRIVE_CREDENTIALS_JSON"),
			CredentialsFile: v.GetString("DRIVE_CREDENTIALS_FILE"),
			FolderPath:      v.GetString("DRIVE_FOLDER_PATH"),
		},
		Session: SessionConfig{
			IdleTTL:      time.Duration(v.GetInt("SESSION_IDLE_TTL_MINUTES")) * time.Minute,
			JanitorSpec:  v.GetString("SESSION_JANITOR_SPEC"),
			ChatTimeout:  llmTimeout,
			MaxChatTurns: v.GetInt("SESSION_MAX_CHAT_TURNS"),
			SimulationLT: v.GetFloat64("SIMULATION_LEAD_TIME_DAYS"),
			SimulationSL: v.GetFloat64("SIMULATION_SERVICE_LEVEL"),
		},
	}
}
