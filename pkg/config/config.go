package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the caller-side configuration for the CLI harness and its
// external collaborators (persistence, cache, metrics). The engine package
// itself takes no dependency on this: no environment variables are consumed
// by the core, only by the code that drives it.
type Config struct {
	Env  string
	Port int

	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Engine   EngineConfig
	Export   ExportConfig
	Metrics  MetricsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// EngineConfig carries the evolutionary driver's defaults, overridable per
// run by the orchestration layer.
type EngineConfig struct {
	PopulationSize int
	MaxGenerations int
	MutationRate   float64
	CrossoverRate  float64
	ElitismCount   int
	TournamentSize int
	RunTimeout     time.Duration
	WorkerConcurrency int
}

// ExportConfig controls where rendered timetables land on disk.
type ExportConfig struct {
	StorageDir string
}

// MetricsConfig toggles the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Engine = EngineConfig{
		PopulationSize:    v.GetInt("ENGINE_POPULATION_SIZE"),
		MaxGenerations:    v.GetInt("ENGINE_MAX_GENERATIONS"),
		MutationRate:      v.GetFloat64("ENGINE_MUTATION_RATE"),
		CrossoverRate:     v.GetFloat64("ENGINE_CROSSOVER_RATE"),
		ElitismCount:      v.GetInt("ENGINE_ELITISM_COUNT"),
		TournamentSize:    v.GetInt("ENGINE_TOURNAMENT_SIZE"),
		RunTimeout:        parseDuration(v.GetString("ENGINE_RUN_TIMEOUT"), 2*time.Minute),
		WorkerConcurrency: v.GetInt("ENGINE_WORKER_CONCURRENCY"),
	}

	cfg.Export = ExportConfig{
		StorageDir: v.GetString("EXPORT_STORAGE_DIR"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
		Addr:    v.GetString("METRICS_ADDR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable_engine")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENGINE_POPULATION_SIZE", 100)
	v.SetDefault("ENGINE_MAX_GENERATIONS", 1000)
	v.SetDefault("ENGINE_MUTATION_RATE", 0.1)
	v.SetDefault("ENGINE_CROSSOVER_RATE", 0.8)
	v.SetDefault("ENGINE_ELITISM_COUNT", 5)
	v.SetDefault("ENGINE_TOURNAMENT_SIZE", 5)
	v.SetDefault("ENGINE_RUN_TIMEOUT", "2m")
	v.SetDefault("ENGINE_WORKER_CONCURRENCY", 2)

	v.SetDefault("EXPORT_STORAGE_DIR", "./exports")

	v.SetDefault("ENABLE_METRICS", false)
	v.SetDefault("METRICS_ADDR", ":9090")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
