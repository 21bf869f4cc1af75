package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	JWTSecret   string           `json:"jwt_secret"`
	CORSOrigins []string         `json:"cors_origins"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Database    DatabaseConfig   `json:"database"`
	Embedding   EmbeddingConfig  `json:"embedding"`
	Archive     ArchiveConfig    `json:"archive"`
	OrphanAudit OrphanAuditConfig `json:"orphan_audit"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type EmbeddingConfig struct {
	Provider    string      `json:"provider"`
	Model       string      `json:"model"`
	Dim         int         `json:"dim"`
	PoolSize    int         `json:"pool_size"`
	CacheSize   int         `json:"cache_size"`
	CacheTTLMin int         `json:"cache_ttl_min"`
	Data        interface{} `json:"data"`
}

type ArchiveConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type OrphanAuditConfig struct {
	Enable bool   `json:"enable"`
	Spec   string `json:"spec"`
	Limit  int    `json:"limit"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Embedding.Provider == "" {
		return nil, fmt.Errorf("embedding.provider is required")
	}
	if cfg.Embedding.Model == "" {
		return nil, fmt.Errorf("embedding.model is required")
	}
	if cfg.Embedding.Dim == 0 {
		cfg.Embedding.Dim = 384
	}
	if cfg.Embedding.Dim < 0 {
		return nil, fmt.Errorf("embedding.dim must be positive")
	}
	if cfg.Embedding.PoolSize == 0 {
		cfg.Embedding.PoolSize = 4
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.CacheTTLMin == 0 {
		cfg.Embedding.CacheTTLMin = 120
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.OrphanAudit.Spec == "" {
		cfg.OrphanAudit.Spec = "*/30 * * * *"
	}
	if cfg.OrphanAudit.Limit == 0 {
		cfg.OrphanAudit.Limit = 100
	}
	return &cfg, nil
}
