package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port      int              `json:"port"`
	APISecret string           `json:"api_secret"`
	LogConfig logger.LogConfig `json:"log_config"`
	Database  DatabaseConfig   `json:"database"`
	AI        AIConfig         `json:"ai"`
	RAG       RAGConfig        `json:"rag"`
	Upload    UploadConfig     `json:"upload"`
	Splitter  SplitterConfig   `json:"splitter"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type AIConfig struct {
	Provider             string      `json:"provider"`
	Model                string      `json:"model"`
	EmbedProvider        string      `json:"embed_provider"`
	EmbedModel           string      `json:"embed_model"`
	MaxRetries           int         `json:"max_retries"`
	TimeoutSeconds       int         `json:"timeout_seconds"`
	EmbedCacheSize       int         `json:"embed_cache_size"`
	EmbedCacheTTLMinutes int         `json:"embed_cache_ttl_minutes"`
	EmbedCacheMaxAgeDays int         `json:"embed_cache_max_age_days"`
	Data                 interface{} `json:"data"`
}

// RAGConfig holds the retrieval tuning knobs.
type RAGConfig struct {
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	VectorWeight        float64 `json:"vector_weight"`
	KeywordWeight       float64 `json:"keyword_weight"`
	InsertBatchSize     int     `json:"insert_batch_size"`
}

type UploadConfig struct {
	FileStore          FileStoreConfig `json:"file_store"`
	MaxFileSizeMB      int             `json:"max_file_size_mb"`
	CleanupMaxAgeHours int             `json:"cleanup_max_age_hours"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type SplitterConfig struct {
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
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
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.EmbedProvider == "" {
		cfg.AI.EmbedProvider = cfg.AI.Provider
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.AI.MaxRetries <= 0 {
		cfg.AI.MaxRetries = 3
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 120
	}
	if cfg.AI.EmbedCacheSize <= 0 {
		cfg.AI.EmbedCacheSize = 10000
	}
	if cfg.AI.EmbedCacheTTLMinutes <= 0 {
		cfg.AI.EmbedCacheTTLMinutes = 120
	}
	if cfg.AI.EmbedCacheMaxAgeDays <= 0 {
		cfg.AI.EmbedCacheMaxAgeDays = 30
	}
	if cfg.RAG.TopK <= 0 {
		cfg.RAG.TopK = 10
	}
	if cfg.RAG.SimilarityThreshold <= 0 {
		cfg.RAG.SimilarityThreshold = 0.65
	}
	if cfg.RAG.VectorWeight <= 0 {
		cfg.RAG.VectorWeight = 0.7
	}
	if cfg.RAG.KeywordWeight <= 0 {
		cfg.RAG.KeywordWeight = 0.3
	}
	if cfg.RAG.InsertBatchSize <= 0 {
		cfg.RAG.InsertBatchSize = 100
	}
	if cfg.Upload.MaxFileSizeMB <= 0 {
		cfg.Upload.MaxFileSizeMB = 32
	}
	if cfg.Upload.CleanupMaxAgeHours <= 0 {
		cfg.Upload.CleanupMaxAgeHours = 24
	}
	if cfg.Upload.FileStore.Type == "" {
		cfg.Upload.FileStore.Type = "local"
		cfg.Upload.FileStore.Data = map[string]interface{}{"dir": "./data/uploads"}
	}
	if cfg.Splitter.ChunkSize <= 0 {
		cfg.Splitter.ChunkSize = 800
	}
	if cfg.Splitter.ChunkOverlap <= 0 || cfg.Splitter.ChunkOverlap >= cfg.Splitter.ChunkSize {
		cfg.Splitter.ChunkOverlap = 80
	}
}
