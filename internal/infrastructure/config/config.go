package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Batch       BatchConfig     `mapstructure:"batch"`
	Reference   ReferenceConfig `mapstructure:"reference"`
	Pipeline    PipelineConfig  `mapstructure:"pipeline"`
	Idempotency IdemConfig      `mapstructure:"idempotency"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
	Mode    string `mapstructure:"mode"` // batch | serve
}

// ServerConfig 服務器配置（serve 模式）
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// BatchConfig 批次模式設定（輸入輸出路徑與工作者數）
type BatchConfig struct {
	InputFile     string `mapstructure:"input_file"`
	OutputFile    string `mapstructure:"output_file"`
	ErrorTxtFile  string `mapstructure:"error_txt_file"`
	ErrorJSONFile string `mapstructure:"error_json_file"`
	Workers       int    `mapstructure:"workers"`
	MaxQueueSize  int    `mapstructure:"max_queue_size"`
}

// ReferenceConfig 參照資料快照設定
type ReferenceConfig struct {
	Base    string        `mapstructure:"base"` // 目錄路徑或 http(s) base URL
	Timeout time.Duration `mapstructure:"timeout"`
}

// PipelineConfig 管線決策參數
type PipelineConfig struct {
	Today            string  `mapstructure:"today"` // YYYY-MM-DD，密度生效窗口以此評估
	FuzzyAccept      float64 `mapstructure:"fuzzy_accept"`
	FuzzyReview      float64 `mapstructure:"fuzzy_review"`
	FuzzyTopK        int     `mapstructure:"fuzzy_top_k"`
	DensitySanityMin float64 `mapstructure:"density_sanity_min"`
	DensitySanityMax float64 `mapstructure:"density_sanity_max"`
}

// IdemConfig 冪等鍵存儲設定
type IdemConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	RedisAddr string        `mapstructure:"redis_addr"` // 空字串時使用記憶體存儲
	TTL       time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig 速率限制配置（serve 模式）
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件
	if err := godotenv.Load(); err != nil {
		if !strings.Contains(err.Error(), "no such file") {
			return nil, err
		}
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("app.mode", "APP_MODE")
	viper.BindEnv("batch.input_file", "INPUT_FILE")
	viper.BindEnv("batch.output_file", "OUTPUT_FILE")
	viper.BindEnv("batch.error_txt_file", "ERROR_TXT_FILE")
	viper.BindEnv("batch.error_json_file", "ERROR_JSON_FILE")
	viper.BindEnv("batch.workers", "BATCH_WORKERS")
	viper.BindEnv("reference.base", "REFERENCE_BASE")
	viper.BindEnv("pipeline.today", "PIPELINE_TODAY")
	viper.BindEnv("pipeline.fuzzy_accept", "LINK_FUZZY_ACCEPT")
	viper.BindEnv("pipeline.fuzzy_review", "LINK_FUZZY_REVIEW")
	viper.BindEnv("pipeline.density_sanity_min", "DENSITY_SANITY_MIN")
	viper.BindEnv("pipeline.density_sanity_max", "DENSITY_SANITY_MAX")
	viper.BindEnv("idempotency.enabled", "IDEMPOTENCY_ENABLED")
	viper.BindEnv("idempotency.redis_addr", "IDEMPOTENCY_REDIS_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// 未固定日期時以啟動當日為準；整批共用同一天，跨午夜不漂移
	if config.Pipeline.Today == "" {
		config.Pipeline.Today = time.Now().UTC().Format("2006-01-02")
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "ingredient-canonicalizer")
	viper.SetDefault("app.mode", "batch")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 批次設定
	viper.SetDefault("batch.input_file", "stage1_input.jsonl")
	viper.SetDefault("batch.output_file", "stage2_output.jsonl")
	viper.SetDefault("batch.error_txt_file", "stage2_errors.txt")
	viper.SetDefault("batch.error_json_file", "stage2_errors.json")
	viper.SetDefault("batch.workers", 5)
	viper.SetDefault("batch.max_queue_size", 100)

	// 參照資料設定
	viper.SetDefault("reference.base", "reference")
	viper.SetDefault("reference.timeout", "30s")

	// 管線設定
	viper.SetDefault("pipeline.today", "") // 空字串表示啟動時的日期
	viper.SetDefault("pipeline.fuzzy_accept", 0.92)
	viper.SetDefault("pipeline.fuzzy_review", 0.80)
	viper.SetDefault("pipeline.fuzzy_top_k", 5)
	viper.SetDefault("pipeline.density_sanity_min", 0.05)
	viper.SetDefault("pipeline.density_sanity_max", 2.0)

	// 冪等鍵設定
	viper.SetDefault("idempotency.enabled", true)
	viper.SetDefault("idempotency.redis_addr", "")
	viper.SetDefault("idempotency.ttl", "0")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 去重窗口預設
	viper.SetDefault("dedup_window", "1s")

	viper.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	switch config.App.Mode {
	case "batch", "serve":
	default:
		return fmt.Errorf("invalid app mode: %s", config.App.Mode)
	}

	if config.App.Mode == "serve" && config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers")
	}
	if config.Batch.MaxQueueSize <= 0 {
		return fmt.Errorf("invalid batch max queue size")
	}

	if config.Reference.Base == "" {
		return fmt.Errorf("reference base is required")
	}

	if config.Pipeline.FuzzyAccept < config.Pipeline.FuzzyReview {
		return fmt.Errorf("fuzzy accept threshold must be >= review threshold")
	}
	if config.Pipeline.FuzzyTopK <= 0 {
		return fmt.Errorf("invalid fuzzy top k")
	}
	if config.Pipeline.DensitySanityMin <= 0 || config.Pipeline.DensitySanityMax <= config.Pipeline.DensitySanityMin {
		return fmt.Errorf("invalid density sanity band")
	}

	if config.Pipeline.Today != "" {
		if _, err := time.Parse("2006-01-02", config.Pipeline.Today); err != nil {
			return fmt.Errorf("invalid pipeline today (want YYYY-MM-DD): %w", err)
		}
	}

	return nil
}
