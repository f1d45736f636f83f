// Package config loads the service configuration: built-in defaults, then an optional YAML
// file, then .env files and the environment. The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bububa/purecheck/nutrition"
	"github.com/bububa/purecheck/scoring"
	"github.com/bububa/purecheck/upload"
)

// DefaultEnvFile is loaded when present and no env file is given explicitly
const DefaultEnvFile = ".env"

type Config struct {
	Server    ServerConfig                   `yaml:"server"`
	LLM       LLMConfig                      `yaml:"llm"`
	Extractor ModelConfig                    `yaml:"extractor"`
	Reasoner  ReasonerConfig                 `yaml:"reasoner"`
	Chat      ChatConfig                     `yaml:"chat"`
	Embedding EmbeddingConfig                `yaml:"embedding"`
	Index     IndexConfig                    `yaml:"index"`
	Upload    UploadConfig                   `yaml:"upload"`
	Session   SessionConfig                  `yaml:"session"`
	Baseline  map[nutrition.Nutrient]float64 `yaml:"baseline"`
	Policy    nutrition.Policy               `yaml:"policy"`
	Log       LogConfig                      `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
	// Mode gin mode
	Mode         string `yaml:"mode" validate:"oneof=debug release test"`
	CookieName   string `yaml:"cookie_name" validate:"required"`
	CookieSecure bool   `yaml:"cookie_secure"`
	// RequestTimeout bounds a whole request, 0 disables it
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gte=0"`
}

// LLMConfig is the OpenAI compatible endpoint every model is served from
type LLMConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url" validate:"omitempty,url"`
	APIType    string        `yaml:"api_type" validate:"oneof=openai azure"`
	APIVersion string        `yaml:"api_version"`
	Timeout    time.Duration `yaml:"timeout" validate:"gte=0"`
}

type ModelConfig struct {
	Model       string        `yaml:"model" validate:"required"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
}

type ReasonerConfig struct {
	ModelConfig `yaml:",inline"`
	// Engine llm or rules
	Engine string `yaml:"engine" validate:"oneof=llm rules"`
	// Structured uses instructor JSON mode instead of free text
	Structured bool             `yaml:"structured"`
	Formulas   scoring.Formulas `yaml:"formulas"`
}

type ChatConfig struct {
	ModelConfig `yaml:",inline"`
	TopK        int `yaml:"top_k" validate:"gte=1"`
}

type EmbeddingConfig struct {
	// Provider openai, azure, cohere or gemini. Empty follows llm.api_type.
	Provider string `yaml:"provider" validate:"omitempty,oneof=openai azure cohere gemini"`
	// APIKey authenticates cohere and gemini
	APIKey    string `yaml:"api_key" validate:"required_if=Provider cohere,required_if=Provider gemini"`
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
	Model     string `yaml:"model" validate:"required"`
	BatchSize int    `yaml:"batch_size" validate:"gte=1"`
	// Dimensions shortens the vectors on models that support it, zero keeps the default
	Dimensions int `yaml:"dimensions" validate:"gte=0"`
}

type IndexConfig struct {
	// Engine chromem, memory or milvus
	Engine string `yaml:"engine" validate:"oneof=chromem memory milvus"`
	// Path chromem persistence directory, empty keeps the index in memory
	Path         string       `yaml:"path"`
	Milvus       MilvusConfig `yaml:"milvus"`
	Collection   string       `yaml:"collection" validate:"required"`
	ChunkSize    int          `yaml:"chunk_size" validate:"gte=1"`
	ChunkOverlap int          `yaml:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
	// TokenCounter words or tiktoken
	TokenCounter string `yaml:"token_counter" validate:"oneof=words tiktoken"`
	Encoding     string `yaml:"encoding"`
	// Sources are ingested by `purecheck ingest` when no argument is given
	Sources []string `yaml:"sources"`
}

type MilvusConfig struct {
	Address  string `yaml:"address"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"db_name"`
}

type UploadConfig struct {
	Allowed      []string `yaml:"allowed" validate:"min=1,dive,required"`
	MaxBytes     int64    `yaml:"max_bytes" validate:"gte=1"`
	SniffContent bool     `yaml:"sniff_content"`
	// SingleExtension rejects filenames carrying more than one dot
	SingleExtension bool `yaml:"single_extension"`
	// Storage local or s3
	Storage string   `yaml:"storage" validate:"oneof=local s3"`
	Dir     string   `yaml:"dir" validate:"required_if=Storage local"`
	S3      S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint" validate:"omitempty,url"`
	PublicURL string `yaml:"public_url" validate:"omitempty,url"`
}

type SessionConfig struct {
	// Store memory or sqlite
	Store string        `yaml:"store" validate:"oneof=memory sqlite"`
	Path  string        `yaml:"path" validate:"required_if=Store sqlite"`
	TTL   time.Duration `yaml:"ttl" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":5000",
			Mode:       "release",
			CookieName: "purecheck_session",
		},
		LLM: LLMConfig{
			APIType: "openai",
			Timeout: 2 * time.Minute,
		},
		Extractor: ModelConfig{
			Model:       "gpt-4o",
			Temperature: 0.1,
			MaxTokens:   2000,
			Timeout:     60 * time.Second,
		},
		Reasoner: ReasonerConfig{
			ModelConfig: ModelConfig{
				Model:       "o3-mini",
				Temperature: 1,
				Timeout:     90 * time.Second,
			},
			Engine:   "llm",
			Formulas: scoring.DefaultFormulas(),
		},
		Chat: ChatConfig{
			ModelConfig: ModelConfig{
				Model:   "gpt-4o",
				Timeout: 60 * time.Second,
			},
			TopK: 3,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-ada-002",
			BatchSize: 64,
		},
		Index: IndexConfig{
			Engine:       "chromem",
			Path:         "data/index",
			Collection:   "guidelines",
			ChunkSize:    500,
			ChunkOverlap: 20,
			TokenCounter: "words",
			Sources:      []string{"data/guidelines"},
		},
		Upload: UploadConfig{
			Allowed:      append([]string(nil), upload.DefaultAllowed...),
			MaxBytes:     upload.DefaultMaxBytes,
			SniffContent: true,
			Storage:      "local",
			Dir:          "uploads",
		},
		Session: SessionConfig{
			Store: "memory",
			TTL:   24 * time.Hour,
		},
		Baseline: nutrition.DefaultTargets(),
		Policy:   nutrition.DefaultPolicy(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. path is an optional YAML file; envFiles are loaded into the
// process environment without overriding variables already set, DefaultEnvFile when none is
// given and it exists.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		bs, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(bs); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if len(envFiles) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			envFiles = []string{DefaultEnvFile}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("load env: %w", err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays YAML on cfg. Baseline entries override the defaults one by one.
func (c *Config) decode(bs []byte) error {
	defaults := c.Baseline
	c.Baseline = nil
	if err := yaml.Unmarshal(bs, c); err != nil {
		return err
	}
	for k, v := range c.Baseline {
		defaults[k] = v
	}
	c.Baseline = defaults
	return nil
}

// Validate checks every section, the baseline and the scoring formulas
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.NutritionBaseline(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Reasoner.Engine == "rules" {
		if _, err := scoring.NewRuleScorer(c.Reasoner.Formulas, c.Policy); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	if c.Index.Engine == "milvus" && c.Index.Milvus.Address == "" {
		return errors.New("invalid config: index.milvus.address is required for the milvus engine")
	}
	if c.Upload.Storage == "s3" && c.Upload.S3.Bucket == "" {
		return errors.New("invalid config: upload.s3.bucket is required for s3 storage")
	}
	for _, n := range append(append([]nutrition.Nutrient{}, c.Policy.Limit...), c.Policy.Beneficial...) {
		if !n.Valid() {
			return fmt.Errorf("invalid config: unknown policy nutrient %q", n)
		}
	}
	return nil
}

// NutritionBaseline builds the scoring baseline
func (c *Config) NutritionBaseline() (*nutrition.Baseline, error) {
	return nutrition.NewBaseline(c.Baseline)
}

// applyEnv overrides settings from environment variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	// later entries win, PURECHECK_API_KEY over OPENAI_API_KEY
	strs := []struct {
		name string
		dst  *string
	}{
		{"OPENAI_API_KEY", &c.LLM.APIKey},
		{"OPENAI_BASE_URL", &c.LLM.BaseURL},
		{"PURECHECK_API_KEY", &c.LLM.APIKey},
		{"PURECHECK_ADDR", &c.Server.Addr},
		{"PURECHECK_GIN_MODE", &c.Server.Mode},
		{"PURECHECK_LOG_LEVEL", &c.Log.Level},
		{"PURECHECK_LOG_FORMAT", &c.Log.Format},
		{"PURECHECK_EXTRACTOR_MODEL", &c.Extractor.Model},
		{"PURECHECK_REASONER_MODEL", &c.Reasoner.Model},
		{"PURECHECK_REASONER_ENGINE", &c.Reasoner.Engine},
		{"PURECHECK_CHAT_MODEL", &c.Chat.Model},
		{"PURECHECK_EMBEDDING_PROVIDER", &c.Embedding.Provider},
		{"PURECHECK_EMBEDDING_MODEL", &c.Embedding.Model},
		{"PURECHECK_EMBEDDING_BASE_URL", &c.Embedding.BaseURL},
		{"PURECHECK_INDEX_ENGINE", &c.Index.Engine},
		{"PURECHECK_INDEX_PATH", &c.Index.Path},
		{"PURECHECK_MILVUS_ADDRESS", &c.Index.Milvus.Address},
		{"PURECHECK_MILVUS_USERNAME", &c.Index.Milvus.Username},
		{"PURECHECK_MILVUS_PASSWORD", &c.Index.Milvus.Password},
		{"PURECHECK_SESSION_STORE", &c.Session.Store},
		{"PURECHECK_SESSION_PATH", &c.Session.Path},
		{"PURECHECK_UPLOAD_STORAGE", &c.Upload.Storage},
		{"PURECHECK_UPLOAD_DIR", &c.Upload.Dir},
		{"PURECHECK_S3_BUCKET", &c.Upload.S3.Bucket},
		{"PURECHECK_S3_PREFIX", &c.Upload.S3.Prefix},
		{"PURECHECK_S3_ENDPOINT", &c.Upload.S3.Endpoint},
		{"AWS_REGION", &c.Upload.S3.Region},
	}
	for _, s := range strs {
		if v, ok := lookup(s.name); ok && v != "" {
			*s.dst = v
		}
	}
	if c.Embedding.APIKey == "" {
		switch c.Embedding.Provider {
		case "cohere":
			c.Embedding.APIKey, _ = lookup("COHERE_API_KEY")
		case "gemini":
			c.Embedding.APIKey, _ = lookup("GEMINI_API_KEY")
		}
	}
	if v, ok := lookup("PURECHECK_EMBEDDING_API_KEY"); ok && v != "" {
		c.Embedding.APIKey = v
	}
	if v, ok := lookup("AZURE_OPENAI_API_KEY"); ok && v != "" {
		c.LLM.APIType = "azure"
		c.LLM.APIKey = v
		if v, ok := lookup("AZURE_OPENAI_ENDPOINT"); ok {
			c.LLM.BaseURL = v
		}
		if v, ok := lookup("AZURE_OPENAI_API_VERSION"); ok {
			c.LLM.APIVersion = v
		}
	}
	if v, ok := lookup("PURECHECK_MAX_UPLOAD_BYTES"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Upload.MaxBytes = n
		}
	}
	if v, ok := lookup("PURECHECK_SESSION_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Session.TTL = d
		}
	}
	if v, ok := lookup("PURECHECK_ALLOWED_EXTENSIONS"); ok && v != "" {
		var list []string
		for _, ext := range strings.Split(v, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				list = append(list, ext)
			}
		}
		c.Upload.Allowed = list
	}
}
