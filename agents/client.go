package agents

import (
	"net/http"
	"time"

	"github.com/bububa/instructor-go/pkg/instructor"
	openai "github.com/sashabaranov/go-openai"
)

// ClientConfig describes an OpenAI compatible endpoint
type ClientConfig struct {
	APIKey string
	// BaseURL overrides the default endpoint; required for azure
	BaseURL string
	// APIType is "openai" or "azure"
	APIType string
	// APIVersion azure api version
	APIVersion string
	// Timeout http client timeout
	Timeout time.Duration
}

// NewClient returns a go-openai client for cfg
func NewClient(cfg ClientConfig) *openai.Client {
	var clientCfg openai.ClientConfig
	if cfg.APIType == "azure" {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		if cfg.APIVersion != "" {
			clientCfg.APIVersion = cfg.APIVersion
		}
	} else {
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return openai.NewClientWithConfig(clientCfg)
}

// NewInstructor wraps clt for structured JSON output with validation retries
func NewInstructor(clt *openai.Client) *instructor.InstructorOpenAI {
	return instructor.FromOpenAI(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation())
}
