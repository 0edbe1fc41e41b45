package api

import (
	"time"
)

// ClientConfig holds settings for reading funnels from another dashboard instance
type ClientConfig struct {
	BaseURL    string        `json:"base_url"`
	Timeout    time.Duration `json:"timeout"`
	RetryCount int           `json:"retry_count"`
	// Funnels lists the remote funnel names to expose locally
	Funnels []string `json:"funnels"`
	// NamePrefix is prepended to remote names so they never clash with local sources
	NamePrefix string `json:"name_prefix"`
}

// DefaultClientConfig returns sensible defaults for the remote client
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:    5 * time.Second,
		RetryCount: 1,
		Funnels:    []string{"account-creation"},
		NamePrefix: "remote-",
	}
}
