package configs

import (
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var placeholderServerKeys = []string{
	"your-server-key",
	"your_midtrans_server_key",
	"changeme",
	"sb-mid-server-xxxx",
}

// Configured reports whether a usable server key has been provided.
func (c MidtransConfig) Configured() bool {
	key := strings.TrimSpace(c.ServerKey)
	if key == "" {
		return false
	}
	for _, p := range placeholderServerKeys {
		if strings.EqualFold(key, p) {
			return false
		}
	}
	return !strings.HasPrefix(strings.ToLower(key), "your")
}

func (c MidtransConfig) EnvironmentType() midtrans.EnvironmentType {
	if strings.EqualFold(c.Environment, EnvProduction) {
		return midtrans.Production
	}
	return midtrans.Sandbox
}

// NewSnapClient returns a snap client bound to the configured server key.
func NewSnapClient(cfg MidtransConfig) *snap.Client {
	var client snap.Client
	client.New(cfg.ServerKey, cfg.EnvironmentType())
	return &client
}
