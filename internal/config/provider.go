// FilePath: internal/config/provider.go
package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	nuts "github.com/vaudience/go-nuts"
)

// Provider hands out the current configuration. The coordinator reads it
// at the start of every cycle instead of caching at construction, so edits
// to the config file take effect without a restart.
type Provider struct {
	mu      sync.RWMutex
	current *Config
}

// NewProvider creates a provider seeded with an already-validated config.
func NewProvider(cfg *Config) *Provider {
	return &Provider{current: cfg}
}

// Current returns the active configuration.
func (p *Provider) Current() *Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Replace swaps in a new configuration. The caller must have validated it.
func (p *Provider) Replace(cfg *Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = cfg
}

// reload re-validates the current viper state and swaps it in. A state
// that fails validation is rejected and the previous config stays active.
func (p *Provider) reload() error {
	cfg, err := unmarshalAndValidate()
	if err != nil {
		return err
	}
	p.Replace(cfg)
	return nil
}

// Watch re-reads the config file whenever it changes on disk.
func (p *Provider) Watch() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		nuts.L.Infof("[Config] Config file changed: %s", e.Name)
		if err := p.reload(); err != nil {
			nuts.L.Warnf("[Config] Rejecting config reload: %v", err)
			return
		}
		nuts.L.Infof("[Config] Configuration reloaded")
	})
	viper.WatchConfig()
}
