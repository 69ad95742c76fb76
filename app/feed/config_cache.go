package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var configExtensions = []string{".yml", ".yaml", ".toml"}

type ConfigCache struct {
	feedsDir string
	cache    map[string]*Config
	mu       sync.RWMutex
}

func NewConfigCache(feedsDir string) *ConfigCache {
	return &ConfigCache{
		feedsDir: feedsDir,
		cache:    make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.feedsDir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(cc.feedsDir)
	if err != nil {
		return fmt.Errorf("failed to read feeds directory: %w", err)
	}

	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()
		ext := filepath.Ext(fileName)
		if !isConfigExtension(ext) {
			continue
		}

		blogName := strings.TrimSuffix(fileName, ext)
		if other, ok := seen[blogName]; ok {
			return fmt.Errorf("blog %s is configured twice: %s and %s", blogName, other, fileName)
		}
		seen[blogName] = fileName

		config, err := cc.LoadConfig(blogName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", fileName, err)
		}

		slog.Debug("Configuration loaded", "blog", blogName, "enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(blogName string) (*Config, error) {
	configFile, err := cc.findConfigFile(blogName)
	if err != nil {
		return nil, err
	}

	blogConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	blogConfig.Name = blogName

	if err := cc.validateConfig(blogConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[blogConfig.Name] = blogConfig

	return blogConfig, nil
}

func (cc *ConfigCache) GetConfig(blogName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	blogConfig, ok := cc.cache[blogName]
	if !ok {
		return nil, fmt.Errorf("blog config with name '%s' not found", blogName)
	}
	return blogConfig, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

// GetNames returns the configured blog names in sorted order.
func (cc *ConfigCache) GetNames() []string {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	names := make([]string, 0, len(cc.cache))
	for name := range cc.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) findConfigFile(blogName string) (string, error) {
	for _, ext := range configExtensions {
		configFile := filepath.Join(cc.feedsDir, blogName+ext)
		if _, err := os.Stat(configFile); err == nil {
			return configFile, nil
		}
	}
	return "", fmt.Errorf("no config file for blog '%s' in %s", blogName, cc.feedsDir)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var blogConfig Config
	if filepath.Ext(configFile) == ".toml" {
		if _, err := toml.Decode(string(data), &blogConfig); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &blogConfig); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if blogConfig.Format == "" {
		blogConfig.Format = FormatRSS
	}
	if blogConfig.Settings.RefreshInterval == 0 {
		blogConfig.Settings.RefreshInterval = 3600
	}
	if blogConfig.Settings.Timeout == 0 {
		blogConfig.Settings.Timeout = 30
	}
	if blogConfig.Settings.SanitizePolicy == "" {
		blogConfig.Settings.SanitizePolicy = PolicyNone
	}

	return &blogConfig, nil
}

func (cc *ConfigCache) validateConfig(blogConfig *Config) error {
	if blogConfig == nil {
		return fmt.Errorf("blogConfig is nil")
	}

	if blogConfig.Name == "" {
		return fmt.Errorf("blog name is required")
	}
	if blogConfig.URL == "" {
		return fmt.Errorf("blog URL is required")
	}

	nonNegativeFields := map[string]int{
		"limit":            blogConfig.Limit,
		"refresh interval": blogConfig.Settings.RefreshInterval,
		"timeout":          blogConfig.Settings.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if !ValidFormat(blogConfig.Format) {
		return fmt.Errorf("invalid format: %s", blogConfig.Format)
	}

	switch blogConfig.Settings.SanitizePolicy {
	case PolicyNone, PolicyUGC:
	default:
		return fmt.Errorf("invalid sanitize policy: %s", blogConfig.Settings.SanitizePolicy)
	}

	return nil
}

func isConfigExtension(ext string) bool {
	for _, e := range configExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
