package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is a session profile: where to connect and what to send
type Config struct {
	Host       string            `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int               `json:"port,omitempty" yaml:"port,omitempty"`
	UseSSL     *bool             `json:"useSSL,omitempty" yaml:"useSSL,omitempty"`
	VerifyCert *bool             `json:"verifyCert,omitempty" yaml:"verifyCert,omitempty"`
	Debug      *bool             `json:"debug,omitempty" yaml:"debug,omitempty"`
	NoColor    *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
	Timeout    int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds
	RateLimit  float64           `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"` // requests per second
	Username   string            `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string            `json:"password,omitempty" yaml:"password,omitempty"`
	Token      string            `json:"token,omitempty" yaml:"token,omitempty"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Cookies    map[string]string `json:"cookies,omitempty" yaml:"cookies,omitempty"`
	CookieJar  string            `json:"cookieJar,omitempty" yaml:"cookieJar,omitempty"` // file the jar is loaded from and saved to
	Output     string            `json:"output,omitempty" yaml:"output,omitempty"`
}

// BoolPtr returns a pointer to b, for building configs in code
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetUseSSL returns the TLS setting, defaulting to false
func (c *Config) GetUseSSL() bool {
	return getBool(c.UseSSL, false)
}

// GetVerifyCert returns the certificate verification setting, defaulting to true
func (c *Config) GetVerifyCert() bool {
	return getBool(c.VerifyCert, true)
}

func (c *Config) GetDebug() bool {
	return getBool(c.Debug, false)
}

func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names, in search order
var ConfigFilenames = []string{
	".webbrowser.json",
	"webbrowser.json",
	".webbrowser.yaml",
	".webbrowser.yml",
	"webbrowser.yaml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Host != "" {
		result.Host = other.Host
	}
	if other.Port > 0 {
		result.Port = other.Port
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}
	if other.Username != "" {
		result.Username = other.Username
	}
	if other.Password != "" {
		result.Password = other.Password
	}
	if other.Token != "" {
		result.Token = other.Token
	}
	if other.CookieJar != "" {
		result.CookieJar = other.CookieJar
	}
	if other.Output != "" {
		result.Output = other.Output
	}

	// Boolean flags - only override if explicitly set in other config
	if other.UseSSL != nil {
		result.UseSSL = other.UseSSL
	}
	if other.VerifyCert != nil {
		result.VerifyCert = other.VerifyCert
	}
	if other.Debug != nil {
		result.Debug = other.Debug
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	result.Headers = mergeMaps(c.Headers, other.Headers)
	result.Cookies = mergeMaps(c.Cookies, other.Cookies)

	return &result
}

func mergeMaps(base, over map[string]string) map[string]string {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	result := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range over {
		result[k] = v
	}
	return result
}

// Expand applies expand (typically os.ExpandEnv or an env.Resolver) to
// every string value that may carry credentials or hosts.
func (c *Config) Expand(expand func(string) string) *Config {
	result := *c
	result.Host = expand(c.Host)
	result.Username = expand(c.Username)
	result.Password = expand(c.Password)
	result.Token = expand(c.Token)
	result.CookieJar = expand(c.CookieJar)

	if c.Headers != nil {
		result.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			result.Headers[k] = expand(v)
		}
	}
	if c.Cookies != nil {
		result.Cookies = make(map[string]string, len(c.Cookies))
		for k, v := range c.Cookies {
			result.Cookies[k] = expand(v)
		}
	}
	return &result
}

// SaveConfig saves the configuration to a file, as YAML or JSON by extension
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
