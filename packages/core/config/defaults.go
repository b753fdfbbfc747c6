package config

const (
	// OutputConsole prints a colored human-readable view
	OutputConsole = "console"
	// OutputJSON prints one JSON document per request
	OutputJSON = "json"
	// OutputBody prints the raw body only
	OutputBody = "body"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:       0, // 80 or 443 depending on UseSSL
		UseSSL:     BoolPtr(false),
		VerifyCert: BoolPtr(true),
		Debug:      BoolPtr(false),
		NoColor:    BoolPtr(false),
		Timeout:    0, // no client-side timeout
		Output:     OutputConsole,
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Host == defaults.Host &&
		c.Port == defaults.Port &&
		c.GetUseSSL() == defaults.GetUseSSL() &&
		c.GetVerifyCert() == defaults.GetVerifyCert() &&
		c.GetDebug() == defaults.GetDebug() &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.Timeout == defaults.Timeout &&
		c.RateLimit == defaults.RateLimit &&
		c.Username == "" && c.Password == "" && c.Token == "" &&
		len(c.Headers) == 0 &&
		len(c.Cookies) == 0 &&
		c.CookieJar == defaults.CookieJar &&
		c.Output == defaults.Output
}
