package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	Storage  MStorageConfig `yaml:"storage"`
	Network  MNetworkConfig `yaml:"network"`
	Feed     MFeedConfig    `yaml:"feed"`
	Quotes   MQuotesConfig  `yaml:"quotes"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MFeedConfig struct {
	URL                  string   `yaml:"url"`
	APIKey               string   `yaml:"api_key"`
	ReconnectBaseSeconds int      `yaml:"reconnect_base_seconds"`
	ReconnectMaxSeconds  int      `yaml:"reconnect_max_seconds"`
	DefaultSymbols       []string `yaml:"default_symbols"`
}

type MQuotesConfig struct {
	URL string `yaml:"url"`
}
