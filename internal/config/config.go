package config

// DefaultAPIKey is the placeholder credential used when neither the request
// nor the environment supplies one.
const DefaultAPIKey = "demo_api_key"

type Config struct {
	Version     string            `mapstructure:"version"`
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Weather     WeatherConfig     `mapstructure:"weather"`
	Definitions DefinitionsConfig `mapstructure:"definitions"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// WeatherConfig selects the data source behind the weather tools.
// Source is either "synthetic" or "weatherapi".
type WeatherConfig struct {
	Source  string `mapstructure:"source"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
	Retries int    `mapstructure:"retries"`
}

type DefinitionsConfig struct {
	Path         string `mapstructure:"path"`
	WriteOnStart bool   `mapstructure:"write_on_start"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8000,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Weather: WeatherConfig{
			Source:  "synthetic",
			APIKey:  DefaultAPIKey,
			BaseURL: "https://api.weatherapi.com/v1",
			Timeout: 10,
			Retries: 3,
		},
		Definitions: DefinitionsConfig{
			Path:         "tool_definitions.json",
			WriteOnStart: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "tempo:4317",
		},
	}
}
