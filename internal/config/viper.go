package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "WTS"

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. An explicit configPath must
// exist; the implicit ./config.yaml is optional.
func Load(configPath string) (*Config, error) {
	cfg := NewDefaultConfig()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	SetDefaultsFromStructRecursive(reflect.ValueOf(cfg), "", v)

	v.AutomaticEnv()

	// The conventional variable name wins over the prefixed one.
	if err := v.BindEnv("weather.api_key", "WEATHER_API_KEY", envPrefix+"_WEATHER_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that cannot be sensibly defaulted.
func (c *Config) Validate() error {
	rules := struct {
		Port    int    `validate:"min=1,max=65535"`
		Source  string `validate:"oneof=synthetic weatherapi"`
		Timeout int    `validate:"min=1"`
		Retries int    `validate:"min=0,max=10"`
		Format  string `validate:"oneof=json console"`
	}{
		Port:    c.Server.Port,
		Source:  c.Weather.Source,
		Timeout: c.Weather.Timeout,
		Retries: c.Weather.Retries,
		Format:  c.Logging.Format,
	}

	if err := validator.New().Struct(rules); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Weather.APIKey == "" {
		c.Weather.APIKey = DefaultAPIKey
	}

	return nil
}

func SetDefaultsFromStructRecursive(v reflect.Value, prefix string, viper *viper.Viper) {
	// Handle pointer to struct
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		// Skip unexported fields
		if !fieldValue.CanInterface() {
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" {
			key = strings.ToLower(field.Name)
		}

		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if fieldValue.Kind() == reflect.Struct {
			SetDefaultsFromStructRecursive(fieldValue, fullKey, viper)
		} else {
			viper.SetDefault(fullKey, fieldValue.Interface())
		}
	}
}
