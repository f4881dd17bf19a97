package tools

import (
	"github.com/vzahanych/weather-tools-service/internal/config"
	"github.com/vzahanych/weather-tools-service/internal/weather"
	"github.com/vzahanych/weather-tools-service/pkg/telemetry"
	"go.uber.org/zap"
)

const (
	HealthName      = "health"
	WeatherName     = "get_weather"
	AirQualityName  = "get_air_quality"
	DefinitionsName = "get_tool_definitions"

	// fallbackCountry is reported when the caller gives no country code.
	fallbackCountry = "US"
)

type Options struct {
	Source        weather.Source
	DefaultAPIKey string
	Logger        *zap.Logger
	Telemetry     *telemetry.Telemetry
}

// Service holds the handlers behind the built-in tools.
type Service struct {
	source        weather.Source
	defaultAPIKey string
	logger        *zap.Logger
}

func NewService(source weather.Source, defaultAPIKey string, logger *zap.Logger) *Service {
	if defaultAPIKey == "" {
		defaultAPIKey = config.DefaultAPIKey
	}
	return &Service{
		source:        source,
		defaultAPIKey: defaultAPIKey,
		logger:        logger,
	}
}

// New returns a toolkit with health, get_weather, get_air_quality and
// get_tool_definitions registered in that order.
func New(opts Options) (*Toolkit, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Source == nil {
		opts.Source = weather.NewSynthetic()
	}

	svc := NewService(opts.Source, opts.DefaultAPIKey, opts.Logger)
	kit := NewToolkit(opts.Logger, opts.Telemetry)

	health, err := NewTool(HealthName, "Service status check",
		HealthRequest{}, svc.Health)
	if err != nil {
		return nil, err
	}
	forecast, err := NewTool(WeatherName, "Provides current weather and forecast for a specific city.",
		DefaultWeatherRequest(), svc.GetWeather)
	if err != nil {
		return nil, err
	}
	airQuality, err := NewTool(AirQualityName, "Provides air quality information for a specific city.",
		AirQualityRequest{}, svc.GetAirQuality)
	if err != nil {
		return nil, err
	}
	definitions, err := NewTool(DefinitionsName, "Provides MCP tool definitions in JSON format.",
		DefinitionsRequest{}, DefinitionsHandler(kit))
	if err != nil {
		return nil, err
	}

	if err := kit.Register(health, forecast, airQuality, definitions.Unlisted()); err != nil {
		return nil, err
	}

	opts.Logger.Info("Tools registered",
		zap.String("source", opts.Source.Name()),
		zap.Int("tools", len(kit.Tools())))

	return kit, nil
}

func (s *Service) apiKey(requested string) string {
	if requested != "" {
		return requested
	}
	return s.defaultAPIKey
}

// country is the caller's country code, or fallbackCountry. Upstream
// location names are never substituted.
func country(requested string) string {
	if requested != "" {
		return requested
	}
	return fallbackCountry
}
