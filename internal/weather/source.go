package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/vzahanych/weather-tools-service/internal/config"
	"github.com/vzahanych/weather-tools-service/pkg/telemetry"
	"go.uber.org/zap"
)

// Source produces weather and air-quality data for a location.
type Source interface {
	Name() string
	Forecast(ctx context.Context, q Query) (*Forecast, error)
	AirQuality(ctx context.Context, q Query) (*AirQuality, error)
}

// Query is a resolved lookup: APIKey is already defaulted by the caller.
type Query struct {
	City        string
	CountryCode string
	Days        int
	APIKey      string
}

type ForecastDay struct {
	Date      string  `json:"date"`
	MinTemp   float64 `json:"min_temp"`
	MaxTemp   float64 `json:"max_temp"`
	Condition string  `json:"condition"`
}

// Forecast leaves Country empty when the source has no better answer than
// the caller's own country code.
type Forecast struct {
	Country          string
	CurrentTemp      float64
	CurrentCondition string
	Days             []ForecastDay
}

type Pollutants struct {
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	O3   float64 `json:"o3"`
	NO2  float64 `json:"no2"`
	SO2  float64 `json:"so2"`
	CO   float64 `json:"co"`
}

type AirQuality struct {
	Country               string
	AQI                   int
	QualityLevel          string
	Pollutants            Pollutants
	HealthRecommendations string
}

// New returns the source selected by cfg.Source.
func New(cfg config.WeatherConfig, logger *zap.Logger, tele *telemetry.Telemetry) (Source, error) {
	switch cfg.Source {
	case "", SyntheticName:
		return NewSynthetic(), nil
	case WeatherAPIName:
		return NewWeatherAPI(cfg.BaseURL, time.Duration(cfg.Timeout)*time.Second, cfg.Retries, logger, tele), nil
	default:
		return nil, fmt.Errorf("unknown weather source %q", cfg.Source)
	}
}
