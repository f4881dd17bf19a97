package tools

import (
	"context"
	"fmt"

	"github.com/vzahanych/weather-tools-service/internal/weather"
	"go.uber.org/zap"
)

func (s *Service) GetWeather(ctx context.Context, req WeatherRequest) (*WeatherResponse, error) {
	s.logger.Info("Weather request",
		zap.String("city", req.City),
		zap.Int("days", int(req.Days)),
		zap.String("request_id", RequestIDFromContext(ctx)))

	fc, err := s.source.Forecast(ctx, weather.Query{
		City:        req.City,
		CountryCode: req.CountryCode,
		Days:        int(req.Days),
		APIKey:      s.apiKey(req.APIKey),
	})
	if err != nil {
		return nil, fmt.Errorf("retrieving weather data: %w", err)
	}

	forecast := fc.Days
	if forecast == nil {
		forecast = []weather.ForecastDay{}
	}

	s.logger.Info("Weather data retrieved", zap.String("city", req.City), zap.Int("forecast_days", len(forecast)))

	return &WeatherResponse{
		City:             req.City,
		Country:          country(req.CountryCode),
		CurrentTemp:      fc.CurrentTemp,
		CurrentCondition: fc.CurrentCondition,
		Forecast:         forecast,
	}, nil
}
