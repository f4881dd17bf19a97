package tools

import (
	"context"
	"fmt"

	"github.com/vzahanych/weather-tools-service/internal/weather"
	"go.uber.org/zap"
)

func (s *Service) GetAirQuality(ctx context.Context, req AirQualityRequest) (*AirQualityResponse, error) {
	s.logger.Info("Air quality request",
		zap.String("city", req.City),
		zap.String("request_id", RequestIDFromContext(ctx)))

	aq, err := s.source.AirQuality(ctx, weather.Query{
		City:        req.City,
		CountryCode: req.CountryCode,
		APIKey:      s.apiKey(req.APIKey),
	})
	if err != nil {
		return nil, fmt.Errorf("retrieving air quality data: %w", err)
	}

	s.logger.Info("Air quality data retrieved", zap.String("city", req.City), zap.Int("aqi", aq.AQI))

	return &AirQualityResponse{
		City:                  req.City,
		Country:               country(req.CountryCode),
		AQI:                   aq.AQI,
		QualityLevel:          aq.QualityLevel,
		Pollutants:            aq.Pollutants,
		HealthRecommendations: aq.HealthRecommendations,
	}, nil
}
