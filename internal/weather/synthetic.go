package weather

import (
	"context"
	"fmt"
)

const SyntheticName = "synthetic"

// Synthetic serves fixed demonstration data. Forecast dates continue from
// 2025-05-27 without month rollover, so a 7 day forecast ends on "2025-05-33".
type Synthetic struct{}

func NewSynthetic() *Synthetic {
	return &Synthetic{}
}

func (s *Synthetic) Name() string {
	return SyntheticName
}

func (s *Synthetic) Forecast(ctx context.Context, q Query) (*Forecast, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	days := make([]ForecastDay, 0, q.Days)
	for i := 0; i < q.Days; i++ {
		condition := "Sunny"
		if i%2 != 0 {
			condition = "Cloudy"
		}
		days = append(days, ForecastDay{
			Date:      fmt.Sprintf("2025-05-%02d", 27+i),
			MinTemp:   18 + float64(i)*0.5,
			MaxTemp:   25 + float64(i)*0.7,
			Condition: condition,
		})
	}

	return &Forecast{
		CurrentTemp:      23.5,
		CurrentCondition: "Sunny",
		Days:             days,
	}, nil
}

func (s *Synthetic) AirQuality(ctx context.Context, q Query) (*AirQuality, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &AirQuality{
		AQI:          45,
		QualityLevel: "Good",
		Pollutants: Pollutants{
			PM25: 12.5,
			PM10: 25.3,
			O3:   68.2,
			NO2:  15.7,
			SO2:  5.2,
			CO:   0.8,
		},
		HealthRecommendations: "Air quality is good. Suitable for outdoor activities.",
	}, nil
}
