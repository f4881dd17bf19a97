package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vzahanych/weather-tools-service/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const WeatherAPIName = "weatherapi"

// WeatherAPI queries api.weatherapi.com. Every attempt is bounded by timeout
// and by the caller's context; transport errors, 429 and 5xx are retried.
type WeatherAPI struct {
	baseURL       string
	timeout       time.Duration
	retries       int
	retryInterval time.Duration
	client        *http.Client
	logger        *zap.Logger
	tele          *telemetry.Telemetry
}

// ErrShortForecast is returned when the upstream plan yields fewer forecast
// days than requested.
var ErrShortForecast = errors.New("upstream forecast shorter than requested")

// StatusError is returned when weatherapi.com answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weatherapi request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type weatherAPICondition struct {
	Text string `json:"text"`
}

type weatherAPIAirQuality struct {
	CO   float64 `json:"co"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
}

type weatherAPIResponse struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempC      float64               `json:"temp_c"`
		Condition  weatherAPICondition   `json:"condition"`
		AirQuality *weatherAPIAirQuality `json:"air_quality"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC  float64             `json:"maxtemp_c"`
				MinTempC  float64             `json:"mintemp_c"`
				Condition weatherAPICondition `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func NewWeatherAPI(baseURL string, timeout time.Duration, retries int, logger *zap.Logger, tele *telemetry.Telemetry) *WeatherAPI {
	return &WeatherAPI{
		baseURL:       baseURL,
		timeout:       timeout,
		retries:       retries,
		retryInterval: 500 * time.Millisecond,
		client:        &http.Client{},
		logger:        logger,
		tele:          tele,
	}
}

func (s *WeatherAPI) Name() string {
	return WeatherAPIName
}

func (s *WeatherAPI) Forecast(ctx context.Context, q Query) (*Forecast, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "weatherapi.Forecast")
	defer span.End()

	span.SetAttributes(
		attribute.String("city", q.City),
		attribute.Int("days", q.Days),
	)

	params := url.Values{}
	params.Set("days", strconv.Itoa(q.Days))
	params.Set("aqi", "no")

	var resp weatherAPIResponse
	if err := s.get(ctx, "forecast.json", q, params, &resp); err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		return nil, err
	}

	days := make([]ForecastDay, 0, len(resp.Forecast.ForecastDay))
	for _, fd := range resp.Forecast.ForecastDay {
		days = append(days, ForecastDay{
			Date:      fd.Date,
			MinTemp:   fd.Day.MinTempC,
			MaxTemp:   fd.Day.MaxTempC,
			Condition: fd.Day.Condition.Text,
		})
	}
	// weatherapi.com caps the range by plan.
	if len(days) < q.Days {
		span.SetAttributes(attribute.Bool("success", false))
		return nil, fmt.Errorf("%w: requested %d days, upstream returned %d", ErrShortForecast, q.Days, len(days))
	}
	days = days[:q.Days]

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("days_fetched", len(days)),
	)

	return &Forecast{
		Country:          resp.Location.Country,
		CurrentTemp:      resp.Current.TempC,
		CurrentCondition: resp.Current.Condition.Text,
		Days:             days,
	}, nil
}

func (s *WeatherAPI) AirQuality(ctx context.Context, q Query) (*AirQuality, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "weatherapi.AirQuality")
	defer span.End()

	span.SetAttributes(attribute.String("city", q.City))

	params := url.Values{}
	params.Set("aqi", "yes")

	var resp weatherAPIResponse
	if err := s.get(ctx, "current.json", q, params, &resp); err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		return nil, err
	}

	aq := resp.Current.AirQuality
	if aq == nil {
		span.SetAttributes(attribute.Bool("success", false))
		return nil, errors.New("weatherapi response has no air quality data")
	}

	aqi := AQIFromPM25(aq.PM25)
	level, recommendation := Classify(aqi)

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("aqi", aqi),
	)

	return &AirQuality{
		Country:      resp.Location.Country,
		AQI:          aqi,
		QualityLevel: level,
		Pollutants: Pollutants{
			PM25: aq.PM25,
			PM10: aq.PM10,
			O3:   aq.O3,
			NO2:  aq.NO2,
			SO2:  aq.SO2,
			CO:   aq.CO,
		},
		HealthRecommendations: recommendation,
	}, nil
}

func (s *WeatherAPI) get(ctx context.Context, endpoint string, q Query, params url.Values, out interface{}) error {
	u, err := url.Parse(fmt.Sprintf("%s/%s", s.baseURL, endpoint))
	if err != nil {
		return err
	}

	location := q.City
	if q.CountryCode != "" {
		location = q.City + "," + q.CountryCode
	}

	params.Set("key", q.APIKey)
	params.Set("q", location)
	u.RawQuery = params.Encode()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	b.MaxInterval = 10 * s.retryInterval

	attempt := 0
	operation := func() error {
		attempt++
		err := s.fetch(ctx, u.String(), out)
		if err == nil {
			return nil
		}

		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return err
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		s.logger.Warn("weatherapi request failed",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.retries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("weatherapi %s: %w", endpoint, err)
	}
	return nil
}

func (s *WeatherAPI) fetch(ctx context.Context, rawURL string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return backoff.Permanent(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decoding weatherapi response: %w", err))
	}

	return nil
}
