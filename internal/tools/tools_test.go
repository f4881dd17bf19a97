package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-tools-service/internal/weather"
	"github.com/vzahanych/weather-tools-service/pkg/telemetry"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap/zaptest"
)

type recordedCall struct {
	tool, outcome string
}

type fakeMetrics struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (m *fakeMetrics) RecordToolCall(_ context.Context, tool, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, recordedCall{tool, outcome})
}

type failingSource struct {
	err   error
	panic bool
}

func (s *failingSource) Name() string { return "failing" }

func (s *failingSource) Forecast(context.Context, weather.Query) (*weather.Forecast, error) {
	if s.panic {
		panic("source exploded")
	}
	return nil, s.err
}

func (s *failingSource) AirQuality(context.Context, weather.Query) (*weather.AirQuality, error) {
	return nil, s.err
}

type capturingSource struct {
	weather.Synthetic
	mu      sync.Mutex
	queries []weather.Query
}

func (s *capturingSource) Forecast(ctx context.Context, q weather.Query) (*weather.Forecast, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()
	return s.Synthetic.Forecast(ctx, q)
}

func newTestToolkit(t *testing.T, src weather.Source) *Toolkit {
	t.Helper()
	kit, err := New(Options{
		Source:        src,
		DefaultAPIKey: "configured-key",
		Logger:        zaptest.NewLogger(t),
		Telemetry:     &telemetry.Telemetry{},
	})
	require.NoError(t, err)
	return kit
}

func call(t *testing.T, kit *Toolkit, name, args string) (Result, error) {
	t.Helper()
	return kit.Call(context.Background(), name, json.RawMessage(args))
}

func marshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestHealth(t *testing.T) {
	kit := newTestToolkit(t, nil)

	res, err := call(t, kit, HealthName, ``)
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.JSONEq(t, `{"status":"ok"}`, marshal(t, res.Value))
}

func TestGetWeatherSeoulScenario(t *testing.T) {
	kit := newTestToolkit(t, nil)

	res, err := call(t, kit, WeatherName, `{"city":"Seoul","days":2}`)
	require.NoError(t, err)
	require.True(t, res.OK())

	assert.JSONEq(t, `{
		"city": "Seoul",
		"country": "US",
		"current_temp": 23.5,
		"current_condition": "Sunny",
		"forecast": [
			{"date": "2025-05-27", "min_temp": 18, "max_temp": 25, "condition": "Sunny"},
			{"date": "2025-05-28", "min_temp": 18.5, "max_temp": 25.7, "condition": "Cloudy"}
		]
	}`, marshal(t, res.Value))
}

func TestGetWeatherForecastLength(t *testing.T) {
	kit := newTestToolkit(t, nil)

	for days := 1; days <= 7; days++ {
		res, err := call(t, kit, WeatherName, fmt.Sprintf(`{"city":"Oslo","days":%d}`, days))
		require.NoError(t, err)

		resp := res.Value.(*WeatherResponse)
		require.Len(t, resp.Forecast, days)
		for i, day := range resp.Forecast {
			assert.InDelta(t, 18+0.5*float64(i), day.MinTemp, 1e-9)
			assert.InDelta(t, 25+0.7*float64(i), day.MaxTemp, 1e-9)
			assert.Equal(t, i%2 == 0, day.Condition == "Sunny")
		}
	}
}

func TestGetWeatherDefaultsToThreeDays(t *testing.T) {
	kit := newTestToolkit(t, nil)

	for _, args := range []string{`{"city":"Oslo"}`, `{"city":"Oslo","days":null}`} {
		res, err := call(t, kit, WeatherName, args)
		require.NoError(t, err)
		assert.Len(t, res.Value.(*WeatherResponse).Forecast, 3)
	}
}

func TestGetWeatherAcceptsIntegralFloat(t *testing.T) {
	kit := newTestToolkit(t, nil)

	res, err := call(t, kit, WeatherName, `{"city":"Oslo","days":4.0}`)
	require.NoError(t, err)
	assert.Len(t, res.Value.(*WeatherResponse).Forecast, 4)
}

func TestGetWeatherRejectsBadDays(t *testing.T) {
	kit := newTestToolkit(t, nil)

	cases := map[string]string{
		"too many":   `{"city":"X","days":8}`,
		"zero":       `{"city":"X","days":0}`,
		"negative":   `{"city":"X","days":-1}`,
		"fractional": `{"city":"X","days":2.5}`,
		"string":     `{"city":"X","days":"3"}`,
		"bool":       `{"city":"X","days":true}`,
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := call(t, kit, WeatherName, args)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.True(t, validationErr.Has("days"), "fields: %+v", validationErr.Fields)
			assert.Equal(t, WeatherName, validationErr.Tool)
			assert.Nil(t, res.Value)
		})
	}
}

func TestGetWeatherRejectedBeforeHandlerRuns(t *testing.T) {
	src := &capturingSource{}
	kit := newTestToolkit(t, src)

	_, err := call(t, kit, WeatherName, `{"city":"X","days":8}`)
	require.Error(t, err)
	assert.Empty(t, src.queries)
}

func TestMissingCityRejected(t *testing.T) {
	kit := newTestToolkit(t, nil)

	for _, name := range []string{WeatherName, AirQualityName} {
		for _, args := range []string{`{}`, `{"city":""}`, `{"country_code":"FR"}`, ``} {
			_, err := call(t, kit, name, args)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr, "%s %s", name, args)
			assert.True(t, validationErr.Has("city"))
			assert.Equal(t, "required", validationErr.Fields[0].Tag)
		}
	}
}

func TestMalformedArguments(t *testing.T) {
	kit := newTestToolkit(t, nil)

	for _, args := range []string{`[1,2]`, `"Seoul"`, `{"city":`} {
		_, err := call(t, kit, WeatherName, args)

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr, args)
		assert.Equal(t, "json", validationErr.Fields[0].Tag)
	}
}

func TestAPIKeyResolution(t *testing.T) {
	src := &capturingSource{}
	kit := newTestToolkit(t, src)

	_, err := call(t, kit, WeatherName, `{"city":"X"}`)
	require.NoError(t, err)
	_, err = call(t, kit, WeatherName, `{"city":"X","api_key":"caller-key"}`)
	require.NoError(t, err)

	require.Len(t, src.queries, 2)
	assert.Equal(t, "configured-key", src.queries[0].APIKey)
	assert.Equal(t, "caller-key", src.queries[1].APIKey)
}

func TestCountryEcho(t *testing.T) {
	kit := newTestToolkit(t, nil)

	for _, name := range []string{WeatherName, AirQualityName} {
		res, err := call(t, kit, name, `{"city":"Lyon","country_code":"FR"}`)
		require.NoError(t, err)
		assert.Contains(t, marshal(t, res.Value), `"country":"FR"`)

		res, err = call(t, kit, name, `{"city":"Lyon"}`)
		require.NoError(t, err)
		assert.Contains(t, marshal(t, res.Value), `"country":"US"`)
	}
}

type namedCountrySource struct {
	weather.Synthetic
}

func (s *namedCountrySource) Forecast(ctx context.Context, q weather.Query) (*weather.Forecast, error) {
	fc, err := s.Synthetic.Forecast(ctx, q)
	if err != nil {
		return nil, err
	}
	fc.Country = "United Kingdom"
	return fc, nil
}

func (s *namedCountrySource) AirQuality(ctx context.Context, q weather.Query) (*weather.AirQuality, error) {
	aq, err := s.Synthetic.AirQuality(ctx, q)
	if err != nil {
		return nil, err
	}
	aq.Country = "United Kingdom"
	return aq, nil
}

func TestCountryIgnoresSourceLocation(t *testing.T) {
	kit := newTestToolkit(t, &namedCountrySource{})

	for _, name := range []string{WeatherName, AirQualityName} {
		res, err := call(t, kit, name, `{"city":"London"}`)
		require.NoError(t, err)
		assert.Contains(t, marshal(t, res.Value), `"country":"US"`, name)

		res, err = call(t, kit, name, `{"city":"London","country_code":"GB"}`)
		require.NoError(t, err)
		assert.Contains(t, marshal(t, res.Value), `"country":"GB"`, name)
	}
}

func TestShortUpstreamForecastIsFault(t *testing.T) {
	kit := newTestToolkit(t, &failingSource{err: fmt.Errorf("%w: requested 7 days, upstream returned 3", weather.ErrShortForecast)})

	res, err := call(t, kit, WeatherName, `{"city":"London","days":7}`)
	require.NoError(t, err)
	require.Equal(t, OutcomeFault, res.Outcome)
	assert.ErrorIs(t, res.Fault, weather.ErrShortForecast)
}

func TestGetAirQualityParisScenario(t *testing.T) {
	kit := newTestToolkit(t, nil)

	res, err := call(t, kit, AirQualityName, `{"city":"Paris"}`)
	require.NoError(t, err)
	require.True(t, res.OK())

	assert.JSONEq(t, `{
		"city": "Paris",
		"country": "US",
		"aqi": 45,
		"quality_level": "Good",
		"pollutants": {"pm2_5": 12.5, "pm10": 25.3, "o3": 68.2, "no2": 15.7, "so2": 5.2, "co": 0.8},
		"health_recommendations": "Air quality is good. Suitable for outdoor activities."
	}`, marshal(t, res.Value))
}

func TestGetAirQualityInvariantUnderLocation(t *testing.T) {
	kit := newTestToolkit(t, nil)

	base, err := call(t, kit, AirQualityName, `{"city":"Paris"}`)
	require.NoError(t, err)
	want := *base.Value.(*AirQualityResponse)

	for _, args := range []string{`{"city":"Tokyo","country_code":"JP"}`, `{"city":"Lima","api_key":"x"}`} {
		res, err := call(t, kit, AirQualityName, args)
		require.NoError(t, err)

		got := *res.Value.(*AirQualityResponse)
		got.City, got.Country = want.City, want.Country
		assert.Equal(t, want, got)
	}
}

func TestHandlerFaultIsTyped(t *testing.T) {
	upstream := errors.New("upstream unavailable")
	metrics := &fakeMetrics{}
	kit := newTestToolkit(t, &failingSource{err: upstream})
	kit.SetMetricsRecorder(metrics)

	res, err := call(t, kit, WeatherName, `{"city":"X"}`)
	require.NoError(t, err)

	assert.False(t, res.OK())
	assert.Equal(t, OutcomeFault, res.Outcome)
	assert.Nil(t, res.Value)
	require.NotNil(t, res.Fault)
	assert.ErrorIs(t, res.Fault, upstream)
	assert.Equal(t, WeatherName, res.Fault.Tool)

	assert.Equal(t, []recordedCall{{WeatherName, "fault"}}, metrics.calls)
}

func TestHandlerPanicBecomesFault(t *testing.T) {
	kit := newTestToolkit(t, &failingSource{panic: true})

	res, err := call(t, kit, WeatherName, `{"city":"X"}`)
	require.NoError(t, err)
	require.Equal(t, OutcomeFault, res.Outcome)
	assert.Contains(t, res.Fault.Error(), "source exploded")
}

func TestUnknownTool(t *testing.T) {
	metrics := &fakeMetrics{}
	kit := newTestToolkit(t, nil)
	kit.SetMetricsRecorder(metrics)

	_, err := call(t, kit, "get_tides", `{}`)
	assert.ErrorIs(t, err, ErrUnknownTool)
	_, err = call(t, kit, "get_moon_phase", `{}`)
	assert.ErrorIs(t, err, ErrUnknownTool)

	assert.Equal(t, []recordedCall{
		{UnknownToolLabel, "unknown"},
		{UnknownToolLabel, "unknown"},
	}, metrics.calls)
}

func TestMetricsOutcomes(t *testing.T) {
	metrics := &fakeMetrics{}
	kit := newTestToolkit(t, nil)
	kit.SetMetricsRecorder(metrics)

	_, _ = call(t, kit, HealthName, `{}`)
	_, _ = call(t, kit, WeatherName, `{"city":"X","days":9}`)

	assert.Equal(t, []recordedCall{
		{HealthName, "success"},
		{WeatherName, "invalid"},
	}, metrics.calls)
}

func TestRegisterDuplicate(t *testing.T) {
	kit := newTestToolkit(t, nil)

	dup, err := NewTool(HealthName, "again", HealthRequest{}, NewService(weather.NewSynthetic(), "", zaptest.NewLogger(t)).Health)
	require.NoError(t, err)
	assert.Error(t, kit.Register(dup))
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", RequestIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "fault", OutcomeFault.String())
	assert.Equal(t, "outcome(7)", Outcome(7).String())
}

func definitionNames(defs DefinitionsResponse) []string {
	names := make([]string, 0, len(defs.Tools))
	for _, d := range defs.Tools {
		names = append(names, d.Name)
	}
	return names
}

func TestDefinitionsListing(t *testing.T) {
	kit := newTestToolkit(t, nil)

	res, err := call(t, kit, DefinitionsName, `{}`)
	require.NoError(t, err)

	defs := *res.Value.(*DefinitionsResponse)
	assert.Equal(t, []string{HealthName, WeatherName, AirQualityName}, definitionNames(defs))
	assert.Equal(t, kit.Definitions(), defs)

	_, ok := kit.Lookup(DefinitionsName)
	assert.True(t, ok, "definitions tool stays callable")
}

func TestDefinitionsWeatherParameters(t *testing.T) {
	kit := newTestToolkit(t, nil)
	tool, ok := kit.Lookup(WeatherName)
	require.True(t, ok)

	assert.JSONEq(t, `{
		"type": "object",
		"required": ["city"],
		"properties": {
			"city": {"type": "string", "description": "City name to check the weather for", "minLength": 1},
			"country_code": {"type": "string", "description": "Country code (e.g., 'US', 'UK')"},
			"days": {"type": "integer", "description": "Number of days for the forecast", "default": 3, "minimum": 1, "maximum": 7},
			"api_key": {"type": "string", "description": "Weather API key (uses default if not provided)"}
		}
	}`, marshal(t, tool.Schema()))
}

func TestDefinitionsHealthParameters(t *testing.T) {
	kit := newTestToolkit(t, nil)

	defs := kit.Definitions()
	require.Equal(t, HealthName, defs.Tools[0].Name)

	data, err := json.Marshal(defs.Tools[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "health",
		"description": "Service status check",
		"parameters": {"type": "object", "properties": {}, "required": []}
	}`, string(data))

	tool, ok := kit.Lookup(WeatherName)
	require.True(t, ok)
	data, err = json.Marshal(tool.Definition())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"required":["city"]`)
}

// Required fields in every exported definition must be exactly the fields the
// validator reports as missing for an empty call.
func TestDefinitionsRequiredMatchValidator(t *testing.T) {
	kit := newTestToolkit(t, nil)

	for _, def := range kit.Definitions().Tools {
		t.Run(def.Name, func(t *testing.T) {
			_, err := call(t, kit, def.Name, `{}`)

			var missing []string
			var validationErr *ValidationError
			if errors.As(err, &validationErr) {
				for _, f := range validationErr.Fields {
					if f.Tag == "required" {
						missing = append(missing, f.Field)
					}
				}
			} else {
				require.NoError(t, err)
			}

			tool, ok := kit.Lookup(def.Name)
			require.True(t, ok)
			assert.Equal(t, def.Parameters.Required, tool.Required())

			assert.ElementsMatch(t, tool.Required(), missing)
		})
	}
}

// The exported schema and the validator must agree on every sample.
func TestSchemaAgreesWithValidator(t *testing.T) {
	kit := newTestToolkit(t, nil)

	samples := map[string][]string{
		WeatherName: {
			`{"city":"X"}`,
			`{"city":"X","days":1}`,
			`{"city":"X","days":7}`,
			`{"city":"X","days":7.0}`,
			`{"city":"X","days":8}`,
			`{"city":"X","days":0}`,
			`{"city":"X","days":2.5}`,
			`{"city":"X","days":"3"}`,
			`{"city":""}`,
			`{"days":3}`,
			`{"city":"X","extra":true}`,
		},
		AirQualityName: {
			`{"city":"Paris"}`,
			`{"city":"Paris","country_code":"FR","api_key":"k"}`,
			`{"country_code":"FR"}`,
			`{"city":42}`,
		},
		HealthName: {
			`{}`,
			`{"anything":1}`,
		},
	}

	for name, docs := range samples {
		tool, ok := kit.Lookup(name)
		require.True(t, ok)
		schemaLoader := gojsonschema.NewStringLoader(marshal(t, tool.Schema()))

		for _, doc := range docs {
			result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(doc))
			require.NoError(t, err)

			_, callErr := call(t, kit, name, doc)
			assert.Equal(t, result.Valid(), callErr == nil, "%s %s: schema=%v validator=%v", name, doc, result.Errors(), callErr)
		}
	}
}

func TestWriteDefinitionsFile(t *testing.T) {
	kit := newTestToolkit(t, nil)
	path := filepath.Join(t.TempDir(), "tool_definitions.json")

	require.NoError(t, WriteDefinitionsFile(path, kit.Definitions()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("{\n  \"tools\": [\n    {\n")), string(data[:40]))
	assert.Contains(t, string(data), `"Country code (e.g., 'US', 'UK')"`)

	res, err := call(t, kit, DefinitionsName, `{}`)
	require.NoError(t, err)
	assert.JSONEq(t, marshal(t, res.Value), string(data))
}

func TestWriteDefinitionsDoesNotEscape(t *testing.T) {
	var buf bytes.Buffer
	defs := DefinitionsResponse{Tools: []ToolDefinition{{Name: "météo", Description: "<b>&</b>"}}}

	require.NoError(t, WriteDefinitions(&buf, defs))
	assert.Contains(t, buf.String(), "météo")
	assert.Contains(t, buf.String(), "<b>&</b>")
}
