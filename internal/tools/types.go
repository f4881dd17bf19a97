package tools

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/vzahanych/weather-tools-service/internal/weather"
)

// Request structs are the single description of each tool's input: json and
// jsonschema tags drive the exported schema, validate tags drive both the
// validator and the schema's required/minimum/maximum keywords, and the
// defaults constructor supplies schema defaults.

type HealthRequest struct{}

type WeatherRequest struct {
	City        string `json:"city" jsonschema:"City name to check the weather for" validate:"required"`
	CountryCode string `json:"country_code,omitempty" jsonschema:"Country code (e.g., 'US', 'UK')"`
	Days        Days   `json:"days,omitempty" jsonschema:"Number of days for the forecast" validate:"min=1,max=7"`
	APIKey      string `json:"api_key,omitempty" jsonschema:"Weather API key (uses default if not provided)"`
}

func DefaultWeatherRequest() WeatherRequest {
	return WeatherRequest{Days: 3}
}

type AirQualityRequest struct {
	City        string `json:"city" jsonschema:"City name to check air quality for" validate:"required"`
	CountryCode string `json:"country_code,omitempty" jsonschema:"Country code (e.g., 'US', 'UK')"`
	APIKey      string `json:"api_key,omitempty" jsonschema:"Air quality API key (uses default if not provided)"`
}

type DefinitionsRequest struct{}

// Days is an integer that also accepts integral JSON numbers such as 3.0.
type Days int

func (d *Days) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	typeErr := &json.UnmarshalTypeError{
		Value: jsonKind(data),
		Type:  reflect.TypeOf(Days(0)),
		Field: "days",
	}

	if len(data) == 0 || !(data[0] == '-' || (data[0] >= '0' && data[0] <= '9')) {
		return typeErr
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return typeErr
	}

	*d = Days(f)
	return nil
}

func jsonKind(data []byte) string {
	if len(data) == 0 {
		return "empty"
	}
	switch data[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	default:
		return "number " + string(data)
	}
}

type HealthResponse struct {
	Status string `json:"status"`
}

type WeatherResponse struct {
	City             string                `json:"city"`
	Country          string                `json:"country"`
	CurrentTemp      float64               `json:"current_temp"`
	CurrentCondition string                `json:"current_condition"`
	Forecast         []weather.ForecastDay `json:"forecast"`
}

type AirQualityResponse struct {
	City                  string             `json:"city"`
	Country               string             `json:"country"`
	AQI                   int                `json:"aqi"`
	QualityLevel          string             `json:"quality_level"`
	Pollutants            weather.Pollutants `json:"pollutants"`
	HealthRecommendations string             `json:"health_recommendations"`
}

type ToolDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// MarshalJSON writes parameters.required even when no field is required, so
// clients can always read it as an array.
func (d ToolDefinition) MarshalJSON() ([]byte, error) {
	params, err := marshalNoEscape(d.Parameters)
	if err != nil {
		return nil, err
	}
	if d.Parameters != nil && len(d.Parameters.Required) == 0 && len(params) > 2 && params[0] == '{' {
		params = append([]byte(`{"required":[],`), params[1:]...)
	}

	return marshalNoEscape(struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	}{d.Name, d.Description, params})
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

type DefinitionsResponse struct {
	Tools []ToolDefinition `json:"tools"`
}
