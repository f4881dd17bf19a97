package weather

import "math"

type aqiBreakpoint struct {
	concLow, concHigh float64
	aqiLow, aqiHigh   int
}

// US EPA PM2.5 breakpoints (24h, µg/m³).
var pm25Breakpoints = []aqiBreakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 500.4, 301, 500},
}

// AQIFromPM25 converts a PM2.5 concentration to an AQI value. Concentrations
// above the last breakpoint saturate at 500.
func AQIFromPM25(conc float64) int {
	if conc <= 0 {
		return 0
	}

	// EPA truncates to one decimal before the lookup.
	c := math.Floor(conc*10) / 10

	for _, bp := range pm25Breakpoints {
		if c <= bp.concHigh {
			if c < bp.concLow {
				c = bp.concLow
			}
			ratio := float64(bp.aqiHigh-bp.aqiLow) / (bp.concHigh - bp.concLow)
			return int(math.Round(ratio*(c-bp.concLow) + float64(bp.aqiLow)))
		}
	}
	return 500
}

// Classify returns the quality level and recommendation for an AQI value.
func Classify(aqi int) (level, recommendation string) {
	switch {
	case aqi <= 50:
		return "Good", "Air quality is good. Suitable for outdoor activities."
	case aqi <= 100:
		return "Moderate", "Air quality is acceptable. Unusually sensitive people should limit prolonged outdoor exertion."
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups", "Sensitive groups should reduce prolonged or heavy outdoor exertion."
	case aqi <= 200:
		return "Unhealthy", "Everyone should reduce prolonged or heavy outdoor exertion."
	case aqi <= 300:
		return "Very Unhealthy", "Avoid outdoor exertion. Sensitive groups should remain indoors."
	default:
		return "Hazardous", "Health warning: everyone should avoid outdoor activities."
	}
}
