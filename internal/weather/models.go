package weather

import (
	"math"
	"time"
)

// Provider categories the bot attaches imagery for. Anything else gets a
// text-only answer.
const (
	CategoryClear  = "Clear"
	CategoryClouds = "Clouds"
	CategoryRain   = "Rain"
)

var categoryImages = map[string]string{
	CategoryClear:  "https://openweathermap.org/img/wn/01d@2x.png",
	CategoryClouds: "https://openweathermap.org/img/wn/04d@2x.png",
	CategoryRain:   "https://openweathermap.org/img/wn/10d@2x.png",
}

// CategoryImage returns the illustration URL for a weather category.
func CategoryImage(category string) (string, bool) {
	url, ok := categoryImages[category]
	return url, ok
}

// Conditions is a decoded current-weather snapshot.
type Conditions struct {
	City         string
	TemperatureK float64
	Description  string
	Category     string
	ObservedAt   time.Time
}

// ForecastEntry is one 3-hour slot of the 5-day forecast.
type ForecastEntry struct {
	Time         time.Time
	TemperatureK float64
	Description  string
	Category     string
}

// Forecast is the ordered 5-day, 3-hour-step forecast list.
type Forecast struct {
	City    string
	Entries []ForecastEntry
}

// FindAt scans the entries for one whose timestamp exactly equals target.
func (f Forecast) FindAt(target time.Time) (ForecastEntry, bool) {
	for _, entry := range f.Entries {
		if entry.Time.Equal(target) {
			return entry, true
		}
	}
	return ForecastEntry{}, false
}

// KelvinToFahrenheit converts a Kelvin temperature to whole-degree
// Fahrenheit. 273 is the zero-Celsius reference.
func KelvinToFahrenheit(k float64) int {
	return int(math.Round((9.0/5.0)*(k-273) + 32))
}
