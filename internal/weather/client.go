package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public OpenWeather API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

const forecastTimeLayout = "2006-01-02 15:04:05"

// ParseError reports a provider payload missing a field the bot depends on.
type ParseError struct {
	Field string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("weather payload missing %s", e.Field)
}

// Provider supplies current conditions and the 5-day forecast for the
// configured city.
type Provider interface {
	Current(ctx context.Context) (Conditions, error)
	FiveDay(ctx context.Context) (Forecast, error)
}

// Client fetches weather data from an OpenWeather-compatible API. Responses
// use the API's default Kelvin units; conversion happens at presentation.
type Client struct {
	apiKey  string
	cityID  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, cityID, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("weather api key is required")
	}
	if cityID == "" {
		return nil, fmt.Errorf("weather city id is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		cityID:  cityID,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	params := url.Values{}
	params.Set("id", c.cityID)
	params.Set("appid", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call weather api: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("weather api status %d", resp.StatusCode)
	}
	return resp, nil
}

// Current fetches and validates the current conditions.
func (c *Client) Current(ctx context.Context) (Conditions, error) {
	resp, err := c.get(ctx, "/weather")
	if err != nil {
		return Conditions{}, err
	}
	defer resp.Body.Close()

	// Required fields are pointers so absence is distinguishable from zero.
	var payload struct {
		Name string `json:"name"`
		Dt   int64  `json:"dt"`
		Main *struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Conditions{}, fmt.Errorf("decode current weather: %w", err)
	}

	if payload.Main == nil || payload.Main.Temp == nil {
		return Conditions{}, &ParseError{Field: "main.temp"}
	}
	if len(payload.Weather) == 0 {
		return Conditions{}, &ParseError{Field: "weather"}
	}
	if payload.Weather[0].Main == "" {
		return Conditions{}, &ParseError{Field: "weather.main"}
	}
	if payload.Weather[0].Description == "" {
		return Conditions{}, &ParseError{Field: "weather.description"}
	}

	observed := time.Now().UTC()
	if payload.Dt > 0 {
		observed = time.Unix(payload.Dt, 0).UTC()
	}

	return Conditions{
		City:         payload.Name,
		TemperatureK: *payload.Main.Temp,
		Description:  payload.Weather[0].Description,
		Category:     payload.Weather[0].Main,
		ObservedAt:   observed,
	}, nil
}

// FiveDay fetches and validates the 5-day/3-hour forecast. Entry timestamps
// are parsed in local time so they compare against locally resolved target
// dates.
func (c *Client) FiveDay(ctx context.Context) (Forecast, error) {
	resp, err := c.get(ctx, "/forecast")
	if err != nil {
		return Forecast{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		City struct {
			Name string `json:"name"`
		} `json:"city"`
		List []struct {
			DtTxt string `json:"dt_txt"`
			Main  *struct {
				Temp *float64 `json:"temp"`
			} `json:"main"`
			Weather []struct {
				Main        string `json:"main"`
				Description string `json:"description"`
			} `json:"weather"`
		} `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Forecast{}, fmt.Errorf("decode forecast: %w", err)
	}

	if len(payload.List) == 0 {
		return Forecast{}, &ParseError{Field: "list"}
	}

	forecast := Forecast{
		City:    payload.City.Name,
		Entries: make([]ForecastEntry, 0, len(payload.List)),
	}
	for i, item := range payload.List {
		if item.DtTxt == "" {
			return Forecast{}, &ParseError{Field: fmt.Sprintf("list[%d].dt_txt", i)}
		}
		if item.Main == nil || item.Main.Temp == nil {
			return Forecast{}, &ParseError{Field: fmt.Sprintf("list[%d].main.temp", i)}
		}
		if len(item.Weather) == 0 {
			return Forecast{}, &ParseError{Field: fmt.Sprintf("list[%d].weather", i)}
		}

		ts, err := time.ParseInLocation(forecastTimeLayout, item.DtTxt, time.Local)
		if err != nil {
			return Forecast{}, fmt.Errorf("parse forecast timestamp %q: %w", item.DtTxt, err)
		}

		forecast.Entries = append(forecast.Entries, ForecastEntry{
			Time:         ts,
			TemperatureK: *item.Main.Temp,
			Description:  item.Weather[0].Description,
			Category:     item.Weather[0].Main,
		})
	}
	return forecast, nil
}
