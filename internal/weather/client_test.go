package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "5809844", ""); err == nil {
		t.Error("NewClient with empty api key should fail")
	}
	if _, err := NewClient("key", "", ""); err == nil {
		t.Error("NewClient with empty city id should fail")
	}
	if _, err := NewClient("key", "5809844", ""); err != nil {
		t.Errorf("NewClient() error: %v", err)
	}
}

func TestClientCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("path = %q, want /weather", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "5809844" {
			t.Errorf("id = %q, want 5809844", got)
		}
		if got := r.URL.Query().Get("appid"); got != "test-key" {
			t.Errorf("appid = %q, want test-key", got)
		}
		w.Write([]byte(`{
			"name": "Seattle",
			"dt": 1756000000,
			"main": {"temp": 300},
			"weather": [{"main": "Clear", "description": "clear sky"}]
		}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", "5809844", server.URL)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	current, err := client.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if current.City != "Seattle" {
		t.Errorf("City = %q, want Seattle", current.City)
	}
	if current.TemperatureK != 300 {
		t.Errorf("TemperatureK = %v, want 300", current.TemperatureK)
	}
	if current.Description != "clear sky" {
		t.Errorf("Description = %q, want clear sky", current.Description)
	}
	if current.Category != CategoryClear {
		t.Errorf("Category = %q, want Clear", current.Category)
	}
	if current.ObservedAt != time.Unix(1756000000, 0).UTC() {
		t.Errorf("ObservedAt = %v", current.ObservedAt)
	}
}

func TestClientCurrentMissingFields(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"no main", `{"name":"Seattle","weather":[{"main":"Clear","description":"clear sky"}]}`, "main.temp"},
		{"no temp", `{"name":"Seattle","main":{},"weather":[{"main":"Clear","description":"clear sky"}]}`, "main.temp"},
		{"no weather", `{"name":"Seattle","main":{"temp":300}}`, "weather"},
		{"empty weather", `{"name":"Seattle","main":{"temp":300},"weather":[]}`, "weather"},
		{"no category", `{"name":"Seattle","main":{"temp":300},"weather":[{"description":"clear sky"}]}`, "weather.main"},
		{"no description", `{"name":"Seattle","main":{"temp":300},"weather":[{"main":"Clear"}]}`, "weather.description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := NewClient("test-key", "5809844", server.URL)
			_, err := client.Current(context.Background())

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Current() error = %v, want ParseError", err)
			}
			if parseErr.Field != tt.wantField {
				t.Errorf("ParseError.Field = %q, want %q", parseErr.Field, tt.wantField)
			}
		})
	}
}

func TestClientCurrentHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, _ := NewClient("bad-key", "5809844", server.URL)
	if _, err := client.Current(context.Background()); err == nil {
		t.Error("Current() should fail on non-200 status")
	}
}

func TestClientFiveDay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("path = %q, want /forecast", r.URL.Path)
		}
		w.Write([]byte(`{
			"city": {"name": "Seattle"},
			"list": [
				{"dt_txt": "2026-08-29 09:00:00", "main": {"temp": 288.5}, "weather": [{"main": "Clouds", "description": "few clouds"}]},
				{"dt_txt": "2026-08-29 12:00:00", "main": {"temp": 293}, "weather": [{"main": "Rain", "description": "light rain"}]}
			]
		}`))
	}))
	defer server.Close()

	client, _ := NewClient("test-key", "5809844", server.URL)
	forecast, err := client.FiveDay(context.Background())
	if err != nil {
		t.Fatalf("FiveDay() error: %v", err)
	}

	if forecast.City != "Seattle" {
		t.Errorf("City = %q, want Seattle", forecast.City)
	}
	if len(forecast.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(forecast.Entries))
	}

	noon := time.Date(2026, 8, 29, 12, 0, 0, 0, time.Local)
	entry, ok := forecast.FindAt(noon)
	if !ok {
		t.Fatal("FindAt(noon) not found, timestamps should parse in local time")
	}
	if entry.Description != "light rain" || entry.Category != CategoryRain {
		t.Errorf("entry = %+v", entry)
	}
	if entry.TemperatureK != 293 {
		t.Errorf("TemperatureK = %v, want 293", entry.TemperatureK)
	}
}

func TestClientFiveDayMissingFields(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"empty list", `{"city":{"name":"Seattle"},"list":[]}`, "list"},
		{"no dt_txt", `{"list":[{"main":{"temp":290},"weather":[{"main":"Clear","description":"clear sky"}]}]}`, "list[0].dt_txt"},
		{"no temp", `{"list":[{"dt_txt":"2026-08-29 12:00:00","weather":[{"main":"Clear","description":"clear sky"}]}]}`, "list[0].main.temp"},
		{"no weather", `{"list":[{"dt_txt":"2026-08-29 12:00:00","main":{"temp":290}}]}`, "list[0].weather"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := NewClient("test-key", "5809844", server.URL)
			_, err := client.FiveDay(context.Background())

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("FiveDay() error = %v, want ParseError", err)
			}
			if parseErr.Field != tt.wantField {
				t.Errorf("ParseError.Field = %q, want %q", parseErr.Field, tt.wantField)
			}
		})
	}
}
