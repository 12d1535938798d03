package weather

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Service pairs a provider with the snapshot cache. Turn handlers read
// through it; Refresh fills it.
type Service struct {
	provider Provider
	cache    *Cache
	log      zerolog.Logger
}

func NewService(provider Provider, cache *Cache, logger zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		cache:    cache,
		log:      logger.With().Str("component", "weather").Logger(),
	}
}

// Refresh fetches current conditions and the forecast and stores both. The
// first fetch error aborts the refresh, leaving the older snapshots alone.
func (s *Service) Refresh(ctx context.Context) error {
	current, err := s.provider.Current(ctx)
	if err != nil {
		return fmt.Errorf("fetch current weather: %w", err)
	}
	s.cache.SetCurrent(current)

	forecast, err := s.provider.FiveDay(ctx)
	if err != nil {
		return fmt.Errorf("fetch forecast: %w", err)
	}
	s.cache.SetForecast(forecast)

	s.log.Debug().
		Str("city", current.City).
		Int("entries", len(forecast.Entries)).
		Msg("weather snapshots refreshed")
	return nil
}

// Current returns the cached current conditions.
func (s *Service) Current() (Conditions, error) {
	return s.cache.Current()
}

// Forecast returns the cached forecast.
func (s *Service) Forecast() (Forecast, error) {
	return s.cache.Forecast()
}
