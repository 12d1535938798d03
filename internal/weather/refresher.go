package weather

import (
	"context"
	"fmt"
	"time"

	rcron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Refresher keeps the weather cache warm on a cron schedule, so user
// questions are answered from memory instead of waiting on the API.
type Refresher struct {
	service *Service
	spec    string
	cron    *rcron.Cron
	log     zerolog.Logger
}

// NewRefresher builds a refresher for the given cron spec, e.g. "@every 30m".
// An empty spec disables periodic refresh.
func NewRefresher(service *Service, spec string, logger zerolog.Logger) *Refresher {
	return &Refresher{
		service: service,
		spec:    spec,
		log:     logger.With().Str("component", "refresher").Logger(),
	}
}

// Start registers the refresh job and begins the schedule.
func (r *Refresher) Start(ctx context.Context) error {
	if r.spec == "" {
		r.log.Info().Msg("periodic refresh disabled")
		return nil
	}

	r.cron = rcron.New()
	_, err := r.cron.AddFunc(r.spec, func() {
		refreshCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := r.service.Refresh(refreshCtx); err != nil {
			r.log.Warn().Err(err).Msg("scheduled refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("register refresh job %q: %w", r.spec, err)
	}

	r.cron.Start()
	r.log.Info().Str("schedule", r.spec).Msg("refresher started")
	return nil
}

// Stop halts the schedule, waiting briefly for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}

	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		r.log.Warn().Msg("timeout waiting for running refresh")
	}
	r.cron = nil
	r.log.Info().Msg("refresher stopped")
}
