package stats

import (
	"context"
	"fmt"

	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RequestSource is anything that can list every selling request
type RequestSource interface {
	Requests() []domain.SellingRequest
}

// Reporter logs a request Summary on a cron schedule
type Reporter struct {
	source RequestSource
	log    zerolog.Logger
	cron   *cron.Cron
}

func NewReporter(source RequestSource, log zerolog.Logger) *Reporter {
	return &Reporter{source: source, log: log}
}

// Start schedules Report with a standard cron spec or a descriptor such as
// "@every 5m"
func (r *Reporter) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { r.Report() }); err != nil {
		return fmt.Errorf("schedule stats report %q: %w", spec, err)
	}
	r.cron = c
	c.Start()

	r.log.Info().Str("schedule", spec).Msg("stats reporter started")
	return nil
}

// Stop halts the schedule. The returned context is done once a running
// report has finished.
func (r *Reporter) Stop() context.Context {
	if r.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return r.cron.Stop()
}

// Report logs the current summary and returns it
func (r *Reporter) Report() Summary {
	s := Summarize(r.source.Requests())
	r.log.Info().
		Int("total", s.Total).
		Int("pending", s.Pending).
		Int("accepted", s.Accepted).
		Int("rejected", s.Rejected).
		Str("pending_value", s.PendingValue.StringFixed(2)).
		Str("accepted_value", s.AcceptedValue.StringFixed(2)).
		Msg("selling request stats")
	return s
}
