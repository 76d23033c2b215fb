// Package jobs runs background maintenance against the record store.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"nutriapi/internal/store"
)

// Sweeper periodically marks pending appointments whose slot has passed as
// missed. Best effort: a failed sweep is logged and retried on the next
// tick, and a sweep racing a concurrent status change may lose.
type Sweeper struct {
	store    *store.Store
	schedule string
	sched    *cron.Cron

	// now is swapped in tests
	now func() time.Time
}

// New creates a sweeper with the given cron schedule
func New(st *store.Store, schedule string) *Sweeper {
	return &Sweeper{
		store:    st,
		schedule: schedule,
		now:      time.Now,
	}
}

// Start schedules the sweep. Returns an error only for an invalid schedule.
func (s *Sweeper) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		s.Sweep(context.Background())
	}); err != nil {
		return err
	}
	c.Start()
	s.sched = c

	log.Info().Str("schedule", s.schedule).Msg("Appointment sweeper scheduled")
	return nil
}

// Stop halts the schedule. Running sweeps finish on their own.
func (s *Sweeper) Stop() {
	if s.sched != nil {
		s.sched.Stop()
		s.sched = nil
	}
}

// Sweep marks overdue pending appointments as missed and returns how many
// records were updated
func (s *Sweeper) Sweep(ctx context.Context) int {
	appointments, err := s.store.ListAll(ctx, store.SheetAppointments)
	if err != nil {
		log.Error().Err(err).Msg("Sweep failed to list appointments")
		return 0
	}

	now := s.now()
	swept := 0
	for _, appointment := range appointments {
		if appointment.GetAsString("status", "") != "pending" {
			continue
		}
		if !slotPassed(appointment, now) {
			continue
		}

		if _, err := s.store.UpdateByID(ctx, store.SheetAppointments, appointment.ID(), map[string]interface{}{
			"status": "missed",
		}); err != nil {
			log.Error().Err(err).Str("id", appointment.ID()).Msg("Sweep failed to update appointment")
			continue
		}
		swept++
	}

	if swept > 0 {
		log.Info().Int("swept", swept).Msg("Marked overdue appointments as missed")
	}
	return swept
}

// slotPassed reports whether the appointment's date and time are in the
// past. Records with unparseable dates are left alone.
func slotPassed(appointment store.Record, now time.Time) bool {
	date := appointment.GetAsString("appointment_date", "")
	clock := appointment.GetAsString("appointment_time", "")
	if date == "" {
		return false
	}
	if clock == "" {
		clock = "00:00"
	}

	slot, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return false
	}
	return slot.Before(now)
}
