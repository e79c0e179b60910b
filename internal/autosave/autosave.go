// Package autosave persists the session in the background on a cron
// schedule. A failed save is logged and never interrupts the
// operator.
package autosave

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule saves every 30 seconds.
const DefaultSchedule = "@every 30s"

// Saver runs a save function on a schedule. Saves are issued from a
// single loop, so at most one save is in flight at a time.
type Saver struct {
	schedule cron.Schedule
	save     func() error

	stop chan struct{}
	done chan struct{}
}

// ParseSchedule parses a cron expression or @every interval.
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser.Parse(expr)
}

// New creates a saver for the given schedule expression.
func New(expr string, save func() error) (*Saver, error) {
	if expr == "" {
		expr = DefaultSchedule
	}
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid autosave schedule %q: %w", expr, err)
	}
	return &Saver{
		schedule: schedule,
		save:     save,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the save loop.
func (s *Saver) Start() {
	go s.run()
}

func (s *Saver) run() {
	defer close(s.done)

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			if err := s.save(); err != nil {
				log.Printf("auto-save failed: %v", err)
			}
		}
	}
}

// Stop ends the save loop and waits for it to finish.
func (s *Saver) Stop() {
	close(s.stop)
	<-s.done
}
