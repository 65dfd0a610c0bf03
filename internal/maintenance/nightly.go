// Package maintenance runs housekeeping jobs on a daily wall-clock schedule.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Job is one housekeeping run.
type Job func(ctx context.Context) error

// ParseClock parses "HH:MM".
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("maintenance: want HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}

// NextRun returns the first hour:minute in loc strictly after now.
func NextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// StartDaily runs job every day at localTime ("HH:MM") in tzName until ctx
// is cancelled. An unknown zone falls back to UTC. Failures are logged and
// the schedule continues.
// Call once at startup: go maintenance.StartDaily(ctx, "backup", "03:00", "Asia/Tbilisi", job, logger)
func StartDaily(ctx context.Context, name, localTime, tzName string, job Job, logger *log.Logger) error {
	h, m, err := ParseClock(localTime)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		logger.Warn("unknown timezone, using UTC", "tz", tzName, "err", err)
		loc = time.UTC
	}
	logger = logger.WithPrefix("maintenance").With("job", name)

	go func() {
		for {
			next := NextRun(time.Now(), h, m, loc)
			logger.Debug("scheduled", "at", next)
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				start := time.Now()
				if err := job(ctx); err != nil {
					logger.Error("run failed", "err", err, "dur", time.Since(start))
				} else {
					logger.Info("run finished", "dur", time.Since(start))
				}
			}
		}
	}()
	return nil
}
