// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schedule runs the triage pipeline on a recurring weekly slot.
// Each tick is a fresh, fully sequential invocation of the whole pipeline;
// no state is carried between ticks beyond the durable log and archive.
package schedule

import (
	"fmt"
	"io"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/pdiddy/paper-triage/pkg/types"
)

// CronSpec maps the schedule settings onto a standard five-field cron
// expression.
func CronSpec(cfg types.ScheduleConfig) string {
	day := cfg.DayOfWeek
	if day == "" {
		day = "sun"
	}
	return fmt.Sprintf("%d %d * * %s", cfg.Minute, cfg.Hour, day)
}

// Run blocks, executing job on the configured slot, until a signal arrives
// on interrupt. The in-flight job finishes before Run returns. An invalid
// schedule is reported before anything starts.
func Run(cfg types.ScheduleConfig, job func(), log io.Writer, interrupt <-chan os.Signal) error {
	spec := CronSpec(cfg)

	c := cron.New()
	if _, err := c.AddFunc(spec, job); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c.Start()
	fmt.Fprintf(log, "Scheduler started (%s). Press Ctrl+C to exit.\n", spec)

	<-interrupt

	// Stop accepts no new ticks; wait for a running job to finish.
	<-c.Stop().Done()
	fmt.Fprintln(log, "Scheduler stopped.")
	return nil
}
