// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schedule

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pdiddy/paper-triage/pkg/types"
)

func TestCronSpec(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.ScheduleConfig
		want string
	}{
		{
			name: "sunday morning",
			cfg:  types.ScheduleConfig{DayOfWeek: "sun", Hour: 9, Minute: 0},
			want: "0 9 * * sun",
		},
		{
			name: "weekday evening",
			cfg:  types.ScheduleConfig{DayOfWeek: "fri", Hour: 18, Minute: 30},
			want: "30 18 * * fri",
		},
		{
			name: "empty day defaults to sunday",
			cfg:  types.ScheduleConfig{Hour: 7, Minute: 15},
			want: "15 7 * * sun",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CronSpec(tt.cfg)
			if got != tt.want {
				t.Errorf("CronSpec = %q, want %q", got, tt.want)
			}
			if _, err := cron.ParseStandard(got); err != nil {
				t.Errorf("CronSpec produced unparseable expression %q: %v", got, err)
			}
		})
	}
}

func TestRun_InvalidScheduleFailsFast(t *testing.T) {
	cfg := types.ScheduleConfig{DayOfWeek: "someday", Hour: 9}
	err := Run(cfg, func() {}, &bytes.Buffer{}, make(chan os.Signal))
	if err == nil {
		t.Fatal("Run accepted an invalid day of week")
	}
}

func TestRun_StopsOnInterrupt(t *testing.T) {
	interrupt := make(chan os.Signal, 1)
	var log bytes.Buffer

	done := make(chan error, 1)
	go func() {
		done <- Run(types.ScheduleConfig{DayOfWeek: "sun", Hour: 9}, func() {}, &log, interrupt)
	}()

	interrupt <- os.Interrupt

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after interrupt")
	}

	if !strings.Contains(log.String(), "Scheduler stopped.") {
		t.Errorf("log %q missing stop notice", log.String())
	}
}
