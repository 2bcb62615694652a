// Package poll refreshes feeds on a cron schedule.
package poll

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// DefaultSpec polls every two minutes.
const DefaultSpec = "@every 2m"

// ValidateSpec reports whether spec is a standard five-field cron expression
// or a descriptor such as "@every 5m".
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", spec, err)
	}
	return nil
}

// Poller calls fire on every tick of its schedule.
type Poller struct {
	cron  *cron.Cron
	fire  func()
	ticks *atomic.Int64
	log   logrus.FieldLogger
}

// New schedules fire. The poller is idle until Start.
func New(spec string, fire func(), log logrus.FieldLogger) (*Poller, error) {
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}
	p := &Poller{
		cron: cron.New(
			cron.WithLogger(cron.PrintfLogger(log)),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))),
		),
		fire:  fire,
		ticks: atomic.NewInt64(0),
		log:   log,
	}
	if _, err := p.cron.AddJob(spec, p); err != nil {
		return nil, fmt.Errorf("failed to schedule poll: %w", err)
	}
	return p, nil
}

// Run implements cron.Job.
func (p *Poller) Run() {
	n := p.ticks.Inc()
	p.log.WithField("tick", n).Debug("poll fired")
	p.fire()
}

// Ticks returns how many times the poller has fired.
func (p *Poller) Ticks() int64 {
	return p.ticks.Load()
}

func (p *Poller) Start() {
	p.cron.Start()
}

// Stop halts the schedule and waits for a running tick, or ctx, whichever
// comes first.
func (p *Poller) Stop(ctx context.Context) {
	done := p.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
