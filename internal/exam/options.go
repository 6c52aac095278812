package exam

import (
	"context"
	"time"

	"github.com/soz/drivingschool/internal/config"
)

// Options tunes trial timing and thresholds.
type Options struct {
	ArrivalDelay       time.Duration
	TerminateGrace     time.Duration
	ProgressInterval   time.Duration
	PenaltyInterval    time.Duration
	ArmDistance        float64
	UndrivableFeedSize int
	MinVehicleHealth   float64
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		ArrivalDelay:       200 * time.Millisecond,
		TerminateGrace:     2 * time.Second,
		ProgressInterval:   16 * time.Millisecond,
		PenaltyInterval:    200 * time.Millisecond,
		ArmDistance:        DefaultArmDistance,
		UndrivableFeedSize: 32,
		MinVehicleHealth:   0,
	}
}

// OptionsFromConfig converts the exam configuration section.
func OptionsFromConfig(cfg config.ExamConfig) Options {
	return Options{
		ArrivalDelay:       cfg.ArrivalDelay,
		TerminateGrace:     cfg.TerminateGrace,
		ProgressInterval:   cfg.ProgressInterval,
		PenaltyInterval:    cfg.PenaltyInterval,
		ArmDistance:        cfg.ArmDistance,
		UndrivableFeedSize: cfg.UndrivableFeedSize,
		MinVehicleHealth:   cfg.MinVehicleHealth,
	}.withDefaults()
}

// withDefaults fills zero intervals and sizes. Zero delays are kept.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = d.ProgressInterval
	}
	if o.PenaltyInterval <= 0 {
		o.PenaltyInterval = d.PenaltyInterval
	}
	if o.ArmDistance <= 0 {
		o.ArmDistance = d.ArmDistance
	}
	if o.UndrivableFeedSize <= 0 {
		o.UndrivableFeedSize = d.UndrivableFeedSize
	}
	return o
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
