package exam

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/soz/drivingschool/internal/exam"

type metrics struct {
	started     metric.Int64Counter
	finished    metric.Int64Counter
	checkpoints metric.Int64Counter
	violations  metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out metrics
		err error
	)

	out.started, err = m.Int64Counter("exam.trials.started",
		metric.WithDescription("Trials started"))
	if err != nil {
		return nil, fmt.Errorf("creating started counter: %w", err)
	}
	out.finished, err = m.Int64Counter("exam.trials.finished",
		metric.WithDescription("Trials finished, by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating finished counter: %w", err)
	}
	out.checkpoints, err = m.Int64Counter("exam.checkpoints.reached",
		metric.WithDescription("Checkpoints reached"))
	if err != nil {
		return nil, fmt.Errorf("creating checkpoints counter: %w", err)
	}
	out.violations, err = m.Int64Counter("exam.rules.violated",
		metric.WithDescription("Penalty rule violations, by rule"))
	if err != nil {
		return nil, fmt.Errorf("creating violations counter: %w", err)
	}
	return &out, nil
}

func (m *metrics) trialStarted(ctx context.Context, license string) {
	m.started.Add(ctx, 1, metric.WithAttributes(attribute.String("license", license)))
}

func (m *metrics) trialFinished(ctx context.Context, license, outcome string) {
	m.finished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("license", license),
		attribute.String("outcome", outcome),
	))
}

func (m *metrics) checkpointReached(ctx context.Context, license string) {
	m.checkpoints.Add(ctx, 1, metric.WithAttributes(attribute.String("license", license)))
}

func (m *metrics) ruleViolated(ctx context.Context, rule string) {
	m.violations.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", rule)))
}
