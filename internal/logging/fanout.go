package logging

import (
	"context"
	"errors"
	"log/slog"
)

// ContextProvider returns the attributes of the running trial, or nil when
// no trial runs.
type ContextProvider func() []slog.Attr

// fanout writes each record to every sink enabled for its level. With a
// context provider set, records are stamped with the trial attributes unless
// the record or a WithAttrs call already carries the same key.
type fanout struct {
	sinks    []slog.Handler
	provider ContextProvider
	bound    map[string]bool
	grouped  bool
}

func newFanout(sinks ...slog.Handler) *fanout {
	f := &fanout{sinks: make([]slog.Handler, 0, len(sinks))}
	for _, h := range sinks {
		if h != nil {
			f.sinks = append(f.sinks, h)
		}
	}
	return f
}

// withContext returns a copy of f that stamps records using provider.
func (f *fanout) withContext(provider ContextProvider) *fanout {
	c := *f
	c.provider = provider
	return &c
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.sinks {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	if trial := f.trialAttrs(r); len(trial) > 0 {
		r = r.Clone()
		r.AddAttrs(trial...)
	}

	var errs []error
	for _, h := range f.sinks {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// trialAttrs returns the provider attributes r does not already carry.
// Nothing is added inside a group, where the keys would no longer match.
func (f *fanout) trialAttrs(r slog.Record) []slog.Attr {
	if f.provider == nil || f.grouped {
		return nil
	}
	attrs := f.provider()
	if len(attrs) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(f.bound)+r.NumAttrs())
	for k := range f.bound {
		seen[k] = true
	}
	r.Attrs(func(a slog.Attr) bool {
		seen[a.Key] = true
		return true
	})

	out := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == "" || seen[a.Key] {
			continue
		}
		seen[a.Key] = true
		out = append(out, a)
	}
	return out
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
	if !c.grouped {
		c.bound = make(map[string]bool, len(f.bound)+len(attrs))
		for k := range f.bound {
			c.bound[k] = true
		}
		for _, a := range attrs {
			c.bound[a.Key] = true
		}
	}
	return c
}

func (f *fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	c := f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
	c.grouped = true
	return c
}

func (f *fanout) derive(apply func(slog.Handler) slog.Handler) *fanout {
	c := *f
	c.sinks = make([]slog.Handler, len(f.sinks))
	for i, h := range f.sinks {
		c.sinks[i] = apply(h)
	}
	return &c
}
