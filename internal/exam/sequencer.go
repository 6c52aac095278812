package exam

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/soz/drivingschool/internal/catalog"
	"github.com/soz/drivingschool/internal/random"
	"github.com/soz/drivingschool/pkg/core"
)

// Sequencer builds routes and moves the participant along them.
type Sequencer struct {
	catalog  *catalog.Catalog
	display  WorldDisplay
	notifier Notifier

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewSequencer creates a sequencer drawing routes from cat with rng.
func NewSequencer(cat *catalog.Catalog, display WorldDisplay, notifier Notifier, rng *rand.Rand) *Sequencer {
	return &Sequencer{
		catalog:  cat,
		display:  display,
		notifier: notifier,
		rng:      rng,
	}
}

// SelectRoute samples min(count, eligible) distinct catalog checkpoints
// valid for license. The final checkpoint is not included.
func (s *Sequencer) SelectRoute(license core.LicenseType, count int) []core.Checkpoint {
	eligible := s.catalog.CheckpointsFor(license)

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return random.Sample(s.rng, eligible, count)
}

// Display draws the current checkpoint and points the route indicator at it.
// The marker uses the final shape once nothing remains after it.
func (s *Sequencer) Display(st *TrialState) {
	m := st.Config.Marker
	markerType := m.Type
	if st.Remaining == nil || st.Remaining.Empty() {
		markerType = m.TypeFinal
	}

	if st.Marker.Valid() {
		s.display.RemoveMarker(st.Marker)
	}
	st.Marker = s.display.CreateMarker(core.MarkerSpec{
		Type:   markerType,
		Coords: st.Current.Coords,
		Size:   m.Size,
		Color:  m.Color,
	})

	if st.RouteIndicator.Valid() {
		s.display.RemoveRouteIndicator(st.RouteIndicator)
	}
	st.RouteIndicator = s.display.CreateRouteIndicator(st.Current.Coords, s.catalog.RouteColor)
}

// Advance checks whether the participant reached the current checkpoint and,
// if so, moves to the next one. It reports true once the last checkpoint
// has been reached.
func (s *Sequencer) Advance(ctx context.Context, st *TrialState, position core.Vector3) bool {
	if !st.Running {
		return false
	}

	s.display.SetRouteOverlay(true)

	if core.Distance(position, st.Current.Coords) > st.Config.Marker.Size {
		return false
	}

	if st.Marker.Valid() {
		s.display.RemoveMarker(st.Marker)
		st.Marker = core.NoHandle
	}

	if msg := st.Current.Message; msg != "" {
		s.notifier.Notify(ctx, msg, core.SeverityInfo)
	}

	total := st.Total()
	s.notifier.Notify(ctx, fmt.Sprintf("Checkpoint %d/%d", total-st.Remaining.Len(), total), core.SeverityInfo)
	st.Reached++

	next, ok := st.Remaining.Pop()
	if !ok {
		return true
	}
	st.Current = next
	s.Display(st)
	return false
}
