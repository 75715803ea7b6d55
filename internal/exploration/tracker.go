package exploration

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/fog-agent/internal/models"
	"github.com/benmeehan/fog-agent/internal/store"
	"github.com/benmeehan/fog-agent/internal/utils"
	"github.com/benmeehan/fog-agent/pkg/geo"
	"github.com/rs/zerolog"
)

// DefaultSaveTimeout bounds a single write to the store.
const DefaultSaveTimeout = 10 * time.Second

// Tracker owns the canonical explored-region set. Observations are serialized.
// Every mutation replaces a single pending snapshot that a background worker
// writes to the store; a slow store only delays persistence, and a failed save
// is logged and never rolls back the in-memory set.
type Tracker struct {
	store       store.Store
	logger      zerolog.Logger
	saveTimeout time.Duration

	mu          sync.Mutex
	regions     models.ExplorationSet
	pending     models.ExplorationSet
	flushQueued bool
	saves       *utils.WorkerPool
}

// NewTracker creates a Tracker with an empty set backed by s.
func NewTracker(s store.Store, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store:       s,
		logger:      logger,
		saveTimeout: DefaultSaveTimeout,
		regions:     models.ExplorationSet{},
		saves:       utils.NewWorkerPool(1, 1),
	}
}

// SetSaveTimeout changes the per-save deadline. Non-positive values are ignored.
func (t *Tracker) SetSaveTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	t.mu.Lock()
	t.saveTimeout = d
	t.mu.Unlock()
}

// Load replaces the canonical set with the persisted one. Read failures and
// corrupt data leave the tracker with an empty set.
func (t *Tracker) Load(ctx context.Context) models.ExplorationSet {
	set, err := t.store.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			t.logger.Warn().Err(err).Msg("Discarding corrupt exploration data")
		} else {
			t.logger.Error().Err(err).Msg("Failed to load explored regions")
		}
		set = models.ExplorationSet{}
	}

	t.mu.Lock()
	t.regions = set.Clone()
	t.mu.Unlock()

	t.logger.Info().Int("regions", len(set)).Msg("Explored regions loaded")
	return set.Clone()
}

// Observe folds point into the canonical set, schedules it for persistence
// and returns a copy of the new set.
func (t *Tracker) Observe(point geo.Coordinate) (models.ExplorationSet, Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, res := Observe(point, t.regions)
	t.regions = next

	t.logger.Debug().
		Float64("latitude", point.Latitude).
		Float64("longitude", point.Longitude).
		Bool("created", res.Created).
		Int("absorbed", res.Absorbed).
		Int("regions", len(next)).
		Msg("Observation applied")

	t.persist(next.Clone())
	return next.Clone(), res
}

// persist must be called with t.mu held. At most one flush is queued at a
// time, so Submit never waits on a busy worker.
func (t *Tracker) persist(snapshot models.ExplorationSet) {
	t.pending = snapshot
	if t.flushQueued {
		return
	}
	if err := t.saves.Submit(t.flush); err != nil {
		t.pending = nil
		t.logger.Warn().Err(err).Msg("Tracker closed, explored regions not persisted")
		return
	}
	t.flushQueued = true
}

// flush writes the latest pending snapshot.
func (t *Tracker) flush() {
	t.mu.Lock()
	snapshot := t.pending
	timeout := t.saveTimeout
	t.pending = nil
	t.flushQueued = false
	t.mu.Unlock()

	if snapshot == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := t.store.Save(ctx, snapshot); err != nil {
		t.logger.Error().
			Err(err).
			Int("regions", len(snapshot)).
			Msg("Failed to persist explored regions")
	}
}

// Regions returns a copy of the canonical set.
func (t *Tracker) Regions() models.ExplorationSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.regions.Clone()
}

// Close waits for the pending save to finish. Observations after Close still
// update the in-memory set but are no longer persisted.
func (t *Tracker) Close() {
	t.saves.Shutdown()
}
