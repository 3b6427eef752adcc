// Package evict runs the periodic sweep that removes file entries once
// they are exhausted or expired (C7). It is grounded on the original
// aqaSend implementation's cleanup task, with one deliberate correction:
// the original only deleted the blob for exhausted entries and left a
// TODO for expired ones (tasks/cleanup.rs); here both cases delete their
// blob, since leaving an orphaned blob behind for every lifetime-expired
// entry was a bug, not a design choice.
package evict

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/aqasend/aqasend/blob"
	"github.com/aqasend/aqasend/store"
	"github.com/google/uuid"
)

// Engine periodically scans the entries table and evicts exhausted or
// expired entries, deleting their backing blob as it goes.
type Engine struct {
	db       *store.DB
	blobs    *blob.Store
	interval time.Duration
	startLag time.Duration
	log      *zap.Logger

	lastSweepUnix    prometheus.Gauge
	evictedLastSweep prometheus.Gauge
}

// New returns an Engine that will not start ticking until Run is called.
// It registers the eviction-sweep gauges on reg so /metrics can expose the
// engine's liveness alongside httpapi's request counters and histograms.
func New(db *store.DB, blobs *blob.Store, interval, startLag time.Duration, log *zap.Logger, reg prometheus.Registerer) *Engine {
	lastSweepUnix := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "aqasend",
		Name:      "evict_last_sweep_unixtime",
		Help:      "Unix timestamp of the most recently completed eviction sweep.",
	})
	evictedLastSweep := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "aqasend",
		Name:      "evict_entries_removed_last_sweep",
		Help:      "Number of entries removed during the most recently completed eviction sweep.",
	})
	reg.MustRegister(lastSweepUnix, evictedLastSweep)

	return &Engine{
		db: db, blobs: blobs, interval: interval, startLag: startLag, log: log,
		lastSweepUnix: lastSweepUnix, evictedLastSweep: evictedLastSweep,
	}
}

// Name identifies this runner in the daemon's run group.
func (e *Engine) Name() string { return "evict" }

// Run blocks, running one sweep per tick, until ctx is cancelled. It
// satisfies the daemon.Runner shape the supervisor expects.
func (e *Engine) Run(ctx context.Context) error {
	timer := time.NewTimer(e.startLag)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			e.Sweep()
			timer.Reset(e.interval)
		}
	}
}

// Sweep runs a single eviction pass immediately. Run calls this on every
// tick; it is exported so callers (and tests) can trigger an off-cycle
// sweep without waiting on the ticker.
func (e *Engine) Sweep() {
	e.log.Debug("eviction sweep starting")

	now := time.Now()
	var toDelete []evictee
	guard, release := e.db.EntriesWriter()

	guard.Each(func(id uuid.UUID, entry *store.FileEntry) {
		if entry.Exhausted() || entry.Expired(now) {
			toDelete = append(toDelete, evictee{id: id, bucket: entry.DownloadCountType.Bucket()})
		}
	})
	for _, ev := range toDelete {
		guard.Delete(ev.id)
	}
	release()

	var deletedBlobs int
	for _, ev := range toDelete {
		if err := e.blobs.Delete(ev.bucket, ev.id); err != nil {
			e.log.Error("failed to delete blob for evicted entry",
				zap.Stringer("uuid", ev.id), zap.Error(err))
			continue
		}
		deletedBlobs++
	}

	e.log.Info("eviction sweep finished",
		zap.Int("entries_removed", len(toDelete)), zap.Int("blobs_deleted", deletedBlobs))

	e.lastSweepUnix.Set(float64(now.Unix()))
	e.evictedLastSweep.Set(float64(len(toDelete)))
}

type evictee struct {
	id     uuid.UUID
	bucket string
}
